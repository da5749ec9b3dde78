package geometry

import (
	"fmt"
	"math"

	"seatmap/internal/layout"
)

const maxCurve = 1.0

type linearBuilder struct {
	snap   *layout.Snapshot
	opts   Options
	scale  float64
	origin Point
	issues []layout.Issue
}

// computeLinear fits the venue's design canvas into the viewport, places
// sections at their explicit rectangles (or shares the parent's width by
// weight when they have none), stacks rows at the row pitch and spreads
// seats across each row.
func computeLinear(snap *layout.Snapshot, vp Viewport, opts Options) *Geometry {
	drawW := vp.Width - 2*vp.Padding
	drawH := vp.Height - 2*vp.Padding

	canvasW, canvasH := designCanvas(snap)
	scale := 1.0
	if canvasW > 0 && canvasH > 0 {
		scale = math.Min(drawW/canvasW, drawH/canvasH)
	} else {
		canvasW, canvasH = drawW, drawH
	}

	b := &linearBuilder{
		snap:  snap,
		opts:  opts,
		scale: scale,
		origin: Point{
			X: vp.Padding + (drawW-canvasW*scale)/2,
			Y: vp.Padding + (drawH-canvasH*scale)/2,
		},
	}
	stage := Box{X: b.origin.X, Y: b.origin.Y, Width: canvasW * scale, Height: canvasH * scale}

	root := snap.Root()
	g := &Geometry{
		Mode:   ModeLinear,
		Center: stage.Center(),
		Shapes: b.children(root, stage, 1, root.IsBlocked()),
	}
	g.Issues = b.issues
	return g
}

// designCanvas is the extent covered by explicit placements, or zero when
// nothing is placed explicitly.
func designCanvas(snap *layout.Snapshot) (w, h float64) {
	snap.Walk(func(n layout.Node, _ int) bool {
		if validPlacement(n.Placement) {
			w = math.Max(w, n.Placement.X+n.Placement.Width)
			h = math.Max(h, n.Placement.Y+n.Placement.Height)
		}
		return true
	})
	return w, h
}

func validPlacement(p *layout.Placement) bool {
	return p != nil && p.Width > 0 && p.Height > 0 && p.X >= 0 && p.Y >= 0
}

func (b *linearBuilder) toViewport(p *layout.Placement) Box {
	return Box{
		X:      b.origin.X + p.X*b.scale,
		Y:      b.origin.Y + p.Y*b.scale,
		Width:  p.Width * b.scale,
		Height: p.Height * b.scale,
	}
}

// children lays out the containers under parent inside box.
func (b *linearBuilder) children(parent layout.Node, box Box, depth int, blocked bool) []*Shape {
	kids := b.snap.Children(parent.ID)
	if len(kids) == 0 {
		return nil
	}

	shapes := make([]*Shape, len(kids))
	var auto []int
	for i, k := range kids {
		switch {
		case validPlacement(k.Placement):
			shapes[i] = b.shape(k, b.toViewport(k.Placement), depth, blocked)
		case k.Placement != nil:
			b.issues = append(b.issues, layout.Issue{NodeID: k.ID, Reason: "unusable placement, laid out automatically"})
			auto = append(auto, i)
		default:
			auto = append(auto, i)
		}
	}

	if len(auto) > 0 {
		autoNodes := make([]layout.Node, len(auto))
		for j, i := range auto {
			autoNodes[j] = kids[i]
		}
		weights := weightsOf(autoNodes, b.opts.MinWeight, &b.issues)
		spans := Partition(box.X, box.Width, b.opts.SectionSpacing*b.scale, weights)
		for j, i := range auto {
			sb := Box{X: spans[j].Start, Y: box.Y, Width: spans[j].Size, Height: box.Height}
			shapes[i] = b.shape(kids[i], sb, depth, blocked)
		}
	}
	return shapes
}

func (b *linearBuilder) shape(n layout.Node, box Box, depth int, parentBlocked bool) *Shape {
	s := &Shape{
		NodeID:  n.ID,
		Kind:    n.Kind,
		Name:    n.Name,
		Depth:   depth,
		Blocked: parentBlocked || n.IsBlocked(),
		Color:   n.Style.Color,
		Center:  box.Center(),
		Box:     &box,
	}

	kids := b.snap.Children(n.ID)
	switch {
	case len(kids) == 0:
	case n.Kind == layout.KindRow:
		s.Children = b.seats(n, kids, box, depth+1, s.Blocked)
	case kids[0].Kind == layout.KindRow:
		s.Children = b.rows(kids, box, depth+1, s.Blocked)
	default:
		s.Children = b.children(n, box, depth+1, s.Blocked)
	}
	return s
}

// rows stacks rows from the top of box at the row pitch, shrinking the
// pitch when the rows and their curvature would not fit.
func (b *linearBuilder) rows(rows []layout.Node, box Box, depth int, blocked bool) []*Shape {
	var up, down float64
	for _, r := range rows {
		c := clampCurve(r.Curve)
		up = math.Max(up, -c)
		down = math.Max(down, c)
	}
	n := float64(len(rows))
	pitch := math.Min(b.opts.RowPitch*b.scale, box.Height/(n+up+down))
	top := box.Y + up*pitch

	out := make([]*Shape, len(rows))
	for i, r := range rows {
		rb := Box{X: box.X, Y: top + float64(i)*pitch, Width: box.Width, Height: pitch}
		out[i] = b.shape(r, rb, depth, blocked)
	}
	return out
}

// seats spreads seats evenly across the row. A non-zero curve bends the row
// with a parabolic vertical offset that grows with the distance from the
// row's centre; seat order along x never changes.
func (b *linearBuilder) seats(row layout.Node, seats []layout.Node, box Box, depth int, blocked bool) []*Shape {
	c := b.curve(row)
	mid := box.X + box.Width/2
	half := box.Width / 2

	out := make([]*Shape, len(seats))
	for j, col := range Even(box.X, box.Width, len(seats)) {
		t := 0.0
		if half > 0 {
			t = (col.Mid() - mid) / half
		}
		bow := c * t * t * box.Height
		sb := Box{X: col.Start, Y: box.Y + bow, Width: col.Size, Height: box.Height}
		seat := seats[j]
		out[j] = &Shape{
			NodeID:  seat.ID,
			Kind:    seat.Kind,
			Name:    seat.Name,
			Depth:   depth,
			Blocked: blocked || seat.IsBlocked(),
			Color:   seat.Style.Color,
			Center:  sb.Center(),
			Box:     &sb,
		}
	}
	return out
}

func (b *linearBuilder) curve(row layout.Node) float64 {
	c := clampCurve(row.Curve)
	if c != row.Curve {
		b.issues = append(b.issues, layout.Issue{NodeID: row.ID, Reason: fmt.Sprintf("curve %v clamped to %v", row.Curve, c)})
	}
	return c
}

func clampCurve(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(-maxCurve, math.Min(maxCurve, c))
}
