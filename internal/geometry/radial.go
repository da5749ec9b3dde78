package geometry

import (
	"math"

	"seatmap/internal/layout"
)

type band struct {
	inner, outer float64
}

func (b band) mid() float64 { return (b.inner + b.outer) / 2 }

func (b band) intersect(o band) band {
	r := band{inner: math.Max(b.inner, o.inner), outer: math.Min(b.outer, o.outer)}
	if r.outer <= r.inner {
		return b
	}
	return r
}

type radialBuilder struct {
	snap   *layout.Snapshot
	opts   Options
	center Point
	rings  []Ring
	issues []layout.Issue
}

// computeRadial lays blocks around the pitch clockwise from opts.StartAngle,
// tiers into concentric rings, sections across their parent's angle, rows
// outwards from the pitch and seats evenly along each row.
func computeRadial(snap *layout.Snapshot, vp Viewport, opts Options) *Geometry {
	maxR := math.Min(vp.Width, vp.Height)/2 - vp.Padding
	pitchR := maxR * opts.PitchRatio

	b := &radialBuilder{
		snap:   snap,
		opts:   opts,
		center: Point{X: vp.Width / 2, Y: vp.Height / 2},
		rings:  buildRings(maxR, pitchR, opts.RingGap, ringCount(snap)),
	}

	root := snap.Root()
	blocks := snap.Children(root.ID)
	all := band{inner: b.rings[len(b.rings)-1].InnerRadius, outer: b.rings[0].OuterRadius}
	spans := Partition(opts.StartAngle, opts.TotalAngle, opts.BlockGap, weightsOf(blocks, opts.MinWeight, &b.issues))

	g := &Geometry{
		Mode:        ModeRadial,
		Center:      b.center,
		MaxRadius:   maxR,
		PitchRadius: pitchR,
		Rings:       b.rings,
	}
	for i, blk := range blocks {
		g.Shapes = append(g.Shapes, b.shape(blk, all, spans[i], 1, root.IsBlocked()))
	}
	g.Issues = b.issues
	return g
}

// ringCount is the largest number of tiers under any single node.
func ringCount(snap *layout.Snapshot) int {
	count := 1
	snap.Walk(func(n layout.Node, _ int) bool {
		tiers := 0
		for _, c := range snap.Children(n.ID) {
			if c.Kind == layout.KindTier {
				tiers++
			}
		}
		if tiers > count {
			count = tiers
		}
		return true
	})
	return count
}

func buildRings(maxR, pitchR, gap float64, n int) []Ring {
	usable := maxR - pitchR
	if float64(n-1)*gap >= usable/2 {
		gap = 0
	}
	thickness := (usable - float64(n-1)*gap) / float64(n)

	rings := make([]Ring, n)
	for i := range rings {
		outer := maxR - float64(i)*(thickness+gap)
		rings[i] = Ring{Level: i, OuterRadius: outer, InnerRadius: outer - thickness}
	}
	return rings
}

func (b *radialBuilder) polar(angle, radius float64) Point {
	return Point{
		X: b.center.X + radius*math.Cos(angle),
		Y: b.center.Y + radius*math.Sin(angle),
	}
}

func (b *radialBuilder) shape(n layout.Node, bd band, span Span, depth int, parentBlocked bool) *Shape {
	s := &Shape{
		NodeID:  n.ID,
		Kind:    n.Kind,
		Name:    n.Name,
		Depth:   depth,
		Blocked: parentBlocked || n.IsBlocked(),
		Color:   n.Style.Color,
		Center:  b.polar(span.Mid(), bd.mid()),
		Arc: &Arc{
			InnerRadius: bd.inner,
			OuterRadius: bd.outer,
			StartAngle:  normAngle(span.Start),
			EndAngle:    normAngle(span.End()),
			Sweep:       span.Size,
		},
	}

	kids := b.snap.Children(n.ID)
	if len(kids) == 0 {
		return s
	}
	add := func(k layout.Node, kb band, ks Span) {
		s.Children = append(s.Children, b.shape(k, kb, ks, depth+1, s.Blocked))
	}

	switch {
	case n.Kind == layout.KindRow:
		for i, sp := range Even(span.Start, span.Size, len(kids)) {
			add(kids[i], bd, sp)
		}
	case kids[0].Kind == layout.KindTier:
		for i, k := range kids {
			r := b.rings[min(i, len(b.rings)-1)]
			add(k, bd.intersect(band{inner: r.InnerRadius, outer: r.OuterRadius}), span)
		}
	case kids[0].Kind == layout.KindRow:
		for i, rs := range Even(bd.inner, bd.outer-bd.inner, len(kids)) {
			add(kids[i], band{inner: rs.Start, outer: rs.End()}, span)
		}
	default:
		weights := weightsOf(kids, b.opts.MinWeight, &b.issues)
		for i, sp := range Partition(span.Start, span.Size, b.opts.SectionGap, weights) {
			add(kids[i], bd, sp)
		}
	}
	return s
}
