package geometry

import (
	"errors"
	"fmt"
	"math"

	"seatmap/internal/layout"
)

type Mode string

const (
	ModeRadial Mode = "RADIAL"
	ModeLinear Mode = "LINEAR"
)

var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport is the drawable area a layout is fitted into.
type Viewport struct {
	Width   float64 `json:"width" form:"width"`
	Height  float64 `json:"height" form:"height"`
	Padding float64 `json:"padding" form:"padding"`
}

func (v Viewport) Validate() error {
	if !(v.Width > 0) || !(v.Height > 0) || math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidViewport, v.Width, v.Height)
	}
	if v.Padding < 0 || 2*v.Padding >= math.Min(v.Width, v.Height) {
		return fmt.Errorf("%w: padding %v", ErrInvalidViewport, v.Padding)
	}
	return nil
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Arc is an annular sector. Angles are normalised to [0, 2π) and measured
// clockwise on screen (y grows downwards); EndAngle is smaller than
// StartAngle when the sector crosses angle zero.
type Arc struct {
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
	StartAngle  float64 `json:"startAngle"`
	EndAngle    float64 `json:"endAngle"`
	Sweep       float64 `json:"sweep"`
}

type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Shape is the computed geometry of one layout node. Radial layouts fill
// Arc, linear layouts fill Box. Center is the label anchor, and for seats
// the seat position.
type Shape struct {
	NodeID   string      `json:"nodeId"`
	Kind     layout.Kind `json:"kind"`
	Name     string      `json:"name,omitempty"`
	Depth    int         `json:"depth"`
	Blocked  bool        `json:"blocked,omitempty"`
	Color    string      `json:"color,omitempty"`
	Center   Point       `json:"center"`
	Arc      *Arc        `json:"arc,omitempty"`
	Box      *Box        `json:"box,omitempty"`
	Children []*Shape    `json:"children,omitempty"`
}

// Ring is one concentric band of a radial layout. Level 0 is outermost.
type Ring struct {
	Level       int     `json:"level"`
	InnerRadius float64 `json:"innerRadius"`
	OuterRadius float64 `json:"outerRadius"`
}

// Geometry is the full render tree of a venue for one viewport. It is never
// mutated after Compute returns, so it can be shared between readers.
type Geometry struct {
	VenueID     string         `json:"venueId"`
	Version     uint64         `json:"version"`
	Mode        Mode           `json:"mode"`
	Viewport    Viewport       `json:"viewport"`
	Center      Point          `json:"center"`
	MaxRadius   float64        `json:"maxRadius,omitempty"`
	PitchRadius float64        `json:"pitchRadius,omitempty"`
	Rings       []Ring         `json:"rings,omitempty"`
	Shapes      []*Shape       `json:"shapes"`
	Issues      []layout.Issue `json:"issues,omitempty"`

	index map[string]*Shape
}

// Find returns the shape computed for a node, or nil when the node has no
// geometry.
func (g *Geometry) Find(nodeID string) *Shape {
	if g.index != nil {
		return g.index[nodeID]
	}
	var found *Shape
	g.Walk(func(s *Shape) {
		if found == nil && s.NodeID == nodeID {
			found = s
		}
	})
	return found
}

// Walk visits every shape depth-first.
func (g *Geometry) Walk(fn func(s *Shape)) {
	var visit func(s *Shape)
	visit = func(s *Shape) {
		fn(s)
		for _, c := range s.Children {
			visit(c)
		}
	}
	for _, s := range g.Shapes {
		visit(s)
	}
}

func (g *Geometry) reindex() {
	idx := make(map[string]*Shape)
	g.Walk(func(s *Shape) { idx[s.NodeID] = s })
	g.index = idx
}
