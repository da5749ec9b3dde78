// Package hittest maps a viewport point back to the layout node drawn
// under it.
package hittest

import (
	"math"

	"seatmap/internal/geometry"
)

const fullCircle = 2 * math.Pi

// Unlimited makes LocateDepth behave like Locate.
const Unlimited = math.MaxInt32

// Locate returns the deepest shape containing p. Points that fall in the
// gaps between siblings, or outside the layout, hit nothing.
func Locate(p geometry.Point, g *geometry.Geometry) (*geometry.Shape, bool) {
	return LocateDepth(p, g, Unlimited)
}

// LocateDepth is Locate restricted to shapes at most maxDepth deep, so
// whole blocks (depth 1) or sections can be picked.
func LocateDepth(p geometry.Point, g *geometry.Geometry, maxDepth int) (*geometry.Shape, bool) {
	if g == nil || maxDepth < 1 || len(g.Shapes) == 0 {
		return nil, false
	}
	var s *geometry.Shape
	if g.Mode == geometry.ModeLinear {
		s = locateLinear(p, g, maxDepth)
	} else {
		s = locateRadial(p, g, maxDepth)
	}
	return s, s != nil
}

type polar struct {
	radius, angle float64
}

func locateRadial(p geometry.Point, g *geometry.Geometry, maxDepth int) *geometry.Shape {
	dx, dy := p.X-g.Center.X, p.Y-g.Center.Y
	pt := polar{
		radius: math.Hypot(dx, dy),
		angle:  geometry.NormalizeAngle(math.Atan2(dy, dx)),
	}
	if !withinRings(pt.radius, g.Rings) {
		return nil
	}

	level := g.Shapes
	var hit *geometry.Shape
	for len(level) > 0 {
		next := arcAt(level, pt)
		if next == nil {
			// outside every block, or inside a parent but between its children
			return nil
		}
		hit = next
		if hit.Depth >= maxDepth {
			return hit
		}
		level = hit.Children
	}
	return hit
}

func withinRings(r float64, rings []geometry.Ring) bool {
	if len(rings) == 0 {
		return true
	}
	return r >= rings[len(rings)-1].InnerRadius && r <= rings[0].OuterRadius
}

func arcAt(shapes []*geometry.Shape, pt polar) *geometry.Shape {
	for _, s := range shapes {
		a := s.Arc
		if a == nil || pt.radius < a.InnerRadius || pt.radius > a.OuterRadius {
			continue
		}
		if angleWithin(pt.angle, a.StartAngle, a.EndAngle, a.Sweep) {
			return s
		}
	}
	return nil
}

// angleWithin reports whether a lies on the clockwise sweep from start to
// end. All angles are in [0, 2π); end < start means the sweep wraps
// through zero.
func angleWithin(a, start, end, sweep float64) bool {
	if sweep >= fullCircle-1e-12 {
		return true
	}
	if start <= end {
		return a >= start && a <= end
	}
	return a >= start || a <= end
}

// locateLinear tests boxes innermost first: the deepest box containing p
// wins, and the earliest drawn among equally deep boxes.
func locateLinear(p geometry.Point, g *geometry.Geometry, maxDepth int) *geometry.Shape {
	var hit *geometry.Shape
	g.Walk(func(s *geometry.Shape) {
		if s.Box == nil || s.Depth > maxDepth || !s.Box.Contains(p) {
			return
		}
		if hit == nil || s.Depth > hit.Depth {
			hit = s
		}
	})
	if hit != nil && hit.Depth < maxDepth && len(hit.Children) > 0 {
		return nil
	}
	return hit
}
