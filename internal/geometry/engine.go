package geometry

import (
	"errors"

	"seatmap/internal/layout"
)

var ErrNoLayout = errors.New("no layout snapshot")

// Compute derives the render tree of a layout snapshot for one viewport.
// It is a pure function: the same snapshot version and viewport always
// produce the same geometry. Stadium venues are laid out radially, theatre
// venues linearly.
func Compute(snap *layout.Snapshot, vp Viewport, opts Options) (*Geometry, error) {
	if snap == nil {
		return nil, ErrNoLayout
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var g *Geometry
	switch snap.LayoutType() {
	case layout.LayoutTheatre:
		g = computeLinear(snap, vp, opts)
	default:
		g = computeRadial(snap, vp, opts)
	}
	g.VenueID = snap.VenueID()
	g.Version = snap.Version()
	g.Viewport = vp
	if g.Shapes == nil {
		g.Shapes = []*Shape{}
	}
	g.reindex()
	return g, nil
}
