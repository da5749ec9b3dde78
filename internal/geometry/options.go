package geometry

import "math"

// Options tunes the layout algorithms. Angles are radians, radial distances
// are viewport pixels and linear distances are venue design units.
type Options struct {
	StartAngle     float64
	TotalAngle     float64
	BlockGap       float64
	SectionGap     float64
	RingGap        float64
	PitchRatio     float64
	RowPitch       float64
	SectionSpacing float64
	MinWeight      float64
}

func DefaultOptions() Options {
	return Options{
		StartAngle:     -math.Pi / 2,
		TotalAngle:     2 * math.Pi,
		BlockGap:       0.02,
		SectionGap:     0.01,
		RingGap:        8,
		PitchRatio:     0.35,
		RowPitch:       24,
		SectionSpacing: 16,
		MinWeight:      0.1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TotalAngle <= 0 || o.TotalAngle > 2*math.Pi {
		o.TotalAngle = d.TotalAngle
	}
	if o.BlockGap < 0 {
		o.BlockGap = 0
	}
	if o.SectionGap < 0 {
		o.SectionGap = 0
	}
	if o.RingGap < 0 {
		o.RingGap = 0
	}
	if o.PitchRatio <= 0 || o.PitchRatio >= 1 {
		o.PitchRatio = d.PitchRatio
	}
	if o.RowPitch <= 0 {
		o.RowPitch = d.RowPitch
	}
	if o.SectionSpacing < 0 {
		o.SectionSpacing = 0
	}
	if o.MinWeight <= 0 {
		o.MinWeight = d.MinWeight
	}
	return o
}
