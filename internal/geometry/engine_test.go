package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatmap/internal/layout"
)

func TestCompute_RejectsBadInput(t *testing.T) {
	snap := stadium(t).Snapshot()

	_, err := Compute(nil, square, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoLayout)

	for _, vp := range []Viewport{
		{Width: 0, Height: 100},
		{Width: 100, Height: -1},
		{Width: math.Inf(1), Height: 100},
		{Width: math.NaN(), Height: 100},
		{Width: 100, Height: 100, Padding: 50},
		{Width: 100, Height: 100, Padding: -1},
	} {
		_, err := Compute(snap, vp, DefaultOptions())
		assert.ErrorIs(t, err, ErrInvalidViewport, "%+v", vp)
	}
}

func TestCompute_StampsVersionAndIndexesShapes(t *testing.T) {
	m := stadium(t)
	g := compute(t, m, square)

	assert.Equal(t, "arena", g.VenueID)
	assert.Equal(t, m.Version(), g.Version)
	assert.Equal(t, square, g.Viewport)

	count := 0
	g.Walk(func(*Shape) { count++ })
	assert.Equal(t, m.Len()-1, count, "every node but the venue has a shape")

	s := g.Find("e2-r1-s3")
	require.NotNil(t, s)
	assert.Equal(t, layout.KindSeat, s.Kind)
	assert.Nil(t, g.Find("arena"))
}

func TestCompute_EmptyVenue(t *testing.T) {
	m, err := layout.New(layout.Node{ID: "empty"}, layout.LayoutStadium)
	require.NoError(t, err)

	g := compute(t, m, square)
	assert.NotNil(t, g.Shapes)
	assert.Empty(t, g.Shapes)
	assert.Len(t, g.Rings, 1)
}

func TestCompute_SanitizesOptions(t *testing.T) {
	g, err := Compute(stadium(t).Snapshot(), square, Options{StartAngle: -math.Pi / 2, BlockGap: -1})
	require.NoError(t, err)

	var sum float64
	for _, s := range g.Shapes {
		sum += s.Arc.Sweep
	}
	assert.InDelta(t, 2*math.Pi, sum, eps, "negative gaps are treated as zero")
}
