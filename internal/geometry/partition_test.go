package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestPartition_WeightedBlocksAroundFullCircle(t *testing.T) {
	spans := Partition(-math.Pi/2, 2*math.Pi, 0.02, []float64{1, 2, 1})
	require.Len(t, spans, 3)

	usable := 2*math.Pi - 3*0.02
	assert.InDelta(t, usable/4, spans[0].Size, eps)
	assert.InDelta(t, usable/2, spans[1].Size, eps)
	assert.InDelta(t, usable/4, spans[2].Size, eps)
	assert.InDelta(t, 2*spans[0].Size, spans[1].Size, eps)
	assert.InDelta(t, spans[0].Size, spans[2].Size, eps)

	var sum float64
	for _, s := range spans {
		sum += s.Size + 0.02
	}
	assert.InDelta(t, 2*math.Pi, sum, eps)

	assert.InDelta(t, -math.Pi/2+0.01, spans[0].Start, eps)
	for i := 1; i < len(spans); i++ {
		assert.InDelta(t, 0.02, spans[i].Start-spans[i-1].End(), eps)
	}
	assert.InDelta(t, -math.Pi/2+2*math.Pi-0.01, spans[2].End(), eps)
}

func TestPartition_SingleChildTakesWholeExtentMinusGap(t *testing.T) {
	spans := Partition(0, 10, 1, []float64{3})
	require.Len(t, spans, 1)
	assert.InDelta(t, 0.5, spans[0].Start, eps)
	assert.InDelta(t, 9, spans[0].Size, eps)
}

func TestPartition_ShrinksOversizedGaps(t *testing.T) {
	spans := Partition(0, 1, 0.5, []float64{1, 1, 1, 1})
	require.Len(t, spans, 4)

	var sizes float64
	for _, s := range spans {
		sizes += s.Size
	}
	assert.InDelta(t, 0.5, sizes, eps, "gaps are capped at half the extent")
}

func TestPartition_ZeroWeightsSplitEvenly(t *testing.T) {
	spans := Partition(0, 9, 0, []float64{0, 0, 0})
	for _, s := range spans {
		assert.InDelta(t, 3, s.Size, eps)
	}
}

func TestPartition_Empty(t *testing.T) {
	assert.Nil(t, Partition(0, 1, 0, nil))
	assert.Nil(t, Partition(0, 0, 0, []float64{1}))
	assert.Nil(t, Even(0, 1, 0))
}

func TestEven(t *testing.T) {
	spans := Even(10, 30, 3)
	require.Len(t, spans, 3)
	assert.InDelta(t, 10, spans[0].Start, eps)
	assert.InDelta(t, 20, spans[1].Start, eps)
	assert.InDelta(t, 30, spans[2].Start, eps)
	assert.InDelta(t, 40, spans[2].End(), eps)
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 3*math.Pi/2, NormalizeAngle(-math.Pi/2), eps)
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), eps)
	assert.InDelta(t, math.Pi, NormalizeAngle(5*math.Pi), eps)
}
