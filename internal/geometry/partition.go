package geometry

import (
	"fmt"
	"math"

	"seatmap/internal/layout"
)

// Span is a contiguous piece of a one-dimensional extent (an angle in
// radial mode, an x range in linear mode).
type Span struct {
	Start float64
	Size  float64
}

func (s Span) End() float64 { return s.Start + s.Size }
func (s Span) Mid() float64 { return s.Start + s.Size/2 }

// Partition splits [start, start+total) among siblings in proportion to
// their weights. Every child is surrounded by half a gap on each side, so
// the spans plus len(weights) gaps add up to total exactly. When the gaps
// alone would consume more than half of the extent they are shrunk to fit.
func Partition(start, total, gap float64, weights []float64) []Span {
	n := len(weights)
	if n == 0 || total <= 0 {
		return nil
	}
	if gap < 0 {
		gap = 0
	}
	if float64(n)*gap > total/2 {
		gap = total / 2 / float64(n)
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}
	usable := total - float64(n)*gap

	spans := make([]Span, n)
	cursor := start + gap/2
	for i, w := range weights {
		size := usable / float64(n)
		if sum > 0 {
			size = usable * w / sum
		}
		spans[i] = Span{Start: cursor, Size: size}
		cursor += size + gap
	}
	return spans
}

// Even splits an extent into n equal spans with no gaps.
func Even(start, total float64, n int) []Span {
	if n <= 0 {
		return nil
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return Partition(start, total, 0, weights)
}

// weightsOf reads visual weights, replacing any that are not usable with
// minWeight and reporting them.
func weightsOf(nodes []layout.Node, minWeight float64, issues *[]layout.Issue) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		w := n.VisualWeight
		if layout.ValidateWeight(w) != nil {
			*issues = append(*issues, layout.Issue{
				NodeID: n.ID,
				Reason: fmt.Sprintf("visual weight %v rendered with minimum %v", w, minWeight),
			})
			w = minWeight
		}
		out[i] = w
	}
	return out
}

// normAngle maps any angle into [0, 2π).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// NormalizeAngle is exported for hit testing.
func NormalizeAngle(a float64) float64 { return normAngle(a) }
