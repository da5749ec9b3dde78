package geometry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"seatmap/internal/layout"
)

// stadium has three stands weighted 1:2:1. North has an upper and a lower
// tier, the others hold sections directly. Every section has two rows of
// three seats.
func stadium(t *testing.T) *layout.Model {
	t.Helper()
	m, err := layout.New(layout.Node{ID: "arena", Name: "Arena"}, layout.LayoutStadium)
	require.NoError(t, err)

	add := func(n layout.Node, parent string) {
		t.Helper()
		require.NoError(t, m.AddNode(n, parent))
	}
	section := func(id, parent string, weight float64) {
		add(layout.Node{ID: id, Kind: layout.KindSection, VisualWeight: weight}, parent)
		for r := 0; r < 2; r++ {
			row := fmt.Sprintf("%s-r%d", id, r)
			add(layout.Node{ID: row, Kind: layout.KindRow}, id)
			for s := 1; s <= 3; s++ {
				add(layout.Node{ID: fmt.Sprintf("%s-s%d", row, s), Kind: layout.KindSeat, SeatNumber: s}, row)
			}
		}
	}

	add(layout.Node{ID: "north", Kind: layout.KindStand, VisualWeight: 1}, "arena")
	add(layout.Node{ID: "east", Kind: layout.KindStand, VisualWeight: 2}, "arena")
	add(layout.Node{ID: "south", Kind: layout.KindStand, VisualWeight: 1}, "arena")

	add(layout.Node{ID: "north-upper", Kind: layout.KindTier}, "north")
	add(layout.Node{ID: "north-lower", Kind: layout.KindTier}, "north")
	section("n1", "north-upper", 1)
	section("n2", "north-lower", 1)
	section("n3", "north-lower", 3)

	section("e1", "east", 1)
	section("e2", "east", 1)
	section("s1", "south", 1)
	return m
}

// theatre has stalls and a balcony placed in a 100x100 design canvas. The
// balcony's front row is curved.
func theatre(t *testing.T) *layout.Model {
	t.Helper()
	m, err := layout.New(layout.Node{ID: "hall", Name: "Hall"}, layout.LayoutTheatre)
	require.NoError(t, err)

	add := func(n layout.Node, parent string) {
		t.Helper()
		require.NoError(t, m.AddNode(n, parent))
	}
	rows := func(section string, n, seats int, curve float64) {
		for r := 0; r < n; r++ {
			row := fmt.Sprintf("%s-r%d", section, r)
			c := 0.0
			if r == 0 {
				c = curve
			}
			add(layout.Node{ID: row, Kind: layout.KindRow, Curve: c}, section)
			for s := 1; s <= seats; s++ {
				add(layout.Node{ID: fmt.Sprintf("%s-s%d", row, s), Kind: layout.KindSeat, SeatNumber: s}, row)
			}
		}
	}

	add(layout.Node{ID: "stalls", Kind: layout.KindSection, Placement: &layout.Placement{X: 0, Y: 0, Width: 100, Height: 50}}, "hall")
	add(layout.Node{ID: "balcony", Kind: layout.KindSection, Placement: &layout.Placement{X: 0, Y: 60, Width: 100, Height: 40}}, "hall")
	rows("stalls", 3, 4, 0)
	rows("balcony", 2, 4, 0.5)
	return m
}

func compute(t *testing.T, m *layout.Model, vp Viewport) *Geometry {
	t.Helper()
	g, err := Compute(m.Snapshot(), vp, DefaultOptions())
	require.NoError(t, err)
	return g
}
