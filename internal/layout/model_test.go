package layout

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStadium(t *testing.T) *Model {
	t.Helper()
	m, err := New(Node{ID: "venue", Name: "Arena"}, LayoutStadium)
	require.NoError(t, err)
	require.NoError(t, m.AddNode(Node{ID: "north", Kind: KindStand, Name: "North"}, "venue"))
	require.NoError(t, m.AddNode(Node{ID: "south", Kind: KindStand, Name: "South", VisualWeight: 2}, "venue"))
	require.NoError(t, m.AddNode(Node{ID: "n-lower", Kind: KindTier}, "north"))
	require.NoError(t, m.AddNode(Node{ID: "n-101", Kind: KindSection}, "n-lower"))
	require.NoError(t, m.AddNode(Node{ID: "n-101-a", Kind: KindRow}, "n-101"))
	require.NoError(t, m.AddNode(Node{ID: "n-101-a-1", Kind: KindSeat, SeatNumber: 1}, "n-101-a"))
	require.NoError(t, m.AddNode(Node{ID: "n-101-a-2", Kind: KindSeat, SeatNumber: 2}, "n-101-a"))
	return m
}

func TestNew_RejectsNonVenueRoot(t *testing.T) {
	_, err := New(Node{ID: "s", Kind: KindSection}, LayoutTheatre)
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = New(Node{}, LayoutTheatre)
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestAddNode_Defaults(t *testing.T) {
	m := newStadium(t)

	n, ok := m.Get("north")
	require.True(t, ok)
	assert.Equal(t, DefaultWeight, n.VisualWeight)
	assert.Equal(t, StatusActive, n.Status)
	assert.Equal(t, "venue", n.ParentID)
}

func TestAddNode_InvalidParent(t *testing.T) {
	m := newStadium(t)
	before := m.Version()

	err := m.AddNode(Node{ID: "x", Kind: KindSection}, "missing")
	assert.ErrorIs(t, err, ErrInvalidParent)

	err = m.AddNode(Node{ID: "x", Kind: KindSeat}, "n-101-a-1")
	assert.ErrorIs(t, err, ErrInvalidParent, "seats are leaves")

	err = m.AddNode(Node{ID: "x", Kind: KindSection}, "x")
	assert.ErrorIs(t, err, ErrInvalidParent)

	assert.Equal(t, before, m.Version())
	_, ok := m.Get("x")
	assert.False(t, ok)
}

func TestAddNode_RejectsDuplicateAndBadWeight(t *testing.T) {
	m := newStadium(t)

	assert.ErrorIs(t, m.AddNode(Node{ID: "north", Kind: KindStand}, "venue"), ErrDuplicateNode)
	assert.ErrorIs(t, m.AddNode(Node{ID: "east", Kind: KindStand, VisualWeight: -1}, "venue"), ErrInvalidWeight)
	assert.ErrorIs(t, m.AddNode(Node{ID: "east", Kind: KindStand, VisualWeight: math.NaN()}, "venue"), ErrInvalidWeight)
	assert.ErrorIs(t, m.AddNode(Node{ID: "east", Kind: KindVenue}, "venue"), ErrInvalidNode)
}

func TestGetChildren_InsertionOrder(t *testing.T) {
	m, err := New(Node{ID: "v"}, LayoutStadium)
	require.NoError(t, err)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, m.AddNode(Node{ID: id, Kind: KindStand}, "v"))
	}

	kids, err := m.GetChildren("v")
	require.NoError(t, err)
	require.Len(t, kids, 3)
	assert.Equal(t, "c", kids[0].ID)
	assert.Equal(t, "a", kids[1].ID)
	assert.Equal(t, "b", kids[2].ID)

	_, err = m.GetChildren("nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSetWeight(t *testing.T) {
	m := newStadium(t)

	assert.ErrorIs(t, m.SetWeight("north", 0), ErrInvalidWeight)
	assert.ErrorIs(t, m.SetWeight("north", -2), ErrInvalidWeight)
	assert.ErrorIs(t, m.SetWeight("ghost", 2), ErrNodeNotFound)

	v := m.Version()
	require.NoError(t, m.SetWeight("north", 3.5))
	n, _ := m.Get("north")
	assert.Equal(t, 3.5, n.VisualWeight)
	assert.Greater(t, m.Version(), v)
}

func TestRemoveNode_Cascades(t *testing.T) {
	m := newStadium(t)

	removed, err := m.RemoveNode("n-lower")
	require.NoError(t, err)
	assert.Equal(t, []string{"n-lower", "n-101", "n-101-a", "n-101-a-1", "n-101-a-2"}, removed)

	for _, id := range removed {
		_, ok := m.Get(id)
		assert.False(t, ok, id)
	}
	kids, err := m.GetChildren("north")
	require.NoError(t, err)
	assert.Empty(t, kids)

	_, err = m.RemoveNode("venue")
	assert.ErrorIs(t, err, ErrRootImmutable)
	_, err = m.RemoveNode("n-lower")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMoveNode_DetectsCycle(t *testing.T) {
	m := newStadium(t)
	before := m.Version()

	err := m.MoveNode("north", "n-101")
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.ErrorIs(t, err, ErrInvalidParent)

	err = m.MoveNode("north", "north")
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.Equal(t, before, m.Version())

	n, _ := m.Get("north")
	assert.Equal(t, "venue", n.ParentID)
}

func TestMoveNode_Reparents(t *testing.T) {
	m := newStadium(t)

	require.NoError(t, m.MoveNode("n-101", "south"))

	north, err := m.GetChildren("n-lower")
	require.NoError(t, err)
	assert.Empty(t, north)

	south, err := m.GetChildren("south")
	require.NoError(t, err)
	require.Len(t, south, 1)
	assert.Equal(t, "n-101", south[0].ID)
	assert.Equal(t, "south", south[0].ParentID)
}

func TestSnapshot_IsIsolated(t *testing.T) {
	m := newStadium(t)
	snap := m.Snapshot()

	require.NoError(t, m.SetWeight("north", 9))
	_, err := m.RemoveNode("n-101-a-2")
	require.NoError(t, err)

	n, ok := snap.Node("north")
	require.True(t, ok)
	assert.Equal(t, 1.0, n.VisualWeight)
	assert.Len(t, snap.Children("n-101-a"), 2)
	assert.Less(t, snap.Version(), m.Version())
}

func TestSnapshot_PathDepthAndBlocked(t *testing.T) {
	m := newStadium(t)
	require.NoError(t, m.SetStatus("n-101", StatusBlocked))
	snap := m.Snapshot()

	path := snap.Path("n-101-a-1")
	ids := make([]string, 0, len(path))
	for _, n := range path {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"venue", "north", "n-lower", "n-101", "n-101-a", "n-101-a-1"}, ids)
	assert.Equal(t, 5, snap.Depth("n-101-a-1"))
	assert.Equal(t, -1, snap.Depth("ghost"))

	assert.True(t, snap.Blocked("n-101-a-2"))
	assert.False(t, snap.Blocked("south"))

	seats := snap.Seats()
	require.Len(t, seats, 2)
	assert.Equal(t, "n-101-a-1", seats[0].ID)
}

func TestModel_ConcurrentReadersAndWriters(t *testing.T) {
	m := newStadium(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = m.SetWeight("south", float64(i+1))
		}(i)
		go func() {
			defer wg.Done()
			snap := m.Snapshot()
			assert.Equal(t, "venue", snap.Root().ID)
		}()
	}
	wg.Wait()

	n, _ := m.Get("south")
	assert.GreaterOrEqual(t, n.VisualWeight, 1.0)
}
