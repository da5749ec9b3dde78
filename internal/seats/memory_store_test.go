package seats

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

func hold(id, session string, ttl time.Duration, seats ...string) Hold {
	return Hold{
		ID:        id,
		EventID:   "gala",
		SessionID: session,
		SeatIDs:   seats,
		CreatedAt: t0,
		ExpiresAt: t0.Add(ttl),
	}
}

func TestMemoryStore_ConflictListsExactlyTheBlockingSeats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	out, err := s.Hold(ctx, hold("h1", "alice", 300*time.Second, "S1", "S2"), t0)
	require.NoError(t, err)
	require.NotNil(t, out.Hold)

	out, err = s.Hold(ctx, hold("h2", "bob", 300*time.Second, "S2", "S3"), t0)
	require.NoError(t, err)
	assert.Nil(t, out.Hold)
	assert.Equal(t, []string{"S2"}, out.Conflicts)

	states, err := s.States(ctx, "gala", []string{"S1", "S2", "S3"}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusHeld, states["S1"].Status)
	assert.Equal(t, "h1", states["S2"].HoldID)
	assert.Equal(t, StatusAvailable, states["S3"].Status, "a refused hold claims nothing")
}

func TestMemoryStore_ExpiredHoldIsVoidBeforeItBlocks(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "A1", "A2"), t0)
	require.NoError(t, err)

	later := t0.Add(time.Minute + time.Millisecond)
	out, err := s.Hold(ctx, hold("h2", "bob", time.Minute, "A2"), later)
	require.NoError(t, err)
	require.NotNil(t, out.Hold)
	require.Len(t, out.Expired, 1)
	assert.Equal(t, "h1", out.Expired[0].ID)

	states, err := s.States(ctx, "gala", []string{"A1"}, later)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, states["A1"].Status, "voiding frees the whole hold")

	_, err = s.Confirm(ctx, "h1", later)
	assert.ErrorIs(t, err, ErrHoldExpired, "tombstone outlives the hold")

	_, err = s.Confirm(ctx, "h1", later.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrHoldNotFound, "tombstone is forgotten after its ttl")
}

func TestMemoryStore_HoldIsValidAtItsExpiryInstant(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "A1"), t0)
	require.NoError(t, err)

	out, err := s.Confirm(ctx, "h1", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, out.Hold.SeatIDs)
}

func TestMemoryStore_ConfirmRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "B1", "B2"), t0)
	require.NoError(t, err)

	out, err := s.Confirm(ctx, "h1", t0.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Hold.SessionID)

	_, err = s.Get(ctx, "h1", t0.Add(time.Second))
	assert.ErrorIs(t, err, ErrHoldNotFound, "confirm deletes the hold")

	states, err := s.States(ctx, "gala", []string{"B1", "B2"}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, states["B1"].Status)
	assert.Equal(t, StatusBooked, states["B2"].Status)

	out, err = s.Hold(ctx, hold("h2", "alice", time.Minute, "B1"), t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, out.Conflicts, "booked seats never expire")
}

func TestMemoryStore_ReleaseFreesSeats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "C1"), t0)
	require.NoError(t, err)

	out, err := s.Release(ctx, "h1", t0)
	require.NoError(t, err)
	assert.Equal(t, "h1", out.Hold.ID)

	_, err = s.Release(ctx, "h1", t0)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	out, err = s.Hold(ctx, hold("h2", "bob", time.Minute, "C1"), t0)
	require.NoError(t, err)
	assert.NotNil(t, out.Hold)
}

func TestMemoryStore_SameSessionMovesSeats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "D1", "D2"), t0)
	require.NoError(t, err)
	_, err = s.Hold(ctx, hold("h2", "alice", time.Minute, "D2", "D3"), t0)
	require.NoError(t, err)

	h1, err := s.Get(ctx, "h1", t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1"}, h1.SeatIDs)

	_, err = s.Hold(ctx, hold("h3", "alice", time.Minute, "D1"), t0)
	require.NoError(t, err)
	_, err = s.Get(ctx, "h1", t0)
	assert.ErrorIs(t, err, ErrHoldNotFound, "emptied hold is deleted")

	holds, err := s.SessionHolds(ctx, "alice", t0)
	require.NoError(t, err)
	require.Len(t, holds, 2)
	ids := []string{holds[0].ID, holds[1].ID}
	assert.ElementsMatch(t, []string{"h2", "h3"}, ids)
}

func TestMemoryStore_DisableAndEnable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "E1"), t0)
	require.NoError(t, err)

	out, err := s.Disable(ctx, "gala", []string{"E1", "E2"}, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"E1"}, out.Conflicts)

	states, err := s.States(ctx, "gala", []string{"E2"}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, states["E2"].Status, "disable is all or nothing")

	out, err = s.Disable(ctx, "gala", []string{"E2"}, t0)
	require.NoError(t, err)
	assert.Empty(t, out.Conflicts)

	out, err = s.Hold(ctx, hold("h2", "bob", time.Minute, "E2"), t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"E2"}, out.Conflicts)

	require.NoError(t, s.Enable(ctx, "gala", []string{"E2"}))
	out, err = s.Hold(ctx, hold("h3", "bob", time.Minute, "E2"), t0)
	require.NoError(t, err)
	assert.NotNil(t, out.Hold)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Hold(ctx, hold("short", "alice", time.Second, "F1"), t0)
	require.NoError(t, err)
	_, err = s.Hold(ctx, hold("long", "bob", time.Hour, "F2"), t0)
	require.NoError(t, err)

	swept, err := s.Sweep(ctx, t0.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, "short", swept[0].ID)

	_, err = s.Get(ctx, "short", t0.Add(time.Minute))
	assert.ErrorIs(t, err, ErrHoldExpired)
	_, err = s.Get(ctx, "long", t0.Add(time.Minute))
	assert.NoError(t, err)
}

func TestMemoryStore_ForgetShrinksHolds(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Hold(ctx, hold("h1", "alice", time.Minute, "G1", "G2"), t0)
	require.NoError(t, err)
	_, err = s.Hold(ctx, hold("h2", "bob", time.Minute, "G3"), t0)
	require.NoError(t, err)

	require.NoError(t, s.Forget(ctx, "gala", []string{"G2", "G3"}))

	h1, err := s.Get(ctx, "h1", t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"G1"}, h1.SeatIDs)

	_, err = s.Get(ctx, "h2", t0)
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestMemoryStore_ConcurrentRequestsAreExclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	const sessions = 50
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  []string
		start = make(chan struct{})
	)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// every request overlaps every other one on X2
			seats := []string{fmt.Sprintf("X%d", i+10), "X2"}
			out, err := s.Hold(ctx, Hold{
				ID:        fmt.Sprintf("h%d", i),
				EventID:   "gala",
				SessionID: fmt.Sprintf("session-%d", i),
				SeatIDs:   seats,
				CreatedAt: t0,
				ExpiresAt: t0.Add(time.Minute),
			}, t0)
			assert.NoError(t, err)
			if out.Hold != nil {
				mu.Lock()
				wins = append(wins, out.Hold.ID)
				mu.Unlock()
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Len(t, wins, 1)
	states, err := s.States(ctx, "gala", []string{"X2"}, t0)
	require.NoError(t, err)
	assert.Equal(t, wins[0], states["X2"].HoldID)
}
