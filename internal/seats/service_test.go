package seats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"seatmap/internal/notifications"
	"seatmap/pkg/logger"
)

// priceList prices every seat of "gala" at 25 except the listed exceptions
type priceList struct {
	unknown  map[string]bool
	noTicket map[string]bool
}

func (p priceList) Offers(_ context.Context, eventID string, seatIDs []string) (map[string]Offer, error) {
	if eventID != "gala" {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	out := make(map[string]Offer, len(seatIDs))
	for _, id := range seatIDs {
		switch {
		case p.unknown[id]:
			out[id] = Offer{SeatID: id, Reason: ReasonUnknownSeat}
		case p.noTicket[id]:
			out[id] = Offer{SeatID: id, Reason: ReasonNoTicket}
		default:
			out[id] = Offer{SeatID: id, TicketTypeID: "GA", Price: decimal.NewFromInt(25), Bookable: true}
		}
	}
	return out, nil
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordBooking(ctx context.Context, booking *Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*notifications.SeatEvent
}

func (p *capturePublisher) Publish(_ context.Context, ev *notifications.SeatEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []notifications.SeatEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notifications.SeatEventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	svc      Service
	store    *MemoryStore
	clock    *clock
	pub      *capturePublisher
	recorder *mockRecorder
}

func newHarness(t *testing.T, catalog Catalog) *harness {
	t.Helper()
	h := &harness{
		store:    NewMemoryStore(time.Minute),
		clock:    &clock{now: t0},
		pub:      &capturePublisher{},
		recorder: &mockRecorder{},
	}
	var n atomic.Int64
	h.svc = NewService(h.store, Config{DefaultTTL: 5 * time.Minute, MaxTTL: 10 * time.Minute, MaxSeats: 4},
		WithClock(h.clock.Now),
		WithIDGenerator(func() string { return fmt.Sprintf("hold-%d", n.Add(1)) }),
		WithPublisher(h.pub),
		WithLogger(logger.Discard()),
	)
	if catalog != nil {
		h.svc.SetCatalog(catalog)
	}
	h.svc.SetBookingRecorder(h.recorder)
	return h
}

func TestService_HoldScenario(t *testing.T) {
	h := newHarness(t, priceList{})
	ctx := context.Background()

	first, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"S1", "S2"}, TTLSeconds: 300})
	require.NoError(t, err)
	assert.Equal(t, "hold-1", first.ID)
	assert.True(t, first.ExpiresAt.Equal(t0.Add(300*time.Second)))
	assert.Equal(t, "50", first.Total.String())

	_, err = h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "bob", SeatIDs: []string{"S2", "S3"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	var unavailable *SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []string{"S2"}, unavailable.SeatIDs)

	assert.Equal(t, []notifications.SeatEventType{notifications.SeatEventHoldCreated}, h.pub.types())
}

func TestService_TTLDefaultsAndCap(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	def, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "a", SeatIDs: []string{"A1"}})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, def.ExpiresAt.Sub(def.CreatedAt))

	capped, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "a", SeatIDs: []string{"A2"}, TTLSeconds: 3600})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, capped.ExpiresAt.Sub(capped.CreatedAt))
}

func TestService_RejectsInvalidRequests(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	cases := []HoldRequest{
		{SessionID: "a", SeatIDs: []string{"A1"}},
		{EventID: "gala", SeatIDs: []string{"A1"}},
		{EventID: "gala", SessionID: "a"},
		{EventID: "gala", SessionID: "a", SeatIDs: []string{""}},
		{EventID: "gala", SessionID: "a", SeatIDs: []string{"1", "2", "3", "4", "5"}},
	}
	for i, req := range cases {
		_, err := h.svc.RequestHold(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "case %d", i)
	}

	// duplicates collapse before the seat limit applies
	resp, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "a", SeatIDs: []string{"1", "1", "2", "2", "3"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, resp.SeatIDs)
}

func TestService_CatalogRefusals(t *testing.T) {
	h := newHarness(t, priceList{unknown: map[string]bool{"ghost": true}, noTicket: map[string]bool{"free": true}})
	ctx := context.Background()

	_, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "a", SeatIDs: []string{"ok", "ghost", "free"}})
	var unavailable *SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []string{"free", "ghost"}, unavailable.SeatIDs)

	states, err := h.store.States(ctx, "gala", []string{"ok"}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, states["ok"].Status, "refused before touching the store")

	_, err = h.svc.RequestHold(ctx, HoldRequest{EventID: "other", SessionID: "a", SeatIDs: []string{"ok"}})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestService_ConfirmRoundTrip(t *testing.T) {
	h := newHarness(t, priceList{})
	ctx := context.Background()

	held, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"B1", "B2"}})
	require.NoError(t, err)

	h.recorder.On("RecordBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.HoldID == held.ID && len(b.Seats) == 2
	})).Return(nil).Once()

	h.clock.Advance(time.Minute)
	booking, err := h.svc.ConfirmBooking(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", booking.Total.String())
	assert.Equal(t, "GA", booking.Seats[0].TicketTypeID)
	assert.Regexp(t, `^SM-[0-9A-F]{8}$`, booking.Reference)

	status, err := h.svc.Availability(ctx, "gala", "alice", []string{"B1", "B2"})
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, status["B1"])

	_, err = h.svc.ConfirmBooking(ctx, held.ID)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	h.recorder.AssertExpectations(t)
	assert.Equal(t, []notifications.SeatEventType{
		notifications.SeatEventHoldCreated,
		notifications.SeatEventBookingConfirmed,
	}, h.pub.types())
}

func TestService_CatalogRefusalsIncludeTakenSeats(t *testing.T) {
	h := newHarness(t, priceList{noTicket: map[string]bool{"free": true}})
	ctx := context.Background()

	_, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "b", SeatIDs: []string{"taken", "mine"}})
	require.NoError(t, err)
	_, err = h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "a", SeatIDs: []string{"own"}})
	require.NoError(t, err)

	_, err = h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "a", SeatIDs: []string{"free", "taken", "own", "ok"}})
	var unavailable *SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []string{"free", "taken"}, unavailable.SeatIDs)

	states, err := h.store.States(ctx, "gala", []string{"taken", "own", "ok"}, t0)
	require.NoError(t, err)
	assert.Equal(t, "b", states["taken"].SessionID)
	assert.Equal(t, "a", states["own"].SessionID)
	assert.Equal(t, StatusAvailable, states["ok"].Status)
}

func TestService_ConfirmRefusesSeatsNoLongerBookable(t *testing.T) {
	catalog := priceList{noTicket: map[string]bool{}}
	h := newHarness(t, catalog)
	ctx := context.Background()

	held, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"S1", "S2"}})
	require.NoError(t, err)

	catalog.noTicket["S1"] = true
	_, err = h.svc.ConfirmBooking(ctx, held.ID)
	var unavailable *SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []string{"S1"}, unavailable.SeatIDs)

	status, err := h.svc.Availability(ctx, "gala", "alice", []string{"S1", "S2"})
	require.NoError(t, err)
	assert.NotEqual(t, StatusBooked, status["S1"])
	assert.NotEqual(t, StatusBooked, status["S2"])

	still, err := h.store.Get(ctx, held.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, still.SeatIDs)

	h.recorder.AssertNotCalled(t, "RecordBooking", mock.Anything, mock.Anything)
	assert.NotContains(t, h.pub.types(), notifications.SeatEventBookingConfirmed)

	delete(catalog.noTicket, "S1")
	h.recorder.On("RecordBooking", mock.Anything, mock.Anything).Return(nil).Once()
	booking, err := h.svc.ConfirmBooking(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", booking.Total.String())
}

func TestService_ConfirmAfterExpiry(t *testing.T) {
	h := newHarness(t, priceList{})
	ctx := context.Background()

	held, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"C1"}, TTLSeconds: 60})
	require.NoError(t, err)

	h.clock.Advance(61 * time.Second)
	_, err = h.svc.ConfirmBooking(ctx, held.ID)
	assert.ErrorIs(t, err, ErrHoldExpired)

	status, err := h.svc.Availability(ctx, "gala", "", []string{"C1"})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, status["C1"])

	h.recorder.AssertNotCalled(t, "RecordBooking", mock.Anything, mock.Anything)
	assert.Contains(t, h.pub.types(), notifications.SeatEventHoldExpired)
}

func TestService_RecorderFailureKeepsBooking(t *testing.T) {
	h := newHarness(t, priceList{})
	ctx := context.Background()

	held, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"D1"}})
	require.NoError(t, err)
	h.recorder.On("RecordBooking", mock.Anything, mock.Anything).Return(errors.New("db down"))

	booking, err := h.svc.ConfirmBooking(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, held.ID, booking.HoldID)
}

func TestService_AvailabilityMarksOwnSeatsSelected(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"E1"}})
	require.NoError(t, err)
	require.NoError(t, h.svc.DisableSeats(ctx, "gala", []string{"E3"}))

	mine, err := h.svc.Availability(ctx, "gala", "alice", []string{"E1", "E2", "E3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]SeatStatus{"E1": StatusSelected, "E2": StatusAvailable, "E3": StatusDisabled}, mine)

	theirs, err := h.svc.Availability(ctx, "gala", "bob", []string{"E1"})
	require.NoError(t, err)
	assert.Equal(t, StatusHeld, theirs["E1"])
}

func TestService_DisableHeldSeatFails(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"F1"}})
	require.NoError(t, err)

	err = h.svc.DisableSeats(ctx, "gala", []string{"F1", "F2"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	assert.ErrorIs(t, h.svc.EnableSeats(ctx, "gala", nil), ErrInvalidRequest)
}

func TestService_SweepPublishesExpiry(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.RequestHold(ctx, HoldRequest{EventID: "gala", SessionID: "alice", SeatIDs: []string{"G1"}, TTLSeconds: 1})
	require.NoError(t, err)

	n, err := h.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.clock.Advance(2 * time.Second)
	n, err = h.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, notifications.SeatEventHoldExpired, h.pub.types()[1])
}

func TestService_RunSweeperStopsWithContext(t *testing.T) {
	h := newHarness(t, nil)
	svc := NewService(h.store, Config{SweepInterval: time.Millisecond}, WithLogger(logger.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunSweeper(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestService_ConcurrentHoldsAreExclusive(t *testing.T) {
	h := newHarness(t, priceList{})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		refused int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.svc.RequestHold(ctx, HoldRequest{
				EventID:   "gala",
				SessionID: fmt.Sprintf("s-%d", i),
				SeatIDs:   []string{"Z1", "Z2"},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				granted++
			} else if errors.Is(err, ErrSeatUnavailable) {
				refused++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, 39, refused)
}
