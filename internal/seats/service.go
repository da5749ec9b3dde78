package seats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"seatmap/internal/notifications"
	"seatmap/internal/shared/constants"
	"seatmap/pkg/logger"
)

// Catalog prices seats of an event. Unknown events return ErrEventNotFound.
type Catalog interface {
	Offers(ctx context.Context, eventID string, seatIDs []string) (map[string]Offer, error)
}

// BookingRecorder persists confirmed bookings
type BookingRecorder interface {
	RecordBooking(ctx context.Context, booking *Booking) error
}

type Config struct {
	DefaultTTL    time.Duration
	MaxTTL        time.Duration
	MaxSeats      int
	SweepInterval time.Duration
	SweepBatch    int
}

func DefaultConfig() Config {
	return Config{
		DefaultTTL:    constants.TTL_HOLD_DEFAULT,
		MaxTTL:        30 * time.Minute,
		MaxSeats:      20,
		SweepInterval: 5 * time.Second,
		SweepBatch:    500,
	}
}

type Service interface {
	SetCatalog(catalog Catalog)
	SetBookingRecorder(recorder BookingRecorder)

	RequestHold(ctx context.Context, req HoldRequest) (*HoldResponse, error)
	ReleaseHold(ctx context.Context, holdID string) error
	ConfirmBooking(ctx context.Context, holdID string) (*Booking, error)
	GetHold(ctx context.Context, holdID string) (*HoldResponse, error)
	SessionHolds(ctx context.Context, sessionID string) ([]Hold, error)

	DisableSeats(ctx context.Context, eventID string, seatIDs []string) error
	EnableSeats(ctx context.Context, eventID string, seatIDs []string) error
	// Availability reports seats held by sessionID as SELECTED.
	Availability(ctx context.Context, eventID, sessionID string, seatIDs []string) (map[string]SeatStatus, error)
	States(ctx context.Context, eventID string, seatIDs []string) (map[string]SeatState, error)
	DropSeats(ctx context.Context, eventID string, seatIDs []string) error

	Sweep(ctx context.Context) (int, error)
	RunSweeper(ctx context.Context)
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

func WithPublisher(p notifications.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *service) { s.log = l }
}

type service struct {
	store     Store
	catalog   Catalog
	recorder  BookingRecorder
	publisher notifications.Publisher
	cfg       Config
	validate  *validator.Validate
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(store Store, cfg Config, opts ...Option) Service {
	def := DefaultConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.MaxTTL < cfg.DefaultTTL {
		cfg.MaxTTL = cfg.DefaultTTL
	}
	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = def.MaxSeats
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = def.SweepBatch
	}

	s := &service{
		store:     store,
		publisher: notifications.NewNoopPublisher(),
		cfg:       cfg,
		validate:  validator.New(),
		log:       logger.GetDefault(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("seats")
	return s
}

func (s *service) SetCatalog(catalog Catalog) {
	s.catalog = catalog
}

func (s *service) SetBookingRecorder(recorder BookingRecorder) {
	s.recorder = recorder
}

func (s *service) RequestHold(ctx context.Context, req HoldRequest) (*HoldResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	seatIDs := dedupe(req.SeatIDs)
	if len(seatIDs) > s.cfg.MaxSeats {
		return nil, fmt.Errorf("%w: at most %d seats per hold", ErrInvalidRequest, s.cfg.MaxSeats)
	}

	ttl := s.cfg.DefaultTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}
	if ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}

	offers, err := s.offers(ctx, req.EventID, seatIDs)
	if err != nil {
		return nil, err
	}
	if offers != nil {
		var refused []string
		for _, id := range seatIDs {
			if !offers[id].Bookable {
				refused = append(refused, id)
			}
		}
		if len(refused) > 0 {
			taken, err := s.contested(ctx, req.EventID, req.SessionID, seatIDs, offers)
			if err != nil {
				return nil, err
			}
			refused = append(refused, taken...)
			s.log.LogHoldRejected(ctx, req.EventID, req.SessionID, refused)
			return nil, newSeatUnavailable(refused)
		}
	}

	now := s.now()
	hold := Hold{
		ID:        s.newID(),
		EventID:   req.EventID,
		SessionID: req.SessionID,
		SeatIDs:   seatIDs,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	out, err := s.store.Hold(ctx, hold, now)
	if err != nil {
		return nil, fmt.Errorf("failed to hold seats: %w", err)
	}
	s.expired(ctx, out.Expired)
	if len(out.Conflicts) > 0 {
		s.log.LogHoldRejected(ctx, req.EventID, req.SessionID, out.Conflicts)
		return nil, newSeatUnavailable(out.Conflicts)
	}

	created := out.Hold
	s.log.LogHoldCreated(ctx, created.ID, created.EventID, created.SessionID, len(created.SeatIDs))
	s.publish(ctx, notifications.SeatEventHoldCreated, created, "")
	return priced(created, offers), nil
}

// contested reports the bookable seats among seatIDs that the store would
// refuse to sessionID, without claiming anything.
func (s *service) contested(ctx context.Context, eventID, sessionID string, seatIDs []string, offers map[string]Offer) ([]string, error) {
	var bookable []string
	for _, id := range seatIDs {
		if offers[id].Bookable {
			bookable = append(bookable, id)
		}
	}
	if len(bookable) == 0 {
		return nil, nil
	}
	states, err := s.store.States(ctx, eventID, bookable, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check seat states: %w", err)
	}
	var taken []string
	for _, id := range bookable {
		st := states[id]
		switch {
		case st.Status == StatusAvailable:
		case st.Status == StatusHeld && st.SessionID == sessionID:
		default:
			taken = append(taken, id)
		}
	}
	return taken, nil
}

func (s *service) ReleaseHold(ctx context.Context, holdID string) error {
	out, err := s.store.Release(ctx, holdID, s.now())
	s.expired(ctx, out.Expired)
	if err != nil {
		return s.wrap(err, "failed to release hold")
	}
	s.log.LogHoldReleased(ctx, out.Hold.ID, out.Hold.EventID)
	s.publish(ctx, notifications.SeatEventHoldReleased, out.Hold, "")
	return nil
}

func (s *service) ConfirmBooking(ctx context.Context, holdID string) (*Booking, error) {
	now := s.now()

	var offers map[string]Offer
	if h, err := s.store.Get(ctx, holdID, now); err == nil {
		if offers, err = s.offers(ctx, h.EventID, h.SeatIDs); err != nil {
			return nil, err
		}
		if offers != nil {
			var refused []string
			for _, id := range h.SeatIDs {
				if !offers[id].Bookable {
					refused = append(refused, id)
				}
			}
			// The hold stays in place; the client may release it or let it expire.
			if len(refused) > 0 {
				s.log.LogHoldRejected(ctx, h.EventID, h.SessionID, refused)
				return nil, newSeatUnavailable(refused)
			}
		}
	}

	out, err := s.store.Confirm(ctx, holdID, now)
	s.expired(ctx, out.Expired)
	if err != nil {
		return nil, s.wrap(err, "failed to confirm booking")
	}

	h := out.Hold
	bookingID := uuid.New()
	booking := &Booking{
		ID:          bookingID.String(),
		Reference:   reference(bookingID),
		HoldID:      h.ID,
		EventID:     h.EventID,
		SessionID:   h.SessionID,
		Seats:       make([]BookedSeat, 0, len(h.SeatIDs)),
		Total:       decimal.Zero,
		ConfirmedAt: now.UTC(),
	}
	for _, id := range h.SeatIDs {
		offer := offers[id]
		booking.Seats = append(booking.Seats, BookedSeat{SeatID: id, TicketTypeID: offer.TicketTypeID, Price: offer.Price})
		booking.Total = booking.Total.Add(offer.Price)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordBooking(ctx, booking); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to record booking", err, map[string]interface{}{
				"booking_id": booking.ID,
				"hold_id":    h.ID,
			})
		}
	}

	s.log.LogBookingConfirmed(ctx, booking.ID, h.ID, h.EventID, len(booking.Seats))
	s.publish(ctx, notifications.SeatEventBookingConfirmed, h, booking.ID)
	return booking, nil
}

func (s *service) GetHold(ctx context.Context, holdID string) (*HoldResponse, error) {
	h, err := s.store.Get(ctx, holdID, s.now())
	if err != nil {
		return nil, s.wrap(err, "failed to get hold")
	}
	offers, err := s.offers(ctx, h.EventID, h.SeatIDs)
	if err != nil {
		return nil, err
	}
	return priced(h, offers), nil
}

func (s *service) SessionHolds(ctx context.Context, sessionID string) ([]Hold, error) {
	holds, err := s.store.SessionHolds(ctx, sessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list session holds: %w", err)
	}
	return holds, nil
}

func (s *service) DisableSeats(ctx context.Context, eventID string, seatIDs []string) error {
	seatIDs = dedupe(seatIDs)
	if eventID == "" || len(seatIDs) == 0 {
		return ErrInvalidRequest
	}
	out, err := s.store.Disable(ctx, eventID, seatIDs, s.now())
	if err != nil {
		return fmt.Errorf("failed to disable seats: %w", err)
	}
	s.expired(ctx, out.Expired)
	if len(out.Conflicts) > 0 {
		return newSeatUnavailable(out.Conflicts)
	}
	s.publishSeats(ctx, notifications.SeatEventSeatsDisabled, eventID, seatIDs)
	return nil
}

func (s *service) EnableSeats(ctx context.Context, eventID string, seatIDs []string) error {
	seatIDs = dedupe(seatIDs)
	if eventID == "" || len(seatIDs) == 0 {
		return ErrInvalidRequest
	}
	if err := s.store.Enable(ctx, eventID, seatIDs); err != nil {
		return fmt.Errorf("failed to enable seats: %w", err)
	}
	s.publishSeats(ctx, notifications.SeatEventSeatsEnabled, eventID, seatIDs)
	return nil
}

func (s *service) States(ctx context.Context, eventID string, seatIDs []string) (map[string]SeatState, error) {
	states, err := s.store.States(ctx, eventID, dedupe(seatIDs), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to read seat states: %w", err)
	}
	return states, nil
}

func (s *service) Availability(ctx context.Context, eventID, sessionID string, seatIDs []string) (map[string]SeatStatus, error) {
	states, err := s.States(ctx, eventID, seatIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]SeatStatus, len(states))
	for id, st := range states {
		status := st.Status
		if status == StatusHeld && sessionID != "" && st.SessionID == sessionID {
			status = StatusSelected
		}
		out[id] = status
	}
	return out, nil
}

func (s *service) DropSeats(ctx context.Context, eventID string, seatIDs []string) error {
	if err := s.store.Forget(ctx, eventID, seatIDs); err != nil {
		return fmt.Errorf("failed to drop seats: %w", err)
	}
	return nil
}

// Sweep voids holds that have expired. Expiry is already enforced on every
// availability check; sweeping only frees the storage early.
func (s *service) Sweep(ctx context.Context) (int, error) {
	holds, err := s.store.Sweep(ctx, s.now(), s.cfg.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep holds: %w", err)
	}
	s.expired(ctx, holds)
	return len(holds), nil
}

func (s *service) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.log.Info("Hold sweeper started", "interval", s.cfg.SweepInterval.String())
	for {
		select {
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.WithError(err).Error("Hold sweep failed")
			}
		case <-ctx.Done():
			s.log.Info("Hold sweeper stopped")
			return
		}
	}
}

func (s *service) offers(ctx context.Context, eventID string, seatIDs []string) (map[string]Offer, error) {
	if s.catalog == nil {
		return nil, nil
	}
	offers, err := s.catalog.Offers(ctx, eventID, seatIDs)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to price seats: %w", err)
	}
	return offers, nil
}

func (s *service) expired(ctx context.Context, holds []Hold) {
	if len(holds) == 0 {
		return
	}
	ids := make([]string, len(holds))
	for i := range holds {
		ids[i] = holds[i].ID
		s.publish(ctx, notifications.SeatEventHoldExpired, &holds[i], "")
	}
	s.log.LogHoldsExpired(ctx, ids)
}

func (s *service) publish(ctx context.Context, t notifications.SeatEventType, h *Hold, bookingID string) {
	ev := notifications.NewSeatEvent(t, h.EventID, h.SeatIDs, s.now())
	ev.HoldID = h.ID
	ev.SessionID = h.SessionID
	ev.BookingID = bookingID
	s.send(ctx, ev)
}

func (s *service) publishSeats(ctx context.Context, t notifications.SeatEventType, eventID string, seatIDs []string) {
	s.send(ctx, notifications.NewSeatEvent(t, eventID, seatIDs, s.now()))
}

func (s *service) send(ctx context.Context, ev *notifications.SeatEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WarnContext(ctx, "Failed to publish seat event",
			"type", string(ev.Type), "event_id", ev.EventID)
	}
}

// wrap keeps the store's sentinel errors visible to callers
func (s *service) wrap(err error, msg string) error {
	if errors.Is(err, ErrHoldExpired) || errors.Is(err, ErrHoldNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func priced(h *Hold, offers map[string]Offer) *HoldResponse {
	resp := &HoldResponse{Hold: *h, Seats: make([]Offer, 0, len(h.SeatIDs)), Total: decimal.Zero}
	for _, id := range h.SeatIDs {
		offer, ok := offers[id]
		if !ok {
			offer = Offer{SeatID: id, Bookable: true}
		}
		resp.Seats = append(resp.Seats, offer)
		resp.Total = resp.Total.Add(offer.Price)
	}
	return resp
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// reference is the short booking code shown to customers, e.g. "SM-1A2B3C4D"
func reference(id uuid.UUID) string {
	return "SM-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
