package seats

import (
	"context"
	"sort"
	"sync"
	"time"

	"seatmap/internal/shared/constants"
)

// eventState is the seat state of one event, serialised by its own mutex
type eventState struct {
	mu       sync.Mutex
	seatHold map[string]string // seat id -> hold id
	booked   map[string]struct{}
	disabled map[string]struct{}
	holds    map[string]*Hold
}

func newEventState() *eventState {
	return &eventState{
		seatHold: make(map[string]string),
		booked:   make(map[string]struct{}),
		disabled: make(map[string]struct{}),
		holds:    make(map[string]*Hold),
	}
}

// MemoryStore keeps seat state in process. Lock order is event mutex first,
// then the store mutex; the store mutex is never held while taking an
// event mutex.
type MemoryStore struct {
	mu           sync.Mutex
	events       map[string]*eventState
	index        map[string]string              // hold id -> event id
	sessions     map[string]map[string]struct{} // session id -> hold ids
	tombstones   map[string]time.Time           // hold id -> forget after
	tombstoneTTL time.Duration
}

func NewMemoryStore(tombstoneTTL time.Duration) *MemoryStore {
	if tombstoneTTL <= 0 {
		tombstoneTTL = constants.TTL_HOLD_TOMBSTONE
	}
	return &MemoryStore{
		events:       make(map[string]*eventState),
		index:        make(map[string]string),
		sessions:     make(map[string]map[string]struct{}),
		tombstones:   make(map[string]time.Time),
		tombstoneTTL: tombstoneTTL,
	}
}

func (s *MemoryStore) event(eventID string) *eventState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		ev = newEventState()
		s.events[eventID] = ev
	}
	return ev
}

func (s *MemoryStore) lookup(holdID string) (*eventState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventID, ok := s.index[holdID]
	if !ok {
		return nil, false
	}
	return s.events[eventID], true
}

// missing tells an expired hold from one that never existed
func (s *MemoryStore) missing(holdID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.tombstones[holdID]; ok {
		if !now.After(until) {
			return ErrHoldExpired
		}
		delete(s.tombstones, holdID)
	}
	return ErrHoldNotFound
}

// add and drop require ev.mu.
func (s *MemoryStore) add(ev *eventState, h *Hold) {
	ev.holds[h.ID] = h
	for _, seat := range h.SeatIDs {
		ev.seatHold[seat] = h.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[h.ID] = h.EventID
	if s.sessions[h.SessionID] == nil {
		s.sessions[h.SessionID] = make(map[string]struct{})
	}
	s.sessions[h.SessionID][h.ID] = struct{}{}
}

func (s *MemoryStore) drop(ev *eventState, h *Hold, tombstone bool, now time.Time) {
	for _, seat := range h.SeatIDs {
		if ev.seatHold[seat] == h.ID {
			delete(ev.seatHold, seat)
		}
	}
	delete(ev.holds, h.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.index, h.ID)
	if ids := s.sessions[h.SessionID]; ids != nil {
		delete(ids, h.ID)
		if len(ids) == 0 {
			delete(s.sessions, h.SessionID)
		}
	}
	if tombstone {
		s.tombstones[h.ID] = now.Add(s.tombstoneTTL)
	}
}

// holder returns the active hold on seat. An expired holder is voided and
// recorded in expired. Requires ev.mu.
func (s *MemoryStore) holder(ev *eventState, seat string, now time.Time, expired *[]Hold) *Hold {
	id, ok := ev.seatHold[seat]
	if !ok {
		return nil
	}
	h := ev.holds[id]
	if h == nil {
		delete(ev.seatHold, seat)
		return nil
	}
	if h.Expired(now) {
		*expired = append(*expired, h.clone())
		s.drop(ev, h, true, now)
		return nil
	}
	return h
}

func (s *MemoryStore) Hold(_ context.Context, hold Hold, now time.Time) (Outcome, error) {
	ev := s.event(hold.EventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	var out Outcome
	moved := make(map[string]*Hold)
	for _, seat := range hold.SeatIDs {
		if _, ok := ev.disabled[seat]; ok {
			out.Conflicts = append(out.Conflicts, seat)
			continue
		}
		if _, ok := ev.booked[seat]; ok {
			out.Conflicts = append(out.Conflicts, seat)
			continue
		}
		if h := s.holder(ev, seat, now, &out.Expired); h != nil {
			if h.SessionID != hold.SessionID {
				out.Conflicts = append(out.Conflicts, seat)
				continue
			}
			moved[seat] = h
		}
	}
	if len(out.Conflicts) > 0 {
		return out, nil
	}

	for seat, old := range moved {
		old.SeatIDs = without(old.SeatIDs, seat)
		delete(ev.seatHold, seat)
		if len(old.SeatIDs) == 0 {
			s.drop(ev, old, false, now)
		}
	}

	h := hold.clone()
	s.add(ev, &h)
	created := h.clone()
	out.Hold = &created
	return out, nil
}

func (s *MemoryStore) Release(_ context.Context, holdID string, now time.Time) (Outcome, error) {
	return s.finish(holdID, now, nil)
}

func (s *MemoryStore) Confirm(_ context.Context, holdID string, now time.Time) (Outcome, error) {
	return s.finish(holdID, now, func(ev *eventState, h *Hold) {
		for _, seat := range h.SeatIDs {
			ev.booked[seat] = struct{}{}
		}
	})
}

// finish ends an active hold, applying fn to it first. An expired hold is
// voided instead and reported as ErrHoldExpired.
func (s *MemoryStore) finish(holdID string, now time.Time, fn func(ev *eventState, h *Hold)) (Outcome, error) {
	ev, ok := s.lookup(holdID)
	if !ok {
		return Outcome{}, s.missing(holdID, now)
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()

	h, ok := ev.holds[holdID]
	if !ok {
		return Outcome{}, s.missing(holdID, now)
	}
	done := h.clone()
	if h.Expired(now) {
		s.drop(ev, h, true, now)
		return Outcome{Expired: []Hold{done}}, ErrHoldExpired
	}
	if fn != nil {
		fn(ev, h)
	}
	s.drop(ev, h, false, now)
	return Outcome{Hold: &done}, nil
}

func (s *MemoryStore) Get(_ context.Context, holdID string, now time.Time) (*Hold, error) {
	ev, ok := s.lookup(holdID)
	if !ok {
		return nil, s.missing(holdID, now)
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()

	h, ok := ev.holds[holdID]
	if !ok {
		return nil, s.missing(holdID, now)
	}
	if h.Expired(now) {
		return nil, ErrHoldExpired
	}
	out := h.clone()
	return &out, nil
}

func (s *MemoryStore) SessionHolds(_ context.Context, sessionID string, now time.Time) ([]Hold, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions[sessionID]))
	for id := range s.sessions[sessionID] {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	holds := make([]Hold, 0, len(ids))
	for _, id := range ids {
		ev, ok := s.lookup(id)
		if !ok {
			continue
		}
		ev.mu.Lock()
		if h, ok := ev.holds[id]; ok && !h.Expired(now) {
			holds = append(holds, h.clone())
		}
		ev.mu.Unlock()
	}
	sortHolds(holds)
	return holds, nil
}

func (s *MemoryStore) Disable(_ context.Context, eventID string, seatIDs []string, now time.Time) (Outcome, error) {
	ev := s.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	var out Outcome
	for _, seat := range seatIDs {
		if _, ok := ev.booked[seat]; ok {
			out.Conflicts = append(out.Conflicts, seat)
			continue
		}
		if h := s.holder(ev, seat, now, &out.Expired); h != nil {
			out.Conflicts = append(out.Conflicts, seat)
		}
	}
	if len(out.Conflicts) > 0 {
		return out, nil
	}
	for _, seat := range seatIDs {
		ev.disabled[seat] = struct{}{}
	}
	return out, nil
}

func (s *MemoryStore) Enable(_ context.Context, eventID string, seatIDs []string) error {
	ev := s.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()
	for _, seat := range seatIDs {
		delete(ev.disabled, seat)
	}
	return nil
}

func (s *MemoryStore) States(_ context.Context, eventID string, seatIDs []string, now time.Time) (map[string]SeatState, error) {
	ev := s.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	states := make(map[string]SeatState, len(seatIDs))
	for _, seat := range seatIDs {
		state := SeatState{Status: StatusAvailable}
		if _, ok := ev.disabled[seat]; ok {
			state.Status = StatusDisabled
		} else if _, ok := ev.booked[seat]; ok {
			state.Status = StatusBooked
		} else if id, ok := ev.seatHold[seat]; ok {
			if h := ev.holds[id]; h != nil && !h.Expired(now) {
				state = SeatState{Status: StatusHeld, HoldID: h.ID, SessionID: h.SessionID}
			}
		}
		states[seat] = state
	}
	return states, nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time, limit int) ([]Hold, error) {
	s.mu.Lock()
	events := make([]*eventState, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	for id, until := range s.tombstones {
		if now.After(until) {
			delete(s.tombstones, id)
		}
	}
	s.mu.Unlock()

	var expired []Hold
	for _, ev := range events {
		ev.mu.Lock()
		for _, h := range ev.holds {
			if limit > 0 && len(expired) >= limit {
				break
			}
			if h.Expired(now) {
				expired = append(expired, h.clone())
				s.drop(ev, h, true, now)
			}
		}
		ev.mu.Unlock()
	}
	sortHolds(expired)
	return expired, nil
}

func (s *MemoryStore) Forget(_ context.Context, eventID string, seatIDs []string) error {
	ev := s.event(eventID)
	ev.mu.Lock()
	defer ev.mu.Unlock()

	for _, seat := range seatIDs {
		delete(ev.booked, seat)
		delete(ev.disabled, seat)
		id, ok := ev.seatHold[seat]
		if !ok {
			continue
		}
		delete(ev.seatHold, seat)
		if h := ev.holds[id]; h != nil {
			h.SeatIDs = without(h.SeatIDs, seat)
			if len(h.SeatIDs) == 0 {
				s.drop(ev, h, false, time.Time{})
			}
		}
	}
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortHolds(holds []Hold) {
	sort.Slice(holds, func(i, j int) bool {
		if holds[i].CreatedAt.Equal(holds[j].CreatedAt) {
			return holds[i].ID < holds[j].ID
		}
		return holds[i].CreatedAt.Before(holds[j].CreatedAt)
	})
}
