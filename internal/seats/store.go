package seats

import (
	"context"
	"time"
)

// Store is the authoritative seat state of every event. Each method is
// atomic with respect to the seats it touches, and every availability check
// voids expired holds before looking at them. Time is passed in so callers
// own the clock.
type Store interface {
	// Hold claims all of hold.SeatIDs or none. On conflict the outcome
	// lists the blocking seats and no hold is created.
	Hold(ctx context.Context, hold Hold, now time.Time) (Outcome, error)
	Release(ctx context.Context, holdID string, now time.Time) (Outcome, error)
	// Confirm books the hold's seats and deletes the hold.
	Confirm(ctx context.Context, holdID string, now time.Time) (Outcome, error)
	Get(ctx context.Context, holdID string, now time.Time) (*Hold, error)
	SessionHolds(ctx context.Context, sessionID string, now time.Time) ([]Hold, error)

	Disable(ctx context.Context, eventID string, seatIDs []string, now time.Time) (Outcome, error)
	Enable(ctx context.Context, eventID string, seatIDs []string) error
	States(ctx context.Context, eventID string, seatIDs []string, now time.Time) (map[string]SeatState, error)

	// Sweep voids up to limit holds that expired before now.
	Sweep(ctx context.Context, now time.Time, limit int) ([]Hold, error)
	// Forget drops every trace of seats that no longer exist in the layout.
	Forget(ctx context.Context, eventID string, seatIDs []string) error
}
