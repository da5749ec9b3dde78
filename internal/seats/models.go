package seats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SeatStatus is the availability of one seat for one event
type SeatStatus string

const (
	StatusAvailable SeatStatus = "AVAILABLE"
	StatusSelected  SeatStatus = "SELECTED" // held by the session asking
	StatusHeld      SeatStatus = "HELD"
	StatusBooked    SeatStatus = "BOOKED"
	StatusDisabled  SeatStatus = "DISABLED"
)

var (
	ErrSeatUnavailable = errors.New("seats unavailable")
	ErrHoldExpired     = errors.New("hold expired")
	ErrHoldNotFound    = errors.New("hold not found")
	ErrInvalidRequest  = errors.New("invalid hold request")
	ErrEventNotFound   = errors.New("event not found")
)

// SeatUnavailableError lists exactly the seats that blocked a request.
// errors.Is(err, ErrSeatUnavailable) holds for it.
type SeatUnavailableError struct {
	SeatIDs []string
}

func newSeatUnavailable(ids []string) *SeatUnavailableError {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return &SeatUnavailableError{SeatIDs: out}
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatIDs, ", "))
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

// Hold is a time-limited exclusive claim of one session on a set of seats
type Hold struct {
	ID        string    `json:"holdId"`
	EventID   string    `json:"eventId"`
	SessionID string    `json:"sessionId"`
	SeatIDs   []string  `json:"seatIds"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the hold is void at now. A hold is still valid at
// the exact instant it expires.
func (h *Hold) Expired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

func (h Hold) clone() Hold {
	h.SeatIDs = append([]string(nil), h.SeatIDs...)
	return h
}

// Outcome is what a store mutation did. Conflicts is set when the mutation
// was refused; Expired lists holds voided while checking availability.
type Outcome struct {
	Hold      *Hold
	Conflicts []string
	Expired   []Hold
}

// SeatState is the authoritative state of one seat
type SeatState struct {
	Status    SeatStatus `json:"status"`
	HoldID    string     `json:"holdId,omitempty"`
	SessionID string     `json:"-"`
}

// Offer is how the catalog prices a seat for an event
type Offer struct {
	SeatID       string          `json:"seatId"`
	TicketTypeID string          `json:"ticketTypeId,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Bookable     bool            `json:"bookable"`
	Reason       string          `json:"reason,omitempty"` // unknown_seat, blocked, no_ticket, event_ended
}

const (
	ReasonUnknownSeat = "unknown_seat"
	ReasonBlocked     = "blocked"
	ReasonNoTicket    = "no_ticket"
	ReasonEventEnded  = "event_ended"
)

// BookedSeat is one line of a confirmed booking
type BookedSeat struct {
	SeatID       string          `json:"seatId"`
	TicketTypeID string          `json:"ticketTypeId"`
	Price        decimal.Decimal `json:"price"`
}

// Booking is the result of confirming a hold
type Booking struct {
	ID          string          `json:"bookingId"`
	Reference   string          `json:"reference"`
	HoldID      string          `json:"holdId"`
	EventID     string          `json:"eventId"`
	SessionID   string          `json:"sessionId"`
	Seats       []BookedSeat    `json:"seats"`
	Total       decimal.Decimal `json:"total"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}
