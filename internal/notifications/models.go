package notifications

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SeatEventType names a change in seat availability
type SeatEventType string

const (
	SeatEventHoldCreated      SeatEventType = "HOLD_CREATED"
	SeatEventHoldReleased     SeatEventType = "HOLD_RELEASED"
	SeatEventHoldExpired      SeatEventType = "HOLD_EXPIRED"
	SeatEventBookingConfirmed SeatEventType = "BOOKING_CONFIRMED"
	SeatEventSeatsDisabled    SeatEventType = "SEATS_DISABLED"
	SeatEventSeatsEnabled     SeatEventType = "SEATS_ENABLED"
)

// RoutingKey is the AMQP topic a seat event is published under,
// e.g. "seats.hold_created".
func (t SeatEventType) RoutingKey() string {
	return "seats." + strings.ToLower(string(t))
}

// SeatEvent tells downstream consumers (live seat maps, reporting) which
// seats of an event changed state
type SeatEvent struct {
	ID         uuid.UUID     `json:"id"`
	Type       SeatEventType `json:"type"`
	EventID    string        `json:"event_id"`
	HoldID     string        `json:"hold_id,omitempty"`
	BookingID  string        `json:"booking_id,omitempty"`
	SessionID  string        `json:"session_id,omitempty"`
	SeatIDs    []string      `json:"seat_ids"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func NewSeatEvent(eventType SeatEventType, eventID string, seatIDs []string, at time.Time) *SeatEvent {
	if seatIDs == nil {
		seatIDs = []string{}
	}
	return &SeatEvent{
		ID:         uuid.New(),
		Type:       eventType,
		EventID:    eventID,
		SeatIDs:    seatIDs,
		OccurredAt: at.UTC(),
	}
}

func (e *SeatEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps every change of one event on one partition so
// consumers see them in order
func (e *SeatEvent) PartitionKey() string {
	return e.EventID
}
