package seats

import (
	"github.com/shopspring/decimal"
)

// HoldResponse is a hold priced seat by seat
type HoldResponse struct {
	Hold
	Seats []Offer         `json:"seats"`
	Total decimal.Decimal `json:"total"`
}

type AvailabilityResponse struct {
	EventID string                `json:"eventId"`
	Seats   map[string]SeatStatus `json:"seats"`
}

type SessionHoldsResponse struct {
	SessionID string `json:"sessionId"`
	Holds     []Hold `json:"holds"`
}

// UnavailableResponse is the error payload of a refused request
type UnavailableResponse struct {
	SeatIDs []string `json:"seatIds"`
}
