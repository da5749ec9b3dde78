package bookings

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	BookingID   string           `json:"booking_id"`
	BookingRef  string           `json:"booking_ref"`
	HoldID      string           `json:"hold_id"`
	EventID     string           `json:"event_id"`
	SessionID   string           `json:"session_id"`
	Status      string           `json:"status"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	TotalSeats  int              `json:"total_seats"`
	Seats       []BookedSeatInfo `json:"seats"`
	ConfirmedAt time.Time        `json:"confirmed_at"`
}

type BookedSeatInfo struct {
	SeatID       string          `json:"seat_id"`
	TicketTypeID string          `json:"ticket_type_id"`
	Price        decimal.Decimal `json:"price"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

func toResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		BookingID:   b.ID.String(),
		BookingRef:  b.BookingRef,
		HoldID:      b.HoldID,
		EventID:     b.EventID,
		SessionID:   b.SessionID,
		Status:      b.Status.String(),
		TotalPrice:  b.TotalPrice,
		TotalSeats:  b.TotalSeats,
		Seats:       make([]BookedSeatInfo, 0, len(b.SeatBookings)),
		ConfirmedAt: b.ConfirmedAt,
	}
	for _, s := range b.SeatBookings {
		resp.Seats = append(resp.Seats, BookedSeatInfo{SeatID: s.SeatID, TicketTypeID: s.TicketTypeID, Price: s.SeatPrice})
	}
	return resp
}
