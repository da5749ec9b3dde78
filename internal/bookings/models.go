package bookings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"seatmap/internal/seats"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidBooking  = errors.New("invalid booking")
)

// Booking is a confirmed hold, priced seat by seat at confirmation time
type Booking struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingRef  string          `gorm:"type:varchar(16);uniqueIndex;not null" json:"booking_ref"`
	HoldID      string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"hold_id"`
	EventID     string          `gorm:"type:varchar(128);index;not null" json:"event_id"`
	SessionID   string          `gorm:"type:varchar(128);index;not null" json:"session_id"`
	TotalSeats  int             `gorm:"not null" json:"total_seats"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Status      Status          `gorm:"type:varchar(20);check:status IN ('CONFIRMED', 'CANCELLED');default:'CONFIRMED'" json:"status"`
	ConfirmedAt time.Time       `gorm:"not null" json:"confirmed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	SeatBookings []SeatBooking `json:"seat_bookings,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// SeatBooking is one seat of a booking
type SeatBooking struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"booking_id"`
	EventID      string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_seat_bookings_event_seat" json:"event_id"`
	SeatID       string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_seat_bookings_event_seat" json:"seat_id"`
	TicketTypeID string          `gorm:"type:varchar(128)" json:"ticket_type_id"`
	SeatPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"seat_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for SeatBooking
func (SeatBooking) TableName() string {
	return "seat_bookings"
}

// fromConfirmed maps a confirmed hold onto its database rows
func fromConfirmed(b *seats.Booking) (*Booking, error) {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return nil, ErrInvalidBooking
	}
	row := &Booking{
		ID:          id,
		BookingRef:  b.Reference,
		HoldID:      b.HoldID,
		EventID:     b.EventID,
		SessionID:   b.SessionID,
		TotalSeats:  len(b.Seats),
		TotalPrice:  b.Total,
		Status:      StatusConfirmed,
		ConfirmedAt: b.ConfirmedAt,
	}
	for _, s := range b.Seats {
		row.SeatBookings = append(row.SeatBookings, SeatBooking{
			ID:           uuid.New(),
			BookingID:    id,
			EventID:      b.EventID,
			SeatID:       s.SeatID,
			TicketTypeID: s.TicketTypeID,
			SeatPrice:    s.Price,
		})
	}
	return row, nil
}
