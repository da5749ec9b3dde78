package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByHoldID(ctx context.Context, holdID string) (*Booking, error)
	GetSessionBookings(ctx context.Context, sessionID string, query BookingListQuery) ([]Booking, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateBooking writes the booking and its seats in one transaction
func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seats := booking.SeatBookings
		booking.SeatBookings = nil
		defer func() { booking.SeatBookings = seats }()

		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		if len(seats) == 0 {
			return nil
		}
		return tx.CreateInBatches(seats, 100).Error
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("SeatBookings", func(db *gorm.DB) *gorm.DB { return db.Order("seat_id ASC") }).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByHoldID(ctx context.Context, holdID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("hold_id = ?", holdID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetSessionBookings(ctx context.Context, sessionID string, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("session_id = ?", sessionID)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("SeatBookings").
		Order("confirmed_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}
