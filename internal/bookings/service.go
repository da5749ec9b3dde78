package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"seatmap/internal/seats"
	"seatmap/pkg/logger"
)

type Service interface {
	// RecordBooking persists a booking confirmed by the hold manager.
	RecordBooking(ctx context.Context, booking *seats.Booking) error
	GetBooking(ctx context.Context, id string) (*BookingResponse, error)
	GetSessionBookings(ctx context.Context, sessionID string, query BookingListQuery) (*BookingListResponse, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, log: log.WithComponent("bookings")}
}

func (s *service) RecordBooking(ctx context.Context, booking *seats.Booking) error {
	row, err := fromConfirmed(booking)
	if err != nil {
		return err
	}

	// a retried confirmation must not write the hold twice
	if existing, err := s.repo.GetBookingByHoldID(ctx, booking.HoldID); err == nil {
		s.log.WarnContext(ctx, "Booking already recorded", "hold_id", booking.HoldID, "booking_id", existing.ID.String())
		return nil
	} else if !errors.Is(err, ErrBookingNotFound) {
		return fmt.Errorf("failed to check existing booking: %w", err)
	}

	if err := s.repo.CreateBooking(ctx, row); err != nil {
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

func (s *service) GetBooking(ctx context.Context, id string) (*BookingResponse, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(booking)
	return &resp, nil
}

func (s *service) GetSessionBookings(ctx context.Context, sessionID string, query BookingListQuery) (*BookingListResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	bookings, total, err := s.repo.GetSessionBookings(ctx, sessionID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	resp := &BookingListResponse{
		Bookings:   make([]BookingResponse, 0, len(bookings)),
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, toResponse(&bookings[i]))
	}
	return resp, nil
}
