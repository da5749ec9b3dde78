package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"seatmap/internal/seats"
	"seatmap/pkg/logger"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateBooking(ctx context.Context, booking *Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetBookingByHoldID(ctx context.Context, holdID string) (*Booking, error) {
	args := m.Called(ctx, holdID)
	if b, ok := args.Get(0).(*Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetSessionBookings(ctx context.Context, sessionID string, query BookingListQuery) ([]Booking, int64, error) {
	args := m.Called(ctx, sessionID, query)
	return args.Get(0).([]Booking), args.Get(1).(int64), args.Error(2)
}

var confirmedAt = time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC)

func confirmed() *seats.Booking {
	return &seats.Booking{
		ID:        "5f0c3f7e-8d5a-4a43-9b8f-0d7c3e2b9a11",
		Reference: "SM-5F0C3F7E",
		HoldID:    "hold-1",
		EventID:   "gala",
		SessionID: "S1",
		Seats: []seats.BookedSeat{
			{SeatID: "A-1", TicketTypeID: "std", Price: decimal.RequireFromString("40.00")},
			{SeatID: "A-2", TicketTypeID: "vip", Price: decimal.RequireFromString("95.50")},
		},
		Total:       decimal.RequireFromString("135.50"),
		ConfirmedAt: confirmedAt,
	}
}

func TestService_RecordBooking(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, logger.Discard())

	repo.On("GetBookingByHoldID", mock.Anything, "hold-1").Return(nil, ErrBookingNotFound)
	repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.BookingRef == "SM-5F0C3F7E" &&
			b.TotalSeats == 2 &&
			b.TotalPrice.Equal(decimal.RequireFromString("135.5")) &&
			len(b.SeatBookings) == 2 &&
			b.SeatBookings[1].SeatID == "A-2" &&
			b.SeatBookings[1].BookingID == b.ID
	})).Return(nil)

	require.NoError(t, svc.RecordBooking(context.Background(), confirmed()))
	repo.AssertExpectations(t)
}

func TestService_RecordBooking_Idempotent(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, logger.Discard())

	repo.On("GetBookingByHoldID", mock.Anything, "hold-1").Return(&Booking{ID: uuid.New()}, nil)

	require.NoError(t, svc.RecordBooking(context.Background(), confirmed()))
	repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestService_RecordBooking_Errors(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, logger.Discard())

	bad := confirmed()
	bad.ID = "not-a-uuid"
	assert.ErrorIs(t, svc.RecordBooking(context.Background(), bad), ErrInvalidBooking)

	repo.On("GetBookingByHoldID", mock.Anything, "hold-1").Return(nil, ErrBookingNotFound)
	repo.On("CreateBooking", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))
	err := svc.RecordBooking(context.Background(), confirmed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record booking")
}

func TestService_GetBooking(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, logger.Discard())

	row, err := fromConfirmed(confirmed())
	require.NoError(t, err)
	repo.On("GetBookingByID", mock.Anything, row.ID).Return(row, nil)

	resp, err := svc.GetBooking(context.Background(), row.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, 2, resp.TotalSeats)
	require.Len(t, resp.Seats, 2)
	assert.Equal(t, "A-1", resp.Seats[0].SeatID)

	_, err = svc.GetBooking(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetSessionBookings_DefaultsPaging(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, logger.Discard())

	row, err := fromConfirmed(confirmed())
	require.NoError(t, err)
	repo.On("GetSessionBookings", mock.Anything, "S1", BookingListQuery{Page: 1, Limit: 10}).
		Return([]Booking{*row}, int64(1), nil)

	resp, err := svc.GetSessionBookings(context.Background(), "S1", BookingListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "hold-1", resp.Bookings[0].HoldID)
}
