package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	GetByVenue(ctx context.Context, venueID string) ([]Event, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Search != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query.Search)+"%")
	}
	if query.VenueID != "" {
		db = db.Where("venue_id = ?", query.VenueID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	// Date filters
	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("starts_at >= ?", dateFrom)
		}
	}
	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			// Add 24 hours to include the entire day
			db = db.Where("starts_at < ?", dateTo.Add(24*time.Hour))
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("starts_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

func (r *repository) GetByVenue(ctx context.Context, venueID string) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).Where("venue_id = ?", venueID).Order("starts_at ASC").Find(&events).Error
	return events, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Event, error) {
	res := r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEventNotFound
	}
	return r.GetByID(ctx, id)
}
