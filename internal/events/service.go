package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"seatmap/internal/seats"
	"seatmap/internal/shared/constants"
	"seatmap/internal/tickets"
	"seatmap/pkg/cache"
	"seatmap/pkg/logger"
)

type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*EventResponse, error)

	// GetSeatMap merges layout, effective tickets and live seat states.
	GetSeatMap(ctx context.Context, eventID, sessionID string) (*SeatMapResponse, error)

	// Offers prices seats for the hold manager.
	Offers(ctx context.Context, eventID string, seatIDs []string) (map[string]seats.Offer, error)
	// NodesRemoved drops seat state of every event on the venue.
	NodesRemoved(ctx context.Context, venueID string, nodeIDs []string) error
}

type service struct {
	repo    Repository
	layouts tickets.LayoutSource
	tickets tickets.Service
	seats   seats.Service
	cache   cache.Service
	log     *logger.Logger
}

func NewService(repo Repository, layouts tickets.LayoutSource, ticketService tickets.Service, seatService seats.Service, cacheService cache.Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:    repo,
		layouts: layouts,
		tickets: ticketService,
		seats:   seatService,
		cache:   cacheService,
		log:     log.WithComponent("events"),
	}
}

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	if _, err := s.layouts.Snapshot(ctx, req.VenueID); err != nil {
		return nil, err
	}

	event := &Event{
		ID:       req.ID,
		VenueID:  req.VenueID,
		Name:     req.Name,
		StartsAt: req.StartsAt,
		Status:   StatusUpcoming,
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.log.InfoContext(ctx, "Event Created", "event_id", event.ID, "venue_id", event.VenueID)
	resp := event.ToResponse()
	return &resp, nil
}

// event reads through the cache when one is configured
func (s *service) event(ctx context.Context, id string) (*Event, error) {
	key := constants.BuildEventKey(id)
	if s.cache != nil {
		var cached Event
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "Event cache read failed", "event_id", id, "error", err)
		}
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, event, constants.TTL_EVENT); err != nil {
			s.log.WarnContext(ctx, "Event cache write failed", "event_id", id, "error", err)
		}
	}
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	event, err := s.event(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	events, total, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = events[i].ToResponse()
	}
	return &PaginatedEvents{
		Events:     out,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int((total + int64(query.Limit) - 1) / int64(query.Limit)),
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*EventResponse, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", seats.ErrInvalidRequest, status)
	}
	event, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, constants.BuildEventKey(id)); err != nil {
			s.log.WarnContext(ctx, "Event cache invalidation failed", "event_id", id, "error", err)
		}
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) NodesRemoved(ctx context.Context, venueID string, nodeIDs []string) error {
	events, err := s.repo.GetByVenue(ctx, venueID)
	if err != nil {
		return fmt.Errorf("failed to list venue events: %w", err)
	}

	var errs []error
	for _, e := range events {
		if err := s.seats.DropSeats(ctx, e.ID, nodeIDs); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", e.ID, err))
		}
	}
	return errors.Join(errs...)
}
