package tickets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"seatmap/internal/layout"
	"seatmap/pkg/logger"
)

// LayoutSource hands out the current layout snapshot of a venue.
type LayoutSource interface {
	Snapshot(ctx context.Context, venueID string) (*layout.Snapshot, error)
}

type Service interface {
	SetLayoutSource(src LayoutSource)
	Assign(ctx context.Context, venueID, nodeID string, req AssignTicketRequest) (*AssignmentResponse, error)
	Unassign(ctx context.Context, venueID, nodeID string) error
	ListAssignments(ctx context.Context, venueID string) ([]AssignmentResponse, error)
	Effective(ctx context.Context, venueID, seatID string) (*Effective, error)
	EffectiveAll(ctx context.Context, venueID string) (*EffectiveMapResponse, error)
	// Resolve prices seats against an already fetched snapshot.
	Resolve(ctx context.Context, snap *layout.Snapshot, seatIDs []string) (map[string]Effective, error)
	ReplaceAll(ctx context.Context, venueID string, assignments []Assignment) error
	RemoveNodes(ctx context.Context, venueID string, nodeIDs []string) error
}

type service struct {
	repo    Repository
	layouts LayoutSource
	log     *logger.Logger

	mu        sync.Mutex
	resolvers map[string]*Resolver
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:      repo,
		log:       log.WithComponent("tickets"),
		resolvers: make(map[string]*Resolver),
	}
}

func (s *service) SetLayoutSource(src LayoutSource) {
	s.layouts = src
}

// resolver returns the venue's resolver, restoring it from the repository
// on first use.
func (s *service) resolver(ctx context.Context, venueID string) (*Resolver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.resolvers[venueID]; ok {
		return r, nil
	}

	rows, err := s.repo.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket assignments: %w", err)
	}
	as := make([]Assignment, len(rows))
	for i, row := range rows {
		as[i] = row.toAssignment()
	}
	r := NewResolver(as...)
	s.resolvers[venueID] = r
	return r, nil
}

func (s *service) snapshot(ctx context.Context, venueID string) (*layout.Snapshot, error) {
	if s.layouts == nil {
		return nil, errors.New("layout source not configured")
	}
	return s.layouts.Snapshot(ctx, venueID)
}

func (s *service) Assign(ctx context.Context, venueID, nodeID string, req AssignTicketRequest) (*AssignmentResponse, error) {
	snap, err := s.snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Node(nodeID); !ok {
		return nil, fmt.Errorf("%w: %s", layout.ErrNodeNotFound, nodeID)
	}
	if req.Price == nil {
		return nil, ErrInvalidPrice
	}

	a := Assignment{
		NodeID:            nodeID,
		TicketTypeID:      req.TicketTypeID,
		Price:             req.Price.Round(2),
		OverridesChildren: req.OverridesChildren,
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	r, err := s.resolver(ctx, venueID)
	if err != nil {
		return nil, err
	}
	row := fromAssignment(venueID, a)
	if err := s.repo.Upsert(ctx, &row); err != nil {
		return nil, fmt.Errorf("failed to save ticket assignment: %w", err)
	}
	if err := r.Assign(a); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Ticket Assigned",
		"venue_id", venueID, "node_id", nodeID, "ticket_type_id", a.TicketTypeID,
		"price", a.Price.String(), "overrides_children", a.OverridesChildren)

	resp := &AssignmentResponse{Assignment: a}
	if by, ok := r.Shadowed(snap, nodeID); ok {
		resp.ShadowedBy = by.NodeID
	}
	return resp, nil
}

func (s *service) Unassign(ctx context.Context, venueID, nodeID string) error {
	r, err := s.resolver(ctx, venueID)
	if err != nil {
		return err
	}
	if _, ok := r.Get(nodeID); !ok {
		return ErrAssignmentNotFound
	}
	if err := s.repo.Delete(ctx, venueID, []string{nodeID}); err != nil {
		return fmt.Errorf("failed to delete ticket assignment: %w", err)
	}
	r.Unassign(nodeID)
	return nil
}

func (s *service) ListAssignments(ctx context.Context, venueID string) ([]AssignmentResponse, error) {
	snap, err := s.snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	r, err := s.resolver(ctx, venueID)
	if err != nil {
		return nil, err
	}

	all := r.All()
	out := make([]AssignmentResponse, len(all))
	for i, a := range all {
		out[i] = AssignmentResponse{Assignment: a}
		if by, ok := r.Shadowed(snap, a.NodeID); ok {
			out[i].ShadowedBy = by.NodeID
		}
	}
	return out, nil
}

func (s *service) Effective(ctx context.Context, venueID, seatID string) (*Effective, error) {
	snap, err := s.snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	r, err := s.resolver(ctx, venueID)
	if err != nil {
		return nil, err
	}
	e, err := r.Resolve(snap, seatID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *service) EffectiveAll(ctx context.Context, venueID string) (*EffectiveMapResponse, error) {
	snap, err := s.snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	r, err := s.resolver(ctx, venueID)
	if err != nil {
		return nil, err
	}
	return &EffectiveMapResponse{
		VenueID: venueID,
		Version: snap.Version(),
		Seats:   r.ResolveAll(snap),
	}, nil
}

func (s *service) Resolve(ctx context.Context, snap *layout.Snapshot, seatIDs []string) (map[string]Effective, error) {
	r, err := s.resolver(ctx, snap.VenueID())
	if err != nil {
		return nil, err
	}
	out := make(map[string]Effective, len(seatIDs))
	for _, id := range seatIDs {
		e, err := r.Resolve(snap, id)
		if err != nil {
			continue
		}
		out[id] = e
	}
	return out, nil
}

// ReplaceAll swaps the venue's assignments, as done by a layout import.
func (s *service) ReplaceAll(ctx context.Context, venueID string, assignments []Assignment) error {
	valid := make([]Assignment, 0, len(assignments))
	rows := make([]TicketAssignment, 0, len(assignments))
	for _, a := range assignments {
		a.Price = a.Price.Round(2)
		if err := a.validate(); err != nil {
			return fmt.Errorf("assignment for %s: %w", a.NodeID, err)
		}
		valid = append(valid, a)
		rows = append(rows, fromAssignment(venueID, a))
	}
	if err := s.repo.ReplaceVenue(ctx, venueID, rows); err != nil {
		return err
	}

	r := NewResolver(valid...)
	s.mu.Lock()
	s.resolvers[venueID] = r
	s.mu.Unlock()
	return nil
}

func (s *service) RemoveNodes(ctx context.Context, venueID string, nodeIDs []string) error {
	r, err := s.resolver(ctx, venueID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, venueID, nodeIDs); err != nil {
		return fmt.Errorf("failed to delete ticket assignments: %w", err)
	}
	if n := r.RemoveNodes(nodeIDs); n > 0 {
		s.log.InfoContext(ctx, "Ticket Assignments Removed", "venue_id", venueID, "count", n)
	}
	return nil
}
