package venues

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"seatmap/internal/geometry"
	"seatmap/internal/hittest"
	"seatmap/internal/layout"
	"seatmap/internal/tickets"
	"seatmap/pkg/logger"
)

// RemovalListener is told which nodes left a venue, either through
// RemoveNode or because a re-import dropped them.
type RemovalListener interface {
	NodesRemoved(ctx context.Context, venueID string, nodeIDs []string) error
}

type Service interface {
	AddRemovalListener(l RemovalListener)

	ImportVenue(ctx context.Context, req ImportVenueRequest) (*ImportVenueResponse, error)
	GetVenue(ctx context.Context, venueID string) (*VenueResponse, error)

	AddNode(ctx context.Context, venueID string, req AddNodeRequest) (*NodeResponse, error)
	RemoveNode(ctx context.Context, venueID, nodeID string) (*RemoveNodeResponse, error)
	SetWeight(ctx context.Context, venueID, nodeID string, weight float64) (*NodeResponse, error)
	SetStatus(ctx context.Context, venueID, nodeID string, status layout.Status) (*NodeResponse, error)
	MoveNode(ctx context.Context, venueID, nodeID, parentID string) (*NodeResponse, error)
	GetChildren(ctx context.Context, venueID, nodeID string) (*ChildrenResponse, error)

	Geometry(ctx context.Context, venueID string, vp geometry.Viewport) (*geometry.Geometry, error)
	HitTest(ctx context.Context, venueID string, req HitTestRequest) (*HitTestResponse, error)

	// Snapshot serves tickets and events with the current layout.
	Snapshot(ctx context.Context, venueID string) (*layout.Snapshot, error)
}

// entry serialises writers of one venue so the persisted version always
// follows the in-memory one. A retired entry has been replaced or evicted
// and must not be written again.
type entry struct {
	mu      sync.Mutex
	model   *layout.Model
	retired bool
}

type service struct {
	repo     Repository
	tickets  tickets.Service
	geometry *geometry.Cache
	log      *logger.Logger

	importMu  sync.Mutex
	mu        sync.Mutex
	venues    map[string]*entry
	listeners []RemovalListener
}

func NewService(repo Repository, ticketService tickets.Service, geometryCache *geometry.Cache, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if geometryCache == nil {
		geometryCache = geometry.NewCache(geometry.DefaultOptions())
	}
	return &service{
		repo:     repo,
		tickets:  ticketService,
		geometry: geometryCache,
		log:      log.WithComponent("venues"),
		venues:   make(map[string]*entry),
	}
}

func (s *service) AddRemovalListener(l RemovalListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// venue returns the loaded entry, restoring it from the repository on
// first use.
func (s *service) venue(ctx context.Context, venueID string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.venues[venueID]; ok {
		return e, nil
	}

	row, err := s.repo.GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, layout.ErrVenueNotFound) {
			return nil, fmt.Errorf("%w: %s", layout.ErrVenueNotFound, venueID)
		}
		return nil, fmt.Errorf("failed to load venue: %w", err)
	}
	m, issues, err := restore(row)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		s.log.LogLayoutIssues(ctx, venueID, len(issues))
	}

	e := &entry{model: m}
	s.venues[venueID] = e
	return e, nil
}

// lock returns the live entry of a venue with its write lock held.
func (s *service) lock(ctx context.Context, venueID string) (*entry, error) {
	for {
		e, err := s.venue(ctx, venueID)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if !e.retired {
			return e, nil
		}
		e.mu.Unlock()
	}
}

// evict forgets the in-memory model after a failed write so the next
// reader restores what was actually persisted. The caller holds e.mu.
func (s *service) evict(venueID string, e *entry) {
	e.retired = true
	s.mu.Lock()
	if s.venues[venueID] == e {
		delete(s.venues, venueID)
	}
	s.mu.Unlock()
}

func (s *service) notifyRemoved(ctx context.Context, venueID string, nodeIDs []string) {
	if len(nodeIDs) == 0 {
		return
	}
	if s.tickets != nil {
		if err := s.tickets.RemoveNodes(ctx, venueID, nodeIDs); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to cascade node removal to tickets", err, map[string]interface{}{
				"venue_id": venueID,
			})
		}
	}

	s.mu.Lock()
	listeners := append([]RemovalListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		if err := l.NodesRemoved(ctx, venueID, nodeIDs); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to cascade node removal", err, map[string]interface{}{
				"venue_id": venueID,
				"nodes":    len(nodeIDs),
			})
		}
	}
	if err := s.geometry.Invalidate(ctx, venueID); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate geometry cache", "venue_id", venueID, "error", err)
	}
}

func (s *service) ImportVenue(ctx context.Context, req ImportVenueRequest) (*ImportVenueResponse, error) {
	m, issues, err := layout.Load(req.Root, req.LayoutType)
	if err != nil {
		return nil, err
	}
	venueID := m.VenueID()
	issues = append(issues, applySeatStatuses(m, req.SeatStatuses)...)

	snap := m.Snapshot()
	assignments := make([]tickets.Assignment, 0, len(req.TicketAssignments))
	for _, a := range req.TicketAssignments {
		if _, ok := snap.Node(a.NodeID); !ok {
			issues = append(issues, layout.Issue{NodeID: a.NodeID, Reason: "ticket assignment for unknown node skipped"})
			continue
		}
		assignments = append(assignments, a)
	}

	s.importMu.Lock()
	defer s.importMu.Unlock()

	var before *layout.Snapshot
	prev, err := s.lock(ctx, venueID)
	switch {
	case err == nil:
		defer prev.mu.Unlock()
		before = prev.model.Snapshot()
		m.SeedVersion(before.Version() + 1)
		snap = m.Snapshot()
	case !errors.Is(err, layout.ErrVenueNotFound):
		return nil, err
	}

	venue, nodes := toRows(snap)
	if err := s.repo.ReplaceVenue(ctx, venue, nodes); err != nil {
		return nil, fmt.Errorf("failed to save venue: %w", err)
	}

	s.mu.Lock()
	if prev != nil {
		prev.retired = true
	}
	s.venues[venueID] = &entry{model: m}
	s.mu.Unlock()

	if s.tickets != nil {
		if err := s.tickets.ReplaceAll(ctx, venueID, assignments); err != nil {
			return nil, fmt.Errorf("failed to save ticket assignments: %w", err)
		}
	}

	if before != nil {
		s.notifyRemoved(ctx, venueID, dropped(before, snap))
	}
	if len(issues) > 0 {
		s.log.LogLayoutIssues(ctx, venueID, len(issues))
	}
	s.log.InfoContext(ctx, "Venue Imported", "venue_id", venueID, "version", snap.Version(), "nodes", snap.Len())

	if issues == nil {
		issues = []layout.Issue{}
	}
	return &ImportVenueResponse{
		VenueID:     venueID,
		Version:     snap.Version(),
		Nodes:       snap.Len(),
		Seats:       len(snap.Seats()),
		Assignments: len(assignments),
		Issues:      issues,
	}, nil
}

func (s *service) GetVenue(ctx context.Context, venueID string) (*VenueResponse, error) {
	snap, err := s.Snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	return &VenueResponse{
		VenueID:    venueID,
		Name:       snap.Root().Name,
		LayoutType: snap.LayoutType(),
		Version:    snap.Version(),
		Seats:      len(snap.Seats()),
		Root:       snap.Tree(),
	}, nil
}

func (s *service) AddNode(ctx context.Context, venueID string, req AddNodeRequest) (*NodeResponse, error) {
	e, err := s.lock(ctx, venueID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	node := layout.Node{
		ID:           req.ID,
		Kind:         req.Kind,
		Name:         req.Name,
		VisualWeight: req.VisualWeight,
		Status:       req.Status,
		Style:        req.Style,
		SeatNumber:   req.SeatNumber,
		Placement:    req.Placement,
		Curve:        req.Curve,
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if err := e.model.AddNode(node, req.ParentID); err != nil {
		return nil, err
	}

	added, _ := e.model.Get(node.ID)
	version := e.model.Version()
	row := fromNode(venueID, added, version)
	if err := s.repo.InsertNode(ctx, venueID, version, &row); err != nil {
		s.evict(venueID, e)
		return nil, fmt.Errorf("failed to save node: %w", err)
	}

	return &NodeResponse{Node: added, Version: version}, nil
}

func (s *service) RemoveNode(ctx context.Context, venueID, nodeID string) (*RemoveNodeResponse, error) {
	e, err := s.lock(ctx, venueID)
	if err != nil {
		return nil, err
	}
	removed, err := e.model.RemoveNode(nodeID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	version := e.model.Version()
	if err := s.repo.DeleteNodes(ctx, venueID, version, removed); err != nil {
		s.evict(venueID, e)
		e.mu.Unlock()
		return nil, fmt.Errorf("failed to delete nodes: %w", err)
	}
	e.mu.Unlock()

	s.notifyRemoved(ctx, venueID, removed)
	s.log.InfoContext(ctx, "Nodes Removed", "venue_id", venueID, "node_id", nodeID, "count", len(removed))

	return &RemoveNodeResponse{Removed: removed, Version: version}, nil
}

// update applies one in-place mutation and writes the changed columns.
func (s *service) update(ctx context.Context, venueID, nodeID string, mutate func(m *layout.Model) error, columns func(n layout.Node, version uint64) map[string]interface{}) (*NodeResponse, error) {
	e, err := s.lock(ctx, venueID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	before := e.model.Version()
	if err := mutate(e.model); err != nil {
		return nil, err
	}
	n, _ := e.model.Get(nodeID)
	version := e.model.Version()
	if version == before {
		return &NodeResponse{Node: n, Version: version}, nil
	}
	if err := s.repo.UpdateNode(ctx, venueID, version, nodeID, columns(n, version)); err != nil {
		s.evict(venueID, e)
		return nil, fmt.Errorf("failed to save node: %w", err)
	}
	return &NodeResponse{Node: n, Version: version}, nil
}

func (s *service) SetWeight(ctx context.Context, venueID, nodeID string, weight float64) (*NodeResponse, error) {
	return s.update(ctx, venueID, nodeID,
		func(m *layout.Model) error { return m.SetWeight(nodeID, weight) },
		func(n layout.Node, _ uint64) map[string]interface{} {
			return map[string]interface{}{"visual_weight": n.VisualWeight}
		})
}

func (s *service) SetStatus(ctx context.Context, venueID, nodeID string, status layout.Status) (*NodeResponse, error) {
	return s.update(ctx, venueID, nodeID,
		func(m *layout.Model) error { return m.SetStatus(nodeID, status) },
		func(n layout.Node, _ uint64) map[string]interface{} {
			return map[string]interface{}{"status": n.Status}
		})
}

func (s *service) MoveNode(ctx context.Context, venueID, nodeID, parentID string) (*NodeResponse, error) {
	return s.update(ctx, venueID, nodeID,
		func(m *layout.Model) error { return m.MoveNode(nodeID, parentID) },
		func(n layout.Node, version uint64) map[string]interface{} {
			return map[string]interface{}{"parent_id": n.ParentID, "position": version}
		})
}

func (s *service) GetChildren(ctx context.Context, venueID, nodeID string) (*ChildrenResponse, error) {
	e, err := s.venue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	children, err := e.model.GetChildren(nodeID)
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []layout.Node{}
	}
	return &ChildrenResponse{ParentID: nodeID, Children: children}, nil
}

func (s *service) Snapshot(ctx context.Context, venueID string) (*layout.Snapshot, error) {
	e, err := s.venue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	return e.model.Snapshot(), nil
}

func (s *service) Geometry(ctx context.Context, venueID string, vp geometry.Viewport) (*geometry.Geometry, error) {
	snap, err := s.Snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	return s.geometry.Get(ctx, snap, vp)
}

func (s *service) HitTest(ctx context.Context, venueID string, req HitTestRequest) (*HitTestResponse, error) {
	snap, err := s.Snapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}
	g, err := s.geometry.Get(ctx, snap, geometry.Viewport{Width: req.Width, Height: req.Height, Padding: req.Padding})
	if err != nil {
		return nil, err
	}

	depth := req.Depth
	if depth == 0 {
		depth = hittest.Unlimited
	}
	shape, ok := hittest.LocateDepth(geometry.Point{X: req.X, Y: req.Y}, g, depth)
	if !ok {
		return &HitTestResponse{Hit: false}, nil
	}

	resp := &HitTestResponse{
		Hit:    true,
		NodeID: shape.NodeID,
		Kind:   shape.Kind,
		Name:   shape.Name,
		Depth:  shape.Depth,
	}
	for _, n := range snap.Path(shape.NodeID) {
		resp.Path = append(resp.Path, n.ID)
	}
	return resp, nil
}
