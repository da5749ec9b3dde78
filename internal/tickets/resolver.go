package tickets

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"seatmap/internal/layout"
)

// Resolver holds the ticket assignments of one venue and answers which
// ticket each seat sells under. Overrides shadow descendant assignments
// without deleting them, so removing an override brings them back.
type Resolver struct {
	mu          sync.RWMutex
	assignments map[string]Assignment
}

func NewResolver(assignments ...Assignment) *Resolver {
	r := &Resolver{assignments: make(map[string]Assignment, len(assignments))}
	for _, a := range assignments {
		r.assignments[a.NodeID] = a
	}
	return r
}

// Assign upserts the assignment of a node.
func (r *Resolver) Assign(a Assignment) error {
	if err := a.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[a.NodeID] = a
	return nil
}

func (r *Resolver) Unassign(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.assignments[nodeID]
	delete(r.assignments, nodeID)
	return ok
}

// RemoveNodes drops the assignments of deleted layout nodes and returns how
// many were removed.
func (r *Resolver) RemoveNodes(nodeIDs []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range nodeIDs {
		if _, ok := r.assignments[id]; ok {
			delete(r.assignments, id)
			n++
		}
	}
	return n
}

func (r *Resolver) Get(nodeID string) (Assignment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[nodeID]
	return a, ok
}

// All returns every stored assignment ordered by node id.
func (r *Resolver) All() []Assignment {
	r.mu.RLock()
	out := make([]Assignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		out = append(out, a)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// chain collects the assignments on the root-to-node path, root first.
func (r *Resolver) chain(snap *layout.Snapshot, nodeID string) ([]Assignment, error) {
	path := snap.Path(nodeID)
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: %s", layout.ErrNodeNotFound, nodeID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Assignment
	for _, n := range path {
		if a, ok := r.assignments[n.ID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// pick applies the propagation rule to a root-first chain: the shallowest
// override wins, otherwise the deepest assignment.
func pick(chain []Assignment) (Assignment, bool) {
	for _, a := range chain {
		if a.OverridesChildren {
			return a, true
		}
	}
	if len(chain) == 0 {
		return Assignment{}, false
	}
	return chain[len(chain)-1], true
}

// Resolve returns the effective ticket of a seat (or of any node).
func (r *Resolver) Resolve(snap *layout.Snapshot, seatID string) (Effective, error) {
	chain, err := r.chain(snap, seatID)
	if err != nil {
		return Effective{}, err
	}
	a, ok := pick(chain)
	if !ok {
		return Effective{SeatID: seatID, Price: decimal.Zero, NoTicket: true}, nil
	}
	return Effective{
		SeatID:       seatID,
		TicketTypeID: a.TicketTypeID,
		Price:        a.Price,
		SourceNodeID: a.NodeID,
	}, nil
}

// ResolveAll resolves every seat of the snapshot.
func (r *Resolver) ResolveAll(snap *layout.Snapshot) map[string]Effective {
	seats := snap.Seats()
	out := make(map[string]Effective, len(seats))
	for _, s := range seats {
		if e, err := r.Resolve(snap, s.ID); err == nil {
			out[s.ID] = e
		}
	}
	return out
}

// Shadowed reports the ancestor override hiding the node's own assignment.
func (r *Resolver) Shadowed(snap *layout.Snapshot, nodeID string) (Assignment, bool) {
	chain, err := r.chain(snap, nodeID)
	if err != nil || len(chain) == 0 || chain[len(chain)-1].NodeID != nodeID {
		return Assignment{}, false
	}
	winner, _ := pick(chain)
	if winner.NodeID == nodeID {
		return Assignment{}, false
	}
	return winner, true
}
