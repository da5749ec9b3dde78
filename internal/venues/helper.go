package venues

import (
	"fmt"
	"sort"

	"seatmap/internal/layout"
)

// restore rebuilds a model from its stored rows. Nodes are attached
// parent first, siblings by position; rows whose parent is missing are
// reported and skipped.
func restore(row *Venue) (*layout.Model, []layout.Issue, error) {
	var root *VenueNode
	children := make(map[string][]VenueNode)
	for i := range row.Nodes {
		n := row.Nodes[i]
		if n.ParentID == "" {
			if root == nil {
				root = &row.Nodes[i]
			}
			continue
		}
		children[n.ParentID] = append(children[n.ParentID], n)
	}
	if root == nil {
		return nil, nil, fmt.Errorf("%w: venue %s has no root node", layout.ErrInvalidNode, row.ID)
	}

	m, err := layout.New(root.toNode(), row.LayoutType)
	if err != nil {
		return nil, nil, err
	}

	var issues []layout.Issue
	attached := 1
	queue := []string{root.NodeID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]
		for _, c := range children[parentID] {
			if err := m.AddNode(c.toNode(), parentID); err != nil {
				issues = append(issues, layout.Issue{NodeID: c.NodeID, Reason: err.Error()})
				continue
			}
			attached++
			queue = append(queue, c.NodeID)
		}
	}
	if attached < len(row.Nodes) {
		issues = append(issues, layout.Issue{
			NodeID: row.ID,
			Reason: fmt.Sprintf("%d stored nodes are not reachable from the venue root", len(row.Nodes)-attached),
		})
	}

	m.SeedVersion(row.Version)
	return m, issues, nil
}

// toRows flattens a snapshot for storage, numbering nodes in layout order.
func toRows(snap *layout.Snapshot) (*Venue, []VenueNode) {
	venueID := snap.VenueID()
	venue := &Venue{
		ID:         venueID,
		Name:       snap.Root().Name,
		LayoutType: snap.LayoutType(),
		Version:    snap.Version(),
	}

	nodes := make([]VenueNode, 0, snap.Len())
	snap.Walk(func(n layout.Node, _ int) bool {
		nodes = append(nodes, fromNode(venueID, n, uint64(len(nodes))))
		return true
	})
	return venue, nodes
}

// dropped lists the nodes of before that after no longer has.
func dropped(before, after *layout.Snapshot) []string {
	var out []string
	before.Walk(func(n layout.Node, _ int) bool {
		if _, ok := after.Node(n.ID); !ok {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

// applySeatStatuses sets the imported per-seat statuses. Entries naming
// unknown nodes, non-seats or unknown statuses are reported and ignored.
func applySeatStatuses(m *layout.Model, statuses map[string]layout.Status) []layout.Issue {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var issues []layout.Issue
	for _, id := range ids {
		n, ok := m.Get(id)
		if !ok || n.Kind != layout.KindSeat {
			issues = append(issues, layout.Issue{NodeID: id, Reason: "seat status for unknown seat ignored"})
			continue
		}
		if err := m.SetStatus(id, statuses[id]); err != nil {
			issues = append(issues, layout.Issue{NodeID: id, Reason: err.Error()})
		}
	}
	return issues
}
