package layout

// Snapshot is a read-only copy of a Model taken at one version. Geometry,
// hit testing and ticket resolution all work from snapshots.
type Snapshot struct {
	tree       tree
	layoutType LayoutType
	version    uint64
}

func (s *Snapshot) VenueID() string { return s.tree.rootID }
func (s *Snapshot) Version() uint64 { return s.version }
func (s *Snapshot) LayoutType() LayoutType { return s.layoutType }
func (s *Snapshot) Len() int { return len(s.tree.nodes) }
func (s *Snapshot) Children(id string) []Node { return s.tree.childNodes(id) }

func (s *Snapshot) Root() Node {
	return s.tree.nodes[s.tree.rootID]
}

func (s *Snapshot) Node(id string) (Node, bool) {
	n, ok := s.tree.nodes[id]
	return n, ok
}

// Path returns the nodes from the venue root down to id. It is empty when
// id is unknown.
func (s *Snapshot) Path(id string) []Node {
	return s.tree.path(id)
}

// Depth is the number of edges between the root and id, or -1 when id is
// unknown.
func (s *Snapshot) Depth(id string) int {
	return len(s.tree.path(id)) - 1
}

// Blocked reports whether id or any of its ancestors is blocked.
func (s *Snapshot) Blocked(id string) bool {
	for _, n := range s.tree.path(id) {
		if n.IsBlocked() {
			return true
		}
	}
	return false
}

// Descendants returns every node below id, breadth first, excluding id.
func (s *Snapshot) Descendants(id string) []Node {
	if _, ok := s.tree.nodes[id]; !ok {
		return nil
	}
	ids := s.tree.subtree(id)[1:]
	out := make([]Node, 0, len(ids))
	for _, d := range ids {
		out = append(out, s.tree.nodes[d])
	}
	return out
}

// Walk visits every node depth-first in sibling order. Returning false from
// fn skips that node's subtree.
func (s *Snapshot) Walk(fn func(n Node, depth int) bool) {
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		if !fn(s.tree.nodes[id], depth) {
			return
		}
		for _, cid := range s.tree.children[id] {
			visit(cid, depth+1)
		}
	}
	visit(s.tree.rootID, 0)
}

// Seats returns every seat in layout order.
func (s *Snapshot) Seats() []Node {
	var out []Node
	s.Walk(func(n Node, _ int) bool {
		if n.Kind == KindSeat {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Tree renders the snapshot back into the nested payload form.
func (s *Snapshot) Tree() TreeNode {
	var build func(id string) TreeNode
	build = func(id string) TreeNode {
		n := s.tree.nodes[id]
		tn := TreeNode{
			ID:           n.ID,
			Kind:         n.Kind,
			Name:         n.Name,
			VisualWeight: n.VisualWeight,
			Status:       n.Status,
			Style:        n.Style,
			SeatNumber:   n.SeatNumber,
			Placement:    n.Placement,
			Curve:        n.Curve,
		}
		for _, cid := range s.tree.children[id] {
			tn.Children = append(tn.Children, build(cid))
		}
		return tn
	}
	return build(s.tree.rootID)
}
