package layout

import (
	"fmt"
	"math"
	"sync"
)

// Model is the mutable layout of one venue. It is safe for concurrent use;
// readers that need a consistent view across several calls should take a
// Snapshot.
type Model struct {
	mu         sync.RWMutex
	tree       tree
	layoutType LayoutType
	version    uint64
}

// New creates a model rooted at the given venue node.
func New(root Node, layoutType LayoutType) (*Model, error) {
	if root.ID == "" {
		return nil, fmt.Errorf("%w: venue id is required", ErrInvalidNode)
	}
	if root.Kind == "" {
		root.Kind = KindVenue
	}
	if root.Kind != KindVenue {
		return nil, fmt.Errorf("%w: root must be a venue, got %s", ErrInvalidNode, root.Kind)
	}
	if err := normalize(&root); err != nil {
		return nil, err
	}
	if layoutType == "" {
		layoutType = LayoutStadium
	}
	root.ParentID = ""

	t := newTree()
	t.rootID = root.ID
	t.nodes[root.ID] = root
	return &Model{tree: t, layoutType: layoutType, version: 1}, nil
}

func normalize(n *Node) error {
	if n.VisualWeight == 0 {
		n.VisualWeight = DefaultWeight
	}
	if err := ValidateWeight(n.VisualWeight); err != nil {
		return fmt.Errorf("node %s: %w", n.ID, err)
	}
	if n.Status == "" {
		n.Status = StatusActive
	}
	if n.Status != StatusActive && n.Status != StatusBlocked {
		return fmt.Errorf("%w: node %s has unknown status %q", ErrInvalidNode, n.ID, n.Status)
	}
	return nil
}

// ValidateWeight rejects non-positive and non-finite weights.
func ValidateWeight(w float64) error {
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return ErrInvalidWeight
	}
	return nil
}

func (m *Model) VenueID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.rootID
}

func (m *Model) LayoutType() LayoutType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layoutType
}

// Version increases on every successful mutation.
func (m *Model) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tree.nodes)
}

func (m *Model) Get(id string) (Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.tree.nodes[id]
	return n.clone(), ok
}

// AddNode inserts node as the last child of parentID.
func (m *Model) AddNode(node Node, parentID string) error {
	if node.ID == "" {
		return fmt.Errorf("%w: node id is required", ErrInvalidNode)
	}
	if !node.Kind.IsValid() || node.Kind == KindVenue {
		return fmt.Errorf("%w: node %s has kind %q", ErrInvalidNode, node.ID, node.Kind)
	}
	if err := normalize(&node); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tree.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	if err := m.checkParent(node.ID, parentID); err != nil {
		return err
	}

	node.ParentID = parentID
	m.tree.nodes[node.ID] = node
	m.tree.children[parentID] = append(m.tree.children[parentID], node.ID)
	m.version++
	return nil
}

func (m *Model) checkParent(id, parentID string) error {
	if id == parentID {
		return fmt.Errorf("%w: %w: %s cannot be its own parent", ErrInvalidParent, ErrCycleDetected, id)
	}
	parent, ok := m.tree.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: parent %q does not exist", ErrInvalidParent, parentID)
	}
	if parent.Kind == KindSeat {
		return fmt.Errorf("%w: seat %s cannot have children", ErrInvalidParent, parentID)
	}
	if m.tree.isDescendant(id, parentID) {
		return fmt.Errorf("%w: %w: %s is below %s", ErrInvalidParent, ErrCycleDetected, parentID, id)
	}
	return nil
}

// RemoveNode deletes id and its whole subtree. It returns every removed id,
// id itself first, so callers can cascade to data keyed by node.
func (m *Model) RemoveNode(id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tree.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if id == m.tree.rootID {
		return nil, ErrRootImmutable
	}

	removed := m.tree.subtree(id)
	m.tree.detach(id)
	for _, rid := range removed {
		delete(m.tree.nodes, rid)
		delete(m.tree.children, rid)
	}
	m.version++
	return removed, nil
}

// MoveNode reparents id under newParentID, appending it to the new parent's
// children.
func (m *Model) MoveNode(id, newParentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.tree.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if id == m.tree.rootID {
		return ErrRootImmutable
	}
	if err := m.checkParent(id, newParentID); err != nil {
		return err
	}
	if node.ParentID == newParentID {
		return nil
	}

	m.tree.detach(id)
	node.ParentID = newParentID
	m.tree.nodes[id] = node
	m.tree.children[newParentID] = append(m.tree.children[newParentID], id)
	m.version++
	return nil
}

// GetChildren returns the children of id in insertion order.
func (m *Model) GetChildren(id string) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.tree.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return m.tree.childNodes(id), nil
}

func (m *Model) SetWeight(id string, w float64) error {
	if err := ValidateWeight(w); err != nil {
		return fmt.Errorf("node %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.tree.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.VisualWeight = w
	m.tree.nodes[id] = n
	m.version++
	return nil
}

func (m *Model) SetStatus(id string, status Status) error {
	if status != StatusActive && status != StatusBlocked {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidNode, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.tree.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.Status = status
	m.tree.nodes[id] = n
	m.version++
	return nil
}

// Snapshot returns an immutable copy of the current layout.
func (m *Model) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Snapshot{
		tree:       m.tree.clone(),
		layoutType: m.layoutType,
		version:    m.version,
	}
}

// SeedVersion raises the version to at least v. Restored models use it so
// versions keep increasing across restarts.
func (m *Model) SeedVersion(v uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v > m.version {
		m.version = v
	}
}
