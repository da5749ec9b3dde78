package layout

// Kind is the level of a node in the venue hierarchy.
type Kind string

const (
	KindVenue   Kind = "VENUE"
	KindStand   Kind = "STAND"
	KindTier    Kind = "TIER"
	KindSection Kind = "SECTION"
	KindRow     Kind = "ROW"
	KindSeat    Kind = "SEAT"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindVenue, KindStand, KindTier, KindSection, KindRow, KindSeat:
		return true
	}
	return false
}

// Status marks whether a node (and everything under it) can be sold.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// LayoutType selects the geometry mode for a venue.
type LayoutType string

const (
	LayoutStadium LayoutType = "STADIUM"
	LayoutTheatre LayoutType = "THEATRE"
)

// DefaultWeight is used when a node is created without a visual weight.
const DefaultWeight = 1.0

type Style struct {
	Color string `json:"color,omitempty"`
}

// Placement is an explicit rectangle in venue design units. Only theatre
// layouts read it.
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one element of a venue layout. Children are never embedded; they
// are reached through the model's child index.
type Node struct {
	ID           string     `json:"id"`
	ParentID     string     `json:"parentId,omitempty"`
	Kind         Kind       `json:"kind"`
	Name         string     `json:"name"`
	VisualWeight float64    `json:"visualWeight"`
	Status       Status     `json:"status"`
	Style        Style      `json:"style"`
	SeatNumber   int        `json:"seatNumber,omitempty"`
	Placement    *Placement `json:"placement,omitempty"`
	Curve        float64    `json:"curve,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == ""
}

// IsBlocked reports whether the node itself is blocked.
func (n Node) IsBlocked() bool {
	return n.Status == StatusBlocked
}

func (n Node) clone() Node {
	c := n
	if n.Placement != nil {
		p := *n.Placement
		c.Placement = &p
	}
	return c
}

// Issue describes a recoverable problem found while loading or rendering a
// layout. The affected node is repaired or skipped, never fatal.
type Issue struct {
	NodeID string `json:"nodeId"`
	Reason string `json:"reason"`
}
