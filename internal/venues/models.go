package venues

import (
	"time"

	"seatmap/internal/layout"
)

// Venue is the persisted header of a venue layout
type Venue struct {
	ID         string            `gorm:"primaryKey;size:128"`
	Name       string            `gorm:"size:255;not null"`
	LayoutType layout.LayoutType `gorm:"type:varchar(20);not null;default:'STADIUM'"`
	Version    uint64            `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Nodes []VenueNode `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
}

// VenueNode is one persisted layout node. Position orders siblings; it only
// ever grows, so restoring by position keeps insertion order.
type VenueNode struct {
	VenueID      string            `gorm:"primaryKey;size:128"`
	NodeID       string            `gorm:"primaryKey;size:128"`
	ParentID     string            `gorm:"size:128;index:idx_venue_nodes_parent"`
	Position     uint64            `gorm:"not null"`
	Kind         layout.Kind       `gorm:"type:varchar(16);not null"`
	Name         string            `gorm:"size:255"`
	VisualWeight float64           `gorm:"not null;default:1"`
	Status       layout.Status     `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	Color        string            `gorm:"size:32"`
	SeatNumber   int               `gorm:"not null;default:0"`
	Placement    *layout.Placement `gorm:"serializer:json"`
	Curve        float64           `gorm:"not null;default:0"`
}

func (Venue) TableName() string {
	return "venues"
}

func (VenueNode) TableName() string {
	return "venue_nodes"
}

func fromNode(venueID string, n layout.Node, position uint64) VenueNode {
	return VenueNode{
		VenueID:      venueID,
		NodeID:       n.ID,
		ParentID:     n.ParentID,
		Position:     position,
		Kind:         n.Kind,
		Name:         n.Name,
		VisualWeight: n.VisualWeight,
		Status:       n.Status,
		Color:        n.Style.Color,
		SeatNumber:   n.SeatNumber,
		Placement:    n.Placement,
		Curve:        n.Curve,
	}
}

func (v VenueNode) toNode() layout.Node {
	return layout.Node{
		ID:           v.NodeID,
		ParentID:     v.ParentID,
		Kind:         v.Kind,
		Name:         v.Name,
		VisualWeight: v.VisualWeight,
		Status:       v.Status,
		Style:        layout.Style{Color: v.Color},
		SeatNumber:   v.SeatNumber,
		Placement:    v.Placement,
		Curve:        v.Curve,
	}
}
