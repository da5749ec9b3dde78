package venues

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"seatmap/internal/layout"
)

// Repository persists venue layouts. Every node write also stamps the
// venue with the model version it produced.
type Repository interface {
	GetVenue(ctx context.Context, venueID string) (*Venue, error)
	ReplaceVenue(ctx context.Context, venue *Venue, nodes []VenueNode) error
	InsertNode(ctx context.Context, venueID string, version uint64, node *VenueNode) error
	UpdateNode(ctx context.Context, venueID string, version uint64, nodeID string, updates map[string]interface{}) error
	DeleteNodes(ctx context.Context, venueID string, version uint64, nodeIDs []string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetVenue(ctx context.Context, venueID string) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&venue, "id = ?", venueID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, layout.ErrVenueNotFound
		}
		return nil, err
	}
	return &venue, nil
}

// ReplaceVenue writes a whole layout, dropping whatever was stored before.
func (r *repository) ReplaceVenue(ctx context.Context, venue *Venue, nodes []VenueNode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venue_id = ?", venue.ID).Delete(&VenueNode{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Nodes").Save(venue).Error; err != nil {
			return err
		}
		if len(nodes) == 0 {
			return nil
		}
		return tx.CreateInBatches(nodes, 500).Error
	})
}

func (r *repository) InsertNode(ctx context.Context, venueID string, version uint64, node *VenueNode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(node).Error; err != nil {
			return err
		}
		return stampVersion(tx, venueID, version)
	})
}

func (r *repository) UpdateNode(ctx context.Context, venueID string, version uint64, nodeID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&VenueNode{}).
			Where("venue_id = ? AND node_id = ?", venueID, nodeID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return layout.ErrNodeNotFound
		}
		return stampVersion(tx, venueID, version)
	})
}

func (r *repository) DeleteNodes(ctx context.Context, venueID string, version uint64, nodeIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(nodeIDs) > 0 {
			err := tx.Where("venue_id = ? AND node_id IN ?", venueID, nodeIDs).
				Delete(&VenueNode{}).Error
			if err != nil {
				return err
			}
		}
		return stampVersion(tx, venueID, version)
	})
}

func stampVersion(tx *gorm.DB, venueID string, version uint64) error {
	return tx.Model(&Venue{}).Where("id = ?", venueID).Update("version", version).Error
}
