package tickets

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	ListByVenue(ctx context.Context, venueID string) ([]TicketAssignment, error)
	Upsert(ctx context.Context, assignment *TicketAssignment) error
	Delete(ctx context.Context, venueID string, nodeIDs []string) error
	ReplaceVenue(ctx context.Context, venueID string, assignments []TicketAssignment) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByVenue(ctx context.Context, venueID string) ([]TicketAssignment, error) {
	var out []TicketAssignment
	err := r.db.WithContext(ctx).Where("venue_id = ?", venueID).Order("node_id").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Upsert(ctx context.Context, assignment *TicketAssignment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "venue_id"}, {Name: "node_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ticket_type_id", "price", "overrides_children", "updated_at"}),
	}).Create(assignment).Error
}

func (r *repository) Delete(ctx context.Context, venueID string, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("venue_id = ? AND node_id IN ?", venueID, nodeIDs).
		Delete(&TicketAssignment{}).Error
}

// ReplaceVenue swaps every assignment of a venue in one transaction.
func (r *repository) ReplaceVenue(ctx context.Context, venueID string, assignments []TicketAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venue_id = ?", venueID).Delete(&TicketAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to clear ticket assignments: %w", err)
		}
		if len(assignments) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(assignments, 500).Error; err != nil {
			return fmt.Errorf("failed to insert ticket assignments: %w", err)
		}
		return nil
	})
}
