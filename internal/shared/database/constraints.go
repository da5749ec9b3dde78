package database

import (
	"fmt"

	"gorm.io/gorm"
)

var constraintStatements = []string{
	// Children of a node are read back in insertion order on restore.
	`CREATE INDEX IF NOT EXISTS idx_venue_nodes_parent_position
		ON venue_nodes (venue_id, parent_id, position)`,

	`CREATE INDEX IF NOT EXISTS idx_events_venue_starts_at
		ON events (venue_id, starts_at)`,

	`CREATE INDEX IF NOT EXISTS idx_seat_bookings_event_id
		ON seat_bookings (event_id)`,
}

// MigrateConstraints adds the indexes AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply constraint: %w", err)
		}
	}
	return nil
}
