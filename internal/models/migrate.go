package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the tables with their check constraints (positive price,
// non-negative quantity) and the case-insensitive sweet name index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	// names are unique per category regardless of case
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_sweets_name_category ON sweets (LOWER(name), category)").Error; err != nil {
		return fmt.Errorf("create sweets name index: %w", err)
	}
	return nil
}
