package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/models"
)

// RunMigrations creates or updates the audit schema
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ModerationEvent{}); err != nil {
		return fmt.Errorf("failed to migrate audit schema: %w", err)
	}
	return nil
}

// DropTables removes the audit schema
func DropTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&models.ModerationEvent{}); err != nil {
		return fmt.Errorf("failed to drop audit schema: %w", err)
	}
	return nil
}
