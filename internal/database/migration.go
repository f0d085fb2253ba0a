package database

import (
	"errors"
	"fmt"

	"github.com/md-faizanahmad/quick-tracker/internal/models"

	"gorm.io/gorm"
)

// SchemaVersion is the current local schema layout version.
const SchemaVersion = 1

// AutoMigrate runs database schema migrations and pins the schema version.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ExpenseRecord{},
		&models.SchemaMeta{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var meta models.SchemaMeta
	err := db.First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.Create(&models.SchemaMeta{Version: SchemaVersion}).Error; err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if meta.Version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", meta.Version, SchemaVersion)
	}
	return nil
}
