package models

import "time"

// SchemaMeta pins the local schema version so a future release can detect
// and migrate old databases.
type SchemaMeta struct {
	ID        uint `gorm:"primaryKey"`
	Version   int  `gorm:"not null"`
	CreatedAt time.Time
}
