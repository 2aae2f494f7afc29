package models

import (
	"time"

	"gorm.io/gorm"
)

// KVSlot is one persisted collection in the SQL backend. Each collection is
// stored whole as a JSON document under a fixed key.
type KVSlot struct {
	Key       string    `gorm:"primarykey;size:64" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels returns all models for migration
func AllModels() []interface{} {
	return []interface{}{
		&KVSlot{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
