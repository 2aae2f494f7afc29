package kv

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

var _ Store = (*GormStore)(nil)

// GormStore keeps slots as rows of the kv_slots table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, error) {
	var slot models.KVSlot
	err := s.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", key, err)
	}
	return []byte(slot.Value), nil
}

func (s *GormStore) Save(ctx context.Context, key string, value []byte) error {
	slot := models.KVSlot{Key: key, Value: string(value)}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).Delete(&models.KVSlot{}).Error; err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
