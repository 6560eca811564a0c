package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one (owner, key) row in the key-value table.
type Entry struct {
	OwnerID   string `gorm:"primaryKey;size:191"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

// GormStore persists values in a relational key-value table via GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGorm wraps the given DB and migrates the key-value table.
func NewGorm(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND key = ?", owner, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, owner, key, value string) error {
	entry := Entry{
		OwnerID:   owner,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *GormStore) Delete(ctx context.Context, owner, key string) error {
	return s.db.WithContext(ctx).
		Where("owner_id = ? AND key = ?", owner, key).
		Delete(&Entry{}).Error
}
