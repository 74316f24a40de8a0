// Package gormstore keeps saves in Postgres through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/nathoo/gloomcore/store"
)

// SaveSlot is a row of the save_slots table.
type SaveSlot struct {
	Name      string    `gorm:"column:name;primaryKey;size:64"`
	Slot      string    `gorm:"column:slot;size:16;not null;index"`
	SavedAt   time.Time `gorm:"column:saved_at;not null"`
	Data      []byte    `gorm:"column:data;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SaveSlot) TableName() string { return "save_slots" }

// Store is a store.Store backed by a gorm database.
type Store struct {
	db *gorm.DB
}

var _ store.Store = Store{}

// OpenPostgres connects to dsn with gorm's own logging silenced.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// New migrates the save_slots table and returns a Store using db.
func New(ctx context.Context, db *gorm.DB) (Store, error) {
	if err := db.WithContext(ctx).AutoMigrate(&SaveSlot{}); err != nil {
		return Store{}, fmt.Errorf("migrate save_slots: %w", err)
	}
	return Store{db: db}, nil
}

// Put upserts rec under name.
func (s Store) Put(ctx context.Context, name string, rec store.Record) error {
	if err := store.ValidName(name); err != nil {
		return err
	}
	row := SaveSlot{
		Name:    name,
		Slot:    rec.Slot,
		SavedAt: rec.SavedAt,
		Data:    rec.Data,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"slot", "saved_at", "data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("put save %s: %w", name, err)
	}
	return nil
}

// Get loads the record saved under name.
func (s Store) Get(ctx context.Context, name string) (store.Record, error) {
	var row SaveSlot
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Record{}, fmt.Errorf("%s: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get save %s: %w", name, err)
	}
	return store.Record{Name: row.Name, Slot: row.Slot, SavedAt: row.SavedAt, Data: row.Data}, nil
}

// List returns every save, newest first, without data.
func (s Store) List(ctx context.Context) ([]store.Record, error) {
	var rows []SaveSlot
	err := s.db.WithContext(ctx).
		Select("name", "slot", "saved_at").
		Order("saved_at DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	recs := make([]store.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, store.Record{Name: r.Name, Slot: r.Slot, SavedAt: r.SavedAt})
	}
	return recs, nil
}

// Delete removes the save under name. Deleting a missing save is not an error.
func (s Store) Delete(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&SaveSlot{}).Error; err != nil {
		return fmt.Errorf("delete save %s: %w", name, err)
	}
	return nil
}
