// Package sqlarea stores credential entries in a SQL table through GORM.
//
// The default driver is SQLite, which gives a single-file durable area for
// command-line clients. Any GORM dialector works.
package sqlarea

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one stored key.
type Entry struct {
	Namespace string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable across GORM naming strategies.
func (Entry) TableName() string { return "credential_entries" }

// Area is a [storage.Area] backed by a GORM database.
type Area struct {
	db        *gorm.DB
	namespace string
}

// New migrates the entry table on db and returns an area scoped to namespace.
func New(db *gorm.DB, namespace string) (*Area, error) {
	if db == nil {
		return nil, errors.New("sqlarea: nil database")
	}
	if namespace == "" {
		namespace = "default"
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", storage.ErrUnavailable, err)
	}
	return &Area{db: db, namespace: namespace}, nil
}

// OpenSQLite opens (or creates) a SQLite database at dsn with GORM logging
// silenced and returns an area over it.
func OpenSQLite(dsn, namespace string) (*Area, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", storage.ErrUnavailable, err)
	}
	return New(db, namespace)
}

func (a *Area) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := a.db.WithContext(ctx).
		Where("namespace = ? AND name = ?", a.namespace, key).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return e.Value, true, nil
}

func (a *Area) Set(ctx context.Context, key, value string) error {
	return a.SetMany(ctx, map[string]string{key: value})
}

// SetMany upserts all entries in a single transaction.
func (a *Area) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]Entry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, Entry{Namespace: a.namespace, Name: k, Value: v, UpdatedAt: now})
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func (a *Area) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := a.db.WithContext(ctx).
		Where("namespace = ? AND name IN ?", a.namespace, keys).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Close closes the underlying database connection pool.
func (a *Area) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
