package database

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pageza/snaptop/client/internal/session"
)

// SQLiteFile is the database file created under the storage directory
const SQLiteFile = "session.db"

// KVEntry is one stored value
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName overrides the gorm default
func (KVEntry) TableName() string {
	return "kv_entries"
}

// SQLiteStorage keeps values in a local SQLite file
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage opens (creating if needed) the session database in dir
func NewSQLiteStorage(dir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create storage directory %s", dir)
	}
	return OpenSQLite(filepath.Join(dir, SQLiteFile))
}

// OpenSQLite opens the database at dsn. ":memory:" is accepted for tests.
func OpenSQLite(dsn string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	if dsn == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get sqlite handle")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return &SQLiteStorage{db: db}, nil
}

// RunMigrations creates the key-value table
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return errors.Wrap(err, "failed to migrate kv_entries")
	}
	return nil
}

// Get returns the value for key or session.ErrKeyNotFound
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("`key` = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", session.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", key)
	}
	return entry.Value, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	return errors.Wrapf(err, "failed to write %s", key)
}

// Delete removes keys. Missing keys are ignored.
func (s *SQLiteStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Where("`key` IN ?", keys).Delete(&KVEntry{}).Error
	return errors.Wrap(err, "failed to delete keys")
}

// Close releases the database file
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sqlite handle")
	}
	return sqlDB.Close()
}
