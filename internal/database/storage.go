// Package database provides the durable key-value storage behind the session
// store.
package database

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/config"
	"github.com/pageza/snaptop/client/internal/session"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Store is a session.Storage that holds resources
type Store interface {
	session.Storage
	io.Closer
}

var (
	_ Store = (*SQLiteStorage)(nil)
	_ Store = (*RedisStorage)(nil)
	_ Store = (*MemoryStorage)(nil)
)

// Open returns the storage selected by cfg.StorageDriver
func Open(cfg *config.Config, log logrus.FieldLogger) (Store, error) {
	log = log.WithField("driver", cfg.StorageDriver)
	switch cfg.StorageDriver {
	case DriverSQLite, "":
		s, err := NewSQLiteStorage(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		log.WithField("dir", cfg.StorageDir).Debug("opened session storage")
		return s, nil
	case DriverRedis:
		client, err := NewRedisClient(cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		return NewRedisStorage(client), nil
	case DriverMemory:
		log.Debug("using in-memory session storage")
		return NewMemoryStorage(), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
