package kv

import (
	"fmt"

	"github.com/mikepea/chitfund/pkg/chitfund/database"
)

// Driver names a storage backend
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Options selects and configures a backend
type Options struct {
	Driver     Driver
	SQLitePath string
	Redis      RedisOptions
}

// Open creates the Store named by opts.Driver
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			path = "chitfund.db" // Default path
		}
		if err := database.Connect(path); err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return NewGormStore(database.GetDB()), nil

	case DriverRedis:
		return NewRedisStore(opts.Redis)

	case DriverMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", opts.Driver)
	}
}
