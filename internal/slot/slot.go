// Package slot provides durable key-value slots that hold a serialized cart
// snapshot under a fixed key.
package slot

import (
	"context"
	"errors"
	"fmt"

	"cart-service/config"
)

// ErrNotFound is returned by Get when nothing is stored under the key
var ErrNotFound = errors.New("slot: key not found")

// Slot is a durable key-value store holding whole snapshots
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Open creates the slot selected by the storage configuration
func Open(cfg config.StorageConfig) (Slot, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLite(cfg.SQLitePath)
	case BackendPostgres:
		return NewPostgres(cfg.DatabaseURL)
	case BackendRedis:
		return NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
