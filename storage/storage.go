package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under a key
var ErrNotFound = errors.New("storage: key not found")

// Storage is a flat key-value medium. Each key holds one JSON document.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any connections held by the backend
	Close() error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeMemory   StorageType = "memory"
	StorageTypeNone     StorageType = "none"
	StorageTypeLocal    StorageType = "local"
	StorageTypeS3       StorageType = "s3"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeRedis    StorageType = "redis"
	StorageTypeSQLite   StorageType = "sqlite"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Prefix     string
	S3Region     string
	S3Endpoint   string // optional, for S3-compatible services
	AWSAccessKey string
	AWSSecretKey string
	DatabaseURL  string // For postgres storage
	RedisURL     string // For redis storage
	SQLitePath   string // For sqlite storage
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeMemory:
		return NewMemoryStorage(), nil
	case StorageTypeNone:
		return NewNullStorage(), nil
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for postgres storage")
		}
		return NewPostgresStorageFromURL(ctx, cfg.DatabaseURL)
	case StorageTypeRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for redis storage")
		}
		return NewRedisStorage(ctx, cfg.RedisURL)
	case StorageTypeSQLite:
		return NewSQLiteStorage(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// objectPath maps a bucket key onto a relative file or object path
func objectPath(key string) string {
	parts := strings.Split(key, "/")
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		// Sanitize each segment
		p = strings.ReplaceAll(p, "\\", "_")
		p = strings.ReplaceAll(p, " ", "_")
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean = append(clean, p)
	}
	return filepath.ToSlash(filepath.Join(clean...)) + ".json"
}
