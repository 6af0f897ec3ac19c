package store

import (
	"fmt"
	"strings"

	"github.com/go-training/quaderno-connect/pkg/core"
)

// StoreType represents the type of store backend.
type StoreType string

const (
	// StoreTypeMemory represents in-memory storage.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeRedis represents Redis storage.
	StoreTypeRedis StoreType = "redis"
)

// Config contains configuration for creating a store.
type Config struct {
	// Type specifies the store type (memory or redis).
	Type StoreType
	// Redis contains Redis-specific configuration.
	Redis RedisOptions
}

// ParseStoreType parses a string into a StoreType.
// Empty input selects memory; unknown names are an error.
func ParseStoreType(s string) (StoreType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "memory":
		return StoreTypeMemory, nil
	case "redis":
		return StoreTypeRedis, nil
	default:
		return "", fmt.Errorf("unsupported store type: %s", s)
	}
}

// String returns the string representation of a StoreType.
func (t StoreType) String() string {
	return string(t)
}

// IsValid returns true if the StoreType is valid.
func (t StoreType) IsValid() bool {
	switch t {
	case StoreTypeMemory, StoreTypeRedis:
		return true
	default:
		return false
	}
}

// NewStore creates the store described by config. The returned close
// function releases backend connections and is never nil.
func NewStore(config Config) (core.Store, func(), error) {
	switch config.Type {
	case StoreTypeMemory:
		return NewMemoryStore(), func() {}, nil
	case StoreTypeRedis:
		rs, err := NewRedisStoreFromOptions(config.Redis)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// MemoryConfig creates a memory store configuration.
func MemoryConfig() Config {
	return Config{
		Type: StoreTypeMemory,
	}
}

// RedisConfig creates a Redis store configuration with the provided options.
func RedisConfig(redisOpts RedisOptions) Config {
	return Config{
		Type:  StoreTypeRedis,
		Redis: redisOpts,
	}
}
