package stratus

import (
	"errors"
	"fmt"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents the in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents a NATS JetStream KV cache, for
	// installations that share one cache across machines.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables response caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for cache construction.
var (
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
)

// DefaultCacheSize is the default entry limit of the memory backend.
const DefaultCacheSize = 256

// CacheConfig configures the response-cache backend.
type CacheConfig struct {
	// Type is the cache backend type.
	Type CacheType

	// Memory cache configuration.
	Memory *MemoryCacheConfig

	// NATS KV cache configuration.
	NATS *NATSKVConfig

	// Options applies to any backend. Nil means DefaultCacheOptions.
	Options *CacheOptions
}

// MemoryCacheConfig configures the memory backend.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of cached responses.
	MaxSize int
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		Memory:  &MemoryCacheConfig{MaxSize: DefaultCacheSize},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		maxSize := DefaultCacheSize
		if config.Memory != nil && config.Memory.MaxSize > 0 {
			maxSize = config.Memory.MaxSize
		}

		return NewMemoryCache(maxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewCacheManagerFromConfig builds the manager wired into the transport
// layer. A nil config or CacheTypeNone yields a nil manager, which
// disables caching entirely.
func NewCacheManagerFromConfig(config *CacheConfig) (*CacheManager, error) {
	if config == nil || config.Type == CacheTypeNone {
		return nil, nil
	}

	cache, err := NewCacheFromConfig(config)
	if err != nil {
		return nil, err
	}

	if cache == nil {
		return nil, nil
	}

	return NewCacheManager(cache, config.Options), nil
}
