package redis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// Projection cache keys, one listing per aggregate type. The invalidation
// handler derives the same keys from committed event types.
const (
	KeyDevices        = "projection:devices"
	KeyTools          = "projection:tools"
	KeyQualifications = "projection:qualifications"
)

// cachedList serves a listing from the cache when present, otherwise loads it
// and fills the cache. Cache failures fall through to the loader; a stale or
// cold cache must never fail a read.
func cachedList[T any](ctx context.Context, cache *ProjectionCache, key string, log zerolog.Logger, load func(context.Context) ([]T, error)) ([]T, error) {
	var cached []T
	err := cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if err != ErrCacheMiss {
		log.Warn().Err(err).Str("key", key).Msg("projection cache read failed")
	}

	loaded, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, key, loaded); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("projection cache write failed")
	}
	return loaded, nil
}

// CachedDeviceRepository caches the device listing in front of the event store.
type CachedDeviceRepository struct {
	ports.DeviceRepository
	cache *ProjectionCache
	log   zerolog.Logger
}

func NewCachedDeviceRepository(inner ports.DeviceRepository, cache *ProjectionCache, log zerolog.Logger) *CachedDeviceRepository {
	return &CachedDeviceRepository{DeviceRepository: inner, cache: cache, log: log}
}

func (r *CachedDeviceRepository) GetAll(ctx context.Context) ([]*domain.Device, error) {
	return cachedList(ctx, r.cache, KeyDevices, r.log, r.DeviceRepository.GetAll)
}

// CachedToolRepository caches the tool listing in front of the event store.
type CachedToolRepository struct {
	ports.ToolRepository
	cache *ProjectionCache
	log   zerolog.Logger
}

func NewCachedToolRepository(inner ports.ToolRepository, cache *ProjectionCache, log zerolog.Logger) *CachedToolRepository {
	return &CachedToolRepository{ToolRepository: inner, cache: cache, log: log}
}

func (r *CachedToolRepository) GetAll(ctx context.Context) ([]*domain.Tool, error) {
	return cachedList(ctx, r.cache, KeyTools, r.log, r.ToolRepository.GetAll)
}

// CachedQualificationRepository caches the qualification listing in front of
// the event store.
type CachedQualificationRepository struct {
	ports.QualificationRepository
	cache *ProjectionCache
	log   zerolog.Logger
}

func NewCachedQualificationRepository(inner ports.QualificationRepository, cache *ProjectionCache, log zerolog.Logger) *CachedQualificationRepository {
	return &CachedQualificationRepository{QualificationRepository: inner, cache: cache, log: log}
}

func (r *CachedQualificationRepository) GetAll(ctx context.Context) ([]*domain.Qualification, error) {
	return cachedList(ctx, r.cache, KeyQualifications, r.log, r.QualificationRepository.GetAll)
}
