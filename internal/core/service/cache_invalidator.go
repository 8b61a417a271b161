package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
)

// ProjectionCache abstracts the read-side listing cache (Redis).
type ProjectionCache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// CacheInvalidator drops the cached listing of an aggregate type whenever one
// of its events commits, so read-side listings converge on the new state.
// A failed invalidation only delays convergence until the cache TTL expires.
type CacheInvalidator struct {
	cache ProjectionCache
	log   zerolog.Logger
}

func NewCacheInvalidator(cache ProjectionCache, log zerolog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, log: log}
}

func (h *CacheInvalidator) EventTypes() []string {
	return []string{
		domain.EventTypeUserCreated,
		domain.EventTypeUserPersonalInformationChanged,
		domain.EventTypeUserLockStateChanged,
		domain.EventTypeUserIsAdminChanged,
		domain.EventTypeMemberQualificationAdded,
		domain.EventTypeMemberQualificationRemoved,
		domain.EventTypeInstructorQualificationAdded,
		domain.EventTypeInstructorQualificationRemoved,
		domain.EventTypeUsernamePasswordIdentityAdded,
		domain.EventTypeCardIdentityAdded,
		domain.EventTypePhoneNrIdentityAdded,
		domain.EventTypePinIdentityAdded,
		domain.EventTypeWebauthnIdentityAdded,
		domain.EventTypeUserIdentityRemoved,
		domain.EventTypeUserDeleted,
		domain.EventTypeDeviceCreated,
		domain.EventTypeDeviceDetailsChanged,
		domain.EventTypeToolAttached,
		domain.EventTypeToolDetached,
		domain.EventTypeDeviceDeleted,
		domain.EventTypeToolCreated,
		domain.EventTypeToolDetailsChanged,
		domain.EventTypeToolDeleted,
		domain.EventTypeQualificationCreated,
		domain.EventTypeQualificationDetailsChanged,
		domain.EventTypeQualificationDeleted,
	}
}

func (h *CacheInvalidator) Handle(ctx context.Context, event domain.SourcingEvent) {
	// Event types are "<aggregate>.<transition>"; the cache is keyed per
	// aggregate type.
	aggregate, _, ok := strings.Cut(event.EventType(), ".")
	if !ok {
		return
	}
	key := "projection:" + aggregate + "s"
	if err := h.cache.Invalidate(ctx, key); err != nil {
		h.log.Warn().Err(err).
			Str("key", key).
			Str("event_type", event.EventType()).
			Msg("projection cache invalidation failed")
	}
}
