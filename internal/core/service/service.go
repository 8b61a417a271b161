package service

import (
	"time"

	"github.com/makerhive/access-system/internal/core/domain"
)

// Clock supplies the current time to commands. Injected so tests can freeze it.
type Clock func() time.Time

// IDGenerator mints new aggregate ids. Injected so tests can fix them.
type IDGenerator func() string

// requireActor fails with NotAuthenticated when no actor identity is present.
// Commands run this before any permission or repository work.
func requireActor(actor domain.Actor, correlationID string) *domain.Error {
	if actor == nil {
		return domain.NewNotAuthenticated(correlationID, "no actor identity present")
	}
	return nil
}

// requireManage gates admin-only commands against the target aggregate.
func requireManage(actor domain.Actor, correlationID, targetID string) *domain.Error {
	if err := requireActor(actor, correlationID); err != nil {
		return err
	}
	if !domain.CanManage(actor) {
		return domain.NewPermissionDenied(correlationID, "admin required", map[string]string{
			"target_id": targetID,
		})
	}
	return nil
}
