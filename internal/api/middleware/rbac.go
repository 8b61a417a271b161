package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/domain"
)

// RequireAdmin rejects requests from non-admin actors before they reach the
// handler. The services re-check permissions, so this is only an early gate
// for route groups that are admin-only in their entirety.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, _ := c.Get(ActorKey).(domain.Actor)
			if actor == nil || !domain.CanManage(actor) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
