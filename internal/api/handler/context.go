package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/api/middleware"
	"github.com/makerhive/access-system/internal/core/domain"
)

// ctxActor extracts the actor injected by the Auth middleware. Its presence
// proves the middleware ran; handlers fail fast before any service call.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, _ := c.Get(middleware.ActorKey).(domain.Actor)
	if actor == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}

// ctxCorrelationID returns the request id assigned by the RequestID
// middleware. It is stamped onto every event the request causes and echoed
// back in error responses.
func ctxCorrelationID(c echo.Context) string {
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
