package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return rec, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		name string
		err  *domain.Error
		want int
	}{
		{"not found", domain.NewNotFound("corr1", "tool not found", nil), http.StatusNotFound},
		{"version conflict", domain.NewVersionConflict("corr1", "version changed", nil), http.StatusConflict},
		{"permission denied", domain.NewPermissionDenied("corr1", "admins only", nil), http.StatusForbidden},
		{"not authenticated", domain.NewNotAuthenticated("corr1", "invalid credentials"), http.StatusUnauthorized},
		{"invariant violation", domain.NewInvariantViolation("corr1", "pin occupied", nil), http.StatusUnprocessableEntity},
		{"storage unavailable", domain.NewStorageUnavailable("corr1", errors.New("mongo down")), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := render(t, tc.err)
			if rec.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rec.Code)
			}
			if body.CorrelationID != "corr1" {
				t.Errorf("correlation id not rendered: %+v", body)
			}
		})
	}
}

func TestErrorHandler_DomainContextRendered(t *testing.T) {
	err := domain.NewInvariantViolation("corr1", "pin already occupied", map[string]string{
		"pin": "2", "tool_id": "t1",
	})
	_, body := render(t, err)
	if body.Context["pin"] != "2" || body.Context["tool_id"] != "t1" {
		t.Errorf("context not rendered: %+v", body.Context)
	}
}

func TestErrorHandler_EchoError(t *testing.T) {
	rec, body := render(t, echo.NewHTTPError(http.StatusBadRequest, "invalid pin"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if body.Error != "invalid pin" {
		t.Errorf("message not rendered: %+v", body)
	}
}

func TestErrorHandler_UnexpectedError(t *testing.T) {
	rec, body := render(t, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body.Error != "internal server error" {
		t.Errorf("internal details must not leak: %+v", body)
	}
}
