package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/ports"
)

// AuthHandler handles login and controller token provisioning.
type AuthHandler struct {
	service ports.AuthService
}

func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type deviceTokenResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/v1/auth/login.
//
// @Summary      Authenticate with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.service.Login(c.Request().Context(), ctxCorrelationID(c), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, UserID: user.ID})
}

// IssueDeviceToken handles POST /api/v1/devices/:id/token. Admin-only; the
// returned token is installed on the controller during provisioning.
//
// @Summary      Issue a controller token for a device
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      201  {object}  deviceTokenResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/devices/{id}/token [post]
func (h *AuthHandler) IssueDeviceToken(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	token, err := h.service.IssueDeviceToken(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, deviceTokenResponse{Token: token})
}
