package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /api/v1/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.AddUser(c.Request().Context(), actor, ctxCorrelationID(c), ports.AddUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		WikiName:  req.WikiName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

// Update handles PATCH /api/v1/users/:id.
//
// @Summary      Update personal information
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "User id"
// @Param        body  body  updateUserRequest  true  "Fields to change"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangePersonalInformation(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.toUpdate()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateLockState handles PATCH /api/v1/users/:id/lock.
//
// @Summary      Lock or unlock a user
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                  true  "User id"
// @Param        body  body  updateLockStateRequest  true  "Lock flag and notes"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/users/{id}/lock [patch]
func (h *UserHandler) UpdateLockState(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateLockStateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.ChangeLockState(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.toUpdate()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateIsAdmin handles PATCH /api/v1/users/:id/admin.
//
// @Summary      Grant or revoke the admin flag
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                true  "User id"
// @Param        body  body  updateIsAdminRequest  true  "New admin flag"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/users/{id}/admin [patch]
func (h *UserHandler) UpdateIsAdmin(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateIsAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangeIsAdmin(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), *req.IsAdmin); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddMemberQualification handles PUT /api/v1/users/:id/member-qualifications/:qualificationId.
//
// @Summary      Grant a member qualification
// @Tags         users
// @Security     BearerAuth
// @Param        id               path  string  true  "User id"
// @Param        qualificationId  path  string  true  "Qualification id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/member-qualifications/{qualificationId} [put]
func (h *UserHandler) AddMemberQualification(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.AddMemberQualification(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), c.Param("qualificationId")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveMemberQualification handles DELETE /api/v1/users/:id/member-qualifications/:qualificationId.
//
// @Summary      Revoke a member qualification
// @Tags         users
// @Security     BearerAuth
// @Param        id               path  string  true  "User id"
// @Param        qualificationId  path  string  true  "Qualification id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/member-qualifications/{qualificationId} [delete]
func (h *UserHandler) RemoveMemberQualification(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.RemoveMemberQualification(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), c.Param("qualificationId")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddInstructorQualification handles PUT /api/v1/users/:id/instructor-qualifications/:qualificationId.
//
// @Summary      Grant an instructor qualification
// @Tags         users
// @Security     BearerAuth
// @Param        id               path  string  true  "User id"
// @Param        qualificationId  path  string  true  "Qualification id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/instructor-qualifications/{qualificationId} [put]
func (h *UserHandler) AddInstructorQualification(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.AddInstructorQualification(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), c.Param("qualificationId")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveInstructorQualification handles DELETE /api/v1/users/:id/instructor-qualifications/:qualificationId.
//
// @Summary      Revoke an instructor qualification
// @Tags         users
// @Security     BearerAuth
// @Param        id               path  string  true  "User id"
// @Param        qualificationId  path  string  true  "Qualification id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/instructor-qualifications/{qualificationId} [delete]
func (h *UserHandler) RemoveInstructorQualification(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.RemoveInstructorQualification(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), c.Param("qualificationId")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddUsernamePasswordIdentity handles POST /api/v1/users/:id/identities/username-password.
//
// @Summary      Add a username/password credential
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                              true  "User id"
// @Param        body  body  addUsernamePasswordIdentityRequest  true  "Credential"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/identities/username-password [post]
func (h *UserHandler) AddUsernamePasswordIdentity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req addUsernamePasswordIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddUsernamePasswordIdentity(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.Username, req.Password); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddCardIdentity handles POST /api/v1/users/:id/identities/card.
//
// @Summary      Add an access card credential
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                  true  "User id"
// @Param        body  body  addCardIdentityRequest  true  "Credential"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/identities/card [post]
func (h *UserHandler) AddCardIdentity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req addCardIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddCardIdentity(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.CardID, req.CardSecret); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddPhoneNrIdentity handles POST /api/v1/users/:id/identities/phone-nr.
//
// @Summary      Add a phone number credential
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                     true  "User id"
// @Param        body  body  addPhoneNrIdentityRequest  true  "Credential"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/identities/phone-nr [post]
func (h *UserHandler) AddPhoneNrIdentity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req addPhoneNrIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddPhoneNrIdentity(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.PhoneNr); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddPinIdentity handles POST /api/v1/users/:id/identities/pin.
//
// @Summary      Add a PIN credential
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                 true  "User id"
// @Param        body  body  addPinIdentityRequest  true  "Credential"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/identities/pin [post]
func (h *UserHandler) AddPinIdentity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req addPinIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddPinIdentity(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.Pin); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AddWebauthnIdentity handles POST /api/v1/users/:id/identities/webauthn.
//
// @Summary      Add a WebAuthn credential
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                      true  "User id"
// @Param        body  body  addWebauthnIdentityRequest  true  "Credential"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/identities/webauthn [post]
func (h *UserHandler) AddWebauthnIdentity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req addWebauthnIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddWebauthnIdentity(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.CredentialID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveIdentity handles DELETE /api/v1/users/:id/identities/:kind.
//
// @Summary      Remove a credential by kind
// @Tags         users
// @Security     BearerAuth
// @Param        id    path  string  true  "User id"
// @Param        kind  path  string  true  "Identity kind"  Enums(username_password, card, phone_nr, pin, webauthn)
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/users/{id}/identities/{kind} [delete]
func (h *UserHandler) RemoveIdentity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	kind := domain.IdentityKind(c.Param("kind"))
	switch kind {
	case domain.IdentityKindUsernamePassword, domain.IdentityKindCard,
		domain.IdentityKindPhoneNr, domain.IdentityKindPin, domain.IdentityKindWebauthn:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown identity kind")
	}

	if err := h.service.RemoveIdentity(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), kind); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /api/v1/users/:id. Users may read themselves; everything
// else requires admin.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// List handles GET /api/v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  userResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	users, err := h.service.GetAllUsers(c.Request().Context(), actor, ctxCorrelationID(c))
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}
