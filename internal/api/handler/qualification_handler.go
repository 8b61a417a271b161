package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/ports"
)

// QualificationHandler handles HTTP requests for qualification operations.
type QualificationHandler struct {
	service ports.QualificationService
}

func NewQualificationHandler(service ports.QualificationService) *QualificationHandler {
	return &QualificationHandler{service: service}
}

// Create handles POST /api/v1/qualifications.
//
// @Summary      Create a qualification
// @Tags         qualifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createQualificationRequest  true  "Qualification details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/v1/qualifications [post]
func (h *QualificationHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createQualificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.AddQualification(c.Request().Context(), actor, ctxCorrelationID(c), ports.AddQualificationInput{
		Name:        req.Name,
		Description: req.Description,
		Colour:      req.Colour,
		OrderNr:     req.OrderNr,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

// Update handles PATCH /api/v1/qualifications/:id.
//
// @Summary      Update qualification details
// @Tags         qualifications
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                      true  "Qualification id"
// @Param        body  body  updateQualificationRequest  true  "Fields to change"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/qualifications/{id} [patch]
func (h *QualificationHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateQualificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangeQualificationDetails(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.toUpdate()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/qualifications/:id. Deleting a qualification
// also revokes it from every user holding it, eventually.
//
// @Summary      Delete a qualification
// @Tags         qualifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Qualification id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/qualifications/{id} [delete]
func (h *QualificationHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteQualification(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /api/v1/qualifications/:id.
//
// @Summary      Get a qualification
// @Tags         qualifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Qualification id"
// @Success      200  {object}  qualificationResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/qualifications/{id} [get]
func (h *QualificationHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	qualification, err := h.service.GetQualification(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toQualificationResponse(qualification))
}

// List handles GET /api/v1/qualifications.
//
// @Summary      List qualifications
// @Tags         qualifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  qualificationResponse
// @Router       /api/v1/qualifications [get]
func (h *QualificationHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	qualifications, err := h.service.GetAllQualifications(c.Request().Context(), actor, ctxCorrelationID(c))
	if err != nil {
		return err
	}

	resp := make([]qualificationResponse, 0, len(qualifications))
	for _, q := range qualifications {
		resp = append(resp, toQualificationResponse(q))
	}
	return c.JSON(http.StatusOK, resp)
}
