package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// ToolHandler handles HTTP requests for tool operations.
type ToolHandler struct {
	service ports.ToolService
}

func NewToolHandler(service ports.ToolService) *ToolHandler {
	return &ToolHandler{service: service}
}

// Create handles POST /api/v1/tools.
//
// @Summary      Create a tool
// @Tags         tools
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createToolRequest  true  "Tool details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/tools [post]
func (h *ToolHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createToolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.AddTool(c.Request().Context(), actor, ctxCorrelationID(c), ports.AddToolInput{
		Name:                   req.Name,
		Type:                   domain.ToolType(req.Type),
		TimeLimitSeconds:       req.TimeLimitSeconds,
		RequiredQualifications: req.RequiredQualifications,
		Enabled:                req.Enabled,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

// Update handles PATCH /api/v1/tools/:id.
//
// @Summary      Update tool details
// @Tags         tools
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "Tool id"
// @Param        body  body  updateToolRequest  true  "Fields to change"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/tools/{id} [patch]
func (h *ToolHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateToolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangeToolDetails(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.toUpdate()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/tools/:id. Deleting a tool also detaches it
// from every device pin it occupies, eventually.
//
// @Summary      Delete a tool
// @Tags         tools
// @Security     BearerAuth
// @Param        id  path  string  true  "Tool id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/tools/{id} [delete]
func (h *ToolHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTool(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /api/v1/tools/:id.
//
// @Summary      Get a tool
// @Tags         tools
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tool id"
// @Success      200  {object}  toolResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/tools/{id} [get]
func (h *ToolHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	tool, err := h.service.GetTool(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toToolResponse(tool))
}

// List handles GET /api/v1/tools.
//
// @Summary      List tools
// @Tags         tools
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  toolResponse
// @Router       /api/v1/tools [get]
func (h *ToolHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	tools, err := h.service.GetAllTools(c.Request().Context(), actor, ctxCorrelationID(c))
	if err != nil {
		return err
	}

	resp := make([]toolResponse, 0, len(tools))
	for _, t := range tools {
		resp = append(resp, toToolResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}
