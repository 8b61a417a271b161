package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/makerhive/access-system/internal/core/ports"
)

// DeviceHandler handles HTTP requests for device operations.
type DeviceHandler struct {
	service ports.DeviceService
}

func NewDeviceHandler(service ports.DeviceService) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// pinParam parses the :pin path segment. Pins are small non-negative numbers
// set by the hardware layout.
func pinParam(c echo.Context) (int, error) {
	pin, err := strconv.Atoi(c.Param("pin"))
	if err != nil || pin < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid pin")
	}
	return pin, nil
}

// Create handles POST /api/v1/devices.
//
// @Summary      Create a device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDeviceRequest  true  "Device details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/v1/devices [post]
func (h *DeviceHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.AddDevice(c.Request().Context(), actor, ctxCorrelationID(c), ports.AddDeviceInput{
		Name:             req.Name,
		Background:       req.Background,
		BackupBackendURL: req.BackupBackendURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

// Update handles PATCH /api/v1/devices/:id.
//
// @Summary      Update device details
// @Tags         devices
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string               true  "Device id"
// @Param        body  body  updateDeviceRequest  true  "Fields to change"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/devices/{id} [patch]
func (h *DeviceHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangeDeviceDetails(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), req.toUpdate()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// AttachTool handles PUT /api/v1/devices/:id/attached-tools/:pin.
//
// @Summary      Attach a tool to a device pin
// @Tags         devices
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "Device id"
// @Param        pin   path  int                true  "Pin number"
// @Param        body  body  attachToolRequest  true  "Tool to attach"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/devices/{id}/attached-tools/{pin} [put]
func (h *DeviceHandler) AttachTool(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	pin, err := pinParam(c)
	if err != nil {
		return err
	}

	var req attachToolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AttachTool(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), pin, req.ToolID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// DetachTool handles DELETE /api/v1/devices/:id/attached-tools/:pin.
//
// @Summary      Detach the tool at a device pin
// @Tags         devices
// @Security     BearerAuth
// @Param        id   path  string  true  "Device id"
// @Param        pin  path  int     true  "Pin number"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/devices/{id}/attached-tools/{pin} [delete]
func (h *DeviceHandler) DetachTool(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	pin, err := pinParam(c)
	if err != nil {
		return err
	}

	if err := h.service.DetachTool(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"), pin); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/devices/:id.
//
// @Summary      Delete a device
// @Tags         devices
// @Security     BearerAuth
// @Param        id  path  string  true  "Device id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/devices/{id} [delete]
func (h *DeviceHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteDevice(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /api/v1/devices/:id.
//
// @Summary      Get a device
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  deviceResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/devices/{id} [get]
func (h *DeviceHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	device, err := h.service.GetDevice(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toDeviceResponse(device))
}

// List handles GET /api/v1/devices.
//
// @Summary      List devices
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  deviceResponse
// @Router       /api/v1/devices [get]
func (h *DeviceHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	devices, err := h.service.GetAllDevices(c.Request().Context(), actor, ctxCorrelationID(c))
	if err != nil {
		return err
	}

	resp := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, toDeviceResponse(d))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetConfiguration handles GET /api/v1/devices/:id/configuration. Controllers
// poll this to learn which tools hang off which pins; only the device itself
// or an admin may read it.
//
// @Summary      Get a device's pin configuration
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  deviceConfigurationResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/devices/{id}/configuration [get]
func (h *DeviceHandler) GetConfiguration(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	cfg, err := h.service.GetConfiguration(c.Request().Context(), actor, ctxCorrelationID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toDeviceConfigurationResponse(cfg))
}
