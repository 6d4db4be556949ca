package handlers

import (
	"net/http"

	"innkeeper/internal/models"
	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// IoTHandlers handles HTTP requests for device registration, telemetry and
// control.
type IoTHandlers struct {
	iotService services.IoTService
}

func NewIoTHandlers(iotService services.IoTService) *IoTHandlers {
	return &IoTHandlers{iotService: iotService}
}

// RegisterDevice handles POST /iot/devices
func (h *IoTHandlers) RegisterDevice(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var device models.IoTDevice
	if err := c.Bind(&device); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.iotService.RegisterDevice(c.Request().Context(), tenantID, &device); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, device)
}

// GetDevice handles GET /iot/devices/:id
func (h *IoTHandlers) GetDevice(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	device, err := h.iotService.GetDevice(c.Request().Context(), tenantID, id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, device)
}

// DeleteDevice handles DELETE /iot/devices/:id
func (h *IoTHandlers) DeleteDevice(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.iotService.DeleteDevice(c.Request().Context(), tenantID, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Device deleted"})
}

// ListDevices handles GET /iot/devices
func (h *IoTHandlers) ListDevices(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	devices, err := h.iotService.ListDevices(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"devices": devices,
		"limit":   limit,
		"offset":  offset,
	})
}

// ReportState handles POST /iot/devices/:id/state — device-originated
// telemetry.
func (h *IoTHandlers) ReportState(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Reading map[string]any `json:"reading"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.iotService.ReportState(c.Request().Context(), tenantID, id, req.Reading); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "State recorded"})
}

// ControlDevice handles POST /iot/devices/:id/control — operator commands,
// gated on the control capability.
func (h *IoTHandlers) ControlDevice(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Command map[string]any `json:"command"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Command) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Command payload is required")
	}

	if err := h.iotService.ControlDevice(c.Request().Context(), tenantID, id, req.Command); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Command dispatched"})
}
