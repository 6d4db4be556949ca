package handlers

import (
	"errors"
	"net/http"

	"innkeeper/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// tenantFromContext pulls the ambient tenant; tenant-scoped handlers sit
// behind RequireTenant so a miss here is a wiring bug, still answered with
// a client error rather than a panic.
func tenantFromContext(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "No tenant for this host")
	}
	return tenantID, nil
}

// domainError translates domain sentinels to HTTP answers. Cross-tenant
// reads surface as plain not-found; rejected writes surface as conflicts.
func domainError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrTenantMismatch):
		return echo.NewHTTPError(http.StatusConflict, "Referenced resource belongs to another tenant")
	case errors.Is(err, common.ErrCrossTenantWrite):
		return echo.NewHTTPError(http.StatusConflict, "Payload names another tenant")
	default:
		// Unexpected errors are logged by the service layer; the body
		// stays generic.
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
