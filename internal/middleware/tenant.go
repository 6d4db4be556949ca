package middleware

import (
	"net/http"

	"innkeeper/internal/common"
	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantMiddleware resolves the request host to a tenant and pins it into
// the request context. Central domains and unknown hosts pass through
// without a tenant; tenant-scoped routes then reject via RequireTenant.
func TenantMiddleware(tenantSvc services.TenantService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant, err := tenantSvc.ResolveTenant(c.Request().Context(), c.Request().Host)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Tenant resolution failed")
			}
			if tenant == nil {
				// Central mode: no tenant in context.
				return next(c)
			}

			ctx := common.WithTenantID(c.Request().Context(), tenant.ID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireTenant rejects requests that arrived on a central domain or an
// unrecognized host. Tenant-scoped routes sit behind this gate.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetTenantIDFromContext(c.Request().Context()); !ok {
				return echo.NewHTTPError(http.StatusNotFound, "No tenant for this host")
			}
			return next(c)
		}
	}
}
