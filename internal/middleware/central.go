package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// RequireCentralAdmin gates the tenant directory surface. The routes behind
// it answer only on a configured central domain and only to the static
// central-admin credential. Requests from any other host get the same 404 a
// missing route would, so the surface is not discoverable from a tenant.
func RequireCentralAdmin(tenantSvc services.TenantService, adminKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !tenantSvc.IsCentralDomain(c.Request().Host) {
				return echo.NewHTTPError(http.StatusNotFound, "Not found")
			}
			token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
			if adminKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminKey)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized access")
			}
			return next(c)
		}
	}
}
