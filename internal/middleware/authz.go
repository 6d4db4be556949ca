package middleware

import (
	"net/http"

	"innkeeper/internal/common"
	"innkeeper/internal/metrics"
	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthzMiddleware gates routes on the authorization evaluator. The two gate
// kinds stay separate: RequirePermission checks a coarse named permission,
// RequireModule checks a fine-grained module capability. Neither implies the
// other.
type AuthzMiddleware struct {
	authzService services.AuthzService
}

func NewAuthzMiddleware(authzService services.AuthzService) *AuthzMiddleware {
	return &AuthzMiddleware{authzService: authzService}
}

func (m *AuthzMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return m.require("permission", services.PermissionRequirement{Name: permission})
}

func (m *AuthzMiddleware) RequireModule(module, capability string) echo.MiddlewareFunc {
	return m.require("module", services.ModuleRequirement{Module: module, Capability: capability})
}

func (m *AuthzMiddleware) require(kind string, req services.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
			}

			allowed, err := m.authzService.Authorize(ctx, userID, tenantID, req)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Error evaluating authorization")
			}
			metrics.RecordAuthzDecision(kind, allowed)
			if !allowed {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
