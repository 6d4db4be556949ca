package middleware

import (
	"net/http"
	"strings"

	"innkeeper/internal/common"
	"innkeeper/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token and pins the authenticated
// principal into the request context. A token minted for one tenant is
// rejected on another tenant's host.
func JWTMiddleware(authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, err := authSvc.ValidateToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user_id in token")
			}
			tokenTenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid tenant_id in token")
			}

			ctx := c.Request().Context()
			if hostTenantID, ok := common.GetTenantIDFromContext(ctx); ok && hostTenantID != tokenTenantID {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token does not belong to this tenant")
			}

			ctx = common.WithUserID(ctx, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
