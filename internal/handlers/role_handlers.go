package handlers

import (
	"net/http"
	"strings"

	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// RoleHandlers exposes the permission registry: role and permission
// definitions, grants, assignments and module capability bindings.
type RoleHandlers struct {
	rbacService    services.RBACService
	bindingService services.ModuleBindingService
}

func NewRoleHandlers(rbacService services.RBACService, bindingService services.ModuleBindingService) *RoleHandlers {
	return &RoleHandlers{
		rbacService:    rbacService,
		bindingService: bindingService,
	}
}

// CreateRole handles POST /roles. Defining an existing role returns it
// unchanged.
func (h *RoleHandlers) CreateRole(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Role name is required")
	}

	role, err := h.rbacService.DefineRole(c.Request().Context(), tenantID, req.Name, req.Description)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, role)
}

// ListRoles handles GET /roles
func (h *RoleHandlers) ListRoles(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	roles, err := h.rbacService.ListRoles(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"roles":  roles,
		"limit":  limit,
		"offset": offset,
	})
}

// CreatePermission handles POST /permissions
func (h *RoleHandlers) CreatePermission(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Permission name is required")
	}

	perm, err := h.rbacService.DefinePermission(c.Request().Context(), tenantID, req.Name, req.Description)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, perm)
}

// ListPermissions handles GET /permissions
func (h *RoleHandlers) ListPermissions(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	perms, err := h.rbacService.ListPermissions(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"permissions": perms,
		"limit":       limit,
		"offset":      offset,
	})
}

// GrantPermission handles POST /roles/:id/permissions/:permission_id
func (h *RoleHandlers) GrantPermission(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	permissionID, err := parseUUIDParam(c, "permission_id")
	if err != nil {
		return err
	}

	if err := h.rbacService.Grant(c.Request().Context(), tenantID, roleID, permissionID); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Permission granted"})
}

// RevokePermission handles DELETE /roles/:id/permissions/:permission_id
func (h *RoleHandlers) RevokePermission(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	permissionID, err := parseUUIDParam(c, "permission_id")
	if err != nil {
		return err
	}

	if err := h.rbacService.Revoke(c.Request().Context(), tenantID, roleID, permissionID); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Permission revoked"})
}

// AssignRole handles POST /users/:id/roles/:role_id
func (h *RoleHandlers) AssignRole(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "role_id")
	if err != nil {
		return err
	}

	if err := h.rbacService.AssignRole(c.Request().Context(), tenantID, userID, roleID); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Role assigned"})
}

// UnassignRole handles DELETE /users/:id/roles/:role_id
func (h *RoleHandlers) UnassignRole(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "role_id")
	if err != nil {
		return err
	}

	if err := h.rbacService.UnassignRole(c.Request().Context(), tenantID, userID, roleID); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Role unassigned"})
}

// GetUserAccess handles GET /users/:id/access — the user's effective
// permission names and role IDs.
func (h *RoleHandlers) GetUserAccess(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	perms, err := h.rbacService.GetUserPermissions(ctx, userID, tenantID)
	if err != nil {
		return domainError(err)
	}
	roles, err := h.rbacService.GetUserRoles(ctx, userID, tenantID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"permissions": perms,
		"roles":       roles,
	})
}

// SetModuleBinding handles PUT /roles/:id/modules/:module. The payload's
// capability set replaces whatever was bound before.
func (h *RoleHandlers) SetModuleBinding(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	module := c.Param("module")
	if module == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Module is required")
	}

	var req struct {
		Capabilities map[string]bool `json:"capabilities"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.bindingService.SetBinding(c.Request().Context(), tenantID, roleID, module, req.Capabilities); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Module binding set"})
}

// GetModuleBinding handles GET /roles/:id/modules/:module
func (h *RoleHandlers) GetModuleBinding(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	module := c.Param("module")

	caps, err := h.bindingService.GetBinding(c.Request().Context(), tenantID, roleID, module)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"module":       module,
		"capabilities": caps,
	})
}

// ListModuleBindings handles GET /roles/:id/modules
func (h *RoleHandlers) ListModuleBindings(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	bindings, err := h.bindingService.ListBindings(c.Request().Context(), tenantID, roleID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"bindings": bindings})
}

// DeleteModuleBinding handles DELETE /roles/:id/modules/:module
func (h *RoleHandlers) DeleteModuleBinding(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	roleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	module := c.Param("module")

	if err := h.bindingService.DeleteBinding(c.Request().Context(), tenantID, roleID, module); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Module binding removed"})
}
