package services

import (
	"context"
	"fmt"

	"innkeeper/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Built-in roles provisioned into every new tenant.
const (
	RoleTenantAdmin     = "tenant_admin"
	RolePropertyManager = "property_manager"
	RoleGuestUser       = "guest_user"
)

var seedPermissions = []string{
	"manage:users",
	"manage:roles",
	"manage:properties",
	"manage:bookings",
	"manage:iot",
	"manage:seo",
	"manage:culture",
	"view:reports",
}

// rolePermissionMatrix maps each built-in role to the permissions it holds.
var rolePermissionMatrix = map[string][]string{
	RoleTenantAdmin: {
		"manage:users", "manage:roles", "manage:properties", "manage:bookings",
		"manage:iot", "manage:seo", "manage:culture", "view:reports",
	},
	RolePropertyManager: {
		"manage:properties", "manage:bookings", "manage:iot", "manage:culture", "view:reports",
	},
	RoleGuestUser: {},
}

// roleModuleMatrix maps each built-in role to its per-module capability sets.
var roleModuleMatrix = map[string]map[string]map[string]bool{
	RoleTenantAdmin: {
		models.ModuleBookings:   {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleProperties: {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleIoT:        {models.CapabilityRead: true, models.CapabilityControl: true},
		models.ModuleSeo:        {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleCulture:    {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleUsers:      {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleRoles:      {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleReports:    {models.CapabilityRead: true},
	},
	RolePropertyManager: {
		models.ModuleBookings:   {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleProperties: {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleIoT:        {models.CapabilityRead: true, models.CapabilityControl: true},
		models.ModuleCulture:    {models.CapabilityRead: true, models.CapabilityWrite: true},
		models.ModuleReports:    {models.CapabilityRead: true},
	},
	RoleGuestUser: {
		models.ModuleBookings:   {models.CapabilityRead: true},
		models.ModuleProperties: {models.CapabilityRead: true},
		models.ModuleCulture:    {models.CapabilityRead: true},
	},
}

// ProvisionService seeds a freshly created tenant with the built-in
// permission catalog, roles, grants and module capability matrices. Every
// step is an idempotent upsert, so re-running provisioning repairs a
// partially seeded tenant without duplicating anything.
type ProvisionService interface {
	ProvisionTenant(ctx context.Context, tenantID uuid.UUID) error
}

type provisionService struct {
	rbacSvc    RBACService
	bindingSvc ModuleBindingService
	logger     *zap.Logger
}

func NewProvisionService(rbacSvc RBACService, bindingSvc ModuleBindingService, logger *zap.Logger) ProvisionService {
	return &provisionService{
		rbacSvc:    rbacSvc,
		bindingSvc: bindingSvc,
		logger:     logger,
	}
}

func (s *provisionService) ProvisionTenant(ctx context.Context, tenantID uuid.UUID) error {
	permIDs := make(map[string]uuid.UUID, len(seedPermissions))
	for _, name := range seedPermissions {
		perm, err := s.rbacSvc.DefinePermission(ctx, tenantID, name, nil)
		if err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", name, err)
		}
		permIDs[name] = perm.ID
	}

	for roleName, permNames := range rolePermissionMatrix {
		role, err := s.rbacSvc.DefineRole(ctx, tenantID, roleName, nil)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", roleName, err)
		}
		for _, permName := range permNames {
			if err := s.rbacSvc.Grant(ctx, tenantID, role.ID, permIDs[permName]); err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", permName, roleName, err)
			}
		}
		for module, capabilities := range roleModuleMatrix[roleName] {
			if err := s.bindingSvc.SetBinding(ctx, tenantID, role.ID, module, capabilities); err != nil {
				return fmt.Errorf("failed to bind module %s for %s: %w", module, roleName, err)
			}
		}
	}

	s.logger.Info("tenant provisioned",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("permissions", len(seedPermissions)),
		zap.Int("roles", len(rolePermissionMatrix)))
	return nil
}
