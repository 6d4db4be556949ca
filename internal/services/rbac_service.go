package services

import (
	"context"
	"errors"

	"innkeeper/internal/caching"
	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache tag under which memoized authorization decisions live. Every grant or
// binding write flushes it for the affected tenant before returning.
const authzCacheTag = "authz"

// RBACService is the tenant-scoped permission registry: it defines
// permissions and roles, wires grants and assignments, and answers the
// coarse has-permission question.
type RBACService interface {
	DefinePermission(ctx context.Context, tenantID uuid.UUID, name string, description *string) (*models.Permission, error)
	DefineRole(ctx context.Context, tenantID uuid.UUID, name string, description *string) (*models.Role, error)
	Grant(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error
	Revoke(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error
	AssignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	UnassignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error

	UserHasPermission(ctx context.Context, userID, tenantID uuid.UUID, permissionName string) (bool, error)
	GetUserPermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
	GetUserRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]uuid.UUID, error)

	ListRoles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error)
	ListPermissions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Permission, error)
}

type rbacService struct {
	userRoleRepo       repositories.UserRoleRepository
	rolePermissionRepo repositories.RolePermissionRepository
	permissionRepo     repositories.PermissionRepository
	roleRepo           repositories.RoleRepository
	cacheSvc           caching.CacheService
	logger             *zap.Logger
}

func NewRBACService(
	userRoleRepo repositories.UserRoleRepository,
	rolePermissionRepo repositories.RolePermissionRepository,
	permissionRepo repositories.PermissionRepository,
	roleRepo repositories.RoleRepository,
	cacheSvc caching.CacheService,
	logger *zap.Logger,
) RBACService {
	return &rbacService{
		userRoleRepo:       userRoleRepo,
		rolePermissionRepo: rolePermissionRepo,
		permissionRepo:     permissionRepo,
		roleRepo:           roleRepo,
		cacheSvc:           cacheSvc,
		logger:             logger,
	}
}

func (s *rbacService) DefinePermission(ctx context.Context, tenantID uuid.UUID, name string, description *string) (*models.Permission, error) {
	return s.permissionRepo.Upsert(ctx, &models.Permission{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        name,
		Guard:       models.GuardAPI,
		Description: description,
	})
}

func (s *rbacService) DefineRole(ctx context.Context, tenantID uuid.UUID, name string, description *string) (*models.Role, error) {
	return s.roleRepo.Upsert(ctx, &models.Role{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        name,
		Guard:       models.GuardAPI,
		Description: description,
	})
}

// flushAuthz drops the tenant's memoized decisions. It runs before the
// triggering write is acknowledged so no caller can observe a stale allow.
func (s *rbacService) flushAuthz(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.cacheSvc.Invalidate(ctx, tenantID, authzCacheTag); err != nil {
		s.logger.Error("authz cache invalidation failed",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *rbacService) Grant(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error {
	err := s.rolePermissionRepo.Create(ctx, tenantID, &models.RolePermission{
		ID:           uuid.New(),
		RoleID:       roleID,
		PermissionID: permissionID,
	})
	if err != nil {
		return err
	}
	return s.flushAuthz(ctx, tenantID)
}

func (s *rbacService) Revoke(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error {
	if err := s.rolePermissionRepo.Delete(ctx, tenantID, roleID, permissionID); err != nil {
		return err
	}
	return s.flushAuthz(ctx, tenantID)
}

func (s *rbacService) AssignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	err := s.userRoleRepo.Create(ctx, tenantID, &models.UserRole{
		ID:     uuid.New(),
		UserID: userID,
		RoleID: roleID,
	})
	if err != nil {
		return err
	}
	return s.flushAuthz(ctx, tenantID)
}

func (s *rbacService) UnassignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	if err := s.userRoleRepo.Delete(ctx, tenantID, userID, roleID); err != nil {
		return err
	}
	return s.flushAuthz(ctx, tenantID)
}

func (s *rbacService) UserHasPermission(ctx context.Context, userID, tenantID uuid.UUID, permissionName string) (bool, error) {
	userRoles, err := s.userRoleRepo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return false, err
	}

	for _, ur := range userRoles {
		rolePermissions, err := s.rolePermissionRepo.ListByRole(ctx, tenantID, ur.RoleID)
		if err != nil {
			return false, err
		}

		for _, rp := range rolePermissions {
			perm, err := s.permissionRepo.GetByID(ctx, tenantID, rp.PermissionID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					// Dangling grant row; skip it.
					continue
				}
				return false, err
			}
			if perm.Name == permissionName {
				return true, nil
			}
		}
	}

	return false, nil
}

func (s *rbacService) GetUserPermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	userRoles, err := s.userRoleRepo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	permissionNames := make(map[string]bool)
	for _, ur := range userRoles {
		rolePermissions, err := s.rolePermissionRepo.ListByRole(ctx, tenantID, ur.RoleID)
		if err != nil {
			return nil, err
		}

		for _, rp := range rolePermissions {
			perm, err := s.permissionRepo.GetByID(ctx, tenantID, rp.PermissionID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					continue
				}
				return nil, err
			}
			permissionNames[perm.Name] = true
		}
	}

	var perms []string
	for p := range permissionNames {
		perms = append(perms, p)
	}
	return perms, nil
}

func (s *rbacService) GetUserRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	userRoles, err := s.userRoleRepo.ListByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	roleIDs := make([]uuid.UUID, 0, len(userRoles))
	for _, ur := range userRoles {
		roleIDs = append(roleIDs, ur.RoleID)
	}
	return roleIDs, nil
}

func (s *rbacService) ListRoles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.roleRepo.List(ctx, tenantID, limit, offset)
}

func (s *rbacService) ListPermissions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Permission, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.permissionRepo.List(ctx, tenantID, limit, offset)
}
