package services

import (
	"context"

	"innkeeper/internal/caching"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModuleBindingService manages per-(role, tenant, module) capability sets.
// SetBinding replaces the whole set; callers wanting to preserve flags must
// read-modify-write.
type ModuleBindingService interface {
	SetBinding(ctx context.Context, tenantID, roleID uuid.UUID, module string, capabilities map[string]bool) error
	// GetBinding returns the capability set; an absent binding is an empty
	// set, never an error.
	GetBinding(ctx context.Context, tenantID, roleID uuid.UUID, module string) (map[string]bool, error)
	ListBindings(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.ModuleBinding, error)
	DeleteBinding(ctx context.Context, tenantID, roleID uuid.UUID, module string) error
}

type moduleBindingService struct {
	bindingRepo repositories.ModuleBindingRepository
	cacheSvc    caching.CacheService
	logger      *zap.Logger
}

func NewModuleBindingService(bindingRepo repositories.ModuleBindingRepository, cacheSvc caching.CacheService, logger *zap.Logger) ModuleBindingService {
	return &moduleBindingService{
		bindingRepo: bindingRepo,
		cacheSvc:    cacheSvc,
		logger:      logger,
	}
}

func (s *moduleBindingService) SetBinding(ctx context.Context, tenantID, roleID uuid.UUID, module string, capabilities map[string]bool) error {
	if capabilities == nil {
		capabilities = map[string]bool{}
	}
	err := s.bindingRepo.Upsert(ctx, &models.ModuleBinding{
		ID:           uuid.New(),
		RoleID:       roleID,
		TenantID:     tenantID,
		Module:       module,
		Capabilities: capabilities,
	})
	if err != nil {
		return err
	}
	// Flush memoized decisions before the write is acknowledged.
	if err := s.cacheSvc.Invalidate(ctx, tenantID, authzCacheTag); err != nil {
		s.logger.Error("authz cache invalidation failed",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *moduleBindingService) GetBinding(ctx context.Context, tenantID, roleID uuid.UUID, module string) (map[string]bool, error) {
	binding, err := s.bindingRepo.Get(ctx, tenantID, roleID, module)
	if err != nil {
		return nil, err
	}
	return binding.Capabilities, nil
}

func (s *moduleBindingService) ListBindings(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.ModuleBinding, error) {
	return s.bindingRepo.ListByRole(ctx, tenantID, roleID)
}

func (s *moduleBindingService) DeleteBinding(ctx context.Context, tenantID, roleID uuid.UUID, module string) error {
	if err := s.bindingRepo.Delete(ctx, tenantID, roleID, module); err != nil {
		return err
	}
	return s.cacheSvc.Invalidate(ctx, tenantID, authzCacheTag)
}
