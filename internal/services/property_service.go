package services

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PropertyService interface {
	CreateProperty(ctx context.Context, tenantID uuid.UUID, property *models.Property) error
	GetProperty(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error)
	UpdateProperty(ctx context.Context, tenantID uuid.UUID, property *models.Property) error
	DeleteProperty(ctx context.Context, tenantID, id uuid.UUID) error
	ListProperties(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error)
	AttachImage(ctx context.Context, tenantID, id uuid.UUID, imageURL string) (*models.Property, error)
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	logger       *zap.Logger
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, logger *zap.Logger) PropertyService {
	return &propertyService{propertyRepo: propertyRepo, logger: logger}
}

// stampTenant pins an inbound entity to the ambient tenant. A payload that
// names a different tenant is rejected outright rather than silently
// re-homed.
func stampTenant(entityTenant *uuid.UUID, ambient uuid.UUID) error {
	if ambient == uuid.Nil {
		return common.ErrCrossTenantWrite
	}
	if *entityTenant != uuid.Nil && *entityTenant != ambient {
		return common.ErrCrossTenantWrite
	}
	*entityTenant = ambient
	return nil
}

func (s *propertyService) CreateProperty(ctx context.Context, tenantID uuid.UUID, property *models.Property) error {
	if err := stampTenant(&property.TenantID, tenantID); err != nil {
		return err
	}
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	if property.Status == "" {
		property.Status = models.PropertyStatusDraft
	}
	if property.Name == "" {
		return errors.New("property name is required")
	}
	return s.propertyRepo.Create(ctx, property)
}

func (s *propertyService) GetProperty(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	return s.propertyRepo.GetByID(ctx, tenantID, id)
}

func (s *propertyService) UpdateProperty(ctx context.Context, tenantID uuid.UUID, property *models.Property) error {
	if err := stampTenant(&property.TenantID, tenantID); err != nil {
		return err
	}
	return s.propertyRepo.Update(ctx, property)
}

func (s *propertyService) DeleteProperty(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.propertyRepo.Delete(ctx, tenantID, id)
}

func (s *propertyService) ListProperties(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.propertyRepo.List(ctx, tenantID, limit, offset)
}

func (s *propertyService) AttachImage(ctx context.Context, tenantID, id uuid.UUID, imageURL string) (*models.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	property.Images = append(property.Images, imageURL)
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}
