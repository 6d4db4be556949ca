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

type SeoService interface {
	// UpsertContent creates or replaces the metadata for the property and
	// language named in the payload.
	UpsertContent(ctx context.Context, tenantID uuid.UUID, content *models.SeoContent) error
	GetContent(ctx context.Context, tenantID, propertyID uuid.UUID, language string) (*models.SeoContent, error)
	DeleteContent(ctx context.Context, tenantID, id uuid.UUID) error
	ListContent(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SeoContent, error)
}

type seoService struct {
	seoRepo repositories.SeoContentRepository
	logger  *zap.Logger
}

func NewSeoService(seoRepo repositories.SeoContentRepository, logger *zap.Logger) SeoService {
	return &seoService{seoRepo: seoRepo, logger: logger}
}

func (s *seoService) UpsertContent(ctx context.Context, tenantID uuid.UUID, content *models.SeoContent) error {
	if err := stampTenant(&content.TenantID, tenantID); err != nil {
		return err
	}
	if content.PropertyID == uuid.Nil {
		return errors.New("property_id is required")
	}
	if content.Language == "" || content.Title == "" {
		return errors.New("language and title are required")
	}
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	return s.seoRepo.Upsert(ctx, content)
}

func (s *seoService) GetContent(ctx context.Context, tenantID, propertyID uuid.UUID, language string) (*models.SeoContent, error) {
	return s.seoRepo.GetByProperty(ctx, tenantID, propertyID, language)
}

func (s *seoService) DeleteContent(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.seoRepo.Delete(ctx, tenantID, id)
}

func (s *seoService) ListContent(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SeoContent, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.seoRepo.List(ctx, tenantID, limit, offset)
}
