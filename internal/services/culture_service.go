package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"innkeeper/internal/caching"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cultureCacheTag = "culture"
	cultureCacheTTL = time.Hour
)

// CultureService serves tenant-local editorial content. Listings are cached
// per language under the culture tag; every write flushes the tag before
// returning, so a read issued after a write always sees the new content.
type CultureService interface {
	CreateContent(ctx context.Context, tenantID uuid.UUID, content *models.CultureContent) error
	GetContent(ctx context.Context, tenantID, id uuid.UUID) (*models.CultureContent, error)
	UpdateContent(ctx context.Context, tenantID uuid.UUID, content *models.CultureContent) error
	DeleteContent(ctx context.Context, tenantID, id uuid.UUID) error
	// ListContent filters by language; an empty language means all locales.
	ListContent(ctx context.Context, tenantID uuid.UUID, language string) ([]*models.CultureContent, error)
}

type cultureService struct {
	cultureRepo repositories.CultureContentRepository
	cacheSvc    caching.CacheService
	logger      *zap.Logger
}

func NewCultureService(cultureRepo repositories.CultureContentRepository, cacheSvc caching.CacheService, logger *zap.Logger) CultureService {
	return &cultureService{cultureRepo: cultureRepo, cacheSvc: cacheSvc, logger: logger}
}

func cultureListKey(language string) string {
	if language == "" {
		language = "all"
	}
	return fmt.Sprintf("culture:lang:%s", language)
}

func (s *cultureService) CreateContent(ctx context.Context, tenantID uuid.UUID, content *models.CultureContent) error {
	if err := stampTenant(&content.TenantID, tenantID); err != nil {
		return err
	}
	if content.Title == "" || content.Content == "" {
		return errors.New("title and content are required")
	}
	if !models.ValidCultureLanguage(content.Language) {
		return fmt.Errorf("unsupported language %q", content.Language)
	}
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	if err := s.cultureRepo.Create(ctx, content); err != nil {
		return err
	}
	return s.flushListings(ctx, tenantID)
}

func (s *cultureService) GetContent(ctx context.Context, tenantID, id uuid.UUID) (*models.CultureContent, error) {
	return s.cultureRepo.GetByID(ctx, tenantID, id)
}

func (s *cultureService) UpdateContent(ctx context.Context, tenantID uuid.UUID, content *models.CultureContent) error {
	if err := stampTenant(&content.TenantID, tenantID); err != nil {
		return err
	}
	if content.Language != "" && !models.ValidCultureLanguage(content.Language) {
		return fmt.Errorf("unsupported language %q", content.Language)
	}
	if err := s.cultureRepo.Update(ctx, content); err != nil {
		return err
	}
	return s.flushListings(ctx, tenantID)
}

func (s *cultureService) DeleteContent(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.cultureRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return s.flushListings(ctx, tenantID)
}

func (s *cultureService) ListContent(ctx context.Context, tenantID uuid.UUID, language string) ([]*models.CultureContent, error) {
	key := cultureListKey(language)
	if cached, err := s.cacheSvc.Get(ctx, tenantID, key); err != nil {
		s.logger.Warn("culture cache read failed", zap.Error(err))
	} else if cached != nil {
		var items []*models.CultureContent
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
		// Unreadable payload, fall through to the database.
	}

	items, err := s.cultureRepo.List(ctx, tenantID, language)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := s.cacheSvc.Put(ctx, tenantID, key, payload, cultureCacheTTL, cultureCacheTag); err != nil {
			s.logger.Warn("culture cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// flushListings drops every cached culture listing of the tenant. The write
// is not acknowledged until the flush succeeds.
func (s *cultureService) flushListings(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.cacheSvc.Invalidate(ctx, tenantID, cultureCacheTag); err != nil {
		s.logger.Error("culture cache invalidation failed",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return err
	}
	return nil
}
