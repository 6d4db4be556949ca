package services

import (
	"context"
	"errors"
	"net"
	"strings"

	"innkeeper/internal/caching"
	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
)

// TenantService is the tenant directory: it resolves an inbound host to a
// registered tenant and owns the tenant lifecycle.
type TenantService interface {
	// ResolveTenant maps a request host to a tenant. An unknown host yields
	// (nil, nil): the request proceeds in central mode. A host on the
	// central-domain list never resolves, by policy.
	ResolveTenant(ctx context.Context, host string) (*models.Tenant, error)
	// IsCentralDomain reports whether the host is explicitly barred from
	// tenant resolution.
	IsCentralDomain(host string) bool

	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo     repositories.TenantRepository
	cacheSvc       caching.CacheService
	centralDomains map[string]struct{}
}

func NewTenantService(tenantRepo repositories.TenantRepository, cacheSvc caching.CacheService, centralDomains []string) TenantService {
	central := make(map[string]struct{}, len(centralDomains))
	for _, d := range centralDomains {
		central[strings.ToLower(d)] = struct{}{}
	}
	return &tenantService{
		tenantRepo:     tenantRepo,
		cacheSvc:       cacheSvc,
		centralDomains: central,
	}
}

type CreateTenantRequest struct {
	Name     string         `json:"name" validate:"required"`
	Domain   string         `json:"domain" validate:"required"`
	Branding map[string]any `json:"branding"`
}

type UpdateTenantRequest struct {
	ID       uuid.UUID
	Name     string         `json:"name" validate:"required"`
	Domain   string         `json:"domain" validate:"required"`
	Branding map[string]any `json:"branding"`
	Status   string         `json:"status" validate:"required"`
}

// normalizeHost lowercases and strips any port from a request host.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func (s *tenantService) IsCentralDomain(host string) bool {
	_, ok := s.centralDomains[normalizeHost(host)]
	return ok
}

func (s *tenantService) ResolveTenant(ctx context.Context, host string) (*models.Tenant, error) {
	host = normalizeHost(host)
	if host == "" {
		return nil, nil
	}
	if s.IsCentralDomain(host) {
		return nil, nil
	}
	tenant, err := s.tenantRepo.GetByDomain(ctx, host)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Unknown hosts run in central mode rather than failing.
			return nil, nil
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" || req.Domain == "" {
		return nil, errors.New("name and domain are required")
	}
	domain := normalizeHost(req.Domain)
	if strings.ContainsAny(domain, " /") {
		return nil, errors.New("domain cannot contain spaces or slashes")
	}
	if s.IsCentralDomain(domain) {
		return nil, errors.New("domain is reserved for central use")
	}

	tenant := &models.Tenant{
		ID:       uuid.New(),
		Name:     req.Name,
		Domain:   domain,
		Branding: req.Branding,
		Status:   "active",
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Domain = normalizeHost(req.Domain)
	existing.Branding = req.Branding
	existing.Status = req.Status

	return s.tenantRepo.Update(ctx, existing)
}

// Delete removes the tenant and, through schema cascades, everything it owns.
// The tenant's cache namespace is flushed before the delete is acknowledged.
func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cacheSvc.InvalidateTenant(ctx, id); err != nil {
		return err
	}
	return s.tenantRepo.Delete(ctx, id)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.tenantRepo.List(ctx, limit, offset)
}
