package repositories

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SeoContentRepository interface {
	// Upsert keys on (property_id, language, tenant_id); the property must
	// belong to the same tenant or common.ErrTenantMismatch is returned.
	Upsert(ctx context.Context, content *models.SeoContent) error
	GetByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, language string) (*models.SeoContent, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SeoContent, error)
}

type seoContentRepo struct {
	db DB
}

func NewSeoContentRepo(db DB) SeoContentRepository {
	return &seoContentRepo{db: db}
}

func (r *seoContentRepo) Upsert(ctx context.Context, content *models.SeoContent) error {
	query := `
		INSERT INTO seo_contents (id, tenant_id, property_id, language, title, description, keywords, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		WHERE EXISTS (SELECT 1 FROM properties WHERE id = $3 AND tenant_id = $2)
		ON CONFLICT (property_id, language, tenant_id)
		DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description, keywords = EXCLUDED.keywords, updated_at = NOW()
	`
	tag, err := r.db.Exec(ctx, query, content.ID, content.TenantID, content.PropertyID, content.Language,
		content.Title, content.Description, content.Keywords)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTenantMismatch
	}
	return nil
}

func (r *seoContentRepo) GetByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, language string) (*models.SeoContent, error) {
	content := &models.SeoContent{}
	query := `
		SELECT id, tenant_id, property_id, language, title, description, keywords, created_at, updated_at
		FROM seo_contents
		WHERE tenant_id = $1 AND property_id = $2 AND language = $3
	`
	err := r.db.QueryRow(ctx, query, tenantID, propertyID, language).Scan(&content.ID, &content.TenantID,
		&content.PropertyID, &content.Language, &content.Title, &content.Description, &content.Keywords,
		&content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return content, nil
}

func (r *seoContentRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM seo_contents WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *seoContentRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.SeoContent, error) {
	query := `
		SELECT id, tenant_id, property_id, language, title, description, keywords, created_at, updated_at
		FROM seo_contents
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []*models.SeoContent
	for rows.Next() {
		content := &models.SeoContent{}
		if err := rows.Scan(&content.ID, &content.TenantID, &content.PropertyID, &content.Language,
			&content.Title, &content.Description, &content.Keywords, &content.CreatedAt, &content.UpdatedAt); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}
