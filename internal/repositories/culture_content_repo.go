package repositories

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CultureContentRepository interface {
	Create(ctx context.Context, content *models.CultureContent) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CultureContent, error)
	Update(ctx context.Context, content *models.CultureContent) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// List returns the tenant's content, optionally filtered by language
	// (empty language means all).
	List(ctx context.Context, tenantID uuid.UUID, language string) ([]*models.CultureContent, error)
}

type cultureContentRepo struct {
	db DB
}

func NewCultureContentRepo(db DB) CultureContentRepository {
	return &cultureContentRepo{db: db}
}

func (r *cultureContentRepo) Create(ctx context.Context, content *models.CultureContent) error {
	query := `
		INSERT INTO culture_contents (id, tenant_id, title, content, language, category, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, content.ID, content.TenantID, content.Title, content.Content,
		content.Language, content.Category, content.ImageURL)
	return err
}

func (r *cultureContentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CultureContent, error) {
	content := &models.CultureContent{}
	query := `
		SELECT id, tenant_id, title, content, language, category, image_url, created_at, updated_at
		FROM culture_contents
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&content.ID, &content.TenantID, &content.Title,
		&content.Content, &content.Language, &content.Category, &content.ImageURL,
		&content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return content, nil
}

func (r *cultureContentRepo) Update(ctx context.Context, content *models.CultureContent) error {
	query := `
		UPDATE culture_contents
		SET title = $1, content = $2, language = $3, category = $4, image_url = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	tag, err := r.db.Exec(ctx, query, content.Title, content.Content, content.Language,
		content.Category, content.ImageURL, content.TenantID, content.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *cultureContentRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM culture_contents WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *cultureContentRepo) List(ctx context.Context, tenantID uuid.UUID, language string) ([]*models.CultureContent, error) {
	query := `
		SELECT id, tenant_id, title, content, language, category, image_url, created_at, updated_at
		FROM culture_contents
		WHERE tenant_id = $1 AND ($2 = '' OR language = $2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []*models.CultureContent
	for rows.Next() {
		content := &models.CultureContent{}
		if err := rows.Scan(&content.ID, &content.TenantID, &content.Title, &content.Content,
			&content.Language, &content.Category, &content.ImageURL,
			&content.CreatedAt, &content.UpdatedAt); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}
