package repositories

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error)
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepo(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, tenant_id, name, description, address, latitude, longitude, amenities, images, base_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, property.ID, property.TenantID, property.Name, property.Description,
		property.Address, property.Latitude, property.Longitude, property.Amenities, property.Images,
		property.BasePrice, property.Status)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	property := &models.Property{}
	query := `
		SELECT id, tenant_id, name, description, address, latitude, longitude, amenities, images, base_price, status, created_at, updated_at
		FROM properties
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&property.ID, &property.TenantID, &property.Name,
		&property.Description, &property.Address, &property.Latitude, &property.Longitude,
		&property.Amenities, &property.Images, &property.BasePrice, &property.Status,
		&property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return property, nil
}

func (r *propertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET name = $1, description = $2, address = $3, latitude = $4, longitude = $5,
			amenities = $6, images = $7, base_price = $8, status = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	tag, err := r.db.Exec(ctx, query, property.Name, property.Description, property.Address,
		property.Latitude, property.Longitude, property.Amenities, property.Images,
		property.BasePrice, property.Status, property.TenantID, property.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *propertyRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM properties WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *propertyRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT id, tenant_id, name, description, address, latitude, longitude, amenities, images, base_price, status, created_at, updated_at
		FROM properties
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		if err := rows.Scan(&property.ID, &property.TenantID, &property.Name, &property.Description,
			&property.Address, &property.Latitude, &property.Longitude, &property.Amenities,
			&property.Images, &property.BasePrice, &property.Status,
			&property.CreatedAt, &property.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, rows.Err()
}
