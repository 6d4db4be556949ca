package repositories

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PermissionRepository interface {
	// Upsert is idempotent on (tenant_id, name, guard); re-defining with the
	// same key returns the existing record unchanged.
	Upsert(ctx context.Context, permission *models.Permission) (*models.Permission, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Permission, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Permission, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Permission, error)
}

type permissionRepo struct {
	db DB
}

func NewPermissionRepo(db DB) PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Upsert(ctx context.Context, permission *models.Permission) (*models.Permission, error) {
	query := `
		INSERT INTO permissions (id, tenant_id, name, guard, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tenant_id, name, guard) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, permission.ID, permission.TenantID, permission.Name, permission.Guard, permission.Description); err != nil {
		return nil, err
	}
	return r.GetByName(ctx, permission.TenantID, permission.Name)
}

func (r *permissionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Permission, error) {
	permission := &models.Permission{}
	query := `
		SELECT id, tenant_id, name, guard, description, created_at
		FROM permissions
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&permission.ID, &permission.TenantID, &permission.Name, &permission.Guard, &permission.Description, &permission.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return permission, nil
}

func (r *permissionRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Permission, error) {
	permission := &models.Permission{}
	query := `
		SELECT id, tenant_id, name, guard, description, created_at
		FROM permissions
		WHERE tenant_id = $1 AND name = $2 AND guard = $3
	`
	err := r.db.QueryRow(ctx, query, tenantID, name, models.GuardAPI).Scan(&permission.ID, &permission.TenantID, &permission.Name, &permission.Guard, &permission.Description, &permission.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return permission, nil
}

func (r *permissionRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM permissions WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *permissionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Permission, error) {
	query := `
		SELECT id, tenant_id, name, guard, description, created_at
		FROM permissions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []*models.Permission
	for rows.Next() {
		permission := &models.Permission{}
		if err := rows.Scan(&permission.ID, &permission.TenantID, &permission.Name, &permission.Guard, &permission.Description, &permission.CreatedAt); err != nil {
			return nil, err
		}
		permissions = append(permissions, permission)
	}
	return permissions, rows.Err()
}
