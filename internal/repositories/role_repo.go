package repositories

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RoleRepository interface {
	// Upsert inserts the role or, when (tenant_id, name, guard) already
	// exists, leaves the stored row untouched. The returned role is always
	// the stored one.
	Upsert(ctx context.Context, role *models.Role) (*models.Role, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error)
}

type roleRepo struct {
	db DB
}

func NewRoleRepo(db DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Upsert(ctx context.Context, role *models.Role) (*models.Role, error) {
	query := `
		INSERT INTO roles (id, tenant_id, name, guard, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tenant_id, name, guard) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, role.ID, role.TenantID, role.Name, role.Guard, role.Description); err != nil {
		return nil, err
	}
	// Re-read so a lost conflict race still returns the stored row.
	return r.GetByName(ctx, role.TenantID, role.Name)
}

func (r *roleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, tenant_id, name, guard, description, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&role.ID, &role.TenantID, &role.Name, &role.Guard, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, tenant_id, name, guard, description, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND name = $2 AND guard = $3
	`
	err := r.db.QueryRow(ctx, query, tenantID, name, models.GuardAPI).Scan(&role.ID, &role.TenantID, &role.Name, &role.Guard, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM roles WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *roleRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error) {
	query := `
		SELECT id, tenant_id, name, guard, description, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Guard, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
