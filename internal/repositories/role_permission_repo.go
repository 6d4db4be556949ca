package repositories

import (
	"context"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
)

type RolePermissionRepository interface {
	// Create associates a permission with a role. Both rows must belong to
	// tenantID; an association that would span tenants fails with
	// common.ErrTenantMismatch.
	Create(ctx context.Context, tenantID uuid.UUID, rolePermission *models.RolePermission) error
	Delete(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error
	ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.RolePermission, error)
}

type rolePermissionRepo struct {
	db DB
}

func NewRolePermissionRepo(db DB) RolePermissionRepository {
	return &rolePermissionRepo{db: db}
}

func (r *rolePermissionRepo) Create(ctx context.Context, tenantID uuid.UUID, rolePermission *models.RolePermission) error {
	// The EXISTS guards pin both sides to the same tenant; a cross-tenant
	// pair inserts nothing and is reported as a mismatch, not as success.
	query := `
		INSERT INTO role_permissions (id, role_id, permission_id, created_at)
		SELECT $1, $2, $3, NOW()
		WHERE EXISTS (SELECT 1 FROM roles WHERE id = $2 AND tenant_id = $4)
		AND EXISTS (SELECT 1 FROM permissions WHERE id = $3 AND tenant_id = $4)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, rolePermission.ID, rolePermission.RoleID, rolePermission.PermissionID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either side missing in this tenant, or the grant already exists.
		// Distinguish by probing for the existing association.
		var exists bool
		check := `
			SELECT EXISTS (
				SELECT 1 FROM role_permissions rp
				JOIN roles ro ON rp.role_id = ro.id
				WHERE rp.role_id = $1 AND rp.permission_id = $2 AND ro.tenant_id = $3
			)
		`
		if err := r.db.QueryRow(ctx, check, rolePermission.RoleID, rolePermission.PermissionID, tenantID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return common.ErrTenantMismatch
		}
	}
	return nil
}

func (r *rolePermissionRepo) Delete(ctx context.Context, tenantID, roleID, permissionID uuid.UUID) error {
	query := `
		DELETE FROM role_permissions
		WHERE role_id = $1 AND permission_id = $2
		AND EXISTS (SELECT 1 FROM roles WHERE id = $1 AND tenant_id = $3)
		AND EXISTS (SELECT 1 FROM permissions WHERE id = $2 AND tenant_id = $3)
	`
	tag, err := r.db.Exec(ctx, query, roleID, permissionID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *rolePermissionRepo) ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.RolePermission, error) {
	query := `
		SELECT rp.id, rp.role_id, rp.permission_id, rp.created_at
		FROM role_permissions rp
		JOIN roles ro ON rp.role_id = ro.id
		WHERE ro.tenant_id = $1 AND rp.role_id = $2
		ORDER BY rp.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rolePermissions []*models.RolePermission
	for rows.Next() {
		rolePermission := &models.RolePermission{}
		if err := rows.Scan(&rolePermission.ID, &rolePermission.RoleID, &rolePermission.PermissionID, &rolePermission.CreatedAt); err != nil {
			return nil, err
		}
		rolePermissions = append(rolePermissions, rolePermission)
	}
	return rolePermissions, rows.Err()
}
