package repositories

import (
	"context"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
)

type UserRoleRepository interface {
	// Create assigns a role to a user. Both must belong to tenantID;
	// a cross-tenant assignment fails with common.ErrTenantMismatch.
	Create(ctx context.Context, tenantID uuid.UUID, userRole *models.UserRole) error
	Delete(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.UserRole, error)
	ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.UserRole, error)
}

type userRoleRepo struct {
	db DB
}

func NewUserRoleRepo(db DB) UserRoleRepository {
	return &userRoleRepo{db: db}
}

func (r *userRoleRepo) Create(ctx context.Context, tenantID uuid.UUID, userRole *models.UserRole) error {
	query := `
		INSERT INTO user_roles (id, user_id, role_id, created_at)
		SELECT $1, $2, $3, NOW()
		WHERE EXISTS (SELECT 1 FROM users WHERE id = $2 AND tenant_id = $4)
		AND EXISTS (SELECT 1 FROM roles WHERE id = $3 AND tenant_id = $4)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userRole.ID, userRole.UserID, userRole.RoleID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		check := `
			SELECT EXISTS (
				SELECT 1 FROM user_roles ur
				JOIN users u ON ur.user_id = u.id
				WHERE ur.user_id = $1 AND ur.role_id = $2 AND u.tenant_id = $3
			)
		`
		if err := r.db.QueryRow(ctx, check, userRole.UserID, userRole.RoleID, tenantID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return common.ErrTenantMismatch
		}
	}
	return nil
}

func (r *userRoleRepo) Delete(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	query := `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = $2
		AND EXISTS (SELECT 1 FROM users WHERE id = $1 AND tenant_id = $3)
		AND EXISTS (SELECT 1 FROM roles WHERE id = $2 AND tenant_id = $3)
	`
	tag, err := r.db.Exec(ctx, query, userID, roleID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's role assignments within tenantID. Roles the
// user somehow holds in another tenant never leave the join.
func (r *userRoleRepo) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.UserRole, error) {
	query := `
		SELECT ur.id, ur.user_id, ur.role_id, ur.created_at
		FROM user_roles ur
		JOIN users u ON ur.user_id = u.id
		JOIN roles ro ON ur.role_id = ro.id
		WHERE u.tenant_id = $1 AND ro.tenant_id = $1 AND ur.user_id = $2
		ORDER BY ur.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userRoles []*models.UserRole
	for rows.Next() {
		userRole := &models.UserRole{}
		if err := rows.Scan(&userRole.ID, &userRole.UserID, &userRole.RoleID, &userRole.CreatedAt); err != nil {
			return nil, err
		}
		userRoles = append(userRoles, userRole)
	}
	return userRoles, rows.Err()
}

func (r *userRoleRepo) ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.UserRole, error) {
	query := `
		SELECT ur.id, ur.user_id, ur.role_id, ur.created_at
		FROM user_roles ur
		JOIN roles ro ON ur.role_id = ro.id
		WHERE ro.tenant_id = $1 AND ur.role_id = $2
		ORDER BY ur.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userRoles []*models.UserRole
	for rows.Next() {
		userRole := &models.UserRole{}
		if err := rows.Scan(&userRole.ID, &userRole.UserID, &userRole.RoleID, &userRole.CreatedAt); err != nil {
			return nil, err
		}
		userRoles = append(userRoles, userRole)
	}
	return userRoles, rows.Err()
}
