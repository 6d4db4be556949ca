package repositories

import (
	"context"
	"errors"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ModuleBindingRepository interface {
	// Upsert replaces the whole capability set for (role, module, tenant).
	// Partial update is not supported; callers read-modify-write to keep
	// flags they did not mean to change.
	Upsert(ctx context.Context, binding *models.ModuleBinding) error
	// Get returns the binding for (role, module) within tenantID. An absent
	// binding yields a binding with an empty capability set, not an error.
	Get(ctx context.Context, tenantID, roleID uuid.UUID, module string) (*models.ModuleBinding, error)
	Delete(ctx context.Context, tenantID, roleID uuid.UUID, module string) error
	ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.ModuleBinding, error)
}

type moduleBindingRepo struct {
	db DB
}

func NewModuleBindingRepo(db DB) ModuleBindingRepository {
	return &moduleBindingRepo{db: db}
}

func (r *moduleBindingRepo) Upsert(ctx context.Context, binding *models.ModuleBinding) error {
	// The EXISTS guard keeps a binding from referencing a role of another
	// tenant, mirroring the grant guards.
	query := `
		INSERT INTO role_module_bindings (id, role_id, tenant_id, module, capabilities, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, NOW(), NOW()
		WHERE EXISTS (SELECT 1 FROM roles WHERE id = $2 AND tenant_id = $3)
		ON CONFLICT (role_id, module, tenant_id)
		DO UPDATE SET capabilities = EXCLUDED.capabilities, updated_at = NOW()
	`
	tag, err := r.db.Exec(ctx, query, binding.ID, binding.RoleID, binding.TenantID, binding.Module, binding.Capabilities)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTenantMismatch
	}
	return nil
}

func (r *moduleBindingRepo) Get(ctx context.Context, tenantID, roleID uuid.UUID, module string) (*models.ModuleBinding, error) {
	binding := &models.ModuleBinding{}
	query := `
		SELECT id, role_id, tenant_id, module, capabilities, created_at, updated_at
		FROM role_module_bindings
		WHERE tenant_id = $1 AND role_id = $2 AND module = $3
	`
	err := r.db.QueryRow(ctx, query, tenantID, roleID, module).Scan(&binding.ID, &binding.RoleID, &binding.TenantID, &binding.Module, &binding.Capabilities, &binding.CreatedAt, &binding.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Absent binding means every capability is denied.
			return &models.ModuleBinding{
				RoleID:       roleID,
				TenantID:     tenantID,
				Module:       module,
				Capabilities: map[string]bool{},
			}, nil
		}
		return nil, err
	}
	if binding.Capabilities == nil {
		binding.Capabilities = map[string]bool{}
	}
	return binding, nil
}

func (r *moduleBindingRepo) Delete(ctx context.Context, tenantID, roleID uuid.UUID, module string) error {
	query := `DELETE FROM role_module_bindings WHERE tenant_id = $1 AND role_id = $2 AND module = $3`
	tag, err := r.db.Exec(ctx, query, tenantID, roleID, module)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *moduleBindingRepo) ListByRole(ctx context.Context, tenantID, roleID uuid.UUID) ([]*models.ModuleBinding, error) {
	query := `
		SELECT id, role_id, tenant_id, module, capabilities, created_at, updated_at
		FROM role_module_bindings
		WHERE tenant_id = $1 AND role_id = $2
		ORDER BY module
	`
	rows, err := r.db.Query(ctx, query, tenantID, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*models.ModuleBinding
	for rows.Next() {
		binding := &models.ModuleBinding{}
		if err := rows.Scan(&binding.ID, &binding.RoleID, &binding.TenantID, &binding.Module, &binding.Capabilities, &binding.CreatedAt, &binding.UpdatedAt); err != nil {
			return nil, err
		}
		if binding.Capabilities == nil {
			binding.Capabilities = map[string]bool{}
		}
		bindings = append(bindings, binding)
	}
	return bindings, rows.Err()
}
