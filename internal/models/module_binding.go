package models

import (
	"time"

	"github.com/google/uuid"
)

// Module names used as the unit of fine-grained capability binding.
const (
	ModuleBookings   = "bookings"
	ModuleProperties = "properties"
	ModuleIoT        = "iot"
	ModuleSeo        = "seo"
	ModuleCulture    = "culture"
	ModuleUsers      = "users"
	ModuleRoles      = "roles"
	ModuleReports    = "reports"
)

// Capability flags a binding may carry. The set is open; these are the ones
// the handlers declare.
const (
	CapabilityRead    = "read"
	CapabilityWrite   = "write"
	CapabilityControl = "control"
)

// ModuleBinding grants a role a set of capability flags on one module within
// one tenant. Unique per (role_id, module, tenant_id). It is an authorization
// path independent of the coarse role-permission grants: neither implies the
// other.
type ModuleBinding struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	RoleID       uuid.UUID       `json:"role_id" db:"role_id"`
	TenantID     uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Module       string          `json:"module" db:"module"`
	Capabilities map[string]bool `json:"capabilities" db:"capabilities"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Allows reports whether the binding carries the capability with a true flag.
// A nil capability set denies everything.
func (b *ModuleBinding) Allows(capability string) bool {
	if b == nil {
		return false
	}
	return b.Capabilities[capability]
}
