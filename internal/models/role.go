package models

import (
	"time"

	"github.com/google/uuid"
)

// GuardAPI is the single guard tag this backend issues roles and permissions
// under. The (name, guard, tenant_id) triple is unique at the schema level.
const GuardAPI = "api"

type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Guard       string    `json:"guard" db:"guard"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
