package models

import (
	"time"

	"github.com/google/uuid"
)

// SeoContent is per-property localized metadata, unique per
// (property_id, language, tenant_id).
type SeoContent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	PropertyID  uuid.UUID `json:"property_id" db:"property_id"`
	Language    string    `json:"language" db:"language"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Keywords    []string  `json:"keywords,omitempty" db:"keywords"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
