package models

import (
	"time"

	"github.com/google/uuid"
)

// Languages culture content may be published in.
var CultureLanguages = []string{"zh_TW", "en", "ja"}

// CultureContent is tenant-local cultural/editorial content, unique per
// (tenant_id, title, language).
type CultureContent struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Language  string    `json:"language" db:"language"`
	Category  *string   `json:"category,omitempty" db:"category"` // local_cuisine, historical_site, festival
	ImageURL  *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidCultureLanguage reports whether lang is one of the supported locales.
func ValidCultureLanguage(lang string) bool {
	for _, l := range CultureLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
