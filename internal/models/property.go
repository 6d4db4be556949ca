package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PropertyStatusDraft       = "draft"
	PropertyStatusAvailable   = "available"
	PropertyStatusUnavailable = "unavailable"
)

type Property struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Address     *string   `json:"address,omitempty" db:"address"`
	Latitude    *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64  `json:"longitude,omitempty" db:"longitude"`
	Amenities   []string  `json:"amenities,omitempty" db:"amenities"`
	Images      []string  `json:"images,omitempty" db:"images"`
	BasePrice   float64   `json:"base_price" db:"base_price"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
