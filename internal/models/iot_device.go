package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusStale   = "stale"
)

type IoTDevice struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	TenantID    uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	PropertyID  *uuid.UUID     `json:"property_id,omitempty" db:"property_id"`
	DeviceID    string         `json:"device_id" db:"device_id"` // hardware identifier, e.g. MAC or serial
	Name        string         `json:"name" db:"name"`
	Type        string         `json:"type" db:"type"` // light, lock, thermostat, sensor
	Status      *string        `json:"status,omitempty" db:"status"`
	LastReading map[string]any `json:"last_reading,omitempty" db:"last_reading"`
	ReportedAt  *time.Time     `json:"reported_at,omitempty" db:"reported_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
