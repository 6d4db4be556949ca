package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	PropertyID   uuid.UUID `json:"property_id" db:"property_id"`
	CheckInDate  time.Time `json:"check_in_date" db:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date" db:"check_out_date"`
	TotalGuests  int       `json:"total_guests" db:"total_guests"`
	TotalAmount  float64   `json:"total_amount" db:"total_amount"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
