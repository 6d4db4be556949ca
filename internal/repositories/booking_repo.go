package repositories

import (
	"context"
	"errors"
	"time"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	// Create inserts the booking only when the referenced property belongs
	// to the booking's tenant; otherwise common.ErrTenantMismatch.
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	// CompletePastStays flips confirmed bookings whose checkout date has
	// passed to completed, returning how many rows changed.
	CompletePastStays(ctx context.Context, before time.Time) (int64, error)
}

type bookingRepo struct {
	db DB
}

func NewBookingRepo(db DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, tenant_id, user_id, property_id, check_in_date, check_out_date, total_guests, total_amount, status, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		WHERE EXISTS (SELECT 1 FROM properties WHERE id = $4 AND tenant_id = $2)
	`
	tag, err := r.db.Exec(ctx, query, booking.ID, booking.TenantID, booking.UserID, booking.PropertyID,
		booking.CheckInDate, booking.CheckOutDate, booking.TotalGuests, booking.TotalAmount, booking.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTenantMismatch
	}
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, tenant_id, user_id, property_id, check_in_date, check_out_date, total_guests, total_amount, status, created_at, updated_at
		FROM bookings
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&booking.ID, &booking.TenantID, &booking.UserID,
		&booking.PropertyID, &booking.CheckInDate, &booking.CheckOutDate, &booking.TotalGuests,
		&booking.TotalAmount, &booking.Status, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *bookingRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *bookingRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT id, tenant_id, user_id, property_id, check_in_date, check_out_date, total_guests, total_amount, status, created_at, updated_at
		FROM bookings
		WHERE tenant_id = $1
		ORDER BY check_in_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepo) ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT id, tenant_id, user_id, property_id, check_in_date, check_out_date, total_guests, total_amount, status, created_at, updated_at
		FROM bookings
		WHERE tenant_id = $1 AND property_id = $2
		ORDER BY check_in_date DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, propertyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepo) CompletePastStays(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND check_out_date < $3
	`
	tag, err := r.db.Exec(ctx, query, models.BookingStatusCompleted, models.BookingStatusConfirmed, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanBookings(rows pgx.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		booking := &models.Booking{}
		if err := rows.Scan(&booking.ID, &booking.TenantID, &booking.UserID, &booking.PropertyID,
			&booking.CheckInDate, &booking.CheckOutDate, &booking.TotalGuests, &booking.TotalAmount,
			&booking.Status, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
