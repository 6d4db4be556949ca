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

type IoTDeviceRepository interface {
	Create(ctx context.Context, device *models.IoTDevice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.IoTDevice, error)
	Update(ctx context.Context, device *models.IoTDevice) error
	UpdateState(ctx context.Context, tenantID, id uuid.UUID, status string, reading map[string]any) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.IoTDevice, error)
	// MarkStale flips devices that have not reported since the cutoff to the
	// stale status, across all tenants. Used by the background sweep.
	MarkStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type iotDeviceRepo struct {
	db DB
}

func NewIoTDeviceRepo(db DB) IoTDeviceRepository {
	return &iotDeviceRepo{db: db}
}

func (r *iotDeviceRepo) Create(ctx context.Context, device *models.IoTDevice) error {
	query := `
		INSERT INTO iot_devices (id, tenant_id, property_id, device_id, name, type, status, last_reading, reported_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, device.ID, device.TenantID, device.PropertyID, device.DeviceID,
		device.Name, device.Type, device.Status, device.LastReading, device.ReportedAt)
	return err
}

func (r *iotDeviceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.IoTDevice, error) {
	device := &models.IoTDevice{}
	query := `
		SELECT id, tenant_id, property_id, device_id, name, type, status, last_reading, reported_at, created_at, updated_at
		FROM iot_devices
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&device.ID, &device.TenantID, &device.PropertyID,
		&device.DeviceID, &device.Name, &device.Type, &device.Status, &device.LastReading,
		&device.ReportedAt, &device.CreatedAt, &device.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return device, nil
}

func (r *iotDeviceRepo) Update(ctx context.Context, device *models.IoTDevice) error {
	query := `
		UPDATE iot_devices
		SET property_id = $1, name = $2, type = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	tag, err := r.db.Exec(ctx, query, device.PropertyID, device.Name, device.Type, device.TenantID, device.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *iotDeviceRepo) UpdateState(ctx context.Context, tenantID, id uuid.UUID, status string, reading map[string]any) error {
	query := `
		UPDATE iot_devices
		SET status = $1, last_reading = COALESCE($2, last_reading), reported_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
	`
	var readingArg any
	if reading != nil {
		readingArg = reading
	}
	tag, err := r.db.Exec(ctx, query, status, readingArg, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *iotDeviceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM iot_devices WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *iotDeviceRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.IoTDevice, error) {
	query := `
		SELECT id, tenant_id, property_id, device_id, name, type, status, last_reading, reported_at, created_at, updated_at
		FROM iot_devices
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*models.IoTDevice
	for rows.Next() {
		device := &models.IoTDevice{}
		if err := rows.Scan(&device.ID, &device.TenantID, &device.PropertyID, &device.DeviceID,
			&device.Name, &device.Type, &device.Status, &device.LastReading, &device.ReportedAt,
			&device.CreatedAt, &device.UpdatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (r *iotDeviceRepo) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE iot_devices
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND (reported_at IS NULL OR reported_at < $3)
	`
	tag, err := r.db.Exec(ctx, query, models.DeviceStatusStale, models.DeviceStatusOnline, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
