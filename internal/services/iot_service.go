package services

import (
	"context"
	"errors"
	"time"

	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// staleCutoff is how long a device may stay silent before the background
// sweep marks it stale.
const staleCutoff = 15 * time.Minute

type IoTService interface {
	RegisterDevice(ctx context.Context, tenantID uuid.UUID, device *models.IoTDevice) error
	GetDevice(ctx context.Context, tenantID, id uuid.UUID) (*models.IoTDevice, error)
	UpdateDevice(ctx context.Context, tenantID uuid.UUID, device *models.IoTDevice) error
	DeleteDevice(ctx context.Context, tenantID, id uuid.UUID) error
	ListDevices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.IoTDevice, error)
	// ReportState records a device-originated reading and marks it online.
	ReportState(ctx context.Context, tenantID, id uuid.UUID, reading map[string]any) error
	// ControlDevice pushes an operator command into the device's last_reading.
	ControlDevice(ctx context.Context, tenantID, id uuid.UUID, command map[string]any) error
	// SweepStaleDevices flips silent devices to stale, across all tenants.
	SweepStaleDevices(ctx context.Context) (int64, error)
}

type iotService struct {
	deviceRepo repositories.IoTDeviceRepository
	logger     *zap.Logger
}

func NewIoTService(deviceRepo repositories.IoTDeviceRepository, logger *zap.Logger) IoTService {
	return &iotService{deviceRepo: deviceRepo, logger: logger}
}

func (s *iotService) RegisterDevice(ctx context.Context, tenantID uuid.UUID, device *models.IoTDevice) error {
	if err := stampTenant(&device.TenantID, tenantID); err != nil {
		return err
	}
	if device.DeviceID == "" {
		return errors.New("device_id is required")
	}
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	if device.Status == nil {
		status := models.DeviceStatusOffline
		device.Status = &status
	}
	return s.deviceRepo.Create(ctx, device)
}

func (s *iotService) GetDevice(ctx context.Context, tenantID, id uuid.UUID) (*models.IoTDevice, error) {
	return s.deviceRepo.GetByID(ctx, tenantID, id)
}

func (s *iotService) UpdateDevice(ctx context.Context, tenantID uuid.UUID, device *models.IoTDevice) error {
	if err := stampTenant(&device.TenantID, tenantID); err != nil {
		return err
	}
	return s.deviceRepo.Update(ctx, device)
}

func (s *iotService) DeleteDevice(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.deviceRepo.Delete(ctx, tenantID, id)
}

func (s *iotService) ListDevices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.IoTDevice, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.deviceRepo.List(ctx, tenantID, limit, offset)
}

func (s *iotService) ReportState(ctx context.Context, tenantID, id uuid.UUID, reading map[string]any) error {
	return s.deviceRepo.UpdateState(ctx, tenantID, id, models.DeviceStatusOnline, reading)
}

func (s *iotService) ControlDevice(ctx context.Context, tenantID, id uuid.UUID, command map[string]any) error {
	if len(command) == 0 {
		return errors.New("command payload is required")
	}
	device, err := s.deviceRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if device.Status != nil && *device.Status == models.DeviceStatusOffline {
		return errors.New("device is offline")
	}
	return s.deviceRepo.UpdateState(ctx, tenantID, id, models.DeviceStatusOnline, command)
}

func (s *iotService) SweepStaleDevices(ctx context.Context) (int64, error) {
	n, err := s.deviceRepo.MarkStale(ctx, time.Now().Add(-staleCutoff))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("marked stale devices", zap.Int64("devices", n))
	}
	return n, nil
}
