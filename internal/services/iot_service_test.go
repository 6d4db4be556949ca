package services

import (
	"context"
	"testing"
	"time"

	"innkeeper/internal/common"
	"innkeeper/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockIoTDeviceRepository struct {
	mock.Mock
}

func (m *MockIoTDeviceRepository) Create(ctx context.Context, device *models.IoTDevice) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockIoTDeviceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.IoTDevice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IoTDevice), args.Error(1)
}

func (m *MockIoTDeviceRepository) Update(ctx context.Context, device *models.IoTDevice) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockIoTDeviceRepository) UpdateState(ctx context.Context, tenantID, id uuid.UUID, status string, reading map[string]any) error {
	args := m.Called(ctx, tenantID, id, status, reading)
	return args.Error(0)
}

func (m *MockIoTDeviceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockIoTDeviceRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.IoTDevice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.IoTDevice), args.Error(1)
}

func (m *MockIoTDeviceRepository) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type IoTServiceTestSuite struct {
	suite.Suite
	mockDevices *MockIoTDeviceRepository
	service     IoTService
	tenantID    uuid.UUID
}

func (suite *IoTServiceTestSuite) SetupTest() {
	suite.mockDevices = &MockIoTDeviceRepository{}
	suite.service = NewIoTService(suite.mockDevices, zap.NewNop())
	suite.tenantID = uuid.New()

	suite.mockDevices.Test(suite.T())
}

func (suite *IoTServiceTestSuite) TearDownTest() {
	suite.mockDevices.AssertExpectations(suite.T())
}

func TestIoTServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IoTServiceTestSuite))
}

func (suite *IoTServiceTestSuite) TestRegisterDevice_DefaultsToOffline() {
	ctx := context.Background()

	suite.mockDevices.On("Create", ctx, mock.AnythingOfType("*models.IoTDevice")).Return(nil).Run(func(args mock.Arguments) {
		device := args.Get(1).(*models.IoTDevice)
		assert.Equal(suite.T(), suite.tenantID, device.TenantID)
		assert.NotEqual(suite.T(), uuid.Nil, device.ID)
		if assert.NotNil(suite.T(), device.Status) {
			assert.Equal(suite.T(), models.DeviceStatusOffline, *device.Status)
		}
	})

	err := suite.service.RegisterDevice(ctx, suite.tenantID, &models.IoTDevice{DeviceID: "AC-17-stairwell"})
	assert.NoError(suite.T(), err)
}

func (suite *IoTServiceTestSuite) TestRegisterDevice_MissingHardwareID() {
	ctx := context.Background()

	err := suite.service.RegisterDevice(ctx, suite.tenantID, &models.IoTDevice{})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "device_id is required")
}

func (suite *IoTServiceTestSuite) TestRegisterDevice_PayloadNamingOtherTenantIsRejected() {
	ctx := context.Background()

	err := suite.service.RegisterDevice(ctx, suite.tenantID, &models.IoTDevice{
		TenantID: uuid.New(),
		DeviceID: "AC-17-stairwell",
	})
	assert.ErrorIs(suite.T(), err, common.ErrCrossTenantWrite)
	suite.mockDevices.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *IoTServiceTestSuite) TestReportState_MarksOnline() {
	ctx := context.Background()
	deviceID := uuid.New()
	reading := map[string]any{"temperature": 21.5}

	suite.mockDevices.On("UpdateState", ctx, suite.tenantID, deviceID, models.DeviceStatusOnline, reading).Return(nil)

	err := suite.service.ReportState(ctx, suite.tenantID, deviceID, reading)
	assert.NoError(suite.T(), err)
}

func (suite *IoTServiceTestSuite) TestControlDevice_Success() {
	ctx := context.Background()
	deviceID := uuid.New()
	online := models.DeviceStatusOnline
	command := map[string]any{"set_temperature": 23}

	suite.mockDevices.On("GetByID", ctx, suite.tenantID, deviceID).Return(&models.IoTDevice{
		ID:       deviceID,
		TenantID: suite.tenantID,
		DeviceID: "AC-17-stairwell",
		Status:   &online,
	}, nil)
	suite.mockDevices.On("UpdateState", ctx, suite.tenantID, deviceID, models.DeviceStatusOnline, command).Return(nil)

	err := suite.service.ControlDevice(ctx, suite.tenantID, deviceID, command)
	assert.NoError(suite.T(), err)
}

func (suite *IoTServiceTestSuite) TestControlDevice_OfflineDeviceRejectsCommands() {
	ctx := context.Background()
	deviceID := uuid.New()
	offline := models.DeviceStatusOffline

	suite.mockDevices.On("GetByID", ctx, suite.tenantID, deviceID).Return(&models.IoTDevice{
		ID:       deviceID,
		TenantID: suite.tenantID,
		Status:   &offline,
	}, nil)

	err := suite.service.ControlDevice(ctx, suite.tenantID, deviceID, map[string]any{"set_temperature": 23})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "offline")
}

func (suite *IoTServiceTestSuite) TestControlDevice_EmptyCommand() {
	ctx := context.Background()

	err := suite.service.ControlDevice(ctx, suite.tenantID, uuid.New(), nil)
	assert.Error(suite.T(), err)
	suite.mockDevices.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IoTServiceTestSuite) TestControlDevice_ForeignDeviceIsNotFound() {
	ctx := context.Background()
	deviceID := uuid.New()

	suite.mockDevices.On("GetByID", ctx, suite.tenantID, deviceID).Return((*models.IoTDevice)(nil), common.ErrNotFound)

	err := suite.service.ControlDevice(ctx, suite.tenantID, deviceID, map[string]any{"set_temperature": 23})
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *IoTServiceTestSuite) TestSweepStaleDevices_UsesCutoff() {
	ctx := context.Background()

	suite.mockDevices.On("MarkStale", ctx, mock.AnythingOfType("time.Time")).Return(int64(2), nil).Run(func(args mock.Arguments) {
		cutoff := args.Get(1).(time.Time)
		assert.WithinDuration(suite.T(), time.Now().Add(-staleCutoff), cutoff, time.Minute)
	})

	n, err := suite.service.SweepStaleDevices(ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)
}
