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

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, propertyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) CompletePastStays(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Property), args.Error(1)
}

type BookingServiceTestSuite struct {
	suite.Suite
	mockBookings   *MockBookingRepository
	mockProperties *MockPropertyRepository
	service        BookingService
	tenantID       uuid.UUID
	propertyID     uuid.UUID
}

func (suite *BookingServiceTestSuite) SetupTest() {
	suite.mockBookings = &MockBookingRepository{}
	suite.mockProperties = &MockPropertyRepository{}
	suite.service = NewBookingService(suite.mockBookings, suite.mockProperties, zap.NewNop())
	suite.tenantID = uuid.New()
	suite.propertyID = uuid.New()

	suite.mockBookings.Test(suite.T())
	suite.mockProperties.Test(suite.T())
}

func (suite *BookingServiceTestSuite) TearDownTest() {
	suite.mockBookings.AssertExpectations(suite.T())
	suite.mockProperties.AssertExpectations(suite.T())
}

func TestBookingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func (suite *BookingServiceTestSuite) availableProperty(basePrice float64) *models.Property {
	return &models.Property{
		ID:        suite.propertyID,
		TenantID:  suite.tenantID,
		Name:      "Sakura Ryokan",
		BasePrice: basePrice,
		Status:    models.PropertyStatusAvailable,
	}
}

func (suite *BookingServiceTestSuite) TestCreateBooking_ComputesAmountFromNights() {
	ctx := context.Background()
	checkIn := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 4, 11, 0, 0, 0, time.UTC)

	suite.mockProperties.On("GetByID", ctx, suite.tenantID, suite.propertyID).Return(suite.availableProperty(120), nil)
	suite.mockBookings.On("Create", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Run(func(args mock.Arguments) {
		booking := args.Get(1).(*models.Booking)
		assert.Equal(suite.T(), suite.tenantID, booking.TenantID)
		assert.Equal(suite.T(), models.BookingStatusPending, booking.Status)
		// 2 nights and 20 hours round up to 3 nights.
		assert.Equal(suite.T(), float64(360), booking.TotalAmount)
		assert.Equal(suite.T(), 1, booking.TotalGuests)
	})

	err := suite.service.CreateBooking(ctx, suite.tenantID, &models.Booking{
		PropertyID:   suite.propertyID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	})
	assert.NoError(suite.T(), err)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_KeepsExplicitAmount() {
	ctx := context.Background()

	suite.mockProperties.On("GetByID", ctx, suite.tenantID, suite.propertyID).Return(suite.availableProperty(120), nil)
	suite.mockBookings.On("Create", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Run(func(args mock.Arguments) {
		booking := args.Get(1).(*models.Booking)
		assert.Equal(suite.T(), float64(999), booking.TotalAmount)
	})

	err := suite.service.CreateBooking(ctx, suite.tenantID, &models.Booking{
		PropertyID:   suite.propertyID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		TotalAmount:  999,
		TotalGuests:  2,
	})
	assert.NoError(suite.T(), err)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_PropertyNotAvailable() {
	ctx := context.Background()
	property := suite.availableProperty(120)
	property.Status = models.PropertyStatusDraft

	suite.mockProperties.On("GetByID", ctx, suite.tenantID, suite.propertyID).Return(property, nil)

	err := suite.service.CreateBooking(ctx, suite.tenantID, &models.Booking{
		PropertyID:   suite.propertyID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "not available")
	suite.mockBookings.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_ForeignPropertyIsNotFound() {
	ctx := context.Background()

	// A property in another tenant is indistinguishable from one that does
	// not exist.
	suite.mockProperties.On("GetByID", ctx, suite.tenantID, suite.propertyID).Return((*models.Property)(nil), common.ErrNotFound)

	err := suite.service.CreateBooking(ctx, suite.tenantID, &models.Booking{
		PropertyID:   suite.propertyID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_PayloadNamingOtherTenantIsRejected() {
	ctx := context.Background()

	err := suite.service.CreateBooking(ctx, suite.tenantID, &models.Booking{
		TenantID:     uuid.New(),
		PropertyID:   suite.propertyID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(suite.T(), err, common.ErrCrossTenantWrite)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_DatesOutOfOrder() {
	ctx := context.Background()

	err := suite.service.CreateBooking(ctx, suite.tenantID, &models.Booking{
		PropertyID:   suite.propertyID,
		CheckInDate:  time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "check-out must be after check-in")
}

func (suite *BookingServiceTestSuite) TestConfirmBooking_PendingOnly() {
	ctx := context.Background()
	bookingID := uuid.New()

	suite.mockBookings.On("GetByID", ctx, suite.tenantID, bookingID).Return(&models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusPending,
	}, nil)
	suite.mockBookings.On("UpdateStatus", ctx, suite.tenantID, bookingID, models.BookingStatusConfirmed).Return(nil)

	err := suite.service.ConfirmBooking(ctx, suite.tenantID, bookingID)
	assert.NoError(suite.T(), err)
}

func (suite *BookingServiceTestSuite) TestConfirmBooking_AlreadyCancelled() {
	ctx := context.Background()
	bookingID := uuid.New()

	suite.mockBookings.On("GetByID", ctx, suite.tenantID, bookingID).Return(&models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusCancelled,
	}, nil)

	err := suite.service.ConfirmBooking(ctx, suite.tenantID, bookingID)
	assert.Error(suite.T(), err)
	suite.mockBookings.AssertNotCalled(suite.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestCancelBooking_CompletedStaysStay() {
	ctx := context.Background()
	bookingID := uuid.New()

	suite.mockBookings.On("GetByID", ctx, suite.tenantID, bookingID).Return(&models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusCompleted,
	}, nil)

	err := suite.service.CancelBooking(ctx, suite.tenantID, bookingID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "completed bookings cannot be cancelled")
}

func (suite *BookingServiceTestSuite) TestCancelBooking_WrongTenantIsNotFound() {
	ctx := context.Background()
	bookingID := uuid.New()

	suite.mockBookings.On("GetByID", ctx, suite.tenantID, bookingID).Return((*models.Booking)(nil), common.ErrNotFound)

	err := suite.service.CancelBooking(ctx, suite.tenantID, bookingID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingServiceTestSuite) TestCompletePastStays() {
	ctx := context.Background()

	suite.mockBookings.On("CompletePastStays", ctx, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	n, err := suite.service.CompletePastStays(ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), n)
}
