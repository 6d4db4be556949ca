package services

import (
	"context"
	"errors"
	"math"
	"time"

	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, tenantID uuid.UUID, booking *models.Booking) error
	GetBooking(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, tenantID, id uuid.UUID) error
	CancelBooking(ctx context.Context, tenantID, id uuid.UUID) error
	ListBookings(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	ListBookingsByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	// CompletePastStays is invoked by the scheduler; it spans all tenants.
	CompletePastStays(ctx context.Context) (int64, error)
}

type bookingService struct {
	bookingRepo  repositories.BookingRepository
	propertyRepo repositories.PropertyRepository
	logger       *zap.Logger
}

func NewBookingService(bookingRepo repositories.BookingRepository, propertyRepo repositories.PropertyRepository, logger *zap.Logger) BookingService {
	return &bookingService{bookingRepo: bookingRepo, propertyRepo: propertyRepo, logger: logger}
}

func (s *bookingService) CreateBooking(ctx context.Context, tenantID uuid.UUID, booking *models.Booking) error {
	if err := stampTenant(&booking.TenantID, tenantID); err != nil {
		return err
	}
	if booking.PropertyID == uuid.Nil {
		return errors.New("property_id is required")
	}
	if !booking.CheckOutDate.After(booking.CheckInDate) {
		return errors.New("check-out must be after check-in")
	}
	if booking.TotalGuests <= 0 {
		booking.TotalGuests = 1
	}

	property, err := s.propertyRepo.GetByID(ctx, tenantID, booking.PropertyID)
	if err != nil {
		return err
	}
	if property.Status != models.PropertyStatusAvailable {
		return errors.New("property is not available for booking")
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Status = models.BookingStatusPending
	if booking.TotalAmount == 0 {
		nights := math.Ceil(booking.CheckOutDate.Sub(booking.CheckInDate).Hours() / 24)
		booking.TotalAmount = property.BasePrice * nights
	}
	return s.bookingRepo.Create(ctx, booking)
}

func (s *bookingService) GetBooking(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	return s.bookingRepo.GetByID(ctx, tenantID, id)
}

func (s *bookingService) ConfirmBooking(ctx context.Context, tenantID, id uuid.UUID) error {
	booking, err := s.bookingRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusPending {
		return errors.New("only pending bookings can be confirmed")
	}
	return s.bookingRepo.UpdateStatus(ctx, tenantID, id, models.BookingStatusConfirmed)
}

func (s *bookingService) CancelBooking(ctx context.Context, tenantID, id uuid.UUID) error {
	booking, err := s.bookingRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if booking.Status == models.BookingStatusCompleted {
		return errors.New("completed bookings cannot be cancelled")
	}
	return s.bookingRepo.UpdateStatus(ctx, tenantID, id, models.BookingStatusCancelled)
}

func (s *bookingService) ListBookings(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.bookingRepo.List(ctx, tenantID, limit, offset)
}

func (s *bookingService) ListBookingsByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.bookingRepo.ListByProperty(ctx, tenantID, propertyID, limit, offset)
}

func (s *bookingService) CompletePastStays(ctx context.Context) (int64, error) {
	n, err := s.bookingRepo.CompletePastStays(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("completed past stays", zap.Int64("bookings", n))
	}
	return n, nil
}
