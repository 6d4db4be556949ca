package handlers

import (
	"net/http"
	"time"

	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BookingHandlers handles HTTP requests for bookings.
type BookingHandlers struct {
	bookingService services.BookingService
}

func NewBookingHandlers(bookingService services.BookingService) *BookingHandlers {
	return &BookingHandlers{bookingService: bookingService}
}

// CreateBooking handles POST /bookings
func (h *BookingHandlers) CreateBooking(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		PropertyID   string  `json:"property_id"`
		CheckInDate  string  `json:"check_in_date"`
		CheckOutDate string  `json:"check_out_date"`
		TotalGuests  int     `json:"total_guests"`
		TotalAmount  float64 `json:"total_amount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid property_id")
	}
	checkIn, err := time.Parse("2006-01-02", req.CheckInDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid check_in_date, expected YYYY-MM-DD")
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOutDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid check_out_date, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	booking := &models.Booking{
		UserID:       userID,
		PropertyID:   propertyID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		TotalGuests:  req.TotalGuests,
		TotalAmount:  req.TotalAmount,
	}
	if err := h.bookingService.CreateBooking(ctx, tenantID, booking); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandlers) GetBooking(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	booking, err := h.bookingService.GetBooking(c.Request().Context(), tenantID, id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ConfirmBooking handles POST /bookings/:id/confirm
func (h *BookingHandlers) ConfirmBooking(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.bookingService.ConfirmBooking(c.Request().Context(), tenantID, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Booking confirmed"})
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandlers) CancelBooking(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.bookingService.CancelBooking(c.Request().Context(), tenantID, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

// ListBookings handles GET /bookings, optionally filtered by property_id.
func (h *BookingHandlers) ListBookings(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	ctx := c.Request().Context()

	var bookings []*models.Booking
	if propertyParam := c.QueryParam("property_id"); propertyParam != "" {
		propertyID, err := uuid.Parse(propertyParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid property_id")
		}
		bookings, err = h.bookingService.ListBookingsByProperty(ctx, tenantID, propertyID, limit, offset)
		if err != nil {
			return domainError(err)
		}
	} else {
		bookings, err = h.bookingService.ListBookings(ctx, tenantID, limit, offset)
		if err != nil {
			return domainError(err)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"limit":    limit,
		"offset":   offset,
	})
}
