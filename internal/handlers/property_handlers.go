package handlers

import (
	"net/http"
	"time"

	"innkeeper/internal/models"
	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// PropertyHandlers handles HTTP requests for properties and their media.
type PropertyHandlers struct {
	propertyService services.PropertyService
	mediaService    services.MediaService
}

func NewPropertyHandlers(propertyService services.PropertyService, mediaService services.MediaService) *PropertyHandlers {
	return &PropertyHandlers{
		propertyService: propertyService,
		mediaService:    mediaService,
	}
}

// CreateProperty handles POST /properties
func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var property models.Property
	if err := c.Bind(&property); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.propertyService.CreateProperty(c.Request().Context(), tenantID, &property); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, property)
}

// GetProperty handles GET /properties/:id
func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	property, err := h.propertyService.GetProperty(c.Request().Context(), tenantID, id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, property)
}

// UpdateProperty handles PUT /properties/:id
func (h *PropertyHandlers) UpdateProperty(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var property models.Property
	if err := c.Bind(&property); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	property.ID = id

	if err := h.propertyService.UpdateProperty(c.Request().Context(), tenantID, &property); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, property)
}

// DeleteProperty handles DELETE /properties/:id
func (h *PropertyHandlers) DeleteProperty(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.propertyService.DeleteProperty(c.Request().Context(), tenantID, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Property deleted"})
}

// ListProperties handles GET /properties
func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	properties, err := h.propertyService.ListProperties(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"properties": properties,
		"limit":      limit,
		"offset":     offset,
	})
}

// UploadImage handles POST /properties/:id/images. The file lands in object
// storage under the tenant's prefix and its key is appended to the property.
func (h *PropertyHandlers) UploadImage(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot read uploaded file")
	}
	defer src.Close()

	ctx := c.Request().Context()
	objectKey, err := h.mediaService.Upload(ctx, tenantID, file.Filename, file.Header.Get("Content-Type"), src, file.Size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed")
	}

	property, err := h.propertyService.AttachImage(ctx, tenantID, id, objectKey)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, property)
}

// GetImageURL handles GET /properties/:id/images/url?key=...
func (h *PropertyHandlers) GetImageURL(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	key := c.QueryParam("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}

	url, err := h.mediaService.PresignedURL(c.Request().Context(), tenantID, key, 15*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "No such object for this tenant")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
