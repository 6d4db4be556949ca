package handlers

import (
	"net/http"

	"innkeeper/internal/models"
	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// SeoHandlers handles HTTP requests for per-property localized metadata.
type SeoHandlers struct {
	seoService services.SeoService
}

func NewSeoHandlers(seoService services.SeoService) *SeoHandlers {
	return &SeoHandlers{seoService: seoService}
}

// UpsertContent handles PUT /seo
func (h *SeoHandlers) UpsertContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var content models.SeoContent
	if err := c.Bind(&content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.seoService.UpsertContent(c.Request().Context(), tenantID, &content); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, content)
}

// GetContent handles GET /seo/:property_id?language=...
func (h *SeoHandlers) GetContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	propertyID, err := parseUUIDParam(c, "property_id")
	if err != nil {
		return err
	}
	language := c.QueryParam("language")
	if language == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "language is required")
	}

	content, err := h.seoService.GetContent(c.Request().Context(), tenantID, propertyID, language)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, content)
}

// DeleteContent handles DELETE /seo/:id
func (h *SeoHandlers) DeleteContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.seoService.DeleteContent(c.Request().Context(), tenantID, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Content deleted"})
}

// ListContent handles GET /seo
func (h *SeoHandlers) ListContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	content, err := h.seoService.ListContent(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"content": content,
		"limit":   limit,
		"offset":  offset,
	})
}
