package handlers

import (
	"net/http"

	"innkeeper/internal/models"
	"innkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// CultureHandlers handles HTTP requests for tenant-local editorial content.
// The listing endpoint is served from cache when warm.
type CultureHandlers struct {
	cultureService services.CultureService
}

func NewCultureHandlers(cultureService services.CultureService) *CultureHandlers {
	return &CultureHandlers{cultureService: cultureService}
}

// ListContent handles GET /culture?language=...
func (h *CultureHandlers) ListContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	language := c.QueryParam("language")
	if language != "" && !models.ValidCultureLanguage(language) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported language")
	}

	items, err := h.cultureService.ListContent(c.Request().Context(), tenantID, language)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"content": items})
}

// GetContent handles GET /culture/:id
func (h *CultureHandlers) GetContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	item, err := h.cultureService.GetContent(c.Request().Context(), tenantID, id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// CreateContent handles POST /culture
func (h *CultureHandlers) CreateContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var content models.CultureContent
	if err := c.Bind(&content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.cultureService.CreateContent(c.Request().Context(), tenantID, &content); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, content)
}

// UpdateContent handles PUT /culture/:id
func (h *CultureHandlers) UpdateContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var content models.CultureContent
	if err := c.Bind(&content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	content.ID = id

	if err := h.cultureService.UpdateContent(c.Request().Context(), tenantID, &content); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, content)
}

// DeleteContent handles DELETE /culture/:id
func (h *CultureHandlers) DeleteContent(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.cultureService.DeleteContent(c.Request().Context(), tenantID, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Content deleted"})
}
