package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/repository"
)

// ListHistory returns the archived conversations.
// GET /v1/history
func (h *Handler) ListHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": h.service.History(c.Request().Context()),
	})
}

// DeleteHistorySession removes one archived conversation.
// DELETE /v1/history/:session_id
func (h *Handler) DeleteHistorySession(c echo.Context) error {
	if err := h.service.DeleteHistorySession(c.Request().Context(), c.Param("session_id")); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearHistory removes every archived conversation.
// DELETE /v1/history
func (h *Handler) ClearHistory(c echo.Context) error {
	if err := h.service.ClearHistory(c.Request().Context()); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Preferences(c.Request().Context()))
}

// UpdatePreferences merges the given fields into the stored preferences.
// PUT /v1/preferences
func (h *Handler) UpdatePreferences(c echo.Context) error {
	var patch domain.PreferencesPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	prefs, err := h.service.UpdatePreferences(c.Request().Context(), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

// ResetPreferences restores the default preferences.
// POST /v1/preferences/reset
func (h *Handler) ResetPreferences(c echo.Context) error {
	prefs, err := h.service.ResetPreferences(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) GetPrivacy(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Privacy(c.Request().Context()))
}

// UpdatePrivacy merges the given fields into the stored privacy settings.
// PUT /v1/privacy
func (h *Handler) UpdatePrivacy(c echo.Context) error {
	var patch domain.PrivacyPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	settings, err := h.service.UpdatePrivacy(c.Request().Context(), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Export downloads the stored data.
// GET /v1/export?format=json|csv|text
func (h *Handler) Export(c echo.Context) error {
	format := repository.ExportFormat(c.QueryParam("format"))
	if format == "" {
		format = repository.ExportJSON
	}
	data, err := h.service.Export(c.Request().Context(), format)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Blob(http.StatusOK, format.ContentType(), data)
}

func (h *Handler) GetStorage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.StorageUsage(c.Request().Context()))
}

// ClearAllData wipes all stored data and resets player stats.
// DELETE /v1/data
func (h *Handler) ClearAllData(c echo.Context) error {
	if err := h.service.ClearAllData(c.Request().Context()); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
