// Package v1 provides the version 1 HTTP API of the companion.
package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the v1 routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Session lifecycle
	e.POST("/v1/sessions", h.StartSession)
	e.GET("/v1/sessions/current", h.GetCurrentSession)
	e.POST("/v1/sessions/current/end", h.EndSession)

	// Conversation
	e.GET("/v1/messages", h.ListMessages)
	e.POST("/v1/messages", h.PostMessage)
	e.POST("/v1/moods", h.TrackMood)
	e.GET("/v1/stats", h.GetStats)
	e.GET("/v1/therapist", h.GetTherapist)
	e.PUT("/v1/therapist/personality", h.ChangePersonality)

	// Stored data
	e.GET("/v1/history", h.ListHistory)
	e.DELETE("/v1/history/:session_id", h.DeleteHistorySession)
	e.DELETE("/v1/history", h.ClearHistory)
	e.GET("/v1/preferences", h.GetPreferences)
	e.PUT("/v1/preferences", h.UpdatePreferences)
	e.POST("/v1/preferences/reset", h.ResetPreferences)
	e.GET("/v1/privacy", h.GetPrivacy)
	e.PUT("/v1/privacy", h.UpdatePrivacy)
	e.GET("/v1/export", h.Export)
	e.GET("/v1/storage", h.GetStorage)
	e.DELETE("/v1/data", h.ClearAllData)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"version":        "0.1.0",
		"session_active": h.service.IsSessionActive(),
	})
}

// errorResponse maps service errors to HTTP statuses.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotActive):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrExportDisabled):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
