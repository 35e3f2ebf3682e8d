package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// StartSession opens a new session.
// POST /v1/sessions
func (h *Handler) StartSession(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := h.service.StartSession(ctx)
	if err != nil {
		return errorResponse(c, err)
	}
	history := h.service.MessageHistory()
	resp := map[string]interface{}{"session_id": id}
	if len(history) > 0 {
		resp["greeting"] = history[0]
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetCurrentSession returns the live session progress.
// GET /v1/sessions/current
func (h *Handler) GetCurrentSession(c echo.Context) error {
	current := h.service.CurrentSession()
	if current == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": domain.ErrSessionNotActive.Error()})
	}
	return c.JSON(http.StatusOK, current)
}

// EndSession finalizes the live session.
// POST /v1/sessions/current/end
func (h *Handler) EndSession(c echo.Context) error {
	final, err := h.service.EndSession(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	if final == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": domain.ErrSessionNotActive.Error()})
	}
	return c.JSON(http.StatusOK, final)
}

// ListMessages returns the live message history.
// GET /v1/messages
func (h *Handler) ListMessages(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": h.service.SessionID(),
		"messages":   h.service.MessageHistory(),
	})
}

type postMessageRequest struct {
	Text string `json:"text"`
}

// PostMessage runs one conversation turn. The response waits out the reply delay.
// POST /v1/messages
func (h *Handler) PostMessage(c echo.Context) error {
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	turn, err := h.service.ProcessUserMessage(c.Request().Context(), req.Text)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, turn)
}

type trackMoodRequest struct {
	Mood      domain.MoodState     `json:"mood"`
	Emotions  []domain.EmotionType `json:"emotions"`
	Intensity int                  `json:"intensity"`
}

// TrackMood records a mood check-in.
// POST /v1/moods
func (h *Handler) TrackMood(c echo.Context) error {
	var req trackMoodRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	for _, e := range req.Emotions {
		if !e.Valid() {
			return badRequest(c, "unknown emotion: "+string(e))
		}
	}
	current, events, err := h.service.TrackMood(c.Request().Context(), req.Mood, req.Emotions, req.Intensity)
	if err != nil {
		return errorResponse(c, err)
	}
	if current == nil {
		return errorResponse(c, domain.ErrSessionNotActive)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session": current,
		"events":  events,
	})
}

// GetStats returns player stats with level progress and difficulty.
// GET /v1/stats
func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"stats":      h.service.PlayerStats(),
		"progress":   h.service.Progress(),
		"difficulty": h.service.DifficultyLevel(),
	})
}

// GetTherapist returns the therapist configuration and conversation context.
// GET /v1/therapist
func (h *Handler) GetTherapist(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"config":  h.service.TherapistConfig(),
		"context": h.service.ConversationContext(),
	})
}

type changePersonalityRequest struct {
	Personality domain.Personality `json:"personality"`
}

// ChangePersonality switches the therapist persona.
// PUT /v1/therapist/personality
func (h *Handler) ChangePersonality(c echo.Context) error {
	var req changePersonalityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Personality == "" {
		return badRequest(c, "personality is required")
	}
	cfg, err := h.service.ChangePersonality(c.Request().Context(), req.Personality)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}
