package v1

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

func startAndEnd(t *testing.T, e *echo.Echo, h *Handler) string {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodPost, "/v1/sessions", "")
	require.NoError(t, h.StartSession(c))
	var started struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rec, &started)
	c, _ = newJSONContext(e, http.MethodPost, "/v1/sessions/current/end", "")
	require.NoError(t, h.EndSession(c))
	return started.SessionID
}

func TestHistoryRoutes(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	id := startAndEnd(t, e, h)
	startAndEnd(t, e, h)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/history", "")
	require.NoError(t, h.ListHistory(c))
	var list struct {
		Sessions []domain.ConversationSession `json:"sessions"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Sessions, 2)

	c, rec = newJSONContext(e, http.MethodDelete, "/v1/history/"+id, "")
	c.SetParamNames("session_id")
	c.SetParamValues(id)
	require.NoError(t, h.DeleteHistorySession(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newJSONContext(e, http.MethodDelete, "/v1/history/"+id, "")
	c.SetParamNames("session_id")
	c.SetParamValues(id)
	require.NoError(t, h.DeleteHistorySession(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newJSONContext(e, http.MethodDelete, "/v1/history", "")
	require.NoError(t, h.ClearHistory(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newJSONContext(e, http.MethodGet, "/v1/history", "")
	require.NoError(t, h.ListHistory(c))
	decode(t, rec, &list)
	assert.Empty(t, list.Sessions)
}

func TestPreferencesRoutes(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	c, rec := newJSONContext(e, http.MethodPut, "/v1/preferences", `{"theme":"dark","therapistPersonality":"analytical"}`)
	require.NoError(t, h.UpdatePreferences(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs domain.UserPreferences
	decode(t, rec, &prefs)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, domain.PersonalityAnalytical, prefs.TherapistPersonality)
	assert.Equal(t, 30, prefs.SessionLength)

	c, rec = newJSONContext(e, http.MethodPut, "/v1/preferences", `{"therapistPersonality":"grumpy"}`)
	require.NoError(t, h.UpdatePreferences(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/v1/preferences/reset", "")
	require.NoError(t, h.ResetPreferences(c))
	decode(t, rec, &prefs)
	assert.Equal(t, domain.DefaultUserPreferences(), prefs)

	c, rec = newJSONContext(e, http.MethodGet, "/v1/preferences", "")
	require.NoError(t, h.GetPreferences(c))
	decode(t, rec, &prefs)
	assert.Equal(t, "light", prefs.Theme)
}

func TestExportRoutes(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	id := startAndEnd(t, e, h)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/export?format=csv", "")
	require.NoError(t, h.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.Contains(rec.Body.String(), id))

	c, rec = newJSONContext(e, http.MethodGet, "/v1/export", "")
	require.NoError(t, h.Export(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]interface{}
	decode(t, rec, &doc)
	assert.Equal(t, "1.0.0", doc["version"])

	c, rec = newJSONContext(e, http.MethodGet, "/v1/export?format=xml", "")
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(e, http.MethodPut, "/v1/privacy", `{"exportEnabled":false}`)
	require.NoError(t, h.UpdatePrivacy(c))
	var privacy domain.PrivacySettings
	decode(t, rec, &privacy)
	assert.False(t, privacy.ExportEnabled)
	assert.True(t, privacy.DataCollection)

	c, rec = newJSONContext(e, http.MethodGet, "/v1/export?format=text", "")
	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClearAllDataRoute(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	startAndEnd(t, e, h)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/storage", "")
	require.NoError(t, h.GetStorage(c))
	var usage domain.StorageUsage
	decode(t, rec, &usage)
	assert.Positive(t, usage.Used)

	c, rec = newJSONContext(e, http.MethodDelete, "/v1/data", "")
	require.NoError(t, h.ClearAllData(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newJSONContext(e, http.MethodGet, "/v1/storage", "")
	require.NoError(t, h.GetStorage(c))
	decode(t, rec, &usage)
	assert.Zero(t, usage.Used)
	assert.Equal(t, 5*1024*1024, usage.Available)
}
