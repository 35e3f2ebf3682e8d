package http

import (
	"encoding/json"
	"math/rand/v2"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xiaot623/gogo/companion/internal/delay"
	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/logger"
	"github.com/xiaot623/gogo/companion/internal/progress"
	"github.com/xiaot623/gogo/companion/internal/service"
	"github.com/xiaot623/gogo/companion/internal/therapist"
	"github.com/xiaot623/gogo/companion/tests/helpers"
)

func TestNewServerRoutes(t *testing.T) {
	log := zaptest.NewLogger(t)
	cfg, err := therapist.ConfigFor(domain.PersonalityEmpathetic)
	require.NoError(t, err)
	te, err := therapist.NewEngine(cfg, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	svc := service.New(te, progress.NewEngine(), delay.NewSimulator(delay.WithSleeper(delay.NoSleep)),
		helpers.NewTestRepository(t), logger.Wrap(log))

	live := func(c echo.Context) error { return c.String(nethttp.StatusTeapot, "live") }
	e := NewServer(svc, live, log)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["session_active"])

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/v1/ws", nil))
	assert.Equal(t, nethttp.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodPost, "/v1/sessions/current/end", nil))
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}
