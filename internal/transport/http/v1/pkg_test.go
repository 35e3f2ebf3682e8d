package v1

import (
	"encoding/json"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/xiaot623/gogo/companion/internal/delay"
	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/logger"
	"github.com/xiaot623/gogo/companion/internal/progress"
	"github.com/xiaot623/gogo/companion/internal/service"
	"github.com/xiaot623/gogo/companion/internal/therapist"
	"github.com/xiaot623/gogo/companion/tests/helpers"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg, err := therapist.ConfigFor(domain.PersonalityEmpathetic)
	if err != nil {
		t.Fatalf("ConfigFor failed: %v", err)
	}
	te, err := therapist.NewEngine(cfg, rand.New(rand.NewPCG(5, 6)))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	svc := service.New(te, progress.NewEngine(), delay.NewSimulator(delay.WithSleeper(delay.NoSleep)),
		helpers.NewTestRepository(t), logger.Wrap(zaptest.NewLogger(t)))
	return NewHandler(svc)
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}
