package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

func testLogger(t *testing.T) *zap.Logger { return zaptest.NewLogger(t) }

type stubClient struct {
	resp      *ChatCompletionResponse
	err       error
	modelsErr error
	lastReq   *ChatCompletionRequest
	listCalls atomic.Int32
}

func (s *stubClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubClient) ListModels(ctx context.Context) ([]Model, error) {
	s.listCalls.Add(1)
	return nil, s.modelsErr
}

func reply(text string) *ChatCompletionResponse {
	return &ChatCompletionResponse{Choices: []Choice{{Message: &ChatMessage{Role: RoleAssistant, Content: text}}}}
}

func TestGenerateSuccess(t *testing.T) {
	stub := &stubClient{resp: reply("  That sounds heavy. What helps you unwind?  ")}
	g := NewGenerator(stub, GeneratorConfig{}, testLogger(t))

	history := []domain.Message{
		{Text: "Hello! How are you feeling today?", Sender: domain.SenderTherapist},
		{Text: "Tired.", Sender: domain.SenderUser},
		{Text: "Tell me more.", Sender: domain.SenderTherapist},
	}
	text, err := g.Generate(context.Background(), history, "Work has been brutal")
	require.NoError(t, err)
	assert.Equal(t, "That sounds heavy. What helps you unwind?", text)

	req := stub.lastReq
	require.NotNil(t, req)
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, 300, *req.MaxTokens)
	assert.InDelta(t, 0.8, *req.Temperature, 1e-9)
	assert.InDelta(t, 0.9, *req.TopP, 1e-9)
	assert.InDelta(t, 0.3, *req.FrequencyPenalty, 1e-9)
	assert.InDelta(t, 0.2, *req.PresencePenalty, 1e-9)

	roles := make([]string, len(req.Messages))
	for i, m := range req.Messages {
		roles[i] = m.Role
	}
	assert.Equal(t, []string{RoleSystem, RoleAssistant, RoleUser, RoleAssistant, RoleUser}, roles)
	assert.Contains(t, req.Messages[0].Content, "(Messages: 3)")
	assert.Equal(t, "Work has been brutal", req.Messages[4].Content)
}

func TestGenerateFallbacks(t *testing.T) {
	tests := []struct {
		name string
		stub *stubClient
	}{
		{"client error", &stubClient{err: errors.New("connection refused")}},
		{"no choices", &stubClient{resp: &ChatCompletionResponse{}}},
		{"nil message", &stubClient{resp: &ChatCompletionResponse{Choices: []Choice{{}}}}},
		{"empty content", &stubClient{resp: reply("   ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.stub, GeneratorConfig{}, testLogger(t))
			text, err := g.Generate(context.Background(), nil, "hi")
			assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
			assert.Equal(t, FallbackReply, text)
		})
	}
}

func TestGenerateHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer slow":
			time.Sleep(200 * time.Millisecond)
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"late"}}]}`)
		case "Bearer empty":
			fmt.Fprint(w, `{"choices":[]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `oops`)
		}
	}))
	defer server.Close()

	for _, key := range []string{"slow", "empty", "broken"} {
		t.Run(key, func(t *testing.T) {
			client := NewClient(server.URL, key, time.Second)
			g := NewGenerator(client, GeneratorConfig{Timeout: 50 * time.Millisecond}, testLogger(t))

			text, err := g.Generate(context.Background(), nil, "hello")
			assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
			assert.Equal(t, FallbackReply, text)
		})
	}
}

func TestGenerateRateLimited(t *testing.T) {
	stub := &stubClient{resp: reply("ok")}
	g := NewGenerator(stub, GeneratorConfig{RatePerMinute: 1, Timeout: 50 * time.Millisecond}, testLogger(t))

	_, err := g.Generate(context.Background(), nil, "first")
	require.NoError(t, err)

	// The next token is a minute away, past the call deadline.
	text, err := g.Generate(context.Background(), nil, "second")
	assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	assert.Equal(t, FallbackReply, text)
}

func TestAvailableIsCached(t *testing.T) {
	stub := &stubClient{}
	g := NewGenerator(stub, GeneratorConfig{ValidateTTL: time.Hour}, testLogger(t))

	assert.True(t, g.Available(context.Background()))
	assert.True(t, g.Available(context.Background()))
	assert.Equal(t, int32(1), stub.listCalls.Load())

	stub.modelsErr = errors.New("401")
	assert.True(t, g.Available(context.Background()))

	g.Invalidate()
	assert.False(t, g.Available(context.Background()))
	assert.False(t, g.Available(context.Background()))
	assert.Equal(t, int32(2), stub.listCalls.Load())
}

func TestAvailableCancelledIsNotCached(t *testing.T) {
	stub := &stubClient{modelsErr: context.Canceled}
	g := NewGenerator(stub, GeneratorConfig{}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, g.Available(ctx))

	stub.modelsErr = nil
	assert.True(t, g.Available(context.Background()))
}
