package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, "venice-uncensored", body["model"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"venice-uncensored","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/v1/", "secret", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    DefaultModel,
		Messages: []ChatMessage{{Role: RoleUser, Content: "hello"}},
		Stream:   true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hi", resp.Choices[0].Message.Content)
	assert.Equal(t, 3, resp.Usage.TotalTokens)
}

func TestClientCreateChatCompletionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"authentication_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: DefaultModel})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM API error [401]: bad key (type: authentication_error)")
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": [`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: DefaultModel})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal response")
}

func TestClientListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		fmt.Fprint(w, `{"object":"list","data":[{"id":"venice-uncensored","object":"model","created":1,"owned_by":"venice"}]}`)
	}))
	defer server.Close()

	models, err := NewClient(server.URL, "k", time.Second).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "venice-uncensored", models[0].ID)
}

func TestClientListModelsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "k", time.Second).ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[403]")
}

func TestClientSetHeadersWithoutKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	NewClient("http://example", "", time.Second).setHeaders(req)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	resp, err := m.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model: DefaultModel,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "be kind"},
			{Role: RoleUser, Content: "my week was long"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Choices[0].Message.Content, `"my week was long"`)

	models, err := m.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, models[0].ID)
}

func TestNewLLMClientMockMode(t *testing.T) {
	t.Setenv(EnvCompanionMode, ModeMock)
	_, ok := NewLLMClient("http://example", "", time.Second, testLogger(t)).(*MockClient)
	assert.True(t, ok)

	t.Setenv(EnvCompanionMode, "")
	_, ok = NewLLMClient("http://example", "", time.Second, testLogger(t)).(*Client)
	assert.True(t, ok)
}
