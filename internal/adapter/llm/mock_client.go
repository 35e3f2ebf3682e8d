package llm

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

const mockEchoLimit = 100

// MockClient is an offline LLMClient. It reflects the latest user message
// back as a question, which is enough to drive the generator in local runs.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ LLMClient = (*MockClient)(nil)

func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := mirrorReply(lastUserContent(req.Messages))
	now := time.Now()

	prompt := 0
	for _, msg := range req.Messages {
		prompt += utf8.RuneCountInString(msg.Content) / 4
	}
	completion := utf8.RuneCountInString(reply) / 4

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("companion-mock-%d", now.UnixNano()),
		Object:  "chat.completion",
		Created: now.Unix(),
		Model:   req.Model,
		Choices: []Choice{{
			Message:      &ChatMessage{Role: RoleAssistant, Content: reply},
			FinishReason: "stop",
		}},
		Usage: &Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion},
	}, nil
}

func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{{ID: DefaultModel, Object: "model", Created: time.Now().Unix(), OwnedBy: "companion-mock"}}, nil
}

func lastUserContent(msgs []ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

func mirrorReply(text string) string {
	if text == "" {
		return "I'm here with you. What's on your mind today?"
	}
	if utf8.RuneCountInString(text) > mockEchoLimit {
		text = string([]rune(text)[:mockEchoLimit]) + "..."
	}
	return fmt.Sprintf("You said %q. What feels most important about that right now?", text)
}
