// Package llm provides the optional external text generator: an
// OpenAI-compatible API client and a Generator that wraps it with prompting,
// rate limiting, timeouts and a fallback reply.
package llm

import "context"

// LLMClient is the subset of the chat completions API the generator needs.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	// ListModels doubles as the availability probe.
	ListModels(ctx context.Context) ([]Model, error)
}

var _ LLMClient = (*Client)(nil)
