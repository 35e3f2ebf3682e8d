package llm

import (
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	// EnvCompanionMode is the environment variable name for mode selection.
	EnvCompanionMode = "COMPANION_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client based on the COMPANION_MODE environment variable.
// If COMPANION_MODE=MOCK, returns a MockClient; otherwise returns a real Client.
func NewLLMClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) LLMClient {
	if os.Getenv(EnvCompanionMode) == ModeMock {
		logger.Info("mock mode detected, using mock LLM client", zap.String("env", EnvCompanionMode))
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, timeout)
}
