package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultModel is the model requested when none is configured.
const DefaultModel = "venice-uncensored"

// FallbackReply is returned whenever generation fails.
const FallbackReply = "I'm here to listen and support you. Could you tell me more about what's on your mind today?"

const availabilityKey = "available"

// Sampling parameters sent with every request.
var (
	maxTokens        = 300
	temperature      = 0.8
	topP             = 0.9
	frequencyPenalty = 0.3
	presencePenalty  = 0.2
)

// GeneratorConfig tunes a Generator.
type GeneratorConfig struct {
	Model         string
	Timeout       time.Duration
	RatePerMinute int
	ValidateTTL   time.Duration
}

// Generator produces therapist replies from an LLMClient.
type Generator struct {
	client  LLMClient
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	cache   *gocache.Cache
	logger  *zap.Logger
}

// NewGenerator wraps client. Zero config fields fall back to the defaults:
// model venice-uncensored, 15s timeout, no rate limit and a 10m validation TTL.
func NewGenerator(client LLMClient, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.ValidateTTL <= 0 {
		cfg.ValidateTTL = 10 * time.Minute
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60), cfg.RatePerMinute)
	}

	return &Generator{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: limiter,
		cache:   gocache.New(cfg.ValidateTTL, 2*cfg.ValidateTTL),
		logger:  logger,
	}
}

// SystemPrompt is the instruction message sent ahead of the history.
func SystemPrompt(historyLen int) string {
	return fmt.Sprintf(`You are a compassionate and professional AI therapist in an ongoing conversation (Messages: %d). Your role is to:
- Provide supportive, empathetic responses that are unique and varied
- Ask thoughtful, different questions to help users reflect and explore deeper
- Offer gentle guidance and diverse coping strategies
- Maintain appropriate therapeutic boundaries
- Never provide medical diagnoses or replace professional therapy
- Keep responses conversational, engaging, and never repetitive
- Focus on mental wellness and self-reflection
- Build upon previous conversation context to create meaningful dialogue

Always provide fresh, contextual responses that build upon the conversation history. Respond in a warm, understanding tone that encourages the user to explore their thoughts and feelings in new ways.`, historyLen)
}

// BuildRequest assembles the request: the system instruction, the history as
// role-tagged messages, then the current user message.
func (g *Generator) BuildRequest(history []domain.Message, userText string) *ChatCompletionRequest {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: SystemPrompt(len(history))})
	for _, m := range history {
		role := RoleAssistant
		if m.Sender == domain.SenderUser {
			role = RoleUser
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: userText})

	return &ChatCompletionRequest{
		Model:            g.model,
		Messages:         messages,
		MaxTokens:        &maxTokens,
		Temperature:      &temperature,
		TopP:             &topP,
		FrequencyPenalty: &frequencyPenalty,
		PresencePenalty:  &presencePenalty,
	}
}

// Generate asks the model for a reply to userText. On any failure it returns
// FallbackReply together with an error wrapping domain.ErrGeneratorUnavailable.
func (g *Generator) Generate(ctx context.Context, history []domain.Message, userText string) (string, error) {
	ctx, span := otel.Tracer("internal/adapter/llm/Generate").Start(ctx, "Generator.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", g.model), attribute.Int("llm.history", len(history)))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.generate(ctx, history, userText)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FallbackReply, fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
	}
	return text, nil
}

func (g *Generator) generate(ctx context.Context, history []domain.Message, userText string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, g.BuildRequest(history, userText))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", errors.New("no choices in response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	if resp.Usage != nil {
		g.logger.Debug("llm completion",
			zap.String("model", resp.Model),
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)
	}
	return text, nil
}

// Available reports whether the API key is accepted. Results are cached for
// the validation TTL.
func (g *Generator) Available(ctx context.Context) bool {
	if v, ok := g.cache.Get(availabilityKey); ok {
		return v.(bool)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.client.ListModels(callCtx)
	ok := err == nil
	if !ok {
		g.logger.Warn("llm key validation failed", zap.Error(err))
		if ctx.Err() != nil {
			// Caller gave up; do not remember the result.
			return false
		}
	}
	g.cache.SetDefault(availabilityKey, ok)
	return ok
}

// Invalidate drops the cached availability result.
func (g *Generator) Invalidate() {
	g.cache.Delete(availabilityKey)
}
