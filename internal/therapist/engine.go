package therapist

import (
	"slices"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Engine owns a therapist configuration and the conversation context of the
// active session. It is not safe for concurrent use; callers serialize access.
type Engine struct {
	config  domain.TherapistConfig
	context domain.ConversationContext
	rng     Rand
}

// NewEngine creates an engine with a fresh conversation context.
func NewEngine(cfg domain.TherapistConfig, rng Rand) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{
		config:  cfg.Clone(),
		context: InitialContext(),
		rng:     rng,
	}, nil
}

// GenerateResponse produces the reply to one user message and advances the context.
func (e *Engine) GenerateResponse(message string) domain.TherapistResponse {
	e.context.MessageCount++

	technique := SelectTechnique(message, e.context, e.config.TechniquePool, e.rng)
	text := Compose(technique, message, e.config.Personality, e.rng)
	e.context.LastTechnique = technique

	return domain.TherapistResponse{
		Text:        text,
		Technique:   technique,
		Personality: e.config.Personality,
		Confidence:  0.7 + e.rng.Float64()*0.3,
	}
}

// UpdateContext records the dominant emotion and merges topics into the key topics.
func (e *Engine) UpdateContext(emotion string, topics []string) {
	e.context.DominantEmotion = emotion
	for _, topic := range topics {
		if !slices.Contains(e.context.KeyTopics, topic) {
			e.context.KeyTopics = append(e.context.KeyTopics, topic)
		}
	}
}

// ChangePersonality switches to the default configuration of p. The
// conversation context is kept.
func (e *Engine) ChangePersonality(p domain.Personality) error {
	cfg, err := ConfigFor(p)
	if err != nil {
		return err
	}
	e.config = cfg
	return nil
}

// SetConfig replaces the configuration after validating it.
func (e *Engine) SetConfig(cfg domain.TherapistConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	e.config = cfg.Clone()
	return nil
}

// ResetContext discards the conversation context, as at session start.
func (e *Engine) ResetContext() {
	e.context = InitialContext()
}

// Context returns a copy of the conversation context.
func (e *Engine) Context() domain.ConversationContext {
	return e.context.Clone()
}

// Config returns a copy of the configuration.
func (e *Engine) Config() domain.TherapistConfig {
	return e.config.Clone()
}
