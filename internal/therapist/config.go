// Package therapist selects therapeutic techniques and composes replies.
package therapist

import (
	"fmt"
	"time"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Rand is the randomness the engine consumes. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

var personalityPools = map[domain.Personality][]domain.Technique{
	domain.PersonalityEmpathetic:  {domain.TechniqueActiveListening, domain.TechniqueValidation, domain.TechniqueReflection},
	domain.PersonalityAnalytical:  {domain.TechniqueQuestioning, domain.TechniqueReframing, domain.TechniqueSummarizing},
	domain.PersonalitySupportive:  {domain.TechniqueValidation, domain.TechniqueActiveListening, domain.TechniqueSummarizing},
	domain.PersonalityChallenging: {domain.TechniqueQuestioning, domain.TechniqueReframing, domain.TechniqueActiveListening},
}

var personalityDelayHints = map[domain.Personality]time.Duration{
	domain.PersonalityEmpathetic:  2000 * time.Millisecond,
	domain.PersonalityAnalytical:  3000 * time.Millisecond,
	domain.PersonalitySupportive:  1500 * time.Millisecond,
	domain.PersonalityChallenging: 2500 * time.Millisecond,
}

// ConfigFor returns the default configuration of a personality.
func ConfigFor(p domain.Personality) (domain.TherapistConfig, error) {
	pool, ok := personalityPools[p]
	if !ok {
		return domain.TherapistConfig{}, fmt.Errorf("%w: unknown personality %q", domain.ErrInvalidConfiguration, p)
	}
	return domain.TherapistConfig{
		Personality:           p,
		TechniquePool:         append([]domain.Technique(nil), pool...),
		BaseResponseDelayHint: personalityDelayHints[p],
	}, nil
}

// ValidateConfig checks a configuration without consulting external policy.
func ValidateConfig(cfg domain.TherapistConfig) error {
	if !cfg.Personality.Valid() {
		return fmt.Errorf("%w: unknown personality %q", domain.ErrInvalidConfiguration, cfg.Personality)
	}
	if len(cfg.TechniquePool) == 0 {
		return fmt.Errorf("%w: technique pool is empty", domain.ErrInvalidConfiguration)
	}
	seen := make(map[domain.Technique]bool, len(cfg.TechniquePool))
	for _, t := range cfg.TechniquePool {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown technique %q", domain.ErrInvalidConfiguration, t)
		}
		if seen[t] {
			return fmt.Errorf("%w: duplicate technique %q", domain.ErrInvalidConfiguration, t)
		}
		seen[t] = true
	}
	return nil
}

// InitialContext is the context of a session before any response.
func InitialContext() domain.ConversationContext {
	return domain.ConversationContext{
		DominantEmotion: "neutral",
		KeyTopics:       []string{},
		LastTechnique:   domain.TechniqueActiveListening,
	}
}
