package therapist

import (
	"slices"
	"strings"

	"github.com/xiaot623/gogo/companion/internal/analysis"
	"github.com/xiaot623/gogo/companion/internal/domain"
)

var (
	feelingMarkers   = []string{"feel", "emotion"}
	cognitiveMarkers = []string{"think", "believe", "should", "must"}

	distressEmotions = []string{
		analysis.EmotionAnxious, analysis.EmotionSad, analysis.EmotionAngry,
		analysis.EmotionOverwhelmed, analysis.EmotionLonely,
	}
	positiveEmotions = []string{analysis.EmotionHopeful, analysis.EmotionGrateful}
)

const longMessageWords = 20

// preference is a rule outcome: primary with probability weight, else secondary.
// An empty secondary means the rule has a single candidate.
type preference struct {
	primary   domain.Technique
	secondary domain.Technique
	weight    float64
}

// resolve filters the preference through the pool. ok is false when no
// candidate is allowed, in which case the next rule is consulted.
func (p preference) resolve(pool []domain.Technique, rng Rand) (domain.Technique, bool) {
	primaryOK := slices.Contains(pool, p.primary)
	secondaryOK := p.secondary != "" && slices.Contains(pool, p.secondary)
	switch {
	case primaryOK && secondaryOK:
		if rng.Float64() < p.weight {
			return p.primary, true
		}
		return p.secondary, true
	case primaryOK:
		return p.primary, true
	case secondaryOK:
		return p.secondary, true
	}
	return "", false
}

func hasAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// rules returns the preferences of every rule that matches, in precedence order.
func rules(message string, ctx domain.ConversationContext, pool []domain.Technique) []preference {
	lower := strings.ToLower(message)
	emotion := analysis.IdentifyEmotion(message)

	var out []preference
	if strings.Contains(message, "?") {
		out = append(out, preference{domain.TechniqueReflection, domain.TechniqueQuestioning, 0.5})
	}
	if hasAny(lower, feelingMarkers) || slices.Contains(distressEmotions, emotion) {
		out = append(out, preference{domain.TechniqueValidation, domain.TechniqueActiveListening, 0.7})
	}
	if hasAny(lower, cognitiveMarkers) {
		out = append(out, preference{domain.TechniqueReframing, domain.TechniqueQuestioning, 0.5})
	}
	if analysis.WordCount(message) > longMessageWords {
		out = append(out, preference{primary: domain.TechniqueSummarizing})
	}
	if slices.Contains(positiveEmotions, emotion) {
		out = append(out, preference{domain.TechniqueActiveListening, domain.TechniqueValidation, 0.5})
	}
	if ctx.MessageCount%4 == 0 && slices.Contains(pool, domain.TechniqueSummarizing) {
		out = append(out, preference{primary: domain.TechniqueSummarizing})
	}
	return out
}

// SelectTechnique picks the technique for the next reply.
//
// Rules are preferences filtered by pool membership: the first matching rule
// with an allowed candidate wins. When no rule applies, a technique other than
// the last one is drawn uniformly from the pool. The result is always a member
// of pool, which must not be empty.
func SelectTechnique(message string, ctx domain.ConversationContext, pool []domain.Technique, rng Rand) domain.Technique {
	for _, pref := range rules(message, ctx, pool) {
		if t, ok := pref.resolve(pool, rng); ok {
			return t
		}
	}

	candidates := make([]domain.Technique, 0, len(pool))
	for _, t := range pool {
		if t != ctx.LastTechnique {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return pool[0]
	}
	return candidates[rng.IntN(len(candidates))]
}
