package therapist

import (
	"strings"

	"github.com/xiaot623/gogo/companion/internal/analysis"
	"github.com/xiaot623/gogo/companion/internal/domain"
)

func render(template, phrase, emotion string) string {
	return strings.NewReplacer(slotPhrase, phrase, slotEmotion, emotion).Replace(template)
}

// Compose renders one reply: a technique template filled from message,
// followed by a personality modifier.
func Compose(technique domain.Technique, message string, personality domain.Personality, rng Rand) string {
	templates := techniqueTemplates[technique]
	modifiers := personalityModifiers[personality]
	phrase := analysis.ExtractKeyPhrase(message)
	emotion := analysis.IdentifyEmotion(message)

	var base string
	if len(templates) > 0 {
		base = render(templates[rng.IntN(len(templates))], phrase, emotion)
	}
	if len(modifiers) == 0 {
		return base
	}
	return base + " " + modifiers[rng.IntN(len(modifiers))]
}

// Variants enumerates every reply Compose can produce for the arguments.
func Variants(technique domain.Technique, message string, personality domain.Personality) []string {
	phrase := analysis.ExtractKeyPhrase(message)
	emotion := analysis.IdentifyEmotion(message)

	var out []string
	for _, tmpl := range techniqueTemplates[technique] {
		base := render(tmpl, phrase, emotion)
		for _, mod := range personalityModifiers[personality] {
			out = append(out, base+" "+mod)
		}
	}
	return out
}
