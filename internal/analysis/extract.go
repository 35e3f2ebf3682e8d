// Package analysis extracts coarse emotional and topical signals from text.
//
// Detection is keyword based: lowercase the text and test for substring
// membership against fixed lists. Everything here is pure and deterministic.
package analysis

import (
	"regexp"
	"strings"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Emotion labels returned by IdentifyEmotion.
const (
	EmotionAnxious     = "anxious"
	EmotionSad         = "sad"
	EmotionAngry       = "angry"
	EmotionConfused    = "confused"
	EmotionOverwhelmed = "overwhelmed"
	EmotionLonely      = "lonely"
	EmotionHopeful     = "hopeful"
	EmotionGrateful    = "grateful"
	EmotionCurious     = "curious"
	EmotionIntense     = "intense"
	EmotionUncertain   = "uncertain"
	EmotionNeutral     = "neutral"
)

// Topic labels returned by ExtractTopics.
const (
	TopicWork          = "work"
	TopicRelationships = "relationships"
	TopicHealth        = "health"
	TopicMoney         = "money"
	TopicEducation     = "education"
)

// DefaultKeyPhrase is returned when no meaningful token survives filtering.
const DefaultKeyPhrase = "this situation"

type category struct {
	label    string
	keywords []string
}

// Order is priority: the first matching emotion wins.
var emotionCategories = []category{
	{EmotionAnxious, []string{"anxious", "worried", "nervous", "scared", "afraid", "panic", "stress"}},
	{EmotionSad, []string{"sad", "depressed", "down", "low", "blue", "unhappy", "miserable"}},
	{EmotionAngry, []string{"angry", "mad", "furious", "irritated", "frustrated", "annoyed"}},
	{EmotionConfused, []string{"confused", "lost", "uncertain", "unclear", "puzzled"}},
	{EmotionOverwhelmed, []string{"overwhelmed", "too much", "can't handle", "exhausted"}},
	{EmotionLonely, []string{"lonely", "alone", "isolated", "disconnected"}},
	{EmotionHopeful, []string{"hopeful", "optimistic", "positive", "better", "good"}},
	{EmotionGrateful, []string{"grateful", "thankful", "appreciate", "blessed"}},
}

var topicCategories = []category{
	{TopicWork, []string{"job", "work", "career", "boss", "colleague", "office"}},
	{TopicRelationships, []string{"relationship", "partner", "friend", "family", "love"}},
	{TopicHealth, []string{"health", "sick", "pain", "doctor", "medical"}},
	{TopicMoney, []string{"money", "financial", "debt", "income", "budget"}},
	{TopicEducation, []string{"school", "study", "exam", "university", "learning"}},
}

var emotionTypeCategories = []struct {
	emotion  domain.EmotionType
	keywords []string
}{
	{domain.EmotionAnxiety, []string{"anxious", "worried", "nervous", "stressed", "panic"}},
	{domain.EmotionDepression, []string{"sad", "depressed", "down", "hopeless", "empty"}},
	{domain.EmotionAnger, []string{"angry", "mad", "furious", "irritated", "frustrated"}},
	{domain.EmotionJoy, []string{"happy", "joyful", "excited", "elated", "cheerful"}},
	{domain.EmotionFear, []string{"scared", "afraid", "terrified", "frightened"}},
	{domain.EmotionCalm, []string{"calm", "peaceful", "relaxed", "serene"}},
}

var stopWords = map[string]struct{}{
	"i": {}, "am": {}, "is": {}, "are": {}, "was": {}, "were": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "that": {},
	"this": {}, "it": {}, "my": {}, "me": {}, "you": {}, "your": {},
}

var alphaOnly = regexp.MustCompile(`^[a-zA-Z]+$`)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IdentifyEmotion returns the coarse emotion label of text.
func IdentifyEmotion(text string) string {
	lower := strings.ToLower(text)
	for _, c := range emotionCategories {
		if containsAny(lower, c.keywords) {
			return c.label
		}
	}
	if strings.Contains(lower, "?") {
		return EmotionCurious
	}
	if strings.Contains(lower, "!") {
		return EmotionIntense
	}
	return EmotionUncertain
}

// ExtractTopics returns every topic with at least one keyword hit, in a fixed order.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	topics := []string{}
	for _, c := range topicCategories {
		if containsAny(lower, c.keywords) {
			topics = append(topics, c.label)
		}
	}
	return topics
}

// ExtractKeyPhrase joins up to three meaningful tokens of text.
// It never returns an empty string.
func ExtractKeyPhrase(text string) string {
	var words []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if !alphaOnly.MatchString(tok) {
			continue
		}
		words = append(words, tok)
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return DefaultKeyPhrase
	}
	return strings.Join(words, " ")
}

// DetectEmotionTypes tags text with every matching mood emotion type.
func DetectEmotionTypes(text string) []domain.EmotionType {
	lower := strings.ToLower(text)
	var out []domain.EmotionType
	for _, c := range emotionTypeCategories {
		if containsAny(lower, c.keywords) {
			out = append(out, c.emotion)
		}
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
