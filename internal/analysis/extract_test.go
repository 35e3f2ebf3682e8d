package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

func TestIdentifyEmotion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"anxious keyword", "I feel anxious about my job", EmotionAnxious},
		{"priority order", "I am sad and worried", EmotionAnxious},
		{"multi word keyword", "I can't handle this", EmotionOverwhelmed},
		{"case insensitive", "So LONELY tonight", EmotionLonely},
		{"grateful", "Thankful for the chat", EmotionGrateful},
		{"question fallback", "Why is this happening?", EmotionCurious},
		{"exclamation fallback", "Stop it!", EmotionIntense},
		{"no signal", "Just an ordinary day", EmotionUncertain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifyEmotion(tt.text))
		})
	}
}

func TestExtractTopics(t *testing.T) {
	assert.Equal(t, []string{TopicWork}, ExtractTopics("I feel anxious about my job"))
	assert.Equal(t, []string{TopicWork, TopicRelationships}, ExtractTopics("My boss and my family"))
	assert.Equal(t, []string{TopicMoney, TopicEducation}, ExtractTopics("Exam fees and DEBT"))
	assert.Empty(t, ExtractTopics("hello there"))
	assert.NotNil(t, ExtractTopics("hello there"))
}

func TestExtractKeyPhrase(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I feel anxious about my job", "feel anxious about"},
		{"Why is this happening?", "why"},
		{"it is ok", DefaultKeyPhrase},
		{"", DefaultKeyPhrase},
		{"Deadlines pile up constantly every week", "deadlines pile constantly"},
		{"I've been 100% tired", "been tired"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeyPhrase(tt.text))
		})
	}
}

func TestExtractKeyPhraseNeverEmpty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")
		if ExtractKeyPhrase(text) == "" {
			rt.Fatalf("empty key phrase for %q", text)
		}
	})
}

func TestDetectEmotionTypes(t *testing.T) {
	assert.Equal(t,
		[]domain.EmotionType{domain.EmotionAnxiety, domain.EmotionFear},
		DetectEmotionTypes("I'm scared and stressed"))
	assert.Empty(t, DetectEmotionTypes("nothing to report"))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount(" one  two\tthree "))
}
