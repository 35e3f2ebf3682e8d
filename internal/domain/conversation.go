package domain

import (
	"slices"
	"time"
)

// Message is one entry of a session's history.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Technique Technique `json:"technique,omitempty"`
}

// ConversationContext is the per-session state of the therapist engine.
type ConversationContext struct {
	MessageCount    int       `json:"messageCount"`
	DominantEmotion string    `json:"dominantEmotion"`
	KeyTopics       []string  `json:"keyTopics"`
	LastTechnique   Technique `json:"lastTechnique"`
}

// Clone returns a deep copy.
func (c ConversationContext) Clone() ConversationContext {
	c.KeyTopics = slices.Clone(c.KeyTopics)
	if c.KeyTopics == nil {
		c.KeyTopics = []string{}
	}
	return c
}

// TherapistConfig selects the personality and its allowed techniques.
type TherapistConfig struct {
	Personality           Personality   `json:"personality"`
	TechniquePool         []Technique   `json:"techniquePool"`
	BaseResponseDelayHint time.Duration `json:"baseResponseDelayHint"`
}

// Clone returns a deep copy.
func (c TherapistConfig) Clone() TherapistConfig {
	c.TechniquePool = slices.Clone(c.TechniquePool)
	return c
}

// Allows reports whether t is in the technique pool.
func (c TherapistConfig) Allows(t Technique) bool {
	return slices.Contains(c.TechniquePool, t)
}

// TherapistResponse is one generated reply.
type TherapistResponse struct {
	Text        string      `json:"text"`
	Technique   Technique   `json:"technique"`
	Personality Personality `json:"personality"`
	Confidence  float64     `json:"confidence"`
}

// Turn is the outcome of processing one user message.
type Turn struct {
	Response         TherapistResponse `json:"response"`
	UserMessage      Message           `json:"userMessage"`
	TherapistMessage Message           `json:"therapistMessage"`
	Emotion          string            `json:"emotion"`
	Topics           []string          `json:"topics"`
	DelayMs          int64             `json:"delayMs"`
	TypingDelayMs    int64             `json:"typingDelayMs"`
	Generated        bool              `json:"generated"`
	Events           []ProgressEvent   `json:"events,omitempty"`
}
