// Package domain defines the core domain models for the companion.
package domain

// Technique is a therapeutic conversational strategy.
type Technique string

const (
	TechniqueActiveListening Technique = "active_listening"
	TechniqueReflection      Technique = "reflection"
	TechniqueReframing       Technique = "reframing"
	TechniqueValidation      Technique = "validation"
	TechniqueQuestioning     Technique = "questioning"
	TechniqueSummarizing     Technique = "summarizing"
)

// Techniques lists every known technique in declaration order.
var Techniques = []Technique{
	TechniqueActiveListening,
	TechniqueReflection,
	TechniqueReframing,
	TechniqueValidation,
	TechniqueQuestioning,
	TechniqueSummarizing,
}

// Valid reports whether t is a known technique.
func (t Technique) Valid() bool {
	for _, known := range Techniques {
		if t == known {
			return true
		}
	}
	return false
}

// Personality is a named response-style configuration.
type Personality string

const (
	PersonalityEmpathetic  Personality = "empathetic"
	PersonalityAnalytical  Personality = "analytical"
	PersonalitySupportive  Personality = "supportive"
	PersonalityChallenging Personality = "challenging"
)

// Personalities lists every known personality.
var Personalities = []Personality{
	PersonalityEmpathetic,
	PersonalityAnalytical,
	PersonalitySupportive,
	PersonalityChallenging,
}

// Valid reports whether p is a known personality.
func (p Personality) Valid() bool {
	for _, known := range Personalities {
		if p == known {
			return true
		}
	}
	return false
}

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderTherapist Sender = "therapist"
)

// MoodState is a 5-point ordinal mood scale.
type MoodState string

const (
	MoodVeryNegative MoodState = "very_negative"
	MoodNegative     MoodState = "negative"
	MoodNeutral      MoodState = "neutral"
	MoodPositive     MoodState = "positive"
	MoodVeryPositive MoodState = "very_positive"
)

// Value returns the ordinal of the mood (1..5), or 0 for an unknown mood.
func (m MoodState) Value() int {
	switch m {
	case MoodVeryNegative:
		return 1
	case MoodNegative:
		return 2
	case MoodNeutral:
		return 3
	case MoodPositive:
		return 4
	case MoodVeryPositive:
		return 5
	}
	return 0
}

// Valid reports whether m is on the scale.
func (m MoodState) Valid() bool {
	return m.Value() > 0
}

// EmotionType tags a mood entry.
type EmotionType string

const (
	EmotionAnxiety    EmotionType = "anxiety"
	EmotionDepression EmotionType = "depression"
	EmotionAnger      EmotionType = "anger"
	EmotionJoy        EmotionType = "joy"
	EmotionFear       EmotionType = "fear"
	EmotionSadness    EmotionType = "sadness"
	EmotionExcitement EmotionType = "excitement"
	EmotionCalm       EmotionType = "calm"
)

// Valid reports whether e is a known emotion type.
func (e EmotionType) Valid() bool {
	switch e {
	case EmotionAnxiety, EmotionDepression, EmotionAnger, EmotionJoy,
		EmotionFear, EmotionSadness, EmotionExcitement, EmotionCalm:
		return true
	}
	return false
}

// SessionType classifies an archived conversation.
type SessionType string

const (
	SessionTypeTherapy SessionType = "therapy"
	SessionTypeCasual  SessionType = "casual"
	SessionTypeCrisis  SessionType = "crisis"
)

// Objective ids.
const (
	ObjectiveMessageGoal     = "message_goal"
	ObjectiveMoodTracking    = "mood_tracking"
	ObjectiveSessionDuration = "session_duration"
)

// Achievement ids.
const (
	AchievementFirstSession   = "first_session"
	AchievementMoodImprover   = "mood_improver"
	AchievementConsistentUser = "consistent_user"
	AchievementDeepTalker     = "deep_talker"
)

// ProgressEventType labels something the progress engine observed.
type ProgressEventType string

const (
	ProgressEventXPGained            ProgressEventType = "xp_gained"
	ProgressEventObjectiveCompleted  ProgressEventType = "objective_completed"
	ProgressEventAchievementUnlocked ProgressEventType = "achievement_unlocked"
	ProgressEventLevelUp             ProgressEventType = "level_up"
)
