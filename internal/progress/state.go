// Package progress implements the session game state machine: objectives,
// mood tracking, scoring, experience, levels and achievements.
//
// State is an explicit value. The transition functions in this file mutate a
// *State and report what changed as a list of events; Engine wraps them with
// a clock and an id generator.
package progress

import (
	"time"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Scoring and reward constants.
const (
	MessageGoal          = 10
	MoodGoal             = 3
	DurationGoal         = int64(10 * time.Minute / time.Millisecond)
	DeepTalkerMessages   = 50
	ConsistentStreakDays = 7
	XPPerLevel           = 1000
	MaxDifficulty        = 10

	xpMessageGoal  = 50
	xpMoodGoal     = 30
	xpDurationGoal = 40
	xpAchievement  = 100

	scorePerMessage   = 5
	scorePerObjective = 100
	scorePerMoodStep  = 50
	scoreDuration     = 200
)

// State is the whole progress state of one user.
type State struct {
	Session *domain.SessionProgress `json:"session"`
	Stats   domain.PlayerStats      `json:"stats"`
}

// NewState returns the state of a new user with no live session.
func NewState() State {
	return State{Stats: NewPlayerStats()}
}

// NewPlayerStats returns level 1 stats with every achievement locked.
func NewPlayerStats() domain.PlayerStats {
	return domain.PlayerStats{
		Achievements: DefaultAchievements(),
		Level:        1,
	}
}

// DefaultAchievements returns the fixed achievement set, all locked.
func DefaultAchievements() []domain.Achievement {
	return []domain.Achievement{
		{ID: domain.AchievementFirstSession, Title: "First Steps", Description: "Complete your first therapy session", Icon: "🌱"},
		{ID: domain.AchievementMoodImprover, Title: "Mood Lifter", Description: "Improve your mood during a session", Icon: "😊"},
		{ID: domain.AchievementConsistentUser, Title: "Consistency Champion", Description: "Use the app for 7 days in a row", Icon: "🔥"},
		{ID: domain.AchievementDeepTalker, Title: "Deep Conversationalist", Description: "Send 50 messages in a single session", Icon: "💬"},
	}
}

// SessionObjectives returns the objective template set of a new session.
func SessionObjectives() []domain.GameObjective {
	return []domain.GameObjective{
		{ID: domain.ObjectiveMessageGoal, Title: "Express Yourself", Description: "Send at least 10 messages", MaxProgress: MessageGoal},
		{ID: domain.ObjectiveMoodTracking, Title: "Mood Awareness", Description: "Track your mood 3 times", MaxProgress: MoodGoal},
		{ID: domain.ObjectiveSessionDuration, Title: "Take Your Time", Description: "Spend at least 10 minutes in session", MaxProgress: DurationGoal},
	}
}

// Normalize repairs stats loaded from storage: missing achievements are added
// locked, and the level is made consistent with the experience.
func Normalize(stats domain.PlayerStats) domain.PlayerStats {
	stats = stats.Clone()
	for _, def := range DefaultAchievements() {
		if stats.Achievement(def.ID) == nil {
			stats.Achievements = append(stats.Achievements, def)
		}
	}
	if stats.Experience < 0 {
		stats.Experience = 0
	}
	stats.Level = max(stats.Level, stats.Experience/XPPerLevel+1)
	return stats
}

// StartSession opens a fresh session, replacing any live one.
func StartSession(st *State, id string, now time.Time) {
	st.Session = &domain.SessionProgress{
		SessionID:   id,
		StartTime:   now,
		MoodEntries: []domain.MoodEntry{},
		Objectives:  SessionObjectives(),
	}
}

// AddMessage records one conversation turn.
func AddMessage(st *State, now time.Time) ([]domain.ProgressEvent, error) {
	if st.Session == nil {
		return nil, domain.ErrSessionNotActive
	}
	var events []domain.ProgressEvent

	st.Session.MessageCount++
	st.Stats.TotalMessages++
	events = advance(st, st.Session.Objective(domain.ObjectiveMessageGoal), 1, xpMessageGoal, events)

	if st.Session.MessageCount >= DeepTalkerMessages {
		events = unlock(st, domain.AchievementDeepTalker, now, events)
	}
	return events, nil
}

// TrackMood appends a mood entry to the live session.
func TrackMood(st *State, now time.Time, mood domain.MoodState, emotions []domain.EmotionType, intensity int) ([]domain.ProgressEvent, error) {
	if st.Session == nil {
		return nil, domain.ErrSessionNotActive
	}
	if !mood.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var events []domain.ProgressEvent

	st.Session.MoodEntries = append(st.Session.MoodEntries, domain.MoodEntry{
		Timestamp: now,
		Mood:      mood,
		Emotions:  append([]domain.EmotionType{}, emotions...),
		Intensity: min(max(intensity, 1), 10),
	})
	events = advance(st, st.Session.Objective(domain.ObjectiveMoodTracking), 1, xpMoodGoal, events)

	entries := st.Session.MoodEntries
	if n := len(entries); n >= 2 && mood.Value() > entries[n-2].Mood.Value() {
		events = unlock(st, domain.AchievementMoodImprover, now, events)
	}
	return events, nil
}

// EndSession finalizes and returns the live session, or nil if none is live.
func EndSession(st *State, now time.Time) (*domain.SessionProgress, []domain.ProgressEvent) {
	s := st.Session
	if s == nil {
		return nil, nil
	}
	var events []domain.ProgressEvent

	end := now
	s.EndTime = &end
	elapsed := now.Sub(s.StartTime).Milliseconds()

	if obj := s.Objective(domain.ObjectiveSessionDuration); obj != nil && !obj.Completed {
		events = advance(st, obj, max(elapsed, 0)-obj.Progress, xpDurationGoal, events)
	}

	s.Score = score(s, elapsed)

	st.Stats.TotalSessions++
	updateAverageMood(st)
	if st.Stats.TotalSessions == 1 {
		events = unlock(st, domain.AchievementFirstSession, now, events)
	}
	events = updateStreak(st, now, events)

	st.Session = nil
	return s, events
}

// advance moves an objective forward by delta, clamped at its max. Completing
// it awards xp once.
func advance(st *State, obj *domain.GameObjective, delta, xp int64, events []domain.ProgressEvent) []domain.ProgressEvent {
	if obj == nil || obj.Completed || delta <= 0 {
		return events
	}
	obj.Progress = min(obj.Progress+delta, obj.MaxProgress)
	if obj.Progress >= obj.MaxProgress {
		obj.Completed = true
		events = append(events, domain.ProgressEvent{Type: domain.ProgressEventObjectiveCompleted, ID: obj.ID})
		events = addExperience(st, int(xp), events)
	}
	return events
}

func unlock(st *State, id string, now time.Time, events []domain.ProgressEvent) []domain.ProgressEvent {
	a := st.Stats.Achievement(id)
	if a == nil || a.Unlocked {
		return events
	}
	at := now
	a.Unlocked = true
	a.UnlockedAt = &at
	events = append(events, domain.ProgressEvent{Type: domain.ProgressEventAchievementUnlocked, ID: id})
	return addExperience(st, xpAchievement, events)
}

func addExperience(st *State, amount int, events []domain.ProgressEvent) []domain.ProgressEvent {
	st.Stats.Experience += amount
	events = append(events, domain.ProgressEvent{Type: domain.ProgressEventXPGained, Amount: amount})

	if level := st.Stats.Experience/XPPerLevel + 1; level > st.Stats.Level {
		st.Stats.Level = level
		events = append(events, domain.ProgressEvent{Type: domain.ProgressEventLevelUp, Level: level})
	}
	return events
}

func score(s *domain.SessionProgress, elapsedMs int64) int {
	total := s.MessageCount*scorePerMessage + s.CompletedObjectives()*scorePerObjective

	if n := len(s.MoodEntries); n >= 2 {
		if diff := s.MoodEntries[n-1].Mood.Value() - s.MoodEntries[0].Mood.Value(); diff > 0 {
			total += diff * scorePerMoodStep
		}
	}
	if elapsedMs >= DurationGoal {
		total += scoreDuration
	}
	return max(total, 0)
}

// updateAverageMood folds the session's mean mood into the running average.
// Sessions without mood entries leave it unchanged.
func updateAverageMood(st *State) {
	entries := st.Session.MoodEntries
	if len(entries) == 0 {
		return
	}
	sum := 0
	for _, e := range entries {
		sum += e.Mood.Value()
	}
	sessionAvg := float64(sum) / float64(len(entries))
	n := float64(st.Stats.TotalSessions)
	st.Stats.AverageMood = (st.Stats.AverageMood*(n-1) + sessionAvg) / n
}

func updateStreak(st *State, now time.Time, events []domain.ProgressEvent) []domain.ProgressEvent {
	today := day(now)
	switch {
	case st.Stats.LastSessionAt == nil:
		st.Stats.StreakDays = 1
	case day(*st.Stats.LastSessionAt).Equal(today):
		st.Stats.StreakDays = max(st.Stats.StreakDays, 1)
	case day(*st.Stats.LastSessionAt).AddDate(0, 0, 1).Equal(today):
		st.Stats.StreakDays++
	default:
		st.Stats.StreakDays = 1
	}
	last := now
	st.Stats.LastSessionAt = &last

	if st.Stats.StreakDays >= ConsistentStreakDays {
		events = unlock(st, domain.AchievementConsistentUser, now, events)
	}
	return events
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Percent is the share of completed objectives of the live session, 0..100.
func Percent(st *State) float64 {
	if st.Session == nil || len(st.Session.Objectives) == 0 {
		return 0
	}
	return float64(st.Session.CompletedObjectives()) / float64(len(st.Session.Objectives)) * 100
}

// Difficulty scales with level up to MaxDifficulty.
func Difficulty(st *State) int {
	return min(st.Stats.Level, MaxDifficulty)
}
