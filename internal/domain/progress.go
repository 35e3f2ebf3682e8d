package domain

import (
	"slices"
	"time"
)

// MoodEntry is one mood check-in.
type MoodEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Mood      MoodState     `json:"mood"`
	Emotions  []EmotionType `json:"emotions"`
	Intensity int           `json:"intensity"`
}

// GameObjective is a session-scoped progress goal.
type GameObjective struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Progress    int64  `json:"progress"`
	MaxProgress int64  `json:"maxProgress"`
}

// SessionProgress tracks the game state of one session.
type SessionProgress struct {
	SessionID    string          `json:"sessionId"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
	MessageCount int             `json:"messageCount"`
	MoodEntries  []MoodEntry     `json:"moodEntries"`
	Score        int             `json:"score"`
	Objectives   []GameObjective `json:"objectives"`
}

// Objective returns the objective with the given id.
func (s *SessionProgress) Objective(id string) *GameObjective {
	for i := range s.Objectives {
		if s.Objectives[i].ID == id {
			return &s.Objectives[i]
		}
	}
	return nil
}

// CompletedObjectives counts the completed objectives.
func (s *SessionProgress) CompletedObjectives() int {
	n := 0
	for _, o := range s.Objectives {
		if o.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *SessionProgress) Clone() *SessionProgress {
	if s == nil {
		return nil
	}
	out := *s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	out.MoodEntries = make([]MoodEntry, len(s.MoodEntries))
	for i, e := range s.MoodEntries {
		e.Emotions = slices.Clone(e.Emotions)
		out.MoodEntries[i] = e
	}
	out.Objectives = slices.Clone(s.Objectives)
	return &out
}

// Achievement is a persistent one-time milestone.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
	Icon        string     `json:"icon"`
}

// PlayerStats is the per-user state that outlives sessions.
type PlayerStats struct {
	TotalSessions int           `json:"totalSessions"`
	TotalMessages int           `json:"totalMessages"`
	AverageMood   float64       `json:"averageMood"`
	StreakDays    int           `json:"streakDays"`
	LastSessionAt *time.Time    `json:"lastSessionAt,omitempty"`
	Achievements  []Achievement `json:"achievements"`
	Level         int           `json:"level"`
	Experience    int           `json:"experience"`
}

// Achievement returns the achievement with the given id. The result aliases
// p.Achievements, so callers holding a Clone can mutate it safely.
func (p PlayerStats) Achievement(id string) *Achievement {
	for i := range p.Achievements {
		if p.Achievements[i].ID == id {
			return &p.Achievements[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p PlayerStats) Clone() PlayerStats {
	if p.LastSessionAt != nil {
		last := *p.LastSessionAt
		p.LastSessionAt = &last
	}
	achievements := make([]Achievement, len(p.Achievements))
	for i, a := range p.Achievements {
		if a.UnlockedAt != nil {
			at := *a.UnlockedAt
			a.UnlockedAt = &at
		}
		achievements[i] = a
	}
	p.Achievements = achievements
	return p
}

// ProgressEvent describes one observable progress change.
type ProgressEvent struct {
	Type   ProgressEventType `json:"type"`
	ID     string            `json:"id,omitempty"`
	Amount int               `json:"amount,omitempty"`
	Level  int               `json:"level,omitempty"`
}
