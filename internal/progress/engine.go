package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Engine drives a State with a clock and a session id generator. It is not
// safe for concurrent use.
type Engine struct {
	state State
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an engine for a new user.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state: NewState(),
		now:   time.Now,
		newID: func() string { return "session_" + uuid.New().String()[:8] },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession opens a session and returns its id.
func (e *Engine) StartSession() string {
	id := e.newID()
	StartSession(&e.state, id, e.now())
	return id
}

// AddMessage records one conversation turn.
func (e *Engine) AddMessage() ([]domain.ProgressEvent, error) {
	return AddMessage(&e.state, e.now())
}

// TrackMood records a mood check-in.
func (e *Engine) TrackMood(mood domain.MoodState, emotions []domain.EmotionType, intensity int) ([]domain.ProgressEvent, error) {
	return TrackMood(&e.state, e.now(), mood, emotions, intensity)
}

// EndSession finalizes the live session. It returns nil if none is live.
func (e *Engine) EndSession() (*domain.SessionProgress, []domain.ProgressEvent) {
	return EndSession(&e.state, e.now())
}

// Active reports whether a session is live.
func (e *Engine) Active() bool {
	return e.state.Session != nil
}

// CurrentSession returns a copy of the live session, or nil.
func (e *Engine) CurrentSession() *domain.SessionProgress {
	return e.state.Session.Clone()
}

// Stats returns a copy of the player stats.
func (e *Engine) Stats() domain.PlayerStats {
	return e.state.Stats.Clone()
}

// Progress is the completion percentage of the live session.
func (e *Engine) Progress() float64 {
	return Percent(&e.state)
}

// DifficultyLevel is min(level, 10).
func (e *Engine) DifficultyLevel() int {
	return Difficulty(&e.state)
}

// Restore replaces the player stats, typically with stats loaded from storage.
func (e *Engine) Restore(stats domain.PlayerStats) {
	e.state.Stats = Normalize(stats)
}

// ResetStats discards all player stats. The live session is kept.
func (e *Engine) ResetStats() {
	e.state.Stats = NewPlayerStats()
}
