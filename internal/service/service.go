// Package service coordinates a conversation: it owns the session lifecycle
// and message history, and routes every turn through extraction, the
// therapist engine, the optional generator, the delay model and the progress
// engine.
package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/logger"
	"github.com/xiaot623/gogo/companion/internal/progress"
	"github.com/xiaot623/gogo/companion/internal/repository"
	"github.com/xiaot623/gogo/companion/internal/therapist"
)

// Generator produces replies from an external model.
type Generator interface {
	Generate(ctx context.Context, history []domain.Message, userText string) (string, error)
	Available(ctx context.Context) bool
}

// Policy validates therapist configurations.
type Policy interface {
	Validate(ctx context.Context, cfg domain.TherapistConfig) error
}

// Delayer paces replies.
type Delayer interface {
	SimulateDelay(ctx context.Context, userText, responseText string) (time.Duration, error)
	TypingIndicatorDelay(userText, responseText string) time.Duration
}

// Notifier receives live events.
type Notifier interface {
	Publish(event Event)
}

type Service struct {
	// gate admits one mutating operation at a time, including its waits.
	gate *semaphore.Weighted
	// mu guards the fields below for readers.
	mu sync.RWMutex

	therapist *therapist.Engine
	progress  *progress.Engine
	delay     Delayer
	repo      *repository.Repository
	generator Generator
	policy    Policy
	notifier  Notifier
	log       *logger.LogMiddleware
	now       func() time.Time
	newID     func() string

	active    bool
	sessionID string
	startTime time.Time
	history   []domain.Message
	lastMood  domain.MoodState
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator wires an external text generator.
func WithGenerator(g Generator) Option { return func(s *Service) { s.generator = g } }

// WithPolicy wires a configuration policy checked on personality changes.
func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

// WithNotifier wires a live event sink.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithMessageIDs overrides message id generation.
func WithMessageIDs(fn func() string) Option { return func(s *Service) { s.newID = fn } }

func New(t *therapist.Engine, p *progress.Engine, d Delayer, repo *repository.Repository, log *logger.LogMiddleware, opts ...Option) *Service {
	if log == nil {
		log = logger.Wrap(nil)
	}
	s := &Service{
		gate:      semaphore.NewWeighted(1),
		therapist: t,
		progress:  p,
		delay:     d,
		repo:      repo,
		log:       log,
		now:       time.Now,
		newID:     func() string { return "msg_" + uuid.New().String()[:8] },
		history:   []domain.Message{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads persisted player stats and the preferred personality. An
// autosaved session left over from a previous run is archived and cleared.
func (s *Service) Restore(ctx context.Context) error {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.gate.Release(1)
	log := s.log.Logger(ctx)

	stats := s.repo.PlayerStats(ctx)
	prefs := s.repo.UserPreferences(ctx)

	var cfg *domain.TherapistConfig
	if p := prefs.TherapistPersonality; p != "" && p != s.therapist.Config().Personality {
		c, err := s.checkedConfig(ctx, p)
		if err != nil {
			log.Warn("ignoring stored personality", zap.String("personality", string(p)), zap.Error(err))
		} else {
			cfg = &c
		}
	}

	s.mu.Lock()
	s.progress.Restore(stats)
	if cfg != nil {
		_ = s.therapist.SetConfig(*cfg)
	}
	s.mu.Unlock()

	if stale := s.repo.CurrentSession(ctx); stale != nil {
		if s.repo.PrivacySettings(ctx).DataCollection {
			s.repo.SaveConversationSession(ctx, *stale)
		}
		s.repo.ClearCurrentSession(ctx)
		log.Info("archived unfinished session", zap.String("session_id", stale.ID))
	}
	return nil
}

func (s *Service) checkedConfig(ctx context.Context, p domain.Personality) (domain.TherapistConfig, error) {
	cfg, err := therapist.ConfigFor(p)
	if err != nil {
		return domain.TherapistConfig{}, err
	}
	if s.policy != nil {
		if err := s.policy.Validate(ctx, cfg); err != nil {
			return domain.TherapistConfig{}, err
		}
	}
	return cfg, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}

func (s *Service) message(text string, sender domain.Sender, technique domain.Technique) domain.Message {
	return domain.Message{
		ID:        s.newID(),
		Text:      text,
		Sender:    sender,
		Timestamp: s.now(),
		Technique: technique,
	}
}

// snapshotLocked builds the autosave record of the live session. Callers hold mu.
func (s *Service) snapshotLocked() domain.ConversationSession {
	return domain.ConversationSession{
		ID:          s.sessionID,
		Messages:    slices.Clone(s.history),
		StartTime:   s.startTime,
		SessionType: domain.SessionTypeTherapy,
		Mood:        s.lastMood,
	}
}

// IsSessionActive reports whether a session is live.
func (s *Service) IsSessionActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SessionID returns the live session id, or "".
func (s *Service) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// MessageHistory returns a copy of the current history.
func (s *Service) MessageHistory() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// CurrentSession returns a copy of the live session progress, or nil.
func (s *Service) CurrentSession() *domain.SessionProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.CurrentSession()
}

func (s *Service) PlayerStats() domain.PlayerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.Stats()
}

func (s *Service) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.Progress()
}

func (s *Service) DifficultyLevel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.DifficultyLevel()
}

func (s *Service) ConversationContext() domain.ConversationContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.therapist.Context()
}

func (s *Service) TherapistConfig() domain.TherapistConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.therapist.Config()
}
