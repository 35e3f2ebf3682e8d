package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/therapist"
)

// StartSession opens a session and greets the user. A session that is still
// live is ended first.
func (s *Service) StartSession(ctx context.Context) (string, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.gate.Release(1)

	if s.IsSessionActive() {
		s.endSession(ctx)
	}

	s.mu.Lock()
	id := s.progress.StartSession()
	s.therapist.ResetContext()
	s.active = true
	s.sessionID = id
	s.startTime = s.now()
	s.lastMood = ""
	greeting := s.message(therapist.GreetingText, domain.SenderTherapist, domain.TechniqueActiveListening)
	s.history = []domain.Message{greeting}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.autosave(ctx, snapshot)
	s.log.Logger(ctx).Info("session started", zap.String("session_id", id))
	s.publish(EventSessionStarted, map[string]interface{}{
		"session_id": id,
		"greeting":   greeting,
	})
	return id, nil
}

// EndSession finalizes the live session, archives its conversation and
// returns its final progress. It returns nil if no session was live.
func (s *Service) EndSession(ctx context.Context) (*domain.SessionProgress, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.gate.Release(1)
	return s.endSession(ctx), nil
}

func (s *Service) endSession(ctx context.Context) *domain.SessionProgress {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	final, events := s.progress.EndSession()
	record := s.snapshotLocked()
	record.EndTime = final.EndTime
	stats := s.progress.Stats()
	s.active = false
	s.sessionID = ""
	s.mu.Unlock()

	if s.repo.PrivacySettings(ctx).DataCollection {
		s.repo.SaveConversationSession(ctx, record)
	}
	s.repo.ClearCurrentSession(ctx)
	s.repo.SavePlayerStats(ctx, stats)

	s.log.Logger(ctx).Info("session ended",
		zap.String("session_id", final.SessionID),
		zap.Int("score", final.Score),
		zap.Int("messages", final.MessageCount),
	)
	s.publish(EventSessionEnded, map[string]interface{}{
		"session": final.Clone(),
		"events":  slices.Clone(events),
	})
	return final
}

// autosave stores the live session unless data collection is off.
func (s *Service) autosave(ctx context.Context, snapshot domain.ConversationSession) {
	if !s.repo.PrivacySettings(ctx).DataCollection {
		return
	}
	s.repo.SaveCurrentSession(ctx, snapshot)
}
