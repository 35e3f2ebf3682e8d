package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/analysis"
	"github.com/xiaot623/gogo/companion/internal/domain"
)

// TrackMood records a mood check-in on the live session. With no emotions
// given, the ones detected in the latest user message are used. Without a
// live session it does nothing and returns nil.
func (s *Service) TrackMood(ctx context.Context, mood domain.MoodState, emotions []domain.EmotionType, intensity int) (*domain.SessionProgress, []domain.ProgressEvent, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	defer s.gate.Release(1)

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, nil, nil
	}
	if len(emotions) == 0 {
		emotions = s.lastUserEmotionsLocked()
	}
	events, err := s.progress.TrackMood(mood, emotions, intensity)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	s.lastMood = mood
	current := s.progress.CurrentSession()
	stats := s.progress.Stats()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.autosave(ctx, snapshot)
	s.repo.SavePlayerStats(ctx, stats)

	s.log.Logger(ctx).Info("mood tracked",
		zap.String("session_id", current.SessionID),
		zap.String("mood", string(mood)),
		zap.Int("intensity", intensity),
	)
	s.publish(EventMoodTracked, map[string]interface{}{
		"session": current.Clone(),
		"events":  slices.Clone(events),
	})
	return current, events, nil
}

func (s *Service) lastUserEmotionsLocked() []domain.EmotionType {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Sender == domain.SenderUser {
			return analysis.DetectEmotionTypes(s.history[i].Text)
		}
	}
	return nil
}
