package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/repository"
)

// ChangePersonality switches the therapist persona and remembers the choice.
// Conversation context is kept.
func (s *Service) ChangePersonality(ctx context.Context, p domain.Personality) (domain.TherapistConfig, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return domain.TherapistConfig{}, err
	}
	defer s.gate.Release(1)

	cfg, err := s.checkedConfig(ctx, p)
	if err != nil {
		return domain.TherapistConfig{}, err
	}
	s.mu.Lock()
	err = s.therapist.SetConfig(cfg)
	s.mu.Unlock()
	if err != nil {
		return domain.TherapistConfig{}, err
	}
	if !s.repo.SaveUserPreferences(ctx, domain.PreferencesPatch{TherapistPersonality: &p}) {
		s.log.Logger(ctx).Warn("personality not persisted", zap.String("personality", string(p)))
	}
	s.log.Logger(ctx).Info("personality changed", zap.String("personality", string(p)))
	return cfg.Clone(), nil
}

func (s *Service) Preferences(ctx context.Context) domain.UserPreferences {
	return s.repo.UserPreferences(ctx)
}

// UpdatePreferences merges patch into the stored preferences. A personality
// in the patch is applied to the therapist as well.
func (s *Service) UpdatePreferences(ctx context.Context, patch domain.PreferencesPatch) (domain.UserPreferences, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return domain.UserPreferences{}, err
	}
	defer s.gate.Release(1)

	if patch.SessionLength != nil && *patch.SessionLength <= 0 {
		return domain.UserPreferences{}, invalid("sessionLength must be positive")
	}
	if p := patch.TherapistPersonality; p != nil {
		cfg, err := s.checkedConfig(ctx, *p)
		if err != nil {
			return domain.UserPreferences{}, err
		}
		s.mu.Lock()
		err = s.therapist.SetConfig(cfg)
		s.mu.Unlock()
		if err != nil {
			return domain.UserPreferences{}, err
		}
	}
	if !s.repo.SaveUserPreferences(ctx, patch) {
		return domain.UserPreferences{}, domain.ErrPersistenceFailure
	}
	return s.repo.UserPreferences(ctx), nil
}

// ResetPreferences restores the default preferences and persona.
func (s *Service) ResetPreferences(ctx context.Context) (domain.UserPreferences, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return domain.UserPreferences{}, err
	}
	defer s.gate.Release(1)

	if !s.repo.ResetUserPreferences(ctx) {
		return domain.UserPreferences{}, domain.ErrPersistenceFailure
	}
	prefs := s.repo.UserPreferences(ctx)
	if cfg, err := s.checkedConfig(ctx, prefs.TherapistPersonality); err == nil {
		s.mu.Lock()
		_ = s.therapist.SetConfig(cfg)
		s.mu.Unlock()
	}
	return prefs, nil
}

func (s *Service) Privacy(ctx context.Context) domain.PrivacySettings {
	return s.repo.PrivacySettings(ctx)
}

// UpdatePrivacy merges patch into the stored privacy settings.
func (s *Service) UpdatePrivacy(ctx context.Context, patch domain.PrivacyPatch) (domain.PrivacySettings, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return domain.PrivacySettings{}, err
	}
	defer s.gate.Release(1)

	if patch.RetentionDays != nil && *patch.RetentionDays <= 0 {
		return domain.PrivacySettings{}, invalid("retentionDays must be positive")
	}
	if !s.repo.SavePrivacySettings(ctx, patch) {
		return domain.PrivacySettings{}, domain.ErrPersistenceFailure
	}
	settings := s.repo.PrivacySettings(ctx)
	if !settings.DataCollection {
		s.repo.ClearCurrentSession(ctx)
	}
	return settings, nil
}

// History returns the archived conversations, oldest first.
func (s *Service) History(ctx context.Context) []domain.ConversationSession {
	return s.repo.ConversationHistory(ctx)
}

// DeleteHistorySession removes one archived conversation.
func (s *Service) DeleteHistorySession(ctx context.Context, id string) error {
	for _, c := range s.repo.ConversationHistory(ctx) {
		if c.ID == id {
			if !s.repo.DeleteConversationSession(ctx, id) {
				return domain.ErrPersistenceFailure
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Service) ClearHistory(ctx context.Context) error {
	if !s.repo.ClearConversationHistory(ctx) {
		return domain.ErrPersistenceFailure
	}
	return nil
}

// Export renders the stored data in the requested format.
func (s *Service) Export(ctx context.Context, format repository.ExportFormat) ([]byte, error) {
	return s.repo.Export(ctx, format)
}

func (s *Service) StorageUsage(ctx context.Context) domain.StorageUsage {
	return s.repo.StorageUsage(ctx)
}

// ClearAllData wipes every stored key and resets player stats. A live
// session keeps running in memory.
func (s *Service) ClearAllData(ctx context.Context) error {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.gate.Release(1)

	if !s.repo.ClearAllData(ctx) {
		return domain.ErrPersistenceFailure
	}
	s.mu.Lock()
	s.progress.ResetStats()
	s.mu.Unlock()
	s.log.Logger(ctx).Info("all stored data cleared")
	return nil
}
