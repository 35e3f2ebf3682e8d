package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Logical storage keys.
const (
	KeyConversationHistory = "therapist_conversation_history"
	KeyUserPreferences     = "therapist_user_preferences"
	KeySessionData         = "therapist_session_data"
	KeyPlayerStats         = "therapist_player_stats"
	KeyPrivacySettings     = "therapist_privacy_settings"
)

// LogicalKeys lists every logical key owned by the repository.
var LogicalKeys = []string{
	KeyConversationHistory,
	KeyUserPreferences,
	KeySessionData,
	KeyPlayerStats,
	KeyPrivacySettings,
}

// StorageQuota is the assumed capacity reported by StorageUsage.
const StorageQuota = 5 * 1024 * 1024

// Repository is the typed view over a KVStore. Reads never fail: a missing
// or unreadable value yields the default. Writes report success as a bool and
// log failures.
type Repository struct {
	kv     KVStore
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides time.Now, used for retention and export timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository over kv.
func New(kv KVStore, logger *zap.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Repository{kv: kv, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	return r.kv.Close()
}

func getItem[T any](ctx context.Context, r *Repository, key string, def T) T {
	raw, found, err := r.kv.Get(ctx, key)
	if err != nil {
		r.logger.Warn("storage read failed", zap.String("key", key), zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)))
		return def
	}
	if !found || len(raw) == 0 {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		r.logger.Warn("storage value malformed", zap.String("key", key), zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)))
		return def
	}
	return v
}

func (r *Repository) setItem(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("storage encode failed", zap.String("key", key), zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)))
		return false
	}
	if err := r.kv.Set(ctx, key, raw); err != nil {
		r.logger.Warn("storage write failed", zap.String("key", key), zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)))
		return false
	}
	return true
}

func (r *Repository) removeItem(ctx context.Context, key string) bool {
	if err := r.kv.Remove(ctx, key); err != nil {
		r.logger.Warn("storage remove failed", zap.String("key", key), zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)))
		return false
	}
	return true
}

// ConversationHistory returns the archived sessions in storage order.
func (r *Repository) ConversationHistory(ctx context.Context) []domain.ConversationSession {
	return getItem(ctx, r, KeyConversationHistory, []domain.ConversationSession{})
}

// SaveConversationSession upserts session by id and drops sessions older
// than the privacy retention window.
func (r *Repository) SaveConversationSession(ctx context.Context, session domain.ConversationSession) bool {
	history := r.ConversationHistory(ctx)
	if i := slices.IndexFunc(history, func(s domain.ConversationSession) bool { return s.ID == session.ID }); i >= 0 {
		history[i] = session
	} else {
		history = append(history, session)
	}

	cutoff := r.now().AddDate(0, 0, -r.PrivacySettings(ctx).RetentionDays)
	history = slices.DeleteFunc(history, func(s domain.ConversationSession) bool {
		return !s.StartTime.After(cutoff)
	})
	return r.setItem(ctx, KeyConversationHistory, history)
}

// DeleteConversationSession removes one archived session.
func (r *Repository) DeleteConversationSession(ctx context.Context, id string) bool {
	history := slices.DeleteFunc(r.ConversationHistory(ctx), func(s domain.ConversationSession) bool {
		return s.ID == id
	})
	return r.setItem(ctx, KeyConversationHistory, history)
}

// ClearConversationHistory removes every archived session.
func (r *Repository) ClearConversationHistory(ctx context.Context) bool {
	return r.removeItem(ctx, KeyConversationHistory)
}

// UserPreferences returns the stored preferences or the defaults.
func (r *Repository) UserPreferences(ctx context.Context) domain.UserPreferences {
	return getItem(ctx, r, KeyUserPreferences, domain.DefaultUserPreferences())
}

// SaveUserPreferences merges patch into the stored preferences.
func (r *Repository) SaveUserPreferences(ctx context.Context, patch domain.PreferencesPatch) bool {
	return r.setItem(ctx, KeyUserPreferences, patch.Apply(r.UserPreferences(ctx)))
}

// ResetUserPreferences stores the defaults.
func (r *Repository) ResetUserPreferences(ctx context.Context) bool {
	return r.setItem(ctx, KeyUserPreferences, domain.DefaultUserPreferences())
}

// CurrentSession returns the autosaved live session, or nil.
func (r *Repository) CurrentSession(ctx context.Context) *domain.ConversationSession {
	return getItem[*domain.ConversationSession](ctx, r, KeySessionData, nil)
}

func (r *Repository) SaveCurrentSession(ctx context.Context, session domain.ConversationSession) bool {
	return r.setItem(ctx, KeySessionData, session)
}

func (r *Repository) ClearCurrentSession(ctx context.Context) bool {
	return r.removeItem(ctx, KeySessionData)
}

// PlayerStats returns the stored stats, or level 1 stats without achievements.
func (r *Repository) PlayerStats(ctx context.Context) domain.PlayerStats {
	return getItem(ctx, r, KeyPlayerStats, domain.PlayerStats{Level: 1, Achievements: []domain.Achievement{}})
}

func (r *Repository) SavePlayerStats(ctx context.Context, stats domain.PlayerStats) bool {
	return r.setItem(ctx, KeyPlayerStats, stats)
}

// PrivacySettings returns the stored settings or the defaults.
func (r *Repository) PrivacySettings(ctx context.Context) domain.PrivacySettings {
	return getItem(ctx, r, KeyPrivacySettings, domain.DefaultPrivacySettings())
}

// SavePrivacySettings merges patch into the stored settings.
func (r *Repository) SavePrivacySettings(ctx context.Context, patch domain.PrivacyPatch) bool {
	return r.setItem(ctx, KeyPrivacySettings, patch.Apply(r.PrivacySettings(ctx)))
}

// ClearAllData removes every logical key. It reports false if any removal failed.
func (r *Repository) ClearAllData(ctx context.Context) bool {
	ok := true
	for _, key := range LogicalKeys {
		if !r.removeItem(ctx, key) {
			ok = false
		}
	}
	return ok
}

// StorageUsage sums the stored value sizes of the logical keys.
func (r *Repository) StorageUsage(ctx context.Context) domain.StorageUsage {
	used := 0
	for _, key := range LogicalKeys {
		raw, found, err := r.kv.Get(ctx, key)
		if err != nil {
			r.logger.Warn("storage usage read failed", zap.String("key", key), zap.Error(fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)))
			return domain.StorageUsage{}
		}
		if found {
			used += len(raw)
		}
	}
	return domain.StorageUsage{
		Used:       used,
		Available:  StorageQuota,
		Percentage: float64(used) / StorageQuota * 100,
	}
}
