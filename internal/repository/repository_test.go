package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/repository"
	"github.com/xiaot623/gogo/companion/tests/helpers"
)

var testNow = time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func session(id string, start time.Time) domain.ConversationSession {
	return domain.ConversationSession{
		ID:          id,
		StartTime:   start,
		SessionType: domain.SessionTypeTherapy,
		Messages: []domain.Message{
			{ID: "msg_1", Text: "Hello! How are you feeling today?", Sender: domain.SenderTherapist, Timestamp: start, Technique: domain.TechniqueActiveListening},
			{ID: "msg_2", Text: "Tired, honestly.", Sender: domain.SenderUser, Timestamp: start.Add(time.Minute)},
		},
	}
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t)

	assert.Empty(t, repo.ConversationHistory(ctx))
	assert.NotNil(t, repo.ConversationHistory(ctx))
	assert.Equal(t, domain.DefaultUserPreferences(), repo.UserPreferences(ctx))
	assert.Equal(t, domain.DefaultPrivacySettings(), repo.PrivacySettings(ctx))
	assert.Nil(t, repo.CurrentSession(ctx))

	stats := repo.PlayerStats(ctx)
	assert.Equal(t, 1, stats.Level)
	assert.Empty(t, stats.Achievements)
}

func TestConversationHistoryRoundTripsTimes(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t, repository.WithClock(clock))

	start := testNow.Add(-2 * time.Hour).In(time.FixedZone("CET", 3600))
	s := session("session_a", start)
	end := start.Add(20 * time.Minute)
	s.EndTime = &end
	s.Mood = domain.MoodPositive
	require.True(t, repo.SaveConversationSession(ctx, s))

	history := repo.ConversationHistory(ctx)
	require.Len(t, history, 1)
	got := history[0]
	assert.True(t, got.StartTime.Equal(start))
	require.NotNil(t, got.EndTime)
	assert.True(t, got.EndTime.Equal(end))
	assert.True(t, got.Messages[1].Timestamp.Equal(start.Add(time.Minute)))
	assert.Equal(t, domain.TechniqueActiveListening, got.Messages[0].Technique)
	assert.Equal(t, domain.MoodPositive, got.Mood)
}

func TestSaveConversationSessionUpsertsAndAppliesRetention(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t, repository.WithClock(clock))

	require.True(t, repo.SaveConversationSession(ctx, session("old", testNow.AddDate(0, 0, -40))))
	require.True(t, repo.SaveConversationSession(ctx, session("recent", testNow.AddDate(0, 0, -3))))
	assert.Len(t, repo.ConversationHistory(ctx), 1)

	updated := session("recent", testNow.AddDate(0, 0, -3))
	updated.Notes = "follow up on sleep"
	require.True(t, repo.SaveConversationSession(ctx, updated))

	history := repo.ConversationHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "follow up on sleep", history[0].Notes)

	// Shrinking the window drops the recent session on the next save.
	days := 1
	require.True(t, repo.SavePrivacySettings(ctx, domain.PrivacyPatch{RetentionDays: &days}))
	require.True(t, repo.SaveConversationSession(ctx, session("today", testNow.Add(-time.Hour))))

	history = repo.ConversationHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "today", history[0].ID)
}

func TestDeleteAndClearHistory(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t, repository.WithClock(clock))
	require.True(t, repo.SaveConversationSession(ctx, session("a", testNow.Add(-time.Hour))))
	require.True(t, repo.SaveConversationSession(ctx, session("b", testNow.Add(-time.Hour))))

	require.True(t, repo.DeleteConversationSession(ctx, "a"))
	history := repo.ConversationHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "b", history[0].ID)

	require.True(t, repo.ClearConversationHistory(ctx))
	assert.Empty(t, repo.ConversationHistory(ctx))
}

func TestPreferencesMerge(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t)

	p := domain.PersonalityAnalytical
	off := false
	require.True(t, repo.SaveUserPreferences(ctx, domain.PreferencesPatch{TherapistPersonality: &p, SoundEnabled: &off}))

	prefs := repo.UserPreferences(ctx)
	assert.Equal(t, domain.PersonalityAnalytical, prefs.TherapistPersonality)
	assert.False(t, prefs.SoundEnabled)
	assert.Equal(t, "supportive", prefs.ResponseStyle)
	assert.True(t, prefs.ReminderEnabled)

	require.True(t, repo.ResetUserPreferences(ctx))
	assert.Equal(t, domain.DefaultUserPreferences(), repo.UserPreferences(ctx))
}

func TestCurrentSessionAndStats(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t)

	require.True(t, repo.SaveCurrentSession(ctx, session("live", testNow)))
	cur := repo.CurrentSession(ctx)
	require.NotNil(t, cur)
	assert.Equal(t, "live", cur.ID)
	require.True(t, repo.ClearCurrentSession(ctx))
	assert.Nil(t, repo.CurrentSession(ctx))

	at := testNow
	stats := domain.PlayerStats{
		TotalSessions: 3,
		Level:         2,
		Experience:    1100,
		AverageMood:   3.5,
		LastSessionAt: &at,
		Achievements:  []domain.Achievement{{ID: domain.AchievementFirstSession, Unlocked: true, UnlockedAt: &at}},
	}
	require.True(t, repo.SavePlayerStats(ctx, stats))
	got := repo.PlayerStats(ctx)
	assert.Equal(t, 3, got.TotalSessions)
	assert.InDelta(t, 3.5, got.AverageMood, 1e-9)
	require.NotNil(t, got.LastSessionAt)
	assert.True(t, got.LastSessionAt.Equal(at))
	assert.True(t, got.Achievements[0].UnlockedAt.Equal(at))
}

func TestClearAllDataAndStorageUsage(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t, repository.WithClock(clock))

	assert.Equal(t, 0, repo.StorageUsage(ctx).Used)

	require.True(t, repo.SaveConversationSession(ctx, session("a", testNow.Add(-time.Hour))))
	require.True(t, repo.ResetUserPreferences(ctx))

	usage := repo.StorageUsage(ctx)
	assert.Greater(t, usage.Used, 0)
	assert.Equal(t, repository.StorageQuota, usage.Available)
	assert.InDelta(t, float64(usage.Used)/float64(usage.Available)*100, usage.Percentage, 1e-9)

	require.True(t, repo.ClearAllData(ctx))
	assert.Equal(t, 0, repo.StorageUsage(ctx).Used)
	assert.Empty(t, repo.ConversationHistory(ctx))
}

type brokenStore struct{ repository.KVStore }

var errDisk = errors.New("disk on fire")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDisk }
func (brokenStore) Set(context.Context, string, []byte) error        { return errDisk }
func (brokenStore) Remove(context.Context, string) error             { return errDisk }

func TestPersistenceFailuresDegrade(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	repo := repository.New(brokenStore{}, zap.New(core))

	assert.Equal(t, domain.DefaultUserPreferences(), repo.UserPreferences(ctx))
	assert.Empty(t, repo.ConversationHistory(ctx))
	assert.False(t, repo.SavePlayerStats(ctx, domain.PlayerStats{}))
	assert.False(t, repo.ClearAllData(ctx))
	assert.Equal(t, domain.StorageUsage{}, repo.StorageUsage(ctx))

	require.NotZero(t, logs.Len())
	require.Equal(t, 1, logs.FilterMessage("storage usage read failed").Len())
	for _, entry := range logs.All() {
		if err, ok := entry.ContextMap()["error"].(string); ok {
			assert.Contains(t, err, "persistence failure")
		}
	}
}

func TestMalformedValueFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, repository.KeyPrivacySettings, []byte("{not json")))

	repo := repository.New(kv, zap.NewNop())
	assert.Equal(t, domain.DefaultPrivacySettings(), repo.PrivacySettings(ctx))
}

func TestExportJSON(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t, repository.WithClock(clock))
	require.True(t, repo.SaveConversationSession(ctx, session("a", testNow.Add(-time.Hour))))

	out, err := repo.Export(ctx, repository.ExportJSON)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "{\n  \"conversationHistory\""))

	var doc repository.ExportDocument
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "1.0.0", doc.Version)
	assert.Equal(t, "2026-05-10T14:30:00.000Z", doc.ExportDate)
	assert.Len(t, doc.ConversationHistory, 1)
	assert.Equal(t, domain.DefaultPrivacySettings(), doc.PrivacySettings)
}

func TestExportCSV(t *testing.T) {
	start := time.Date(2026, 5, 9, 8, 0, 0, 0, time.UTC)
	end := start.Add(15*time.Minute + 250*time.Millisecond)
	a := session("session_a", start)
	a.EndTime = &end
	a.Mood = domain.MoodNegative
	b := session("session_b", start.Add(time.Hour))
	b.SessionType = domain.SessionTypeCasual

	out, err := repository.ConversationsCSV([]domain.ConversationSession{a, b})
	require.NoError(t, err)
	assert.Equal(t,
		"Session ID,Start Time,End Time,Message Count,Session Type,Mood\n"+
			"session_a,2026-05-09T08:00:00.000Z,2026-05-09T08:15:00.250Z,2,therapy,negative\n"+
			"session_b,2026-05-09T09:00:00.000Z,,2,casual,\n",
		string(out))
}

func TestExportText(t *testing.T) {
	start := time.Date(2026, 5, 9, 8, 0, 0, 0, time.UTC)
	s := session("session_a", start)
	s.Mood = domain.MoodNeutral

	want := "Therapy Chat Conversations Export\n" +
		"=====================================\n\n" +
		"Session 1 (session_a)\n" +
		"Date: 2026-05-09\n" +
		"Type: therapy\n" +
		"Mood: neutral\n" +
		"\nConversation:\n" +
		strings.Repeat("-", 40) + "\n" +
		"[08:00:00] Therapist: Hello! How are you feeling today?\n" +
		"[08:01:00] You: Tired, honestly.\n" +
		"\n" + strings.Repeat("=", 50) + "\n\n"
	assert.Equal(t, want, repository.ConversationsText([]domain.ConversationSession{s}))
}

func TestExportGuards(t *testing.T) {
	ctx := context.Background()
	repo := helpers.NewTestRepository(t)

	_, err := repo.Export(ctx, "xml")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	off := false
	require.True(t, repo.SavePrivacySettings(ctx, domain.PrivacyPatch{ExportEnabled: &off}))
	_, err = repo.Export(ctx, repository.ExportCSV)
	assert.ErrorIs(t, err, domain.ErrExportDisabled)
}
