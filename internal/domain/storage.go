package domain

import "time"

// ConversationSession is an archived or autosaved conversation.
type ConversationSession struct {
	ID          string      `json:"id"`
	Messages    []Message   `json:"messages"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime,omitempty"`
	SessionType SessionType `json:"sessionType"`
	Mood        MoodState   `json:"mood,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// UserPreferences holds user-facing settings.
type UserPreferences struct {
	TherapistPersonality Personality `json:"therapistPersonality"`
	ResponseStyle        string      `json:"responseStyle"`
	SessionLength        int         `json:"sessionLength"`
	ReminderEnabled      bool        `json:"reminderEnabled"`
	SoundEnabled         bool        `json:"soundEnabled"`
	NotificationsEnabled bool        `json:"notificationsEnabled"`
	Language             string      `json:"language"`
	Theme                string      `json:"theme"`
}

// DefaultUserPreferences returns the preferences of a fresh install.
func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		TherapistPersonality: PersonalityEmpathetic,
		ResponseStyle:        "supportive",
		SessionLength:        30,
		ReminderEnabled:      true,
		SoundEnabled:         true,
		NotificationsEnabled: true,
		Language:             "en",
		Theme:                "light",
	}
}

// PrivacySettings controls collection, retention and export.
type PrivacySettings struct {
	DataCollection      bool `json:"dataCollection"`
	Analytics           bool `json:"analytics"`
	CrashReporting      bool `json:"crashReporting"`
	PersonalizedContent bool `json:"personalizedContent"`
	ExportEnabled       bool `json:"exportEnabled"`
	RetentionDays       int  `json:"retentionDays"`
}

// DefaultPrivacySettings returns the privacy settings of a fresh install.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		DataCollection:      true,
		Analytics:           false,
		CrashReporting:      true,
		PersonalizedContent: true,
		ExportEnabled:       true,
		RetentionDays:       30,
	}
}

// StorageUsage reports the bytes held by the persistence collaborator.
type StorageUsage struct {
	Used       int     `json:"used"`
	Available  int     `json:"available"`
	Percentage float64 `json:"percentage"`
}

// PreferencesPatch is a partial update of UserPreferences. Nil fields are kept.
type PreferencesPatch struct {
	TherapistPersonality *Personality `json:"therapistPersonality,omitempty"`
	ResponseStyle        *string      `json:"responseStyle,omitempty"`
	SessionLength        *int         `json:"sessionLength,omitempty"`
	ReminderEnabled      *bool        `json:"reminderEnabled,omitempty"`
	SoundEnabled         *bool        `json:"soundEnabled,omitempty"`
	NotificationsEnabled *bool        `json:"notificationsEnabled,omitempty"`
	Language             *string      `json:"language,omitempty"`
	Theme                *string      `json:"theme,omitempty"`
}

// Apply returns p with the patch applied.
func (patch PreferencesPatch) Apply(p UserPreferences) UserPreferences {
	setIf(&p.TherapistPersonality, patch.TherapistPersonality)
	setIf(&p.ResponseStyle, patch.ResponseStyle)
	setIf(&p.SessionLength, patch.SessionLength)
	setIf(&p.ReminderEnabled, patch.ReminderEnabled)
	setIf(&p.SoundEnabled, patch.SoundEnabled)
	setIf(&p.NotificationsEnabled, patch.NotificationsEnabled)
	setIf(&p.Language, patch.Language)
	setIf(&p.Theme, patch.Theme)
	return p
}

// PrivacyPatch is a partial update of PrivacySettings. Nil fields are kept.
type PrivacyPatch struct {
	DataCollection      *bool `json:"dataCollection,omitempty"`
	Analytics           *bool `json:"analytics,omitempty"`
	CrashReporting      *bool `json:"crashReporting,omitempty"`
	PersonalizedContent *bool `json:"personalizedContent,omitempty"`
	ExportEnabled       *bool `json:"exportEnabled,omitempty"`
	RetentionDays       *int  `json:"retentionDays,omitempty"`
}

// Apply returns s with the patch applied.
func (patch PrivacyPatch) Apply(s PrivacySettings) PrivacySettings {
	setIf(&s.DataCollection, patch.DataCollection)
	setIf(&s.Analytics, patch.Analytics)
	setIf(&s.CrashReporting, patch.CrashReporting)
	setIf(&s.PersonalizedContent, patch.PersonalizedContent)
	setIf(&s.ExportEnabled, patch.ExportEnabled)
	setIf(&s.RetentionDays, patch.RetentionDays)
	return s
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
