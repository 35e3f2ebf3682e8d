package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// ExportFormat selects an export projection.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportText ExportFormat = "text"
)

// ExportVersion is written into full JSON exports.
const ExportVersion = "1.0.0"

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ExportDocument is the full state export.
type ExportDocument struct {
	ConversationHistory []domain.ConversationSession `json:"conversationHistory"`
	UserPreferences     domain.UserPreferences       `json:"userPreferences"`
	PlayerStats         domain.PlayerStats           `json:"playerStats"`
	PrivacySettings     domain.PrivacySettings       `json:"privacySettings"`
	ExportDate          string                       `json:"exportDate"`
	Version             string                       `json:"version"`
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Export renders the stored data in the given format. It fails with
// domain.ErrExportDisabled when the privacy settings forbid exports.
func (r *Repository) Export(ctx context.Context, format ExportFormat) ([]byte, error) {
	if !r.PrivacySettings(ctx).ExportEnabled {
		return nil, domain.ErrExportDisabled
	}
	switch format {
	case ExportJSON:
		return r.exportJSON(ctx)
	case ExportCSV:
		return ConversationsCSV(r.ConversationHistory(ctx))
	case ExportText:
		return []byte(ConversationsText(r.ConversationHistory(ctx))), nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
}

func (r *Repository) exportJSON(ctx context.Context) ([]byte, error) {
	doc := ExportDocument{
		ConversationHistory: r.ConversationHistory(ctx),
		UserPreferences:     r.UserPreferences(ctx),
		PlayerStats:         r.PlayerStats(ctx),
		PrivacySettings:     r.PrivacySettings(ctx),
		ExportDate:          r.now().UTC().Format(isoMillis),
		Version:             ExportVersion,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ConversationsCSV writes one summary row per session.
func ConversationsCSV(history []domain.ConversationSession) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Session ID", "Start Time", "End Time", "Message Count", "Session Type", "Mood"}); err != nil {
		return nil, err
	}
	for _, s := range history {
		end := ""
		if s.EndTime != nil {
			end = s.EndTime.UTC().Format(isoMillis)
		}
		row := []string{
			s.ID,
			s.StartTime.UTC().Format(isoMillis),
			end,
			strconv.Itoa(len(s.Messages)),
			string(s.SessionType),
			string(s.Mood),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ConversationsText renders a human-readable transcript of every session.
func ConversationsText(history []domain.ConversationSession) string {
	var b strings.Builder
	b.WriteString("Therapy Chat Conversations Export\n")
	b.WriteString("=====================================\n\n")

	for i, s := range history {
		fmt.Fprintf(&b, "Session %d (%s)\n", i+1, s.ID)
		fmt.Fprintf(&b, "Date: %s\n", s.StartTime.Format(time.DateOnly))
		fmt.Fprintf(&b, "Type: %s\n", s.SessionType)
		if s.Mood != "" {
			fmt.Fprintf(&b, "Mood: %s\n", s.Mood)
		}
		b.WriteString("\nConversation:\n")
		b.WriteString(strings.Repeat("-", 40) + "\n")

		for _, m := range s.Messages {
			sender := "Therapist"
			if m.Sender == domain.SenderUser {
				sender = "You"
			}
			fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp.Format(time.TimeOnly), sender, m.Text)
		}
		b.WriteString("\n" + strings.Repeat("=", 50) + "\n\n")
	}
	return b.String()
}
