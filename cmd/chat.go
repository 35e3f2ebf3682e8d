package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/progress"
	"github.com/xiaot623/gogo/companion/internal/repository"
	"github.com/xiaot623/gogo/companion/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the companion in the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().Bool("no-delay", false, "reply without simulated thinking and typing time")
}

const chatHelp = `commands:
  /mood <mood> [intensity]  track a mood (very_negative, negative, neutral, positive, very_positive)
  /personality <name>       switch to empathetic, analytical, supportive or challenging
  /stats                    show level, experience and session progress
  /export [json|csv|text]   print the stored data
  /end                      end the session and start a new one
  /quit                     end the session and exit`

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noDelay, _ := cmd.Flags().GetBool("no-delay"); noDelay {
		cfg.Delay.Enabled = false
	}
	// Console logs would interleave with the conversation.
	if cfg.LogLevel == "info" || cfg.LogLevel == "debug" {
		cfg.LogLevel = "warn"
	}
	log, err := connectLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	a, err := newApp(ctx, cfg, log, service.WithNotifier(typingNotifier{out: out}))
	if err != nil {
		return err
	}
	defer a.Close()

	return chatLoop(ctx, a.service, cmd.InOrStdin(), out)
}

// typingNotifier prints the typing indicator.
type typingNotifier struct{ out io.Writer }

func (n typingNotifier) Publish(e service.Event) {
	if e.Type == service.EventTyping {
		fmt.Fprintln(n.out, "  ...")
	}
}

func chatLoop(ctx context.Context, svc *service.Service, in io.Reader, out io.Writer) error {
	if _, err := svc.StartSession(ctx); err != nil {
		return err
	}
	printGreeting(svc, out)
	fmt.Fprintln(out, "(type /help for commands)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := chatCommand(ctx, svc, line, out)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		turn, err := svc.ProcessUserMessage(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "therapist: %s\n", turn.TherapistMessage.Text)
		printEvents(out, turn.Events)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	_, err := svc.EndSession(context.WithoutCancel(ctx))
	return err
}

func chatCommand(ctx context.Context, svc *service.Service, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Fprintln(out, chatHelp)

	case "/mood":
		if len(fields) < 2 {
			return false, fmt.Errorf("%w: usage /mood <mood> [intensity]", domain.ErrInvalidInput)
		}
		intensity := 5
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return false, fmt.Errorf("%w: intensity must be a number", domain.ErrInvalidInput)
			}
			intensity = n
		}
		current, events, err := svc.TrackMood(ctx, domain.MoodState(fields[1]), nil, intensity)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "mood tracked (%d this session)\n", len(current.MoodEntries))
		printEvents(out, events)

	case "/personality":
		if len(fields) < 2 {
			return false, fmt.Errorf("%w: usage /personality <name>", domain.ErrInvalidInput)
		}
		cfg, err := svc.ChangePersonality(ctx, domain.Personality(fields[1]))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "personality is now %s\n", cfg.Personality)

	case "/stats":
		stats := svc.PlayerStats()
		fmt.Fprintf(out, "level %d, %d/%d xp, %d sessions, %d messages, streak %d\n",
			stats.Level, stats.Experience%progress.XPPerLevel, progress.XPPerLevel,
			stats.TotalSessions, stats.TotalMessages, stats.StreakDays)
		if current := svc.CurrentSession(); current != nil {
			fmt.Fprintf(out, "session %s: score %d, objectives %.0f%%\n", current.SessionID, current.Score, svc.Progress())
		}

	case "/export":
		format := repository.ExportText
		if len(fields) > 1 {
			format = repository.ExportFormat(fields[1])
		}
		data, err := svc.Export(ctx, format)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, string(data))

	case "/end":
		if err := endAndReport(ctx, svc, out); err != nil {
			return false, err
		}
		if _, err := svc.StartSession(ctx); err != nil {
			return false, err
		}
		printGreeting(svc, out)

	case "/quit":
		return true, endAndReport(ctx, svc, out)

	default:
		return false, fmt.Errorf("%w: unknown command %s", domain.ErrInvalidInput, fields[0])
	}
	return false, nil
}

func endAndReport(ctx context.Context, svc *service.Service, out io.Writer) error {
	final, err := svc.EndSession(ctx)
	if err != nil || final == nil {
		return err
	}
	fmt.Fprintf(out, "session ended: %d messages, score %d\n", final.MessageCount, final.Score)
	return nil
}

func printGreeting(svc *service.Service, out io.Writer) {
	if history := svc.MessageHistory(); len(history) > 0 {
		fmt.Fprintf(out, "therapist: %s\n", history[0].Text)
	}
}

func printEvents(out io.Writer, events []domain.ProgressEvent) {
	for _, e := range events {
		switch e.Type {
		case domain.ProgressEventObjectiveCompleted:
			fmt.Fprintf(out, "  * objective completed: %s\n", e.ID)
		case domain.ProgressEventAchievementUnlocked:
			fmt.Fprintf(out, "  * achievement unlocked: %s\n", e.ID)
		case domain.ProgressEventLevelUp:
			fmt.Fprintf(out, "  * level up: %d\n", e.Level)
		}
	}
}
