package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/analysis"
	"github.com/xiaot623/gogo/companion/internal/domain"
)

// ProcessUserMessage runs one conversation turn. The delay and generator
// waits happen while the turn holds the gate, so no other mutation can
// interleave. Cancelling ctx during the delay shortens the wait; the turn is
// still committed.
func (s *Service) ProcessUserMessage(ctx context.Context, text string) (*domain.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", domain.ErrInvalidInput)
	}
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.gate.Release(1)

	ctx, span := otel.Tracer("internal/service/ProcessUserMessage").Start(ctx, "Service.ProcessUserMessage")
	defer span.End()
	log := s.log.Logger(ctx)

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, domain.ErrSessionNotActive
	}
	events, err := s.progress.AddMessage()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	prior := slices.Clone(s.history)
	userMsg := s.message(text, domain.SenderUser, "")
	s.history = append(s.history, userMsg)
	emotion := analysis.IdentifyEmotion(text)
	topics := analysis.ExtractTopics(text)
	s.therapist.UpdateContext(emotion, topics)
	resp := s.therapist.GenerateResponse(text)
	sessionID := s.sessionID
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("turn.emotion", emotion),
		attribute.String("turn.technique", string(resp.Technique)),
	)

	generated := false
	if s.generator != nil && s.generator.Available(ctx) {
		reply, err := s.generator.Generate(ctx, prior, text)
		resp.Text = reply
		if err != nil {
			log.Warn("generator failed, using fallback reply", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			generated = true
		}
	}

	typing := s.delay.TypingIndicatorDelay(text, resp.Text)
	s.publish(EventTyping, map[string]interface{}{"delay_ms": typing.Milliseconds()})

	delay, err := s.delay.SimulateDelay(ctx, text, resp.Text)
	if err != nil {
		log.Info("reply delay interrupted", zap.String("session_id", sessionID), zap.Error(err))
	}
	// Persistence below must not be skipped because the caller went away.
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	therapistMsg := s.message(resp.Text, domain.SenderTherapist, resp.Technique)
	s.history = append(s.history, therapistMsg)
	snapshot := s.snapshotLocked()
	stats := s.progress.Stats()
	s.mu.Unlock()

	s.autosave(ctx, snapshot)
	s.repo.SavePlayerStats(ctx, stats)

	turn := &domain.Turn{
		Response:         resp,
		UserMessage:      userMsg,
		TherapistMessage: therapistMsg,
		Emotion:          emotion,
		Topics:           topics,
		DelayMs:          delay.Milliseconds(),
		TypingDelayMs:    typing.Milliseconds(),
		Generated:        generated,
		Events:           events,
	}
	log.Debug("turn processed",
		zap.String("session_id", sessionID),
		zap.String("technique", string(resp.Technique)),
		zap.String("emotion", emotion),
		zap.Bool("generated", generated),
		zap.Duration("delay", delay),
	)
	s.publish(EventTurn, map[string]interface{}{"turn": turn})
	return turn, nil
}

