// Package delay models how long a human-paced reply takes to arrive.
package delay

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/xiaot623/gogo/companion/internal/analysis"
)

// Bounds of every computed delay.
const (
	MinDelay         = 500 * time.Millisecond
	MaxDelay         = 8000 * time.Millisecond
	MinTypingDelay   = 800 * time.Millisecond
	typingIndicatorK = 0.7
)

// Rand supplies the variability draw.
type Rand interface {
	Float64() float64
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Config holds the pacing parameters.
type Config struct {
	BaseDelay    time.Duration `json:"baseDelay"`
	Variability  float64       `json:"variability"`
	ReadingSpeed float64       `json:"readingSpeed"` // words per minute
	TypingSpeed  float64       `json:"typingSpeed"`  // words per minute
}

// DefaultConfig returns the default pacing.
func DefaultConfig() Config {
	return Config{
		BaseDelay:    1000 * time.Millisecond,
		Variability:  0.3,
		ReadingSpeed: 200,
		TypingSpeed:  40,
	}
}

// Option adjusts a Simulator.
type Option func(*Simulator)

func WithBaseDelay(d time.Duration) Option { return func(s *Simulator) { s.cfg.BaseDelay = d } }
func WithVariability(v float64) Option     { return func(s *Simulator) { s.cfg.Variability = v } }
func WithReadingSpeed(wpm float64) Option  { return func(s *Simulator) { s.cfg.ReadingSpeed = wpm } }
func WithTypingSpeed(wpm float64) Option   { return func(s *Simulator) { s.cfg.TypingSpeed = wpm } }
func WithRand(r Rand) Option               { return func(s *Simulator) { s.rng = r } }
func WithSleeper(fn Sleeper) Option        { return func(s *Simulator) { s.sleep = fn } }

// Simulator computes and waits out response delays. It is safe for concurrent use.
type Simulator struct {
	mu    sync.Mutex
	cfg   Config
	rng   Rand
	sleep Sleeper
}

// NewSimulator creates a simulator with the default config adjusted by opts.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		cfg:   DefaultConfig(),
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		sleep: timerSleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalculateDelay returns the delay for answering userText with responseText.
func (s *Simulator) CalculateDelay(userText, responseText string) time.Duration {
	s.mu.Lock()
	cfg := s.cfg
	draw := s.rng.Float64()
	s.mu.Unlock()

	return Calculate(cfg, userText, responseText, draw)
}

// Calculate applies the pacing formula with an explicit uniform draw in [0,1).
func Calculate(cfg Config, userText, responseText string, draw float64) time.Duration {
	userWords := float64(analysis.WordCount(userText))
	responseWords := float64(analysis.WordCount(responseText))

	var readingMs, typingMs float64
	if cfg.ReadingSpeed > 0 {
		readingMs = userWords / cfg.ReadingSpeed * 60000
	}
	if cfg.TypingSpeed > 0 {
		typingMs = responseWords / cfg.TypingSpeed * 60000
	}
	thinkingMs := float64(cfg.BaseDelay.Milliseconds()) + userWords*50

	factor := 1 + (draw-0.5)*cfg.Variability
	total := time.Duration((readingMs + thinkingMs + typingMs) * factor * float64(time.Millisecond))
	return min(max(total, MinDelay), MaxDelay)
}

// TypingIndicatorDelay is how long a typing indicator should show.
func (s *Simulator) TypingIndicatorDelay(userText, responseText string) time.Duration {
	d := s.CalculateDelay(userText, responseText)
	return max(MinTypingDelay, time.Duration(float64(d)*typingIndicatorK))
}

// SimulateDelay waits for the computed delay. It returns the delay and
// ctx.Err() if the wait was cut short.
func (s *Simulator) SimulateDelay(ctx context.Context, userText, responseText string) (time.Duration, error) {
	d := s.CalculateDelay(userText, responseText)
	s.mu.Lock()
	sleep := s.sleep
	s.mu.Unlock()
	return d, sleep(ctx, d)
}

// Update applies opts to the running simulator.
func (s *Simulator) Update(opts ...Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range opts {
		opt(s)
	}
}

// Config returns the current pacing parameters.
func (s *Simulator) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoSleep returns immediately. Useful when pacing is disabled.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
