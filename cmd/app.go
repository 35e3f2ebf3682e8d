package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/adapter/llm"
	"github.com/xiaot623/gogo/companion/internal/config"
	"github.com/xiaot623/gogo/companion/internal/delay"
	"github.com/xiaot623/gogo/companion/internal/logger"
	"github.com/xiaot623/gogo/companion/internal/progress"
	"github.com/xiaot623/gogo/companion/internal/repository"
	"github.com/xiaot623/gogo/companion/internal/service"
	"github.com/xiaot623/gogo/companion/internal/therapist"
	"github.com/xiaot623/gogo/companion/policy"
)

// app is the wired companion shared by the serve and chat commands.
type app struct {
	cfg     *config.Config
	log     *logger.LogMiddleware
	repo    *repository.Repository
	service *service.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.LogMiddleware, opts ...service.Option) (*app, error) {
	base := log.Base()

	store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	repo := repository.New(store, base.Named("repository"))

	var policyContent string
	if cfg.PolicyFile != "" {
		data, err := os.ReadFile(cfg.PolicyFile)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to read policy: %w", err)
		}
		policyContent = string(data)
	}
	policyEngine, err := policy.NewEngine(ctx, policyContent)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	therapistCfg, err := therapist.ConfigFor(cfg.Personality)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if err := policyEngine.Validate(ctx, therapistCfg); err != nil {
		repo.Close()
		return nil, err
	}
	therapistEngine, err := therapist.NewEngine(therapistCfg, newRand(cfg.RandomSeed, 0))
	if err != nil {
		repo.Close()
		return nil, err
	}

	delayOpts := []delay.Option{
		delay.WithBaseDelay(cfg.Delay.Base()),
		delay.WithVariability(cfg.Delay.Variability),
		delay.WithReadingSpeed(cfg.Delay.ReadingWPM),
		delay.WithTypingSpeed(cfg.Delay.TypingWPM),
		delay.WithRand(newRand(cfg.RandomSeed, 1)),
	}
	if !cfg.Delay.Enabled {
		delayOpts = append(delayOpts, delay.WithSleeper(delay.NoSleep))
	}

	opts = append([]service.Option{service.WithPolicy(policyEngine)}, opts...)
	if cfg.LLM.Enabled {
		client := llm.NewLLMClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Timeout(), base)
		generator := llm.NewGenerator(client, llm.GeneratorConfig{
			Model:         cfg.LLM.Model,
			Timeout:       cfg.LLM.Timeout(),
			RatePerMinute: cfg.LLM.RatePerMin,
			ValidateTTL:   cfg.LLM.ValidateTTL,
		}, base.Named("llm"))
		opts = append(opts, service.WithGenerator(generator))
		base.Info("external generator enabled", zap.String("base_url", cfg.LLM.BaseURL), zap.String("model", cfg.LLM.Model))
	}

	svc := service.New(therapistEngine, progress.NewEngine(), delay.NewSimulator(delayOpts...), repo, log, opts...)
	if err := svc.Restore(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return &app{cfg: cfg, log: log, repo: repo, service: svc}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}

// newRand returns a PCG source. A zero seed draws from the clock; stream
// separates the sources derived from one seed.
func newRand(seed, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, stream))
}
