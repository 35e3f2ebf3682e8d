package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/companion/internal/service"
	transport "github.com/xiaot623/gogo/companion/internal/transport/http"
	"github.com/xiaot623/gogo/companion/internal/transport/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and WebSocket feed",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (overrides HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.HTTPPort = port
	}
	log, err := connectLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()
	base := log.Base()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := ws.NewHub(base.Named("ws"))
	go hub.Run(ctx)

	a, err := newApp(ctx, cfg, log, service.WithNotifier(hub))
	if err != nil {
		return err
	}
	defer a.Close()

	live := ws.NewServer(cfg.WS, hub, a.service, base.Named("ws"))
	server := transport.NewServer(a.service, live.HandleWebSocket, base.Named("http"))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			base.Fatal("failed to start server", zap.Error(err))
		}
	}()
	base.Info("companion started",
		zap.Int("port", cfg.HTTPPort),
		zap.String("personality", string(cfg.Personality)),
		zap.Bool("delay", cfg.Delay.Enabled),
		zap.Bool("llm", cfg.LLM.Enabled),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	base.Info("shutting down companion")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		base.Warn("failed to shutdown server gracefully", zap.Error(err))
	}
	// A live session is archived like an explicit end.
	if _, err := a.service.EndSession(shutdownCtx); err != nil {
		base.Warn("failed to end live session", zap.Error(err))
	}
	stop()

	base.Info("companion stopped")
	return nil
}
