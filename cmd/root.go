// Package cmd implements the companion command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/companion/internal/config"
	"github.com/xiaot623/gogo/companion/internal/logger"
)

var (
	version = "dev"
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "companion",
	Short:        "A therapeutic chat companion",
	Long:         `A chat companion that answers with therapeutic techniques, paces its replies like a person and tracks session progress.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "",
		"dotenv file to load (default: .env)")
	rootCmd.AddCommand(serveCmd, chatCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		return config.Load(envFile)
	}
	return config.Load()
}

func connectLogger(cfg *config.Config) (*logger.LogMiddleware, error) {
	return logger.Connect(logger.Options{Production: cfg.LogProduction, Level: cfg.LogLevel})
}
