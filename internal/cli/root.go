package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grape-bot/config"
	"grape-bot/internal/container"
	"grape-bot/pkg/logger"
)

// NewRootCommand creates the root command
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grapecare",
		Short: "Grape leaf disease scanner",
		Long: `GrapeCare checks that an image looks like a grape leaf and runs it through
the disease classifier. It can run as an HTTP API, a Telegram bot, a terminal UI,
or as a one-shot command over files and directories.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newServeCommand(),
		newBotCommand(),
		newTUICommand(),
		newScanCommand(),
		newWatchCommand(),
		newVersionCommand(version),
	)

	return rootCmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grapecare version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
		},
	}
}

// loggerKind выбирает формат логов для команды
type loggerKind int

const (
	productionLogs loggerKind = iota
	consoleLogs
	noLogs
)

// bootstrap загружает конфигурацию и собирает сервисы
func bootstrap(kind loggerKind) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var log *zap.Logger
	switch kind {
	case productionLogs:
		log, err = logger.New(cfg.Log.Level)
	case consoleLogs:
		log, err = logger.NewDevelopment(cfg.Log.Level)
	default:
		log = zap.NewNop()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return container.New(cfg, log, nil), nil
}

// signalContext отменяется по SIGINT или SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
