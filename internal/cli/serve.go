package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grape-bot/internal/api/rest"
	"grape-bot/internal/api/telegram"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(productionLogs)
			if err != nil {
				return err
			}
			defer c.Log.Sync()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			srv := rest.New(c)
			errCh := make(chan error, 1)
			go func() {
				if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			c.Log.Info("Shutting down gracefully...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				c.Log.Error("Server forced to shutdown", zap.Error(err))
				return err
			}

			c.Log.Info("Server exited")
			return nil
		},
	}
}

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(productionLogs)
			if err != nil {
				return err
			}
			defer c.Log.Sync()

			if c.Config.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			bot, err := telegram.NewBot(c.Config.TelegramToken, c)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			c.Log.Info("Bot is running...")
			return bot.Run(ctx)
		},
	}
}
