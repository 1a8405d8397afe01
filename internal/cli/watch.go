package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grape-bot/internal/formatter"
	"grape-bot/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var (
		outputFormat string
		debounce     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Analyze images as they appear in a directory",
		Long: `Monitor a directory and analyze every new PNG or JPEG image written to it.
Press Ctrl+C to stop watching.

Examples:
  grapecare watch ./incoming
  grapecare watch -o json ./incoming`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if !formatter.ValidFormat(outputFormat) {
				return fmt.Errorf("unknown output format %q", outputFormat)
			}

			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("directory does not exist: %s", dir)
			}
			if !info.IsDir() {
				return fmt.Errorf("not a directory: %s", dir)
			}

			c, err := bootstrap(consoleLogs)
			if err != nil {
				return err
			}
			defer c.Log.Sync()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			fmt.Fprintf(os.Stderr, "Watching %s\nPress Ctrl+C to stop...\n\n", dir)

			// Результаты приходят из разных горутин
			var mu sync.Mutex
			w := watch.New(c.ScanService, c.Log.Named("watch"), debounce)
			return w.Run(ctx, dir, func(res formatter.Result) {
				mu.Lock()
				defer mu.Unlock()
				if err := formatter.DisplayResults(cmd.OutOrStdout(), []formatter.Result{res}, outputFormat); err != nil {
					c.Log.Error("failed to display result", zap.Error(err))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Wait this long after the last write before analyzing a file")

	return cmd
}
