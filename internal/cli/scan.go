package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"grape-bot/internal/formatter"
	"grape-bot/internal/infrastructure/storage"
)

func newScanCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Validate and analyze grape leaf images",
		Long: `Run each image through leaf validation and the disease classifier.

Examples:
  # Analyze one image
  grapecare scan leaf.jpg

  # Machine-readable output for several images
  grapecare scan -o json vineyard/*.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !formatter.ValidFormat(outputFormat) {
				return fmt.Errorf("unknown output format %q", outputFormat)
			}

			c, err := bootstrap(noLogs)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			s.Writer = os.Stderr
			showSpinner := outputFormat == formatter.FormatHuman && isatty.IsTerminal(os.Stderr.Fd())

			results := make([]formatter.Result, 0, len(args))
			for _, path := range args {
				sel, err := storage.ReadImageFile(path, c.ScanService.MaxUploadSize())
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				if showSpinner {
					s.Suffix = " Analyzing " + filepath.Base(path) + "..."
					s.Start()
				}
				st, err := c.ScanService.ScanOnce(ctx, uuid.NewString(), sel)
				if showSpinner {
					s.Stop()
				}
				if err != nil {
					return fmt.Errorf("failed to analyze %s: %w", path, err)
				}

				results = append(results, formatter.FromState(filepath.Base(path), st))
			}

			if outputFormat == formatter.FormatHuman {
				color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "🍇 Scanned %d image(s)\n", len(results))
			}
			return formatter.DisplayResults(cmd.OutOrStdout(), results, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")

	return cmd
}
