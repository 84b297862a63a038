package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/mrf-harvester/internal/download"
	"github.com/jonathan/mrf-harvester/internal/fetch"
	"github.com/jonathan/mrf-harvester/internal/observability"
	"github.com/jonathan/mrf-harvester/internal/types"
)

var downloadCommand = &cobra.Command{
	Use:   "download",
	Short: "Download a single MRF URL through the fetch pipeline",
	Long:  "Runs one URL through the same pipeline the harvest uses: existence check, streaming download, and gzip expansion. Useful for re-pulling a single file or testing a URL found manually.",
	RunE:  runDownload,
}

var (
	downloadConfigPath string
	downloadURL        string
	downloadOut        string
	downloadSystem     string
	downloadForce      bool
)

func init() {
	downloadCommand.Flags().StringVar(&downloadConfigPath, "config", "", "Path to config.json file")
	downloadCommand.Flags().StringVarP(&downloadURL, "url", "u", "", "MRF URL to download (required)")
	downloadCommand.Flags().StringVarP(&downloadOut, "out", "o", "", "Output directory (defaults to the configured output directory)")
	downloadCommand.Flags().StringVarP(&downloadSystem, "system", "s", "manual", "Hospital system name used in the output file name")
	downloadCommand.Flags().BoolVar(&downloadForce, "force", false, "Re-download even if the file already exists")

	if err := downloadCommand.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(downloadCommand)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(downloadConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = downloadOut
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	candidate := types.MrfCandidate{URL: downloadURL, Format: types.FormatOf(downloadURL)}
	target := download.TargetFor(candidate, downloadSystem, 1, cfg.OutputDir)

	printer := observability.NewPrinter(os.Stdout)
	pipe := &download.Pipeline{
		FetchOpts: &fetch.Options{
			Timeout:   cfg.DownloadTimeout(),
			UserAgent: cfg.UserAgent,
		},
		ChunkSize:  cfg.ChunkSize,
		Force:      downloadForce,
		OnProgress: printer.Progress,
	}

	report := pipe.Fetch(context.Background(), target)
	printer.Outcome(report)

	if report.Outcome.Failed() {
		return fmt.Errorf("download failed: %s", report.Outcome)
	}
	return nil
}
