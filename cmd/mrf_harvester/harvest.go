package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/mrf-harvester/internal/harvest"
	"github.com/jonathan/mrf-harvester/internal/observability"
)

var harvestCommand = &cobra.Command{
	Use:   "harvest",
	Short: "Run the full discovery and download pipeline over every configured hospital system",
	Long: `Fetches {base}/cms-hpt.txt for each configured hospital system, extracts and classifies MRF URLs, and downloads the prioritized list (CSV first, then JSON, then unknown) with gzip expansion and existence-based skip.

Processing is strictly sequential with a politeness delay between requests. Configuration can be loaded from a JSON file using --config; command-line flags override config file values.`,
	RunE: runHarvest,
}

var (
	harvestConfigPath string
	harvestOut        string
	harvestDelay      int
	harvestDeep       bool
	harvestUseBrowser bool
	harvestVerbose    bool
)

func init() {
	harvestCommand.Flags().StringVar(&harvestConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	harvestCommand.Flags().StringVarP(&harvestOut, "out", "o", "", "Output directory for downloaded MRF files")
	harvestCommand.Flags().IntVar(&harvestDelay, "delay", -1, "Politeness delay between requests, in seconds")
	harvestCommand.Flags().BoolVar(&harvestDeep, "deep", false, "Scan the base page for MRF links when cms-hpt.txt is missing or empty")
	harvestCommand.Flags().BoolVar(&harvestUseBrowser, "use-browser", false, "Render pages in a headless browser during deep scans (requires Chrome)")
	harvestCommand.Flags().BoolVarP(&harvestVerbose, "verbose", "v", false, "Print per-chunk download progress")

	rootCmd.AddCommand(harvestCommand)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(harvestConfigPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("out") {
		cfg.OutputDir = harvestOut
	}
	if cmd.Flags().Changed("delay") {
		cfg.RequestDelaySeconds = harvestDelay
	}
	if cmd.Flags().Changed("deep") {
		cfg.Deep = harvestDeep
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = harvestUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = harvestVerbose
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	fmt.Println("Starting hospital MRF harvest (CSV prioritized)...")

	hooks := harvest.Hooks{
		OnDomain:    printer.DomainHeader,
		OnDiscovery: printer.Discovery,
		OnOutcome:   printer.Outcome,
	}
	if cfg.Verbose {
		hooks.OnProgress = printer.Progress
	}

	run, err := harvest.Run(context.Background(), cfg, hooks)
	if err != nil {
		return err
	}

	printer.Summary(run)
	return nil
}
