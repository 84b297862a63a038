package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/mrf-harvester/internal/discovery"
	"github.com/jonathan/mrf-harvester/internal/fetch"
	"github.com/jonathan/mrf-harvester/internal/metadata"
	"github.com/jonathan/mrf-harvester/internal/observability"
	"github.com/jonathan/mrf-harvester/internal/types"
)

var discoverCommand = &cobra.Command{
	Use:   "discover",
	Short: "Discover MRF URLs for one hospital system without downloading anything",
	Long: `Fetches and parses the cms-hpt.txt metadata file for a single base URL (or a configured system name) and prints the ordered candidate list.

With --file, parses a local metadata file instead of fetching one.`,
	RunE: runDiscover,
}

var (
	discoverConfigPath string
	discoverBaseURL    string
	discoverSystem     string
	discoverFile       string
	discoverDeep       bool
	discoverUseBrowser bool
)

func init() {
	discoverCommand.Flags().StringVar(&discoverConfigPath, "config", "", "Path to config.json file")
	discoverCommand.Flags().StringVarP(&discoverBaseURL, "base-url", "u", "", "Hospital system base URL (mutually exclusive with --system)")
	discoverCommand.Flags().StringVarP(&discoverSystem, "system", "s", "", "Configured hospital system name (mutually exclusive with --base-url)")
	discoverCommand.Flags().StringVarP(&discoverFile, "file", "f", "", "Parse a local cms-hpt.txt file instead of fetching")
	discoverCommand.Flags().BoolVar(&discoverDeep, "deep", false, "Scan the base page for MRF links when cms-hpt.txt is missing or empty")
	discoverCommand.Flags().BoolVar(&discoverUseBrowser, "use-browser", false, "Render pages in a headless browser during deep scans (requires Chrome)")

	rootCmd.AddCommand(discoverCommand)
}

func runDiscover(_ *cobra.Command, _ []string) error {
	if discoverFile != "" {
		data, err := os.ReadFile(discoverFile)
		if err != nil {
			return fmt.Errorf("failed to read metadata file %s: %w", discoverFile, err)
		}
		printCandidates(metadata.Parse(string(data)))
		return nil
	}

	cfg, err := loadConfig(discoverConfigPath)
	if err != nil {
		return err
	}

	system := discoverSystem
	baseURL := discoverBaseURL
	switch {
	case baseURL != "" && system != "":
		return fmt.Errorf("--base-url and --system are mutually exclusive")
	case baseURL != "":
		system = baseURL
	case system != "":
		configured, ok := cfg.Systems[system]
		if !ok {
			return fmt.Errorf("unknown system %q; see 'mrf_harvester domains'", system)
		}
		baseURL = configured
	default:
		return fmt.Errorf("either --base-url, --system, or --file is required")
	}

	result := discovery.Discover(context.Background(), system, baseURL, &discovery.Options{
		Fetch: &fetch.Options{
			Timeout:   cfg.MetadataTimeout(),
			UserAgent: cfg.UserAgent,
		},
		Deep:       discoverDeep,
		UseBrowser: discoverUseBrowser,
	})

	observability.NewPrinter(os.Stdout).Discovery(result)
	return nil
}

func printCandidates(candidates types.CandidateList) {
	if len(candidates) == 0 {
		fmt.Println("No MRF URLs found.")
		return
	}
	for i, candidate := range candidates {
		fmt.Printf("%d. %s (detected format: %s)\n", i+1, candidate.URL, candidate.Format)
	}
}
