// Package main provides the entry point for the MRF harvester CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/mrf-harvester/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mrf_harvester",
	Short: "Hospital price-transparency MRF discovery and download tool",
	Long:  "mrf_harvester discovers machine-readable price-transparency files (MRFs) published by hospital systems via their well-known cms-hpt.txt metadata files, and downloads the prioritized CSV/JSON payloads with streaming I/O and gzip expansion.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file when a path is given, otherwise the
// built-in defaults, and applies environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
