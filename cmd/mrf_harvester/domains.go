package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var domainsCommand = &cobra.Command{
	Use:   "domains",
	Short: "List the configured hospital systems and their base URLs",
	RunE:  runDomains,
}

var domainsConfigPath string

func init() {
	domainsCommand.Flags().StringVar(&domainsConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(domainsCommand)
}

func runDomains(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(domainsConfigPath)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Systems))
	for name := range cfg.Systems {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%-35s %s\n", name, cfg.Systems[name])
	}
	return nil
}
