// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/mrf-harvester/internal/fetch"
)

// Config represents the harvester configuration. All fields can be set
// from a JSON file; CLI flags override file values.
type Config struct {
	// Systems maps a human-readable hospital system name to its base URL.
	Systems map[string]string `json:"systems" validate:"required,min=1,dive,url"`

	// OutputDir is where downloaded/decompressed MRF files land.
	OutputDir string `json:"output_dir" validate:"required"`

	// RequestDelaySeconds is the politeness delay between successive
	// network requests to the same or related hosts.
	RequestDelaySeconds int `json:"request_delay_seconds" validate:"min=0"`

	// MetadataTimeoutSeconds bounds the cms-hpt.txt fetch per domain.
	MetadataTimeoutSeconds int `json:"metadata_timeout_seconds" validate:"min=0"`

	// DownloadTimeoutSeconds bounds a single MRF download. These files
	// can be very large, so this is much longer than the metadata timeout.
	DownloadTimeoutSeconds int `json:"download_timeout_seconds" validate:"min=0"`

	// UserAgent identifies the client; defaults to a browser UA.
	UserAgent string `json:"user_agent,omitempty"`

	// ChunkSize is the streaming copy block size in bytes.
	ChunkSize int `json:"chunk_size,omitempty" validate:"min=0"`

	// Deep enables the HTML fallback scan for domains without a usable
	// cms-hpt.txt.
	Deep bool `json:"deep,omitempty"`

	// UseBrowser renders pages in a headless browser during deep scans
	// (requires Chrome).
	UseBrowser bool `json:"use_browser,omitempty"`

	// Verbose prints detailed per-domain progress.
	Verbose bool `json:"verbose,omitempty"`
}

// DefaultConfig returns the built-in configuration: the Seattle-area
// hospital systems this tool was written for, with conservative
// politeness and timeout settings.
func DefaultConfig() *Config {
	return &Config{
		Systems: map[string]string{
			"UW Medicine":                      "https://www.uwmedicine.org",
			"Swedish (Providence)":             "https://www.swedish.org",
			"Providence Washington":            "https://www.providence.org",
			"Virginia Mason Franciscan Health": "https://www.vmfh.org",
			"Overlake Hospital Medical Center": "https://www.overlakehospital.org",
			"EvergreenHealth":                  "https://www.evergreenhealth.com",
			"MultiCare Health System":          "https://www.multicare.org",
			"Seattle Children's Hospital":      "https://www.seattlechildrens.org",
			"Kaiser Permanente Washington":     "https://healthy.kaiserpermanente.org",
		},
		OutputDir:              "hospital_mrf_seattle",
		RequestDelaySeconds:    2,
		MetadataTimeoutSeconds: 30,
		DownloadTimeoutSeconds: 120,
		UserAgent:              fetch.DefaultUserAgent,
		ChunkSize:              8 * 1024,
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides selected settings from the environment:
// MRF_OUTPUT_DIR and MRF_REQUEST_DELAY (seconds).
func (c *Config) ApplyEnv() error {
	if dir := os.Getenv("MRF_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}
	if delay := os.Getenv("MRF_REQUEST_DELAY"); delay != "" {
		seconds, err := strconv.Atoi(delay)
		if err != nil {
			return fmt.Errorf("invalid MRF_REQUEST_DELAY %q: %w", delay, err)
		}
		c.RequestDelaySeconds = seconds
	}
	return nil
}

// Validate checks the configuration: struct-level tags first, then the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, baseURL := range c.Systems {
		if !strings.HasPrefix(baseURL, "https://") {
			return fmt.Errorf("config error: system %q base URL must be an https URL: %s", name, baseURL)
		}
	}
	if c.UseBrowser && !c.Deep {
		return fmt.Errorf("config error: 'use_browser' requires 'deep'")
	}
	return nil
}

// RequestDelay returns the politeness delay as a duration.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds) * time.Second
}

// MetadataTimeout returns the metadata fetch timeout as a duration.
func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.MetadataTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the download timeout as a duration.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}
