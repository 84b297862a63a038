// Package harvest provides the high-level orchestration for a full run:
// one domain at a time, one candidate at a time, with politeness delays
// between successive network operations.
package harvest

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/mrf-harvester/internal/config"
	"github.com/jonathan/mrf-harvester/internal/discovery"
	"github.com/jonathan/mrf-harvester/internal/download"
	"github.com/jonathan/mrf-harvester/internal/fetch"
	"github.com/jonathan/mrf-harvester/internal/types"
)

// Hooks receive progress events during a run. Any hook may be nil.
type Hooks struct {
	// OnDomain fires when processing of a hospital system begins.
	OnDomain func(system, baseURL string)
	// OnDiscovery fires after the domain's metadata file was fetched and parsed.
	OnDiscovery func(result *discovery.Result)
	// OnProgress fires per written chunk during downloads.
	OnProgress download.ProgressFunc
	// OnOutcome fires after each download target resolves.
	OnOutcome func(report types.DownloadReport)
}

// Run executes a full harvest. It is strictly sequential by design:
// parallel requests against the same hospital systems would defeat the
// politeness delay. Per-domain and per-target failures are confined to
// their report entries; the run itself only fails if the output
// directory cannot be created.
func Run(ctx context.Context, cfg *config.Config, hooks Hooks) (*types.RunReport, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	report := &types.RunReport{
		RunID:     uuid.NewString(),
		Started:   time.Now().UTC(),
		OutputDir: cfg.OutputDir,
	}

	// Name-sorted iteration keeps run output deterministic; Go map
	// order is randomized.
	names := make([]string, 0, len(cfg.Systems))
	for name := range cfg.Systems {
		names = append(names, name)
	}
	sort.Strings(names)

	pipe := &download.Pipeline{
		FetchOpts: &fetch.Options{
			Timeout:   cfg.DownloadTimeout(),
			UserAgent: cfg.UserAgent,
		},
		ChunkSize:  cfg.ChunkSize,
		OnProgress: hooks.OnProgress,
	}

	for _, name := range names {
		baseURL := cfg.Systems[name]
		if hooks.OnDomain != nil {
			hooks.OnDomain(name, baseURL)
		}

		report.Domains = append(report.Domains, harvestDomain(ctx, cfg, pipe, hooks, name, baseURL))

		if ctx.Err() != nil {
			break
		}
	}

	report.Finished = time.Now().UTC()
	return report, nil
}

func harvestDomain(ctx context.Context, cfg *config.Config, pipe *download.Pipeline, hooks Hooks, name, baseURL string) types.DomainReport {
	wait(ctx, cfg.RequestDelay())

	result := discovery.Discover(ctx, name, baseURL, &discovery.Options{
		Fetch: &fetch.Options{
			Timeout:   cfg.MetadataTimeout(),
			UserAgent: cfg.UserAgent,
		},
		Deep:       cfg.Deep,
		UseBrowser: cfg.UseBrowser,
	})
	if hooks.OnDiscovery != nil {
		hooks.OnDiscovery(result)
	}

	domain := types.DomainReport{
		System:         name,
		BaseURL:        baseURL,
		MetadataURL:    result.MetadataURL,
		MetadataStatus: result.Status,
		StatusCode:     result.StatusCode,
		Candidates:     result.Candidates,
	}

	for i, candidate := range result.Candidates {
		if ctx.Err() != nil {
			break
		}
		target := download.TargetFor(candidate, name, i+1, cfg.OutputDir)

		// Politeness: wait before each actual network call, but not for
		// targets the existence check will skip anyway.
		if !pipe.Force && target.Satisfied() {
			domain.Downloads = append(domain.Downloads, skippedReport(target, hooks))
			continue
		}

		wait(ctx, cfg.RequestDelay())
		dl := pipe.Fetch(ctx, target)
		if hooks.OnOutcome != nil {
			hooks.OnOutcome(dl)
		}
		domain.Downloads = append(domain.Downloads, dl)
	}

	return domain
}

// skippedReport produces the skipped-exists report for an already
// satisfied target without invoking the pipeline.
func skippedReport(target download.Target, hooks Hooks) types.DownloadReport {
	dl := types.DownloadReport{
		URL:     target.URL,
		Format:  target.Format,
		Path:    target.FinalPath(),
		Outcome: types.OutcomeSkippedExists,
	}
	if hooks.OnOutcome != nil {
		hooks.OnOutcome(dl)
	}
	return dl
}

// wait sleeps for the politeness delay, returning early on context
// cancellation.
func wait(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
