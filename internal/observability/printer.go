// Package observability provides formatted console output for harvest runs.
package observability

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/mrf-harvester/internal/discovery"
	"github.com/jonathan/mrf-harvester/internal/download"
	"github.com/jonathan/mrf-harvester/internal/types"
)

const megabyte = 1024 * 1024

// Printer handles formatted output for a harvest run.
type Printer struct {
	out io.Writer
	// inProgress tracks whether the last write was an in-place progress
	// line that still needs a newline.
	inProgress bool
}

// NewPrinter creates a new Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// DomainHeader announces that processing of a hospital system begins.
func (p *Printer) DomainHeader(system, baseURL string) {
	p.endProgress()
	fmt.Fprintf(p.out, "\n--- Processing: %s (%s) ---\n", system, baseURL)
}

// Discovery summarizes the metadata fetch and the candidates it yielded.
func (p *Printer) Discovery(result *discovery.Result) {
	p.endProgress()
	switch result.Status {
	case types.MetadataOK:
		fmt.Fprintf(p.out, "Found %d potential MRF URL(s) in %s (prioritizing CSV):\n",
			len(result.Candidates), result.MetadataURL)
		for i, candidate := range result.Candidates {
			fmt.Fprintf(p.out, "  %d. %s (detected format: %s)\n", i+1, candidate.URL, candidate.Format)
		}
	case types.MetadataNotFound:
		fmt.Fprintf(p.out, "cms-hpt.txt not found at %s (404). Consider checking the %s website for a price transparency page.\n",
			result.MetadataURL, result.System)
	case types.MetadataEmpty:
		fmt.Fprintf(p.out, "No MRF URLs found in %s.\n", result.MetadataURL)
	case types.MetadataTimeout:
		fmt.Fprintf(p.out, "Timeout while fetching %s.\n", result.MetadataURL)
	case types.MetadataConnectionError:
		fmt.Fprintf(p.out, "Connection error while fetching %s.\n", result.MetadataURL)
	default:
		fmt.Fprintf(p.out, "Failed to fetch %s (status %d).\n", result.MetadataURL, result.StatusCode)
	}
	if result.Status != types.MetadataOK && len(result.Candidates) > 0 {
		fmt.Fprintf(p.out, "Fallback page scan found %d candidate(s).\n", len(result.Candidates))
	}
}

// Progress writes an in-place progress line. The percentage is only
// shown when the total size is known; an absent Content-Length means
// "unknown total", not zero.
func (p *Printer) Progress(progress download.Progress) {
	if progress.Total > 0 {
		percent := float64(progress.Bytes) / float64(progress.Total) * 100
		fmt.Fprintf(p.out, "  Downloading... %.2fMB / %.2fMB (%.2f%%)\r",
			float64(progress.Bytes)/megabyte, float64(progress.Total)/megabyte, percent)
	} else {
		fmt.Fprintf(p.out, "  Downloading... %.2fMB\r", float64(progress.Bytes)/megabyte)
	}
	p.inProgress = true
}

// Outcome reports the terminal state of one download target.
func (p *Printer) Outcome(report types.DownloadReport) {
	p.endProgress()
	switch report.Outcome {
	case types.OutcomeDownloaded:
		fmt.Fprintf(p.out, "  Downloaded %s -> %s\n", report.URL, report.Path)
	case types.OutcomeSkippedExists:
		fmt.Fprintf(p.out, "  File %s (or its gzipped original) already exists. Skipping.\n", report.Path)
	case types.OutcomeFailedTimeout:
		fmt.Fprintf(p.out, "  Timeout downloading %s. The file might be too large or the server too slow.\n", report.URL)
	case types.OutcomeFailedDecompress:
		fmt.Fprintf(p.out, "  Error decompressing %s: %s. The gzipped file remains in place.\n", report.Path, report.Err)
	default:
		fmt.Fprintf(p.out, "  Error downloading %s: %s\n", report.URL, report.Err)
	}
}

// Summary renders the per-domain outcome table and closing notes for a
// completed run.
func (p *Printer) Summary(run *types.RunReport) {
	p.endProgress()
	fmt.Fprintf(p.out, "\n--- Run %s finished in %s ---\n", run.RunID, run.Finished.Sub(run.Started).Round(time.Second))

	tw := table.NewWriter()
	tw.SetOutputMirror(p.out)
	tw.AppendHeader(table.Row{"System", "Metadata", "Candidates", "Downloaded", "Skipped", "Failed"})
	for _, domain := range run.Domains {
		var downloaded, skipped, failed int
		for _, dl := range domain.Downloads {
			switch {
			case dl.Outcome == types.OutcomeDownloaded:
				downloaded++
			case dl.Outcome == types.OutcomeSkippedExists:
				skipped++
			case dl.Outcome.Failed():
				failed++
			}
		}
		tw.AppendRow(table.Row{domain.System, string(domain.MetadataStatus), len(domain.Candidates), downloaded, skipped, failed})
	}
	totals := run.Totals()
	tw.AppendFooter(table.Row{"Total", "", totals.Candidates, totals.Downloaded, totals.Skipped, totals.Failed})
	tw.Render()

	fmt.Fprintf(p.out, "\nDownloaded files (if any) are in the %q directory.\n", run.OutputDir)
	fmt.Fprint(p.out, "Notes:\n")
	fmt.Fprint(p.out, " - CSV-format files are prioritized; .gz archives are decompressed automatically.\n")
	fmt.Fprint(p.out, " - Not every hospital publishes a cms-hpt.txt or a parsable MRF listing.\n")
	fmt.Fprint(p.out, " - No cross-file normalization is performed; combining these files into a unified table requires custom per-file parsing.\n")
}

func (p *Printer) endProgress() {
	if p.inProgress {
		fmt.Fprint(p.out, "\n")
		p.inProgress = false
	}
}
