package types

import "time"

// Outcome is the terminal state of one download target.
type Outcome string

const (
	OutcomeDownloaded       Outcome = "downloaded"
	OutcomeSkippedExists    Outcome = "skipped-exists"
	OutcomeFailedHTTP       Outcome = "failed-http"
	OutcomeFailedTimeout    Outcome = "failed-timeout"
	OutcomeFailedDecompress Outcome = "failed-decompress"
	OutcomeFailedUnexpected Outcome = "failed-unexpected"
)

// Failed reports whether the outcome is any of the failure states.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeFailedHTTP, OutcomeFailedTimeout, OutcomeFailedDecompress, OutcomeFailedUnexpected:
		return true
	}
	return false
}

// MetadataStatus describes the result of retrieving and parsing a
// domain's cms-hpt.txt file. Only MetadataOK yields downloads; all other
// states are normal, non-fatal outcomes for that domain.
type MetadataStatus string

const (
	MetadataOK              MetadataStatus = "ok"
	MetadataNotFound        MetadataStatus = "not-found"
	MetadataTimeout         MetadataStatus = "timeout"
	MetadataConnectionError MetadataStatus = "connection-error"
	MetadataHTTPError       MetadataStatus = "http-error"
	// MetadataEmpty means the file was fetched but no MRF URLs were found.
	MetadataEmpty MetadataStatus = "empty"
)

// DownloadReport records the result of one download attempt.
type DownloadReport struct {
	URL     string  `json:"url"`
	Format  Format  `json:"format"`
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
	Bytes   int64   `json:"bytes,omitempty"`
	Err     string  `json:"error,omitempty"`
}

// DomainReport aggregates everything that happened for one hospital system.
type DomainReport struct {
	System         string           `json:"system"`
	BaseURL        string           `json:"base_url"`
	MetadataURL    string           `json:"metadata_url"`
	MetadataStatus MetadataStatus   `json:"metadata_status"`
	StatusCode     int              `json:"status_code,omitempty"`
	Candidates     CandidateList    `json:"candidates,omitempty"`
	Downloads      []DownloadReport `json:"downloads,omitempty"`
}

// RunReport is the summary of one full harvest run.
type RunReport struct {
	RunID     string         `json:"run_id"`
	Started   time.Time      `json:"started"`
	Finished  time.Time      `json:"finished"`
	OutputDir string         `json:"output_dir"`
	Domains   []DomainReport `json:"domains"`
}

// RunTotals holds aggregate counts across all domains in a run.
type RunTotals struct {
	Candidates int
	Downloaded int
	Skipped    int
	Failed     int
}

// Totals aggregates download outcomes across every domain in the run.
func (r *RunReport) Totals() RunTotals {
	var t RunTotals
	for _, d := range r.Domains {
		t.Candidates += len(d.Candidates)
		for _, dl := range d.Downloads {
			switch {
			case dl.Outcome == OutcomeDownloaded:
				t.Downloaded++
			case dl.Outcome == OutcomeSkippedExists:
				t.Skipped++
			case dl.Outcome.Failed():
				t.Failed++
			}
		}
	}
	return t
}
