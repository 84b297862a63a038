// Package discovery turns a hospital system's base URL into an ordered
// list of MRF download candidates.
package discovery

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/mrf-harvester/internal/fetch"
	"github.com/jonathan/mrf-harvester/internal/metadata"
	"github.com/jonathan/mrf-harvester/internal/types"
)

// MetadataFile is the well-known per-domain metadata file name mandated
// by the federal hospital price-transparency rule.
const MetadataFile = "cms-hpt.txt"

// Options configures discovery for one domain.
type Options struct {
	// Fetch configures the HTTP client; nil means fetch defaults.
	Fetch *fetch.Options
	// Deep enables the HTML fallback scan of the base page when the
	// metadata file is missing or yields nothing. Off by default: it
	// costs an extra request per domain.
	Deep bool
	// UseBrowser renders the base page in a headless browser during the
	// deep scan, for sites that only emit links client-side.
	UseBrowser bool
}

// Result is the discovery outcome for one domain. A missing or empty
// metadata file is a normal result, not an error.
type Result struct {
	System      string
	BaseURL     string
	MetadataURL string
	Status      types.MetadataStatus
	StatusCode  int
	Candidates  types.CandidateList
}

// MetadataURL derives the well-known metadata file URL for a base URL.
func MetadataURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + MetadataFile
}

// Discover fetches and parses the domain's metadata file. When Deep is
// enabled and the file is missing (404) or lists no URLs, the base page
// is scanned for MRF-looking links instead.
func Discover(ctx context.Context, system, baseURL string, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}

	result := &Result{
		System:      system,
		BaseURL:     baseURL,
		MetadataURL: MetadataURL(baseURL),
	}

	res, err := fetch.Text(ctx, result.MetadataURL, opts.Fetch)
	if err != nil {
		result.Status = classifyFetchError(err)
		if res != nil {
			result.StatusCode = res.StatusCode
		}
		if result.Status == types.MetadataNotFound && opts.Deep {
			result.Candidates = deepScan(ctx, baseURL, opts)
		}
		return result
	}

	result.StatusCode = res.StatusCode
	result.Candidates = metadata.Parse(res.Body)
	if len(result.Candidates) == 0 {
		result.Status = types.MetadataEmpty
		if opts.Deep {
			result.Candidates = deepScan(ctx, baseURL, opts)
		}
		return result
	}

	result.Status = types.MetadataOK
	return result
}

// deepScan fetches the base page and extracts MRF-looking links from its
// HTML. Failures here degrade to an empty candidate list; the metadata
// status already tells the caller why discovery fell through.
func deepScan(ctx context.Context, baseURL string, opts *Options) types.CandidateList {
	var html string
	if opts.UseBrowser {
		rendered, err := fetch.WithBrowser(ctx, baseURL, 0)
		if err != nil {
			return nil
		}
		html = rendered
	} else {
		res, err := fetch.Text(ctx, baseURL, opts.Fetch)
		if err != nil {
			return nil
		}
		html = res.Body
	}

	links, err := ExtractMRFLinks(html, baseURL)
	if err != nil {
		return nil
	}
	return types.OrderCandidates(links)
}

func classifyFetchError(err error) types.MetadataStatus {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		switch {
		case fetchErr.NotFound():
			return types.MetadataNotFound
		case fetchErr.Timeout():
			return types.MetadataTimeout
		case fetchErr.StatusCode != 0:
			return types.MetadataHTTPError
		}
	}
	if fetch.IsTimeout(err) {
		return types.MetadataTimeout
	}
	return types.MetadataConnectionError
}
