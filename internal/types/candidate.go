// Package types provides type definitions for structured data used throughout the mrf-harvester system.
package types

import (
	"sort"
	"strings"
)

// Format is the detected file format of a discovered MRF URL.
type Format string

const (
	// FormatCSV marks URLs ending in .csv or containing .csv.gz.
	FormatCSV Format = "csv"
	// FormatJSON marks URLs ending in .json or containing .json.gz.
	FormatJSON Format = "json"
	// FormatUnknown marks URLs that match neither rule.
	FormatUnknown Format = "unknown"
)

// FormatOf classifies a URL by suffix/substring rules. Classification is
// deliberately not MIME-type based: the metadata files are static text,
// so the URL string is the only signal available.
func FormatOf(rawURL string) Format {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasSuffix(lower, ".csv") || strings.Contains(lower, ".csv.gz"):
		return FormatCSV
	case strings.HasSuffix(lower, ".json") || strings.Contains(lower, ".json.gz"):
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Ext returns the file extension for the format, "dat" when unknown.
// Used when a synthetic file name must be built for a URL with no usable basename.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return "dat"
	}
	return string(f)
}

// MrfCandidate represents one discovered MRF download link.
type MrfCandidate struct {
	URL    string `json:"url"`
	Format Format `json:"format"`
}

// CandidateList is an ordered, de-duplicated set of candidates:
// CSV entries first, then JSON, then unknown, each bucket sorted
// lexicographically by URL.
type CandidateList []MrfCandidate

// OrderCandidates de-duplicates the given URLs, classifies each one, and
// returns them in the fixed priority order csv -> json -> unknown with
// lexicographic ordering inside each bucket. The ordering is deterministic
// so repeated runs against unchanged input make identical skip/download
// decisions.
func OrderCandidates(urls []string) CandidateList {
	seen := make(map[string]bool)
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}
	sort.Strings(unique)

	var csvBucket, jsonBucket, unknownBucket CandidateList
	for _, u := range unique {
		candidate := MrfCandidate{URL: u, Format: FormatOf(u)}
		switch candidate.Format {
		case FormatCSV:
			csvBucket = append(csvBucket, candidate)
		case FormatJSON:
			jsonBucket = append(jsonBucket, candidate)
		default:
			unknownBucket = append(unknownBucket, candidate)
		}
	}

	ordered := make(CandidateList, 0, len(unique))
	ordered = append(ordered, csvBucket...)
	ordered = append(ordered, jsonBucket...)
	ordered = append(ordered, unknownBucket...)
	return ordered
}

// URLs returns just the URL strings, preserving list order.
func (l CandidateList) URLs() []string {
	out := make([]string, len(l))
	for i, c := range l {
		out[i] = c.URL
	}
	return out
}
