// Package metadata parses cms-hpt.txt metadata files into ordered MRF candidate lists.
// Parsing is a pure function of the input text: no network or filesystem access.
package metadata

import (
	"regexp"
	"strings"

	"github.com/jonathan/mrf-harvester/internal/types"
)

// mrfURLPattern matches the canonical metadata grammar: an mrf-url key
// followed by a colon and an absolute http(s) URL, tolerant of
// surrounding whitespace.
//
// Example line: mrf-url: https://example.com/123456789_hospital_standardcharges.json
var mrfURLPattern = regexp.MustCompile(`(?im)^[ \t]*mrf-url[ \t]*:[ \t]*(https?://\S+)`)

// Strategy extracts raw URL strings from metadata file content. Each
// strategy is pure and independently testable.
type Strategy func(content string) []string

// Parse extracts MRF URLs from the content of a cms-hpt.txt file and
// returns them de-duplicated, classified, and in csv -> json -> unknown
// priority order. Published metadata files are not guaranteed to follow
// a single strict grammar, so the canonical pattern strategy is composed
// with a looser line scan, first success wins.
func Parse(content string) types.CandidateList {
	urls := FirstSuccess(content, PatternStrategy, LineScanStrategy)
	return types.OrderCandidates(urls)
}

// FirstSuccess runs strategies in order and returns the result of the
// first one that yields any URLs.
func FirstSuccess(content string, strategies ...Strategy) []string {
	for _, strategy := range strategies {
		if urls := strategy(content); len(urls) > 0 {
			return urls
		}
	}
	return nil
}

// PatternStrategy is the dominant-path strategy: a multiline,
// case-insensitive match of well-formed mrf-url lines.
func PatternStrategy(content string) []string {
	matches := mrfURLPattern.FindAllStringSubmatch(content, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, strings.TrimSpace(m[1]))
	}
	return urls
}

// LineScanStrategy is the fallback for metadata files that deviate from
// the canonical grammar. It accepts two looser shapes per line: an
// mrf-url key with arbitrary spacing around the colon, and bare URL
// lines that look like MRF payload links. Malformed lines are silently
// skipped rather than failing the whole parse.
func LineScanStrategy(content string) []string {
	var urls []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		lower := strings.ToLower(stripped)

		if strings.Contains(lower, "mrf-url:") {
			// Split on the first colon; note this is the colon of the
			// key, so the URL scheme's own colon survives in the tail.
			_, tail, found := strings.Cut(stripped, ":")
			if !found {
				continue
			}
			urlPart := strings.TrimSpace(tail)
			if strings.HasPrefix(urlPart, "http") {
				urls = append(urls, urlPart)
			}
			continue
		}

		if strings.HasPrefix(stripped, "http") && looksLikeMRFLink(lower) {
			urls = append(urls, stripped)
		}
	}
	return urls
}

// looksLikeMRFLink reports whether a lower-cased bare URL line plausibly
// points at an MRF payload: it must name a data format and carry one of
// the price-transparency markers.
func looksLikeMRFLink(lower string) bool {
	hasFormat := strings.Contains(lower, ".json") || strings.Contains(lower, ".csv")
	hasMarker := strings.Contains(lower, "standardcharges") ||
		strings.Contains(lower, "price-transparency") ||
		strings.Contains(lower, "mrf")
	return hasFormat && hasMarker
}
