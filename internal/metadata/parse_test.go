package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/mrf-harvester/internal/types"
)

func TestParse_CanonicalLines(t *testing.T) {
	content := "mrf-url: https://h.example/a_standardcharges.csv.gz\nmrf-url: https://h.example/b.json\n"

	candidates := Parse(content)
	require.Len(t, candidates, 2)

	// CSV prioritized over JSON
	assert.Equal(t, "https://h.example/a_standardcharges.csv.gz", candidates[0].URL)
	assert.Equal(t, types.FormatCSV, candidates[0].Format)
	assert.Equal(t, "https://h.example/b.json", candidates[1].URL)
	assert.Equal(t, types.FormatJSON, candidates[1].Format)
}

func TestParse_ToleratesWhitespaceAndCase(t *testing.T) {
	content := "  MRF-URL :   https://h.example/charges.csv  \n\tmrf-Url:https://h.example/charges.json\n"

	candidates := Parse(content)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://h.example/charges.csv", candidates[0].URL)
	assert.Equal(t, "https://h.example/charges.json", candidates[1].URL)
}

func TestParse_EmptyContent(t *testing.T) {
	assert.Empty(t, Parse(""))
}

func TestParse_NoMatches(t *testing.T) {
	content := "contact-email: someone@h.example\nlast-updated: 2025-01-01\n"
	assert.Empty(t, Parse(content))
}

func TestParse_Deduplicates(t *testing.T) {
	content := "mrf-url: https://h.example/a.csv\nmrf-url: https://h.example/a.csv\n"
	assert.Len(t, Parse(content), 1)
}

func TestParse_OrderIsDeterministic(t *testing.T) {
	content := "mrf-url: https://h.example/z.csv\nmrf-url: https://h.example/a.csv\n"

	candidates := Parse(content)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://h.example/a.csv", candidates[0].URL)
	assert.Equal(t, "https://h.example/z.csv", candidates[1].URL)
}

func TestPatternStrategy_IgnoresNonURLValues(t *testing.T) {
	content := "mrf-url: not-a-url\nmrf-url: https://h.example/a.csv\n"

	urls := PatternStrategy(content)
	require.Len(t, urls, 1)
	assert.Equal(t, "https://h.example/a.csv", urls[0])
}

func TestLineScanStrategy_KeyValueLines(t *testing.T) {
	content := "some preamble\nmrf-url: https://h.example/a.csv\n"

	urls := LineScanStrategy(content)
	require.Len(t, urls, 1)
	assert.Equal(t, "https://h.example/a.csv", urls[0])
}

func TestLineScanStrategy_MalformedLineSkipped(t *testing.T) {
	// Key present but nothing usable after the colon
	content := "mrf-url:\nmrf-url: ftp://h.example/a.csv\n"
	assert.Empty(t, LineScanStrategy(content))
}

func TestLineScanStrategy_BareURLLines(t *testing.T) {
	content := "https://cdn.example/123_standardcharges.csv\n" +
		"https://cdn.example/unrelated.csv\n" +
		"https://cdn.example/price-transparency/data.json\n" +
		"https://cdn.example/mrf/index.html\n"

	urls := LineScanStrategy(content)
	require.Len(t, urls, 2)
	assert.Contains(t, urls, "https://cdn.example/123_standardcharges.csv")
	assert.Contains(t, urls, "https://cdn.example/price-transparency/data.json")
}

func TestParse_FallbackOnlyWhenPatternYieldsNothing(t *testing.T) {
	// The canonical line wins; the bare URL line is not considered
	// because the primary strategy succeeded.
	content := "mrf-url: https://h.example/a.csv\n" +
		"https://cdn.example/123_standardcharges.csv\n"

	candidates := Parse(content)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://h.example/a.csv", candidates[0].URL)
}

func TestFirstSuccess_StopsAtFirstNonEmpty(t *testing.T) {
	first := func(string) []string { return []string{"a"} }
	second := func(string) []string { t.Fatal("second strategy should not run"); return nil }

	assert.Equal(t, []string{"a"}, FirstSuccess("x", first, second))
}

func TestFirstSuccess_AllEmpty(t *testing.T) {
	empty := func(string) []string { return nil }
	assert.Nil(t, FirstSuccess("x", empty, empty))
}
