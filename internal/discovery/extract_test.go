package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMRFLinks_KeepsOnlyMRFLookingLinks(t *testing.T) {
	html := `
		<html><body>
			<a href="/files/123_standardcharges.csv">Charges CSV</a>
			<a href="https://cdn.example/price-transparency/data.json.gz">Vendor JSON</a>
			<a href="/about">About</a>
			<a href="/news/annual-report.pdf">Report</a>
		</body></html>
	`

	links, err := ExtractMRFLinks(html, "https://h.example")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Contains(t, links, "https://h.example/files/123_standardcharges.csv")
	assert.Contains(t, links, "https://cdn.example/price-transparency/data.json.gz")
}

func TestExtractMRFLinks_KeepsCrossDomainLinks(t *testing.T) {
	html := `<a href="https://vendor.example/h/mrf/charges.csv">download</a>`

	links, err := ExtractMRFLinks(html, "https://h.example")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://vendor.example/h/mrf/charges.csv", links[0])
}

func TestExtractMRFLinks_ResolvesRelativeAndDropsFragments(t *testing.T) {
	html := `<a href="downloads/mrf_charges.csv#latest">download</a>`

	links, err := ExtractMRFLinks(html, "https://h.example/pricing/")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://h.example/pricing/downloads/mrf_charges.csv", links[0])
}

func TestExtractMRFLinks_Deduplicates(t *testing.T) {
	html := `
		<a href="/mrf/charges.csv">one</a>
		<a href="/mrf/charges.csv">two</a>
	`

	links, err := ExtractMRFLinks(html, "https://h.example")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestExtractMRFLinks_SkipsNonHTTPSchemes(t *testing.T) {
	html := `<a href="mailto:billing@h.example?subject=mrf.csv">mail</a>`

	links, err := ExtractMRFLinks(html, "https://h.example")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestExtractMRFLinks_InvalidBaseURL(t *testing.T) {
	_, err := ExtractMRFLinks("<a href='/x'>x</a>", "not-a-url")
	require.Error(t, err)

	var extractErr *ExtractError
	assert.ErrorAs(t, err, &extractErr)
}
