package discovery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractMRFLinks extracts links from HTML content that plausibly point
// at MRF payloads or transparency downloads. Relative links are resolved
// against baseURL. Cross-domain links are kept: hospitals routinely host
// the actual files on CDNs or third-party transparency vendors.
func ExtractMRFLinks(htmlContent string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ExtractError{Message: "failed to parse base URL", Cause: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &ExtractError{Message: "invalid base URL: " + baseURL + " (must have scheme and host)"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ExtractError{Message: "failed to parse HTML", Cause: err}
	}

	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}

		absolute := base.ResolveReference(linkURL)
		if absolute.Scheme != "http" && absolute.Scheme != "https" {
			return
		}
		absolute.Fragment = ""
		urlString := absolute.String()

		if !looksLikeMRFDownload(strings.ToLower(urlString)) {
			return
		}
		if !seen[urlString] {
			seen[urlString] = true
			links = append(links, urlString)
		}
	})

	return links, nil
}

// looksLikeMRFDownload applies the same marker heuristic as the metadata
// parser's bare-URL fallback: the link must name a data file and carry a
// price-transparency marker.
func looksLikeMRFDownload(lower string) bool {
	hasFormat := strings.Contains(lower, ".csv") || strings.Contains(lower, ".json") ||
		strings.Contains(lower, ".gz")
	hasMarker := strings.Contains(lower, "standardcharges") ||
		strings.Contains(lower, "price-transparency") ||
		strings.Contains(lower, "mrf")
	return hasFormat && hasMarker
}
