package generator

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"time"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// siteRoot trims base_url for joining with routes. Sites without one are
// assumed to be served locally.
func siteRoot(baseURL string) string {
	if root := strings.TrimRight(strings.TrimSpace(baseURL), "/"); root != "" {
		return root
	}
	return "http://localhost"
}

// buildSitemap lists every rendered route once, sorted by location. Pages
// without a timestamp use fallback as their lastmod.
func buildSitemap(baseURL string, pages []RenderedPage, fallback time.Time) ([]byte, error) {
	root := siteRoot(baseURL)
	byLoc := make(map[string]sitemapURL, len(pages))
	for _, page := range pages {
		loc := root + "/" + strings.TrimLeft(strings.TrimSpace(page.Route), "/")
		if _, dup := byLoc[loc]; dup {
			continue
		}
		modified := page.LastModified
		if modified.IsZero() {
			modified = fallback
		}
		entry := sitemapURL{Loc: loc}
		if !modified.IsZero() {
			entry.LastMod = modified.UTC().Format(time.RFC3339)
		}
		byLoc[loc] = entry
	}

	set := urlSet{Xmlns: sitemapNamespace, URLs: make([]sitemapURL, 0, len(byLoc))}
	for _, entry := range byLoc {
		set.URLs = append(set.URLs, entry)
	}
	slices.SortFunc(set.URLs, func(a, b sitemapURL) int { return strings.Compare(a.Loc, b.Loc) })

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func buildRobots(baseURL string, includeSitemap bool) []byte {
	robots := "User-agent: *\nAllow: /\n"
	if includeSitemap {
		robots += "\nSitemap: " + siteRoot(baseURL) + "/sitemap.xml\n"
	}
	return []byte(robots)
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseTimestamp reads a metadata timestamp. Unparseable values yield the
// zero time.
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
