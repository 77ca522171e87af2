package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

// ResearchGate serves heavily obfuscated markup, so this extractor works on
// the stable text fragments ("N Publications", "N Citations") rather than the
// DOM structure.
var (
	rgNameRe         = regexp.MustCompile(`<h1[^>]*>([^<]+)</h1>`)
	rgPublicationsRe = regexp.MustCompile(`(?i)(\d+)\s*Publications?`)
	rgCitationsRe    = regexp.MustCompile(`(?i)(\d+)\s*Citations?`)
	rgHIndexRe       = regexp.MustCompile(`(?i)h-index[^>]*>(\d+)`)
)

// ResearchGateExtractor reads a ResearchGate profile page.
type ResearchGateExtractor struct{}

func (ResearchGateExtractor) Source() config.Source { return config.SourceResearchGate }

func (ResearchGateExtractor) Extract(body []byte) (Metrics, error) {
	html := string(body)

	var m Metrics
	if g := rgNameRe.FindStringSubmatch(html); g != nil {
		m.Name = strings.TrimSpace(g[1])
	}
	found := false
	if g := rgPublicationsRe.FindStringSubmatch(html); g != nil {
		m.Publications, _ = strconv.Atoi(g[1])
		found = true
	}
	if g := rgCitationsRe.FindStringSubmatch(html); g != nil {
		m.Citations, _ = strconv.Atoi(g[1])
		found = true
	}
	if g := rgHIndexRe.FindStringSubmatch(html); g != nil {
		m.HIndex, _ = strconv.Atoi(g[1])
		found = true
	}

	if !found && m.Name == "" {
		return Metrics{}, fmt.Errorf("researchgate markup not found")
	}
	return m, nil
}
