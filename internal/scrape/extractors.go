package scrape

import "git.home.luguber.info/inful/dashboard/internal/config"

// ExtractorFor returns the extraction strategy for a configured profile
// source, or nil when the source has no scraper.
func ExtractorFor(source config.Source) Extractor {
	switch source {
	case config.SourceResearchGate:
		return ResearchGateExtractor{}
	case config.SourceGoogleScholar:
		return ScholarExtractor{}
	case config.SourceLinkedIn:
		return LinkedInExtractor{}
	default:
		return nil
	}
}
