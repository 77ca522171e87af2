package render

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/githubstats"
	"git.home.luguber.info/inful/dashboard/internal/scrape"
)

// SectionLastUpdated is the managed footer block carrying the run timestamp.
// It is always rendered and excluded from change detection.
const SectionLastUpdated = "last_updated"

// unavailablePlaceholder is rendered when every source a section depends on
// failed for the run.
const unavailablePlaceholder = "_Data temporarily unavailable._"

// Input bundles everything a render needs. Identical inputs produce
// byte-identical output.
type Input struct {
	Config  *config.Config
	Results map[config.Source]scrape.Result
	Stats   githubstats.Stats
	Now     time.Time
}

// SectionStatus describes how one section rendered.
type SectionStatus string

const (
	SectionRendered    SectionStatus = "rendered"
	SectionUnavailable SectionStatus = "unavailable"
	SectionDisabled    SectionStatus = "disabled"
)

// Document is the render output plus per-section bookkeeping for the
// orchestrator's outcome report.
type Document struct {
	Text     string
	Sections map[string]SectionStatus
}

// Render merges the previous document with freshly generated managed blocks.
// Only content between marker pairs is replaced; disabled or unknown blocks
// collapse; enabled sections missing from the previous document are appended
// in canonical order. An empty previous document produces a full skeleton.
func Render(in Input, prev string) (Document, error) {
	doc := Document{Sections: map[string]SectionStatus{}}

	blocks := map[string]string{}
	for _, name := range config.KnownSections {
		if !in.Config.SectionEnabled(name) {
			doc.Sections[name] = SectionDisabled
			continue
		}
		content, available := sectionContent(name, in)
		if !available {
			content = unavailablePlaceholder
			doc.Sections[name] = SectionUnavailable
		} else {
			doc.Sections[name] = SectionRendered
		}
		blocks[name] = content
	}
	blocks[SectionLastUpdated] = fmt.Sprintf("*Last updated: %s*", in.Now.UTC().Format("2006-01-02 15:04:05"))

	segs, err := parseSegments(prev)
	if err != nil {
		return Document{}, err
	}

	var parts []string
	seen := map[string]bool{}
	for _, s := range segs {
		if s.section == "" {
			parts = append(parts, s.content)
			continue
		}
		content, enabled := blocks[s.section]
		if !enabled {
			// Disabled or unknown: the marker pair and its content are dropped.
			seen[s.section] = true
			continue
		}
		seen[s.section] = true
		parts = append(parts, managedBlock(s.section, content))
	}

	if strings.TrimSpace(prev) == "" {
		parts = []string{fmt.Sprintf("# %s", in.Config.Manual.Name), ""}
	}

	// Append enabled sections the previous document did not carry.
	for _, name := range append(append([]string{}, config.KnownSections...), SectionLastUpdated) {
		content, enabled := blocks[name]
		if !enabled || seen[name] {
			continue
		}
		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) != "" {
			parts = append(parts, "")
		}
		parts = append(parts, managedBlock(name, content), "")
	}

	text := strings.Join(parts, "\n")
	text = strings.TrimRight(text, "\n") + "\n"
	doc.Text = text
	return doc, nil
}

// sectionContent builds the inner markdown of one enabled section and reports
// whether its data sources were available.
func sectionContent(name string, in Input) (string, bool) {
	switch name {
	case config.SectionAbout:
		return aboutContent(in), true
	case config.SectionMetrics:
		return metricsContent(in)
	case config.SectionResearchInterests:
		return bulletList(headingFor(name), in.Config.Manual.ResearchInterests), true
	case config.SectionCurrentProjects:
		return bulletList(headingFor(name), in.Config.Manual.CurrentProjects), true
	case config.SectionEducation:
		return educationContent(in), true
	case config.SectionLinks:
		return linksContent(in), true
	case config.SectionGitHubStats:
		return githubStatsContent(in)
	default:
		return "", false
	}
}

func aboutContent(in Input) string {
	m := in.Config.Manual
	var b strings.Builder
	b.WriteString(headingFor(config.SectionAbout))
	b.WriteString("\n")
	switch {
	case m.Institution != "" && m.Department != "":
		fmt.Fprintf(&b, "%s — %s, %s", m.Name, m.Department, m.Institution)
	case m.Institution != "":
		fmt.Fprintf(&b, "%s — %s", m.Name, m.Institution)
	default:
		b.WriteString(m.Name)
	}
	return b.String()
}

func metricsContent(in Input) (string, bool) {
	rg, rgOK := available(in, config.SourceResearchGate)
	gs, gsOK := available(in, config.SourceGoogleScholar)
	if !rgOK && !gsOK {
		return "", false
	}

	pubs := pickCount(rg.Publications, gs.Publications)
	cites := pickCount(gs.Citations, rg.Citations)
	hIndex := pickCount(gs.HIndex, rg.HIndex)

	var b strings.Builder
	b.WriteString(headingFor(config.SectionMetrics))
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Publications**: %s\n", countOrNA(pubs))
	fmt.Fprintf(&b, "- **Citations**: %s\n", countOrNA(cites))
	fmt.Fprintf(&b, "- **H-index**: %s\n", countOrNA(hIndex))
	fmt.Fprintf(&b, "- **i10-index**: %s", countOrNA(gs.I10Index))
	return b.String(), true
}

func educationContent(in Input) string {
	var b strings.Builder
	b.WriteString(headingFor(config.SectionEducation))
	for _, e := range in.Config.Manual.Education {
		fmt.Fprintf(&b, "\n- **%s**", e.Institution)
		detail := joinNonEmpty(", ", e.Degree, e.Location)
		if detail != "" {
			fmt.Fprintf(&b, "\n  - %s", detail)
		}
	}
	return b.String()
}

// linkLabels maps profile keys to display labels; link order is fixed so the
// output stays deterministic regardless of map iteration.
var linkOrder = []struct {
	source config.Source
	label  string
}{
	{config.SourceResearchGate, "ResearchGate"},
	{config.SourceGoogleScholar, "Google Scholar"},
	{config.SourceLinkedIn, "LinkedIn"},
}

func linksContent(in Input) string {
	var b strings.Builder
	b.WriteString(headingFor(config.SectionLinks))
	for _, l := range linkOrder {
		if url := in.Config.ProfileURL(l.source); url != "" {
			fmt.Fprintf(&b, "\n- [%s](%s)", l.label, url)
		}
	}
	if u := in.Config.GitHub.Username; u != "" {
		fmt.Fprintf(&b, "\n- [GitHub](https://github.com/%s)", u)
	}
	return b.String()
}

func githubStatsContent(in Input) (string, bool) {
	gh := in.Config.GitHub
	var b strings.Builder
	b.WriteString(headingFor(config.SectionGitHubStats))
	b.WriteString("\n")
	if gh.Theme != "" {
		fmt.Fprintf(&b, "![GitHub Stats](https://github-readme-stats.vercel.app/api?username=%s&show_icons=true&theme=%s)\n", gh.Username, gh.Theme)
	}

	if _, ok := available(in, config.SourceGitHub); !ok {
		b.WriteString(unavailablePlaceholder)
		return b.String(), true
	}

	s := in.Stats
	if gh.ShowStats {
		fmt.Fprintf(&b, "- **Public repositories**: %d\n", s.PublicRepos)
		fmt.Fprintf(&b, "- **Stars**: %d\n", s.Stars)
		fmt.Fprintf(&b, "- **Forks**: %d\n", s.Forks)
	}
	if gh.ShowLanguages && len(s.Languages) > 0 {
		b.WriteString("- **Top languages**: ")
		var langs []string
		for i, l := range s.Languages {
			if i >= 5 {
				break
			}
			langs = append(langs, fmt.Sprintf("%s (%d)", l.Language, l.Repos))
		}
		b.WriteString(strings.Join(langs, ", "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func bulletList(heading string, items []string) string {
	var b strings.Builder
	b.WriteString(heading)
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s", item)
	}
	return b.String()
}

func available(in Input, source config.Source) (scrape.Metrics, bool) {
	r, ok := in.Results[source]
	if !ok || !r.Available() {
		return scrape.Metrics{}, false
	}
	return r.Metrics, true
}

func pickCount(primary, fallback int) int {
	if primary > 0 {
		return primary
	}
	return fallback
}

func countOrNA(n int) string {
	if n <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", n)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
