package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/githubstats"
	"git.home.luguber.info/inful/dashboard/internal/scrape"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func testConfig(sections ...string) *config.Config {
	cfg := &config.Config{
		Profiles: map[string]string{},
		Sections: map[string]bool{},
		Manual: config.ManualData{
			Name:        "Jane Doe",
			Institution: "Coastal University",
			Department:  "Oceanography",
			ResearchInterests: []string{
				"Ocean Current Analysis",
				"Data Visualization",
			},
			CurrentProjects: []string{"Drifter Tracking"},
			Education: []config.Education{
				{Institution: "Coastal University", Degree: "Ph.D.", Location: "Port City"},
			},
		},
	}
	for _, s := range sections {
		cfg.Sections[s] = true
	}
	return cfg
}

func availableResult(source config.Source, m scrape.Metrics) scrape.Result {
	return scrape.Result{Source: source, Status: scrape.StatusAvailable, Metrics: m}
}

func TestRenderAllSectionsDisabled(t *testing.T) {
	doc, err := Render(Input{Config: testConfig(), Now: testNow}, "")
	require.NoError(t, err)

	require.Contains(t, doc.Text, "# Jane Doe")
	require.Contains(t, doc.Text, BeginMarker(SectionLastUpdated))
	for _, name := range config.KnownSections {
		require.NotContains(t, doc.Text, BeginMarker(name))
		require.Equal(t, SectionDisabled, doc.Sections[name])
	}
}

func TestRenderDeterministic(t *testing.T) {
	in := Input{
		Config: testConfig(config.SectionAbout, config.SectionResearchInterests, config.SectionEducation, config.SectionLinks),
		Now:    testNow,
	}
	first, err := Render(in, "")
	require.NoError(t, err)
	second, err := Render(in, "")
	require.NoError(t, err)
	require.Equal(t, first.Text, second.Text)

	// Re-rendering its own output must also be a fixed point.
	third, err := Render(in, first.Text)
	require.NoError(t, err)
	require.Equal(t, first.Text, third.Text)
}

func TestRenderResearchInterestsOrder(t *testing.T) {
	doc, err := Render(Input{Config: testConfig(config.SectionResearchInterests), Now: testNow}, "")
	require.NoError(t, err)

	i := strings.Index(doc.Text, "- Ocean Current Analysis")
	j := strings.Index(doc.Text, "- Data Visualization")
	require.Greater(t, i, -1)
	require.Greater(t, j, i, "interests must keep config order")
}

func TestRenderPreservesUnmanagedContent(t *testing.T) {
	prev := strings.Join([]string{
		"# Jane Doe",
		"",
		"My hand-written introduction stays put.",
		"",
		BeginMarker(config.SectionAbout),
		"stale about content",
		EndMarker(config.SectionAbout),
		"",
		"A closing note below the managed block.",
		"",
	}, "\n")

	doc, err := Render(Input{Config: testConfig(config.SectionAbout), Now: testNow}, prev)
	require.NoError(t, err)

	require.Contains(t, doc.Text, "My hand-written introduction stays put.")
	require.Contains(t, doc.Text, "A closing note below the managed block.")
	require.NotContains(t, doc.Text, "stale about content")
	require.Contains(t, doc.Text, "Jane Doe — Oceanography, Coastal University")
}

func TestRenderDisabledBlockCollapses(t *testing.T) {
	prev := strings.Join([]string{
		"# Jane Doe",
		"",
		BeginMarker(config.SectionMetrics),
		"- **Publications**: 12",
		EndMarker(config.SectionMetrics),
		"",
	}, "\n")

	doc, err := Render(Input{Config: testConfig(config.SectionAbout), Now: testNow}, prev)
	require.NoError(t, err)

	require.NotContains(t, doc.Text, BeginMarker(config.SectionMetrics))
	require.NotContains(t, doc.Text, "Publications")
}

func TestRenderMetricsUnavailablePlaceholder(t *testing.T) {
	results := map[config.Source]scrape.Result{
		config.SourceResearchGate:  scrape.Unavailable(config.SourceResearchGate, "blocked"),
		config.SourceGoogleScholar: scrape.Unavailable(config.SourceGoogleScholar, "timeout"),
	}
	doc, err := Render(Input{Config: testConfig(config.SectionMetrics), Results: results, Now: testNow}, "")
	require.NoError(t, err)

	require.Equal(t, SectionUnavailable, doc.Sections[config.SectionMetrics])
	require.Contains(t, doc.Text, unavailablePlaceholder)
	require.Contains(t, doc.Text, BeginMarker(config.SectionMetrics))
}

func TestRenderMetricsFallbacks(t *testing.T) {
	results := map[config.Source]scrape.Result{
		config.SourceResearchGate:  availableResult(config.SourceResearchGate, scrape.Metrics{Publications: 42}),
		config.SourceGoogleScholar: availableResult(config.SourceGoogleScholar, scrape.Metrics{Citations: 310, HIndex: 9, I10Index: 7}),
	}
	doc, err := Render(Input{Config: testConfig(config.SectionMetrics), Results: results, Now: testNow}, "")
	require.NoError(t, err)

	require.Equal(t, SectionRendered, doc.Sections[config.SectionMetrics])
	require.Contains(t, doc.Text, "- **Publications**: 42")
	require.Contains(t, doc.Text, "- **Citations**: 310")
	require.Contains(t, doc.Text, "- **H-index**: 9")
	require.Contains(t, doc.Text, "- **i10-index**: 7")
}

func TestRenderMetricsPartialSource(t *testing.T) {
	// Scholar down, ResearchGate up: section renders with what it has.
	results := map[config.Source]scrape.Result{
		config.SourceResearchGate:  availableResult(config.SourceResearchGate, scrape.Metrics{Publications: 12, Citations: 80}),
		config.SourceGoogleScholar: scrape.Unavailable(config.SourceGoogleScholar, "captcha"),
	}
	doc, err := Render(Input{Config: testConfig(config.SectionMetrics), Results: results, Now: testNow}, "")
	require.NoError(t, err)

	require.Equal(t, SectionRendered, doc.Sections[config.SectionMetrics])
	require.Contains(t, doc.Text, "- **Publications**: 12")
	require.Contains(t, doc.Text, "- **Citations**: 80")
	require.Contains(t, doc.Text, "- **i10-index**: N/A")
}

func TestRenderLinks(t *testing.T) {
	cfg := testConfig(config.SectionLinks)
	cfg.Profiles = map[string]string{
		string(config.SourceGoogleScholar): "https://scholar.google.com/citations?user=x",
		string(config.SourceResearchGate):  "https://www.researchgate.net/profile/Jane-Doe",
	}
	cfg.GitHub.Username = "janedoe"

	doc, err := Render(Input{Config: cfg, Now: testNow}, "")
	require.NoError(t, err)

	rg := strings.Index(doc.Text, "[ResearchGate]")
	gs := strings.Index(doc.Text, "[Google Scholar]")
	gh := strings.Index(doc.Text, "[GitHub](https://github.com/janedoe)")
	require.Greater(t, rg, -1)
	require.Greater(t, gs, rg, "links must keep canonical order")
	require.Greater(t, gh, gs)
	require.NotContains(t, doc.Text, "[LinkedIn]", "unconfigured profiles are omitted")
}

func TestRenderEducation(t *testing.T) {
	doc, err := Render(Input{Config: testConfig(config.SectionEducation), Now: testNow}, "")
	require.NoError(t, err)

	require.Contains(t, doc.Text, "- **Coastal University**")
	require.Contains(t, doc.Text, "  - Ph.D., Port City")
}

func TestRenderGitHubStats(t *testing.T) {
	cfg := testConfig(config.SectionGitHubStats)
	cfg.GitHub = config.GitHubConfig{Username: "janedoe", ShowStats: true, ShowLanguages: true, Theme: "radical"}

	results := map[config.Source]scrape.Result{
		config.SourceGitHub: {Source: config.SourceGitHub, Status: scrape.StatusAvailable},
	}
	stats := githubstats.Stats{
		PublicRepos: 7,
		Stars:       120,
		Forks:       15,
		Languages: []githubstats.LanguageCount{
			{Language: "Go", Repos: 4},
			{Language: "Python", Repos: 2},
		},
	}
	doc, err := Render(Input{Config: cfg, Results: results, Stats: stats, Now: testNow}, "")
	require.NoError(t, err)

	require.Contains(t, doc.Text, "github-readme-stats.vercel.app/api?username=janedoe")
	require.Contains(t, doc.Text, "- **Public repositories**: 7")
	require.Contains(t, doc.Text, "- **Stars**: 120")
	require.Contains(t, doc.Text, "- **Top languages**: Go (4), Python (2)")
}

func TestRenderGitHubStatsUnavailable(t *testing.T) {
	cfg := testConfig(config.SectionGitHubStats)
	cfg.GitHub = config.GitHubConfig{Username: "janedoe", ShowStats: true}

	results := map[config.Source]scrape.Result{
		config.SourceGitHub: scrape.Unavailable(config.SourceGitHub, "rate limited"),
	}
	doc, err := Render(Input{Config: cfg, Results: results, Now: testNow}, "")
	require.NoError(t, err)

	require.Contains(t, doc.Text, unavailablePlaceholder)
	require.NotContains(t, doc.Text, "- **Stars**")
}

func TestRenderAppendsNewSectionsInOrder(t *testing.T) {
	prev := strings.Join([]string{
		"# Jane Doe",
		"",
		BeginMarker(config.SectionLinks),
		"old links",
		EndMarker(config.SectionLinks),
		"",
	}, "\n")

	cfg := testConfig(config.SectionAbout, config.SectionEducation, config.SectionLinks)
	doc, err := Render(Input{Config: cfg, Now: testNow}, prev)
	require.NoError(t, err)

	links := strings.Index(doc.Text, BeginMarker(config.SectionLinks))
	about := strings.Index(doc.Text, BeginMarker(config.SectionAbout))
	edu := strings.Index(doc.Text, BeginMarker(config.SectionEducation))

	// Existing block stays where the author left it; new sections append after.
	require.Greater(t, about, links)
	require.Greater(t, edu, about)
}

func TestRenderTimestampFooter(t *testing.T) {
	doc, err := Render(Input{Config: testConfig(), Now: testNow}, "")
	require.NoError(t, err)
	require.Contains(t, doc.Text, "*Last updated: 2026-03-14 09:26:53*")
}
