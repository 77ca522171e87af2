package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/render"
)

// testConfig builds a manual-data-only configuration so runs need no network.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Profiles: map[string]string{},
		Sections: map[string]bool{
			config.SectionAbout:             true,
			config.SectionResearchInterests: true,
			config.SectionEducation:         true,
			config.SectionLinks:             true,
		},
		Manual: config.ManualData{
			Name:              "Jane Doe",
			Institution:       "Coastal University",
			ResearchInterests: []string{"Ocean Current Analysis", "Data Visualization"},
			Education: []config.Education{
				{Institution: "Coastal University", Degree: "Ph.D."},
			},
		},
		Output: config.OutputConfig{ReadmePath: filepath.Join(t.TempDir(), "README.md")},
	}
}

func TestRunCreatesDocument(t *testing.T) {
	cfg := testConfig(t)
	o := New(cfg, nil)
	o.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	out, err := o.Run(context.Background())
	require.NoError(t, err)
	require.True(t, out.Changed)
	require.NotEmpty(t, out.RunID)

	data, err := os.ReadFile(cfg.Output.ReadmePath)
	require.NoError(t, err)
	require.Equal(t, out.Document, string(data))
	require.Contains(t, string(data), "# Jane Doe")
	require.Equal(t, render.SectionRendered, out.Sections[config.SectionAbout])

	// Atomic write must not leave temp files behind.
	entries, err := os.ReadDir(filepath.Dir(cfg.Output.ReadmePath))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunUnchangedSecondRun(t *testing.T) {
	cfg := testConfig(t)
	o := New(cfg, nil)

	o.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	first, err := o.Run(context.Background())
	require.NoError(t, err)
	require.True(t, first.Changed)

	// A later run with identical data must not rewrite the file even though
	// the timestamp footer would differ.
	o.now = func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }
	second, err := o.Run(context.Background())
	require.NoError(t, err)
	require.False(t, second.Changed)

	data, err := os.ReadFile(cfg.Output.ReadmePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "2026-03-14", "unchanged runs keep the old timestamp on disk")
}

func TestRunDetectsDataChange(t *testing.T) {
	cfg := testConfig(t)
	o := New(cfg, nil)
	o.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	cfg.Manual.ResearchInterests = append(cfg.Manual.ResearchInterests, "Drifter Tracking")
	out, err := o.Run(context.Background())
	require.NoError(t, err)
	require.True(t, out.Changed)

	data, err := os.ReadFile(cfg.Output.ReadmePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "- Drifter Tracking")
}

func TestRunPreservesManualEdits(t *testing.T) {
	cfg := testConfig(t)
	o := New(cfg, nil)
	o.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output.ReadmePath)
	require.NoError(t, err)
	edited := "A hand-written banner.\n\n" + string(data)
	require.NoError(t, os.WriteFile(cfg.Output.ReadmePath, []byte(edited), 0644))

	out, err := o.Run(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.Document, "A hand-written banner."))
	require.False(t, out.Changed, "re-render of the edited document is a fixed point")

	data, err = os.ReadFile(cfg.Output.ReadmePath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "A hand-written banner."))
}

func TestRunSectionWithoutProfileURLDegrades(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sections[config.SectionMetrics] = true // no profile URLs configured

	o := New(cfg, nil)
	o.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	out, err := o.Run(context.Background())
	require.NoError(t, err, "an unavailable section must not fail the run")
	require.Equal(t, render.SectionUnavailable, out.Sections[config.SectionMetrics])
	require.Equal(t, 1, out.UnavailableSections())
	require.Contains(t, out.Document, "_Data temporarily unavailable._")
}

func TestRunFailsOnCorruptMarkers(t *testing.T) {
	cfg := testConfig(t)
	corrupt := render.BeginMarker(config.SectionAbout) + "\nnever closed\n"
	require.NoError(t, os.WriteFile(cfg.Output.ReadmePath, []byte(corrupt), 0644))

	o := New(cfg, nil)
	_, err := o.Run(context.Background())
	require.Error(t, err)
}

func TestNeededSources(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sections[config.SectionMetrics] = true
	o := New(cfg, nil)

	sources := o.neededSources()
	require.Equal(t, []config.Source{
		config.SourceLinkedIn,
		config.SourceResearchGate,
		config.SourceGoogleScholar,
	}, sources)
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
	require.NoError(t, writeAtomic(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}
