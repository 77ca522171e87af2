package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

func daemonConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Sections: map[string]bool{
			config.SectionAbout: true,
			config.SectionLinks: true,
		},
		Manual: config.ManualData{Name: "Jane Doe"},
		Output: config.OutputConfig{ReadmePath: filepath.Join(t.TempDir(), "README.md")},
		Daemon: &config.DaemonConfig{
			UpdateFrequency: "daily",
			DataDir:         t.TempDir(),
		},
	}
}

func TestNewRequiresDaemonBlock(t *testing.T) {
	cfg := daemonConfig(t)
	cfg.Daemon = nil
	_, err := New(cfg, "")
	require.Error(t, err)
}

func TestRunOnceRecordsHistory(t *testing.T) {
	cfg := daemonConfig(t)
	d, err := New(cfg, "")
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	require.NoError(t, d.RunOnce(context.Background()))

	_, err = os.Stat(cfg.Output.ReadmePath)
	require.NoError(t, err, "the run must have written the document")

	recs, err := d.store.Recent(1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].Changed)
	require.Equal(t, "rendered", recs[0].Sections[config.SectionAbout])
}

func TestRunOnceIdempotent(t *testing.T) {
	cfg := daemonConfig(t)
	d, err := New(cfg, "")
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	require.NoError(t, d.RunOnce(context.Background()))
	require.NoError(t, d.RunOnce(context.Background()))

	recs, err := d.store.Recent(10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// The store orders by second-granularity timestamps, so count instead of
	// relying on which run sorts first.
	changed := 0
	for _, r := range recs {
		if r.Changed {
			changed++
		}
	}
	require.Equal(t, 1, changed, "only the first run may report a change")
}

func TestReloadSwapsConfig(t *testing.T) {
	cfg := daemonConfig(t)
	d, err := New(cfg, "")
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	next := daemonConfig(t)
	next.Manual.Name = "New Name"
	require.NoError(t, d.Reload(next))
	require.Equal(t, "New Name", d.currentConfig().Manual.Name)
}

func TestReloadRejectsMissingDaemonBlock(t *testing.T) {
	cfg := daemonConfig(t)
	d, err := New(cfg, "")
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	next := daemonConfig(t)
	next.Daemon = nil
	require.Error(t, d.Reload(next))
	require.Equal(t, "Jane Doe", d.currentConfig().Manual.Name, "a rejected reload keeps the old config")
}
