// Package dashboard sequences one update run: load the previous document,
// fetch the enabled sources, render, and write the result only when it
// changed. Fetch failures degrade individual sections; only config, render,
// and final-write errors abort a run.
package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/dashboard/internal/config"
	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
	"git.home.luguber.info/inful/dashboard/internal/githubstats"
	"git.home.luguber.info/inful/dashboard/internal/logfields"
	"git.home.luguber.info/inful/dashboard/internal/metrics"
	"git.home.luguber.info/inful/dashboard/internal/observability"
	"git.home.luguber.info/inful/dashboard/internal/render"
	"git.home.luguber.info/inful/dashboard/internal/scrape"
)

// sectionSources maps each section to the remote sources it renders from.
// Sections absent here are manual-data only and need no network I/O.
var sectionSources = map[string][]config.Source{
	config.SectionAbout:   {config.SourceLinkedIn},
	config.SectionMetrics: {config.SourceResearchGate, config.SourceGoogleScholar},
}

// Outcome is the result of one run.
type Outcome struct {
	RunID      string
	Changed    bool
	Document   string
	Sections   map[string]render.SectionStatus
	StartedAt  time.Time
	FinishedAt time.Time
}

// UnavailableSections counts sections that rendered a placeholder.
func (o Outcome) UnavailableSections() int {
	n := 0
	for _, st := range o.Sections {
		if st == render.SectionUnavailable {
			n++
		}
	}
	return n
}

// Orchestrator wires the fetchers and renderer for a single logical run.
type Orchestrator struct {
	cfg       *config.Config
	fetcher   *scrape.Fetcher
	ghFetcher *githubstats.Fetcher
	recorder  metrics.Recorder

	now func() time.Time
}

// New builds an orchestrator; rec may be nil.
func New(cfg *config.Config, rec metrics.Recorder) *Orchestrator {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Orchestrator{
		cfg:       cfg,
		fetcher:   scrape.NewFetcher(cfg.API, rec),
		ghFetcher: githubstats.NewFetcher(cfg.GitHub, cfg.API, rec),
		recorder:  rec,
		now:       time.Now,
	}
}

// Run executes one update. The returned error is fatal (render or final
// write); all fetch-level failures are absorbed into Unavailable sections.
func (o *Orchestrator) Run(ctx context.Context) (Outcome, error) {
	runID := uuid.NewString()
	ctx = observability.WithRunID(ctx, runID)
	started := o.now()

	observability.InfoContext(ctx, "Starting dashboard update",
		logfields.Path(o.cfg.Output.ReadmePath))

	prev, err := o.readPrevious()
	if err != nil {
		return Outcome{}, err
	}

	results, stats := o.fetchAll(ctx)

	doc, err := render.Render(render.Input{
		Config:  o.cfg,
		Results: results,
		Stats:   stats,
		Now:     o.now(),
	}, prev)
	if err != nil {
		return Outcome{}, err
	}

	changed := render.MaskSection(doc.Text, render.SectionLastUpdated) !=
		render.MaskSection(prev, render.SectionLastUpdated)

	if changed {
		if err := writeAtomic(o.cfg.Output.ReadmePath, []byte(doc.Text)); err != nil {
			return Outcome{}, err
		}
	}

	finished := o.now()
	outcome := Outcome{
		RunID:      runID,
		Changed:    changed,
		Document:   doc.Text,
		Sections:   doc.Sections,
		StartedAt:  started,
		FinishedAt: finished,
	}

	o.recorder.ObserveRunDuration(finished.Sub(started))
	o.recorder.IncRunOutcome(changed)
	o.recorder.SetSectionsUnavailable(outcome.UnavailableSections())

	observability.InfoContext(ctx, "Dashboard update completed",
		logfields.Changed(changed),
		logfields.DurationMS(float64(finished.Sub(started).Milliseconds())))
	return outcome, nil
}

// neededSources lists the profile sources any enabled section depends on, in
// deterministic order.
func (o *Orchestrator) neededSources() []config.Source {
	seen := map[config.Source]bool{}
	var out []config.Source
	for _, name := range config.KnownSections {
		if !o.cfg.SectionEnabled(name) {
			continue
		}
		for _, src := range sectionSources[name] {
			if seen[src] {
				continue
			}
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

// fetchAll runs all source fetches concurrently. Results land in
// index-addressed slots so no locking is needed beyond the WaitGroup.
func (o *Orchestrator) fetchAll(ctx context.Context) (map[config.Source]scrape.Result, githubstats.Stats) {
	sources := o.neededSources()
	slots := make([]scrape.Result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src config.Source) {
			defer wg.Done()
			url := o.cfg.ProfileURL(src)
			if url == "" {
				slots[i] = scrape.Unavailable(src, "no profile URL configured")
				return
			}
			ex := scrape.ExtractorFor(src)
			if ex == nil {
				slots[i] = scrape.Unavailable(src, "no extractor for source")
				return
			}
			slots[i] = o.fetcher.Fetch(ctx, ex, url)
		}(i, src)
	}

	var stats githubstats.Stats
	var ghResult scrape.Result
	ghNeeded := o.cfg.SectionEnabled(config.SectionGitHubStats)
	if ghNeeded {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, ghResult = o.ghFetcher.Fetch(ctx)
		}()
	}
	wg.Wait()

	results := make(map[config.Source]scrape.Result, len(sources)+1)
	for i, src := range sources {
		results[src] = slots[i]
	}
	if ghNeeded {
		results[config.SourceGitHub] = ghResult
	}
	return results, stats
}

func (o *Orchestrator) readPrevious() (string, error) {
	data, err := os.ReadFile(o.cfg.Output.ReadmePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", apperrors.Wrap(err, apperrors.CategoryFileSystem, apperrors.SeverityFatal, "failed to read existing document").
			WithContext("path", o.cfg.Output.ReadmePath)
	}
	return string(data), nil
}

// writeAtomic writes via a temp file in the destination directory followed by
// rename, so a crashed run never leaves a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dashboard-*.tmp")
	if err != nil {
		return apperrors.WriteFailed(path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return apperrors.WriteFailed(path, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.WriteFailed(path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return apperrors.WriteFailed(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.WriteFailed(path, err)
	}
	return nil
}
