package githubstats

import (
	"context"
	"sort"
	"time"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/logfields"
	"git.home.luguber.info/inful/dashboard/internal/metrics"
	"git.home.luguber.info/inful/dashboard/internal/observability"
	"git.home.luguber.info/inful/dashboard/internal/retry"
	"git.home.luguber.info/inful/dashboard/internal/scrape"
)

// LanguageCount pairs a language with the number of repositories using it.
type LanguageCount struct {
	Language string
	Repos    int
}

// Stats is the aggregated repository statistics payload.
type Stats struct {
	PublicRepos int
	Stars       int
	Forks       int
	Languages   []LanguageCount // sorted by repo count desc, then name
}

// Fetcher retrieves and aggregates GitHub statistics with the same
// retry/timeout/soft-fail contract as the profile fetcher.
type Fetcher struct {
	client   *Client
	cfg      config.GitHubConfig
	policy   retry.Policy
	recorder metrics.Recorder

	sleep func(ctx context.Context, d time.Duration)
}

// NewFetcher builds a stats fetcher; rec may be nil.
func NewFetcher(gh config.GitHubConfig, api config.APIConfig, rec metrics.Recorder) *Fetcher {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Fetcher{
		client:   NewClient(gh, api),
		cfg:      gh,
		policy:   retry.FromAPIConfig(api),
		recorder: rec,
		sleep: func(ctx context.Context, d time.Duration) {
			if d <= 0 {
				return
			}
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// Fetch aggregates stats for the configured username. When both display
// toggles are off the API is not called at all and the result reports
// unavailable with a skip reason.
func (f *Fetcher) Fetch(ctx context.Context) (Stats, scrape.Result) {
	source := config.SourceGitHub
	ctx = observability.WithSource(ctx, string(source))

	if !f.cfg.Enabled() {
		f.recorder.IncFetchResult(string(source), metrics.ResultSkipped)
		return Stats{}, scrape.Unavailable(source, "github stats disabled")
	}

	var lastErr error
	attempts := f.policy.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			f.recorder.IncFetchRetry(string(source))
			f.sleep(ctx, f.policy.Delay(attempt-1))
		}
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		repos, err := f.client.listRepos(ctx, f.cfg.Username)
		f.recorder.ObserveFetchDuration(string(source), time.Since(start), err == nil)
		if err != nil {
			lastErr = err
			observability.WarnContext(ctx, "GitHub stats attempt failed",
				logfields.Attempt(attempt),
				logfields.Error(err))
			continue
		}

		stats := aggregate(repos, f.cfg)
		f.recorder.IncFetchResult(string(source), metrics.ResultAvailable)
		return stats, scrape.Result{Source: source, Status: scrape.StatusAvailable}
	}

	reason := "all fetch attempts failed"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	f.recorder.IncFetchResult(string(source), metrics.ResultUnavailable)
	return Stats{}, scrape.Unavailable(source, reason)
}

func aggregate(repos []apiRepo, cfg config.GitHubConfig) Stats {
	var s Stats
	langs := map[string]int{}
	for _, r := range repos {
		if r.Fork {
			continue
		}
		s.PublicRepos++
		s.Stars += r.StargazersCount
		s.Forks += r.ForksCount
		if cfg.ShowLanguages && r.Language != "" {
			langs[r.Language]++
		}
	}
	for lang, n := range langs {
		s.Languages = append(s.Languages, LanguageCount{Language: lang, Repos: n})
	}
	sort.Slice(s.Languages, func(i, j int) bool {
		if s.Languages[i].Repos != s.Languages[j].Repos {
			return s.Languages[i].Repos > s.Languages[j].Repos
		}
		return s.Languages[i].Language < s.Languages[j].Language
	})
	return s
}
