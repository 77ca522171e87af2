package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/logfields"
	"git.home.luguber.info/inful/dashboard/internal/metrics"
	"git.home.luguber.info/inful/dashboard/internal/observability"
	"git.home.luguber.info/inful/dashboard/internal/retry"
)

// maxBodyBytes bounds how much of a profile page is read; the metrics live in
// the first part of the document on every supported site.
const maxBodyBytes = 4 << 20

// Extractor pulls metrics out of a fetched page body. Implementations are
// site-specific and must treat missing markup as an error (soft failure),
// never panic.
type Extractor interface {
	Source() config.Source
	Extract(body []byte) (Metrics, error)
}

// Fetcher retrieves profile pages with a bounded retry budget. All failures
// are absorbed into an unavailable Result; it never returns an error because
// a degraded section must not abort the run.
type Fetcher struct {
	client    *http.Client
	policy    retry.Policy
	userAgent string
	recorder  metrics.Recorder

	// sleep is swappable for tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration)
}

// NewFetcher builds a Fetcher from the api settings block.
func NewFetcher(api config.APIConfig, rec metrics.Recorder) *Fetcher {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Fetcher{
		client:    &http.Client{Timeout: api.TimeoutOrDefault()},
		policy:    retry.FromAPIConfig(api),
		userAgent: api.UserAgentOrDefault(),
		recorder:  rec,
		sleep:     sleepCtx,
	}
}

// Fetch retrieves url and runs the extractor over the body. The retry budget
// applies to transport errors and non-2xx statuses; an extraction miss is a
// soft failure and is not retried (the markup will not change between
// attempts).
func (f *Fetcher) Fetch(ctx context.Context, ex Extractor, url string) Result {
	source := ex.Source()
	ctx = observability.WithSource(ctx, string(source))

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
		body, err := f.get(ctx, url)
		f.recorder.ObserveFetchDuration(string(source), time.Since(start), err == nil)
		if err != nil {
			lastErr = err
			observability.WarnContext(ctx, "Fetch attempt failed",
				logfields.URL(url),
				logfields.Attempt(attempt),
				logfields.Error(err))
			continue
		}

		m, err := ex.Extract(body)
		if err != nil {
			observability.WarnContext(ctx, "Extraction failed, marking source unavailable",
				logfields.URL(url),
				logfields.Error(err))
			f.recorder.IncFetchResult(string(source), metrics.ResultUnavailable)
			return Unavailable(source, err.Error())
		}

		f.recorder.IncFetchResult(string(source), metrics.ResultAvailable)
		return Result{Source: source, Status: StatusAvailable, Metrics: m}
	}

	reason := "all fetch attempts failed"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	observability.WarnContext(ctx, "Source unavailable after retries",
		logfields.URL(url),
		logfields.Error(lastErr))
	f.recorder.IncFetchResult(string(source), metrics.ResultUnavailable)
	return Unavailable(source, reason)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
