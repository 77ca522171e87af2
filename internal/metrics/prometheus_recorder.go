package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	fetchDuration       *prom.HistogramVec
	fetchResults        *prom.CounterVec
	fetchRetries        *prom.CounterVec
	runDuration         prom.Histogram
	runOutcomes         *prom.CounterVec
	sectionsUnavailable prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.fetchDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "dashboard",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of individual profile/API fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"source", "result"})
		pr.fetchResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dashboard",
			Name:      "fetch_results_total",
			Help:      "Fetch results by source and outcome",
		}, []string{"source", "result"})
		pr.fetchRetries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dashboard",
			Name:      "fetch_retries_total",
			Help:      "Total fetch retries (transient failures)",
		}, []string{"source"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "dashboard",
			Name:      "run_duration_seconds",
			Help:      "Total update run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.runOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "dashboard",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by whether the document changed",
		}, []string{"changed"})
		pr.sectionsUnavailable = prom.NewGauge(prom.GaugeOpts{
			Namespace: "dashboard",
			Name:      "sections_unavailable",
			Help:      "Sections that rendered an unavailable placeholder in the last run",
		})
		reg.MustRegister(pr.fetchDuration, pr.fetchResults, pr.fetchRetries, pr.runDuration, pr.runOutcomes, pr.sectionsUnavailable)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveFetchDuration(source string, d time.Duration, success bool) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.fetchDuration.WithLabelValues(source, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchResult(source string, result ResultLabel) {
	if p == nil || p.fetchResults == nil {
		return
	}
	p.fetchResults.WithLabelValues(source, string(result)).Inc()
}

func (p *PrometheusRecorder) IncFetchRetry(source string) {
	if p == nil || p.fetchRetries == nil {
		return
	}
	p.fetchRetries.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(changed bool) {
	if p == nil || p.runOutcomes == nil {
		return
	}
	label := "false"
	if changed {
		label = "true"
	}
	p.runOutcomes.WithLabelValues(label).Inc()
}

func (p *PrometheusRecorder) SetSectionsUnavailable(n int) {
	if p == nil || p.sectionsUnavailable == nil {
		return
	}
	p.sectionsUnavailable.Set(float64(n))
}
