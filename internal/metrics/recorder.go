package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Publish outcome labels.
const (
	OutcomeCreated      = "created"
	OutcomeInvalid      = "invalid"
	OutcomeStorageError = "storage_error"
)

// Recorder exposes the pipeline's Prometheus metrics. A nil *Recorder is a
// valid no-op so callers do not have to guard every observation.
type Recorder struct {
	registry *prom.Registry

	publishOutcomes     *prom.CounterVec
	degradedGenerations prom.Counter
	generationDuration  prom.Histogram
	sanitizeDuration    prom.Histogram
	pageViews           prom.Counter
	httpRequests        *prom.CounterVec
}

// NewRecorder constructs and registers the pipeline metrics on the provided
// registry, creating a fresh one when nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{registry: reg}

	r.publishOutcomes = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pagesmith",
		Name:      "publish_outcomes_total",
		Help:      "Publish results by terminal outcome",
	}, []string{"outcome"})
	r.degradedGenerations = prom.NewCounter(prom.CounterOpts{
		Namespace: "pagesmith",
		Name:      "degraded_generations_total",
		Help:      "Generations that fell back to the static document",
	})
	r.generationDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "pagesmith",
		Name:      "generation_duration_seconds",
		Help:      "Duration of upstream generation calls including fallbacks",
		Buckets:   prom.DefBuckets,
	})
	r.sanitizeDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "pagesmith",
		Name:      "sanitize_duration_seconds",
		Help:      "Duration of document sanitization",
		Buckets:   prom.DefBuckets,
	})
	r.pageViews = prom.NewCounter(prom.CounterOpts{
		Namespace: "pagesmith",
		Name:      "page_views_total",
		Help:      "Recorded page renders",
	})
	r.httpRequests = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pagesmith",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	reg.MustRegister(
		r.publishOutcomes,
		r.degradedGenerations,
		r.generationDuration,
		r.sanitizeDuration,
		r.pageViews,
		r.httpRequests,
	)

	return r
}

// Registry returns the backing registry for exposition.
func (r *Recorder) Registry() *prom.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObservePublish counts a terminal publish outcome.
func (r *Recorder) ObservePublish(outcome string) {
	if r == nil {
		return
	}
	r.publishOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveGeneration records an upstream generation round trip.
func (r *Recorder) ObserveGeneration(elapsed time.Duration, degraded bool) {
	if r == nil {
		return
	}
	r.generationDuration.Observe(elapsed.Seconds())
	if degraded {
		r.degradedGenerations.Inc()
	}
}

// ObserveSanitize records a sanitization pass.
func (r *Recorder) ObserveSanitize(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.sanitizeDuration.Observe(elapsed.Seconds())
}

// ObservePageView counts a successful page render.
func (r *Recorder) ObservePageView() {
	if r == nil {
		return
	}
	r.pageViews.Inc()
}

// ObserveHTTPRequest counts a completed HTTP request.
func (r *Recorder) ObserveHTTPRequest(method, route, status string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
}
