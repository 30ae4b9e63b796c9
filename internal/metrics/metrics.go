// Package metrics counts controller activity with Prometheus collectors fed from the
// event bus. The dashboard panel reads them back through Snapshot.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
)

const namespace = "searchdeck"

// Metrics owns a private registry so several instances can coexist in tests
type Metrics struct {
	registry *prometheus.Registry

	queriesSubmitted prometheus.Counter
	locationAdopted  prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	fetches          *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	staleDiscarded   prometheus.Counter
	persistFailures  *prometheus.CounterVec
	resultsOpened    prometheus.Counter
	recentCleared    prometheus.Counter
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		queriesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "submitted_total",
			Help:      "Total number of submitted queries",
		}),
		locationAdopted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "location_adopted_total",
			Help:      "Total number of times query state was taken from the location",
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by outcome",
		}, []string{"result"}), // hit, miss, revalidate, coalesced
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "fetches_total",
			Help:      "Completed search fetches by status",
		}, []string{"status"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "fetch_duration_seconds",
			Help:      "Search fetch duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		staleDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "stale_discarded_total",
			Help:      "Responses that arrived after their key stopped being active",
		}),
		persistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recent",
			Name:      "persist_failures_total",
			Help:      "Recent-search store failures by operation",
		}, []string{"op"}),
		resultsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "results",
			Name:      "opened_total",
			Help:      "Results opened in the browser",
		}),
		recentCleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recent",
			Name:      "cleared_total",
			Help:      "Times the recent-search list was cleared",
		}),
	}
}

// Subscribe feeds the collectors from bus and returns a function that detaches them
func (m *Metrics) Subscribe(bus eventbus.EventBus) func() {
	unsubs := []func(){
		bus.Subscribe(domain.EventQuerySubmitted, func(eventbus.DomainEvent) { m.queriesSubmitted.Inc() }),
		bus.Subscribe(domain.EventLocationAdopted, func(eventbus.DomainEvent) { m.locationAdopted.Inc() }),
		bus.Subscribe(domain.EventCacheHit, func(eventbus.DomainEvent) { m.cacheLookups.WithLabelValues("hit").Inc() }),
		bus.Subscribe(domain.EventFetchCoalesced, func(eventbus.DomainEvent) { m.cacheLookups.WithLabelValues("coalesced").Inc() }),
		bus.Subscribe(domain.EventFetchStarted, func(e eventbus.DomainEvent) {
			if started, ok := e.(domain.FetchStartedEvent); ok && started.Revalidate {
				m.cacheLookups.WithLabelValues("revalidate").Inc()
				return
			}
			m.cacheLookups.WithLabelValues("miss").Inc()
		}),
		bus.Subscribe(domain.EventFetchCompleted, func(e eventbus.DomainEvent) {
			m.fetches.WithLabelValues("ok").Inc()
			if done, ok := e.(domain.FetchCompletedEvent); ok {
				m.fetchDuration.Observe(done.Duration.Seconds())
			}
		}),
		bus.Subscribe(domain.EventFetchFailed, func(e eventbus.DomainEvent) {
			m.fetches.WithLabelValues("error").Inc()
			if failed, ok := e.(domain.FetchFailedEvent); ok {
				m.fetchDuration.Observe(failed.Duration.Seconds())
			}
		}),
		bus.Subscribe(domain.EventStaleDiscarded, func(eventbus.DomainEvent) { m.staleDiscarded.Inc() }),
		bus.Subscribe(domain.EventPersistFailed, func(e eventbus.DomainEvent) {
			op := "unknown"
			if failed, ok := e.(domain.PersistFailedEvent); ok {
				op = failed.Op
			}
			m.persistFailures.WithLabelValues(op).Inc()
		}),
		bus.Subscribe(domain.EventResultOpened, func(eventbus.DomainEvent) { m.resultsOpened.Inc() }),
		bus.Subscribe(domain.EventRecentCleared, func(eventbus.DomainEvent) { m.recentCleared.Inc() }),
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Snapshot is a point-in-time reading for the dashboard
type Snapshot struct {
	Submitted       int
	LocationAdopted int
	CacheHits       int
	CacheMisses     int
	Revalidations   int
	Coalesced       int
	Fetches         int
	FetchFailures   int
	StaleDiscarded  int
	PersistFailures int
	ResultsOpened   int
	RecentCleared   int
	AvgFetch        time.Duration
	TakenAt         time.Time
}

// HitRatio returns cache hits over all lookups, or 0 with no lookups
func (s Snapshot) HitRatio() float64 {
	total := s.CacheHits + s.CacheMisses + s.Revalidations + s.Coalesced
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// Snapshot gathers the registry into a Snapshot
func (m *Metrics) Snapshot() (Snapshot, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Snapshot{}, fmt.Errorf("gathering metrics: %w", err)
	}

	snap := Snapshot{TakenAt: time.Now()}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_query_submitted_total":
			snap.Submitted = counterSum(mf, "", "")
		case namespace + "_query_location_adopted_total":
			snap.LocationAdopted = counterSum(mf, "", "")
		case namespace + "_cache_lookups_total":
			snap.CacheHits = counterSum(mf, "result", "hit")
			snap.CacheMisses = counterSum(mf, "result", "miss")
			snap.Revalidations = counterSum(mf, "result", "revalidate")
			snap.Coalesced = counterSum(mf, "result", "coalesced")
		case namespace + "_search_fetches_total":
			snap.Fetches = counterSum(mf, "", "")
			snap.FetchFailures = counterSum(mf, "status", "error")
		case namespace + "_search_fetch_duration_seconds":
			for _, metric := range mf.GetMetric() {
				h := metric.GetHistogram()
				if h.GetSampleCount() > 0 {
					avg := h.GetSampleSum() / float64(h.GetSampleCount())
					snap.AvgFetch = time.Duration(avg * float64(time.Second))
				}
			}
		case namespace + "_search_stale_discarded_total":
			snap.StaleDiscarded = counterSum(mf, "", "")
		case namespace + "_recent_persist_failures_total":
			snap.PersistFailures = counterSum(mf, "", "")
		case namespace + "_results_opened_total":
			snap.ResultsOpened = counterSum(mf, "", "")
		case namespace + "_recent_cleared_total":
			snap.RecentCleared = counterSum(mf, "", "")
		}
	}
	return snap, nil
}

// counterSum adds up counter values, restricted to one label value when label is set
func counterSum(mf *dto.MetricFamily, label, value string) int {
	var total float64
	for _, metric := range mf.GetMetric() {
		if label != "" && !hasLabel(metric, label, value) {
			continue
		}
		total += metric.GetCounter().GetValue()
	}
	return int(total)
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a /metrics listener on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics listener shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return nil
}
