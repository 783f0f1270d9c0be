package metrics

import (
	"net/http"
	"time"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CacheHit   = ports.CacheHit
	CacheMiss  = ports.CacheMiss
	CacheError = ports.CacheError
)

type Registry struct {
	reg            *prometheus.Registry
	Searches       *prometheus.CounterVec
	SearchLatency  prometheus.Histogram
	CacheLookups   *prometheus.CounterVec
	CabinFallbacks prometheus.Counter
	ExcludedOffers prometheus.Counter
	SelectedOffers *prometheus.CounterVec
	PlansGenerated prometheus.Counter
	PlanEmailsSent prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cocoplanner_flight_searches_total"}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cocoplanner_flight_search_seconds",
		Buckets: prometheus.DefBuckets,
	})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cocoplanner_offer_cache_lookups_total"}, []string{"result"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{Name: "cocoplanner_cabin_fallbacks_total"})
	excluded := prometheus.NewCounter(prometheus.CounterOpts{Name: "cocoplanner_excluded_offers_total"})
	selected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cocoplanner_selected_offers_total"}, []string{"tag"})
	plans := prometheus.NewCounter(prometheus.CounterOpts{Name: "cocoplanner_plans_generated_total"})
	emails := prometheus.NewCounter(prometheus.CounterOpts{Name: "cocoplanner_plan_emails_sent_total"})

	r.MustRegister(searches, latency, cache, fallbacks, excluded, selected, plans, emails)
	return &Registry{
		reg:            r,
		Searches:       searches,
		SearchLatency:  latency,
		CacheLookups:   cache,
		CabinFallbacks: fallbacks,
		ExcludedOffers: excluded,
		SelectedOffers: selected,
		PlansGenerated: plans,
		PlanEmailsSent: emails,
	}
}

func (r *Registry) ObserveSearch(outcome string, elapsed time.Duration) {
	r.Searches.WithLabelValues(outcome).Inc()
	r.SearchLatency.Observe(elapsed.Seconds())
}

func (r *Registry) ObserveCache(result string) {
	r.CacheLookups.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveSelection(selection models.RankedSelection) {
	if selection.CabinFallback {
		r.CabinFallbacks.Inc()
	}
	r.ExcludedOffers.Add(float64(len(selection.Excluded)))
	for _, offer := range selection.Offers {
		r.SelectedOffers.WithLabelValues(string(offer.Tag)).Inc()
	}
}

func (r *Registry) ObservePlan() { r.PlansGenerated.Inc() }

func (r *Registry) ObservePlanEmail() { r.PlanEmailsSent.Inc() }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
