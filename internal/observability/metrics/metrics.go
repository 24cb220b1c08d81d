package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	leadConversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_lead_conversions_total",
		Help: "Lead conversion attempts by result",
	}, []string{"result"})

	stageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_deal_stage_transitions_total",
		Help: "Deal stage transitions by resulting deal status",
	}, []string{"status"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveLeadConversion counts a conversion attempt by result: converted, rejected or error
func ObserveLeadConversion(result string) {
	leadConversions.WithLabelValues(result).Inc()
}

// ObserveStageTransition counts a deal entering a stage, labelled by the status it ends in
func ObserveStageTransition(status string) {
	stageTransitions.WithLabelValues(status).Inc()
}

// ObserveCacheLookup records a hit or miss on a named cache
func ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// IncRateLimited counts a request rejected by the rate limiter
func IncRateLimited() {
	rateLimited.Inc()
}
