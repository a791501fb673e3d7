package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MemberSearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "member_searches_total",
		Help: "Total number of member searches by outcome",
	}, []string{"outcome"})

	MemberSearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "member_search_latency_seconds",
		Help:    "Latency of a full member search including dependent data",
		Buckets: prometheus.DefBuckets,
	})

	MemberCandidatesReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "member_candidates_returned",
		Help:    "Number of candidate members returned per search",
		Buckets: []float64{0, 1, 2, 5, 10, 20},
	})

	LegacyMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_member_matches_total",
		Help: "Total number of migrated member records found by source",
	}, []string{"source"})

	LegacyLookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_member_lookup_failures_total",
		Help: "Total number of failed migrated member lookups by source",
	}, []string{"source"})

	DependentQueryDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dependent_query_degraded_total",
		Help: "Total number of dependent data categories returned empty after query failure",
	}, []string{"category"})

	FallbackTierUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dependent_query_fallback_tier_total",
		Help: "Total number of dependent queries answered by a given fallback tier",
	}, []string{"category", "tier"})

	TierMovementsSynthesized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tier_movements_synthesized_total",
		Help: "Total number of tier movements synthesized from migrated sources",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_rate_limited_total",
		Help: "Total number of search requests rejected by the rate limiter",
	})

	AuditEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_events_published_total",
		Help: "Total number of audit events published by result",
	}, []string{"result"})

	AuditEventsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_events_consumed_total",
		Help: "Total number of audit events written to the audit log",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
