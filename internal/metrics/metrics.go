// Package metrics provides Prometheus metrics for the card portfolio service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh worker metrics
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_refresh_runs_total",
			Help: "Total number of price refresh runs by outcome",
		},
		[]string{"outcome"}, // "completed", "failed"
	)

	RefreshRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_refresh_rejected_total",
			Help: "Refresh triggers rejected because a run was already in progress",
		},
	)

	RefreshCardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_refresh_cards_total",
			Help: "Cards processed during refresh runs by result",
		},
		[]string{"result"}, // "valued", "no_data"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cards_refresh_duration_seconds",
			Help:    "Wall-clock time of a full refresh run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Marketplace adapter metrics
	MarketplaceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_marketplace_requests_total",
			Help: "Marketplace search requests by kind and result",
		},
		[]string{"kind", "result"}, // kind: "sold"/"active", result: "ok", "transient", "blocked"
	)

	MarketplaceRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cards_marketplace_request_duration_seconds",
			Help:    "Marketplace search latency including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Listing cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_listing_cache_hits_total",
			Help: "Listing cache hit count",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_listing_cache_misses_total",
			Help: "Listing cache miss count",
		},
	)

	CacheSharedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_listing_cache_shared_fetches_total",
			Help: "Cache lookups that piggybacked on another caller's in-flight fetch",
		},
	)

	// Comp engine metrics
	ValuationsByTier = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_valuations_by_tier_total",
			Help: "Valuations produced by comp tier",
		},
		[]string{"tier"}, // "1".."4"
	)

	// Portfolio metrics
	PortfolioCostBasisUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cards_portfolio_cost_basis_usd",
			Help: "Total cost basis of owned cards in USD",
		},
	)

	PortfolioValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cards_portfolio_value_usd",
			Help: "Total estimated value of owned cards in USD",
		},
	)
)
