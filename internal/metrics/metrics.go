// Package metrics holds Prometheus instruments that are used across the
// application.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PromptViewsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prompt_views_total",
			Help: "Cumulative number of prompt detail pages served.",
		})

	RelatedQuerySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "related_query_seconds",
			Help:    "Latency of related-prompt lookups, storage round trips included.",
			Buckets: prometheus.DefBuckets,
		})

	SlugBackfillTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slug_backfill_total",
			Help: "Cumulative number of prompts assigned a slug by the backfill pass.",
		})

	SlugBackfillErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slug_backfill_errors_total",
			Help: "Cumulative number of per-prompt failures during slug backfill.",
		})

	AssetUploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_uploads_total",
			Help: "Cumulative number of image assets stored by the admin CMS.",
		})

	LoginFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Cumulative number of rejected admin sign-in attempts.",
		})
)

func init() {
	prometheus.MustRegister(
		PromptViewsTotal,
		RelatedQuerySeconds,
		SlugBackfillTotal,
		SlugBackfillErrorsTotal,
		AssetUploadsTotal,
		LoginFailuresTotal,
	)
}
