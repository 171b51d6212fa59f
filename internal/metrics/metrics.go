// Package metrics exposes Prometheus counters for the dashboard's data
// plumbing. Served on the local HTTP surface next to the JSON endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts fetch attempts per source.
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_fetch_total",
		Help: "Number of fetch attempts per data source.",
	}, []string{"source"})

	// FetchFailures counts failed fetches per source.
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attribution_fetch_failures_total",
		Help: "Number of failed fetch attempts per data source.",
	}, []string{"source"})

	// PollCycles counts live feed poll ticks that actually ran.
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attribution_feed_poll_cycles_total",
		Help: "Number of live feed poll cycles executed.",
	})

	// MentionsIngested counts mentions accepted into the live feed.
	MentionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attribution_mentions_ingested_total",
		Help: "Number of mentions accepted into the live feed collection.",
	})
)
