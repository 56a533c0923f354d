// Package observability holds the process-wide prometheus instrumentation.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbor_parse_seconds",
		Help:    "Time spent parsing one source file.",
		Buckets: prometheus.DefBuckets,
	})

	ParseDiagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_parse_diagnostics_total",
		Help: "Diagnostics produced during parsing, by severity.",
	}, []string{"severity"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_cache_hits_total",
		Help: "Cache hits, by namespace.",
	}, []string{"namespace"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbor_cache_misses_total",
		Help: "Cache misses, by namespace.",
	}, []string{"namespace"})

	IndexedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbor_indexed_files",
		Help: "Files currently present in the persistent index.",
	})

	IndexedSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbor_indexed_symbols",
		Help: "Symbols currently present in the persistent index.",
	})

	HierarchyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arbor_hierarchy_seconds",
		Help:    "Time spent answering one hierarchy query.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbor_watcher_events_total",
		Help: "File system events received by the watch command.",
	})
)
