// Package metrics publishes the scanner's Prometheus counters and
// histogram. The collectors always increment so tests can assert on them
// without standing up an HTTP listener; the CLI only exposes them over HTTP
// when a metrics flag is set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the package-level collector registry the CLI's metrics
// endpoint (when enabled) serves.
var Registry = prometheus.NewRegistry()

var (
	filesScanned = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "scan_files_total",
		Help: "Number of files scanned across all scans in this process.",
	})

	findingsEmitted = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "scan_findings_total",
		Help: "Number of findings emitted, labeled by severity.",
	}, []string{"severity"})

	cacheHits = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "scan_cache_hits_total",
		Help: "Number of scan cache lookups that hit.",
	})

	cacheMisses = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "scan_cache_misses_total",
		Help: "Number of scan cache lookups that missed.",
	})

	scanDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "scan_duration_seconds",
		Help:    "Wall-clock duration of one orchestrator Scan call.",
		Buckets: prometheus.DefBuckets,
	})

	queueDepth = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "scan_scheduler_queue_depth",
		Help: "Number of content items still pending dispatch to a worker.",
	})
)

func FileScanned()                 { filesScanned.Inc() }
func FindingEmitted(severity string) { findingsEmitted.WithLabelValues(severity).Inc() }
func CacheHit()                    { cacheHits.Inc() }
func CacheMiss()                   { cacheMisses.Inc() }
func ObserveScanDuration(seconds float64) { scanDuration.Observe(seconds) }
func SetQueueDepth(n int)          { queueDepth.Set(float64(n)) }
