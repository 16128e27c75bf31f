package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the cookie jar.
// It includes counters for stored cookies, evictions, and rejected ingests,
// plus a gauge tracking the current store size.
type Metrics struct {
	StoredTotal  *prometheus.CounterVec
	EvictedTotal *prometheus.CounterVec
	IngestErrors *prometheus.CounterVec
	HeadersBuilt prometheus.Counter
	StoreSize    prometheus.Gauge
}

// Eviction reasons used with EvictedTotal.
const (
	ReasonExpired    = "expired"
	ReasonDomainCap  = "domain_cap"
	ReasonStoreCap   = "store_cap"
	ReasonSessionEnd = "session_end"
)

// NewMetrics creates a new Metrics instance with the provided Registerer.
// It initializes counters for stored and evicted cookies, a counter for
// ingest failures, a counter for reconstructed Cookie headers, and a gauge
// for the number of cookies currently held.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		StoredTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pandora_cookies_stored_total",
			Help: "Total number of cookies accepted into the jar.",
		}, []string{"kind"}),
		EvictedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pandora_cookies_evicted_total",
			Help: "Total number of cookies removed from the jar, by reason.",
		}, []string{"reason"}),
		IngestErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pandora_ingest_errors_total",
			Help: "Total number of Set-Cookie ingests rejected, by reason.",
		}, []string{"reason"}),
		HeadersBuilt: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pandora_cookie_headers_built_total",
			Help: "Total number of Cookie request headers reconstructed.",
		}),
		StoreSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pandora_cookies_held",
			Help: "Number of cookies currently held in the jar.",
		}),
	}

	metrics.StoredTotal.WithLabelValues("session")
	metrics.StoredTotal.WithLabelValues("persistent")
	metrics.EvictedTotal.WithLabelValues(ReasonExpired)
	metrics.EvictedTotal.WithLabelValues(ReasonDomainCap)
	metrics.EvictedTotal.WithLabelValues(ReasonStoreCap)
	metrics.EvictedTotal.WithLabelValues(ReasonSessionEnd)

	return metrics
}
