package ioprof

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NVIDIA/ioprof/cmn/nlog"
)

// Metrics exposes live ingestion gauges via promhttp. The core output is
// the text/JSON report; this is useful on top of that for watching a
// long trace-shard ingest in progress.
type Metrics struct {
	reg             *prometheus.Registry
	shardsProcessed prometheus.Counter
	shardsSkipped   prometheus.Counter
	bucketHitsTotal prometheus.Gauge
}

// NewMetrics constructs a fresh registry with ioprof's ingestion gauges.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		shardsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ioprof_shards_processed_total",
			Help: "Number of input shards successfully processed.",
		}),
		shardsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ioprof_shards_skipped_total",
			Help: "Number of input shards skipped due to a non-fatal read error.",
		}),
		bucketHitsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ioprof_bucket_hits_total",
			Help: "Running total of bucket hits accumulated so far.",
		}),
	}
}

// ShardsProcessedCounter, ShardsSkippedCounter and BucketHitsGauge expose
// the underlying collectors for tests; callers that only want to report
// ingestion progress should use ShardProcessed/ShardSkipped/SetBucketHits.
func (m *Metrics) ShardsProcessedCounter() prometheus.Counter { return m.shardsProcessed }
func (m *Metrics) ShardsSkippedCounter() prometheus.Counter   { return m.shardsSkipped }
func (m *Metrics) BucketHitsGauge() prometheus.Gauge          { return m.bucketHitsTotal }

// ShardProcessed, ShardSkipped and SetBucketHits are nil-receiver safe so
// the orchestrator can call them unconditionally on an Orchestrator whose
// Metrics field was never set (no -metrics-addr).

func (m *Metrics) ShardProcessed() {
	if m == nil {
		return
	}
	m.shardsProcessed.Inc()
}

func (m *Metrics) ShardSkipped() {
	if m == nil {
		return
	}
	m.shardsSkipped.Inc()
}

func (m *Metrics) SetBucketHits(n uint64) {
	if m == nil {
		return
	}
	m.bucketHitsTotal.Set(float64(n))
}

// ServeBackground starts a promhttp handler on addr and returns
// immediately; the caller is responsible for the process lifetime. Errors
// are logged, not returned, since metrics serving is best-effort — a
// report doesn't require a live streaming UI to be produced.
func (m *Metrics) ServeBackground(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			nlog.Warningf("metrics server stopped: %v", err)
		}
	}()
}
