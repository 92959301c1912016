package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DocumentsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binder_documents_stored_total",
		Help: "Total number of documents written to the segment store",
	})

	DocumentsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binder_documents_loaded_total",
		Help: "Total number of documents resolved by pointer",
	})

	BytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binder_bytes_written_total",
		Help: "Total document payload bytes written to segment files",
	})

	SegmentRotations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binder_segment_rotations_total",
		Help: "Total number of new segments created because the active one was full",
	})

	OpenSegments = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "binder_open_segments",
		Help: "Number of segment files currently open",
	})

	StoreLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "binder_store_latency_seconds",
		Help:    "Histogram of StoreDocument latency",
		Buckets: prometheus.DefBuckets,
	})

	IndexRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binder_index_records_total",
		Help: "Total number of records appended to the index log",
	})

	IndexLookupMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binder_index_lookup_misses_total",
		Help: "Total number of index lookups that found no pointer",
	})
)

// ObserveStore updates the write-path metrics for one stored document.
func ObserveStore(payloadBytes int, elapsedSeconds float64) {
	DocumentsStored.Inc()
	BytesWritten.Add(float64(payloadBytes))
	StoreLatency.Observe(elapsedSeconds)
}
