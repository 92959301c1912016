package metrics

import (
	"fmt"
	"net/http"

	"github.com/binderdb/binder/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	prometheus.MustRegister(DocumentsStored, DocumentsLoaded, BytesWritten,
		SegmentRotations, OpenSegments, StoreLatency, IndexRecords, IndexLookupMisses)
}

func StartMetricsServer(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", port)
		util.Info("Prometheus exporter listening on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			util.Error("Failed to start metrics server: %v", err)
		}
	}()
}
