package metrics_test

import (
	"testing"

	"github.com/binderdb/binder/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func getHistogramCount(h prometheus.Histogram) uint64 {
	m := &dto.Metric{}
	_ = h.Write(m)
	return m.GetHistogram().GetSampleCount()
}

func TestObserveStore(t *testing.T) {
	initialDocs := getCounterValue(metrics.DocumentsStored)
	initialBytes := getCounterValue(metrics.BytesWritten)
	initialLatency := getHistogramCount(metrics.StoreLatency)

	metrics.ObserveStore(100, 0.01)
	metrics.ObserveStore(150, 0.02)

	if got := getCounterValue(metrics.DocumentsStored); got != initialDocs+2 {
		t.Fatalf("DocumentsStored expected %v, got %v", initialDocs+2, got)
	}
	if got := getCounterValue(metrics.BytesWritten); got != initialBytes+250 {
		t.Fatalf("BytesWritten expected %v, got %v", initialBytes+250, got)
	}
	if got := getHistogramCount(metrics.StoreLatency); got != initialLatency+2 {
		t.Fatalf("StoreLatency count expected %v, got %v", initialLatency+2, got)
	}
}
