package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/binderdb/binder/pkg/config"
	"github.com/binderdb/binder/pkg/index"
	"github.com/binderdb/binder/pkg/metrics"
	"github.com/binderdb/binder/pkg/store"
	"github.com/binderdb/binder/pkg/types"
	"github.com/binderdb/binder/util"
	"github.com/google/uuid"
)

// Simple write/read throughput harness against a real storage directory.
// Invoke with the usual config flags plus -bench-docs / -bench-size via env,
// e.g. BENCH_DOCS=50000 BENCH_SIZE=1024 binder-bench -storage-path /tmp/b
func main() {
	cfg, _, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		util.Fatal("Failed to load config: %v", err)
	}

	docs := util.ParseInt(os.Getenv("BENCH_DOCS"), 10000)
	size := util.ParseInt(os.Getenv("BENCH_SIZE"), 1024)

	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}

	st, err := store.Open(cfg)
	if err != nil {
		util.Fatal("Failed to open store: %v", err)
	}
	defer st.Close()

	idx, err := index.Open(cfg)
	if err != nil {
		util.Fatal("Failed to open index: %v", err)
	}
	defer idx.Close()

	runID := uuid.NewString()
	payload := make([]byte, size)
	rand.Read(payload)

	fmt.Printf("run %s: %d documents x %d bytes, backend=%s\n", runID, docs, size, cfg.Backend)

	ptrs := make([]types.Pointer, 0, docs)
	start := time.Now()
	for i := 0; i < docs; i++ {
		ptr, err := st.StoreDocument(payload)
		if err != nil {
			util.Fatal("StoreDocument %d failed: %v", i, err)
		}
		if err := idx.Put(runID, fmt.Sprintf("doc-%d", i), ptr); err != nil {
			util.Fatal("Put %d failed: %v", i, err)
		}
		ptrs = append(ptrs, ptr)
	}
	writeElapsed := time.Since(start)

	start = time.Now()
	for i, ptr := range ptrs {
		if _, err := st.LoadDocument(ptr); err != nil {
			util.Fatal("LoadDocument %d failed: %v", i, err)
		}
	}
	readElapsed := time.Since(start)

	stats := st.Stats()
	fmt.Printf("writes: %d in %s (%.0f docs/s, %.2f MB/s)\n",
		docs, writeElapsed, float64(docs)/writeElapsed.Seconds(),
		float64(docs*size)/writeElapsed.Seconds()/1e6)
	fmt.Printf("reads:  %d in %s (%.0f docs/s)\n",
		docs, readElapsed, float64(docs)/readElapsed.Seconds())
	fmt.Printf("segments: %d, bytes used: %d\n", stats.Segments, stats.BytesUsed)
}
