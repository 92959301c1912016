// Package index maintains a durable mapping from (category, key) to a stored
// document's pointer. The mapping is persisted as an append-only log of
// records; the in-memory map is rebuilt by replaying the log front to back at
// open time, so the log is the single source of truth after a crash.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/binderdb/binder/pkg/config"
	"github.com/binderdb/binder/pkg/metrics"
	"github.com/binderdb/binder/pkg/types"
	"github.com/binderdb/binder/util"
)

const logFileName = "index.log"

// Index is safe for concurrent use. All operations serialize on one lock.
type Index struct {
	mu         sync.Mutex
	file       *os.File
	entries    map[string]map[string]types.Pointer
	syncWrites bool
	closed     bool
}

// Open opens (or creates) the index log in the storage directory and replays
// it into memory. A truncated trailing record, the expected leftover of a
// crash mid-append, is treated as end of stream and dropped.
func Open(cfg *config.Config) (*Index, error) {
	path := filepath.Join(cfg.StoragePath, logFileName)
	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", cfg.StoragePath, err)
	}

	idx := &Index{
		entries:    make(map[string]map[string]types.Pointer),
		syncWrites: cfg.SyncWrites,
	}

	if err := idx.replay(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	idx.file = f
	return idx, nil
}

// Put durably appends a record for (category, key) before updating the
// in-memory map, so recovery can never silently lose an acknowledged Put.
// A later Put for the same pair supersedes the earlier one.
func (idx *Index) Put(category, key string, ptr types.Pointer) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrIndexClosed
	}

	rec := encodeRecord(category, key, ptr)
	if _, err := idx.file.Write(rec); err != nil {
		return fmt.Errorf("append index record: %w", err)
	}
	if idx.syncWrites {
		if err := idx.file.Sync(); err != nil {
			return fmt.Errorf("sync index log: %w", err)
		}
	}

	idx.internalPut(category, key, ptr)
	metrics.IndexRecords.Inc()
	return nil
}

// TryGet looks the pair up in memory. A missing entry is not an error.
func (idx *Index) TryGet(category, key string) (types.Pointer, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if keys, ok := idx.entries[category]; ok {
		if ptr, ok := keys[key]; ok {
			return ptr, true
		}
	}
	metrics.IndexLookupMisses.Inc()
	return types.Pointer{}, false
}

// Categories returns the category names currently present, for inspection.
func (idx *Index) Categories() []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make([]string, 0, len(idx.entries))
	for cat := range idx.entries {
		out = append(out, cat)
	}
	return out
}

// Len returns the number of live (category, key) pairs.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	n := 0
	for _, keys := range idx.entries {
		n += len(keys)
	}
	return n
}

// Close flushes and releases the log file.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrIndexClosed
	}
	idx.closed = true

	if err := idx.file.Sync(); err != nil {
		idx.file.Close()
		return err
	}
	return idx.file.Close()
}

func (idx *Index) internalPut(category, key string, ptr types.Pointer) {
	keys, ok := idx.entries[category]
	if !ok {
		keys = make(map[string]types.Pointer)
		idx.entries[category] = keys
	}
	keys[key] = ptr
}

// replay scans the log linearly from offset 0, applying every decodable
// record in order. Last write wins because later records overwrite earlier
// map entries.
func (idx *Index) replay(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	n, validEnd, truncated, err := replayRecords(f, idx.internalPut)
	if err != nil {
		return fmt.Errorf("replay index log %s: %w", path, err)
	}
	if truncated {
		// Drop the torn tail so future appends continue a well-formed log.
		util.Warn("index log %s has a truncated trailing record, truncating to %d bytes", path, validEnd)
		if err := os.Truncate(path, validEnd); err != nil {
			return fmt.Errorf("truncate torn index log %s: %w", path, err)
		}
	}
	util.Debug("replayed %d index record(s) from %s", n, path)
	return nil
}
