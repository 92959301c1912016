package store

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/binderdb/binder/pkg/config"
	"github.com/binderdb/binder/pkg/metrics"
	"github.com/binderdb/binder/pkg/types"
	"github.com/binderdb/binder/util"
)

// Store is an append-only document store over an ordered list of bounded
// segment files. Writes always go to the last segment; a new one is created
// when the active segment runs out of document slots or data bytes. Documents
// are addressed by types.Pointer and are never modified or deleted.
//
// A Store owns its storage directory exclusively. Opening the same directory
// from more than one process at a time is not detected and corrupts data; it
// is the caller's responsibility to prevent it.
type Store struct {
	cfg *config.Config
	dir string

	hdrSize  int64
	fileSize int64

	mu       sync.Mutex
	segments []*segment
	closed   bool
}

// Stats is a point-in-time summary of the store contents.
type Stats struct {
	Segments  int
	Documents int
	BytesUsed int64
}

// Open opens the storage directory, recovering every existing segment in file
// name order, and creates the first segment if the directory is empty. The
// last segment becomes the write target.
func Open(cfg *config.Config) (*Store, error) {
	hdrSize := headerSize(cfg.MaxDocumentsPerSegment)
	fileSize := hdrSize + cfg.DataCapacityPerSegment
	if fileSize > math.MaxInt32 {
		return nil, fmt.Errorf("segment file size %d exceeds int32 offset range", fileSize)
	}

	dir := cfg.StoragePath
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isSegmentFileName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	st := &Store{
		cfg:      cfg,
		dir:      dir,
		hdrSize:  hdrSize,
		fileSize: fileSize,
	}

	for _, name := range names {
		seg, err := openSegment(cfg, filepath.Join(dir, name), hdrSize, fileSize)
		if err != nil {
			st.closeSegments()
			return nil, err
		}
		st.segments = append(st.segments, seg)
	}

	if len(st.segments) == 0 {
		seg, err := createSegment(cfg, filepath.Join(dir, segmentFileName(1)), hdrSize, fileSize)
		if err != nil {
			return nil, err
		}
		st.segments = append(st.segments, seg)
	}

	util.Debug("opened store at %s with %d segment(s)", dir, len(st.segments))
	metrics.OpenSegments.Set(float64(len(st.segments)))
	return st, nil
}

// StoreDocument appends the payload to the active segment, rotating to a new
// segment first if the active one is full, and returns the pointer under which
// the payload can be loaded back.
func (st *Store) StoreDocument(p []byte) (types.Pointer, error) {
	start := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return types.Pointer{}, ErrStoreClosed
	}
	if int64(len(p)) > st.cfg.DataCapacityPerSegment {
		return types.Pointer{}, fmt.Errorf("%d bytes, capacity %d: %w", len(p), st.cfg.DataCapacityPerSegment, ErrPayloadTooLarge)
	}

	active := st.segments[len(st.segments)-1]
	if !active.hasRoom(len(p), st.cfg.MaxDocumentsPerSegment, st.hdrSize, st.cfg.DataCapacityPerSegment) {
		seg, err := st.rotate()
		if err != nil {
			return types.Pointer{}, err
		}
		active = seg
	}

	doc, err := active.append(p, st.cfg.SyncWrites)
	if err != nil {
		return types.Pointer{}, err
	}

	metrics.ObserveStore(len(p), time.Since(start).Seconds())
	return types.Pointer{Segment: len(st.segments) - 1, Document: doc}, nil
}

// LoadDocument resolves a pointer to the exact bytes that were stored.
func (st *Store) LoadDocument(ptr types.Pointer) ([]byte, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return nil, ErrStoreClosed
	}

	seg, err := st.lookup(ptr)
	if err != nil {
		return nil, err
	}

	p, err := seg.load(ptr.Document)
	if err != nil {
		return nil, err
	}
	metrics.DocumentsLoaded.Inc()
	return p, nil
}

// Documents returns an iterator over every stored document in segment order,
// then document order. Each call starts a fresh pass from the beginning.
func (st *Store) Documents() *Iterator {
	return &Iterator{store: st}
}

// Stats reports segment count, total documents and data bytes in use.
func (st *Store) Stats() Stats {
	st.mu.Lock()
	defer st.mu.Unlock()

	var s Stats
	s.Segments = len(st.segments)
	for _, seg := range st.segments {
		s.Documents += seg.count
		s.BytesUsed += seg.bytesUsed(st.hdrSize)
	}
	return s
}

// Close releases every backend handle. The store is unusable afterwards.
func (st *Store) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return ErrStoreClosed
	}
	st.closed = true
	metrics.OpenSegments.Set(0)
	return st.closeSegments()
}

func (st *Store) lookup(ptr types.Pointer) (*segment, error) {
	if ptr.Segment < 0 || ptr.Segment >= len(st.segments) {
		return nil, fmt.Errorf("segment %d of %d: %w", ptr.Segment, len(st.segments), ErrInvalidPointer)
	}
	seg := st.segments[ptr.Segment]
	if ptr.Document < 0 || ptr.Document >= seg.count {
		return nil, fmt.Errorf("document %d of %d in segment %d: %w", ptr.Document, seg.count, ptr.Segment, ErrInvalidPointer)
	}
	return seg, nil
}

// rotate creates the next segment and makes it the write target.
func (st *Store) rotate() (*segment, error) {
	seq := len(st.segments) + 1
	seg, err := createSegment(st.cfg, filepath.Join(st.dir, segmentFileName(seq)), st.hdrSize, st.fileSize)
	if err != nil {
		return nil, fmt.Errorf("rotate to segment %d: %w", seq, err)
	}
	st.segments = append(st.segments, seg)

	util.Debug("rotated to segment %d", seq)
	metrics.SegmentRotations.Inc()
	metrics.OpenSegments.Set(float64(len(st.segments)))
	return seg, nil
}

func (st *Store) closeSegments() error {
	var firstErr error
	for _, seg := range st.segments {
		if err := seg.backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
