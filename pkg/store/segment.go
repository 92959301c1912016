package store

import (
	"fmt"
	"strings"

	"github.com/binderdb/binder/pkg/backend"
	"github.com/binderdb/binder/pkg/config"
)

// Segment file layout (all integers little-endian int32):
//
//	[0]                         documentCount
//	[4 + 4*i]                   offsets[i], i in 0..maxDocs
//	[headerSize ..)             data region, dataCapacity bytes
//
// offsets[i] is the absolute file offset where document i begins;
// offsets[documentCount] is the next free offset. Because offsets[0] is always
// headerSize (never zero), a zero entry in the table can only mean "unwritten
// slot", which is what enumeration relies on to find the end of a segment.
const (
	countFieldSize   = 4
	offsetEntrySize  = 4
	segmentExtension = ".seg"
)

func headerSize(maxDocs int) int64 {
	return int64(maxDocs+1)*offsetEntrySize + countFieldSize
}

func offsetEntryPos(i int) int64 {
	return countFieldSize + int64(i)*offsetEntrySize
}

// segmentFileName formats the 1-based sequence number so that lexicographic
// order of file names equals numeric order.
func segmentFileName(seq int) string {
	return fmt.Sprintf("%08d%s", seq, segmentExtension)
}

func isSegmentFileName(name string) bool {
	if !strings.HasSuffix(name, segmentExtension) {
		return false
	}
	base := strings.TrimSuffix(name, segmentExtension)
	if len(base) != 8 {
		return false
	}
	for _, c := range base {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// segment is one open segment file plus the in-memory mirror of its header.
type segment struct {
	backend backend.Backend
	offsets []int32 // maxDocs+1 entries, unwritten slots are zero
	count   int
}

// createSegment preallocates a zero-filled segment file and seeds offsets[0].
func createSegment(cfg *config.Config, path string, hdrSize, fileSize int64) (*segment, error) {
	b, err := backend.Create(cfg, path, fileSize)
	if err != nil {
		return nil, err
	}

	s := &segment{
		backend: b,
		offsets: make([]int32, cfg.MaxDocumentsPerSegment+1),
	}
	s.offsets[0] = int32(hdrSize)

	if err := b.WriteInt32(offsetEntryPos(0), s.offsets[0]); err != nil {
		b.Close()
		return nil, err
	}
	if cfg.SyncWrites {
		if err := b.Sync(); err != nil {
			b.Close()
			return nil, err
		}
	}
	return s, nil
}

// openSegment reads a segment header back into memory, validating it against
// the configured capacities.
func openSegment(cfg *config.Config, path string, hdrSize, fileSize int64) (*segment, error) {
	b, err := backend.Open(cfg, path)
	if err != nil {
		return nil, err
	}

	if b.Size() != fileSize {
		b.Close()
		return nil, fmt.Errorf("%s: file size %d, expected %d: %w", path, b.Size(), fileSize, ErrCorruptSegmentHeader)
	}

	count, err := b.ReadInt32(0)
	if err != nil {
		b.Close()
		return nil, err
	}
	maxDocs := cfg.MaxDocumentsPerSegment
	if count < 0 || int(count) > maxDocs {
		b.Close()
		return nil, fmt.Errorf("%s: document count %d out of range [0, %d]: %w", path, count, maxDocs, ErrCorruptSegmentHeader)
	}

	s := &segment{
		backend: b,
		offsets: make([]int32, maxDocs+1),
		count:   int(count),
	}

	for i := 0; i <= s.count; i++ {
		off, err := b.ReadInt32(offsetEntryPos(i))
		if err != nil {
			b.Close()
			return nil, err
		}
		s.offsets[i] = off
	}

	if s.offsets[0] != int32(hdrSize) {
		b.Close()
		return nil, fmt.Errorf("%s: first offset %d, expected %d: %w", path, s.offsets[0], hdrSize, ErrCorruptSegmentHeader)
	}
	for i := 1; i <= s.count; i++ {
		if s.offsets[i] < s.offsets[i-1] || int64(s.offsets[i]) > fileSize {
			b.Close()
			return nil, fmt.Errorf("%s: offset table not monotonic at %d: %w", path, i, ErrCorruptSegmentHeader)
		}
	}

	return s, nil
}

// freeOffset is the absolute file offset where the next document would start.
func (s *segment) freeOffset() int32 {
	return s.offsets[s.count]
}

// hasRoom reports whether one more document of n bytes fits. The byte check is
// strict: a document that would end exactly at capacity rotates instead.
func (s *segment) hasRoom(n int, maxDocs int, hdrSize, dataCapacity int64) bool {
	if s.count >= maxDocs {
		return false
	}
	return int64(s.freeOffset())+int64(n) < hdrSize+dataCapacity
}

// append writes the payload at the free offset and persists the updated offset
// entry and document count, so the header on disk always describes everything
// written so far. Returns the document index of the new payload.
func (s *segment) append(p []byte, sync bool) (int, error) {
	off := s.freeOffset()
	if err := s.backend.WriteAt(p, int64(off)); err != nil {
		return 0, err
	}

	doc := s.count
	next := off + int32(len(p))
	if err := s.backend.WriteInt32(offsetEntryPos(doc+1), next); err != nil {
		return 0, err
	}
	if err := s.backend.WriteInt32(0, int32(doc+1)); err != nil {
		return 0, err
	}
	if sync {
		if err := s.backend.Sync(); err != nil {
			return 0, err
		}
	}

	s.offsets[doc+1] = next
	s.count = doc + 1
	return doc, nil
}

// load reads document doc back. The caller has already validated doc < count.
func (s *segment) load(doc int) ([]byte, error) {
	off := s.offsets[doc]
	length := s.offsets[doc+1] - off

	p := make([]byte, length)
	if err := s.backend.ReadAt(p, int64(off)); err != nil {
		return nil, err
	}
	return p, nil
}

// bytesUsed is the size of the data region in use.
func (s *segment) bytesUsed(hdrSize int64) int64 {
	return int64(s.freeOffset()) - hdrSize
}
