package backend

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

// mmapBackend maps the file read-only and keeps a plain fd for writes, the
// same split the write path and read path already use elsewhere. Segment files
// are preallocated to their final size before mapping, so the mapping covers
// every byte the store will ever touch and never has to grow.
type mmapBackend struct {
	file   *os.File
	reader *mmap.ReaderAt
	size   int64
}

func createMmap(path string, size int64) (Backend, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("preallocate %s to %d bytes: %w", path, size, err)
	}
	r, err := mmap.Open(path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mmapBackend{file: f, reader: r, size: size}, nil
}

func openMmap(path string) (Backend, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	r, err := mmap.Open(path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mmapBackend{file: f, reader: r, size: int64(r.Len())}, nil
}

func (b *mmapBackend) ReadAt(p []byte, off int64) error {
	if err := checkRange(off, len(p), b.size); err != nil {
		return err
	}
	if _, err := b.reader.ReadAt(p, off); err != nil {
		return fmt.Errorf("mmap read %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (b *mmapBackend) WriteAt(p []byte, off int64) error {
	if err := checkRange(off, len(p), b.size); err != nil {
		return err
	}
	if _, err := b.file.WriteAt(p, off); err != nil {
		return fmt.Errorf("write %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (b *mmapBackend) ReadInt32(off int64) (int32, error) {
	var buf [4]byte
	if err := b.ReadAt(buf[:], off); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func (b *mmapBackend) WriteInt32(off int64, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return b.WriteAt(buf[:], off)
}

func (b *mmapBackend) Sync() error {
	return b.file.Sync()
}

func (b *mmapBackend) Size() int64 {
	return b.size
}

func (b *mmapBackend) Close() error {
	rerr := b.reader.Close()
	ferr := b.file.Close()
	if rerr != nil {
		return rerr
	}
	return ferr
}
