// Package backend provides random access I/O over a single preallocated
// segment-sized file. The file and mmap implementations are interchangeable;
// callers pick one through the configuration and never see the difference.
package backend

import (
	"errors"
	"fmt"

	"github.com/binderdb/binder/pkg/config"
)

// ErrOutOfRange is returned for any access that would cross the file bounds.
var ErrOutOfRange = errors.New("access beyond backend bounds")

// Backend is the only capability the store needs per segment file. All offsets
// are absolute file offsets; reads and writes are bounds-checked against the
// preallocated size before touching the file.
type Backend interface {
	ReadAt(p []byte, off int64) error
	WriteAt(p []byte, off int64) error
	ReadInt32(off int64) (int32, error)
	WriteInt32(off int64, v int32) error
	Sync() error
	Size() int64
	Close() error
}

// Create preallocates a zero-filled file of the given size and opens it with
// the configured backend.
func Create(cfg *config.Config, path string, size int64) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMmap:
		return createMmap(path, size)
	case config.BackendFile, "":
		return createFile(path, size)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Open opens an existing file with the configured backend. The file's current
// size becomes the access bound.
func Open(cfg *config.Config, path string) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMmap:
		return openMmap(path)
	case config.BackendFile, "":
		return openFile(path)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func checkRange(off int64, n int, size int64) error {
	if off < 0 || off+int64(n) > size {
		return fmt.Errorf("offset %d length %d size %d: %w", off, n, size, ErrOutOfRange)
	}
	return nil
}
