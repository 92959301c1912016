package backend

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// fileBackend serves reads and writes with positional I/O on one *os.File.
type fileBackend struct {
	file *os.File
	size int64
}

func createFile(path string, size int64) (Backend, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("preallocate %s to %d bytes: %w", path, size, err)
	}
	adviseRandom(f)
	return &fileBackend{file: f, size: size}, nil
}

func openFile(path string) (Backend, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	adviseRandom(f)
	return &fileBackend{file: f, size: info.Size()}, nil
}

func (b *fileBackend) ReadAt(p []byte, off int64) error {
	if err := checkRange(off, len(p), b.size); err != nil {
		return err
	}
	if _, err := b.file.ReadAt(p, off); err != nil && err != io.EOF {
		return fmt.Errorf("read %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (b *fileBackend) WriteAt(p []byte, off int64) error {
	if err := checkRange(off, len(p), b.size); err != nil {
		return err
	}
	if _, err := b.file.WriteAt(p, off); err != nil {
		return fmt.Errorf("write %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}

func (b *fileBackend) ReadInt32(off int64) (int32, error) {
	var buf [4]byte
	if err := b.ReadAt(buf[:], off); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func (b *fileBackend) WriteInt32(off int64, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return b.WriteAt(buf[:], off)
}

func (b *fileBackend) Sync() error {
	return b.file.Sync()
}

func (b *fileBackend) Size() int64 {
	return b.size
}

func (b *fileBackend) Close() error {
	return b.file.Close()
}
