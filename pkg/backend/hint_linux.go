//go:build linux
// +build linux

package backend

import (
	"os"

	"golang.org/x/sys/unix"
)

// Linux: documents are looked up by pointer, not scanned, so hint random access.
func adviseRandom(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM)
}
