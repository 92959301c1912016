package store

import "errors"

var (
	// ErrPayloadTooLarge means the document cannot fit in a single segment's
	// data region. Nothing is written.
	ErrPayloadTooLarge = errors.New("document exceeds segment data capacity")

	// ErrInvalidPointer means the pointer does not address a stored document.
	ErrInvalidPointer = errors.New("pointer outside recorded range")

	// ErrCorruptSegmentHeader means a segment file's header disagrees with the
	// configured capacities. The segment is unusable; surfaced at open time.
	ErrCorruptSegmentHeader = errors.New("corrupt segment header")

	// ErrStoreClosed is returned by any operation after Close.
	ErrStoreClosed = errors.New("store is closed")
)
