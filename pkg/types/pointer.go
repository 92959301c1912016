package types

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a Pointer is constructed from negative indices.
var ErrInvalidArgument = errors.New("pointer indices must be non-negative")

// Pointer addresses a single stored document as a (segment, document) pair.
// Segment is the position of the segment in the store's ordered segment list,
// Document the position in that segment's offset table. Pointers compare by value.
type Pointer struct {
	Segment  int
	Document int
}

// NewPointer validates both indices before producing a Pointer.
func NewPointer(segment, document int) (Pointer, error) {
	if segment < 0 || document < 0 {
		return Pointer{}, fmt.Errorf("segment %d, document %d: %w", segment, document, ErrInvalidArgument)
	}
	return Pointer{Segment: segment, Document: document}, nil
}

func (p Pointer) String() string {
	return fmt.Sprintf("%d:%d", p.Segment, p.Document)
}
