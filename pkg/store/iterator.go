package store

import "github.com/binderdb/binder/pkg/types"

// Iterator walks every stored document in segment order, then document order
// within each segment. Within a segment the walk stops at the first offset
// table slot holding the zero sentinel (or at the document cap), which marks
// the end of the written documents.
//
// Usage follows the usual scanner shape:
//
//	it := st.Documents()
//	for it.Next() {
//		_ = it.Pointer()
//		_ = it.Bytes()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	store *Store
	seg   int
	doc   int

	ptr  types.Pointer
	data []byte
	err  error
}

// Next advances to the next document, returning false at the end of the store
// or on the first read error.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}

	it.store.mu.Lock()
	defer it.store.mu.Unlock()

	if it.store.closed {
		it.err = ErrStoreClosed
		return false
	}

	maxDocs := it.store.cfg.MaxDocumentsPerSegment
	for it.seg < len(it.store.segments) {
		seg := it.store.segments[it.seg]
		if it.doc >= maxDocs || seg.offsets[it.doc+1] == 0 {
			it.seg++
			it.doc = 0
			continue
		}

		data, err := seg.load(it.doc)
		if err != nil {
			it.err = err
			return false
		}

		it.ptr = types.Pointer{Segment: it.seg, Document: it.doc}
		it.data = data
		it.doc++
		return true
	}
	return false
}

// Pointer returns the pointer of the current document.
func (it *Iterator) Pointer() types.Pointer {
	return it.ptr
}

// Bytes returns the payload of the current document. The slice is owned by
// the caller.
func (it *Iterator) Bytes() []byte {
	return it.data
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}
