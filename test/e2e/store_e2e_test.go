package e2e

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/binderdb/binder/pkg/config"
	"github.com/binderdb/binder/pkg/index"
	"github.com/binderdb/binder/pkg/store"
	"github.com/binderdb/binder/pkg/types"
)

func fill(n int, b byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = b
	}
	return p
}

// Two documents with maxDocuments=1: the second segment is forced by the
// document-count cap, not the byte cap. Both documents must survive a reopen.
func TestSmallSegmentScenario(t *testing.T) {
	for _, kind := range []string{config.BackendFile, config.BackendMmap} {
		t.Run(kind, func(t *testing.T) {
			cfg := &config.Config{
				StoragePath:            t.TempDir(),
				DataCapacityPerSegment: 2000,
				MaxDocumentsPerSegment: 1,
				Backend:                kind,
				SyncWrites:             true,
			}

			st, err := store.Open(cfg)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			big := fill(1500, 0x5A)
			small := fill(100, 0xC3)

			ptrBig, err := st.StoreDocument(big)
			if err != nil {
				t.Fatalf("StoreDocument(1500) failed: %v", err)
			}
			ptrSmall, err := st.StoreDocument(small)
			if err != nil {
				t.Fatalf("StoreDocument(100) failed: %v", err)
			}

			if ptrBig.Segment != 0 || ptrSmall.Segment != 1 {
				t.Fatalf("expected segments 0 and 1, got %s and %s", ptrBig, ptrSmall)
			}
			if st.Stats().Segments != 2 {
				t.Fatalf("expected 2 segments, got %d", st.Stats().Segments)
			}

			check := func(s *store.Store, label string) {
				gotBig, err := s.LoadDocument(ptrBig)
				if err != nil {
					t.Fatalf("%s: LoadDocument(big) failed: %v", label, err)
				}
				gotSmall, err := s.LoadDocument(ptrSmall)
				if err != nil {
					t.Fatalf("%s: LoadDocument(small) failed: %v", label, err)
				}
				if !bytes.Equal(gotBig, big) || !bytes.Equal(gotSmall, small) {
					t.Fatalf("%s: payloads corrupted", label)
				}
			}

			check(st, "before reopen")
			if err := st.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			st2, err := store.Open(cfg)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer st2.Close()
			check(st2, "after reopen")
		})
	}
}

// Full workflow: store documents, register them in the index, reopen the
// directory and resolve everything again through the index.
func TestStoreAndIndexLifecycle(t *testing.T) {
	cfg := &config.Config{
		StoragePath:            t.TempDir(),
		DataCapacityPerSegment: 4096,
		MaxDocumentsPerSegment: 8,
		Backend:                config.BackendFile,
		SyncWrites:             true,
	}

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	idx, err := index.Open(cfg)
	if err != nil {
		t.Fatalf("index.Open failed: %v", err)
	}

	docs := map[string][]byte{}
	for i := 0; i < 30; i++ {
		key := fmt.Sprintf("doc-%02d", i)
		payload := fill(64+i*7, byte(i))

		ptr, err := st.StoreDocument(payload)
		if err != nil {
			t.Fatalf("StoreDocument failed: %v", err)
		}
		if err := idx.Put("archive", key, ptr); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		docs[key] = payload
	}

	// overwrite one entry so last-write-wins has to survive the reopen too
	replacement := []byte("replacement content")
	ptr, err := st.StoreDocument(replacement)
	if err != nil {
		t.Fatalf("StoreDocument failed: %v", err)
	}
	if err := idx.Put("archive", "doc-00", ptr); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	docs["doc-00"] = replacement

	if err := idx.Close(); err != nil {
		t.Fatalf("index Close failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("store Close failed: %v", err)
	}

	st2, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store reopen failed: %v", err)
	}
	defer st2.Close()
	idx2, err := index.Open(cfg)
	if err != nil {
		t.Fatalf("index reopen failed: %v", err)
	}
	defer idx2.Close()

	for key, want := range docs {
		ptr, ok := idx2.TryGet("archive", key)
		if !ok {
			t.Fatalf("key %s lost across reopen", key)
		}
		got, err := st2.LoadDocument(ptr)
		if err != nil {
			t.Fatalf("LoadDocument(%s) failed: %v", ptr, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("key %s: payload mismatch", key)
		}
	}

	// enumeration sees every stored document, including superseded ones
	it := st2.Documents()
	count := 0
	var lastPtr types.Pointer
	first := true
	for it.Next() {
		p := it.Pointer()
		if !first {
			if p.Segment < lastPtr.Segment ||
				(p.Segment == lastPtr.Segment && p.Document <= lastPtr.Document) {
				t.Fatalf("enumeration out of order: %s after %s", p, lastPtr)
			}
		}
		lastPtr = p
		first = false
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator failed: %v", err)
	}
	if count != 31 {
		t.Fatalf("enumerated %d documents, want 31", count)
	}
}
