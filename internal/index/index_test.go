package index

import (
	"fmt"
	"sync"
	"testing"

	igniteerrors "github.com/ignitedb/ignite/pkg/errors"
)

func TestSetGetDel(t *testing.T) {
	idx := New(107)

	if _, err := idx.Get("missing"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want NotFound", err)
	}

	idx.Set("alpha", Entry{Timestamp: 1, FileID: 0, Offset: 0})
	entry, err := idx.Get("alpha")
	if err != nil {
		t.Fatalf("Get(alpha) unexpected error: %v", err)
	}
	if entry.FileID != 0 || entry.Offset != 0 {
		t.Fatalf("Get(alpha) = %+v, want FileID=0 Offset=0", entry)
	}

	if !idx.Has("alpha") {
		t.Fatalf("Has(alpha) = false, want true")
	}

	if err := idx.Del("alpha"); err != nil {
		t.Fatalf("Del(alpha) unexpected error: %v", err)
	}
	if idx.Has("alpha") {
		t.Fatalf("Has(alpha) = true after Del, want false")
	}
	if err := idx.Del("alpha"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Del(alpha) second call error = %v, want NotFound", err)
	}
}

func TestHashWithinBucketRange(t *testing.T) {
	idx := New(107)
	keys := []string{"", "a", "alpha", "the-quick-brown-fox", "0123456789"}
	for _, k := range keys {
		h := idx.hash(k)
		if h >= 107 {
			t.Fatalf("hash(%q) = %d, want < 107", k, h)
		}
	}
}

func TestSizeEmptyClear(t *testing.T) {
	idx := New(107)
	if !idx.Empty() {
		t.Fatalf("Empty() = false on fresh index")
	}

	for i := 0; i < 50; i++ {
		idx.Set(fmt.Sprintf("k%d", i), Entry{Timestamp: int64(i)})
	}
	if idx.Size() != 50 {
		t.Fatalf("Size() = %d, want 50", idx.Size())
	}

	idx.Clear()
	if !idx.Empty() {
		t.Fatalf("Empty() = false after Clear")
	}
}

func TestCopyTo(t *testing.T) {
	idx := New(107)
	want := map[string]Entry{
		"a": {Timestamp: 1, FileID: 0, Offset: 10},
		"b": {Timestamp: 2, FileID: 1, Offset: 20},
	}
	for k, e := range want {
		idx.Set(k, e)
	}

	got := idx.CopyTo()
	if len(got) != len(want) {
		t.Fatalf("CopyTo() len = %d, want %d", len(got), len(want))
	}
	for _, ke := range got {
		if want[ke.Key] != ke.Entry {
			t.Fatalf("CopyTo()[%s] = %+v, want %+v", ke.Key, ke.Entry, want[ke.Key])
		}
	}
}

// TestConcurrentDisjointKeys checks that many goroutines writing disjoint
// key ranges concurrently all land, with every key retrievable afterward.
func TestConcurrentDisjointKeys(t *testing.T) {
	idx := New(107)

	const goroutines = 20
	const perGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i)
				idx.Set(key, Entry{Timestamp: int64(i), FileID: uint32(g), Offset: uint64(i)})
			}
		}(g)
	}
	wg.Wait()

	if got, want := idx.Size(), goroutines*perGoroutine; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}

	for g := 0; g < goroutines; g++ {
		for i := 0; i < perGoroutine; i++ {
			key := fmt.Sprintf("g%d-k%d", g, i)
			entry, err := idx.Get(key)
			if err != nil {
				t.Fatalf("Get(%s) unexpected error: %v", key, err)
			}
			if entry.FileID != uint32(g) || entry.Offset != uint64(i) {
				t.Fatalf("Get(%s) = %+v, want FileID=%d Offset=%d", key, entry, g, i)
			}
		}
	}
}
