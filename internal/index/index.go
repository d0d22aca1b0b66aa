// Package index provides the striped in-memory index for the ignite
// key-value store: the authority on which keys are currently live and
// where their most recent record lives on disk.
//
// The index is partitioned into a fixed number of buckets, each guarded by
// its own sync.RWMutex. A key's bucket is chosen by a simple checksum of
// its bytes, so unrelated keys almost never contend for the same lock even
// under heavy concurrent access from many goroutines. This is the "striped
// map" pattern: trade a small, fixed amount of memory overhead for
// dramatically reduced lock contention compared to a single mutex guarding
// one big map.
package index

import (
	"github.com/ignitedb/ignite/pkg/errors"
)

// Index is the striped key -> Entry map backing lookups and recovery. The
// zero value is not usable; construct one with New.
type Index struct {
	buckets []bucket
}

// New creates an Index striped into bucketCount buckets. bucketCount must
// be greater than zero; New panics otherwise, since a zero-bucket index can
// never hold a key and indicates a configuration bug the caller should fix
// before startup, not at request time.
func New(bucketCount uint32) *Index {
	if bucketCount == 0 {
		panic("index: bucketCount must be greater than zero")
	}

	buckets := make([]bucket, bucketCount)
	for i := range buckets {
		buckets[i].entries = make(map[string]Entry)
	}
	return &Index{buckets: buckets}
}

// hash computes h(k) = (Σ bᵢ²) mod B over the unsigned byte values of key,
// selecting which bucket owns key. Kept exactly as this literal function
// rather than swapped for a "better" hash.
func (idx *Index) hash(key string) uint32 {
	var sum uint64
	for i := 0; i < len(key); i++ {
		b := uint64(key[i])
		sum += b * b
	}
	return uint32(sum % uint64(len(idx.buckets)))
}

func (idx *Index) bucketFor(key string) *bucket {
	return &idx.buckets[idx.hash(key)]
}

// Set upserts key's entry, taking the writer lock on key's bucket only.
func (idx *Index) Set(key string, entry Entry) {
	b := idx.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = entry
}

// Get returns key's entry, taking the reader lock on key's bucket only. It
// returns an IndexError with ErrorCodeIndexKeyNotFound if key is absent.
func (idx *Index) Get(key string) (Entry, error) {
	b := idx.bucketFor(key)
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[key]
	if !ok {
		return Entry{}, errors.NewKeyNotFoundError(key)
	}
	return entry, nil
}

// Del removes key's entry, taking the writer lock on key's bucket only. It
// returns an IndexError with ErrorCodeIndexKeyNotFound if key was already
// absent.
func (idx *Index) Del(key string) error {
	b := idx.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; !ok {
		return errors.NewKeyNotFoundError(key)
	}
	delete(b.entries, key)
	return nil
}

// Has reports whether key currently has a live entry.
func (idx *Index) Has(key string) bool {
	b := idx.bucketFor(key)
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[key]
	return ok
}

// Size returns the total number of live keys across all buckets. Buckets
// are visited one at a time under their own reader lock, so a writer
// touching a different bucket concurrently is fine; a concurrent writer on
// a bucket Size hasn't visited yet may or may not be reflected in the
// count. This weak-snapshot behavior is an accepted tradeoff.
func (idx *Index) Size() int {
	total := 0
	for i := range idx.buckets {
		b := &idx.buckets[i]
		b.mu.RLock()
		total += len(b.entries)
		b.mu.RUnlock()
	}
	return total
}

// Empty reports whether the index currently holds no live keys.
func (idx *Index) Empty() bool {
	return idx.Size() == 0
}

// Clear removes every entry from every bucket. Merge does not call it: it
// builds a new Index for the rewritten store and swaps it in.
func (idx *Index) Clear() {
	for i := range idx.buckets {
		b := &idx.buckets[i]
		b.mu.Lock()
		clear(b.entries)
		b.mu.Unlock()
	}
}

// KeyEntry pairs a key with its Entry, the element type CopyTo snapshots
// into.
type KeyEntry struct {
	Key   string
	Entry Entry
}

// CopyTo returns a flat snapshot of every live key and its Entry, taking
// each bucket's reader lock in turn. Because buckets are visited
// sequentially rather than under one global lock, the result is a weak
// snapshot: it reflects each bucket's state at the moment it was visited,
// not a single consistent instant across the whole index. Merge, the sole
// caller, already requires external serialization against concurrent
// mutators, so this is sufficient.
func (idx *Index) CopyTo() []KeyEntry {
	out := make([]KeyEntry, 0, idx.Size())
	for i := range idx.buckets {
		b := &idx.buckets[i]
		b.mu.RLock()
		for k, e := range b.entries {
			out = append(out, KeyEntry{Key: k, Entry: e})
		}
		b.mu.RUnlock()
	}
	return out
}

// BucketCount returns the number of buckets the index is striped across.
func (idx *Index) BucketCount() int {
	return len(idx.buckets)
}
