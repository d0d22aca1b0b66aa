package index

import "sync"

// Entry is the in-memory mirror of a HintRecord's addressing fields, the
// absolute minimum metadata required to locate and retrieve a data record
// from disk without scanning. Every byte here is paid for by every live key
// in the store, so the layout favors compactness over convenience.
type Entry struct {
	// Timestamp is the wall-clock second at which the record was written.
	// When hint segments are replayed out of directory order, the entry
	// with the larger Timestamp for a given key wins.
	Timestamp int64

	// FileID identifies which data segment holds the live record.
	FileID uint32

	// Offset is the byte position within that segment where the record
	// begins.
	Offset uint64
}

// bucket is one independently-lockable partition of the striped index.
type bucket struct {
	mu      sync.RWMutex
	entries map[string]Entry
}
