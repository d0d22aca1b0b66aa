// Package options provides data structures and functions for configuring
// the Ignite database. It defines various parameters that control Ignite's
// storage behavior, performance, and maintenance operations, such as
// directory paths, segment characteristics, and compaction intervals.
package options

import (
	"strings"
	"time"
)

// Defines configurable parameters for each segment stream (data and hint).
// It provides fine-grained control over segment behavior, performance, and resource utilization.
type segmentOptions struct {
	// MaxDataSize defines the maximum size the active data segment can grow
	// to before rotation.
	//
	//  - Default: 64MiB
	MaxDataSize uint64 `json:"maxDataSize"`

	// MaxHintSize defines the maximum size the active hint segment can grow
	// to before rotation.
	//
	//  - Default: 32MiB
	MaxHintSize uint64 `json:"maxHintSize"`

	// DataDirectory is the subdirectory (relative to DataDir) holding
	// append-only data segments.
	//
	// Default: "data"
	DataDirectory string `json:"dataDirectory"`

	// IndexDirectory is the subdirectory (relative to DataDir) holding
	// append-only hint segments.
	//
	// Default: "index"
	IndexDirectory string `json:"indexDirectory"`

	// DataPrefix is the filename prefix for data segments. The final
	// filename is "<prefix><segmentId>", e.g. "data0".
	//
	// Default: "data"
	DataPrefix string `json:"dataPrefix"`

	// HintPrefix is the filename prefix for hint segments, e.g. "hint0".
	//
	// Default: "hint"
	HintPrefix string `json:"hintPrefix"`
}

// Defines the configuration parameters for Ignite DB.
// It provides control over storage, performance and maintenance aspects.
type Options struct {
	// DataDir specifies the base path where the database directory lives.
	//
	// Default: "./db"
	DataDir string `json:"dataDir"`

	// LockFile is the filename (relative to DataDir) of the advisory,
	// cross-process exclusive lock that enforces single-writer access to a
	// database directory.
	//
	// Default: "LOCK"
	LockFile string `json:"lockFile"`

	// CompactInterval defines how often the background compaction process
	// runs to merge segments and reclaim space held by overwritten or
	// deleted keys. Zero disables automatic compaction; callers may still
	// invoke Merge explicitly.
	//
	// Default: 5h
	CompactInterval time.Duration `json:"compactInterval"`

	// BucketCount is the number of independently-locked buckets the
	// in-memory index is striped into.
	//
	// Default: 107
	BucketCount uint32 `json:"bucketCount"`

	// CacheCapacity is the maximum number of values the LRU read cache
	// holds before evicting the least-recently-used entry.
	//
	// Default: 100
	CacheCapacity int `json:"cacheCapacity"`

	// WorkerPoolSize is a worker-pool size for the TCP server
	// collaborator. Neither the engine nor cmd/server reads it; cmd/server
	// sizes its pool from its own --workers flag.
	//
	// Default: 8
	WorkerPoolSize int `json:"workerPoolSize"`

	// SegmentOptions configures segment management including size limits
	// and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies the Ignite system's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the interval at which Ignite performs compaction operations.
func WithCompactInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval >= 0 {
			o.CompactInterval = interval
		}
	}
}

// Sets the number of buckets the in-memory index is striped across.
func WithBucketCount(count uint32) OptionFunc {
	return func(o *Options) {
		if count > 0 {
			o.BucketCount = count
		}
	}
}

// Sets the maximum number of entries the LRU read cache holds.
func WithCacheCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.CacheCapacity = capacity
		}
	}
}

// Sets the WorkerPoolSize option (see Options.WorkerPoolSize).
func WithWorkerPoolSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.WorkerPoolSize = size
		}
	}
}

// Sets the directory specifically for storing data segment files.
func WithDataSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.DataDirectory = directory
		}
	}
}

// Sets the directory specifically for storing hint segment files.
func WithIndexSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.IndexDirectory = directory
		}
	}
}

// Sets the maximum size of the active data segment file.
func WithMaxDataSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.SegmentOptions.MaxDataSize = size
		}
	}
}

// Sets the maximum size of the active hint segment file.
func WithMaxHintSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.SegmentOptions.MaxHintSize = size
		}
	}
}
