package options

import "time"

const (
	// DefaultDataDir specifies the default base directory where Ignite will
	// store its database directory. If no other directory is specified
	// during initialization, this path will be used.
	DefaultDataDir = "./db"

	// DefaultLockFile is the default name of the advisory lock file inside
	// a database directory.
	DefaultLockFile = "LOCK"

	// DefaultCompactInterval defines the default time duration between
	// automatic compaction operations. By default, compaction runs every 5
	// hours.
	DefaultCompactInterval = time.Hour * 5

	// DefaultBucketCount is the default number of buckets the in-memory
	// index is striped across, per spec.
	DefaultBucketCount uint32 = 107

	// DefaultCacheCapacity is the default number of values the LRU read
	// cache holds, per spec.
	DefaultCacheCapacity = 100

	// DefaultWorkerPoolSize is the default number of goroutines the TCP
	// server collaborator dispatches connections to.
	DefaultWorkerPoolSize = 8

	// MaxDataSegmentSize is the default cap on the active data segment, per
	// spec (64 MiB).
	MaxDataSegmentSize uint64 = 64 * 1024 * 1024

	// MaxHintSegmentSize is the default cap on the active hint segment, per
	// spec (32 MiB).
	MaxHintSegmentSize uint64 = 32 * 1024 * 1024

	// DefaultDataDirectory is the default subdirectory holding data
	// segments.
	DefaultDataDirectory = "data"

	// DefaultIndexDirectory is the default subdirectory holding hint
	// segments.
	DefaultIndexDirectory = "index"

	// DefaultDataPrefix is the default filename prefix for data segments.
	DefaultDataPrefix = "data"

	// DefaultHintPrefix is the default filename prefix for hint segments.
	DefaultHintPrefix = "hint"
)

// NewDefaultOptions returns the default configuration settings for an
// Ignite instance. Each call returns a fresh Options value (and a fresh
// *segmentOptions) so callers can safely mutate the result without
// affecting other instances.
func NewDefaultOptions() Options {
	return Options{
		DataDir:         DefaultDataDir,
		LockFile:        DefaultLockFile,
		CompactInterval: DefaultCompactInterval,
		BucketCount:     DefaultBucketCount,
		CacheCapacity:   DefaultCacheCapacity,
		WorkerPoolSize:  DefaultWorkerPoolSize,
		SegmentOptions: &segmentOptions{
			MaxDataSize:    MaxDataSegmentSize,
			MaxHintSize:    MaxHintSegmentSize,
			DataDirectory:  DefaultDataDirectory,
			IndexDirectory: DefaultIndexDirectory,
			DataPrefix:     DefaultDataPrefix,
			HintPrefix:     DefaultHintPrefix,
		},
	}
}
