// Package engine provides the core database engine implementation for the
// Ignite storage system.
//
// The engine serves as the central coordinator and entry point for all
// database operations. It orchestrates the interaction between four main
// subsystems:
//   - Index: the striped in-memory map from key to on-disk location.
//   - Cache: a bounded LRU lookaside over recently written values.
//   - Storage: the append-only data and hint segment streams.
//   - Compaction: background merge scheduling and generation bookkeeping.
//
// A single process-wide reader/writer lock ("the disk lock") serializes
// access to the storage subsystem: writers hold it only across the
// append(s) a set or delete performs, releasing it before touching the
// index or cache; readers hold it in read mode only while re-reading a
// value back off disk. The index and cache are updated without the disk
// lock held, so there is a narrow window after a durable append where the
// record exists on disk but is not yet visible through the index; this
// is an accepted eventual-consistency window, not a bug.
package engine

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/cache"
	"github.com/ignitedb/ignite/internal/compaction"
	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/storage"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// Engine is the main database engine that coordinates all subsystems. It
// is safe for concurrent use by multiple goroutines.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	diskMu sync.RWMutex // serializes access to storage; see package doc.

	mu         sync.Mutex // guards index/storage/generation during a swap (merge)
	index      *index.Index
	cache      *cache.Cache
	storage    *storage.Storage
	generation uint64

	lock      *filesys.FileLock
	scheduler *compaction.Scheduler
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens (and, if necessary, creates) the database directory described
// by config.Options.DataDir, replays its hint segments to rebuild the
// index, and returns a ready-to-use Engine.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, fmt.Errorf("engine: invalid configuration")
	}

	opts := config.Options
	log := config.Logger

	if err := filesys.CreateDir(opts.DataDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, opts.DataDir)
	}

	lockPath := filepath.Join(opts.DataDir, opts.LockFile)
	lock, err := filesys.Lock(lockPath)
	if err != nil {
		if stdErrors.Is(err, filesys.ErrLockHeld) {
			return nil, errors.NewLockHeldError(err, lockPath)
		}
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to acquire database lock").WithPath(lockPath)
	}

	manifestPath := filepath.Join(opts.DataDir, compaction.ManifestFile)
	manifest, err := compaction.ReadManifest(manifestPath)
	if err != nil {
		filesys.Unlock(lock)
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read generation manifest").WithPath(manifestPath)
	}

	store, err := storage.New(&storage.Config{
		Options: generationOptions(opts, manifest.Generation),
		Logger:  log,
	})
	if err != nil {
		filesys.Unlock(lock)
		return nil, err
	}

	idx := index.New(opts.BucketCount)
	if err := replayHints(store, idx, log); err != nil {
		store.Close()
		filesys.Unlock(lock)
		return nil, err
	}

	e := &Engine{
		options:    opts,
		log:        log,
		index:      idx,
		cache:      cache.New(opts.CacheCapacity),
		storage:    store,
		generation: manifest.Generation,
		lock:       lock,
	}

	e.scheduler = compaction.New(opts.CompactInterval, e.runScheduledMerge, log)
	e.scheduler.Start(ctx)

	log.Infow("engine opened", "dataDir", opts.DataDir, "generation", manifest.Generation)
	return e, nil
}

// generationOptions returns a copy of opts whose segment directories are
// rewritten to the names generation lives under (plain "data"/"index" at
// generation 0, "<name>-gen-<n>" afterward).
func generationOptions(opts *options.Options, generation uint64) *options.Options {
	segOpts := *opts.SegmentOptions
	segOpts.DataDirectory = compaction.GenerationDirName(opts.SegmentOptions.DataDirectory, generation)
	segOpts.IndexDirectory = compaction.GenerationDirName(opts.SegmentOptions.IndexDirectory, generation)

	clone := *opts
	clone.SegmentOptions = &segOpts
	return &clone
}

// replayHints rebuilds idx from every hint record store has on disk, in
// ascending segment id order. Within and across segments, the record with
// the highest timestamp for a given key wins: every record is compared
// against whatever idx currently holds for its key before being applied,
// so replay is correct even if segments were ever interleaved out of
// strict write order.
func replayHints(store *storage.Storage, idx *index.Index, log *zap.SugaredLogger) error {
	var replayed, tombstones int
	deletedAt := make(map[string]int64)

	err := store.ReplayHints(func(r storage.HintRecord) error {
		key := string(r.Key)

		if existing, err := idx.Get(key); err == nil && existing.Timestamp > r.Timestamp {
			return nil
		}
		if ts, ok := deletedAt[key]; ok && ts > r.Timestamp {
			return nil
		}

		if !r.Valid {
			tombstones++
			deletedAt[key] = r.Timestamp
			if err := idx.Del(key); err != nil && !errors.IsNotFound(err) {
				return err
			}
			return nil
		}

		replayed++
		idx.Set(key, index.Entry{Timestamp: r.Timestamp, FileID: r.FileID, Offset: r.Offset})
		return nil
	})
	if err != nil {
		return err
	}

	log.Infow("hint replay complete", "upserts", replayed, "tombstones", tombstones, "liveKeys", idx.Size())
	return nil
}

// validateKeyValue enforces the spec's data model constraint that keys and
// values are non-empty. requireValue is false for Get/Delete, which take no
// value argument.
func validateKeyValue(key string, value []byte, requireValue bool) error {
	if key == "" {
		return errors.NewRequiredFieldError("key").WithProvided(key)
	}
	if requireValue && len(value) == 0 {
		return errors.NewRequiredFieldError("value").WithProvided(value)
	}
	return nil
}

// Set durably appends key/value and makes it visible through the index
// and cache.
func (e *Engine) Set(ctx context.Context, key string, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := validateKeyValue(key, value, true); err != nil {
		return err
	}

	timestamp := filesys.Timestamp()
	record := storage.DataRecord{Timestamp: timestamp, Key: []byte(key), Value: value}

	e.diskMu.Lock()
	store := e.storage
	fileID, offset, err := store.AppendData(record)
	if err != nil {
		e.diskMu.Unlock()
		return err
	}

	hint := storage.HintRecord{Timestamp: timestamp, Key: record.Key, FileID: fileID, Offset: offset, Valid: true}
	err = store.AppendHint(hint)
	e.diskMu.Unlock()
	if err != nil {
		return err
	}

	idx, c := e.subsystems()
	idx.Set(key, index.Entry{Timestamp: timestamp, FileID: fileID, Offset: offset})
	c.Set(key, value)
	return nil
}

// Get returns key's current value, consulting the cache before falling
// back to a disk read through the index.
func (e *Engine) Get(ctx context.Context, key string) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if err := validateKeyValue(key, nil, false); err != nil {
		return nil, err
	}

	idx, c := e.subsystems()

	if value, err := c.Get(key); err == nil {
		return value, nil
	}

	entry, err := idx.Get(key)
	if err != nil {
		return nil, err
	}

	e.diskMu.RLock()
	store := e.storage
	record, err := store.ReadData(entry.FileID, entry.Offset)
	e.diskMu.RUnlock()
	if err != nil {
		return nil, err
	}

	return record.Value, nil
}

// Delete removes key: it drops key from the cache, then appends a
// tombstone hint record before dropping it from the index.
func (e *Engine) Delete(ctx context.Context, key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := validateKeyValue(key, nil, false); err != nil {
		return err
	}

	idx, c := e.subsystems()

	if err := c.Del(key); err != nil && !errors.IsNotFound(err) {
		return err
	}

	entry, err := idx.Get(key)
	if err != nil {
		return err
	}

	hint := storage.HintRecord{
		Timestamp: filesys.Timestamp(),
		Key:       []byte(key),
		FileID:    entry.FileID,
		Offset:    entry.Offset,
		Valid:     false,
	}

	e.diskMu.Lock()
	err = e.storage.AppendHint(hint)
	e.diskMu.Unlock()
	if err != nil {
		return err
	}

	if err := idx.Del(key); err != nil && !errors.IsNotFound(err) {
		return err
	}
	return nil
}

// subsystems returns the engine's current index and cache, guarded
// against a concurrent Merge swapping them out from underneath a caller.
func (e *Engine) subsystems() (*index.Index, *cache.Cache) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index, e.cache
}

// Close gracefully shuts down the engine: stops the background compaction
// scheduler, closes the storage subsystem, and releases the database
// lock. Close is idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if e.scheduler != nil {
		e.scheduler.Stop()
	}

	storeErr := e.storage.Close()
	lockErr := filesys.Unlock(e.lock)

	if storeErr != nil {
		return storeErr
	}
	return lockErr
}
