package engine

import (
	"context"
	"path/filepath"

	"github.com/ignitedb/ignite/internal/compaction"
	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/storage"
	"github.com/ignitedb/ignite/pkg/filesys"
)

// runScheduledMerge adapts Merge to the compaction.MergeFunc signature the
// background scheduler invokes.
func (e *Engine) runScheduledMerge(ctx context.Context) error {
	return e.Merge(ctx)
}

// Merge rewrites the store to contain exactly the live key set, reclaiming
// space held by overwritten and deleted keys.
//
// Rather than deleting the live segment directories in place before
// rewriting them, as the original does, Merge writes the new generation
// into freshly named directories and commits the switch with a single
// atomic manifest write: a crash at any point before that write leaves
// the current generation fully intact and untouched; a crash after it
// leaves only the old generation's now-orphaned directories, cleaned up
// on the next successful merge.
func (e *Engine) Merge(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.diskMu.Lock()
	defer e.diskMu.Unlock()

	e.mu.Lock()
	currentGeneration := e.generation
	currentStore := e.storage
	snapshot := e.index.CopyTo()
	e.mu.Unlock()

	nextGeneration := currentGeneration + 1
	stagingStore, err := storage.New(&storage.Config{
		Options: generationOptions(e.options, nextGeneration),
		Logger:  e.log,
	})
	if err != nil {
		return err
	}

	newIndex := index.New(e.options.BucketCount)
	for _, ke := range snapshot {
		record, err := currentStore.ReadData(ke.Entry.FileID, ke.Entry.Offset)
		if err != nil {
			stagingStore.Close()
			return err
		}

		timestamp := record.Timestamp
		fileID, offset, err := stagingStore.AppendData(storage.DataRecord{
			Timestamp: timestamp,
			Key:       record.Key,
			Value:     record.Value,
		})
		if err != nil {
			stagingStore.Close()
			return err
		}

		if err := stagingStore.AppendHint(storage.HintRecord{
			Timestamp: timestamp,
			Key:       record.Key,
			FileID:    fileID,
			Offset:    offset,
			Valid:     true,
		}); err != nil {
			stagingStore.Close()
			return err
		}

		newIndex.Set(ke.Key, index.Entry{Timestamp: timestamp, FileID: fileID, Offset: offset})
	}

	manifestPath := filepath.Join(e.options.DataDir, compaction.ManifestFile)
	if err := compaction.WriteManifest(manifestPath, compaction.Manifest{Generation: nextGeneration}); err != nil {
		stagingStore.Close()
		return err
	}

	e.mu.Lock()
	e.storage = stagingStore
	e.index = newIndex
	e.generation = nextGeneration
	e.cache.Clear()
	e.mu.Unlock()

	if err := currentStore.Close(); err != nil {
		e.log.Warnw("failed to close previous generation's storage", "error", err, "generation", currentGeneration)
	}
	e.cleanupGeneration(currentGeneration)
	if currentGeneration > 0 {
		// A crash between the previous merge's manifest write and its own
		// cleanup leaves that merge's source generation behind.
		e.cleanupGeneration(currentGeneration - 1)
	}

	e.log.Infow("merge complete", "generation", nextGeneration, "liveKeys", len(snapshot))
	return nil
}

// cleanupGeneration removes the segment directories belonging to a
// generation that a merge has just superseded. Failure to clean up is
// logged, not returned: the new generation is already authoritative and
// durable, so leftover directories are reclaimed opportunistically rather
// than blocking merge's success on it.
func (e *Engine) cleanupGeneration(generation uint64) {
	opts := generationOptions(e.options, generation)
	dataDir := filepath.Join(opts.DataDir, opts.SegmentOptions.DataDirectory)
	hintDir := filepath.Join(opts.DataDir, opts.SegmentOptions.IndexDirectory)

	if err := filesys.DeleteDir(dataDir); err != nil {
		e.log.Warnw("failed to remove superseded data segment directory", "error", err, "path", dataDir)
	}
	if err := filesys.DeleteDir(hintDir); err != nil {
		e.log.Warnw("failed to remove superseded hint segment directory", "error", err, "path", hintDir)
	}
}
