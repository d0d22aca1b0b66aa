package compaction

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestManifestRoundTripAndMissingDefaultsToZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)

	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() on missing file unexpected error: %v", err)
	}
	if m.Generation != 0 {
		t.Fatalf("ReadManifest() missing file Generation = %d, want 0", m.Generation)
	}

	if err := WriteManifest(path, Manifest{Generation: 3}); err != nil {
		t.Fatalf("WriteManifest() unexpected error: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() unexpected error: %v", err)
	}
	if got.Generation != 3 {
		t.Fatalf("ReadManifest() = %+v, want Generation 3", got)
	}
}

func TestGenerationDirName(t *testing.T) {
	if got := GenerationDirName("data", 0); got != "data" {
		t.Fatalf("GenerationDirName(data, 0) = %q, want data", got)
	}
	if got := GenerationDirName("data", 2); got != "data-gen-2" {
		t.Fatalf("GenerationDirName(data, 2) = %q, want data-gen-2", got)
	}
}

func TestSchedulerInvokesMergeOnInterval(t *testing.T) {
	var calls int32

	s := New(10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	time.Sleep(55 * time.Millisecond)
	s.Stop()

	if n := atomic.LoadInt32(&calls); n < 2 {
		t.Fatalf("scheduler invoked merge %d times in ~55ms at a 10ms interval, want at least 2", n)
	}
}

func TestSchedulerZeroIntervalDisabled(t *testing.T) {
	var calls int32
	s := New(0, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("scheduler with zero interval invoked merge %d times, want 0", n)
	}
}
