package engine

import (
	"context"
	"testing"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.CompactInterval = 0

	e, err := New(context.Background(), &Config{Options: &opts, Logger: logger.New("engine_test")})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if err := e.Set(ctx, "alpha", []byte("bravo")); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	v, err := e.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if string(v) != "bravo" {
		t.Fatalf("Get() = %q, want bravo", v)
	}

	if err := e.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := e.Get(ctx, "alpha"); !errors.IsNotFound(err) {
		t.Fatalf("Get() after Delete() error = %v, want NotFound", err)
	}
	if err := e.Delete(ctx, "alpha"); !errors.IsNotFound(err) {
		t.Fatalf("Delete() second call error = %v, want NotFound", err)
	}
}

func TestGetMissingKey(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Get(ctx, "missing"); !errors.IsNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want NotFound", err)
	}
}

func TestSetRejectsEmptyKeyOrValue(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if err := e.Set(ctx, "", []byte("v")); !errors.IsValidationError(err) {
		t.Fatalf("Set(empty key) error = %v, want ValidationError", err)
	}
	if err := e.Set(ctx, "k", nil); !errors.IsValidationError(err) {
		t.Fatalf("Set(empty value) error = %v, want ValidationError", err)
	}
	if err := e.Set(ctx, "k", []byte{}); !errors.IsValidationError(err) {
		t.Fatalf("Set(empty value) error = %v, want ValidationError", err)
	}
}

func TestGetDeleteRejectEmptyKey(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Get(ctx, ""); !errors.IsValidationError(err) {
		t.Fatalf("Get(empty key) error = %v, want ValidationError", err)
	}
	if err := e.Delete(ctx, ""); !errors.IsValidationError(err) {
		t.Fatalf("Delete(empty key) error = %v, want ValidationError", err)
	}
}

func TestOverwriteReturnsLatestValue(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if err := e.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set() #1 unexpected error: %v", err)
	}
	if err := e.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set() #2 unexpected error: %v", err)
	}

	v, err := e.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if string(v) != "v2" {
		t.Fatalf("Get() = %q, want v2", v)
	}
}

// TestRecoveryReplaysHints closes an engine after writing keys and reopens
// a fresh one against the same directory, simulating a process restart.
func TestRecoveryReplaysHints(t *testing.T) {
	ctx := context.Background()

	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.CompactInterval = 0

	e1, err := New(ctx, &Config{Options: &opts, Logger: logger.New("engine_test")})
	if err != nil {
		t.Fatalf("New() #1 unexpected error: %v", err)
	}
	if err := e1.Set(ctx, "alive", []byte("value")); err != nil {
		t.Fatalf("Set(alive) unexpected error: %v", err)
	}
	if err := e1.Set(ctx, "gone", []byte("value")); err != nil {
		t.Fatalf("Set(gone) unexpected error: %v", err)
	}
	if err := e1.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete(gone) unexpected error: %v", err)
	}
	if err := e1.Close(); err != nil {
		t.Fatalf("Close() #1 unexpected error: %v", err)
	}

	e2, err := New(ctx, &Config{Options: &opts, Logger: logger.New("engine_test")})
	if err != nil {
		t.Fatalf("New() #2 unexpected error: %v", err)
	}
	defer e2.Close()

	v, err := e2.Get(ctx, "alive")
	if err != nil {
		t.Fatalf("Get(alive) after reopen unexpected error: %v", err)
	}
	if string(v) != "value" {
		t.Fatalf("Get(alive) after reopen = %q, want value", v)
	}

	if _, err := e2.Get(ctx, "gone"); !errors.IsNotFound(err) {
		t.Fatalf("Get(gone) after reopen error = %v, want NotFound", err)
	}
}

func TestMergeReclaimsOverwrittenKeys(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if err := e.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set() #1 unexpected error: %v", err)
	}
	if err := e.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set() #2 unexpected error: %v", err)
	}
	if err := e.Set(ctx, "dropped", []byte("v")); err != nil {
		t.Fatalf("Set(dropped) unexpected error: %v", err)
	}
	if err := e.Delete(ctx, "dropped"); err != nil {
		t.Fatalf("Delete(dropped) unexpected error: %v", err)
	}

	if err := e.Merge(ctx); err != nil {
		t.Fatalf("Merge() unexpected error: %v", err)
	}

	v, err := e.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get(k) after Merge() unexpected error: %v", err)
	}
	if string(v) != "v2" {
		t.Fatalf("Get(k) after Merge() = %q, want v2", v)
	}

	if _, err := e.Get(ctx, "dropped"); !errors.IsNotFound(err) {
		t.Fatalf("Get(dropped) after Merge() error = %v, want NotFound", err)
	}
}

func TestSecondOpenFailsWithLockHeld(t *testing.T) {
	ctx := context.Background()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	e1, err := New(ctx, &Config{Options: &opts, Logger: logger.New("engine_test")})
	if err != nil {
		t.Fatalf("New() #1 unexpected error: %v", err)
	}
	defer e1.Close()

	_, err = New(ctx, &Config{Options: &opts, Logger: logger.New("engine_test")})
	if err == nil {
		t.Fatalf("New() #2 succeeded while #1 holds the lock, want an error")
	}
	if code := errors.GetErrorCode(err); code != errors.ErrorCodeLockHeld {
		t.Fatalf("New() #2 error code = %s, want %s", code, errors.ErrorCodeLockHeld)
	}
}
