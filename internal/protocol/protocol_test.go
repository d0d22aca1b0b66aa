package protocol

import (
	"context"
	"testing"

	igniteerrors "github.com/ignitedb/ignite/pkg/errors"
)

type fakeEngine struct {
	values map[string][]byte
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{values: make(map[string][]byte)}
}

func (f *fakeEngine) Set(ctx context.Context, key string, value []byte) error {
	f.values[key] = value
	return nil
}

func (f *fakeEngine) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, igniteerrors.NewKeyNotFoundError(key)
	}
	return v, nil
}

func (f *fakeEngine) Delete(ctx context.Context, key string) error {
	if _, ok := f.values[key]; !ok {
		return igniteerrors.NewKeyNotFoundError(key)
	}
	delete(f.values, key)
	return nil
}

func TestDispatchSetGetDel(t *testing.T) {
	ctx := context.Background()
	d := New(newFakeEngine())

	if got := d.Handle(ctx, "set alpha bravo"); got != replySetSuccess {
		t.Fatalf("Handle(set) = %q, want %q", got, replySetSuccess)
	}
	if got := d.Handle(ctx, "get alpha"); got != "bravo" {
		t.Fatalf("Handle(get) = %q, want bravo", got)
	}
	if got := d.Handle(ctx, "del alpha"); got != replyDelSuccess {
		t.Fatalf("Handle(del) = %q, want %q", got, replyDelSuccess)
	}
	if got := d.Handle(ctx, "get alpha"); got == "" || got == "bravo" {
		t.Fatalf("Handle(get) after del = %q, want an error message", got)
	}
}

func TestDispatchInvalidCommands(t *testing.T) {
	ctx := context.Background()
	d := New(newFakeEngine())

	cases := []string{
		"",
		"   ",
		"frobnicate alpha",
		"set onlykey",
		"get",
		"del",
		"set a b c",
	}
	for _, req := range cases {
		if got := d.Handle(ctx, req); got != replyInvalid {
			t.Fatalf("Handle(%q) = %q, want %q", req, got, replyInvalid)
		}
	}
}

func TestDispatchGetMissingKey(t *testing.T) {
	ctx := context.Background()
	d := New(newFakeEngine())

	got := d.Handle(ctx, "get missing")
	if got == "" {
		t.Fatalf("Handle(get missing) = empty string, want an error message")
	}
}
