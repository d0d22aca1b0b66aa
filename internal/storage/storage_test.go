package storage

import (
	"testing"

	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
)

func newTestStorage(t *testing.T, maxDataSize, maxHintSize uint64) *Storage {
	t.Helper()
	dir := t.TempDir()

	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.SegmentOptions.MaxDataSize = maxDataSize
	opts.SegmentOptions.MaxHintSize = maxHintSize

	s, err := New(&Config{Options: &opts, Logger: logger.New("storage_test")})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendDataAndReadBack(t *testing.T) {
	s := newTestStorage(t, 1<<20, 1<<20)

	record := DataRecord{Timestamp: 100, Key: []byte("alpha"), Value: []byte("bravo")}
	fileID, offset, err := s.AppendData(record)
	if err != nil {
		t.Fatalf("AppendData() unexpected error: %v", err)
	}
	if fileID != 0 || offset != 0 {
		t.Fatalf("AppendData() = (%d, %d), want (0, 0)", fileID, offset)
	}

	got, err := s.ReadData(fileID, offset)
	if err != nil {
		t.Fatalf("ReadData() unexpected error: %v", err)
	}
	if got.Timestamp != record.Timestamp || string(got.Key) != string(record.Key) || string(got.Value) != string(record.Value) {
		t.Fatalf("ReadData() = %+v, want %+v", got, record)
	}
}

func TestAppendDataRotatesOnOverflow(t *testing.T) {
	record := DataRecord{Timestamp: 1, Key: []byte("k"), Value: []byte("v")}
	recordSize := uint64(len(record.Marshal()))

	s := newTestStorage(t, recordSize, 1<<20)

	id1, _, err := s.AppendData(record)
	if err != nil {
		t.Fatalf("AppendData() #1 unexpected error: %v", err)
	}
	id2, off2, err := s.AppendData(record)
	if err != nil {
		t.Fatalf("AppendData() #2 unexpected error: %v", err)
	}

	if id2 != id1+1 {
		t.Fatalf("second append fileID = %d, want %d (rotation expected)", id2, id1+1)
	}
	if off2 != 0 {
		t.Fatalf("second append offset = %d, want 0 in the fresh segment", off2)
	}
}

func TestReplayHintsOrdering(t *testing.T) {
	s := newTestStorage(t, 1<<20, 1<<20)

	for i := 0; i < 3; i++ {
		key := []byte{byte('a' + i)}
		if err := s.AppendHint(HintRecord{Timestamp: int64(i), Key: key, FileID: 0, Offset: uint64(i), Valid: true}); err != nil {
			t.Fatalf("AppendHint() unexpected error: %v", err)
		}
	}

	var got []HintRecord
	err := s.ReplayHints(func(r HintRecord) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("ReplayHints() unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReplayHints() visited %d records, want 3", len(got))
	}
	for i, r := range got {
		if r.Timestamp != int64(i) || string(r.Key) != string([]byte{byte('a' + i)}) {
			t.Fatalf("ReplayHints()[%d] = %+v, want timestamp %d key %c", i, r, i, 'a'+i)
		}
	}
}

