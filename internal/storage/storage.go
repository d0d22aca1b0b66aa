// Package storage provides the append-only segment writer: two
// independent byte streams, data and hint, each a sequence of fixed-size-
// capped segment files rolled over once the active segment grows past its
// configured limit.
//
// Neither stream ever mutates a record once written. Space held by
// overwritten or deleted keys is reclaimed only by the engine's merge,
// which opens a fresh Storage over a new generation's segment directories
// rather than rewriting this one in place.
package storage

import (
	"encoding/binary"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/ignitedb/ignite/pkg/seginfo"
	"go.uber.org/zap"
)

var ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")

// segmentStream is one append-only stream (either data or hint), tracking
// its own active segment id, write handle, and current size.
type segmentStream struct {
	dir      string
	prefix   string
	maxSize  uint64
	activeID uint64
	size     uint64
	file     *os.File
}

func openSegmentFile(dir, prefix string, id uint64) (*os.File, uint64, error) {
	path := seginfo.Path(dir, id, prefix)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open segment file").
			WithFileName(filepath.Base(path)).
			WithPath(path).
			WithDetail("flags", []string{"O_CREATE", "O_RDWR", "O_APPEND"})
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to end of segment file").
			WithFileName(filepath.Base(path)).
			WithPath(path)
	}

	return file, uint64(offset), nil
}

func openSegmentStream(dir, prefix string, maxSize uint64) (*segmentStream, error) {
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dir)
	}

	id, found, err := seginfo.LatestID(dir, prefix)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to discover existing segments").
			WithPath(dir)
	}
	if !found {
		id = 0
	}

	file, size, err := openSegmentFile(dir, prefix, id)
	if err != nil {
		return nil, err
	}

	s := &segmentStream{dir: dir, prefix: prefix, maxSize: maxSize, activeID: id, size: size, file: file}

	// The segment discovered as "latest" may already be full from a prior
	// run; roll to a fresh one before accepting any writes.
	if found && size >= maxSize {
		if err := s.rotate(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return s, nil
}

// append writes payload to the active segment, rolling to a new segment
// first if the active one is at or past capacity. It returns the segment
// id and pre-write offset payload was written at.
func (s *segmentStream) append(payload []byte) (fileID uint32, offset uint64, err error) {
	if s.size >= s.maxSize {
		if err := s.rotate(); err != nil {
			return 0, 0, err
		}
	}

	offset = s.size
	n, err := s.file.Write(payload)
	if err != nil {
		return 0, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record to segment").
			WithFileName(filepath.Base(s.file.Name())).
			WithOffset(int(offset))
	}
	if err := s.file.Sync(); err != nil {
		return 0, 0, errors.ClassifySyncError(err, filepath.Base(s.file.Name()), s.file.Name(), int(offset))
	}

	s.size += uint64(n)
	return uint32(s.activeID), offset, nil
}

// rotate seals the current segment and opens a fresh one at the next id.
func (s *segmentStream) rotate() error {
	if err := s.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seal segment before rotation").
			WithFileName(filepath.Base(s.file.Name()))
	}

	nextID := s.activeID + 1
	file, _, err := openSegmentFile(s.dir, s.prefix, nextID)
	if err != nil {
		return err
	}

	s.file = file
	s.activeID = nextID
	s.size = 0
	return nil
}

func (s *segmentStream) close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Storage owns the data and hint segment streams. Callers (the engine)
// are responsible for serializing writers via their own disk lock; Storage
// itself does not lock across streams.
type Storage struct {
	closed atomic.Bool

	data *segmentStream
	hint *segmentStream

	log *zap.SugaredLogger
}

// Config carries the dependencies Storage needs to bootstrap itself.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New bootstraps both segment streams, discovering and continuing from
// whatever segments already exist under config.Options.DataDir.
func New(config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, fmt.Errorf("storage: invalid configuration")
	}

	opts := config.Options
	dataDir := filepath.Join(opts.DataDir, opts.SegmentOptions.DataDirectory)
	hintDir := filepath.Join(opts.DataDir, opts.SegmentOptions.IndexDirectory)

	config.Logger.Infow("opening data segment stream", "dir", dataDir, "maxSize", opts.SegmentOptions.MaxDataSize)
	data, err := openSegmentStream(dataDir, opts.SegmentOptions.DataPrefix, opts.SegmentOptions.MaxDataSize)
	if err != nil {
		return nil, err
	}

	config.Logger.Infow("opening hint segment stream", "dir", hintDir, "maxSize", opts.SegmentOptions.MaxHintSize)
	hint, err := openSegmentStream(hintDir, opts.SegmentOptions.HintPrefix, opts.SegmentOptions.MaxHintSize)
	if err != nil {
		data.close()
		return nil, err
	}

	return &Storage{data: data, hint: hint, log: config.Logger}, nil
}

// AppendData appends record to the active data segment, returning the
// segment id and offset the record was written at.
func (s *Storage) AppendData(record DataRecord) (fileID uint32, offset uint64, err error) {
	if s.closed.Load() {
		return 0, 0, ErrStorageClosed
	}
	return s.data.append(record.Marshal())
}

// AppendHint appends record to the active hint segment.
func (s *Storage) AppendHint(record HintRecord) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}
	_, _, err := s.hint.append(record.Marshal())
	return err
}

// ReadData reads back the DataRecord stored at (fileID, offset). It opens
// a dedicated read handle per call so concurrent reads never contend with
// the stream's append-only write handle or with each other.
func (s *Storage) ReadData(fileID uint32, offset uint64) (DataRecord, error) {
	if s.closed.Load() {
		return DataRecord{}, ErrStorageClosed
	}

	path := seginfo.Path(s.data.dir, uint64(fileID), s.data.prefix)
	file, err := os.Open(path)
	if err != nil {
		return DataRecord{}, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open data segment for read").
			WithPath(path).WithOffset(int(offset))
	}
	defer file.Close()

	header := make([]byte, dataRecordHeaderSize)
	if _, err := file.ReadAt(header, int64(offset)); err != nil {
		return DataRecord{}, errors.NewStorageError(err, errors.ErrorCodeHeaderReadFailure, "failed to read data record header").
			WithPath(path).WithOffset(int(offset))
	}

	hdr, err := UnmarshalDataRecordHeader(header)
	if err != nil {
		return DataRecord{}, errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "corrupt data record header").
			WithPath(path).WithOffset(int(offset))
	}

	body := make([]byte, hdr.KeySize+hdr.ValueSize)
	if _, err := file.ReadAt(body, int64(offset)+dataRecordHeaderSize); err != nil {
		return DataRecord{}, errors.NewStorageError(err, errors.ErrorCodePayloadReadFailure, "failed to read data record body").
			WithPath(path).WithOffset(int(offset))
	}

	key := make([]byte, hdr.KeySize)
	value := make([]byte, hdr.ValueSize)
	copy(key, body[:hdr.KeySize])
	copy(value, body[hdr.KeySize:])

	return DataRecord{Timestamp: hdr.Timestamp, Key: key, Value: value}, nil
}

// ReplayHints visits every HintRecord across every hint segment, in
// ascending segment id order, calling visit for each one in the order it
// appears on disk. Within a segment, records are visited in write order.
func (s *Storage) ReplayHints(visit func(HintRecord) error) error {
	if s.closed.Load() {
		return ErrStorageClosed
	}

	ids, err := seginfo.AllIDs(s.hint.dir, s.hint.prefix)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list hint segments").WithPath(s.hint.dir)
	}

	for _, id := range ids {
		if err := s.replayHintSegment(id, visit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) replayHintSegment(id uint64, visit func(HintRecord) error) error {
	path := seginfo.Path(s.hint.dir, id, s.hint.prefix)
	file, err := os.Open(path)
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open hint segment for replay").WithPath(path)
	}
	defer file.Close()

	header := make([]byte, hintRecordHeaderSize)
	for {
		if _, err := io.ReadFull(file, header); err != nil {
			if stdErrors.Is(err, io.EOF) {
				return nil
			}
			return errors.NewStorageError(err, errors.ErrorCodeRecoveryFailed, "truncated hint record header").WithPath(path)
		}

		keySize := int(binary.LittleEndian.Uint32(header[8:12]))
		rest := make([]byte, keySize+(hintRecordFixedSize-hintRecordHeaderSize))
		if _, err := io.ReadFull(file, rest); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeRecoveryFailed, "truncated hint record body").WithPath(path)
		}

		record, err := UnmarshalHintRecord(append(append([]byte{}, header...), rest...))
		if err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "corrupt hint record").WithPath(path)
		}

		if err := visit(record); err != nil {
			return err
		}
	}
}

// Close seals both active segments. Close is idempotent.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	dataErr := s.data.close()
	hintErr := s.hint.close()
	if dataErr != nil {
		return dataErr
	}
	return hintErr
}
