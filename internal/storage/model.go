package storage

import (
	"encoding/binary"
	"fmt"
)

// DataRecord is the on-disk layout appended to a data segment on every set.
// Fields are written little-endian, back to back, with no padding:
//
//	offset  size  field
//	0       8     timestamp  (signed seconds)
//	8       4     key_size   (uint32)
//	12      4     value_size (uint32)
//	16      K     key bytes
//	16+K    V     value bytes
//	16+K+V  4     crc        (uint32, currently 0)
//	20+K+V  4     magic      (uint32, currently 0)
//
// CRC and magic are always written as 0; no pack dependency's checksum
// fits the 4-byte field, and populating them would diverge from the
// original format this layout preserves.
type DataRecord struct {
	Timestamp int64
	Key       []byte
	Value     []byte
}

// dataRecordFixedSize is the size in bytes of every DataRecord field other
// than the variable-length key and value.
const dataRecordFixedSize = 8 + 4 + 4 + 4 + 4

// Marshal encodes r into its on-disk DataRecord byte layout.
func (r DataRecord) Marshal() []byte {
	buf := make([]byte, dataRecordFixedSize+len(r.Key)+len(r.Value))

	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(r.Key)))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(r.Value)))

	n := copy(buf[16:], r.Key)
	copy(buf[16+n:], r.Value)
	// crc and magic trail as zero bytes; buf is already zero-valued there.

	return buf
}

// DataRecordHeader is the fixed-size prefix of a DataRecord, read first so
// the variable-length key and value can be sized before reading them.
type DataRecordHeader struct {
	Timestamp int64
	KeySize   uint32
	ValueSize uint32
}

// dataRecordHeaderSize is the byte length of DataRecordHeader on disk.
const dataRecordHeaderSize = 8 + 4 + 4

// UnmarshalDataRecordHeader decodes the fixed-size header from the front of
// buf, which must contain at least dataRecordHeaderSize bytes.
func UnmarshalDataRecordHeader(buf []byte) (DataRecordHeader, error) {
	if len(buf) < dataRecordHeaderSize {
		return DataRecordHeader{}, fmt.Errorf("storage: short data record header: got %d bytes, want %d", len(buf), dataRecordHeaderSize)
	}

	return DataRecordHeader{
		Timestamp: int64(binary.LittleEndian.Uint64(buf[0:8])),
		KeySize:   binary.LittleEndian.Uint32(buf[8:12]),
		ValueSize: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// HintRecord is the on-disk layout appended to a hint segment on every set
// and del. A tombstone (Valid == false) records that the key was deleted.
//
//	offset  size  field
//	0       8     timestamp
//	8       4     key_size
//	12      K     key bytes
//	12+K    4     file_id  (uint32)
//	16+K    8     offset   (uint64)
//	24+K    1     valid    (bool, one byte)
type HintRecord struct {
	Timestamp int64
	Key       []byte
	FileID    uint32
	Offset    uint64
	Valid     bool
}

// hintRecordFixedSize is the size in bytes of every HintRecord field other
// than the variable-length key.
const hintRecordFixedSize = 8 + 4 + 4 + 8 + 1

// Marshal encodes r into its on-disk HintRecord byte layout.
func (r HintRecord) Marshal() []byte {
	buf := make([]byte, hintRecordFixedSize+len(r.Key))

	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(r.Key)))
	n := copy(buf[12:], r.Key)

	rest := buf[12+n:]
	binary.LittleEndian.PutUint32(rest[0:4], r.FileID)
	binary.LittleEndian.PutUint64(rest[4:12], r.Offset)
	if r.Valid {
		rest[12] = 1
	}

	return buf
}

// hintRecordHeaderSize is the byte length of the timestamp+key_size prefix,
// read first so the variable-length key can be sized.
const hintRecordHeaderSize = 8 + 4

// UnmarshalHintRecord decodes a full HintRecord from buf, which must
// contain exactly hintRecordFixedSize+keySize bytes, where keySize is
// decoded from buf itself.
func UnmarshalHintRecord(buf []byte) (HintRecord, error) {
	if len(buf) < hintRecordHeaderSize {
		return HintRecord{}, fmt.Errorf("storage: short hint record header: got %d bytes, want at least %d", len(buf), hintRecordHeaderSize)
	}

	timestamp := int64(binary.LittleEndian.Uint64(buf[0:8]))
	keySize := binary.LittleEndian.Uint32(buf[8:12])

	want := hintRecordHeaderSize + int(keySize) + (hintRecordFixedSize - hintRecordHeaderSize)
	if len(buf) < want {
		return HintRecord{}, fmt.Errorf("storage: short hint record: got %d bytes, want %d", len(buf), want)
	}

	key := make([]byte, keySize)
	copy(key, buf[12:12+keySize])

	rest := buf[12+keySize:]
	return HintRecord{
		Timestamp: timestamp,
		Key:       key,
		FileID:    binary.LittleEndian.Uint32(rest[0:4]),
		Offset:    binary.LittleEndian.Uint64(rest[4:12]),
		Valid:     rest[12] != 0,
	}, nil
}
