// Package frame implements the length-prefixed message framing used
// between the TCP collaborator and the engine-facing command dispatcher:
// every message on the wire is a 4-byte little-endian length followed by
// that many bytes of payload.
//
// Buffer is the pure, socket-free half of framing: it only ever sees
// bytes handed to it by a caller, so it can be exercised directly in
// tests without standing up a listener. Conn is the thin adapter that
// pairs a Buffer with an actual net.Conn.
package frame

import (
	"encoding/binary"
	"errors"
)

// lengthPrefixSize is the width of the frame length prefix in bytes.
const lengthPrefixSize = 4

// ErrFrameNotReady is returned by Request when Buffer does not yet hold a
// complete frame.
var ErrFrameNotReady = errors.New("frame: buffer does not hold a complete frame")

// Buffer accumulates bytes read off a connection and splits them into
// discrete length-prefixed frames as they become complete. The zero value
// is ready to use.
type Buffer struct {
	content []byte
}

// Append adds newly read bytes to the buffer's pending content.
func (b *Buffer) Append(data []byte) {
	b.content = append(b.content, data...)
}

// Ready reports whether the buffer currently holds at least one complete
// frame: 4 or more bytes, where the first 4 (as a little-endian uint32
// length L) satisfy len(content) >= 4+L.
func (b *Buffer) Ready() bool {
	if len(b.content) < lengthPrefixSize {
		return false
	}
	length := binary.LittleEndian.Uint32(b.content[:lengthPrefixSize])
	return uint64(len(b.content)) >= uint64(lengthPrefixSize)+uint64(length)
}

// Request extracts the first complete frame's payload and removes it from
// the buffer. Request's precondition is Ready(); it returns
// ErrFrameNotReady otherwise. The returned bytes are not validated as
// UTF-8.
func (b *Buffer) Request() ([]byte, error) {
	if !b.Ready() {
		return nil, ErrFrameNotReady
	}

	length := binary.LittleEndian.Uint32(b.content[:lengthPrefixSize])
	payload := make([]byte, length)
	copy(payload, b.content[lengthPrefixSize:lengthPrefixSize+length])

	b.content = b.content[lengthPrefixSize+length:]
	return payload, nil
}

// Pending returns the number of bytes currently buffered and not yet
// extracted by Request, including any complete frames still waiting.
func (b *Buffer) Pending() int {
	return len(b.content)
}

// Encode wraps payload in the wire frame format: a 4-byte little-endian
// length prefix followed by payload itself.
func Encode(payload []byte) []byte {
	buf := make([]byte, lengthPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:lengthPrefixSize], uint32(len(payload)))
	copy(buf[lengthPrefixSize:], payload)
	return buf
}
