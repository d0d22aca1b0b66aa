package frame

import (
	"bytes"
	"testing"
)

func TestReadyRequiresFullFrame(t *testing.T) {
	var b Buffer

	if b.Ready() {
		t.Fatalf("Ready() on empty buffer = true, want false")
	}

	b.Append([]byte{5, 0, 0}) // 3 of the 4 length-prefix bytes
	if b.Ready() {
		t.Fatalf("Ready() with partial length prefix = true, want false")
	}

	b.Append([]byte{0}) // completes the 4-byte length prefix, L=5
	if b.Ready() {
		t.Fatalf("Ready() with length prefix but no payload = true, want false")
	}

	b.Append([]byte("hel")) // 3 of 5 payload bytes
	if b.Ready() {
		t.Fatalf("Ready() with partial payload = true, want false")
	}

	b.Append([]byte("lo")) // completes the payload
	if !b.Ready() {
		t.Fatalf("Ready() with complete frame = false, want true")
	}
}

func TestRequestExtractsAndConsumesFrame(t *testing.T) {
	var b Buffer
	b.Append(Encode([]byte("hello")))
	b.Append(Encode([]byte("world")))

	got, err := b.Request()
	if err != nil {
		t.Fatalf("Request() unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("Request() = %q, want hello", got)
	}

	got, err = b.Request()
	if err != nil {
		t.Fatalf("Request() #2 unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("world")) {
		t.Fatalf("Request() #2 = %q, want world", got)
	}

	if b.Ready() {
		t.Fatalf("Ready() after draining both frames = true, want false")
	}
}

func TestRequestNotReadyReturnsError(t *testing.T) {
	var b Buffer
	b.Append([]byte{1, 0})
	if _, err := b.Request(); err != ErrFrameNotReady {
		t.Fatalf("Request() error = %v, want ErrFrameNotReady", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var b Buffer
	payload := []byte("set alpha bravo")
	b.Append(Encode(payload))

	got, err := b.Request()
	if err != nil {
		t.Fatalf("Request() unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-tripped payload = %q, want %q", got, payload)
	}
}

func TestPartialFrameAcrossMultipleAppends(t *testing.T) {
	var b Buffer
	frame := Encode([]byte("chunked"))

	for _, chunk := range [][]byte{frame[:2], frame[2:6], frame[6:]} {
		b.Append(chunk)
	}

	if !b.Ready() {
		t.Fatalf("Ready() after all chunks appended = false, want true")
	}
	got, err := b.Request()
	if err != nil {
		t.Fatalf("Request() unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("chunked")) {
		t.Fatalf("Request() = %q, want chunked", got)
	}
}
