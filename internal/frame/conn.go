package frame

import "net"

// stagingSize is the size of the read chunk drained from the socket per
// Fill call, matching the fixed staging buffer size the framing design
// reads into before appending to Buffer.
const stagingSize = 1024

// Conn pairs a net.Conn with a Buffer, draining reads into the buffer and
// writing framed replies back out.
type Conn struct {
	conn net.Conn
	buf  Buffer
}

// NewConn wraps conn for length-prefixed framing.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Fill reads one chunk off the socket into the internal buffer, returning
// the number of bytes read. A read error (including io.EOF on orderly
// close) is returned alongside whatever partial data was read; callers
// should stop reading on any non-nil error.
func (c *Conn) Fill() (int, error) {
	staging := make([]byte, stagingSize)
	n, err := c.conn.Read(staging)
	if n > 0 {
		c.buf.Append(staging[:n])
	}
	return n, err
}

// Ready reports whether a complete frame is currently buffered.
func (c *Conn) Ready() bool {
	return c.buf.Ready()
}

// Request extracts the next buffered frame's payload. Its precondition is
// Ready().
func (c *Conn) Request() ([]byte, error) {
	return c.buf.Request()
}

// Respond frames reply and writes it to the socket, looping until every
// byte is sent. Framing is identical in both directions, so a client uses
// the same method (see Send) to write a request.
func (c *Conn) Respond(reply []byte) error {
	frame := Encode(reply)
	for len(frame) > 0 {
		n, err := c.conn.Write(frame)
		if err != nil {
			return err
		}
		frame = frame[n:]
	}
	return nil
}

// Send writes payload as a framed request. It is Respond under another
// name for the client side of the connection.
func (c *Conn) Send(payload []byte) error {
	return c.Respond(payload)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
