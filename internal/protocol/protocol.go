// Package protocol implements the command dispatcher (spec C8) that sits
// between the framed byte stream (internal/frame) and the engine: it
// tokenizes a request payload into an operation and arguments, invokes the
// matching engine method, and formats the reply string the frame layer
// sends back.
package protocol

import (
	"context"
	"strings"
)

const (
	replySetSuccess = "set success"
	replySetFailed  = "set failed"
	replyDelSuccess = "del success"
	replyInvalid    = "invalid command"
)

// Engine is the subset of internal/engine.Engine the dispatcher depends
// on, kept as an interface so the dispatcher can be tested against a fake.
type Engine interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Dispatcher tokenizes request payloads and routes them to an Engine.
type Dispatcher struct {
	engine Engine
}

// New creates a Dispatcher backed by engine.
func New(engine Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// Handle tokenizes request by whitespace into "<op> <key> [<value>]" and
// dispatches it, returning the reply string to send back over the wire.
// Handle never returns an error itself: every outcome, including a
// malformed request, is expressed as a reply string.
func (d *Dispatcher) Handle(ctx context.Context, request string) string {
	fields := strings.Fields(request)
	if len(fields) == 0 {
		return replyInvalid
	}

	op := fields[0]
	args := fields[1:]

	switch op {
	case "set":
		return d.handleSet(ctx, args)
	case "get":
		return d.handleGet(ctx, args)
	case "del":
		return d.handleDel(ctx, args)
	default:
		return replyInvalid
	}
}

func (d *Dispatcher) handleSet(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return replyInvalid
	}

	if err := d.engine.Set(ctx, args[0], []byte(args[1])); err != nil {
		return replySetFailed
	}
	return replySetSuccess
}

func (d *Dispatcher) handleGet(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return replyInvalid
	}

	value, err := d.engine.Get(ctx, args[0])
	if err != nil {
		return err.Error()
	}
	return string(value)
}

func (d *Dispatcher) handleDel(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return replyInvalid
	}

	if err := d.engine.Delete(ctx, args[0]); err != nil {
		return err.Error()
	}
	return replyDelSuccess
}
