// Package transport defines the byte-stream abstraction the debugger
// session runs over: accept one client, send a buffer to completion,
// receive into a buffer without blocking, and close idempotently.
//
// The protocol layers above this package (pkg/websocket, pkg/dbgproto,
// pkg/debugger) never touch a socket directly; they only see this
// interface, so a real TCP listener and an in-memory fake are
// interchangeable in tests.
package transport

import "errors"

// ErrWouldBlock names the would-block condition: a non-blocking receive
// that found no data currently available. The Recv implementations in
// this package report that condition as (0, nil) rather than returning
// this error; it is not a failure, and callers must not tear down the
// session on it.
var ErrWouldBlock = errors.New("transport: would block")

// ErrClosed is returned by operations attempted after Close.
var ErrClosed = errors.New("transport: use of closed transport")

// ErrAlreadyConnected is returned by Accept when a client is already
// attached; this transport never supports more than one client.
var ErrAlreadyConnected = errors.New("transport: a client is already connected")

// HeaderSizes describes the per-message overhead a concrete transport
// imposes on both directions, so the session can derive
// max_send_payload/max_recv_payload without assuming WebSocket framing
// specifically. This mirrors the original engine's set_transmit_sizes
// port hook: an alternate transport (e.g. a raw socket with no HTTP
// upgrade) can advertise different numbers.
type HeaderSizes struct {
	SendHeaderSize int
	RecvHeaderSize int
	MaxMessageSize int
}

// Transport is the engine-facing byte-stream collaborator §4.1 and §6 of
// the specification describe: accept a single client, push buffers to
// completion, receive without blocking, and close idempotently.
type Transport interface {
	// Accept binds, listens, and blocks until exactly one client
	// connects. Recv on the accepted connection does not block.
	Accept() error

	// Send pushes the entire buffer, retrying internally on would-block
	// until every byte is drained. It returns false only on a hard I/O
	// error; a false return means the session must close.
	Send(data []byte) bool

	// Recv performs one non-blocking read into buf. A return of (0, nil)
	// means would-block, not an error. A non-nil error means a hard
	// failure and the caller must tear the session down.
	Recv(buf []byte) (int, error)

	// Close releases the underlying connection. Safe to call more than
	// once and safe to call before Accept succeeds.
	Close() error

	// Connected reports whether a client is currently attached.
	Connected() bool

	// Sizes reports this transport's framing overhead, used to derive
	// max_send_payload/max_recv_payload.
	Sizes() HeaderSizes
}
