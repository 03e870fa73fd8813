// Package debugger implements the protocol state machine: operating
// modes, the per-message acceptance matrix, breakpoint and exception
// reporting, the cooperative poll/poll-blocking scheduling contract, and
// every command handler (stepping, eval, backtrace, client-source
// injection, context reset, memory statistics, the deferred
// bytecode-free handshake).
//
// Session is the single exported type most callers need: it owns one
// transport.Transport, one engine.Engine, and the fixed send/recv
// buffers for the lifetime of one accepted connection. Everything in
// this package runs on a single thread of control, interleaved with the
// engine's own bytecode dispatch — there are no internal goroutines and
// no locks guarding Session's fields.
package debugger
