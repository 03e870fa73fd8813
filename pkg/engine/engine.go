// Package engine defines the opaque script-execution collaborator the
// debugger session drives: something that dispatches bytecode one unit
// at a time, exposes call frames and breakpoint bitmaps by compressed
// pointer, evaluates expressions in the paused context, and reports
// memory usage. pkg/debugger never reaches past this interface into a
// concrete interpreter.
//
// refengine is a small reference implementation good enough to drive the
// protocol end-to-end (cmd/jdb-demo, and pkg/debugger's tests): programs
// are flat lists of let/call/no-op steps compiled from a tiny script
// source, not a real bytecode interpreter.
package engine

import "jdb/pkg/dbgproto"

// Frame is one entry in the engine's call stack, top (innermost) first.
type Frame struct {
	CP         dbgproto.CompressedPointer
	LastOffset uint32
}

// MemStats mirrors the five counters the MEMSTATS reply carries; engine
// implementations fill these in from whatever allocator they track.
type MemStats = dbgproto.MemStats

// ParseEvent is emitted once per function the engine finishes parsing,
// in the order pkg/debugger streams it to the client.
type ParseEvent struct {
	SourceName    string
	Source        string
	FunctionName  string
	Line, Col     uint32
	CP            dbgproto.CompressedPointer
	LineOffsets   []uint32 // BREAKPOINT_LIST
	ByteOffsets   []uint32 // BREAKPOINT_OFFSET_LIST
}

// Engine is the collaborator pkg/debugger drives. All methods are called
// from the single cooperative thread of control; an Engine implementation
// must not spawn goroutines that call back into it concurrently.
type Engine interface {
	// Dispatch advances execution by one bytecode unit and reports
	// whether the program has finished running.
	Dispatch() (finished bool)

	// CurrentFrame returns the innermost active frame; valid any time
	// execution is not finished.
	CurrentFrame() Frame

	// CallStack returns every active frame, innermost first, for
	// GET_BACKTRACE.
	CallStack() []Frame

	// Depth reports the current call-stack depth, used to scope NEXT and
	// FINISH against stop_context.
	Depth() int

	// CompressedPointerSize reports 2 or 4, advertised in CONFIGURATION.
	CompressedPointerSize() int

	// HasBreakpoint reports whether offset is an active stop point in
	// the unit identified by cp.
	HasBreakpoint(cp dbgproto.CompressedPointer, offset uint32) bool

	// ToggleBreakpoint sets or clears the active bit for (cp, offset).
	// It returns an error for an unknown (cp, offset) pair, matching
	// spec's "unknown pairs are a protocol error".
	ToggleBreakpoint(cp dbgproto.CompressedPointer, offset uint32, active bool) error

	// Eval evaluates expr in the currently paused frame's scope and
	// returns its string form, or an error if evaluation failed.
	Eval(expr string) (string, error)

	// MemStats reports current memory usage counters.
	MemStats() MemStats

	// PendingFrees drains compressed pointers for bytecode units the
	// engine has released since the last call, for the deferred
	// RELEASE_BYTE_CODE_CP / FREE_BYTE_CODE_CP handshake.
	PendingFrees() []dbgproto.CompressedPointer

	// ConfirmFree is called once the client acknowledges a release with
	// FREE_BYTE_CODE_CP, letting the engine reclaim the unit's storage.
	ConfirmFree(cp dbgproto.CompressedPointer) error

	// Reset reinitializes the engine to a fresh empty program, used for
	// CONTEXT_RESET.
	Reset()

	// LoadSource compiles src under resourceName and makes it the active
	// program, returning the parse events the debugger streams to the
	// client in order.
	LoadSource(resourceName, src string) ([]ParseEvent, error)
}
