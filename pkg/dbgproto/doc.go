// Package dbgproto implements the debugger message protocol: the typed,
// fragmented envelope carried inside each restricted WebSocket frame
// (see pkg/websocket), independent ingress/egress opcode namespaces, and
// the accumulation state needed to reassemble a message that spans more
// than one frame's payload.
//
// A message on the wire is always `type_byte || body`. Long bodies
// (source text, exception strings, eval input, backtraces) are split
// across frames using paired "continuation" and "end" opcodes; dbgproto
// provides both directions of that split but does not decide which
// opcodes are legal in which debugger mode — that acceptance policy
// belongs to pkg/debugger.
package dbgproto
