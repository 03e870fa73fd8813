package dbgproto

import "errors"

// ErrPayloadTooLarge is returned when an outgoing body does not fit in a
// single frame even after accounting for the leading type byte.
var ErrPayloadTooLarge = errors.New("dbgproto: payload exceeds max send payload")

// Sink is the single egress primitive the rest of dbgproto builds on: it
// hands a fully-formed `type_byte || body` message to whatever sends
// frames (pkg/debugger, backed by pkg/websocket + pkg/transport). It
// returns false if the send failed, matching pkg/transport's
// send(bytes) -> bool contract.
type Sink interface {
	SendMessage(body []byte) bool
	MaxPayload() int // usable bytes per frame, header and type byte already excluded
}

// EncodeType builds a zero-body control message.
func EncodeType(t Egress) []byte {
	return []byte{byte(t)}
}

// EncodeData builds a single-frame message consisting of a type byte
// followed by payload. payload must fit within sink.MaxPayload()-1 bytes;
// callers that cannot guarantee this should use EncodeString instead.
func EncodeData(t Egress, payload []byte) []byte {
	out := make([]byte, 1+len(payload))
	out[0] = byte(t)
	copy(out[1:], payload)
	return out
}

// SendType sends a zero-body control message.
func SendType(sink Sink, t Egress) bool {
	return sink.SendMessage(EncodeType(t))
}

// SendData sends a single-frame message. It is an error to call this
// with a payload that does not fit in one frame; SendString exists for
// the unbounded case.
func SendData(sink Sink, t Egress, payload []byte) (bool, error) {
	if len(payload) > sink.MaxPayload()-1 {
		return false, ErrPayloadTooLarge
	}
	return sink.SendMessage(EncodeData(t, payload)), nil
}

// SendString streams an arbitrarily long byte sequence as zero or more
// `cont`-typed frames followed by exactly one `end`-typed frame. The end
// frame is always sent, even when data is empty or fits in the first
// frame, so that every fragmented stream terminates with its `_END`
// variant as spec'd.
func SendString(sink Sink, cont, end Egress, data []byte) bool {
	chunk := sink.MaxPayload() - 1
	if chunk <= 0 {
		chunk = 1
	}
	for len(data) > chunk {
		if !sink.SendMessage(EncodeData(cont, data[:chunk])) {
			return false
		}
		data = data[chunk:]
	}
	return sink.SendMessage(EncodeData(end, data))
}

// SendFunctionCP sends a message whose body is only a compressed
// pointer, encoded in the session's configured pointer size and byte
// order.
func SendFunctionCP(sink Sink, t Egress, cp CompressedPointer, cpSize int) bool {
	body := make([]byte, cpSize)
	putCompressedPointer(body, cp, cpSize)
	return sink.SendMessage(EncodeData(t, body))
}

// SendParseFunction sends the (line, column) pair emitted after a
// function finishes parsing, as two native-order uint32 fields.
func SendParseFunction(sink Sink, line, col uint32) bool {
	body := make([]byte, 8)
	NativeOrder.PutUint32(body[0:4], line)
	NativeOrder.PutUint32(body[4:8], col)
	return sink.SendMessage(EncodeData(EgressParseFunction, body))
}
