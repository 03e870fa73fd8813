package debugger

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"jdb/pkg/config"
	"jdb/pkg/dbgproto"
	"jdb/pkg/engine"
	"jdb/pkg/sourcestore"
	"jdb/pkg/transport"
	"jdb/pkg/websocket"
)

// testSizes matches pkg/websocket's restricted frame overhead.
var testSizes = transport.HeaderSizes{SendHeaderSize: 2, RecvHeaderSize: 6, MaxMessageSize: 125}

func testConfig() config.Session {
	return config.Session{
		BufferSize:            128,
		MessageFrequency:      3,
		PollInterval:          0,
		MaxAccumulationSize:   4096,
		CompressedPointerSize: 4,
	}
}

func newTestSession(t *testing.T) (*Session, *transport.FakeTransport, *engine.RefEngine) {
	t.Helper()
	tr := transport.NewFakeTransport(testSizes)
	eng := engine.NewRefEngine(4)
	sources := sourcestore.New()
	logger := log.New(io.Discard, "", 0)
	sess := NewSession(tr, eng, sources, testConfig(), logger)
	return sess, tr, eng
}

// acceptedSession drives a full handshake on the fake transport and
// returns a connected, configured Session, draining the 101 response
// and CONFIGURATION message so the caller's queue starts clean.
func acceptedSession(t *testing.T) (*Session, *transport.FakeTransport, *engine.RefEngine) {
	t.Helper()
	sess, tr, eng := newTestSession(t)

	req := "GET /jerry-debugger HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	tr.FeedClientFrame([]byte(req))

	require.NoError(t, sess.Accept())
	tr.TakeServerFrame() // 101 Switching Protocols
	tr.TakeServerFrame() // CONFIGURATION
	return sess, tr, eng
}

var clientMask = [4]byte{0x01, 0x02, 0x03, 0x04}

// feedMasked queues an ingress message as a masked client frame the way
// a real client would send one.
func feedMasked(t *testing.T, tr *transport.FakeTransport, msgType dbgproto.Ingress, body []byte) {
	t.Helper()
	payload := append([]byte{byte(msgType)}, body...)
	frame, err := websocket.NewBinaryFrame(payload)
	require.NoError(t, err)
	wire, err := websocket.EncodeMasked(frame, clientMask)
	require.NoError(t, err)
	tr.FeedClientFrame(wire)
}

// firstBody builds a Reassembler "first" message body: a 4-byte
// native-order total size followed by the first chunk.
func firstBody(total int, chunk []byte) []byte {
	out := make([]byte, 4+len(chunk))
	dbgproto.NativeOrder.PutUint32(out[:4], uint32(total))
	copy(out[4:], chunk)
	return out
}
