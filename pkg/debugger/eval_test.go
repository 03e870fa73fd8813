package debugger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jdb/pkg/dbgproto"
	"jdb/pkg/websocket"
)

func evalRequestBody(subtype dbgproto.EvalSubtype, expr string) []byte {
	chunk := append([]byte{byte(subtype)}, []byte(expr)...)
	return firstBody(len(chunk), chunk)
}

func TestHandleEvalFirstEvaluatesImmediatelyWhenWholeMessageFitsInOneFrame(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	sess.mode = ModeBreakpoint

	require.NoError(t, sess.handleEvalFirst(evalRequestBody(dbgproto.EvalOKRequest, "1+2")))

	wire := tr.TakeServerFrame()
	frame, _, err := websocket.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EgressEvalResultEnd), frame.Payload[0])
	require.Equal(t, byte(dbgproto.EvalOKResult), frame.Payload[1])
	require.Equal(t, "3", string(frame.Payload[2:]))
}

func TestHandleEvalFirstThenPartAccumulatesAcrossFrames(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	sess.mode = ModeBreakpoint

	full := append([]byte{byte(dbgproto.EvalOKRequest)}, []byte("1+2")...)
	first := full[:2]
	rest := full[2:]

	require.NoError(t, sess.handleEvalFirst(firstBody(len(full), first)))
	require.True(t, sess.evalReasm.InProgress())
	_, ok := tr.TrySend()
	require.False(t, ok, "no reply should be sent until the transfer completes")

	require.NoError(t, sess.handleEvalPart(rest))
	require.False(t, sess.evalReasm.InProgress())

	wire := tr.TakeServerFrame()
	frame, _, err := websocket.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EvalOKResult), frame.Payload[1])
	require.Equal(t, "3", string(frame.Payload[2:]))
}

func TestHandleEvalFirstReportsEvalErrorResultOnBadExpression(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	sess.mode = ModeBreakpoint

	require.NoError(t, sess.handleEvalFirst(evalRequestBody(dbgproto.EvalOKRequest, "not an expression (")))

	wire := tr.TakeServerFrame()
	frame, _, err := websocket.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EvalErrorResult), frame.Payload[1])
}

func TestHandleEvalFirstWithThrowRequestAlsoReportsException(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	sess.mode = ModeBreakpoint

	require.NoError(t, sess.handleEvalFirst(evalRequestBody(dbgproto.EvalThrowRequest, "5")))

	excStr := tr.TakeServerFrame()
	frame, _, err := websocket.Decode(excStr)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EgressExceptionStrEnd), frame.Payload[0])

	excHit := tr.TakeServerFrame()
	frame2, _, err := websocket.Decode(excHit)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EgressExceptionHit), frame2.Payload[0])
	require.Equal(t, sess.cpSize+4, len(frame2.Payload)-1)

	result := tr.TakeServerFrame()
	frame3, _, err := websocket.Decode(result)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EvalOKResult), frame3.Payload[1])
}

func TestHandleThrowFirstInjectsExceptionAtPausedFrame(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	sess.mode = ModeBreakpoint

	chunk := []byte{0, '5'}
	body := firstBody(len(chunk), chunk)
	require.NoError(t, sess.handleThrowFirst(body))

	wire := tr.TakeServerFrame()
	frame, _, err := websocket.Decode(wire)
	require.NoError(t, err)
	require.Equal(t, byte(dbgproto.EgressExceptionStrEnd), frame.Payload[0])
}
