package debugger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jdb/pkg/dbgproto"
	"jdb/pkg/websocket"
)

const twoFuncProgram = "func main\n  let x = 1\n  call helper\n  nop\nend\nfunc helper\n  let y = 2\nend\n"

func TestRunStopsAtConnectTimeBreakpointThenResumesOnContinue(t *testing.T) {
	sess, tr, eng := acceptedSession(t)
	_, err := eng.LoadSource("sample.js", twoFuncProgram)
	require.NoError(t, err)

	feedMasked(t, tr, dbgproto.IngressContinue, nil)

	require.NoError(t, sess.Run())
	require.Equal(t, 0, eng.Depth())
}

func TestCheckSafepointEntersBreakpointModeOnConnectTimeVMStop(t *testing.T) {
	sess, _, eng := acceptedSession(t)
	_, err := eng.LoadSource("sample.js", twoFuncProgram)
	require.NoError(t, err)

	require.True(t, sess.vmStop)
	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeBreakpoint, sess.Mode())
	require.False(t, sess.vmStop)
}

func TestCheckSafepointDoesNothingWhenVMIgnoreIsSet(t *testing.T) {
	sess, _, eng := acceptedSession(t)
	_, err := eng.LoadSource("sample.js", twoFuncProgram)
	require.NoError(t, err)

	sess.vmIgnore = true
	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeRun, sess.Mode())
}

func TestCheckSafepointNextSuppressesWhileDeeperThanStopContext(t *testing.T) {
	sess, _, eng := acceptedSession(t)
	_, err := eng.LoadSource("sample.js", twoFuncProgram)
	require.NoError(t, err)

	sess.vmStop = false
	sess.mode = ModeRun

	eng.Dispatch() // let x = 1, depth stays 1
	sess.stopContext = eng.Depth()
	eng.Dispatch() // call helper, depth becomes 2

	sess.vmStop = true
	sess.stepKind = stepNext

	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeRun, sess.Mode(), "NEXT must not stop while deeper than stop_context")
	require.True(t, sess.vmStop)

	eng.Dispatch() // helper's let y = 2
	eng.Dispatch() // helper returns, depth back to 1

	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeBreakpoint, sess.Mode(), "NEXT must stop once depth returns to stop_context")
}

func TestCheckSafepointFinishSuppressesUntilShallowerThanStopContext(t *testing.T) {
	sess, _, eng := acceptedSession(t)
	_, err := eng.LoadSource("sample.js", twoFuncProgram)
	require.NoError(t, err)

	sess.mode = ModeRun
	sess.vmStop = false

	eng.Dispatch() // let x = 1
	eng.Dispatch() // call helper, depth 2
	sess.stopContext = eng.Depth()

	sess.vmStop = true
	sess.stepKind = stepFinish

	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeRun, sess.Mode(), "FINISH must not stop until shallower than stop_context")

	eng.Dispatch() // helper's let y = 2
	eng.Dispatch() // helper returns, depth back to 1

	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeBreakpoint, sess.Mode(), "FINISH must stop once depth is shallower than stop_context")
}

func TestCheckSafepointNeverSuppressesAGenuineBreakpointHit(t *testing.T) {
	sess, _, eng := acceptedSession(t)
	events, err := eng.LoadSource("sample.js", twoFuncProgram)
	require.NoError(t, err)

	mainCP := events[0].CP
	require.NoError(t, eng.ToggleBreakpoint(mainCP, events[0].ByteOffsets[0], true))

	sess.mode = ModeRun
	sess.vmStop = false
	sess.stepKind = stepNext
	sess.stopContext = 99 // pretend a NEXT is in flight that would otherwise suppress everything

	require.NoError(t, sess.checkSafepoint())
	require.Equal(t, ModeBreakpoint, sess.Mode(), "an active breakpoint must stop regardless of step suppression")
}

func TestContinueClearsVMStopModeAndStepKind(t *testing.T) {
	sess, _, _ := acceptedSession(t)
	sess.mode = ModeBreakpoint
	sess.vmStop = true
	sess.stepKind = stepFinish

	sess.Continue()
	require.Equal(t, ModeRun, sess.Mode())
	require.False(t, sess.vmStop)
	require.Equal(t, stepNone, sess.stepKind)
}

func TestStopArmsVMStop(t *testing.T) {
	sess, _, _ := acceptedSession(t)
	sess.vmStop = false
	sess.Stop()
	require.True(t, sess.vmStop)
}

func TestPollOnIncompleteFrameLeavesBytesBuffered(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	tr.FeedClientFrame([]byte{0x82}) // a single byte: not even a full 2-byte header

	require.NoError(t, sess.Poll())
	require.Equal(t, 1, sess.recvOffset)
}

func TestPollHandlesCloseOpcodeByDisconnecting(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	closeFrame := []byte{0x80 | byte(websocket.OpcodeClose), 0x80, clientMask[0], clientMask[1], clientMask[2], clientMask[3]}
	tr.FeedClientFrame(closeFrame)

	require.NoError(t, sess.Poll())
	require.False(t, sess.Connected())
}

func TestPollRejectsMessageIllegalForCurrentMode(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	require.Equal(t, ModeRun, sess.Mode())

	feedMasked(t, tr, dbgproto.IngressContinue, nil) // breakpoint-only command
	err := sess.Poll()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrProtocol)
}
