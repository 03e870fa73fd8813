package debugger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jdb/pkg/dbgproto"
)

func TestSendOutputTagsSubtypeAndForwardsDataRegardlessOfMode(t *testing.T) {
	sess, tr, _ := acceptedSession(t)

	require.NoError(t, sess.SendOutput(OutputWarn, []byte("disk almost full")))

	wire := tr.TakeServerFrame()
	frame := decodeFrame(t, wire)
	require.Equal(t, byte(dbgproto.EgressOutputResultEnd), frame.Payload[0])
	require.Equal(t, byte(OutputWarn), frame.Payload[1])
	require.Equal(t, "disk almost full", string(frame.Payload[2:]))
}

func TestSendOutputSplitsLongChunksAcrossContinuationFrames(t *testing.T) {
	sess, tr, _ := acceptedSession(t)
	sess.maxSendPayload = 5

	require.NoError(t, sess.SendOutput(OutputLog, []byte("0123456789")))

	cont := decodeFrame(t, tr.TakeServerFrame())
	require.Equal(t, byte(dbgproto.EgressOutputResult), cont.Payload[0])

	cont2 := decodeFrame(t, tr.TakeServerFrame())
	require.Equal(t, byte(dbgproto.EgressOutputResult), cont2.Payload[0])

	end := decodeFrame(t, tr.TakeServerFrame())
	require.Equal(t, byte(dbgproto.EgressOutputResultEnd), end.Payload[0])
}
