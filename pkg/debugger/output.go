package debugger

import "jdb/pkg/dbgproto"

// OutputSubtype tags which output stream a forwarded chunk came from.
type OutputSubtype byte

const (
	OutputLog   OutputSubtype = 1
	OutputWarn  OutputSubtype = 2
	OutputError OutputSubtype = 3
	OutputTrace OutputSubtype = 4
)

// SendOutput forwards a chunk of program output (console.log and
// friends) to the client, tagged with which stream it came from. It can
// be called any time the session is connected, independent of mode.
func (s *Session) SendOutput(subtype OutputSubtype, data []byte) error {
	payload := make([]byte, 1+len(data))
	payload[0] = byte(subtype)
	copy(payload[1:], data)

	if !dbgproto.SendString(s, dbgproto.EgressOutputResult, dbgproto.EgressOutputResultEnd, payload) {
		return s.ioFail(nil)
	}
	return nil
}
