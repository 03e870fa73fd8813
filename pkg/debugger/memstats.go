package debugger

import "jdb/pkg/dbgproto"

// handleMemStats replies with the engine's five native-order uint32
// counters.
func (s *Session) handleMemStats() error {
	stats := s.eng.MemStats()
	if ok, err := dbgproto.SendData(s, dbgproto.EgressMemStats, stats.Encode()); err != nil || !ok {
		return s.ioFail(err)
	}
	return nil
}
