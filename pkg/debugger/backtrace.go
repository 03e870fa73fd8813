package debugger

import "jdb/pkg/dbgproto"

// handleGetBacktrace walks the call-frame chain from the innermost frame
// to maxDepth frames (0 = unlimited), streaming (bc_cp, last_offset)
// entries as BACKTRACE fragments followed by one BACKTRACE_END.
func (s *Session) handleGetBacktrace(body []byte) error {
	if len(body) != 4 {
		return s.protocolErrorf("GET_BACKTRACE: wrong body length %d", len(body))
	}
	maxDepth := dbgproto.NativeOrder.Uint32(body)

	frames := s.eng.CallStack()
	if maxDepth > 0 && int(maxDepth) < len(frames) {
		frames = frames[:maxDepth]
	}

	entrySize := s.cpSize + 4
	chunkCount := (s.maxSendPayload - 1) / entrySize
	if chunkCount <= 0 {
		chunkCount = 1
	}

	for i := 0; i < len(frames); i += chunkCount {
		end := i + chunkCount
		if end > len(frames) {
			end = len(frames)
		}
		buf := make([]byte, 0, (end-i)*entrySize)
		for _, f := range frames[i:end] {
			entry := make([]byte, entrySize)
			dbgproto.PutCompressedPointer(entry, f.CP, s.cpSize)
			dbgproto.NativeOrder.PutUint32(entry[s.cpSize:], f.LastOffset)
			buf = append(buf, entry...)
		}
		if ok, err := dbgproto.SendData(s, dbgproto.EgressBacktrace, buf); err != nil || !ok {
			return s.ioFail(err)
		}
	}

	if !dbgproto.SendType(s, dbgproto.EgressBacktraceEnd) {
		return s.ioFail(nil)
	}
	return nil
}
