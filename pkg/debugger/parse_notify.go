package debugger

import (
	"jdb/pkg/dbgproto"
	"jdb/pkg/engine"
)

// LoadSource compiles src through the engine and streams every resulting
// parse event to the client in the fixed order spec §4.4 requires:
// SOURCE_CODE*, SOURCE_CODE_NAME*, FUNCTION_NAME*, PARSE_FUNCTION,
// BREAKPOINT_LIST, BREAKPOINT_OFFSET_LIST, BYTE_CODE_CP — once per
// function. If stopAfterParse is set it then emits WAITING_AFTER_PARSE,
// switches to ModeParserWait, and blocks until PARSER_RESUME.
func (s *Session) LoadSource(resourceName, src string) error {
	events, err := s.eng.LoadSource(resourceName, src)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if err := s.notifyParseEvent(ev); err != nil {
			return err
		}
	}

	if s.stopAfterParse {
		s.mode = ModeParserWait
		if !dbgproto.SendType(s, dbgproto.EgressWaitingAfterParse) {
			return s.ioFail(nil)
		}
		return s.PollBlocking()
	}
	return nil
}

func (s *Session) notifyParseEvent(ev engine.ParseEvent) error {
	if !dbgproto.SendString(s, dbgproto.EgressSourceCode, dbgproto.EgressSourceCodeEnd, []byte(ev.Source)) {
		return s.ioFail(nil)
	}
	if !dbgproto.SendString(s, dbgproto.EgressSourceCodeName, dbgproto.EgressSourceCodeNameEnd, []byte(ev.SourceName)) {
		return s.ioFail(nil)
	}
	if !dbgproto.SendString(s, dbgproto.EgressFunctionName, dbgproto.EgressFunctionNameEnd, []byte(ev.FunctionName)) {
		return s.ioFail(nil)
	}
	if !dbgproto.SendParseFunction(s, ev.Line, ev.Col) {
		return s.ioFail(nil)
	}
	if err := s.sendOffsetList(dbgproto.EgressBreakpointList, ev.LineOffsets); err != nil {
		return err
	}
	if err := s.sendOffsetList(dbgproto.EgressBreakpointOffsetList, ev.ByteOffsets); err != nil {
		return err
	}
	if !dbgproto.SendFunctionCP(s, dbgproto.EgressByteCodeCP, ev.CP, s.cpSize) {
		return s.ioFail(nil)
	}
	return nil
}

// sendOffsetList encodes a list of native-order uint32 offsets as a
// single SendData-style payload, splitting across frames by hand since
// the entries are fixed-width and SendString's byte-granular chunking
// would otherwise cut one in half.
func (s *Session) sendOffsetList(t dbgproto.Egress, offsets []uint32) error {
	const entrySize = 4
	perFrame := (s.maxSendPayload - 1) / entrySize
	if perFrame <= 0 {
		perFrame = 1
	}

	if len(offsets) == 0 {
		if ok, err := dbgproto.SendData(s, t, nil); err != nil || !ok {
			return s.ioFail(err)
		}
		return nil
	}

	for i := 0; i < len(offsets); i += perFrame {
		end := i + perFrame
		if end > len(offsets) {
			end = len(offsets)
		}
		buf := make([]byte, (end-i)*entrySize)
		for j, off := range offsets[i:end] {
			dbgproto.NativeOrder.PutUint32(buf[j*entrySize:], off)
		}
		if ok, err := dbgproto.SendData(s, t, buf); err != nil || !ok {
			return s.ioFail(err)
		}
	}
	return nil
}
