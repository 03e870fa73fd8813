package debugger

import (
	"fmt"

	"jdb/pkg/dbgproto"
)

// handleUpdateBreakpoint toggles the active bit for (bc_cp, offset).
// Body layout: [set_byte, cp(cpSize), offset(4)].
func (s *Session) handleUpdateBreakpoint(body []byte) error {
	if len(body) != 1+s.cpSize+4 {
		return s.protocolErrorf("UPDATE_BREAKPOINT: wrong body length %d", len(body))
	}
	active := body[0] != 0
	cp, err := dbgproto.ReadCompressedPointer(body[1:1+s.cpSize], s.cpSize)
	if err != nil {
		return s.protocolErrorf("UPDATE_BREAKPOINT: %v", err)
	}
	offset := dbgproto.NativeOrder.Uint32(body[1+s.cpSize:])

	if err := s.eng.ToggleBreakpoint(cp, offset, active); err != nil {
		return s.protocolErrorf("UPDATE_BREAKPOINT: %v", err)
	}
	return nil
}

// handleExceptionConfig toggles whether uncaught exceptions pause
// execution (VM_IGNORE_EXCEPTION, inverted).
func (s *Session) handleExceptionConfig(body []byte) error {
	if len(body) != 1 {
		return s.protocolErrorf("EXCEPTION_CONFIG: wrong body length %d", len(body))
	}
	s.vmIgnoreException = body[0] == 0
	return nil
}

// handleParserConfig toggles stop-after-parse (PARSER_WAIT).
func (s *Session) handleParserConfig(body []byte) error {
	if len(body) != 1 {
		return s.protocolErrorf("PARSER_CONFIG: wrong body length %d", len(body))
	}
	s.stopAfterParse = body[0] != 0
	return nil
}

// ReportBreakpointHit is the public entry point an engine uses when it
// reaches a safepoint on its own schedule rather than through Run's
// loop (e.g. embedded directly in a host interpreter's dispatch switch).
func (s *Session) ReportBreakpointHit() error {
	if s.vmIgnore {
		return nil
	}
	frame := s.eng.CurrentFrame()
	return s.enterBreakpointMode(frame, dbgproto.EgressBreakpointHit)
}

// ReportException implements the "exception hit" rule of spec §4.5: if
// exception stops are enabled, stream the exception's string form, then
// pause exactly as a breakpoint hit would, tagging the single (cp,
// offset) message EXCEPTION_HIT instead of BREAKPOINT_HIT.
func (s *Session) ReportException(message string) error {
	if s.vmIgnore || s.vmIgnoreException {
		return nil
	}

	if !dbgproto.SendString(s, dbgproto.EgressExceptionStr, dbgproto.EgressExceptionStrEnd, []byte(message)) {
		return s.ioFail(fmt.Errorf("debugger: failed to send EXCEPTION_STR"))
	}

	frame := s.eng.CurrentFrame()
	return s.enterBreakpointMode(frame, dbgproto.EgressExceptionHit)
}
