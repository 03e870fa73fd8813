package debugger

import (
	"jdb/pkg/dbgproto"
	"jdb/pkg/websocket"
)

// stepKind records which step command, if any, is currently suppressing
// a pending VM_STOP pause until the call stack returns to a depth
// relative to stopContext. A plain breakpoint hit always stops
// regardless of stepKind; only the synthetic VM_STOP a step command set
// is subject to suppression.
type stepKind int

const (
	stepNone stepKind = iota
	stepNext
	stepFinish
)

// Run drives the engine's bytecode dispatch loop until the program
// finishes or the connection is torn down. It is the cooperative
// scheduling contract of spec §4.5/§5: every MessageFrequency
// dispatches, Poll() runs non-blockingly; a breakpoint or exception hit
// switches to blocking poll until a step command resumes execution.
func (s *Session) Run() error {
	s.messageDelay = s.cfg.MessageFrequency

	for s.connected {
		finished := s.eng.Dispatch()
		if finished {
			return nil
		}

		if err := s.drainPendingFrees(); err != nil {
			return err
		}

		if err := s.checkSafepoint(); err != nil {
			return err
		}

		s.messageDelay--
		if s.messageDelay <= 0 {
			s.messageDelay = s.cfg.MessageFrequency
			if err := s.Poll(); err != nil {
				return err
			}
		}

		if s.mode == ModeBreakpoint {
			if err := s.PollBlocking(); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkSafepoint implements the "breakpoint hit" rule: if VM_STOP is set,
// or the current (bytecode, offset) has an active breakpoint while
// VM_IGNORE is clear, enter ModeBreakpoint and report the hit.
func (s *Session) checkSafepoint() error {
	if s.vmIgnore {
		return nil
	}

	frame := s.eng.CurrentFrame()
	vmStopStop := s.vmStop
	bpStop := s.eng.HasBreakpoint(frame.CP, frame.LastOffset)

	if vmStopStop {
		switch s.stepKind {
		case stepNext:
			if s.eng.Depth() > s.stopContext {
				vmStopStop = false
			}
		case stepFinish:
			if s.eng.Depth() >= s.stopContext {
				vmStopStop = false
			}
		}
	}

	if !vmStopStop && !bpStop {
		return nil
	}

	s.stepKind = stepNone
	return s.enterBreakpointMode(frame, dbgproto.EgressBreakpointHit)
}

// enterBreakpointMode pauses execution and sends the single (cp, offset)
// message that reports why, tagged with hitType — EgressBreakpointHit for
// an ordinary safepoint, EgressExceptionHit when ReportException calls
// this for an uncaught exception. The two are alternative tags over the
// same struct, not two separate messages.
func (s *Session) enterBreakpointMode(frame dbgEngineFrame, hitType dbgproto.Egress) error {
	s.vmStop = false
	s.mode = ModeBreakpoint
	s.stopContext = s.eng.Depth()

	body := make([]byte, s.cpSize+4)
	dbgproto.PutCompressedPointer(body, frame.CP, s.cpSize)
	dbgproto.NativeOrder.PutUint32(body[s.cpSize:], frame.LastOffset)
	if ok, err := dbgproto.SendData(s, hitType, body); err != nil || !ok {
		return s.ioFail(err)
	}
	return nil
}

// dbgEngineFrame is a local alias so this file doesn't need to import
// pkg/engine just to name its Frame type in a function signature.
type dbgEngineFrame = struct {
	CP         dbgproto.CompressedPointer
	LastOffset uint32
}

func (s *Session) ioFail(cause error) error {
	s.vmIgnore = true
	s.connected = false
	if cause != nil {
		return cause
	}
	return ErrIOFailure
}

// Poll performs one non-blocking receive and, if a complete frame is
// present, decodes and dispatches it. It returns immediately if no data
// is currently available.
func (s *Session) Poll() error {
	n, err := s.tr.Recv(s.recvBuf[s.recvOffset:])
	if err != nil {
		return s.ioFail(err)
	}
	s.recvOffset += n

	for {
		frame, consumed, err := websocket.DecodeClientFrame(s.recvBuf[:s.recvOffset])
		if err == websocket.ErrShortHeader || err == websocket.ErrShortPayload {
			return nil // incomplete frame, wait for more bytes
		}
		if err != nil {
			return s.protocolErrorf("malformed frame: %v", err)
		}

		copy(s.recvBuf, s.recvBuf[consumed:s.recvOffset])
		s.recvOffset -= consumed

		if err := s.handleFrame(frame); err != nil {
			return err
		}
		if s.recvOffset == 0 {
			return nil
		}
	}
}

// PollBlocking repeats Poll on cfg.PollInterval until the session leaves
// its current blocking mode (breakpoint, parser-wait, client-source-wait)
// or the connection drops.
func (s *Session) PollBlocking() error {
	blocking := s.mode
	for s.connected && s.mode == blocking {
		if err := s.Poll(); err != nil {
			return err
		}
		if s.connected && s.mode == blocking {
			sleepPoll(s.cfg.PollInterval)
		}
	}
	return nil
}

func (s *Session) handleFrame(f *websocket.Frame) error {
	if f.Opcode == websocket.OpcodeClose {
		s.connected = false
		return nil
	}
	if len(f.Payload) == 0 {
		return s.protocolErrorf("empty message payload")
	}
	msgType := dbgproto.Ingress(f.Payload[0])
	body := f.Payload[1:]

	if !legalInMode(msgType, s.mode) {
		return s.protocolErrorf("message %s illegal in mode %s", msgType, s.mode)
	}
	return s.handleMessage(msgType, body)
}

func (s *Session) handleMessage(msgType dbgproto.Ingress, body []byte) error {
	switch msgType {
	case dbgproto.IngressFreeByteCodeCP:
		return s.handleFreeByteCodeCP(body)
	case dbgproto.IngressUpdateBreakpoint:
		return s.handleUpdateBreakpoint(body)
	case dbgproto.IngressExceptionConfig:
		return s.handleExceptionConfig(body)
	case dbgproto.IngressParserConfig:
		return s.handleParserConfig(body)
	case dbgproto.IngressMemStats:
		return s.handleMemStats()
	case dbgproto.IngressStop:
		s.Stop()
		return nil
	case dbgproto.IngressParserResume:
		s.mode = ModeRun
		return nil
	case dbgproto.IngressClientSource:
		return s.handleClientSourceFirst(body)
	case dbgproto.IngressClientSourcePart:
		return s.handleClientSourcePart(body)
	case dbgproto.IngressNoMoreSources:
		return s.finishClientSourceWait(ClientSourceEnd)
	case dbgproto.IngressContextReset:
		s.contextResetMode = true
		return s.finishClientSourceWait(ClientSourceReset)
	case dbgproto.IngressContinue:
		s.Continue()
		return nil
	case dbgproto.IngressStep:
		s.mode = ModeRun
		s.vmStop = true
		return nil
	case dbgproto.IngressNext:
		s.mode = ModeRun
		s.vmStop = true
		s.stepKind = stepNext
		return nil
	case dbgproto.IngressFinish:
		s.mode = ModeRun
		s.vmStop = true
		s.stepKind = stepFinish
		return nil
	case dbgproto.IngressGetBacktrace:
		return s.handleGetBacktrace(body)
	case dbgproto.IngressEval:
		return s.handleEvalFirst(body)
	case dbgproto.IngressEvalPart:
		return s.handleEvalPart(body)
	case dbgproto.IngressThrow:
		return s.handleThrowFirst(body)
	case dbgproto.IngressThrowPart:
		return s.handleThrowPart(body)
	default:
		return s.protocolErrorf("unknown ingress message type %d", msgType)
	}
}

// Stop is the engine-facing operation (and STOP's handler): arm VM_STOP
// unconditionally so the next safepoint pauses.
func (s *Session) Stop() {
	s.vmStop = true
}

// Continue is the engine-facing operation (and CONTINUE's handler):
// leave breakpoint mode and clear VM_STOP so execution resumes freely.
func (s *Session) Continue() {
	s.mode = ModeRun
	s.vmStop = false
	s.stepKind = stepNone
}
