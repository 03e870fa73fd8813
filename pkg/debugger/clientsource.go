package debugger

import "jdb/pkg/dbgproto"

// WaitForClientSource asks the client to push a new compilation unit:
// it sends WAIT_FOR_SOURCE, switches to ModeClientSourceWait, and blocks
// until CLIENT_SOURCE(_PART) completes, NO_MORE_SOURCES arrives, or
// CONTEXT_RESET arrives. The callback is invoked exactly once per wait
// with the resource name and the accumulated source (empty when the wait
// ended without a completed transfer); a ClientSourceFailed return from
// it is reported as a protocol error.
func (s *Session) WaitForClientSource(resourceName string, callback func(resourceName, source string) ClientSourceStatus) error {
	s.clientSourceCallback = callback
	s.clientSourceActive = true
	s.sourceName = resourceName

	s.mode = ModeClientSourceWait
	if !dbgproto.SendType(s, dbgproto.EgressWaitForSource) {
		return s.ioFail(nil)
	}
	return s.PollBlocking()
}

func (s *Session) handleClientSourceFirst(body []byte) error {
	if err := s.sourceReasm.First(body); err != nil {
		return s.protocolErrorf("CLIENT_SOURCE: %v", err)
	}
	if s.sourceReasm.Done() {
		return s.finishClientSourceWait(ClientSourceReceived)
	}
	return nil
}

func (s *Session) handleClientSourcePart(body []byte) error {
	if err := s.sourceReasm.Part(body); err != nil {
		return s.protocolErrorf("CLIENT_SOURCE_PART: %v", err)
	}
	if s.sourceReasm.Done() {
		return s.finishClientSourceWait(ClientSourceReceived)
	}
	return nil
}

// finishClientSourceWait ends the current client-source wait, regardless
// of which of the three ways it ended, and returns the session to
// ModeRun so the engine's dispatch loop resumes.
func (s *Session) finishClientSourceWait(status ClientSourceStatus) error {
	if !s.clientSourceActive {
		return s.protocolErrorf("client-source message received outside a wait")
	}

	var source string
	switch status {
	case ClientSourceReceived:
		source = string(s.sourceReasm.Take())
		if s.sources != nil {
			s.sources.Put(s.sourceName, []byte(source))
		}
	case ClientSourceReset:
		if s.sources != nil {
			s.sources.Clear()
		}
	}

	s.clientSourceActive = false
	s.mode = ModeRun

	cb := s.clientSourceCallback
	s.clientSourceCallback = nil
	if cb == nil {
		return nil
	}

	switch cb(s.sourceName, source) {
	case ClientSourceFailed:
		return s.protocolErrorf("client rejected source %q", s.sourceName)
	default:
		return nil
	}
}
