package debugger

import "jdb/pkg/dbgproto"

// handleEvalFirst begins accumulating an EVAL payload: a 4-byte total
// size followed by the first chunk of `(subtype_byte, expression_bytes)`.
func (s *Session) handleEvalFirst(body []byte) error {
	if err := s.evalReasm.First(body); err != nil {
		return s.protocolErrorf("EVAL: %v", err)
	}
	if s.evalReasm.Done() {
		return s.completeEval()
	}
	return nil
}

func (s *Session) handleEvalPart(body []byte) error {
	if err := s.evalReasm.Part(body); err != nil {
		return s.protocolErrorf("EVAL_PART: %v", err)
	}
	if s.evalReasm.Done() {
		return s.completeEval()
	}
	return nil
}

// completeEval runs once every chunk of an EVAL/EVAL_PART transfer has
// arrived: it evaluates the expression in the currently paused frame and
// streams the result, or the error text tagged EVAL_ERROR on failure.
func (s *Session) completeEval() error {
	data := s.evalReasm.Take()
	if len(data) < 1 {
		return s.protocolErrorf("EVAL: empty payload")
	}
	subtype := dbgproto.EvalSubtype(data[0])
	expr := string(data[1:])

	result, err := s.eng.Eval(expr)
	if err != nil {
		return s.sendEvalResult(dbgproto.EvalErrorResult, err.Error())
	}

	if subtype == dbgproto.EvalThrowRequest {
		if err := s.ReportException(result); err != nil {
			return err
		}
	}
	return s.sendEvalResult(dbgproto.EvalOKResult, result)
}

func (s *Session) sendEvalResult(subtype dbgproto.EvalSubtype, text string) error {
	payload := append([]byte{byte(subtype)}, []byte(text)...)
	if !dbgproto.SendString(s, dbgproto.EgressEvalResult, dbgproto.EgressEvalResultEnd, payload) {
		return s.ioFail(nil)
	}
	return nil
}

// handleThrowFirst begins accumulating a THROW payload: the client
// supplies an expression to evaluate and inject as a thrown exception at
// the currently paused frame, following the Open Questions decision to
// keep THROW/THROW_PART breakpoint-mode-only and structurally identical
// to EVAL's fragmentation discipline.
func (s *Session) handleThrowFirst(body []byte) error {
	if err := s.throwReasm.First(body); err != nil {
		return s.protocolErrorf("THROW: %v", err)
	}
	if s.throwReasm.Done() {
		return s.completeThrow()
	}
	return nil
}

func (s *Session) handleThrowPart(body []byte) error {
	if err := s.throwReasm.Part(body); err != nil {
		return s.protocolErrorf("THROW_PART: %v", err)
	}
	if s.throwReasm.Done() {
		return s.completeThrow()
	}
	return nil
}

func (s *Session) completeThrow() error {
	data := s.throwReasm.Take()
	if len(data) < 1 {
		return s.protocolErrorf("THROW: empty payload")
	}
	expr := string(data[1:])

	result, err := s.eng.Eval(expr)
	if err != nil {
		return s.sendEvalResult(dbgproto.EvalErrorResult, err.Error())
	}
	return s.ReportException(result)
}
