package debugger

import (
	"fmt"

	"jdb/pkg/dbgproto"
)

// drainPendingFrees checks the engine for bytecode units it has released
// since the last call and starts the two-phase release handshake for
// each: the unit is pushed onto freeQueue and RELEASE_BYTE_CODE_CP is
// emitted; the client is expected to echo FREE_BYTE_CODE_CP once it no
// longer references the pointer.
func (s *Session) drainPendingFrees() error {
	for _, cp := range s.eng.PendingFrees() {
		s.freeQueue.Enqueue(cp)
		if !dbgproto.SendFunctionCP(s, dbgproto.EgressReleaseByteCodeCP, cp, s.cpSize) {
			return s.ioFail(fmt.Errorf("debugger: failed to send RELEASE_BYTE_CODE_CP"))
		}
	}
	return nil
}

// handleFreeByteCodeCP completes the release handshake: the client
// confirms it no longer references cp, so the engine may reclaim it.
func (s *Session) handleFreeByteCodeCP(body []byte) error {
	if len(body) != s.cpSize {
		return s.protocolErrorf("FREE_BYTE_CODE_CP: wrong body length %d", len(body))
	}
	cp, err := dbgproto.ReadCompressedPointer(body, s.cpSize)
	if err != nil {
		return s.protocolErrorf("FREE_BYTE_CODE_CP: %v", err)
	}

	if !s.dequeueFree(cp) {
		return s.protocolErrorf("FREE_BYTE_CODE_CP: %v not in the deferred-free queue", cp)
	}
	if err := s.eng.ConfirmFree(cp); err != nil {
		return s.protocolErrorf("FREE_BYTE_CODE_CP: %v", err)
	}
	return nil
}

// dequeueFree removes the first occurrence of cp from freeQueue,
// preserving the order of everything else still pending. lane.Queue
// exposes no Size/Len, so the drain has to run until Empty() rather
// than for a fixed count.
func (s *Session) dequeueFree(cp dbgproto.CompressedPointer) bool {
	var kept []dbgproto.CompressedPointer
	found := false
	for !s.freeQueue.Empty() {
		v := s.freeQueue.Dequeue()
		candidate, ok := v.(dbgproto.CompressedPointer)
		if ok && candidate == cp && !found {
			found = true
			continue
		}
		kept = append(kept, v.(dbgproto.CompressedPointer))
	}
	for _, v := range kept {
		s.freeQueue.Enqueue(v)
	}
	return found
}
