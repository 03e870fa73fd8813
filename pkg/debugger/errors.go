package debugger

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// ErrProtocol is the sentinel wrapped by every protocol-level violation:
// an off-matrix message, a malformed body, an out-of-sequence fragment.
// Per spec §7, any protocol error is fatal to the connection.
var ErrProtocol = errors.New("debugger: protocol error")

// ErrIOFailure wraps a hard transport failure (anything other than
// would-block).
var ErrIOFailure = errors.New("debugger: I/O failure")

// protocolErrorf builds an ErrProtocol-wrapping error and, at the point
// it's raised, dumps the session's field values with go-spew so a
// post-mortem log has enough state to diagnose what the client sent
// without needing to reproduce the failure live.
func (s *Session) protocolErrorf(format string, args ...any) error {
	err := fmt.Errorf(format+": %w", append(args, ErrProtocol)...)
	s.log.Printf("debugger: protocol error, session state:\n%s", spew.Sdump(s))
	return err
}
