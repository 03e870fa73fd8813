package debugger

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/oleiade/lane"

	"jdb/internal/buildinfo"
	"jdb/pkg/config"
	"jdb/pkg/dbgproto"
	"jdb/pkg/engine"
	"jdb/pkg/sourcestore"
	"jdb/pkg/transport"
	"jdb/pkg/websocket"
)

// Session is the protocol state machine for a single accepted
// connection; its lifetime is exactly the lifetime of that connection.
type Session struct {
	tr     transport.Transport
	eng    engine.Engine
	log    *log.Logger
	cfg    config.Session
	sources *sourcestore.Store

	mode PrimaryMode

	// Independent mode flags, see PrimaryMode's doc comment for why
	// these stay separate booleans instead of folding into the tag.
	vmStop            bool
	vmIgnore          bool
	vmIgnoreException bool
	stopAfterParse    bool
	contextResetMode  bool
	throwErrorFlag    bool
	connected         bool

	sendBuf []byte
	recvBuf []byte

	recvOffset     int
	maxSendPayload int
	maxRecvPayload int

	messageDelay int
	stopContext  int // call-stack depth NEXT/FINISH are scoped against
	stepKind     stepKind

	cpSize       int
	littleEndian bool

	freeQueue *lane.Queue // queued CompressedPointer awaiting FREE_BYTE_CODE_CP

	evalReasm   *dbgproto.Reassembler
	throwReasm  *dbgproto.Reassembler
	sourceReasm *dbgproto.Reassembler
	sourceName  string // resource name the in-flight CLIENT_SOURCE transfer targets

	clientSourceCallback func(resourceName, source string) ClientSourceStatus
	clientSourceActive   bool
}

// ClientSourceStatus is the outcome WaitForClientSource's callback
// reports back, mirroring the engine-facing API's
// {RECEIVED, END, RESET, FAILED} result set.
type ClientSourceStatus int

const (
	ClientSourceReceived ClientSourceStatus = iota
	ClientSourceEnd
	ClientSourceReset
	ClientSourceFailed
)

// NewSession builds a Session around the given transport and engine. The
// transport must not have Accept called yet; Session.Accept drives that.
func NewSession(tr transport.Transport, eng engine.Engine, sources *sourcestore.Store, cfg config.Session, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		tr:          tr,
		eng:         eng,
		log:         logger,
		cfg:         cfg,
		sources:     sources,
		cpSize:      cfg.CompressedPointerSize,
		freeQueue:   lane.NewQueue(),
		evalReasm:   dbgproto.NewReassembler(cfg.MaxAccumulationSize),
		throwReasm:  dbgproto.NewReassembler(cfg.MaxAccumulationSize),
		sourceReasm: dbgproto.NewReassembler(cfg.MaxAccumulationSize),
	}
}

// Accept blocks until a client connects and completes the HTTP upgrade
// handshake, then sends the one-time CONFIGURATION message and arms
// VM_STOP so the engine pauses at its first opportunity.
func (s *Session) Accept() error {
	if err := s.tr.Accept(); err != nil {
		return fmt.Errorf("debugger: accept: %w", err)
	}
	if err := s.handshake(); err != nil {
		s.tr.Close()
		return err
	}

	sizes := s.tr.Sizes()
	s.maxSendPayload = clampPayload(s.cfg.BufferSize - sizes.SendHeaderSize)
	s.maxRecvPayload = clampPayload(s.cfg.BufferSize - sizes.RecvHeaderSize)
	s.sendBuf = make([]byte, s.cfg.BufferSize)
	s.recvBuf = make([]byte, s.cfg.BufferSize)
	s.connected = true
	s.littleEndian = dbgproto.IsLittleEndian()

	if !s.sendConfiguration() {
		s.tr.Close()
		return fmt.Errorf("debugger: failed to send CONFIGURATION")
	}

	s.vmStop = true
	return nil
}

func clampPayload(n int) int {
	if n > websocket.MaxPayloadSize {
		return websocket.MaxPayloadSize
	}
	if n < 0 {
		return 0
	}
	return n
}

// handshake reads the HTTP upgrade request directly off the transport
// (before any frame codec applies) and writes the 101 response. If the
// client advertised its own build version via
// websocket.ClientVersionHeader, the version is checked against
// buildinfo.SupportedRange and the outcome is logged; a mismatch or a
// missing header never changes the handshake or refuses the connection —
// version negotiation is a diagnostics nicety, not part of the wire
// protocol.
func (s *Session) handshake() error {
	buf := make([]byte, 0, websocket.MaxHandshakeSize)
	chunk := make([]byte, 256)

	for {
		n, err := s.tr.Recv(chunk)
		if err != nil {
			return fmt.Errorf("debugger: handshake recv: %w", err)
		}
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}

		secKey, clientVersion, _, err := websocket.ParseUpgradeRequest(buf)
		if err == websocket.ErrIncompleteRequest {
			if len(buf) > websocket.MaxHandshakeSize {
				return websocket.ErrHandshakeTooLarge
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("debugger: handshake: %w", err)
		}

		s.logClientCompatibility(clientVersion)

		resp := websocket.BuildSwitchingProtocolsResponse(websocket.AcceptKey(secKey))
		if !s.tr.Send(resp) {
			return fmt.Errorf("debugger: handshake: failed to send upgrade response")
		}
		return nil
	}
}

// logClientCompatibility checks an optionally client-supplied version
// string against buildinfo.SupportedRange and logs the result. clientVersion
// is empty when the client sent no websocket.ClientVersionHeader, which is
// the common case for the reference debugger client and is logged, not
// treated as an error.
func (s *Session) logClientCompatibility(clientVersion string) {
	if clientVersion == "" {
		s.log.Printf("debugger: client did not advertise a version, skipping compatibility check")
		return
	}
	compatible, err := buildinfo.CheckCompatible(clientVersion)
	if err != nil {
		s.log.Printf("debugger: client version %q could not be checked: %v", clientVersion, err)
		return
	}
	if !compatible {
		s.log.Printf("debugger: client version %q is outside supported range %q", clientVersion, buildinfo.SupportedRange)
		return
	}
	s.log.Printf("debugger: client version %q is compatible", clientVersion)
}

func (s *Session) sendConfiguration() bool {
	maxMessageSize := s.maxRecvPayload
	if maxMessageSize > 255 {
		maxMessageSize = 255
	}

	body := make([]byte, 5)
	body[0] = byte(dbgproto.EgressConfiguration)
	body[1] = byte(maxMessageSize)
	body[2] = byte(s.cpSize)
	if s.littleEndian {
		body[3] = 1
	}
	body[4] = buildinfo.ProtocolVersion
	return s.SendMessage(body)
}

// SendMessage implements dbgproto.Sink: it wraps a `type_byte || body`
// message in a single restricted binary frame and pushes it over the
// transport. Every outbound path in this package — CONFIGURATION,
// breakpoint/exception reports, streamed replies — goes through this one
// function so framing is applied exactly once.
func (s *Session) SendMessage(body []byte) bool {
	frame, err := websocket.NewBinaryFrame(body)
	if err != nil {
		s.log.Printf("debugger: outgoing message dropped: %v", err)
		return false
	}
	wire, err := websocket.Encode(frame)
	if err != nil {
		s.log.Printf("debugger: failed to encode outgoing frame: %v", err)
		return false
	}
	return s.tr.Send(wire)
}

// MaxPayload implements dbgproto.Sink.
func (s *Session) MaxPayload() int { return s.maxSendPayload }

// Close tears the session down: clears every mode flag, sets VM_IGNORE
// so the engine drains without further pauses, flushes the deferred-free
// queue, and closes the transport. Safe to call more than once.
func (s *Session) Close() error {
	s.connected = false
	s.mode = ModeRun
	s.vmStop = false
	s.vmIgnore = true
	s.contextResetMode = false
	s.vmIgnoreException = false
	s.stopAfterParse = false
	s.throwErrorFlag = false
	s.stepKind = stepNone
	for !s.freeQueue.Empty() {
		s.freeQueue.Dequeue()
	}
	return s.tr.Close()
}

// Connected reports whether a handshaked client is attached.
func (s *Session) Connected() bool { return s.connected }

// Mode reports the current primary mode, mainly for tests and
// diagnostics.
func (s *Session) Mode() PrimaryMode { return s.mode }

// sleepPoll is overridable in tests so PollBlocking loops don't actually
// sleep wall-clock time.
var sleepPoll = time.Sleep
