package transport

import "sync"

// FakeTransport is an in-memory Transport used by tests and by
// cmd/jdb-demo, where there is no real socket and frames are handed over
// as whole buffers through a pair of channels.
type FakeTransport struct {
	sizes HeaderSizes

	mu        sync.Mutex
	connected bool
	closed    bool

	outbox chan []byte // frames this side sends, for a test harness to read
	inbox  chan []byte // frames queued for this side to receive
}

// NewFakeTransport creates a fake transport advertising the given header
// sizes (pass websocketHeaderSizes-equivalent values, or something else
// entirely to exercise pkg/debugger's set_transmit_sizes-style plug-in
// point).
func NewFakeTransport(sizes HeaderSizes) *FakeTransport {
	return &FakeTransport{
		sizes:  sizes,
		outbox: make(chan []byte, 64),
		inbox:  make(chan []byte, 64),
	}
}

func (f *FakeTransport) Accept() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connected {
		return ErrAlreadyConnected
	}
	f.connected = true
	return nil
}

func (f *FakeTransport) Send(data []byte) bool {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return false
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case f.outbox <- cp:
		return true
	default:
		return false
	}
}

func (f *FakeTransport) Recv(buf []byte) (int, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}
	select {
	case data := <-f.inbox:
		n := copy(buf, data)
		return n, nil
	default:
		return 0, nil // would-block
	}
}

func (f *FakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.connected = false
	return nil
}

func (f *FakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected && !f.closed
}

func (f *FakeTransport) Sizes() HeaderSizes {
	return f.sizes
}

// FeedClientFrame queues a buffer as if it had arrived from the client,
// for Recv to hand out on its next call.
func (f *FakeTransport) FeedClientFrame(data []byte) {
	f.inbox <- data
}

// TakeServerFrame blocks until the session under test sends a frame via
// Send, then returns it. Used by tests to assert on what the session
// wrote without needing a real socket pair.
func (f *FakeTransport) TakeServerFrame() []byte {
	return <-f.outbox
}

// TrySend attempts a non-blocking read of the next outbound frame,
// returning ok=false if none is queued yet.
func (f *FakeTransport) TrySend() (data []byte, ok bool) {
	select {
	case data = <-f.outbox:
		return data, true
	default:
		return nil, false
	}
}
