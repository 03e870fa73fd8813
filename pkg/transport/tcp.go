package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// recvPollInterval bounds how long a single Recv call may block waiting
// for data before reporting would-block, so Session.Poll's non-blocking
// contract holds over a real socket the way it does over FakeTransport.
// Go's netpoller owns the fd's blocking mode once wrapped in a net.Conn
// (unix.SetNonblock on the raw fd has no effect on it), so a read
// deadline is the only way to get EAGAIN-equivalent behavior back out of
// conn.Read.
const recvPollInterval = 10 * time.Millisecond

// websocketHeaderSizes matches pkg/websocket's restricted frame layout:
// a 2-byte header on both directions, server frames unmasked so there is
// no extra mask overhead on send.
var websocketHeaderSizes = HeaderSizes{
	SendHeaderSize: 2,
	RecvHeaderSize: 2 + 4, // header plus the mandatory client mask
	MaxMessageSize: 125,
}

// TCPTransport is the real Transport, backed by a single accepted TCP
// connection. Accept accepts a single client; the listener it opens uses
// the operating system's default backlog, not a backlog of 1.
type TCPTransport struct {
	addr string

	mu       sync.Mutex
	listener *net.TCPListener
	conn     *net.TCPConn
	fd       int
	closed   bool
}

// NewTCPTransport creates a transport that will listen on addr (e.g.
// ":8080") when Accept is called.
func NewTCPTransport(addr string) *TCPTransport {
	return &TCPTransport{addr: addr, fd: -1}
}

func (t *TCPTransport) Accept() error {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}
	t.mu.Unlock()

	tcpAddr, err := net.ResolveTCPAddr("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("transport: resolve %q: %w", t.addr, err)
	}

	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("transport: listen on %q: %w", t.addr, err)
	}

	conn, err := ln.AcceptTCP()
	if err != nil {
		ln.Close()
		return fmt.Errorf("transport: accept: %w", err)
	}

	fd, err := fdOf(conn)
	if err != nil {
		conn.Close()
		ln.Close()
		return fmt.Errorf("transport: inspect fd: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		conn.Close()
		ln.Close()
		return fmt.Errorf("transport: set TCP_NODELAY: %w", err)
	}

	t.mu.Lock()
	t.listener = ln
	t.conn = conn
	t.fd = fd
	t.mu.Unlock()
	return nil
}

// fdOf extracts the raw file descriptor of a TCP connection so socket
// options can be set directly, the same pattern used elsewhere in the
// retrieval pack for epoll/kqueue registration.
func fdOf(conn *net.TCPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	ctrlErr := raw.Control(func(sysfd uintptr) { fd = int(sysfd) })
	if ctrlErr != nil {
		return -1, ctrlErr
	}
	return fd, nil
}

func (t *TCPTransport) Send(data []byte) bool {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return false
	}

	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				continue
			}
			return false
		}
		data = data[n:]
	}
	return true
}

func (t *TCPTransport) Recv(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, ErrClosed
	}

	if err := conn.SetReadDeadline(time.Now().Add(recvPollInterval)); err != nil {
		return 0, fmt.Errorf("transport: set read deadline: %w", err)
	}

	n, err := conn.Read(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, nil
		}
		return 0, fmt.Errorf("transport: recv: %w", err)
	}
	return n, nil
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	var firstErr error
	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			firstErr = err
		}
		t.conn = nil
	}
	if t.listener != nil {
		if err := t.listener.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		t.listener = nil
	}
	return firstErr
}

func (t *TCPTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil && !t.closed
}

func (t *TCPTransport) Sizes() HeaderSizes {
	return websocketHeaderSizes
}
