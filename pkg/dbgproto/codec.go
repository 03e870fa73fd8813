package dbgproto

import (
	"encoding/binary"
	"io"
	"unsafe"
)

// NativeOrder is the byte order of integers as this process sees them.
// The debugger never silently normalizes to a fixed order: the wire
// protocol transmits multi-byte numeric fields in whatever order the
// host naturally uses, and tells the client which order that was via
// the little_endian field of the CONFIGURATION message (see
// pkg/debugger). Forcing little-endian unconditionally would be a
// protocol break on a big-endian host, so this is detected once at
// package init instead of assumed.
var NativeOrder = detectNativeOrder()

func detectNativeOrder() binary.ByteOrder {
	var probe uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&probe))
	if b[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// IsLittleEndian reports whether NativeOrder is little-endian, the exact
// boolean the CONFIGURATION message advertises.
func IsLittleEndian() bool {
	return NativeOrder == binary.LittleEndian
}

// Codec is a cursor over a fixed byte buffer, used to lay out or parse a
// message body without extra allocation. It never grows the underlying
// buffer: every Write method fails with io.EOF once the buffer is full,
// mirroring the bounded send/recv buffers the debugger session owns.
type Codec struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// NewCodec creates a Codec over buf using the host's native byte order.
func NewCodec(buf []byte) *Codec {
	return &Codec{buf: buf, order: NativeOrder}
}

// Reset rewinds the codec to the start of its buffer.
func (c *Codec) Reset() { c.pos = 0 }

// Pos returns the current cursor position.
func (c *Codec) Pos() int { return c.pos }

// Remaining returns the number of unused bytes left in the buffer.
func (c *Codec) Remaining() int { return len(c.buf) - c.pos }

// Bytes returns the portion of the buffer written or read so far.
func (c *Codec) Bytes() []byte { return c.buf[:c.pos] }

func (c *Codec) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, io.EOF
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *Codec) WriteByte(b byte) error {
	if c.pos >= len(c.buf) {
		return io.EOF
	}
	c.buf[c.pos] = b
	c.pos++
	return nil
}

func (c *Codec) ReadUint32() (uint32, error) {
	if c.pos+4 > len(c.buf) {
		return 0, io.EOF
	}
	v := c.order.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *Codec) WriteUint32(v uint32) error {
	if c.pos+4 > len(c.buf) {
		return io.EOF
	}
	c.order.PutUint32(c.buf[c.pos:c.pos+4], v)
	c.pos += 4
	return nil
}

func (c *Codec) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, io.EOF
	}
	b := make([]byte, n)
	copy(b, c.buf[c.pos:c.pos+n])
	c.pos += n
	return b, nil
}

func (c *Codec) WriteBytes(b []byte) error {
	if c.pos+len(b) > len(c.buf) {
		return io.EOF
	}
	copy(c.buf[c.pos:], b)
	c.pos += len(b)
	return nil
}

// ReadRemaining returns every byte from the cursor to the end of the
// buffer, without advancing past it again.
func (c *Codec) ReadRemaining() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}
