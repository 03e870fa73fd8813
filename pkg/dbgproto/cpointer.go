package dbgproto

import "fmt"

// CompressedPointer is the debugger's view of the engine's bytecode
// token: a 2- or 4-byte opaque identifier the engine can dereference to
// a compiled unit. The debugger only ever compares it for equality and
// moves it across the wire; it never interprets the bits.
type CompressedPointer uint32

// String renders the pointer as a hex token for logs.
func (cp CompressedPointer) String() string {
	return fmt.Sprintf("cp:%#x", uint32(cp))
}

func putCompressedPointer(dst []byte, cp CompressedPointer, size int) {
	switch size {
	case 2:
		NativeOrder.PutUint16(dst[:2], uint16(cp))
	case 4:
		NativeOrder.PutUint32(dst[:4], uint32(cp))
	default:
		panic("dbgproto: compressed pointer size must be 2 or 4")
	}
}

// ReadCompressedPointer decodes a compressed pointer of the given size
// (2 or 4 bytes) from the front of src, in native byte order.
func ReadCompressedPointer(src []byte, size int) (CompressedPointer, error) {
	switch size {
	case 2:
		if len(src) < 2 {
			return 0, fmt.Errorf("dbgproto: short buffer for 2-byte compressed pointer")
		}
		return CompressedPointer(NativeOrder.Uint16(src[:2])), nil
	case 4:
		if len(src) < 4 {
			return 0, fmt.Errorf("dbgproto: short buffer for 4-byte compressed pointer")
		}
		return CompressedPointer(NativeOrder.Uint32(src[:4])), nil
	default:
		return 0, fmt.Errorf("dbgproto: compressed pointer size must be 2 or 4, got %d", size)
	}
}

// PutCompressedPointer encodes cp into dst (which must be at least size
// bytes long) using the given pointer size and native byte order.
func PutCompressedPointer(dst []byte, cp CompressedPointer, size int) {
	putCompressedPointer(dst, cp, size)
}
