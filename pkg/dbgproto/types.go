package dbgproto

// MemStats mirrors the five native-order uint32 counters the MEMSTATS
// reply carries.
type MemStats struct {
	Allocated uint32
	ByteCode  uint32
	String    uint32
	Object    uint32
	Property  uint32
}

// Encode lays the five counters out in the fixed order the wire format
// uses.
func (m MemStats) Encode() []byte {
	buf := make([]byte, 20)
	NativeOrder.PutUint32(buf[0:4], m.Allocated)
	NativeOrder.PutUint32(buf[4:8], m.ByteCode)
	NativeOrder.PutUint32(buf[8:12], m.String)
	NativeOrder.PutUint32(buf[12:16], m.Object)
	NativeOrder.PutUint32(buf[16:20], m.Property)
	return buf
}

// BacktraceFrame is one (compressed pointer, last executed offset) entry
// in a GET_BACKTRACE reply.
type BacktraceFrame struct {
	CP         CompressedPointer
	LastOffset uint32
}

// EncodeBacktraceFrame packs a frame using the given compressed pointer
// size, matching the layout BACKTRACE fragments use.
func EncodeBacktraceFrame(f BacktraceFrame, cpSize int) []byte {
	buf := make([]byte, cpSize+4)
	PutCompressedPointer(buf, f.CP, cpSize)
	NativeOrder.PutUint32(buf[cpSize:cpSize+4], f.LastOffset)
	return buf
}
