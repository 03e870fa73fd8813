package dbgproto

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func firstBody(total uint32, chunk []byte) []byte {
	header := make([]byte, 4)
	NativeOrder.PutUint32(header, total)
	return append(header, chunk...)
}

func TestReassemblerSingleShot(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First(firstBody(5, []byte("hello"))); err != nil {
		t.Fatalf("First failed: %v", err)
	}
	if !r.Done() {
		t.Fatalf("expected Done() immediately when the first chunk carries everything")
	}
	if got := string(r.Take()); got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
	if r.InProgress() {
		t.Errorf("InProgress() should be false after Take")
	}
}

func TestReassemblerMultiPart(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First(firstBody(11, []byte("hel"))); err != nil {
		t.Fatalf("First failed: %v", err)
	}
	if r.Done() {
		t.Fatalf("should not be done after only 3 of 11 bytes")
	}
	if err := r.Part([]byte("lo wo")); err != nil {
		t.Fatalf("Part failed: %v", err)
	}
	if r.Done() {
		t.Fatalf("should not be done after only 8 of 11 bytes")
	}
	if err := r.Part([]byte("rld")); err != nil {
		t.Fatalf("Part failed: %v", err)
	}
	if !r.Done() {
		t.Fatalf("expected Done() after the full payload arrived")
	}
	if got := string(r.Take()); got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
}

func TestReassemblerRejectsOversizeTotal(t *testing.T) {
	r := NewReassembler(4)
	if err := r.First(firstBody(100, []byte("ab"))); err != ErrTransferTooLarge {
		t.Fatalf("expected ErrTransferTooLarge, got %v", err)
	}
}

func TestReassemblerRejectsConcurrentFirst(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First(firstBody(10, []byte("ab"))); err != nil {
		t.Fatalf("First failed: %v", err)
	}
	if err := r.First(firstBody(10, []byte("cd"))); err != ErrTransferInProgress {
		t.Fatalf("expected ErrTransferInProgress, got %v", err)
	}
}

func TestReassemblerRejectsOverrunOnFirst(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First(firstBody(2, []byte("abc"))); err != ErrTransferOverrun {
		t.Fatalf("expected ErrTransferOverrun, got %v", err)
	}
}

func TestReassemblerRejectsOverrunOnPart(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First(firstBody(5, []byte("ab"))); err != nil {
		t.Fatalf("First failed: %v", err)
	}
	if err := r.Part([]byte("too many bytes")); err != ErrTransferOverrun {
		t.Fatalf("expected ErrTransferOverrun, got %v", err)
	}
}

func TestReassemblerPartWithoutFirst(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.Part([]byte("x")); err == nil {
		t.Fatalf("expected an error calling Part before First")
	}
}

func TestReassemblerAbortAllowsNewTransfer(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First(firstBody(10, []byte("ab"))); err != nil {
		t.Fatalf("First failed: %v", err)
	}
	r.Abort()
	if r.InProgress() {
		t.Fatalf("InProgress() should be false after Abort")
	}
	if err := r.First(firstBody(3, []byte("xyz"))); err != nil {
		t.Fatalf("First after Abort failed: %v", err)
	}
	if got := string(r.Take()); got != "xyz" {
		t.Errorf("got %q, want %q", got, "xyz")
	}
}

func TestReassemblerShortFirstBodyIsError(t *testing.T) {
	r := NewReassembler(1024)
	if err := r.First([]byte{1, 2}); err == nil {
		t.Fatalf("expected an error for a first-message body shorter than the size header")
	}
}

// TestReassemblerSurvivesArbitraryChunkBoundaries feeds the same random
// payload through the reassembler split at many different chunk widths, the
// way a real EVAL or CLIENT_SOURCE transfer can land split anywhere
// depending on what fit in the sender's last frame.
func TestReassemblerSurvivesArbitraryChunkBoundaries(t *testing.T) {
	payload := []byte(gofakeit.Sentence(30))

	for _, chunkSize := range []int{1, 3, 7, 16, 64, 200} {
		r := NewReassembler(4096)
		first := payload
		if len(first) > chunkSize {
			first = payload[:chunkSize]
		}
		if err := r.First(firstBody(uint32(len(payload)), first)); err != nil {
			t.Fatalf("chunk size %d: First failed: %v", chunkSize, err)
		}

		for rest := payload[len(first):]; len(rest) > 0; {
			n := chunkSize
			if n > len(rest) {
				n = len(rest)
			}
			if err := r.Part(rest[:n]); err != nil {
				t.Fatalf("chunk size %d: Part failed: %v", chunkSize, err)
			}
			rest = rest[n:]
		}

		if !r.Done() {
			t.Fatalf("chunk size %d: expected Done() once every byte arrived", chunkSize)
		}
		if got := string(r.Take()); got != string(payload) {
			t.Errorf("chunk size %d: got %q, want %q", chunkSize, got, string(payload))
		}
	}
}
