package engine

import (
	"fmt"
	"strconv"
	"strings"

	"jdb/pkg/dbgproto"
)

// opKind is the instruction shape refengine's tiny compiled unit uses.
// There is no real bytecode format here: each opKind corresponds to one
// line of the toy script language LoadSource compiles.
type opKind int

const (
	opNop opKind = iota
	opSet
	opCall
	opReturn
)

type op struct {
	kind     opKind
	varName  string // opSet
	expr     string // opSet
	target   dbgproto.CompressedPointer
	lineNo   uint32
}

// unit is one compiled function: a flat list of ops plus the bit for
// each offset that currently has an active breakpoint.
type unit struct {
	name        string
	ops         []op
	active      map[uint32]bool // offset -> active
	lineOffsets []uint32
	byteOffsets []uint32
}

type callFrame struct {
	cp     dbgproto.CompressedPointer
	pc     int
	locals map[string]float64
}

// RefEngine is the reference Engine: a toy interpreter over a line-based
// script language, enough to exercise every debugger operation (stepping,
// breakpoints, backtraces, eval, parse notifications, context reset)
// without needing a real bytecode VM.
type RefEngine struct {
	cpSize int

	units  map[dbgproto.CompressedPointer]*unit
	nextCP dbgproto.CompressedPointer

	callStack []callFrame // index 0 = outermost

	pendingFrees []dbgproto.CompressedPointer
	freed        map[dbgproto.CompressedPointer]bool

	stats MemStats
}

// NewRefEngine creates an empty engine advertising the given compressed
// pointer size (2 or 4, as CONFIGURATION requires).
func NewRefEngine(cpSize int) *RefEngine {
	return &RefEngine{
		cpSize: cpSize,
		units:  make(map[dbgproto.CompressedPointer]*unit),
		freed:  make(map[dbgproto.CompressedPointer]bool),
		nextCP: 1,
	}
}

func (e *RefEngine) CompressedPointerSize() int { return e.cpSize }

func (e *RefEngine) Reset() {
	e.units = make(map[dbgproto.CompressedPointer]*unit)
	e.callStack = nil
	e.pendingFrees = nil
	e.freed = make(map[dbgproto.CompressedPointer]bool)
	e.nextCP = 1
}

// LoadSource compiles a script of the form:
//
//	func NAME
//	  let x = 1
//	  call OTHER
//	  nop
//	end
//
// one function per "func ... end" block, each line after "func" becoming
// one dispatch step. The outermost function encountered becomes the
// active call stack entry. Returns the ordered ParseEvent stream
// pkg/debugger replays to the client.
func (e *RefEngine) LoadSource(resourceName, src string) ([]ParseEvent, error) {
	lines := strings.Split(src, "\n")

	var events []ParseEvent
	pending := map[string]dbgproto.CompressedPointer{}

	// First pass: allocate a compressed pointer per function name so
	// forward "call" references resolve regardless of definition order.
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if name, ok := strings.CutPrefix(line, "func "); ok {
			if _, exists := pending[name]; !exists {
				pending[name] = e.allocateCP()
			}
		}
	}

	var cur *unit
	var curCP dbgproto.CompressedPointer
	var curLine uint32
	var firstCP dbgproto.CompressedPointer

	for i, raw := range lines {
		lineNo := uint32(i + 1)
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "func "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "func "))
			curCP = pending[name]
			if firstCP == 0 {
				firstCP = curCP
			}
			cur = &unit{name: name, active: make(map[uint32]bool)}
			curLine = lineNo

		case line == "end":
			if cur == nil {
				return nil, fmt.Errorf("engine: 'end' without matching 'func' at line %d", lineNo)
			}
			e.units[curCP] = cur
			ev := ParseEvent{
				SourceName:   resourceName,
				Source:       src,
				FunctionName: cur.name,
				Line:         curLine,
				Col:          1,
				CP:           curCP,
				LineOffsets:  cur.lineOffsets,
				ByteOffsets:  cur.byteOffsets,
			}
			events = append(events, ev)
			cur = nil

		case cur != nil && strings.HasPrefix(line, "let "):
			rest := strings.TrimPrefix(line, "let ")
			parts := strings.SplitN(rest, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("engine: malformed let at line %d", lineNo)
			}
			offset := uint32(len(cur.ops))
			cur.ops = append(cur.ops, op{kind: opSet, varName: strings.TrimSpace(parts[0]), expr: strings.TrimSpace(parts[1]), lineNo: lineNo})
			cur.lineOffsets = append(cur.lineOffsets, lineNo)
			cur.byteOffsets = append(cur.byteOffsets, offset)

		case cur != nil && strings.HasPrefix(line, "call "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "call "))
			target, ok := pending[name]
			if !ok {
				return nil, fmt.Errorf("engine: call to undefined function %q at line %d", name, lineNo)
			}
			offset := uint32(len(cur.ops))
			cur.ops = append(cur.ops, op{kind: opCall, target: target, lineNo: lineNo})
			cur.lineOffsets = append(cur.lineOffsets, lineNo)
			cur.byteOffsets = append(cur.byteOffsets, offset)

		case cur != nil && line == "nop":
			offset := uint32(len(cur.ops))
			cur.ops = append(cur.ops, op{kind: opNop, lineNo: lineNo})
			cur.lineOffsets = append(cur.lineOffsets, lineNo)
			cur.byteOffsets = append(cur.byteOffsets, offset)

		default:
			return nil, fmt.Errorf("engine: unrecognized line %d: %q", lineNo, line)
		}
	}

	if firstCP != 0 {
		e.callStack = []callFrame{{cp: firstCP, pc: 0, locals: make(map[string]float64)}}
	}
	e.stats.ByteCode += uint32(len(events)) * 32

	return events, nil
}

func (e *RefEngine) allocateCP() dbgproto.CompressedPointer {
	cp := e.nextCP
	e.nextCP++
	return cp
}

func (e *RefEngine) CurrentFrame() Frame {
	if len(e.callStack) == 0 {
		return Frame{}
	}
	f := e.callStack[len(e.callStack)-1]
	return Frame{CP: f.cp, LastOffset: e.lastOffsetOf(f)}
}

func (e *RefEngine) lastOffsetOf(f callFrame) uint32 {
	u := e.units[f.cp]
	if u == nil || f.pc >= len(u.ops) {
		return 0
	}
	return uint32(f.pc)
}

func (e *RefEngine) CallStack() []Frame {
	out := make([]Frame, 0, len(e.callStack))
	for i := len(e.callStack) - 1; i >= 0; i-- {
		f := e.callStack[i]
		out = append(out, Frame{CP: f.cp, LastOffset: e.lastOffsetOf(f)})
	}
	return out
}

func (e *RefEngine) Depth() int { return len(e.callStack) }

// Dispatch executes the op at the top frame's pc and advances. Calling
// into a function pushes a frame; running off the end of a function
// pops one. Dispatch reports finished=true once the outermost frame
// returns.
func (e *RefEngine) Dispatch() bool {
	if len(e.callStack) == 0 {
		return true
	}
	top := len(e.callStack) - 1
	f := &e.callStack[top]
	u := e.units[f.cp]
	if u == nil || f.pc >= len(u.ops) {
		e.callStack = e.callStack[:top]
		return len(e.callStack) == 0
	}

	instr := u.ops[f.pc]
	switch instr.kind {
	case opNop:
		f.pc++
	case opSet:
		v, err := evaluateScopedFloat(instr.expr, f.locals)
		if err == nil {
			f.locals[instr.varName] = v
		}
		f.pc++
	case opCall:
		f.pc++
		e.callStack = append(e.callStack, callFrame{cp: instr.target, pc: 0, locals: make(map[string]float64)})
	case opReturn:
		e.callStack = e.callStack[:top]
	}
	return len(e.callStack) == 0
}

func evaluateScopedFloat(expr string, scope map[string]float64) (float64, error) {
	s, err := evaluateExpression(expr, scope)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func (e *RefEngine) HasBreakpoint(cp dbgproto.CompressedPointer, offset uint32) bool {
	u := e.units[cp]
	if u == nil {
		return false
	}
	return u.active[offset]
}

func (e *RefEngine) ToggleBreakpoint(cp dbgproto.CompressedPointer, offset uint32, active bool) error {
	u := e.units[cp]
	if u == nil {
		return fmt.Errorf("engine: unknown compressed pointer %v", cp)
	}
	found := false
	for _, o := range u.byteOffsets {
		if o == offset {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("engine: unknown breakpoint offset %d in %v", offset, cp)
	}
	if active {
		u.active[offset] = true
	} else {
		delete(u.active, offset)
	}
	return nil
}

// Eval evaluates expr against the innermost frame's locals.
func (e *RefEngine) Eval(expr string) (string, error) {
	if len(e.callStack) == 0 {
		return evaluateExpression(expr, map[string]float64{})
	}
	f := e.callStack[len(e.callStack)-1]
	return evaluateExpression(expr, f.locals)
}

func (e *RefEngine) MemStats() MemStats {
	e.stats.Allocated = e.stats.ByteCode + uint32(len(e.units))*16
	e.stats.Object = uint32(len(e.callStack)) * 8
	return e.stats
}

// FreeUnit marks cp as released by the engine, enqueuing it for the
// deferred RELEASE_BYTE_CODE_CP / FREE_BYTE_CODE_CP handshake rather than
// deleting it immediately, since the client may still hold the pointer.
func (e *RefEngine) FreeUnit(cp dbgproto.CompressedPointer) {
	e.pendingFrees = append(e.pendingFrees, cp)
}

func (e *RefEngine) PendingFrees() []dbgproto.CompressedPointer {
	out := e.pendingFrees
	e.pendingFrees = nil
	return out
}

func (e *RefEngine) ConfirmFree(cp dbgproto.CompressedPointer) error {
	if _, ok := e.units[cp]; !ok {
		return fmt.Errorf("engine: confirm-free for unknown compressed pointer %v", cp)
	}
	delete(e.units, cp)
	e.freed[cp] = true
	return nil
}
