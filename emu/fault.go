package emu

import (
	"fmt"
	"strings"
)

// FaultKind classifies a fatal core fault.
type FaultKind int

const (
	// FaultUnimplementedOpcode is raised when the fetched opcode has no
	// handler in its dispatch table.
	FaultUnimplementedOpcode FaultKind = iota
	// FaultInterruptMode is raised when a maskable interrupt is accepted
	// while the CPU is in interrupt mode 0 or 2.
	FaultInterruptMode
	// FaultVideoMode is raised when the VDP is asked to render a line in a
	// display mode that has no renderer.
	FaultVideoMode
)

func (k FaultKind) String() string {
	switch k {
	case FaultUnimplementedOpcode:
		return "unimplemented opcode"
	case FaultInterruptMode:
		return "unsupported interrupt mode"
	case FaultVideoMode:
		return "unsupported display mode"
	default:
		return "unknown fault"
	}
}

// Opcode table prefixes recorded in faults and trace entries.
const (
	PrefixNone uint16 = 0x0000
	PrefixCB   uint16 = 0x00CB
	PrefixED   uint16 = 0x00ED
	PrefixDD   uint16 = 0x00DD
	PrefixFD   uint16 = 0x00FD
	PrefixDDCB uint16 = 0xDDCB
	PrefixFDCB uint16 = 0xFDCB
)

// TraceEntry records one executed instruction.
type TraceEntry struct {
	PC     uint16
	Prefix uint16
	Opcode uint8
}

func (e TraceEntry) String() string {
	if e.Prefix == PrefixNone {
		return fmt.Sprintf("%04X: %02X", e.PC, e.Opcode)
	}
	return fmt.Sprintf("%04X: %X %02X", e.PC, e.Prefix, e.Opcode)
}

// Fault is a fatal condition that stops the CPU. Step keeps returning the
// same fault until the CPU is reset.
type Fault struct {
	Kind   FaultKind
	Prefix uint16
	Opcode uint8
	PC     uint16
	Mode   uint8 // interrupt mode or display mode, depending on Kind
	Trace  []TraceEntry
}

func (f *Fault) Error() string {
	var b strings.Builder
	switch f.Kind {
	case FaultUnimplementedOpcode:
		if f.Prefix == PrefixNone {
			fmt.Fprintf(&b, "%s 0x%02X at 0x%04X", f.Kind, f.Opcode, f.PC)
		} else {
			fmt.Fprintf(&b, "%s 0x%X 0x%02X at 0x%04X", f.Kind, f.Prefix, f.Opcode, f.PC)
		}
	case FaultInterruptMode:
		fmt.Fprintf(&b, "%s %d at 0x%04X", f.Kind, f.Mode, f.PC)
	case FaultVideoMode:
		fmt.Fprintf(&b, "%s 0x%02X at 0x%04X", f.Kind, f.Mode, f.PC)
	default:
		fmt.Fprintf(&b, "%s at 0x%04X", f.Kind, f.PC)
	}
	return b.String()
}

// TraceString formats the recent instruction history, oldest first.
func (f *Fault) TraceString() string {
	parts := make([]string, len(f.Trace))
	for i, e := range f.Trace {
		parts[i] = e.String()
	}
	return strings.Join(parts, "\n")
}

const traceDepth = 16

// traceRing is a fixed-size history of recently executed instructions.
type traceRing struct {
	entries [traceDepth]TraceEntry
	next    int
	count   int
}

func (t *traceRing) record(pc, prefix uint16, op uint8) {
	t.entries[t.next] = TraceEntry{PC: pc, Prefix: prefix, Opcode: op}
	t.next = (t.next + 1) % traceDepth
	if t.count < traceDepth {
		t.count++
	}
}

func (t *traceRing) snapshot() []TraceEntry {
	out := make([]TraceEntry, t.count)
	start := (t.next - t.count + traceDepth) % traceDepth
	for i := 0; i < t.count; i++ {
		out[i] = t.entries[(start+i)%traceDepth]
	}
	return out
}

func (t *traceRing) reset() {
	*t = traceRing{}
}
