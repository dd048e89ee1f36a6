package emu

import "github.com/pkg/errors"

// Bus is the CPU's view of the system: a 64KB address space and the
// I/O port space.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	In(port uint16) uint8
	Out(port uint16, value uint8)
}

// Ticker is driven by the CPU once per instruction period. The VDP
// implements it and advances one scanline per tick.
type Ticker interface {
	Tick() error
}

// DefaultInstructionPeriod is the number of CPU cycles per video tick
// (one scanline at 3.58MHz / 262 lines / 60Hz).
const DefaultInstructionPeriod = 228

// Interrupt costs in T-states.
const (
	nmiCycles = 11
	im1Cycles = 13
)

// CPU is a Z80 instruction engine.
type CPU struct {
	Registers

	bus   Bus
	video Ticker

	nmiPending bool
	intPending bool
	eiDelay    bool // EI blocks maskable interrupts for one instruction

	instructionCount  int
	instructionPeriod int
	cycles            uint64

	fault *Fault
	trace traceRing
}

// NewCPU creates a CPU bound to bus. video may be nil, in which case
// no ticks are delivered (useful for testing instruction behavior).
func NewCPU(bus Bus, video Ticker) *CPU {
	c := &CPU{bus: bus, video: video}
	c.Reset()
	return c
}

// Reset clears every register in both banks, the interrupt state, the
// fault and the period counter.
func (c *CPU) Reset() {
	c.Registers = Registers{}
	c.nmiPending = false
	c.intPending = false
	c.eiDelay = false
	c.instructionPeriod = DefaultInstructionPeriod
	c.instructionCount = DefaultInstructionPeriod
	c.cycles = 0
	c.fault = nil
	c.trace.reset()
}

// SetInstructionPeriod sets the number of cycles between video ticks.
func (c *CPU) SetInstructionPeriod(cycles int) {
	if cycles <= 0 {
		cycles = DefaultInstructionPeriod
	}
	c.instructionPeriod = cycles
	if c.instructionCount > cycles {
		c.instructionCount = cycles
	}
}

// NMI latches a non-maskable interrupt request. It is serviced at the
// start of the next Step.
func (c *CPU) NMI() {
	c.nmiPending = true
}

// RequestINT latches a maskable interrupt request. The request stays
// pending until it is accepted.
func (c *CPU) RequestINT() {
	c.intPending = true
}

// NMIPending reports whether an NMI is waiting to be serviced.
func (c *CPU) NMIPending() bool { return c.nmiPending }

// INTPending reports whether a maskable interrupt is waiting.
func (c *CPU) INTPending() bool { return c.intPending }

// Cycles returns the total T-states executed since reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Fault returns the fault that stopped the CPU, or nil.
func (c *CPU) Fault() *Fault { return c.fault }

// Trace returns the recently executed instructions, oldest first.
func (c *CPU) Trace() []TraceEntry { return c.trace.snapshot() }

// Step services a pending interrupt or executes one instruction and
// returns the T-states consumed. A halted CPU returns 0 without doing
// anything. Once a fault has been returned the CPU is stopped and every
// later call returns the same fault.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	var cycles int
	var err error

	switch {
	case c.nmiPending:
		c.nmiPending = false
		c.Halted = false
		c.IFF1 = false
		c.push(c.PC)
		c.PC = 0x0066
		cycles = nmiCycles

	case c.intPending && c.IFF1 && !c.eiDelay:
		if c.IM != 1 {
			return 0, c.stop(&Fault{Kind: FaultInterruptMode, Mode: c.IM, PC: c.PC})
		}
		c.intPending = false
		c.Halted = false
		c.IFF1 = false
		c.IFF2 = false
		c.push(c.PC)
		c.PC = 0x0038
		cycles = im1Cycles

	case c.Halted:
		return 0, nil

	default:
		c.eiDelay = false
		pc := c.PC
		op := c.fetch()
		c.incR()
		if !isPrefix(op) {
			c.trace.record(pc, PrefixNone, op)
		}
		cycles, err = c.execute(op, indexHL)
		if err != nil {
			return 0, c.stop(err)
		}
	}

	if err := c.Clock(cycles); err != nil {
		return cycles, err
	}
	return cycles, nil
}

// Clock charges cycles against the video period counter, ticking the
// video device when the period is exhausted. It is used by Step and by
// hosts that need time to pass while the CPU is halted.
func (c *CPU) Clock(cycles int) error {
	if c.fault != nil {
		return c.fault
	}
	c.cycles += uint64(cycles)
	c.instructionCount -= cycles
	if c.instructionCount <= 0 {
		c.instructionCount += c.instructionPeriod
		if c.video != nil {
			if err := c.video.Tick(); err != nil {
				return c.stop(err)
			}
		}
	}
	return nil
}

// stop records err as the CPU's fault. Faults get the current PC and the
// recent instruction trace attached.
func (c *CPU) stop(err error) error {
	var f *Fault
	if !errors.As(err, &f) {
		return err
	}
	if f.Kind == FaultVideoMode {
		f.PC = c.PC
	}
	f.Trace = c.trace.snapshot()
	c.fault = f
	return f
}

// isPrefix reports whether op starts a prefixed instruction. Those are
// traced by the table that decodes the second byte.
func isPrefix(op uint8) bool {
	return op == 0xCB || op == 0xDD || op == 0xED || op == 0xFD
}

func (c *CPU) unimplemented(prefix uint16, op uint8, length uint16) error {
	return &Fault{Kind: FaultUnimplementedOpcode, Prefix: prefix, Opcode: op, PC: c.PC - length}
}

func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.bus.Read(addr)) | uint16(c.bus.Read(addr+1))<<8
}

func (c *CPU) write16(addr, v uint16) {
	c.bus.Write(addr, uint8(v))
	c.bus.Write(addr+1, uint8(v>>8))
}

func (c *CPU) fetch() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	v := c.read16(c.PC)
	c.PC += 2
	return v
}

func (c *CPU) push(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}
