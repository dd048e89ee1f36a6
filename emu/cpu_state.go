package emu

import "encoding/binary"

// CPUStateSize is the number of bytes written by CPU.Serialize.
const CPUStateSize = 16 + // both register banks
	2 + // bank selectors
	8 + // IX, IY, SP, PC
	2 + // I, R
	4 + // IFF1, IFF2, IM, Halted
	3 + // nmiPending, intPending, eiDelay
	8 + // instructionCount, instructionPeriod
	8 // cycles

func putBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

// Serialize writes the CPU state into buf, which must hold CPUStateSize
// bytes. A stopped CPU's fault is not saved.
func (c *CPU) Serialize(buf []byte) {
	off := 0
	for _, bank := range c.Banks {
		copy(buf[off:], []uint8{bank.A, bank.F, bank.B, bank.C, bank.D, bank.E, bank.H, bank.L})
		off += 8
	}
	putBool(buf[off:], c.AltRegisters)
	putBool(buf[off+1:], c.AltAccumulator)
	off += 2
	for _, r := range []uint16{c.IX, c.IY, c.SP, c.PC} {
		binary.LittleEndian.PutUint16(buf[off:], r)
		off += 2
	}
	buf[off] = c.I
	buf[off+1] = c.R
	off += 2
	putBool(buf[off:], c.IFF1)
	putBool(buf[off+1:], c.IFF2)
	buf[off+2] = c.IM
	putBool(buf[off+3:], c.Halted)
	off += 4
	putBool(buf[off:], c.nmiPending)
	putBool(buf[off+1:], c.intPending)
	putBool(buf[off+2:], c.eiDelay)
	off += 3
	binary.LittleEndian.PutUint32(buf[off:], uint32(int32(c.instructionCount)))
	binary.LittleEndian.PutUint32(buf[off+4:], uint32(int32(c.instructionPeriod)))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], c.cycles)
}

// Deserialize restores state written by Serialize and clears any fault.
func (c *CPU) Deserialize(buf []byte) {
	off := 0
	for i := range c.Banks {
		b := buf[off : off+8]
		c.Banks[i] = RegisterBank{A: b[0], F: b[1], B: b[2], C: b[3], D: b[4], E: b[5], H: b[6], L: b[7]}
		off += 8
	}
	c.AltRegisters = buf[off] != 0
	c.AltAccumulator = buf[off+1] != 0
	off += 2
	regs := []*uint16{&c.IX, &c.IY, &c.SP, &c.PC}
	for _, r := range regs {
		*r = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	c.I = buf[off]
	c.R = buf[off+1]
	off += 2
	c.IFF1 = buf[off] != 0
	c.IFF2 = buf[off+1] != 0
	c.IM = buf[off+2]
	c.Halted = buf[off+3] != 0
	off += 4
	c.nmiPending = buf[off] != 0
	c.intPending = buf[off+1] != 0
	c.eiDelay = buf[off+2] != 0
	off += 3
	c.instructionCount = int(int32(binary.LittleEndian.Uint32(buf[off:])))
	c.instructionPeriod = int(int32(binary.LittleEndian.Uint32(buf[off+4:])))
	off += 8
	c.cycles = binary.LittleEndian.Uint64(buf[off:])
	c.fault = nil
	c.trace.reset()
}
