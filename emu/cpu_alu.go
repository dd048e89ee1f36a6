package emu

// Flag helpers and the arithmetic/logic unit. Each operation returns the
// result and leaves F fully defined, including the undocumented X and Y
// bits copied from the result.

var parityTable [256]bool

func init() {
	for i := range parityTable {
		v := uint8(i)
		v ^= v >> 4
		v ^= v >> 2
		v ^= v >> 1
		parityTable[i] = v&1 == 0
	}
}

// parity reports whether v has an even number of set bits.
func parity(v uint8) bool { return parityTable[v] }

func sz53(v uint8) uint8 {
	f := v & (flagS | flagsXY)
	if v == 0 {
		f |= flagZ
	}
	return f
}

func sz53p(v uint8) uint8 {
	f := sz53(v)
	if parity(v) {
		f |= flagPV
	}
	return f
}

func boolFlag(b bool, mask uint8) uint8 {
	if b {
		return mask
	}
	return 0
}

func (c *CPU) carry() uint8 {
	return c.F() & flagC
}

// add8 computes a+b+carry and the full flag set.
func add8(a, b, carry uint8) (uint8, uint8) {
	sum := uint16(a) + uint16(b) + uint16(carry)
	res := uint8(sum)
	f := sz53(res)
	f |= boolFlag(sum > 0xFF, flagC)
	f |= (a ^ b ^ res) & flagH
	f |= boolFlag((a^b)&0x80 == 0 && (a^res)&0x80 != 0, flagPV)
	return res, f
}

// sub8 computes a-b-carry and the full flag set.
func sub8(a, b, carry uint8) (uint8, uint8) {
	diff := int(a) - int(b) - int(carry)
	res := uint8(diff)
	f := sz53(res) | flagN
	f |= boolFlag(diff < 0, flagC)
	f |= (a ^ b ^ res) & flagH
	f |= boolFlag((a^b)&0x80 != 0 && (a^res)&0x80 != 0, flagPV)
	return res, f
}

// alu applies one of the eight accumulator operations selected by bits
// 3-5 of the opcode: ADD ADC SUB SBC AND XOR OR CP.
func (c *CPU) alu(op int, v uint8) {
	a := c.A()
	switch op {
	case 0:
		res, f := add8(a, v, 0)
		c.SetA(res)
		c.SetF(f)
	case 1:
		res, f := add8(a, v, c.carry())
		c.SetA(res)
		c.SetF(f)
	case 2:
		res, f := sub8(a, v, 0)
		c.SetA(res)
		c.SetF(f)
	case 3:
		res, f := sub8(a, v, c.carry())
		c.SetA(res)
		c.SetF(f)
	case 4:
		res := a & v
		c.SetA(res)
		c.SetF(sz53p(res) | flagH)
	case 5:
		res := a ^ v
		c.SetA(res)
		c.SetF(sz53p(res))
	case 6:
		res := a | v
		c.SetA(res)
		c.SetF(sz53p(res))
	case 7:
		// Compare takes X and Y from the operand, not the result.
		_, f := sub8(a, v, 0)
		c.SetF(f&^flagsXY | v&flagsXY)
	}
}

func (c *CPU) inc8(v uint8) uint8 {
	res := v + 1
	f := c.carry() | sz53(res)
	f |= boolFlag(v&0x0F == 0x0F, flagH)
	f |= boolFlag(v == 0x7F, flagPV)
	c.SetF(f)
	return res
}

func (c *CPU) dec8(v uint8) uint8 {
	res := v - 1
	f := c.carry() | sz53(res) | flagN
	f |= boolFlag(v&0x0F == 0x00, flagH)
	f |= boolFlag(v == 0x80, flagPV)
	c.SetF(f)
	return res
}

// add16 implements ADD HL,rr (and the IX/IY forms). S, Z and P/V are
// preserved; X and Y come from the high byte of the result.
func (c *CPU) add16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	res := uint16(sum)
	f := c.F() & (flagS | flagZ | flagPV)
	f |= uint8(res>>8) & flagsXY
	f |= uint8((a^b^res)>>8) & flagH
	f |= boolFlag(sum > 0xFFFF, flagC)
	c.SetF(f)
	return res
}

func (c *CPU) adc16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b) + uint32(c.carry())
	res := uint16(sum)
	f := uint8(res>>8) & (flagS | flagsXY)
	f |= boolFlag(res == 0, flagZ)
	f |= uint8((a^b^res)>>8) & flagH
	f |= boolFlag((a^b)&0x8000 == 0 && (a^res)&0x8000 != 0, flagPV)
	f |= boolFlag(sum > 0xFFFF, flagC)
	c.SetF(f)
	return res
}

func (c *CPU) sbc16(a, b uint16) uint16 {
	diff := int(a) - int(b) - int(c.carry())
	res := uint16(diff)
	f := uint8(res>>8)&(flagS|flagsXY) | flagN
	f |= boolFlag(res == 0, flagZ)
	f |= uint8((a^b^res)>>8) & flagH
	f |= boolFlag((a^b)&0x8000 != 0 && (a^res)&0x8000 != 0, flagPV)
	f |= boolFlag(diff < 0, flagC)
	c.SetF(f)
	return res
}

// rotate performs the CB-prefixed shift selected by bits 3-5:
// RLC RRC RL RR SLA SRA SLL SRL.
func (c *CPU) rotate(op int, v uint8) uint8 {
	var res, cy uint8
	switch op {
	case 0:
		cy = v >> 7
		res = v<<1 | cy
	case 1:
		cy = v & 1
		res = v>>1 | cy<<7
	case 2:
		cy = v >> 7
		res = v<<1 | c.carry()
	case 3:
		cy = v & 1
		res = v>>1 | c.carry()<<7
	case 4:
		cy = v >> 7
		res = v << 1
	case 5:
		cy = v & 1
		res = v>>1 | v&0x80
	case 6:
		cy = v >> 7
		res = v<<1 | 1
	case 7:
		cy = v & 1
		res = v >> 1
	}
	c.SetF(sz53p(res) | cy)
	return res
}

// rotateA implements RLCA, RRCA, RLA and RRA, which leave S, Z and P/V
// alone.
func (c *CPU) rotateA(op int) {
	a := c.A()
	var res, cy uint8
	switch op {
	case 0:
		cy = a >> 7
		res = a<<1 | cy
	case 1:
		cy = a & 1
		res = a>>1 | cy<<7
	case 2:
		cy = a >> 7
		res = a<<1 | c.carry()
	case 3:
		cy = a & 1
		res = a>>1 | c.carry()<<7
	}
	c.SetA(res)
	c.SetF(c.F()&(flagS|flagZ|flagPV) | res&flagsXY | cy)
}

// bit implements BIT n,v. xy supplies the undocumented X/Y source.
func (c *CPU) bit(n int, v, xy uint8) {
	set := v&(1<<uint(n)) != 0
	f := c.carry() | flagH | xy&flagsXY
	if !set {
		f |= flagZ | flagPV
	}
	if n == 7 && set {
		f |= flagS
	}
	c.SetF(f)
}

func (c *CPU) daa() {
	a := c.A()
	f := c.F()
	var corr uint8
	cy := f & flagC
	if f&flagH != 0 || a&0x0F > 9 {
		corr = 0x06
	}
	if cy != 0 || a > 0x99 {
		corr |= 0x60
		cy = flagC
	}
	var res, h uint8
	if f&flagN != 0 {
		res = a - corr
		h = boolFlag(f&flagH != 0 && a&0x0F < 6, flagH)
	} else {
		res = a + corr
		h = boolFlag(a&0x0F > 9, flagH)
	}
	c.SetA(res)
	c.SetF(sz53p(res) | f&flagN | h | cy)
}

func (c *CPU) cpl() {
	a := ^c.A()
	c.SetA(a)
	c.SetF(c.F()&(flagS|flagZ|flagPV|flagC) | flagH | flagN | a&flagsXY)
}

func (c *CPU) scf() {
	c.SetF(c.F()&(flagS|flagZ|flagPV) | c.A()&flagsXY | flagC)
}

func (c *CPU) ccf() {
	f := c.F()
	nf := f&(flagS|flagZ|flagPV) | c.A()&flagsXY
	if f&flagC != 0 {
		nf |= flagH
	} else {
		nf |= flagC
	}
	c.SetF(nf)
}

func (c *CPU) neg() {
	res, f := sub8(0, c.A(), 0)
	c.SetA(res)
	c.SetF(f)
}
