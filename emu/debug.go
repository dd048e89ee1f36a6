package emu

import "sort"

// Register access by name for debuggers and test harnesses. Names follow
// the common Z80 test-suite convention: 8-bit registers, pairs, the primed
// pairs of the alternate bank, index registers and a handful of control
// fields.

type namedRegister struct {
	get func(c *CPU) int
	set func(c *CPU, v int)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// primeAF runs fn with the accumulator bank flipped.
func (c *CPU) primeAF(fn func()) {
	c.ExchangeAF()
	defer c.ExchangeAF()
	fn()
}

// primeGP runs fn with the B..L bank flipped.
func (c *CPU) primeGP(fn func()) {
	c.ExchangeRegisters()
	defer c.ExchangeRegisters()
	fn()
}

var namedRegisters = map[string]namedRegister{
	"a":   {func(c *CPU) int { return int(c.A()) }, func(c *CPU, v int) { c.SetA(uint8(v)) }},
	"f":   {func(c *CPU) int { return int(c.F()) }, func(c *CPU, v int) { c.SetF(uint8(v)) }},
	"b":   {func(c *CPU) int { return int(c.B()) }, func(c *CPU, v int) { c.SetB(uint8(v)) }},
	"c":   {func(c *CPU) int { return int(c.C()) }, func(c *CPU, v int) { c.SetC(uint8(v)) }},
	"d":   {func(c *CPU) int { return int(c.D()) }, func(c *CPU, v int) { c.SetD(uint8(v)) }},
	"e":   {func(c *CPU) int { return int(c.E()) }, func(c *CPU, v int) { c.SetE(uint8(v)) }},
	"h":   {func(c *CPU) int { return int(c.H()) }, func(c *CPU, v int) { c.SetH(uint8(v)) }},
	"l":   {func(c *CPU) int { return int(c.L()) }, func(c *CPU, v int) { c.SetL(uint8(v)) }},
	"ixh": {func(c *CPU) int { return int(c.IX >> 8) }, func(c *CPU, v int) { c.IX = c.IX&0x00FF | uint16(v&0xFF)<<8 }},
	"ixl": {func(c *CPU) int { return int(c.IX & 0xFF) }, func(c *CPU, v int) { c.IX = c.IX&0xFF00 | uint16(v&0xFF) }},
	"iyh": {func(c *CPU) int { return int(c.IY >> 8) }, func(c *CPU, v int) { c.IY = c.IY&0x00FF | uint16(v&0xFF)<<8 }},
	"iyl": {func(c *CPU) int { return int(c.IY & 0xFF) }, func(c *CPU, v int) { c.IY = c.IY&0xFF00 | uint16(v&0xFF) }},
	"i":   {func(c *CPU) int { return int(c.I) }, func(c *CPU, v int) { c.I = uint8(v) }},
	"r":   {func(c *CPU) int { return int(c.R) }, func(c *CPU, v int) { c.R = uint8(v) }},

	"af": {func(c *CPU) int { return int(c.AF()) }, func(c *CPU, v int) { c.SetAF(uint16(v)) }},
	"bc": {func(c *CPU) int { return int(c.BC()) }, func(c *CPU, v int) { c.SetBC(uint16(v)) }},
	"de": {func(c *CPU) int { return int(c.DE()) }, func(c *CPU, v int) { c.SetDE(uint16(v)) }},
	"hl": {func(c *CPU) int { return int(c.HL()) }, func(c *CPU, v int) { c.SetHL(uint16(v)) }},

	"afPrime": {
		func(c *CPU) (v int) { c.primeAF(func() { v = int(c.AF()) }); return },
		func(c *CPU, v int) { c.primeAF(func() { c.SetAF(uint16(v)) }) },
	},
	"bcPrime": {
		func(c *CPU) (v int) { c.primeGP(func() { v = int(c.BC()) }); return },
		func(c *CPU, v int) { c.primeGP(func() { c.SetBC(uint16(v)) }) },
	},
	"dePrime": {
		func(c *CPU) (v int) { c.primeGP(func() { v = int(c.DE()) }); return },
		func(c *CPU, v int) { c.primeGP(func() { c.SetDE(uint16(v)) }) },
	},
	"hlPrime": {
		func(c *CPU) (v int) { c.primeGP(func() { v = int(c.HL()) }); return },
		func(c *CPU, v int) { c.primeGP(func() { c.SetHL(uint16(v)) }) },
	},

	"ix": {func(c *CPU) int { return int(c.IX) }, func(c *CPU, v int) { c.IX = uint16(v) }},
	"iy": {func(c *CPU) int { return int(c.IY) }, func(c *CPU, v int) { c.IY = uint16(v) }},
	"sp": {func(c *CPU) int { return int(c.SP) }, func(c *CPU, v int) { c.SP = uint16(v) }},
	"pc": {func(c *CPU) int { return int(c.PC) }, func(c *CPU, v int) { c.PC = uint16(v) }},

	"iff1":   {func(c *CPU) int { return boolInt(c.IFF1) }, func(c *CPU, v int) { c.IFF1 = v != 0 }},
	"iff2":   {func(c *CPU) int { return boolInt(c.IFF2) }, func(c *CPU, v int) { c.IFF2 = v != 0 }},
	"im":     {func(c *CPU) int { return int(c.IM) }, func(c *CPU, v int) { c.IM = uint8(v) }},
	"halted": {func(c *CPU) int { return boolInt(c.Halted) }, func(c *CPU, v int) { c.Halted = v != 0 }},
}

// GetRegister returns the named register. ok is false for unknown names.
func (c *CPU) GetRegister(name string) (value int, ok bool) {
	r, ok := namedRegisters[name]
	if !ok {
		return 0, false
	}
	return r.get(c), true
}

// SetRegister writes the named register. It reports false for unknown
// names.
func (c *CPU) SetRegister(name string, value int) bool {
	r, ok := namedRegisters[name]
	if !ok {
		return false
	}
	r.set(c, value)
	return true
}

// RegisterNames lists the names accepted by GetRegister, sorted.
func RegisterNames() []string {
	names := make([]string, 0, len(namedRegisters))
	for n := range namedRegisters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
