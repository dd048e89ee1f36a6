package emu

// imModes maps the ED x=1 z=6 y field to an interrupt mode.
var imModes = [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}

// executeED runs an ED-prefixed instruction. Undefined ED opcodes fault.
func (c *CPU) executeED() (int, error) {
	pc := c.PC - 1
	op := c.fetch()
	c.incR()
	c.trace.record(pc, PrefixED, op)

	x := int(op >> 6)
	y := int(op>>3) & 7
	z := int(op) & 7
	p := y >> 1
	q := y & 1

	if x == 2 && z <= 3 && y >= 4 {
		return c.blockOp(y, z), nil
	}
	if x != 1 {
		return 0, c.unimplemented(PrefixED, op, 2)
	}

	switch z {
	case 0:
		v := c.bus.In(c.BC())
		if y != 6 {
			c.setReg8(y, indexHL, v)
		}
		c.SetF(sz53p(v) | c.carry())
		return 12, nil
	case 1:
		var v uint8
		if y != 6 {
			v = c.reg8(y, indexHL)
		}
		c.bus.Out(c.BC(), v)
		return 12, nil
	case 2:
		if q == 0 {
			c.SetHL(c.sbc16(c.HL(), c.rp(p, indexHL)))
		} else {
			c.SetHL(c.adc16(c.HL(), c.rp(p, indexHL)))
		}
		return 15, nil
	case 3:
		nn := c.fetch16()
		if q == 0 {
			c.write16(nn, c.rp(p, indexHL))
		} else {
			c.setRP(p, indexHL, c.read16(nn))
		}
		return 20, nil
	case 4:
		c.neg()
		return 8, nil
	case 5:
		// RETN and RETI both restore IFF1 from IFF2.
		c.PC = c.pop()
		c.IFF1 = c.IFF2
		return 14, nil
	case 6:
		c.IM = imModes[y]
		return 8, nil
	}

	switch y {
	case 0:
		c.I = c.A()
		return 9, nil
	case 1:
		c.R = c.A()
		return 9, nil
	case 2, 3:
		v := c.I
		if y == 3 {
			v = c.R
		}
		c.SetA(v)
		c.SetF(sz53(v) | boolFlag(c.IFF2, flagPV) | c.carry())
		return 9, nil
	case 4:
		c.rrd()
		return 18, nil
	case 5:
		c.rld()
		return 18, nil
	}
	return 0, c.unimplemented(PrefixED, op, 2)
}

func (c *CPU) rrd() {
	addr := c.HL()
	m := c.bus.Read(addr)
	a := c.A()
	c.bus.Write(addr, a<<4|m>>4)
	a = a&0xF0 | m&0x0F
	c.SetA(a)
	c.SetF(sz53p(a) | c.carry())
}

func (c *CPU) rld() {
	addr := c.HL()
	m := c.bus.Read(addr)
	a := c.A()
	c.bus.Write(addr, m<<4|a&0x0F)
	a = a&0xF0 | m>>4
	c.SetA(a)
	c.SetF(sz53p(a) | c.carry())
}

// blockOp runs LDI/CPI/INI/OUTI (y=4), their decrementing forms (y=5) and
// the repeating forms (y=6, y=7). A repeating instruction that has not
// finished rewinds PC onto itself.
func (c *CPU) blockOp(y, z int) int {
	delta := uint16(1)
	if y&1 == 1 {
		delta = 0xFFFF
	}
	repeat := y >= 6
	again := false

	switch z {
	case 0:
		v := c.bus.Read(c.HL())
		c.bus.Write(c.DE(), v)
		c.SetHL(c.HL() + delta)
		c.SetDE(c.DE() + delta)
		bc := c.BC() - 1
		c.SetBC(bc)
		n := v + c.A()
		f := c.F()&(flagS|flagZ|flagC) | n&flagX | (n<<4)&flagY
		f |= boolFlag(bc != 0, flagPV)
		c.SetF(f)
		again = bc != 0
	case 1:
		a := c.A()
		v := c.bus.Read(c.HL())
		res := a - v
		h := (a ^ v ^ res) & flagH
		c.SetHL(c.HL() + delta)
		bc := c.BC() - 1
		c.SetBC(bc)
		n := res
		if h != 0 {
			n--
		}
		f := c.carry() | flagN | h | res&flagS | n&flagX | (n<<4)&flagY
		f |= boolFlag(res == 0, flagZ)
		f |= boolFlag(bc != 0, flagPV)
		c.SetF(f)
		again = bc != 0 && res != 0
	case 2:
		v := c.bus.In(c.BC())
		c.bus.Write(c.HL(), v)
		c.SetHL(c.HL() + delta)
		b := c.B() - 1
		c.SetB(b)
		c.blockIOFlags(v, c.C()+uint8(delta), b)
		again = b != 0
	default:
		v := c.bus.Read(c.HL())
		b := c.B() - 1
		c.SetB(b)
		c.bus.Out(c.BC(), v)
		c.SetHL(c.HL() + delta)
		c.blockIOFlags(v, c.L(), b)
		again = b != 0
	}

	if repeat && again {
		c.PC -= 2
		return 21
	}
	return 16
}

// blockIOFlags sets F after INI/IND/OUTI/OUTD. k is the byte added to the
// transferred value to derive H, C and P/V.
func (c *CPU) blockIOFlags(v, k, b uint8) {
	sum := uint16(v) + uint16(k)
	f := sz53(b)
	if v&0x80 != 0 {
		f |= flagN
	}
	if sum > 0xFF {
		f |= flagH | flagC
	}
	f |= boolFlag(parity(uint8(sum)&7^b), flagPV)
	c.SetF(f)
}
