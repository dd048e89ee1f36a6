package emu

// indexMode selects what the HL-shaped slots of an instruction refer to.
// DD and FD prefixed opcodes reuse the unprefixed decoder with HL replaced
// by IX or IY and (HL) replaced by (IX+d) or (IY+d).
type indexMode int

const (
	indexHL indexMode = iota
	indexIX
	indexIY
)

func (c *CPU) hl(ix indexMode) uint16 {
	switch ix {
	case indexIX:
		return c.IX
	case indexIY:
		return c.IY
	}
	return c.HL()
}

func (c *CPU) setHLx(ix indexMode, v uint16) {
	switch ix {
	case indexIX:
		c.IX = v
	case indexIY:
		c.IY = v
	default:
		c.SetHL(v)
	}
}

// reg8 reads register field r (B C D E H L - A). In index mode 4 and 5
// name the halves of the index register.
func (c *CPU) reg8(r int, ix indexMode) uint8 {
	switch r {
	case 0:
		return c.B()
	case 1:
		return c.C()
	case 2:
		return c.D()
	case 3:
		return c.E()
	case 4:
		if ix != indexHL {
			return uint8(c.hl(ix) >> 8)
		}
		return c.H()
	case 5:
		if ix != indexHL {
			return uint8(c.hl(ix))
		}
		return c.L()
	case 7:
		return c.A()
	}
	return 0
}

func (c *CPU) setReg8(r int, ix indexMode, v uint8) {
	switch r {
	case 0:
		c.SetB(v)
	case 1:
		c.SetC(v)
	case 2:
		c.SetD(v)
	case 3:
		c.SetE(v)
	case 4:
		if ix != indexHL {
			c.setHLx(ix, c.hl(ix)&0x00FF|uint16(v)<<8)
			return
		}
		c.SetH(v)
	case 5:
		if ix != indexHL {
			c.setHLx(ix, c.hl(ix)&0xFF00|uint16(v))
			return
		}
		c.SetL(v)
	case 7:
		c.SetA(v)
	}
}

// rp reads register pair field p (BC DE HL SP).
func (c *CPU) rp(p int, ix indexMode) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.hl(ix)
	}
	return c.SP
}

func (c *CPU) setRP(p int, ix indexMode, v uint16) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.setHLx(ix, v)
	default:
		c.SP = v
	}
}

// rp2 is the PUSH/POP pair table, with AF in place of SP.
func (c *CPU) rp2(p int, ix indexMode) uint16 {
	if p == 3 {
		return c.AF()
	}
	return c.rp(p, ix)
}

func (c *CPU) setRP2(p int, ix indexMode, v uint16) {
	if p == 3 {
		c.SetAF(v)
		return
	}
	c.setRP(p, ix, v)
}

// cond evaluates condition field y (NZ Z NC C PO PE P M).
func (c *CPU) cond(y int) bool {
	f := c.F()
	switch y {
	case 0:
		return f&flagZ == 0
	case 1:
		return f&flagZ != 0
	case 2:
		return f&flagC == 0
	case 3:
		return f&flagC != 0
	case 4:
		return f&flagPV == 0
	case 5:
		return f&flagPV != 0
	case 6:
		return f&flagS == 0
	}
	return f&flagS != 0
}

// operandAddr returns the address of the (HL) operand. In index mode the
// displacement byte is fetched and applied.
func (c *CPU) operandAddr(ix indexMode) uint16 {
	if ix == indexHL {
		return c.HL()
	}
	d := int8(c.fetch())
	return c.hl(ix) + uint16(int16(d))
}

// dispCycles is the extra cost of fetching and adding a displacement.
func dispCycles(ix indexMode) int {
	if ix == indexHL {
		return 0
	}
	return 8
}

func (c *CPU) jr() {
	d := int8(c.fetch())
	c.PC += uint16(int16(d))
}

// execute runs an unprefixed opcode, or a DD/FD opcode when ix selects an
// index register. The returned cycle count excludes any prefix byte.
func (c *CPU) execute(op uint8, ix indexMode) (int, error) {
	x := int(op >> 6)
	y := int(op>>3) & 7
	z := int(op) & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0: // NOP
				return 4, nil
			case 1:
				c.ExchangeAF()
				return 4, nil
			case 2: // DJNZ
				b := c.B() - 1
				c.SetB(b)
				if b != 0 {
					c.jr()
					return 13, nil
				}
				c.PC++
				return 8, nil
			case 3:
				c.jr()
				return 12, nil
			default:
				if c.cond(y - 4) {
					c.jr()
					return 12, nil
				}
				c.PC++
				return 7, nil
			}
		case 1:
			if q == 0 {
				c.setRP(p, ix, c.fetch16())
				return 10, nil
			}
			c.setHLx(ix, c.add16(c.hl(ix), c.rp(p, ix)))
			return 11, nil
		case 2:
			switch op {
			case 0x02:
				c.bus.Write(c.BC(), c.A())
				return 7, nil
			case 0x12:
				c.bus.Write(c.DE(), c.A())
				return 7, nil
			case 0x22:
				c.write16(c.fetch16(), c.hl(ix))
				return 16, nil
			case 0x32:
				c.bus.Write(c.fetch16(), c.A())
				return 13, nil
			case 0x0A:
				c.SetA(c.bus.Read(c.BC()))
				return 7, nil
			case 0x1A:
				c.SetA(c.bus.Read(c.DE()))
				return 7, nil
			case 0x2A:
				c.setHLx(ix, c.read16(c.fetch16()))
				return 16, nil
			default: // 0x3A
				c.SetA(c.bus.Read(c.fetch16()))
				return 13, nil
			}
		case 3:
			if q == 0 {
				c.setRP(p, ix, c.rp(p, ix)+1)
			} else {
				c.setRP(p, ix, c.rp(p, ix)-1)
			}
			return 6, nil
		case 4, 5:
			if y == 6 {
				addr := c.operandAddr(ix)
				v := c.bus.Read(addr)
				if z == 4 {
					v = c.inc8(v)
				} else {
					v = c.dec8(v)
				}
				c.bus.Write(addr, v)
				return 11 + dispCycles(ix), nil
			}
			if z == 4 {
				c.setReg8(y, ix, c.inc8(c.reg8(y, ix)))
			} else {
				c.setReg8(y, ix, c.dec8(c.reg8(y, ix)))
			}
			return 4, nil
		case 6:
			if y == 6 {
				addr := c.operandAddr(ix)
				c.bus.Write(addr, c.fetch())
				if ix != indexHL {
					return 15, nil
				}
				return 10, nil
			}
			c.setReg8(y, ix, c.fetch())
			return 7, nil
		default:
			switch y {
			case 0, 1, 2, 3:
				c.rotateA(y)
			case 4:
				c.daa()
			case 5:
				c.cpl()
			case 6:
				c.scf()
			case 7:
				c.ccf()
			}
			return 4, nil
		}

	case 1:
		if op == 0x76 {
			c.Halted = true
			return 4, nil
		}
		if z == 6 {
			c.setReg8(y, indexHL, c.bus.Read(c.operandAddr(ix)))
			return 7 + dispCycles(ix), nil
		}
		if y == 6 {
			addr := c.operandAddr(ix)
			c.bus.Write(addr, c.reg8(z, indexHL))
			return 7 + dispCycles(ix), nil
		}
		c.setReg8(y, ix, c.reg8(z, ix))
		return 4, nil

	case 2:
		if z == 6 {
			c.alu(y, c.bus.Read(c.operandAddr(ix)))
			return 7 + dispCycles(ix), nil
		}
		c.alu(y, c.reg8(z, ix))
		return 4, nil
	}

	switch z {
	case 0:
		if c.cond(y) {
			c.PC = c.pop()
			return 11, nil
		}
		return 5, nil
	case 1:
		if q == 0 {
			c.setRP2(p, ix, c.pop())
			return 10, nil
		}
		switch p {
		case 0:
			c.PC = c.pop()
			return 10, nil
		case 1:
			c.ExchangeRegisters()
			return 4, nil
		case 2:
			c.PC = c.hl(ix)
			return 4, nil
		default:
			c.SP = c.hl(ix)
			return 6, nil
		}
	case 2:
		nn := c.fetch16()
		if c.cond(y) {
			c.PC = nn
		}
		return 10, nil
	case 3:
		switch y {
		case 0:
			c.PC = c.fetch16()
			return 10, nil
		case 1:
			return c.executeCB()
		case 2:
			n := c.fetch()
			c.bus.Out(uint16(c.A())<<8|uint16(n), c.A())
			return 11, nil
		case 3:
			n := c.fetch()
			c.SetA(c.bus.In(uint16(c.A())<<8 | uint16(n)))
			return 11, nil
		case 4:
			v := c.read16(c.SP)
			c.write16(c.SP, c.hl(ix))
			c.setHLx(ix, v)
			return 19, nil
		case 5:
			de := c.DE()
			c.SetDE(c.HL())
			c.SetHL(de)
			return 4, nil
		case 6:
			c.IFF1 = false
			c.IFF2 = false
			return 4, nil
		default:
			c.IFF1 = true
			c.IFF2 = true
			c.eiDelay = true
			return 4, nil
		}
	case 4:
		nn := c.fetch16()
		if c.cond(y) {
			c.push(c.PC)
			c.PC = nn
			return 17, nil
		}
		return 10, nil
	case 5:
		if q == 0 {
			c.push(c.rp2(p, ix))
			return 11, nil
		}
		switch p {
		case 0:
			nn := c.fetch16()
			c.push(c.PC)
			c.PC = nn
			return 17, nil
		case 1:
			return c.executeIndexed(indexIX)
		case 2:
			return c.executeED()
		default:
			return c.executeIndexed(indexIY)
		}
	case 6:
		c.alu(y, c.fetch())
		return 7, nil
	}

	c.push(c.PC)
	c.PC = uint16(y) * 8
	return 11, nil
}
