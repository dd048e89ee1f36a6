package emu

// executeCB runs a CB-prefixed rotate, shift or bit instruction.
func (c *CPU) executeCB() (int, error) {
	pc := c.PC - 1
	op := c.fetch()
	c.incR()
	c.trace.record(pc, PrefixCB, op)

	x := int(op >> 6)
	y := int(op>>3) & 7
	z := int(op) & 7

	if z == 6 {
		addr := c.HL()
		v := c.bus.Read(addr)
		switch x {
		case 0:
			c.bus.Write(addr, c.rotate(y, v))
		case 1:
			c.bit(y, v, uint8(addr>>8))
			return 12, nil
		case 2:
			c.bus.Write(addr, v&^(1<<uint(y)))
		default:
			c.bus.Write(addr, v|1<<uint(y))
		}
		return 15, nil
	}

	v := c.reg8(z, indexHL)
	switch x {
	case 0:
		c.setReg8(z, indexHL, c.rotate(y, v))
	case 1:
		c.bit(y, v, v)
	case 2:
		c.setReg8(z, indexHL, v&^(1<<uint(y)))
	default:
		c.setReg8(z, indexHL, v|1<<uint(y))
	}
	return 8, nil
}

// executeIndexedCB runs DD CB d op / FD CB d op. The displacement comes
// before the opcode. Non-BIT forms with a register field other than 6 also
// copy the result into that register.
func (c *CPU) executeIndexedCB(ix indexMode, prefix uint16) (int, error) {
	pc := c.PC - 2
	d := int8(c.fetch())
	op := c.fetch()
	c.trace.record(pc, prefix, op)

	addr := c.hl(ix) + uint16(int16(d))
	x := int(op >> 6)
	y := int(op>>3) & 7
	z := int(op) & 7

	v := c.bus.Read(addr)
	var res uint8
	switch x {
	case 0:
		res = c.rotate(y, v)
	case 1:
		c.bit(y, v, uint8(addr>>8))
		return 20, nil
	case 2:
		res = v &^ (1 << uint(y))
	default:
		res = v | 1<<uint(y)
	}
	c.bus.Write(addr, res)
	if z != 6 {
		c.setReg8(z, indexHL, res)
	}
	return 23, nil
}
