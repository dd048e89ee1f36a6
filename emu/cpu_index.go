package emu

// executeIndexed handles the byte following a DD or FD prefix. Opcodes
// that do not touch H, L, HL or (HL) have no indexed form and fault.
func (c *CPU) executeIndexed(ix indexMode) (int, error) {
	prefix := PrefixDD
	if ix == indexIY {
		prefix = PrefixFD
	}

	pc := c.PC - 1
	op := c.fetch()
	c.incR()

	if op == 0xCB {
		cbPrefix := PrefixDDCB
		if ix == indexIY {
			cbPrefix = PrefixFDCB
		}
		return c.executeIndexedCB(ix, cbPrefix)
	}

	c.trace.record(pc, prefix, op)
	if !hasIndexedForm(op) {
		return 0, c.unimplemented(prefix, op, 2)
	}

	cycles, err := c.execute(op, ix)
	return cycles + 4, err
}

// hasIndexedForm reports whether op refers to H, L, HL or (HL) and so has
// a meaning after a DD or FD prefix.
func hasIndexedForm(op uint8) bool {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1

	hlField := func(r uint8) bool { return r >= 4 && r <= 6 }

	switch x {
	case 0:
		switch z {
		case 1:
			// ADD IX,rr takes every pair, LD IX,nn only the HL slot.
			return p == 2 || y&1 == 1
		case 2, 3:
			return p == 2
		case 4, 5, 6:
			return hlField(y)
		}
		return false
	case 1:
		return op != 0x76 && (hlField(y) || hlField(z))
	case 2:
		return hlField(z)
	}
	switch op {
	case 0xE1, 0xE3, 0xE5, 0xE9, 0xF9:
		return true
	}
	return false
}
