package emu

// Flag bits of the F register.
const (
	flagC  uint8 = 0x01
	flagN  uint8 = 0x02
	flagPV uint8 = 0x04
	flagX  uint8 = 0x08 // copy of result bit 3
	flagH  uint8 = 0x10
	flagY  uint8 = 0x20 // copy of result bit 5
	flagZ  uint8 = 0x40
	flagS  uint8 = 0x80

	flagsXY = flagX | flagY
)

// RegisterBank holds one copy of the eight general purpose registers.
type RegisterBank struct {
	A, F, B, C, D, E, H, L uint8
}

// Registers is the Z80 programmer visible state.
//
// Both banks are always present. AltRegisters (toggled by EXX) selects the
// bank used for B, C, D, E, H and L. AltAccumulator (toggled by EX AF,AF')
// independently selects the bank used for A and F.
type Registers struct {
	Banks          [2]RegisterBank
	AltRegisters   bool
	AltAccumulator bool

	IX, IY uint16
	SP, PC uint16
	I, R   uint8

	IFF1, IFF2 bool
	IM         uint8
	Halted     bool
}

func (r *Registers) gp() *RegisterBank {
	if r.AltRegisters {
		return &r.Banks[1]
	}
	return &r.Banks[0]
}

func (r *Registers) acc() *RegisterBank {
	if r.AltAccumulator {
		return &r.Banks[1]
	}
	return &r.Banks[0]
}

func (r *Registers) A() uint8 { return r.acc().A }
func (r *Registers) F() uint8 { return r.acc().F }
func (r *Registers) B() uint8 { return r.gp().B }
func (r *Registers) C() uint8 { return r.gp().C }
func (r *Registers) D() uint8 { return r.gp().D }
func (r *Registers) E() uint8 { return r.gp().E }
func (r *Registers) H() uint8 { return r.gp().H }
func (r *Registers) L() uint8 { return r.gp().L }

func (r *Registers) SetA(v uint8) { r.acc().A = v }
func (r *Registers) SetF(v uint8) { r.acc().F = v }
func (r *Registers) SetB(v uint8) { r.gp().B = v }
func (r *Registers) SetC(v uint8) { r.gp().C = v }
func (r *Registers) SetD(v uint8) { r.gp().D = v }
func (r *Registers) SetE(v uint8) { r.gp().E = v }
func (r *Registers) SetH(v uint8) { r.gp().H = v }
func (r *Registers) SetL(v uint8) { r.gp().L = v }

func (r *Registers) AF() uint16 { b := r.acc(); return uint16(b.A)<<8 | uint16(b.F) }
func (r *Registers) BC() uint16 { b := r.gp(); return uint16(b.B)<<8 | uint16(b.C) }
func (r *Registers) DE() uint16 { b := r.gp(); return uint16(b.D)<<8 | uint16(b.E) }
func (r *Registers) HL() uint16 { b := r.gp(); return uint16(b.H)<<8 | uint16(b.L) }

func (r *Registers) SetAF(v uint16) { b := r.acc(); b.A, b.F = uint8(v>>8), uint8(v) }
func (r *Registers) SetBC(v uint16) { b := r.gp(); b.B, b.C = uint8(v>>8), uint8(v) }
func (r *Registers) SetDE(v uint16) { b := r.gp(); b.D, b.E = uint8(v>>8), uint8(v) }
func (r *Registers) SetHL(v uint16) { b := r.gp(); b.H, b.L = uint8(v>>8), uint8(v) }

// ExchangeAF toggles the accumulator bank (EX AF,AF').
func (r *Registers) ExchangeAF() { r.AltAccumulator = !r.AltAccumulator }

// ExchangeRegisters toggles the B..L bank (EXX).
func (r *Registers) ExchangeRegisters() { r.AltRegisters = !r.AltRegisters }

func (r *Registers) flag(mask uint8) bool { return r.F()&mask != 0 }

// incR advances the refresh counter. Bit 7 is only changed by LD R,A.
func (r *Registers) incR() {
	r.R = (r.R & 0x80) | ((r.R + 1) & 0x7F)
}
