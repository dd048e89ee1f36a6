package emu

// SoundSink receives the bytes the CPU writes to the sound chip port.
type SoundSink interface {
	Write(value uint8)
}

// SoundFunc adapts a function to SoundSink.
type SoundFunc func(value uint8)

func (f SoundFunc) Write(value uint8) { f(value) }

// Controller state words. The low byte is the keypad half, read while the
// controllers are in keypad mode; the high byte is the joystick half, read
// in joystick mode. Set bits mean pressed; the port returns them inverted.
const (
	JoyUp       uint16 = 0x0100
	JoyRight    uint16 = 0x0200
	JoyDown     uint16 = 0x0400
	JoyLeft     uint16 = 0x0800
	JoyFireLeft uint16 = 0x4000

	KeyFireRight uint16 = 0x0040
	keypadMask   uint16 = 0x000F
)

// keypadCodes holds the 4-bit code each keypad key places on the data
// lines, indexed 0-9 then '*' and '#'.
var keypadCodes = [12]uint16{0x5, 0x2, 0x8, 0x3, 0xD, 0xC, 0x1, 0xA, 0xE, 0x4, 0x6, 0x9}

// Keypad key indexes for keys that are not digits.
const (
	KeyStar  = 10
	KeyPound = 11
)

// KeypadCode returns the state word bits for keypad key k (0-9, KeyStar,
// KeyPound).
func KeypadCode(k int) uint16 {
	if k < 0 || k >= len(keypadCodes) {
		return 0
	}
	return keypadCodes[k]
}

// Controllers holds both controller state words and the shared read mode.
type Controllers struct {
	State        [2]uint16
	JoystickMode bool
}

// read returns the selected half of controller n, inverted and limited to
// seven bits.
func (c *Controllers) read(n int) uint8 {
	data := c.State[n&1]
	if c.JoystickMode {
		data >>= 8
	}
	return ^uint8(data) & 0x7F
}

// ColecoIO decodes the I/O port space. Only the top three port bits are
// decoded; bit 0 separates the two VDP ports and bit 1 the two
// controllers.
type ColecoIO struct {
	vdp   *VDP
	sound SoundSink
	Controllers
}

// NewColecoIO wires the port space to vdp and sound. sound may be nil.
func NewColecoIO(vdp *VDP, sound SoundSink) *ColecoIO {
	return &ColecoIO{vdp: vdp, sound: sound}
}

func (p *ColecoIO) In(port uint8) uint8 {
	switch port & 0xE0 {
	case 0xA0:
		if port&1 != 0 {
			return p.vdp.ReadControl()
		}
		return p.vdp.ReadData()
	case 0xE0:
		return p.read(int(port>>1) & 1)
	}
	return 0xFF
}

func (p *ColecoIO) Out(port uint8, value uint8) {
	switch port & 0xE0 {
	case 0xA0:
		if port&1 != 0 {
			p.vdp.WriteControl(value)
		} else {
			p.vdp.WriteData(value)
		}
	case 0xC0:
		p.JoystickMode = true
	case 0x80:
		p.JoystickMode = false
	case 0xE0:
		if p.sound != nil {
			p.sound.Write(value)
		}
	}
}

// Reset releases both controllers and selects keypad mode.
func (p *ColecoIO) Reset() {
	p.Controllers = Controllers{}
}
