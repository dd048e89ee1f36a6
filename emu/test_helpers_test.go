package emu

// portWrite records one OUT instruction seen by testBus.
type portWrite struct {
	port  uint16
	value uint8
}

// testBus is a flat 64KB RAM with a scripted port space. It satisfies
// both the CPU Bus interface and the go-chip-z80 bus.
type testBus struct {
	mem  [0x10000]uint8
	in   map[uint16]uint8
	outs []portWrite
}

func newTestBus() *testBus {
	return &testBus{in: make(map[uint16]uint8)}
}

func (b *testBus) Fetch(addr uint16) uint8        { return b.mem[addr] }
func (b *testBus) Read(addr uint16) uint8         { return b.mem[addr] }
func (b *testBus) Write(addr uint16, value uint8) { b.mem[addr] = value }

func (b *testBus) In(port uint16) uint8 {
	if v, ok := b.in[port&0xFF]; ok {
		return v
	}
	return 0xFF
}

func (b *testBus) Out(port uint16, value uint8) {
	b.outs = append(b.outs, portWrite{port, value})
}

// load copies program into memory at addr.
func (b *testBus) load(addr uint16, program ...uint8) {
	for i, v := range program {
		b.mem[addr+uint16(i)] = v
	}
}

// newTestCPU creates a CPU with program loaded at 0x0000, SP at 0xF000
// and no video device.
func newTestCPU(program ...uint8) (*CPU, *testBus) {
	bus := newTestBus()
	bus.load(0, program...)
	cpu := NewCPU(bus, nil)
	cpu.SP = 0xF000
	return cpu, bus
}

// tickCounter counts video ticks delivered by the CPU.
type tickCounter struct {
	ticks int
	err   error
}

func (t *tickCounter) Tick() error {
	t.ticks++
	return t.err
}

// nmiCounter counts vblank interrupts raised by the VDP.
type nmiCounter struct {
	count int
}

func (n *nmiCounter) NMI() { n.count++ }

// writeVRAM stores data at addr through the VDP ports.
func writeVRAM(v *VDP, addr uint16, data ...uint8) {
	v.WriteControl(uint8(addr))
	v.WriteControl(uint8(addr>>8)&0x3F | 0x40)
	for _, b := range data {
		v.WriteData(b)
	}
}

// writeRegister stores value in VDP register n through the control port.
func writeRegister(v *VDP, n int, value uint8) {
	v.WriteControl(value)
	v.WriteControl(0x80 | uint8(n))
}

// pixelAt returns the palette color at x,y of the frame buffer.
func pixelAt(v *VDP, x, y int) [3]uint8 {
	off := y*v.framebuffer.Stride + x*4
	p := v.framebuffer.Pix
	return [3]uint8{p[off], p[off+1], p[off+2]}
}

// paletteRGB returns the RGB triple of palette entry i.
func paletteRGB(i int) [3]uint8 {
	c := Palette[i]
	return [3]uint8{c.R, c.G, c.B}
}

// createTestBIOS builds a minimal boot image: it sets up the stack, puts
// the CPU in IM 1, enables the display and vblank interrupt in Graphics I,
// and then loops on HALT. The NMI handler at 0x66 counts frames at 0x7000
// and acknowledges the VDP by reading its status.
func createTestBIOS() []byte {
	bios := make([]byte, 0x100)
	copy(bios, []byte{
		0x31, 0x00, 0x74, // LD SP,0x7400
		0xED, 0x56, // IM 1
		0x3E, 0x07, // LD A,0x07
		0xD3, 0xBF, // OUT (0xBF),A
		0x3E, 0x87, // LD A,0x87   ; backdrop color 7
		0xD3, 0xBF, // OUT (0xBF),A
		0x3E, 0xE0, // LD A,0xE0
		0xD3, 0xBF, // OUT (0xBF),A
		0x3E, 0x81, // LD A,0x81   ; display on, vblank IRQ on
		0xD3, 0xBF, // OUT (0xBF),A
		0x76,       // HALT
		0x18, 0xFD, // JR -3
	})
	copy(bios[0x66:], []byte{
		0xF5,             // PUSH AF
		0x3A, 0x00, 0x70, // LD A,(0x7000)
		0x3C,             // INC A
		0x32, 0x00, 0x70, // LD (0x7000),A
		0xDB, 0xBF, // IN A,(0xBF)
		0xF1,       // POP AF
		0xED, 0x45, // RETN
	})
	return bios
}

// createTestCartridge returns a small cartridge image with a recognizable
// pattern.
func createTestCartridge(size int) []byte {
	cart := make([]byte, size)
	for i := range cart {
		cart[i] = byte(i*7 + 3)
	}
	return cart
}
