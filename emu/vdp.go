package emu

import (
	"image"
	"image/color"
	"log"
)

// Display geometry and frame timing.
const (
	ScreenWidth  = 256
	ScreenHeight = 192
	VRAMSize     = 0x4000

	// VDPStartLine is the first line of the active display window and
	// VDPEndLine the line right after it, where vblank begins.
	VDPStartLine = 0
	VDPEndLine   = VDPStartLine + ScreenHeight

	DefaultTotalScanlines = 262
)

// Status register bits.
const (
	statusVBlank      uint8 = 0x80
	statusOverflow    uint8 = 0x40
	statusCollision   uint8 = 0x20
	statusSpriteIndex uint8 = 0x1F
)

// registerMasks limits which bits of each VDP register can be written.
var registerMasks = [8]uint8{0x03, 0xFB, 0x0F, 0xFF, 0x07, 0x7F, 0x07, 0xFF}

// DisplayMode identifies one of the four TMS9918 screen modes.
type DisplayMode uint8

const (
	ModeText        DisplayMode = 0
	ModeGraphics1   DisplayMode = 1
	ModeGraphics2   DisplayMode = 2
	ModeMulticolor  DisplayMode = 3
	modeInvalidFlag DisplayMode = 0x80
)

// Valid reports whether m names a real display mode.
func (m DisplayMode) Valid() bool {
	return m&modeInvalidFlag == 0
}

func (m DisplayMode) String() string {
	switch m {
	case ModeText:
		return "Text"
	case ModeGraphics1:
		return "Graphics I"
	case ModeGraphics2:
		return "Graphics II"
	case ModeMulticolor:
		return "Multicolor"
	default:
		return "invalid"
	}
}

// NMIRequester receives the VDP's vblank interrupt.
type NMIRequester interface {
	NMI()
}

// RenderCadence throttles line rendering. Each frame adds Credit to a
// running budget; lines are rendered while the budget is at least
// Threshold, and a rendered frame spends Threshold.
type RenderCadence struct {
	Threshold int
	Credit    int
}

var (
	// ReferenceCadence renders three of every four frames.
	ReferenceCadence = RenderCadence{Threshold: 100, Credit: 75}
	// FullCadence renders every frame.
	FullCadence = RenderCadence{}
)

// Palette holds the 16 fixed TMS9918 colors. Index 0 is transparent and is
// drawn as black only when used directly.
var Palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
	{0x24, 0xDA, 0x24, 0xFF},
	{0x6D, 0xFF, 0x6D, 0xFF},
	{0x24, 0x24, 0xFF, 0xFF},
	{0x48, 0x6D, 0xFF, 0xFF},
	{0xB6, 0x24, 0x24, 0xFF},
	{0x48, 0xDA, 0xFF, 0xFF},
	{0xFF, 0x24, 0x24, 0xFF},
	{0xFF, 0x6D, 0x6D, 0xFF},
	{0xDA, 0xDA, 0x24, 0xFF},
	{0xDA, 0xDA, 0x91, 0xFF},
	{0x24, 0x91, 0x24, 0xFF},
	{0xDA, 0x48, 0xB6, 0xFF},
	{0xB6, 0xB6, 0xB6, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
}

// VDP is a TMS9918-style video display processor: 16KB of VRAM, eight
// write-only registers, a status register and a scanline renderer.
type VDP struct {
	vram           [VRAMSize]uint8
	registers      [8]uint8
	pendingAddress uint16
	latch          bool
	readAhead      uint8
	status         uint8

	line        int
	totalLines  int
	updateCount int
	cadence     RenderCadence
	frames      uint64
	rendered    bool // last completed frame was drawn
	collided    bool // sprite collision seen since the last vblank

	framebuffer  *image.RGBA
	spritePixels [ScreenWidth]bool

	nmi    NMIRequester
	logger *log.Logger
	logged map[string]bool
}

// NewVDP creates a VDP that raises vblank interrupts on nmi. nmi may be
// nil.
func NewVDP(nmi NMIRequester) *VDP {
	v := &VDP{
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
		totalLines:  DefaultTotalScanlines,
		cadence:     ReferenceCadence,
		nmi:         nmi,
		logger:      log.Default(),
		logged:      make(map[string]bool),
	}
	v.Reset()
	return v
}

// Reset clears VRAM, registers and the latch state, rewinds the scanline
// counter and blanks the frame buffer with opaque black.
func (v *VDP) Reset() {
	v.vram = [VRAMSize]uint8{}
	v.registers = [8]uint8{}
	v.pendingAddress = 0
	v.latch = false
	v.readAhead = 0
	v.status = 0
	v.line = 0
	v.updateCount = 0
	v.frames = 0
	v.rendered = false
	v.collided = false
	for k := range v.logged {
		delete(v.logged, k)
	}
	pix := v.framebuffer.Pix
	for i := range pix {
		pix[i] = 0
	}
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xFF
	}
}

// SetInterruptLine sets the receiver of vblank interrupts.
func (v *VDP) SetInterruptLine(nmi NMIRequester) {
	v.nmi = nmi
}

// SetLogger replaces the logger used for recoverable addressing faults.
func (v *VDP) SetLogger(l *log.Logger) {
	v.logger = l
}

// SetTotalScanlines configures the frame length for the region.
func (v *VDP) SetTotalScanlines(lines int) {
	if lines <= VDPEndLine {
		lines = DefaultTotalScanlines
	}
	v.totalLines = lines
	if v.line >= lines {
		v.line = 0
	}
}

// SetRenderCadence changes the render throttle.
func (v *VDP) SetRenderCadence(c RenderCadence) {
	v.cadence = c
	if v.updateCount < 0 {
		v.updateCount = 0
	}
}

// setRegister stores value in register n after applying its write mask.
func (v *VDP) setRegister(n int, value uint8) {
	v.registers[n&7] = value & registerMasks[n&7]
}

// WriteControl handles a write to the register/address port. Writes
// alternate between the low and high byte of a pending address. A high
// byte with bit 7 set instead stores the low byte into register (high&7);
// a high byte with bit 6 clear sets up a VRAM read.
func (v *VDP) WriteControl(value uint8) {
	if !v.latch {
		v.pendingAddress = (v.pendingAddress&0xFF00 | uint16(value)) & (VRAMSize - 1)
		v.latch = true
		return
	}
	v.pendingAddress = (uint16(value)<<8 | v.pendingAddress&0xFF) & (VRAMSize - 1)
	if value&0x80 != 0 {
		v.setRegister(int(value&7), uint8(v.pendingAddress))
	} else if value&0x40 == 0 {
		v.ReadData()
	}
	v.latch = false
}

// ReadControl returns the status register. The vblank, overflow and
// collision flags are cleared by the read; the sprite index bits stay.
func (v *VDP) ReadControl() uint8 {
	status := v.status
	v.status &= statusSpriteIndex
	v.latch = false
	return status
}

// WriteData stores value at the pending address and advances it.
func (v *VDP) WriteData(value uint8) {
	v.vram[v.pendingAddress] = value
	v.pendingAddress = (v.pendingAddress + 1) & (VRAMSize - 1)
	v.readAhead = value
	v.latch = false
}

// ReadData returns the read-ahead byte and fetches the next one.
func (v *VDP) ReadData() uint8 {
	data := v.readAhead
	v.readAhead = v.vram[v.pendingAddress]
	v.pendingAddress = (v.pendingAddress + 1) & (VRAMSize - 1)
	v.latch = false
	return data
}

// Mode derives the display mode from M3 (register 0 bit 1) and M1/M2
// (register 1 bits 4 and 3). Combinations that select more than one mode
// are returned with the invalid flag set over the raw bit pattern.
func (v *VDP) Mode() DisplayMode {
	bits := (v.registers[0]&0x02)>>1 | (v.registers[1]&0x18)>>2
	switch bits {
	case 0:
		return ModeGraphics1
	case 1:
		return ModeGraphics2
	case 2:
		return ModeMulticolor
	case 4:
		return ModeText
	}
	return modeInvalidFlag | DisplayMode(bits)
}

func (v *VDP) displayEnabled() bool   { return v.registers[1]&0x40 != 0 }
func (v *VDP) InterruptEnabled() bool { return v.registers[1]&0x20 != 0 }
func (v *VDP) spritesLarge() bool     { return v.registers[1]&0x02 != 0 }
func (v *VDP) spritesMagnified() bool { return v.registers[1]&0x01 != 0 }
func (v *VDP) textColor() uint8       { return v.registers[7] >> 4 }
func (v *VDP) backdropColor() uint8   { return v.registers[7] & 0x0F }

func (v *VDP) nameTable() uint16 {
	return uint16(v.registers[2]&0x7F) << 10
}

// colorTable returns the color table base. In Graphics II the all-ones
// register values select the whole 8KB table at 0x0000 or 0x2000.
func (v *VDP) colorTable() uint16 {
	if v.registers[0]&0x02 != 0 {
		switch v.registers[3] {
		case 0x7F:
			return 0x0000
		case 0xFF:
			return 0x2000
		}
	}
	return uint16(v.registers[3]) << 6
}

// patternTable returns the pattern generator base. In Graphics II only
// bit 2 of register 4 is significant and picks the 0x0000 or 0x2000 half.
func (v *VDP) patternTable() uint16 {
	if v.registers[0]&0x02 != 0 {
		return uint16(v.registers[4]&0x04) << 11
	}
	return uint16(v.registers[4]&0x07) * 0x800
}

func (v *VDP) spriteAttributeTable() uint16 {
	return uint16(v.registers[5]&0x7F) << 7
}

func (v *VDP) spritePatternTable() uint16 {
	return uint16(v.registers[6]&0x07) << 11
}

// Tick processes the current scanline and advances to the next one.
// Active lines are rendered when the cadence allows it, followed by the
// sprite engine. The first line after the active window raises vblank,
// latches any sprite collision and signals the NMI if enabled.
func (v *VDP) Tick() error {
	switch {
	case v.line >= VDPStartLine && v.line < VDPEndLine:
		if err := v.renderLine(v.line - VDPStartLine); err != nil {
			return err
		}
	case v.line == VDPEndLine:
		v.enterVBlank()
	}

	v.line++
	if v.line >= v.totalLines {
		v.line = 0
	}
	return nil
}

func (v *VDP) shouldRender() bool {
	return v.updateCount >= v.cadence.Threshold
}

func (v *VDP) renderLine(y int) error {
	draw := v.shouldRender()
	if !v.displayEnabled() {
		if draw {
			v.fillLine(y, v.backdropColor())
		}
		return nil
	}

	mode := v.Mode()
	render, ok := lineRenderers[mode]
	if !ok {
		return &Fault{Kind: FaultVideoMode, Mode: uint8(mode)}
	}
	if draw {
		render(v, y)
	}
	if mode != ModeText {
		v.renderSprites(y, draw)
	}
	return nil
}

func (v *VDP) enterVBlank() {
	v.rendered = false
	if v.shouldRender() {
		v.updateCount -= v.cadence.Threshold
		v.rendered = true
	}
	v.updateCount += v.cadence.Credit

	irq := v.InterruptEnabled() && v.status&statusVBlank == 0
	v.status |= statusVBlank
	if v.status&statusCollision == 0 && v.collided {
		v.status |= statusCollision
	}
	v.collided = false
	v.frames++
	for k := range v.logged {
		delete(v.logged, k)
	}

	if irq && v.nmi != nil {
		v.nmi.NMI()
	}
}

// logOnce reports a recoverable fault at most once per frame per site.
func (v *VDP) logOnce(site, format string, args ...interface{}) {
	if v.logger == nil || v.logged[site] {
		return
	}
	v.logged[site] = true
	v.logger.Printf("vdp: "+format, args...)
}

// vramAt reads VRAM with a bounds check. Out of range reads are logged
// and reported as not ok so the caller can skip the draw.
func (v *VDP) vramAt(addr int, site string) (uint8, bool) {
	if addr < 0 || addr >= VRAMSize {
		v.logOnce(site, "%s address 0x%05X outside VRAM on line %d", site, addr, v.line)
		return 0, false
	}
	return v.vram[addr], true
}

func (v *VDP) setPixel(x, y int, index uint8) {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return
	}
	off := y*v.framebuffer.Stride + x*4
	c := Palette[index&0x0F]
	pix := v.framebuffer.Pix
	pix[off] = c.R
	pix[off+1] = c.G
	pix[off+2] = c.B
	pix[off+3] = 0xFF
}

// bgColor resolves a background color index; 0 shows the backdrop.
func (v *VDP) bgColor(index uint8) uint8 {
	if index == 0 {
		return v.backdropColor()
	}
	return index
}

func (v *VDP) fillLine(y int, index uint8) {
	for x := 0; x < ScreenWidth; x++ {
		v.setPixel(x, y, index)
	}
}

// Line returns the scanline the next Tick will process.
func (v *VDP) Line() int { return v.line }

// FrameCount returns the number of vblanks since reset.
func (v *VDP) FrameCount() uint64 { return v.frames }

// FrameRendered reports whether the most recently completed frame was
// drawn under the render cadence.
func (v *VDP) FrameRendered() bool { return v.rendered }

// Framebuffer returns the 256x192 RGBA frame buffer.
func (v *VDP) Framebuffer() *image.RGBA { return v.framebuffer }

// GetVRAM returns the VRAM contents.
func (v *VDP) GetVRAM() []uint8 { return v.vram[:] }

// GetRegister returns VDP register n (0-7).
func (v *VDP) GetRegister(n int) uint8 {
	if n < 0 || n >= len(v.registers) {
		return 0
	}
	return v.registers[n]
}

// GetAddress returns the pending VRAM address.
func (v *VDP) GetAddress() uint16 { return v.pendingAddress }

// GetWriteLatch reports whether the first control byte has been written.
func (v *VDP) GetWriteLatch() bool { return v.latch }

// GetStatus returns the status register without side effects.
func (v *VDP) GetStatus() uint8 { return v.status }
