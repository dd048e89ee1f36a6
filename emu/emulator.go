package emu

import (
	"log"

	"github.com/pkg/errors"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-sn76489"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.BatterySaver = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const (
	sampleRate = 48000

	// haltIdleCycles is charged per Step while the CPU is halted so that
	// video keeps running until an interrupt arrives.
	haltIdleCycles = 4
)

// Button bit positions beyond the directions defined by emucore.
const (
	ButtonFireLeft    = 4
	ButtonFireRight   = 5
	ButtonKeypad0     = 6 // keypad 0-9 occupy bits 6-15
	ButtonKeypadStar  = 16
	ButtonKeypadPound = 17
)

// Core option keys.
const (
	OptionFullRender      = "full_render"
	OptionKeypadInterrupt = "keypad_interrupt"
)

// Emulator contains the emulator core components.
type Emulator struct {
	cpu *CPU
	mem *Memory
	vdp *VDP
	psg *sn76489.SN76489
	io  *ColecoIO
	bus *ColecoBus

	// Region timing
	region Region
	timing RegionTiming

	prevState       [2]uint16
	keypadInterrupt bool

	// Audio: cycles not yet handed to the PSG
	pendingAudioCycles int
	frameSamples       []float32
	audioBuffer        []int16
}

// NewEmulator creates an emulator with the BIOS at 0x0000 and the
// cartridge at 0x8000, reset and ready to run.
func NewEmulator(bios, cart []byte, region Region) (*Emulator, error) {
	mem := NewMemory()
	if err := mem.LoadBIOS(bios); err != nil {
		return nil, err
	}
	if err := mem.LoadCartridge(cart); err != nil {
		return nil, err
	}

	timing := GetTimingForRegion(region)
	samplesPerFrame := sampleRate / timing.FPS
	psg := sn76489.New(timing.CPUClockHz, sampleRate, samplesPerFrame*2, sn76489.Sega)

	vdp := NewVDP(nil)
	io := NewColecoIO(vdp, psg)
	bus := NewColecoBus(mem, io)
	cpu := NewCPU(bus, vdp)
	vdp.SetInterruptLine(cpu)

	e := &Emulator{
		cpu:          cpu,
		mem:          mem,
		vdp:          vdp,
		psg:          psg,
		io:           io,
		bus:          bus,
		frameSamples: make([]float32, 0, 1024),
		audioBuffer:  make([]int16, 0, 2048),
	}
	e.SetRegion(region)
	e.Reset()
	return e, nil
}

// Reset restores the power-on state: all CPU registers in both banks, the
// interrupt state, work RAM, VRAM and VDP registers, and the controllers.
// The BIOS and cartridge images are kept.
func (e *Emulator) Reset() {
	e.cpu.Reset()
	e.cpu.SetInstructionPeriod(e.timing.InstructionPeriod())
	e.mem.ClearRAM()
	e.vdp.Reset()
	e.io.Reset()
	e.prevState = [2]uint16{}
	e.pendingAudioCycles = 0
}

// CPU returns the processor, for debuggers.
func (e *Emulator) CPU() *CPU { return e.cpu }

// VDP returns the video processor, for debuggers.
func (e *Emulator) VDP() *VDP { return e.vdp }

// Memory returns the address space, for debuggers.
func (e *Emulator) Memory() *Memory { return e.mem }

// Fault returns the fault that stopped emulation, or nil.
func (e *Emulator) Fault() error {
	if f := e.cpu.Fault(); f != nil {
		return f
	}
	return nil
}

// RunFrame runs the CPU until the VDP reaches vblank. A fault stops the
// frame early and emulation stays stopped until Reset.
func (e *Emulator) RunFrame() {
	e.audioBuffer = e.audioBuffer[:0]
	e.frameSamples = e.frameSamples[:0]

	if e.cpu.Fault() == nil {
		e.runUntilVBlank()
	}
	e.flushAudio()

	// Convert float32 mono samples to int16 stereo
	for _, sample := range e.frameSamples {
		intSample := int16(sample * 32767 * 0.5)
		e.audioBuffer = append(e.audioBuffer, intSample, intSample)
	}
}

func (e *Emulator) runUntilVBlank() {
	start := e.vdp.FrameCount()
	// Bound the loop at two frames of cycles in case video never ticks.
	limit := 2 * e.timing.CPUClockHz / e.timing.FPS
	spent := 0

	for e.vdp.FrameCount() == start && spent < limit {
		cycles, err := e.cpu.Step()
		if err == nil && cycles == 0 && e.cpu.Halted {
			cycles = haltIdleCycles
			err = e.cpu.Clock(cycles)
		}
		if err != nil {
			e.reportFault(err)
			return
		}
		spent += cycles
		e.pendingAudioCycles += cycles
		if e.pendingAudioCycles >= e.timing.InstructionPeriod() {
			e.flushAudio()
		}
	}
}

func (e *Emulator) reportFault(err error) {
	var f *Fault
	if errors.As(err, &f) {
		log.Printf("emu: %v\n%s", f, f.TraceString())
		return
	}
	log.Printf("emu: %v", err)
}

func (e *Emulator) flushAudio() {
	if e.pendingAudioCycles == 0 {
		return
	}
	e.psg.GenerateSamples(e.pendingAudioCycles)
	e.pendingAudioCycles = 0
	buffer, count := e.psg.GetBuffer()
	if count > 0 {
		e.frameSamples = append(e.frameSamples, buffer[:count]...)
	}
}

// controllerState packs an emucore button mask into a controller word.
// Only one keypad key can be reported at a time; the lowest wins.
func controllerState(buttons uint32) uint16 {
	var state uint16
	if buttons&(1<<emucore.ButtonUp) != 0 {
		state |= JoyUp
	}
	if buttons&(1<<emucore.ButtonDown) != 0 {
		state |= JoyDown
	}
	if buttons&(1<<emucore.ButtonLeft) != 0 {
		state |= JoyLeft
	}
	if buttons&(1<<emucore.ButtonRight) != 0 {
		state |= JoyRight
	}
	if buttons&(1<<ButtonFireLeft) != 0 {
		state |= JoyFireLeft
	}
	if buttons&(1<<ButtonFireRight) != 0 {
		state |= KeyFireRight
	}
	for k := 0; k < 12; k++ {
		if buttons&(1<<uint(ButtonKeypad0+k)) != 0 {
			state |= KeypadCode(k)
			break
		}
	}
	return state
}

// SetInput unpacks a button bitmask and sets controller state for the given player.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player < 0 || player > 1 {
		return
	}
	state := controllerState(buttons)
	e.io.State[player] = state
	if e.keypadInterrupt && state != e.prevState[player] {
		e.cpu.RequestINT()
	}
	e.prevState[player] = state
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.vdp.framebuffer.Pix
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.vdp.framebuffer.Stride
}

// GetActiveHeight returns the active display height.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion returns the emulator's region setting
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count for the current region.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// SetRegion updates the emulator's region configuration
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
	e.vdp.SetTotalScanlines(e.timing.Scanlines)
	e.cpu.SetInstructionPeriod(e.timing.InstructionPeriod())
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case OptionFullRender:
		if value == "true" {
			e.vdp.SetRenderCadence(FullCadence)
		} else {
			e.vdp.SetRenderCadence(ReferenceCadence)
		}
	case OptionKeypadInterrupt:
		e.keypadInterrupt = value == "true"
	}
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// GetAudioSamples returns accumulated audio samples as 16-bit stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// HasSRAM reports whether the loaded ROM uses battery-backed save.
// Cartridges have no save RAM.
func (e *Emulator) HasSRAM() bool {
	return false
}

// GetSRAM returns nil; there is no battery-backed memory.
func (e *Emulator) GetSRAM() []byte {
	return nil
}

// SetSRAM is a no-op.
func (e *Emulator) SetSRAM(data []byte) {}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Flat addresses 0x000-0x3FF map to the work RAM.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	ram := e.mem.RAM()
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur >= uint32(len(ram)) {
			return count
		}
		buf[i] = ram[cur]
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: RAMSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, RAMSize)
		copy(out, e.mem.RAM())
		return out
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	if regionType == emucore.MemorySystemRAM {
		copy(e.mem.RAM(), data)
	}
}
