package emu

import (
	"hash/crc32"

	"github.com/pkg/errors"
)

// Memory map.
const (
	BIOSStart      = 0x0000
	BIOSSize       = 0x2000
	RAMStart       = 0x6000
	RAMEnd         = 0x7FFF
	RAMSize        = 0x0400 // mirrored across RAMStart-RAMEnd
	CartridgeStart = 0x8000
	CartridgeSize  = 0x8000
)

var (
	ErrBIOSTooLarge      = errors.New("BIOS image larger than 8KB")
	ErrCartridgeTooLarge = errors.New("cartridge image larger than 32KB")
)

// Memory is the flat 64KB address space. The BIOS and cartridge areas are
// read-only once loaded; the 1KB of work RAM repeats through its 8KB
// window.
type Memory struct {
	data    [0x10000]uint8
	romCRC  uint32
	hasBIOS bool
}

func NewMemory() *Memory {
	return &Memory{}
}

// LoadBIOS copies the BIOS image to address 0.
func (m *Memory) LoadBIOS(bios []byte) error {
	if len(bios) > BIOSSize {
		return errors.Wrapf(ErrBIOSTooLarge, "%d bytes", len(bios))
	}
	for i := 0; i < BIOSSize; i++ {
		m.data[BIOSStart+i] = 0xFF
	}
	copy(m.data[BIOSStart:], bios)
	m.hasBIOS = len(bios) > 0
	return nil
}

// LoadCartridge copies the cartridge image to 0x8000. Unused cartridge
// space reads 0xFF.
func (m *Memory) LoadCartridge(cart []byte) error {
	if len(cart) > CartridgeSize {
		return errors.Wrapf(ErrCartridgeTooLarge, "%d bytes", len(cart))
	}
	for i := 0; i < CartridgeSize; i++ {
		m.data[CartridgeStart+i] = 0xFF
	}
	copy(m.data[CartridgeStart:], cart)
	m.romCRC = crc32.ChecksumIEEE(cart)
	return nil
}

// ClearRAM zeroes the work RAM window.
func (m *Memory) ClearRAM() {
	for i := RAMStart; i <= RAMEnd; i++ {
		m.data[i] = 0
	}
}

func ramAddr(addr uint16) uint16 {
	return RAMStart + addr&(RAMSize-1)
}

func (m *Memory) Get(addr uint16) uint8 {
	if addr >= RAMStart && addr <= RAMEnd {
		return m.data[ramAddr(addr)]
	}
	return m.data[addr]
}

func (m *Memory) Set(addr uint16, value uint8) {
	if addr >= RAMStart && addr <= RAMEnd {
		m.data[ramAddr(addr)] = value
	}
}

// Poke writes anywhere in the address space, ignoring write protection.
// It exists for loaders and test harnesses.
func (m *Memory) Poke(addr uint16, value uint8) {
	if addr >= RAMStart && addr <= RAMEnd {
		addr = ramAddr(addr)
	}
	m.data[addr] = value
}

// RAM returns the 1KB work RAM.
func (m *Memory) RAM() []uint8 {
	return m.data[RAMStart : RAMStart+RAMSize]
}

// HasBIOS reports whether a BIOS image has been loaded.
func (m *Memory) HasBIOS() bool { return m.hasBIOS }

// GetROMCRC32 returns the CRC32 of the loaded cartridge image.
func (m *Memory) GetROMCRC32() uint32 { return m.romCRC }
