package emu

import (
	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds timing constants for a specific region
type RegionTiming struct {
	CPUClockHz int // Z80 clock frequency
	Scanlines  int // Total scanlines per frame
	FPS        int // Frames per second
}

// NTSC timing: 3.579545 MHz, 262 scanlines, 60 Hz
var NTSCTiming = RegionTiming{
	CPUClockHz: 3579545,
	Scanlines:  262,
	FPS:        60,
}

// PAL timing: 3.546893 MHz, 313 scanlines, 50 Hz
var PALTiming = RegionTiming{
	CPUClockHz: 3546893,
	Scanlines:  313,
	FPS:        50,
}

// GetTimingForRegion returns the appropriate timing constants
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// InstructionPeriod returns the CPU cycles per scanline, rounded to the
// nearest cycle (228 for NTSC).
func (t RegionTiming) InstructionPeriod() int {
	perFrame := t.FPS * t.Scanlines
	return (t.CPUClockHz + perFrame/2) / perFrame
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}

// DetectRegionFromROM reports the region for a cartridge image.
// Cartridges carry no region marker, so this always returns NTSC and
// false; PAL machines must be selected explicitly.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	return RegionNTSC, false
}
