package emu

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
	"github.com/user-none/go-chip-sn76489"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eColecoState"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)

	vdpStateSize = VRAMSize +
		8 + // registers
		2 + // pendingAddress
		3 + // latch, readAhead, status
		2 + // line
		4 + // updateCount
		8 + // frames
		2 // rendered, collided

	ioStateSize = 2*2 + 1 // controller words + joystick mode
)

// Save state errors.
var (
	ErrStateTooShort = errors.New("save state too short")
	ErrStateMagic    = errors.New("invalid save state magic")
	ErrStateVersion  = errors.New("unsupported save state version")
	ErrStateROM      = errors.New("save state is for a different ROM")
	ErrStateCorrupt  = errors.New("save state data is corrupted")
)

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize +
		CPUStateSize +
		RAMSize +
		vdpStateSize +
		sn76489.SerializeSize +
		ioStateSize
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.mem.GetROMCRC32())

	offset := stateHeaderSize
	e.cpu.Serialize(data[offset:])
	offset += CPUStateSize

	copy(data[offset:], e.mem.RAM())
	offset += RAMSize

	offset = e.serializeVDP(data, offset)

	e.psg.Serialize(data[offset:])
	offset += sn76489.SerializeSize

	e.serializeIO(data, offset)

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
// Region is not restored; the current region setting is preserved.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	e.cpu.Deserialize(data[offset:])
	offset += CPUStateSize

	copy(e.mem.RAM(), data[offset:offset+RAMSize])
	offset += RAMSize

	offset = e.deserializeVDP(data, offset)

	e.psg.Deserialize(data[offset:])
	offset += sn76489.SerializeSize

	e.deserializeIO(data, offset)
	e.pendingAudioCycles = 0
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.Wrapf(ErrStateTooShort, "%d bytes", len(data))
	}
	if string(data[0:12]) != stateMagic {
		return ErrStateMagic
	}
	if version := binary.LittleEndian.Uint16(data[12:14]); version > stateVersion {
		return errors.Wrapf(ErrStateVersion, "version %d", version)
	}
	if romCRC := binary.LittleEndian.Uint32(data[14:18]); romCRC != e.mem.GetROMCRC32() {
		return errors.Wrapf(ErrStateROM, "crc %08X", romCRC)
	}
	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	if crc32.ChecksumIEEE(data[stateHeaderSize:]) != expectedCRC {
		return ErrStateCorrupt
	}
	return nil
}

func (e *Emulator) serializeVDP(data []byte, offset int) int {
	v := e.vdp
	copy(data[offset:], v.vram[:])
	offset += VRAMSize
	copy(data[offset:], v.registers[:])
	offset += len(v.registers)
	binary.LittleEndian.PutUint16(data[offset:], v.pendingAddress)
	offset += 2
	putBool(data[offset:], v.latch)
	data[offset+1] = v.readAhead
	data[offset+2] = v.status
	offset += 3
	binary.LittleEndian.PutUint16(data[offset:], uint16(v.line))
	offset += 2
	binary.LittleEndian.PutUint32(data[offset:], uint32(int32(v.updateCount)))
	offset += 4
	binary.LittleEndian.PutUint64(data[offset:], v.frames)
	offset += 8
	putBool(data[offset:], v.rendered)
	putBool(data[offset+1:], v.collided)
	return offset + 2
}

func (e *Emulator) deserializeVDP(data []byte, offset int) int {
	v := e.vdp
	copy(v.vram[:], data[offset:offset+VRAMSize])
	offset += VRAMSize
	for i := range v.registers {
		v.setRegister(i, data[offset+i])
	}
	offset += len(v.registers)
	v.pendingAddress = binary.LittleEndian.Uint16(data[offset:]) & (VRAMSize - 1)
	offset += 2
	v.latch = data[offset] != 0
	v.readAhead = data[offset+1]
	v.status = data[offset+2]
	offset += 3
	v.line = int(binary.LittleEndian.Uint16(data[offset:]))
	if v.line >= v.totalLines {
		v.line = 0
	}
	offset += 2
	v.updateCount = int(int32(binary.LittleEndian.Uint32(data[offset:])))
	offset += 4
	v.frames = binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	v.rendered = data[offset] != 0
	v.collided = data[offset+1] != 0
	return offset + 2
}

func (e *Emulator) serializeIO(data []byte, offset int) int {
	binary.LittleEndian.PutUint16(data[offset:], e.io.State[0])
	binary.LittleEndian.PutUint16(data[offset+2:], e.io.State[1])
	putBool(data[offset+4:], e.io.JoystickMode)
	return offset + ioStateSize
}

func (e *Emulator) deserializeIO(data []byte, offset int) int {
	e.io.State[0] = binary.LittleEndian.Uint16(data[offset:])
	e.io.State[1] = binary.LittleEndian.Uint16(data[offset+2:])
	e.io.JoystickMode = data[offset+4] != 0
	e.prevState = e.io.State
	return offset + ioStateSize
}
