package emu

// ColecoBus adapts Memory and ColecoIO into the CPU Bus interface.
type ColecoBus struct {
	mem *Memory
	io  *ColecoIO
}

// NewColecoBus creates a ColecoBus bridging memory and I/O.
func NewColecoBus(mem *Memory, io *ColecoIO) *ColecoBus {
	return &ColecoBus{mem: mem, io: io}
}

func (b *ColecoBus) Read(addr uint16) uint8       { return b.mem.Get(addr) }
func (b *ColecoBus) Write(addr uint16, val uint8) { b.mem.Set(addr, val) }
func (b *ColecoBus) In(port uint16) uint8         { return b.io.In(uint8(port)) }
func (b *ColecoBus) Out(port uint16, val uint8)   { b.io.Out(uint8(port), val) }
