package emu

import "testing"

// runLines ticks the VDP through lines 0..last.
func runLines(v *VDP, last int) {
	for v.Line() != 0 {
		v.Tick()
	}
	for i := 0; i <= last; i++ {
		v.Tick()
	}
}

// newRenderVDP returns a VDP that draws every frame with the sprite
// attribute table at 0x1B00 terminated at entry 0.
func newRenderVDP() *VDP {
	v := NewVDP(nil)
	v.SetRenderCadence(FullCadence)
	writeRegister(v, 5, 0x36)
	writeVRAM(v, 0x1B00, spriteTerminator)
	return v
}

func expectPixels(t *testing.T, v *VDP, y int, want map[int]int) {
	t.Helper()
	for x, c := range want {
		if got := pixelAt(v, x, y); got != paletteRGB(c) {
			t.Errorf("pixel (%d,%d): expected color %d %v, got %v", x, y, c, paletteRGB(c), got)
		}
	}
}

func TestRender_DisplayOffShowsBackdrop(t *testing.T) {
	v := newRenderVDP()
	writeRegister(v, 7, 0x05)
	runLines(v, 3)
	expectPixels(t, v, 3, map[int]int{0: 5, 128: 5, 255: 5})
}

func TestRender_Graphics1(t *testing.T) {
	v := newRenderVDP()
	writeRegister(v, 1, 0x40)
	writeRegister(v, 3, 0x80) // colors at 0x2000
	writeRegister(v, 4, 0x01) // patterns at 0x0800
	writeRegister(v, 7, 0x03)

	writeVRAM(v, 0x0000, 1, 0, 8)    // names
	writeVRAM(v, 0x0808, 0xF0)       // pattern 1, row 0
	writeVRAM(v, 0x2000, 0x4A, 0x00) // colors for names 0-7 and 8-15

	runLines(v, 0)
	expectPixels(t, v, 0, map[int]int{
		0: 4, 3: 4, // set bits in foreground
		4: 10, 7: 10, // clear bits in background
		8:  10, // pattern 0 shares the color byte
		16: 3,  // color 0 shows the backdrop
	})
}

func TestRender_Graphics2Bands(t *testing.T) {
	v := newRenderVDP()
	writeRegister(v, 0, 0x02)
	writeRegister(v, 1, 0x40)
	writeRegister(v, 2, 0x0E) // names at 0x3800
	writeRegister(v, 3, 0xFF) // colors at 0x2000
	writeRegister(v, 4, 0x03) // patterns at 0x0000

	writeVRAM(v, 0x3800+8*32, 5)   // first name of tile row 8
	writeVRAM(v, 0x0800+5*8, 0x81) // band 1 pattern 5 row 0
	writeVRAM(v, 0x2800+5*8, 0x6F) // band 1 color 5 row 0

	runLines(v, 64)
	expectPixels(t, v, 64, map[int]int{0: 6, 1: 15, 6: 15, 7: 6})
}

func TestRender_Text(t *testing.T) {
	v := newRenderVDP()
	writeRegister(v, 1, 0x50)
	writeRegister(v, 4, 0x01)
	writeRegister(v, 7, 0xF4)

	writeVRAM(v, 0x0000, 1, 0)
	writeVRAM(v, 0x0808, 0xFC)

	runLines(v, 0)
	expectPixels(t, v, 0, map[int]int{
		0: 4, 7: 4, // left border
		8: 15, 13: 15, // six pixel glyph
		14:  4,
		248: 4, 255: 4, // right border
	})
}

func TestRender_Multicolor(t *testing.T) {
	v := newRenderVDP()
	writeRegister(v, 1, 0x48)
	writeRegister(v, 4, 0x01)
	writeRegister(v, 7, 0x01)

	writeVRAM(v, 0x0000, 2)
	writeVRAM(v, 0x0810, 0x9C, 0x30)

	runLines(v, 0)
	expectPixels(t, v, 0, map[int]int{0: 9, 3: 9, 4: 12, 7: 12})

	runLines(v, 4)
	expectPixels(t, v, 4, map[int]int{0: 3, 3: 3, 4: 1, 7: 1})
}

// newSpriteVDP sets up Graphics I with an empty background, sprite
// patterns at 0x3800 and a solid pattern 0.
func newSpriteVDP(r1 uint8) *VDP {
	v := newRenderVDP()
	writeRegister(v, 1, r1)
	writeRegister(v, 3, 0x80)
	writeRegister(v, 4, 0x01)
	writeRegister(v, 6, 0x07)
	writeRegister(v, 7, 0x01)
	writeVRAM(v, 0x3800, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
	return v
}

// setSprites writes attribute entries starting at sprite 0 followed by
// the terminator.
func setSprites(v *VDP, attrs ...[4]uint8) {
	var data []uint8
	for _, a := range attrs {
		data = append(data, a[:]...)
	}
	data = append(data, spriteTerminator)
	writeVRAM(v, 0x1B00, data...)
}

func TestSprites_Draw(t *testing.T) {
	v := newSpriteVDP(0x40)
	setSprites(v, [4]uint8{9, 20, 0, 8})

	runLines(v, 9)
	expectPixels(t, v, 9, map[int]int{20: 1}) // Y+1 is the first line

	runLines(v, 10)
	expectPixels(t, v, 10, map[int]int{19: 1, 20: 8, 27: 8, 28: 1})

	runLines(v, 18)
	expectPixels(t, v, 18, map[int]int{20: 1})
}

func TestSprites_Overflow(t *testing.T) {
	v := newSpriteVDP(0x40)
	setSprites(v,
		[4]uint8{9, 0, 0, 2},
		[4]uint8{9, 16, 0, 3},
		[4]uint8{9, 32, 0, 4},
		[4]uint8{9, 48, 0, 5},
		[4]uint8{9, 64, 0, 6},
	)

	runLines(v, 10)
	status := v.GetStatus()
	if status&statusOverflow == 0 {
		t.Fatal("fifth sprite should set overflow")
	}
	if status&statusSpriteIndex != 4 {
		t.Errorf("overflow index: expected 4, got %d", status&statusSpriteIndex)
	}
	expectPixels(t, v, 10, map[int]int{0: 2, 16: 3, 32: 4, 48: 5, 64: 1})

	v.ReadControl()
	if got := v.GetStatus(); got != 4 {
		t.Errorf("status after read: expected index bits kept (4), got 0x%02X", got)
	}
}

func TestSprites_TerminatorStopsScan(t *testing.T) {
	v := newSpriteVDP(0x40)
	setSprites(v, [4]uint8{9, 20, 0, 8})
	writeVRAM(v, 0x1B00, spriteTerminator, 40, 0, 9)
	writeVRAM(v, 0x1B04, 9, 40, 0, 9)

	runLines(v, 10)
	expectPixels(t, v, 10, map[int]int{20: 1, 40: 1})
	if got := v.GetStatus() & statusSpriteIndex; got != 0 {
		t.Errorf("index after terminator at 0: expected 0, got %d", got)
	}
}

func TestSprites_PriorityAndCollision(t *testing.T) {
	v := newSpriteVDP(0x40)
	setSprites(v,
		[4]uint8{9, 20, 0, 8},
		[4]uint8{9, 24, 0, 12},
	)

	runLines(v, 10)
	expectPixels(t, v, 10, map[int]int{20: 8, 27: 8, 28: 12, 31: 12})

	if v.GetStatus()&statusCollision != 0 {
		t.Error("collision is latched at vblank, not during the line")
	}
	runLines(v, VDPEndLine)
	if v.GetStatus()&statusCollision == 0 {
		t.Error("collision should be set at vblank")
	}
}

func TestSprites_TransparentStillCollides(t *testing.T) {
	v := newSpriteVDP(0x40)
	setSprites(v,
		[4]uint8{9, 20, 0, 0},
		[4]uint8{9, 20, 0, 0},
	)

	runLines(v, VDPEndLine)
	expectPixels(t, v, 10, map[int]int{20: 1, 27: 1})
	if v.GetStatus()&statusCollision == 0 {
		t.Error("transparent sprites still collide")
	}
}

func TestSprites_EarlyClock(t *testing.T) {
	v := newSpriteVDP(0x40)
	setSprites(v, [4]uint8{9, 40, 0, earlyClockBit | 8})

	runLines(v, 10)
	expectPixels(t, v, 10, map[int]int{7: 1, 8: 8, 15: 8, 40: 1})
}

func TestSprites_Magnified(t *testing.T) {
	v := newSpriteVDP(0x41)
	setSprites(v, [4]uint8{9, 20, 0, 8})

	runLines(v, 25)
	expectPixels(t, v, 25, map[int]int{20: 8, 35: 8, 36: 1})

	runLines(v, 26)
	expectPixels(t, v, 26, map[int]int{20: 1})
}

func TestSprites_Large(t *testing.T) {
	v := newSpriteVDP(0x42)
	// Name 5 is rounded down to 4; its right half comes from 16 bytes on.
	setSprites(v, [4]uint8{9, 20, 5, 8})
	writeVRAM(v, 0x3800+4*8, 0x80)
	writeVRAM(v, 0x3800+4*8+16, 0x01)

	runLines(v, 10)
	expectPixels(t, v, 10, map[int]int{20: 8, 21: 1, 34: 1, 35: 8})
}

func TestSprites_WrapFromTop(t *testing.T) {
	v := newSpriteVDP(0x40)
	// Y=254 puts the first visible line at -1; rows 1-7 show on lines 0-6.
	setSprites(v, [4]uint8{254, 20, 0, 8})

	runLines(v, 6)
	expectPixels(t, v, 6, map[int]int{20: 8})
	runLines(v, 7)
	expectPixels(t, v, 7, map[int]int{20: 1})
}
