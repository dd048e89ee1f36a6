package emu

// lineRenderers maps each valid display mode to its background renderer.
var lineRenderers = map[DisplayMode]func(v *VDP, y int){
	ModeGraphics1:  (*VDP).renderGraphics1,
	ModeGraphics2:  (*VDP).renderGraphics2,
	ModeText:       (*VDP).renderText,
	ModeMulticolor: (*VDP).renderMulticolor,
}

// plotPatternRow draws eight pixels of a pattern row starting at x,
// choosing fg for set bits and bg for clear bits.
func (v *VDP) plotPatternRow(x, y int, row, fg, bg uint8) {
	fg = v.bgColor(fg)
	bg = v.bgColor(bg)
	for bit := 0; bit < 8; bit++ {
		if row&(0x80>>uint(bit)) != 0 {
			v.setPixel(x+bit, y, fg)
		} else {
			v.setPixel(x+bit, y, bg)
		}
	}
}

// renderGraphics1 draws a line of the 32x24 tile mode. Each group of
// eight patterns shares one color byte.
func (v *VDP) renderGraphics1(y int) {
	names := int(v.nameTable()) + (y>>3)*32
	patterns := int(v.patternTable())
	colors := int(v.colorTable())
	row := y & 7

	for col := 0; col < 32; col++ {
		name, ok := v.vramAt(names+col, "graphics1 name")
		if !ok {
			return
		}
		pattern, ok := v.vramAt(patterns+int(name)<<3|row, "graphics1 pattern")
		if !ok {
			continue
		}
		c, ok := v.vramAt(colors+int(name>>3), "graphics1 color")
		if !ok {
			continue
		}
		v.plotPatternRow(col*8, y, pattern, c>>4, c&0x0F)
	}
}

// renderGraphics2 draws a line of the bitmap-like tile mode. The screen
// is split into three bands of eight tile rows, each with its own 2KB
// pattern and color bank, and every pattern row has its own color byte.
func (v *VDP) renderGraphics2(y int) {
	names := int(v.nameTable()) + (y>>3)*32
	bank := (y & 0xC0) << 5
	patterns := int(v.patternTable()) + bank
	colors := int(v.colorTable()) + bank
	row := y & 7

	for col := 0; col < 32; col++ {
		name, ok := v.vramAt(names+col, "graphics2 name")
		if !ok {
			return
		}
		offset := int(name)<<3 | row
		pattern, ok := v.vramAt(patterns+offset, "graphics2 pattern")
		if !ok {
			continue
		}
		c, ok := v.vramAt(colors+offset, "graphics2 color")
		if !ok {
			continue
		}
		v.plotPatternRow(col*8, y, pattern, c>>4, c&0x0F)
	}
}

// renderText draws a line of the 40x24 text mode: six pixel wide glyphs
// in the text color over the backdrop, with an 8 pixel border each side.
func (v *VDP) renderText(y int) {
	fg := v.bgColor(v.textColor())
	bg := v.backdropColor()
	names := int(v.nameTable()) + (y>>3)*40
	patterns := int(v.patternTable())
	row := y & 7

	for x := 0; x < 8; x++ {
		v.setPixel(x, y, bg)
		v.setPixel(ScreenWidth-1-x, y, bg)
	}
	for col := 0; col < 40; col++ {
		name, ok := v.vramAt(names+col, "text name")
		if !ok {
			return
		}
		pattern, ok := v.vramAt(patterns+int(name)<<3|row, "text pattern")
		if !ok {
			continue
		}
		x := 8 + col*6
		for bit := 0; bit < 6; bit++ {
			if pattern&(0x80>>uint(bit)) != 0 {
				v.setPixel(x+bit, y, fg)
			} else {
				v.setPixel(x+bit, y, bg)
			}
		}
	}
}

// renderMulticolor draws a line of the 64x48 block mode. Each pattern
// byte holds two 4x4 blocks; the row within the pattern advances every
// four lines and the tile row picks one of four byte pairs.
func (v *VDP) renderMulticolor(y int) {
	names := int(v.nameTable()) + (y>>3)*32
	patterns := int(v.patternTable())
	row := ((y >> 3) & 3) << 1
	row |= (y >> 2) & 1

	for col := 0; col < 32; col++ {
		name, ok := v.vramAt(names+col, "multicolor name")
		if !ok {
			return
		}
		c, ok := v.vramAt(patterns+int(name)<<3+row, "multicolor pattern")
		if !ok {
			continue
		}
		left := v.bgColor(c >> 4)
		right := v.bgColor(c & 0x0F)
		x := col * 8
		for i := 0; i < 4; i++ {
			v.setPixel(x+i, y, left)
			v.setPixel(x+4+i, y, right)
		}
	}
}
