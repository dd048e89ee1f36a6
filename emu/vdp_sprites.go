package emu

const (
	maxSprites       = 32
	spritesPerLine   = 4
	spriteTerminator = 208
	earlyClockShift  = 32
	earlyClockBit    = 0x80
)

// spriteGeometry returns the source glyph size (8 or 16) and the
// magnification factor (1 or 2).
func (v *VDP) spriteGeometry() (size, mag int) {
	size, mag = 8, 1
	if v.spritesLarge() {
		size = 16
	}
	if v.spritesMagnified() {
		mag = 2
	}
	return size, mag
}

// spriteTop converts a sprite's Y attribute to the line above its first
// visible line. Values near the bottom of the range wrap to negative so
// sprites can slide in from the top edge.
func spriteTop(attrY uint8, height int) int {
	top := int(attrY)
	if top > 256-height {
		top -= 256
	}
	return top
}

// renderSprites evaluates the sprite attribute table for line y and, when
// draw is set, paints the visible sprites into the frame buffer. Only four
// sprites can be shown on a line; finding a fifth sets the overflow flag
// and stores its index in the low status bits.
func (v *VDP) renderSprites(y int, draw bool) {
	sat := int(v.spriteAttributeTable())
	size, mag := v.spriteGeometry()
	height := size * mag

	var visible [spritesPerLine]int
	count := 0
	last := 0
	overflow := false

	for i := 0; i < maxSprites; i++ {
		attrY, ok := v.vramAt(sat+i*4, "sprite attribute")
		if !ok {
			break
		}
		last = i
		if attrY == spriteTerminator {
			break
		}
		top := spriteTop(attrY, height)
		if y < top+1 || y >= top+1+height {
			continue
		}
		if count == spritesPerLine {
			overflow = true
			break
		}
		visible[count] = i
		count++
	}

	if v.status&statusOverflow == 0 {
		v.status = v.status&^statusSpriteIndex | uint8(last)&statusSpriteIndex
		if overflow {
			v.status |= statusOverflow
		}
	}

	for i := range v.spritePixels {
		v.spritePixels[i] = false
	}
	for k := count - 1; k >= 0; k-- {
		v.drawSprite(visible[k], y, size, mag, draw)
	}
}

// drawSprite plots one row of sprite n on line y. Overlapping set pattern
// bits of two sprites record a collision even where nothing is drawn.
func (v *VDP) drawSprite(n, y, size, mag int, draw bool) {
	base := int(v.spriteAttributeTable()) + n*4
	var attr [4]uint8
	for i := range attr {
		b, ok := v.vramAt(base+i, "sprite attribute")
		if !ok {
			return
		}
		attr[i] = b
	}

	top := spriteTop(attr[0], size*mag)
	x := int(attr[1])
	name := int(attr[2])
	tag := attr[3]
	if tag&earlyClockBit != 0 {
		x -= earlyClockShift
	}
	if size == 16 {
		name &= 0xFC
	}

	row := (y - top - 1) / mag
	addr := int(v.spritePatternTable()) + name*8 + row
	left, ok := v.vramAt(addr, "sprite pattern")
	if !ok {
		return
	}
	bits := uint16(left) << 8
	if size == 16 {
		right, ok := v.vramAt(addr+16, "sprite pattern")
		if !ok {
			return
		}
		bits |= uint16(right)
	}

	col := tag & 0x0F
	for px := 0; px < size*mag; px++ {
		sx := x + px
		if sx < 0 || sx >= ScreenWidth {
			continue
		}
		if bits&(0x8000>>uint(px/mag)) == 0 {
			continue
		}
		if v.spritePixels[sx] {
			v.collided = true
		}
		v.spritePixels[sx] = true
		if draw && col != 0 {
			v.setPixel(sx, y, col)
		}
	}
}
