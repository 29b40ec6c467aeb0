// This file is part of GopherAdvance.
//
// GopherAdvance is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherAdvance is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherAdvance.  If not, see <https://www.gnu.org/licenses/>.

package ppu

// sprite dimensions indexed by [shape][size]. shape 3 is prohibited and
// renders nothing.
var spriteSizes = [4][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
	{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
}

// sprite tile data lives in the last 32KB of the 96KB of VRAM.
const spriteCharBase = 0x10000

// renderSprites renders the sprite pixels of the current scanline. Sprites
// are walked from the highest OAM index down so that, at equal priority,
// the lowest index ends up on top.
//
// Affine sprites are drawn as if they were normal sprites; the rotation
// parameters are ignored.
func (p *PPU) renderSprites(dispcnt uint16) {
	mapping1D := dispcnt&0x0040 != 0

	for i := 127; i >= 0; i-- {
		o := i * 8
		attr0 := uint16(p.mem.OAM[o]) | uint16(p.mem.OAM[o+1])<<8
		attr1 := uint16(p.mem.OAM[o+2]) | uint16(p.mem.OAM[o+3])<<8
		attr2 := uint16(p.mem.OAM[o+4]) | uint16(p.mem.OAM[o+5])<<8

		objMode := (attr0 >> 8) & 0x3
		if objMode == 2 { // disabled
			continue
		}

		shape := int(attr0>>14) & 0x3
		size := int(attr1>>14) & 0x3
		width := spriteSizes[shape][size][0]
		height := spriteSizes[shape][size][1]
		if width == 0 {
			continue
		}

		// y wraps at 256; x is a 9-bit signed coordinate
		y := int(attr0 & 0xff)
		if y >= 160 {
			y -= 256
		}
		x := int(attr1 & 0x1ff)
		if x >= 256 {
			x -= 512
		}

		localY := p.vcount - y
		if localY < 0 || localY >= height {
			continue
		}

		affine := objMode == 1 || objMode == 3
		if attr1&0x2000 != 0 && !affine { // vertical flip
			localY = height - 1 - localY
		}

		eightBit := attr0&0x2000 != 0
		hFlip := attr1&0x1000 != 0 && !affine
		tileNum := int(attr2 & 0x3ff)
		priority := uint8(attr2>>10) & 0x3
		paletteBank := int(attr2>>12) & 0xf

		// width of a row of the sprite in tiles, depending on the mapping
		// mode declared in DISPCNT
		var rowStride int
		if mapping1D {
			rowStride = width / 8
			if eightBit {
				rowStride *= 2
			}
		} else {
			rowStride = 32
		}

		for localX := 0; localX < width; localX++ {
			screenX := x + localX
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}

			tx := localX
			if hFlip {
				tx = width - 1 - localX
			}

			var colourIdx int
			if eightBit {
				tile := tileNum + (localY/8)*rowStride + (tx/8)*2
				a := spriteCharBase + (tile&0x3ff)*32 + (localY%8)*8 + tx%8
				colourIdx = int(p.mem.VRAM[a])
			} else {
				tile := tileNum + (localY/8)*rowStride + tx/8
				a := spriteCharBase + (tile&0x3ff)*32 + (localY%8)*4 + (tx%8)/2
				b := p.mem.VRAM[a]
				if tx&1 != 0 {
					colourIdx = int(b >> 4)
				} else {
					colourIdx = int(b & 0xf)
				}
			}

			if colourIdx == 0 {
				continue
			}

			if priority <= p.priority[screenX] || !p.opaque[screenX] {
				var colour uint16
				if eightBit {
					colour = p.objPaletteColour(colourIdx, 0)
				} else {
					colour = p.objPaletteColour(colourIdx, paletteBank)
				}
				p.line[screenX] = colour
				p.priority[screenX] = priority
				p.opaque[screenX] = true
			}
		}
	}
}
