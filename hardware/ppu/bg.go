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

// text background map dimensions indexed by the screen size field.
var textMapWidths = [4]int{256, 512, 256, 512}
var textMapHeights = [4]int{256, 256, 512, 512}

// affine background dimensions indexed by the screen size field. affine
// maps are always square.
var affineMapSizes = [4]int{128, 256, 512, 1024}

// renderTextBG renders one scanline of a tiled text background, if the
// background is enabled and configured at the given priority.
func (p *PPU) renderTextBG(dispcnt uint16, bg int, priority uint8) {
	if dispcnt&(0x100<<bg) == 0 {
		return
	}

	bgcnt := p.bgcnt(bg)
	if uint8(bgcnt&0x3) != priority {
		return
	}

	hofs, vofs := p.bgScroll(bg)

	charBase := int((bgcnt>>2)&0x3) * 0x4000
	screenBase := int((bgcnt>>8)&0x1f) * 0x800
	eightBit := bgcnt&0x80 != 0
	size := (bgcnt >> 14) & 0x3

	mapWidth := textMapWidths[size]
	mapHeight := textMapHeights[size]

	y := (p.vcount + vofs) % mapHeight
	tileY := y / 8
	pixelY := y % 8

	for screenX := 0; screenX < ScreenWidth; screenX++ {
		x := (screenX + hofs) % mapWidth
		tileX := x / 8
		pixelX := x % 8

		// the map is stored as 32x32-tile screen blocks
		screenBlock := 0
		tx, ty := tileX, tileY
		if mapWidth == 512 && tx >= 32 {
			screenBlock++
			tx -= 32
		}
		if mapHeight == 512 && ty >= 32 {
			screenBlock += 2
			ty -= 32
		}

		mapOffset := screenBase + screenBlock*0x800 + (ty*32+tx)*2
		entry := uint16(p.mem.VRAM[mapOffset]) | uint16(p.mem.VRAM[mapOffset+1])<<8

		tileNum := int(entry & 0x3ff)
		paletteBank := int(entry>>12) & 0xf

		px := pixelX
		if entry&0x400 != 0 {
			px = 7 - px
		}
		py := pixelY
		if entry&0x800 != 0 {
			py = 7 - py
		}

		var colourIdx int
		var bank int
		if eightBit {
			colourIdx = int(p.mem.VRAM[charBase+tileNum*64+py*8+px])
		} else {
			b := p.mem.VRAM[charBase+tileNum*32+py*4+px/2]
			if px&1 != 0 {
				colourIdx = int(b >> 4)
			} else {
				colourIdx = int(b & 0xf)
			}
			bank = paletteBank
		}

		if colourIdx != 0 {
			p.plot(screenX, p.paletteColour(colourIdx, bank), priority)
		}
	}
}

// renderAffineBG renders one scanline of a rotated/scaled background.
// Affine backgrounds are always 8bpp with single-byte map entries.
func (p *PPU) renderAffineBG(dispcnt uint16, bg int, priority uint8, refX int32, refY int32) {
	if dispcnt&(0x100<<bg) == 0 {
		return
	}

	bgcnt := p.bgcnt(bg)
	if uint8(bgcnt&0x3) != priority {
		return
	}

	charBase := int((bgcnt>>2)&0x3) * 0x4000
	screenBase := int((bgcnt>>8)&0x1f) * 0x800
	wraparound := bgcnt&0x2000 != 0

	mapSize := affineMapSizes[(bgcnt>>14)&0x3]
	tilesPerRow := mapSize / 8

	paramBase := uint32(addrBG2PA)
	if bg == 3 {
		paramBase = addrBG3PA
	}
	pa := int32(int16(p.mem.IORegister16(paramBase)))
	pc := int32(int16(p.mem.IORegister16(paramBase + 4)))

	xAcc := refX
	yAcc := refY

	for screenX := 0; screenX < ScreenWidth; screenX++ {
		// 8.8 fixed point texture coordinates
		tx := int(xAcc >> 8)
		ty := int(yAcc >> 8)

		xAcc += pa
		yAcc += pc

		if wraparound {
			tx = ((tx % mapSize) + mapSize) % mapSize
			ty = ((ty % mapSize) + mapSize) % mapSize
		} else if tx < 0 || tx >= mapSize || ty < 0 || ty >= mapSize {
			continue
		}

		mapOffset := screenBase + (ty/8)*tilesPerRow + tx/8
		tileNum := int(p.mem.VRAM[mapOffset])

		colourIdx := int(p.mem.VRAM[charBase+tileNum*64+(ty%8)*8+tx%8])
		if colourIdx != 0 {
			p.plot(screenX, p.paletteColour(colourIdx, 0), priority)
		}
	}
}
