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

// Package ppu implements the picture processing unit of the GBA as a
// scanline renderer. The PPU is stepped with the cycle counts returned by
// the CPU; at the end of each visible line the current background mode is
// rendered into the framebuffer.
package ppu

import (
	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
)

// Screen dimensions and timing. One scanline is 1232 cycles: 960 for the
// visible pixels and 272 for the horizontal blank. A frame is 228 lines of
// which the last 68 are the vertical blank: 280896 cycles in all.
const (
	ScreenWidth  = 240
	ScreenHeight = 160

	hdrawCycles   = 960
	cyclesPerLine = 1232

	vdrawLines = 160
	totalLines = 228
)

// CyclesPerFrame is the number of CPU cycles in one complete frame.
const CyclesPerFrame = cyclesPerLine * totalLines

// register offsets in the IO space.
const (
	addrDISPCNT  = 0x000
	addrDISPSTAT = 0x004
	addrVCOUNT   = 0x006
	addrBG0CNT   = 0x008
	addrBG0HOFS  = 0x010
	addrBG2PA    = 0x020
	addrBG2X     = 0x028
	addrBG3PA    = 0x030
	addrBG3X     = 0x038
)

// BlankTrigger is notified at the start of the horizontal and vertical
// blanking periods. Implemented by the DMA controller.
type BlankTrigger interface {
	OnVBlank()
	OnHBlank()
}

// PPU is the picture processing unit of the GBA.
type PPU struct {
	mem *memory.GBAMemory
	irq *irq.Controller

	// notified on blanking periods. may be nil in tests
	blank BlankTrigger

	// the rendered frame, four bytes per pixel (RGBA)
	framebuffer []uint8

	// scanline state
	vcount       int
	cycleCounter int

	// the writable bits of DISPSTAT and the VCOUNT match target
	dispstat     uint16
	vcountTarget int

	// FrameReady is set when the vertical blank begins, signalling that the
	// framebuffer holds a complete frame. Cleared by the caller
	FrameReady bool

	// internal reference point registers for the affine backgrounds.
	// reloaded from the IO registers at each vertical blank
	bg2x, bg2y int32
	bg3x, bg3y int32

	// scratch buffers reused across scanlines
	line     [ScreenWidth]uint16
	priority [ScreenWidth]uint8
	opaque   [ScreenWidth]bool
}

// NewPPU is the preferred method of initialisation for the PPU type.
func NewPPU(mem *memory.GBAMemory, irqc *irq.Controller) *PPU {
	return &PPU{
		mem:         mem,
		irq:         irqc,
		framebuffer: make([]uint8, ScreenWidth*ScreenHeight*4),
	}
}

// SetBlankTrigger attaches the receiver of hblank/vblank notifications.
func (p *PPU) SetBlankTrigger(blank BlankTrigger) {
	p.blank = blank
}

// Framebuffer returns the rendered frame: four bytes per pixel, RGBA,
// ScreenWidth by ScreenHeight.
func (p *PPU) Framebuffer() []uint8 {
	return p.framebuffer
}

// VCount returns the current scanline number.
func (p *PPU) VCount() int {
	return p.vcount
}

// Reset returns the PPU to its power-on state.
func (p *PPU) Reset() {
	p.vcount = 0
	p.cycleCounter = 0
	p.dispstat = 0
	p.vcountTarget = 0
	p.FrameReady = false
	p.bg2x, p.bg2y = 0, 0
	p.bg3x, p.bg3y = 0, 0
	for i := range p.framebuffer {
		p.framebuffer[i] = 0
	}
}

// Step advances the PPU by the number of CPU cycles.
func (p *PPU) Step(cycles int) {
	p.cycleCounter += cycles

	for p.cycleCounter >= cyclesPerLine {
		p.cycleCounter -= cyclesPerLine
		p.endScanline()
	}
}

func (p *PPU) endScanline() {
	if p.vcount < vdrawLines {
		p.renderScanline()
		p.stepAffineReferences()
	}

	p.vcount++

	if p.dispstat&0x0010 != 0 {
		p.irq.Raise(irq.HBlank)
	}
	if p.blank != nil {
		p.blank.OnHBlank()
	}

	if p.vcount == p.vcountTarget {
		if p.dispstat&0x0020 != 0 {
			p.irq.Raise(irq.VCount)
		}
	}

	if p.vcount == vdrawLines {
		if p.dispstat&0x0008 != 0 {
			p.irq.Raise(irq.VBlank)
		}
		if p.blank != nil {
			p.blank.OnVBlank()
		}

		p.reloadAffineReferences()
		p.FrameReady = true
	}

	if p.vcount >= totalLines {
		p.vcount = 0
	}
}

// readDISPSTAT assembles the DISPSTAT value from the writable bits and the
// live vblank/hblank/vcount-match flags.
func (p *PPU) readDISPSTAT() uint16 {
	value := p.dispstat & 0xff38

	if p.vcount >= vdrawLines {
		value |= 0x0001
	}
	if p.cycleCounter >= hdrawCycles {
		value |= 0x0002
	}
	if p.vcount == p.vcountTarget {
		value |= 0x0004
	}

	return value
}

// ReadRegister implements the memory.IODevice interface. DISPSTAT and
// VCOUNT are assembled from live state; every other register reads from the
// bus's backing bytes.
func (p *PPU) ReadRegister(offset uint32) (uint16, bool) {
	switch offset {
	case addrDISPSTAT:
		return p.readDISPSTAT(), true
	case addrVCOUNT:
		return uint16(p.vcount), true
	}
	return 0, false
}

// WriteRegister implements the memory.IODevice interface.
func (p *PPU) WriteRegister(offset uint32, data uint16) bool {
	if offset == addrDISPSTAT {
		p.dispstat = data & 0xff38
		p.vcountTarget = int(data >> 8)
		return true
	}
	return false
}

func (p *PPU) dispcnt() uint16 {
	return p.mem.IORegister16(addrDISPCNT)
}

// stepAffineReferences advances the internal affine reference points by the
// dmx/dmy parameters at the end of each visible line.
func (p *PPU) stepAffineReferences() {
	p.bg2x += int32(int16(p.mem.IORegister16(addrBG2PA + 2))) // BG2PB
	p.bg2y += int32(int16(p.mem.IORegister16(addrBG2PA + 6))) // BG2PD
	p.bg3x += int32(int16(p.mem.IORegister16(addrBG3PA + 2)))
	p.bg3y += int32(int16(p.mem.IORegister16(addrBG3PA + 6)))
}

// reloadAffineReferences copies the reference point registers into the
// internal state at each vertical blank.
func (p *PPU) reloadAffineReferences() {
	p.bg2x = p.readReference(addrBG2X)
	p.bg2y = p.readReference(addrBG2X + 4)
	p.bg3x = p.readReference(addrBG3X)
	p.bg3y = p.readReference(addrBG3X + 4)
}

// readReference reads a 28-bit signed fixed point reference register.
func (p *PPU) readReference(offset uint32) int32 {
	v := uint32(p.mem.IORegister16(offset)) | uint32(p.mem.IORegister16(offset+2))<<16
	return int32(v<<4) >> 4
}

func (p *PPU) renderScanline() {
	dispcnt := p.dispcnt()

	// forced blank paints white
	if dispcnt&0x0080 != 0 {
		base := p.vcount * ScreenWidth * 4
		for i := 0; i < ScreenWidth*4; i++ {
			p.framebuffer[base+i] = 0xff
		}
		return
	}

	// the line starts as backdrop: palette entry zero
	backdrop := p.paletteColour(0, 0)
	for x := 0; x < ScreenWidth; x++ {
		p.line[x] = backdrop
		p.priority[x] = 0xff
		p.opaque[x] = false
	}

	switch dispcnt & 0x7 {
	case 0:
		// four text backgrounds
		for pri := 3; pri >= 0; pri-- {
			for bg := 3; bg >= 0; bg-- {
				p.renderTextBG(dispcnt, bg, uint8(pri))
			}
		}
	case 1:
		// BG0 and BG1 text, BG2 affine
		for pri := 3; pri >= 0; pri-- {
			p.renderAffineBG(dispcnt, 2, uint8(pri), p.bg2x, p.bg2y)
			for bg := 1; bg >= 0; bg-- {
				p.renderTextBG(dispcnt, bg, uint8(pri))
			}
		}
	case 2:
		// BG2 and BG3 affine
		for pri := 3; pri >= 0; pri-- {
			p.renderAffineBG(dispcnt, 3, uint8(pri), p.bg3x, p.bg3y)
			p.renderAffineBG(dispcnt, 2, uint8(pri), p.bg2x, p.bg2y)
		}
	case 3:
		p.renderMode3(dispcnt)
	case 4:
		p.renderMode4(dispcnt)
	case 5:
		p.renderMode5(dispcnt)
	}

	if dispcnt&0x1000 != 0 {
		p.renderSprites(dispcnt)
	}

	// resolve the 15-bit line into the RGBA framebuffer
	base := p.vcount * ScreenWidth * 4
	for x := 0; x < ScreenWidth; x++ {
		c := p.line[x]
		p.framebuffer[base+x*4] = uint8(c&0x1f) << 3
		p.framebuffer[base+x*4+1] = uint8((c>>5)&0x1f) << 3
		p.framebuffer[base+x*4+2] = uint8((c>>10)&0x1f) << 3
		p.framebuffer[base+x*4+3] = 0xff
	}
}

// paletteColour reads a 15-bit colour from background palette RAM.
func (p *PPU) paletteColour(index int, bank int) uint16 {
	a := (bank*16 + index) * 2
	return uint16(p.mem.Palette[a]) | uint16(p.mem.Palette[a+1])<<8
}

// objPaletteColour reads a 15-bit colour from the sprite half of palette
// RAM.
func (p *PPU) objPaletteColour(index int, bank int) uint16 {
	a := 0x200 + (bank*16+index)*2
	return uint16(p.mem.Palette[a]) | uint16(p.mem.Palette[a+1])<<8
}

func (p *PPU) bgcnt(bg int) uint16 {
	return p.mem.IORegister16(addrBG0CNT + uint32(bg)*2)
}

func (p *PPU) bgScroll(bg int) (int, int) {
	h := int(p.mem.IORegister16(addrBG0HOFS+uint32(bg)*4) & 0x1ff)
	v := int(p.mem.IORegister16(addrBG0HOFS+uint32(bg)*4+2) & 0x1ff)
	return h, v
}

// plot writes a background pixel if it wins the priority comparison.
// Lower priority values are closer to the viewer; at equal priority the
// lower numbered background wins because of the render order.
func (p *PPU) plot(x int, colour uint16, priority uint8) {
	if x < 0 || x >= ScreenWidth {
		return
	}
	if priority <= p.priority[x] {
		p.line[x] = colour
		p.priority[x] = priority
		p.opaque[x] = true
	}
}

func (p *PPU) renderMode3(dispcnt uint16) {
	if dispcnt&0x0400 == 0 { // BG2 enable
		return
	}

	y := p.vcount
	for x := 0; x < ScreenWidth; x++ {
		a := (y*ScreenWidth + x) * 2
		c := uint16(p.mem.VRAM[a]) | uint16(p.mem.VRAM[a+1])<<8
		p.plot(x, c, 0)
	}
}

func (p *PPU) renderMode4(dispcnt uint16) {
	if dispcnt&0x0400 == 0 {
		return
	}

	frame := 0
	if dispcnt&0x0010 != 0 {
		frame = 0xa000
	}

	y := p.vcount
	for x := 0; x < ScreenWidth; x++ {
		idx := int(p.mem.VRAM[frame+y*ScreenWidth+x])
		if idx != 0 {
			p.plot(x, p.paletteColour(idx, 0), 0)
		}
	}
}

func (p *PPU) renderMode5(dispcnt uint16) {
	if dispcnt&0x0400 == 0 {
		return
	}

	frame := 0
	if dispcnt&0x0010 != 0 {
		frame = 0xa000
	}

	y := p.vcount
	if y >= 128 {
		return
	}

	for x := 0; x < 160; x++ {
		a := frame + (y*160+x)*2
		c := uint16(p.mem.VRAM[a]) | uint16(p.mem.VRAM[a+1])<<8
		p.plot(x, c, 0)
	}
}
