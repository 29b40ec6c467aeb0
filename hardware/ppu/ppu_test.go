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

package ppu_test

import (
	"testing"

	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
	"github.com/jetsetilly/gopheradvance/hardware/ppu"
	"github.com/jetsetilly/gopheradvance/test"
)

type mockCPU struct {
	irqCount int
}

func (mc *mockCPU) TriggerIRQ() { mc.irqCount++ }
func (mc *mockCPU) Halt()       {}
func (mc *mockCPU) Stop()       {}

type mockBlank struct {
	vblanks int
	hblanks int
}

func (mb *mockBlank) OnVBlank() { mb.vblanks++ }
func (mb *mockBlank) OnHBlank() { mb.hblanks++ }

func newTestPPU() (*ppu.PPU, *memory.GBAMemory, *mockCPU, *irq.Controller) {
	mc := &mockCPU{}
	irqc := irq.NewController(mc)
	mem := memory.NewGBAMemory()
	p := ppu.NewPPU(mem, irqc)
	mem.Attach(mc, irqc, p)
	return p, mem, mc, irqc
}

func TestScanlineTiming(t *testing.T) {
	p, _, _, _ := newTestPPU()

	test.ExpectEquality(t, p.VCount(), 0)

	// one scanline is 1232 cycles
	p.Step(1231)
	test.ExpectEquality(t, p.VCount(), 0)
	p.Step(1)
	test.ExpectEquality(t, p.VCount(), 1)

	// cycles carry over between steps
	p.Step(1232 * 3)
	test.ExpectEquality(t, p.VCount(), 4)
}

func TestFrameReady(t *testing.T) {
	p, _, _, _ := newTestPPU()

	// the frame is ready at the start of the vertical blank, and the
	// vcount wraps at the end of the frame
	p.Step(1232 * 159)
	test.ExpectEquality(t, p.FrameReady, false)
	p.Step(1232)
	test.ExpectEquality(t, p.FrameReady, true)
	test.ExpectEquality(t, p.VCount(), 160)

	p.FrameReady = false
	p.Step(1232 * 68)
	test.ExpectEquality(t, p.VCount(), 0)
	test.ExpectEquality(t, p.FrameReady, false)
}

func TestCyclesPerFrame(t *testing.T) {
	test.ExpectEquality(t, ppu.CyclesPerFrame, 280896)
}

func TestDispstatFlags(t *testing.T) {
	p, mem, _, _ := newTestPPU()

	// in the visible portion of the first line both blank flags are clear
	test.ExpectEquality(t, mem.Read16(0x04000004)&0x3, uint16(0))

	// hblank flag sets at cycle 960 of the line
	p.Step(960)
	test.ExpectEquality(t, mem.Read16(0x04000004)&0x3, uint16(0x2))

	// vblank flag sets at line 160
	p.Step(1232*160 - 960)
	test.ExpectEquality(t, mem.Read16(0x04000004)&0x1, uint16(0x1))

	// VCOUNT reads the current line
	test.ExpectEquality(t, mem.Read16(0x04000006), uint16(160))
}

func TestVBlankIRQ(t *testing.T) {
	p, mem, mc, irqc := newTestPPU()

	irqc.SetMaster(true)
	irqc.SetEnable(uint16(irq.VBlank))

	// enable the vblank interrupt in DISPSTAT
	mem.Write16(0x04000004, 0x0008)

	p.Step(1232 * 160)
	test.ExpectEquality(t, mc.irqCount, 1)
}

func TestVCountMatchIRQ(t *testing.T) {
	p, mem, mc, irqc := newTestPPU()

	irqc.SetMaster(true)
	irqc.SetEnable(uint16(irq.VCount))

	// match on line 3 with the vcount interrupt enabled
	mem.Write16(0x04000004, 0x0020|3<<8)

	p.Step(1232 * 2)
	test.ExpectEquality(t, mc.irqCount, 0)
	p.Step(1232)
	test.ExpectEquality(t, mc.irqCount, 1)
}

func TestBlankTriggers(t *testing.T) {
	p, _, _, _ := newTestPPU()

	blank := &mockBlank{}
	p.SetBlankTrigger(blank)

	p.Step(1232 * 160)
	test.ExpectEquality(t, blank.vblanks, 1)
	test.ExpectEquality(t, blank.hblanks, 160)
}

func TestMode3Render(t *testing.T) {
	p, mem, _, _ := newTestPPU()

	// mode 3 with BG2 enabled
	mem.Write16(0x04000000, 0x0403)

	// white in the top-left corner, pure red next to it
	mem.Write16(0x06000000, 0x7fff)
	mem.Write16(0x06000002, 0x001f)

	// rendering happens at the end of the line
	p.Step(1232)

	fb := p.Framebuffer()
	test.ExpectEquality(t, fb[0], uint8(0xf8))
	test.ExpectEquality(t, fb[1], uint8(0xf8))
	test.ExpectEquality(t, fb[2], uint8(0xf8))
	test.ExpectEquality(t, fb[3], uint8(0xff))

	test.ExpectEquality(t, fb[4], uint8(0xf8))
	test.ExpectEquality(t, fb[5], uint8(0x00))
	test.ExpectEquality(t, fb[6], uint8(0x00))
}

func TestMode4PaletteRender(t *testing.T) {
	p, mem, _, _ := newTestPPU()

	// mode 4 with BG2 enabled
	mem.Write16(0x04000000, 0x0404)

	// palette entry 1 is green; first pixel uses it
	mem.Write16(0x05000002, 0x03e0)
	mem.Write8(0x06000000, 0x01)

	p.Step(1232)

	fb := p.Framebuffer()
	test.ExpectEquality(t, fb[0], uint8(0x00))
	test.ExpectEquality(t, fb[1], uint8(0xf8))
	test.ExpectEquality(t, fb[2], uint8(0x00))
}

func TestForcedBlank(t *testing.T) {
	p, mem, _, _ := newTestPPU()

	mem.Write16(0x04000000, 0x0080)

	p.Step(1232)

	fb := p.Framebuffer()
	test.ExpectEquality(t, fb[0], uint8(0xff))
	test.ExpectEquality(t, fb[1], uint8(0xff))
}
