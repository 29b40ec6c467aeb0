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

package memory_test

import (
	"testing"

	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
	"github.com/jetsetilly/gopheradvance/test"
)

// mockCPU counts interrupt and halt requests.
type mockCPU struct {
	irqCount  int
	halted    bool
	stopped   bool
}

func (mc *mockCPU) TriggerIRQ() { mc.irqCount++ }
func (mc *mockCPU) Halt()       { mc.halted = true }
func (mc *mockCPU) Stop()       { mc.stopped = true }

func newTestMem() (*memory.GBAMemory, *mockCPU, *irq.Controller) {
	mc := &mockCPU{}
	irqc := irq.NewController(mc)
	mem := memory.NewGBAMemory()
	mem.Attach(mc, irqc)
	return mem, mc, irqc
}

func TestRegionDecode(t *testing.T) {
	mem, _, _ := newTestMem()

	mem.Write32(0x02000000, 0x11223344)
	test.ExpectEquality(t, mem.Read32(0x02000000), uint32(0x11223344))
	test.ExpectEquality(t, mem.Read16(0x02000000), uint16(0x3344))
	test.ExpectEquality(t, mem.Read8(0x02000003), uint8(0x11))

	mem.Write32(0x03000000, 0x55667788)
	test.ExpectEquality(t, mem.Read32(0x03000000), uint32(0x55667788))

	// EWRAM mirrors every 256KB
	test.ExpectEquality(t, mem.Read32(0x02040000), uint32(0x11223344))

	// IWRAM mirrors every 32KB
	test.ExpectEquality(t, mem.Read32(0x03008000), uint32(0x55667788))
}

func TestMisalignedAccess(t *testing.T) {
	mem, _, _ := newTestMem()

	// the bus itself serves aligned values; rotation is the CPU's job
	mem.Write32(0x02000000, 0xddccbbaa)
	test.ExpectEquality(t, mem.Read32(0x02000002), uint32(0xddccbbaa))
	test.ExpectEquality(t, mem.Read16(0x02000003), uint16(0xddcc))
}

func TestVRAMMirror(t *testing.T) {
	mem, _, _ := newTestMem()

	mem.Write16(0x06000000, 0x1234)
	test.ExpectEquality(t, mem.Read16(0x06000000), uint16(0x1234))

	// the object tile area mirrors in the top 32KB of the 128KB space
	mem.Write16(0x06010000, 0x5678)
	test.ExpectEquality(t, mem.Read16(0x06018000), uint16(0x5678))
}

func TestByteWriteQuirks(t *testing.T) {
	mem, _, _ := newTestMem()

	// palette byte writes land in both halves of the halfword
	mem.Write8(0x05000001, 0xab)
	test.ExpectEquality(t, mem.Read16(0x05000000), uint16(0xabab))

	// OAM ignores byte writes
	mem.Write8(0x07000000, 0xcd)
	test.ExpectEquality(t, mem.Read16(0x07000000), uint16(0))

	// object VRAM ignores byte writes
	mem.Write8(0x06012000, 0xef)
	test.ExpectEquality(t, mem.Read16(0x06012000), uint16(0))
}

func TestROMLoad(t *testing.T) {
	mem, _, _ := newTestMem()

	// too small to contain the cartridge header
	err := mem.LoadROM(make([]byte, 0x40))
	test.ExpectFailure(t, err)

	rom := make([]byte, 0x200)
	rom[0] = 0xaa
	rom[0x1ff] = 0xbb
	err = mem.LoadROM(rom)
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, mem.Read8(0x08000000), uint8(0xaa))
	test.ExpectEquality(t, mem.Read8(0x080001ff), uint8(0xbb))

	// the ROM is visible in the mirror regions too
	test.ExpectEquality(t, mem.Read8(0x0a000000), uint8(0xaa))

	// writes to ROM are ignored
	mem.Write32(0x08000000, 0xffffffff)
	test.ExpectEquality(t, mem.Read8(0x08000000), uint8(0xaa))
}

func TestKeyInput(t *testing.T) {
	mem, _, _ := newTestMem()

	// all keys released: all bits set
	test.ExpectEquality(t, mem.Read16(0x04000130), uint16(0x03ff))

	mem.SetKeyState(memory.KeyA, true)
	test.ExpectEquality(t, mem.Read16(0x04000130), uint16(0x03fe))

	mem.SetKeyState(memory.KeyA, false)
	test.ExpectEquality(t, mem.Read16(0x04000130), uint16(0x03ff))
}

func TestKeypadInterrupt(t *testing.T) {
	mem, mc, irqc := newTestMem()

	irqc.SetMaster(true)
	irqc.SetEnable(uint16(irq.Keypad))

	// KEYCNT: interrupt on Start, OR mode
	mem.Write16(0x04000132, 0x4000|uint16(memory.KeyStart))

	mem.SetKeyState(memory.KeyA, true)
	test.ExpectEquality(t, mc.irqCount, 0)

	mem.SetKeyState(memory.KeyStart, true)
	test.ExpectEquality(t, mc.irqCount, 1)
}

func TestInterruptRegisters(t *testing.T) {
	mem, _, irqc := newTestMem()

	mem.Write16(0x04000200, 0x0101) // IE
	test.ExpectEquality(t, irqc.Enable(), uint16(0x0101))
	test.ExpectEquality(t, mem.Read16(0x04000200), uint16(0x0101))

	mem.Write16(0x04000208, 0x0001) // IME
	test.ExpectEquality(t, irqc.Master(), true)

	// IF is write-one-to-clear
	irqc.Raise(irq.VBlank)
	test.ExpectEquality(t, mem.Read16(0x04000202)&uint16(irq.VBlank), uint16(irq.VBlank))
	mem.Write16(0x04000202, uint16(irq.VBlank))
	test.ExpectEquality(t, mem.Read16(0x04000202), uint16(0))
}

func TestHaltCnt(t *testing.T) {
	mem, mc, _ := newTestMem()

	mem.Write8(0x04000301, 0x00)
	test.ExpectEquality(t, mc.halted, true)
	test.ExpectEquality(t, mc.stopped, false)

	mem.Write8(0x04000301, 0x80)
	test.ExpectEquality(t, mc.stopped, true)
}

func TestSRAM(t *testing.T) {
	mem, _, _ := newTestMem()

	mem.Write8(0x0e000000, 0x42)
	test.ExpectEquality(t, mem.Read8(0x0e000000), uint8(0x42))

	// the SRAM data bus is 8 bits: halfword writes store the low byte
	mem.Write16(0x0e000010, 0x1234)
	test.ExpectEquality(t, mem.Read8(0x0e000010), uint8(0x34))
}
