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

package dma_test

import (
	"testing"

	"github.com/jetsetilly/gopheradvance/hardware/dma"
	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
	"github.com/jetsetilly/gopheradvance/test"
)

type mockCPU struct {
	irqCount int
}

func (mc *mockCPU) TriggerIRQ() { mc.irqCount++ }
func (mc *mockCPU) Halt()       {}
func (mc *mockCPU) Stop()       {}

func newTestDMA() (*dma.Controller, *memory.GBAMemory, *mockCPU, *irq.Controller) {
	mc := &mockCPU{}
	irqc := irq.NewController(mc)
	mem := memory.NewGBAMemory()
	ct := dma.NewController(mem, irqc)
	mem.Attach(mc, irqc, ct)
	return ct, mem, mc, irqc
}

// setChannel programs a channel through the IO register interface.
func setChannel(ct *dma.Controller, channel int, source uint32, dest uint32, count uint16, control uint16) {
	base := uint32(0x0b0 + channel*12)
	ct.WriteRegister(base, uint16(source))
	ct.WriteRegister(base+2, uint16(source>>16))
	ct.WriteRegister(base+4, uint16(dest))
	ct.WriteRegister(base+6, uint16(dest>>16))
	ct.WriteRegister(base+8, count)
	ct.WriteRegister(base+10, control)
}

func TestImmediateTransfer(t *testing.T) {
	ct, mem, _, _ := newTestDMA()

	mem.Write32(0x02000000, 0x11223344)
	mem.Write32(0x02000004, 0x55667788)

	// 32-bit transfer of two words, immediate timing
	setChannel(ct, 3, 0x02000000, 0x03000000, 2, 0x8400)

	cycles := ct.Step()
	test.ExpectSuccess(t, cycles > 0)
	test.ExpectEquality(t, mem.Read32(0x03000000), uint32(0x11223344))
	test.ExpectEquality(t, mem.Read32(0x03000004), uint32(0x55667788))

	// a one-shot transfer disables the channel
	v, _ := ct.ReadRegister(0x0de)
	test.ExpectEquality(t, v&0x8000, uint16(0))
	test.ExpectEquality(t, ct.Step(), 0)
}

func TestHalfwordTransfer(t *testing.T) {
	ct, mem, _, _ := newTestDMA()

	mem.Write16(0x02000000, 0xaabb)

	setChannel(ct, 3, 0x02000000, 0x03000000, 1, 0x8000)

	ct.Step()
	test.ExpectEquality(t, mem.Read16(0x03000000), uint16(0xaabb))
}

func TestVBlankTrigger(t *testing.T) {
	ct, mem, _, _ := newTestDMA()

	mem.Write16(0x02000000, 0x1234)

	// enabled with vblank timing: nothing happens until the trigger
	setChannel(ct, 0, 0x02000000, 0x03000000, 1, 0x9000)
	test.ExpectEquality(t, ct.Step(), 0)

	ct.OnVBlank()
	test.ExpectSuccess(t, ct.Step() > 0)
	test.ExpectEquality(t, mem.Read16(0x03000000), uint16(0x1234))
}

func TestChannelPriority(t *testing.T) {
	ct, mem, _, _ := newTestDMA()

	mem.Write16(0x02000000, 0x00aa)
	mem.Write16(0x02000010, 0x00bb)

	setChannel(ct, 3, 0x02000010, 0x03000010, 1, 0x8000)
	setChannel(ct, 0, 0x02000000, 0x03000000, 1, 0x8000)

	// channel 0 has the higher priority and must complete first
	ct.Step()
	test.ExpectEquality(t, mem.Read16(0x03000000), uint16(0x00aa))
	test.ExpectEquality(t, mem.Read16(0x03000010), uint16(0))

	ct.Step()
	test.ExpectEquality(t, mem.Read16(0x03000010), uint16(0x00bb))
}

func TestTransferIRQ(t *testing.T) {
	ct, _, mc, irqc := newTestDMA()

	irqc.SetMaster(true)
	irqc.SetEnable(uint16(irq.DMA3))

	setChannel(ct, 3, 0x02000000, 0x03000000, 1, 0xc000)

	ct.Step()
	test.ExpectEquality(t, mc.irqCount, 1)
}

func TestDecrementingSource(t *testing.T) {
	ct, mem, _, _ := newTestDMA()

	mem.Write16(0x02000000, 0x0001)
	mem.Write16(0x02000002, 0x0002)

	// source decrements from 0x02000002; destination increments
	setChannel(ct, 3, 0x02000002, 0x03000000, 2, 0x8080)

	ct.Step()
	test.ExpectEquality(t, mem.Read16(0x03000000), uint16(0x0002))
	test.ExpectEquality(t, mem.Read16(0x03000002), uint16(0x0001))
}
