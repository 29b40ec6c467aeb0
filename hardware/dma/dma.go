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

// Package dma implements the four DMA channels of the GBA. A transfer takes
// the CPU's place on the bus: the system gives the controller the first
// chance to run on every tick and skips the CPU for as long as transfers
// consume cycles.
package dma

import (
	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory/cpubus"
)

// start timing field values.
const (
	timingImmediate = 0
	timingVBlank    = 1
	timingHBlank    = 2
	timingSpecial   = 3
)

// base of the DMA register block in the IO space. each channel occupies
// twelve bytes: source, destination, count and control.
const (
	addrDMA0SAD   = 0x0b0
	addrDMA3CntH  = 0x0de
	channelStride = 12
)

// channel is a single DMA channel.
type channel struct {
	id int

	source  uint32
	dest    uint32
	count   uint32
	control uint16

	// the working copies latched when the channel is enabled
	internalSource uint32
	internalDest   uint32
	internalCount  uint32

	running bool

	// address and count masks differ per channel
	sourceMask uint32
	destMask   uint32
	countMask  uint32
}

func (ch *channel) destControl() int {
	return int(ch.control>>5) & 0x3
}

func (ch *channel) sourceControl() int {
	return int(ch.control>>7) & 0x3
}

func (ch *channel) repeat() bool {
	return ch.control&0x0200 != 0
}

func (ch *channel) transfer32() bool {
	return ch.control&0x0400 != 0
}

func (ch *channel) startTiming() int {
	return int(ch.control>>12) & 0x3
}

func (ch *channel) irqEnabled() bool {
	return ch.control&0x4000 != 0
}

func (ch *channel) enabled() bool {
	return ch.control&0x8000 != 0
}

// soundFIFO returns true when the channel is configured as a direct-sound
// feeder. Only channels 1 and 2 qualify.
func (ch *channel) soundFIFO() bool {
	return (ch.id == 1 || ch.id == 2) && ch.startTiming() == timingSpecial
}

func (ch *channel) reset() {
	ch.source = 0
	ch.dest = 0
	ch.count = 0
	ch.control = 0
	ch.running = false
}

func (ch *channel) reload() {
	ch.internalSource = ch.source
	ch.internalDest = ch.dest
	ch.internalCount = ch.count
	if ch.internalCount == 0 {
		ch.internalCount = ch.countMask + 1
	}
}

func (ch *channel) writeControl(value uint16) {
	wasEnabled := ch.enabled()
	ch.control = value

	if !wasEnabled && ch.enabled() {
		ch.reload()
		if ch.startTiming() == timingImmediate {
			ch.running = true
		}
	}
}

// trigger starts an enabled channel waiting on a non-immediate timing.
func (ch *channel) trigger() {
	if ch.enabled() && !ch.running {
		ch.running = true
	}
}

// Controller owns the four DMA channels.
type Controller struct {
	mem cpubus.Memory
	irq *irq.Controller

	channels [4]channel
}

// NewController is the preferred method of initialisation for the DMA
// Controller.
func NewController(mem cpubus.Memory, irqc *irq.Controller) *Controller {
	ct := &Controller{mem: mem, irq: irqc}

	for i := range ct.channels {
		ch := &ct.channels[i]
		ch.id = i

		// channel 0 cannot address the game pak; only channel 3 can reach
		// SRAM and count a full 16 bits
		switch i {
		case 0:
			ch.sourceMask = 0x07ffffff
			ch.destMask = 0x07ffffff
			ch.countMask = 0x3fff
		case 3:
			ch.sourceMask = 0x0fffffff
			ch.destMask = 0x0fffffff
			ch.countMask = 0xffff
		default:
			ch.sourceMask = 0x0fffffff
			ch.destMask = 0x07ffffff
			ch.countMask = 0x3fff
		}
	}

	return ct
}

// Reset returns all four channels to their power-on state.
func (ct *Controller) Reset() {
	for i := range ct.channels {
		ct.channels[i].reset()
	}
}

// Step runs the highest priority pending transfer to completion, returning
// the cycles consumed. A return of zero means the bus is free for the CPU.
func (ct *Controller) Step() int {
	for i := range ct.channels {
		if ct.channels[i].running {
			return ct.transfer(&ct.channels[i])
		}
	}
	return 0
}

func (ct *Controller) transfer(ch *channel) int {
	cycles := 2

	unit := uint32(2)
	if ch.transfer32() {
		unit = 4
	}

	// a sound FIFO transfer is always a burst of four words to the fixed
	// FIFO address
	count := ch.internalCount
	fifo := ch.soundFIFO()
	if fifo {
		count = 4
		unit = 4
	}

	sourceDelta := addressDelta(ch.sourceControl(), unit)
	destDelta := addressDelta(ch.destControl(), unit)
	if fifo {
		destDelta = 0
	}

	for i := uint32(0); i < count; i++ {
		if unit == 4 {
			ct.mem.Write32(ch.internalDest, ct.mem.Read32(ch.internalSource))
		} else {
			ct.mem.Write16(ch.internalDest, ct.mem.Read16(ch.internalSource))
		}
		cycles += 2

		ch.internalSource = (ch.internalSource + sourceDelta) & ch.sourceMask
		if ch.destControl() != 3 {
			ch.internalDest = (ch.internalDest + destDelta) & ch.destMask
		}
	}

	ch.running = false

	if ch.repeat() && ch.startTiming() != timingImmediate {
		ch.internalCount = ch.count
		if ch.internalCount == 0 {
			ch.internalCount = ch.countMask + 1
		}
		if ch.destControl() == 3 {
			ch.internalDest = ch.dest
		}
	} else {
		ch.control &^= 0x8000
	}

	if ch.irqEnabled() {
		ct.irq.Raise(irq.DMA0 << ch.id)
	}

	return cycles
}

// addressDelta returns the per-unit address adjustment for the control
// field value: increment, decrement, fixed or increment-and-reload.
func addressDelta(control int, unit uint32) uint32 {
	switch control {
	case 0, 3:
		return unit
	case 1:
		return -unit
	}
	return 0
}

// OnVBlank triggers any channel waiting on the vblank timing. Called by the
// PPU at the start of vertical blanking.
func (ct *Controller) OnVBlank() {
	for i := range ct.channels {
		ch := &ct.channels[i]
		if ch.enabled() && ch.startTiming() == timingVBlank {
			ch.trigger()
		}
	}
}

// OnHBlank triggers any channel waiting on the hblank timing. Called by the
// PPU at the start of each horizontal blanking period.
func (ct *Controller) OnHBlank() {
	for i := range ct.channels {
		ch := &ct.channels[i]
		if ch.enabled() && ch.startTiming() == timingHBlank {
			ch.trigger()
		}
	}
}

// OnSoundFIFO triggers the feeder channel for the numbered FIFO (0 for
// FIFO A, 1 for FIFO B). Called by the APU when a FIFO runs half empty.
func (ct *Controller) OnSoundFIFO(fifo int) {
	ch := &ct.channels[fifo+1]
	if ch.enabled() && ch.soundFIFO() {
		ch.trigger()
	}
}

// ReadRegister implements the memory.IODevice interface. Only the control
// halfwords are readable; the address and count registers are write-only.
func (ct *Controller) ReadRegister(offset uint32) (uint16, bool) {
	if offset < addrDMA0SAD || offset > addrDMA3CntH {
		return 0, false
	}

	rel := offset - addrDMA0SAD
	id := int(rel / channelStride)

	if rel%channelStride == 10 {
		return ct.channels[id].control, true
	}
	return 0, true
}

// WriteRegister implements the memory.IODevice interface.
func (ct *Controller) WriteRegister(offset uint32, data uint16) bool {
	if offset < addrDMA0SAD || offset > addrDMA3CntH {
		return false
	}

	rel := offset - addrDMA0SAD
	ch := &ct.channels[rel/channelStride]

	switch rel % channelStride {
	case 0:
		ch.source = ch.source&0xffff0000 | uint32(data)
	case 2:
		ch.source = (ch.source&0x0000ffff | uint32(data)<<16) & ch.sourceMask
	case 4:
		ch.dest = ch.dest&0xffff0000 | uint32(data)
	case 6:
		ch.dest = (ch.dest&0x0000ffff | uint32(data)<<16) & ch.destMask
	case 8:
		ch.count = uint32(data) & ch.countMask
	case 10:
		ch.writeControl(data)
	}

	return true
}
