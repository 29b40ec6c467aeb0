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

package hardware

import (
	"github.com/jetsetilly/gopheradvance/hardware/apu"
	"github.com/jetsetilly/gopheradvance/hardware/cpu"
	"github.com/jetsetilly/gopheradvance/hardware/dma"
	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
	"github.com/jetsetilly/gopheradvance/hardware/ppu"
	"github.com/jetsetilly/gopheradvance/hardware/timer"
)

// CPUFrequency is the clock rate of the ARM7TDMI in the GBA.
const CPUFrequency = 16777216

// CyclesPerFrame is the number of CPU cycles in one video frame.
const CyclesPerFrame = ppu.CyclesPerFrame

// GBA is the main container for the emulated components of the Game Boy
// Advance.
type GBA struct {
	CPU    *cpu.CPU
	Mem    *memory.GBAMemory
	PPU    *ppu.PPU
	APU    *apu.APU
	Timers *timer.Controller
	DMA    *dma.Controller
	IRQ    *irq.Controller

	// TotalCycles is the number of cycles consumed since the last reset,
	// including cycles spent by DMA transfers
	TotalCycles uint64

	// FrameCount is the number of complete frames since the last reset
	FrameCount int
}

// NewGBA creates a new GBA and everything associated with the hardware.
func NewGBA() *GBA {
	gba := &GBA{}

	gba.Mem = memory.NewGBAMemory()
	gba.CPU = cpu.NewCPU(gba.Mem)
	gba.IRQ = irq.NewController(gba.CPU)
	gba.PPU = ppu.NewPPU(gba.Mem, gba.IRQ)
	gba.APU = apu.NewAPU(gba.Mem, gba.IRQ)
	gba.Timers = timer.NewController(gba.IRQ)
	gba.DMA = dma.NewController(gba.Mem, gba.IRQ)

	// connect the components that talk to one another directly: the bus
	// dispatches IO registers, the PPU triggers blanking DMA, the timers
	// clock the direct-sound FIFOs and the FIFOs request DMA refills
	gba.Mem.Attach(gba.CPU, gba.IRQ, gba.PPU, gba.APU, gba.Timers, gba.DMA)
	gba.PPU.SetBlankTrigger(gba.DMA)
	gba.Timers.SetAudio(gba.APU)
	gba.APU.SetFIFORequest(gba.DMA)

	return gba
}

// Reset emulates the power cycling of the console. Loaded BIOS and ROM
// images are retained.
func (gba *GBA) Reset() {
	gba.TotalCycles = 0
	gba.FrameCount = 0

	gba.Mem.Reset()
	gba.CPU.Reset()
	gba.IRQ.Reset()
	gba.PPU.Reset()
	gba.APU.Reset()
	gba.Timers.Reset()
	gba.DMA.Reset()
}
