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

// Step the emulation by one unit of work: either a pending DMA transfer or
// one CPU instruction. The cycles consumed are fed to the PPU, APU and
// timers, in that order, so that everything observes the same passage of
// time. Returns the number of cycles consumed.
//
// DMA has bus priority: while a transfer is pending the CPU is skipped
// entirely.
func (gba *GBA) Step() int {
	cycles := gba.DMA.Step()

	if cycles == 0 {
		cycles = gba.CPU.Step()
	}

	gba.PPU.Step(cycles)
	gba.APU.Step(cycles)
	gba.Timers.Step(cycles)

	// an interrupt raised while masked is delivered as soon as the mask is
	// lifted
	gba.IRQ.Check()

	gba.TotalCycles += uint64(cycles)

	return cycles
}
