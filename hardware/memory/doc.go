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

// Package memory implements the memory bus of the GBA. The bus owns every
// addressable area - BIOS, the two work RAMs, the video memories, the game
// pak ROM and SRAM, and the IO register space - and maps the CPU's (and
// DMA's) reads and writes to the correct area by the top byte of the
// address.
//
// Registers belonging to a peripheral are dispatched through the IODevice
// interface; the peripherals are attached to the bus by the system after
// construction. Reads of unmapped addresses return open-bus values rather
// than failing.
package memory
