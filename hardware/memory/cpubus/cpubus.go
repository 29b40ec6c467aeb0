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

// Package cpubus defines the operations for the memory system when accessed
// from the CPU (and from the DMA controller, which takes the CPU's place on
// the bus during a transfer).
package cpubus

// Memory defines the operations the CPU requires of the memory system. All
// values are little-endian. Reads and writes never fail from the CPU's point
// of view; unmapped addresses are the bus's responsibility to substitute
// with open-bus values.
//
// Read32 returns the aligned word at the address; rotation of misaligned
// word loads is performed by the CPU, not the bus.
type Memory interface {
	Read8(address uint32) uint8
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write8(address uint32, data uint8)
	Write16(address uint32, data uint16)
	Write32(address uint32, data uint32)
}
