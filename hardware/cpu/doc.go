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

// Package cpu emulates the ARM7TDMI found in the Game Boy Advance.
//
// The CPU executes both the 32-bit ARM and the 16-bit Thumb instruction
// sets, selected by the T bit of the CPSR. Register logic, including the
// banked registers of the seven processor modes, is implemented by the
// registers sub-package.
//
// There is no real pipeline. The effect of the three-stage pipeline that is
// visible to programs - reads of R15 yielding the instruction address plus
// eight (ARM) or plus four (Thumb) - is produced by advancing the PC
// immediately after fetch and biasing in-instruction reads of R15.
//
// Cycle counts returned by Step() are approximations: a fixed cost per
// instruction class rather than a model of memory wait states.
package cpu
