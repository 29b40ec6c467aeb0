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

// Package registers implements the register file of the ARM7TDMI: the
// sixteen general purpose registers with their mode-dependent banking, the
// CPSR and the five SPSRs.
//
// The condition flags and control bits of the CPSR are kept unpacked in the
// Status type. Nearly every ALU instruction touches the flags so the
// unpacked form is the authoritative one; the packed CPSR word is
// materialised only when it crosses the register file boundary (MRS, MSR,
// SPSR save on exception entry, state dumps).
package registers
