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

package registers

import (
	"fmt"
	"strings"
)

// initial stack pointer values, as set up by the GBA BIOS.
const (
	resetSP    = 0x03007f00
	resetSPIRQ = 0x03007fa0
	resetSPSVC = 0x03007fe0
)

// ResetPC is the start of the game pak ROM region, where execution begins
// after a reset.
const ResetPC = 0x08000000

// Registers is the register file of the ARM7TDMI. The thirty-one general
// purpose registers and six status registers are stored in flat arrays and
// routed through Get() and Set() according to the current mode.
type Registers struct {
	// R0-R7. never banked
	common [8]uint32

	// R8-R12. one bank for FIQ and one bank shared by every other mode
	low   [5]uint32
	lowFIQ [5]uint32

	// R13 (SP) and R14 (LR). six banks; System shares the User entry
	r13 [numBanks]uint32
	r14 [numBanks]uint32

	// R15 (PC). never banked
	r15 uint32

	// saved program status registers. entry 0 (User/System) is unused
	spsr [numBanks]uint32

	// the mode field of the CPSR, kept decoded. always a valid mode
	mode Mode

	// the unpacked CPSR flags and control bits
	Status Status
}

// NewRegisters is the preferred method of initialisation for the Registers
// type.
func NewRegisters() *Registers {
	r := &Registers{}
	r.Reset()
	return r
}

// Reset returns all registers to their state at power-on: zeroed general
// purpose registers except for the BIOS stack pointers; System mode with
// IRQs and FIQs disabled; PC at the start of the game pak ROM.
func (r *Registers) Reset() {
	*r = Registers{}

	r.r13[User.bank()] = resetSP
	r.r13[IRQ.bank()] = resetSPIRQ
	r.r13[Supervisor.bank()] = resetSPSVC

	r.mode = System
	r.Status = Status{
		InterruptDisable:     true,
		FastInterruptDisable: true,
	}

	r.r15 = ResetPC
}

// Mode returns the current processor mode.
func (r *Registers) Mode() Mode {
	return r.mode
}

// Get returns the value of the numbered register as seen from the current
// mode.
func (r *Registers) Get(reg int) uint32 {
	switch {
	case reg < 8:
		return r.common[reg]
	case reg < 13:
		if r.mode == FIQ {
			return r.lowFIQ[reg-8]
		}
		return r.low[reg-8]
	case reg == 13:
		return r.r13[r.mode.bank()]
	case reg == 14:
		return r.r14[r.mode.bank()]
	}
	return r.r15
}

// Set writes the value of the numbered register as seen from the current
// mode. Writes to R15 are aligned according to the T bit: bit 0 is dropped
// in Thumb state, bits 0-1 in ARM state.
func (r *Registers) Set(reg int, value uint32) {
	switch {
	case reg < 8:
		r.common[reg] = value
	case reg < 13:
		if r.mode == FIQ {
			r.lowFIQ[reg-8] = value
		} else {
			r.low[reg-8] = value
		}
	case reg == 13:
		r.r13[r.mode.bank()] = value
	case reg == 14:
		r.r14[r.mode.bank()] = value
	default:
		if r.Status.Thumb {
			r.r15 = value &^ 0x1
		} else {
			r.r15 = value &^ 0x3
		}
	}
}

// PC returns the value of R15.
func (r *Registers) PC() uint32 {
	return r.r15
}

// SetPC writes R15, applying the alignment mask for the current state.
func (r *Registers) SetPC(value uint32) {
	r.Set(15, value)
}

// SP returns the value of R13 for the current mode.
func (r *Registers) SP() uint32 {
	return r.Get(13)
}

// SetSP writes R13 for the current mode.
func (r *Registers) SetSP(value uint32) {
	r.Set(13, value)
}

// LR returns the value of R14 for the current mode.
func (r *Registers) LR() uint32 {
	return r.Get(14)
}

// SetLR writes R14 for the current mode.
func (r *Registers) SetLR(value uint32) {
	r.Set(14, value)
}

// CPSR returns the packed CPSR, materialised from the unpacked Status and
// the mode field.
func (r *Registers) CPSR() uint32 {
	return r.Status.pack() | uint32(r.mode)
}

// SetCPSR writes the packed CPSR, re-deriving the unpacked Status and the
// mode field. A value carrying an invalid mode encoding leaves the mode
// unchanged, mirroring how the hardware's behaviour is undefined; the mode
// field of the CPSR is always valid as a result.
func (r *Registers) SetCPSR(value uint32) {
	r.Status.unpack(value)
	if m := Mode(value & 0x1f); m.IsValid() {
		r.mode = m
	}
}

// SPSR returns the saved program status register of the current mode.
// Reading the SPSR in User or System mode yields the current CPSR.
func (r *Registers) SPSR() uint32 {
	if !r.mode.HasSPSR() {
		return r.CPSR()
	}
	return r.spsr[r.mode.bank()]
}

// SetSPSR writes the saved program status register of the current mode.
// A no-op in User and System modes.
func (r *Registers) SetSPSR(value uint32) {
	if r.mode.HasSPSR() {
		r.spsr[r.mode.bank()] = value
	}
}

// SetFlagsNZ sets the Negative and Zero flags from the result of an
// operation.
func (r *Registers) SetFlagsNZ(result uint32) {
	r.Status.Negative = result&0x80000000 != 0
	r.Status.Zero = result == 0
}

// SetFlagsNZCV sets all four condition flags.
func (r *Registers) SetFlagsNZCV(result uint32, carry bool, overflow bool) {
	r.SetFlagsNZ(result)
	r.Status.Carry = carry
	r.Status.Overflow = overflow
}

// CheckCondition evaluates the 4-bit condition field of an ARM instruction
// (or a Thumb conditional branch) against the current flags. The reserved
// NV condition (0xf) evaluates as true; it is never emitted by a correct
// program.
func (r *Registers) CheckCondition(cond uint32) bool {
	n := r.Status.Negative
	z := r.Status.Zero
	c := r.Status.Carry
	v := r.Status.Overflow

	switch cond & 0xf {
	case 0x0: // EQ
		return z
	case 0x1: // NE
		return !z
	case 0x2: // CS/HS
		return c
	case 0x3: // CC/LO
		return !c
	case 0x4: // MI
		return n
	case 0x5: // PL
		return !n
	case 0x6: // VS
		return v
	case 0x7: // VC
		return !v
	case 0x8: // HI
		return c && !z
	case 0x9: // LS
		return !c || z
	case 0xa: // GE
		return n == v
	case 0xb: // LT
		return n != v
	case 0xc: // GT
		return !z && n == v
	case 0xd: // LE
		return z || n != v
	}

	// AL and the reserved NV
	return true
}

// SwitchMode changes the processor mode. If saveCPSR is true and the new
// mode has an SPSR, the current packed CPSR is copied into it first.
//
// The I, F and T bits are not touched; exception entry adjusts those
// itself. An invalid mode value is silently ignored.
func (r *Registers) SwitchMode(newMode Mode, saveCPSR bool) {
	if !newMode.IsValid() {
		return
	}

	if saveCPSR && newMode.HasSPSR() {
		r.spsr[newMode.bank()] = r.CPSR()
	}

	r.mode = newMode
}

// RestoreCPSRFromSPSR copies the current mode's SPSR into the CPSR,
// re-deriving the flags and mode. This is the exception return operation.
// A no-op in User and System modes, which have no SPSR.
func (r *Registers) RestoreCPSRFromSPSR() {
	if r.mode.HasSPSR() {
		r.SetCPSR(r.spsr[r.mode.bank()])
	}
}

func (r *Registers) String() string {
	s := strings.Builder{}

	state := "ARM"
	if r.Status.Thumb {
		state = "THUMB"
	}
	s.WriteString(fmt.Sprintf("Mode: %s | %s\n", r.mode, state))
	s.WriteString(fmt.Sprintf("CPSR: %08x | %s\n", r.CPSR(), r.Status))

	for i := 0; i < 16; i++ {
		s.WriteString(fmt.Sprintf("R%-2d=%08x", i, r.Get(i)))
		if i%4 == 3 {
			s.WriteString("\n")
		} else {
			s.WriteString("  ")
		}
	}

	return s.String()
}
