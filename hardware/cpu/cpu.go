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

package cpu

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopheradvance/hardware/cpu/registers"
	"github.com/jetsetilly/gopheradvance/hardware/memory/cpubus"
)

// The fixed exception vectors of the ARM7TDMI.
const (
	VectorReset         = 0x00000000
	VectorUndefined     = 0x00000004
	VectorSWI           = 0x00000008
	VectorPrefetchAbort = 0x0000000c
	VectorDataAbort     = 0x00000010
	VectorIRQ           = 0x00000018
	VectorFIQ           = 0x0000001c
)

// CPU implements the ARM7TDMI found in the Game Boy Advance.
type CPU struct {
	mem cpubus.Memory

	Regs *registers.Registers

	// the two instruction set decoders. concrete types called through
	// monomorphic methods; which one runs is decided by the T bit
	arm   armDecoder
	thumb thumbDecoder

	// Halted is set by a write to HALTCNT and cleared by a serviced IRQ.
	// Stopped is the deeper sleep state; only a reset clears it. Entering it
	// also sets Halted, so a serviced IRQ resumes execution
	Halted  bool
	Stopped bool

	// total number of cycles consumed since the last reset
	Cycles uint64

	// the address the executing instruction was fetched from and the
	// instruction itself. exception return addresses and the prefetch-PC
	// bias are computed from currentPC
	currentPC          uint32
	currentInstruction uint32
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(mem cpubus.Memory) *CPU {
	mc := &CPU{
		mem:  mem,
		Regs: registers.NewRegisters(),
	}
	mc.arm.mc = mc
	mc.thumb.mc = mc
	return mc
}

// Reset reinitialises the register file and clears the halt state.
func (mc *CPU) Reset() {
	mc.Regs.Reset()
	mc.Cycles = 0
	mc.Halted = false
	mc.Stopped = false
	mc.currentPC = 0
	mc.currentInstruction = 0
}

// Step fetches and executes one instruction, returning the number of cycles
// consumed. The count is always at least one. A halted CPU consumes one
// cycle doing nothing.
func (mc *CPU) Step() int {
	if mc.Halted {
		return 1
	}

	mc.currentPC = mc.Regs.PC()

	var cycles int

	if mc.Regs.Status.Thumb {
		ins := mc.mem.Read16(mc.currentPC)

		// advancing the PC before execution is what makes reads of R15
		// during execution yield the prefetch value
		mc.Regs.SetPC(mc.currentPC + 2)
		mc.currentInstruction = uint32(ins)

		cycles = mc.thumb.execute(ins)
	} else {
		ins := mc.mem.Read32(mc.currentPC)
		mc.Regs.SetPC(mc.currentPC + 4)
		mc.currentInstruction = ins

		if mc.Regs.CheckCondition(ins >> 28) {
			cycles = mc.arm.execute(ins)
		} else {
			cycles = 1
		}
	}

	mc.Cycles += uint64(cycles)

	return cycles
}

// prefetchPC returns the value of R15 as seen by the executing instruction:
// the instruction address plus eight in ARM state, plus four in Thumb state.
func (mc *CPU) prefetchPC() uint32 {
	if mc.Regs.Status.Thumb {
		return mc.currentPC + 4
	}
	return mc.currentPC + 8
}

// TriggerException enters an exception: the CPSR is saved into the new
// mode's SPSR, IRQs are masked (and FIQs on FIQ entry or reset), the T bit
// is cleared and execution continues at the vector in ARM state.
//
// The link register of the new mode receives the current value of the PC.
// The caller is responsible for the PC holding the correct return address
// before the call.
func (mc *CPU) TriggerException(vector uint32, newMode registers.Mode) {
	mc.Regs.SwitchMode(newMode, true)

	mc.Regs.Status.InterruptDisable = true
	if newMode == registers.FIQ || vector == VectorReset {
		mc.Regs.Status.FastInterruptDisable = true
	}
	mc.Regs.Status.Thumb = false

	mc.Regs.SetLR(mc.Regs.PC())
	mc.Regs.SetPC(vector)
}

// TriggerIRQ enters the IRQ exception if IRQs are not masked. A halted CPU
// is woken.
//
// The PC has already been advanced past the interrupted instruction by the
// prefetch step, so it is the correct value for LR_irq as-is.
func (mc *CPU) TriggerIRQ() {
	if mc.Regs.Status.InterruptDisable {
		return
	}
	mc.TriggerException(VectorIRQ, registers.IRQ)
	mc.Halted = false
}

// TriggerSWI enters the Supervisor exception. LR_svc receives the address
// of the instruction following the SWI.
func (mc *CPU) TriggerSWI() {
	mc.TriggerException(VectorSWI, registers.Supervisor)
}

// Halt puts the CPU into the low-power state. Any serviced IRQ wakes it.
func (mc *CPU) Halt() {
	mc.Halted = true
}

// Stop puts the CPU into the very-low-power state. The Stopped flag is
// cleared only by Reset; the CPU is also halted, and a serviced IRQ resumes
// execution as it does for Halt.
func (mc *CPU) Stop() {
	mc.Stopped = true
	mc.Halted = true
}

func (mc *CPU) String() string {
	s := strings.Builder{}
	s.WriteString(mc.Regs.String())
	s.WriteString(fmt.Sprintf("Cycles: %d | Halted: %v | Stopped: %v\n", mc.Cycles, mc.Halted, mc.Stopped))
	if mc.Regs.Status.Thumb {
		s.WriteString(fmt.Sprintf("Last: %08x: %04x (THUMB)", mc.currentPC, mc.currentInstruction))
	} else {
		s.WriteString(fmt.Sprintf("Last: %08x: %08x (ARM)", mc.currentPC, mc.currentInstruction))
	}
	return s.String()
}
