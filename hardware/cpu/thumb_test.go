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

package cpu_test

import (
	"testing"

	"github.com/jetsetilly/gopheradvance/hardware/cpu"
	"github.com/jetsetilly/gopheradvance/test"
)

// newThumbCPU returns a CPU in Thumb state with the PC in EWRAM, where the
// tests lay out their instructions.
func newThumbCPU() (*cpu.CPU, *mockMem) {
	mc, mem := newTestCPU()
	mc.Regs.Status.Thumb = true
	mc.Regs.SetPC(0x02000000)
	return mc, mem
}

func TestThumbMoveShifted(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x0088, // LSL R0, R1, #2
		0x0849, // LSR R1, R1, #1
		0x1011, // ASR R1, R2, #0 (means #32)
	)
	mc.Regs.Set(1, 0x80000003)
	mc.Regs.Set(2, 0x80000000)

	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 1)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x0000000c))
	test.ExpectEquality(t, mc.Regs.Status.Carry, false)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x40000001))
	test.ExpectEquality(t, mc.Regs.Status.Carry, true)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0xffffffff))
	test.ExpectEquality(t, mc.Regs.Status.Negative, true)
}

func TestThumbAddSubtract(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x18c2, // ADD R2, R0, R3
		0x1e53, // SUB R3, R2, #1
	)
	mc.Regs.Set(0, 10)
	mc.Regs.Set(3, 20)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(2), uint32(30))
	test.ExpectEquality(t, mc.Regs.Status.Carry, false)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(3), uint32(29))
	test.ExpectEquality(t, mc.Regs.Status.Carry, true)
}

func TestThumbImmediateOps(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x207f, // MOV R0, #0x7f
		0x280a, // CMP R0, #10
		0x3005, // ADD R0, #5
		0x3884, // SUB R0, #0x84
	)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x7f))

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Status.Carry, true)
	test.ExpectEquality(t, mc.Regs.Status.Zero, false)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x84))

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0))
	test.ExpectEquality(t, mc.Regs.Status.Zero, true)
}

func TestThumbALUOps(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x4008, // AND R0, R1
		0x4051, // EOR R1, R2
		0x4391, // BIC R1, R2
		0x43ca, // MVN R2, R1
		0x4253, // NEG R3, R2
		0x4361, // MUL R1, R4
	)
	mc.Regs.Set(0, 0xff00ff00)
	mc.Regs.Set(1, 0x0ff00ff0)
	mc.Regs.Set(2, 0x00000ff0)

	step(t, mc) // AND
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x0f000f00))

	step(t, mc) // EOR
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x0ff00000))

	step(t, mc) // BIC
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x0ff00000))

	step(t, mc) // MVN
	test.ExpectEquality(t, mc.Regs.Get(2), uint32(0xf00fffff))

	step(t, mc) // NEG
	test.ExpectEquality(t, mc.Regs.Get(3), uint32(0x0ff00001))

	mc.Regs.Set(1, 6)
	mc.Regs.Set(4, 7)
	cycles := step(t, mc) // MUL
	test.ExpectEquality(t, cycles, 2)
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(42))
}

func TestThumbShiftByRegister(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x4088, // LSL R0, R1
		0x40d0, // LSR R0, R2
	)
	mc.Regs.Set(0, 1)
	mc.Regs.Set(1, 33) // a shift of 32 or more zeroes the register

	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 2)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0))
	test.ExpectEquality(t, mc.Regs.Status.Carry, false)

	mc.Regs.Set(0, 0x80000000)
	mc.Regs.Set(2, 0) // a register shift of zero leaves everything alone
	mc.Regs.Status.Carry = true
	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x80000000))
	test.ExpectEquality(t, mc.Regs.Status.Carry, true)
}

func TestThumbHiRegisterOps(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x4668, // MOV R0, R13
		0x4485, // ADD R13, R0
		0x45e9, // CMP R9, R13
	)

	sp := mc.Regs.SP()

	// flags must not change on hi-register ADD/MOV
	mc.Regs.Status.Zero = true

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(0), sp)
	test.ExpectEquality(t, mc.Regs.Status.Zero, true)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.SP(), sp*2)
	test.ExpectEquality(t, mc.Regs.Status.Zero, true)

	mc.Regs.Set(9, mc.Regs.SP())
	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Status.Zero, true)
	test.ExpectEquality(t, mc.Regs.Status.Carry, true)
}

func TestThumbBX(t *testing.T) {
	mc, mem := newThumbCPU()

	// BX R1 with bit 0 clear returns to ARM state
	mem.putThumb(0x02000000, 0x4708)
	mc.Regs.Set(1, 0x08000000)

	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.Status.Thumb, false)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0x08000000))
}

func TestThumbPCRelativeLoad(t *testing.T) {
	mc, mem := newThumbCPU()

	// LDR R0, [PC, #4]. the PC operand is the prefetch value word-aligned
	mem.putThumb(0x02000000, 0x4801)
	mem.Write32(0x02000008, 0xcafebabe)

	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0xcafebabe))
}

func TestThumbLoadStore(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x5088, // STR R0, [R1, R2]
		0x58d3, // LDR R3, [R2, R3]
		0x7008, // STRB R0, [R1]
		0x8808, // LDRH R0, [R1]
	)
	mc.Regs.Set(0, 0x12345678)
	mc.Regs.Set(1, 0x02001000)
	mc.Regs.Set(2, 0x00000004)

	cycles := step(t, mc) // STR
	test.ExpectEquality(t, cycles, 2)
	test.ExpectEquality(t, mem.Read32(0x02001004), uint32(0x12345678))

	mc.Regs.Set(3, 0x02001000)
	cycles = step(t, mc) // LDR
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.Get(3), uint32(0x12345678))

	step(t, mc) // STRB
	test.ExpectEquality(t, mem.Read8(0x02001000), uint8(0x78))

	step(t, mc) // LDRH
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x0078))
}

func TestThumbSPRelative(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0x9001, // STR R0, [SP, #4]
		0x9901, // LDR R1, [SP, #4]
		0xb082, // SUB SP, #8
		0xb002, // ADD SP, #8
	)
	mc.Regs.Set(0, 0x99887766)
	sp := mc.Regs.SP()

	step(t, mc)
	test.ExpectEquality(t, mem.Read32(sp+4), uint32(0x99887766))

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x99887766))

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.SP(), sp-8)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.SP(), sp)
}

func TestThumbPushPop(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0xb503, // PUSH {R0,R1,LR}
		0xbd03, // POP {R0,R1,PC}
	)
	mc.Regs.Set(0, 0x11)
	mc.Regs.Set(1, 0x22)
	mc.Regs.SetLR(0xaaaaaaaa)

	sp := mc.Regs.SP()
	test.DemandEquality(t, sp, uint32(0x03007f00))

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.SP(), uint32(0x03007ef4))
	test.ExpectEquality(t, mem.Read32(0x03007ef4), uint32(0x11))
	test.ExpectEquality(t, mem.Read32(0x03007ef8), uint32(0x22))
	test.ExpectEquality(t, mem.Read32(0x03007efc), uint32(0xaaaaaaaa))

	// clobber the registers before popping them back
	mc.Regs.Set(0, 0)
	mc.Regs.Set(1, 0)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.SP(), uint32(0x03007f00))
	test.ExpectEquality(t, mc.Regs.Get(0), uint32(0x11))
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x22))

	// bit 0 of the popped PC was clear: ARM state
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0xaaaaaaaa))
	test.ExpectEquality(t, mc.Regs.Status.Thumb, false)
}

func TestThumbPopPCThumbBit(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0xb503, // PUSH {R0,R1,LR}
		0xbd03, // POP {R0,R1,PC}
	)
	mc.Regs.SetLR(0xaaaaaaab)

	step(t, mc)
	step(t, mc)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0xaaaaaaaa))
	test.ExpectEquality(t, mc.Regs.Status.Thumb, true)
}

func TestThumbMultipleLoadStore(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000,
		0xc10c, // STMIA R1!, {R2,R3}
		0xc930, // LDMIA R1!, {R4,R5}
	)
	mc.Regs.Set(1, 0x02002000)
	mc.Regs.Set(2, 0x1111)
	mc.Regs.Set(3, 0x2222)

	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x02002008))
	test.ExpectEquality(t, mem.Read32(0x02002000), uint32(0x1111))

	mc.Regs.Set(1, 0x02002000)
	step(t, mc)
	test.ExpectEquality(t, mc.Regs.Get(4), uint32(0x1111))
	test.ExpectEquality(t, mc.Regs.Get(5), uint32(0x2222))
	test.ExpectEquality(t, mc.Regs.Get(1), uint32(0x02002008))
}

func TestThumbConditionalBranch(t *testing.T) {
	mc, mem := newThumbCPU()

	// BEQ +4 with Z clear: not taken
	mem.putThumb(0x02000000, 0xd002)
	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 1)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0x02000002))

	// BEQ +4 with Z set: target is prefetch + offset
	mc.Regs.Status.Zero = true
	mem.putThumb(0x02000002, 0xd002)
	cycles = step(t, mc)
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0x0200000a))
}

func TestThumbUnconditionalBranch(t *testing.T) {
	mc, mem := newThumbCPU()

	// B -2 (branch to self)
	mem.putThumb(0x02000000, 0xe7fe)
	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0x02000000))
}

func TestThumbLongBranchLink(t *testing.T) {
	mc, mem := newThumbCPU()

	// BL +0x40: the offset is split over the two halfwords
	mem.putThumb(0x02000000,
		0xf000, // BL high: LR = PC+4 + (0 << 12)
		0xf820, // BL low: target = LR + (0x20 << 1)
	)

	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 1)
	test.ExpectEquality(t, mc.Regs.LR(), uint32(0x02000004))

	cycles = step(t, mc)
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(0x02000044))

	// the return address has the Thumb bit set
	test.ExpectEquality(t, mc.Regs.LR(), uint32(0x02000004|1))
}

func TestThumbSWI(t *testing.T) {
	mc, mem := newThumbCPU()

	mem.putThumb(0x02000000, 0xdf01) // SWI #1

	cycles := step(t, mc)
	test.ExpectEquality(t, cycles, 3)
	test.ExpectEquality(t, mc.Regs.Status.Thumb, false)
	test.ExpectEquality(t, mc.Regs.PC(), uint32(cpu.VectorSWI))
	test.ExpectEquality(t, mc.Regs.LR(), uint32(0x02000002))
}
