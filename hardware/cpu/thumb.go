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
	"math/bits"

	"github.com/jetsetilly/gopheradvance/hardware/memory/cpubus"
)

// thumbDecoder decodes and executes the 16-bit Thumb instruction set. The
// nineteen encoding formats are distinguished by their high-bit prefixes.
type thumbDecoder struct {
	mc *CPU
}

func (d *thumbDecoder) execute(ins uint16) int {
	switch {
	case ins>>13 == 0b000:
		if (ins>>11)&0x3 != 0b11 {
			return d.moveShifted(ins)
		}
		return d.addSubtract(ins)

	case ins>>13 == 0b001:
		return d.immediateOp(ins)

	case ins>>10 == 0b010000:
		return d.aluOp(ins)

	case ins>>10 == 0b010001:
		return d.hiRegisterOp(ins)

	case ins>>11 == 0b01001:
		return d.pcRelativeLoad(ins)

	case ins>>12 == 0b0101:
		if ins&(1<<9) == 0 {
			return d.loadStoreRegister(ins)
		}
		return d.loadStoreSignExtended(ins)

	case ins>>13 == 0b011:
		return d.loadStoreImmediate(ins)

	case ins>>12 == 0b1000:
		return d.loadStoreHalfword(ins)

	case ins>>12 == 0b1001:
		return d.spRelativeLoadStore(ins)

	case ins>>12 == 0b1010:
		return d.loadAddress(ins)

	case ins>>8 == 0b10110000:
		return d.adjustSP(ins)

	case ins>>12 == 0b1011 && (ins>>9)&0x3 == 0b10:
		return d.pushPop(ins)

	case ins>>12 == 0b1100:
		return d.multipleLoadStore(ins)

	case ins>>12 == 0b1101:
		cond := (ins >> 8) & 0xf
		if cond == 0xf {
			return d.softwareInterrupt(ins)
		}
		if cond < 0xe {
			return d.conditionalBranch(ins)
		}

	case ins>>11 == 0b11100:
		return d.unconditionalBranch(ins)

	case ins>>12 == 0b1111:
		return d.longBranchLink(ins)
	}

	// unrecognised encoding
	return 1
}

// format 1: LSL/LSR/ASR by 5-bit immediate.
func (d *thumbDecoder) moveShifted(ins uint16) int {
	reg := d.mc.Regs

	op := int((ins >> 11) & 0x3)
	amount := int((ins >> 6) & 0x1f)
	rs := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	result, carry := applyShift(reg.Get(rs), op, amount, reg.Status.Carry, true)

	reg.Set(rd, result)
	reg.SetFlagsNZ(result)
	reg.Status.Carry = carry

	return 1
}

// format 2: ADD/SUB with 3-bit register or immediate.
func (d *thumbDecoder) addSubtract(ins uint16) int {
	reg := d.mc.Regs

	rs := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	operand := uint32((ins >> 6) & 0x7)
	if ins&(1<<10) == 0 {
		operand = reg.Get(int(operand))
	}

	var result uint32
	var carry, overflow bool
	if ins&(1<<9) != 0 {
		result, carry, overflow = aluSub(reg.Get(rs), operand, true)
	} else {
		result, carry, overflow = aluAdd(reg.Get(rs), operand, false)
	}

	reg.Set(rd, result)
	reg.SetFlagsNZCV(result, carry, overflow)

	return 1
}

// format 3: MOV/CMP/ADD/SUB with 8-bit immediate.
func (d *thumbDecoder) immediateOp(ins uint16) int {
	reg := d.mc.Regs

	rd := int((ins >> 8) & 0x7)
	imm := uint32(ins & 0xff)

	rdValue := reg.Get(rd)

	switch (ins >> 11) & 0x3 {
	case 0b00: // MOV
		reg.Set(rd, imm)
		reg.SetFlagsNZ(imm)
	case 0b01: // CMP
		result, carry, overflow := aluSub(rdValue, imm, true)
		reg.SetFlagsNZCV(result, carry, overflow)
	case 0b10: // ADD
		result, carry, overflow := aluAdd(rdValue, imm, false)
		reg.Set(rd, result)
		reg.SetFlagsNZCV(result, carry, overflow)
	case 0b11: // SUB
		result, carry, overflow := aluSub(rdValue, imm, true)
		reg.Set(rd, result)
		reg.SetFlagsNZCV(result, carry, overflow)
	}

	return 1
}

// format 4: the sixteen ALU operations between low registers.
func (d *thumbDecoder) aluOp(ins uint16) int {
	reg := d.mc.Regs

	op := (ins >> 6) & 0xf
	rs := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	rdValue := reg.Get(rd)
	rsValue := reg.Get(rs)

	cycles := 1

	switch op {
	case 0x0: // AND
		result := rdValue & rsValue
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)

	case 0x1: // EOR
		result := rdValue ^ rsValue
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)

	case 0x2, 0x3, 0x4, 0x7: // LSL, LSR, ASR, ROR by register
		shiftType := shiftLSL
		switch op {
		case 0x3:
			shiftType = shiftLSR
		case 0x4:
			shiftType = shiftASR
		case 0x7:
			shiftType = shiftROR
		}

		amount := int(rsValue & 0xff)
		result, carry := applyShift(rdValue, shiftType, amount, reg.Status.Carry, false)
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)
		reg.Status.Carry = carry
		cycles = 2

	case 0x5: // ADC
		result, carry, overflow := aluAdd(rdValue, rsValue, reg.Status.Carry)
		reg.Set(rd, result)
		reg.SetFlagsNZCV(result, carry, overflow)

	case 0x6: // SBC
		result, carry, overflow := aluSub(rdValue, rsValue, reg.Status.Carry)
		reg.Set(rd, result)
		reg.SetFlagsNZCV(result, carry, overflow)

	case 0x8: // TST
		reg.SetFlagsNZ(rdValue & rsValue)

	case 0x9: // NEG
		result, carry, overflow := aluSub(0, rsValue, true)
		reg.Set(rd, result)
		reg.SetFlagsNZCV(result, carry, overflow)

	case 0xa: // CMP
		result, carry, overflow := aluSub(rdValue, rsValue, true)
		reg.SetFlagsNZCV(result, carry, overflow)

	case 0xb: // CMN
		result, carry, overflow := aluAdd(rdValue, rsValue, false)
		reg.SetFlagsNZCV(result, carry, overflow)

	case 0xc: // ORR
		result := rdValue | rsValue
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)

	case 0xd: // MUL
		result := rdValue * rsValue
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)
		cycles = 2

	case 0xe: // BIC
		result := rdValue &^ rsValue
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)

	case 0xf: // MVN
		result := ^rsValue
		reg.Set(rd, result)
		reg.SetFlagsNZ(result)
	}

	return cycles
}

// format 5: ADD/CMP/MOV/BX with high register operands.
func (d *thumbDecoder) hiRegisterOp(ins uint16) int {
	reg := d.mc.Regs

	rs := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	// H bits extend the register numbers to the full range
	if ins&(1<<6) != 0 {
		rs += 8
	}
	if ins&(1<<7) != 0 {
		rd += 8
	}

	rsValue := reg.Get(rs)

	switch (ins >> 8) & 0x3 {
	case 0b00: // ADD. flags not updated
		reg.Set(rd, reg.Get(rd)+rsValue)
		if rd == 15 {
			return 3
		}

	case 0b01: // CMP
		result, carry, overflow := aluSub(reg.Get(rd), rsValue, true)
		reg.SetFlagsNZCV(result, carry, overflow)

	case 0b10: // MOV. flags not updated
		reg.Set(rd, rsValue)
		if rd == 15 {
			return 3
		}

	case 0b11: // BX
		reg.Status.Thumb = rsValue&1 != 0
		reg.SetPC(rsValue)
		return 3
	}

	return 1
}

// format 6: PC-relative load. the PC operand is word-aligned.
func (d *thumbDecoder) pcRelativeLoad(ins uint16) int {
	rd := int((ins >> 8) & 0x7)
	imm := uint32(ins&0xff) << 2

	address := d.mc.prefetchPC()&^0x3 + imm
	d.mc.Regs.Set(rd, d.mc.mem.Read32(address))

	return 3
}

// format 7: load/store with register offset.
func (d *thumbDecoder) loadStoreRegister(ins uint16) int {
	reg := d.mc.Regs

	ro := int((ins >> 6) & 0x7)
	rb := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	address := reg.Get(rb) + reg.Get(ro)
	byteTransfer := ins&(1<<10) != 0

	if ins&(1<<11) != 0 { // load
		if byteTransfer {
			reg.Set(rd, uint32(d.mc.mem.Read8(address)))
		} else {
			reg.Set(rd, readWordRotated(d.mc.mem, address))
		}
		return 3
	}

	if byteTransfer {
		d.mc.mem.Write8(address, uint8(reg.Get(rd)))
	} else {
		d.mc.mem.Write32(address, reg.Get(rd))
	}
	return 2
}

// format 8: load/store sign-extended byte/halfword.
func (d *thumbDecoder) loadStoreSignExtended(ins uint16) int {
	reg := d.mc.Regs

	ro := int((ins >> 6) & 0x7)
	rb := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	address := reg.Get(rb) + reg.Get(ro)

	hFlag := ins&(1<<11) != 0
	sFlag := ins&(1<<10) != 0

	switch {
	case !sFlag && !hFlag: // STRH
		d.mc.mem.Write16(address, uint16(reg.Get(rd)))
		return 2
	case !sFlag && hFlag: // LDRH
		reg.Set(rd, uint32(d.mc.mem.Read16(address)))
	case sFlag && !hFlag: // LDSB
		reg.Set(rd, uint32(int32(int8(d.mc.mem.Read8(address)))))
	default: // LDSH
		reg.Set(rd, uint32(int32(int16(d.mc.mem.Read16(address)))))
	}

	return 3
}

// format 9: load/store with 5-bit immediate offset.
func (d *thumbDecoder) loadStoreImmediate(ins uint16) int {
	reg := d.mc.Regs

	offset := uint32((ins >> 6) & 0x1f)
	rb := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	byteTransfer := ins&(1<<12) != 0
	if !byteTransfer {
		offset <<= 2
	}

	address := reg.Get(rb) + offset

	if ins&(1<<11) != 0 { // load
		if byteTransfer {
			reg.Set(rd, uint32(d.mc.mem.Read8(address)))
		} else {
			reg.Set(rd, readWordRotated(d.mc.mem, address))
		}
		return 3
	}

	if byteTransfer {
		d.mc.mem.Write8(address, uint8(reg.Get(rd)))
	} else {
		d.mc.mem.Write32(address, reg.Get(rd))
	}
	return 2
}

// format 10: load/store halfword with 5-bit immediate offset.
func (d *thumbDecoder) loadStoreHalfword(ins uint16) int {
	reg := d.mc.Regs

	offset := uint32((ins>>6)&0x1f) << 1
	rb := int((ins >> 3) & 0x7)
	rd := int(ins & 0x7)

	address := reg.Get(rb) + offset

	if ins&(1<<11) != 0 { // LDRH
		reg.Set(rd, uint32(d.mc.mem.Read16(address)))
		return 3
	}

	d.mc.mem.Write16(address, uint16(reg.Get(rd)))
	return 2
}

// format 11: SP-relative load/store.
func (d *thumbDecoder) spRelativeLoadStore(ins uint16) int {
	reg := d.mc.Regs

	rd := int((ins >> 8) & 0x7)
	offset := uint32(ins&0xff) << 2

	address := reg.SP() + offset

	if ins&(1<<11) != 0 { // load
		reg.Set(rd, readWordRotated(d.mc.mem, address))
		return 3
	}

	d.mc.mem.Write32(address, reg.Get(rd))
	return 2
}

// format 12: ADD Rd, PC/SP, #imm. the PC operand is word-aligned.
func (d *thumbDecoder) loadAddress(ins uint16) int {
	reg := d.mc.Regs

	rd := int((ins >> 8) & 0x7)
	offset := uint32(ins&0xff) << 2

	base := d.mc.prefetchPC() &^ 0x3
	if ins&(1<<11) != 0 {
		base = reg.SP()
	}

	reg.Set(rd, base+offset)

	return 1
}

// format 13: ADD/SUB SP, #imm.
func (d *thumbDecoder) adjustSP(ins uint16) int {
	reg := d.mc.Regs

	offset := uint32(ins&0x7f) << 2

	if ins&(1<<7) != 0 {
		reg.SetSP(reg.SP() - offset)
	} else {
		reg.SetSP(reg.SP() + offset)
	}

	return 1
}

// format 14: PUSH/POP. PUSH optionally stores LR; POP optionally loads PC,
// with bit 0 of the loaded value selecting the instruction set.
func (d *thumbDecoder) pushPop(ins uint16) int {
	reg := d.mc.Regs

	rlist := ins & 0xff
	pclr := ins&(1<<8) != 0

	count := uint32(bits.OnesCount8(uint8(rlist)))
	if pclr {
		count++
	}

	cycles := 2

	if ins&(1<<11) != 0 { // POP
		address := reg.SP()

		for i := 0; i < 8; i++ {
			if rlist&(1<<i) == 0 {
				continue
			}
			reg.Set(i, d.mc.mem.Read32(address))
			address += 4
			cycles++
		}

		if pclr {
			value := d.mc.mem.Read32(address)
			reg.SetPC(value)
			reg.Status.Thumb = value&1 != 0
			address += 4
			cycles += 2
		}

		reg.SetSP(address)
	} else { // PUSH
		address := reg.SP() - count*4
		reg.SetSP(address)

		for i := 0; i < 8; i++ {
			if rlist&(1<<i) == 0 {
				continue
			}
			d.mc.mem.Write32(address, reg.Get(i))
			address += 4
			cycles++
		}

		if pclr {
			d.mc.mem.Write32(address, reg.LR())
			cycles++
		}
	}

	return cycles
}

// format 15: STMIA/LDMIA with writeback.
func (d *thumbDecoder) multipleLoadStore(ins uint16) int {
	reg := d.mc.Regs

	rb := int((ins >> 8) & 0x7)
	rlist := ins & 0xff
	load := ins&(1<<11) != 0

	address := reg.Get(rb)
	cycles := 2

	for i := 0; i < 8; i++ {
		if rlist&(1<<i) == 0 {
			continue
		}
		if load {
			reg.Set(i, d.mc.mem.Read32(address))
		} else {
			d.mc.mem.Write32(address, reg.Get(i))
		}
		address += 4
		cycles++
	}

	// writeback is suppressed on a load that includes the base register
	if !(load && rlist&(1<<rb) != 0) {
		reg.Set(rb, address)
	}

	return cycles
}

// format 16: conditional branch.
func (d *thumbDecoder) conditionalBranch(ins uint16) int {
	reg := d.mc.Regs

	if !reg.CheckCondition(uint32(ins>>8) & 0xf) {
		return 1
	}

	offset := int32(int8(ins&0xff)) << 1
	reg.SetPC(d.mc.prefetchPC() + uint32(offset))

	return 3
}

// format 17: SWI.
func (d *thumbDecoder) softwareInterrupt(_ uint16) int {
	d.mc.TriggerSWI()
	return 3
}

// format 18: unconditional branch.
func (d *thumbDecoder) unconditionalBranch(ins uint16) int {
	// 11-bit signed halfword offset
	offset := int32(uint32(ins)<<21) >> 20

	d.mc.Regs.SetPC(d.mc.prefetchPC() + uint32(offset))

	return 3
}

// format 19: the two-halfword long branch with link.
func (d *thumbDecoder) longBranchLink(ins uint16) int {
	reg := d.mc.Regs

	offset := uint32(ins & 0x7ff)

	if ins&(1<<11) == 0 {
		// first halfword: the high part of the target is staged in LR
		high := int32(offset<<21) >> 9
		reg.SetLR(d.mc.prefetchPC() + uint32(high))
		return 1
	}

	// second halfword: complete the target and leave the return address,
	// with the Thumb bit set, in LR
	target := reg.LR() + offset<<1
	reg.SetLR((d.mc.currentPC + 2) | 1)
	reg.SetPC(target)

	return 3
}

// readWordRotated reads an aligned word and rotates it so that the
// addressed byte ends up in the low position, mirroring the behaviour of a
// misaligned ARM word load.
func readWordRotated(mem cpubus.Memory, address uint32) uint32 {
	value := mem.Read32(address)
	if misalign := address & 3; misalign != 0 {
		value = value>>(misalign*8) | value<<(32-misalign*8)
	}
	return value
}
