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

	"github.com/jetsetilly/gopheradvance/hardware/cpu/registers"
)

// armDecoder decodes and executes the 32-bit ARM instruction set.
type armDecoder struct {
	mc *CPU
}

// the sixteen data processing opcodes.
const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opRSB = 0x3
	opADD = 0x4
	opADC = 0x5
	opSBC = 0x6
	opRSC = 0x7
	opTST = 0x8
	opTEQ = 0x9
	opCMP = 0xa
	opCMN = 0xb
	opORR = 0xc
	opMOV = 0xd
	opBIC = 0xe
	opMVN = 0xf
)

// execute runs one ARM instruction whose condition has already been checked
// by the caller. The return value is the number of cycles consumed, always
// at least one.
//
// The classification order matters: multiply, swap, halfword transfer, BX
// and PSR transfer all live in gaps of the data processing encoding and
// must be recognised first.
func (d *armDecoder) execute(ins uint32) int {
	switch (ins >> 25) & 0x7 {
	case 0b101:
		return d.branch(ins)

	case 0b100:
		return d.blockTransfer(ins)

	case 0b010, 0b011:
		return d.singleTransfer(ins)

	case 0b000:
		bits74 := (ins >> 4) & 0xf

		if bits74 == 0b1001 {
			op := (ins >> 20) & 0x1f
			if op == 0b10000 || op == 0b10100 {
				return d.swap(ins)
			}
			if (ins>>23)&0x3 == 0b01 {
				return d.multiplyLong(ins)
			}
			return d.multiply(ins)
		}

		if bits74&0b1001 == 0b1001 && (ins>>5)&0x3 != 0 {
			return d.halfwordTransfer(ins)
		}

		if ins&0x0ffffff0 == 0x012fff10 {
			return d.branchExchange(ins)
		}

		if op := (ins >> 21) & 0xf; op >= opTST && op <= opCMN && ins&(1<<20) == 0 {
			return d.psrTransfer(ins)
		}

		return d.dataProcessing(ins)

	case 0b001:
		if op := (ins >> 21) & 0xf; op >= opTST && op <= opCMN && ins&(1<<20) == 0 {
			return d.psrTransfer(ins)
		}
		return d.dataProcessing(ins)

	case 0b111:
		return d.softwareInterrupt(ins)
	}

	// undefined encoding. real hardware would take the undefined
	// instruction exception; well-formed ROMs never reach here
	return 1
}

// operand2 computes the second operand of a data processing instruction:
// either a rotated 8-bit immediate or a shifted register. The returned
// carry is the shifter carry-out; when setCarry is false an immediate
// rotation leaves the carry unchanged.
func (d *armDecoder) operand2(ins uint32, setCarry bool) (uint32, bool) {
	reg := d.mc.Regs
	carry := reg.Status.Carry

	if ins&(1<<25) != 0 {
		imm := ins & 0xff
		rotate := int((ins>>8)&0xf) * 2

		if rotate == 0 {
			return imm, carry
		}

		result := imm>>rotate | imm<<(32-rotate)
		if setCarry {
			carry = result>>31 != 0
		}
		return result, carry
	}

	rm := int(ins & 0xf)
	rmValue := reg.Get(rm)

	// R15 reads as the prefetch PC, plus an extra word when the shift
	// amount comes from a register (the extra internal cycle advances the
	// pipeline one more step)
	if rm == 15 {
		rmValue = d.mc.prefetchPC()
		if ins&(1<<4) != 0 {
			rmValue += 4
		}
	}

	shiftType := int((ins >> 5) & 0x3)

	if ins&(1<<4) != 0 {
		rs := int((ins >> 8) & 0xf)
		amount := int(reg.Get(rs) & 0xff)
		return applyShift(rmValue, shiftType, amount, carry, false)
	}

	amount := int((ins >> 7) & 0x1f)
	return applyShift(rmValue, shiftType, amount, carry, true)
}

func (d *armDecoder) dataProcessing(ins uint32) int {
	reg := d.mc.Regs

	opcode := (ins >> 21) & 0xf
	sBit := ins&(1<<20) != 0
	rn := int((ins >> 16) & 0xf)
	rd := int((ins >> 12) & 0xf)

	rnValue := reg.Get(rn)
	if rn == 15 {
		rnValue = d.mc.prefetchPC()
	}

	op2, shifterCarry := d.operand2(ins, sBit)

	var result uint32
	carry := reg.Status.Carry
	overflow := reg.Status.Overflow
	writeResult := true

	switch opcode {
	case opAND:
		result = rnValue & op2
		carry = shifterCarry
	case opEOR:
		result = rnValue ^ op2
		carry = shifterCarry
	case opSUB:
		result, carry, overflow = aluSub(rnValue, op2, true)
	case opRSB:
		result, carry, overflow = aluSub(op2, rnValue, true)
	case opADD:
		result, carry, overflow = aluAdd(rnValue, op2, false)
	case opADC:
		result, carry, overflow = aluAdd(rnValue, op2, reg.Status.Carry)
	case opSBC:
		result, carry, overflow = aluSub(rnValue, op2, reg.Status.Carry)
	case opRSC:
		result, carry, overflow = aluSub(op2, rnValue, reg.Status.Carry)
	case opTST:
		result = rnValue & op2
		carry = shifterCarry
		writeResult = false
	case opTEQ:
		result = rnValue ^ op2
		carry = shifterCarry
		writeResult = false
	case opCMP:
		result, carry, overflow = aluSub(rnValue, op2, true)
		writeResult = false
	case opCMN:
		result, carry, overflow = aluAdd(rnValue, op2, false)
		writeResult = false
	case opORR:
		result = rnValue | op2
		carry = shifterCarry
	case opMOV:
		result = op2
		carry = shifterCarry
	case opBIC:
		result = rnValue &^ op2
		carry = shifterCarry
	case opMVN:
		result = ^op2
		carry = shifterCarry
	}

	if writeResult {
		reg.Set(rd, result)

		if rd == 15 {
			// the S bit with R15 as the destination is the exception
			// return idiom
			if sBit {
				reg.RestoreCPSRFromSPSR()
			}
			return 3
		}
	}

	if sBit {
		reg.SetFlagsNZ(result)
		reg.Status.Carry = carry

		// only the arithmetic opcodes touch the overflow flag; logical
		// opcodes leave it alone
		switch opcode {
		case opSUB, opRSB, opADD, opADC, opSBC, opRSC, opCMP, opCMN:
			reg.Status.Overflow = overflow
		}
	}

	return 1
}

func (d *armDecoder) multiply(ins uint32) int {
	reg := d.mc.Regs

	rd := int((ins >> 16) & 0xf)
	rn := int((ins >> 12) & 0xf)
	rs := int((ins >> 8) & 0xf)
	rm := int(ins & 0xf)

	result := reg.Get(rm) * reg.Get(rs)

	if ins&(1<<21) != 0 { // MLA
		result += reg.Get(rn)
	}

	reg.Set(rd, result)

	if ins&(1<<20) != 0 {
		// carry and overflow are unpredictable on multiply; left alone
		reg.SetFlagsNZ(result)
	}

	return 2
}

func (d *armDecoder) multiplyLong(ins uint32) int {
	reg := d.mc.Regs

	rdHi := int((ins >> 16) & 0xf)
	rdLo := int((ins >> 12) & 0xf)
	rs := int((ins >> 8) & 0xf)
	rm := int(ins & 0xf)

	signed := ins&(1<<22) != 0
	accumulate := ins&(1<<21) != 0

	var result uint64
	if signed {
		result = uint64(int64(int32(reg.Get(rm))) * int64(int32(reg.Get(rs))))
	} else {
		result = uint64(reg.Get(rm)) * uint64(reg.Get(rs))
	}

	if accumulate {
		result += uint64(reg.Get(rdHi))<<32 | uint64(reg.Get(rdLo))
	}

	reg.Set(rdLo, uint32(result))
	reg.Set(rdHi, uint32(result>>32))

	if ins&(1<<20) != 0 {
		reg.Status.Negative = result&0x8000000000000000 != 0
		reg.Status.Zero = result == 0
	}

	return 3
}

func (d *armDecoder) branch(ins uint32) int {
	reg := d.mc.Regs

	// 24-bit signed word offset
	offset := int32(ins<<8) >> 6

	if ins&(1<<24) != 0 { // BL
		reg.SetLR(d.mc.currentPC + 4)
	}

	reg.SetPC(d.mc.prefetchPC() + uint32(offset))

	return 3
}

func (d *armDecoder) branchExchange(ins uint32) int {
	reg := d.mc.Regs

	rmValue := reg.Get(int(ins & 0xf))

	// bit 0 of the target selects the instruction set
	reg.Status.Thumb = rmValue&1 != 0
	reg.SetPC(rmValue)

	return 3
}

func (d *armDecoder) singleTransfer(ins uint32) int {
	reg := d.mc.Regs

	load := ins&(1<<20) != 0
	writeBack := ins&(1<<21) != 0
	byteTransfer := ins&(1<<22) != 0
	up := ins&(1<<23) != 0
	preIndex := ins&(1<<24) != 0
	immediate := ins&(1<<25) == 0

	rn := int((ins >> 16) & 0xf)
	rd := int((ins >> 12) & 0xf)

	base := reg.Get(rn)
	if rn == 15 {
		base = d.mc.prefetchPC()
	}

	var offset uint32
	if immediate {
		offset = ins & 0xfff
	} else {
		rm := int(ins & 0xf)
		shiftType := int((ins >> 5) & 0x3)
		amount := int((ins >> 7) & 0x1f)
		offset, _ = applyShift(reg.Get(rm), shiftType, amount, false, true)
	}

	address := base + offset
	if !up {
		address = base - offset
	}

	effectiveAddress := address
	if !preIndex {
		effectiveAddress = base
	}

	cycles := 1

	if load {
		var value uint32
		if byteTransfer {
			value = uint32(d.mc.mem.Read8(effectiveAddress))
		} else {
			value = d.mc.mem.Read32(effectiveAddress)

			// a misaligned word load rotates the aligned word so that the
			// addressed byte ends up in the low position
			if misalign := effectiveAddress & 3; misalign != 0 {
				value = value>>(misalign*8) | value<<(32-misalign*8)
			}
		}

		reg.Set(rd, value)

		if rd == 15 {
			cycles = 5
		} else {
			cycles = 3
		}
	} else {
		value := reg.Get(rd)
		if rd == 15 {
			// stores of R15 see the pipeline one step further on
			value = d.mc.prefetchPC() + 4
		}

		if byteTransfer {
			d.mc.mem.Write8(effectiveAddress, uint8(value))
		} else {
			d.mc.mem.Write32(effectiveAddress, value)
		}

		cycles = 2
	}

	if (writeBack || !preIndex) && rn != 15 {
		reg.Set(rn, address)
	}

	return cycles
}

func (d *armDecoder) halfwordTransfer(ins uint32) int {
	reg := d.mc.Regs

	load := ins&(1<<20) != 0
	writeBack := ins&(1<<21) != 0
	immediate := ins&(1<<22) != 0
	up := ins&(1<<23) != 0
	preIndex := ins&(1<<24) != 0

	rn := int((ins >> 16) & 0xf)
	rd := int((ins >> 12) & 0xf)

	// 01=halfword, 10=signed byte, 11=signed halfword
	sh := (ins >> 5) & 0x3

	base := reg.Get(rn)
	if rn == 15 {
		base = d.mc.prefetchPC()
	}

	var offset uint32
	if immediate {
		offset = (ins>>4)&0xf0 | ins&0xf
	} else {
		offset = reg.Get(int(ins & 0xf))
	}

	address := base + offset
	if !up {
		address = base - offset
	}

	effectiveAddress := address
	if !preIndex {
		effectiveAddress = base
	}

	cycles := 1

	if load {
		var value uint32
		switch sh {
		case 0b01: // LDRH
			value = uint32(d.mc.mem.Read16(effectiveAddress))
		case 0b10: // LDRSB
			value = uint32(int32(int8(d.mc.mem.Read8(effectiveAddress))))
		case 0b11: // LDRSH
			value = uint32(int32(int16(d.mc.mem.Read16(effectiveAddress))))
		}

		reg.Set(rd, value)

		if rd == 15 {
			cycles = 5
		} else {
			cycles = 3
		}
	} else {
		value := reg.Get(rd)
		if rd == 15 {
			value += 4
		}

		if sh == 0b01 { // STRH
			d.mc.mem.Write16(effectiveAddress, uint16(value))
		}

		cycles = 2
	}

	if (writeBack || !preIndex) && rn != 15 {
		reg.Set(rn, address)
	}

	return cycles
}

func (d *armDecoder) blockTransfer(ins uint32) int {
	reg := d.mc.Regs

	load := ins&(1<<20) != 0
	writeBack := ins&(1<<21) != 0
	sBit := ins&(1<<22) != 0
	up := ins&(1<<23) != 0
	preIndex := ins&(1<<24) != 0

	rn := int((ins >> 16) & 0xf)
	registerList := ins & 0xffff

	base := reg.Get(rn)
	count := uint32(bits.OnesCount16(uint16(registerList)))

	if count == 0 {
		// an empty register list transfers R15 only and moves the base by
		// a full 16 registers
		if load {
			reg.SetPC(d.mc.mem.Read32(base))
		} else {
			d.mc.mem.Write32(base, d.mc.prefetchPC()+4)
		}

		if writeBack {
			if up {
				reg.Set(rn, base+0x40)
			} else {
				reg.Set(rn, base-0x40)
			}
		}

		return 2
	}

	// the lowest register is always transferred to/from the lowest
	// address: the four addressing modes reduce to an ascending walk from
	// a computed start address
	var address, finalAddress uint32
	if up {
		address = base
		if preIndex {
			address += 4
		}
		finalAddress = base + count*4
	} else {
		address = base - count*4
		if !preIndex {
			address += 4
		}
		finalAddress = base - count*4
	}

	cycles := 2

	for i := 0; i < 16; i++ {
		if registerList&(1<<i) == 0 {
			continue
		}

		if load {
			reg.Set(i, d.mc.mem.Read32(address))
		} else {
			value := reg.Get(i)
			if i == 15 {
				value = d.mc.prefetchPC() + 4
			}
			d.mc.mem.Write32(address, value)
		}

		address += 4
		cycles++
	}

	if writeBack {
		reg.Set(rn, finalAddress)
	}

	if load && registerList&(1<<15) != 0 {
		if sBit {
			reg.RestoreCPSRFromSPSR()
		}
		cycles += 2
	}

	return cycles
}

func (d *armDecoder) swap(ins uint32) int {
	reg := d.mc.Regs

	rn := int((ins >> 16) & 0xf)
	rd := int((ins >> 12) & 0xf)
	rm := int(ins & 0xf)

	address := reg.Get(rn)

	var oldValue uint32
	if ins&(1<<22) != 0 { // SWPB
		oldValue = uint32(d.mc.mem.Read8(address))
		d.mc.mem.Write8(address, uint8(reg.Get(rm)))
	} else {
		oldValue = d.mc.mem.Read32(address)
		d.mc.mem.Write32(address, reg.Get(rm))
	}

	reg.Set(rd, oldValue)

	return 4
}

func (d *armDecoder) psrTransfer(ins uint32) int {
	reg := d.mc.Regs

	useSPSR := ins&(1<<22) != 0

	if ins&(1<<21) != 0 { // MSR
		var value uint32
		if ins&(1<<25) != 0 {
			imm := ins & 0xff
			rotate := ((ins >> 8) & 0xf) * 2
			value = imm
			if rotate != 0 {
				value = imm>>rotate | imm<<(32-rotate)
			}
		} else {
			value = reg.Get(int(ins & 0xf))
		}

		// the field mask selects which bytes of the PSR are written
		var mask uint32
		fields := (ins >> 16) & 0xf
		if fields&0x1 != 0 {
			mask |= 0x000000ff
		}
		if fields&0x2 != 0 {
			mask |= 0x0000ff00
		}
		if fields&0x4 != 0 {
			mask |= 0x00ff0000
		}
		if fields&0x8 != 0 {
			mask |= 0xff000000
		}

		if useSPSR {
			reg.SetSPSR(reg.SPSR()&^mask | value&mask)
		} else {
			// User mode may only write the flags byte of the CPSR
			if reg.Mode() == registers.User {
				mask &= 0xff000000
			}
			reg.SetCPSR(reg.CPSR()&^mask | value&mask)
		}
	} else { // MRS
		rd := int((ins >> 12) & 0xf)
		if useSPSR {
			reg.Set(rd, reg.SPSR())
		} else {
			reg.Set(rd, reg.CPSR())
		}
	}

	return 1
}

func (d *armDecoder) softwareInterrupt(_ uint32) int {
	d.mc.TriggerSWI()
	return 3
}
