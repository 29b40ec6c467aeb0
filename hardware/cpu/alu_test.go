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
	"testing"

	"github.com/jetsetilly/gopheradvance/test"
)

func TestShifterLSL(t *testing.T) {
	// LSL #0 preserves value and carry
	r, c := lsl(0x80000001, 0, true)
	test.ExpectEquality(t, r, uint32(0x80000001))
	test.ExpectEquality(t, c, true)
	r, c = lsl(0x80000001, 0, false)
	test.ExpectEquality(t, c, false)

	// carry out is the last bit shifted out
	r, c = lsl(0x80000001, 1, false)
	test.ExpectEquality(t, r, uint32(0x00000002))
	test.ExpectEquality(t, c, true)

	r, c = lsl(0x00000001, 31, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, false)

	// LSL #32: result zero, carry is bit 0
	r, c = lsl(0x00000001, 32, false)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)

	// beyond 32: everything zero
	r, c = lsl(0xffffffff, 33, true)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, false)
}

func TestShifterLSR(t *testing.T) {
	// LSR #0 immediate means LSR #32
	r, c := lsr(0x80000000, 0, false, true)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)

	// LSR #0 by register is a pass-through
	r, c = lsr(0x80000000, 0, false, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, false)

	r, c = lsr(0x00000003, 1, false, true)
	test.ExpectEquality(t, r, uint32(1))
	test.ExpectEquality(t, c, true)

	r, c = lsr(0x80000000, 32, false, false)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)

	r, c = lsr(0xffffffff, 40, true, false)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, false)
}

func TestShifterASR(t *testing.T) {
	// ASR #0 immediate means ASR #32
	r, c := asr(0x80000000, 0, false, true)
	test.ExpectEquality(t, r, uint32(0xffffffff))
	test.ExpectEquality(t, c, true)

	r, c = asr(0x7fffffff, 0, false, true)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, false)

	// sign extension on ordinary amounts
	r, c = asr(0x80000004, 2, false, true)
	test.ExpectEquality(t, r, uint32(0xe0000001))
	test.ExpectEquality(t, c, false)

	// register-specified zero amount is a pass-through
	r, c = asr(0x80000000, 0, true, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, true)
}

func TestShifterROR(t *testing.T) {
	// ROR #0 immediate is RRX
	r, c := ror(0x00000003, 0, true, true)
	test.ExpectEquality(t, r, uint32(0x80000001))
	test.ExpectEquality(t, c, true)

	r, c = ror(0x00000002, 0, false, true)
	test.ExpectEquality(t, r, uint32(0x00000001))
	test.ExpectEquality(t, c, false)

	// ROR #0 by register is a pass-through
	r, c = ror(0x12345678, 0, true, false)
	test.ExpectEquality(t, r, uint32(0x12345678))
	test.ExpectEquality(t, c, true)

	r, c = ror(0x000000ff, 8, false, true)
	test.ExpectEquality(t, r, uint32(0xff000000))
	test.ExpectEquality(t, c, true)

	// a multiple of 32 returns the value with carry from bit 31
	r, c = ror(0x80000000, 32, false, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, true)
}

func TestALUAdd(t *testing.T) {
	r, c, v := aluAdd(1, 2, false)
	test.ExpectEquality(t, r, uint32(3))
	test.ExpectEquality(t, c, false)
	test.ExpectEquality(t, v, false)

	// unsigned carry out
	r, c, v = aluAdd(0xffffffff, 1, false)
	test.ExpectEquality(t, r, uint32(0))
	test.ExpectEquality(t, c, true)
	test.ExpectEquality(t, v, false)

	// signed overflow
	r, c, v = aluAdd(0x7fffffff, 1, false)
	test.ExpectEquality(t, r, uint32(0x80000000))
	test.ExpectEquality(t, c, false)
	test.ExpectEquality(t, v, true)

	// carry in
	r, _, _ = aluAdd(1, 1, true)
	test.ExpectEquality(t, r, uint32(3))
}

func TestALUSub(t *testing.T) {
	// subtracting zero: result unchanged, carry set (no borrow), no
	// overflow
	r, c, v := aluSub(123, 0, true)
	test.ExpectEquality(t, r, uint32(123))
	test.ExpectEquality(t, c, true)
	test.ExpectEquality(t, v, false)

	// borrow clears carry
	r, c, v = aluSub(1, 2, true)
	test.ExpectEquality(t, r, uint32(0xffffffff))
	test.ExpectEquality(t, c, false)
	test.ExpectEquality(t, v, false)

	// signed overflow
	r, c, v = aluSub(0x80000000, 1, true)
	test.ExpectEquality(t, r, uint32(0x7fffffff))
	test.ExpectEquality(t, c, true)
	test.ExpectEquality(t, v, true)

	// carry clear means borrow one more
	r, c, _ = aluSub(5, 3, false)
	test.ExpectEquality(t, r, uint32(1))
	test.ExpectEquality(t, c, true)

	r, c, _ = aluSub(3, 3, false)
	test.ExpectEquality(t, r, uint32(0xffffffff))
	test.ExpectEquality(t, c, false)
}
