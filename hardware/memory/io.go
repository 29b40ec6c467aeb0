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

package memory

import "github.com/jetsetilly/gopheradvance/hardware/irq"

// Offsets of the IO registers handled by the bus itself or referred to from
// more than one package. Peripheral-private registers are defined in their
// own packages.
const (
	AddrKeyInput = 0x130
	AddrKeyCnt   = 0x132
	AddrIE       = 0x200
	AddrIF       = 0x202
	AddrWaitCnt  = 0x204
	AddrIME      = 0x208
	AddrHaltCnt  = 0x300
)

// Key identifies one of the ten GBA keys, by its bit in the KEYINPUT
// register.
type Key uint16

// The GBA keys.
const (
	KeyA Key = 1 << iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

// all keys released. KEYINPUT is active low.
const keyMask = 0x03ff

// SetKeyState records a key press or release. The keypad interrupt is
// raised according to the KEYCNT register.
func (mem *GBAMemory) SetKeyState(key Key, pressed bool) {
	if pressed {
		mem.keyState &^= uint16(key)
	} else {
		mem.keyState |= uint16(key)
	}

	keycnt := mem.IORegister16(AddrKeyCnt)
	if keycnt&0x4000 == 0 {
		return
	}

	selected := keycnt & keyMask
	pressedKeys := ^mem.keyState & keyMask

	if keycnt&0x8000 != 0 {
		// AND mode: all selected keys must be down
		if pressedKeys&selected == selected && selected != 0 {
			mem.raiseKeypad()
		}
	} else {
		// OR mode: any selected key
		if pressedKeys&selected != 0 {
			mem.raiseKeypad()
		}
	}
}

func (mem *GBAMemory) raiseKeypad() {
	if mem.IRQ != nil {
		mem.IRQ.Raise(irq.Keypad)
	}
}

// IORegister16 reads the backing bytes of an IO register directly, without
// the peripheral overlay. Used by peripherals reading their own latched
// registers.
func (mem *GBAMemory) IORegister16(offset uint32) uint16 {
	offset &= 0x3fe
	return uint16(mem.io[offset]) | uint16(mem.io[offset+1])<<8
}

// SetIORegister16 writes the backing bytes of an IO register directly,
// without triggering any peripheral write handler.
func (mem *GBAMemory) SetIORegister16(offset uint32, data uint16) {
	offset &= 0x3fe
	mem.io[offset] = uint8(data)
	mem.io[offset+1] = uint8(data >> 8)
}

func (mem *GBAMemory) readIO16(offset uint32) uint16 {
	offset &^= 0x1

	switch offset {
	case AddrKeyInput:
		return mem.keyState
	case AddrIE:
		if mem.IRQ != nil {
			return mem.IRQ.Enable()
		}
	case AddrIF:
		if mem.IRQ != nil {
			return mem.IRQ.Flags()
		}
	case AddrIME:
		if mem.IRQ != nil {
			if mem.IRQ.Master() {
				return 1
			}
			return 0
		}
	}

	for _, dev := range mem.devices {
		if v, ok := dev.ReadRegister(offset); ok {
			return v
		}
	}

	return mem.IORegister16(offset)
}

func (mem *GBAMemory) readIO8(offset uint32) uint8 {
	v := mem.readIO16(offset &^ 0x1)
	if offset&0x1 != 0 {
		return uint8(v >> 8)
	}
	return uint8(v)
}

func (mem *GBAMemory) writeIO16(offset uint32, data uint16) {
	offset &^= 0x1

	switch offset {
	case AddrIF:
		// write-one-to-clear
		if mem.IRQ != nil {
			mem.IRQ.Acknowledge(data)
		}
		return
	case AddrIE:
		if mem.IRQ != nil {
			mem.IRQ.SetEnable(data)
		}
		return
	case AddrIME:
		if mem.IRQ != nil {
			mem.IRQ.SetMaster(data&0x1 != 0)
		}
		return
	case AddrHaltCnt:
		// HALTCNT is the high byte of the halfword at 0x300
		if mem.cpu != nil {
			if data&0x8000 != 0 {
				mem.cpu.Stop()
			} else {
				mem.cpu.Halt()
			}
		}
		return
	}

	mem.SetIORegister16(offset, data)

	for _, dev := range mem.devices {
		if dev.WriteRegister(offset, data) {
			return
		}
	}
}

func (mem *GBAMemory) writeIO8(offset uint32, data uint8) {
	base := offset &^ 0x1

	switch base {
	case AddrIF:
		// write-one-to-clear, per byte
		if mem.IRQ != nil {
			if offset&0x1 != 0 {
				mem.IRQ.Acknowledge(uint16(data) << 8)
			} else {
				mem.IRQ.Acknowledge(uint16(data))
			}
		}
		return
	case AddrHaltCnt:
		if offset&0x1 != 0 && mem.cpu != nil {
			if data&0x80 != 0 {
				mem.cpu.Stop()
			} else {
				mem.cpu.Halt()
			}
		}
		return
	}

	// merge the byte into the halfword and hand it to the halfword path so
	// that peripherals only ever see 16-bit writes
	v := mem.IORegister16(base)
	if offset&0x1 != 0 {
		v = v&0x00ff | uint16(data)<<8
	} else {
		v = v&0xff00 | uint16(data)
	}
	mem.writeIO16(base, v)
}
