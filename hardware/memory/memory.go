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

import (
	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/logger"
)

// sizes of the fixed memory areas.
const (
	BIOSSize    = 0x4000
	EWRAMSize   = 0x40000
	IWRAMSize   = 0x8000
	PaletteSize = 0x400
	VRAMSize    = 0x18000
	OAMSize     = 0x400
	SRAMSize    = 0x10000
	ioSize      = 0x400
)

// MinROMSize is the size of the game pak header. A ROM without a complete
// header is rejected.
const MinROMSize = 0xc0

// IODevice is implemented by peripherals with registers in the IO space.
// Offsets are relative to the start of the IO area and aligned to 16 bits.
//
// The boolean return of ReadRegister indicates whether the device claimed
// the register; an unclaimed read falls through to the bus's backing bytes.
// WriteRegister is called after the backing bytes have been updated, so a
// device that only needs a latch can ignore writes and read the backing
// bytes on demand.
type IODevice interface {
	ReadRegister(offset uint32) (uint16, bool)
	WriteRegister(offset uint32, data uint16) bool
}

// CPUControl is the subset of CPU operations reachable through the bus: the
// HALTCNT register puts the CPU to sleep.
type CPUControl interface {
	Halt()
	Stop()
}

// GBAMemory is the main implementation of the memory bus. It implements the
// cpubus.Memory interface.
type GBAMemory struct {
	BIOS    []uint8
	EWRAM   []uint8
	IWRAM   []uint8
	Palette []uint8
	VRAM    []uint8
	OAM     []uint8
	ROM     []uint8
	SRAM    []uint8

	// backing bytes for the IO register space. registers with live state in
	// a peripheral are overlaid through the IODevice interface
	io [ioSize]uint8

	// the most recent value seen on the bus, substituted for reads of
	// unmapped addresses. an approximation of the real open-bus behaviour,
	// which would replay the last prefetched instruction
	openBus uint32

	// key state is active low: a set bit means the key is not pressed
	keyState uint16

	// attached by the system after construction
	cpu     CPUControl
	IRQ     *irq.Controller
	devices []IODevice
}

// NewGBAMemory is the preferred method of initialisation for the GBAMemory
// type.
func NewGBAMemory() *GBAMemory {
	mem := &GBAMemory{
		BIOS:    make([]uint8, BIOSSize),
		EWRAM:   make([]uint8, EWRAMSize),
		IWRAM:   make([]uint8, IWRAMSize),
		Palette: make([]uint8, PaletteSize),
		VRAM:    make([]uint8, VRAMSize),
		OAM:     make([]uint8, OAMSize),
		SRAM:    make([]uint8, SRAMSize),
	}
	mem.keyState = keyMask
	return mem
}

// Attach connects the bus to the CPU, the interrupt controller and the
// peripherals with registers in the IO space. Called by the system once all
// components have been created.
func (mem *GBAMemory) Attach(cpu CPUControl, irqc *irq.Controller, devices ...IODevice) {
	mem.cpu = cpu
	mem.IRQ = irqc
	mem.devices = devices
}

// Reset clears the volatile memory areas. BIOS, ROM and SRAM contents
// survive a reset.
func (mem *GBAMemory) Reset() {
	for _, area := range [][]uint8{mem.EWRAM, mem.IWRAM, mem.Palette, mem.VRAM, mem.OAM} {
		for i := range area {
			area[i] = 0
		}
	}
	for i := range mem.io {
		mem.io[i] = 0
	}
	mem.keyState = keyMask
	mem.openBus = 0
}

// LoadBIOS copies the BIOS image into the BIOS area. Images larger than the
// area are truncated.
func (mem *GBAMemory) LoadBIOS(data []byte) error {
	if len(data) == 0 {
		return curated.Errorf("memory: empty BIOS image")
	}
	n := copy(mem.BIOS, data)
	logger.Logf("memory", "BIOS loaded: %d bytes", n)
	return nil
}

// LoadROM attaches a game pak image. An image too small to contain the
// cartridge header is rejected.
func (mem *GBAMemory) LoadROM(data []byte) error {
	if len(data) < MinROMSize {
		return curated.Errorf("memory: ROM too small (%d bytes)", len(data))
	}
	mem.ROM = make([]uint8, len(data))
	copy(mem.ROM, data)
	logger.Logf("memory", "ROM loaded: %d bytes", len(data))
	return nil
}

// vramMirror folds a VRAM offset into the 96KB of real VRAM. The last 32KB
// of the 128KB address space mirrors the object tile area.
func vramMirror(address uint32) uint32 {
	address &= 0x1ffff
	if address >= 0x18000 {
		address -= 0x8000
	}
	return address
}

// Read8 implements the cpubus.Memory interface.
func (mem *GBAMemory) Read8(address uint32) uint8 {
	switch address >> 24 {
	case 0x00:
		if address < BIOSSize {
			return mem.BIOS[address]
		}
	case 0x02:
		return mem.EWRAM[address&0x3ffff]
	case 0x03:
		return mem.IWRAM[address&0x7fff]
	case 0x04:
		return mem.readIO8(address & 0x3ff)
	case 0x05:
		return mem.Palette[address&0x3ff]
	case 0x06:
		return mem.VRAM[vramMirror(address)]
	case 0x07:
		return mem.OAM[address&0x3ff]
	case 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d:
		romAddr := address & 0x01ffffff
		if romAddr < uint32(len(mem.ROM)) {
			return mem.ROM[romAddr]
		}
		// out-of-range game pak reads return the address bus itself
		return uint8(romAddr >> 1)
	case 0x0e, 0x0f:
		return mem.SRAM[address&0xffff]
	}

	return uint8(mem.openBus >> ((address & 3) * 8))
}

// Read16 implements the cpubus.Memory interface.
func (mem *GBAMemory) Read16(address uint32) uint16 {
	address &^= 0x1

	var v uint16
	switch address >> 24 {
	case 0x04:
		v = mem.readIO16(address & 0x3ff)
	default:
		v = uint16(mem.Read8(address)) | uint16(mem.Read8(address+1))<<8
	}

	mem.openBus = uint32(v) | uint32(v)<<16
	return v
}

// Read32 implements the cpubus.Memory interface. The returned word is the
// aligned word containing the address; rotation of misaligned loads is the
// CPU's responsibility.
func (mem *GBAMemory) Read32(address uint32) uint32 {
	address &^= 0x3

	v := uint32(mem.Read16(address)) | uint32(mem.Read16(address+2))<<16

	mem.openBus = v
	return v
}

// Write8 implements the cpubus.Memory interface.
func (mem *GBAMemory) Write8(address uint32, data uint8) {
	switch address >> 24 {
	case 0x02:
		mem.EWRAM[address&0x3ffff] = data
	case 0x03:
		mem.IWRAM[address&0x7fff] = data
	case 0x04:
		mem.writeIO8(address&0x3ff, data)
	case 0x05:
		// byte writes to palette RAM write the byte to both halves of the
		// addressed halfword
		a := address & 0x3fe
		mem.Palette[a] = data
		mem.Palette[a+1] = data
	case 0x06:
		// only the background area of VRAM accepts byte writes, again
		// duplicated across the halfword. byte writes to the object area
		// and to OAM are ignored
		a := vramMirror(address) &^ 0x1
		if a < 0x10000 {
			mem.VRAM[a] = data
			mem.VRAM[a+1] = data
		}
	case 0x0e, 0x0f:
		mem.SRAM[address&0xffff] = data
	}
}

// Write16 implements the cpubus.Memory interface.
func (mem *GBAMemory) Write16(address uint32, data uint16) {
	address &^= 0x1

	switch address >> 24 {
	case 0x02:
		a := address & 0x3ffff
		mem.EWRAM[a] = uint8(data)
		mem.EWRAM[a+1] = uint8(data >> 8)
	case 0x03:
		a := address & 0x7fff
		mem.IWRAM[a] = uint8(data)
		mem.IWRAM[a+1] = uint8(data >> 8)
	case 0x04:
		mem.writeIO16(address&0x3ff, data)
	case 0x05:
		a := address & 0x3fe
		mem.Palette[a] = uint8(data)
		mem.Palette[a+1] = uint8(data >> 8)
	case 0x06:
		a := vramMirror(address)
		mem.VRAM[a] = uint8(data)
		mem.VRAM[a+1] = uint8(data >> 8)
	case 0x07:
		a := address & 0x3fe
		mem.OAM[a] = uint8(data)
		mem.OAM[a+1] = uint8(data >> 8)
	case 0x0e, 0x0f:
		// the SRAM data bus is eight bits wide
		mem.SRAM[address&0xffff] = uint8(data)
	}
}

// Write32 implements the cpubus.Memory interface.
func (mem *GBAMemory) Write32(address uint32, data uint32) {
	address &^= 0x3
	mem.Write16(address, uint16(data))
	mem.Write16(address+2, uint16(data>>16))
}
