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

// Package apu implements the audio system of the GBA: the two legacy
// square-wave channels and the two direct-sound channels fed by DMA and
// clocked by timer overflows.
//
// Samples are mixed into a bounded buffer at 32768Hz and collected by the
// front-end with GetSamples().
package apu

import (
	"github.com/jetsetilly/gopheradvance/hardware/irq"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
)

// SampleRate is the rate samples are generated at.
const SampleRate = 32768

const (
	cpuFrequency    = 16777216
	cyclesPerSample = cpuFrequency / SampleRate

	// the frame sequencer that clocks length, envelope and sweep runs at
	// 512Hz
	frameSequencerPeriod = cpuFrequency / 512

	// mixed samples are buffered until the front-end collects them
	bufferSize = 2048

	fifoSize = 32
)

// register offsets in the IO space.
const (
	addrSOUND1CNTL = 0x060
	addrSOUND1CNTH = 0x062
	addrSOUND1CNTX = 0x064
	addrSOUND2CNTL = 0x068
	addrSOUND2CNTH = 0x06c
	addrSOUNDCNTL  = 0x080
	addrSOUNDCNTH  = 0x082
	addrSOUNDCNTX  = 0x084
	addrSOUNDBIAS  = 0x088
	addrFIFOA      = 0x0a0
	addrFIFOAH     = 0x0a2
	addrFIFOB      = 0x0a4
	addrFIFOBH     = 0x0a6
)

// FIFORequest is notified when a direct-sound FIFO runs half empty and
// needs a DMA refill. Implemented by the DMA controller.
type FIFORequest interface {
	OnSoundFIFO(fifo int)
}

// Sample is one stereo sample.
type Sample struct {
	Left  int16
	Right int16
}

// APU is the audio processing unit of the GBA.
type APU struct {
	mem *memory.GBAMemory
	irq *irq.Controller

	// notified on FIFO half-empty. may be nil in tests
	fifoRequest FIFORequest

	square1 squareChannel
	square2 squareChannel
	soundA  directSound
	soundB  directSound

	masterEnable bool

	// PSG mixing control from SOUNDCNT_L/H
	psgVolumeLeft  int
	psgVolumeRight int
	psgEnableLeft  [4]bool
	psgEnableRight [4]bool
	psgMasterShift int

	bias int

	frameSequencerCount int
	frameSequencerStep  int

	sampleCount int
	buffer      []Sample
}

// NewAPU is the preferred method of initialisation for the APU type.
func NewAPU(mem *memory.GBAMemory, irqc *irq.Controller) *APU {
	ap := &APU{
		mem:    mem,
		irq:    irqc,
		buffer: make([]Sample, 0, bufferSize),
	}
	ap.square1.hasSweep = true
	ap.bias = 0x200
	return ap
}

// SetFIFORequest attaches the receiver of FIFO refill requests.
func (ap *APU) SetFIFORequest(fifoRequest FIFORequest) {
	ap.fifoRequest = fifoRequest
}

// Reset returns the APU to its power-on state.
func (ap *APU) Reset() {
	ap.square1.reset()
	ap.square2.reset()
	ap.soundA.reset()
	ap.soundB.reset()
	ap.masterEnable = false
	ap.frameSequencerCount = 0
	ap.frameSequencerStep = 0
	ap.sampleCount = 0
	ap.bias = 0x200
	ap.buffer = ap.buffer[:0]
}

// Step advances the APU by the number of CPU cycles.
func (ap *APU) Step(cycles int) {
	if !ap.masterEnable {
		return
	}

	for i := 0; i < cycles; i++ {
		ap.stepFrameSequencer()
		ap.square1.step()
		ap.square2.step()

		ap.sampleCount++
		if ap.sampleCount >= cyclesPerSample {
			ap.sampleCount = 0
			ap.mixSample()
		}
	}
}

func (ap *APU) stepFrameSequencer() {
	ap.frameSequencerCount++
	if ap.frameSequencerCount < frameSequencerPeriod {
		return
	}
	ap.frameSequencerCount = 0

	if ap.frameSequencerStep%2 == 0 {
		ap.square1.stepLength()
		ap.square2.stepLength()
	}
	if ap.frameSequencerStep == 2 || ap.frameSequencerStep == 6 {
		ap.square1.stepSweep()
	}
	if ap.frameSequencerStep == 7 {
		ap.square1.stepEnvelope()
		ap.square2.stepEnvelope()
	}

	ap.frameSequencerStep = (ap.frameSequencerStep + 1) & 0x7
}

func (ap *APU) mixSample() {
	var left, right int

	psg := [2]int{ap.square1.sample(), ap.square2.sample()}
	for i, s := range psg {
		if ap.psgEnableLeft[i] {
			left += s
		}
		if ap.psgEnableRight[i] {
			right += s
		}
	}

	left = left * (ap.psgVolumeLeft + 1) >> 3 >> ap.psgMasterShift
	right = right * (ap.psgVolumeRight + 1) >> 3 >> ap.psgMasterShift

	a := ap.soundA.sample()
	b := ap.soundB.sample()

	if ap.soundA.enableLeft {
		left += a
	}
	if ap.soundA.enableRight {
		right += a
	}
	if ap.soundB.enableLeft {
		left += b
	}
	if ap.soundB.enableRight {
		right += b
	}

	if len(ap.buffer) < bufferSize {
		ap.buffer = append(ap.buffer, Sample{
			Left:  ap.applyBias(left),
			Right: ap.applyBias(right),
		})
	}
}

// applyBias applies the SOUNDBIAS offset, clamps to the 10-bit output range
// of the hardware and rescales to 16 bits.
func (ap *APU) applyBias(sample int) int16 {
	sample += ap.bias
	if sample < 0 {
		sample = 0
	} else if sample > 1023 {
		sample = 1023
	}
	return int16((sample - 512) * 64)
}

// GetSamples removes and returns up to count samples from the buffer.
func (ap *APU) GetSamples(count int) []Sample {
	if count > len(ap.buffer) {
		count = len(ap.buffer)
	}
	samples := make([]Sample, count)
	copy(samples, ap.buffer[:count])
	ap.buffer = ap.buffer[:copy(ap.buffer, ap.buffer[count:])]
	return samples
}

// BufferedSamples returns the number of samples waiting for collection.
func (ap *APU) BufferedSamples() int {
	return len(ap.buffer)
}

// TimerOverflow implements the timer.AudioCadence interface. An overflow of
// timer 0 or 1 advances any direct-sound channel clocked by that timer.
func (ap *APU) TimerOverflow(timer int) {
	if ap.soundA.timerSelect == timer {
		if ap.soundA.timerOverflow() && ap.fifoRequest != nil {
			ap.fifoRequest.OnSoundFIFO(0)
		}
	}
	if ap.soundB.timerSelect == timer {
		if ap.soundB.timerOverflow() && ap.fifoRequest != nil {
			ap.fifoRequest.OnSoundFIFO(1)
		}
	}
}

// ReadRegister implements the memory.IODevice interface. All sound
// registers are latched in the bus's backing bytes; nothing is claimed.
func (ap *APU) ReadRegister(offset uint32) (uint16, bool) {
	return 0, false
}

// WriteRegister implements the memory.IODevice interface.
func (ap *APU) WriteRegister(offset uint32, data uint16) bool {
	switch offset {
	case addrSOUND1CNTL:
		ap.square1.writeSweep(data)
	case addrSOUND1CNTH:
		ap.square1.writeDutyLenEnvelope(data)
	case addrSOUND1CNTX:
		ap.square1.writeFrequency(data)
	case addrSOUND2CNTL:
		ap.square2.writeDutyLenEnvelope(data)
	case addrSOUND2CNTH:
		ap.square2.writeFrequency(data)
	case addrSOUNDCNTL:
		ap.writeSoundCntL(data)
	case addrSOUNDCNTH:
		ap.writeSoundCntH(data)
	case addrSOUNDCNTX:
		ap.masterEnable = data&0x80 != 0
		if !ap.masterEnable {
			ap.square1.reset()
			ap.square2.reset()
		}
	case addrSOUNDBIAS:
		ap.bias = int(data & 0x3ff)
	case addrFIFOA, addrFIFOAH:
		ap.soundA.push(data)
	case addrFIFOB, addrFIFOBH:
		ap.soundB.push(data)
	default:
		return false
	}
	return true
}

func (ap *APU) writeSoundCntL(data uint16) {
	ap.psgVolumeRight = int(data) & 0x7
	ap.psgVolumeLeft = int(data>>4) & 0x7
	for i := 0; i < 4; i++ {
		ap.psgEnableRight[i] = data&(1<<(8+i)) != 0
		ap.psgEnableLeft[i] = data&(1<<(12+i)) != 0
	}
}

func (ap *APU) writeSoundCntH(data uint16) {
	// PSG master volume: 25%, 50%, 100%
	shifts := [4]int{2, 1, 0, 0}
	ap.psgMasterShift = shifts[data&0x3]

	ap.soundA.fullVolume = data&0x0004 != 0
	ap.soundB.fullVolume = data&0x0008 != 0

	ap.soundA.enableRight = data&0x0100 != 0
	ap.soundA.enableLeft = data&0x0200 != 0
	ap.soundA.timerSelect = int(data>>10) & 0x1
	if data&0x0800 != 0 {
		ap.soundA.reset()
	}

	ap.soundB.enableRight = data&0x1000 != 0
	ap.soundB.enableLeft = data&0x2000 != 0
	ap.soundB.timerSelect = int(data>>14) & 0x1
	if data&0x8000 != 0 {
		ap.soundB.reset()
	}
}
