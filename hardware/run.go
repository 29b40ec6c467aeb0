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

package hardware

// RunFrame runs the emulation until the PPU signals that a frame is
// complete, at the start of the vertical blank. Successive frames end
// 280896 cycles of emulated time apart; the first frame after a reset ends
// after the 160 visible lines, 197120 cycles in.
func (gba *GBA) RunFrame() {
	gba.PPU.FrameReady = false

	for !gba.PPU.FrameReady {
		gba.Step()
	}

	gba.FrameCount++
}

// Run the emulation frame by frame until the callback returns false or an
// error. The callback is called after each completed frame; front-ends use
// it to present the framebuffer, drain audio and pump input.
func (gba *GBA) Run(frameCallback func() (bool, error)) error {
	for {
		gba.RunFrame()

		cont, err := frameCallback()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}
