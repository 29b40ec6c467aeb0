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

// Package playmode is the glue for a regular play session: hardware plus
// the SDL front-end, running at the native frame rate.
package playmode

import (
	"time"

	"github.com/jetsetilly/gopheradvance/cartridgeloader"
	"github.com/jetsetilly/gopheradvance/gui/sdl"
	"github.com/jetsetilly/gopheradvance/hardware"
	"github.com/jetsetilly/gopheradvance/wavwriter"
)

// the native frame rate of the GBA.
const framesPerSecond = float64(hardware.CPUFrequency) / float64(hardware.CyclesPerFrame)

// Options for a play session.
type Options struct {
	// path to a BIOS image. optional; most ROMs run without one
	BIOSFile string

	// integer scaling of the 240x160 screen
	Scale int

	// run as fast as the host allows rather than at the native rate
	Uncapped bool

	// record audio to this WAV file
	WavFile string
}

// Play runs the game pak until the host window is closed.
func Play(cartload cartridgeloader.Loader, opts Options) error {
	gba := hardware.NewGBA()

	if err := cartload.Load(); err != nil {
		return err
	}
	if err := gba.Mem.LoadROM(cartload.Data); err != nil {
		return err
	}
	cartload.LoadSave(gba.Mem.SRAM)

	if opts.BIOSFile != "" {
		bios, err := cartridgeloader.LoadBIOSFile(opts.BIOSFile)
		if err != nil {
			return err
		}
		if err := gba.Mem.LoadBIOS(bios); err != nil {
			return err
		}
	}

	gba.Reset()

	scr, err := sdl.NewGUI(gba.Mem, opts.Scale)
	if err != nil {
		return err
	}
	defer scr.Destroy()

	var wav *wavwriter.WavWriter
	if opts.WavFile != "" {
		wav = wavwriter.NewWavWriter(opts.WavFile)
	}

	// frame pacing. the vsync of the SDL renderer is close to the GBA rate
	// on a 60Hz display but cannot be relied on
	frameDuration := time.Duration(float64(time.Second) / framesPerSecond)
	nextFrame := time.Now()

	err = gba.Run(func() (bool, error) {
		scr.Service()
		if scr.Quit {
			return false, nil
		}

		if err := scr.SetFrame(gba.PPU.Framebuffer()); err != nil {
			return false, err
		}

		samples := gba.APU.GetSamples(gba.APU.BufferedSamples())
		if len(samples) > 0 {
			interleaved := make([]int16, 0, len(samples)*2)
			for _, s := range samples {
				interleaved = append(interleaved, s.Left, s.Right)
			}
			if err := scr.QueueAudio(interleaved); err != nil {
				return false, err
			}
			if wav != nil {
				wav.SetAudio(samples)
			}
		}

		if !opts.Uncapped {
			nextFrame = nextFrame.Add(frameDuration)
			if d := time.Until(nextFrame); d > 0 {
				time.Sleep(d)
			} else {
				// fallen behind. rebase rather than racing to catch up
				nextFrame = time.Now()
			}
		}

		return true, nil
	})
	if err != nil {
		return err
	}

	if wav != nil {
		if err := wav.EndMixing(); err != nil {
			return err
		}
	}

	return cartload.WriteSave(gba.Mem.SRAM)
}
