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

// Package performance measures the emulation rate of the hardware without
// any front-end attached, optionally writing Go runtime profiles.
package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/gopheradvance/cartridgeloader"
	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/hardware"
	"github.com/jetsetilly/gopheradvance/statsview"
)

// the native frame rate of the GBA, for comparison in the report.
const nativeFPS = float64(hardware.CPUFrequency) / float64(hardware.CyclesPerFrame)

// Check the performance of the emulator using the supplied cartridge.
// Emulation runs for the specified duration and the achieved frame rate is
// written to output.
func Check(output io.Writer, cartload cartridgeloader.Loader, biosFile string, duration string, profile Profile, stats bool) error {
	gba := hardware.NewGBA()

	if err := cartload.Load(); err != nil {
		return err
	}
	if err := gba.Mem.LoadROM(cartload.Data); err != nil {
		return err
	}

	if biosFile != "" {
		bios, err := cartridgeloader.LoadBIOSFile(biosFile)
		if err != nil {
			return err
		}
		if err := gba.Mem.LoadBIOS(bios); err != nil {
			return err
		}
	}

	gba.Reset()

	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	if stats {
		if !statsview.Available() {
			return curated.Errorf("performance: statsview not compiled in (build with the statsview tag)")
		}
		statsview.Launch(output)
	}

	runner := func() error {
		deadline := time.Now().Add(dur)
		for time.Now().Before(deadline) {
			gba.RunFrame()
		}
		return nil
	}

	if err := profileRun(profile, "gopheradvance", runner); err != nil {
		return err
	}

	fps := float64(gba.FrameCount) / dur.Seconds()
	fmt.Fprintf(output, "%d frames in %v: %.1f fps (native %.2f fps, %.1fx)\n",
		gba.FrameCount, dur, fps, nativeFPS, fps/nativeFPS)

	return nil
}
