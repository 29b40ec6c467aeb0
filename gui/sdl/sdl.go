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

// Package sdl is the SDL2 based front-end for play sessions: a scaled
// window streaming the PPU framebuffer, the host keyboard mapped to the
// ten GBA keys and the APU output queued to the host audio device.
//
// SDL requires servicing from the main thread; the Service() function must
// be called regularly from the goroutine that created the GUI.
package sdl

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/hardware/memory"
	"github.com/jetsetilly/gopheradvance/hardware/ppu"
)

// GUI is the SDL window and audio device for a play session.
type GUI struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	audio *audio

	// key state changes are delivered to the emulated keypad
	keypad Keypad

	// Quit is set when the host asks for the window to close
	Quit bool
}

// Keypad is the destination for host key events: the memory bus's key
// state register.
type Keypad interface {
	SetKeyState(key memory.Key, pressed bool)
}

// NewGUI creates the SDL window at the given integer scale and opens the
// audio device.
func NewGUI(keypad Keypad, scale int) (*GUI, error) {
	if scale < 1 {
		scale = 1
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	g := &GUI{keypad: keypad}

	var err error

	g.window, err = sdl.CreateWindow("GopherAdvance",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(ppu.ScreenWidth*scale), int32(ppu.ScreenHeight*scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	g.renderer, err = sdl.CreateRenderer(g.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	g.texture, err = g.renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING, ppu.ScreenWidth, ppu.ScreenHeight)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	g.audio, err = newAudio()
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Destroy releases the SDL resources.
func (g *GUI) Destroy() {
	g.audio.destroy()
	g.texture.Destroy()
	g.renderer.Destroy()
	g.window.Destroy()
	sdl.Quit()
}

// SetFrame presents a completed framebuffer.
func (g *GUI) SetFrame(framebuffer []uint8) error {
	if err := g.texture.Update(nil, framebuffer, ppu.ScreenWidth*4); err != nil {
		return curated.Errorf("sdl: %v", err)
	}
	if err := g.renderer.Clear(); err != nil {
		return curated.Errorf("sdl: %v", err)
	}
	if err := g.renderer.Copy(g.texture, nil, nil); err != nil {
		return curated.Errorf("sdl: %v", err)
	}
	g.renderer.Present()
	return nil
}

// QueueAudio passes samples to the host audio device.
func (g *GUI) QueueAudio(samples []int16) error {
	return g.audio.queue(samples)
}

// Service processes pending SDL events. Must be called regularly from the
// main thread.
func (g *GUI) Service() {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			g.Quit = true

		case *sdl.KeyboardEvent:
			pressed := ev.Type == sdl.KEYDOWN

			if key, ok := keyMapping[ev.Keysym.Sym]; ok {
				g.keypad.SetKeyState(key, pressed)
			} else if ev.Keysym.Sym == sdl.K_ESCAPE && pressed {
				g.Quit = true
			}
		}
	}
}

// the host keyboard to GBA keypad mapping.
var keyMapping = map[sdl.Keycode]memory.Key{
	sdl.K_z:         memory.KeyA,
	sdl.K_x:         memory.KeyB,
	sdl.K_RETURN:    memory.KeyStart,
	sdl.K_BACKSPACE: memory.KeySelect,
	sdl.K_UP:        memory.KeyUp,
	sdl.K_DOWN:      memory.KeyDown,
	sdl.K_LEFT:      memory.KeyLeft,
	sdl.K_RIGHT:     memory.KeyRight,
	sdl.K_a:         memory.KeyL,
	sdl.K_s:         memory.KeyR,
}
