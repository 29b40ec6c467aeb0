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

package sdl

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/hardware/apu"
)

// the number of sample frames in the device buffer. small enough to keep
// latency down; large enough to ride out a slow frame.
const bufferLength = 1024

type audio struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec
}

func newAudio() (*audio, error) {
	au := &audio{}

	request := sdl.AudioSpec{
		Freq:     apu.SampleRate,
		Format:   sdl.AUDIO_S16SYS,
		Channels: 2,
		Samples:  bufferLength,
	}

	var err error
	au.id, err = sdl.OpenAudioDevice("", false, &request, &au.spec, 0)
	if err != nil {
		return nil, curated.Errorf("sdl: audio: %v", err)
	}

	sdl.PauseAudioDevice(au.id, false)

	return au, nil
}

func (au *audio) destroy() {
	sdl.CloseAudioDevice(au.id)
}

// queue passes interleaved stereo samples to the device.
func (au *audio) queue(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}

	b := make([]uint8, len(samples)*2)
	for i, s := range samples {
		b[i*2] = uint8(s)
		b[i*2+1] = uint8(uint16(s) >> 8)
	}

	if err := sdl.QueueAudio(au.id, b); err != nil {
		return curated.Errorf("sdl: audio: %v", err)
	}

	return nil
}
