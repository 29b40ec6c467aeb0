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

// Package wavwriter allows writing of APU audio output to disk as a WAV
// file. Note that audio data is buffered in memory in its entirety and
// written to disk on EndMixing(). It is therefore probably only suitable
// for testing and short recordings.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/hardware/apu"
	"github.com/jetsetilly/gopheradvance/logger"
)

// WavWriter buffers stereo samples as they are produced by the APU.
type WavWriter struct {
	filename string
	buffer   []int
}

// NewWavWriter is the preferred method of initialisation for the WavWriter
// type.
func NewWavWriter(filename string) *WavWriter {
	return &WavWriter{
		filename: filename,
		buffer:   make([]int, 0, apu.SampleRate*2),
	}
}

// SetAudio appends a batch of samples to the recording.
func (aw *WavWriter) SetAudio(samples []apu.Sample) {
	for _, s := range samples {
		aw.buffer = append(aw.buffer, int(s.Left), int(s.Right))
	}
}

// EndMixing writes the buffered samples to the WAV file.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, apu.SampleRate, 16, 2, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  apu.SampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	logger.Logf("wavwriter", "audio written to %s", aw.filename)

	return nil
}
