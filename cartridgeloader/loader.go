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

// Package cartridgeloader is responsible for loading game pak and BIOS
// images from the filesystem and for the save RAM file that shadows the
// game pak's SRAM.
package cartridgeloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/logger"
)

// the game pak header region. a ROM smaller than this cannot be valid.
const headerSize = 0xc0

// header field locations.
const (
	titleStart    = 0xa0
	titleEnd      = 0xac
	gameCodeStart = 0xac
	gameCodeEnd   = 0xb0
)

// Loader is used to specify the game pak image to load and, once loaded,
// carries the image data and the fields parsed from the cartridge header.
type Loader struct {
	Filename string

	// the ROM image. valid after Load()
	Data []byte

	// fields from the cartridge header. valid after Load()
	Title    string
	GameCode string
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{Filename: filename}
}

// Load reads the game pak image from the filesystem and parses the
// cartridge header. An image too small to contain the header is an error.
func (ld *Loader) Load() error {
	data, err := os.ReadFile(ld.Filename)
	if err != nil {
		return curated.Errorf("cartridgeloader: %v", err)
	}

	if len(data) < headerSize {
		return curated.Errorf("cartridgeloader: %s is not a GBA ROM (%d bytes)", ld.Filename, len(data))
	}

	ld.Data = data
	ld.Title = printable(data[titleStart:titleEnd])
	ld.GameCode = printable(data[gameCodeStart:gameCodeEnd])

	logger.Logf("cartridgeloader", "loaded %s", ld.String())

	return nil
}

// SaveFilename returns the path of the save RAM file that shadows the game
// pak's SRAM: the ROM path with the extension replaced by ".sav".
func (ld Loader) SaveFilename() string {
	fn := ld.Filename
	if i := strings.LastIndex(fn, "."); i > 0 {
		fn = fn[:i]
	}
	return fn + ".sav"
}

// LoadSave fills the SRAM area from the save RAM file, if one exists. A
// missing file is not an error; the SRAM is simply left untouched.
func (ld Loader) LoadSave(sram []uint8) {
	data, err := os.ReadFile(ld.SaveFilename())
	if err != nil {
		return
	}
	copy(sram, data)
	logger.Logf("cartridgeloader", "save RAM loaded from %s", ld.SaveFilename())
}

// WriteSave writes the SRAM area to the save RAM file.
func (ld Loader) WriteSave(sram []uint8) error {
	err := os.WriteFile(ld.SaveFilename(), sram, 0644)
	if err != nil {
		return curated.Errorf("cartridgeloader: %v", err)
	}
	logger.Logf("cartridgeloader", "save RAM written to %s", ld.SaveFilename())
	return nil
}

func (ld Loader) String() string {
	if ld.Data == nil {
		return ld.Filename
	}
	return fmt.Sprintf("%s [%s] (%dKB)", ld.Title, ld.GameCode, len(ld.Data)/1024)
}

// printable trims a header field to its printable ASCII content.
func printable(b []byte) string {
	s := strings.Builder{}
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			s.WriteByte(c)
		}
	}
	return strings.TrimSpace(s.String())
}

// LoadBIOSFile reads a BIOS image from the filesystem.
func LoadBIOSFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf("cartridgeloader: %v", err)
	}
	return data, nil
}
