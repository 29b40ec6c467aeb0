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

// Package debugger is a terminal debugger for the emulated GBA: stepping
// by instruction or frame, register and memory inspection, and a graphviz
// dump of the hardware structure.
package debugger

import (
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/gopheradvance/cartridgeloader"
	"github.com/jetsetilly/gopheradvance/curated"
	"github.com/jetsetilly/gopheradvance/debugger/colorterm"
	"github.com/jetsetilly/gopheradvance/hardware"
	"github.com/jetsetilly/gopheradvance/logger"
)

// Debugger is the front-end for a debugging session.
type Debugger struct {
	gba  *hardware.GBA
	term *colorterm.Terminal

	running bool
}

// NewDebugger creates the hardware and attaches the game pak.
func NewDebugger(cartload cartridgeloader.Loader, biosFile string) (*Debugger, error) {
	dbg := &Debugger{
		gba: hardware.NewGBA(),
	}

	if err := cartload.Load(); err != nil {
		return nil, err
	}
	if err := dbg.gba.Mem.LoadROM(cartload.Data); err != nil {
		return nil, err
	}

	if biosFile != "" {
		bios, err := cartridgeloader.LoadBIOSFile(biosFile)
		if err != nil {
			return nil, err
		}
		if err := dbg.gba.Mem.LoadBIOS(bios); err != nil {
			return nil, err
		}
	}

	dbg.gba.Reset()

	var err error
	dbg.term, err = colorterm.NewTerminal()
	if err != nil {
		return nil, err
	}

	return dbg, nil
}

// Run the debugging loop until the user quits.
func (dbg *Debugger) Run() error {
	defer dbg.term.Restore()

	dbg.term.Print(colorterm.PenDim, "GopherAdvance debugger. HELP for commands.\n")

	dbg.running = true
	for dbg.running {
		input, err := dbg.term.ReadLine("(adv) ")
		if err != nil {
			if curated.Is(err, colorterm.UserInterrupt) {
				return nil
			}
			return err
		}

		if err := dbg.parseCommand(input); err != nil {
			dbg.term.Printf(colorterm.PenError, "%v\n", err)
		}
	}

	return nil
}

func (dbg *Debugger) parseCommand(input string) error {
	toks := strings.Fields(strings.ToUpper(input))
	if len(toks) == 0 {
		return nil
	}

	switch toks[0] {
	case "HELP":
		dbg.term.Print(colorterm.PenDim,
			"STEP [n]     step n instructions (default 1)\n"+
				"FRAME        run to the end of the frame\n"+
				"REGISTERS    show the CPU state\n"+
				"PEEK addr    show 16 bytes of memory\n"+
				"LOG          show the recent log\n"+
				"VIZ [file]   dump the hardware graph as graphviz dot\n"+
				"RESET        power cycle\n"+
				"QUIT         leave the debugger\n")

	case "STEP", "S":
		n := 1
		if len(toks) > 1 {
			v, err := strconv.Atoi(toks[1])
			if err != nil || v < 1 {
				return curated.Errorf("debugger: not a step count: %s", toks[1])
			}
			n = v
		}
		for i := 0; i < n; i++ {
			dbg.gba.Step()
		}
		dbg.term.Printf(colorterm.PenOff, "%s\n", dbg.gba.CPU.String())

	case "FRAME", "F":
		dbg.gba.RunFrame()
		dbg.term.Printf(colorterm.PenOff, "frame %d complete\n", dbg.gba.FrameCount)

	case "REGISTERS", "R":
		dbg.term.Printf(colorterm.PenOff, "%s\n", dbg.gba.CPU.String())

	case "PEEK", "P":
		if len(toks) < 2 {
			return curated.Errorf("debugger: PEEK requires an address")
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(toks[1], "0X"), 16, 32)
		if err != nil {
			return curated.Errorf("debugger: not an address: %s", toks[1])
		}
		dbg.peek(uint32(addr))

	case "LOG":
		w := &strings.Builder{}
		logger.Tail(w, 20)
		dbg.term.Print(colorterm.PenDim, w.String())

	case "VIZ":
		filename := "gopheradvance.dot"
		if len(toks) > 1 {
			filename = strings.ToLower(toks[1])
		}
		return dbg.writeViz(filename)

	case "RESET":
		dbg.gba.Reset()
		dbg.term.Print(colorterm.PenDim, "machine reset\n")

	case "QUIT", "Q", "EXIT":
		dbg.running = false

	default:
		return curated.Errorf("debugger: unknown command: %s", toks[0])
	}

	return nil
}

func (dbg *Debugger) peek(addr uint32) {
	dbg.term.Printf(colorterm.PenOff, "%08x: ", addr)
	for i := uint32(0); i < 16; i++ {
		dbg.term.Printf(colorterm.PenOff, "%02x ", dbg.gba.Mem.Read8(addr+i))
	}
	dbg.term.Print(colorterm.PenOff, "\n")
}

// writeViz dumps the hardware structure as a graphviz dot file. useful for
// seeing how the components relate at a glance.
func (dbg *Debugger) writeViz(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return curated.Errorf("debugger: %v", err)
	}
	defer f.Close()

	memviz.Map(f, dbg.gba)
	dbg.term.Printf(colorterm.PenDim, "hardware graph written to %s\n", filename)

	return nil
}
