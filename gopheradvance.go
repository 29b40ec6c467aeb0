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

// GopherAdvance is a Game Boy Advance emulator.
//
//	gopheradvance [mode] [flags] cartridge
//
// Modes are RUN, DEBUG and PERFORMANCE. The default mode is RUN.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jetsetilly/gopheradvance/cartridgeloader"
	"github.com/jetsetilly/gopheradvance/debugger"
	"github.com/jetsetilly/gopheradvance/logger"
	"github.com/jetsetilly/gopheradvance/performance"
	"github.com/jetsetilly/gopheradvance/playmode"
	"github.com/jetsetilly/gopheradvance/version"
)

func main() {
	os.Exit(launch(os.Args[1:]))
}

func launch(args []string) int {
	mode := "RUN"
	if len(args) > 0 {
		switch strings.ToUpper(args[0]) {
		case "RUN", "DEBUG", "PERFORMANCE", "VERSION":
			mode = strings.ToUpper(args[0])
			args = args[1:]
		}
	}

	var err error

	switch mode {
	case "RUN":
		err = run(args)
	case "DEBUG":
		err = debug(args)
	case "PERFORMANCE":
		err = perform(args)
	case "VERSION":
		fmt.Println(version.Version)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		return 10
	}

	return 0
}

func cartridgeArg(fs *flag.FlagSet) (cartridgeloader.Loader, error) {
	if fs.NArg() != 1 {
		return cartridgeloader.Loader{}, fmt.Errorf("one cartridge file required")
	}
	return cartridgeloader.NewLoader(fs.Arg(0)), nil
}

func run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	bios := fs.String("bios", "", "path to BIOS image")
	scale := fs.Int("scale", 3, "scaling of the emulator screen")
	uncapped := fs.Bool("uncapped", false, "run as fast as the host allows")
	wavFile := fs.String("wav", "", "record audio to WAV file")
	log := fs.Bool("log", false, "echo log to stderr")
	fs.Parse(args)

	if *log {
		logger.SetEcho(os.Stderr)
	}

	cartload, err := cartridgeArg(fs)
	if err != nil {
		return err
	}

	return playmode.Play(cartload, playmode.Options{
		BIOSFile: *bios,
		Scale:    *scale,
		Uncapped: *uncapped,
		WavFile:  *wavFile,
	})
}

func debug(args []string) error {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	bios := fs.String("bios", "", "path to BIOS image")
	fs.Parse(args)

	cartload, err := cartridgeArg(fs)
	if err != nil {
		return err
	}

	dbg, err := debugger.NewDebugger(cartload, *bios)
	if err != nil {
		return err
	}

	return dbg.Run()
}

func perform(args []string) error {
	fs := flag.NewFlagSet("performance", flag.ExitOnError)
	bios := fs.String("bios", "", "path to BIOS image")
	duration := fs.String("duration", "5s", "run duration")
	profile := fs.String("profile", "none", "run profiler (cpu/mem/both)")
	stats := fs.Bool("statsview", false, "run statsview server")
	fs.Parse(args)

	cartload, err := cartridgeArg(fs)
	if err != nil {
		return err
	}

	prof, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	return performance.Check(os.Stdout, cartload, *bios, *duration, prof, *stats)
}
