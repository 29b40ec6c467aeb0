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

// Package colorterm is a minimal ANSI terminal for the debugger: a raw
// mode line reader with a coloured prompt. Raw mode lets the debugger see
// control characters like ctrl-c and ctrl-d as they are typed.
package colorterm

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/jetsetilly/gopheradvance/curated"
)

// ANSI pens used by the debugger.
const (
	PenPrompt = "\033[32m"
	PenError  = "\033[31m"
	PenDim    = "\033[2m"
	PenOff    = "\033[0m"
)

// UserInterrupt is the error pattern returned by ReadLine when the user
// types ctrl-c or ctrl-d.
const UserInterrupt = "user interrupt"

// Terminal is a raw mode ANSI terminal over stdin/stdout.
type Terminal struct {
	input  *os.File
	output *os.File

	// the terminal attributes for the two modes we switch between
	canAttr unix.Termios
	rawAttr unix.Termios
}

// NewTerminal prepares stdin/stdout for raw mode switching.
func NewTerminal() (*Terminal, error) {
	ct := &Terminal{
		input:  os.Stdin,
		output: os.Stdout,
	}

	if err := termios.Tcgetattr(ct.input.Fd(), &ct.canAttr); err != nil {
		return nil, curated.Errorf("colorterm: %v", err)
	}

	ct.rawAttr = ct.canAttr
	termios.Cfmakeraw(&ct.rawAttr)

	return ct, nil
}

// Restore returns the terminal to canonical mode.
func (ct *Terminal) Restore() {
	termios.Tcsetattr(ct.input.Fd(), termios.TCSANOW, &ct.canAttr)
}

func (ct *Terminal) rawMode() {
	termios.Tcsetattr(ct.input.Fd(), termios.TCSANOW, &ct.rawAttr)
}

// Print writes to the terminal, colouring the output with the given pen.
func (ct *Terminal) Print(pen string, s string) {
	// in raw mode a newline does not return the carriage
	s = strings.ReplaceAll(s, "\n", "\r\n")
	ct.output.WriteString(pen)
	ct.output.WriteString(s)
	ct.output.WriteString(PenOff)
}

// Printf writes formatted output to the terminal.
func (ct *Terminal) Printf(pen string, format string, args ...interface{}) {
	ct.Print(pen, fmt.Sprintf(format, args...))
}

// ReadLine reads one line of input in raw mode, handling backspace and the
// interrupt control characters.
func (ct *Terminal) ReadLine(prompt string) (string, error) {
	ct.rawMode()
	defer ct.Restore()

	ct.Print(PenPrompt, prompt)

	input := strings.Builder{}
	buf := make([]byte, 1)

	for {
		n, err := ct.input.Read(buf)
		if err != nil {
			return "", curated.Errorf("colorterm: %v", err)
		}
		if n == 0 {
			return "", curated.Errorf(UserInterrupt)
		}

		switch buf[0] {
		case 0x03, 0x04: // ctrl-c, ctrl-d
			ct.Print(PenOff, "\n")
			return "", curated.Errorf(UserInterrupt)

		case '\r', '\n':
			ct.Print(PenOff, "\n")
			return input.String(), nil

		case 0x7f, 0x08: // backspace
			s := input.String()
			if len(s) > 0 {
				input.Reset()
				input.WriteString(s[:len(s)-1])
				ct.Print(PenOff, "\b \b")
			}

		default:
			if buf[0] >= 0x20 && buf[0] < 0x7f {
				input.WriteByte(buf[0])
				ct.Print(PenOff, string(buf[0:1]))
			}
		}
	}
}
