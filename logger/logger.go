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

// Package logger is the central log facility for the emulator. Entries are
// added with the Log() and Logf() functions. A tag identifies the part of
// the emulator making the entry.
//
// Consecutive entries with the same tag and detail are collapsed into a
// single entry with a repeat count, meaning a looping log request will not
// flood the log.
package logger

import (
	"fmt"
	"io"
	"strings"
)

// Entry represents a single line/entry in the log.
type Entry struct {
	tag      string
	detail   string
	repeated int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.tag, e.detail))
	if e.repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

type logger struct {
	maxEntries int
	entries    []Entry

	// if echo is not nil than write new entries to the io.Writer
	echo io.Writer
}

// maximum number of entries in the central logger.
const maxCentral = 256

// only allowing one central log for the entire application. there's no need
// to allow more than one.
var central *logger

func init() {
	central = &logger{
		maxEntries: maxCentral,
		entries:    make([]Entry, 0, maxCentral),
	}
}

func (l *logger) log(tag, detail string) {
	// remove all newline characters
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	if len(l.entries) > 0 {
		e := &l.entries[len(l.entries)-1]
		if e.tag == tag && e.detail == detail {
			e.repeated++
			return
		}
	}

	l.entries = append(l.entries, Entry{tag: tag, detail: detail})

	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}

	if l.echo != nil {
		io.WriteString(l.echo, l.entries[len(l.entries)-1].String())
	}
}

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, detail string, args ...interface{}) {
	central.log(tag, fmt.Sprintf(detail, args...))
}

// Clear all entries from the central logger.
func Clear() {
	central.entries = central.entries[:0]
}

// Write contents of central logger to the io.Writer.
func Write(output io.Writer) {
	for i := range central.entries {
		io.WriteString(output, central.entries[i].String())
	}
}

// Tail writes the last number of entries to the io.Writer.
func Tail(output io.Writer, number int) {
	if number > len(central.entries) {
		number = len(central.entries)
	}
	for _, e := range central.entries[len(central.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// SetEcho prints new entries to io.Writer as they happen. A nil value stops
// any echoing.
func SetEcho(output io.Writer) {
	central.echo = output
}
