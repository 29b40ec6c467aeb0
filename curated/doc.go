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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like the Errorf() function in
// the fmt package, and returns an error.
//
// The Is() function can be used to check whether an error was created by
// Errorf() with a specific pattern. The Has() function is similar but checks
// whether the pattern occurs somewhere in the error chain.
//
// The Error() implementation for curated errors normalises the error chain,
// removing duplicate adjacent parts of the message. Parts are the sub-strings
// separated by ": ", as suggested on p239 of "The Go Programming Language"
// (Donovan, Kernighan). The practical advantage is that callers can wrap
// freely without worrying about repeated prefixes in the final message.
package curated
