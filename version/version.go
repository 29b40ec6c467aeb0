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

// Package version records the name and version of the application.
package version

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "GopherAdvance"

// number is set through the linker by the makefile.
var number string

// Version is the current version of the project. A version of "unreleased"
// means the project was built without the makefile.
var Version string

func init() {
	if number == "" {
		Version = "unreleased"
	} else {
		Version = number
	}
}
