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

// Package test contains helper functions to remove common boilerplate to
// make testing easier.
//
// The ExpectSuccess and ExpectFailure functions test for success and failure
// under generic conditions. A nil value is interpreted as success because of
// how errors usually work (a nil error indicating no error).
//
// ExpectEquality compares like-typed values for equality. The Demand
// variants of these functions work identically except that failure is
// a test fatality.
//
// The Writer type implements the io.Writer interface and can be used to
// capture output for comparison with expected strings.
package test
