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

package test

import "testing"

// expect tests argument v for a success condition suitable for its type.
// currently supported types:
//
//	bool  -> bool == true
//	error -> error == nil
//	nil   -> success
func expect(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	case nil:
		return true
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
	}

	return false
}

// ExpectSuccess tests argument v for a success condition suitable for its
// type. See the expect() documentation for supported types.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()
	if !expect(t, v) {
		t.Errorf("expected success (%T)", v)
		return false
	}
	return true
}

// ExpectFailure tests argument v for a failure condition suitable for its
// type.
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()
	if expect(t, v) {
		t.Errorf("expected failure (%T)", v)
		return false
	}
	return true
}

// DemandSuccess is like ExpectSuccess except that failure of the expectation
// is a test fatality.
func DemandSuccess(t *testing.T, v interface{}) {
	t.Helper()
	if !expect(t, v) {
		t.Fatalf("success demanded but not given (%T)", v)
	}
}

// DemandFailure is like ExpectFailure except that success of the expectation
// is a test fatality.
func DemandFailure(t *testing.T, v interface{}) {
	t.Helper()
	if expect(t, v) {
		t.Fatalf("failure demanded but not given (%T)", v)
	}
}

// ExpectEquality compares a value against an expected value.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
		return false
	}
	return true
}

// ExpectInequality compares a value against a value we expect it not to be.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' does equal '%v'", value, value, expectedValue)
		return false
	}
	return true
}

// DemandEquality is like ExpectEquality except that failure of the test is a
// test fatality. This is particularly useful if the value being tested is
// used in further tests and so must be correct.
func DemandEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Fatalf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}
