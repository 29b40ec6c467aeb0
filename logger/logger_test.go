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

package logger_test

import (
	"testing"

	"github.com/jetsetilly/gopheradvance/logger"
	"github.com/jetsetilly/gopheradvance/test"
)

func TestLogger(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}

	logger.Log("test", "this is a test")
	logger.Write(tw)
	test.ExpectSuccess(t, tw.Compare("test: this is a test\n"))

	tw.Clear()
	logger.Logf("test", "this is test %d", 2)
	logger.Tail(tw, 1)
	test.ExpectSuccess(t, tw.Compare("test: this is test 2\n"))
}

func TestLoggerRepeatCollapse(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}

	logger.Log("test", "same entry")
	logger.Log("test", "same entry")
	logger.Log("test", "same entry")
	logger.Write(tw)
	test.ExpectSuccess(t, tw.Compare("test: same entry (repeat x3)\n"))
}

func TestLoggerTail(t *testing.T) {
	logger.Clear()

	tw := &test.Writer{}

	logger.Log("test", "one")
	logger.Log("test", "two")
	logger.Log("test", "three")

	logger.Tail(tw, 2)
	test.ExpectSuccess(t, tw.Compare("test: two\ntest: three\n"))

	// a tail longer than the log is the whole log
	tw.Clear()
	logger.Tail(tw, 100)
	test.ExpectSuccess(t, tw.Compare("test: one\ntest: two\ntest: three\n"))
}
