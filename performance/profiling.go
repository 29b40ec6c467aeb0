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

package performance

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/jetsetilly/gopheradvance/curated"
)

// Profile selects the Go runtime profiles written during a performance
// check.
type Profile int

// The available profiles.
const (
	ProfileNone Profile = iota
	ProfileCPU
	ProfileMem
	ProfileBoth
)

// ParseProfile converts a command line argument to a Profile value.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "none", "":
		return ProfileNone, nil
	case "cpu":
		return ProfileCPU, nil
	case "mem":
		return ProfileMem, nil
	case "both", "all":
		return ProfileBoth, nil
	}
	return ProfileNone, curated.Errorf("performance: unknown profile: %s", s)
}

// profileRun brackets the runner function with the requested profiling.
func profileRun(profile Profile, tag string, runner func() error) (rerr error) {
	if profile == ProfileCPU || profile == ProfileBoth {
		f, err := os.Create(tag + "_cpu.profile")
		if err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := runner(); err != nil {
		return err
	}

	if profile == ProfileMem || profile == ProfileBoth {
		f, err := os.Create(tag + "_mem.profile")
		if err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer f.Close()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return curated.Errorf("performance: %v", err)
		}
	}

	return nil
}
