package goversion

import (
	"fmt"
	"strconv"
	"strings"
)

// GoVersion represents the version of the Go compiler recovered from a
// binary's build information.
type GoVersion struct {
	Major     int
	Minor     int
	Rev       int // revision number or negative number for beta and rc releases
	Proposal  string
	Toolchain string
}

const (
	betaStart = -1000
	betaEnd   = -2000
)

func betaRev(beta int) int {
	return beta + betaEnd
}

func rcRev(rc int) int {
	return rc + betaStart
}

// Parse parses a go version string as embedded by the linker, e.g.
// "go1.18.5", "go1.21.0-something" or "devel +hash".
func Parse(ver string) (GoVersion, bool) {
	if strings.HasPrefix(ver, "devel") {
		return GoVersion{Major: -1}, true
	}
	if !strings.HasPrefix(ver, "go") {
		return GoVersion{}, false
	}

	var r GoVersion
	v := strings.SplitN(strings.Split(ver, " ")[0][2:], ".", 4)
	atoi := func(s string) (n int, ok bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}

	var ok bool
	if r.Major, ok = atoi(v[0]); !ok {
		return GoVersion{}, false
	}

	switch len(v) {
	case 2:
		// goX.Y, or a prerelease goX.YbetaZ / goX.YrcZ / goX.YbZ.
		if vr := strings.SplitN(v[1], "beta", 2); len(vr) == 2 {
			beta, ok := atoi(vr[1])
			if !ok {
				return GoVersion{}, false
			}
			r.Rev = betaRev(beta)
			v[1] = vr[0]
		} else if vr := strings.SplitN(v[1], "rc", 2); len(vr) == 2 {
			rc, ok := atoi(vr[1])
			if !ok {
				return GoVersion{}, false
			}
			r.Rev = rcRev(rc)
			v[1] = vr[0]
		} else if vr := strings.SplitN(v[1], "b", 2); len(vr) == 2 {
			// boringcrypto goX.YbZ
			if _, ok := atoi(vr[1]); !ok {
				return GoVersion{}, false
			}
			v[1] = vr[0]
		}
		if r.Minor, ok = atoi(v[1]); !ok {
			return GoVersion{}, false
		}
		return r, true

	case 3:
		// goX.Y.Z, with an optional toolchain or boringcrypto suffix.
		if r.Minor, ok = atoi(v[1]); !ok {
			return GoVersion{}, false
		}
		patch := v[2]
		if vr := strings.SplitN(patch, "-", 2); len(vr) == 2 {
			patch, r.Toolchain = vr[0], vr[1]
		} else if vr := strings.SplitN(patch, "b", 2); len(vr) == 2 {
			patch = vr[0]
		}
		if r.Rev, ok = atoi(patch); !ok {
			return GoVersion{}, false
		}
		return r, true

	case 4:
		// old proposal release goX.Y.Z.anything
		if r.Minor, ok = atoi(v[1]); !ok {
			return GoVersion{}, false
		}
		if r.Rev, ok = atoi(v[2]); !ok {
			return GoVersion{}, false
		}
		r.Proposal = v[3]
		if r.Proposal == "" {
			return GoVersion{}, false
		}
		return r, true
	}
	return GoVersion{}, false
}

// AfterOrEqual returns whether v is after or equal to b.
func (v *GoVersion) AfterOrEqual(b GoVersion) bool {
	if v.Major != b.Major {
		return v.Major > b.Major
	}
	if v.Minor != b.Minor {
		return v.Minor > b.Minor
	}
	return v.Rev >= b.Rev
}

// IsDevel returns whether v is a development version.
func (v *GoVersion) IsDevel() bool {
	return v.Major < 0
}

func (v *GoVersion) String() string {
	switch {
	case v.Rev < betaStart:
		return fmt.Sprintf("go%d.%dbeta%d", v.Major, v.Minor, v.Rev-betaEnd)
	case v.Rev < 0:
		return fmt.Sprintf("go%d.%drc%d", v.Major, v.Minor, v.Rev-betaStart)
	case v.Proposal != "":
		return fmt.Sprintf("go%d.%d.%d.%s", v.Major, v.Minor, v.Rev, v.Proposal)
	case v.Rev == 0 && v.Minor < 21:
		return fmt.Sprintf("go%d.%d", v.Major, v.Minor)
	case v.Toolchain != "":
		return fmt.Sprintf("go%d.%d.%d-%s", v.Major, v.Minor, v.Rev, v.Toolchain)
	default:
		return fmt.Sprintf("go%d.%d.%d", v.Major, v.Minor, v.Rev)
	}
}

// VersionAfterOrEqual checks that version (as embedded in a binary's build
// information) is major.minor or a later version, or a development version.
func VersionAfterOrEqual(version string, major, minor int) bool {
	ver, _ := Parse(version)
	if ver.IsDevel() {
		return true
	}
	return ver.AfterOrEqual(GoVersion{Major: major, Minor: minor, Rev: betaEnd})
}
