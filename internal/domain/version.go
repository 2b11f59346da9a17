package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion indicates a version string that is not a semantic version.
var ErrInvalidVersion = errors.New("invalid version")

// Version is a semantic version triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// V builds a Version from its components.
func V(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses "1.2.3". Short forms such as "1" or "1.2" are accepted
// and completed with zeros; a leading "v" is optional.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	if !semver.IsValid(raw) || semver.Prerelease(raw) != "" || semver.Build(raw) != "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	parts := strings.Split(strings.TrimPrefix(semver.Canonical(raw), "v"), ".")
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}
	return V(nums[0], nums[1], nums[2]), nil
}

// MustParseVersion is ParseVersion for constants and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 following semantic version precedence.
func (v Version) Compare(o Version) int {
	return semver.Compare("v"+v.String(), "v"+o.String())
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// FirstRelease is the version a card carries until it first enters playtesting.
var FirstRelease = V(1, 0, 0)
