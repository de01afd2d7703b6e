package updater

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a strict major.minor.patch release version. Release tags
// are cut by CI and never carry pre-release or build suffixes.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "1.4.2" or "v1.4.2".
func ParseVersion(tag string) (Version, error) {
	var v Version
	dst := [3]*int{&v.Major, &v.Minor, &v.Patch}

	rest := strings.TrimPrefix(tag, "v")
	for i := 0; i < 3; i++ {
		part := rest
		if i < 2 {
			var found bool
			part, rest, found = strings.Cut(rest, ".")
			if !found {
				return Version{}, fmt.Errorf("version %q: want major.minor.patch", tag)
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("version %q: component %q is not a number", tag, part)
		}
		*dst[i] = n
	}
	return v, nil
}

// String returns the bare "major.minor.patch" form without the v prefix.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions: negative when v is older than other, zero
// when equal, positive when newer.
func (v Version) Compare(other Version) int {
	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}
