package model

import (
	"strconv"
	"strings"
)

// VolumeBounds returns the first and last volume number of a volume id.
// Single volumes ("6") return the same number twice, combined volumes
// ("22-23") return both ends. Unparseable ids return -1, -1.
func VolumeBounds(volume string) (int, int) {
	first, last, found := strings.Cut(strings.TrimSpace(volume), "-")
	a, err := strconv.Atoi(first)
	if err != nil {
		return -1, -1
	}
	if !found {
		return a, a
	}
	b, err := strconv.Atoi(last)
	if err != nil {
		return a, a
	}
	return a, b
}

// CompareVolumes orders volume ids numerically, falling back to string
// order for ids that are not numeric.
func CompareVolumes(a, b string) int {
	a1, a2 := VolumeBounds(a)
	b1, b2 := VolumeBounds(b)
	switch {
	case a1 < 0 || b1 < 0:
		return strings.Compare(a, b)
	case a1 != b1:
		return a1 - b1
	case a2 != b2:
		return a2 - b2
	}
	return 0
}
