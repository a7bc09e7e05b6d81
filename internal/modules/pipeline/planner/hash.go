package planner

import (
	"hash/fnv"
	"math"
)

// Unit maps (seed, tag) to a reproducible value in [0, 1) using 32-bit FNV-1a.
func Unit(seed, tag string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte(tag))
	return float64(h.Sum32()) / (float64(math.MaxUint32) + 1)
}

// IntIn draws an integer in the closed range [lo, hi].
func IntIn(seed, tag string, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := lo + int(Unit(seed, tag)*float64(hi-lo+1))
	if n > hi {
		n = hi
	}
	return n
}
