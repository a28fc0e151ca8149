// Package util contains misc internal utilities.
package util

import (
	"strconv"
	"strings"
	"time"
)

// Arange enumerates the half-open range [start, stop) with the given
// step, e.g. Arange(100, 700, 100) => [100 200 300 400 500 600].  The
// upper bound is exclusive; stop itself is never emitted.  A
// non-positive step or an empty range yields an empty slice.
func Arange(start, stop, step int) []int {
	if step <= 0 || stop <= start {
		return []int{}
	}
	out := make([]int, 0, (stop-start+step-1)/step)
	for v := start; v < stop; v += step {
		out = append(out, v)
	}
	return out
}

// IntSliceToCSV converts a slice of ints to CSV formatted data.
// e.g., []int{1,2,3,4,5} => "1,2,3,4,5"
func IntSliceToCSV(is []int) string {
	s := make([]string, len(is))
	for i, v := range is {
		s[i] = strconv.Itoa(v)
	}

	return strings.Join(s, ",")
}

// SecsToDuration converts a seconds value from a config file to a
// time.Duration.
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
