// Package align maps a playback position onto time-ordered content:
// the active chapter, story, or transcript segment at a given moment.
// All inputs are assumed sorted ascending by start time.
package align

import "slices"

// ActiveIndex returns the index of the entry active at time t: the
// last entry whose start time is <= t. When t precedes every start
// time the first entry is still considered active, so the only
// "no selection" case (-1) is an empty list.
func ActiveIndex(starts []float64, t float64) int {
	if len(starts) == 0 {
		return -1
	}

	// Insertion point for t; everything before it has start <= t
	// because ties compare equal.
	idx, found := slices.BinarySearchFunc(starts, t, func(s, key float64) int {
		switch {
		case s < key:
			return -1
		case s > key:
			return 1
		default:
			return 0
		}
	})
	if found {
		// Ties resolve to the entry starting exactly at t; if several
		// share the start time, take the last of them.
		for idx+1 < len(starts) && starts[idx+1] == t {
			idx++
		}
		return idx
	}
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// ActiveIndexFunc is ActiveIndex over an arbitrary slice with a start
// time accessor, so chapter, story, and segment lists share one lookup.
func ActiveIndexFunc[T any](entries []T, t float64, start func(T) float64) int {
	if len(entries) == 0 {
		return -1
	}
	starts := make([]float64, len(entries))
	for i, e := range entries {
		starts[i] = start(e)
	}
	return ActiveIndex(starts, t)
}
