// SPDX-License-Identifier: Apache-2.0

package wobbly

// MatchArray is a per-source-frame match-character array. A nil/empty array
// answers every query with the neutral value 'c', matching the behavior of
// a metrics-less freshly created project.
type MatchArray []MatchChar

// Get returns the match character at frame, or MatchC if the array is empty.
func (m MatchArray) Get(frame int) MatchChar {
	if len(m) == 0 {
		return MatchC
	}
	return m[frame]
}

// MicsRow is the five-value mic row for one frame, indexed by matchCharToIndexMics.
type MicsRow [5]int16

// MicsArray is a per-source-frame mic array.
type MicsArray []MicsRow

// Get returns the mic row at frame, or the zero row if the array is empty.
func (m MicsArray) Get(frame int) MicsRow {
	if len(m) == 0 {
		return MicsRow{}
	}
	return m[frame]
}

// DMetricsRow is the two-value {p, c} row for one frame in the mmetrics or
// vmetrics arrays.
type DMetricsRow [2]int32

// DMetricsArray is a per-source-frame mmetrics or vmetrics array.
type DMetricsArray []DMetricsRow

// Get returns the row at frame, or the zero row if the array is empty.
func (m DMetricsArray) Get(frame int) DMetricsRow {
	if len(m) == 0 {
		return DMetricsRow{}
	}
	return m[frame]
}

// DecimateMetricArray is a per-source-frame scalar decimation-quality metric.
type DecimateMetricArray []int32

// Get returns the value at frame, or 0 if the array is empty.
func (m DecimateMetricArray) Get(frame int) int32 {
	if len(m) == 0 {
		return 0
	}
	return m[frame]
}

// matchCharToIndexMics maps a match character to its column in a MicsRow:
// p:0, c:1, n:2, b:3, u:4.
func matchCharToIndexMics(ch MatchChar) int {
	switch ch {
	case MatchP:
		return 0
	case MatchC:
		return 1
	case MatchN:
		return 2
	case MatchB:
		return 3
	case MatchU:
		return 4
	}
	return 1
}

// matchCharToIndexDMetrics maps a match character to its column in a
// DMetricsRow: p->0, c->1, n->0, b->1, u->0. This asymmetry (n/u alias p's
// column, b aliases c's column) is deliberate and load-bearing for the
// from-DMetrics pattern guesser; it must not be "fixed".
func matchCharToIndexDMetrics(ch MatchChar) int {
	switch ch {
	case MatchC, MatchB:
		return 1
	default:
		return 0
	}
}

// threeColumnDMetrics derives the 3-element {own p, own c, next-frame p} row
// the original implementation's getMMetrics/getVMetrics expose: columns 0/1
// are the requested frame's own row, column 2 is the next frame's p column
// (or a duplicate of column 1 at the last frame, or zero if the array is
// empty). This shape is consumed only by the from-DMetrics guesser.
func threeColumnDMetrics(arr DMetricsArray, frame int) [3]int32 {
	if len(arr) == 0 {
		return [3]int32{}
	}
	row := arr[frame]
	var next int32
	if frame+1 < len(arr) {
		next = arr[frame+1][0]
	} else {
		next = row[1]
	}
	return [3]int32{row[0], row[1], next}
}

// cnbOrder is the rotation order used by cycleMatchCNB: c -> n -> b -> c.
var cnbOrder = []MatchChar{MatchC, MatchN, MatchB}

// fullOrder is the rotation order used by cycleMatch: c -> n -> b -> p -> u -> c.
var fullOrder = []MatchChar{MatchC, MatchN, MatchB, MatchP, MatchU}

// nextInRotation returns the next character after ch in order, wrapping
// around, skipping any character for which forbidden returns true. It
// always terminates within len(order) steps since ch itself is a member of
// order and is never forbidden at its own starting position by definition
// of the caller's boundary rules (the caller guarantees the current value
// is a legal value to begin with, or falls back to MatchC).
func nextInRotation(order []MatchChar, ch MatchChar, forbidden func(MatchChar) bool) MatchChar {
	start := 0
	for i, c := range order {
		if c == ch {
			start = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		candidate := order[(start+i)%len(order)]
		if !forbidden(candidate) {
			return candidate
		}
	}
	return ch
}

// findFrameWithMic scans from frame (excluding it) in the direction of step
// for the nearest frame whose mic value for character ch differs from the
// frame's own. Only that one direction is searched; a caller wanting the
// closer of previous/next calls it once per direction.
func findFrameWithMic(mics MicsArray, ch MatchChar, frame, step, limit int) (int, bool) {
	idx := matchCharToIndexMics(ch)
	for f := frame + step; f >= 0 && f < limit; f += step {
		if len(mics) == 0 {
			return -1, false
		}
		if mics[f][idx] != mics[frame][idx] {
			return f, true
		}
	}
	return -1, false
}
