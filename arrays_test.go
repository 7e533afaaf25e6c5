// SPDX-License-Identifier: Apache-2.0

package wobbly

import "testing"

func TestMatchArrayGetEmptyIsNeutral(t *testing.T) {
	var m MatchArray
	if got := m.Get(0); got != MatchC {
		t.Errorf("empty MatchArray.Get() = %q, want 'c'", got)
	}
}

func TestMicsArrayGetEmptyIsZero(t *testing.T) {
	var m MicsArray
	if got := m.Get(3); got != (MicsRow{}) {
		t.Errorf("empty MicsArray.Get() = %+v, want zero row", got)
	}
}

func TestMatchCharToIndexMics(t *testing.T) {
	cases := map[MatchChar]int{MatchP: 0, MatchC: 1, MatchN: 2, MatchB: 3, MatchU: 4}
	for ch, want := range cases {
		if got := matchCharToIndexMics(ch); got != want {
			t.Errorf("matchCharToIndexMics(%q) = %d, want %d", ch, got, want)
		}
	}
}

// matchCharToIndexDMetrics aliases n/u to p's column and b to c's column; this
// asymmetry is load-bearing for the from-DMetrics guesser and must not be
// "corrected" to match matchCharToIndexMics.
func TestMatchCharToIndexDMetricsAsymmetry(t *testing.T) {
	cases := map[MatchChar]int{
		MatchP: 0,
		MatchN: 0,
		MatchU: 0,
		MatchC: 1,
		MatchB: 1,
	}
	for ch, want := range cases {
		if got := matchCharToIndexDMetrics(ch); got != want {
			t.Errorf("matchCharToIndexDMetrics(%q) = %d, want %d", ch, got, want)
		}
	}
}

func TestThreeColumnDMetrics(t *testing.T) {
	arr := DMetricsArray{{1, 2}, {3, 4}, {5, 6}}

	got := threeColumnDMetrics(arr, 0)
	want := [3]int32{1, 2, 3}
	if got != want {
		t.Errorf("threeColumnDMetrics(0) = %v, want %v", got, want)
	}

	last := threeColumnDMetrics(arr, 2)
	wantLast := [3]int32{5, 6, 6}
	if last != wantLast {
		t.Errorf("threeColumnDMetrics(last) = %v, want %v (column 2 duplicates column 1 at the boundary)", last, wantLast)
	}

	if got := threeColumnDMetrics(nil, 0); got != ([3]int32{}) {
		t.Errorf("threeColumnDMetrics(nil) = %v, want zero value", got)
	}
}

func TestNextInRotationSkipsForbidden(t *testing.T) {
	forbidNB := func(ch MatchChar) bool { return ch == MatchN || ch == MatchB }
	got := nextInRotation(cnbOrder, MatchC, forbidNB)
	if got != MatchC {
		t.Errorf("nextInRotation skipping n and b from c = %q, want 'c' (wraps back to itself)", got)
	}
}

func TestNextInRotationCNB(t *testing.T) {
	noneForbidden := func(MatchChar) bool { return false }
	if got := nextInRotation(cnbOrder, MatchC, noneForbidden); got != MatchN {
		t.Errorf("nextInRotation(c) = %q, want 'n'", got)
	}
	if got := nextInRotation(cnbOrder, MatchB, noneForbidden); got != MatchC {
		t.Errorf("nextInRotation(b) = %q, want 'c' (wraps)", got)
	}
}

func TestFindFrameWithMic(t *testing.T) {
	mics := MicsArray{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{5, 0, 0, 0, 0},
	}
	f, ok := findFrameWithMic(mics, MatchP, 1, 1, len(mics))
	if !ok || f != 2 {
		t.Errorf("findFrameWithMic forward = (%d, %v), want (2, true)", f, ok)
	}
	if _, ok := findFrameWithMic(mics, MatchP, 1, -1, len(mics)); ok {
		t.Error("findFrameWithMic backward from frame 1 should find nothing (frame 0 has the same p value)")
	}
}
