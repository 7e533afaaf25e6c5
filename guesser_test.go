// SPDX-License-Identifier: Apache-2.0

package wobbly

import "testing"

// setCadenceMics fills row pairs so that position 0,1,2 of every 5-cycle
// favor 'c' and position 3,4 favor 'n', matching the cccnn cadence at
// offset 0.
func setCadenceMics(p *Project, numFrames int) {
	for f := 0; f < numFrames; f++ {
		var row MicsRow
		switch f % 5 {
		case 0, 1, 2:
			row[matchCharToIndexMics(MatchC)] = 1
			row[matchCharToIndexMics(MatchN)] = 100
		default:
			row[matchCharToIndexMics(MatchC)] = 100
			row[matchCharToIndexMics(MatchN)] = 1
		}
		row[matchCharToIndexMics(MatchB)] = 1
		p.SetMics(f, row)
	}
}

func TestGuessSectionPatternFromMicsCCCNN(t *testing.T) {
	p := newTestProject(25)
	setCadenceMics(p, 25)
	p.PatternGuessing.Method = PatternGuessingFromMics
	p.PatternGuessing.MinimumLength = 10
	p.PatternGuessing.UsePatterns = PatternCCCNN | PatternCCNNN | PatternCCCCC

	if err := p.GuessSectionPattern(0); err != nil {
		t.Fatal(err)
	}

	if _, failed := p.PatternGuessing.Failures[0]; failed {
		t.Fatalf("section 0 should not have failed: %+v", p.PatternGuessing.Failures)
	}

	cadence := "cccnn"
	for i := 0; i < 25; i++ {
		want := MatchChar(cadence[i%5])
		if i == 24 && want == MatchN {
			want = MatchB // trailing 'n' at the very last source frame coerces to 'b'
		}
		if got := p.GetMatch(i); got != want {
			t.Errorf("frame %d match = %q, want %q", i, got, want)
		}
	}

	// offset is 0 here, so applyDecimationForPattern's firstDuplicate
	// (4-offset) is 4; DropFirstDuplicate (the zero value) drops that
	// offset of every cycle.
	const wantDrop = 4
	for cycle := 0; cycle < 5; cycle++ {
		dropped := cycle*5 + wantDrop
		if !p.IsDecimatedFrame(dropped) {
			t.Errorf("frame %d (cycle %d offset %d) should be decimated", dropped, cycle, wantDrop)
		}
		for offset := 0; offset < 5; offset++ {
			if offset == wantDrop {
				continue
			}
			f := cycle*5 + offset
			if p.IsDecimatedFrame(f) {
				t.Errorf("frame %d should not be decimated", f)
			}
		}
	}
}

func TestGuessSectionPatternFromMicsAmbiguousRejected(t *testing.T) {
	p := newTestProject(25)
	// Alternate the cheap match every other frame (period 2). No period-5
	// cadence can track that, so every candidate pattern/offset mismatches
	// roughly half the section and racks up a deviation far past threshold.
	for f := 0; f < 25; f++ {
		var row MicsRow
		if f%2 == 0 {
			row[matchCharToIndexMics(MatchC)] = 1
			row[matchCharToIndexMics(MatchN)] = 100
		} else {
			row[matchCharToIndexMics(MatchC)] = 100
			row[matchCharToIndexMics(MatchN)] = 1
		}
		p.SetMics(f, row)
	}
	p.PatternGuessing.Method = PatternGuessingFromMics
	p.PatternGuessing.MinimumLength = 10
	p.PatternGuessing.UsePatterns = PatternCCCNN | PatternCCNNN | PatternCCCCC

	if err := p.GuessSectionPattern(0); err != nil {
		t.Fatal(err)
	}

	failure, failed := p.PatternGuessing.Failures[0]
	if !failed {
		t.Fatal("period-2 alternating mics should be rejected as ambiguous")
	}
	if failure.Reason != AmbiguousMatchPattern {
		t.Errorf("failure reason = %v, want AmbiguousMatchPattern", failure.Reason)
	}
}

func TestGuessSectionPatternTooShort(t *testing.T) {
	p := newTestProject(25)
	setCadenceMics(p, 25)
	if err := p.AddSection(5); err != nil {
		t.Fatal(err)
	}
	p.PatternGuessing.Method = PatternGuessingFromMics
	p.PatternGuessing.MinimumLength = 10

	// Section [0,5) has end-start-1 = 4 < MinimumLength(10).
	if err := p.GuessSectionPattern(0); err != nil {
		t.Fatal(err)
	}
	failure, failed := p.PatternGuessing.Failures[0]
	if !failed || failure.Reason != SectionTooShort {
		t.Errorf("Failures[0] = %+v, failed=%v, want SectionTooShort", failure, failed)
	}
}

func TestGuessSectionPatternFromMicsDeterministic(t *testing.T) {
	p1 := newTestProject(25)
	setCadenceMics(p1, 25)
	p1.PatternGuessing.Method = PatternGuessingFromMics
	p1.PatternGuessing.MinimumLength = 10
	p1.PatternGuessing.UsePatterns = PatternCCCNN | PatternCCNNN | PatternCCCCC

	p2 := newTestProject(25)
	setCadenceMics(p2, 25)
	p2.PatternGuessing.Method = PatternGuessingFromMics
	p2.PatternGuessing.MinimumLength = 10
	p2.PatternGuessing.UsePatterns = PatternCCCNN | PatternCCNNN | PatternCCCCC

	if err := p1.GuessSectionPattern(0); err != nil {
		t.Fatal(err)
	}
	if err := p2.GuessSectionPattern(0); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 25; i++ {
		if p1.GetMatch(i) != p2.GetMatch(i) {
			t.Fatalf("non-deterministic guess at frame %d: %q vs %q", i, p1.GetMatch(i), p2.GetMatch(i))
		}
		if p1.IsDecimatedFrame(i) != p2.IsDecimatedFrame(i) {
			t.Fatalf("non-deterministic decimation at frame %d", i)
		}
	}
}

func TestGuessSectionPatternFromMatchesInfersCadence(t *testing.T) {
	p := newTestProject(30)
	// Lay down an n->c transition at position 3->4 of every cycle in the
	// original matches, the signature of a cccnn cadence with the
	// isolated 'n' at offset 3.
	for i := 0; i < 30; i++ {
		ch := MatchC
		if i%5 == 3 {
			ch = MatchN
		}
		if err := p.SetOriginalMatch(i, ch); err != nil {
			t.Fatal(err)
		}
	}
	p.PatternGuessing.Method = PatternGuessingFromMatches
	p.PatternGuessing.MinimumLength = 10

	if err := p.GuessSectionPattern(0); err != nil {
		t.Fatal(err)
	}
	if _, failed := p.PatternGuessing.Failures[0]; failed {
		t.Fatalf("clear n->c cadence should not fail: %+v", p.PatternGuessing.Failures)
	}
}

func TestGuessProjectPatternClearsStaleFailures(t *testing.T) {
	p := newTestProject(25)
	setCadenceMics(p, 25)
	p.PatternGuessing.Method = PatternGuessingFromMics
	p.PatternGuessing.MinimumLength = 10
	p.PatternGuessing.UsePatterns = PatternCCCNN | PatternCCNNN | PatternCCCCC
	p.PatternGuessing.Failures[0] = FailedPatternGuessing{Start: 0, Reason: SectionTooShort}

	if err := p.GuessProjectPattern(); err != nil {
		t.Fatal(err)
	}
	if _, failed := p.PatternGuessing.Failures[0]; failed {
		t.Error("GuessProjectPattern should clear a stale failure once the section succeeds")
	}
}
