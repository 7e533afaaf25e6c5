// SPDX-License-Identifier: Apache-2.0

package wobbly

// candidatePattern carries one candidate cadence string alongside the mask
// bit that gates it.
type candidatePattern struct {
	pattern string
	mask    Patterns
}

// candidatePatternTable lists candidates in the fixed enumeration order used
// to break ties between equally good offsets: cccnn, then ccnnn, then the
// single-character "c" (every frame progressive, i.e. no telecine at all).
var candidatePatternTable = []candidatePattern{
	{"cccnn", PatternCCCNN},
	{"ccnnn", PatternCCNNN},
	{"c", PatternCCCCC},
}

func candidatePatterns(mask Patterns) []candidatePattern {
	var out []candidatePattern
	for _, c := range candidatePatternTable {
		if mask&c.mask != 0 {
			out = append(out, c)
		}
	}
	return out
}

// recordGuessFailure replaces any existing failure record for start.
func (p *Project) recordGuessFailure(start int, reason PatternGuessingFailureReason) {
	p.PatternGuessing.Failures[start] = FailedPatternGuessing{Start: start, Reason: reason}
	p.setModified(true)
}

// GuessSectionPattern infers and applies a cadence pattern for the section
// starting at start, using the configured PatternGuessingMethod. A failure
// (section too short, or no candidate clearly better than the rest) is
// recorded in PatternGuessing.Failures rather than returned as an error;
// only a structural problem (bad section start) is returned as an error.
func (p *Project) GuessSectionPattern(start int) error {
	end, err := p.GetSectionEnd(start)
	if err != nil {
		return err
	}
	if end-start-1 < p.PatternGuessing.MinimumLength {
		p.recordGuessFailure(start, SectionTooShort)
		return nil
	}

	switch p.PatternGuessing.Method {
	case PatternGuessingFromMatches:
		return p.guessSectionFromMatches(start, end)
	case PatternGuessingFromMics:
		return p.guessSectionFromMics(start, end)
	case PatternGuessingFromDMetrics:
		return p.guessSectionFromDMetrics(start, end)
	case PatternGuessingFromMicsAndDMetrics:
		return p.guessSectionFromMicsAndDMetrics(start, end)
	}
	return nil
}

// GuessProjectPattern runs GuessSectionPattern for every section, clearing
// all previously recorded failures first and recomputing orphan fields once
// every section has been processed.
func (p *Project) GuessProjectPattern() error {
	p.PatternGuessing.Failures = make(map[int]FailedPatternGuessing)
	for _, start := range p.sectionKeys {
		if err := p.GuessSectionPattern(start); err != nil {
			return err
		}
	}
	p.UpdateOrphanFields()
	p.setModified(true)
	return nil
}

// otherMatchFor returns the match character mic/dmetrics deviation is scored
// against: 'c' patterns are scored against 'n', and every other pattern
// character is scored against 'c'.
func otherMatchFor(ch MatchChar) MatchChar {
	if ch == MatchC {
		return MatchN
	}
	return MatchC
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// micDevFor scores one (pattern, offset) candidate by summing, over every
// frame but the section's last, how much worse the pattern's predicted
// match is than the alternative at that frame, per the mics array. Lower is
// better; an exact match (pattern already correct) scores 0.
func (p *Project) micDevFor(start, end int, pattern string, offset int) int64 {
	var dev int64
	n := len(pattern)
	for f := start; f < end-1; f++ {
		ch := MatchChar(pattern[(f+offset)%n])
		other := otherMatchFor(ch)
		row := p.GetMics(f)
		dev += maxInt64(0, int64(row[matchCharToIndexMics(ch)])-int64(row[matchCharToIndexMics(other)]))
	}
	return dev
}

// dmetDevFor is micDevFor's DMetrics analogue, returning both the mmetrics
// and vmetrics deviation sums (mmetrics selects the best candidate;
// vmetrics gates acceptance).
func (p *Project) dmetDevFor(start, end int, pattern string, offset int) (mmetDev, vmetDev int64) {
	n := len(pattern)
	for f := start; f < end-1; f++ {
		ch := MatchChar(pattern[(f+offset)%n])
		other := otherMatchFor(ch)
		mm := p.GetMMetrics(f)
		vm := p.GetVMetrics(f)
		ci, oi := matchCharToIndexDMetrics(ch), matchCharToIndexDMetrics(other)
		mmetDev += maxInt64(0, int64(mm[ci])-int64(mm[oi]))
		vmetDev += maxInt64(0, int64(vm[ci])-int64(vm[oi]))
	}
	return
}

// bestMicsCandidate picks, among the enabled candidate patterns, the
// (pattern, offset) with the lowest mic deviation, breaking ties in favor
// of the earliest-enumerated pattern (see candidatePatternTable).
func (p *Project) bestMicsCandidate(start, end int, patterns []candidatePattern) (pattern string, offset int, dev int64) {
	best := int64(-1)
	for _, c := range patterns {
		bestOffsetDev := int64(-1)
		bestOffset := 0
		for off := 0; off < len(c.pattern); off++ {
			d := p.micDevFor(start, end, c.pattern, off)
			if bestOffsetDev < 0 || d < bestOffsetDev {
				bestOffsetDev = d
				bestOffset = off
			}
		}
		if best < 0 || bestOffsetDev < best {
			best = bestOffsetDev
			pattern = c.pattern
			offset = bestOffset
		}
	}
	return pattern, offset, best
}

// bestDMetricsCandidate is bestMicsCandidate's DMetrics analogue: it selects
// by minimum mmetrics deviation but also returns that winner's vmetrics
// deviation, since acceptance is gated on vmetrics, not mmetrics.
func (p *Project) bestDMetricsCandidate(start, end int, patterns []candidatePattern) (pattern string, offset int, mmetDev, vmetDev int64) {
	best := int64(-1)
	for _, c := range patterns {
		bestOffsetDev := int64(-1)
		bestOffset := 0
		var bestVmet int64
		for off := 0; off < len(c.pattern); off++ {
			mm, vm := p.dmetDevFor(start, end, c.pattern, off)
			if bestOffsetDev < 0 || mm < bestOffsetDev {
				bestOffsetDev = mm
				bestOffset = off
				bestVmet = vm
			}
		}
		if best < 0 || bestOffsetDev < best {
			best = bestOffsetDev
			pattern = c.pattern
			offset = bestOffset
			mmetDev = bestOffsetDev
			vmetDev = bestVmet
		}
	}
	return pattern, offset, mmetDev, vmetDev
}

// assignSectionMatches writes pattern[(i+offset)%len(pattern)] across
// [start, end) via SetMatch, which applies the usual frame-0/last-frame
// boundary coercion.
func (p *Project) assignSectionMatches(start, end int, pattern string, offset int) error {
	n := len(pattern)
	for i := start; i < end; i++ {
		if err := p.SetMatch(i, MatchChar(pattern[(i+offset)%n])); err != nil {
			return err
		}
	}
	return nil
}

// coerceSectionEndToLast forces the last frame of the post-source clip to
// 'b' if the pattern left it at 'n' (a dangling 'n' match at the very end of
// the source has no following frame to pair with).
func (p *Project) coerceSectionEndToLast(end int) error {
	if end == p.numFramesSource && p.GetMatch(end-1) == MatchN {
		return p.SetMatch(end-1, MatchB)
	}
	return nil
}

// applyEndOfSectionMicOverride coerces the section's final match from 'n' to
// 'b' when the mic cost of the 'n' match is more than double the 'b' match's
// — a dangling 'n' that would look much worse than simply repeating the
// previous frame.
func (p *Project) applyEndOfSectionMicOverride(end int) error {
	if p.GetMatch(end-1) != MatchN {
		return nil
	}
	row := p.GetMics(end - 1)
	micN := int64(row[matchCharToIndexMics(MatchN)])
	micB := int64(row[matchCharToIndexMics(MatchB)])
	if micN > micB*2 {
		return p.SetMatch(end-1, MatchB)
	}
	return nil
}

// applyEndOfSectionDMetricsOverride is applyEndOfSectionMicOverride's
// DMetrics analogue, using mmetrics and a 1.5x threshold.
func (p *Project) applyEndOfSectionDMetricsOverride(end int) error {
	if p.GetMatch(end-1) != MatchN {
		return nil
	}
	mm := p.GetMMetrics(end - 1)
	mmetN := int64(mm[matchCharToIndexDMetrics(MatchN)])
	mmetB := int64(mm[matchCharToIndexDMetrics(MatchB)])
	if float64(mmetN) > float64(mmetB)*1.5 {
		return p.SetMatch(end-1, MatchB)
	}
	return nil
}

// applyDecimationForPattern clears all decimation in the section when the
// winning pattern is the all-progressive "c" (no telecine to undo), and
// otherwise hands the duplicate pair starting at offset 4-offset to
// applyPatternGuessingDecimation, which drops one frame per cycle.
func (p *Project) applyDecimationForPattern(start, end int, pattern string, offset int) error {
	if pattern == "c" {
		for i := start; i < end; i++ {
			if err := p.DeleteDecimatedFrame(i); err != nil {
				return err
			}
		}
		return nil
	}
	firstDuplicate := 4 - offset
	return p.applyPatternGuessingDecimation(start, end, firstDuplicate)
}

// guessSectionFromMics implements the mics-based guesser: evaluate every
// enabled candidate pattern and offset, reject if even the best one
// deviates on average by more than one mic unit per frame, else assign
// matches and decimation.
func (p *Project) guessSectionFromMics(start, end int) error {
	if len(p.Mics) == 0 {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}
	patterns := candidatePatterns(p.PatternGuessing.UsePatterns)
	if len(patterns) == 0 {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}
	pattern, offset, dev := p.bestMicsCandidate(start, end, patterns)
	if dev > int64(end-start-1) {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}

	if err := p.assignSectionMatches(start, end, pattern, offset); err != nil {
		return err
	}
	if err := p.coerceSectionEndToLast(end); err != nil {
		return err
	}
	if err := p.applyEndOfSectionMicOverride(end); err != nil {
		return err
	}
	if err := p.applyDecimationForPattern(start, end, pattern, offset); err != nil {
		return err
	}
	delete(p.PatternGuessing.Failures, start)
	p.setModified(true)
	return nil
}

// guessSectionFromDMetrics is guessSectionFromMics's DMetrics analogue: it
// selects by mmetrics but gates acceptance on vmetrics, and additionally
// re-asserts frame 0 to 'n' when the pattern left it at 'b' (the mics-based
// path does not do this).
func (p *Project) guessSectionFromDMetrics(start, end int) error {
	if len(p.MMetrics) == 0 || len(p.VMetrics) == 0 {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}
	patterns := candidatePatterns(p.PatternGuessing.UsePatterns)
	if len(patterns) == 0 {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}
	pattern, offset, _, vmetDev := p.bestDMetricsCandidate(start, end, patterns)
	if int64(end-start-1) < vmetDev {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}

	if err := p.assignSectionMatches(start, end, pattern, offset); err != nil {
		return err
	}
	if err := p.coerceSectionEndToLast(end); err != nil {
		return err
	}
	if start == 0 && p.GetMatch(0) == MatchB {
		if err := p.SetMatch(0, MatchN); err != nil {
			return err
		}
	}
	if err := p.applyEndOfSectionDMetricsOverride(end); err != nil {
		return err
	}
	if err := p.applyDecimationForPattern(start, end, pattern, offset); err != nil {
		return err
	}
	delete(p.PatternGuessing.Failures, start)
	p.setModified(true)
	return nil
}

// guessSectionFromMicsAndDMetrics runs both the mics and DMetrics scoring
// in parallel and prefers the mics result whenever it is acceptable,
// falling back to DMetrics, and failing only if both are rejected. Unlike
// the upstream implementation this checks mics and DMetrics availability
// independently rather than checking the mics length twice.
func (p *Project) guessSectionFromMicsAndDMetrics(start, end int) error {
	haveMics := len(p.Mics) != 0
	haveDMetrics := len(p.MMetrics) != 0 && len(p.VMetrics) != 0
	if !haveMics && !haveDMetrics {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}
	patterns := candidatePatterns(p.PatternGuessing.UsePatterns)
	if len(patterns) == 0 {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}

	frameThreshold := int64(end - start - 1)

	var micPattern string
	var micOffset int
	var micDev int64
	goodMics := false
	if haveMics {
		micPattern, micOffset, micDev = p.bestMicsCandidate(start, end, patterns)
		goodMics = micDev <= frameThreshold
	}

	var dmetPattern string
	var dmetOffset int
	var dmetVmetDev int64
	goodDMet := false
	if haveDMetrics {
		dmetPattern, dmetOffset, _, dmetVmetDev = p.bestDMetricsCandidate(start, end, patterns)
		goodDMet = frameThreshold >= dmetVmetDev
	}

	if !goodMics && !goodDMet {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}

	pattern, offset, fromDMetrics := micPattern, micOffset, false
	if !goodMics {
		pattern, offset, fromDMetrics = dmetPattern, dmetOffset, true
	}

	if err := p.assignSectionMatches(start, end, pattern, offset); err != nil {
		return err
	}
	if err := p.coerceSectionEndToLast(end); err != nil {
		return err
	}
	if start == 0 && p.GetMatch(0) == MatchB {
		if err := p.SetMatch(0, MatchN); err != nil {
			return err
		}
	}
	if fromDMetrics {
		if err := p.applyEndOfSectionDMetricsOverride(end); err != nil {
			return err
		}
	} else {
		if err := p.applyEndOfSectionMicOverride(end); err != nil {
			return err
		}
	}
	if err := p.applyDecimationForPattern(start, end, pattern, offset); err != nil {
		return err
	}
	delete(p.PatternGuessing.Failures, start)
	p.setModified(true)
	return nil
}

// matchesPatternTable holds the five rotations of the cccnn cadence keyed by
// the position of the 'n' that is followed by a 'c' (the "from matches" guesser infers
// which of these five already-observed cadences the section follows).
var matchesPatternTable = [5]string{"ncccn", "nnccc", "cnncc", "ccnnc", "cccnn"}

// guessSectionFromMatches infers a cadence from n->c transitions already
// present in the original-matches array: it builds a histogram of
// transition positions modulo 5 and picks the position with the clearest
// majority, requiring it to exceed 40% of all transitions and beat the
// runner-up by more than 10 points — thresholds inherited verbatim from the
// source guesser.
func (p *Project) guessSectionFromMatches(start, end int) error {
	var positions [5]int
	total := 0
	limit := end
	if p.numFramesSource-1 < limit {
		limit = p.numFramesSource - 1
	}
	for i := start; i < limit-1; i++ {
		if p.GetOriginalMatch(i) == MatchN && p.GetOriginalMatch(i+1) == MatchC {
			positions[i%5]++
			total++
		}
	}

	best, nextBest := 0, 0
	bestCount := -1
	for i := 0; i < 5; i++ {
		if positions[i] > bestCount {
			bestCount = positions[i]
			best = i
		}
	}
	nextCount := -1
	for i := 0; i < 5; i++ {
		if i == best {
			continue
		}
		if positions[i] > nextCount {
			nextCount = positions[i]
			nextBest = i
		}
	}

	var bestPct, nextBestPct float64
	if total > 0 {
		bestPct = float64(positions[best]*100) / float64(total)
		nextBestPct = float64(positions[nextBest]*100) / float64(total)
	}

	if !(bestPct > 40.0 && bestPct-nextBestPct > 10.0) {
		p.recordGuessFailure(start, AmbiguousMatchPattern)
		return nil
	}

	if err := p.applyPatternGuessingDecimation(start, end-1, best); err != nil {
		return err
	}

	patterns := matchesPatternTable
	if p.PatternGuessing.ThirdNMatch == UseThirdNMatchAlways {
		for i := range patterns {
			b := []byte(patterns[i])
			b[(i+3)%5] = 'n'
			patterns[i] = string(b)
		}
	}
	pattern := patterns[best]

	for i := start; i < end-1; i++ {
		if p.PatternGuessing.ThirdNMatch == UseThirdNMatchIfPrettier && pattern[i%5] == 'c' && pattern[(i+1)%5] == 'n' {
			row := p.GetMics(i)
			micN := row[matchCharToIndexMics(MatchN)]
			micC := row[matchCharToIndexMics(MatchC)]
			ch := MatchC
			if micN < micC {
				ch = MatchN
			}
			if err := p.SetMatch(i, ch); err != nil {
				return err
			}
		} else {
			if err := p.SetMatch(i, MatchChar(pattern[i%5])); err != nil {
				return err
			}
		}
	}

	if err := p.applyEndOfSectionMicOverride(end); err != nil {
		return err
	}

	delete(p.PatternGuessing.Failures, start)
	p.setModified(true)
	return nil
}

// applyPatternGuessingDecimation marks one dropped frame per cycle in
// [start, end) according to the configured DropDuplicate policy; the "uglier
// duplicate" policies compare the mic cost of the 'n' match against the
// following frame's 'c' match at the candidate drop positions. A per-cycle "drop the uglier duplicate"
// policy demotes to its per-section counterpart when the duplicate pair's
// first offset is 4, since the pair then spans a cycle boundary and cannot
// be judged one cycle at a time.
func (p *Project) applyPatternGuessingDecimation(start, end, firstDuplicate int) error {
	policy := p.PatternGuessing.Decimation
	if policy == DropUglierDuplicatePerCycle && firstDuplicate == 4 {
		policy = DropUglierDuplicatePerSection
	}

	lastFrame := p.numFramesSource - 1
	drop := -1

	switch policy {
	case DropUglierDuplicatePerSection:
		dropN, dropC := 0, 0
		limit := end
		if lastFrame < limit {
			limit = lastFrame
		}
		for i := start; i < limit; i++ {
			if i%5 != firstDuplicate {
				continue
			}
			micN := p.GetMics(i)[matchCharToIndexMics(MatchN)]
			micC := p.GetMics(i+1)[matchCharToIndexMics(MatchC)]
			if micN > micC {
				dropN++
			} else {
				dropC++
			}
		}
		if dropN > dropC {
			drop = firstDuplicate
		} else {
			drop = (firstDuplicate + 1) % 5
		}
	case DropFirstDuplicate:
		drop = firstDuplicate
	case DropSecondDuplicate:
		drop = (firstDuplicate + 1) % 5
	}

	firstCycle := start / 5
	lastCycle := (end - 1) / 5

	for cycle := firstCycle; cycle <= lastCycle; cycle++ {
		if policy == DropUglierDuplicatePerCycle {
			drop = -1
			switch {
			case cycle == firstCycle:
				if start%5 > firstDuplicate+1 {
					continue
				} else if start%5 > firstDuplicate {
					drop = firstDuplicate + 1
				}
			case cycle == lastCycle:
				if (end-1)%5 < firstDuplicate {
					continue
				} else if (end-1)%5 < firstDuplicate+1 {
					drop = firstDuplicate
				}
			}

			if drop == -1 {
				a, b := cycle*5+firstDuplicate, cycle*5+firstDuplicate+1
				micN := p.GetMics(a)[matchCharToIndexMics(MatchN)]
				micC := p.GetMics(b)[matchCharToIndexMics(MatchC)]
				if micN > micC {
					drop = firstDuplicate
				} else {
					drop = (firstDuplicate + 1) % 5
				}
			}
		}

		switch {
		case cycle == firstCycle:
			for j := start; j < (cycle+1)*5; j++ {
				if p.IsDecimatedFrame(j) {
					if err := p.DeleteDecimatedFrame(j); err != nil {
						return err
					}
				}
			}
		case cycle == lastCycle:
			for j := cycle * 5; j < end; j++ {
				if p.IsDecimatedFrame(j) {
					if err := p.DeleteDecimatedFrame(j); err != nil {
						return err
					}
				}
			}
		default:
			p.ClearDecimatedFramesFromCycle(cycle)
		}

		dropFrame := cycle*5 + drop
		if dropFrame >= start && dropFrame < end {
			if err := p.AddDecimatedFrame(dropFrame); err != nil {
				return err
			}
		}
	}

	p.setModified(true)
	return nil
}
