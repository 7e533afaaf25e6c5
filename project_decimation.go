// SPDX-License-Identifier: Apache-2.0

package wobbly

// cycleSize returns how many source frames belong to cycle (5, except
// possibly fewer in the last partial cycle).
func (p *Project) cycleSize(cycle int) int {
	size := p.numFramesSource - cycle*5
	if size > 5 {
		size = 5
	}
	if size < 0 {
		size = 0
	}
	return size
}

func (p *Project) cycleDroppedCount(cycle int) int {
	if cycle < 0 || cycle >= len(p.DecimatedFrames) {
		return 0
	}
	return len(p.DecimatedFrames[cycle])
}

// AddDecimatedFrame marks frame as dropped during decimation. A cycle can
// never have all of its frames dropped: if the cycle already holds
// cycleSize-1 drops (frame is its last surviving frame), or frame is already
// dropped, this is a silent no-op rather than an error, matching the original
// addDecimatedFrame.
func (p *Project) AddDecimatedFrame(frame int) error {
	if frame < 0 || frame >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: frame, Min: 0, Max: p.numFramesSource}
	}
	cycle := frame / 5
	offset := frame % 5
	if p.DecimatedFrames[cycle] != nil && p.DecimatedFrames[cycle][offset] {
		return nil
	}
	if p.DecimatedFrames[cycle] == nil {
		p.DecimatedFrames[cycle] = make(map[int]bool)
	}
	cap := p.cycleSize(cycle) - 1
	if len(p.DecimatedFrames[cycle]) >= cap {
		return nil
	}
	p.DecimatedFrames[cycle][offset] = true
	p.numFramesDecimated--
	p.setModified(true)
	return nil
}

// DeleteDecimatedFrame un-marks frame as dropped.
func (p *Project) DeleteDecimatedFrame(frame int) error {
	if frame < 0 || frame >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: frame, Min: 0, Max: p.numFramesSource}
	}
	cycle := frame / 5
	offset := frame % 5
	if p.DecimatedFrames[cycle] == nil || !p.DecimatedFrames[cycle][offset] {
		return &NoSuchRangeError{Frame: frame}
	}
	delete(p.DecimatedFrames[cycle], offset)
	p.numFramesDecimated++
	p.setModified(true)
	return nil
}

// IsDecimatedFrame reports whether frame is marked dropped.
func (p *Project) IsDecimatedFrame(frame int) bool {
	if frame < 0 || frame >= p.numFramesSource {
		return false
	}
	cycle := frame / 5
	return p.DecimatedFrames[cycle] != nil && p.DecimatedFrames[cycle][frame%5]
}

// ClearDecimatedFramesFromCycle removes every dropped marker in cycle.
func (p *Project) ClearDecimatedFramesFromCycle(cycle int) {
	if cycle >= 0 && cycle < len(p.DecimatedFrames) {
		p.numFramesDecimated += len(p.DecimatedFrames[cycle])
		p.DecimatedFrames[cycle] = nil
	}
	p.setModified(true)
}

// GetDecimationRanges returns runs of consecutive cycles sharing the same
// number of dropped frames, in cycle-start order. Start is the first source
// frame of the run's first cycle.
func (p *Project) GetDecimationRanges() []DecimationRange {
	var out []DecimationRange
	for cycle := 0; cycle < len(p.DecimatedFrames); cycle++ {
		n := p.cycleDroppedCount(cycle)
		if len(out) > 0 && out[len(out)-1].NumDropped == n {
			continue
		}
		out = append(out, DecimationRange{Start: cycle * 5, NumDropped: n})
	}
	return out
}

func sameOffsets(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// GetDecimationPatternRanges returns runs of consecutive cycles sharing the
// exact same set of dropped offsets, in cycle-start order.
func (p *Project) GetDecimationPatternRanges() []DecimationPatternRange {
	var out []DecimationPatternRange
	for cycle := 0; cycle < len(p.DecimatedFrames); cycle++ {
		offsets := p.DecimatedFrames[cycle]
		if len(out) > 0 && sameOffsets(out[len(out)-1].DroppedOffsets, offsets) {
			continue
		}
		out = append(out, DecimationPatternRange{Start: cycle * 5, DroppedOffsets: offsets})
	}
	return out
}

// FrameNumberAfterDecimation translates a pre-decimation frame number to its
// post-decimation position, by cumulatively counting surviving frames in
// every earlier cycle plus surviving frames before frame's offset in its
// own cycle.
func (p *Project) FrameNumberAfterDecimation(frame int) int {
	cycle := frame / 5
	offset := frame % 5
	count := 0
	for c := 0; c < cycle; c++ {
		count += p.cycleSize(c) - p.cycleDroppedCount(c)
	}
	dropped := map[int]bool(nil)
	if cycle < len(p.DecimatedFrames) {
		dropped = p.DecimatedFrames[cycle]
	}
	for o := 0; o < offset; o++ {
		if !dropped[o] {
			count++
		}
	}
	return count
}

// FrameNumberBeforeDecimation translates a post-decimation frame number back
// to its pre-decimation source frame, by cumulatively walking cycles until
// the surviving-frame budget covers frame.
func (p *Project) FrameNumberBeforeDecimation(frame int) int {
	remaining := frame
	for cycle := 0; cycle < len(p.DecimatedFrames); cycle++ {
		size := p.cycleSize(cycle)
		dropped := p.DecimatedFrames[cycle]
		kept := size - len(dropped)
		if remaining < kept {
			seen := 0
			for offset := 0; offset < size; offset++ {
				if !dropped[offset] {
					if seen == remaining {
						return cycle*5 + offset
					}
					seen++
				}
			}
		}
		remaining -= kept
	}
	if p.numFramesSource == 0 {
		return 0
	}
	return p.numFramesSource - 1
}

// GetCMatchSequences returns every maximal run of consecutive 'c' matches at
// least minLength frames long.
func (p *Project) GetCMatchSequences(minLength int) []FrameRange {
	var out []FrameRange
	start := -1
	for f := 0; f < p.numFramesSource; f++ {
		if p.GetMatch(f) == MatchC {
			if start == -1 {
				start = f
			}
			continue
		}
		if start != -1 {
			if f-start >= minLength {
				out = append(out, FrameRange{First: start, Last: f - 1})
			}
			start = -1
		}
	}
	if start != -1 && p.numFramesSource-start >= minLength {
		out = append(out, FrameRange{First: start, Last: p.numFramesSource - 1})
	}
	return out
}

// updateSectionOrphanFields recomputes the orphan-field bookkeeping for the
// section starting at start: a section's first frame is an orphan if its
// match is 'b' (it would reuse a field from the previous section), and its
// last frame is an orphan if its match is 'n' (it would reuse a field from
// the next section).
func (p *Project) updateSectionOrphanFields(start int) {
	end, err := p.GetSectionEnd(start)
	if err != nil {
		return
	}
	for f := range p.orphanFields {
		if f >= start && f < end {
			delete(p.orphanFields, f)
		}
	}
	if start < p.numFramesSource {
		if ch := p.GetMatch(start); ch == MatchB {
			p.orphanFields[start] = ch
		}
	}
	if last := end - 1; last >= start && last < p.numFramesSource {
		if ch := p.GetMatch(last); ch == MatchN {
			p.orphanFields[last] = ch
		}
	}
}

// UpdateOrphanFields recomputes orphan-field bookkeeping for every section.
func (p *Project) UpdateOrphanFields() {
	for _, start := range p.sectionKeys {
		p.updateSectionOrphanFields(start)
	}
}

// UpdateSectionOrphanFields recomputes orphan-field bookkeeping for one
// section.
func (p *Project) UpdateSectionOrphanFields(start int) error {
	if _, ok := p.sections[start]; !ok {
		return &NoSuchSectionError{Start: start}
	}
	p.updateSectionOrphanFields(start)
	return nil
}

// OrphanFields returns the current orphan-field bookkeeping, keyed by frame.
func (p *Project) OrphanFields() map[int]MatchChar { return p.orphanFields }

// FindNextAmbiguousPatternSection returns the smallest section start after
// start whose pattern guessing failed with AmbiguousMatchPattern.
func (p *Project) FindNextAmbiguousPatternSection(start int) (int, bool) {
	best := -1
	for s, f := range p.PatternGuessing.Failures {
		if f.Reason == AmbiguousMatchPattern && s > start && (best == -1 || s < best) {
			best = s
		}
	}
	return best, best != -1
}

// FindPreviousAmbiguousPatternSection returns the largest section start
// before start whose pattern guessing failed with AmbiguousMatchPattern.
func (p *Project) FindPreviousAmbiguousPatternSection(start int) (int, bool) {
	best := -1
	for s, f := range p.PatternGuessing.Failures {
		if f.Reason == AmbiguousMatchPattern && s < start && s > best {
			best = s
		}
	}
	return best, best != -1
}

// GetArgsForSourceFilter returns the extra constructor arguments appended to
// the source filter call; only bs.VideoSource takes rff/showprogress.
func (p *Project) GetArgsForSourceFilter() string {
	if p.SourceFilter == "bs.VideoSource" {
		return ", rff=True, showprogress=False"
	}
	return ""
}

// ResetRangeMatches overwrites matches in [first, last] with the
// corresponding original, uncorrected matches.
func (p *Project) ResetRangeMatches(first, last int) error {
	if first < 0 || last >= p.numFramesSource || first > last {
		return &OutOfRangeError{What: "frame", Value: first, Min: 0, Max: p.numFramesSource}
	}
	p.allocateMatches()
	for f := first; f <= last; f++ {
		p.Matches[f] = p.OriginalMatches.Get(f)
	}
	p.setModified(true)
	return nil
}

// ResetSectionMatches overwrites every match in the section starting at
// start with its original value.
func (p *Project) ResetSectionMatches(start int) error {
	end, err := p.GetSectionEnd(start)
	if err != nil {
		return err
	}
	return p.ResetRangeMatches(start, end-1)
}

// SetRangeMatchesFromPattern applies pattern (e.g. "cccnn"), cycling through
// its characters starting at offset, to every frame in [first, last].
func (p *Project) SetRangeMatchesFromPattern(first, last int, pattern string, offset int) error {
	if len(pattern) == 0 {
		return &ParseError{Message: "empty match pattern"}
	}
	if first < 0 || last >= p.numFramesSource || first > last {
		return &OutOfRangeError{What: "frame", Value: first, Min: 0, Max: p.numFramesSource}
	}
	n := len(pattern)
	for f := first; f <= last; f++ {
		idx := ((f-first)+offset)%n + n
		idx %= n
		ch := MatchChar(pattern[idx])
		if !ch.IsValid() {
			return &InvalidMatchCharError{Char: byte(ch)}
		}
		if err := p.SetMatch(f, ch); err != nil {
			return err
		}
	}
	return nil
}

// SetSectionMatchesFromPattern applies pattern to every frame of the section
// starting at start.
func (p *Project) SetSectionMatchesFromPattern(start int, pattern string, offset int) error {
	end, err := p.GetSectionEnd(start)
	if err != nil {
		return err
	}
	return p.SetRangeMatchesFromPattern(start, end-1, pattern, offset)
}

// SetRangeDecimationFromPattern applies the same set of per-cycle dropped
// offsets to every cycle overlapping [first, last].
func (p *Project) SetRangeDecimationFromPattern(first, last int, droppedOffsets map[int]bool) error {
	if first < 0 || last >= p.numFramesSource || first > last {
		return &OutOfRangeError{What: "frame", Value: first, Min: 0, Max: p.numFramesSource}
	}
	for cycle := first / 5; cycle <= last/5; cycle++ {
		p.ClearDecimatedFramesFromCycle(cycle)
		for offset := range droppedOffsets {
			frame := cycle*5 + offset
			if frame < first || frame > last || frame >= p.numFramesSource {
				continue
			}
			if err := p.AddDecimatedFrame(frame); err != nil {
				return err
			}
		}
	}
	p.setModified(true)
	return nil
}

// SetSectionDecimationFromPattern applies droppedOffsets to every cycle
// overlapping the section starting at start.
func (p *Project) SetSectionDecimationFromPattern(start int, droppedOffsets map[int]bool) error {
	end, err := p.GetSectionEnd(start)
	if err != nil {
		return err
	}
	return p.SetRangeDecimationFromPattern(start, end-1, droppedOffsets)
}
