// SPDX-License-Identifier: Apache-2.0

package wobbly

import "errors"

// ErrNothingToUndo is returned by Undo when the undo stack holds no step
// older than the current baseline snapshot.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned by Redo when the redo stack is empty.
var ErrNothingToRedo = errors.New("nothing to redo")

// undoStep is a full snapshot of every mutable field of a Project. Undo/redo
// works by snapshot-and-restore rather than diffing. Plain value maps and
// slices are cloned so a later edit to the live project can never alias a
// stored snapshot; CustomList.Ranges additionally needs its own Clone since
// CustomList is held by pointer.
type undoStep struct {
	wobbly   bool
	modified bool

	inputFile    string
	sourceFilter string

	frameRateNum int
	frameRateDen int
	width        int
	height       int

	trim []FrameRange

	numFramesSource    int
	numFramesDecimated int

	vfm       VFMParameters
	vdecimate VDecimateParameters

	mics     MicsArray
	mmetrics DMetricsArray
	vmetrics DMetricsArray

	matches         MatchArray
	originalMatches MatchArray

	combedFrames map[int]bool

	decimatedFrames []map[int]bool
	decimateMetrics DecimateMetricArray

	sectionKeys []int
	sections    map[int]Section

	presets map[string]Preset

	frozenFrames *freezeFrameSet

	customLists []*CustomList

	resize Resize
	crop   Crop
	depth  Depth

	interlacedFades map[int]InterlacedFade
	bookmarks       map[int]Bookmark
	orphanFields    map[int]MatchChar

	patternGuessing PatternGuessing

	micSearchMinimum int
	zoom             float64
	compactProject   bool
}

func cloneIntBoolMap(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDecimatedFrames(frames []map[int]bool) []map[int]bool {
	out := make([]map[int]bool, len(frames))
	for i, m := range frames {
		if m != nil {
			out[i] = cloneIntBoolMap(m)
		}
	}
	return out
}

func (p *Project) snapshot() *undoStep {
	s := &undoStep{
		wobbly:             p.Wobbly,
		modified:           p.Modified,
		inputFile:          p.InputFile,
		sourceFilter:       p.SourceFilter,
		frameRateNum:       p.FrameRateNum,
		frameRateDen:       p.FrameRateDen,
		width:              p.Width,
		height:             p.Height,
		trim:               append([]FrameRange(nil), p.Trim...),
		numFramesSource:    p.numFramesSource,
		numFramesDecimated: p.numFramesDecimated,
		vfm:                p.VFMParameters,
		vdecimate:          p.VDecimateParameters,
		mics:               append(MicsArray(nil), p.Mics...),
		mmetrics:           append(DMetricsArray(nil), p.MMetrics...),
		vmetrics:           append(DMetricsArray(nil), p.VMetrics...),
		matches:            append(MatchArray(nil), p.Matches...),
		originalMatches:    append(MatchArray(nil), p.OriginalMatches...),
		combedFrames:       cloneIntBoolMap(p.CombedFrames),
		decimatedFrames:    cloneDecimatedFrames(p.DecimatedFrames),
		decimateMetrics:    append(DecimateMetricArray(nil), p.DecimateMetrics...),
		sectionKeys:        append([]int(nil), p.sectionKeys...),
		sections:           make(map[int]Section, len(p.sections)),
		presets:            make(map[string]Preset, len(p.Presets)),
		frozenFrames:        p.FrozenFrames.Clone(),
		resize:             p.Resize,
		crop:               p.Crop,
		depth:              p.Depth,
		interlacedFades:    make(map[int]InterlacedFade, len(p.InterlacedFades)),
		bookmarks:          make(map[int]Bookmark, len(p.Bookmarks)),
		orphanFields:       make(map[int]MatchChar, len(p.orphanFields)),
		patternGuessing:    p.PatternGuessing,
		micSearchMinimum:   p.MicSearchMinimum,
		zoom:               p.Zoom,
		compactProject:     p.CompactProject,
	}

	for k, v := range p.sections {
		sec := v
		sec.Presets = append([]string(nil), v.Presets...)
		s.sections[k] = sec
	}
	for k, v := range p.Presets {
		s.presets[k] = v
	}
	for k, v := range p.InterlacedFades {
		s.interlacedFades[k] = v
	}
	for k, v := range p.Bookmarks {
		s.bookmarks[k] = v
	}
	for k, v := range p.orphanFields {
		s.orphanFields[k] = v
	}

	s.patternGuessing.Failures = make(map[int]FailedPatternGuessing, len(p.PatternGuessing.Failures))
	for k, v := range p.PatternGuessing.Failures {
		s.patternGuessing.Failures[k] = v
	}

	s.customLists = make([]*CustomList, len(p.CustomLists))
	for i, cl := range p.CustomLists {
		clone := &CustomList{Name: cl.Name, Preset: cl.Preset, Position: cl.Position, Ranges: cl.Ranges.Clone()}
		s.customLists[i] = clone
	}

	return s
}

// restoreState replaces every mutable field of p with a fresh deep copy of
// s's data. Collections are cleared and refilled entry by entry rather than
// reassigned by reference, matching the source's restoreState (clear() then
// re-insert) and, as a side effect in Go, guaranteeing that a later live
// edit can never mutate data still held by an undo/redo stack entry.
func (p *Project) restoreState(s *undoStep) {
	p.Wobbly = s.wobbly
	p.Modified = s.modified
	p.InputFile = s.inputFile
	p.SourceFilter = s.sourceFilter
	p.FrameRateNum = s.frameRateNum
	p.FrameRateDen = s.frameRateDen
	p.Width = s.width
	p.Height = s.height
	p.Trim = append([]FrameRange(nil), s.trim...)
	p.numFramesSource = s.numFramesSource
	p.numFramesDecimated = s.numFramesDecimated
	p.VFMParameters = s.vfm
	p.VDecimateParameters = s.vdecimate
	p.Mics = append(MicsArray(nil), s.mics...)
	p.MMetrics = append(DMetricsArray(nil), s.mmetrics...)
	p.VMetrics = append(DMetricsArray(nil), s.vmetrics...)
	p.Matches = append(MatchArray(nil), s.matches...)
	p.OriginalMatches = append(MatchArray(nil), s.originalMatches...)
	p.CombedFrames = cloneIntBoolMap(s.combedFrames)
	p.DecimatedFrames = cloneDecimatedFrames(s.decimatedFrames)
	p.DecimateMetrics = append(DecimateMetricArray(nil), s.decimateMetrics...)
	p.sectionKeys = append([]int(nil), s.sectionKeys...)

	p.sections = make(map[int]Section, len(s.sections))
	for k, v := range s.sections {
		sec := v
		sec.Presets = append([]string(nil), v.Presets...)
		p.sections[k] = sec
	}

	p.Presets = make(map[string]Preset, len(s.presets))
	for k, v := range s.presets {
		p.Presets[k] = v
	}

	p.FrozenFrames = s.frozenFrames.Clone()

	p.CustomLists = make([]*CustomList, len(s.customLists))
	for i, cl := range s.customLists {
		p.CustomLists[i] = &CustomList{Name: cl.Name, Preset: cl.Preset, Position: cl.Position, Ranges: cl.Ranges.Clone()}
	}

	p.Resize = s.resize
	p.Crop = s.crop
	p.Depth = s.depth

	p.InterlacedFades = make(map[int]InterlacedFade, len(s.interlacedFades))
	for k, v := range s.interlacedFades {
		p.InterlacedFades[k] = v
	}
	p.Bookmarks = make(map[int]Bookmark, len(s.bookmarks))
	for k, v := range s.bookmarks {
		p.Bookmarks[k] = v
	}
	p.orphanFields = make(map[int]MatchChar, len(s.orphanFields))
	for k, v := range s.orphanFields {
		p.orphanFields[k] = v
	}

	p.PatternGuessing = s.patternGuessing
	p.PatternGuessing.Failures = make(map[int]FailedPatternGuessing, len(s.patternGuessing.Failures))
	for k, v := range s.patternGuessing.Failures {
		p.PatternGuessing.Failures[k] = v
	}

	p.MicSearchMinimum = s.micSearchMinimum
	p.Zoom = s.zoom
	p.CompactProject = s.compactProject
}

// Commit pushes the current state onto the undo stack, clears the redo
// stack, and evicts the oldest entry once the stack exceeds UndoSteps.
func (p *Project) Commit() {
	p.undoStack = append(p.undoStack, p.snapshot())
	p.redoStack = nil
	if p.UndoSteps > 0 {
		for len(p.undoStack) > p.UndoSteps {
			p.undoStack = p.undoStack[1:]
		}
	}
}

// Undo moves the top of the undo stack onto the redo stack, then restores
// project state from the new top of the undo stack. The baseline entry (the
// state committed before the first edit) is never popped: Undo is a no-op
// once only one entry remains.
func (p *Project) Undo() error {
	if len(p.undoStack) <= 1 {
		return ErrNothingToUndo
	}
	top := p.undoStack[len(p.undoStack)-1]
	p.undoStack = p.undoStack[:len(p.undoStack)-1]
	p.redoStack = append(p.redoStack, top)
	p.restoreState(p.undoStack[len(p.undoStack)-1])
	return nil
}

// Redo restores project state from the top of the redo stack, then moves
// that entry back onto the undo stack.
func (p *Project) Redo() error {
	if len(p.redoStack) == 0 {
		return ErrNothingToRedo
	}
	top := p.redoStack[len(p.redoStack)-1]
	p.redoStack = p.redoStack[:len(p.redoStack)-1]
	p.restoreState(top)
	p.undoStack = append(p.undoStack, top)
	return nil
}

// SetUndoSteps changes the undo-stack depth limit, immediately evicting the
// oldest entries if the stack is now over budget.
func (p *Project) SetUndoSteps(n int) {
	p.UndoSteps = n
	if n > 0 {
		for len(p.undoStack) > n {
			p.undoStack = p.undoStack[1:]
		}
	}
}

// CanUndo reports whether Undo would succeed.
func (p *Project) CanUndo() bool { return len(p.undoStack) > 1 }

// CanRedo reports whether Redo would succeed.
func (p *Project) CanRedo() bool { return len(p.redoStack) > 0 }
