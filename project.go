// SPDX-License-Identifier: Apache-2.0

package wobbly

import (
	"sort"
	"strconv"
)

// Project is the editorial-core aggregate: it owns every collection and
// array describing how a source clip should be field-matched, decimated,
// cropped, resized, and bit-depth converted. Sections() returns a copy, but
// the other collections (Presets, CustomLists, CombedFrames, ...) are
// exported fields, and accessors such as GetInterlacedFades and OrphanFields
// return the live maps; writes through any of these bypass the methods'
// checks and undo bookkeeping.
//
// Project is not safe for concurrent use: per the single-threaded
// cooperative model, all mutating calls must come from one goroutine.
type Project struct {
	Wobbly   bool // false: a metrics-only project; true: full editorial project
	Modified bool

	InputFile    string
	SourceFilter string

	FrameRateNum int
	FrameRateDen int
	Width        int
	Height       int

	Trim []FrameRange

	numFramesSource    int
	numFramesDecimated int

	VFMParameters       VFMParameters
	VDecimateParameters VDecimateParameters

	Mics     MicsArray
	MMetrics DMetricsArray
	VMetrics DMetricsArray

	Matches         MatchArray
	OriginalMatches MatchArray

	CombedFrames map[int]bool

	DecimatedFrames []map[int]bool // indexed by cycle = frame/5
	DecimateMetrics DecimateMetricArray

	sectionKeys []int
	sections    map[int]Section

	Presets map[string]Preset

	FrozenFrames *freezeFrameSet

	CustomLists []*CustomList

	Resize Resize
	Crop   Crop
	Depth  Depth

	InterlacedFades map[int]InterlacedFade
	Bookmarks       map[int]Bookmark

	// orphanFields maps a section-boundary frame to the match it had when
	// flagged as an orphan, so updateOrphanFields can recompute from scratch.
	orphanFields map[int]MatchChar

	PatternGuessing PatternGuessing

	MicSearchMinimum int
	Zoom             float64

	CompactProject bool

	UndoSteps int
	undoStack []*undoStep
	redoStack []*undoStep
}

// NewProject constructs a project over a source clip of numFramesSource
// frames. trim must have at least one range.
func NewProject(inputFile, sourceFilter string, frameRateNum, frameRateDen, width, height int, trim []FrameRange, numFramesSource int, wobbly bool) *Project {
	p := &Project{
		Wobbly:           wobbly,
		InputFile:        inputFile,
		SourceFilter:     sourceFilter,
		FrameRateNum:     frameRateNum,
		FrameRateDen:     frameRateDen,
		Width:            width,
		Height:           height,
		Trim:             trim,
		numFramesSource:  numFramesSource,
		numFramesDecimated: numFramesSource,
		CombedFrames:     make(map[int]bool),
		DecimatedFrames:  make([]map[int]bool, (numFramesSource+4)/5),
		sections:         make(map[int]Section),
		Presets:          make(map[string]Preset),
		FrozenFrames:     newFreezeFrameSet(),
		Resize:           Resize{Filter: "bicubic"},
		InterlacedFades:  make(map[int]InterlacedFade),
		Bookmarks:        make(map[int]Bookmark),
		orphanFields:     make(map[int]MatchChar),
		PatternGuessing: PatternGuessing{
			MinimumLength: 10,
			UsePatterns:   PatternCCCNN | PatternCCNNN | PatternCCCCC,
			Failures:      make(map[int]FailedPatternGuessing),
		},
		UndoSteps: 100,
	}
	p.addSection(Section{Start: 0})
	return p
}

// GetNumFrames returns the frame count at PostSource or PostDecimate; any
// other position is invalid.
func (p *Project) GetNumFrames(position PositionInFilterChain) (int, error) {
	switch position {
	case PostSource:
		return p.numFramesSource, nil
	case PostDecimate:
		return p.numFramesDecimated, nil
	}
	return 0, &OutOfRangeError{What: "num frames position", Value: int(position)}
}

// SetNumFrames sets the frame count at PostSource or PostDecimate.
func (p *Project) SetNumFrames(position PositionInFilterChain, n int) error {
	switch position {
	case PostSource:
		p.numFramesSource = n
	case PostDecimate:
		p.numFramesDecimated = n
	default:
		return &OutOfRangeError{What: "num frames position", Value: int(position)}
	}
	return nil
}

func (p *Project) setModified(v bool) { p.Modified = v }

// --- Presets ---------------------------------------------------------------

// isNameSafeForPython reports whether name is a legal Python identifier:
// [A-Za-z_][A-Za-z0-9_]*.
func isNameSafeForPython(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if i == 0 {
			if !isLetter {
				return false
			}
		} else if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// PresetExists reports whether a preset named name exists.
func (p *Project) PresetExists(name string) bool {
	_, ok := p.Presets[name]
	return ok
}

// AddPreset creates a preset with the given name and contents.
func (p *Project) AddPreset(name, contents string) error {
	if !isNameSafeForPython(name) {
		return &InvalidNameError{Name: name}
	}
	if p.PresetExists(name) {
		return &NameInUseError{Name: name}
	}
	p.Presets[name] = Preset{Name: name, Contents: contents}
	p.setModified(true)
	return nil
}

// GetPresetContents returns the contents of preset name.
func (p *Project) GetPresetContents(name string) (string, error) {
	pr, ok := p.Presets[name]
	if !ok {
		return "", &NoSuchPresetError{Name: name}
	}
	return pr.Contents, nil
}

// SetPresetContents overwrites the contents of preset name.
func (p *Project) SetPresetContents(name, contents string) error {
	pr, ok := p.Presets[name]
	if !ok {
		return &NoSuchPresetError{Name: name}
	}
	pr.Contents = contents
	p.Presets[name] = pr
	p.setModified(true)
	return nil
}

// RenamePreset renames a preset, rewriting every section-preset entry and
// custom-list preset reference equal to oldName.
func (p *Project) RenamePreset(oldName, newName string) error {
	pr, ok := p.Presets[oldName]
	if !ok {
		return &NoSuchPresetError{Name: oldName}
	}
	if !isNameSafeForPython(newName) {
		return &InvalidNameError{Name: newName}
	}
	if oldName != newName && p.PresetExists(newName) {
		return &NameInUseError{Name: newName}
	}

	delete(p.Presets, oldName)
	pr.Name = newName
	p.Presets[newName] = pr

	for _, start := range p.sectionKeys {
		sec := p.sections[start]
		changed := false
		for i, name := range sec.Presets {
			if name == oldName {
				sec.Presets[i] = newName
				changed = true
			}
		}
		if changed {
			p.sections[start] = sec
		}
	}

	for _, cl := range p.CustomLists {
		if cl.Preset == oldName {
			cl.Preset = newName
		}
	}

	p.setModified(true)
	return nil
}

// IsPresetInUse reports whether any section or custom list references name.
func (p *Project) IsPresetInUse(name string) (bool, error) {
	if !p.PresetExists(name) {
		return false, &NoSuchPresetError{Name: name}
	}
	for _, start := range p.sectionKeys {
		for _, n := range p.sections[start].Presets {
			if n == name {
				return true, nil
			}
		}
	}
	for _, cl := range p.CustomLists {
		if cl.Preset == name {
			return true, nil
		}
	}
	return false, nil
}

// DeletePreset removes preset name, erasing all section-preset entries equal
// to it and clearing (to empty string) the preset reference of every custom
// list that used it.
func (p *Project) DeletePreset(name string) error {
	if !p.PresetExists(name) {
		return &NoSuchPresetError{Name: name}
	}
	delete(p.Presets, name)

	for _, start := range p.sectionKeys {
		sec := p.sections[start]
		out := sec.Presets[:0:0]
		for _, n := range sec.Presets {
			if n != name {
				out = append(out, n)
			}
		}
		sec.Presets = out
		p.sections[start] = sec
	}

	for _, cl := range p.CustomLists {
		if cl.Preset == name {
			cl.Preset = ""
		}
	}

	p.setModified(true)
	return nil
}

// --- VFM / VDecimate parameters --------------------------------------------

// SetVFMParameterInt sets an integer-typed vfm parameter by key. Recognized
// keys: order, cthresh, mi, blockx, blocky, y0, y1, micmatch.
func (p *Project) SetVFMParameterInt(key string, value int) error {
	switch key {
	case "order":
		p.VFMParameters.Order = &value
	case "cthresh":
		p.VFMParameters.Cthresh = &value
	case "mi":
		p.VFMParameters.MI = &value
	case "blockx":
		p.VFMParameters.BlockX = &value
	case "blocky":
		p.VFMParameters.BlockY = &value
	case "y0":
		p.VFMParameters.Y0 = &value
	case "y1":
		p.VFMParameters.Y1 = &value
	case "micmatch":
		p.VFMParameters.MicMatch = &value
	default:
		return &ParseError{Message: "unrecognized vfm parameter " + strconv.Quote(key)}
	}
	p.setModified(true)
	return nil
}

// SetVFMParameterDouble sets a float-typed vfm parameter (scthresh).
func (p *Project) SetVFMParameterDouble(key string, value float64) error {
	switch key {
	case "scthresh":
		p.VFMParameters.Scthresh = &value
	default:
		return &ParseError{Message: "unrecognized vfm parameter " + strconv.Quote(key)}
	}
	p.setModified(true)
	return nil
}

// SetVFMParameterBool sets a bool-typed vfm parameter (chroma, mchroma).
func (p *Project) SetVFMParameterBool(key string, value bool) error {
	switch key {
	case "chroma":
		p.VFMParameters.Chroma = &value
	case "mchroma":
		p.VFMParameters.MChroma = &value
	default:
		return &ParseError{Message: "unrecognized vfm parameter " + strconv.Quote(key)}
	}
	p.setModified(true)
	return nil
}

// SetVDecimateParameterInt sets an integer-typed vdecimate parameter
// (blockx, blocky).
func (p *Project) SetVDecimateParameterInt(key string, value int) error {
	switch key {
	case "blockx":
		p.VDecimateParameters.BlockX = &value
	case "blocky":
		p.VDecimateParameters.BlockY = &value
	default:
		return &ParseError{Message: "unrecognized vdecimate parameter " + strconv.Quote(key)}
	}
	p.setModified(true)
	return nil
}

// SetVDecimateParameterDouble sets a float-typed vdecimate parameter
// (dupthresh, scthresh).
func (p *Project) SetVDecimateParameterDouble(key string, value float64) error {
	switch key {
	case "dupthresh":
		p.VDecimateParameters.Dupthresh = &value
	case "scthresh":
		p.VDecimateParameters.Scthresh = &value
	default:
		return &ParseError{Message: "unrecognized vdecimate parameter " + strconv.Quote(key)}
	}
	p.setModified(true)
	return nil
}

// SetVDecimateParameterBool sets a bool-typed vdecimate parameter (chroma).
func (p *Project) SetVDecimateParameterBool(key string, value bool) error {
	switch key {
	case "chroma":
		p.VDecimateParameters.Chroma = &value
	default:
		return &ParseError{Message: "unrecognized vdecimate parameter " + strconv.Quote(key)}
	}
	p.setModified(true)
	return nil
}

// --- Matches -----------------------------------------------------------

// GetOriginalMatch returns the pre-edit match character at frame.
func (p *Project) GetOriginalMatch(frame int) MatchChar {
	return p.OriginalMatches.Get(frame)
}

// SetOriginalMatch lazily allocates OriginalMatches to numFramesSource and
// writes ch at frame, without boundary coercion (it records what the
// collector observed).
func (p *Project) SetOriginalMatch(frame int, ch MatchChar) error {
	if !ch.IsValid() {
		return &InvalidMatchCharError{Char: byte(ch)}
	}
	if len(p.OriginalMatches) == 0 {
		p.OriginalMatches = make(MatchArray, p.numFramesSource)
		for i := range p.OriginalMatches {
			p.OriginalMatches[i] = MatchC
		}
	}
	p.OriginalMatches[frame] = ch
	p.setModified(true)
	return nil
}

// GetMatch returns the current match at frame: matches[frame] if matches is
// allocated, else original_matches[frame], else 'c'.
func (p *Project) GetMatch(frame int) MatchChar {
	if len(p.Matches) != 0 {
		return p.Matches[frame]
	}
	if len(p.OriginalMatches) != 0 {
		return p.OriginalMatches[frame]
	}
	return MatchC
}

// coerceMatchForPosition applies the frame-0 / last-frame boundary rule:
// frame 0 forbids b and p (coerced to n and u); the final source frame
// forbids n and u (coerced to b and p).
func (p *Project) coerceMatchForPosition(frame int, ch MatchChar) MatchChar {
	if frame == 0 {
		switch ch {
		case MatchB:
			return MatchN
		case MatchP:
			return MatchU
		}
	}
	if frame == p.numFramesSource-1 {
		switch ch {
		case MatchN:
			return MatchB
		case MatchU:
			return MatchP
		}
	}
	return ch
}

func (p *Project) allocateMatches() {
	if len(p.Matches) == 0 {
		p.Matches = make(MatchArray, p.numFramesSource)
		for i := range p.Matches {
			p.Matches[i] = MatchC
		}
	}
}

// SetMatch validates ch, applies the frame-0/last-frame boundary coercion,
// lazily allocates Matches to numFramesSource x 'c' on first write, and
// stores the coerced character.
func (p *Project) SetMatch(frame int, ch MatchChar) error {
	if frame < 0 || frame >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: frame, Min: 0, Max: p.numFramesSource}
	}
	if !ch.IsValid() {
		return &InvalidMatchCharError{Char: byte(ch)}
	}
	ch = p.coerceMatchForPosition(frame, ch)
	p.allocateMatches()
	p.Matches[frame] = ch
	p.setModified(true)
	return nil
}

func (p *Project) forbiddenAt(frame int) func(MatchChar) bool {
	return func(ch MatchChar) bool {
		if frame == 0 && (ch == MatchB || ch == MatchP) {
			return true
		}
		if frame == p.numFramesSource-1 && (ch == MatchN || ch == MatchU) {
			return true
		}
		return false
	}
}

// CycleMatchCNB rotates the match at frame through c -> n -> b -> c,
// skipping characters forbidden at frame's position.
func (p *Project) CycleMatchCNB(frame int) error {
	if frame < 0 || frame >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: frame, Min: 0, Max: p.numFramesSource}
	}
	cur := p.GetMatch(frame)
	next := nextInRotation(cnbOrder, cur, p.forbiddenAt(frame))
	return p.SetMatch(frame, next)
}

// CycleMatch rotates the match at frame through c -> n -> b -> p -> u -> c,
// skipping characters forbidden at frame's position.
func (p *Project) CycleMatch(frame int) error {
	if frame < 0 || frame >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: frame, Min: 0, Max: p.numFramesSource}
	}
	cur := p.GetMatch(frame)
	next := nextInRotation(fullOrder, cur, p.forbiddenAt(frame))
	return p.SetMatch(frame, next)
}

// --- Mics / DMetrics -----------------------------------------------------

// GetMics returns the five-value mic row at frame.
func (p *Project) GetMics(frame int) MicsRow { return p.Mics.Get(frame) }

// SetMics lazily allocates Mics to numFramesSource and writes row at frame.
func (p *Project) SetMics(frame int, row MicsRow) {
	if len(p.Mics) == 0 {
		p.Mics = make(MicsArray, p.numFramesSource)
	}
	p.Mics[frame] = row
	p.setModified(true)
}

// SetDMetrics lazily allocates MMetrics/VMetrics to numFramesSource and
// writes the given rows at frame.
func (p *Project) SetDMetrics(frame int, mmet, vmet DMetricsRow) {
	if len(p.MMetrics) == 0 {
		p.MMetrics = make(DMetricsArray, p.numFramesSource)
	}
	if len(p.VMetrics) == 0 {
		p.VMetrics = make(DMetricsArray, p.numFramesSource)
	}
	p.MMetrics[frame] = mmet
	p.VMetrics[frame] = vmet
	p.setModified(true)
}

// GetMMetrics returns the derived 3-element row (own p, own c, next frame's
// p) for frame; see SPEC_FULL.md §3 for why this differs from the 2-wide
// storage shape.
func (p *Project) GetMMetrics(frame int) [3]int32 { return threeColumnDMetrics(p.MMetrics, frame) }

// GetVMetrics returns the derived 3-element row for frame; see GetMMetrics.
func (p *Project) GetVMetrics(frame int) [3]int32 { return threeColumnDMetrics(p.VMetrics, frame) }

// GetDecimateMetric returns the scalar decimation-quality metric at frame.
func (p *Project) GetDecimateMetric(frame int) int32 { return p.DecimateMetrics.Get(frame) }

// SetDecimateMetric lazily allocates DecimateMetrics to numFramesSource and
// writes value at frame.
func (p *Project) SetDecimateMetric(frame int, value int32) {
	if len(p.DecimateMetrics) == 0 {
		p.DecimateMetrics = make(DecimateMetricArray, p.numFramesSource)
	}
	p.DecimateMetrics[frame] = value
	p.setModified(true)
}

// GetPreviousFrameWithMic scans backward from frame for the nearest frame
// whose mic value for ch differs from frame's own.
func (p *Project) GetPreviousFrameWithMic(ch MatchChar, frame int) (int, bool) {
	return findFrameWithMic(p.Mics, ch, frame, -1, p.numFramesSource)
}

// GetNextFrameWithMic scans forward from frame for the nearest frame whose
// mic value for ch differs from frame's own.
func (p *Project) GetNextFrameWithMic(ch MatchChar, frame int) (int, bool) {
	return findFrameWithMic(p.Mics, ch, frame, 1, p.numFramesSource)
}

// --- Combed frames -----------------------------------------------------

// SetCombedFrame marks or clears frame as combed.
func (p *Project) SetCombedFrame(frame int, combed bool) {
	if combed {
		p.CombedFrames[frame] = true
	} else {
		delete(p.CombedFrames, frame)
	}
	p.setModified(true)
}

// IsCombedFrame reports whether frame is marked combed.
func (p *Project) IsCombedFrame(frame int) bool { return p.CombedFrames[frame] }

// FindNextCombedFrame returns the smallest combed frame strictly greater
// than frame.
func (p *Project) FindNextCombedFrame(frame int) (int, bool) {
	best := -1
	for f := range p.CombedFrames {
		if f > frame && (best == -1 || f < best) {
			best = f
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// FindPreviousCombedFrame returns the largest combed frame strictly less
// than frame.
func (p *Project) FindPreviousCombedFrame(frame int) (int, bool) {
	best := -1
	for f := range p.CombedFrames {
		if f < frame && f > best {
			best = f
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// --- Sections ------------------------------------------------------------

func (p *Project) addSection(s Section) {
	if _, exists := p.sections[s.Start]; !exists {
		i := sort.SearchInts(p.sectionKeys, s.Start)
		p.sectionKeys = append(p.sectionKeys, 0)
		copy(p.sectionKeys[i+1:], p.sectionKeys[i:])
		p.sectionKeys[i] = s.Start
	}
	p.sections[s.Start] = s
}

// AddSection creates a section starting at start.
func (p *Project) AddSection(start int) error {
	if start < 0 || start >= p.numFramesSource {
		return &OutOfRangeError{What: "section start", Value: start, Min: 0, Max: p.numFramesSource}
	}
	p.addSection(Section{Start: start})
	p.setModified(true)
	return nil
}

// DeleteSection removes the section starting at start. The section at 0
// can never be deleted.
func (p *Project) DeleteSection(start int) error {
	if start == 0 {
		return &OutOfRangeError{What: "section start", Value: start}
	}
	if _, ok := p.sections[start]; !ok {
		return &NoSuchSectionError{Start: start}
	}
	delete(p.sections, start)
	i := sort.SearchInts(p.sectionKeys, start)
	p.sectionKeys = append(p.sectionKeys[:i], p.sectionKeys[i+1:]...)
	p.setModified(true)
	return nil
}

// FindSection returns the section containing frame.
func (p *Project) FindSection(frame int) (Section, error) {
	i := sort.Search(len(p.sectionKeys), func(i int) bool { return p.sectionKeys[i] > frame })
	if i == 0 {
		return Section{}, &NoSuchSectionError{Start: frame}
	}
	return p.sections[p.sectionKeys[i-1]], nil
}

// FindNextSection returns the section immediately after the one starting at
// start, if any.
func (p *Project) FindNextSection(start int) (Section, bool) {
	i := sort.SearchInts(p.sectionKeys, start)
	if i < len(p.sectionKeys) && p.sectionKeys[i] == start {
		i++
	}
	if i >= len(p.sectionKeys) {
		return Section{}, false
	}
	return p.sections[p.sectionKeys[i]], true
}

// GetSectionEnd returns the exclusive end frame of the section starting at
// start: either the next section's start, or numFramesSource.
func (p *Project) GetSectionEnd(start int) (int, error) {
	if _, ok := p.sections[start]; !ok {
		return 0, &NoSuchSectionError{Start: start}
	}
	if next, ok := p.FindNextSection(start); ok {
		return next.Start, nil
	}
	return p.numFramesSource, nil
}

// Sections returns all sections in ascending start order.
func (p *Project) Sections() []Section {
	out := make([]Section, len(p.sectionKeys))
	for i, k := range p.sectionKeys {
		out[i] = p.sections[k]
	}
	return out
}

// AppendSectionPreset appends presetName to the section starting at start.
// Duplicates are allowed.
func (p *Project) AppendSectionPreset(start int, presetName string) error {
	sec, ok := p.sections[start]
	if !ok {
		return &NoSuchSectionError{Start: start}
	}
	if !p.PresetExists(presetName) {
		return &NoSuchPresetError{Name: presetName}
	}
	sec.Presets = append(sec.Presets, presetName)
	p.sections[start] = sec
	p.setModified(true)
	return nil
}

// DeleteSectionPreset removes the preset at index from the section starting
// at start.
func (p *Project) DeleteSectionPreset(start, index int) error {
	sec, ok := p.sections[start]
	if !ok {
		return &NoSuchSectionError{Start: start}
	}
	if index < 0 || index >= len(sec.Presets) {
		return &OutOfRangeError{What: "preset index", Value: index, Min: 0, Max: len(sec.Presets)}
	}
	sec.Presets = append(sec.Presets[:index], sec.Presets[index+1:]...)
	p.sections[start] = sec
	p.setModified(true)
	return nil
}

// MoveSectionPresetUp swaps the preset at index with the one before it.
func (p *Project) MoveSectionPresetUp(start, index int) error {
	sec, ok := p.sections[start]
	if !ok {
		return &NoSuchSectionError{Start: start}
	}
	if index <= 0 || index >= len(sec.Presets) {
		return &OutOfRangeError{What: "preset index", Value: index, Min: 1, Max: len(sec.Presets)}
	}
	sec.Presets[index-1], sec.Presets[index] = sec.Presets[index], sec.Presets[index-1]
	p.sections[start] = sec
	p.setModified(true)
	return nil
}

// MoveSectionPresetDown swaps the preset at index with the one after it.
func (p *Project) MoveSectionPresetDown(start, index int) error {
	sec, ok := p.sections[start]
	if !ok {
		return &NoSuchSectionError{Start: start}
	}
	if index < 0 || index >= len(sec.Presets)-1 {
		return &OutOfRangeError{What: "preset index", Value: index, Min: 0, Max: len(sec.Presets) - 1}
	}
	sec.Presets[index+1], sec.Presets[index] = sec.Presets[index], sec.Presets[index+1]
	p.sections[start] = sec
	p.setModified(true)
	return nil
}

// --- Freeze frames -------------------------------------------------------

// AddFreezeFrame adds a freeze-frame range, normalizing first/last order and
// rejecting overlap with an existing range.
func (p *Project) AddFreezeFrame(first, last, replacement int) error {
	r := FrameRange{First: first, Last: last}.Normalize()
	if r.First < 0 || r.Last >= p.numFramesSource || replacement < 0 || replacement >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: r.First, Min: 0, Max: p.numFramesSource}
	}
	if p.FrozenFrames.Overlaps(r.First, r.Last) {
		return &OverlapError{First: r.First, Last: r.Last}
	}
	p.FrozenFrames.Insert(FreezeFrame{First: r.First, Last: r.Last, Replacement: replacement})
	p.setModified(true)
	return nil
}

// DeleteFreezeFrame removes the freeze-frame range starting at first.
func (p *Project) DeleteFreezeFrame(first int) error {
	if !p.FrozenFrames.Delete(first) {
		return &NoSuchRangeError{Frame: first}
	}
	p.setModified(true)
	return nil
}

// FindFreezeFrame returns the freeze-frame range containing frame.
func (p *Project) FindFreezeFrame(frame int) (FreezeFrame, error) {
	f, ok := p.FrozenFrames.FindContaining(frame)
	if !ok {
		return FreezeFrame{}, &NoSuchRangeError{Frame: frame}
	}
	return f, nil
}

// --- Bookmarks / interlaced fades -----------------------------------------

// AddBookmark adds or replaces a bookmark at frame.
func (p *Project) AddBookmark(frame int, description string) error {
	if frame < 0 || frame >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: frame, Min: 0, Max: p.numFramesSource}
	}
	p.Bookmarks[frame] = Bookmark{Frame: frame, Description: description}
	p.setModified(true)
	return nil
}

// DeleteBookmark removes the bookmark at frame.
func (p *Project) DeleteBookmark(frame int) error {
	if _, ok := p.Bookmarks[frame]; !ok {
		return &NoSuchBookmarkError{Frame: frame}
	}
	delete(p.Bookmarks, frame)
	p.setModified(true)
	return nil
}

// IsBookmark reports whether frame has a bookmark.
func (p *Project) IsBookmark(frame int) bool {
	_, ok := p.Bookmarks[frame]
	return ok
}

// GetBookmark returns the bookmark at frame.
func (p *Project) GetBookmark(frame int) (Bookmark, error) {
	b, ok := p.Bookmarks[frame]
	if !ok {
		return Bookmark{}, &NoSuchBookmarkError{Frame: frame}
	}
	return b, nil
}

// FindPreviousBookmark returns the largest bookmarked frame strictly less
// than frame.
func (p *Project) FindPreviousBookmark(frame int) (int, bool) {
	best := -1
	for f := range p.Bookmarks {
		if f < frame && f > best {
			best = f
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// FindNextBookmark returns the smallest bookmarked frame strictly greater
// than frame.
func (p *Project) FindNextBookmark(frame int) (int, bool) {
	best := -1
	for f := range p.Bookmarks {
		if f > frame && (best == -1 || f < best) {
			best = f
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// AddInterlacedFade records an interlaced-fade observation at frame.
func (p *Project) AddInterlacedFade(frame int, fieldDifference float64) {
	p.InterlacedFades[frame] = InterlacedFade{Frame: frame, FieldDifference: fieldDifference}
	p.setModified(true)
}

// GetInterlacedFades returns all recorded interlaced fades.
func (p *Project) GetInterlacedFades() map[int]InterlacedFade {
	return p.InterlacedFades
}

// --- Resize / Crop / Depth -------------------------------------------------

func (p *Project) SetResizeEnabled(v bool) { p.Resize.Enabled = v; p.setModified(true) }
func (p *Project) IsResizeEnabled() bool   { return p.Resize.Enabled }
func (p *Project) SetResize(width, height int, filter string) {
	p.Resize.Width, p.Resize.Height, p.Resize.Filter = width, height, filter
	p.setModified(true)
}
func (p *Project) GetResize() Resize { return p.Resize }

func (p *Project) SetCropEnabled(v bool) { p.Crop.Enabled = v; p.setModified(true) }
func (p *Project) IsCropEnabled() bool   { return p.Crop.Enabled }
func (p *Project) SetCropEarly(v bool)   { p.Crop.Early = v; p.setModified(true) }
func (p *Project) IsCropEarly() bool     { return p.Crop.Early }
func (p *Project) SetCrop(left, top, right, bottom int) {
	p.Crop.Left, p.Crop.Top, p.Crop.Right, p.Crop.Bottom = left, top, right, bottom
	p.setModified(true)
}
func (p *Project) GetCrop() Crop { return p.Crop }

func (p *Project) SetBitDepthEnabled(v bool) { p.Depth.Enabled = v; p.setModified(true) }
func (p *Project) IsBitDepthEnabled() bool   { return p.Depth.Enabled }
func (p *Project) SetBitDepth(bits int, float bool, dither string) {
	p.Depth.Bits, p.Depth.FloatSamples, p.Depth.Dither = bits, float, dither
	p.setModified(true)
}
func (p *Project) GetBitDepth() Depth { return p.Depth }

func (p *Project) SetMicSearchMinimum(v int) { p.MicSearchMinimum = v }
func (p *Project) GetMicSearchMinimum() int  { return p.MicSearchMinimum }
func (p *Project) SetZoom(v float64)         { p.Zoom = v }
func (p *Project) GetZoom() float64          { return p.Zoom }

// --- Import ----------------------------------------------------------------

// ImportFromOtherProject merges selected pieces of other into p, renaming
// presets and custom lists on name collision by repeatedly appending
// "_imported" until the name is unique.
func (p *Project) ImportFromOtherProject(other *Project, imports ImportedThings) error {
	if imports.Presets || imports.CustomLists {
		for name, pr := range other.Presets {
			newName := name
			if p.PresetExists(newName) {
				for p.PresetExists(newName) {
					newName += "_imported"
				}
			}
			if imports.Presets {
				if err := p.AddPreset(newName, pr.Contents); err != nil {
					return err
				}
			}
			if newName != name {
				other.Presets[newName] = Preset{Name: newName, Contents: pr.Contents}
			}
		}
	}

	if imports.CustomLists {
		for _, cl := range other.CustomLists {
			if cl.Preset != "" && !p.PresetExists(cl.Preset) {
				if contents, err := other.GetPresetContents(cl.Preset); err == nil {
					if err := p.AddPreset(cl.Preset, contents); err != nil {
						return err
					}
				}
			}
			name := cl.Name
			for p.customListExists(name) {
				name += "_imported"
			}
			newList := NewCustomList(name, cl.Preset, cl.Position)
			cl.Ranges.All(func(_ int, r FrameRange) { newList.Ranges.Insert(r) })
			p.CustomLists = append(p.CustomLists, newList)
		}
	}

	if imports.Crop {
		p.Crop = other.Crop
	}
	if imports.Resize {
		p.Resize = other.Resize
	}
	if imports.BitDepth {
		p.Depth = other.Depth
	}
	if imports.MicSearch {
		p.MicSearchMinimum = other.MicSearchMinimum
	}
	if imports.Zoom {
		p.Zoom = other.Zoom
	}

	p.setModified(true)
	return nil
}
