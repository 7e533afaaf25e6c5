// SPDX-License-Identifier: Apache-2.0

// Package wobbly implements the editorial core of an inverse-telecine (IVTC)
// authoring tool: a mutable project model for field-matching, decimating,
// cropping, resizing and bit-depth-converting a telecined source clip, with
// pattern-guessing, undo/redo, versioned serialization, and script generation.
package wobbly

// MatchChar is a per-frame field-matching character.
type MatchChar byte

const (
	MatchP MatchChar = 'p'
	MatchC MatchChar = 'c'
	MatchN MatchChar = 'n'
	MatchB MatchChar = 'b'
	MatchU MatchChar = 'u'
)

// IsValid reports whether ch is one of the five recognized match characters.
func (ch MatchChar) IsValid() bool {
	switch ch {
	case MatchP, MatchC, MatchN, MatchB, MatchU:
		return true
	}
	return false
}

func (ch MatchChar) String() string {
	return string(byte(ch))
}

// PositionInFilterChain is where a custom list is applied in the pipeline.
type PositionInFilterChain int

const (
	PostSource PositionInFilterChain = iota
	PostFieldMatch
	PostDecimate
)

func (p PositionInFilterChain) String() string {
	switch p {
	case PostSource:
		return "post source"
	case PostFieldMatch:
		return "post field match"
	case PostDecimate:
		return "post decimate"
	}
	return "unknown"
}

// UseThirdNMatch controls whether the third-n-match heuristic runs when
// applying a guessed pattern from original matches.
type UseThirdNMatch int

const (
	UseThirdNMatchAlways UseThirdNMatch = iota
	UseThirdNMatchNever
	UseThirdNMatchIfPrettier
)

// DropDuplicate selects which offset of a duplicate pair is dropped during
// pattern-guessing decimation.
type DropDuplicate int

const (
	DropFirstDuplicate DropDuplicate = iota
	DropSecondDuplicate
	DropUglierDuplicatePerCycle
	DropUglierDuplicatePerSection
)

// Patterns is a bitmask of candidate cadences the mics/DMetrics guessers may
// choose from.
type Patterns int

const (
	PatternCCCNN Patterns = 1 << iota
	PatternCCNNN
	PatternCCCCC
)

// PatternGuessingMethod selects which information source the guesser uses.
type PatternGuessingMethod int

const (
	PatternGuessingFromMatches PatternGuessingMethod = iota
	PatternGuessingFromMics
	PatternGuessingFromDMetrics
	PatternGuessingFromMicsAndDMetrics
)

// PatternGuessingFailureReason explains why a section's pattern could not be
// guessed.
type PatternGuessingFailureReason int

const (
	SectionTooShort PatternGuessingFailureReason = iota
	AmbiguousMatchPattern
)

// FailedPatternGuessing records a section for which pattern guessing failed.
type FailedPatternGuessing struct {
	Start  int
	Reason PatternGuessingFailureReason
}

// PatternGuessing holds the configuration and outcome of automatic cadence
// inference.
type PatternGuessing struct {
	Method        PatternGuessingMethod
	MinimumLength int
	ThirdNMatch   UseThirdNMatch
	Decimation    DropDuplicate
	UsePatterns   Patterns
	Failures      map[int]FailedPatternGuessing // keyed by section start
}

// FrameRange is an inclusive frame interval, first <= last.
type FrameRange struct {
	First int
	Last  int
}

// Normalize swaps First/Last if they are out of order, matching the
// "swap to make first <= last" convention used throughout the aggregate's
// range-accepting operations.
func (r FrameRange) Normalize() FrameRange {
	if r.First > r.Last {
		r.First, r.Last = r.Last, r.First
	}
	return r
}

// FreezeFrame replaces [First, Last] with the content of Replacement.
type FreezeFrame struct {
	First       int
	Last        int
	Replacement int
}

// Preset is a named snippet of processing-engine code applied to a clip.
// Name must match [A-Za-z_][A-Za-z0-9_]*.
type Preset struct {
	Name     string
	Contents string
}

// Section is a contiguous run of source frames sharing a preset stack.
// Presets are preset names, in user-defined order; duplicates are allowed.
type Section struct {
	Start   int
	Presets []string
}

// CustomList is a named set of frame ranges a single preset is applied to at
// one pipeline position.
type CustomList struct {
	Name     string
	Preset   string
	Position PositionInFilterChain
	Ranges   *RangeMap // keyed by FrameRange.First
}

// NewCustomList returns an empty custom list.
func NewCustomList(name, preset string, position PositionInFilterChain) *CustomList {
	return &CustomList{
		Name:     name,
		Preset:   preset,
		Position: position,
		Ranges:   NewRangeMap(),
	}
}

// Resize is the optional output resize stage.
type Resize struct {
	Enabled bool
	Width   int
	Height  int
	Filter  string
}

// Crop is the optional crop stage; Early selects whether it runs before or
// after field matching/decimation.
type Crop struct {
	Enabled bool
	Early   bool
	Left    int
	Top     int
	Right   int
	Bottom  int
}

// Depth is the optional output bit-depth conversion stage.
type Depth struct {
	Enabled      bool
	Bits         int
	FloatSamples bool
	Dither       string
}

// DecimationRange is a run of cycles sharing the same drop count.
type DecimationRange struct {
	Start      int
	NumDropped int
}

// DecimationPatternRange is a run of cycles sharing the same exact set of
// dropped offsets.
type DecimationPatternRange struct {
	Start          int
	DroppedOffsets map[int]bool
}

// Bookmark is a user-placed annotation at a frame.
type Bookmark struct {
	Frame       int
	Description string
}

// InterlacedFade marks a frame whose two fields differ enough to suggest a
// field-level fade the matcher cannot repair.
type InterlacedFade struct {
	Frame          int
	FieldDifference float64
}

// ImportedThings selects which pieces of another project to merge in via
// Project.ImportFromOtherProject. Geometry has no effect: a Project holds no
// window geometry.
type ImportedThings struct {
	Geometry    bool
	Presets     bool
	CustomLists bool
	Crop        bool
	Resize      bool
	BitDepth    bool
	MicSearch   bool
	Zoom        bool
}

// VFMParameters holds the recognized vfm (field matching) filter parameters.
// Pointers distinguish "not set" from the zero value; only keys present in a
// document are set when it is read.
type VFMParameters struct {
	Order     *int
	Cthresh   *int
	MI        *int
	BlockX    *int
	BlockY    *int
	Y0        *int
	Y1        *int
	MicMatch  *int
	Scthresh  *float64
	Chroma    *bool
	MChroma   *bool
}

// VDecimateParameters holds the recognized vdecimate filter parameters.
type VDecimateParameters struct {
	BlockX    *int
	BlockY    *int
	Dupthresh *float64
	Scthresh  *float64
	Chroma    *bool
}
