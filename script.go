// SPDX-License-Identifier: Apache-2.0

package wobbly

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DecimationFunction selects which of the two competing decimation script
// forms GenerateFinalScript emits.
type DecimationFunction int

const (
	// DecimationAuto builds both the DeleteFrames and SelectEvery forms and
	// emits whichever renders to fewer characters.
	DecimationAuto DecimationFunction = iota
	DecimationDeleteFrames
	DecimationSelectEvery
)

// GenerateFinalScript compiles the project into the ordered VapourSynth
// processing-pipeline script described in §4.H. saveSourceNode controls
// whether the source node is looked up from an existing output index 1
// (reused across repeated script generations in a live session) or
// constructed fresh. It never mutates the project.
func (p *Project) GenerateFinalScript(saveSourceNode bool, decimationFunction DecimationFunction) (string, error) {
	var b strings.Builder

	p.scriptHeader(&b)
	if err := p.scriptPresets(&b); err != nil {
		return "", err
	}
	p.scriptSource(&b, saveSourceNode)

	if p.Crop.Enabled && p.Crop.Early {
		p.scriptCrop(&b)
	}

	p.scriptTrim(&b)

	if err := p.scriptCustomLists(&b, PostSource); err != nil {
		return "", err
	}

	p.scriptFieldHint(&b)

	if err := p.scriptCustomLists(&b, PostFieldMatch); err != nil {
		return "", err
	}

	p.scriptSections(&b)

	if p.FrozenFrames.Len() > 0 {
		p.scriptFreezeFrames(&b)
	}

	if p.hasAnyDecimation() {
		p.scriptDecimation(&b, decimationFunction)
	}

	if err := p.scriptCustomLists(&b, PostDecimate); err != nil {
		return "", err
	}

	if p.Crop.Enabled && !p.Crop.Early {
		p.scriptCrop(&b)
	}

	if p.Resize.Enabled || p.Depth.Enabled {
		p.scriptResizeAndDepth(&b)
	}

	b.WriteString("src.set_output()\n")

	return b.String(), nil
}

// GenerateMainDisplayScript compiles a reduced preview pipeline: source,
// trim, field-hint, and optional freeze-frames — intended for a live editor
// view rather than the final render.
func (p *Project) GenerateMainDisplayScript() string {
	var b strings.Builder
	p.scriptHeader(&b)
	p.scriptSource(&b, true)
	p.scriptTrim(&b)
	p.scriptFieldHint(&b)
	if p.FrozenFrames.Len() > 0 {
		p.scriptFreezeFrames(&b)
	}
	b.WriteString("src.set_output()\n")
	return b.String()
}

// GenerateTimecodesV1 emits a timecode-format-v1 document listing, in
// post-decimation frame numbers, every contiguous run whose output frame
// rate differs from the assumed 24000/1001 rate written on its "Assume" line.
func (p *Project) GenerateTimecodesV1() string {
	var b strings.Builder
	b.WriteString("# timecode format v1\n")
	fmt.Fprintf(&b, "Assume %.12f\n", 24000/1001.0)

	ranges := p.GetDecimationRanges()
	numerators := [5]int{30000, 24000, 18000, 12000, 6000}

	for i, r := range ranges {
		num := numerators[r.NumDropped]
		if num == 24000 {
			continue
		}
		end := p.numFramesSource
		if i+1 < len(ranges) {
			end = ranges[i+1].Start
		}
		fmt.Fprintf(&b, "%d,%d,%.12f\n",
			p.FrameNumberAfterDecimation(r.Start),
			p.FrameNumberAfterDecimation(end)-1,
			float64(num)/1001.0)
	}

	return b.String()
}

// GenerateKeyframesV1 emits a keyframe-format-v1 document listing every
// section start, translated to its post-decimation frame number.
func (p *Project) GenerateKeyframesV1() string {
	var b strings.Builder
	b.WriteString("# keyframe format v1\nfps 0\n")
	for _, start := range p.sectionKeys {
		fmt.Fprintf(&b, "%d\n", p.FrameNumberAfterDecimation(start))
	}
	return b.String()
}

func (p *Project) hasAnyDecimation() bool {
	for _, offsets := range p.DecimatedFrames {
		if len(offsets) > 0 {
			return true
		}
	}
	return false
}

// --- per-stage helpers -----------------------------------------------------

func (p *Project) scriptHeader(b *strings.Builder) {
	b.WriteString("# Generated by wobbly\n")
	b.WriteString("\n")
	b.WriteString("import vapoursynth as vs\n")
	b.WriteString("\n")
	b.WriteString("c = vs.core\n")
	b.WriteString("\n")
}

// scriptPresets emits one Python function per preset that is referenced by a
// section or a custom list. Unused presets are skipped.
func (p *Project) scriptPresets(b *strings.Builder) error {
	names := make([]string, 0, len(p.Presets))
	for n := range p.Presets {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		inUse, err := p.IsPresetInUse(name)
		if err != nil {
			return err
		}
		if !inUse {
			continue
		}
		pr := p.Presets[name]
		fmt.Fprintf(b, "def preset_%s(clip):\n", pr.Name)
		for _, line := range strings.Split(pr.Contents, "\n") {
			b.WriteString("    " + line + "\n")
		}
		b.WriteString("    return clip\n")
		b.WriteString("\n\n")
	}
	return nil
}

func handleSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func (p *Project) scriptSource(b *strings.Builder, saveNode bool) {
	src := fmt.Sprintf("src = c.%s(r'%s'%s)\n", p.SourceFilter, handleSingleQuotes(p.InputFile), p.GetArgsForSourceFilter())

	if saveNode {
		b.WriteString("try:\n")
		b.WriteString("    src = vs.get_output(index=1)\n")
		b.WriteString("    if isinstance(src, vs.VideoOutputTuple):\n")
		b.WriteString("        src = src[0]\n")
		b.WriteString("except KeyError:\n")
		b.WriteString("    " + src)
		b.WriteString("    src.set_output(index=1)\n")
		b.WriteString("\n")
	} else {
		b.WriteString(src)
		b.WriteString("\n")
	}
}

func (p *Project) scriptTrim(b *strings.Builder) {
	b.WriteString("src = c.std.Splice(clips=[")
	for _, t := range p.Trim {
		fmt.Fprintf(b, "src[%d:%d],", t.First, t.Last+1)
	}
	b.WriteString("])\n\n")
}

func (p *Project) scriptFieldHint(b *strings.Builder) {
	if len(p.Matches) == 0 && len(p.OriginalMatches) == 0 {
		return
	}
	order := 1
	if p.VFMParameters.Order != nil {
		order = *p.VFMParameters.Order
	}
	b.WriteString("src = c.fh.FieldHint(clip=src, tff=")
	b.WriteString(strconv.Itoa(order))
	b.WriteString(", matches='")
	matches := p.Matches
	if len(matches) == 0 {
		matches = p.OriginalMatches
	}
	for _, ch := range matches {
		b.WriteString(ch.String())
	}
	b.WriteString("')\n\n")
}

// scriptSections merges adjacent sections sharing an identical preset stack
// and emits one chained-preset slice per merged section, splicing the
// results back together.
func (p *Project) scriptSections(b *strings.Builder) {
	sections := p.Sections()
	if len(sections) == 0 {
		return
	}

	type merged struct {
		start   int
		presets []string
	}
	mergedSections := []merged{{start: sections[0].Start, presets: sections[0].Presets}}
	for _, sec := range sections[1:] {
		last := &mergedSections[len(mergedSections)-1]
		if samePresetStack(sec.Presets, last.presets) {
			continue
		}
		mergedSections = append(mergedSections, merged{start: sec.Start, presets: sec.Presets})
	}

	var splice strings.Builder
	splice.WriteString("src = c.std.Splice(mismatch=True, clips=[")

	for i, sec := range mergedSections {
		name := fmt.Sprintf("section%d", sec.start)
		fmt.Fprintf(b, "%s = src", name)
		for _, preset := range sec.presets {
			fmt.Fprintf(b, "\n%s = preset_%s(%s)", name, preset, name)
		}
		b.WriteString("[")
		b.WriteString(strconv.Itoa(sec.start))
		b.WriteString(":")
		if i+1 < len(mergedSections) {
			b.WriteString(strconv.Itoa(mergedSections[i+1].start))
		}
		b.WriteString("]\n")

		fmt.Fprintf(&splice, "%s,", name)
	}
	splice.WriteString("])\n\n")

	b.WriteString(splice.String())
}

func samePresetStack(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *Project) scriptFreezeFrames(b *strings.Builder) {
	var first, last, replacement strings.Builder
	first.WriteString(", first=[")
	last.WriteString(", last=[")
	replacement.WriteString(", replacement=[")

	p.FrozenFrames.All(func(_ int, f FreezeFrame) {
		fmt.Fprintf(&first, "%d,", f.First)
		fmt.Fprintf(&last, "%d,", f.Last)
		fmt.Fprintf(&replacement, "%d,", f.Replacement)
	})

	first.WriteString("]")
	last.WriteString("]")
	replacement.WriteString("]")

	b.WriteString("src = c.std.FreezeFrames(clip=src")
	b.WriteString(first.String())
	b.WriteString(last.String())
	b.WriteString(replacement.String())
	b.WriteString(")\n\n")
}

// scriptDecimation builds both competing decimation-script forms and emits
// whichever decimationFunction selects; under DecimationAuto it picks
// whichever form renders to fewer characters, matching the original
// implementation's length comparison.
func (p *Project) scriptDecimation(b *strings.Builder, decimationFunction DecimationFunction) {
	deleteForm := p.scriptDecimationDeleteFrames()
	selectForm := p.scriptDecimationSelectEvery()

	switch decimationFunction {
	case DecimationDeleteFrames:
		b.WriteString(deleteForm)
	case DecimationSelectEvery:
		b.WriteString(selectForm)
	default:
		if len(deleteForm) < len(selectForm) {
			b.WriteString(deleteForm)
		} else {
			b.WriteString(selectForm)
		}
	}
}

func (p *Project) scriptDecimationDeleteFrames() string {
	var b strings.Builder

	ranges := p.GetDecimationRanges()
	frameRates := [5]string{"30", "24", "18", "12", "6"}

	var rateCounts [5]int
	for _, r := range ranges {
		rateCounts[r.NumDropped]++
	}
	for i := 0; i < 5; i++ {
		if rateCounts[i] > 0 {
			fmt.Fprintf(&b, "r%s = c.std.AssumeFPS(clip=src, fpsnum=%s000, fpsden=1001)\n", frameRates[i], frameRates[i])
		}
	}

	b.WriteString("src = c.std.Splice(mismatch=True, clips=[")
	for i, r := range ranges {
		end := p.numFramesSource
		if i+1 < len(ranges) {
			end = ranges[i+1].Start
		}
		fmt.Fprintf(&b, "r%s[%d:%d],", frameRates[r.NumDropped], r.Start, end)
	}
	b.WriteString("])\n")

	b.WriteString("src = c.std.DeleteFrames(clip=src, frames=[")
	for cycle, offsets := range p.DecimatedFrames {
		keys := make([]int, 0, len(offsets))
		for o := range offsets {
			keys = append(keys, o)
		}
		sort.Ints(keys)
		for _, o := range keys {
			fmt.Fprintf(&b, "%d,", cycle*5+o)
		}
	}
	b.WriteString("])\n\n")

	return b.String()
}

func (p *Project) scriptDecimationSelectEvery() string {
	var selectEvery, splice strings.Builder
	splice.WriteString("src = c.std.Splice(mismatch=True, clips=[")

	ranges := p.GetDecimationPatternRanges()
	for i, r := range ranges {
		end := p.numFramesSource
		if i+1 < len(ranges) {
			end = ranges[i+1].Start
		}

		if len(r.DroppedOffsets) == 0 {
			fmt.Fprintf(&splice, "src[%d:%d],", r.Start, end)
			continue
		}

		// A tail cycle fully covered by drops would select zero frames,
		// which VapourSynth disallows; stop emitting ranges at that point.
		if end-r.Start <= len(r.DroppedOffsets) {
			break
		}

		var kept []int
		for o := 0; o < 5; o++ {
			if !r.DroppedOffsets[o] {
				kept = append(kept, o)
			}
		}

		rangeName := fmt.Sprintf("dec%d", r.Start)
		fmt.Fprintf(&selectEvery, "%s = c.std.SelectEvery(clip=src[%d:%d], cycle=5, offsets=[", rangeName, r.Start, end)
		for _, o := range kept {
			fmt.Fprintf(&selectEvery, "%d,", o)
		}
		selectEvery.WriteString("])\n")

		fmt.Fprintf(&splice, "%s,", rangeName)
	}

	splice.WriteString("])\n\n")

	var out strings.Builder
	out.WriteString(selectEvery.String())
	out.WriteString("\n")
	out.WriteString(splice.String())
	return out.String()
}

func (p *Project) scriptCrop(b *strings.Builder) {
	fmt.Fprintf(b, "src = c.std.CropRel(clip=src, left=%d, top=%d, right=%d, bottom=%d)\n\n",
		p.Crop.Left, p.Crop.Top, p.Crop.Right, p.Crop.Bottom)
}

func (p *Project) scriptResizeAndDepth(b *strings.Builder) {
	b.WriteString("src = c.resize.")
	if p.Resize.Enabled && p.Resize.Filter != "" {
		b.WriteString(strings.ToUpper(p.Resize.Filter[:1]))
		b.WriteString(p.Resize.Filter[1:])
	} else {
		b.WriteString("Bicubic")
	}

	b.WriteString("(clip=src")
	if p.Resize.Enabled {
		fmt.Fprintf(b, ", width=%d, height=%d", p.Resize.Width, p.Resize.Height)
	}
	if p.Depth.Enabled {
		sampleType := "vs.INTEGER"
		if p.Depth.FloatSamples {
			sampleType = "vs.FLOAT"
		}
		fmt.Fprintf(b, ", format=c.query_video_format(src.format.color_family, %s, %d, src.format.subsampling_w, src.format.subsampling_h).id", sampleType, p.Depth.Bits)
	}
	b.WriteString(")\n\n")
}

// maybeTranslate converts a frame number at position into the coordinate
// space custom lists are spliced in: unchanged before decimation, or walked
// back to the nearest surviving frame and translated after decimation.
func (p *Project) maybeTranslate(frame int, isEnd bool, position PositionInFilterChain) int {
	if position != PostDecimate {
		return frame
	}
	if isEnd {
		for frame > 0 && p.IsDecimatedFrame(frame) {
			frame--
		}
	}
	return p.FrameNumberAfterDecimation(frame)
}

// scriptCustomLists emits every custom list assigned to position: the
// preset-applied clip for each of its ranges, with untouched source gaps
// filling in before, between, and after the ranges so the spliced output
// still covers every frame end-to-end.
func (p *Project) scriptCustomLists(b *strings.Builder, position PositionInFilterChain) error {
	for _, cl := range p.CustomLists {
		if cl.Position != position || cl.Ranges.Len() == 0 {
			continue
		}
		if cl.Preset == "" {
			return &MissingPresetError{ListName: cl.Name}
		}

		listName := "cl_" + cl.Name
		fmt.Fprintf(b, "%s = preset_%s(src)\n", listName, cl.Preset)

		keys := cl.Ranges.Keys()
		ranges := make([]FrameRange, len(keys))
		for i, k := range keys {
			r, _ := cl.Ranges.Get(k)
			ranges[i] = r
		}

		var splice strings.Builder
		splice.WriteString("src = c.std.Splice(mismatch=True, clips=[")

		first := ranges[0]
		firstStart := p.maybeTranslate(first.First, false, position)
		if first.First > 0 {
			fmt.Fprintf(&splice, "src[0:%d],", firstStart)
		}
		fmt.Fprintf(&splice, "%s[%d:%d],", listName, firstStart, p.maybeTranslate(first.Last, true, position)+1)

		for i := 1; i < len(ranges); i++ {
			previousLast := p.maybeTranslate(ranges[i-1].Last, true, position)
			currentFirst := p.maybeTranslate(ranges[i].First, false, position)
			currentLast := p.maybeTranslate(ranges[i].Last, true, position)
			if currentFirst-previousLast > 1 {
				fmt.Fprintf(&splice, "src[%d:%d],", previousLast+1, currentFirst)
			}
			fmt.Fprintf(&splice, "%s[%d:%d],", listName, currentFirst, currentLast+1)
		}

		numFrames, err := p.GetNumFrames(PostSource)
		if err != nil {
			return err
		}
		lastLast := p.maybeTranslate(ranges[len(ranges)-1].Last, true, position)
		if bound := p.maybeTranslate(numFrames-1, true, position); lastLast < bound {
			fmt.Fprintf(&splice, "src[%d:]", lastLast+1)
		}

		splice.WriteString("])\n\n")
		b.WriteString(splice.String())
	}
	return nil
}
