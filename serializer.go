// SPDX-License-Identifier: Apache-2.0

package wobbly

import (
	"io"
	"sort"

	"github.com/bytedance/sonic"
)

// CurrentProjectFormatVersion is the highest document version this
// serializer writes. A document that omits "project format version" is
// read as version 1.
const CurrentProjectFormatVersion = 3

var patternGuessingMethodNames = [...]string{"from matches", "from mics", "from dmetrics", "from mics+dmetrics"}
var useThirdNMatchNames = [...]string{"always", "never", "if it has lower mic"}
var dropDuplicateNames = [...]string{"first duplicate", "second duplicate", "duplicate with higher mic per cycle", "duplicate with higher mic per section"}
var failureReasonNames = [...]string{"section too short", "ambiguous pattern"}
var positionNames = [...]string{"post source", "post field match", "post decimate"}

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

func indexOf(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

// Write serializes p as a UTF-8 JSON project document (format version
// CurrentProjectFormatVersion) to w. If p.CompactProject is set the document
// is written with minimal whitespace; otherwise it is pretty-printed.
func Write(w io.Writer, p *Project) error {
	doc := p.toWireDocument()
	var (
		data []byte
		err  error
	)
	if p.CompactProject {
		data, err = sonic.Marshal(doc)
	} else {
		data, err = sonic.ConfigDefault.MarshalIndent(doc, "", "    ")
	}
	if err != nil {
		return &ParseError{Message: "encoding project: " + err.Error()}
	}
	_, err = w.Write(data)
	return err
}

// Read parses a UTF-8 JSON project document from r and returns a fully
// constructed Project, or a ParseError. A partial parse never leaks a
// partially-populated project: the aggregate is built in a local value and
// only returned once every required key has been validated.
func Read(r io.Reader) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Message: "malformed document: " + err.Error()}
	}
	return parseWireDocument(raw)
}

// --- wire shape --------------------------------------------------------

type wireSection struct {
	Start   int      `json:"start"`
	Presets []string `json:"presets"`
}

type wireFreezeFrame struct {
	First       int `json:"first"`
	Last        int `json:"last"`
	Replacement int `json:"replacement"`
}

type wirePreset struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

type wireCustomList struct {
	Name     string      `json:"name"`
	Preset   string      `json:"preset"`
	Position interface{} `json:"position"`
	Frames   [][2]int    `json:"frames"`
}

type wireInterlacedFade struct {
	Frame           int     `json:"frame"`
	FieldDifference float64 `json:"field difference"`
}

func (p *Project) toWireDocument() map[string]interface{} {
	doc := map[string]interface{}{
		"wobbly version":         1,
		"project format version": CurrentProjectFormatVersion,
		"input file":             p.InputFile,
		"source filter":          p.SourceFilter,
		"input frame rate":       [2]int{p.FrameRateNum, p.FrameRateDen},
		"input resolution":       [2]int{p.Width, p.Height},
	}

	trims := make([][2]int, len(p.Trim))
	for i, t := range p.Trim {
		trims[i] = [2]int{t.First, t.Last}
	}
	if len(trims) == 0 {
		trims = [][2]int{{0, p.numFramesSource - 1}}
	}
	doc["trim"] = trims

	if vfm := vfmParametersToWire(p.VFMParameters); len(vfm) > 0 {
		doc["vfm parameters"] = vfm
	}
	if vd := vdecimateParametersToWire(p.VDecimateParameters); len(vd) > 0 {
		doc["vdecimate parameters"] = vd
	}

	if len(p.Mics) > 0 {
		mics := make([][5]int16, len(p.Mics))
		for i, r := range p.Mics {
			mics[i] = [5]int16(r)
		}
		doc["mics"] = mics
	}
	if len(p.MMetrics) > 0 {
		rows := make([][2]int32, len(p.MMetrics))
		for i, r := range p.MMetrics {
			rows[i] = [2]int32(r)
		}
		doc["mmetrics"] = rows
	}
	if len(p.VMetrics) > 0 {
		rows := make([][2]int32, len(p.VMetrics))
		for i, r := range p.VMetrics {
			rows[i] = [2]int32(r)
		}
		doc["vmetrics"] = rows
	}
	if len(p.Matches) > 0 {
		doc["matches"] = matchArrayToWire(p.Matches)
	}
	if len(p.OriginalMatches) > 0 {
		doc["original matches"] = matchArrayToWire(p.OriginalMatches)
	}
	if len(p.CombedFrames) > 0 {
		frames := make([]int, 0, len(p.CombedFrames))
		for f := range p.CombedFrames {
			frames = append(frames, f)
		}
		sortInts(frames)
		doc["combed frames"] = frames
	}

	var decimated []int
	for cycle, offsets := range p.DecimatedFrames {
		for offset := range offsets {
			decimated = append(decimated, cycle*5+offset)
		}
	}
	if len(decimated) > 0 {
		sortInts(decimated)
		doc["decimated frames"] = decimated
	}
	if len(p.DecimateMetrics) > 0 {
		vals := make([]int32, len(p.DecimateMetrics))
		copy(vals, p.DecimateMetrics)
		doc["decimate metrics"] = vals
	}

	sections := make([]wireSection, len(p.sectionKeys))
	for i, start := range p.sectionKeys {
		sec := p.sections[start]
		presets := sec.Presets
		if presets == nil {
			presets = []string{}
		}
		sections[i] = wireSection{Start: sec.Start, Presets: presets}
	}
	doc["sections"] = sections

	fades := make([]wireInterlacedFade, 0, len(p.InterlacedFades))
	keys := make([]int, 0, len(p.InterlacedFades))
	for f := range p.InterlacedFades {
		keys = append(keys, f)
	}
	sortInts(keys)
	for _, f := range keys {
		fade := p.InterlacedFades[f]
		fades = append(fades, wireInterlacedFade{Frame: fade.Frame, FieldDifference: fade.FieldDifference})
	}
	doc["interlaced fades"] = fades

	if len(p.Presets) > 0 {
		presets := make([]wirePreset, 0, len(p.Presets))
		names := make([]string, 0, len(p.Presets))
		for n := range p.Presets {
			names = append(names, n)
		}
		sortStrings(names)
		for _, n := range names {
			pr := p.Presets[n]
			presets = append(presets, wirePreset{Name: pr.Name, Contents: pr.Contents})
		}
		doc["presets"] = presets
	}

	if p.FrozenFrames.Len() > 0 {
		var frozen []wireFreezeFrame
		p.FrozenFrames.All(func(_ int, f FreezeFrame) {
			frozen = append(frozen, wireFreezeFrame{First: f.First, Last: f.Last, Replacement: f.Replacement})
		})
		doc["frozen frames"] = frozen
	}

	if len(p.CustomLists) > 0 {
		lists := make([]wireCustomList, len(p.CustomLists))
		for i, cl := range p.CustomLists {
			frames := [][2]int{}
			cl.Ranges.All(func(_ int, r FrameRange) { frames = append(frames, [2]int{r.First, r.Last}) })
			lists[i] = wireCustomList{Name: cl.Name, Preset: cl.Preset, Position: nameOf(positionNames[:], int(cl.Position)), Frames: frames}
		}
		doc["custom lists"] = lists
	}

	if p.Resize.Enabled {
		doc["resize"] = map[string]interface{}{"width": p.Resize.Width, "height": p.Resize.Height, "filter": p.Resize.Filter}
	}
	if p.Crop.Enabled {
		doc["crop"] = map[string]interface{}{"early": p.Crop.Early, "left": p.Crop.Left, "top": p.Crop.Top, "right": p.Crop.Right, "bottom": p.Crop.Bottom}
	}
	if p.Depth.Enabled {
		doc["depth"] = map[string]interface{}{"bits": p.Depth.Bits, "float samples": p.Depth.FloatSamples, "dither": p.Depth.Dither}
	}

	if ui := p.toWireUserInterface(); ui != nil {
		doc["user interface"] = ui
	}

	return doc
}

func (p *Project) toWireUserInterface() map[string]interface{} {
	ui := map[string]interface{}{}

	if p.MicSearchMinimum != 0 {
		ui["mic search minimum"] = p.MicSearchMinimum
	}
	if p.Zoom != 0 {
		ui["zoom"] = p.Zoom
	}

	pg := map[string]interface{}{
		"method":           nameOf(patternGuessingMethodNames[:], int(p.PatternGuessing.Method)),
		"minimum length":   p.PatternGuessing.MinimumLength,
		"use third n match": nameOf(useThirdNMatchNames[:], int(p.PatternGuessing.ThirdNMatch)),
		"decimate":         nameOf(dropDuplicateNames[:], int(p.PatternGuessing.Decimation)),
	}
	patterns := []string{}
	if p.PatternGuessing.UsePatterns&PatternCCCNN != 0 {
		patterns = append(patterns, "cccnn")
	}
	if p.PatternGuessing.UsePatterns&PatternCCNNN != 0 {
		patterns = append(patterns, "ccnnn")
	}
	if p.PatternGuessing.UsePatterns&PatternCCCCC != 0 {
		patterns = append(patterns, "ccccc")
	}
	pg["use patterns"] = patterns

	if len(p.PatternGuessing.Failures) > 0 {
		starts := make([]int, 0, len(p.PatternGuessing.Failures))
		for s := range p.PatternGuessing.Failures {
			starts = append(starts, s)
		}
		sortInts(starts)
		failures := make([]map[string]interface{}, len(starts))
		for i, s := range starts {
			f := p.PatternGuessing.Failures[s]
			failures[i] = map[string]interface{}{"start": f.Start, "reason": nameOf(failureReasonNames[:], int(f.Reason))}
		}
		pg["failures"] = failures
	}
	ui["pattern guessing"] = pg

	if len(p.Bookmarks) > 0 {
		keys := make([]int, 0, len(p.Bookmarks))
		for f := range p.Bookmarks {
			keys = append(keys, f)
		}
		sortInts(keys)
		bookmarks := make([]map[string]interface{}, len(keys))
		for i, f := range keys {
			b := p.Bookmarks[f]
			bookmarks[i] = map[string]interface{}{"frame": b.Frame, "description": b.Description}
		}
		ui["bookmarks"] = bookmarks
	}

	if len(ui) == 0 {
		return nil
	}
	return ui
}

func vfmParametersToWire(v VFMParameters) map[string]interface{} {
	out := map[string]interface{}{}
	putInt := func(k string, p *int) {
		if p != nil {
			out[k] = *p
		}
	}
	putInt("order", v.Order)
	putInt("cthresh", v.Cthresh)
	putInt("mi", v.MI)
	putInt("blockx", v.BlockX)
	putInt("blocky", v.BlockY)
	putInt("y0", v.Y0)
	putInt("y1", v.Y1)
	putInt("micmatch", v.MicMatch)
	if v.Scthresh != nil {
		out["scthresh"] = *v.Scthresh
	}
	if v.Chroma != nil {
		out["chroma"] = *v.Chroma
	}
	if v.MChroma != nil {
		out["mchroma"] = *v.MChroma
	}
	return out
}

func vdecimateParametersToWire(v VDecimateParameters) map[string]interface{} {
	out := map[string]interface{}{}
	if v.BlockX != nil {
		out["blockx"] = *v.BlockX
	}
	if v.BlockY != nil {
		out["blocky"] = *v.BlockY
	}
	if v.Dupthresh != nil {
		out["dupthresh"] = *v.Dupthresh
	}
	if v.Scthresh != nil {
		out["scthresh"] = *v.Scthresh
	}
	if v.Chroma != nil {
		out["chroma"] = *v.Chroma
	}
	return out
}

func matchArrayToWire(m MatchArray) []string {
	out := make([]string, len(m))
	for i, ch := range m {
		out[i] = ch.String()
	}
	return out
}

func sortInts(s []int)       { sort.Ints(s) }
func sortStrings(s []string) { sort.Strings(s) }

// --- reading -------------------------------------------------------------

func reqField(m map[string]interface{}, key string) (interface{}, error) {
	v, ok := m[key]
	if !ok {
		return nil, &ParseError{Message: "missing required key " + key}
	}
	return v, nil
}

func asString(v interface{}, key string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &ParseError{Message: key + " must be a string"}
	}
	return s, nil
}

func asNumber(v interface{}, key string) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, &ParseError{Message: key + " must be a number"}
	}
	return f, nil
}

func asArray(v interface{}, key string) ([]interface{}, error) {
	a, ok := v.([]interface{})
	if !ok {
		return nil, &ParseError{Message: key + " must be an array"}
	}
	return a, nil
}

func asObject(v interface{}, key string) (map[string]interface{}, error) {
	o, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ParseError{Message: key + " must be an object"}
	}
	return o, nil
}

func asIntPair(v interface{}, key string) ([2]int, error) {
	a, err := asArray(v, key)
	if err != nil {
		return [2]int{}, err
	}
	if len(a) != 2 {
		return [2]int{}, &ParseError{Message: key + " must have exactly two elements"}
	}
	x, err := asNumber(a[0], key)
	if err != nil {
		return [2]int{}, err
	}
	y, err := asNumber(a[1], key)
	if err != nil {
		return [2]int{}, err
	}
	return [2]int{int(x), int(y)}, nil
}

// coerceIntField reads an integer-typed vfm/vdecimate parameter. Any JSON
// number is accepted at every format version and truncated to int; a float
// literal such as 1.0 or a non-integral value is not rejected, since the
// decoded value no longer records how the number was written.
func coerceIntField(v interface{}, key string, version int) (int, error) {
	if f, ok := v.(float64); ok {
		return int(f), nil
	}
	return 0, &ParseError{Message: key + " must be a number"}
}

// coerceDoubleField reads a float-typed vfm/vdecimate parameter.
func coerceDoubleField(v interface{}, key string, version int) (float64, error) {
	if f, ok := v.(float64); ok {
		return f, nil
	}
	return 0, &ParseError{Message: key + " must be a number"}
}

// coerceBoolField reads a bool-typed vfm/vdecimate parameter. At version <= 2
// a JSON number is also accepted and coerced (0 -> false, nonzero -> true);
// at version 3 only a JSON boolean literal is accepted.
func coerceBoolField(v interface{}, key string, version int) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if version <= 2 {
		if f, ok := v.(float64); ok {
			return f != 0, nil
		}
	}
	return false, &ParseError{Message: key + " must be a boolean"}
}

func readVFMParameters(m map[string]interface{}, version int) (VFMParameters, error) {
	var out VFMParameters
	intKeys := map[string]**int{
		"order": &out.Order, "cthresh": &out.Cthresh, "mi": &out.MI,
		"blockx": &out.BlockX, "blocky": &out.BlockY, "y0": &out.Y0, "y1": &out.Y1,
		"micmatch": &out.MicMatch,
	}
	for key, dst := range intKeys {
		if raw, ok := m[key]; ok {
			n, err := coerceIntField(raw, key, version)
			if err != nil {
				return out, err
			}
			*dst = &n
		}
	}
	if raw, ok := m["scthresh"]; ok {
		f, err := coerceDoubleField(raw, "scthresh", version)
		if err != nil {
			return out, err
		}
		out.Scthresh = &f
	}
	boolKeys := map[string]**bool{"chroma": &out.Chroma, "mchroma": &out.MChroma}
	for key, dst := range boolKeys {
		if raw, ok := m[key]; ok {
			b, err := coerceBoolField(raw, key, version)
			if err != nil {
				return out, err
			}
			*dst = &b
		}
	}
	return out, nil
}

func readVDecimateParameters(m map[string]interface{}, version int) (VDecimateParameters, error) {
	var out VDecimateParameters
	intKeys := map[string]**int{"blockx": &out.BlockX, "blocky": &out.BlockY}
	for key, dst := range intKeys {
		if raw, ok := m[key]; ok {
			n, err := coerceIntField(raw, key, version)
			if err != nil {
				return out, err
			}
			*dst = &n
		}
	}
	doubleKeys := map[string]**float64{"dupthresh": &out.Dupthresh, "scthresh": &out.Scthresh}
	for key, dst := range doubleKeys {
		if raw, ok := m[key]; ok {
			f, err := coerceDoubleField(raw, key, version)
			if err != nil {
				return out, err
			}
			*dst = &f
		}
	}
	if raw, ok := m["chroma"]; ok {
		b, err := coerceBoolField(raw, "chroma", version)
		if err != nil {
			return out, err
		}
		out.Chroma = &b
	}
	return out, nil
}

func readMatchArray(v interface{}, key string, numFrames int) (MatchArray, error) {
	a, err := asArray(v, key)
	if err != nil {
		return nil, err
	}
	if len(a) != numFrames {
		return nil, &ParseError{Message: key + " must have exactly num_frames_source elements"}
	}
	out := make(MatchArray, len(a))
	for i, elem := range a {
		s, err := asString(elem, key)
		if err != nil {
			return nil, err
		}
		if len(s) != 1 {
			return nil, &ParseError{Message: key + " elements must be single characters"}
		}
		ch := MatchChar(s[0])
		if !ch.IsValid() {
			return nil, &InvalidMatchCharError{Char: s[0]}
		}
		out[i] = ch
	}
	return out, nil
}

func parseWireDocument(m map[string]interface{}) (*Project, error) {
	if _, err := reqField(m, "wobbly version"); err != nil {
		return nil, err
	}

	version := 1
	if raw, ok := m["project format version"]; ok {
		f, err := asNumber(raw, "project format version")
		if err != nil {
			return nil, err
		}
		version = int(f)
	}
	if version < 1 || version > CurrentProjectFormatVersion {
		return nil, &ParseError{Message: "unsupported project format version"}
	}

	inputFileRaw, err := reqField(m, "input file")
	if err != nil {
		return nil, err
	}
	inputFile, err := asString(inputFileRaw, "input file")
	if err != nil {
		return nil, err
	}

	sourceFilterRaw, err := reqField(m, "source filter")
	if err != nil {
		return nil, err
	}
	sourceFilter, err := asString(sourceFilterRaw, "source filter")
	if err != nil {
		return nil, err
	}

	fpsRaw, err := reqField(m, "input frame rate")
	if err != nil {
		return nil, err
	}
	fps, err := asIntPair(fpsRaw, "input frame rate")
	if err != nil {
		return nil, err
	}

	resRaw, err := reqField(m, "input resolution")
	if err != nil {
		return nil, err
	}
	res, err := asIntPair(resRaw, "input resolution")
	if err != nil {
		return nil, err
	}

	trimRaw, err := reqField(m, "trim")
	if err != nil {
		return nil, err
	}
	trimArr, err := asArray(trimRaw, "trim")
	if err != nil {
		return nil, err
	}
	if len(trimArr) == 0 {
		return nil, &ParseError{Message: "trim must have at least one element"}
	}
	trim := make([]FrameRange, len(trimArr))
	for i, t := range trimArr {
		pair, err := asIntPair(t, "trim")
		if err != nil {
			return nil, err
		}
		trim[i] = FrameRange{First: pair[0], Last: pair[1]}
	}

	// num_frames_source is the sum of the trim ranges' lengths, matching the
	// original reader's accumulation over Keys::trim (WobblyProject.cpp
	// readProject), not the wire document's raw highest frame index.
	numFramesSource := 0
	for _, t := range trim {
		numFramesSource += t.Last - t.First + 1
	}

	p := NewProject(inputFile, sourceFilter, fps[0], fps[1], res[0], res[1], trim, numFramesSource, true)

	if raw, ok := m["vfm parameters"]; ok {
		obj, err := asObject(raw, "vfm parameters")
		if err != nil {
			return nil, err
		}
		vfm, err := readVFMParameters(obj, version)
		if err != nil {
			return nil, err
		}
		p.VFMParameters = vfm
	}
	if raw, ok := m["vdecimate parameters"]; ok {
		obj, err := asObject(raw, "vdecimate parameters")
		if err != nil {
			return nil, err
		}
		vd, err := readVDecimateParameters(obj, version)
		if err != nil {
			return nil, err
		}
		p.VDecimateParameters = vd
	}

	if raw, ok := m["mics"]; ok {
		a, err := asArray(raw, "mics")
		if err != nil {
			return nil, err
		}
		if len(a) != numFramesSource {
			return nil, &ParseError{Message: "mics must have exactly num_frames_source elements"}
		}
		mics := make(MicsArray, len(a))
		for i, row := range a {
			ra, err := asArray(row, "mics")
			if err != nil {
				return nil, err
			}
			if len(ra) != 5 {
				return nil, &ParseError{Message: "each mics row must have five elements"}
			}
			for j, v := range ra {
				f, err := asNumber(v, "mics")
				if err != nil {
					return nil, err
				}
				mics[i][j] = int16(f)
			}
		}
		p.Mics = mics
	}

	readDMetrics := func(key string) (DMetricsArray, error) {
		raw, ok := m[key]
		if !ok {
			return nil, nil
		}
		a, err := asArray(raw, key)
		if err != nil {
			return nil, err
		}
		if len(a) != numFramesSource {
			return nil, &ParseError{Message: key + " must have exactly num_frames_source elements"}
		}
		out := make(DMetricsArray, len(a))
		for i, row := range a {
			ra, err := asArray(row, key)
			if err != nil {
				return nil, err
			}
			if len(ra) != 2 {
				return nil, &ParseError{Message: "each " + key + " row must have two elements"}
			}
			for j, v := range ra {
				f, err := asNumber(v, key)
				if err != nil {
					return nil, err
				}
				out[i][j] = int32(f)
			}
		}
		return out, nil
	}
	if mm, err := readDMetrics("mmetrics"); err != nil {
		return nil, err
	} else if mm != nil {
		p.MMetrics = mm
	}
	if vm, err := readDMetrics("vmetrics"); err != nil {
		return nil, err
	} else if vm != nil {
		p.VMetrics = vm
	}

	if raw, ok := m["matches"]; ok {
		matches, err := readMatchArray(raw, "matches", numFramesSource)
		if err != nil {
			return nil, err
		}
		p.Matches = matches
	}
	if raw, ok := m["original matches"]; ok {
		orig, err := readMatchArray(raw, "original matches", numFramesSource)
		if err != nil {
			return nil, err
		}
		p.OriginalMatches = orig
	}

	if raw, ok := m["combed frames"]; ok {
		a, err := asArray(raw, "combed frames")
		if err != nil {
			return nil, err
		}
		for _, v := range a {
			f, err := asNumber(v, "combed frames")
			if err != nil {
				return nil, err
			}
			p.CombedFrames[int(f)] = true
		}
	}

	if raw, ok := m["decimated frames"]; ok {
		a, err := asArray(raw, "decimated frames")
		if err != nil {
			return nil, err
		}
		for _, v := range a {
			f, err := asNumber(v, "decimated frames")
			if err != nil {
				return nil, err
			}
			frame := int(f)
			if frame < 0 || frame >= numFramesSource {
				return nil, &ParseError{Message: "decimated frames entry out of range"}
			}
			if err := p.AddDecimatedFrame(frame); err != nil {
				return nil, err
			}
		}
	}

	if raw, ok := m["decimate metrics"]; ok {
		a, err := asArray(raw, "decimate metrics")
		if err != nil {
			return nil, err
		}
		if len(a) != numFramesSource {
			return nil, &ParseError{Message: "decimate metrics must have exactly num_frames_source elements"}
		}
		vals := make(DecimateMetricArray, len(a))
		for i, v := range a {
			f, err := asNumber(v, "decimate metrics")
			if err != nil {
				return nil, err
			}
			vals[i] = int32(f)
		}
		p.DecimateMetrics = vals
	}

	if raw, ok := m["sections"]; ok {
		a, err := asArray(raw, "sections")
		if err != nil {
			return nil, err
		}
		if len(a) > 0 {
			p.sections = make(map[int]Section)
			p.sectionKeys = nil
		}
		for _, v := range a {
			obj, err := asObject(v, "sections")
			if err != nil {
				return nil, err
			}
			startRaw, err := reqField(obj, "start")
			if err != nil {
				return nil, err
			}
			startF, err := asNumber(startRaw, "start")
			if err != nil {
				return nil, err
			}
			var presets []string
			if pr, ok := obj["presets"]; ok {
				pa, err := asArray(pr, "presets")
				if err != nil {
					return nil, err
				}
				for _, pv := range pa {
					ps, err := asString(pv, "presets")
					if err != nil {
						return nil, err
					}
					presets = append(presets, ps)
				}
			}
			p.addSection(Section{Start: int(startF), Presets: presets})
		}
	}
	if _, ok := p.sections[0]; !ok {
		p.addSection(Section{Start: 0})
	}

	if raw, ok := m["interlaced fades"]; ok {
		a, err := asArray(raw, "interlaced fades")
		if err != nil {
			return nil, err
		}
		for _, v := range a {
			obj, err := asObject(v, "interlaced fades")
			if err != nil {
				return nil, err
			}
			frameRaw, err := reqField(obj, "frame")
			if err != nil {
				return nil, err
			}
			frameF, err := asNumber(frameRaw, "frame")
			if err != nil {
				return nil, err
			}
			diffF := 0.0
			if dv, ok := obj["field difference"]; ok {
				diffF, err = asNumber(dv, "field difference")
				if err != nil {
					return nil, err
				}
			}
			p.InterlacedFades[int(frameF)] = InterlacedFade{Frame: int(frameF), FieldDifference: diffF}
		}
	}

	if raw, ok := m["presets"]; ok {
		a, err := asArray(raw, "presets")
		if err != nil {
			return nil, err
		}
		for _, v := range a {
			obj, err := asObject(v, "presets")
			if err != nil {
				return nil, err
			}
			nameRaw, err := reqField(obj, "name")
			if err != nil {
				return nil, err
			}
			name, err := asString(nameRaw, "name")
			if err != nil {
				return nil, err
			}
			contents := ""
			if cv, ok := obj["contents"]; ok {
				contents, err = asString(cv, "contents")
				if err != nil {
					return nil, err
				}
			}
			p.Presets[name] = Preset{Name: name, Contents: contents}
		}
	}

	if raw, ok := m["frozen frames"]; ok {
		a, err := asArray(raw, "frozen frames")
		if err != nil {
			return nil, err
		}
		for _, v := range a {
			obj, err := asObject(v, "frozen frames")
			if err != nil {
				return nil, err
			}
			first, err := reqNumberField(obj, "first")
			if err != nil {
				return nil, err
			}
			last, err := reqNumberField(obj, "last")
			if err != nil {
				return nil, err
			}
			replacement, err := reqNumberField(obj, "replacement")
			if err != nil {
				return nil, err
			}
			p.FrozenFrames.Insert(FreezeFrame{First: int(first), Last: int(last), Replacement: int(replacement)})
		}
	}

	if raw, ok := m["custom lists"]; ok {
		a, err := asArray(raw, "custom lists")
		if err != nil {
			return nil, err
		}
		for _, v := range a {
			obj, err := asObject(v, "custom lists")
			if err != nil {
				return nil, err
			}
			nameRaw, err := reqField(obj, "name")
			if err != nil {
				return nil, err
			}
			name, err := asString(nameRaw, "name")
			if err != nil {
				return nil, err
			}
			preset := ""
			if pv, ok := obj["preset"]; ok {
				preset, err = asString(pv, "preset")
				if err != nil {
					return nil, err
				}
			}
			posRaw, err := reqField(obj, "position")
			if err != nil {
				return nil, err
			}
			position, err := readPosition(posRaw, version)
			if err != nil {
				return nil, err
			}
			cl := NewCustomList(name, preset, position)
			if fr, ok := obj["frames"]; ok {
				fa, err := asArray(fr, "frames")
				if err != nil {
					return nil, err
				}
				for _, fv := range fa {
					pair, err := asIntPair(fv, "frames")
					if err != nil {
						return nil, err
					}
					cl.Ranges.Insert(FrameRange{First: pair[0], Last: pair[1]})
				}
			}
			p.CustomLists = append(p.CustomLists, cl)
		}
	}

	if raw, ok := m["resize"]; ok {
		obj, err := asObject(raw, "resize")
		if err != nil {
			return nil, err
		}
		width, err := reqNumberField(obj, "width")
		if err != nil {
			return nil, err
		}
		height, err := reqNumberField(obj, "height")
		if err != nil {
			return nil, err
		}
		filter := ""
		if fv, ok := obj["filter"]; ok {
			filter, err = asString(fv, "filter")
			if err != nil {
				return nil, err
			}
		}
		p.Resize = Resize{Enabled: true, Width: int(width), Height: int(height), Filter: filter}
	}

	if raw, ok := m["crop"]; ok {
		obj, err := asObject(raw, "crop")
		if err != nil {
			return nil, err
		}
		left, err := reqNumberField(obj, "left")
		if err != nil {
			return nil, err
		}
		top, err := reqNumberField(obj, "top")
		if err != nil {
			return nil, err
		}
		right, err := reqNumberField(obj, "right")
		if err != nil {
			return nil, err
		}
		bottom, err := reqNumberField(obj, "bottom")
		if err != nil {
			return nil, err
		}
		early := false
		if ev, ok := obj["early"]; ok {
			b, ok := ev.(bool)
			if !ok {
				return nil, &ParseError{Message: "crop.early must be a boolean"}
			}
			early = b
		}
		p.Crop = Crop{Enabled: true, Early: early, Left: int(left), Top: int(top), Right: int(right), Bottom: int(bottom)}
	}

	if raw, ok := m["depth"]; ok {
		obj, err := asObject(raw, "depth")
		if err != nil {
			return nil, err
		}
		bits, err := reqNumberField(obj, "bits")
		if err != nil {
			return nil, err
		}
		float := false
		if fv, ok := obj["float samples"]; ok {
			b, ok := fv.(bool)
			if !ok {
				return nil, &ParseError{Message: "depth.float samples must be a boolean"}
			}
			float = b
		}
		dither := ""
		if dv, ok := obj["dither"]; ok {
			dither, err = asString(dv, "dither")
			if err != nil {
				return nil, err
			}
		}
		p.Depth = Depth{Enabled: true, Bits: int(bits), FloatSamples: float, Dither: dither}
	}

	if raw, ok := m["user interface"]; ok {
		obj, err := asObject(raw, "user interface")
		if err != nil {
			return nil, err
		}
		if err := parseUserInterface(p, obj); err != nil {
			return nil, err
		}
	}

	p.UpdateOrphanFields()
	p.Modified = false
	return p, nil
}

func reqNumberField(m map[string]interface{}, key string) (float64, error) {
	v, err := reqField(m, key)
	if err != nil {
		return 0, err
	}
	return asNumber(v, key)
}

// readPosition decodes a custom list's pipeline position: an integer index
// in format-version-1 documents, a string enum at version >= 2.
func readPosition(v interface{}, version int) (PositionInFilterChain, error) {
	if version <= 1 {
		f, ok := v.(float64)
		if !ok {
			return 0, &ParseError{Message: "position must be a number in format version 1"}
		}
		i := int(f)
		if i < 0 || i > int(PostDecimate) {
			return 0, &ParseError{Message: "position out of range"}
		}
		return PositionInFilterChain(i), nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, &ParseError{Message: "position must be a string"}
	}
	i, ok := indexOf(positionNames[:], s)
	if !ok {
		return 0, &ParseError{Message: "unrecognized position " + s}
	}
	return PositionInFilterChain(i), nil
}

func parseUserInterface(p *Project, obj map[string]interface{}) error {
	if v, ok := obj["mic search minimum"]; ok {
		f, err := asNumber(v, "mic search minimum")
		if err != nil {
			return err
		}
		p.MicSearchMinimum = int(f)
	}
	if v, ok := obj["zoom"]; ok {
		f, err := asNumber(v, "zoom")
		if err != nil {
			return err
		}
		p.Zoom = f
	}
	if v, ok := obj["pattern guessing"]; ok {
		pg, err := asObject(v, "pattern guessing")
		if err != nil {
			return err
		}
		if mv, ok := pg["method"]; ok {
			s, err := asString(mv, "method")
			if err != nil {
				return err
			}
			i, ok := indexOf(patternGuessingMethodNames[:], s)
			if !ok {
				return &ParseError{Message: "unrecognized pattern guessing method " + s}
			}
			p.PatternGuessing.Method = PatternGuessingMethod(i)
		}
		if mv, ok := pg["minimum length"]; ok {
			f, err := asNumber(mv, "minimum length")
			if err != nil {
				return err
			}
			p.PatternGuessing.MinimumLength = int(f)
		}
		if mv, ok := pg["use third n match"]; ok {
			s, err := asString(mv, "use third n match")
			if err != nil {
				return err
			}
			i, ok := indexOf(useThirdNMatchNames[:], s)
			if !ok {
				return &ParseError{Message: "unrecognized use third n match " + s}
			}
			p.PatternGuessing.ThirdNMatch = UseThirdNMatch(i)
		}
		if mv, ok := pg["decimate"]; ok {
			s, err := asString(mv, "decimate")
			if err != nil {
				return err
			}
			i, ok := indexOf(dropDuplicateNames[:], s)
			if !ok {
				return &ParseError{Message: "unrecognized decimate policy " + s}
			}
			p.PatternGuessing.Decimation = DropDuplicate(i)
		}
		if mv, ok := pg["use patterns"]; ok {
			a, err := asArray(mv, "use patterns")
			if err != nil {
				return err
			}
			var mask Patterns
			for _, pv := range a {
				s, err := asString(pv, "use patterns")
				if err != nil {
					return err
				}
				switch s {
				case "cccnn":
					mask |= PatternCCCNN
				case "ccnnn":
					mask |= PatternCCNNN
				case "ccccc":
					mask |= PatternCCCCC
				default:
					return &ParseError{Message: "unrecognized pattern " + s}
				}
			}
			p.PatternGuessing.UsePatterns = mask
		}
		if mv, ok := pg["failures"]; ok {
			a, err := asArray(mv, "failures")
			if err != nil {
				return err
			}
			for _, fv := range a {
				fo, err := asObject(fv, "failures")
				if err != nil {
					return err
				}
				startF, err := reqNumberField(fo, "start")
				if err != nil {
					return err
				}
				reasonRaw, err := reqField(fo, "reason")
				if err != nil {
					return err
				}
				reasonS, err := asString(reasonRaw, "reason")
				if err != nil {
					return err
				}
				i, ok := indexOf(failureReasonNames[:], reasonS)
				if !ok {
					return &ParseError{Message: "unrecognized failure reason " + reasonS}
				}
				p.PatternGuessing.Failures[int(startF)] = FailedPatternGuessing{Start: int(startF), Reason: PatternGuessingFailureReason(i)}
			}
		}
	}
	if v, ok := obj["bookmarks"]; ok {
		a, err := asArray(v, "bookmarks")
		if err != nil {
			return err
		}
		for _, bv := range a {
			bo, err := asObject(bv, "bookmarks")
			if err != nil {
				return err
			}
			frameF, err := reqNumberField(bo, "frame")
			if err != nil {
				return err
			}
			desc := ""
			if dv, ok := bo["description"]; ok {
				desc, err = asString(dv, "description")
				if err != nil {
					return err
				}
			}
			p.Bookmarks[int(frameF)] = Bookmark{Frame: int(frameF), Description: desc}
		}
	}
	return nil
}
