// SPDX-License-Identifier: Apache-2.0

package wobbly

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
)

func minimalWireDoc(version int) map[string]interface{} {
	return map[string]interface{}{
		"wobbly version":         1,
		"project format version": version,
		"input file":             "clip.mkv",
		"source filter":          "lsmas.LWLibavSource",
		"input frame rate":       []interface{}{30000, 1001},
		"input resolution":       []interface{}{720, 480},
		"trim":                   []interface{}{[]interface{}{0, 9}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	p := newTestProject(20)
	if err := p.SetMatch(3, MatchN); err != nil {
		t.Fatal(err)
	}
	if err := p.AddPreset("a", "clip = core.std.Invert(clip)"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSection(10); err != nil {
		t.Fatal(err)
	}
	if err := p.AddDecimatedFrame(2); err != nil {
		t.Fatal(err)
	}
	if err := p.AddFreezeFrame(5, 7, 5); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.InputFile != p.InputFile || got.SourceFilter != p.SourceFilter {
		t.Errorf("round trip changed input file/source filter: %+v", got)
	}
	if got.GetMatch(3) != MatchN {
		t.Errorf("round trip lost match at frame 3: %q", got.GetMatch(3))
	}
	if !got.PresetExists("a") {
		t.Error("round trip lost preset 'a'")
	}
	if _, err := got.GetSectionEnd(10); err != nil {
		t.Errorf("round trip lost the section starting at frame 10: %v", err)
	}
	if !got.IsDecimatedFrame(2) {
		t.Error("round trip lost decimated frame 2")
	}
}

func TestReadRejectsMissingRequiredField(t *testing.T) {
	doc := minimalWireDoc(CurrentProjectFormatVersion)
	delete(doc, "source filter")

	data, err := sonic.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Fatal("expected a ParseError for a document missing 'source filter'")
	}
}

func TestReadV2CoercesNumericBool(t *testing.T) {
	doc := minimalWireDoc(2)
	doc["vfm parameters"] = map[string]interface{}{
		"order":  1.0,
		"chroma": 0.0,
	}

	data, err := sonic.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if p.VFMParameters.Order == nil || *p.VFMParameters.Order != 1 {
		t.Errorf("vfm order = %v, want 1", p.VFMParameters.Order)
	}
	if p.VFMParameters.Chroma == nil || *p.VFMParameters.Chroma != false {
		t.Errorf("vfm chroma = %v, want false", p.VFMParameters.Chroma)
	}
}

func TestReadV3RejectsNonBooleanChroma(t *testing.T) {
	doc := minimalWireDoc(3)
	doc["vfm parameters"] = map[string]interface{}{
		"chroma": 0.0,
	}

	data, err := sonic.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Fatal("a v3 document's 'chroma' must be a JSON boolean, not a number")
	} else if _, ok := err.(*ParseError); !ok {
		t.Errorf("err = %v (%T), want *ParseError", err, err)
	}
}

func TestReadUnsupportedVersionRejected(t *testing.T) {
	doc := minimalWireDoc(CurrentProjectFormatVersion + 1)
	data, err := sonic.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Fatal("expected a ParseError for an unsupported format version")
	}
}
