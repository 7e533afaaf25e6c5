// SPDX-License-Identifier: Apache-2.0

package wobbly

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerateFinalScriptBasicPipeline(t *testing.T) {
	p := newTestProject(20)

	script, err := p.GenerateFinalScript(false, DecimationAuto)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"import vapoursynth as vs",
		"c = vs.core",
		"src = c.lsmas.LWLibavSource(r'clip.mkv')",
		"src = c.std.Splice(clips=[src[0:20],])",
		"src.set_output()",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q\n--- full script ---\n%s", want, script)
		}
	}
}

func TestGenerateFinalScriptMissingPresetOnCustomList(t *testing.T) {
	p := newTestProject(20)
	if err := p.AddCustomList("cl1", "", PostSource); err != nil {
		t.Fatal(err)
	}
	if err := p.AddCustomListRange("cl1", 0, 5); err != nil {
		t.Fatal(err)
	}

	_, err := p.GenerateFinalScript(false, DecimationAuto)
	if err == nil {
		t.Fatal("expected MissingPresetError for a custom list with no preset")
	}
	if _, ok := err.(*MissingPresetError); !ok {
		t.Errorf("err = %v (%T), want *MissingPresetError", err, err)
	}
}

func TestScriptPresetsSkipsUnused(t *testing.T) {
	p := newTestProject(20)
	if err := p.AddPreset("used", "clip = core.std.Invert(clip)"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddPreset("unused", "clip = core.std.Invert(clip)"); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendSectionPreset(0, "used"); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := p.scriptPresets(&b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "def preset_used(clip):") {
		t.Error("expected preset_used to be emitted")
	}
	if strings.Contains(out, "def preset_unused(clip):") {
		t.Error("unused preset should not be emitted")
	}
}

func TestScriptSectionsMergesIdenticalPresetStacks(t *testing.T) {
	p := newTestProject(30)
	if err := p.AddPreset("a", ""); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSection(10); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendSectionPreset(0, "a"); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendSectionPreset(10, "a"); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	p.scriptSections(&b)
	out := b.String()

	if strings.Count(out, "= src") != 1 {
		t.Errorf("sections sharing a preset stack should merge into one slice, got:\n%s", out)
	}
}

func TestScriptFieldHintUsesMatchesString(t *testing.T) {
	p := newTestProject(5)
	if err := p.SetMatch(0, MatchN); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	p.scriptFieldHint(&b)
	out := b.String()
	if !strings.Contains(out, "c.fh.FieldHint(clip=src, tff=1, matches='") {
		t.Errorf("unexpected field hint line: %q", out)
	}
}

func TestScriptDecimationDeleteFramesListsDroppedFrames(t *testing.T) {
	p := newTestProject(10)
	if err := p.AddDecimatedFrame(2); err != nil {
		t.Fatal(err)
	}
	if err := p.AddDecimatedFrame(7); err != nil {
		t.Fatal(err)
	}

	out := p.scriptDecimationDeleteFrames()
	if !strings.Contains(out, "frames=[2,7,]") {
		t.Errorf("scriptDecimationDeleteFrames() = %q, want frames=[2,7,]", out)
	}
}

func TestScriptDecimationAutoPicksShorterForm(t *testing.T) {
	p := newTestProject(10)
	if err := p.AddDecimatedFrame(2); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	p.scriptDecimation(&b, DecimationAuto)
	deleteForm := p.scriptDecimationDeleteFrames()
	selectForm := p.scriptDecimationSelectEvery()

	got := b.String()
	if len(deleteForm) < len(selectForm) {
		if got != deleteForm {
			t.Error("DecimationAuto should have picked the DeleteFrames form")
		}
	} else {
		if got != selectForm {
			t.Error("DecimationAuto should have picked the SelectEvery form")
		}
	}
}

func TestGenerateTimecodesV1EmitsRangeForUndecimatedFootage(t *testing.T) {
	// With nothing decimated yet, the whole clip still runs at the
	// interlaced 30000/1001 rate, which differs from the native
	// 24000/1001 rate GenerateTimecodesV1 assumes, so it must emit one
	// range covering every frame.
	p := newTestProject(10)
	out := p.GenerateTimecodesV1()
	if !strings.HasPrefix(out, "# timecode format v1\n") {
		t.Errorf("GenerateTimecodesV1() missing header: %q", out)
	}
	want := fmt.Sprintf("0,9,%.12f\n", 30000.0/1001.0)
	if !strings.Contains(out, want) {
		t.Errorf("GenerateTimecodesV1() = %q, want a line %q", out, want)
	}
}

func TestGenerateTimecodesV1SkipsStandardPulldownCycle(t *testing.T) {
	// Dropping exactly one frame per cycle reproduces the native
	// 24000/1001 rate, so that range is omitted; the untouched tail
	// (no frames dropped, 30000/1001) still gets a line.
	p := newTestProject(10)
	if err := p.AddDecimatedFrame(1); err != nil {
		t.Fatal(err)
	}
	out := p.GenerateTimecodesV1()

	start := p.FrameNumberAfterDecimation(5)
	end := p.FrameNumberAfterDecimation(10) - 1
	want := fmt.Sprintf("%d,%d,%.12f\n", start, end, 30000.0/1001.0)
	if !strings.Contains(out, want) {
		t.Errorf("GenerateTimecodesV1() = %q, want a line %q for the untouched tail", out, want)
	}
	if strings.Contains(out, "\n0,") {
		t.Error("the standard one-drop-per-cycle range starting at frame 0 should not appear as a rate override")
	}
}

func TestGenerateKeyframesV1ListsSectionStarts(t *testing.T) {
	p := newTestProject(30)
	if err := p.AddSection(10); err != nil {
		t.Fatal(err)
	}
	out := p.GenerateKeyframesV1()
	if !strings.Contains(out, "# keyframe format v1\nfps 0\n0\n10\n") {
		t.Errorf("GenerateKeyframesV1() = %q", out)
	}
}
