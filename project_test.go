// SPDX-License-Identifier: Apache-2.0

package wobbly

import "testing"

func newTestProject(numFrames int) *Project {
	trim := []FrameRange{{First: 0, Last: numFrames - 1}}
	return NewProject("clip.mkv", "lsmas.LWLibavSource", 30000, 1001, 720, 480, trim, numFrames, true)
}

func TestNewProjectHasSectionZero(t *testing.T) {
	p := newTestProject(100)
	sections := p.Sections()
	if len(sections) != 1 || sections[0].Start != 0 {
		t.Errorf("Sections() = %+v, want a single section starting at 0", sections)
	}
}

func TestSetMatchBoundaryCoercion(t *testing.T) {
	p := newTestProject(10)

	if err := p.SetMatch(0, MatchB); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(0); got != MatchN {
		t.Errorf("frame 0 coerced 'b' -> %q, want 'n'", got)
	}

	if err := p.SetMatch(0, MatchP); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(0); got != MatchU {
		t.Errorf("frame 0 coerced 'p' -> %q, want 'u'", got)
	}

	last := 9
	if err := p.SetMatch(last, MatchN); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(last); got != MatchB {
		t.Errorf("last frame coerced 'n' -> %q, want 'b'", got)
	}

	if err := p.SetMatch(last, MatchU); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(last); got != MatchP {
		t.Errorf("last frame coerced 'u' -> %q, want 'p'", got)
	}
}

func TestSetMatchOutOfRange(t *testing.T) {
	p := newTestProject(10)
	if err := p.SetMatch(10, MatchC); err == nil {
		t.Error("SetMatch at numFramesSource should fail")
	}
	if err := p.SetMatch(-1, MatchC); err == nil {
		t.Error("SetMatch at a negative frame should fail")
	}
}

func TestSetMatchInvalidChar(t *testing.T) {
	p := newTestProject(10)
	if err := p.SetMatch(5, 'x'); err == nil {
		t.Error("SetMatch with an invalid character should fail")
	}
}

func TestCycleMatchCNBSkipsForbiddenAtBoundary(t *testing.T) {
	p := newTestProject(10)
	// frame 0 forbids b; cycling from n should skip straight back to c.
	if err := p.SetMatch(0, MatchN); err != nil {
		t.Fatal(err)
	}
	if err := p.CycleMatchCNB(0); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(0); got != MatchC {
		t.Errorf("CycleMatchCNB at frame 0 from 'n' = %q, want 'c' (skips forbidden 'b')", got)
	}
}

func TestGetMatchFallsBackToOriginal(t *testing.T) {
	p := newTestProject(5)
	if err := p.SetOriginalMatch(2, MatchB); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(2); got != MatchB {
		t.Errorf("GetMatch should fall back to OriginalMatches when Matches is unallocated, got %q", got)
	}
}

func TestPresetCRUD(t *testing.T) {
	p := newTestProject(10)
	if err := p.AddPreset("sharpen", "core.std.Sharpen(clip)"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddPreset("sharpen", "x"); err == nil {
		t.Error("AddPreset with a duplicate name should fail")
	}
	if err := p.AddPreset("1bad", "x"); err == nil {
		t.Error("AddPreset with an invalid Python identifier should fail")
	}

	contents, err := p.GetPresetContents("sharpen")
	if err != nil || contents != "core.std.Sharpen(clip)" {
		t.Errorf("GetPresetContents = (%q, %v)", contents, err)
	}

	if err := p.RenamePreset("sharpen", "blur"); err != nil {
		t.Fatal(err)
	}
	if p.PresetExists("sharpen") {
		t.Error("old preset name should no longer exist after rename")
	}

	if err := p.DeletePreset("blur"); err != nil {
		t.Fatal(err)
	}
	if p.PresetExists("blur") {
		t.Error("preset should not exist after delete")
	}
}

func TestRenamePresetRewritesReferences(t *testing.T) {
	p := newTestProject(20)
	if err := p.AddPreset("a", ""); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendSectionPreset(0, "a"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddCustomList("cl1", "a", PostSource); err != nil {
		t.Fatal(err)
	}

	if err := p.RenamePreset("a", "b"); err != nil {
		t.Fatal(err)
	}

	sec, _ := p.FindSection(0)
	if len(sec.Presets) != 1 || sec.Presets[0] != "b" {
		t.Errorf("section presets after rename = %v, want [b]", sec.Presets)
	}
	if p.CustomLists[0].Preset != "b" {
		t.Errorf("custom list preset after rename = %q, want b", p.CustomLists[0].Preset)
	}
}

func TestDeletePresetClearsReferences(t *testing.T) {
	p := newTestProject(20)
	if err := p.AddPreset("a", ""); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendSectionPreset(0, "a"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddCustomList("cl1", "a", PostSource); err != nil {
		t.Fatal(err)
	}
	if err := p.DeletePreset("a"); err != nil {
		t.Fatal(err)
	}
	sec, _ := p.FindSection(0)
	if len(sec.Presets) != 0 {
		t.Errorf("section presets after delete = %v, want empty", sec.Presets)
	}
	if p.CustomLists[0].Preset != "" {
		t.Errorf("custom list preset after delete = %q, want empty", p.CustomLists[0].Preset)
	}
}

func TestSectionsAndOrphanFields(t *testing.T) {
	p := newTestProject(30)
	if err := p.AddSection(10); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSection(20); err != nil {
		t.Fatal(err)
	}

	end, err := p.GetSectionEnd(10)
	if err != nil || end != 20 {
		t.Errorf("GetSectionEnd(10) = (%d, %v), want (20, nil)", end, err)
	}

	if err := p.SetMatch(9, MatchN); err != nil {
		t.Fatal(err)
	}
	if err := p.SetMatch(10, MatchB); err != nil {
		t.Fatal(err)
	}
	p.UpdateOrphanFields()
	orphans := p.OrphanFields()
	if orphans[9] != MatchN {
		t.Errorf("frame 9 (last of its section, match n) should be an orphan, got %v", orphans)
	}
	if orphans[10] != MatchB {
		t.Errorf("frame 10 (first of its section, match b) should be an orphan, got %v", orphans)
	}
}

func TestDeleteSectionZeroFails(t *testing.T) {
	p := newTestProject(10)
	if err := p.DeleteSection(0); err == nil {
		t.Error("deleting the section at frame 0 should fail")
	}
}

func TestFreezeFrameOverlapRejected(t *testing.T) {
	p := newTestProject(20)
	if err := p.AddFreezeFrame(0, 5, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.AddFreezeFrame(3, 8, 0); err == nil {
		t.Error("overlapping freeze-frame ranges should be rejected")
	}
}

func TestImportFromOtherProjectRenamesOnCollision(t *testing.T) {
	a := newTestProject(10)
	b := newTestProject(10)
	if err := a.AddPreset("x", "1"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddPreset("x", "2"); err != nil {
		t.Fatal(err)
	}

	if err := a.ImportFromOtherProject(b, ImportedThings{Presets: true}); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Presets["x_imported"]; !ok {
		t.Errorf("expected colliding preset to be imported as x_imported, got %v", a.Presets)
	}
}
