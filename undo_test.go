// SPDX-License-Identifier: Apache-2.0

package wobbly

import "testing"

func TestUndoRequiresBaseline(t *testing.T) {
	p := newTestProject(10)
	if p.CanUndo() {
		t.Error("CanUndo should be false before any commit")
	}
	if err := p.Undo(); err != ErrNothingToUndo {
		t.Errorf("Undo on an empty stack = %v, want ErrNothingToUndo", err)
	}

	p.Commit()
	if p.CanUndo() {
		t.Error("CanUndo should be false with only the baseline committed")
	}
	if err := p.Undo(); err != ErrNothingToUndo {
		t.Errorf("Undo with only a baseline = %v, want ErrNothingToUndo", err)
	}
}

func TestCommitEditCommitUndoUndoRedo(t *testing.T) {
	p := newTestProject(10)
	p.Commit() // baseline

	if err := p.SetMatch(3, MatchN); err != nil {
		t.Fatal(err)
	}
	if err := p.AddPreset("a", "x"); err != nil {
		t.Fatal(err)
	}
	p.Commit()

	want := p.GetMatch(3)
	if want != MatchN {
		t.Fatalf("setup: GetMatch(3) = %q, want n", want)
	}

	if !p.CanUndo() {
		t.Fatal("CanUndo should be true after baseline + one edit commit")
	}
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(3); got != MatchC {
		t.Errorf("after Undo, GetMatch(3) = %q, want c (pre-edit)", got)
	}
	if p.PresetExists("a") {
		t.Error("after Undo, preset 'a' should not exist")
	}

	// baseline only remains; a second Undo is a no-op.
	if err := p.Undo(); err != ErrNothingToUndo {
		t.Errorf("second Undo = %v, want ErrNothingToUndo", err)
	}

	if err := p.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := p.GetMatch(3); got != MatchN {
		t.Errorf("after Redo, GetMatch(3) = %q, want n", got)
	}
	if !p.PresetExists("a") {
		t.Error("after Redo, preset 'a' should exist again")
	}

	if err := p.Redo(); err != ErrNothingToRedo {
		t.Errorf("extra Redo = %v, want ErrNothingToRedo", err)
	}
}

func TestUndoDoesNotAliasLiveState(t *testing.T) {
	p := newTestProject(10)
	p.Commit() // baseline

	if err := p.AddPreset("a", "x"); err != nil {
		t.Fatal(err)
	}
	p.Commit()

	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}

	// Mutating the live project after Undo must not corrupt the redo
	// entry that still holds the pre-undo preset map.
	if err := p.AddPreset("b", "y"); err != nil {
		t.Fatal(err)
	}

	if err := p.Redo(); err != nil {
		t.Fatal(err)
	}
	if p.PresetExists("b") {
		t.Error("redoing should restore the committed state, not the discarded live edit")
	}
	if !p.PresetExists("a") {
		t.Error("redoing should bring back preset 'a'")
	}
}

func TestUndoRedoRoundTripMatchesCommittedState(t *testing.T) {
	p := newTestProject(15)
	p.Commit()

	if err := p.AddSection(5); err != nil {
		t.Fatal(err)
	}
	if err := p.AddDecimatedFrame(6); err != nil {
		t.Fatal(err)
	}
	p.Commit()

	wantFrames := p.numFramesDecimated
	wantSections := len(p.Sections())

	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := p.Undo(); err != ErrNothingToUndo {
		t.Fatalf("Undo past baseline = %v", err)
	}
	if err := p.Redo(); err != nil {
		t.Fatal(err)
	}

	if p.numFramesDecimated != wantFrames {
		t.Errorf("numFramesDecimated after undo;redo = %d, want %d", p.numFramesDecimated, wantFrames)
	}
	if len(p.Sections()) != wantSections {
		t.Errorf("len(Sections()) after undo;redo = %d, want %d", len(p.Sections()), wantSections)
	}
}

func TestSetUndoStepsEvictsOldest(t *testing.T) {
	p := newTestProject(10)
	p.SetUndoSteps(2)

	p.Commit()
	p.Commit()
	p.Commit()

	if got := len(p.undoStack); got != 2 {
		t.Errorf("len(undoStack) = %d, want 2 after exceeding UndoSteps", got)
	}
}
