package hierarchy

import (
	"testing"

	"github.com/lixenwraith/kinetext/lifecycle"
)

func phraseRange() lifecycle.TimeRange {
	return lifecycle.TimeRange{StartMs: 1000, EndMs: 2000, HeadMs: 200, TailMs: 300}
}

func TestBuildLevels(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "hello brave world", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	phrase, ok := tree.Node("p0")
	if !ok || phrase.Level != LevelPhrase {
		t.Fatalf("phrase node missing or mis-levelled: %+v", phrase)
	}
	if len(phrase.Children) != 3 {
		t.Fatalf("expected 3 words, got %d", len(phrase.Children))
	}

	word, ok := tree.Node("p0/w1")
	if !ok || word.Level != LevelWord || word.Text != "brave" {
		t.Fatalf("word node wrong: %+v", word)
	}
	if word.ParentID != "p0" {
		t.Errorf("word parent = %q, want p0", word.ParentID)
	}
	if len(word.Children) != 5 {
		t.Errorf("expected 5 characters in %q, got %d", word.Text, len(word.Children))
	}

	char, ok := tree.Node("p0/w1/c0")
	if !ok || char.Level != LevelCharacter || char.Text != "b" {
		t.Fatalf("character node wrong: %+v", char)
	}
	if char.ParentID != "p0/w1" {
		t.Errorf("character parent = %q, want p0/w1", char.ParentID)
	}
}

func TestLevelInvariantEnforced(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "hi", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Character attached directly to a phrase must be rejected
	err := tree.insert(Node{ID: "bad", Level: LevelCharacter, ParentID: "p0", Text: "x"})
	if err == nil {
		t.Error("character under phrase should be rejected")
	}

	// Word attached to a word must be rejected
	err = tree.insert(Node{ID: "bad2", Level: LevelWord, ParentID: "p0/w0", Text: "x"})
	if err == nil {
		t.Error("word under word should be rejected")
	}

	// Phrase with a parent must be rejected
	err = tree.insert(Node{ID: "bad3", Level: LevelPhrase, ParentID: "p0", Text: "x"})
	if err == nil {
		t.Error("phrase with parent should be rejected")
	}
}

func TestWalkParentBeforeChild(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "ab cd", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	seen := make(map[string]bool)
	tree.Walk("p0", func(n Node) bool {
		if n.ParentID != "" && !seen[n.ParentID] {
			t.Errorf("visited %q before its parent %q", n.ID, n.ParentID)
		}
		seen[n.ID] = true
		return true
	})

	if len(seen) != 1+2+4 {
		t.Errorf("walk visited %d nodes, want 7", len(seen))
	}
}

func TestStaggeredRangesWithinParent(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "one two three four", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	phrase, _ := tree.Node("p0")
	prevStart := int64(-1)
	for _, wid := range phrase.Children {
		w, _ := tree.Node(wid)
		if w.Range.StartMs < phrase.Range.StartMs || w.Range.EndMs > phrase.Range.EndMs {
			t.Errorf("word %q range %+v escapes phrase window", wid, w.Range)
		}
		if w.Range.StartMs <= prevStart {
			t.Errorf("word %q start %d not after previous %d", wid, w.Range.StartMs, prevStart)
		}
		if w.Range.EnterMs() < phrase.Range.StartMs && wid != phrase.Children[0] {
			t.Errorf("word %q lead-in precedes phrase start", wid)
		}
		prevStart = w.Range.StartMs
	}
}

func TestUpdateTimeRangePreservesHeadTail(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "hi there", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := tree.UpdateTimeRange("p0", 5000, 7000); err != nil {
		t.Fatalf("UpdateTimeRange failed: %v", err)
	}

	phrase, _ := tree.Node("p0")
	if phrase.Range.StartMs != 5000 || phrase.Range.EndMs != 7000 {
		t.Errorf("phrase range not updated: %+v", phrase.Range)
	}
	if phrase.Range.HeadMs != 200 || phrase.Range.TailMs != 300 {
		t.Errorf("head/tail not preserved: %+v", phrase.Range)
	}

	// Descendants re-derived into the new window
	w1, _ := tree.Node("p0/w1")
	if w1.Range.StartMs != 6000 || w1.Range.EndMs != 7000 {
		t.Errorf("word range not re-derived: %+v", w1.Range)
	}

	if err := tree.UpdateTimeRange("nope", 0, 1); err == nil {
		t.Error("updating unknown node should fail")
	}
}

func TestRemoveSubtree(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "ab cd", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := tree.Build("p1", "ef", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tree.Remove("p0/w1")
	if _, ok := tree.Node("p0/w1"); ok {
		t.Error("removed word still present")
	}
	if _, ok := tree.Node("p0/w1/c0"); ok {
		t.Error("removed word's character still present")
	}
	if got := tree.Children("p0"); len(got) != 1 {
		t.Errorf("phrase children = %v, want one remaining", got)
	}

	tree.Remove("p0")
	if got := tree.Phrases(); len(got) != 1 || got[0] != "p1" {
		t.Errorf("phrases after removal = %v, want [p1]", got)
	}

	// Arena swap-delete must keep the survivors addressable
	if _, ok := tree.Node("p1/w0/c1"); !ok {
		t.Error("surviving node lost after arena compaction")
	}
}

func TestRemoveAfterArenaChurn(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("a", "x", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := tree.Build("b", "y", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Removing a leaf compacts the arena and relocates later nodes, so a
	// subsequent subtree removal must re-resolve slots mid-removal
	tree.Remove("a/w0/c0")
	tree.Remove("b")

	if _, ok := tree.Node("b"); ok {
		t.Error("removed phrase still present")
	}
	if got := tree.Phrases(); len(got) != 1 || got[0] != "a" {
		t.Errorf("phrases = %v, want [a]", got)
	}
	if _, ok := tree.Node("a/w0"); !ok {
		t.Error("surviving word lost after churn")
	}
	if got := tree.Len(); got != 2 { // phrase a + word a/w0
		t.Errorf("arena size = %d, want 2", got)
	}

	// Every surviving id must resolve to a node that agrees on its id
	for _, id := range []string{"a", "a/w0"} {
		n, ok := tree.Node(id)
		if !ok || n.ID != id {
			t.Errorf("index for %q resolves to %+v", id, n)
		}
	}
}

func TestMultiRuneGrapheme(t *testing.T) {
	tree := NewTree()
	if err := tree.Build("p0", "áb", phraseRange()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	word, _ := tree.Node("p0/w0")
	if len(word.Children) != 2 {
		t.Errorf("expected 2 grapheme clusters, got %d", len(word.Children))
	}
	c0, _ := tree.Node("p0/w0/c0")
	if c0.Text != "á" {
		t.Errorf("combining mark split from base: %q", c0.Text)
	}
}
