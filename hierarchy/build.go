package hierarchy

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/clipperhouse/uax29/v2/words"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/kinetext/lifecycle"
)

// Build creates a phrase node from text and derives word and character
// descendants with staggered sub-ranges across the phrase window. Words are
// segmented per UAX #29, characters are grapheme clusters, so multi-rune
// glyphs animate as one object.
func (t *Tree) Build(phraseID, text string, r lifecycle.TimeRange) error {
	if err := t.insert(Node{
		ID:    phraseID,
		Level: LevelPhrase,
		Text:  text,
		Width: runewidth.StringWidth(text),
		Range: r,
	}); err != nil {
		return err
	}

	wordTexts := splitWords(text)
	wordRanges := stagger(r, len(wordTexts))

	for wi, wordText := range wordTexts {
		wordID := fmt.Sprintf("%s/w%d", phraseID, wi)
		if err := t.insert(Node{
			ID:       wordID,
			Level:    LevelWord,
			ParentID: phraseID,
			Text:     wordText,
			Width:    runewidth.StringWidth(wordText),
			Range:    wordRanges[wi],
		}); err != nil {
			return err
		}

		charTexts := splitGraphemes(wordText)
		charRanges := stagger(wordRanges[wi], len(charTexts))

		for ci, charText := range charTexts {
			if err := t.insert(Node{
				ID:       fmt.Sprintf("%s/c%d", wordID, ci),
				Level:    LevelCharacter,
				ParentID: wordID,
				Text:     charText,
				Width:    runewidth.StringWidth(charText),
				Range:    charRanges[ci],
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterTimeRange sets the full time range of an existing node and
// re-derives descendant ranges
func (t *Tree) RegisterTimeRange(id string, r lifecycle.TimeRange) error {
	slot, ok := t.index[id]
	if !ok {
		return fmt.Errorf("hierarchy: unknown node %q", id)
	}
	t.nodes[slot].Range = r
	t.rederive(id)
	return nil
}

// UpdateTimeRange retimes a node's nominal window, preserving its head and
// tail, and re-derives descendant ranges
func (t *Tree) UpdateTimeRange(id string, startMs, endMs int64) error {
	slot, ok := t.index[id]
	if !ok {
		return fmt.Errorf("hierarchy: unknown node %q", id)
	}
	t.nodes[slot].Range.StartMs = startMs
	t.nodes[slot].Range.EndMs = endMs
	t.rederive(id)
	return nil
}

// rederive recomputes staggered child ranges below a retimed node
func (t *Tree) rederive(id string) {
	slot := t.index[id]
	children := t.nodes[slot].Children
	ranges := stagger(t.nodes[slot].Range, len(children))
	for i, child := range children {
		t.nodes[t.index[child]].Range = ranges[i]
		t.rederive(child)
	}
}

// stagger divides a parent window into n child windows: child i becomes
// active at an even offset into the parent window and stays through the
// parent end. Head and tail windows shrink to fit the child's own slot so
// a child never leads its parent in.
func stagger(parent lifecycle.TimeRange, n int) []lifecycle.TimeRange {
	if n <= 0 {
		return nil
	}
	out := make([]lifecycle.TimeRange, n)
	dur := parent.Duration()
	for i := 0; i < n; i++ {
		start := parent.StartMs + dur*int64(i)/int64(n)
		head := parent.HeadMs
		if i > 0 && head > start-parent.StartMs {
			head = start - parent.StartMs
		}
		out[i] = lifecycle.TimeRange{
			StartMs: start,
			EndMs:   parent.EndMs,
			HeadMs:  head,
			TailMs:  parent.TailMs,
		}
	}
	return out
}

// splitWords segments text into displayable word tokens, dropping
// whitespace-only tokens
func splitWords(text string) []string {
	var out []string
	tokens := words.FromString(text)
	for tokens.Next() {
		tok := tokens.Value()
		if strings.TrimSpace(tok) == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// splitGraphemes segments a word into grapheme clusters
func splitGraphemes(text string) []string {
	var out []string
	clusters := graphemes.FromString(text)
	for clusters.Next() {
		out = append(out, clusters.Value())
	}
	return out
}
