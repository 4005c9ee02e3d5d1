// Package hierarchy maintains the phrase -> word -> character tree of
// animated objects. Each level carries an explicit tagged discriminator;
// nothing is inferred from object shape at runtime.
package hierarchy

import (
	"fmt"

	"github.com/lixenwraith/kinetext/lifecycle"
)

// Level is the hierarchy discriminator carried on every node
type Level int

const (
	LevelPhrase Level = iota
	LevelWord
	LevelCharacter
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelPhrase:
		return "phrase"
	case LevelWord:
		return "word"
	case LevelCharacter:
		return "character"
	}
	return "unknown"
}

// Node is one animated object in the tree
type Node struct {
	ID       string
	Level    Level
	ParentID string // empty for phrases
	Children []string
	Text     string // phrase/word text or a single grapheme cluster
	Width    int    // terminal cell width of Text
	Range    lifecycle.TimeRange
}

// Tree stores nodes in an arena slice with an id -> slot index. Each engine
// instance owns its own tree; there is no shared registry between
// instances. Single-writer, not safe for concurrent use.
type Tree struct {
	nodes []Node
	index map[string]int
	roots []string // phrase ids in insertion order
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{
		index: make(map[string]int),
	}
}

// Node returns a copy of the node and whether it exists
func (t *Tree) Node(id string) (Node, bool) {
	slot, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[slot], true
}

// Phrases returns the root phrase ids in insertion order
func (t *Tree) Phrases() []string {
	out := make([]string, len(t.roots))
	copy(out, t.roots)
	return out
}

// Children returns the child ids of a node in layout order
func (t *Tree) Children(id string) []string {
	slot, ok := t.index[id]
	if !ok {
		return nil
	}
	out := make([]string, len(t.nodes[slot].Children))
	copy(out, t.nodes[slot].Children)
	return out
}

// Len returns the node count
func (t *Tree) Len() int {
	return len(t.nodes)
}

// insert adds a node, enforcing the level invariant against its parent:
// Word.parent is always Phrase, Character.parent is always Word
func (t *Tree) insert(n Node) error {
	if _, exists := t.index[n.ID]; exists {
		return fmt.Errorf("hierarchy: duplicate node id %q", n.ID)
	}

	switch n.Level {
	case LevelPhrase:
		if n.ParentID != "" {
			return fmt.Errorf("hierarchy: phrase %q must not have a parent", n.ID)
		}
	case LevelWord, LevelCharacter:
		parent, ok := t.Node(n.ParentID)
		if !ok {
			return fmt.Errorf("hierarchy: node %q references missing parent %q", n.ID, n.ParentID)
		}
		if parent.Level != n.Level-1 {
			return fmt.Errorf("hierarchy: %s %q cannot attach to %s parent", n.Level, n.ID, parent.Level)
		}
	default:
		return fmt.Errorf("hierarchy: node %q has invalid level %d", n.ID, n.Level)
	}

	slot := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.index[n.ID] = slot

	if n.Level == LevelPhrase {
		t.roots = append(t.roots, n.ID)
	} else {
		t.nodes[t.index[n.ParentID]].Children = append(t.nodes[t.index[n.ParentID]].Children, n.ID)
	}
	return nil
}

// Remove destroys a node and its entire subtree, discarding their time
// ranges. Removing a missing id is a no-op.
func (t *Tree) Remove(id string) {
	slot, ok := t.index[id]
	if !ok {
		return
	}
	n := t.nodes[slot]

	for _, child := range n.Children {
		t.Remove(child)
	}

	if n.Level == LevelPhrase {
		for i, r := range t.roots {
			if r == id {
				t.roots = append(t.roots[:i], t.roots[i+1:]...)
				break
			}
		}
	} else if pSlot, ok := t.index[n.ParentID]; ok {
		siblings := t.nodes[pSlot].Children
		for i, c := range siblings {
			if c == id {
				t.nodes[pSlot].Children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}

	// Child removals swap-delete and may have relocated this node
	slot = t.index[id]

	// Swap-delete from the arena, fixing the moved node's index
	last := len(t.nodes) - 1
	if slot != last {
		t.nodes[slot] = t.nodes[last]
		t.index[t.nodes[slot].ID] = slot
	}
	t.nodes = t.nodes[:last]
	delete(t.index, id)
}

// Walk visits a subtree strictly parent-before-children in layout order.
// Returning false from fn stops the walk.
func (t *Tree) Walk(id string, fn func(Node) bool) {
	n, ok := t.Node(id)
	if !ok {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		t.Walk(child, fn)
	}
}
