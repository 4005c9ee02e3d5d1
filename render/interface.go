package render

import (
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/lifecycle"
	"github.com/lixenwraith/kinetext/scene"
)

// Level renderers are polymorphic by hierarchy level. Each receives only
// its level's narrowed scene view; Capabilities declares the operation
// classes the implementation performs, checked against the capability
// matrix before execution.

// PhraseRenderer animates a whole phrase group: position, opacity, group
// transform
type PhraseRenderer interface {
	Capabilities() guard.OpSet
	RenderPhrase(st lifecycle.ObjectState, node hierarchy.Node, origin scene.Vec2, ops scene.PhraseOps) error
}

// WordRenderer manages the word's character placeholders and their layout.
// chars carries the character nodes in layout order; offset is the word's
// slot within the phrase line, derived from preceding word widths.
type WordRenderer interface {
	Capabilities() guard.OpSet
	RenderWord(st lifecycle.ObjectState, node hierarchy.Node, chars []hierarchy.Node, offset scene.Vec2, ops scene.WordOps) error
}

// GlyphRenderer is the sole level permitted to create or mutate primitive
// content and apply per-item effects. base is the placeholder's layout
// position within the word.
type GlyphRenderer interface {
	Capabilities() guard.OpSet
	RenderGlyph(st lifecycle.ObjectState, node hierarchy.Node, base scene.Vec2, ops scene.GlyphOps) error
}
