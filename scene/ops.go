package scene

// Per-level operation views. Each renderer receives only the view for its
// hierarchy level, making cross-level mutation a compile-time impossibility
// for code written against these interfaces. The runtime validator covers
// only what interfaces cannot: inspecting produced structure.

// PhraseOps is the phrase-level view: whole-group position, opacity and
// transform. No child access, no content.
type PhraseOps interface {
	SetPosition(p Vec2)
	SetOpacity(opacity float64)
	SetGroupTransform(tr Transform)
}

// WordOps is the word-level view: managing child placeholder nodes and
// their layout. No content creation, no parent transform.
type WordOps interface {
	ChildCount() int
	AddPlaceholder() int
	RemovePlaceholder(i int)
	PlacePlaceholder(i int, p Vec2)
}

// GlyphOps is the character-level view, the sole level permitted to create
// or mutate primitive content and apply per-item effects. Operates on one
// placeholder; siblings are unreachable.
type GlyphOps interface {
	SetGlyph(c Content)
	ClearGlyph()
	SetPosition(p Vec2)
	SetOpacity(opacity float64)
	ApplyEffect(f Filter)
	ClearEffects()
}

type phraseOps struct {
	g  Graph
	id NodeID
}

// PhraseOpsFor narrows the graph to phrase-level operations on id
func PhraseOpsFor(g Graph, id NodeID) PhraseOps {
	return &phraseOps{g: g, id: id}
}

func (o *phraseOps) SetPosition(p Vec2)             { o.g.SetPosition(o.id, p) }
func (o *phraseOps) SetOpacity(opacity float64)     { o.g.SetOpacity(o.id, opacity) }
func (o *phraseOps) SetGroupTransform(tr Transform) { o.g.SetTransform(o.id, tr) }

type wordOps struct {
	g  Graph
	id NodeID
}

// WordOpsFor narrows the graph to word-level operations on id
func WordOpsFor(g Graph, id NodeID) WordOps {
	return &wordOps{g: g, id: id}
}

func (o *wordOps) ChildCount() int {
	return len(o.g.Children(o.id))
}

func (o *wordOps) AddPlaceholder() int {
	o.g.CreateNode(o.id)
	return len(o.g.Children(o.id)) - 1
}

func (o *wordOps) RemovePlaceholder(i int) {
	children := o.g.Children(o.id)
	if i < 0 || i >= len(children) {
		return
	}
	o.g.Destroy(children[i])
}

func (o *wordOps) PlacePlaceholder(i int, p Vec2) {
	children := o.g.Children(o.id)
	if i < 0 || i >= len(children) {
		return
	}
	o.g.SetPosition(children[i], p)
}

type glyphOps struct {
	g  Graph
	id NodeID // the placeholder node owned by this character
}

// GlyphOpsFor narrows the graph to character-level operations on a single
// placeholder node
func GlyphOpsFor(g Graph, id NodeID) GlyphOps {
	return &glyphOps{g: g, id: id}
}

func (o *glyphOps) SetGlyph(c Content)         { o.g.SetContent(o.id, c) }
func (o *glyphOps) ClearGlyph()                { o.g.ClearContent(o.id) }
func (o *glyphOps) SetPosition(p Vec2)         { o.g.SetPosition(o.id, p) }
func (o *glyphOps) SetOpacity(opacity float64) { o.g.SetOpacity(o.id, opacity) }
func (o *glyphOps) ApplyEffect(f Filter)       { o.g.ApplyFilter(o.id, f) }
func (o *glyphOps) ClearEffects()              { o.g.ClearFilters(o.id) }
