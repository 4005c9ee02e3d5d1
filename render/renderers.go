package render

import (
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/lifecycle"
	"github.com/lixenwraith/kinetext/scene"
)

// SlidePhraseRenderer fades the phrase group in while sliding it up from
// below its resting origin, and fades it out in place
type SlidePhraseRenderer struct {
	RiseCells float64 // vertical travel during the lead-in
}

// NewSlidePhraseRenderer creates the default phrase renderer
func NewSlidePhraseRenderer() *SlidePhraseRenderer {
	return &SlidePhraseRenderer{RiseCells: 2}
}

// Capabilities implements PhraseRenderer
func (r *SlidePhraseRenderer) Capabilities() guard.OpSet {
	return guard.OpSet(guard.OpPosition | guard.OpOpacity)
}

// RenderPhrase implements PhraseRenderer
func (r *SlidePhraseRenderer) RenderPhrase(st lifecycle.ObjectState, node hierarchy.Node, origin scene.Vec2, ops scene.PhraseOps) error {
	switch st.Phase {
	case lifecycle.PhaseBefore, lifecycle.PhaseAfter:
		ops.SetOpacity(0)
	case lifecycle.PhaseEntering:
		ops.SetPosition(scene.Vec2{X: origin.X, Y: origin.Y + (1-st.Progress)*r.RiseCells})
		ops.SetOpacity(st.Progress)
	case lifecycle.PhaseActive:
		ops.SetPosition(origin)
		ops.SetOpacity(1)
	case lifecycle.PhaseExiting:
		ops.SetPosition(origin)
		ops.SetOpacity(1 - st.Progress)
	}
	return nil
}

// FlowWordRenderer keeps one placeholder per character and lays them out
// left to right by cell width
type FlowWordRenderer struct {
	Spacing float64 // extra cells between characters
}

// NewFlowWordRenderer creates the default word renderer
func NewFlowWordRenderer() *FlowWordRenderer {
	return &FlowWordRenderer{}
}

// Capabilities implements WordRenderer
func (r *FlowWordRenderer) Capabilities() guard.OpSet {
	return guard.OpSet(guard.OpChildLayout)
}

// RenderWord implements WordRenderer
func (r *FlowWordRenderer) RenderWord(st lifecycle.ObjectState, node hierarchy.Node, chars []hierarchy.Node, offset scene.Vec2, ops scene.WordOps) error {
	// Reconcile placeholder count with the character count
	for ops.ChildCount() < len(chars) {
		ops.AddPlaceholder()
	}
	for ops.ChildCount() > len(chars) {
		ops.RemovePlaceholder(ops.ChildCount() - 1)
	}

	x := 0.0
	for i, c := range chars {
		ops.PlacePlaceholder(i, scene.Vec2{X: offset.X + x, Y: offset.Y})
		x += float64(c.Width) + r.Spacing
	}
	return nil
}

// GlyphStyle configures the typewriter glyph renderer's content
type GlyphStyle struct {
	Color scene.Color
	Bold  bool
}

// TypewriterGlyphRenderer creates the glyph content when its character
// enters, fades it with entering/exiting progress and applies per-phase
// effects
type TypewriterGlyphRenderer struct {
	Style       GlyphStyle
	EnterEffect scene.Filter // applied during the lead-in, empty disables
	ExitEffect  scene.Filter // applied during the lead-out, empty disables
}

// NewTypewriterGlyphRenderer creates the default character renderer
func NewTypewriterGlyphRenderer() *TypewriterGlyphRenderer {
	return &TypewriterGlyphRenderer{
		Style:       GlyphStyle{Color: scene.Color{R: 220, G: 220, B: 220}},
		EnterEffect: scene.FilterSparkle,
		ExitEffect:  scene.FilterDim,
	}
}

// Capabilities implements GlyphRenderer
func (r *TypewriterGlyphRenderer) Capabilities() guard.OpSet {
	return guard.OpSet(guard.OpContentCreate | guard.OpContentRemove |
		guard.OpItemEffect | guard.OpPosition | guard.OpOpacity)
}

// RenderGlyph implements GlyphRenderer
func (r *TypewriterGlyphRenderer) RenderGlyph(st lifecycle.ObjectState, node hierarchy.Node, base scene.Vec2, ops scene.GlyphOps) error {
	if !st.Exists {
		ops.ClearGlyph()
		ops.ClearEffects()
		return nil
	}

	ops.SetGlyph(scene.Content{
		Text:  node.Text,
		Color: r.Style.Color,
		Bold:  r.Style.Bold,
	})

	ops.ClearEffects()
	switch st.Phase {
	case lifecycle.PhaseEntering:
		ops.SetOpacity(st.Progress)
		if r.EnterEffect != "" {
			ops.ApplyEffect(r.EnterEffect)
		}
	case lifecycle.PhaseActive:
		ops.SetOpacity(1)
	case lifecycle.PhaseExiting:
		ops.SetOpacity(1 - st.Progress)
		if r.ExitEffect != "" {
			ops.ApplyEffect(r.ExitEffect)
		}
	}
	return nil
}
