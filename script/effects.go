package script

import (
	"fmt"

	"github.com/lixenwraith/kinetext/render"
	"github.com/lixenwraith/kinetext/scene"
)

// RendererSet is the resolved renderer trio for one phrase
type RendererSet struct {
	Phrase render.PhraseRenderer
	Word   render.WordRenderer
	Glyph  render.GlyphRenderer
}

// Resolve maps the authored effect names to configured renderers. Unknown
// names are rejected so typos fail at load time rather than rendering the
// default silently.
func (e Effects) Resolve() (RendererSet, error) {
	var set RendererSet

	switch e.Phrase {
	case "", "slide":
		set.Phrase = render.NewSlidePhraseRenderer()
	case "fade":
		p := render.NewSlidePhraseRenderer()
		p.RiseCells = 0
		set.Phrase = p
	default:
		return set, fmt.Errorf("script: unknown phrase effect %q", e.Phrase)
	}

	switch e.Word {
	case "", "flow":
		set.Word = render.NewFlowWordRenderer()
	case "spread":
		w := render.NewFlowWordRenderer()
		w.Spacing = 1
		set.Word = w
	default:
		return set, fmt.Errorf("script: unknown word effect %q", e.Word)
	}

	switch e.Char {
	case "", "typewriter":
		set.Glyph = render.NewTypewriterGlyphRenderer()
	case "glow":
		g := render.NewTypewriterGlyphRenderer()
		g.EnterEffect = scene.FilterGlow
		set.Glyph = g
	case "glitch":
		g := render.NewTypewriterGlyphRenderer()
		g.EnterEffect = scene.FilterGlitch
		set.Glyph = g
	default:
		return set, fmt.Errorf("script: unknown character effect %q", e.Char)
	}

	return set, nil
}
