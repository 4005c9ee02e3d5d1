package render

import (
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/kinetext/scene"
)

// Background is the terminal backdrop glyph content fades toward
var Background = scene.Color{R: 26, G: 27, B: 38}

// TerminalGraph is a scene graph realized on a tcell screen. The engine
// mutates the embedded graph during sync; Flush flattens content nodes
// into terminal cells once per frame.
type TerminalGraph struct {
	*scene.MemoryGraph
}

// NewTerminalGraph creates an empty terminal-backed graph
func NewTerminalGraph() *TerminalGraph {
	return &TerminalGraph{MemoryGraph: scene.NewMemoryGraph()}
}

// Flush draws every content node at its resolved position with effective
// opacity blended toward the backdrop. Draw order is by node id so output
// is deterministic.
func (tg *TerminalGraph) Flush(screen tcell.Screen) {
	ids := tg.ContentNodes()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		content := tg.ContentOf(id)
		if content == nil {
			continue
		}
		pos, opacity := tg.Resolve(id)
		if opacity <= 0 {
			continue
		}

		style := styleFor(*content, opacity, tg.Inspect(id).Filters)
		x := int(pos.X + 0.5)
		y := int(pos.Y + 0.5)
		for _, r := range content.Text {
			screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
}

// styleFor maps content color, opacity and filters onto a tcell style
func styleFor(c scene.Content, opacity float64, filters []scene.Filter) tcell.Style {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(
		blend(c.Color.R, Background.R, opacity),
		blend(c.Color.G, Background.G, opacity),
		blend(c.Color.B, Background.B, opacity),
	))
	if c.Bold {
		style = style.Bold(true)
	}
	for _, f := range filters {
		switch f {
		case scene.FilterGlow:
			style = style.Bold(true)
		case scene.FilterSparkle:
			style = style.Blink(true)
		case scene.FilterGlitch:
			style = style.Reverse(true)
		case scene.FilterDim:
			style = style.Dim(true)
		}
	}
	return style
}

// blend interpolates a channel toward the backdrop by opacity
func blend(fg, bg uint8, opacity float64) int32 {
	return int32(float64(bg) + (float64(fg)-float64(bg))*opacity)
}
