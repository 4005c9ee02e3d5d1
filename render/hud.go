package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/engine"
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/timesync"
)

// HUD renders the diagnostics strip at the bottom of the screen: frame
// health, sync accuracy, compliance and the most recent diagnostics event.
// It is the single consumer of the diagnostics queue.
type HUD struct {
	diagq     *diag.Queue
	lastEvent string
}

// NewHUD creates a HUD consuming the given queue; nil disables the event
// line
func NewHUD(diagq *diag.Queue) *HUD {
	return &HUD{diagq: diagq}
}

// Draw writes the HUD onto the given screen row
func (h *HUD) Draw(screen tcell.Screen, row int, frame engine.FrameStats, acc timesync.SyncAccuracy, v guard.Stats) {
	if h.diagq != nil {
		events := h.diagq.Consume()
		if len(events) > 0 {
			last := events[len(events)-1]
			h.lastEvent = fmt.Sprintf("%s %s", last.Type, last.Detail)
		}
	}

	line := fmt.Sprintf("fps %5.1f (%s)  drops %d  skips %d  drift %5.2fms (%.0f%% ok)  compliance %3.0f%%",
		frame.AverageFPS, frame.Quality, frame.DropCount, frame.ViolationCount,
		acc.CurrentOffsetMs, acc.AccurateRatio*100, v.ComplianceRate*100)

	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	drawText(screen, 0, row, line, style)
	if h.lastEvent != "" {
		drawText(screen, 0, row+1, "last: "+h.lastEvent, style.Dim(true))
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
