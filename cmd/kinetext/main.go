package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/kinetext/audio"
	"github.com/lixenwraith/kinetext/core"
	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/engine"
	"github.com/lixenwraith/kinetext/engine/status"
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/lifecycle"
	"github.com/lixenwraith/kinetext/parameter"
	"github.com/lixenwraith/kinetext/render"
	"github.com/lixenwraith/kinetext/scene"
	"github.com/lixenwraith/kinetext/script"
	"github.com/lixenwraith/kinetext/timesync"
)

var (
	scriptFlag = flag.String("script", "", "Path to a YAML animation script (builtin demo when empty)")
	muteFlag   = flag.Bool("mute", false, "Disable the metronome track and its playback clock")
	bpmFlag    = flag.Float64("bpm", 120, "Metronome tempo")
	logFlag    = flag.String("log", "", "Write structured logs to this file")
)

// builtinScript is the demo played when no script file is given
const builtinScript = `
title: kinetext demo
phrases:
  - text: "welcome to kinetext"
    start_ms: 500
    end_ms: 4000
    head_ms: 400
    tail_ms: 600
    x: 6
    y: 4
  - text: "words enter one by one"
    start_ms: 4500
    end_ms: 8000
    head_ms: 400
    tail_ms: 600
    x: 6
    y: 7
    effects:
      char: glow
  - text: "synchronized to the beat"
    start_ms: 8500
    end_ms: 12500
    head_ms: 400
    tail_ms: 800
    x: 6
    y: 10
    effects:
      phrase: fade
      char: glitch
`

// phraseRun is one phrase wired to its orchestrator and screen slot
type phraseRun struct {
	id     string
	orch   *render.Orchestrator
	bridge *render.CompatBridge
	text   string
	x, y   float64
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
			fmt.Fprintf(os.Stderr, "\nkinetext crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	if *logFlag != "" {
		f, err := os.Create(*logFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		core.SetLogger(slog.New(slog.NewTextHandler(f, nil)))
	}

	var (
		scr *script.Script
		err error
	)
	if *scriptFlag != "" {
		scr, err = script.Load(*scriptFlag)
	} else {
		scr, err = script.Parse([]byte(builtinScript))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	tree, err := scr.BuildTree()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal init: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "terminal init: %v\n", err)
		os.Exit(1)
	}
	core.SetCrashCleanup(screen.Fini)
	defer screen.Fini()

	clock := engine.NewPausableClock()

	// Audio is the external reference clock; absence degrades the drift
	// monitor, never the animation
	var playback *audio.Clock
	if !*muteFlag {
		track := audio.Metronome(0, *bpmFlag, scr.DurationMs(), 0.3)
		playback, err = audio.NewClock(0, track)
		if err != nil {
			core.Log().Warn("audio unavailable, continuing without playback clock", "error", err)
		}
	}
	var monitor *timesync.Monitor
	if playback != nil {
		monitor = timesync.NewMonitor(playback)
		defer playback.Close()
	} else {
		monitor = timesync.NewMonitor(nil)
	}

	graph := render.NewTerminalGraph()
	validator := guard.NewValidator()
	diagq := diag.NewQueue()
	registry := status.NewRegistry()

	scheduler := engine.NewFrameScheduler(
		engine.NewTickerSource(parameter.NominalFramePeriod),
		engine.SchedulerConfig{
			Budget:      parameter.FrameBudget,
			Diagnostics: diagq,
			Status:      registry,
		},
	)

	runs := make([]*phraseRun, 0, len(scr.Phrases))
	for i := range scr.Phrases {
		p := scr.Phrases[i]
		set, err := p.Effects.Resolve()
		if err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		orch := render.NewOrchestrator(render.OrchestratorConfig{
			Tree:        tree,
			Graph:       graph,
			Monitor:     monitor,
			Validator:   validator,
			Diagnostics: diagq,
			FrameRate:   func() float64 { return scheduler.Stats().AverageFPS },
			Phrase:      set.Phrase,
			Word:        set.Word,
			Glyph:       set.Glyph,
		})

		run := &phraseRun{id: p.ID, orch: orch, text: p.Text, x: p.X, y: p.Y}
		run.bridge = render.NewCompatBridge(orch, 0, diagq)
		if err := run.bridge.Wrap(p.ID, legacyDraw(screen, run, p.Range())); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		runs = append(runs, run)

		if err := orch.Bind(p.ID, scene.Vec2{X: p.X, Y: p.Y}); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	hud := render.NewHUD(diagq)

	scheduler.Register(func(delta time.Duration) {
		nowMs := clock.NowMs()
		for _, run := range runs {
			run.bridge.Update(run.id, nowMs)
		}

		screen.Clear()
		graph.Flush(screen)
		_, h := screen.Size()
		hud.Draw(screen, h-2, scheduler.Stats(), monitor.Accuracy(), validator.Stats())
		screen.Show()
	})
	scheduler.Start()
	defer scheduler.Stop()

	// Wake the event loop periodically so the run ends without input
	core.Go(func() {
		for {
			time.Sleep(500 * time.Millisecond)
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	})

	endMs := scr.DurationMs() + 1000
	for {
		if clock.NowMs() > endMs {
			return
		}
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
				return
			case ev.Rune() == ' ':
				if clock.IsPaused() {
					clock.Resume()
					if playback != nil {
						playback.Resume()
					}
				} else {
					clock.Pause()
					if playback != nil {
						playback.Pause()
					}
				}
			case ev.Key() == tcell.KeyLeft:
				pos := clock.NowMs() - 2000
				if pos < 0 {
					pos = 0
				}
				clock.Seek(pos)
			case ev.Key() == tcell.KeyRight:
				clock.Seek(clock.NowMs() + 2000)
			}
		}
	}
}

// legacyDraw is the pre-pipeline fallback: the full phrase text drawn
// statically inside its nominal window, no per-level animation
func legacyDraw(screen tcell.Screen, run *phraseRun, r lifecycle.TimeRange) render.LegacyUpdateFunc {
	return func(nowMs int64) error {
		if nowMs < r.EnterMs() || nowMs >= r.LeaveMs() {
			return nil
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorGray)
		col := int(run.x)
		for _, ch := range run.text {
			screen.SetContent(col, int(run.y), ch, nil, style)
			col++
		}
		return nil
	}
}
