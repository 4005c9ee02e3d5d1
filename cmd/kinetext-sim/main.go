package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/lixenwraith/kinetext/core"
	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/engine"
	"github.com/lixenwraith/kinetext/engine/status"
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/render"
	"github.com/lixenwraith/kinetext/scene"
	"github.com/lixenwraith/kinetext/script"
	"github.com/lixenwraith/kinetext/timesync"
)

var (
	scriptFlag  = flag.String("script", "", "Path to a YAML animation script (builtin demo when empty)")
	stepFlag    = flag.Int64("step", 16, "Simulated frame step in milliseconds")
	jitterFlag  = flag.Float64("jitter", 2.0, "Simulated reference-clock jitter amplitude in milliseconds")
	verboseFlag = flag.Bool("v", false, "Log to stderr")
)

const builtinScript = `
phrases:
  - text: "deterministic replay"
    start_ms: 200
    end_ms: 2200
    head_ms: 200
    tail_ms: 300
  - text: "headless frame loop"
    start_ms: 2500
    end_ms: 4500
    head_ms: 200
    tail_ms: 300
`

// simSource models the external reference clock with deterministic
// sinusoidal jitter so the drift monitor has something to measure
type simSource struct {
	nowMs  int64
	jitter float64
}

func (s *simSource) CurrentTimeMs() float64 {
	return float64(s.nowMs) + s.jitter*math.Sin(float64(s.nowMs)/200)
}

func (s *simSource) IsPlaying() bool { return true }

func main() {
	flag.Parse()

	if *verboseFlag {
		core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
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

	source := &simSource{jitter: *jitterFlag}
	monitor := timesync.NewMonitor(source)
	graph := scene.NewMemoryGraph()
	validator := guard.NewValidator()
	diagq := diag.NewQueue()
	registry := status.NewRegistry()

	mockClock := engine.NewMockTimeProvider(time.Unix(0, 0))
	ticks := engine.NewManualTickSource()
	scheduler := engine.NewFrameScheduler(ticks, engine.SchedulerConfig{
		Clock:       mockClock,
		Diagnostics: diagq,
		Status:      registry,
	})

	orch := render.NewOrchestrator(render.OrchestratorConfig{
		Tree:        tree,
		Graph:       graph,
		Monitor:     monitor,
		Validator:   validator,
		Diagnostics: diagq,
		FrameRate:   func() float64 { return scheduler.Stats().CurrentFPS },
		Phrase:      render.NewSlidePhraseRenderer(),
		Word:        render.NewFlowWordRenderer(),
		Glyph:       render.NewTypewriterGlyphRenderer(),
	})

	var simMs int64
	var failures int
	scheduler.Register(func(delta time.Duration) {
		source.nowMs = simMs
		for i := range scr.Phrases {
			if res := orch.SyncAt(scr.Phrases[i].ID, simMs); !res.Success {
				failures++
			}
		}
	})
	scheduler.Start()

	step := *stepFlag
	endMs := scr.DurationMs() + step
	frames := 0
	for simMs = 0; simMs <= endMs; simMs += step {
		mockClock.Advance(time.Duration(step) * time.Millisecond)
		ticks.Step(time.Duration(step) * time.Millisecond)
		frames++
	}
	scheduler.Stop()

	stats := scheduler.Stats()
	acc := monitor.Accuracy()
	vstats := validator.Stats()

	fmt.Printf("frames        %d (%d stepped)\n", stats.FrameNumber, frames)
	fmt.Printf("quality       %s (avg %.1f fps)\n", stats.Quality, stats.AverageFPS)
	fmt.Printf("drops         %d\n", stats.DropCount)
	fmt.Printf("budget skips  %d\n", stats.ViolationCount)
	fmt.Printf("drift         avg %.2fms  max %.2fms  accurate %.0f%%\n",
		acc.AverageOffsetMs, acc.MaxOffsetMs, acc.AccurateRatio*100)
	fmt.Printf("compliance    %.0f%% (%d checks)\n", vstats.ComplianceRate*100, vstats.TotalChecks)
	fmt.Printf("sync failures %d\n", failures)
	fmt.Printf("scene nodes   %d\n", graph.Len())

	events := diagq.Consume()
	if len(events) > 0 {
		fmt.Printf("events        %d (last: %s %s)\n", len(events), events[len(events)-1].Type, events[len(events)-1].Detail)
	}
}
