package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/kinetext/core"
	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/engine/status"
	"github.com/lixenwraith/kinetext/parameter"
)

// FrameMetrics describes one scheduler tick
type FrameMetrics struct {
	FrameNumber       uint64
	DeltaMs           float64
	BudgetRemainingMs float64
	OnTime            bool
}

// Quality is the derived frame-rate health label
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// FrameStats is a read-only scheduler snapshot
type FrameStats struct {
	FrameNumber    uint64
	CurrentFPS     float64
	AverageFPS     float64
	DropCount      uint64
	ViolationCount uint64
	Uptime         time.Duration
	Quality        Quality
	LastFrame      FrameMetrics
}

// SchedulerConfig carries the scheduler tunables; zero values take the
// documented defaults from parameter
type SchedulerConfig struct {
	Budget        time.Duration // per-tick work allotment
	NominalPeriod time.Duration // expected frame interval
	Clock         TimeProvider  // elapsed-work measurement clock
	Diagnostics   *diag.Queue   // optional event sink
	Status        *status.Registry
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Budget <= 0 {
		c.Budget = parameter.FrameBudget
	}
	if c.NominalPeriod <= 0 {
		c.NominalPeriod = parameter.NominalFramePeriod
	}
	if c.Clock == nil {
		c.Clock = NewMonotonicTimeProvider()
	}
	if c.Status == nil {
		c.Status = status.NewRegistry()
	}
	return c
}

type schedCallback struct {
	id int
	fn TickCallback
}

// FrameScheduler runs registered per-frame work cooperatively inside a
// fixed time budget on a single host tick. Callbacks execute in FIFO
// registration order; once the budget is exceeded the remaining callbacks
// are skipped for that tick, never blocked on. Degradation is recorded,
// never thrown.
type FrameScheduler struct {
	cfg    SchedulerConfig
	source TickSource

	mu        sync.Mutex
	callbacks []schedCallback
	nextCBID  int
	subID     int
	subbed    bool

	running   atomic.Bool
	startTime time.Time

	frameNumber atomic.Uint64
	drops       atomic.Uint64
	violations  atomic.Uint64

	fpsWindow   [parameter.FPSWindowSize]float64
	fpsHead     int
	fpsCount    int
	fpsSum      float64
	currentFPS  float64
	lastMetrics FrameMetrics

	// Cached metric pointers
	statFrames *atomic.Int64
	statDrops  *atomic.Int64
	statFPS    *status.AtomicFloat
}

// NewFrameScheduler creates a scheduler over the given tick source
func NewFrameScheduler(source TickSource, cfg SchedulerConfig) *FrameScheduler {
	cfg = cfg.withDefaults()
	return &FrameScheduler{
		cfg:        cfg,
		source:     source,
		statFrames: cfg.Status.Ints.Get("engine.frames"),
		statDrops:  cfg.Status.Ints.Get("engine.drops"),
		statFPS:    cfg.Status.Floats.Get("engine.fps"),
	}
}

// Register adds a per-frame callback, executed in registration order.
// Returns an id for Unregister.
func (fs *FrameScheduler) Register(fn TickCallback) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	id := fs.nextCBID
	fs.nextCBID++
	fs.callbacks = append(fs.callbacks, schedCallback{id: id, fn: fn})

	if !fs.subbed && fs.running.Load() {
		fs.subID = fs.source.Subscribe(fs.handleTick)
		fs.subbed = true
	}
	return id
}

// Unregister removes a callback, effective from the next tick. Removing
// the last callback drops the underlying tick subscription.
func (fs *FrameScheduler) Unregister(id int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i, cb := range fs.callbacks {
		if cb.id == id {
			fs.callbacks = append(fs.callbacks[:i], fs.callbacks[i+1:]...)
			break
		}
	}
	if len(fs.callbacks) == 0 && fs.subbed {
		fs.source.Unsubscribe(fs.subID)
		fs.subbed = false
	}
}

// Start subscribes to the tick source and starts it. Duplicate start warns
// and no-ops.
func (fs *FrameScheduler) Start() {
	if !fs.running.CompareAndSwap(false, true) {
		core.Log().Warn("frame scheduler already started")
		return
	}
	fs.startTime = fs.cfg.Clock.Now()

	fs.mu.Lock()
	if len(fs.callbacks) > 0 && !fs.subbed {
		fs.subID = fs.source.Subscribe(fs.handleTick)
		fs.subbed = true
	}
	fs.mu.Unlock()

	if !fs.source.Running() {
		fs.source.Start()
	}
}

// Stop unsubscribes from the tick source and stops it. Duplicate stop
// no-ops.
func (fs *FrameScheduler) Stop() {
	if !fs.running.CompareAndSwap(true, false) {
		return
	}

	fs.mu.Lock()
	if fs.subbed {
		fs.source.Unsubscribe(fs.subID)
		fs.subbed = false
	}
	fs.mu.Unlock()

	if fs.source.Running() {
		fs.source.Stop()
	}
}

// Running reports whether the scheduler is started
func (fs *FrameScheduler) Running() bool {
	return fs.running.Load()
}

// handleTick executes one budgeted frame
func (fs *FrameScheduler) handleTick(delta time.Duration) {
	tickStart := fs.cfg.Clock.Now()
	frame := fs.frameNumber.Add(1)
	fs.statFrames.Store(int64(frame))

	deltaMs := float64(delta) / float64(time.Millisecond)

	fs.mu.Lock()
	if delta > 0 {
		fs.pushFPS(1000.0 / deltaMs)
	}
	cbs := make([]schedCallback, len(fs.callbacks))
	copy(cbs, fs.callbacks)
	fs.mu.Unlock()

	onTime := true
	for _, cb := range cbs {
		if fs.cfg.Clock.Now().Sub(tickStart) > fs.cfg.Budget {
			fs.violations.Add(1)
			onTime = false
			fs.emit(diag.Event{
				Type:   diag.EventBudgetViolation,
				Frame:  frame,
				Detail: fmt.Sprintf("budget %s exhausted, remaining callbacks skipped", fs.cfg.Budget),
			})
			break
		}
		cb.fn(delta)
	}

	dropThreshold := time.Duration(float64(fs.cfg.NominalPeriod) * parameter.FrameDropFactor)
	if delta > dropThreshold {
		drops := fs.drops.Add(1)
		fs.statDrops.Store(int64(drops))
		onTime = false
		fs.emit(diag.Event{
			Type:   diag.EventFrameDrop,
			Frame:  frame,
			Detail: fmt.Sprintf("delta %.2fms exceeds %.2fms", deltaMs, float64(dropThreshold)/float64(time.Millisecond)),
		})
	}

	remaining := fs.cfg.Budget - fs.cfg.Clock.Now().Sub(tickStart)

	fs.mu.Lock()
	fs.lastMetrics = FrameMetrics{
		FrameNumber:       frame,
		DeltaMs:           deltaMs,
		BudgetRemainingMs: float64(remaining) / float64(time.Millisecond),
		OnTime:            onTime,
	}
	fs.mu.Unlock()
}

// pushFPS adds one instantaneous FPS sample to the rolling window.
// Caller holds mu.
func (fs *FrameScheduler) pushFPS(fps float64) {
	if fs.fpsCount == parameter.FPSWindowSize {
		fs.fpsSum -= fs.fpsWindow[fs.fpsHead]
	} else {
		fs.fpsCount++
	}
	fs.fpsWindow[fs.fpsHead] = fps
	fs.fpsSum += fps
	fs.fpsHead = (fs.fpsHead + 1) % parameter.FPSWindowSize
	fs.currentFPS = fps
	fs.statFPS.Store(fs.fpsSum / float64(fs.fpsCount))
}

func (fs *FrameScheduler) emit(ev diag.Event) {
	if fs.cfg.Diagnostics != nil {
		fs.cfg.Diagnostics.Push(ev)
	}
}

// Stats returns the current scheduler snapshot
func (fs *FrameScheduler) Stats() FrameStats {
	fs.mu.Lock()
	avg := 0.0
	if fs.fpsCount > 0 {
		avg = fs.fpsSum / float64(fs.fpsCount)
	}
	current := fs.currentFPS
	last := fs.lastMetrics
	fs.mu.Unlock()

	frame := fs.frameNumber.Load()
	drops := fs.drops.Load()

	var uptime time.Duration
	if fs.running.Load() {
		uptime = fs.cfg.Clock.Now().Sub(fs.startTime)
	}

	return FrameStats{
		FrameNumber:    frame,
		CurrentFPS:     current,
		AverageFPS:     avg,
		DropCount:      drops,
		ViolationCount: fs.violations.Load(),
		Uptime:         uptime,
		Quality:        qualityFor(avg, drops, frame),
		LastFrame:      last,
	}
}

// qualityFor derives the health label from average FPS and drop ratio
func qualityFor(avgFPS float64, drops, frames uint64) Quality {
	dropRatio := 0.0
	if frames > 0 {
		dropRatio = float64(drops) / float64(frames)
	}

	switch {
	case avgFPS >= parameter.QualityExcellentFPS && dropRatio <= parameter.QualityExcellentDropRatio:
		return QualityExcellent
	case avgFPS >= parameter.QualityGoodFPS && dropRatio <= parameter.QualityGoodDropRatio:
		return QualityGood
	case avgFPS >= parameter.QualityFairFPS && dropRatio <= parameter.QualityFairDropRatio:
		return QualityFair
	default:
		return QualityPoor
	}
}
