package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides a pausable playback timeline with pause duration
// tracking. The demo host pauses animation time without stopping the frame
// loop; wall-clock measurements (budgets, FPS) stay on the real clock.
type PausableClock struct {
	mu sync.RWMutex

	realStartTime time.Time // When clock was created (real time)

	isPaused        atomic.Bool
	pauseStartTime  time.Time     // When current pause started (real time)
	totalPausedTime time.Duration // Cumulative pause duration

	real TimeProvider
}

// NewPausableClock creates a running clock at timeline position zero
func NewPausableClock() *PausableClock {
	real := NewMonotonicTimeProvider()
	return &PausableClock{
		realStartTime: real.Now(),
		real:          real,
	}
}

// NowMs returns the current timeline position in milliseconds, frozen
// while paused
func (pc *PausableClock) NowMs() int64 {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		return int64((pc.pauseStartTime.Sub(pc.realStartTime) - pc.totalPausedTime) / time.Millisecond)
	}

	elapsed := pc.real.Now().Sub(pc.realStartTime) - pc.totalPausedTime
	return int64(elapsed / time.Millisecond)
}

// Pause stops timeline advancement. The pause timestamp is written before
// the flag flips so a concurrent NowMs never sees the flag without it.
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.isPaused.Load() {
		return
	}
	pc.pauseStartTime = pc.real.Now()
	pc.isPaused.Store(true)
}

// Resume continues timeline advancement
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !pc.isPaused.Load() {
		return
	}
	if !pc.pauseStartTime.IsZero() {
		pc.totalPausedTime += pc.real.Now().Sub(pc.pauseStartTime)
		pc.pauseStartTime = time.Time{}
	}
	pc.isPaused.Store(false)
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// CurrentTimeMs satisfies the sync monitor's clock source interface
func (pc *PausableClock) CurrentTimeMs() float64 {
	return float64(pc.NowMs())
}

// IsPlaying reports whether the timeline is advancing
func (pc *PausableClock) IsPlaying() bool {
	return !pc.IsPaused()
}

// Seek shifts the timeline so NowMs reports the given position
func (pc *PausableClock) Seek(positionMs int64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	now := pc.real.Now()
	pc.realStartTime = now.Add(-time.Duration(positionMs) * time.Millisecond)
	pc.totalPausedTime = 0
	if pc.isPaused.Load() {
		pc.pauseStartTime = now
	}
}
