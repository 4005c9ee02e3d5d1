package parameter

import "time"

// Frame Loop & Scheduler Timing
const (
	// TargetFPS is the nominal frame rate the scheduler is tuned for
	TargetFPS = 60

	// NominalFramePeriod is the frame interval at TargetFPS (~16.67ms)
	NominalFramePeriod = time.Second / TargetFPS

	// FrameBudget is the per-tick work allotment, kept below the nominal
	// 60fps period to leave headroom for the host's own frame work.
	// SchedulerConfig.Budget overrides it.
	FrameBudget = 14 * time.Millisecond

	// FrameDropFactor marks a tick as dropped when the actual delta exceeds
	// this multiple of NominalFramePeriod
	FrameDropFactor = 1.5

	// FPSWindowSize is the rolling sample count for average FPS (~1s at 60fps)
	FPSWindowSize = 60
)

// Scheduler quality thresholds (average FPS floor, drop ratio ceiling)
const (
	QualityExcellentFPS = 55.0
	QualityGoodFPS      = 45.0
	QualityFairFPS      = 30.0

	QualityExcellentDropRatio = 0.01
	QualityGoodDropRatio      = 0.05
	QualityFairDropRatio      = 0.15
)

// Diagnostics Queue
const (
	// DiagQueueSize is the fixed capacity of the diagnostics ring buffer
	DiagQueueSize = 1024

	// DiagBufferMask is the bitmask for fast modulo operations (1024 - 1)
	DiagBufferMask = 1023
)
