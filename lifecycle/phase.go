// Package lifecycle computes the animation phase and progress of timed
// objects. All functions are pure: identical inputs always yield identical
// outputs, with no memoization or hidden state, so seeking and replay are
// safe to evaluate any number of times.
package lifecycle

// Phase is the discrete lifecycle bucket of an animated object relative to
// its time range
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseEntering
	PhaseActive
	PhaseExiting
	PhaseAfter
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseEntering:
		return "entering"
	case PhaseActive:
		return "active"
	case PhaseExiting:
		return "exiting"
	case PhaseAfter:
		return "after"
	}
	return "unknown"
}

// ObjectState is the full per-query animation state of an object.
// Recomputed on every query, never persisted across frames.
type ObjectState struct {
	Phase    Phase
	Progress float64
	Visible  bool
	Exists   bool
}

// PhaseAt returns the phase of r at nowMs. Boundaries are inclusive on the
// later phase: nowMs == StartMs yields PhaseActive, not PhaseEntering.
func PhaseAt(nowMs int64, r TimeRange) Phase {
	switch {
	case nowMs >= r.LeaveMs():
		return PhaseAfter
	case nowMs >= r.EndMs:
		return PhaseExiting
	case nowMs >= r.StartMs:
		return PhaseActive
	case nowMs >= r.EnterMs():
		return PhaseEntering
	default:
		return PhaseBefore
	}
}

// ProgressAt returns the completion fraction of a window beginning at
// startMs lasting durationMs, clamped to [0,1]. A non-positive duration is
// treated as an instantaneous window: 1 once nowMs reaches startMs, else 0.
func ProgressAt(nowMs, startMs, durationMs int64) float64 {
	if durationMs <= 0 {
		if nowMs >= startMs {
			return 1
		}
		return 0
	}
	p := float64(nowMs-startMs) / float64(durationMs)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// StateAt composes PhaseAt and the per-phase progress into an ObjectState.
// Progress is measured within the current phase's own window: the lead-in
// for PhaseEntering, the nominal window for PhaseActive, the lead-out for
// PhaseExiting. Before yields 0, After yields 1.
func StateAt(nowMs int64, r TimeRange) ObjectState {
	phase := PhaseAt(nowMs, r)

	var progress float64
	switch phase {
	case PhaseBefore:
		progress = 0
	case PhaseEntering:
		progress = ProgressAt(nowMs, r.EnterMs(), r.HeadMs)
	case PhaseActive:
		progress = ProgressAt(nowMs, r.StartMs, r.Duration())
	case PhaseExiting:
		progress = ProgressAt(nowMs, r.EndMs, r.TailMs)
	case PhaseAfter:
		progress = 1
	}

	exists := phase != PhaseBefore && phase != PhaseAfter
	return ObjectState{
		Phase:    phase,
		Progress: progress,
		Visible:  exists,
		Exists:   exists,
	}
}
