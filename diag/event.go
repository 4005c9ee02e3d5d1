// Package diag carries engine diagnostics to a single consumer (HUD,
// simulator reporter) without blocking the frame loop
package diag

// EventType classifies a diagnostics event
type EventType int

const (
	// EventBudgetViolation signals a tick exceeded its work allotment
	EventBudgetViolation EventType = iota

	// EventFrameDrop signals a tick delta beyond the drop threshold
	EventFrameDrop

	// EventResponsibilityViolation signals a recorded capability breach
	EventResponsibilityViolation

	// EventRenderFailure signals a renderer error caught at the
	// orchestrator boundary
	EventRenderFailure

	// EventFallback signals the compatibility bridge routed a call to the
	// legacy path
	EventFallback

	// EventCircuitOpen signals the bridge permanently disabled the new
	// pipeline for an object
	EventCircuitOpen
)

// String returns the event type name
func (t EventType) String() string {
	switch t {
	case EventBudgetViolation:
		return "budget_violation"
	case EventFrameDrop:
		return "frame_drop"
	case EventResponsibilityViolation:
		return "responsibility_violation"
	case EventRenderFailure:
		return "render_failure"
	case EventFallback:
		return "fallback"
	case EventCircuitOpen:
		return "circuit_open"
	}
	return "unknown"
}

// Event is one diagnostics record
type Event struct {
	Type     EventType
	ObjectID string // empty for engine-wide events
	Frame    uint64
	Detail   string
}
