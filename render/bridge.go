package render

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/kinetext/core"
	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/parameter"
)

var (
	// ErrAlreadyWrapped reports a duplicate Wrap for the same object; the
	// bridge applies exactly once per object
	ErrAlreadyWrapped = errors.New("render: object already wrapped")

	// ErrNotWrapped reports bridge calls for an object never wrapped
	ErrNotWrapped = errors.New("render: object not wrapped")

	// ErrCircuitOpen reports an open circuit with no legacy path to fall
	// back to
	ErrCircuitOpen = errors.New("render: circuit open")
)

// LegacyUpdateFunc is the pre-existing per-frame update entry point the
// bridge preserves as the fallback path
type LegacyUpdateFunc func(nowMs int64) error

// BridgeStats is a read-only per-object bridge snapshot
type BridgeStats struct {
	Enabled       bool
	CircuitOpen   bool
	FallbackCount int
	ErrorCount    int
}

// bridgeState tracks one wrapped object
type bridgeState struct {
	legacy        LegacyUpdateFunc
	enabled       bool
	circuitOpen   bool
	fallbackCount int
	errorHistory  []error
}

// CompatBridge routes per-frame updates through the orchestrator with the
// legacy update function retained as fallback. The legacy function is held
// by delegation, chosen at construction of the wrap; no method table is
// mutated. Once MaxFallbackCount pipeline failures accumulate the circuit
// opens and the object routes straight to the legacy path until explicitly
// re-enabled. The count is cumulative over the wrap's lifetime: an
// intervening success does not reset it, only Enable does. A pipeline that
// keeps failing intermittently is not trusted back on its own.
type CompatBridge struct {
	orch        *Orchestrator
	maxFallback int
	diagq       *diag.Queue
	states      map[string]*bridgeState
}

// NewCompatBridge creates a bridge over the orchestrator. maxFallback <= 0
// takes the documented default.
func NewCompatBridge(orch *Orchestrator, maxFallback int, diagq *diag.Queue) *CompatBridge {
	if maxFallback <= 0 {
		maxFallback = parameter.MaxFallbackCount
	}
	return &CompatBridge{
		orch:        orch,
		maxFallback: maxFallback,
		diagq:       diagq,
		states:      make(map[string]*bridgeState),
	}
}

// Wrap installs the bridge for an object, retaining legacy as the fallback
// path. Applying twice to the same object is rejected to avoid
// double-wrapping.
func (cb *CompatBridge) Wrap(objectID string, legacy LegacyUpdateFunc) error {
	if _, ok := cb.states[objectID]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyWrapped, objectID)
	}
	cb.states[objectID] = &bridgeState{
		legacy:  legacy,
		enabled: true,
	}
	return nil
}

// Update runs one frame for the object: orchestrator first, legacy on
// failure. With the circuit open or the pipeline disabled the legacy
// function is called directly and fallbackCount stays frozen.
func (cb *CompatBridge) Update(objectID string, nowMs int64) error {
	st, ok := cb.states[objectID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotWrapped, objectID)
	}

	if !st.enabled || st.circuitOpen {
		return st.fallback(nowMs)
	}

	result := cb.orch.SyncAt(objectID, nowMs)
	if result.Success {
		return nil
	}

	core.Log().Warn("pipeline failed, falling back to legacy update",
		"object", objectID, "error", result.Err, "fallbacks", st.fallbackCount+1)

	st.errorHistory = append(st.errorHistory, result.Err)
	if len(st.errorHistory) > parameter.BridgeErrorHistoryCap {
		st.errorHistory = st.errorHistory[len(st.errorHistory)-parameter.BridgeErrorHistoryCap:]
	}
	st.fallbackCount++
	cb.emit(diag.EventFallback, objectID, result.Err)

	if st.fallbackCount >= cb.maxFallback {
		st.circuitOpen = true
		core.Log().Error("circuit opened, pipeline disabled for object",
			"object", objectID, "fallbacks", st.fallbackCount)
		cb.emit(diag.EventCircuitOpen, objectID, result.Err)
	}

	return st.fallback(nowMs)
}

// fallback runs the legacy path; wraps with no legacy function surface
// the open circuit instead
func (st *bridgeState) fallback(nowMs int64) error {
	if st.legacy == nil {
		if st.circuitOpen {
			return ErrCircuitOpen
		}
		return nil
	}
	return st.legacy(nowMs)
}

// Enable closes the circuit and re-enables the pipeline, resetting the
// fallback counter. This is the explicit reset a tripped circuit requires.
func (cb *CompatBridge) Enable(objectID string) error {
	st, ok := cb.states[objectID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotWrapped, objectID)
	}
	st.enabled = true
	st.circuitOpen = false
	st.fallbackCount = 0
	return nil
}

// Disable routes the object straight to the legacy path without touching
// the circuit state
func (cb *CompatBridge) Disable(objectID string) error {
	st, ok := cb.states[objectID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotWrapped, objectID)
	}
	st.enabled = false
	return nil
}

// RestoreOriginal fully reverts the wrap: the object is forgotten, the
// legacy binding released and all counters discarded. Used for teardown
// and tests; a later Wrap starts fresh.
func (cb *CompatBridge) RestoreOriginal(objectID string) {
	delete(cb.states, objectID)
}

// Stats returns the per-object bridge snapshot
func (cb *CompatBridge) Stats(objectID string) (BridgeStats, bool) {
	st, ok := cb.states[objectID]
	if !ok {
		return BridgeStats{}, false
	}
	return BridgeStats{
		Enabled:       st.enabled,
		CircuitOpen:   st.circuitOpen,
		FallbackCount: st.fallbackCount,
		ErrorCount:    len(st.errorHistory),
	}, true
}

// ErrorHistory returns a copy of the retained failure records
func (cb *CompatBridge) ErrorHistory(objectID string) []error {
	st, ok := cb.states[objectID]
	if !ok {
		return nil
	}
	out := make([]error, len(st.errorHistory))
	copy(out, st.errorHistory)
	return out
}

func (cb *CompatBridge) emit(t diag.EventType, objectID string, err error) {
	if cb.diagq == nil {
		return
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	cb.diagq.Push(diag.Event{Type: t, ObjectID: objectID, Detail: detail})
}
