package render

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/lifecycle"
	"github.com/lixenwraith/kinetext/scene"
)

// togglableGlyph fails on demand so the bridge's fallback path can be
// driven deterministically
type togglableGlyph struct {
	fail  atomic.Bool
	inner GlyphRenderer
}

func (t *togglableGlyph) Capabilities() guard.OpSet { return t.inner.Capabilities() }

func (t *togglableGlyph) RenderGlyph(st lifecycle.ObjectState, node hierarchy.Node, base scene.Vec2, ops scene.GlyphOps) error {
	if t.fail.Load() {
		return errors.New("synthetic glyph failure")
	}
	return t.inner.RenderGlyph(st, node, base, ops)
}

func newBridgeFixture(t *testing.T) (*CompatBridge, *togglableGlyph, *diag.Queue, *atomic.Int64) {
	t.Helper()
	tree := buildTestTree(t)
	glyph := &togglableGlyph{inner: NewTypewriterGlyphRenderer()}
	q := diag.NewQueue()

	orch := NewOrchestrator(OrchestratorConfig{
		Tree:   tree,
		Graph:  scene.NewMemoryGraph(),
		Phrase: NewSlidePhraseRenderer(),
		Word:   NewFlowWordRenderer(),
		Glyph:  glyph,
	})

	var legacyCalls atomic.Int64
	bridge := NewCompatBridge(orch, 3, q)
	err := bridge.Wrap("p0", func(nowMs int64) error {
		legacyCalls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	return bridge, glyph, q, &legacyCalls
}

func TestBridgeHealthyPathSkipsLegacy(t *testing.T) {
	bridge, _, _, legacyCalls := newBridgeFixture(t)

	for i := 0; i < 5; i++ {
		if err := bridge.Update("p0", 1500); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if n := legacyCalls.Load(); n != 0 {
		t.Errorf("legacy called %d times on healthy path", n)
	}

	st, ok := bridge.Stats("p0")
	if !ok {
		t.Fatal("stats missing for wrapped object")
	}
	if st.FallbackCount != 0 || st.CircuitOpen {
		t.Errorf("stats = %+v, want clean", st)
	}
}

func TestBridgeCircuitOpensAfterMaxFallbacks(t *testing.T) {
	bridge, glyph, q, legacyCalls := newBridgeFixture(t)
	glyph.fail.Store(true)

	// Three consecutive failures trip the circuit
	for i := 0; i < 3; i++ {
		if err := bridge.Update("p0", 1500); err != nil {
			t.Fatalf("legacy fallback errored on update %d: %v", i, err)
		}
	}

	st, _ := bridge.Stats("p0")
	if !st.CircuitOpen {
		t.Fatal("circuit not open after max fallbacks")
	}
	if st.FallbackCount != 3 {
		t.Errorf("fallback count = %d, want 3", st.FallbackCount)
	}
	if st.ErrorCount != 3 {
		t.Errorf("error history = %d, want 3", st.ErrorCount)
	}
	if n := legacyCalls.Load(); n != 3 {
		t.Errorf("legacy called %d times, want 3", n)
	}

	// Open circuit: pipeline healthy again, but updates go straight to
	// legacy with the counter frozen
	glyph.fail.Store(false)
	if err := bridge.Update("p0", 1500); err != nil {
		t.Fatalf("open-circuit update: %v", err)
	}
	st, _ = bridge.Stats("p0")
	if st.FallbackCount != 3 {
		t.Errorf("fallback count moved while circuit open: %d", st.FallbackCount)
	}
	if n := legacyCalls.Load(); n != 4 {
		t.Errorf("legacy called %d times, want 4", n)
	}

	fallbacks, opens := 0, 0
	for _, ev := range q.Consume() {
		switch ev.Type {
		case diag.EventFallback:
			fallbacks++
		case diag.EventCircuitOpen:
			opens++
		}
	}
	if fallbacks != 3 || opens != 1 {
		t.Errorf("events: %d fallbacks, %d opens; want 3 and 1", fallbacks, opens)
	}
}

func TestBridgeEnableClosesCircuit(t *testing.T) {
	bridge, glyph, _, legacyCalls := newBridgeFixture(t)
	glyph.fail.Store(true)
	for i := 0; i < 3; i++ {
		bridge.Update("p0", 1500)
	}
	glyph.fail.Store(false)

	if err := bridge.Enable("p0"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	st, _ := bridge.Stats("p0")
	if st.CircuitOpen || st.FallbackCount != 0 {
		t.Errorf("stats after enable = %+v", st)
	}

	before := legacyCalls.Load()
	if err := bridge.Update("p0", 1500); err != nil {
		t.Fatalf("update after enable: %v", err)
	}
	if legacyCalls.Load() != before {
		t.Error("legacy called after circuit closed with healthy pipeline")
	}
}

func TestBridgeDisableRoutesToLegacy(t *testing.T) {
	bridge, _, _, legacyCalls := newBridgeFixture(t)

	if err := bridge.Disable("p0"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if err := bridge.Update("p0", 1500); err != nil {
		t.Fatalf("disabled update: %v", err)
	}
	if n := legacyCalls.Load(); n != 1 {
		t.Errorf("legacy called %d times while disabled, want 1", n)
	}
	st, _ := bridge.Stats("p0")
	if st.FallbackCount != 0 {
		t.Errorf("disabled updates counted as fallbacks: %d", st.FallbackCount)
	}
}

func TestBridgeWrapAppliesOnce(t *testing.T) {
	bridge, _, _, _ := newBridgeFixture(t)

	err := bridge.Wrap("p0", func(nowMs int64) error { return nil })
	if !errors.Is(err, ErrAlreadyWrapped) {
		t.Errorf("second wrap err = %v, want ErrAlreadyWrapped", err)
	}
}

func TestBridgeRestoreOriginal(t *testing.T) {
	bridge, glyph, _, _ := newBridgeFixture(t)
	glyph.fail.Store(true)
	for i := 0; i < 3; i++ {
		bridge.Update("p0", 1500)
	}

	bridge.RestoreOriginal("p0")
	if err := bridge.Update("p0", 1500); !errors.Is(err, ErrNotWrapped) {
		t.Errorf("update after restore err = %v, want ErrNotWrapped", err)
	}

	// A fresh wrap starts with a closed circuit
	if err := bridge.Wrap("p0", func(nowMs int64) error { return nil }); err != nil {
		t.Fatalf("rewrap failed: %v", err)
	}
	st, _ := bridge.Stats("p0")
	if st.CircuitOpen || st.FallbackCount != 0 {
		t.Errorf("rewrapped stats = %+v, want fresh", st)
	}
}

func TestBridgeFallbackCountSurvivesSuccess(t *testing.T) {
	bridge, glyph, _, _ := newBridgeFixture(t)

	glyph.fail.Store(true)
	bridge.Update("p0", 1500)
	bridge.Update("p0", 1500)

	// A healthy frame does not forgive earlier failures
	glyph.fail.Store(false)
	if err := bridge.Update("p0", 1500); err != nil {
		t.Fatalf("healthy update: %v", err)
	}
	st, _ := bridge.Stats("p0")
	if st.FallbackCount != 2 {
		t.Fatalf("fallback count = %d after success, want 2", st.FallbackCount)
	}

	glyph.fail.Store(true)
	bridge.Update("p0", 1500)
	st, _ = bridge.Stats("p0")
	if !st.CircuitOpen || st.FallbackCount != 3 {
		t.Errorf("stats = %+v, want open circuit at cumulative 3", st)
	}
}

func TestBridgeNilLegacySurfacesOpenCircuit(t *testing.T) {
	bridge, glyph, _, _ := newBridgeFixture(t)
	bridge.RestoreOriginal("p0")
	if err := bridge.Wrap("p0", nil); err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}

	glyph.fail.Store(true)
	for i := 0; i < 3; i++ {
		bridge.Update("p0", 1500)
	}
	if err := bridge.Update("p0", 1500); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBridgeUnwrappedObject(t *testing.T) {
	bridge, _, _, _ := newBridgeFixture(t)

	if err := bridge.Update("ghost", 1500); !errors.Is(err, ErrNotWrapped) {
		t.Errorf("err = %v, want ErrNotWrapped", err)
	}
	if _, ok := bridge.Stats("ghost"); ok {
		t.Error("stats reported for unwrapped object")
	}
}
