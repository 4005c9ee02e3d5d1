package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/lifecycle"
	"github.com/lixenwraith/kinetext/scene"
)

func buildTestTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree := hierarchy.NewTree()
	err := tree.Build("p0", "go fast", lifecycle.TimeRange{
		StartMs: 1000, EndMs: 2000, HeadMs: 200, TailMs: 300,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return tree
}

func newTestOrchestrator(t *testing.T, tree *hierarchy.Tree, g scene.Graph) *Orchestrator {
	t.Helper()
	return NewOrchestrator(OrchestratorConfig{
		Tree:   tree,
		Graph:  g,
		Phrase: NewSlidePhraseRenderer(),
		Word:   NewFlowWordRenderer(),
		Glyph:  NewTypewriterGlyphRenderer(),
	})
}

func TestSyncAtActivePhase(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()
	o := newTestOrchestrator(t, tree, g)

	if err := o.Bind("p0", scene.Vec2{X: 10, Y: 5}); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	res := o.SyncAt("p0", 1999)
	if !res.Success {
		t.Fatalf("sync failed: %v", res.Err)
	}
	if len(res.Violations) != 0 {
		t.Errorf("unexpected violations: %v", res.Violations)
	}

	// Near the end of the window every character has entered: one content
	// node per character
	contentCount := len(g.ContentNodes())
	if contentCount != 6 { // "go" + "fast"
		t.Errorf("content nodes = %d, want 6", contentCount)
	}
}

func TestSyncAtBeforeWindowHidesAll(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()
	o := newTestOrchestrator(t, tree, g)

	res := o.SyncAt("p0", 0)
	if !res.Success {
		t.Fatalf("sync failed: %v", res.Err)
	}
	if got := len(g.ContentNodes()); got != 0 {
		t.Errorf("content nodes before window = %d, want 0", got)
	}
}

func TestSyncAtIdempotent(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()
	o := newTestOrchestrator(t, tree, g)

	snapshot := func() map[scene.NodeID]scene.NodeInfo {
		out := make(map[scene.NodeID]scene.NodeInfo)
		var walk func(scene.NodeID)
		walk = func(id scene.NodeID) {
			out[id] = g.Inspect(id)
			for _, c := range g.Children(id) {
				walk(c)
			}
		}
		walk(scene.Root)
		return out
	}

	res1 := o.SyncAt("p0", 1500)
	first := snapshot()
	res2 := o.SyncAt("p0", 1500)
	second := snapshot()

	if res1.Success != res2.Success || len(res1.Violations) != len(res2.Violations) {
		t.Errorf("results differ between identical syncs")
	}
	if len(first) != len(second) {
		t.Fatalf("scene size changed: %d -> %d", len(first), len(second))
	}
	for id, info := range first {
		after := second[id]
		// Filters are re-applied per pass; compare the rest
		info.Filters, after.Filters = nil, nil
		if !reflect.DeepEqual(info, after) {
			t.Errorf("node %d changed between identical syncs: %+v -> %+v", id, info, after)
		}
	}
}

func TestParentFinalizedBeforeChildren(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()

	var order []hierarchy.Level
	o := NewOrchestrator(OrchestratorConfig{
		Tree:   tree,
		Graph:  g,
		Phrase: &recordingPhrase{order: &order},
		Word:   &recordingWord{order: &order, inner: NewFlowWordRenderer()},
		Glyph:  &recordingGlyph{order: &order, inner: NewTypewriterGlyphRenderer()},
	})

	if res := o.SyncAt("p0", 1500); !res.Success {
		t.Fatalf("sync failed: %v", res.Err)
	}

	seenWord := false
	seenGlyph := false
	for i, lvl := range order {
		switch lvl {
		case hierarchy.LevelPhrase:
			if i != 0 {
				t.Errorf("phrase rendered at position %d, want first", i)
			}
		case hierarchy.LevelWord:
			seenWord = true
			if seenGlyph {
				// A word may follow another word's glyphs, but its own
				// glyphs must follow it; checked below
				continue
			}
		case hierarchy.LevelCharacter:
			if !seenWord {
				t.Errorf("glyph rendered before any word at position %d", i)
			}
			seenGlyph = true
		}
	}
}

type recordingPhrase struct{ order *[]hierarchy.Level }

func (r *recordingPhrase) Capabilities() guard.OpSet {
	return guard.OpSet(guard.OpPosition | guard.OpOpacity)
}

func (r *recordingPhrase) RenderPhrase(st lifecycle.ObjectState, node hierarchy.Node, origin scene.Vec2, ops scene.PhraseOps) error {
	*r.order = append(*r.order, hierarchy.LevelPhrase)
	return nil
}

type recordingWord struct {
	order *[]hierarchy.Level
	inner WordRenderer
}

func (r *recordingWord) Capabilities() guard.OpSet { return r.inner.Capabilities() }

func (r *recordingWord) RenderWord(st lifecycle.ObjectState, node hierarchy.Node, chars []hierarchy.Node, offset scene.Vec2, ops scene.WordOps) error {
	*r.order = append(*r.order, hierarchy.LevelWord)
	return r.inner.RenderWord(st, node, chars, offset, ops)
}

type recordingGlyph struct {
	order *[]hierarchy.Level
	inner GlyphRenderer
}

func (r *recordingGlyph) Capabilities() guard.OpSet { return r.inner.Capabilities() }

func (r *recordingGlyph) RenderGlyph(st lifecycle.ObjectState, node hierarchy.Node, base scene.Vec2, ops scene.GlyphOps) error {
	*r.order = append(*r.order, hierarchy.LevelCharacter)
	return r.inner.RenderGlyph(st, node, base, ops)
}

// rogueContentPhrase bypasses its narrowed view to plant content on the
// phrase node, exercising the runtime structure check
type rogueContentPhrase struct {
	g    scene.Graph
	node scene.NodeID
}

func (r *rogueContentPhrase) Capabilities() guard.OpSet {
	return guard.OpSet(guard.OpPosition | guard.OpOpacity)
}

func (r *rogueContentPhrase) RenderPhrase(st lifecycle.ObjectState, node hierarchy.Node, origin scene.Vec2, ops scene.PhraseOps) error {
	r.g.SetContent(r.node, scene.Content{Text: "rogue"})
	return nil
}

func TestRuntimeCheckFlagsRogueContent(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()

	rogue := &rogueContentPhrase{g: g}
	o := NewOrchestrator(OrchestratorConfig{
		Tree:   tree,
		Graph:  g,
		Phrase: rogue,
		Word:   NewFlowWordRenderer(),
		Glyph:  NewTypewriterGlyphRenderer(),
	})
	if err := o.Bind("p0", scene.Vec2{}); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	// The rogue needs the bound phrase node id
	rogue.node = g.Children(scene.Root)[0]

	res := o.SyncAt("p0", 1500)
	if !res.Success {
		t.Fatalf("violations must not flip success: %v", res.Err)
	}

	var hit *guard.Violation
	for i := range res.Violations {
		if res.Violations[i].Rule == guard.RuleContentCreation {
			hit = &res.Violations[i]
		}
	}
	if hit == nil {
		t.Fatalf("content_creation violation not found in %v", res.Violations)
	}
	if hit.Severity != guard.SeverityError || hit.Level != hierarchy.LevelPhrase {
		t.Errorf("violation = %+v", *hit)
	}
	if rate := o.Validator().Stats().ComplianceRate; rate >= 1.0 {
		t.Errorf("compliance rate = %f, want < 1.0", rate)
	}
}

type panickingGlyph struct{}

func (panickingGlyph) Capabilities() guard.OpSet {
	return guard.OpSet(guard.OpContentCreate)
}

func (panickingGlyph) RenderGlyph(st lifecycle.ObjectState, node hierarchy.Node, base scene.Vec2, ops scene.GlyphOps) error {
	panic("glyph renderer exploded")
}

func TestRendererPanicBecomesFailure(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()
	q := diag.NewQueue()

	o := NewOrchestrator(OrchestratorConfig{
		Tree:        tree,
		Graph:       g,
		Diagnostics: q,
		Phrase:      NewSlidePhraseRenderer(),
		Word:        NewFlowWordRenderer(),
		Glyph:       panickingGlyph{},
	})

	res := o.SyncAt("p0", 1500)
	if res.Success {
		t.Fatal("panicking renderer reported success")
	}
	if res.Err == nil {
		t.Fatal("panic not surfaced as error")
	}

	found := false
	for _, ev := range q.Consume() {
		if ev.Type == diag.EventRenderFailure {
			found = true
		}
	}
	if !found {
		t.Error("render failure not pushed to diagnostics")
	}
}

type failingWord struct{}

func (failingWord) Capabilities() guard.OpSet { return guard.OpSet(guard.OpChildLayout) }

func (failingWord) RenderWord(st lifecycle.ObjectState, node hierarchy.Node, chars []hierarchy.Node, offset scene.Vec2, ops scene.WordOps) error {
	return errors.New("layout engine unavailable")
}

func TestRendererErrorBecomesFailure(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()

	o := NewOrchestrator(OrchestratorConfig{
		Tree:   tree,
		Graph:  g,
		Phrase: NewSlidePhraseRenderer(),
		Word:   failingWord{},
		Glyph:  NewTypewriterGlyphRenderer(),
	})

	res := o.SyncAt("p0", 1500)
	if res.Success {
		t.Fatal("failing renderer reported success")
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "layout engine unavailable") {
		t.Fatalf("underlying error not preserved: %v", res.Err)
	}
}

func TestSyncUnknownObject(t *testing.T) {
	tree := buildTestTree(t)
	o := newTestOrchestrator(t, tree, scene.NewMemoryGraph())

	res := o.SyncAt("missing", 1500)
	if res.Success {
		t.Error("unknown object reported success")
	}
	if !errors.Is(res.Err, ErrUnknownObject) {
		t.Errorf("err = %v, want ErrUnknownObject", res.Err)
	}
}

func TestUnbindDestroysSceneNodes(t *testing.T) {
	tree := buildTestTree(t)
	g := scene.NewMemoryGraph()
	o := newTestOrchestrator(t, tree, g)

	o.SyncAt("p0", 1500)
	if g.Len() <= 1 {
		t.Fatal("sync did not create scene nodes")
	}

	o.Unbind("p0")
	if g.Len() != 1 {
		t.Errorf("scene nodes remain after unbind: %d", g.Len())
	}
}
