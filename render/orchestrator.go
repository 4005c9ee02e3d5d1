package render

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/kinetext/core"
	"github.com/lixenwraith/kinetext/diag"
	"github.com/lixenwraith/kinetext/guard"
	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/lifecycle"
	"github.com/lixenwraith/kinetext/scene"
	"github.com/lixenwraith/kinetext/timesync"
)

// ErrUnknownObject reports a sync request for an object absent from the
// hierarchy
var ErrUnknownObject = errors.New("render: unknown object")

// SyncResult is the outcome of one hierarchy synchronization pass.
// Success flips false only on an unrecovered renderer failure; validator
// findings are attached without affecting it.
type SyncResult struct {
	Success    bool
	Accuracy   timesync.SyncAccuracy
	FrameRate  float64
	Violations []guard.Violation
	Err        error
}

// binding ties a phrase to its scene nodes
type binding struct {
	origin     scene.Vec2
	phraseNode scene.NodeID
	wordNodes  map[string]scene.NodeID
}

// OrchestratorConfig wires the orchestrator's collaborators
type OrchestratorConfig struct {
	Tree        *hierarchy.Tree
	Graph       scene.Graph
	Monitor     *timesync.Monitor // nil degrades to an unbound monitor
	Validator   *guard.Validator  // nil allocates a fresh one
	Diagnostics *diag.Queue       // optional
	FrameRate   func() float64    // current FPS for SyncResult, optional
	Phrase      PhraseRenderer
	Word        WordRenderer
	Glyph       GlyphRenderer
}

// Orchestrator synchronizes a phrase hierarchy to a timeline instant:
// computes per-node lifecycle state and dispatches to level renderers
// strictly parent-before-children, so children observe already-finalized
// parent position and opacity. Each instance owns its own tree, bindings
// and validator; instances share nothing.
type Orchestrator struct {
	tree      *hierarchy.Tree
	graph     scene.Graph
	monitor   *timesync.Monitor
	validator *guard.Validator
	diagq     *diag.Queue
	frameRate func() float64

	phrase PhraseRenderer
	word   WordRenderer
	glyph  GlyphRenderer

	bindings map[string]*binding
	frame    uint64
}

// NewOrchestrator creates an orchestrator and runs the static capability
// check on each configured renderer. Violations are recorded in the
// validator, never fatal.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Monitor == nil {
		cfg.Monitor = timesync.NewMonitor(nil)
	}
	if cfg.Validator == nil {
		cfg.Validator = guard.NewValidator()
	}
	if cfg.FrameRate == nil {
		cfg.FrameRate = func() float64 { return 0 }
	}

	o := &Orchestrator{
		tree:      cfg.Tree,
		graph:     cfg.Graph,
		monitor:   cfg.Monitor,
		validator: cfg.Validator,
		diagq:     cfg.Diagnostics,
		frameRate: cfg.FrameRate,
		phrase:    cfg.Phrase,
		word:      cfg.Word,
		glyph:     cfg.Glyph,
		bindings:  make(map[string]*binding),
	}

	o.checkStatic(hierarchy.LevelPhrase, cfg.Phrase.Capabilities())
	o.checkStatic(hierarchy.LevelWord, cfg.Word.Capabilities())
	o.checkStatic(hierarchy.LevelCharacter, cfg.Glyph.Capabilities())
	return o
}

func (o *Orchestrator) checkStatic(level hierarchy.Level, declared guard.OpSet) {
	for _, v := range o.validator.CheckImplementation(level, declared) {
		o.emitViolation(v)
	}
}

// Validator exposes the validator for diagnostics snapshots
func (o *Orchestrator) Validator() *guard.Validator {
	return o.validator
}

// Monitor exposes the drift monitor for diagnostics snapshots
func (o *Orchestrator) Monitor() *timesync.Monitor {
	return o.monitor
}

// Bind attaches a phrase to the scene at origin, creating its phrase and
// word display nodes. Rebinding an already-bound phrase only moves its
// origin.
func (o *Orchestrator) Bind(phraseID string, origin scene.Vec2) error {
	node, ok := o.tree.Node(phraseID)
	if !ok || node.Level != hierarchy.LevelPhrase {
		return fmt.Errorf("%w: %q", ErrUnknownObject, phraseID)
	}

	if b, ok := o.bindings[phraseID]; ok {
		b.origin = origin
		return nil
	}

	b := &binding{
		origin:     origin,
		phraseNode: o.graph.CreateNode(scene.Root),
		wordNodes:  make(map[string]scene.NodeID),
	}
	for _, wordID := range node.Children {
		b.wordNodes[wordID] = o.graph.CreateNode(b.phraseNode)
	}
	o.bindings[phraseID] = b
	return nil
}

// Unbind detaches a phrase from the scene and destroys its display nodes
func (o *Orchestrator) Unbind(phraseID string) {
	if b, ok := o.bindings[phraseID]; ok {
		o.graph.Destroy(b.phraseNode)
		delete(o.bindings, phraseID)
	}
}

// SyncAt synchronizes one phrase hierarchy to the timeline instant nowMs.
// The drift sample is diagnostic only and never gates dispatch. Renderer
// panics and errors are caught here and turned into Success=false; the
// pass is otherwise deterministic for fixed tree state and nowMs.
func (o *Orchestrator) SyncAt(objectID string, nowMs int64) (result SyncResult) {
	o.frame++
	o.monitor.Sample(nowMs)

	result = SyncResult{Success: true}
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Err = fmt.Errorf("render: renderer panic: %v", r)
			o.emitFailure(objectID, result.Err)
		}
		result.Accuracy = o.monitor.Accuracy()
		result.FrameRate = o.frameRate()
	}()

	phraseNode, ok := o.tree.Node(objectID)
	if !ok || phraseNode.Level != hierarchy.LevelPhrase {
		result.Success = false
		result.Err = fmt.Errorf("%w: %q", ErrUnknownObject, objectID)
		return result
	}
	if _, bound := o.bindings[objectID]; !bound {
		if err := o.Bind(objectID, scene.Vec2{}); err != nil {
			result.Success = false
			result.Err = err
			return result
		}
	}
	b := o.bindings[objectID]

	// Phrase first: children observe finalized group position/opacity
	phraseState := lifecycle.StateAt(nowMs, phraseNode.Range)
	if err := o.phrase.RenderPhrase(phraseState, phraseNode, b.origin, scene.PhraseOpsFor(o.graph, b.phraseNode)); err != nil {
		result.Success = false
		result.Err = fmt.Errorf("render: phrase renderer: %w", err)
		o.emitFailure(objectID, result.Err)
		return result
	}

	// Words in layout order, then their characters
	wordOffsetX := 0.0
	for _, wordID := range phraseNode.Children {
		wordNode, _ := o.tree.Node(wordID)
		sceneWord := b.wordNodes[wordID]

		chars := make([]hierarchy.Node, 0, len(wordNode.Children))
		for _, charID := range wordNode.Children {
			c, _ := o.tree.Node(charID)
			chars = append(chars, c)
		}

		wordState := lifecycle.StateAt(nowMs, wordNode.Range)
		offset := scene.Vec2{X: wordOffsetX}
		if err := o.word.RenderWord(wordState, wordNode, chars, offset, scene.WordOpsFor(o.graph, sceneWord)); err != nil {
			result.Success = false
			result.Err = fmt.Errorf("render: word renderer: %w", err)
			o.emitFailure(objectID, result.Err)
			return result
		}

		placeholders := o.graph.Children(sceneWord)
		baseX := 0.0
		for ci, charNode := range chars {
			if ci >= len(placeholders) {
				break
			}
			charState := lifecycle.StateAt(nowMs, charNode.Range)
			base := scene.Vec2{X: offset.X + baseX}
			if err := o.glyph.RenderGlyph(charState, charNode, base, scene.GlyphOpsFor(o.graph, placeholders[ci])); err != nil {
				result.Success = false
				result.Err = fmt.Errorf("render: glyph renderer: %w", err)
				o.emitFailure(objectID, result.Err)
				return result
			}
			baseX += float64(charNode.Width)
		}

		wordOffsetX += float64(wordNode.Width) + 1
	}

	result.Violations = o.validateProduced(phraseNode, b)
	return result
}

// validateProduced runs the runtime responsibility check over the touched
// subtree
func (o *Orchestrator) validateProduced(phraseNode hierarchy.Node, b *binding) []guard.Violation {
	var all []guard.Violation

	collect := func(vs []guard.Violation) {
		for _, v := range vs {
			o.emitViolation(v)
		}
		all = append(all, vs...)
	}

	collect(o.validator.CheckProduced(hierarchy.LevelPhrase, o.graph, b.phraseNode))
	for _, wordID := range phraseNode.Children {
		sceneWord := b.wordNodes[wordID]
		collect(o.validator.CheckProduced(hierarchy.LevelWord, o.graph, sceneWord))
		for _, placeholder := range o.graph.Children(sceneWord) {
			collect(o.validator.CheckProduced(hierarchy.LevelCharacter, o.graph, placeholder))
		}
	}
	return all
}

func (o *Orchestrator) emitViolation(v guard.Violation) {
	if o.diagq != nil {
		o.diagq.Push(diag.Event{
			Type:   diag.EventResponsibilityViolation,
			Frame:  o.frame,
			Detail: v.String(),
		})
	}
}

func (o *Orchestrator) emitFailure(objectID string, err error) {
	core.Log().Error("render failure", "object", objectID, "error", err)
	if o.diagq != nil {
		o.diagq.Push(diag.Event{
			Type:     diag.EventRenderFailure,
			ObjectID: objectID,
			Frame:    o.frame,
			Detail:   err.Error(),
		})
	}
}
