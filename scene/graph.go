// Package scene defines the display-graph capability surface the engine
// renders through. The engine never draws pixels; it issues position,
// opacity and content decisions against this interface and lets a backend
// (terminal, test memory graph) realize them.
package scene

// NodeID identifies a display node. Root is always node 0.
type NodeID int

// Root is the implicit top-level node every backend provides
const Root NodeID = 0

// Vec2 is a 2D position in backend units (terminal cells, pixels)
type Vec2 struct {
	X, Y float64
}

// Transform is a group transform applied to a node's subtree
type Transform struct {
	Translate Vec2
	Scale     float64 // 0 means identity
}

// Color is a backend-neutral RGB color
type Color struct {
	R, G, B uint8
}

// Content is the primitive visual content of a leaf node. Only
// character-level renderers may create or mutate it.
type Content struct {
	Text  string
	Color Color
	Bold  bool
}

// Filter is a visual effect applied to a node's content
type Filter string

const (
	FilterGlow    Filter = "glow"
	FilterSparkle Filter = "sparkle"
	FilterGlitch  Filter = "glitch"
	FilterDim     Filter = "dim"
)

// NodeInfo is an introspection snapshot used by the runtime validator
type NodeInfo struct {
	Exists     bool
	ChildCount int
	HasContent bool
	Position   Vec2
	Opacity    float64
	Transform  Transform
	Filters    []Filter
}

// Graph is the full display-graph surface. The engine treats it as opaque;
// renderers receive narrowed per-level views (PhraseOps, WordOps, GlyphOps)
// so most forbidden operations are impossible to express.
type Graph interface {
	// CreateNode attaches a new empty node under parent
	CreateNode(parent NodeID) NodeID

	// Destroy detaches a node and destroys its subtree
	Destroy(id NodeID)

	// SetPosition sets a node's position relative to its parent
	SetPosition(id NodeID, p Vec2)

	// SetOpacity sets a node's opacity in [0,1], multiplied down the tree
	SetOpacity(id NodeID, opacity float64)

	// SetTransform sets a node's group transform
	SetTransform(id NodeID, tr Transform)

	// SetContent creates or mutates a node's primitive content
	SetContent(id NodeID, c Content)

	// ClearContent removes a node's primitive content
	ClearContent(id NodeID)

	// ApplyFilter attaches a visual filter to a node
	ApplyFilter(id NodeID, f Filter)

	// ClearFilters removes all filters from a node
	ClearFilters(id NodeID)

	// Children returns a node's child ids in attach order
	Children(id NodeID) []NodeID

	// Inspect returns an introspection snapshot of a node
	Inspect(id NodeID) NodeInfo
}
