package scene

// memNode is one node record in the in-memory graph
type memNode struct {
	parent    NodeID
	children  []NodeID
	position  Vec2
	opacity   float64
	transform Transform
	content   *Content
	filters   []Filter
}

// MemoryGraph is an in-memory Graph backend used by tests, the headless
// simulator and the runtime validator's inspection path. Single-writer.
type MemoryGraph struct {
	nodes  map[NodeID]*memNode
	nextID NodeID
}

// NewMemoryGraph creates a graph containing only the root node
func NewMemoryGraph() *MemoryGraph {
	g := &MemoryGraph{
		nodes:  make(map[NodeID]*memNode),
		nextID: Root + 1,
	}
	g.nodes[Root] = &memNode{parent: -1, opacity: 1}
	return g
}

// CreateNode implements Graph
func (g *MemoryGraph) CreateNode(parent NodeID) NodeID {
	p, ok := g.nodes[parent]
	if !ok {
		return -1
	}
	id := g.nextID
	g.nextID++
	g.nodes[id] = &memNode{parent: parent, opacity: 1}
	p.children = append(p.children, id)
	return id
}

// Destroy implements Graph
func (g *MemoryGraph) Destroy(id NodeID) {
	if id == Root {
		return
	}
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, child := range append([]NodeID(nil), n.children...) {
		g.Destroy(child)
	}
	if p, ok := g.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(g.nodes, id)
}

// SetPosition implements Graph
func (g *MemoryGraph) SetPosition(id NodeID, p Vec2) {
	if n, ok := g.nodes[id]; ok {
		n.position = p
	}
}

// SetOpacity implements Graph
func (g *MemoryGraph) SetOpacity(id NodeID, opacity float64) {
	if n, ok := g.nodes[id]; ok {
		if opacity < 0 {
			opacity = 0
		}
		if opacity > 1 {
			opacity = 1
		}
		n.opacity = opacity
	}
}

// SetTransform implements Graph
func (g *MemoryGraph) SetTransform(id NodeID, tr Transform) {
	if n, ok := g.nodes[id]; ok {
		n.transform = tr
	}
}

// SetContent implements Graph
func (g *MemoryGraph) SetContent(id NodeID, c Content) {
	if n, ok := g.nodes[id]; ok {
		n.content = &c
	}
}

// ClearContent implements Graph
func (g *MemoryGraph) ClearContent(id NodeID) {
	if n, ok := g.nodes[id]; ok {
		n.content = nil
	}
}

// ApplyFilter implements Graph
func (g *MemoryGraph) ApplyFilter(id NodeID, f Filter) {
	if n, ok := g.nodes[id]; ok {
		n.filters = append(n.filters, f)
	}
}

// ClearFilters implements Graph
func (g *MemoryGraph) ClearFilters(id NodeID) {
	if n, ok := g.nodes[id]; ok {
		n.filters = nil
	}
}

// Children implements Graph
func (g *MemoryGraph) Children(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Inspect implements Graph
func (g *MemoryGraph) Inspect(id NodeID) NodeInfo {
	n, ok := g.nodes[id]
	if !ok {
		return NodeInfo{}
	}
	return NodeInfo{
		Exists:     true,
		ChildCount: len(n.children),
		HasContent: n.content != nil,
		Position:   n.position,
		Opacity:    n.opacity,
		Transform:  n.transform,
		Filters:    append([]Filter(nil), n.filters...),
	}
}

// ContentOf returns the node's primitive content for assertions and
// backend flattening; nil when the node has none
func (g *MemoryGraph) ContentOf(id NodeID) *Content {
	n, ok := g.nodes[id]
	if !ok || n.content == nil {
		return nil
	}
	c := *n.content
	return &c
}

// Resolve walks ancestry and returns a node's absolute position and
// effective opacity with parent transforms applied
func (g *MemoryGraph) Resolve(id NodeID) (Vec2, float64) {
	pos := Vec2{}
	opacity := 1.0
	scale := 1.0

	// Collect ancestry root-first
	var chain []NodeID
	for cur := id; cur != -1; {
		n, ok := g.nodes[cur]
		if !ok {
			return Vec2{}, 0
		}
		chain = append([]NodeID{cur}, chain...)
		cur = n.parent
	}

	for _, nid := range chain {
		n := g.nodes[nid]
		s := n.transform.Scale
		if s == 0 {
			s = 1
		}
		pos.X += (n.position.X + n.transform.Translate.X) * scale
		pos.Y += (n.position.Y + n.transform.Translate.Y) * scale
		scale *= s
		opacity *= n.opacity
	}
	return pos, opacity
}

// ContentNodes returns the ids of all nodes carrying primitive content,
// for backend flattening. Order is unspecified.
func (g *MemoryGraph) ContentNodes() []NodeID {
	var out []NodeID
	for id, n := range g.nodes {
		if n.content != nil {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the node count including the root
func (g *MemoryGraph) Len() int {
	return len(g.nodes)
}
