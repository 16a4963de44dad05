package ast

import (
	"errors"
	"fmt"
)

// Default ceilings for a single compilation.
const (
	DefaultMaxNodes = 10000
	DefaultMaxDepth = 100
)

var (
	// ErrResourceExhausted is returned by New once the node ceiling is reached.
	ErrResourceExhausted = errors.New("ast: node limit exceeded")

	// ErrDepthExceeded is returned by AddChild when the attach would make
	// the tree deeper than the depth ceiling.
	ErrDepthExceeded = errors.New("ast: depth limit exceeded")

	// ErrIndexOutOfRange is returned by RemoveChild and ReplaceChild.
	ErrIndexOutOfRange = errors.New("ast: child index out of range")

	// ErrInvalidNode is returned for NoNode, unknown or freed handles.
	ErrInvalidNode = errors.New("ast: invalid node")

	// ErrAlreadyAttached is returned when a node that already has a parent
	// is attached somewhere else.
	ErrAlreadyAttached = errors.New("ast: node already has a parent")

	// ErrCycle is returned when attaching would make a node its own ancestor.
	ErrCycle = errors.New("ast: attach would create a cycle")
)

// Limits bounds the size of one tree.
type Limits struct {
	MaxNodes int
	MaxDepth int
}

// DefaultLimits returns the standard ceilings.
func DefaultLimits() Limits {
	return Limits{MaxNodes: DefaultMaxNodes, MaxDepth: DefaultMaxDepth}
}

// Metrics reports how much of the limits a tree has consumed since the last
// ResetMetrics.
type Metrics struct {
	Nodes    int // nodes created
	MaxDepth int // deepest root-to-leaf depth seen on attach
}

type node struct {
	kind     Kind
	parent   NodeID
	children []NodeID
	props    map[string]Value
	pos      Position
	height   int // edges on the longest path down to a leaf
	live     bool
}

// Tree is an arena of syntax nodes.
//
// Handles are never reused, so a freed NodeID stays invalid for the lifetime
// of the tree and a second Free of it is harmless.
type Tree struct {
	limits  Limits
	nodes   []node // index 0 is the NoNode sentinel
	metrics Metrics
	live    int
	root    NodeID
}

// NewTree creates an empty tree. Zero or negative limit fields fall back to
// the defaults.
func NewTree(limits Limits) *Tree {
	if limits.MaxNodes <= 0 {
		limits.MaxNodes = DefaultMaxNodes
	}
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = DefaultMaxDepth
	}
	return &Tree{
		limits: limits,
		nodes:  make([]node, 1, 64),
	}
}

// Limits returns the ceilings this tree enforces.
func (t *Tree) Limits() Limits { return t.limits }

// Metrics returns the counters since the last reset.
func (t *Tree) Metrics() Metrics { return t.metrics }

// ResetMetrics clears the node and depth counters so a new, independent
// parse can reuse the tree without inheriting the previous counts.
func (t *Tree) ResetMetrics() { t.metrics = Metrics{} }

// Live returns the number of nodes that have been created and not freed.
func (t *Tree) Live() int { return t.live }

// Root returns the node registered with SetRoot, or NoNode.
func (t *Tree) Root() NodeID { return t.root }

// SetRoot records the program node of the tree.
func (t *Tree) SetRoot(id NodeID) { t.root = id }

// New allocates a detached node of the given kind.
func (t *Tree) New(kind Kind) (NodeID, error) {
	if t.metrics.Nodes >= t.limits.MaxNodes {
		return NoNode, fmt.Errorf("%w (%d)", ErrResourceExhausted, t.limits.MaxNodes)
	}
	t.metrics.Nodes++
	t.live++
	t.nodes = append(t.nodes, node{kind: kind, live: true})
	return NodeID(len(t.nodes) - 1), nil
}

// Valid reports whether id refers to a live node.
func (t *Tree) Valid(id NodeID) bool {
	return id > NoNode && int(id) < len(t.nodes) && t.nodes[id].live
}

func (t *Tree) get(id NodeID) *node {
	if !t.Valid(id) {
		return nil
	}
	return &t.nodes[id]
}

// Kind returns the kind of a node, or KindInvalid.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.get(id); n != nil {
		return n.kind
	}
	return KindInvalid
}

// Parent returns the parent handle, or NoNode for roots and invalid ids.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.parent
	}
	return NoNode
}

// Len returns the number of children.
func (t *Tree) Len(id NodeID) int {
	if n := t.get(id); n != nil {
		return len(n.children)
	}
	return 0
}

// Child returns the i-th child, or NoNode when out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.get(id)
	if n == nil || i < 0 || i >= len(n.children) {
		return NoNode
	}
	return n.children[i]
}

// Children returns a copy of the child list.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.get(id)
	if n == nil {
		return nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Pos returns the source position recorded for a node.
func (t *Tree) Pos(id NodeID) Position {
	if n := t.get(id); n != nil {
		return n.pos
	}
	return Position{}
}

// SetPos records the source position of a node.
func (t *Tree) SetPos(id NodeID, pos Position) {
	if n := t.get(id); n != nil {
		n.pos = pos
	}
}

// Depth returns the number of edges between id and its root.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		d++
	}
	return d
}

// AddChild appends child to parent's child list and takes ownership of it.
func (t *Tree) AddChild(parent, child NodeID) error {
	if err := t.checkAttach(parent, child); err != nil {
		return err
	}
	p := &t.nodes[parent]
	p.children = append(p.children, child)
	t.nodes[child].parent = parent
	t.raiseHeights(parent, t.nodes[child].height+1)
	return nil
}

// checkAttach validates that child may become a child of parent.
func (t *Tree) checkAttach(parent, child NodeID) error {
	if !t.Valid(parent) || !t.Valid(child) {
		return ErrInvalidNode
	}
	if t.nodes[child].parent != NoNode {
		return ErrAlreadyAttached
	}
	depth := 0
	for p := parent; p != NoNode; p = t.nodes[p].parent {
		if p == child {
			return ErrCycle
		}
		if p != parent {
			depth++
		}
	}
	total := depth + 1 + t.nodes[child].height
	if total > t.limits.MaxDepth {
		return fmt.Errorf("%w (%d)", ErrDepthExceeded, t.limits.MaxDepth)
	}
	if total > t.metrics.MaxDepth {
		t.metrics.MaxDepth = total
	}
	return nil
}

// raiseHeights propagates a new minimum height up the ancestor chain,
// stopping as soon as an ancestor is already tall enough.
func (t *Tree) raiseHeights(id NodeID, h int) {
	for id != NoNode {
		n := &t.nodes[id]
		if n.height >= h {
			return
		}
		n.height = h
		id = n.parent
		h++
	}
}

// recomputeHeights recalculates heights from id upwards after a removal.
func (t *Tree) recomputeHeights(id NodeID) {
	for id != NoNode {
		n := &t.nodes[id]
		h := 0
		for _, c := range n.children {
			if c == NoNode {
				continue
			}
			if ch := t.nodes[c].height + 1; ch > h {
				h = ch
			}
		}
		if h == n.height {
			return
		}
		n.height = h
		id = n.parent
	}
}

// RemoveChild detaches and frees the i-th child of parent.
func (t *Tree) RemoveChild(parent NodeID, i int) error {
	p := t.get(parent)
	if p == nil {
		return ErrInvalidNode
	}
	if i < 0 || i >= len(p.children) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(p.children))
	}
	old := p.children[i]
	p.children = append(p.children[:i], p.children[i+1:]...)
	t.nodes[old].parent = NoNode
	t.Free(old)
	t.recomputeHeights(parent)
	return nil
}

// ReplaceChild puts child at index i of parent and frees the node that was
// there. The new child must be detached.
func (t *Tree) ReplaceChild(parent NodeID, i int, child NodeID) error {
	p := t.get(parent)
	if p == nil {
		return ErrInvalidNode
	}
	if i < 0 || i >= len(p.children) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(p.children))
	}
	old := p.children[i]
	if old == child {
		return nil
	}

	// Validate against the tree as it will look once old is gone.
	t.nodes[old].parent = NoNode
	p.children[i] = NoNode
	t.recomputeHeights(parent)
	if err := t.checkAttach(parent, child); err != nil {
		p.children[i] = old
		t.nodes[old].parent = parent
		t.raiseHeights(parent, t.nodes[old].height+1)
		return err
	}

	p.children[i] = child
	t.nodes[child].parent = parent
	t.raiseHeights(parent, t.nodes[child].height+1)
	t.Free(old)
	return nil
}

// Free releases a node and its whole subtree, children first. Freeing
// NoNode or an already freed node does nothing. If the node is still
// attached it is unlinked from its parent.
func (t *Tree) Free(id NodeID) {
	n := t.get(id)
	if n == nil {
		return
	}
	if parent := n.parent; parent != NoNode && t.Valid(parent) {
		p := &t.nodes[parent]
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		n.parent = NoNode
		t.recomputeHeights(parent)
	}
	t.free(id)
	if t.root == id {
		t.root = NoNode
	}
}

func (t *Tree) free(id NodeID) {
	n := &t.nodes[id]
	for _, c := range n.children {
		if t.Valid(c) {
			t.nodes[c].parent = NoNode
			t.free(c)
		}
	}
	n.children = nil
	n.props = nil
	n.live = false
	t.live--
}

// Walk calls fn for id and every descendant in pre-order. Returning false
// from fn skips that node's children.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	n := t.get(id)
	if n == nil || !fn(id) {
		return
	}
	for _, c := range n.children {
		t.Walk(c, fn)
	}
}
