package doc

import (
	"errors"
	"maps"

	"github.com/google/uuid"
)

var (
	// ErrNilNode is returned when a nil node is passed to an attach operation.
	ErrNilNode = errors.New("node must not be nil")

	// ErrSelfParent is returned by [Node.AppendChild] when a node is appended
	// to itself.
	ErrSelfParent = errors.New("node cannot be its own parent")

	// ErrAncestorChild is returned by [Node.AppendChild] when the appended
	// node is an ancestor of the target, which would create a cycle.
	ErrAncestorChild = errors.New("node cannot be reparented under its own descendant")
)

// Metadata stores string key-value pairs attached to a node. It is the
// generic out-of-band annotation slot of the document model; consumers
// should namespace their keys to avoid collisions with unrelated tools.
// Metadata maps are never nil after NewNode.
type Metadata map[string]string

// NodeType identifies the kind of content a node holds.
type NodeType string

// Node types. Frames are the only grouping type that participates in
// structural operations; the others are ordinary content.
const (
	NodeTypeFrame NodeType = "FRAME"
	NodeTypeGroup NodeType = "GROUP"
	NodeTypeText  NodeType = "TEXT"
	NodeTypeShape NodeType = "SHAPE"
	NodeTypeImage NodeType = "IMAGE"
)

// parent is anything that can own child nodes: a *Page or another *Node.
type parent interface {
	removeChild(n *Node)
	childList() *[]*Node
}

// Node is a content unit in a document tree. A node belongs to at most one
// parent (a page or another node) at a time; AppendChild moves it, Clone
// duplicates it with fresh identities.
//
// The zero value is not usable - create nodes with [NewNode].
type Node struct {
	ID     string   // Unique identifier, assigned at creation
	Type   NodeType // Content kind; NodeTypeFrame nodes can act as containers
	Name   string   // Display name
	X, Y   float64  // Position relative to the parent
	Width  float64
	Height float64
	Hidden bool // Not rendered, but still part of the tree
	Locked bool // Protected from interactive edits
	Meta   Metadata

	children []*Node
	owner    parent
}

// NewNode creates a node of the given type with a fresh unique ID and an
// empty metadata map. The node starts detached.
func NewNode(t NodeType, name string) *Node {
	return &Node{
		ID:   uuid.NewString(),
		Type: t,
		Name: name,
		Meta: Metadata{},
	}
}

// IsFrame reports whether the node is a frame (container-type) node.
func (n *Node) IsFrame() bool { return n.Type == NodeTypeFrame }

// Children returns the node's direct children in order. The returned slice
// is a copy; mutating it does not affect the node.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return len(n.children) }

// AppendChild attaches c as the last child of n, detaching it from its
// previous parent first. The node graph moves; nothing is copied.
// Returns ErrSelfParent or ErrAncestorChild if the attachment would create
// a cycle.
func (n *Node) AppendChild(c *Node) error {
	if c == nil {
		return ErrNilNode
	}
	if c == n {
		return ErrSelfParent
	}
	for p := n.owner; p != nil; {
		pn, ok := p.(*Node)
		if !ok {
			break
		}
		if pn == c {
			return ErrAncestorChild
		}
		p = pn.owner
	}
	attach(n, c)
	return nil
}

// Detach removes the node from its parent, if any. The node keeps its
// children and can be re-attached elsewhere.
func (n *Node) Detach() {
	if n.owner != nil {
		n.owner.removeChild(n)
		n.owner = nil
	}
}

// Remove destroys the node: it is detached from its parent and should not
// be used afterwards. Descendants are destroyed with it.
func (n *Node) Remove() {
	n.Detach()
	n.children = nil
}

// Clone returns a deep copy of the node with fresh IDs throughout. The
// copy preserves type, name, geometry, hidden/locked state, metadata, and
// child order, but has its own identity and starts detached.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:     uuid.NewString(),
		Type:   n.Type,
		Name:   n.Name,
		X:      n.X,
		Y:      n.Y,
		Width:  n.Width,
		Height: n.Height,
		Hidden: n.Hidden,
		Locked: n.Locked,
		Meta:   maps.Clone(n.Meta),
	}
	if c.Meta == nil {
		c.Meta = Metadata{}
	}
	for _, child := range n.children {
		attach(c, child.Clone())
	}
	return c
}

func (n *Node) removeChild(c *Node) {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) childList() *[]*Node { return &n.children }

// attach detaches c from its current parent and appends it to p.
func attach(p parent, c *Node) {
	if c.owner != nil {
		c.owner.removeChild(c)
	}
	list := p.childList()
	*list = append(*list, c)
	c.owner = p
}
