package models

// NodeKind tags the variant held by a Node
type NodeKind int

const (
	ScalarNode NodeKind = iota
	MappingNode
	SequenceNode
)

// Node is a generic markup tree: a scalar, an ordered mapping or a sequence.
// Dependency declarations are stored in this form and re-emitted verbatim.
type Node struct {
	Kind  NodeKind
	Text  string
	Keys  []string
	Items []*Node
}

// Scalar returns a text leaf
func Scalar(text string) *Node {
	return &Node{Kind: ScalarNode, Text: text}
}

// Mapping returns an empty ordered mapping
func Mapping() *Node {
	return &Node{Kind: MappingNode}
}

// Sequence returns a sequence of the given nodes
func Sequence(items ...*Node) *Node {
	return &Node{Kind: SequenceNode, Items: items}
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != MappingNode {
		return nil
	}
	for i, k := range n.Keys {
		if k == key {
			return n.Items[i]
		}
	}
	return nil
}

// Set stores value under key. An existing key keeps its position.
func (n *Node) Set(key string, value *Node) {
	for i, k := range n.Keys {
		if k == key {
			n.Items[i] = value
			return
		}
	}
	n.Keys = append(n.Keys, key)
	n.Items = append(n.Items, value)
}

// Len returns the number of entries of a mapping or sequence
func (n *Node) Len() int {
	if n == nil || n.Kind == ScalarNode {
		return 0
	}
	return len(n.Items)
}

// List returns the node as a list: sequence items, or the node itself.
func (n *Node) List() []*Node {
	switch {
	case n == nil:
		return nil
	case n.Kind == SequenceNode:
		return n.Items
	default:
		return []*Node{n}
	}
}

// String returns the text of a scalar, or "" for other kinds
func (n *Node) String() string {
	if n == nil || n.Kind != ScalarNode {
		return ""
	}
	return n.Text
}
