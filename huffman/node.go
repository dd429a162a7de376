package huffman

// A Node is either an internal node (Low and High both non-nil, no
// Symbol) or a leaf (Low and High both nil, one Symbol or the escape
// marker IsEscape). Every node carries its parent, its weight, and its
// position in the sibling order (prev/next), letting the tree be walked
// both leaf-to-root (code emission, weight update) and root-to-leaf
// (decode) via plain pointers. The pointer cycles this creates are
// deliberate; the garbage collector handles the lifetime tangle.
type Node struct {
	Parent     *Node
	Low, High  *Node
	Weight     uint64
	Symbol     Symbol
	IsEscape   bool
	isInternal bool

	// sibling-order doubly linked list position; maintained by
	// SiblingIndex and not meaningful outside it. The root is never
	// linked in here: it has no sibling, so it never participates in
	// leader lookups or swaps, only in the weight-propagation walk.
	prev, next *Node
}

// leaf reports whether n is a leaf (has a symbol, possibly the escape
// marker) rather than an internal branch node.
func (n *Node) leaf() bool {
	return !n.isInternal
}
