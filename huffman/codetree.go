package huffman

// Tree is the adaptive FGK Huffman engine: the code tree itself, its
// sibling index, the symbol table binding known symbols to leaves, and
// the LiteralCoder used to transmit a symbol's wire representation the
// first time it is seen. A Tree is owned by exactly one encoder or one
// decoder; nothing in it is safe for concurrent use.
type Tree struct {
	root, escape *Node
	sibling      *SiblingIndex
	symbols      *SymbolTable
	literal      LiteralCoder
}

// NewTree builds the initial two-node tree: a root with the escape leaf
// as its sole ("low") child, the "high" slot empty until the first
// symbol is admitted.
func NewTree(literal LiteralCoder) *Tree {
	root := &Node{isInternal: true}
	escape := &Node{Parent: root, IsEscape: true}
	root.Low = escape

	t := &Tree{
		root:    root,
		escape:  escape,
		sibling: newSiblingIndex(),
		symbols: newSymbolTable(),
		literal: literal,
	}
	t.sibling.insertEscape(escape)
	return t
}

// EncodeInt codes v, an integer-domain symbol, onto w. wasNew reports
// whether v had never been seen by this Tree before (and was therefore
// escaped and transmitted as a literal) rather than coded as a path to an
// existing leaf.
func (t *Tree) EncodeInt(w *BitWriter, v int64) (wasNew bool, err error) {
	return t.encode(w, IntSymbol(v), func(w *BitWriter) error {
		return t.literal.WriteInt(w, v)
	})
}

// DecodeInt reads one integer-domain symbol from r. end reports that the
// sentinel was read instead of a value, in which case v is meaningless.
func (t *Tree) DecodeInt(r *BitReader) (v int64, end bool, err error) {
	sym, end, err := t.decode(r, func(r *BitReader) (Symbol, bool, error) {
		val, isEnd, err := t.literal.ReadInt(r)
		if err != nil {
			return Symbol{}, false, err
		}
		return IntSymbol(val), isEnd, nil
	})
	if err != nil || end {
		return 0, end, err
	}
	return sym.Int, false, nil
}

// WriteEndInt writes the end-of-stream sentinel on the integer-domain
// variant of this stream.
func (t *Tree) WriteEndInt(w *BitWriter) error {
	return t.writeCode(w, t.escape, func(w *BitWriter) error {
		return t.literal.WriteEndInt(w)
	})
}

// EncodeTerm codes payload, the wire representation of a structured-term
// symbol, onto w. Two payloads are the same symbol iff they are
// byte-identical.
func (t *Tree) EncodeTerm(w *BitWriter, payload []byte) (wasNew bool, err error) {
	return t.encode(w, TermSymbol(string(payload)), func(w *BitWriter) error {
		return t.literal.WriteTerm(w, payload)
	})
}

// DecodeTerm reads one structured-term symbol from r.
func (t *Tree) DecodeTerm(r *BitReader) (payload []byte, end bool, err error) {
	sym, end, err := t.decode(r, func(r *BitReader) (Symbol, bool, error) {
		data, isEnd, err := t.literal.ReadTerm(r)
		if err != nil {
			return Symbol{}, false, err
		}
		return TermSymbol(string(data)), isEnd, nil
	})
	if err != nil || end {
		return nil, end, err
	}
	return []byte(sym.Term.(string)), false, nil
}

// WriteEndTerm writes the end-of-stream sentinel on the term-domain
// variant of this stream.
func (t *Tree) WriteEndTerm(w *BitWriter) error {
	return t.writeCode(w, t.escape, func(w *BitWriter) error {
		return t.literal.WriteEndTerm(w)
	})
}

// encode is the shared body of EncodeInt and EncodeTerm. A known symbol
// is coded as the path to its leaf; an unknown one as the path to the
// escape leaf followed by its literal representation, after which it is
// admitted to the tree. The escape path itself is never weight-updated;
// only the freshly inserted leaf's path is.
func (t *Tree) encode(w *BitWriter, sym Symbol, writeLiteral func(*BitWriter) error) (wasNew bool, err error) {
	if leaf := t.symbols.Lookup(sym); leaf != nil {
		if err := t.writeCodeNode(w, leaf); err != nil {
			return false, err
		}
		t.update(leaf)
		return false, nil
	}

	if err := t.writeCodeNode(w, t.escape); err != nil {
		return false, err
	}
	if err := writeLiteral(w); err != nil {
		return false, err
	}
	leaf := t.insert(sym)
	t.update(leaf)
	return true, nil
}

// decode is the shared body of DecodeInt and DecodeTerm, mirroring
// encode step for step so both sides apply the identical update after
// every symbol.
func (t *Tree) decode(r *BitReader, readLiteral func(*BitReader) (Symbol, bool, error)) (sym Symbol, end bool, err error) {
	cur := t.root
	for {
		if cur == nil {
			return Symbol{}, false, ErrInvariantViolation
		}
		if cur.leaf() {
			break
		}
		bit, err := r.ReadBit()
		if err != nil {
			return Symbol{}, false, err
		}
		if bit == 0 {
			cur = cur.Low
		} else {
			cur = cur.High
		}
	}

	if cur.IsEscape {
		sym, isEnd, err := readLiteral(r)
		if err != nil {
			return Symbol{}, false, ErrLiteralReadFailure
		}
		if isEnd {
			return Symbol{}, true, nil
		}
		leaf := t.insert(sym)
		t.update(leaf)
		return sym, false, nil
	}

	t.update(cur)
	return cur.Symbol, false, nil
}

// writeCodeNode emits the path from the root to leaf as bits: 0 for a
// low-child step, 1 for a high-child step. The recursion reaches the
// root first and emits on the way back down, so bits leave in MSB-first
// order without an intermediate buffer.
func (t *Tree) writeCodeNode(w *BitWriter, leaf *Node) error {
	return writeCodeRec(w, leaf)
}

// writeCode emits leaf's path and then calls extra to append whatever
// follows it, which for the end-of-stream case is the sentinel literal.
func (t *Tree) writeCode(w *BitWriter, leaf *Node, extra func(*BitWriter) error) error {
	if err := writeCodeRec(w, leaf); err != nil {
		return err
	}
	return extra(w)
}

func writeCodeRec(w *BitWriter, n *Node) error {
	if n.Parent == nil {
		return nil
	}
	if err := writeCodeRec(w, n.Parent); err != nil {
		return err
	}
	bit := 0
	if n.Parent.High == n {
		bit = 1
	}
	return w.WriteBit(bit)
}

// insert performs the FGK split at the escape leaf's current location
// and returns the newly created leaf.
func (t *Tree) insert(sym Symbol) *Node {
	escape := t.escape
	parent := escape.Parent

	var leaf *Node
	if parent.High == nil {
		// Bootstrap case: escape is still the root's only child.
		leaf = &Node{Parent: parent, Symbol: sym}
		parent.High = leaf
		t.sibling.insertAfter(escape, leaf)
	} else {
		// Normal case: split the escape leaf's slot into a fresh
		// internal node carrying escape as its low child and the new
		// leaf as its high child.
		internal := &Node{Parent: parent, isInternal: true, Weight: escape.Weight}
		if parent.Low == escape {
			parent.Low = internal
		} else {
			parent.High = internal
		}
		internal.Low = escape
		escape.Parent = internal

		leaf = &Node{Parent: internal, Symbol: sym}
		internal.High = leaf

		t.sibling.insertAfter(escape, internal)
		t.sibling.insertAfter(internal, leaf)
	}

	t.symbols.Set(sym, leaf)
	return leaf
}

// update propagates a one-symbol weight increase from leaf to the root,
// repairing the sibling property along the way: before each increment
// the node is swapped with its block's leader, unless the leader is the
// node itself, its parent, or its child.
func (t *Tree) update(leaf *Node) {
	n := leaf
	for n != nil {
		if n.Parent == nil {
			// The root has no sibling and so never participates in the
			// block/leader bookkeeping; it simply accumulates weight.
			n.Weight++
			break
		}

		leader := t.sibling.leaderOfBlock(n)
		if leader != n && leader != n.Parent && n != leader.Parent {
			swapInTree(n, leader)
			t.sibling.swap(n, leader)
		}
		t.sibling.incrementWeight(n)

		n = n.Parent
	}
}

// swapInTree exchanges n and leader's positions as children of their
// respective parents. When n and leader are already siblings under the
// same parent this degenerates to swapping which slot (low/high) each
// occupies, since exchanging their parent pointers would otherwise alias
// the same parent's child slots mid-update.
func swapInTree(n, leader *Node) {
	np, lp := n.Parent, leader.Parent
	if np == lp {
		p := np
		if p.Low == n {
			p.Low, p.High = leader, n
		} else {
			p.Low, p.High = n, leader
		}
		return
	}

	if np.Low == n {
		np.Low = leader
	} else {
		np.High = leader
	}
	if lp.Low == leader {
		lp.Low = n
	} else {
		lp.High = n
	}
	n.Parent, leader.Parent = lp, np
}
