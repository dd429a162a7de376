package huffman

// SymbolTable maps a symbol identity to the leaf currently representing
// it in a CodeTree. It is not part of the coded stream: both encoder and
// decoder maintain their own copy, built up from the same sequence of
// insertions, which is exactly why their trees stay bit-for-bit
// identical.
type SymbolTable struct {
	m map[Symbol]*Node
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{m: make(map[Symbol]*Node)}
}

// Lookup returns the leaf bound to symbol, or nil if symbol has never
// been inserted.
func (t *SymbolTable) Lookup(symbol Symbol) *Node {
	return t.m[symbol]
}

// Set binds symbol to leaf, overwriting any previous binding. The engine
// itself never evicts a binding, but rebinding a symbol that was seen
// and dropped in the past is supported.
func (t *SymbolTable) Set(symbol Symbol, leaf *Node) {
	t.m[symbol] = leaf
}
