package huffman

import (
	"bytes"
	"math"
	"testing"
)

func encodeInts(t *testing.T, source []int64) (*Tree, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w := NewBitWriter(&buf)
	enc := NewEngine(NewFlatLiteralCoder())
	for _, v := range source {
		if _, err := enc.EncodeInt(w, v); err != nil {
			t.Fatalf("EncodeInt(%d): %v", v, err)
		}
	}
	if err := enc.WriteEnd(w); err != nil {
		t.Fatalf("WriteEnd: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return enc, &buf
}

type leafInfo struct {
	node  *Node
	depth int
}

func collectLeaves(n *Node, depth int, out *[]leafInfo) {
	if n == nil {
		return
	}
	if n.leaf() {
		*out = append(*out, leafInfo{node: n, depth: depth})
		return
	}
	collectLeaves(n.Low, depth+1, out)
	collectLeaves(n.High, depth+1, out)
}

func TestWeightConservation(t *testing.T) {
	source := []int64{4, 4, 7, 1, 4, 7, 9, 9, 9, 9, 2}
	enc, _ := encodeInts(t, source)
	if enc.root.Weight != uint64(len(source)) {
		t.Errorf("root weight = %d, want %d", enc.root.Weight, len(source))
	}
}

func TestKraftEquality(t *testing.T) {
	source := []int64{1, 2, 3, 4, 5, 1, 2, 1, 1, 3, 3, 6, 7}
	enc, _ := encodeInts(t, source)

	var leaves []leafInfo
	collectLeaves(enc.root, 0, &leaves)
	sum := 0.0
	for _, l := range leaves {
		sum += math.Pow(2, -float64(l.depth))
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Kraft sum = %v, want 1", sum)
	}
}

func TestNoOrphans(t *testing.T) {
	source := []int64{10, 20, 30, 10, 40, 20, 10}
	enc, _ := encodeInts(t, source)

	var leaves []leafInfo
	collectLeaves(enc.root, 0, &leaves)
	byNode := make(map[*Node]bool)
	nonEscape := 0
	for _, l := range leaves {
		if l.node.IsEscape {
			continue
		}
		nonEscape++
		byNode[l.node] = true
	}

	if len(enc.symbols.m) != nonEscape {
		t.Errorf("symbol table has %d entries, tree has %d non-escape leaves", len(enc.symbols.m), nonEscape)
	}
	seen := make(map[*Node]bool)
	for sym, leaf := range enc.symbols.m {
		if !byNode[leaf] {
			t.Errorf("symbol %v bound to a leaf not reachable from the root", sym)
		}
		if seen[leaf] {
			t.Errorf("two symbols bound to the same leaf")
		}
		seen[leaf] = true
		if leaf.Symbol != sym {
			t.Errorf("leaf for %v carries symbol %v", sym, leaf.Symbol)
		}
	}
}

// sameShape compares two trees node by node: structure, weights, escape
// marking, and symbols must all agree.
func sameShape(a, b *Node) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.Weight != b.Weight || a.IsEscape != b.IsEscape || a.leaf() != b.leaf() {
		return false
	}
	if a.leaf() && !a.IsEscape && a.Symbol != b.Symbol {
		return false
	}
	return sameShape(a.Low, b.Low) && sameShape(a.High, b.High)
}

func TestEncoderDecoderSynchrony(t *testing.T) {
	source := []int64{5, 3, 5, 5, 8, 3, 1, 5, 8, 8, 2, 2, 2, 5}
	enc, buf := encodeInts(t, source)

	r := NewBitReader(buf)
	dec := NewEngine(NewFlatLiteralCoder())
	for {
		_, end, err := dec.DecodeInt(r)
		if err != nil {
			t.Fatalf("DecodeInt: %v", err)
		}
		if end {
			break
		}
	}

	if !sameShape(enc.root, dec.root) {
		t.Error("encoder and decoder trees differ after processing the same stream")
	}
}

func TestBitExactness(t *testing.T) {
	source := []int64{9, 9, 1, 4, 9, 1, 1, 7}
	_, first := encodeInts(t, source)
	_, second := encodeInts(t, source)
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two fresh encodes of the same sequence differ")
	}
}

func TestFirstSymbolStartsWithEscapeBit(t *testing.T) {
	var buf bytes.Buffer
	w := NewBitWriter(&buf)
	enc := NewEngine(NewFlatLiteralCoder())
	if _, err := enc.EncodeInt(w, 42); err != nil {
		t.Fatalf("EncodeInt: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	// The escape leaf is the root's low child at t=0, so the stream must
	// open with a 0 bit.
	if buf.Bytes()[0]&0x80 != 0 {
		t.Errorf("first bit = 1, want 0 (path to the escape leaf)")
	}
}

func TestRepeatedSymbolTreeShape(t *testing.T) {
	enc, _ := encodeInts(t, []int64{6, 6})

	high := enc.root.High
	if high == nil || !high.leaf() || high.IsEscape {
		t.Fatal("after two occurrences, the symbol's leaf should be the root's high child")
	}
	if high.Weight != 2 {
		t.Errorf("symbol leaf weight = %d, want 2", high.Weight)
	}
	if enc.root.Low != enc.escape {
		t.Error("escape leaf should still be the root's low child")
	}
}

func TestAlternatingWeights(t *testing.T) {
	// [A, B, A, B, A]: A's leaf ends at weight 3, B's at 2, escape at 0.
	enc, _ := encodeInts(t, []int64{100, 200, 100, 200, 100})

	aLeaf := enc.symbols.Lookup(IntSymbol(100))
	bLeaf := enc.symbols.Lookup(IntSymbol(200))
	if aLeaf == nil || bLeaf == nil {
		t.Fatal("symbols missing from table")
	}
	if aLeaf.Weight != 3 {
		t.Errorf("A leaf weight = %d, want 3", aLeaf.Weight)
	}
	if bLeaf.Weight != 2 {
		t.Errorf("B leaf weight = %d, want 2", bLeaf.Weight)
	}
	if enc.escape.Weight != 0 {
		t.Errorf("escape weight = %d, want 0", enc.escape.Weight)
	}
	if enc.root.Weight != 5 {
		t.Errorf("root weight = %d, want 5", enc.root.Weight)
	}
}

func TestThreeDistinctSymbolsTreeShape(t *testing.T) {
	// [A, B, C]: four leaves (A, B, C, escape), three internal nodes,
	// leaf weights 1, 1, 1, 0.
	enc, _ := encodeInts(t, []int64{1, 2, 3})

	var leaves []leafInfo
	collectLeaves(enc.root, 0, &leaves)
	if len(leaves) != 4 {
		t.Fatalf("tree has %d leaves, want 4", len(leaves))
	}
	var internals int
	var count func(n *Node)
	count = func(n *Node) {
		if n == nil || n.leaf() {
			return
		}
		internals++
		count(n.Low)
		count(n.High)
	}
	count(enc.root)
	if internals != 3 {
		t.Errorf("tree has %d internal nodes, want 3", internals)
	}
	for _, l := range leaves {
		want := uint64(1)
		if l.node.IsEscape {
			want = 0
		}
		if l.node.Weight != want {
			t.Errorf("leaf weight = %d, want %d", l.node.Weight, want)
		}
	}
	if enc.root.Weight != 3 {
		t.Errorf("root weight = %d, want 3", enc.root.Weight)
	}
}

func TestSiblingOrderNonDecreasing(t *testing.T) {
	source := []int64{1, 2, 3, 1, 2, 1, 1, 4, 5, 4, 4, 4, 1, 6, 2, 2}
	enc, _ := encodeInts(t, source)

	var prev uint64
	for n := enc.sibling.head; n != nil; n = n.next {
		if n.Weight < prev {
			t.Fatalf("sibling order decreases: %d after %d", n.Weight, prev)
		}
		prev = n.Weight
	}
	if enc.sibling.head != enc.escape {
		t.Error("escape leaf is not first in sibling order")
	}
}

func TestRepeatedSymbolCodeLength(t *testing.T) {
	const k = 1000
	source := make([]int64, k)
	for i := range source {
		source[i] = 77
	}
	_, buf := encodeInts(t, source)
	// One bit per occurrence after the first, plus escape, literal and
	// sentinel overhead: anything past 2k bits means adaptation failed.
	if bits := buf.Len() * 8; bits > 2*k {
		t.Errorf("encoded %d occurrences into %d bits, want at most %d", k, bits, 2*k)
	}
}

func TestAlternatingSymbolsCodeLength(t *testing.T) {
	const k = 2000
	source := make([]int64, k)
	for i := range source {
		source[i] = int64(i % 2)
	}
	_, buf := encodeInts(t, source)
	// With the escape leaf sharing the tree, one of the two symbols codes
	// at depth 1 and the other at depth 2, so the steady state is under 2
	// bits per symbol.
	if bits := buf.Len() * 8; bits > 2*k+128 {
		t.Errorf("alternating pair took %d bits over %d symbols", bits, k)
	}
}

func TestDecodeExhaustedStream(t *testing.T) {
	dec := NewEngine(NewFlatLiteralCoder())
	r := NewBitReader(bytes.NewReader(nil))
	if _, _, err := dec.DecodeInt(r); err == nil {
		t.Error("decoding an empty stream should fail")
	}
}
