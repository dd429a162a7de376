// Package huffman implements an FGK-style adaptive Huffman code tree.
//
// The tree self-trains from the traffic it sees: a symbol observed for the
// first time is escaped and handed to a LiteralCoder for verbatim
// transmission, then admitted as a new leaf; a symbol seen before is coded
// as the path from the root to its existing leaf. After every symbol the
// tree is rebalanced in amortised constant time using the sibling-block
// invariant described in Node and SiblingIndex.
//
// Below is an example of using this package to encode a slice of byte
// symbols:
//
//	enc := huffman.NewEngine(huffman.NewFlatLiteralCoder())
//	var buf bytes.Buffer
//	w := huffman.NewBitWriter(&buf)
//	for _, b := range data {
//	    enc.EncodeInt(w, int64(b))
//	}
//	enc.WriteEnd(w)
//	w.Flush()
package huffman
