package huffman

import (
	"log"
	"math"
)

// logaddexp computes log(exp(x) + exp(y)) without the intermediate
// overflow/underflow a naive implementation would suffer.
func logaddexp(x, y float64) float64 {
	tmp := x - y
	if tmp > 0 {
		return x + math.Log1p(math.Exp(-tmp))
	}
	return y + math.Log1p(math.Exp(tmp))
}

// ctwNode represents one suffix in a context tree weighting model. It
// holds the log probability of the bits seen so far given the suffix
// this node represents.
type ctwNode struct {
	logProb float64

	zeros, ones uint32
	ktLogProb   float64

	zeroChild, oneChild *ctwNode
}

// krichevskyTrofimov folds bit into node's Krichevsky-Trofimov estimator.
func krichevskyTrofimov(node *ctwNode, bit int) {
	a := float64(node.zeros)
	b := float64(node.ones)
	if bit == 0 {
		node.ktLogProb += math.Log(a+0.5) - math.Log(a+b+1)
		node.zeros++
	} else {
		node.ktLogProb += math.Log(b+0.5) - math.Log(a+b+1)
		node.ones++
	}
}

// ctwSnapshot records a ctwNode's mutable fields before ctwUpdate touches
// it, and whether ctwUpdate allocated the node itself, so a speculative
// update (Prob0) can be undone exactly.
type ctwSnapshot struct {
	node  *ctwNode
	state ctwNode
	isNew bool
}

// ctwUpdate folds a new bit, following the len(context)-deep path implied
// by context, into the tree rooted at root, and returns a snapshot of
// every node it touched, oldest (root) first, so the caller can restore
// the pre-update state with ctwRevert.
func ctwUpdate(root *ctwNode, context []int, bit int) []ctwSnapshot {
	path := make([]ctwSnapshot, 0, len(context)+1)
	node := root
	path = append(path, ctwSnapshot{node: node, state: *node})
	krichevskyTrofimov(node, bit)

	for d := 0; d < len(context); d++ {
		isNew := false
		if context[len(context)-1-d] == 0 {
			if node.zeroChild == nil {
				node.zeroChild = &ctwNode{}
				isNew = true
			}
			node = node.zeroChild
		} else {
			if node.oneChild == nil {
				node.oneChild = &ctwNode{}
				isNew = true
			}
			node = node.oneChild
		}
		path = append(path, ctwSnapshot{node: node, state: *node, isNew: isNew})
		krichevskyTrofimov(node, bit)
	}

	for i := len(path) - 1; i >= 0; i-- {
		n := path[i].node
		if n.zeroChild == nil && n.oneChild == nil {
			n.logProb = n.ktLogProb
			continue
		}
		var zp, op float64
		if n.zeroChild != nil {
			zp = n.zeroChild.logProb
		}
		if n.oneChild != nil {
			op = n.oneChild.logProb
		}
		n.logProb = logaddexp(math.Log(0.5)+n.ktLogProb, math.Log(0.5)+zp+op)
	}
	return path
}

// ctwRevert restores every node in path to the state ctwUpdate found it
// in, discarding any node ctwUpdate allocated along the way.
func ctwRevert(path []ctwSnapshot) {
	for _, ss := range path {
		*ss.node = ss.state
	}
}

// BitModel is an adaptive, context-tree-weighted probability source for a
// binary sequence: it is the Model an arithmetic coder consults before
// each bit and informs after. Unlike a static frequency table, its
// prediction for the next bit depends on the last depth bits actually
// observed, so it adapts to local structure in the literal payload
// stream rather than treating every bit as independent.
type BitModel struct {
	context []int
	root    *ctwNode
}

// NewBitModel returns a BitModel whose context window holds the last
// depth bits (initially all zero).
func NewBitModel(depth int) *BitModel {
	return &BitModel{
		context: make([]int, depth),
		root:    &ctwNode{},
	}
}

// Prob0 returns the model's current estimate that the next bit is zero.
// It probes by speculatively updating the tree with a zero bit and
// reverting, leaving the model's real state untouched.
func (m *BitModel) Prob0() float64 {
	before := m.root.logProb
	path := ctwUpdate(m.root, m.context, 0)
	after := m.root.logProb
	ctwRevert(path)
	return math.Exp(after - before)
}

// Observe folds bit into the model permanently and slides it into the
// context window.
func (m *BitModel) Observe(bit int) {
	if bit != 0 && bit != 1 {
		log.Panicf("huffman: BitModel.Observe got non-binary bit %d", bit)
	}
	ctwUpdate(m.root, m.context, bit)
	copy(m.context, m.context[1:])
	m.context[len(m.context)-1] = bit
}

