package huffman

import "github.com/pkg/errors"

// ErrLiteralReadFailure is returned when a LiteralCoder could not recover
// a symbol after an escape was decoded. The tree is left unchanged: the
// escape leaf's own weight is never touched on the escape path (see the
// note on Tree.encode), so no partial insert needs to be undone.
var ErrLiteralReadFailure = errors.New("huffman: literal coder failed to read a symbol after escape")

// ErrInvariantViolation reports an internal consistency failure: a
// decode walk descended into a nil child slot. It should never occur
// on a stream written by a matching encoder; when it does, the
// engine that produced it must not be used for further operations.
var ErrInvariantViolation = errors.New("huffman: internal invariant violation")
