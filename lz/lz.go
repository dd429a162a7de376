// Package lz implements a greedy sliding-window tokenizer: it turns a
// byte sequence into a stream of literal-byte and (distance, length)
// back-reference tokens, and replays such a stream back into the
// original bytes. It performs no entropy coding itself; tokens are meant
// to be fed to an adaptive coder downstream.
package lz

import "github.com/pkg/errors"

const (
	// WindowSize is how far back a match may reach.
	WindowSize = 1 << 15
	// MinMatch is the shortest run worth emitting as a back-reference
	// instead of plain literals.
	MinMatch = 4
	// MaxMatch caps a single token's length so distances and lengths stay
	// small on the wire.
	MaxMatch = 258

	// hashLen is the number of leading bytes a candidate position is
	// indexed by. Matching MinMatch keeps every indexed candidate a
	// guaranteed MinMatch-prefix hit worth extending.
	hashLen = MinMatch

	// maxChainLen bounds how many candidate positions are tried per
	// input position. The tokenizer is greedy either way; a longer chain
	// only trades speed for slightly better matches.
	maxChainLen = 32
)

// A Token is one unit of tokenizer output: either a single literal byte
// (Literal true) or a back-reference covering Length bytes starting
// Distance bytes behind the current position.
type Token struct {
	Literal  bool
	Byte     byte
	Distance uint32
	Length   uint32
}

// Lit returns a literal-byte token.
func Lit(b byte) Token {
	return Token{Literal: true, Byte: b}
}

// Ref returns a back-reference token.
func Ref(distance, length uint32) Token {
	return Token{Distance: distance, Length: length}
}

type hashKey [hashLen]byte

// Tokenize scans src left to right, emitting at each position either the
// longest back-reference of at least MinMatch bytes found within the
// trailing WindowSize bytes, or a single literal. The parse is strictly
// greedy; no attempt is made to find a globally shorter tokenization.
func Tokenize(src []byte) []Token {
	tokens := make([]Token, 0, len(src)/2+1)
	candidates := make(map[hashKey][]int)

	index := func(pos int) {
		if pos+hashLen > len(src) {
			return
		}
		var key hashKey
		copy(key[:], src[pos:pos+hashLen])
		chain := candidates[key]
		if len(chain) >= maxChainLen {
			// Older positions fall out of the window first; keep the
			// recent half of the chain.
			chain = append(chain[:0], chain[len(chain)/2:]...)
		}
		candidates[key] = append(chain, pos)
	}

	i := 0
	for i < len(src) {
		bestLen, bestDist := 0, 0
		if i+hashLen <= len(src) {
			var key hashKey
			copy(key[:], src[i:i+hashLen])
			for c := len(candidates[key]) - 1; c >= 0; c-- {
				j := candidates[key][c]
				if i-j > WindowSize {
					break
				}
				l := matchLen(src, j, i)
				if l > bestLen {
					bestLen = l
					bestDist = i - j
				}
				if l >= MaxMatch {
					break
				}
			}
		}

		if bestLen >= MinMatch {
			tokens = append(tokens, Ref(uint32(bestDist), uint32(bestLen)))
			for k := 0; k < bestLen; k++ {
				index(i + k)
			}
			i += bestLen
		} else {
			tokens = append(tokens, Lit(src[i]))
			index(i)
			i++
		}
	}
	return tokens
}

// matchLen returns how many bytes starting at src[j] and src[i] agree,
// capped at MaxMatch. The regions may overlap (j < i always holds), which
// is what makes run-length-style references work.
func matchLen(src []byte, j, i int) int {
	l := 0
	for i+l < len(src) && l < MaxMatch && src[j+l] == src[i+l] {
		l++
	}
	return l
}

// Expand replays tokens into the byte sequence they were produced from.
// sizeHint, when non-zero, pre-sizes the output buffer. A back-reference
// reaching behind the start of the output is reported as an error.
func Expand(tokens []Token, sizeHint int) ([]byte, error) {
	out := make([]byte, 0, sizeHint)
	for _, tok := range tokens {
		if tok.Literal {
			out = append(out, tok.Byte)
			continue
		}
		start := len(out) - int(tok.Distance)
		if start < 0 || tok.Distance == 0 {
			return nil, errors.Errorf("lz: back-reference distance %d at output position %d", tok.Distance, len(out))
		}
		// Byte-at-a-time copy so references into the region being written
		// (distance < length) replicate correctly.
		for k := 0; k < int(tok.Length); k++ {
			out = append(out, out[start+k])
		}
	}
	return out, nil
}
