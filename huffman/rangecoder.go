package huffman

import "github.com/pkg/errors"

const (
	rangeCodeBits = 32
	rangeTop      = (uint64(1) << rangeCodeBits) - 1
	rangeFirstQtr = rangeTop/4 + 1
	rangeHalf     = 2 * rangeFirstQtr
	rangeThirdQtr = 3 * rangeFirstQtr

	rangeTopDbl = float64(rangeTop)
)

// ErrRangeDecodeExhausted is returned when a RangeDecoder needed more
// coded bits than the underlying BitReader had left to give.
var ErrRangeDecodeExhausted = errors.New("huffman: range decoder ran out of coded bits")

// RangeEncoder performs Witten-Neal-Cleary arithmetic coding against a
// bit model, one bit at a time, writing its output to a bit sink as it
// goes rather than buffering a whole symbol's worth of probability
// intervals first.
//
// The matching RangeDecoder reads rangeCodeBits ahead of the bit it is
// decoding, so a coded run cannot share a bit stream with raw bits that
// follow it; callers that interleave coded runs with raw bits must
// delimit each run themselves (see ArithLiteralCoder).
type RangeEncoder struct {
	w     bitWriter
	model Model
	low   uint64
	high  uint64
	fbits uint64
}

// Model is a probabilistic model over a sequence of bits: the interface
// RangeEncoder and RangeDecoder consult before coding each bit and inform
// afterwards. BitModel is the adaptive implementation; a fixed Prob0 also
// satisfies it trivially for testing.
type Model interface {
	Prob0() float64
	Observe(bit int)
}

// NewRangeEncoder returns a RangeEncoder that writes to w, scored by
// model.
func NewRangeEncoder(w bitWriter, model Model) *RangeEncoder {
	return &RangeEncoder{w: w, model: model, high: rangeTop}
}

// splitPoint divides [low, high] at the model's zero probability, pinned
// so that both halves stay non-empty even when the model is near-certain.
// Encoder and decoder must compute the exact same split for the same
// state, which is why the pinning lives here and not at either call site.
func splitPoint(low, high uint64, prob0 float64) uint64 {
	arange := (high - low) + 1
	split := low + arange*uint64(prob0*rangeTopDbl)/rangeTop
	if split <= low {
		split = low + 1
	}
	if split > high {
		split = high
	}
	return split
}

// EncodeBit codes one bit against the model's current prediction, then
// informs the model of the outcome.
func (e *RangeEncoder) EncodeBit(bit int) error {
	prob0 := e.model.Prob0()
	e.model.Observe(bit)

	split := splitPoint(e.low, e.high, prob0)

	if bit == 1 {
		e.low = split
	} else {
		e.high = split - 1
	}

	for {
		switch {
		case e.high < rangeHalf:
			if err := e.bitPlusFollow(0); err != nil {
				return err
			}
		case e.low >= rangeHalf:
			if err := e.bitPlusFollow(1); err != nil {
				return err
			}
			e.low -= rangeHalf
			e.high -= rangeHalf
		case e.low >= rangeFirstQtr && e.high < rangeThirdQtr:
			e.fbits++
			e.low -= rangeFirstQtr
			e.high -= rangeFirstQtr
		default:
			return nil
		}
		e.low *= 2
		e.high = 2*e.high + 1
	}
}

// Flush emits the bits needed to disambiguate the final interval. Call it
// exactly once, after the last EncodeBit, before any unrelated bits are
// written to the same BitWriter.
func (e *RangeEncoder) Flush() error {
	e.fbits++
	if e.low < rangeFirstQtr {
		return e.bitPlusFollow(0)
	}
	return e.bitPlusFollow(1)
}

func (e *RangeEncoder) bitPlusFollow(bit int) error {
	if err := e.w.WriteBit(bit); err != nil {
		return err
	}
	negbit := 1 - bit
	for ; e.fbits > 0; e.fbits-- {
		if err := e.w.WriteBit(negbit); err != nil {
			return err
		}
	}
	return nil
}

// RangeDecoder is the receiving half of RangeEncoder.
type RangeDecoder struct {
	r     bitReader
	model Model
	low   uint64
	high  uint64
	value uint64

	garbage int
}

// NewRangeDecoder returns a RangeDecoder reading from r, priming its
// internal value with the first rangeCodeBits coded bits.
func NewRangeDecoder(r bitReader, model Model) (*RangeDecoder, error) {
	d := &RangeDecoder{r: r, model: model, high: rangeTop}
	for i := 0; i < rangeCodeBits; i++ {
		bit, err := d.readBit()
		if err != nil {
			return nil, err
		}
		d.value = 2*d.value + bit
	}
	return d, nil
}

// readBit reads one coded bit, substituting harmless padding once the
// underlying stream is exhausted so the final few rescale steps (which
// the encoder's Flush does not itself pad for) still succeed, up to a
// bounded tolerance.
func (d *RangeDecoder) readBit() (uint64, error) {
	bit, err := d.r.ReadBit()
	if err == nil {
		return uint64(bit), nil
	}
	if err != ErrBitStreamExhausted {
		return 0, err
	}
	d.garbage++
	if d.garbage > rangeCodeBits-2 {
		return 0, ErrRangeDecodeExhausted
	}
	return 1, nil
}

// DecodeBit decodes one bit against the model's current prediction, then
// informs the model of the outcome, mirroring EncodeBit step for step.
func (d *RangeDecoder) DecodeBit() (int, error) {
	prob0 := d.model.Prob0()

	split := splitPoint(d.low, d.high, prob0)

	bit := 1
	if d.value < split {
		bit = 0
	}
	d.model.Observe(bit)

	if bit == 1 {
		d.low = split
	} else {
		d.high = split - 1
	}

	for {
		switch {
		case d.high < rangeHalf:
		case d.low >= rangeHalf:
			d.value -= rangeHalf
			d.low -= rangeHalf
			d.high -= rangeHalf
		case d.low >= rangeFirstQtr && d.high < rangeThirdQtr:
			d.value -= rangeFirstQtr
			d.low -= rangeFirstQtr
			d.high -= rangeFirstQtr
		default:
			return bit, nil
		}
		d.low *= 2
		d.high = 2*d.high + 1
		inb, err := d.readBit()
		if err != nil {
			return 0, err
		}
		d.value = 2*d.value + inb
	}
}
