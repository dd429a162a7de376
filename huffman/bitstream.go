package huffman

import (
	"io"

	"github.com/pkg/errors"
)

// ErrBitStreamExhausted is returned when ReadBit is called past the end of
// the underlying reader.
var ErrBitStreamExhausted = errors.New("huffman: bit stream exhausted")

// A BitWriter appends single bits, MSB-first, to an underlying byte
// sink. It buffers at most one partial byte.
type BitWriter struct {
	w    io.Writer
	cur  byte
	nbit uint // number of bits already placed in cur, 0..7
}

// NewBitWriter returns a BitWriter that writes completed bytes to w.
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBit appends one bit (0 or 1) in MSB-first order within the current
// byte, flushing the byte to the underlying writer once it fills.
func (bw *BitWriter) WriteBit(bit int) error {
	if bit != 0 {
		bw.cur |= 1 << (7 - bw.nbit)
	}
	bw.nbit++
	if bw.nbit == 8 {
		if _, err := bw.w.Write([]byte{bw.cur}); err != nil {
			return errors.Wrap(err, "huffman: write byte")
		}
		bw.cur = 0
		bw.nbit = 0
	}
	return nil
}

// Flush zero-pads any partial byte and emits it. It is a no-op if the
// current byte is empty.
func (bw *BitWriter) Flush() error {
	if bw.nbit == 0 {
		return nil
	}
	if _, err := bw.w.Write([]byte{bw.cur}); err != nil {
		return errors.Wrap(err, "huffman: flush partial byte")
	}
	bw.cur = 0
	bw.nbit = 0
	return nil
}

// A BitReader consumes single bits, MSB-first, from an underlying byte
// source, in the exact order a matching BitWriter produced them.
type BitReader struct {
	r    io.Reader
	cur  byte
	nbit uint // number of bits already consumed from cur, 0..8 (8: cur is used up)
}

// NewBitReader returns a BitReader that pulls bytes from r as needed.
func NewBitReader(r io.Reader) *BitReader {
	return &BitReader{r: r, nbit: 8}
}

// ReadBit consumes and returns one bit (0 or 1). It returns
// ErrBitStreamExhausted once the underlying reader is drained.
func (br *BitReader) ReadBit() (int, error) {
	if br.nbit == 8 {
		var b [1]byte
		if _, err := io.ReadFull(br.r, b[:]); err != nil {
			return 0, ErrBitStreamExhausted
		}
		br.cur = b[0]
		br.nbit = 0
	}
	bit := int((br.cur >> (7 - br.nbit)) & 1)
	br.nbit++
	return bit, nil
}

// Flush discards any remaining bits of the current partial byte, so the
// next ReadBit call starts at a fresh byte boundary.
func (br *BitReader) Flush() {
	br.nbit = 8
}
