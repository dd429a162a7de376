package huffman

import "github.com/pkg/errors"

// LiteralCoder transmits a symbol's wire representation the first time a
// Tree sees it, once the escape path has been coded. A Tree never
// inspects a payload's bytes itself; it only routes to these methods and
// remembers which leaf the payload ended up bound to. Implementations
// must be exact inverses of themselves: whatever WriteTerm/WriteInt wrote
// must be exactly what ReadTerm/ReadInt reads back, with no knowledge of
// the surrounding tree.
//
// A stream is homogeneous in which variant (term or int) it uses at each
// call site: callers never mix WriteTerm and WriteInt against the same
// Tree in a way the corresponding decode side cannot predict.
type LiteralCoder interface {
	// WriteTerm writes payload as a structured-term literal.
	WriteTerm(w *BitWriter, payload []byte) error
	// ReadTerm reads a structured-term literal, or recognises the
	// end-of-stream sentinel written by WriteEndTerm and reports it via
	// end.
	ReadTerm(r *BitReader) (payload []byte, end bool, err error)
	// WriteEndTerm writes the distinguished end-of-stream sentinel on
	// the term-domain variant of the stream.
	WriteEndTerm(w *BitWriter) error

	// WriteInt writes v as an integer-domain literal.
	WriteInt(w *BitWriter, v int64) error
	// ReadInt reads an integer-domain literal, or recognises the
	// end-of-stream sentinel written by WriteEndInt.
	ReadInt(r *BitReader) (v int64, end bool, err error)
	// WriteEndInt writes the distinguished end-of-stream sentinel on the
	// integer-domain variant of the stream.
	WriteEndInt(w *BitWriter) error
}

// FlatLiteralCoder writes every literal's bits raw: a one-bit
// continuation flag, then (when not the end sentinel) a length-prefixed
// byte string for terms or a zigzag varint for integers. It makes no use
// of symbol statistics; ArithLiteralCoder is the adaptive alternative.
type FlatLiteralCoder struct{}

// NewFlatLiteralCoder returns a LiteralCoder with no adaptive state.
func NewFlatLiteralCoder() *FlatLiteralCoder {
	return &FlatLiteralCoder{}
}

// bitWriter and bitReader are the minimal surface writeVarint and
// writeByteString need. *BitWriter/*BitReader satisfy them directly; so
// do RangeEncoder/RangeDecoder, letting ArithLiteralCoder reuse the exact
// same framing logic over an arithmetic-coded bit channel instead of a
// raw one.
type bitWriter interface {
	WriteBit(bit int) error
}

type bitReader interface {
	ReadBit() (int, error)
}

func (FlatLiteralCoder) WriteTerm(w *BitWriter, payload []byte) error {
	if err := w.WriteBit(0); err != nil {
		return err
	}
	return writeByteString(w, payload)
}

func (FlatLiteralCoder) ReadTerm(r *BitReader) ([]byte, bool, error) {
	bit, err := r.ReadBit()
	if err != nil {
		return nil, false, err
	}
	if bit == 1 {
		return nil, true, nil
	}
	payload, err := readByteString(r)
	return payload, false, err
}

func (FlatLiteralCoder) WriteEndTerm(w *BitWriter) error {
	return w.WriteBit(1)
}

func (FlatLiteralCoder) WriteInt(w *BitWriter, v int64) error {
	if err := w.WriteBit(0); err != nil {
		return err
	}
	return writeVarint(w, zigzagEncode(v))
}

func (FlatLiteralCoder) ReadInt(r *BitReader) (int64, bool, error) {
	bit, err := r.ReadBit()
	if err != nil {
		return 0, false, err
	}
	if bit == 1 {
		return 0, true, nil
	}
	u, err := readVarint(r)
	if err != nil {
		return 0, false, err
	}
	return zigzagDecode(u), false, nil
}

func (FlatLiteralCoder) WriteEndInt(w *BitWriter) error {
	return w.WriteBit(1)
}

// writeByteString writes len(b) as a varint followed by b's raw bits.
func writeByteString(w bitWriter, b []byte) error {
	if err := writeVarint(w, uint64(len(b))); err != nil {
		return err
	}
	for _, by := range b {
		for i := 7; i >= 0; i-- {
			if err := w.WriteBit(int((by >> uint(i)) & 1)); err != nil {
				return err
			}
		}
	}
	return nil
}

func readByteString(r bitReader) ([]byte, error) {
	n, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := range out {
		var by byte
		for b := 0; b < 8; b++ {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, err
			}
			by = by<<1 | byte(bit)
		}
		out[i] = by
	}
	return out, nil
}

// writeVarint writes u as a base-128 continuation-bit varint, LSB group
// first, matching the encoding protobuf and Go's own binary package use.
func writeVarint(w bitWriter, u uint64) error {
	for {
		group := byte(u & 0x7f)
		u >>= 7
		cont := 0
		if u != 0 {
			cont = 1
		}
		for i := 0; i < 7; i++ {
			if err := w.WriteBit(int((group >> uint(i)) & 1)); err != nil {
				return err
			}
		}
		if err := w.WriteBit(cont); err != nil {
			return err
		}
		if u == 0 {
			return nil
		}
	}
}

func readVarint(r bitReader) (uint64, error) {
	var u uint64
	var shift uint
	for {
		if shift >= 64 {
			return 0, errors.New("huffman: varint too long")
		}
		var group uint64
		for i := 0; i < 7; i++ {
			bit, err := r.ReadBit()
			if err != nil {
				return 0, err
			}
			group |= uint64(bit) << uint(i)
		}
		cont, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		u |= group << shift
		shift += 7
		if cont == 0 {
			return u, nil
		}
	}
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
