package huffman

// ArithLiteralCoder is the adaptive alternative to FlatLiteralCoder: it
// writes literal payloads through the same length-prefixed byte-string
// and zigzag-varint framing, but every framing bit passes through a
// Witten-Neal-Cleary range coder scored by a context-tree-weighted bit
// model instead of going out raw. The models persist across calls for
// the lifetime of the coder, so later literals benefit from whatever
// structure earlier ones exposed.
//
// A RangeDecoder reads rangeCodeBits ahead of the bit it is decoding, so
// coded bits cannot simply be interleaved with the tree's raw path bits
// on the shared stream. Each literal is therefore coded into its own
// delimited block: the coded bits are collected in memory, their count
// is written to the stream as a raw varint, then the bits themselves
// follow raw. The decode side reads the count, fences off exactly that
// many bits, and lets the range decoder pad its read-ahead past the
// fence, which the final flush of the block makes harmless.
type ArithLiteralCoder struct {
	depth int

	encModel *BitModel
	decModel *BitModel
}

// NewArithLiteralCoder returns an ArithLiteralCoder whose bit model
// conditions its predictions on the last depth bits. depth trades model
// memory and adaptation cost for prediction quality; 8-16 is a reasonable
// range for byte-oriented payloads.
func NewArithLiteralCoder(depth int) *ArithLiteralCoder {
	return &ArithLiteralCoder{depth: depth}
}

// bitBlock collects coded bits in memory on encode and replays them on
// decode, reporting exhaustion with ErrBitStreamExhausted so the range
// decoder's read-ahead padding takes over at the block boundary.
type bitBlock struct {
	bits []byte
	pos  int
}

func (b *bitBlock) WriteBit(bit int) error {
	b.bits = append(b.bits, byte(bit))
	return nil
}

func (b *bitBlock) ReadBit() (int, error) {
	if b.pos >= len(b.bits) {
		return 0, ErrBitStreamExhausted
	}
	bit := int(b.bits[b.pos])
	b.pos++
	return bit, nil
}

// writeBlock runs emit against a fresh range coder over the shared
// encode-side model, then writes the resulting block, delimited, to w.
func (c *ArithLiteralCoder) writeBlock(w *BitWriter, emit func(bitWriter) error) error {
	if c.encModel == nil {
		c.encModel = NewBitModel(c.depth)
	}
	var block bitBlock
	enc := NewRangeEncoder(&block, c.encModel)
	if err := emit(enc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}

	if err := writeVarint(w, uint64(len(block.bits))); err != nil {
		return err
	}
	for _, bit := range block.bits {
		if err := w.WriteBit(int(bit)); err != nil {
			return err
		}
	}
	return nil
}

// readBlock reads one delimited block from r and returns a range decoder
// positioned at its first coded bit, backed by the shared decode-side
// model.
func (c *ArithLiteralCoder) readBlock(r *BitReader) (*RangeDecoder, error) {
	if c.decModel == nil {
		c.decModel = NewBitModel(c.depth)
	}
	n, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	block := &bitBlock{bits: make([]byte, n)}
	for i := range block.bits {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		block.bits[i] = byte(bit)
	}
	return NewRangeDecoder(block, c.decModel)
}

func (c *ArithLiteralCoder) WriteTerm(w *BitWriter, payload []byte) error {
	return c.writeBlock(w, func(enc bitWriter) error {
		if err := enc.WriteBit(0); err != nil {
			return err
		}
		return writeByteString(enc, payload)
	})
}

func (c *ArithLiteralCoder) ReadTerm(r *BitReader) ([]byte, bool, error) {
	dec, err := c.readBlock(r)
	if err != nil {
		return nil, false, err
	}
	bit, err := dec.DecodeBit()
	if err != nil {
		return nil, false, err
	}
	if bit == 1 {
		return nil, true, nil
	}
	payload, err := readByteString(dec)
	return payload, false, err
}

func (c *ArithLiteralCoder) WriteEndTerm(w *BitWriter) error {
	return c.writeBlock(w, func(enc bitWriter) error {
		return enc.WriteBit(1)
	})
}

func (c *ArithLiteralCoder) WriteInt(w *BitWriter, v int64) error {
	return c.writeBlock(w, func(enc bitWriter) error {
		if err := enc.WriteBit(0); err != nil {
			return err
		}
		return writeVarint(enc, zigzagEncode(v))
	})
}

func (c *ArithLiteralCoder) ReadInt(r *BitReader) (int64, bool, error) {
	dec, err := c.readBlock(r)
	if err != nil {
		return 0, false, err
	}
	bit, err := dec.DecodeBit()
	if err != nil {
		return 0, false, err
	}
	if bit == 1 {
		return 0, true, nil
	}
	u, err := readVarint(dec)
	if err != nil {
		return 0, false, err
	}
	return zigzagDecode(u), false, nil
}

func (c *ArithLiteralCoder) WriteEndInt(w *BitWriter) error {
	return c.writeBlock(w, func(enc bitWriter) error {
		return enc.WriteBit(1)
	})
}

// WriteBit and ReadBit let RangeEncoder/RangeDecoder satisfy the
// bitWriter/bitReader interfaces writeVarint and writeByteString expect,
// so the framing helpers run unchanged over a coded channel.
func (e *RangeEncoder) WriteBit(bit int) error { return e.EncodeBit(bit) }

func (d *RangeDecoder) ReadBit() (int, error) { return d.DecodeBit() }
