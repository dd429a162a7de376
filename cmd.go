// Package fgkhuff compresses byte streams with a sliding-window
// tokenizer in front of an FGK adaptive Huffman coder, and frames the
// result in a small sectioned container. The interesting machinery lives
// in the huffman subpackage; this package is the glue that turns a file
// into a token stream, the token stream into coded bits, and the coded
// bits into a self-describing archive that Decompress can unpack without
// being told any parameters.
package fgkhuff

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/fumin/fgkhuff/huffman"
	"github.com/fumin/fgkhuff/lz"
	"github.com/fumin/fgkhuff/svc"
	"github.com/pkg/errors"
)

// Token payload tags. Every tokenizer token travels through the code
// tree as a structured-term symbol whose payload starts with one of
// these, so one stream carries both literals and back-references while
// staying homogeneous in which literal-coder variant it uses.
const (
	payloadLit = 0x00
	payloadRef = 0x01
)

// meta is the KindMeta section payload: everything Decompress needs that
// is not derivable from the symbol stream itself, plus the tokenizer
// parameters for inspection.
type meta struct {
	RawSize  uint64
	Window   uint32
	MinMatch uint16
	MaxMatch uint16
	Depth    uint8
}

// newLiteralCoder picks the literal backend: depth 0 selects the flat
// non-adaptive coder, any other depth an arithmetic coder whose bit model
// conditions on that many context bits.
func newLiteralCoder(depth int) huffman.LiteralCoder {
	if depth == 0 {
		return huffman.NewFlatLiteralCoder()
	}
	return huffman.NewArithLiteralCoder(depth)
}

func appendTokenPayload(dst []byte, tok lz.Token) []byte {
	if tok.Literal {
		return append(dst, payloadLit, tok.Byte)
	}
	dst = append(dst, payloadRef)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(tok.Distance))
	dst = append(dst, tmp[:n]...)
	n = binary.PutUvarint(tmp[:], uint64(tok.Length))
	return append(dst, tmp[:n]...)
}

func parseTokenPayload(p []byte) (lz.Token, error) {
	if len(p) == 0 {
		return lz.Token{}, errors.New("fgkhuff: empty token payload")
	}
	switch p[0] {
	case payloadLit:
		if len(p) != 2 {
			return lz.Token{}, errors.Errorf("fgkhuff: literal payload of %d bytes", len(p))
		}
		return lz.Lit(p[1]), nil
	case payloadRef:
		rest := p[1:]
		distance, n := binary.Uvarint(rest)
		if n <= 0 {
			return lz.Token{}, errors.New("fgkhuff: bad back-reference distance")
		}
		length, m := binary.Uvarint(rest[n:])
		if m <= 0 || n+m != len(rest) {
			return lz.Token{}, errors.New("fgkhuff: bad back-reference length")
		}
		return lz.Ref(uint32(distance), uint32(length)), nil
	default:
		return lz.Token{}, errors.Errorf("fgkhuff: unknown token payload tag %d", p[0])
	}
}

// Compress reads the named file and writes its compressed form to w.
// depth selects the literal backend, see CompressBytes.
func Compress(w io.Writer, name string, depth int) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	return CompressBytes(w, data, depth)
}

// CompressBytes compresses data onto w. depth 0 writes first-occurrence
// literals flat; a positive depth entropy-codes them with a bit model of
// that context depth.
func CompressBytes(w io.Writer, data []byte, depth int) error {
	tokens := lz.Tokenize(data)

	var stream bytes.Buffer
	bw := huffman.NewBitWriter(&stream)
	engine := huffman.NewEngine(newLiteralCoder(depth))
	var payload []byte
	for _, tok := range tokens {
		payload = appendTokenPayload(payload[:0], tok)
		if _, err := engine.EncodeTerm(bw, payload); err != nil {
			return err
		}
	}
	if err := engine.WriteEndTerm(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	m := meta{
		RawSize:  uint64(len(data)),
		Window:   lz.WindowSize,
		MinMatch: lz.MinMatch,
		MaxMatch: lz.MaxMatch,
		Depth:    uint8(depth),
	}
	var mbuf bytes.Buffer
	if err := binary.Write(&mbuf, binary.LittleEndian, m); err != nil {
		return errors.Wrap(err, "")
	}

	return svc.Write(w, []svc.Section{
		{Kind: svc.KindMeta, Data: mbuf.Bytes()},
		{Kind: svc.KindStream, Data: stream.Bytes()},
	})
}

// Decompress reads a container produced by Compress from r and writes
// the recovered bytes to w.
func Decompress(w io.Writer, r io.Reader) error {
	sections, err := svc.Read(r)
	if err != nil {
		return err
	}
	m, err := readMeta(sections)
	if err != nil {
		return err
	}
	streamSec := svc.Find(sections, svc.KindStream)
	if streamSec == nil {
		return errors.New("fgkhuff: container has no symbol stream section")
	}

	br := huffman.NewBitReader(bytes.NewReader(streamSec.Data))
	engine := huffman.NewEngine(newLiteralCoder(int(m.Depth)))
	var tokens []lz.Token
	for {
		payload, end, err := engine.DecodeTerm(br)
		if err != nil {
			return err
		}
		if end {
			break
		}
		tok, err := parseTokenPayload(payload)
		if err != nil {
			return err
		}
		tokens = append(tokens, tok)
	}

	data, err := lz.Expand(tokens, int(m.RawSize))
	if err != nil {
		return err
	}
	if uint64(len(data)) != m.RawSize {
		return errors.Errorf("fgkhuff: expanded to %d bytes, container says %d", len(data), m.RawSize)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func readMeta(sections []svc.Section) (meta, error) {
	sec := svc.Find(sections, svc.KindMeta)
	if sec == nil {
		return meta{}, errors.New("fgkhuff: container has no metadata section")
	}
	var m meta
	if err := binary.Read(bytes.NewReader(sec.Data), binary.LittleEndian, &m); err != nil {
		return meta{}, errors.Wrap(err, "")
	}
	return m, nil
}

// Info describes a compressed container without decoding its stream.
type Info struct {
	Sections []svc.SectionInfo

	RawSize    uint64
	StreamSize uint64
	Window     uint32
	MinMatch   uint16
	MaxMatch   uint16
	Depth      uint8
}

// Inspect reads the whole container from r, verifying every section's
// checksum, and describes it without decoding its symbol stream.
func Inspect(r io.Reader) (*Info, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	infos, err := svc.ReadIndex(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	sections, err := svc.Read(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	m, err := readMeta(sections)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Sections: infos,
		RawSize:  m.RawSize,
		Window:   m.Window,
		MinMatch: m.MinMatch,
		MaxMatch: m.MaxMatch,
		Depth:    m.Depth,
	}
	if sec := svc.Find(sections, svc.KindStream); sec != nil {
		info.StreamSize = uint64(len(sec.Data))
	}
	return info, nil
}
