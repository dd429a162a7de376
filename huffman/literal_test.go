package huffman

import (
	"bytes"
	"testing"
)

func TestFlatLiteralCoderIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, 1 << 20, -(1 << 20), 1<<62 - 1}

	c := NewFlatLiteralCoder()
	var buf bytes.Buffer
	w := NewBitWriter(&buf)
	for _, v := range values {
		if err := c.WriteInt(w, v); err != nil {
			t.Fatalf("WriteInt(%d): %v", v, err)
		}
	}
	if err := c.WriteEndInt(w); err != nil {
		t.Fatalf("WriteEndInt: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewBitReader(&buf)
	for i, want := range values {
		got, end, err := c.ReadInt(r)
		if err != nil {
			t.Fatalf("ReadInt %d: %v", i, err)
		}
		if end {
			t.Fatalf("ReadInt %d: unexpected end", i)
		}
		if got != want {
			t.Errorf("ReadInt %d = %d, want %d", i, got, want)
		}
	}
	if _, end, err := c.ReadInt(r); err != nil || !end {
		t.Errorf("final ReadInt = (end=%v, err=%v), want (true, nil)", end, err)
	}
}

func TestFlatLiteralCoderTermRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(""),
		[]byte("x"),
		[]byte("hello, world"),
		bytes.Repeat([]byte{0xAB}, 300),
	}

	c := NewFlatLiteralCoder()
	var buf bytes.Buffer
	w := NewBitWriter(&buf)
	for _, p := range payloads {
		if err := c.WriteTerm(w, p); err != nil {
			t.Fatalf("WriteTerm: %v", err)
		}
	}
	if err := c.WriteEndTerm(w); err != nil {
		t.Fatalf("WriteEndTerm: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewBitReader(&buf)
	for i, want := range payloads {
		got, end, err := c.ReadTerm(r)
		if err != nil {
			t.Fatalf("ReadTerm %d: %v", i, err)
		}
		if end {
			t.Fatalf("ReadTerm %d: unexpected end", i)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("ReadTerm %d = %q, want %q", i, got, want)
		}
	}
	if _, end, err := c.ReadTerm(r); err != nil || !end {
		t.Errorf("final ReadTerm = (end=%v, err=%v), want (true, nil)", end, err)
	}
}

func TestZigzagRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1 << 40, -(1 << 40)}
	for _, v := range values {
		if got := zigzagDecode(zigzagEncode(v)); got != v {
			t.Errorf("zigzag round trip of %d = %d", v, got)
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 32, ^uint64(0)}

	var buf bytes.Buffer
	w := NewBitWriter(&buf)
	for _, v := range values {
		if err := writeVarint(w, v); err != nil {
			t.Fatalf("writeVarint(%d): %v", v, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewBitReader(&buf)
	for i, want := range values {
		got, err := readVarint(r)
		if err != nil {
			t.Fatalf("readVarint %d: %v", i, err)
		}
		if got != want {
			t.Errorf("readVarint %d = %d, want %d", i, got, want)
		}
	}
}
