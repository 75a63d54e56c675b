package ldpc

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

// cyclicGenerators builds 8 parity bits over 8 message bits, each parity
// the XOR of 3 message bits on a cyclic shift pattern, giving every
// message bit a column weight of 3.
func cyclicGenerators() [][]int {
	gens := make([][]int, 8)
	for i := 0; i < 8; i++ {
		gens[i] = []int{i % 8, (i + 1) % 8, (i + 3) % 8}
	}
	return gens
}

func TestRoundTripNoErrors(t *testing.T) {
	s, err := New(8, cyclicGenerators())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{0xB7}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != 2 {
		t.Fatalf("expected 2 bytes encoded, got %d", enc.Len())
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, data) {
		t.Fatalf("round trip mismatch: got %v want %v", dec.Bytes, data)
	}
	if stats.UnresolvedErrors != 0 {
		t.Fatalf("unexpected unresolved errors: %d", stats.UnresolvedErrors)
	}
}

func TestCorrectsSingleMessageBitError(t *testing.T) {
	s, err := New(8, cyclicGenerators())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{0x5A}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	corrupt := enc.Clone()
	corrupt.Bytes[0] ^= 0x01 // flip the lowest-order message bit

	var stats codecs.DecodeStats
	dec, err := s.Decode(corrupt, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, data) {
		t.Fatalf("expected correction to recover original data, got %v want %v", dec.Bytes, data)
	}
	if stats.ResolvedErrors != 1 {
		t.Fatalf("expected 1 resolved error, got %d", stats.ResolvedErrors)
	}
}

func TestRejectsMismatchedMessageBitCount(t *testing.T) {
	if _, err := New(8, [][]int{{0, 1, 10}}); err != codecs.ErrInvalidProperty {
		t.Fatalf("expected ErrInvalidProperty for out-of-range index, got %v", err)
	}
}
