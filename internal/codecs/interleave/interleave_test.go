package interleave

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

func TestRoundTripExactMultiple(t *testing.T) {
	s, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec, err := s.Decode(enc, nil, &codecs.DecodeStats{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, data) {
		t.Fatalf("round trip mismatch: got %v want %v", dec.Bytes, data)
	}
}

func TestSpreadsBurstErrors(t *testing.T) {
	s, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// a 4-byte burst in the interleaved stream, once deinterleaved, must
	// land on 4 distinct rows rather than 4 consecutive original bytes.
	corrupt := enc.Clone()
	for i := 0; i < 4; i++ {
		corrupt.Bytes[i] ^= 0xFF
	}
	dec, err := s.Decode(corrupt, nil, &codecs.DecodeStats{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	diffPositions := map[int]bool{}
	for i := range data {
		if dec.Bytes[i] != data[i] {
			diffPositions[i/4] = true
		}
	}
	if len(diffPositions) < 2 {
		t.Fatalf("expected burst to spread across multiple rows, got positions in %d row(s)", len(diffPositions))
	}
}
