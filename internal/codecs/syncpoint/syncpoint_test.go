package syncpoint

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

func TestRoundTrip(t *testing.T) {
	s, err := New(4, []byte{0xAA, 0x55})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != 12 {
		t.Fatalf("expected 12 bytes (2 blocks of 6), got %d", enc.Len())
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

func TestDetectsCorruptedMarker(t *testing.T) {
	s, err := New(4, []byte{0xAA, 0x55})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{1, 2, 3, 4}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	enc.Bytes[4] ^= 0xFF

	var stats codecs.DecodeStats
	if _, err := s.Decode(enc, nil, &stats); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if stats.UnresolvedErrors != 1 {
		t.Fatalf("expected 1 unresolved error, got %d", stats.UnresolvedErrors)
	}
}

func TestZeroPadsShortFinalBlock(t *testing.T) {
	s, err := New(4, []byte{0xAA})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{1, 2, 3}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != 5 {
		t.Fatalf("expected 5 bytes, got %d", enc.Len())
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes[:3], data) {
		t.Fatalf("expected original 3 bytes preserved, got %v", dec.Bytes)
	}
}
