package crc

import (
	"bytes"
	"hash/crc32"
	"hash/crc64"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

// TestS5 is spec scenario S5: CRC-32 over "123456789" with the standard
// polynomial yields 0xCBF43926.
func TestS5(t *testing.T) {
	s := NewCRC32(crc32.IEEE, 0)
	payload := []byte("123456789")
	enc, err := s.Encode(codecs.NewBuffer(payload, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	trailer := enc.Bytes[len(enc.Bytes)-4:]
	got := uint32(trailer[0]) | uint32(trailer[1])<<8 | uint32(trailer[2])<<16 | uint32(trailer[3])<<24
	if got != 0xCBF43926 {
		t.Fatalf("expected 0xCBF43926, got 0x%X", got)
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, payload) {
		t.Fatalf("decode payload mismatch")
	}
	if stats.UnresolvedErrors != 0 {
		t.Fatalf("expected no unresolved errors, got %d", stats.UnresolvedErrors)
	}
}

func TestCRC32DetectsSingleBitFlip(t *testing.T) {
	s := NewCRC32(crc32.IEEE, 0)
	payload := []byte("the quick brown fox")
	enc, err := s.Encode(codecs.NewBuffer(payload, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for bit := 0; bit < 8; bit++ {
		flipped := enc.Clone()
		flipped.Bytes[3] ^= 1 << uint(bit)

		var stats codecs.DecodeStats
		if _, err := s.Decode(flipped, nil, &stats); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if stats.UnresolvedErrors < 1 {
			t.Fatalf("bit %d: expected unresolved_errors >= 1", bit)
		}
	}
}

func TestCRC64RoundTrip(t *testing.T) {
	s := NewCRC64(crc64.ISO, 0)
	payload := []byte("hello, archival carrier")
	enc, err := s.Encode(codecs.NewBuffer(payload, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, payload) {
		t.Fatalf("decode payload mismatch")
	}
	if stats.UnresolvedErrors != 0 {
		t.Fatalf("unexpected unresolved errors: %d", stats.UnresolvedErrors)
	}

	enc.Bytes[0] ^= 0x01
	var stats2 codecs.DecodeStats
	if _, err := s.Decode(enc, nil, &stats2); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if stats2.UnresolvedErrors != 1 {
		t.Fatalf("expected unresolved_errors == 1, got %d", stats2.UnresolvedErrors)
	}
}
