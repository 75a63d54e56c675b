package rs

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

// rs255x223 returns the classic (255,223) RS(8) codec used by S1.
func rs255x223(t *testing.T) *Stage {
	t.Helper()
	s, err := New(223, 32, 0x11d) // x^8+x^4+x^3+x^2+1
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestRoundTripNoErrors(t *testing.T) {
	s := rs255x223(t)
	msg := make([]byte, 223)
	for i := range msg {
		msg[i] = byte(i)
	}
	enc, err := s.Encode(codecs.NewBuffer(msg, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != 255 {
		t.Fatalf("expected 255 encoded symbols, got %d", enc.Len())
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, msg) {
		t.Fatalf("round trip mismatch")
	}
	if stats.ResolvedErrors != 0 || stats.UnresolvedErrors != 0 {
		t.Fatalf("unexpected error counters: %+v", stats)
	}
}

// TestS1 is spec scenario S1: RS(255,223,m=8), flip bytes 5 and 17.
func TestS1TwoByteErrors(t *testing.T) {
	s := rs255x223(t)
	msg := make([]byte, 223)
	for i := range msg {
		msg[i] = byte(i)
	}
	enc, err := s.Encode(codecs.NewBuffer(msg, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	enc.Bytes[5] ^= 0xFF
	enc.Bytes[17] ^= 0xFF

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, msg) {
		t.Fatalf("decode did not recover original message")
	}
	if stats.ResolvedErrors != 2 {
		t.Fatalf("expected resolved_errors == 2, got %d", stats.ResolvedErrors)
	}
	if stats.UnresolvedErrors != 0 {
		t.Fatalf("expected unresolved_errors == 0, got %d", stats.UnresolvedErrors)
	}
}

func TestCorrectingPowerBoundary(t *testing.T) {
	s := rs255x223(t)
	msg := make([]byte, 223)
	for i := range msg {
		msg[i] = byte(2 * i)
	}
	enc, err := s.Encode(codecs.NewBuffer(msg, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	maxCorrectable := 32 / 2
	for i := 0; i < maxCorrectable; i++ {
		enc.Bytes[i*7] ^= 0x5A
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, msg) {
		t.Fatalf("decode did not recover original message at correcting-power boundary")
	}
}

func TestInitCapacity(t *testing.T) {
	s := rs255x223(t)
	if err := s.InitCapacity(255 * 3); err != nil {
		t.Fatalf("InitCapacity: %v", err)
	}
	d := s.Descriptor()
	if d.DecodedDataSize != 223*3 {
		t.Fatalf("unexpected decoded data size: %d", d.DecodedDataSize)
	}
	if err := s.InitCapacity(254); err == nil {
		t.Fatalf("expected misalignment error")
	}
}
