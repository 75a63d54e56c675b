package header

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

func TestRoundTrip(t *testing.T) {
	s, err := New("archival", 1, 2, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.HasCipherKey = true
	s.CipherKey = 0xDEADBEEF

	payload := []byte("hello carrier")
	enc, err := s.Encode(codecs.NewBuffer(payload, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != Size+len(payload) {
		t.Fatalf("unexpected encoded length: %d", enc.Len())
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, payload) {
		t.Fatalf("payload mismatch: got %v want %v", dec.Bytes, payload)
	}
	if s.Decoded().CipherKey != 0xDEADBEEF || !s.Decoded().HasCipherKey {
		t.Fatalf("expected decoded cipher key to survive round trip")
	}
}

func TestRejectsWrongScheme(t *testing.T) {
	enc, err := New("schemeA", 1, 0, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dec, err := New("schemeB", 1, 0, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e, err := enc.Encode(codecs.NewBuffer([]byte("x"), 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := dec.Decode(e, nil, &codecs.DecodeStats{}); err != codecs.ErrIncompatibleHeader {
		t.Fatalf("expected ErrIncompatibleHeader, got %v", err)
	}
}

func TestRejectsNewerMinorVersion(t *testing.T) {
	enc, err := New("scheme", 1, 5, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dec, err := New("scheme", 1, 2, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e, err := enc.Encode(codecs.NewBuffer([]byte("x"), 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := dec.Decode(e, nil, &codecs.DecodeStats{}); err != codecs.ErrIncompatibleHeader {
		t.Fatalf("expected ErrIncompatibleHeader for newer minor version, got %v", err)
	}
}

func TestAcceptsOlderMinorVersion(t *testing.T) {
	enc, err := New("scheme", 1, 1, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dec, err := New("scheme", 1, 5, 2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e, err := enc.Encode(codecs.NewBuffer([]byte("x"), 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := dec.Decode(e, nil, &codecs.DecodeStats{}); err != nil {
		t.Fatalf("expected older minor version to be accepted, got %v", err)
	}
}
