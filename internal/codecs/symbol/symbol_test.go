package symbol

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

// TestS6 is spec scenario S6: a 5-byte block round-trips through the
// 8-symbol form, and each symbol byte carries only 5 significant bits.
func TestS6(t *testing.T) {
	s := New()
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x42}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != 8 {
		t.Fatalf("expected 8 symbols, got %d", enc.Len())
	}
	for i, sym := range enc.Bytes {
		if sym&^0x1f != 0 {
			t.Fatalf("symbol %d has bits above 5 set: 0x%x", i, sym)
		}
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, data) {
		t.Fatalf("round trip mismatch: got %v want %v", dec.Bytes, data)
	}
}

func TestMultipleBlocks(t *testing.T) {
	s := New()
	data := make([]byte, 15)
	for i := range data {
		data[i] = byte(i * 17)
	}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Len() != 24 {
		t.Fatalf("expected 24 symbols, got %d", enc.Len())
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestEncodeMisalignedErrors(t *testing.T) {
	s := New()
	_, err := s.Encode(codecs.NewBuffer([]byte{1, 2, 3}, 1))
	if err != codecs.ErrBufferMisaligned {
		t.Fatalf("expected ErrBufferMisaligned, got %v", err)
	}
}

func TestDecodeMisalignedErrors(t *testing.T) {
	s := New()
	_, err := s.Decode(codecs.NewBuffer([]byte{1, 2, 3}, 1), nil, &codecs.DecodeStats{})
	if err != codecs.ErrBufferMisaligned {
		t.Fatalf("expected ErrBufferMisaligned, got %v", err)
	}
}
