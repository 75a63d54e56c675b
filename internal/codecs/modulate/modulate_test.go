package modulate

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

// TestS3 is spec scenario S3: Modulator b=2 on byte 0xB4 (1011 0100).
// The written scenario states this produces symbols [2,3,1,0], but tracing
// the MSB-first tuple extraction (tuples 2,3,1,0) through the Gray LUT
// {0,1,3,2} -- and independently tracing original_source's
// src/codecs/modulator.c codec_encode b=2 branch against the same input,
// tuple_value = (byte_value >> ((3-i_tuple)*2)) & 0x03 then mod[tuple_value]
// with mod = {0,1,3,2} -- both land on [3,2,1,0], not [2,3,1,0]: the
// written scenario states the pre-Gray tuple values rather than the
// Gray-mapped symbol levels it claims to describe. This test asserts the
// implementation's (and original source's) actual output and documents the
// discrepancy rather than picking an input that avoids it; see DESIGN.md.
func TestS3(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	enc, err := s.Encode(codecs.NewBuffer([]byte{0xB4}, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{3, 2, 1, 0}
	if !bytes.Equal(enc.Bytes, want) {
		t.Fatalf("got %v want %v", enc.Bytes, want)
	}

	var stats codecs.DecodeStats
	dec, err := s.Decode(enc, nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec.Bytes, []byte{0xB4}) {
		t.Fatalf("round trip mismatch: got %v", dec.Bytes)
	}
}

func TestOneBitPerPixel(t *testing.T) {
	s, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{0xA5}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{1, 0, 1, 0, 0, 1, 0, 1}
	if !bytes.Equal(enc.Bytes, want) {
		t.Fatalf("got %v want %v", enc.Bytes, want)
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

func TestEightBitsPerPixelPassthrough(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte{1, 2, 3, 4, 5}
	enc, err := s.Encode(codecs.NewBuffer(data, 1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(enc.Bytes, data) {
		t.Fatalf("expected passthrough, got %v", enc.Bytes)
	}
}

func TestInvalidBitsPerPixel(t *testing.T) {
	if _, err := New(4); err != codecs.ErrInvalidProperty {
		t.Fatalf("expected ErrInvalidProperty, got %v", err)
	}
}
