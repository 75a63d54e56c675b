package ftf

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
)

// TestS4 is spec scenario S4: with ring distance D=4, feeding 4 real
// frames through encode followed by 3 dummy trailing frames (needed to
// flush the delay line) and then decoding all 7 reproduces the original
// 4 frames, each one frame-window late.
func TestS4(t *testing.T) {
	const distance = 4
	enc, err := New(distance)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dec, err := New(distance)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frames := [][]byte{
		{0x01, 0x02, 0x03, 0x04},
		{0x11, 0x12, 0x13, 0x14},
		{0x21, 0x22, 0x23, 0x24},
		{0x31, 0x32, 0x33, 0x34},
	}
	dummy := []byte{0, 0, 0, 0}

	var encoded [][]byte
	for _, f := range frames {
		out, err := enc.Encode(codecs.NewBuffer(f, 1))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		encoded = append(encoded, append([]byte(nil), out.Bytes...))
	}
	for i := 0; i < distance-1; i++ {
		out, err := enc.Encode(codecs.NewBuffer(dummy, 1))
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		encoded = append(encoded, append([]byte(nil), out.Bytes...))
	}

	if len(encoded) != len(frames)+distance-1 {
		t.Fatalf("expected %d encoded frames, got %d", len(frames)+distance-1, len(encoded))
	}

	var decoded [][]byte
	for _, e := range encoded {
		var stats codecs.DecodeStats
		out, err := dec.Decode(codecs.NewBuffer(e, 1), nil, &stats)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		decoded = append(decoded, append([]byte(nil), out.Bytes...))
	}

	for i := 0; i < distance-1; i++ {
		if len(decoded[i]) != 0 {
			t.Fatalf("preload call %d: expected empty output, got %v", i, decoded[i])
		}
	}

	for i, want := range frames {
		got := decoded[distance-1+i]
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d: got %v want %v", i, got, want)
		}
	}
}

func TestResetRearmsPreload(t *testing.T) {
	s, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := []byte{1, 2, 3}
	var stats codecs.DecodeStats
	out, err := s.Decode(codecs.NewBuffer(frame, 1), nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected preload suppression before reset used up, got %v", out.Bytes)
	}

	s.Reset()
	out, err = s.Decode(codecs.NewBuffer(frame, 1), nil, &stats)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected preload suppression after reset, got %v", out.Bytes)
	}
}
