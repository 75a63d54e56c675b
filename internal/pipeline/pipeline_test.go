package pipeline

import (
	"bytes"
	"testing"

	"github.com/piql/boxcodec/internal/codecs"
	"github.com/piql/boxcodec/internal/config"
)

func testConfig() *config.Pipeline {
	return &config.Pipeline{
		VersionMajor:  1,
		VersionMinor:  0,
		FrameCapacity: 16,
		Stages: []config.Stage{
			{Name: CRC32, Properties: config.Properties{"polynomial": float64(0xedb88320)}},
			{Name: ReedSolomon, Properties: config.Properties{"messageSize": float64(4), "paritySize": float64(4), "polynomial": float64(0x11d)}},
			{Name: Interleaving, Properties: config.Properties{"depth": float64(4)}},
			{Name: FTFInterleaving, Properties: config.Properties{"distance": float64(3)}},
			{Name: Modulator, Properties: config.Properties{"bitsPerPixel": float64(8)}},
		},
	}
}

func TestBuildAssemblesDispatcherAndRoundTrips(t *testing.T) {
	d, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.PayloadCapacity() != 4 {
		t.Fatalf("expected payload capacity 4, got %d", d.PayloadCapacity())
	}

	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	enc, err := d.Encode(payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flush the FTF delay line with distance-1 dummy frames, then decode
	// every frame and expect the original payload back after the preload
	// window, exactly as the dispatcher integration test establishes.
	frames := [][]byte{append([]byte(nil), enc.Bytes...)}
	for i := 0; i < 2; i++ {
		dummy, err := d.Encode([]byte{0, 0, 0, 0})
		if err != nil {
			t.Fatalf("Encode (dummy): %v", err)
		}
		frames = append(frames, append([]byte(nil), dummy.Bytes...))
	}

	var last codecs.Buffer
	for _, frame := range frames {
		var stats codecs.DecodeStats
		dec, err := d.Decode(frame, nil, &stats)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		last = dec
	}
	if !bytes.Equal(last.Bytes, payload) {
		t.Fatalf("round trip mismatch: got %v want %v", last.Bytes, payload)
	}
}

func TestBuildUnknownStageName(t *testing.T) {
	cfg := &config.Pipeline{
		Stages: []config.Stage{{Name: "NotAStage", Properties: config.Properties{}}},
	}
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error for unknown stage name")
	}
}

func TestBuildMissingRequiredProperty(t *testing.T) {
	cfg := &config.Pipeline{
		Stages: []config.Stage{{Name: ReedSolomon, Properties: config.Properties{}}},
	}
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error for missing required property")
	}
}
