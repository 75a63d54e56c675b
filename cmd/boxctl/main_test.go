package main

import (
	"testing"

	"github.com/piql/boxcodec/internal/codecs/cipher"
	"github.com/piql/boxcodec/internal/config"
	"github.com/piql/boxcodec/internal/pipeline"
)

func TestFtfFlushFramesReadsDistance(t *testing.T) {
	p := &config.Pipeline{Stages: []config.Stage{
		{Name: pipeline.Interleaving, Properties: config.Properties{"depth": float64(4)}},
		{Name: pipeline.FTFInterleaving, Properties: config.Properties{"distance": float64(3)}},
	}}
	if got := ftfFlushFrames(p); got != 2 {
		t.Fatalf("expected 2 flush frames, got %d", got)
	}
}

func TestFtfFlushFramesZeroWithoutFTFStage(t *testing.T) {
	p := &config.Pipeline{Stages: []config.Stage{
		{Name: pipeline.Interleaving, Properties: config.Properties{"depth": float64(4)}},
	}}
	if got := ftfFlushFrames(p); got != 0 {
		t.Fatalf("expected 0 flush frames, got %d", got)
	}
}

func TestApplyPassphraseSetsExplicitCipherKey(t *testing.T) {
	p := &config.Pipeline{Stages: []config.Stage{
		{Name: pipeline.Cipher, Properties: config.Properties{}},
	}}
	applyPassphrase(p, "correct horse battery staple")

	key := p.Stages[0].Properties.Int(cipher.PropKey, -1)
	if key == -1 || key == 0 {
		t.Fatalf("expected a derived key to be set, got %d", key)
	}
}

func TestApplyPassphraseSkipsAutoKeyCipher(t *testing.T) {
	p := &config.Pipeline{Stages: []config.Stage{
		{Name: pipeline.Cipher, Properties: config.Properties{"autoKey": true}},
	}}
	applyPassphrase(p, "correct horse battery staple")

	if _, ok := p.Stages[0].Properties[cipher.PropKey]; ok {
		t.Fatalf("expected no key to be set on an auto-key cipher stage")
	}
}
