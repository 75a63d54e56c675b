// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package pipeline is the one place that knows about every concrete stage
// package; it registers their constructors under the names a config.Pipeline
// names them by, and assembles a dispatch.Dispatcher from a loaded config.
// Everything upstream of this package (cmd/boxctl) only ever talks to
// config.Pipeline and dispatch.Dispatcher.
package pipeline

import (
	"github.com/pkg/errors"

	"github.com/piql/boxcodec/internal/codecs"
	"github.com/piql/boxcodec/internal/codecs/bch"
	"github.com/piql/boxcodec/internal/codecs/cipher"
	"github.com/piql/boxcodec/internal/codecs/crc"
	"github.com/piql/boxcodec/internal/codecs/dispatch"
	"github.com/piql/boxcodec/internal/codecs/ftf"
	"github.com/piql/boxcodec/internal/codecs/header"
	"github.com/piql/boxcodec/internal/codecs/interleave"
	"github.com/piql/boxcodec/internal/codecs/ldpc"
	"github.com/piql/boxcodec/internal/codecs/modulate"
	"github.com/piql/boxcodec/internal/codecs/rs"
	"github.com/piql/boxcodec/internal/codecs/symbol"
	"github.com/piql/boxcodec/internal/codecs/syncpoint"
	"github.com/piql/boxcodec/internal/config"
)

// Stage name constants, matching the names config.Stage.Name refers to in
// a pipeline JSON document.
const (
	ReedSolomon      = "ReedSolomon"
	BCH              = "BCH"
	LDPC             = "LDPC"
	CRC32            = "CRC32"
	CRC64            = "CRC64"
	Cipher           = "Cipher"
	Interleaving     = "Interleaving"
	FTFInterleaving  = "FTFInterleaving"
	SymbolConverter  = "SymbolConverter"
	Modulator        = "Modulator"
	SyncPointInsert  = "SyncPointInserter"
	PacketHeader     = "PacketHeader"
)

// NewRegistry builds a codecs.Registry with a constructor registered for
// every stage kind the dispatcher knows about.
func NewRegistry() *codecs.Registry {
	r := codecs.NewRegistry()

	r.Register(ReedSolomon, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		messageSize := props.Int("messageSize", 0)
		paritySize := props.Int("paritySize", 0)
		polynomial := props.Int("polynomial", 0)
		if messageSize == 0 || paritySize == 0 || polynomial == 0 {
			return nil, codecs.ErrMissingProperty
		}
		return rs.New(messageSize, paritySize, uint32(polynomial))
	})

	r.Register(BCH, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		m := props.Int("m", 0)
		t := props.Int("t", 0)
		polynomial := props.Int("polynomial", 0)
		if m == 0 || t == 0 {
			return nil, codecs.ErrMissingProperty
		}
		return bch.New(m, t, uint32(polynomial))
	})

	r.Register(LDPC, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		messageBits := props.Int("messageBits", 0)
		generators := props.IntSliceSlice("generators")
		if messageBits == 0 || len(generators) == 0 {
			return nil, codecs.ErrMissingProperty
		}
		return ldpc.New(messageBits, generators)
	})

	r.Register(CRC32, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		polynomial := props.Int("polynomial", 0xedb88320) // crc32.IEEE
		seed := props.Int("seed", 0)
		return crc.NewCRC32(uint32(polynomial), uint32(seed)), nil
	})

	r.Register(CRC64, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		polynomial := props.Int("polynomial", 0)
		seed := props.Int("seed", 0)
		return crc.NewCRC64(uint64(uint32(polynomial)), uint64(uint32(seed))), nil
	})

	r.Register(Cipher, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		if props.Bool("autoKey", false) {
			return cipher.NewAutoKey(), nil
		}
		key := props.Int(cipher.PropKey, 0)
		return cipher.New(uint32(key)), nil
	})

	r.Register(Interleaving, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		depth := props.Int("depth", 0)
		if depth == 0 {
			return nil, codecs.ErrMissingProperty
		}
		return interleave.New(depth)
	})

	r.Register(FTFInterleaving, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		distance := props.Int("distance", 0)
		if distance == 0 {
			return nil, codecs.ErrMissingProperty
		}
		return ftf.New(distance)
	})

	r.Register(SymbolConverter, func(p map[string]any) (codecs.Stage, error) {
		return symbol.New(), nil
	})

	r.Register(Modulator, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		bitsPerPixel := props.Int("bitsPerPixel", 8)
		return modulate.New(bitsPerPixel)
	})

	r.Register(SyncPointInsert, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		interval := props.Int("interval", 0)
		pattern := props.String("pattern", "")
		if interval == 0 || pattern == "" {
			return nil, codecs.ErrMissingProperty
		}
		return syncpoint.New(interval, []byte(pattern))
	})

	r.Register(PacketHeader, func(p map[string]any) (codecs.Stage, error) {
		props := config.Properties(p)
		schemeName := props.String("schemeName", "")
		versionMajor := props.Int("versionMajor", 0)
		versionMinor := props.Int("versionMinor", 0)
		modulation := props.Int("modulation", 0)
		symbolAlignment := props.Int("symbolAlignment", 0)
		if schemeName == "" {
			return nil, codecs.ErrMissingProperty
		}
		return header.New(schemeName, uint16(versionMajor), uint16(versionMinor), byte(modulation), byte(symbolAlignment))
	})

	return r
}

// Build constructs a dispatch.Dispatcher from a loaded config.Pipeline,
// wiring each named stage through the default registry in the order given
// and propagating frame capacity across the whole chain.
func Build(p *config.Pipeline) (*dispatch.Dispatcher, error) {
	reg := NewRegistry()
	stages := make([]codecs.Stage, 0, len(p.Stages))
	for _, sc := range p.Stages {
		stage, err := reg.Build(sc.Name, sc.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "building stage %q", sc.Name)
		}
		stages = append(stages, stage)
	}

	version := dispatch.Version{Major: p.VersionMajor, Minor: p.VersionMinor}
	d := dispatch.New(version, stages...)
	if p.FrameCapacity > 0 {
		if err := d.InitCapacity(p.FrameCapacity); err != nil {
			return nil, errors.Wrap(err, "initializing pipeline capacity")
		}
	}
	return d, nil
}
