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

// Package crc implements the CRC-32 and CRC-64 integrity stages. Both are
// thin wrappers over the standard library's hash/crc32 and hash/crc64
// packages: no third-party checksum library appears anywhere in the
// retrieved example pack, and the standard library tables already support
// the configurable polynomial and seed the stages need, so reaching for
// one here would not be idiomatic.
package crc

import (
	"encoding/binary"
	"hash/crc32"
	"hash/crc64"

	"github.com/piql/boxcodec/internal/codecs"
)

const (
	name32 = "CRC32"
	name64 = "CRC64"
)

// Stage32 is the CRC-32 integrity stage: encode appends the checksum of
// the payload, decode recomputes it and compares against the trailing
// field.
type Stage32 struct {
	table *crc32.Table
	seed  uint32
	desc  codecs.Descriptor
}

// NewCRC32 builds a CRC-32 stage for the given polynomial. seed XORs the
// running checksum before it is appended (and before comparison on
// decode), matching the configurable-seed property in the stage registry.
func NewCRC32(polynomial uint32, seed uint32) *Stage32 {
	s := &Stage32{table: crc32.MakeTable(polynomial), seed: seed}
	s.desc = codecs.Descriptor{
		Name:             name32,
		DecodedBlockSize: 0,
		EncodedBlockSize: 4,
		Reentrant:        true,
	}
	return s
}

// Descriptor implements codecs.Stage.
func (s *Stage32) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; CRC carries no per-session state.
func (s *Stage32) Reset() {}

// InitCapacity derives sizes: the encoded buffer is the decoded payload
// plus a fixed 4-byte trailer.
func (s *Stage32) InitCapacity(encodedCapacity int) error {
	if encodedCapacity < 4 {
		return codecs.ErrBufferMisaligned
	}
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity - 4
	return nil
}

// Encode appends the CRC-32 of buf to itself.
func (s *Stage32) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	sum := crc32.Checksum(buf.Bytes, s.table) ^ s.seed
	out := make([]byte, len(buf.Bytes)+4)
	copy(out, buf.Bytes)
	binary.LittleEndian.PutUint32(out[len(buf.Bytes):], sum)
	return codecs.NewBuffer(out, 1), nil
}

// Decode recomputes the CRC-32 over the payload and compares it against
// the trailing 4 bytes; mismatch increments UnresolvedErrors but does not
// mutate the payload.
func (s *Stage32) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if len(buf.Bytes) == 0 {
		return buf, nil
	}
	if len(buf.Bytes) < 4 {
		return buf, codecs.ErrBufferMisaligned
	}
	payload := buf.Bytes[:len(buf.Bytes)-4]
	trailer := binary.LittleEndian.Uint32(buf.Bytes[len(buf.Bytes)-4:])
	sum := crc32.Checksum(payload, s.table) ^ s.seed
	if sum != trailer {
		stats.UnresolvedErrors++
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return codecs.NewBuffer(out, 1), nil
}

// Stage64 is the CRC-64 integrity stage, identical in shape to Stage32 but
// with an 8-byte trailer.
type Stage64 struct {
	table *crc64.Table
	seed  uint64
	desc  codecs.Descriptor
}

// NewCRC64 builds a CRC-64 stage for the given polynomial and seed.
func NewCRC64(polynomial uint64, seed uint64) *Stage64 {
	s := &Stage64{table: crc64.MakeTable(polynomial), seed: seed}
	s.desc = codecs.Descriptor{
		Name:             name64,
		DecodedBlockSize: 0,
		EncodedBlockSize: 8,
		Reentrant:        true,
	}
	return s
}

// Descriptor implements codecs.Stage.
func (s *Stage64) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; CRC carries no per-session state.
func (s *Stage64) Reset() {}

// InitCapacity derives sizes: the encoded buffer is the decoded payload
// plus a fixed 8-byte trailer.
func (s *Stage64) InitCapacity(encodedCapacity int) error {
	if encodedCapacity < 8 {
		return codecs.ErrBufferMisaligned
	}
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity - 8
	return nil
}

// Encode appends the CRC-64 of buf to itself.
func (s *Stage64) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	sum := crc64.Checksum(buf.Bytes, s.table) ^ s.seed
	out := make([]byte, len(buf.Bytes)+8)
	copy(out, buf.Bytes)
	binary.LittleEndian.PutUint64(out[len(buf.Bytes):], sum)
	return codecs.NewBuffer(out, 1), nil
}

// Decode recomputes the CRC-64 over the payload and compares it against
// the trailing 8 bytes.
func (s *Stage64) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if len(buf.Bytes) == 0 {
		return buf, nil
	}
	if len(buf.Bytes) < 8 {
		return buf, codecs.ErrBufferMisaligned
	}
	payload := buf.Bytes[:len(buf.Bytes)-8]
	trailer := binary.LittleEndian.Uint64(buf.Bytes[len(buf.Bytes)-8:])
	sum := crc64.Checksum(payload, s.table) ^ s.seed
	if sum != trailer {
		stats.UnresolvedErrors++
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return codecs.NewBuffer(out, 1), nil
}
