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

// Package symbol implements the 5-byte <-> 8-symbol converter: each block
// of 5 bytes (40 bits) is re-sliced into 8 consecutive 5-bit symbols, one
// per output byte with the top 3 bits clear. The conversion is expressed
// as a plain big-endian bit slice over a 64-bit accumulator rather than
// the machine-word byte-swap tricks of the reference implementation,
// which only worked on a little-endian host; this way the result does
// not depend on the host's native byte order.
package symbol

import "github.com/piql/boxcodec/internal/codecs"

const (
	name             = "SymbolConverter"
	decodedBlockSize = 5
	encodedBlockSize = 8
)

// Stage is the symbol converter.
type Stage struct {
	desc codecs.Descriptor
}

// New constructs a symbol converter stage.
func New() *Stage {
	s := &Stage{}
	s.desc = codecs.Descriptor{
		Name:              name,
		DecodedSymbolSize: decodedBlockSize,
		EncodedSymbolSize: encodedBlockSize,
		DecodedBlockSize:  decodedBlockSize,
		EncodedBlockSize:  encodedBlockSize,
		Reentrant:         true,
	}
	return s
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; the converter carries no state.
func (s *Stage) Reset() {}

// InitCapacity derives decoded data size from an encoded capacity that
// must be a whole number of 8-symbol blocks.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	if encodedCapacity%encodedBlockSize != 0 {
		return codecs.ErrBufferMisaligned
	}
	blocks := encodedCapacity / encodedBlockSize
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = blocks * decodedBlockSize
	return nil
}

// Encode re-slices each 5-byte block into 8 bytes, one 5-bit symbol each.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	if buf.Len()%decodedBlockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / decodedBlockSize
	out := make([]byte, blocks*encodedBlockSize)
	for b := 0; b < blocks; b++ {
		in := buf.Bytes[b*decodedBlockSize : b*decodedBlockSize+decodedBlockSize]
		var acc uint64
		for _, v := range in {
			acc = acc<<8 | uint64(v)
		}
		outBase := b * encodedBlockSize
		for i := 0; i < encodedBlockSize; i++ {
			shift := uint((encodedBlockSize - 1 - i) * 5)
			out[outBase+i] = byte((acc >> shift) & 0x1f)
		}
	}
	return codecs.NewBuffer(out, 1), nil
}

// Decode reverses Encode: 8 five-bit symbols per block are concatenated
// back into 5 bytes.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if buf.Len()%encodedBlockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / encodedBlockSize
	out := make([]byte, blocks*decodedBlockSize)
	for b := 0; b < blocks; b++ {
		in := buf.Bytes[b*encodedBlockSize : b*encodedBlockSize+encodedBlockSize]
		var acc uint64
		for _, v := range in {
			acc = acc<<5 | uint64(v&0x1f)
		}
		outBase := b * decodedBlockSize
		for i := 0; i < decodedBlockSize; i++ {
			shift := uint((decodedBlockSize - 1 - i) * 8)
			out[outBase+i] = byte((acc >> shift) & 0xff)
		}
	}
	return codecs.NewBuffer(out, 1), nil
}
