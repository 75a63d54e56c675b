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

// Package syncpoint implements the sync-point inserter: a fixed marker
// pattern is stitched into the frame stream at a regular byte interval,
// giving a scanner-side decoder fixed fiducials to resynchronize against.
// Locating those fiducials in the physical scan (pixel geometry, camera
// recovery) is out of scope here; this stage only inserts and verifies
// them in the byte stream.
package syncpoint

import "github.com/piql/boxcodec/internal/codecs"

const name = "SyncPointInserter"

// Stage is the sync-point inserter.
type Stage struct {
	interval int
	pattern  []byte
	desc     codecs.Descriptor
}

// New constructs a sync-point stage. interval is the number of payload
// bytes between markers; pattern is the marker bytes themselves.
func New(interval int, pattern []byte) (*Stage, error) {
	if interval <= 0 || len(pattern) == 0 {
		return nil, codecs.ErrInvalidProperty
	}
	s := &Stage{interval: interval, pattern: append([]byte(nil), pattern...)}
	s.desc = codecs.Descriptor{
		Name:             name,
		DecodedBlockSize: interval,
		EncodedBlockSize: interval + len(pattern),
		PreZeroPadData:   true,
		Reentrant:        false,
	}
	return s, nil
}

// Descriptor implements codecs.Stage. The stage is marked non-reentrant
// because, like ftf, it is meant to hold one fixed position in a given
// pipeline instance's stage order; it otherwise carries no mutable state.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; syncpoint carries no per-session state.
func (s *Stage) Reset() {}

// InitCapacity derives decoded data size from an encoded capacity that
// must be a whole number of interval+pattern blocks.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	blockSize := s.interval + len(s.pattern)
	if encodedCapacity%blockSize != 0 {
		return codecs.ErrBufferMisaligned
	}
	blocks := encodedCapacity / blockSize
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = blocks * s.interval
	return nil
}

// Encode zero-pads the payload to a whole number of interval-sized
// blocks and stitches the marker pattern after each one.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	blocks := buf.Len() / s.interval
	if buf.Len()%s.interval != 0 {
		blocks++
	}
	padded := buf.Bytes
	if need := blocks * s.interval; need != len(padded) {
		padded = make([]byte, need)
		copy(padded, buf.Bytes)
	}

	blockSize := s.interval + len(s.pattern)
	out := make([]byte, blocks*blockSize)
	for b := 0; b < blocks; b++ {
		dst := out[b*blockSize:]
		copy(dst, padded[b*s.interval:(b+1)*s.interval])
		copy(dst[s.interval:], s.pattern)
	}
	return codecs.NewBuffer(out, buf.ItemSize), nil
}

// Decode strips the marker after each block, flagging a mismatch as an
// unresolved error without attempting to resynchronize.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	blockSize := s.interval + len(s.pattern)
	if buf.Len()%blockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / blockSize
	out := make([]byte, blocks*s.interval)
	for b := 0; b < blocks; b++ {
		block := buf.Bytes[b*blockSize : (b+1)*blockSize]
		copy(out[b*s.interval:], block[:s.interval])

		marker := block[s.interval:]
		for i, want := range s.pattern {
			if marker[i] != want {
				stats.UnresolvedErrors++
				break
			}
		}
	}
	return codecs.NewBuffer(out, buf.ItemSize), nil
}
