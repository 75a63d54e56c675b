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

// Package interleave implements the intra-frame bit/byte interleaver: a
// single frame's symbols are written row-major into a depth x width
// matrix and drained column-major, spreading any burst of consecutive
// errors across many decode blocks of whatever stage sits downstream.
package interleave

import "github.com/piql/boxcodec/internal/codecs"

const name = "Interleaving"

// Stage is the intra-frame interleaver. Depth is the number of rows the
// matrix is filled with; width is derived per call from the buffer length
// so a stage can serve frames of varying size.
type Stage struct {
	depth int
	desc  codecs.Descriptor
}

// New constructs an interleaver with the given row depth.
func New(depth int) (*Stage, error) {
	if depth <= 0 {
		return nil, codecs.ErrInvalidProperty
	}
	s := &Stage{depth: depth}
	s.desc = codecs.Descriptor{Name: name, PreZeroPadData: true, Reentrant: false}
	return s, nil
}

// Descriptor implements codecs.Stage. The interleaver is listed
// non-reentrant defensively even though it carries no state across calls,
// to match the register-once-per-pipeline-position convention the
// stateful interframe stages require. InitCapacity rejects an encoded
// capacity that is not a multiple of the interleaving depth.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; the interleaver has no per-session
// state to clear.
func (s *Stage) Reset() {}

// InitCapacity implements codecs.Stage; interleaving does not change
// buffer size, but the capacity handed down the pipeline must already be
// a whole multiple of the row depth.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	if encodedCapacity%s.depth != 0 {
		return codecs.ErrBufferMisaligned
	}
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity
	return nil
}

func (s *Stage) width(n int) int {
	w := n / s.depth
	if n%s.depth != 0 {
		w++
	}
	return w
}

// Encode zero-pads buf up to a full depth x width matrix, fills it
// row-major, and reads it back out column-major. The output is always a
// full depth*width block; any padding added here is downstream of
// InitCapacity's size accounting, the same way a fixed-size FEC block
// pads a short final message.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	n := buf.Len()
	w := s.width(n)
	matrix := buf.Bytes
	if n < s.depth*w {
		matrix = make([]byte, s.depth*w)
		copy(matrix, buf.Bytes)
	}

	out := make([]byte, s.depth*w)
	idx := 0
	for col := 0; col < w; col++ {
		for row := 0; row < s.depth; row++ {
			out[idx] = matrix[row*w+col]
			idx++
		}
	}
	return codecs.NewBuffer(out, buf.ItemSize), nil
}

// Decode performs the inverse permutation: the column-major stream is
// written back into the matrix and read out row-major.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	n := buf.Len()
	w := s.width(n)
	if n != s.depth*w && n%s.depth != 0 {
		return buf, codecs.ErrBufferMisaligned
	}

	matrix := make([]byte, s.depth*w)
	idx := 0
	for col := 0; col < w; col++ {
		for row := 0; row < s.depth; row++ {
			matrix[row*w+col] = buf.Bytes[idx]
			idx++
		}
	}
	return codecs.NewBuffer(matrix, buf.ItemSize), nil
}
