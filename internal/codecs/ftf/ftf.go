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

// Package ftf implements the inter-frame (frame-to-frame) interleaver: a
// circular delay line of distance-many frame-sized buffers that scatters
// each byte position of a frame across a rotating window of neighboring
// frames, so that a burst which wipes out an entire frame only costs one
// byte out of every "distance" bytes in each of several reconstructed
// frames rather than an entire frame outright.
//
// Unlike every other stage in this pipeline, ftf carries state across
// calls and is not safe to share between independent encode and decode
// sessions; it is the canonical non-reentrant stage.
package ftf

import "github.com/piql/boxcodec/internal/codecs"

const name = "FTFInterleaving"

// Stage is the inter-frame interleaver.
type Stage struct {
	distance int

	encodeRing [][]byte
	encodePos  int

	decodeRing    [][]byte
	decodePos     int
	preloadFrames int
	frameSize     int

	desc codecs.Descriptor
}

// New constructs an FTF stage with the given ring distance (number of
// frames spanned by the delay line).
func New(distance int) (*Stage, error) {
	if distance <= 0 {
		return nil, codecs.ErrInvalidProperty
	}
	s := &Stage{distance: distance}
	s.desc = codecs.Descriptor{Name: name, Reentrant: false}
	s.Reset()
	return s, nil
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset clears the delay line and re-arms the preload counter: the first
// distance-1 frames decoded after a reset produce no output, matching the
// ramp-up of a freshly started decoder that hasn't yet seen a full window.
func (s *Stage) Reset() {
	s.encodeRing = nil
	s.encodePos = 0
	s.decodeRing = nil
	s.decodePos = 0
	s.preloadFrames = s.distance - 1
}

// InitCapacity implements codecs.Stage; ftf does not change buffer size.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	s.frameSize = encodedCapacity
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity
	return nil
}

func makeRing(distance, frameSize int) [][]byte {
	ring := make([][]byte, distance)
	for i := range ring {
		ring[i] = make([]byte, frameSize)
	}
	return ring
}

// Encode scatters buf's bytes across the ring (position n of the
// incoming frame lands in ring slot (pos+n) mod distance), then rotates
// the ring and returns whatever had accumulated in the newly exposed
// slot from earlier calls.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	size := buf.Len()
	if s.encodeRing == nil {
		s.encodeRing = makeRing(s.distance, size)
	}

	for n := 0; n < size; n++ {
		idx := (s.encodePos + n) % s.distance
		s.encodeRing[idx][n] = buf.Bytes[n]
	}
	s.encodePos = (s.encodePos - 1 + s.distance) % s.distance

	out := s.encodeRing[s.encodePos]
	fresh := make([]byte, size)
	copy(fresh, buf.Bytes)
	s.encodeRing[s.encodePos] = fresh

	return codecs.NewBuffer(out, buf.ItemSize), nil
}

// Decode places the incoming frame into the newly rotated ring slot and
// gathers the output frame fresh from the ring's current contents. While
// the preload counter is non-zero (immediately after Reset) it returns an
// empty buffer instead, since the window hasn't filled yet.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	size := buf.Len()
	if s.decodeRing == nil {
		s.decodeRing = makeRing(s.distance, size)
	}

	s.decodePos = (s.decodePos - 1 + s.distance) % s.distance
	fresh := make([]byte, size)
	copy(fresh, buf.Bytes)
	s.decodeRing[s.decodePos] = fresh

	if s.preloadFrames > 0 {
		s.preloadFrames--
		return codecs.NewBuffer(nil, buf.ItemSize), nil
	}

	out := make([]byte, size)
	for n := 0; n < size; n++ {
		idx := (s.decodePos + n) % s.distance
		out[n] = s.decodeRing[idx][n]
	}
	return codecs.NewBuffer(out, buf.ItemSize), nil
}
