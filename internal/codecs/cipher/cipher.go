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

// Package cipher implements the whitening stage: an invertible XOR
// keystream over the payload, either an explicit 32-bit key or one
// synthesised from the data itself to balance the resulting bit stream.
package cipher

import "github.com/piql/boxcodec/internal/codecs"

const (
	// PropKey is the explicit 32-bit whitening key property.
	PropKey = "seed"
	name    = "Cipher"
)

// ones is a population-count lookup table: ones[v] is the number of set
// bits in byte value v. It is a fixed table, not per-instance state.
var ones [256]int

func init() {
	for v := 0; v < 256; v++ {
		n := 0
		for x := v; x != 0; x >>= 1 {
			n += x & 1
		}
		ones[v] = n
	}
}

// Stage is the XOR whitening cipher. It is reentrant: key and mode are
// fixed at construction (auto_key resolves its key once per Encode call,
// not across calls).
type Stage struct {
	autoKey bool
	key     uint32

	desc codecs.Descriptor
}

// New constructs a cipher stage with an explicit key.
func New(key uint32) *Stage {
	s := &Stage{key: key}
	s.desc = codecs.Descriptor{Name: name, Reentrant: true}
	return s
}

// NewAutoKey constructs a cipher stage that derives its key from the
// payload's byte-value histogram at encode time, choosing the single
// repeating key byte whose XOR keystream brings the buffer closest to an
// even split of set and cleared bits.
func NewAutoKey() *Stage {
	s := &Stage{autoKey: true}
	s.desc = codecs.Descriptor{Name: name, Reentrant: true}
	return s
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; the cipher carries no per-session state
// (auto_key is re-derived fresh on each Encode call).
func (s *Stage) Reset() {}

// InitCapacity implements codecs.Stage; whitening does not change buffer
// size.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = encodedCapacity
	return nil
}

// Key reports the key used for the most recent Encode call (meaningful
// after Encode when auto_key is active, so the dispatcher's packet header
// stage can transmit it).
func (s *Stage) Key() uint32 { return s.key }

// AutoKey reports whether this stage synthesises its key from data.
func (s *Stage) AutoKey() bool { return s.autoKey }

func keyBytes(key uint32) [4]byte {
	return [4]byte{byte(key >> 24), byte(key >> 16), byte(key >> 8), byte(key)}
}

func xorWith(data []byte, key uint32) []byte {
	kb := keyBytes(key)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ kb[i%4]
	}
	return out
}

// chooseAutoKey picks the single repeating byte value minimizing the
// deviation of the resulting keystream's set-bit count from 50%, using
// the precomputed ones[] population-count table against a histogram of
// the payload's byte values.
func chooseAutoKey(data []byte) uint32 {
	var hist [256]int
	for _, b := range data {
		hist[b]++
	}
	target := len(data) * 4 // half of len(data)*8 bits
	best := 0
	bestDelta := -1
	for k := 0; k < 256; k++ {
		total := 0
		for v := 0; v < 256; v++ {
			if hist[v] == 0 {
				continue
			}
			total += hist[v] * ones[v^k]
		}
		delta := total - target
		if delta < 0 {
			delta = -delta
		}
		if bestDelta == -1 || delta < bestDelta {
			bestDelta = delta
			best = k
		}
	}
	return uint32(best)<<24 | uint32(best)<<16 | uint32(best)<<8 | uint32(best)
}

// Encode XORs the payload against the keystream. When auto_key is active
// the key is (re)synthesised from the payload first.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	if s.autoKey {
		s.key = chooseAutoKey(buf.Bytes)
	}
	return codecs.NewBuffer(xorWith(buf.Bytes, s.key), buf.ItemSize), nil
}

// Decode applies the same XOR keystream; callers must have set Key (via
// the packet header, when auto_key was active on encode) before calling.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	return codecs.NewBuffer(xorWith(buf.Bytes, s.key), buf.ItemSize), nil
}

// SetKey overrides the key, used by the dispatcher when parsing an
// auto_key value out of the packet header before decode.
func (s *Stage) SetKey(key uint32) { s.key = key }
