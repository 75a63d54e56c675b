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

// Package ldpc implements a systematic low-density parity-check codec.
// A codeword is [message bits | parity bits], with each parity bit the
// XOR of a small, caller-supplied set of message bit positions; that set
// also doubles as one row of the sparse parity-check matrix. Decoding
// runs Gallager-B style hard-decision bit-flipping message passing
// between bit and check nodes of the resulting Tanner graph: each
// iteration, among the bits for which a majority of the checks touching
// them are unsatisfied, the one with the most unsatisfied checks flips,
// and the process repeats until every check is satisfied or a maximum
// iteration count is reached. A full log-likelihood sum-product
// decoder needs soft channel information this pipeline's upstream stages
// don't carry (everything here is already a hard bit decision by the
// time it reaches LDPC), so bit-flipping is the decoder that fits what's
// actually available.
package ldpc

import "github.com/piql/boxcodec/internal/codecs"

const (
	name          = "LDPC"
	maxIterations = 50
)

// Stage is the LDPC codec.
type Stage struct {
	messageBits int
	parityBits  int

	// generators[i] lists the message bit indices XORed to produce
	// parity bit i.
	generators [][]int

	// checks[i] lists the codeword bit indices (message and parity)
	// participating in check row i; checks[i] = generators[i] with the
	// corresponding parity bit index appended.
	checks [][]int
	// bitChecks[b] lists the check rows bit b participates in.
	bitChecks [][]int

	desc codecs.Descriptor
}

// New constructs an LDPC stage. messageBits is k, generators has one
// entry per parity bit (so len(generators) parity bits are appended),
// each entry a sparse set of message bit indices in [0, messageBits).
func New(messageBits int, generators [][]int) (*Stage, error) {
	if messageBits <= 0 || len(generators) == 0 {
		return nil, codecs.ErrInvalidProperty
	}
	parityBits := len(generators)
	n := messageBits + parityBits

	for _, g := range generators {
		for _, idx := range g {
			if idx < 0 || idx >= messageBits {
				return nil, codecs.ErrInvalidProperty
			}
		}
	}

	checks := make([][]int, parityBits)
	bitChecks := make([][]int, n)
	for i, g := range generators {
		row := append(append([]int(nil), g...), messageBits+i)
		checks[i] = row
		for _, bit := range row {
			bitChecks[bit] = append(bitChecks[bit], i)
		}
	}

	s := &Stage{
		messageBits: messageBits,
		parityBits:  parityBits,
		generators:  generators,
		checks:      checks,
		bitChecks:   bitChecks,
	}
	if n%8 != 0 || messageBits%8 != 0 {
		return nil, codecs.ErrInvalidProperty
	}
	s.desc = codecs.Descriptor{
		Name:              name,
		IsErrorCorrecting: true,
		DecodedBlockSize:  messageBits / 8,
		EncodedBlockSize:  n / 8,
		Reentrant:         true,
	}
	return s, nil
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; LDPC carries no per-session state.
func (s *Stage) Reset() {}

// InitCapacity derives decoded data size from an encoded capacity that
// must be a whole number of codeword blocks.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	blockSize := s.desc.EncodedBlockSize
	if encodedCapacity%blockSize != 0 {
		return codecs.ErrBufferMisaligned
	}
	blocks := encodedCapacity / blockSize
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = blocks * s.desc.DecodedBlockSize
	return nil
}

func bytesToBits(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		for bit := 0; bit < 8; bit++ {
			bits[i*8+bit] = (b >> uint(7-bit)) & 0x01
		}
	}
	return bits
}

func bitsToBytes(bits []byte) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var v byte
		for bit := 0; bit < 8; bit++ {
			v = v<<1 | bits[i*8+bit]
		}
		out[i] = v
	}
	return out
}

// Encode appends parityBits/8 bytes of LDPC parity per messageBits/8-byte
// block.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	blockBytes := s.desc.DecodedBlockSize
	if buf.Len()%blockBytes != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / blockBytes
	out := make([]byte, blocks*s.desc.EncodedBlockSize)

	for b := 0; b < blocks; b++ {
		msgBits := bytesToBits(buf.Bytes[b*blockBytes : (b+1)*blockBytes])
		codeword := make([]byte, s.messageBits+s.parityBits)
		copy(codeword, msgBits)
		for i, g := range s.generators {
			var p byte
			for _, idx := range g {
				p ^= msgBits[idx]
			}
			codeword[s.messageBits+i] = p
		}
		copy(out[b*s.desc.EncodedBlockSize:], bitsToBytes(codeword))
	}
	return codecs.NewBuffer(out, 1), nil
}

// unsatisfiedChecks returns, for every check row, whether its XOR over
// the codeword is non-zero.
func (s *Stage) unsatisfiedChecks(codeword []byte) []bool {
	unsatisfied := make([]bool, len(s.checks))
	for i, row := range s.checks {
		var acc byte
		for _, bit := range row {
			acc ^= codeword[bit]
		}
		unsatisfied[i] = acc != 0
	}
	return unsatisfied
}

// Decode runs Gallager-B bit-flipping: each iteration it flips the
// single bit with the largest number of unsatisfied checks among those
// where a strict majority of its checks disagree, repeating until every
// check is satisfied or maxIterations is reached. Flipping one bit at a
// time (rather than every qualifying bit at once) avoids a parity bit
// and the message bit that actually caused its failure fighting each
// other back and forth when both cross the majority threshold together.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	blockSize := s.desc.EncodedBlockSize
	if buf.Len()%blockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / blockSize
	out := make([]byte, blocks*s.desc.DecodedBlockSize)

	for b := 0; b < blocks; b++ {
		codeword := bytesToBits(buf.Bytes[b*blockSize : (b+1)*blockSize])
		original := append([]byte(nil), codeword...)

		converged := false
		for iter := 0; iter < maxIterations; iter++ {
			unsatisfied := s.unsatisfiedChecks(codeword)
			anyUnsatisfied := false
			for _, u := range unsatisfied {
				if u {
					anyUnsatisfied = true
					break
				}
			}
			if !anyUnsatisfied {
				converged = true
				break
			}

			bestBit, bestBad := -1, 0
			for bitIdx, rows := range s.bitChecks {
				if len(rows) == 0 {
					continue
				}
				bad := 0
				for _, r := range rows {
					if unsatisfied[r] {
						bad++
					}
				}
				if 2*bad > len(rows) && bad > bestBad {
					bestBit, bestBad = bitIdx, bad
				}
			}
			if bestBit < 0 {
				break
			}
			codeword[bestBit] ^= 1
		}

		if !converged {
			stats.UnresolvedErrors++
			copy(out[b*s.desc.DecodedBlockSize:], bitsToBytes(original[:s.messageBits]))
			continue
		}
		for i := 0; i < s.messageBits; i++ {
			if codeword[i] != original[i] {
				stats.ResolvedErrors++
			}
		}
		copy(out[b*s.desc.DecodedBlockSize:], bitsToBytes(codeword[:s.messageBits]))
	}
	return codecs.NewBuffer(out, 1), nil
}
