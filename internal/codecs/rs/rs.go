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

// Package rs implements the systematic (n,k) Reed-Solomon codec stage over
// GF(2^m) for m in {8,9,10}, per the Berlekamp-Massey / Chien-search design
// of the classic rscode library this pipeline's original C implementation
// vendored.
package rs

import (
	"github.com/piql/boxcodec/internal/codecs"
	"github.com/piql/boxcodec/internal/codecs/galois"
)

const (
	// PropMessageSize is the number of message symbols per block.
	PropMessageSize = "messageSize"
	// PropParitySize is the number of parity symbols appended per block.
	PropParitySize = "byteParityNumber"
	// PropPolynomial is the primitive polynomial generating GF(2^m).
	PropPolynomial = "polynom"

	name = "ReedSolomon"
)

// Stage is the Reed-Solomon codec. It is reentrant: it owns no per-session
// state beyond its immutable generator polynomial and field tables.
type Stage struct {
	field       *galois.Field
	messageSize int
	paritySize  int
	blockSize   int
	itemSize    int // 1 for m<9, 2 otherwise
	generator   []uint32

	desc codecs.Descriptor
}

// New constructs a Reed-Solomon stage for the given message size (k),
// parity size, and primitive polynomial. m is derived from the polynomial;
// m must resolve to 8, 9, or 10.
func New(messageSize, paritySize int, polynomial uint32) (*Stage, error) {
	if messageSize <= 0 || paritySize <= 0 {
		return nil, codecs.ErrInvalidProperty
	}
	field, err := galois.New(polynomial)
	if err != nil {
		return nil, err
	}
	if field.M < 8 || field.M > 10 {
		return nil, codecs.ErrInvalidProperty
	}

	itemSize := 1
	if field.M > 8 {
		itemSize = 2
	}

	s := &Stage{
		field:       field,
		messageSize: messageSize,
		paritySize:  paritySize,
		blockSize:   messageSize + paritySize,
		itemSize:    itemSize,
	}
	s.generator = s.generatorPolynomial()

	s.desc = codecs.Descriptor{
		Name:              name,
		IsErrorCorrecting: true,
		DecodedBlockSize:  messageSize,
		EncodedBlockSize:  s.blockSize,
		Reentrant:         true,
	}
	return s, nil
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; RS carries no per-session state.
func (s *Stage) Reset() {}

// InitCapacity derives decoded/encoded data sizes from an encoded buffer
// capacity: the capacity must be a whole number of encoded blocks.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	if encodedCapacity%s.blockSize != 0 {
		return codecs.ErrBufferMisaligned
	}
	blocks := encodedCapacity / s.blockSize
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = blocks * s.messageSize
	return nil
}

// generatorPolynomial computes g(x) = product_{i=1..paritySize} (x + alpha^i).
func (s *Stage) generatorPolynomial() []uint32 {
	gf := s.field
	poly := make([]uint32, s.paritySize+1)
	poly[0] = 1
	cur := 1
	tmp := make([]uint32, s.paritySize+2)
	for i := 1; i <= s.paritySize; i++ {
		factor := [2]uint32{gf.Exp(uint32(i)), 1}
		gf.MulPoly(tmp, factor[:], 2, poly, cur)
		cur += 1
		copy(poly, tmp[:cur])
	}
	return poly
}

// Encode runs the systematic LFSR encoder over each message_size block,
// appending paritySize parity symbols per block.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	if buf.Len()%s.messageSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / s.messageSize
	out := make([]uint32, blocks*s.blockSize)
	src := s.unpack(buf)

	gf := s.field
	lfsr := make([]uint32, s.paritySize)
	for b := 0; b < blocks; b++ {
		for i := range lfsr {
			lfsr[i] = 0
		}
		base := b * s.messageSize
		for i := 0; i < s.messageSize; i++ {
			dbyte := src[base+i] ^ lfsr[s.paritySize-1]
			for j := s.paritySize - 1; j > 0; j-- {
				lfsr[j] = lfsr[j-1] ^ gf.Mul(s.generator[j], dbyte)
			}
			lfsr[0] = gf.Mul(s.generator[0], dbyte)
		}
		outBase := b * s.blockSize
		copy(out[outBase:outBase+s.messageSize], src[base:base+s.messageSize])
		for i := 0; i < s.paritySize; i++ {
			out[outBase+s.messageSize+i] = lfsr[s.paritySize-1-i]
		}
	}
	return s.pack(out), nil
}

// Decode computes syndromes per block; clean blocks pass through, blocks
// with errors run Berlekamp-Massey + Chien search to locate and correct up
// to paritySize/2 symbol errors. Blocks that cannot be corrected (more
// roots than paritySize, or a root outside the codeword) are left as-is and
// increment the unresolved-errors counter.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if buf.Len()%s.blockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / s.blockSize
	src := s.unpack(buf)
	out := make([]uint32, blocks*s.messageSize)

	gf := s.field
	syndromes := make([]uint32, s.paritySize)
	for b := 0; b < blocks; b++ {
		base := b * s.blockSize
		codeword := make([]uint32, s.blockSize)
		copy(codeword, src[base:base+s.blockSize])

		hasErrors := false
		for j := 1; j <= s.paritySize; j++ {
			var sum uint32
			for i := 0; i < s.blockSize; i++ {
				sum = codeword[i] ^ gf.RootsSum(uint32(j), sum)
			}
			syndromes[j-1] = sum
			if sum != 0 {
				hasErrors = true
			}
		}

		stats.FECAccumulatedWeight += uint64(s.paritySize / 2)
		if hasErrors {
			s.correct(codeword, syndromes, stats)
		} else {
			stats.FECAccumulatedAmount += uint64(s.paritySize / 2)
		}

		outBase := b * s.messageSize
		copy(out[outBase:outBase+s.messageSize], codeword[:s.messageSize])
	}
	return s.pack(out), nil
}

// correct runs modified Berlekamp-Massey + Chien search against one
// block's syndromes and XORs corrections into codeword in place. It
// returns the number of errors found.
func (s *Stage) correct(codeword []uint32, syndromes []uint32, stats *codecs.DecodeStats) uint32 {
	gf := s.field
	locator, evaluator := s.berlekampMassey(syndromes)
	locations, errorsFound := s.findRoots(locator)

	if errorsFound > uint32(s.paritySize) || errorsFound == 0 {
		if errorsFound > 0 {
			stats.UnresolvedErrors += errorsFound
		}
		return errorsFound
	}

	for _, i := range locations {
		if i >= uint32(s.blockSize) {
			stats.UnresolvedErrors += errorsFound
			return errorsFound
		}
	}

	for _, i := range locations {
		var num, denom uint32
		exp := gf.Mask - i
		for j := uint32(0); j < uint32(2*s.paritySize); j++ {
			num ^= gf.Mul(evaluator[j], gf.Exp((exp*j)%gf.Mask))
		}
		for j := uint32(1); j < uint32(2*s.paritySize); j += 2 {
			denom ^= gf.Mul(locator[j], gf.Exp((exp*(j-1))%gf.Mask))
		}
		errVal := gf.Mul(num, gf.Inv(denom))
		codeword[uint32(s.blockSize)-i-1] ^= errVal
	}
	stats.ResolvedErrors += errorsFound
	if capacity := uint64(s.paritySize / 2); uint64(errorsFound) <= capacity {
		stats.FECAccumulatedAmount += capacity - uint64(errorsFound)
	}
	return errorsFound
}

// berlekampMassey computes the error-locator polynomial (length 2*parity)
// and the modified error-evaluator polynomial from the syndrome sequence.
func (s *Stage) berlekampMassey(syndromes []uint32) (locator, evaluator []uint32) {
	gf := s.field
	parity := s.paritySize
	width := 2 * parity

	psi := make([]uint32, width)
	psi2 := make([]uint32, width)
	d := make([]uint32, width)
	psi[0] = 1
	d[1] = 1

	k := uint32(0xFFFFFFFF) // -1
	l := uint32(0)

	for n := uint32(0); n < uint32(parity); n++ {
		var sum uint32
		for i := uint32(0); i <= l; i++ {
			sum ^= gf.Mul(psi[i], syndromes[n-i])
		}
		dd := sum
		if dd != 0 {
			for i := range psi2 {
				psi2[i] = psi[i] ^ gf.Mul(dd, d[i])
			}
			if l < n-k {
				l2 := n - k
				k = n - l
				inv := gf.Inv(dd)
				for i := range d {
					d[i] = gf.Mul(psi[i], inv)
				}
				l = l2
			}
			copy(psi, psi2)
		}
		for i := width - 1; i > 0; i-- {
			d[i] = d[i-1]
		}
		d[0] = 0
	}

	locator = make([]uint32, width)
	copy(locator, psi)

	evaluator = make([]uint32, width)
	for i := 0; i < parity; i++ {
		for j := i; j < parity; j++ {
			evaluator[j] ^= gf.Mul(syndromes[j-i], locator[i])
		}
	}
	return locator, evaluator
}

// findRoots evaluates locator at every non-zero field element via Chien
// search; a root at alpha^r gives the error location mask-r.
func (s *Stage) findRoots(locator []uint32) (locations []uint32, count uint32) {
	gf := s.field
	loopTo := uint32(s.paritySize)
	for r := uint32(1); r < uint32(gf.Size); r++ {
		var sum uint32
		for k := uint32(0); k <= loopTo; k++ {
			sum ^= gf.RootsSum((k*r)%gf.Mask, locator[k])
		}
		if sum == 0 {
			if count >= uint32(s.paritySize) {
				return locations, count + 1
			}
			locations = append(locations, gf.Mask-r)
			count++
		}
	}
	return locations, count
}

// unpack reads the buffer's item-width-aligned bytes into a uint32 slice.
func (s *Stage) unpack(buf codecs.Buffer) []uint32 {
	n := len(buf.Bytes) / s.itemSize
	out := make([]uint32, n)
	if s.itemSize == 1 {
		for i, b := range buf.Bytes {
			out[i] = uint32(b)
		}
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = uint32(buf.Bytes[2*i]) | uint32(buf.Bytes[2*i+1])<<8
	}
	return out
}

// pack writes a uint32 slice back into an item-width-aligned Buffer.
func (s *Stage) pack(vals []uint32) codecs.Buffer {
	out := make([]byte, len(vals)*s.itemSize)
	if s.itemSize == 1 {
		for i, v := range vals {
			out[i] = byte(v)
		}
		return codecs.NewBuffer(out, 1)
	}
	for i, v := range vals {
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return codecs.NewBuffer(out, 2)
}
