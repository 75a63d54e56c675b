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

// Package bch implements runtime-configurable binary BCH(m,t) encoding and
// decoding, per the generic Linux-kernel-style BCH library the original
// pipeline vendors: a generator built from the LCM of the minimal
// polynomials of alpha, alpha^3, ..., alpha^(2t-1), byte-wise encode via a
// precomputed remainder table, and syndrome decode via Berlekamp-Massey
// plus Chien search.
package bch

import (
	"math/big"

	"github.com/piql/boxcodec/internal/codecs"
	"github.com/piql/boxcodec/internal/codecs/galois"
)

const name = "BCH"

// defaultPolynomials maps Galois field order m to its canonical primitive
// polynomial, used when the caller does not supply one explicitly (mirrors
// passing prim_poly=0 to init_bch in the reference implementation).
var defaultPolynomials = map[int]uint32{
	5: 0x25, 6: 0x43, 7: 0x83, 8: 0x11d, 9: 0x211, 10: 0x409,
	11: 0x805, 12: 0x1053, 13: 0x201b, 14: 0x402b, 15: 0x8003,
}

// Stage is the binary BCH codec.
type Stage struct {
	m, t  int
	field *galois.Field

	generator *big.Int
	eccBits   int
	eccBytes  int

	n                int // 2^m - 1, max codeword bits
	decodedBlockSize int // bytes
	encodedBlockSize int // bytes

	mod8Tab [256]*big.Int

	desc codecs.Descriptor
}

// New constructs a BCH(m,t) stage. If polynomial is 0 the canonical
// primitive polynomial for m is used.
func New(m, t int, polynomial uint32) (*Stage, error) {
	if m < 5 || m > 15 || t <= 0 {
		return nil, codecs.ErrInvalidProperty
	}
	if polynomial == 0 {
		p, ok := defaultPolynomials[m]
		if !ok {
			return nil, codecs.ErrInvalidProperty
		}
		polynomial = p
	}

	field, err := galois.New(polynomial)
	if err != nil {
		return nil, err
	}
	if field.M != m {
		return nil, codecs.ErrInvalidProperty
	}

	s := &Stage{m: m, t: t, field: field, n: field.Size - 1}
	s.generator = s.buildGenerator()
	s.eccBits = s.generator.BitLen() - 1
	s.eccBytes = (s.eccBits + 7) / 8

	blockBytes := s.n / 8
	if blockBytes <= s.eccBytes {
		return nil, codecs.ErrInvalidProperty
	}
	s.decodedBlockSize = blockBytes - s.eccBytes
	s.encodedBlockSize = blockBytes

	s.mod8Tab = buildMod8Table(s.generator, s.eccBits)

	s.desc = codecs.Descriptor{
		Name:              name,
		IsErrorCorrecting: true,
		DecodedBlockSize:  s.decodedBlockSize,
		EncodedBlockSize:  s.encodedBlockSize,
		Reentrant:         true,
	}
	return s, nil
}

// Descriptor implements codecs.Stage.
func (s *Stage) Descriptor() codecs.Descriptor { return s.desc }

// Reset implements codecs.Stage; BCH carries no per-session state.
func (s *Stage) Reset() {}

// InitCapacity derives decoded/encoded data sizes from an encoded buffer
// capacity: it must be a whole number of encoded blocks.
func (s *Stage) InitCapacity(encodedCapacity int) error {
	if encodedCapacity%s.encodedBlockSize != 0 {
		return codecs.ErrBufferMisaligned
	}
	blocks := encodedCapacity / s.encodedBlockSize
	s.desc.EncodedDataSize = encodedCapacity
	s.desc.DecodedDataSize = blocks * s.decodedBlockSize
	return nil
}

// buildGenerator computes g(x) = LCM of minimal polynomials of
// alpha^1, alpha^3, ..., alpha^(2t-1), expressed over GF(2).
func (s *Stage) buildGenerator() *big.Int {
	gen := big.NewInt(1)
	processed := make(map[int]bool)
	for i := 1; i <= 2*s.t-1; i += 2 {
		if processed[i] {
			continue
		}
		coset := s.cyclotomicCoset(i)
		for _, c := range coset {
			processed[c] = true
		}
		minPoly := s.minimalPolynomial(coset)
		gen = gf2Mul(gen, minPoly)
	}
	return gen
}

// cyclotomicCoset returns {i, 2i mod n, 4i mod n, ...} back to i.
func (s *Stage) cyclotomicCoset(i int) []int {
	coset := []int{i}
	j := (2 * i) % s.n
	for j != i {
		coset = append(coset, j)
		j = (2 * j) % s.n
	}
	return coset
}

// minimalPolynomial computes the product over the coset of (x + alpha^j),
// in GF(2^m) coefficients (which, for a Frobenius-closed coset, always
// resolve to 0 or 1), returned as a GF(2) bit polynomial.
func (s *Stage) minimalPolynomial(coset []int) *big.Int {
	gf := s.field
	poly := []uint32{1}
	tmp := make([]uint32, len(coset)+2)
	for _, j := range coset {
		factor := [2]uint32{gf.Exp(uint32(j)), 1}
		gf.MulPoly(tmp, factor[:], 2, poly, len(poly))
		next := make([]uint32, len(poly)+1)
		copy(next, tmp[:len(poly)+1])
		poly = next
	}
	result := new(big.Int)
	for d, c := range poly {
		if c != 0 {
			result.SetBit(result, d, 1)
		}
	}
	return result
}

// Encode appends eccBytes of BCH parity per decodedBlockSize-byte block.
func (s *Stage) Encode(buf codecs.Buffer) (codecs.Buffer, error) {
	if buf.Len()%s.decodedBlockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / s.decodedBlockSize
	out := make([]byte, blocks*s.encodedBlockSize)
	for b := 0; b < blocks; b++ {
		dataBlock := buf.Bytes[b*s.decodedBlockSize : (b+1)*s.decodedBlockSize]
		outBase := b * s.encodedBlockSize
		copy(out[outBase:], dataBlock)

		rem := reduceBytes(dataBlock, s.mod8Tab, s.eccBits)
		// reduceBytes leaves D(x)*x^eccBits mod g(x), but the parity field
		// is 8*eccBytes bits wide; multiply by the remaining power of x so
		// data plus parity is a codeword.
		for i := s.eccBits; s.eccBits >= 8 && i < 8*s.eccBytes; i++ {
			rem.Lsh(rem, 1)
			if rem.Bit(s.eccBits) == 1 {
				rem.Xor(rem, s.generator)
			}
		}
		eccBytes := rem.FillBytes(make([]byte, s.eccBytes))
		copy(out[outBase+s.decodedBlockSize:], eccBytes)
	}
	return codecs.NewBuffer(out, 1), nil
}

// Decode computes 2t syndromes per block; clean blocks pass data through
// unchanged, blocks with correctable errors are fixed in place, and blocks
// whose locator degree exceeds t, whose locator has fewer roots than its
// degree, or whose roots land outside the block are left uncorrected with
// the unresolved-errors counter incremented.
func (s *Stage) Decode(buf codecs.Buffer, erasures []int, stats *codecs.DecodeStats) (codecs.Buffer, error) {
	if buf.Len()%s.encodedBlockSize != 0 {
		return buf, codecs.ErrBufferMisaligned
	}
	blocks := buf.Len() / s.encodedBlockSize
	out := make([]byte, blocks*s.decodedBlockSize)

	for b := 0; b < blocks; b++ {
		block := make([]byte, s.encodedBlockSize)
		copy(block, buf.Bytes[b*s.encodedBlockSize:(b+1)*s.encodedBlockSize])

		totalBits := s.encodedBlockSize * 8
		blockInt := new(big.Int).SetBytes(block)

		syndromes := s.syndromes(blockInt, totalBits)
		clean := true
		for _, sy := range syndromes {
			if sy != 0 {
				clean = false
				break
			}
		}

		if !clean {
			s.correctBlock(blockInt, totalBits, syndromes, stats)
			block = blockInt.FillBytes(make([]byte, s.encodedBlockSize))
		}

		copy(out[b*s.decodedBlockSize:], block[:s.decodedBlockSize])
	}
	return codecs.NewBuffer(out, 1), nil
}

// syndromes evaluates the received bit polynomial at alpha^1..alpha^2t.
func (s *Stage) syndromes(blockInt *big.Int, totalBits int) []uint32 {
	gf := s.field
	syn := make([]uint32, 2*s.t)
	for i := 0; i < totalBits; i++ {
		if blockInt.Bit(i) == 0 {
			continue
		}
		for j := 1; j <= 2*s.t; j++ {
			exp := (uint32(i) * uint32(j)) % gf.Mask
			syn[j-1] ^= gf.Exp(exp)
		}
	}
	return syn
}

// correctBlock runs Berlekamp-Massey and Chien search against the
// syndromes and flips the located error bits in blockInt in place.
func (s *Stage) correctBlock(blockInt *big.Int, totalBits int, syndromes []uint32, stats *codecs.DecodeStats) {
	gf := s.field
	width := 2 * s.t

	psi := make([]uint32, width+1)
	psi2 := make([]uint32, width+1)
	d := make([]uint32, width+1)
	psi[0] = 1
	d[1] = 1

	k := uint32(0xFFFFFFFF)
	l := uint32(0)

	for n := uint32(0); n < uint32(width); n++ {
		var sum uint32
		for i := uint32(0); i <= l; i++ {
			sum ^= gf.Mul(psi[i], syndromes[n-i])
		}
		if sum != 0 {
			for i := range psi2 {
				psi2[i] = psi[i] ^ gf.Mul(sum, d[i])
			}
			if l < n-k {
				l2 := n - k
				k = n - l
				inv := gf.Inv(sum)
				for i := range d {
					d[i] = gf.Mul(psi[i], inv)
				}
				l = l2
			}
			copy(psi, psi2)
		}
		for i := len(d) - 1; i > 0; i-- {
			d[i] = d[i-1]
		}
		d[0] = 0
	}

	locations, errorsFound := s.findRoots(psi, l)

	if l > uint32(s.t) || errorsFound != l {
		stats.UnresolvedErrors += l
		return
	}
	for _, loc := range locations {
		if int(loc) >= totalBits {
			stats.UnresolvedErrors += errorsFound
			return
		}
	}
	for _, loc := range locations {
		blockInt.SetBit(blockInt, int(loc), 1-blockInt.Bit(int(loc)))
	}
	stats.ResolvedErrors += errorsFound
}

// findRoots runs a Chien search for roots of the error-locator polynomial
// over every non-zero field element.
func (s *Stage) findRoots(locator []uint32, degree uint32) (locations []uint32, count uint32) {
	gf := s.field
	for r := uint32(1); r < uint32(gf.Size); r++ {
		var sum uint32
		for kk := uint32(0); kk <= degree; kk++ {
			sum ^= gf.RootsSum((kk*r)%gf.Mask, locator[kk])
		}
		if sum == 0 {
			if count >= uint32(s.t) {
				return locations, count + 1
			}
			locations = append(locations, gf.Mask-r)
			count++
		}
	}
	return locations, count
}
