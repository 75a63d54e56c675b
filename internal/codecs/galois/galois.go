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

// Package galois implements GF(2^m) arithmetic, with m taken from the
// degree of the primitive polynomial, the shared building block under both
// the Reed-Solomon and BCH stages.
package galois

import "github.com/piql/boxcodec/internal/codecs"

// Field is a Galois field GF(2^m), parameterised by a primitive
// polynomial of degree m. exp has length 2*(2^m-1) with the upper half
// duplicated so roots-sum lookups never need a modular reduction; log has
// length 2^m with log[0] = 0 used only as a sentinel (0 has no logarithm).
type Field struct {
	Polynomial uint32
	M          int
	Size       int // 2^m
	Mask       uint32

	exp []uint32
	log []uint32
}

// New builds the exponent/logarithm tables for the field generated by
// polynomial. m is derived from the polynomial's highest set bit.
func New(polynomial uint32) (*Field, error) {
	if polynomial == 0 {
		return nil, codecs.ErrInvalidField
	}

	m := 0
	for p := polynomial >> 1; p != 0; p >>= 1 {
		m++
	}

	f := &Field{
		Polynomial: polynomial,
		M:          m,
		Size:       1 << uint(m),
	}
	f.Mask = uint32(f.Size - 1)
	f.buildTables()
	return f, nil
}

func (f *Field) buildTables() {
	size := f.Size
	f.exp = make([]uint32, 2*(size-1))
	f.log = make([]uint32, size)

	x := uint32(1)
	for i := 0; i < size-1; i++ {
		f.exp[i] = x
		f.log[x] = uint32(i)
		x <<= 1
		if x&uint32(size) != 0 {
			x ^= f.Polynomial
		}
	}
	// duplicate the upper half so exp[i] is valid for i up to 2*(size-1)-1
	// without a modular reduction on every lookup.
	for i := size - 1; i < 2*(size-1); i++ {
		f.exp[i] = f.exp[i-(size-1)]
	}
}

// Mul multiplies two field elements.
func (f *Field) Mul(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

// RootsSum evaluates alpha^a at a root contribution b, returning
// exp[a + log(b)] or 0 when b is 0 or alpha^a itself evaluates to 0. Used
// by the RS syndrome computation to fold codeword symbols against
// successive powers of alpha, and by the RS and BCH Chien searches.
func (f *Field) RootsSum(a uint32, b uint32) uint32 {
	if b == 0 || f.exp[a] == 0 {
		return 0
	}
	return f.exp[a+f.log[b]]
}

// Inv returns the multiplicative inverse of a non-zero field element.
func (f *Field) Inv(a uint32) uint32 {
	return f.exp[f.Mask-f.log[a]]
}

// Exp returns alpha^i.
func (f *Field) Exp(i uint32) uint32 {
	return f.exp[i]
}

// Log returns the discrete logarithm of a, base alpha. log(0) is 0 and is
// a sentinel only -- callers must never look up the log of 0 expecting a
// meaningful exponent.
func (f *Field) Log(a uint32) uint32 {
	return f.log[a]
}

// MulPoly multiplies two polynomials (low-degree-first coefficient slices)
// over the field by convolution, writing lenA+lenB-1 coefficients into
// dst. dst must have capacity for that many coefficients.
func (f *Field) MulPoly(dst, a []uint32, lenA int, b []uint32, lenB int) {
	for i := 0; i < lenA+lenB-1; i++ {
		dst[i] = 0
	}
	for i := 0; i < lenA; i++ {
		if a[i] == 0 {
			continue
		}
		for j := 0; j < lenB; j++ {
			dst[i+j] ^= f.Mul(a[i], b[j])
		}
	}
}
