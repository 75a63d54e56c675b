package bch

import "math/big"

// gf2Mul multiplies two binary polynomials (bit i of the big.Int is the
// coefficient of x^i) over GF(2): addition is XOR, so this is a carryless
// multiply.
func gf2Mul(a, b *big.Int) *big.Int {
	result := new(big.Int)
	shifted := new(big.Int).Set(a)
	bb := new(big.Int).Set(b)
	for bb.Sign() != 0 {
		if bb.Bit(0) == 1 {
			result.Xor(result, shifted)
		}
		shifted.Lsh(shifted, 1)
		bb.Rsh(bb, 1)
	}
	return result
}

// buildMod8Table precomputes, for every possible input byte, the remainder
// contributed by shifting that byte into a zeroed eccBits-wide LFSR driven
// by generator -- the same byte-at-a-time folding table the C
// implementation's mod8_tab provides, expressed generically over an
// arbitrary-width generator via big.Int instead of a fixed word array.
func buildMod8Table(generator *big.Int, eccBits int) [256]*big.Int {
	var tab [256]*big.Int
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(eccBits)), big.NewInt(1))
	// generatorLow is the generator with its implicit leading x^eccBits
	// term stripped: the feedback polynomial actually XORed into the
	// LFSR, since the register itself never holds that leading bit.
	generatorLow := new(big.Int).And(generator, mask)
	shiftAmt := eccBits - 8
	if shiftAmt < 0 {
		shiftAmt = 0
	}
	for b := 0; b < 256; b++ {
		reg := new(big.Int).Lsh(big.NewInt(int64(b)), uint(shiftAmt))
		reg.And(reg, mask)
		for bit := 0; bit < 8; bit++ {
			topSet := reg.Bit(eccBits - 1) == 1
			reg.Lsh(reg, 1)
			reg.And(reg, mask)
			if topSet {
				reg.Xor(reg, generatorLow)
			}
		}
		tab[b] = reg
	}
	return tab
}

// reduceBytes folds data through the eccBits-wide LFSR using the
// precomputed byte table, returning the final eccBits-wide remainder.
func reduceBytes(data []byte, tab [256]*big.Int, eccBits int) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(eccBits)), big.NewInt(1))
	reg := new(big.Int)
	shiftAmt := uint(eccBits - 8)
	if eccBits < 8 {
		shiftAmt = 0
	}
	for _, b := range data {
		top := byte(new(big.Int).Rsh(reg, shiftAmt).Int64())
		idx := top ^ b
		reg.Lsh(reg, 8)
		reg.And(reg, mask)
		reg.Xor(reg, tab[idx])
	}
	return reg
}
