// Package rns implements residue number system bases over word-sized
// moduli, fast approximate base conversion and the extended-base
// arithmetic used for scaling and rounding in RNS form.
package rns

import (
	"math/bits"

	"github.com/microsoft/SEAL-sub001/ring"
)

// Multi-precision unsigned integers are stored as little-endian []uint64
// limbs. All helpers operate on a fixed number of limbs and truncate
// carries past the last limb.

// mulUintWord evaluates result = op * w, truncated to len(op) limbs.
// It is safe to call with result aliasing op.
func mulUintWord(op []uint64, w uint64, result []uint64) {
	var carry uint64
	for i := range op {
		hi, lo := bits.Mul64(op[i], w)
		var c uint64
		result[i], c = bits.Add64(lo, carry, 0)
		carry = hi + c
	}
}

// mulManyUintExcept evaluates result = prod(values[i]) for all i != except.
// The result is truncated to len(values) limbs.
func mulManyUintExcept(values []uint64, except int, result []uint64) {
	for i := range result {
		result[i] = 0
	}
	result[0] = 1
	for i, v := range values {
		if i != except {
			mulUintWord(result, v, result)
		}
	}
}

// modUint returns value mod m.
func modUint(value []uint64, m ring.Modulus) (r uint64) {
	for i := len(value) - 1; i >= 0; i-- {
		r = bits.Rem64(r, value[i], m.Value)
	}
	return
}

// addUintUintMod evaluates result = a + b mod modulus, with a, b < modulus.
func addUintUintMod(a, b, modulus, result []uint64) {
	var carry uint64
	for i := range a {
		result[i], carry = bits.Add64(a[i], b[i], carry)
	}
	if carry != 0 || !lessThanUint(result, modulus) {
		var borrow uint64
		for i := range result {
			result[i], borrow = bits.Sub64(result[i], modulus[i], borrow)
		}
	}
}

// lessThanUint returns true if a < b.
func lessThanUint(a, b []uint64) bool {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// significantBitCount returns the bit-length of value.
func significantBitCount(value []uint64) int {
	for i := len(value) - 1; i >= 0; i-- {
		if value[i] != 0 {
			return 64*i + bits.Len64(value[i])
		}
	}
	return 0
}

// mulAddUintMod returns a*b + c mod m, with the sum accumulated over
// a 128-bit integer.
func mulAddUintMod(a, b, c uint64, m ring.Modulus) uint64 {
	hi, lo := bits.Mul64(a, b)
	var carry uint64
	lo, carry = bits.Add64(lo, c, 0)
	hi += carry
	return ring.BRed128(hi, lo, m.Value, m.BRedConstant)
}

// negateUintMod returns -v mod m, with v < m.
func negateUintMod(v uint64, m ring.Modulus) uint64 {
	if v == 0 {
		return 0
	}
	return m.Value - v
}

// dotProductMod returns the dot product of a and b mod m, accumulated
// over a 128-bit integer.
func dotProductMod(a, b []uint64, m ring.Modulus) uint64 {
	var acchi, acclo, c uint64
	for i := range a {
		hi, lo := bits.Mul64(a[i], b[i])
		acclo, c = bits.Add64(acclo, lo, 0)
		acchi += hi + c
	}
	return ring.BRed128(acchi, acclo, m.Value, m.BRedConstant)
}
