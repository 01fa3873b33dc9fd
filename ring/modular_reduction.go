package ring

import (
	"math/big"
	"math/bits"
)

// GenMRedConstant computes the constant qInv = (q^-1) mod 2^64 required for MRed.
func GenMRedConstant(q uint64) (qInv uint64) {
	qInv = 1
	x := q
	for i := 0; i < 63; i++ {
		qInv *= x
		x *= x
	}
	return
}

// GenBRedConstant computes the constant floor(2^128/q) required for BRed.
func GenBRedConstant(q uint64) (constant [2]uint64) {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))
	constant[0] = new(big.Int).Rsh(bigR, 64).Uint64()
	constant[1] = bigR.Uint64()
	return
}

// MForm switches a to the Montgomery domain by computing a*2^64 mod q.
func MForm(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[1])
	r = -(a*bredconstant[0] + mhi) * q
	if r >= q {
		r -= q
	}
	return
}

// MFormLazy switches a to the Montgomery domain by computing
// a*2^64 mod q in constant time.
// The result is between 0 and 2*q-1.
func MFormLazy(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[1])
	r = -(a*bredconstant[0] + mhi) * q
	return
}

// IMForm switches a from the Montgomery domain back to the
// standard domain by computing a*(1/2^64) mod q.
func IMForm(a, q, mredconstant uint64) (r uint64) {
	r, _ = bits.Mul64(a*mredconstant, q)
	r = q - r
	if r >= q {
		r -= q
	}
	return
}

// MRed computes x * y * (1/2^64) mod q.
func MRed(x, y, q, mredconstant uint64) (r uint64) {
	mhi, mlo := bits.Mul64(x, y)
	H, _ := bits.Mul64(mlo*mredconstant, q)
	r = mhi - H + q
	if r >= q {
		r -= q
	}
	return
}

// MRedLazy computes x * y * (1/2^64) mod q in constant time.
// The result is between 0 and 2*q-1.
func MRedLazy(x, y, q, mredconstant uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)
	H, _ := bits.Mul64(alo*mredconstant, q)
	r = ahi - H + q
	return
}

// BRedAdd computes a mod q.
func BRedAdd(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[0])
	r = a - mhi*q
	if r >= q {
		r -= q
	}
	return
}

// BRedAddLazy computes a mod q in constant time.
// The result is between 0 and 2*q-1.
func BRedAddLazy(a, q uint64, bredconstant [2]uint64) uint64 {
	s0, _ := bits.Mul64(a, bredconstant[0])
	return a - s0*q
}

// BRed computes x*y mod q.
func BRed(x, y, q uint64, bredconstant [2]uint64) (r uint64) {
	var mhi, mlo, lhi, hhi, hlo, s0, s1, carry uint64

	mhi, mlo = bits.Mul64(x, y)

	// computes r = mhi * uhi + (mlo * uhi + mhi * ulo)<<64 + (mlo * ulo)) << 128

	r = mhi * bredconstant[0] // r = mhi * uhi

	hhi, hlo = bits.Mul64(mlo, bredconstant[0])

	r += hhi // r = mhi * uhi + mlo * uhi

	lhi, _ = bits.Mul64(mlo, bredconstant[1])

	s0, carry = bits.Add64(hlo, lhi, 0)

	s1 = carry

	hhi, hlo = bits.Mul64(mhi, bredconstant[1])

	r += hhi // r = mhi * uhi + mlo * uhi + mhi * ulo

	_, carry = bits.Add64(hlo, s0, 0)

	r += s1 + carry // if (mlo * uhi) + (mhi * ulo) + (mlo * ulo)<<64 overflows

	r = mlo - r*q

	if r >= q {
		r -= q
	}

	return
}

// BRedLazy computes x*y mod q in constant time.
// The result is between 0 and 2*q-1.
func BRedLazy(x, y, q uint64, bredconstant [2]uint64) (r uint64) {
	var mhi, mlo, lhi, hhi, hlo, s0, s1, carry uint64

	mhi, mlo = bits.Mul64(x, y)

	r = mhi * bredconstant[0]

	hhi, hlo = bits.Mul64(mlo, bredconstant[0])

	r += hhi

	lhi, _ = bits.Mul64(mlo, bredconstant[1])

	s0, carry = bits.Add64(hlo, lhi, 0)

	s1 = carry

	hhi, hlo = bits.Mul64(mhi, bredconstant[1])

	r += hhi

	_, carry = bits.Add64(hlo, s0, 0)

	r += s1 + carry

	r = mlo - r*q

	return
}

// BRed128 computes a mod q, where a = ahi<<64 + alo is a 128-bit unsigned integer.
func BRed128(ahi, alo, q uint64, bredconstant [2]uint64) (r uint64) {
	var mhi, mlo, lhi, hhi, hlo, s0, s1, carry uint64

	mhi, mlo = ahi, alo

	r = mhi * bredconstant[0]

	hhi, hlo = bits.Mul64(mlo, bredconstant[0])

	r += hhi

	lhi, _ = bits.Mul64(mlo, bredconstant[1])

	s0, carry = bits.Add64(hlo, lhi, 0)

	s1 = carry

	hhi, hlo = bits.Mul64(mhi, bredconstant[1])

	r += hhi

	_, carry = bits.Add64(hlo, s0, 0)

	r += s1 + carry

	r = mlo - r*q

	if r >= q {
		r -= q
	}

	return
}

// CRed returns a mod q, where a is required to be in the range [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}
