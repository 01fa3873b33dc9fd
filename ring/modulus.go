// Package ring implements word-sized modular arithmetic, number-theoretic
// helpers and the negacyclic number-theoretic transform.
package ring

import (
	"fmt"
	"math/bits"
)

// ModulusBitCountMax is the largest supported modulus bit-size.
const ModulusBitCountMax = 61

// Modulus is an up to 61-bit modulus together with its precomputed
// Barrett and Montgomery reduction constants.
type Modulus struct {
	// Value is the value of the modulus.
	Value uint64
	// BitCount is the bit-size of Value.
	BitCount int
	// BRedConstant is floor(2^128/Value), for Barrett reduction.
	BRedConstant [2]uint64
	// MRedConstant is Value^-1 mod 2^64, for Montgomery reduction.
	// It is zero if Value is even.
	MRedConstant uint64
	// IsPrime is true if Value passed the Miller-Rabin primality test.
	IsPrime bool
}

// NewModulus instantiates a Modulus from its value, precomputing the
// reduction constants and the primality flag.
// The value must be in the range [2, 2^61-1].
func NewModulus(value uint64) (m Modulus, err error) {
	if value < 2 {
		return Modulus{}, fmt.Errorf("invalid modulus: value must be at least 2 but is %d", value)
	}
	if bits.Len64(value) > ModulusBitCountMax {
		return Modulus{}, fmt.Errorf("invalid modulus: value must be at most %d bits but %d has %d", ModulusBitCountMax, value, bits.Len64(value))
	}
	m.Value = value
	m.BitCount = bits.Len64(value)
	m.BRedConstant = GenBRedConstant(value)
	if value&1 == 1 {
		m.MRedConstant = GenMRedConstant(value)
	}
	m.IsPrime = IsPrime(value)
	return
}

// NewModuli instantiates a slice of Modulus from a slice of values.
func NewModuli(values []uint64) (moduli []Modulus, err error) {
	moduli = make([]Modulus, len(values))
	for i, v := range values {
		if moduli[i], err = NewModulus(v); err != nil {
			return nil, err
		}
	}
	return
}

// Reduce returns a mod m.
func (m Modulus) Reduce(a uint64) uint64 {
	return BRedAdd(a, m.Value, m.BRedConstant)
}

// MulMod returns a*b mod m.
func (m Modulus) MulMod(a, b uint64) uint64 {
	return BRed(a, b, m.Value, m.BRedConstant)
}

func (m Modulus) String() string {
	return fmt.Sprintf("%d", m.Value)
}
