package ring

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

const testPrime = 0x1fffffffffe00001 // 61-bit NTT-friendly prime

func mulModBig(a, b, q uint64) uint64 {
	r := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return r.Mod(r, new(big.Int).SetUint64(q)).Uint64()
}

func TestMontgomeryReduction(t *testing.T) {

	q := uint64(testPrime)
	qInv := GenMRedConstant(q)
	bredconstant := GenBRedConstant(q)

	t.Run("MForm/IMForm", func(t *testing.T) {
		for _, a := range []uint64{0, 1, 2, q >> 1, q - 2, q - 1} {
			require.Equal(t, a, IMForm(MForm(a, q, bredconstant), q, qInv))
		}
	})

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 256
	properties := gopter.NewProperties(parameters)

	properties.Property("MRed(a, MForm(b)) = a*b mod q", prop.ForAll(
		func(a, b uint64) bool {
			a, b = a%q, b%q
			return MRed(a, MForm(b, q, bredconstant), q, qInv) == mulModBig(a, b, q)
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.Property("MRedLazy is congruent and smaller than 2q", prop.ForAll(
		func(a, b uint64) bool {
			a, b = a%q, b%q
			r := MRedLazy(a, MForm(b, q, bredconstant), q, qInv)
			return r < 2*q && r%q == mulModBig(a, b, q)
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestBarrettReduction(t *testing.T) {

	q := uint64(testPrime)
	bredconstant := GenBRedConstant(q)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 256
	properties := gopter.NewProperties(parameters)

	properties.Property("BRedAdd reduces any 64-bit input", prop.ForAll(
		func(a uint64) bool {
			return BRedAdd(a, q, bredconstant) == a%q
		},
		gen.UInt64(),
	))

	properties.Property("BRedAddLazy is congruent and smaller than 2q", prop.ForAll(
		func(a uint64) bool {
			r := BRedAddLazy(a, q, bredconstant)
			return r < 2*q && r%q == a%q
		},
		gen.UInt64(),
	))

	properties.Property("BRed(a, b) = a*b mod q", prop.ForAll(
		func(a, b uint64) bool {
			return BRed(a, b, q, bredconstant) == mulModBig(a, b, q)
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.Property("BRed128 reduces a 128-bit input", prop.ForAll(
		func(hi, lo uint64) bool {
			v := new(big.Int).Lsh(new(big.Int).SetUint64(hi), 64)
			v.Add(v, new(big.Int).SetUint64(lo))
			v.Mod(v, new(big.Int).SetUint64(q))
			return BRed128(hi, lo, q, bredconstant) == v.Uint64()
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestCRed(t *testing.T) {
	q := uint64(17)
	require.Equal(t, uint64(0), CRed(q, q))
	require.Equal(t, uint64(16), CRed(q-1, q))
	require.Equal(t, uint64(1), CRed(q+1, q))
	require.Equal(t, uint64(16), CRed(2*q-1, q))
}
