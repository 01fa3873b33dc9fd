package rlwe

import (
	"math/big"
	"testing"

	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/stretchr/testify/require"
)

func testBFVParams(t *testing.T) EncryptionParameters {

	primes, err := ring.GetPrimes(4096, 36, 3)
	require.NoError(t, err)
	values := make([]uint64, len(primes))
	for i, p := range primes {
		values[i] = p.Value
	}

	plain, err := ring.GetPrime(4096, 20)
	require.NoError(t, err)

	parms := NewEncryptionParameters(SchemeBFV)
	parms.SetPolyModulusDegree(4096)
	require.NoError(t, parms.SetCoeffModulus(values))
	require.NoError(t, parms.SetPlainModulus(plain.Value))
	return parms
}

func TestContextBFV(t *testing.T) {

	parms := testBFVParams(t)
	ctx := NewContext(parms, true, SecurityLevel128)

	require.True(t, ctx.ParametersSet())
	require.True(t, ctx.UsingKeyswitching())
	require.Equal(t, SecurityLevel128, ctx.SecurityLevel())

	key := ctx.KeyContextData()
	first := ctx.FirstContextData()
	last := ctx.LastContextData()

	t.Run("Qualifiers", func(t *testing.T) {
		q := key.Qualifiers()
		require.Equal(t, ParameterErrorSuccess, q.ParameterError)
		require.True(t, q.UsingFFT)
		require.True(t, q.UsingNTT)
		require.True(t, q.UsingBatching)
		require.True(t, q.UsingFastPlainLift)
		require.True(t, q.UsingDescendingModulusChain)
		require.Equal(t, SecurityLevel128, q.SecurityLevel)
	})

	t.Run("Chain", func(t *testing.T) {
		require.NotEqual(t, ctx.KeyParmsID(), ctx.FirstParmsID())
		require.NotEqual(t, ctx.FirstParmsID(), ctx.LastParmsID())

		require.Equal(t, 3, len(key.Parms().CoeffModulus()))
		require.Equal(t, 2, len(first.Parms().CoeffModulus()))
		require.Equal(t, 1, len(last.Parms().CoeffModulus()))

		require.Equal(t, 2, key.ChainIndex())
		require.Equal(t, 1, first.ChainIndex())
		require.Equal(t, 0, last.ChainIndex())

		// Each level drops the last prime of the previous one.
		keyModuli := key.Parms().CoeffModulus()
		firstModuli := first.Parms().CoeffModulus()
		require.Equal(t, keyModuli[:2], firstModuli)
	})

	t.Run("Navigation", func(t *testing.T) {
		require.Same(t, first, ctx.NextContextData(ctx.KeyParmsID()))
		require.Same(t, last, ctx.NextContextData(ctx.FirstParmsID()))
		require.Same(t, key, ctx.PreviousContextData(ctx.FirstParmsID()))
		require.Nil(t, ctx.NextContextData(ctx.LastParmsID()))
		require.Nil(t, ctx.PreviousContextData(ctx.KeyParmsID()))
		require.Nil(t, ctx.ContextData(ParmsID{1, 2, 3, 4}))
		require.Same(t, key, ctx.ContextData(ctx.KeyParmsID()))
	})

	t.Run("Precomputations", func(t *testing.T) {
		require.NotNil(t, key.Base())
		require.NotNil(t, key.RNSTool())
		require.NotNil(t, key.PlainNTTTable())
		require.Len(t, key.NTTTables(), 3)

		plain := parms.PlainModulus().Value
		bigQ := key.TotalCoeffModulus()
		require.Equal(t, bigQ.BitLen(), key.TotalCoeffModulusBitCount())

		rem := new(big.Int).Mod(bigQ, new(big.Int).SetUint64(plain))
		require.Equal(t, rem.Uint64(), key.CoeffModulusModPlainModulus())

		require.Equal(t, (plain+1)>>1, key.PlainUpperHalfThreshold())
		for i, m := range key.Parms().CoeffModulus() {
			require.Equal(t, m.Value-plain, key.PlainUpperHalfIncrement()[i])
		}
		require.Nil(t, key.UpperHalfThreshold())
	})
}

func TestContextNoExpand(t *testing.T) {
	parms := testBFVParams(t)
	ctx := NewContext(parms, false, SecurityLevel128)

	require.True(t, ctx.ParametersSet())
	require.Equal(t, ctx.FirstParmsID(), ctx.LastParmsID())
	require.Equal(t, 1, ctx.KeyContextData().ChainIndex())
	require.Equal(t, 0, ctx.FirstContextData().ChainIndex())
}

func TestContextCKKS(t *testing.T) {

	primes, err := ring.GetPrimes(4096, 36, 2)
	require.NoError(t, err)
	values := []uint64{primes[0].Value, primes[1].Value}

	parms := NewEncryptionParameters(SchemeCKKS)
	parms.SetPolyModulusDegree(4096)
	require.NoError(t, parms.SetCoeffModulus(values))

	ctx := NewContext(parms, true, SecurityLevel128)
	require.True(t, ctx.ParametersSet())

	key := ctx.KeyContextData()
	q := key.Qualifiers()
	require.True(t, q.UsingBatching)
	require.False(t, q.UsingFastPlainLift)

	require.Equal(t, uint64(1)<<63, key.PlainUpperHalfThreshold())

	expected := new(big.Int).Add(key.TotalCoeffModulus(), big.NewInt(1))
	expected.Rsh(expected, 1)
	require.Equal(t, expected, key.UpperHalfThreshold())
}

func TestContextValidationErrors(t *testing.T) {

	prime36, err := ring.GetPrime(4096, 36)
	require.NoError(t, err)
	prime20, err := ring.GetPrime(4096, 20)
	require.NoError(t, err)

	t.Run("InvalidScheme", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeNone)
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidScheme, ctx.FirstContextData().Qualifiers().ParameterError)
	})

	t.Run("EmptyCoeffModulus", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		parms.SetPolyModulusDegree(4096)
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidCoeffModulusSize, ctx.FirstContextData().Qualifiers().ParameterError)
	})

	t.Run("CoeffModulusBitCount", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		parms.SetPolyModulusDegree(4096)
		require.NoError(t, parms.SetCoeffModulus([]uint64{0x1fffffffffe00001})) // 61 bits
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidCoeffModulusBitCount, ctx.FirstContextData().Qualifiers().ParameterError)
	})

	t.Run("DegreeOutOfBounds", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		require.NoError(t, parms.SetCoeffModulus([]uint64{prime36.Value}))
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidPolyModulusDegree, ctx.FirstContextData().Qualifiers().ParameterError)
	})

	t.Run("DegreeNonPowerOfTwo", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		parms.SetPolyModulusDegree(1023)
		require.NoError(t, parms.SetCoeffModulus([]uint64{prime36.Value}))
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidPolyModulusDegreeNonPowerOfTwo, ctx.FirstContextData().Qualifiers().ParameterError)
	})

	t.Run("Insecure", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeCKKS)
		parms.SetPolyModulusDegree(2048)
		require.NoError(t, parms.SetCoeffModulus([]uint64{0xffffffffffc0001})) // 60 bits
		ctx := NewContext(parms, false, SecurityLevel128)
		require.Equal(t, ParameterErrorInvalidParametersInsecure, ctx.FirstContextData().Qualifiers().ParameterError)

		// The same parameters validate without security enforcement.
		ctx = NewContext(parms, false, SecurityLevelNone)
		require.True(t, ctx.ParametersSet())
		require.Equal(t, SecurityLevelNone, ctx.FirstContextData().Qualifiers().SecurityLevel)
	})

	t.Run("NoNTT", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		parms.SetPolyModulusDegree(4096)
		require.NoError(t, parms.SetCoeffModulus([]uint64{17}))
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidCoeffModulusNoNTT, ctx.FirstContextData().Qualifiers().ParameterError)
		require.False(t, ctx.FirstContextData().Qualifiers().UsingNTT)
	})

	t.Run("PlainModulusCoprimality", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		parms.SetPolyModulusDegree(4096)
		require.NoError(t, parms.SetCoeffModulus([]uint64{prime36.Value}))
		require.NoError(t, parms.SetPlainModulus(prime36.Value))
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidPlainModulusCoprimality, ctx.FirstContextData().Qualifiers().ParameterError)
	})

	t.Run("PlainModulusTooLarge", func(t *testing.T) {
		parms := NewEncryptionParameters(SchemeBFV)
		parms.SetPolyModulusDegree(4096)
		require.NoError(t, parms.SetCoeffModulus([]uint64{prime20.Value}))
		require.NoError(t, parms.SetPlainModulus(prime36.Value))
		ctx := NewContext(parms, false, SecurityLevelNone)
		require.Equal(t, ParameterErrorInvalidPlainModulusTooLarge, ctx.FirstContextData().Qualifiers().ParameterError)
	})
}

func TestMaxBitCount(t *testing.T) {
	require.Equal(t, 109, MaxBitCount(4096, SecurityLevel128))
	require.Equal(t, 152, MaxBitCount(8192, SecurityLevel192))
	require.Equal(t, 29, MaxBitCount(2048, SecurityLevel256))
	require.Equal(t, 881, MaxBitCount(32768, SecurityLevel128))
	require.Greater(t, MaxBitCount(4096, SecurityLevelNone), 1000)
}
