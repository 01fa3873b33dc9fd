package rns

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/stretchr/testify/require"
)

func TestNewBase(t *testing.T) {

	t.Run("Empty", func(t *testing.T) {
		_, err := NewBase(nil)
		require.Error(t, err)
	})

	t.Run("InvalidModulus", func(t *testing.T) {
		_, err := NewBaseFromValues([]uint64{3, 1})
		require.Error(t, err)
	})

	t.Run("NotCoprime", func(t *testing.T) {
		_, err := NewBaseFromValues([]uint64{6, 15})
		require.Error(t, err)
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := NewBaseFromValues([]uint64{3, 3})
		require.Error(t, err)
	})

	t.Run("Valid", func(t *testing.T) {
		b, err := NewBaseFromValues([]uint64{3, 5, 7})
		require.NoError(t, err)
		require.Equal(t, 3, b.Size())
		require.Equal(t, []uint64{105, 0, 0}, b.Prod())
		require.Equal(t, 7, b.ProdBitCount())
		require.True(t, b.Contains(5))
		require.False(t, b.Contains(11))
	})
}

func TestBaseComposeDecompose(t *testing.T) {

	b, err := NewBaseFromValues([]uint64{3, 5})
	require.NoError(t, err)

	t.Run("Decompose", func(t *testing.T) {
		value := []uint64{14, 0}
		b.Decompose(value)
		require.Equal(t, []uint64{2, 4}, value)
	})

	t.Run("Compose", func(t *testing.T) {
		value := []uint64{2, 4}
		b.Compose(value)
		require.Equal(t, []uint64{14, 0}, value)
	})

	t.Run("SizeOne", func(t *testing.T) {
		b1, err := NewBaseFromValues([]uint64{13})
		require.NoError(t, err)
		value := []uint64{7}
		b1.Decompose(value)
		require.Equal(t, []uint64{7}, value)
		b1.Compose(value)
		require.Equal(t, []uint64{7}, value)
	})

	t.Run("Array", func(t *testing.T) {
		// Two integers, 14 and 7, on two limbs each.
		value := []uint64{14, 0, 7, 0}
		b.DecomposeArray(value, 2)
		// Modulus-major: residues mod 3 then residues mod 5.
		require.Equal(t, []uint64{2, 1, 4, 2}, value)
		b.ComposeArray(value, 2)
		require.Equal(t, []uint64{14, 0, 7, 0}, value)
	})
}

func TestBaseComposeDecomposeProperties(t *testing.T) {

	primes, err := ring.GetPrimes(16, 40, 3)
	require.NoError(t, err)

	b, err := NewBase(primes)
	require.NoError(t, err)

	prod := new(big.Int).SetUint64(1)
	for _, p := range primes {
		prod.Mul(prod, new(big.Int).SetUint64(p.Value))
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 64
	properties := gopter.NewProperties(parameters)

	properties.Property("Compose(Decompose(x)) = x", prop.ForAll(
		func(w0, w1 uint64) bool {
			x := new(big.Int).Lsh(new(big.Int).SetUint64(w0), 64)
			x.Add(x, new(big.Int).SetUint64(w1))
			x.Mod(x, prod)

			value := make([]uint64, b.Size())
			tmp := new(big.Int).Set(x)
			for i := range value {
				value[i] = tmp.Uint64()
				tmp.Rsh(tmp, 64)
			}
			expected := append([]uint64(nil), value...)

			b.Decompose(value)
			for i := 0; i < b.Size(); i++ {
				if value[i] != new(big.Int).Mod(x, new(big.Int).SetUint64(b.At(i).Value)).Uint64() {
					return false
				}
			}

			b.Compose(value)
			for i := range value {
				if value[i] != expected[i] {
					return false
				}
			}
			return true
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestBaseExtendDrop(t *testing.T) {

	b, err := NewBaseFromValues([]uint64{3, 5})
	require.NoError(t, err)

	m, err := ring.NewModulus(7)
	require.NoError(t, err)

	ext, err := b.Extend(m)
	require.NoError(t, err)
	require.Equal(t, 3, ext.Size())
	require.True(t, b.IsSubbaseOf(ext))
	require.False(t, ext.IsSubbaseOf(b))

	_, err = b.Extend(b.At(0))
	require.Error(t, err)

	dropped, err := ext.Drop()
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 5}, []uint64{dropped.At(0).Value, dropped.At(1).Value})

	dropped, err = ext.DropValue(5)
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 7}, []uint64{dropped.At(0).Value, dropped.At(1).Value})

	_, err = ext.DropValue(11)
	require.Error(t, err)

	single, err := NewBaseFromValues([]uint64{13})
	require.NoError(t, err)
	_, err = single.Drop()
	require.Error(t, err)
}
