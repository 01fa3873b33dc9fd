package rns

import (
	"testing"

	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/stretchr/testify/require"
)

func TestUintArithmetic(t *testing.T) {

	m, err := ring.NewModulus(97)
	require.NoError(t, err)

	t.Run("MulUintWord", func(t *testing.T) {
		// (2^64 + 2) * 3 = 3*2^64 + 6
		result := make([]uint64, 2)
		mulUintWord([]uint64{2, 1}, 3, result)
		require.Equal(t, []uint64{6, 3}, result)

		// Truncating: (2^64 - 1) * 2 mod 2^64 = 2^64 - 2
		result = make([]uint64, 1)
		mulUintWord([]uint64{^uint64(0)}, 2, result)
		require.Equal(t, []uint64{^uint64(0) - 1}, result)
	})

	t.Run("MulManyUintExcept", func(t *testing.T) {
		result := make([]uint64, 2)
		mulManyUintExcept([]uint64{3, 5, 7}, 1, result)
		require.Equal(t, []uint64{21, 0}, result)
	})

	t.Run("ModUint", func(t *testing.T) {
		// 2^64 mod 97 = 61
		require.Equal(t, uint64(61), modUint([]uint64{0, 1}, m))
		require.Equal(t, uint64(14), modUint([]uint64{14}, m))
		require.Equal(t, uint64(0), modUint([]uint64{0, 0, 0}, m))
	})

	t.Run("AddUintUintMod", func(t *testing.T) {
		modulus := []uint64{100, 0}
		result := make([]uint64, 2)
		addUintUintMod([]uint64{60, 0}, []uint64{50, 0}, modulus, result)
		require.Equal(t, []uint64{10, 0}, result)
		addUintUintMod([]uint64{60, 0}, []uint64{30, 0}, modulus, result)
		require.Equal(t, []uint64{90, 0}, result)
	})

	t.Run("LessThanUint", func(t *testing.T) {
		require.True(t, lessThanUint([]uint64{5, 1}, []uint64{3, 2}))
		require.False(t, lessThanUint([]uint64{3, 2}, []uint64{5, 1}))
		require.False(t, lessThanUint([]uint64{5, 1}, []uint64{5, 1}))
	})

	t.Run("SignificantBitCount", func(t *testing.T) {
		require.Equal(t, 0, significantBitCount([]uint64{0, 0}))
		require.Equal(t, 1, significantBitCount([]uint64{1, 0}))
		require.Equal(t, 65, significantBitCount([]uint64{7, 1}))
	})

	t.Run("MulAddUintMod", func(t *testing.T) {
		// 90 * 90 + 90 mod 97
		require.Equal(t, uint64((90*90+90)%97), mulAddUintMod(90, 90, 90, m))
	})

	t.Run("NegateUintMod", func(t *testing.T) {
		require.Equal(t, uint64(0), negateUintMod(0, m))
		require.Equal(t, uint64(96), negateUintMod(1, m))
	})

	t.Run("DotProductMod", func(t *testing.T) {
		a := []uint64{10, 20, 30}
		b := []uint64{40, 50, 60}
		require.Equal(t, uint64((10*40+20*50+30*60)%97), dotProductMod(a, b, m))
	})
}
