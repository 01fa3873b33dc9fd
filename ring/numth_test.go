package ring

import (
	"testing"

	"github.com/microsoft/SEAL-sub001/utils"
	"github.com/microsoft/SEAL-sub001/utils/sampling"
	"github.com/stretchr/testify/require"
)

func TestIsPrime(t *testing.T) {
	for _, p := range []uint64{2, 3, 5, 97, 786433, 0x1fffffffffe00001} {
		require.True(t, IsPrime(p), "%d should be prime", p)
	}
	// 561 is a Carmichael number.
	for _, c := range []uint64{0, 1, 4, 100, 561, 0x1fffffffffe00000} {
		require.False(t, IsPrime(c), "%d should be composite", c)
	}
}

func TestModExp(t *testing.T) {
	require.Equal(t, uint64(5), ModExp(3, 5, 7))
	require.Equal(t, uint64(1), ModExp(3, 0, 7))
	require.Equal(t, uint64(0), ModExp(0, 3, 7))

	// Fermat: a^(p-1) = 1 mod p.
	p := uint64(0x1fffffffffe00001)
	for _, a := range []uint64{2, 3, 12345, p - 1} {
		require.Equal(t, uint64(1), ModExp(a, p-1, p))
	}
}

func TestGCD(t *testing.T) {
	require.Equal(t, uint64(6), GCD(48, 18))
	require.Equal(t, uint64(1), GCD(17, 13))
	require.Equal(t, uint64(5), GCD(0, 5))
	require.Equal(t, uint64(5), GCD(5, 0))

	require.True(t, AreCoprime(15, 28))
	require.False(t, AreCoprime(15, 27))
}

func TestXGCD(t *testing.T) {
	for _, c := range [][2]uint64{{48, 18}, {17, 13}, {240, 46}, {1, 1}} {
		gcd, a, b := XGCD(c[0], c[1])
		require.Equal(t, GCD(c[0], c[1]), gcd)
		require.Equal(t, int64(gcd), a*int64(c[0])+b*int64(c[1]))
	}
}

func TestTryInvMod(t *testing.T) {
	inv, ok := TryInvMod(3, 7)
	require.True(t, ok)
	require.Equal(t, uint64(1), (3*inv)%7)

	inv, ok = TryInvMod(5, 256)
	require.True(t, ok)
	require.Equal(t, uint64(1), (5*inv)%256)

	_, ok = TryInvMod(6, 9)
	require.False(t, ok)

	_, ok = TryInvMod(0, 7)
	require.False(t, ok)
}

func TestPrimitiveRoot(t *testing.T) {

	q, err := NewModulus(97)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	t.Run("TryPrimitiveRoot", func(t *testing.T) {
		root, ok := TryPrimitiveRoot(32, q, prng)
		require.True(t, ok)
		require.True(t, IsPrimitiveRoot(root, 32, q))
	})

	t.Run("TryMinimalPrimitiveRoot", func(t *testing.T) {
		root, ok := TryMinimalPrimitiveRoot(32, q, prng)
		require.True(t, ok)
		require.True(t, IsPrimitiveRoot(root, 32, q))
		// A primitive 32nd root satisfies root^16 = -1 mod q.
		require.Equal(t, q.Value-1, ModExp(root, 16, q.Value))
		// Minimality: no smaller primitive root exists.
		for smaller := uint64(2); smaller < root; smaller++ {
			require.False(t, IsPrimitiveRoot(smaller, 32, q))
		}
	})
}

func TestGetPrimes(t *testing.T) {

	t.Run("Valid", func(t *testing.T) {
		primes, err := GetPrimes(16, 20, 5)
		require.NoError(t, err)
		require.Len(t, primes, 5)

		values := make([]uint64, len(primes))
		for i, p := range primes {
			values[i] = p.Value
			require.True(t, p.IsPrime)
			require.Equal(t, 20, p.BitCount)
			require.Equal(t, uint64(1), p.Value%32)
		}
		require.True(t, utils.AllDistinct(values))

		// Candidates are scanned downward.
		for i := 1; i < len(values); i++ {
			require.Greater(t, values[i-1], values[i])
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		// The only 12-bit candidate congruent to 1 mod 2048 is 2049 = 3*683.
		_, err := GetPrimes(1024, 12, 1)
		require.Error(t, err)
	})

	t.Run("GetPrime", func(t *testing.T) {
		p, err := GetPrime(4096, 20)
		require.NoError(t, err)
		require.True(t, p.IsPrime)
		require.Equal(t, uint64(1), p.Value%8192)
	})
}
