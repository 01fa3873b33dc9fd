package ring

import (
	"fmt"

	"github.com/microsoft/SEAL-sub001/utils/sampling"
)

// MillerRabinRounds is the default number of rounds of the
// Miller-Rabin primality test carried out by IsPrime.
const MillerRabinRounds = 40

// IsPrime applies MillerRabinRounds rounds of the Miller-Rabin
// probabilistic primality test to x.
func IsPrime(x uint64) bool {
	return IsPrimeRounds(x, MillerRabinRounds)
}

// IsPrimeRounds applies the given number of rounds of the Miller-Rabin
// probabilistic primality test to x.
func IsPrimeRounds(x uint64, rounds int) bool {

	if x < 2 {
		return false
	}

	// Trial division by the first few primes.
	for _, p := range [6]uint64{2, 3, 5, 7, 11, 13} {
		if x == p {
			return true
		}
		if x%p == 0 {
			return false
		}
	}

	// Finds r and odd d such that x = 2^r * d + 1.
	d, r := x-1, 0
	for d&1 == 0 {
		d >>= 1
		r++
	}

	prng, err := sampling.NewPRNG()
	if err != nil {
		panic(err)
	}

	bredconstant := GenBRedConstant(x)

	// First round uses the witness a = 2, the remaining
	// rounds use uniform witnesses in [3, x-1].
	for i := 0; i < rounds; i++ {

		a := uint64(2)
		if i > 0 {
			a = 3 + sampling.RandUint64(prng)%(x-3)
		}

		w := ModExp(a, d, x)
		if w == 1 || w == x-1 {
			continue
		}

		for count := 0; w != x-1 && count < r-1; count++ {
			w = BRed(w, w, x, bredconstant)
		}

		if w != x-1 {
			return false
		}
	}

	return true
}

// ModExp performs the modular exponentiation x^e mod p,
// x and p are required to be at most 64 bits to avoid an overflow.
func ModExp(x, e, p uint64) (result uint64) {
	bredconstant := GenBRedConstant(p)
	result = 1
	x = BRedAdd(x, p, bredconstant)
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = BRed(result, x, p, bredconstant)
		}
		x = BRed(x, x, p, bredconstant)
	}
	return result
}

// ModexpMontgomery performs the modular exponentiation x^e mod p,
// where x is in the Montgomery domain.
func ModexpMontgomery(x uint64, e int, q, mredconstant uint64, bredconstant [2]uint64) (result uint64) {
	result = MForm(1, q, bredconstant)
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = MRed(result, x, q, mredconstant)
		}
		x = MRed(x, x, q, mredconstant)
	}
	return result
}

// GCD computes the greatest common divisor of a and b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// AreCoprime returns true if gcd(a, b) = 1.
func AreCoprime(a, b uint64) bool {
	return GCD(a, b) == 1
}

// XGCD computes the extended gcd of x and y, returning gcd
// along with Bezout coefficients a, b such that a*x + b*y = gcd.
func XGCD(x, y uint64) (gcd uint64, a, b int64) {
	var prevA, curA int64 = 1, 0
	var prevB, curB int64 = 0, 1
	for y != 0 {
		q := int64(x / y)
		x, y = y, x%y
		prevA, curA = curA, prevA-q*curA
		prevB, curB = curB, prevB-q*curB
	}
	return x, prevA, prevB
}

// TryInvMod computes the multiplicative inverse of v modulo q,
// returning ok = false if v is not invertible.
func TryInvMod(v, q uint64) (inv uint64, ok bool) {
	v %= q
	if v == 0 {
		return 0, false
	}
	gcd, a, _ := XGCD(v, q)
	if gcd != 1 {
		return 0, false
	}
	if a < 0 {
		return uint64(a + int64(q)), true
	}
	return uint64(a), true
}

// IsPrimitiveRoot returns true if root is a primitive degree-th root
// of unity modulo q. The degree must be a power of two.
func IsPrimitiveRoot(root, degree uint64, q Modulus) bool {
	if root == 0 {
		return false
	}
	// For degree a power of two it suffices to check root^(degree/2) = -1 mod q.
	return ModExp(root, degree>>1, q.Value) == q.Value-1
}

// TryPrimitiveRoot attempts to find a primitive degree-th root of unity
// modulo q, sampling candidates from the given PRNG. The degree must be
// a power of two and q prime.
func TryPrimitiveRoot(degree uint64, q Modulus, prng sampling.PRNG) (root uint64, ok bool) {

	groupSize := q.Value - 1
	if groupSize%degree != 0 {
		return 0, false
	}
	quotientSize := groupSize / degree

	// A random element raised to the power (q-1)/degree has order dividing
	// degree, and order exactly degree with probability phi(degree)/degree = 1/2.
	for attempt := 0; attempt < 100; attempt++ {
		candidate := BRedAdd(sampling.RandUint64(prng), q.Value, q.BRedConstant)
		root = ModExp(candidate, quotientSize, q.Value)
		if IsPrimitiveRoot(root, degree, q) {
			return root, true
		}
	}

	return 0, false
}

// TryMinimalPrimitiveRoot attempts to find the smallest primitive degree-th
// root of unity modulo q. The degree must be a power of two and q prime.
func TryMinimalPrimitiveRoot(degree uint64, q Modulus, prng sampling.PRNG) (root uint64, ok bool) {

	if root, ok = TryPrimitiveRoot(degree, q, prng); !ok {
		return 0, false
	}

	// The primitive degree-th roots are exactly the odd powers of root;
	// scans all of them keeping the smallest.
	generatorSq := BRed(root, root, q.Value, q.BRedConstant)
	current := root
	for i := uint64(0); i < degree; i += 2 {
		if current < root {
			root = current
		}
		current = BRed(current, generatorSq, q.Value, q.BRedConstant)
	}

	return root, true
}

// GetPrimes returns count primes of the given bit-size, each congruent
// to 1 modulo 2*nttSize. Candidates are scanned downward from
// 2^bitSize - 2*nttSize + 1 and the scan stops at 2^(bitSize-1); an error
// is returned if the range is exhausted before count primes are found.
func GetPrimes(nttSize uint64, bitSize, count int) (primes []Modulus, err error) {

	if count < 1 {
		return nil, fmt.Errorf("count must be positive but is %d", count)
	}
	if nttSize == 0 {
		return nil, fmt.Errorf("nttSize must be positive")
	}
	if bitSize <= 1 || bitSize > ModulusBitCountMax {
		return nil, fmt.Errorf("bitSize must be in [2, %d] but is %d", ModulusBitCountMax, bitSize)
	}

	factor := 2 * nttSize
	value := uint64(1) << bitSize
	if value < factor {
		return nil, fmt.Errorf("failed to find enough qualifying primes")
	}
	value = value - factor + 1

	lowerBound := uint64(1) << (bitSize - 1)

	primes = make([]Modulus, 0, count)
	for count > 0 && value > lowerBound {
		if IsPrime(value) {
			m, err := NewModulus(value)
			if err != nil {
				return nil, err
			}
			primes = append(primes, m)
			count--
		}
		value -= factor
	}

	if count > 0 {
		return nil, fmt.Errorf("failed to find enough qualifying primes")
	}

	return primes, nil
}

// GetPrime returns a single prime of the given bit-size congruent
// to 1 modulo 2*nttSize.
func GetPrime(nttSize uint64, bitSize int) (Modulus, error) {
	primes, err := GetPrimes(nttSize, bitSize, 1)
	if err != nil {
		return Modulus{}, err
	}
	return primes[0], nil
}
