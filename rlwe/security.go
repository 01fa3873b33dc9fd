package rlwe

// SecurityLevel represents a security level in bits according to the
// HomomorphicEncryption.org security standard, based on the ternary
// secret, classical cost model.
type SecurityLevel int

const (
	// SecurityLevelNone disables the standard security enforcement.
	SecurityLevelNone SecurityLevel = 0
	SecurityLevel128  SecurityLevel = 128
	SecurityLevel192  SecurityLevel = 192
	SecurityLevel256  SecurityLevel = 256
)

// maxLogQ128, maxLogQ192 and maxLogQ256 map the polynomial degree to the
// largest bit-length of the coefficient modulus compliant with the
// HomomorphicEncryption.org tables.
var (
	maxLogQ128 = map[int]int{1024: 27, 2048: 54, 4096: 109, 8192: 218, 16384: 438, 32768: 881}
	maxLogQ192 = map[int]int{1024: 19, 2048: 37, 4096: 75, 8192: 152, 16384: 305, 32768: 611}
	maxLogQ256 = map[int]int{1024: 14, 2048: 29, 4096: 58, 8192: 118, 16384: 237, 32768: 476}
)

// MaxBitCount returns the largest bit-length of a coefficient modulus
// compliant with the given security level for the given polynomial
// degree, or zero if no parameters at that degree are listed in the
// standard. A SecurityLevelNone level places no bound.
func MaxBitCount(polyDegree int, level SecurityLevel) int {
	switch level {
	case SecurityLevelNone:
		// Impose a 2^(32 * 64) bound, the largest modulus expressible
		// on 64 limbs.
		return 32 * 64
	case SecurityLevel128:
		return maxLogQ128[polyDegree]
	case SecurityLevel192:
		return maxLogQ192[polyDegree]
	case SecurityLevel256:
		return maxLogQ256[polyDegree]
	}
	return 0
}
