package rlwe

// ParameterError identifies the first check that failed while validating
// a set of encryption parameters, or ParameterErrorSuccess if all checks
// passed.
type ParameterError int

const (
	// ParameterErrorNone indicates parameters that were constructed but
	// not yet validated.
	ParameterErrorNone ParameterError = iota
	// ParameterErrorSuccess indicates valid parameters.
	ParameterErrorSuccess
	ParameterErrorInvalidScheme
	ParameterErrorInvalidCoeffModulusSize
	ParameterErrorInvalidCoeffModulusBitCount
	ParameterErrorInvalidCoeffModulusNoNTT
	ParameterErrorInvalidPolyModulusDegree
	ParameterErrorInvalidPolyModulusDegreeNonPowerOfTwo
	ParameterErrorInvalidParametersTooLarge
	ParameterErrorInvalidParametersInsecure
	ParameterErrorFailedCreatingRNSBase
	ParameterErrorInvalidPlainModulusBitCount
	ParameterErrorInvalidPlainModulusCoprimality
	ParameterErrorInvalidPlainModulusTooLarge
	ParameterErrorInvalidPlainModulusNonZero
	ParameterErrorFailedCreatingRNSTool
)

// String returns the name of the parameter error.
func (e ParameterError) String() string {
	switch e {
	case ParameterErrorNone:
		return "none"
	case ParameterErrorSuccess:
		return "success"
	case ParameterErrorInvalidScheme:
		return "invalid_scheme"
	case ParameterErrorInvalidCoeffModulusSize:
		return "invalid_coeff_modulus_size"
	case ParameterErrorInvalidCoeffModulusBitCount:
		return "invalid_coeff_modulus_bit_count"
	case ParameterErrorInvalidCoeffModulusNoNTT:
		return "invalid_coeff_modulus_no_ntt"
	case ParameterErrorInvalidPolyModulusDegree:
		return "invalid_poly_modulus_degree"
	case ParameterErrorInvalidPolyModulusDegreeNonPowerOfTwo:
		return "invalid_poly_modulus_degree_non_power_of_two"
	case ParameterErrorInvalidParametersTooLarge:
		return "invalid_parameters_too_large"
	case ParameterErrorInvalidParametersInsecure:
		return "invalid_parameters_insecure"
	case ParameterErrorFailedCreatingRNSBase:
		return "failed_creating_rns_base"
	case ParameterErrorInvalidPlainModulusBitCount:
		return "invalid_plain_modulus_bit_count"
	case ParameterErrorInvalidPlainModulusCoprimality:
		return "invalid_plain_modulus_coprimality"
	case ParameterErrorInvalidPlainModulusTooLarge:
		return "invalid_plain_modulus_too_large"
	case ParameterErrorInvalidPlainModulusNonZero:
		return "invalid_plain_modulus_non_zero"
	case ParameterErrorFailedCreatingRNSTool:
		return "failed_creating_rns_tool"
	}
	return "invalid parameter error"
}

// Message returns a human readable description of the parameter error.
func (e ParameterError) Message() string {
	switch e {
	case ParameterErrorNone:
		return "constructed but not yet validated"
	case ParameterErrorSuccess:
		return "valid"
	case ParameterErrorInvalidScheme:
		return "scheme must be BFV or CKKS"
	case ParameterErrorInvalidCoeffModulusSize:
		return "the number of coefficient modulus primes is out of bounds"
	case ParameterErrorInvalidCoeffModulusBitCount:
		return "the bit count of a coefficient modulus prime is out of bounds"
	case ParameterErrorInvalidCoeffModulusNoNTT:
		return "the coefficient modulus primes are not congruent to 1 modulo 2 * polyModulusDegree"
	case ParameterErrorInvalidPolyModulusDegree:
		return "polyModulusDegree is out of bounds"
	case ParameterErrorInvalidPolyModulusDegreeNonPowerOfTwo:
		return "polyModulusDegree is not a power of two"
	case ParameterErrorInvalidParametersTooLarge:
		return "the parameters are too large to be addressable"
	case ParameterErrorInvalidParametersInsecure:
		return "the parameters are not compliant with the HomomorphicEncryption.org security standard"
	case ParameterErrorFailedCreatingRNSBase:
		return "the RNS base cannot be constructed"
	case ParameterErrorInvalidPlainModulusBitCount:
		return "the bit count of plainModulus is out of bounds"
	case ParameterErrorInvalidPlainModulusCoprimality:
		return "plainModulus is not coprime to the coefficient modulus"
	case ParameterErrorInvalidPlainModulusTooLarge:
		return "plainModulus is not smaller than the coefficient modulus"
	case ParameterErrorInvalidPlainModulusNonZero:
		return "plainModulus is not zero"
	case ParameterErrorFailedCreatingRNSTool:
		return "the RNS tool cannot be constructed"
	}
	return "invalid parameter error"
}

// Qualifiers records the outcome of the validation of a set of
// encryption parameters: the first failed check, if any, and the
// capabilities the parameters enable. Invalid parameters carry their
// qualifiers as data rather than aborting context construction.
type Qualifiers struct {
	// ParameterError is the first check that failed, or
	// ParameterErrorSuccess.
	ParameterError ParameterError

	// UsingFFT is true if the polynomial modulus is of the form X^(2^k)+1.
	UsingFFT bool

	// UsingNTT is true if every coefficient modulus prime supports the
	// negacyclic NTT of the polynomial degree.
	UsingNTT bool

	// UsingBatching is true if the plaintext space supports SIMD slot
	// encoding.
	UsingBatching bool

	// UsingFastPlainLift is true if every coefficient modulus prime is
	// larger than the plaintext modulus.
	UsingFastPlainLift bool

	// UsingDescendingModulusChain is true if the coefficient modulus
	// primes are in strictly decreasing order.
	UsingDescendingModulusChain bool

	// SecurityLevel is the security level the parameters comply with,
	// SecurityLevelNone if they comply with none.
	SecurityLevel SecurityLevel
}

// ParametersSet returns true if the parameters passed all validation checks.
func (q Qualifiers) ParametersSet() bool {
	return q.ParameterError == ParameterErrorSuccess
}
