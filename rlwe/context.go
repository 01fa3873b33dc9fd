package rlwe

import (
	"math/big"

	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/microsoft/SEAL-sub001/rns"
)

// ContextData holds the validation outcome and the precomputations
// attached to one set of encryption parameters in a modulus-switching
// chain: the RNS base and tool over its coefficient modulus, the NTT
// tables, and the scheme-specific plaintext lifting constants.
type ContextData struct {
	parms      EncryptionParameters
	qualifiers Qualifiers

	base    *rns.Base
	rnsTool *rns.Tool

	nttTables     []*ring.NTTTable
	plainNTTTable *ring.NTTTable

	totalCoeffModulus         *big.Int
	totalCoeffModulusBitCount int

	// coeffDivPlainModulus is floor(q/t) mod q_i, the BFV "Delta" in RNS form.
	coeffDivPlainModulus []uint64
	// upperHalfIncrement is (q mod t) mod q_i.
	upperHalfIncrement []uint64
	// coeffModulusModPlainModulus is q mod t.
	coeffModulusModPlainModulus uint64

	// plainUpperHalfThreshold is (t+1)/2 for BFV and 2^63 for CKKS.
	plainUpperHalfThreshold uint64
	// plainUpperHalfIncrement is q_i - t when every q_i is larger than t
	// (fast plain lift); see UpperHalfIncrementCKKS for the CKKS variant.
	plainUpperHalfIncrement []uint64

	// upperHalfThreshold is (q+1)/2, used by CKKS.
	upperHalfThreshold *big.Int

	chainIndex int
	prevIndex  int
	nextIndex  int
}

// Parms returns the encryption parameters of this level.
func (cd *ContextData) Parms() EncryptionParameters {
	return cd.parms
}

// ParmsID returns the content hash of the parameters of this level.
func (cd *ContextData) ParmsID() ParmsID {
	return cd.parms.ParmsID()
}

// Qualifiers returns the validation outcome of this level.
func (cd *ContextData) Qualifiers() Qualifiers {
	return cd.qualifiers
}

// Base returns the RNS base over the coefficient modulus, nil if the
// parameters did not validate that far.
func (cd *ContextData) Base() *rns.Base {
	return cd.base
}

// RNSTool returns the extended-base tool of this level, nil if the
// parameters did not validate that far.
func (cd *ContextData) RNSTool() *rns.Tool {
	return cd.rnsTool
}

// NTTTables returns the NTT tables of the coefficient modulus primes.
func (cd *ContextData) NTTTables() []*ring.NTTTable {
	return cd.nttTables
}

// PlainNTTTable returns the NTT table of the plaintext modulus, nil if
// batching is not supported.
func (cd *ContextData) PlainNTTTable() *ring.NTTTable {
	return cd.plainNTTTable
}

// TotalCoeffModulus returns the product of the coefficient modulus primes.
func (cd *ContextData) TotalCoeffModulus() *big.Int {
	return new(big.Int).Set(cd.totalCoeffModulus)
}

// TotalCoeffModulusBitCount returns the bit-length of the product of the
// coefficient modulus primes.
func (cd *ContextData) TotalCoeffModulusBitCount() int {
	return cd.totalCoeffModulusBitCount
}

// CoeffDivPlainModulus returns floor(q/t) mod q_i.
func (cd *ContextData) CoeffDivPlainModulus() []uint64 {
	return cd.coeffDivPlainModulus
}

// UpperHalfIncrement returns (q mod t) mod q_i.
func (cd *ContextData) UpperHalfIncrement() []uint64 {
	return cd.upperHalfIncrement
}

// CoeffModulusModPlainModulus returns q mod t.
func (cd *ContextData) CoeffModulusModPlainModulus() uint64 {
	return cd.coeffModulusModPlainModulus
}

// PlainUpperHalfThreshold returns the threshold above which a plaintext
// coefficient represents a negative value.
func (cd *ContextData) PlainUpperHalfThreshold() uint64 {
	return cd.plainUpperHalfThreshold
}

// PlainUpperHalfIncrement returns the per-prime increment applied to
// plaintext coefficients above the threshold.
func (cd *ContextData) PlainUpperHalfIncrement() []uint64 {
	return cd.plainUpperHalfIncrement
}

// UpperHalfThreshold returns (q+1)/2, nil outside the CKKS scheme.
func (cd *ContextData) UpperHalfThreshold() *big.Int {
	if cd.upperHalfThreshold == nil {
		return nil
	}
	return new(big.Int).Set(cd.upperHalfThreshold)
}

// ChainIndex returns the position of this level in the modulus-switching
// chain; the key level has the largest index and the last level has 0.
func (cd *ContextData) ChainIndex() int {
	return cd.chainIndex
}

// Context validates a set of encryption parameters and derives from it
// the modulus-switching chain: one ContextData per level, each level
// dropping the last prime of the previous coefficient modulus. The
// levels are stored in a slice indexed by their ParmsID; levels hold
// indices rather than pointers to one another.
type Context struct {
	securityLevel SecurityLevel

	levels []*ContextData
	index  map[ParmsID]int

	keyParmsID   ParmsID
	firstParmsID ParmsID
	lastParmsID  ParmsID

	usingKeyswitching bool
}

// NewContext validates parms against the given security level and builds
// the modulus-switching chain. Validation failures are recorded in the
// qualifiers of the key level rather than returned as errors; the chain
// is expanded past the first level only if expandModChain is true.
func NewContext(parms EncryptionParameters, expandModChain bool, securityLevel SecurityLevel) *Context {

	ctx := &Context{
		securityLevel: securityLevel,
		index:         map[ParmsID]int{},
	}

	// The key level is always present, even if the parameters are invalid.
	ctx.append(ctx.validate(parms))
	ctx.keyParmsID = parms.ParmsID()

	// The first level drops one prime off the key level; it exists only
	// if the key level is valid and has more than one prime.
	ctx.firstParmsID = ctx.keyParmsID
	if keyData := ctx.levels[0]; keyData.qualifiers.ParametersSet() && len(parms.coeffModulus) > 1 {
		if next, ok := ctx.createNextContextData(keyData); ok {
			ctx.append(next)
			ctx.firstParmsID = next.parms.ParmsID()
		}
	}

	ctx.usingKeyswitching = ctx.firstParmsID != ctx.keyParmsID

	ctx.lastParmsID = ctx.firstParmsID
	if expandModChain && ctx.levels[ctx.index[ctx.firstParmsID]].qualifiers.ParametersSet() {
		prev := ctx.levels[ctx.index[ctx.firstParmsID]]
		for len(prev.parms.coeffModulus) > 1 {
			next, ok := ctx.createNextContextData(prev)
			if !ok {
				break
			}
			ctx.append(next)
			ctx.lastParmsID = next.parms.ParmsID()
			prev = next
		}
	}

	// Chain indices count down to 0 at the last level; prev/next indices
	// stitch the levels together through the arena.
	for i, cd := range ctx.levels {
		cd.chainIndex = len(ctx.levels) - 1 - i
		cd.prevIndex = i - 1
		if i == len(ctx.levels)-1 {
			cd.nextIndex = -1
		} else {
			cd.nextIndex = i + 1
		}
	}

	return ctx
}

func (ctx *Context) append(cd *ContextData) {
	ctx.index[cd.parms.ParmsID()] = len(ctx.levels)
	ctx.levels = append(ctx.levels, cd)
}

// createNextContextData validates the parameters obtained by dropping
// the last coefficient modulus prime of prev. It returns false if the
// derived parameters do not validate.
func (ctx *Context) createNextContextData(prev *ContextData) (*ContextData, bool) {

	nextParms := prev.parms
	coeffModulus := prev.parms.CoeffModulus()

	values := make([]uint64, len(coeffModulus)-1)
	for i := range values {
		values[i] = coeffModulus[i].Value
	}
	if err := nextParms.SetCoeffModulus(values); err != nil {
		return nil, false
	}

	next := ctx.validate(nextParms)
	if !next.qualifiers.ParametersSet() {
		return nil, false
	}

	return next, true
}

// validate runs all parameter checks in order, stopping at the first
// failure, and performs the level precomputations when they pass.
func (ctx *Context) validate(parms EncryptionParameters) *ContextData {

	cd := &ContextData{parms: parms}
	cd.qualifiers.ParameterError = ParameterErrorSuccess

	if parms.scheme == SchemeNone {
		cd.qualifiers.ParameterError = ParameterErrorInvalidScheme
		return cd
	}

	coeffModulus := parms.coeffModulus
	plainModulus := parms.plainModulus

	if len(coeffModulus) < rns.BaseSizeMin || len(coeffModulus) > rns.BaseSizeMax {
		cd.qualifiers.ParameterError = ParameterErrorInvalidCoeffModulusSize
		return cd
	}

	for _, m := range coeffModulus {
		if m.Value>>UserModBitCountMax != 0 || m.Value>>(UserModBitCountMin-1) == 0 {
			cd.qualifiers.ParameterError = ParameterErrorInvalidCoeffModulusBitCount
			return cd
		}
	}

	cd.totalCoeffModulus = big.NewInt(1)
	for _, m := range coeffModulus {
		cd.totalCoeffModulus.Mul(cd.totalCoeffModulus, new(big.Int).SetUint64(m.Value))
	}
	cd.totalCoeffModulusBitCount = cd.totalCoeffModulus.BitLen()

	degree := parms.polyDegree
	if degree < rns.PolyDegreeMin || degree > rns.PolyDegreeMax {
		cd.qualifiers.ParameterError = ParameterErrorInvalidPolyModulusDegree
		return cd
	}
	if degree&(degree-1) != 0 {
		cd.qualifiers.ParameterError = ParameterErrorInvalidPolyModulusDegreeNonPowerOfTwo
		return cd
	}

	if uint64(degree) > ^uint64(0)/uint64(len(coeffModulus)) {
		cd.qualifiers.ParameterError = ParameterErrorInvalidParametersTooLarge
		return cd
	}

	// The polynomial modulus is X^(2^k)+1.
	cd.qualifiers.UsingFFT = true

	cd.qualifiers.SecurityLevel = ctx.securityLevel
	if cd.totalCoeffModulusBitCount > MaxBitCount(degree, ctx.securityLevel) {
		cd.qualifiers.SecurityLevel = SecurityLevelNone
		if ctx.securityLevel != SecurityLevelNone {
			cd.qualifiers.ParameterError = ParameterErrorInvalidParametersInsecure
			return cd
		}
	}

	base, err := rns.NewBase(coeffModulus)
	if err != nil {
		cd.qualifiers.ParameterError = ParameterErrorFailedCreatingRNSBase
		return cd
	}
	cd.base = base

	cd.qualifiers.UsingNTT = true
	if cd.nttTables, err = ring.NewNTTTables(degree, coeffModulus); err != nil {
		cd.qualifiers.UsingNTT = false
		cd.qualifiers.ParameterError = ParameterErrorInvalidCoeffModulusNoNTT
		return cd
	}

	switch parms.scheme {

	case SchemeBFV:

		if plainModulus.Value>>PlainModBitCountMax != 0 || plainModulus.Value>>(PlainModBitCountMin-1) == 0 {
			cd.qualifiers.ParameterError = ParameterErrorInvalidPlainModulusBitCount
			return cd
		}

		for _, m := range coeffModulus {
			if !ring.AreCoprime(m.Value, plainModulus.Value) {
				cd.qualifiers.ParameterError = ParameterErrorInvalidPlainModulusCoprimality
				return cd
			}
		}

		if new(big.Int).SetUint64(plainModulus.Value).Cmp(cd.totalCoeffModulus) >= 0 {
			cd.qualifiers.ParameterError = ParameterErrorInvalidPlainModulusTooLarge
			return cd
		}

		// Batching requires the NTT over the plaintext modulus.
		cd.qualifiers.UsingBatching = true
		if cd.plainNTTTable, err = ring.NewNTTTable(degree, plainModulus); err != nil {
			cd.qualifiers.UsingBatching = false
			cd.plainNTTTable = nil
		}

		// Plaintext coefficients lift directly into RNS form when every
		// prime exceeds the plaintext modulus.
		cd.qualifiers.UsingFastPlainLift = true
		for _, m := range coeffModulus {
			cd.qualifiers.UsingFastPlainLift = cd.qualifiers.UsingFastPlainLift && m.Value > plainModulus.Value
		}

		// Delta = floor(q/t) and q mod t, in RNS form.
		bigT := new(big.Int).SetUint64(plainModulus.Value)
		delta, rem := new(big.Int).QuoRem(cd.totalCoeffModulus, bigT, new(big.Int))

		cd.coeffModulusModPlainModulus = rem.Uint64()

		cd.coeffDivPlainModulus = make([]uint64, len(coeffModulus))
		cd.upperHalfIncrement = make([]uint64, len(coeffModulus))
		for i, m := range coeffModulus {
			bigQi := new(big.Int).SetUint64(m.Value)
			cd.coeffDivPlainModulus[i] = new(big.Int).Mod(delta, bigQi).Uint64()
			cd.upperHalfIncrement[i] = new(big.Int).Mod(rem, bigQi).Uint64()
		}

		cd.plainUpperHalfThreshold = (plainModulus.Value + 1) >> 1

		cd.plainUpperHalfIncrement = make([]uint64, len(coeffModulus))
		if cd.qualifiers.UsingFastPlainLift {
			for i, m := range coeffModulus {
				cd.plainUpperHalfIncrement[i] = m.Value - plainModulus.Value
			}
		} else {
			// q - t, decomposed in RNS form.
			qSubT := new(big.Int).Sub(cd.totalCoeffModulus, bigT)
			for i, m := range coeffModulus {
				cd.plainUpperHalfIncrement[i] = new(big.Int).Mod(qSubT, new(big.Int).SetUint64(m.Value)).Uint64()
			}
		}

	case SchemeCKKS:

		if plainModulus.Value != 0 {
			cd.qualifiers.ParameterError = ParameterErrorInvalidPlainModulusNonZero
			return cd
		}

		// Slot encoding is always available.
		cd.qualifiers.UsingBatching = true

		// Plaintext coefficients can exceed the primes, no fast lift.
		cd.qualifiers.UsingFastPlainLift = false

		cd.plainUpperHalfThreshold = uint64(1) << 63

		// 2^64 mod q_i, to lift signed 64-bit plaintext coefficients.
		cd.plainUpperHalfIncrement = make([]uint64, len(coeffModulus))
		for i, m := range coeffModulus {
			tmp := m.Reduce(uint64(1) << 63)
			cd.plainUpperHalfIncrement[i] = m.MulMod(tmp, m.Value-2)
		}

		cd.upperHalfThreshold = new(big.Int).Add(cd.totalCoeffModulus, big.NewInt(1))
		cd.upperHalfThreshold.Rsh(cd.upperHalfThreshold, 1)

	default:
		cd.qualifiers.ParameterError = ParameterErrorInvalidScheme
		return cd
	}

	if cd.rnsTool, err = rns.NewTool(degree, base, plainModulus); err != nil {
		cd.qualifiers.ParameterError = ParameterErrorFailedCreatingRNSTool
		return cd
	}

	cd.qualifiers.UsingDescendingModulusChain = true
	for i := 0; i < len(coeffModulus)-1; i++ {
		cd.qualifiers.UsingDescendingModulusChain =
			cd.qualifiers.UsingDescendingModulusChain && coeffModulus[i].Value > coeffModulus[i+1].Value
	}

	return cd
}

// SecurityLevel returns the security level the context enforces.
func (ctx *Context) SecurityLevel() SecurityLevel {
	return ctx.securityLevel
}

// ParametersSet returns true if the first level of the chain is valid.
func (ctx *Context) ParametersSet() bool {
	return ctx.FirstContextData().qualifiers.ParametersSet()
}

// UsingKeyswitching returns true if the chain has a dedicated key level.
func (ctx *Context) UsingKeyswitching() bool {
	return ctx.usingKeyswitching
}

// KeyParmsID returns the ParmsID of the key level.
func (ctx *Context) KeyParmsID() ParmsID {
	return ctx.keyParmsID
}

// FirstParmsID returns the ParmsID of the first data level.
func (ctx *Context) FirstParmsID() ParmsID {
	return ctx.firstParmsID
}

// LastParmsID returns the ParmsID of the last data level.
func (ctx *Context) LastParmsID() ParmsID {
	return ctx.lastParmsID
}

// ContextData returns the level with the given ParmsID, or nil if the
// chain holds no such level.
func (ctx *Context) ContextData(id ParmsID) *ContextData {
	if i, ok := ctx.index[id]; ok {
		return ctx.levels[i]
	}
	return nil
}

// KeyContextData returns the key level.
func (ctx *Context) KeyContextData() *ContextData {
	return ctx.levels[ctx.index[ctx.keyParmsID]]
}

// FirstContextData returns the first data level.
func (ctx *Context) FirstContextData() *ContextData {
	return ctx.levels[ctx.index[ctx.firstParmsID]]
}

// LastContextData returns the last data level.
func (ctx *Context) LastContextData() *ContextData {
	return ctx.levels[ctx.index[ctx.lastParmsID]]
}

// NextContextData returns the level following the given one in the
// chain, or nil at the end of the chain or for an unknown ParmsID.
func (ctx *Context) NextContextData(id ParmsID) *ContextData {
	i, ok := ctx.index[id]
	if !ok || ctx.levels[i].nextIndex < 0 {
		return nil
	}
	return ctx.levels[ctx.levels[i].nextIndex]
}

// PreviousContextData returns the level preceding the given one in the
// chain, or nil at the key level or for an unknown ParmsID.
func (ctx *Context) PreviousContextData(id ParmsID) *ContextData {
	i, ok := ctx.index[id]
	if !ok || ctx.levels[i].prevIndex < 0 {
		return nil
	}
	return ctx.levels[ctx.levels[i].prevIndex]
}
