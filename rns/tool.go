package rns

import (
	"fmt"

	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/microsoft/SEAL-sub001/utils"
	"github.com/microsoft/SEAL-sub001/utils/structs"
)

const (
	// BaseSizeMin is the smallest supported RNS base size for a Tool.
	BaseSizeMin = 1
	// BaseSizeMax is the largest supported RNS base size for a Tool.
	BaseSizeMax = 64
	// PolyDegreeMin is the smallest supported polynomial degree.
	PolyDegreeMin = 2
	// PolyDegreeMax is the largest supported polynomial degree.
	PolyDegreeMax = 131072
)

// Tool implements the extended-base operations of [BEHZ16] over
// polynomials in RNS form: base extension q -> Bsk U {m_tilde},
// Montgomery reduction of the m_tilde factor, approximate flooring by q,
// exact Shenoy-Kumaresan conversion Bsk -> q, division and rounding by
// the last modulus of q, and the {t, gamma} scale-and-round used for
// decryption.
//
// Polynomials are stored in modulus-major order: the coefficients modulo
// the i-th modulus of a base occupy input[i*n : (i+1)*n].
type Tool struct {
	n int

	t ring.Modulus

	baseQ         *Base
	baseB         *Base
	baseBsk       *Base
	baseBskMTilde *Base
	baseTGamma    *Base

	mTilde ring.Modulus
	mSk    ring.Modulus
	gamma  ring.Modulus

	baseQToBskConv    *Converter
	baseQToMTildeConv *Converter
	baseBToQConv      *Converter
	baseBToMSkConv    *Converter
	baseQToTGammaConv *Converter

	baseBskNTTTables []*ring.NTTTable

	// prodBModQ[i] = prod(B) mod q_i.
	prodBModQ []uint64
	// invProdQModBsk[i] = prod(q)^-1 mod Bsk_i, in Montgomery form.
	invProdQModBsk []uint64
	// prodQModBsk[i] = prod(q) mod Bsk_i.
	prodQModBsk []uint64
	// invProdBModMSk = prod(B)^-1 mod m_sk, in Montgomery form.
	invProdBModMSk uint64
	// invMTildeModBsk[i] = m_tilde^-1 mod Bsk_i, in Montgomery form.
	invMTildeModBsk []uint64
	// invProdQModMTilde = prod(q)^-1 mod m_tilde.
	invProdQModMTilde uint64
	// mTildeModQ[i] = m_tilde mod q_i, in Montgomery form.
	mTildeModQ []uint64

	// invGammaModT = gamma^-1 mod t. Barrett form, as t may be even.
	invGammaModT uint64
	// prodTGammaModQ[i] = t*gamma mod q_i, in Montgomery form.
	prodTGammaModQ []uint64
	// negInvQModTGamma[i] = -prod(q)^-1 mod {t, gamma}_i. Barrett form,
	// as t may be even.
	negInvQModTGamma []uint64

	// invQLastModQ[i] = q_last^-1 mod q_i.
	invQLastModQ []uint64
	// invQLastModQMont is invQLastModQ in Montgomery form.
	invQLastModQMont []uint64

	pool structs.BufferPool[*[]uint64]
}

// NewTool instantiates the extended bases and the precomputed constants
// for polynomials of degree n over the base q, with an optional
// plaintext modulus t. A zero-valued t disables the {t, gamma} related
// operations.
func NewTool(n int, q *Base, t ring.Modulus) (tool *Tool, err error) {

	if q.Size() < BaseSizeMin || q.Size() > BaseSizeMax {
		return nil, fmt.Errorf("invalid base: size %d is out of bounds", q.Size())
	}

	if n < PolyDegreeMin || n > PolyDegreeMax || !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("invalid degree: %d is not a power of two in [%d, %d]", n, PolyDegreeMin, PolyDegreeMax)
	}

	tool = &Tool{n: n, t: t, baseQ: q}

	baseQSize := q.Size()

	// The base B may need one more element than q: the flooring requires
	// K * n * t * q^2 < q * prod(B) * m_sk, where K accounts for the cross
	// terms of larger ciphertexts; 32 bits are reserved for K * n, while
	// the primes of B and m_sk have exactly ModulusBitCountMax bits.
	baseBSize := baseQSize
	if 32+t.BitCount+q.ProdBitCount() >= ring.ModulusBitCountMax*baseQSize+ring.ModulusBitCountMax {
		baseBSize++
	}

	baseBskSize := baseBSize + 1
	baseBskMTildeSize := baseBskSize + 1

	// Samples the primes of B and two more: m_sk and gamma.
	convPrimes, err := ring.GetPrimes(uint64(n), ring.ModulusBitCountMax, baseBskMTildeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample base conversion primes: %w", err)
	}

	tool.mSk = convPrimes[0]
	tool.gamma = convPrimes[1]

	// m_tilde is a power of two, not a prime.
	if tool.mTilde, err = ring.NewModulus(1 << 32); err != nil {
		return nil, err
	}

	if tool.baseB, err = NewBase(convPrimes[2 : 2+baseBSize]); err != nil {
		return nil, err
	}
	if tool.baseBsk, err = tool.baseB.Extend(tool.mSk); err != nil {
		return nil, err
	}
	if tool.baseBskMTilde, err = tool.baseBsk.Extend(tool.mTilde); err != nil {
		return nil, err
	}

	if t.Value != 0 {
		if tool.baseTGamma, err = NewBase([]ring.Modulus{t, tool.gamma}); err != nil {
			return nil, err
		}
	}

	// NTT tables over Bsk, for the multiplication after base extension.
	if tool.baseBskNTTTables, err = ring.NewNTTTables(n, tool.baseBsk.Moduli()); err != nil {
		return nil, fmt.Errorf("failed to generate NTT tables over Bsk: %w", err)
	}

	tool.baseQToBskConv = NewConverter(tool.baseQ, tool.baseBsk)
	tool.baseBToQConv = NewConverter(tool.baseB, tool.baseQ)

	var mTildeBase, mSkBase *Base
	if mTildeBase, err = NewBase([]ring.Modulus{tool.mTilde}); err != nil {
		return nil, err
	}
	if mSkBase, err = NewBase([]ring.Modulus{tool.mSk}); err != nil {
		return nil, err
	}
	tool.baseQToMTildeConv = NewConverter(tool.baseQ, mTildeBase)
	tool.baseBToMSkConv = NewConverter(tool.baseB, mSkBase)

	if tool.baseTGamma != nil {
		tool.baseQToTGammaConv = NewConverter(tool.baseQ, tool.baseTGamma)
	}

	if err = tool.initializeConstants(); err != nil {
		return nil, err
	}

	tool.pool = structs.NewSyncPoolUint64(baseBskMTildeSize * n)

	return tool, nil
}

func (tool *Tool) initializeConstants() error {

	baseQSize := tool.baseQ.Size()
	baseBskSize := tool.baseBsk.Size()

	tool.prodBModQ = make([]uint64, baseQSize)
	tool.mTildeModQ = make([]uint64, baseQSize)
	for i := 0; i < baseQSize; i++ {
		qi := tool.baseQ.At(i)
		tool.prodBModQ[i] = modUint(tool.baseB.baseProd, qi)
		tool.mTildeModQ[i] = ring.MForm(qi.Reduce(tool.mTilde.Value), qi.Value, qi.BRedConstant)
	}

	tool.invProdQModBsk = make([]uint64, baseBskSize)
	tool.prodQModBsk = make([]uint64, baseBskSize)
	tool.invMTildeModBsk = make([]uint64, baseBskSize)
	for i := 0; i < baseBskSize; i++ {
		m := tool.baseBsk.At(i)
		tool.prodQModBsk[i] = modUint(tool.baseQ.baseProd, m)
		inv, ok := ring.TryInvMod(tool.prodQModBsk[i], m.Value)
		if !ok {
			return fmt.Errorf("invalid bases: prod(q) has no inverse mod %d", m.Value)
		}
		tool.invProdQModBsk[i] = ring.MForm(inv, m.Value, m.BRedConstant)

		if inv, ok = ring.TryInvMod(m.Reduce(tool.mTilde.Value), m.Value); !ok {
			return fmt.Errorf("invalid bases: m_tilde has no inverse mod %d", m.Value)
		}
		tool.invMTildeModBsk[i] = ring.MForm(inv, m.Value, m.BRedConstant)
	}

	invProdB, ok := ring.TryInvMod(modUint(tool.baseB.baseProd, tool.mSk), tool.mSk.Value)
	if !ok {
		return fmt.Errorf("invalid bases: prod(B) has no inverse mod m_sk")
	}
	tool.invProdBModMSk = ring.MForm(invProdB, tool.mSk.Value, tool.mSk.BRedConstant)

	if tool.invProdQModMTilde, ok = ring.TryInvMod(modUint(tool.baseQ.baseProd, tool.mTilde), tool.mTilde.Value); !ok {
		return fmt.Errorf("invalid bases: prod(q) has no inverse mod m_tilde")
	}

	if tool.baseTGamma != nil {

		t, gamma := tool.t, tool.gamma

		invGamma, ok := ring.TryInvMod(t.Reduce(gamma.Value), t.Value)
		if !ok {
			return fmt.Errorf("invalid bases: gamma has no inverse mod t")
		}
		tool.invGammaModT = invGamma

		tool.prodTGammaModQ = make([]uint64, baseQSize)
		for i := 0; i < baseQSize; i++ {
			qi := tool.baseQ.At(i)
			tool.prodTGammaModQ[i] = ring.MForm(qi.MulMod(qi.Reduce(t.Value), qi.Reduce(gamma.Value)), qi.Value, qi.BRedConstant)
		}

		tool.negInvQModTGamma = make([]uint64, tool.baseTGamma.Size())
		for i := range tool.negInvQModTGamma {
			m := tool.baseTGamma.At(i)
			inv, ok := ring.TryInvMod(modUint(tool.baseQ.baseProd, m), m.Value)
			if !ok {
				return fmt.Errorf("invalid bases: prod(q) has no inverse mod %d", m.Value)
			}
			tool.negInvQModTGamma[i] = negateUintMod(inv, m)
		}
	}

	// q_last^-1 mod q_i, for modulus switching and rescaling.
	if baseQSize > 1 {
		qLast := tool.baseQ.At(baseQSize - 1).Value
		tool.invQLastModQ = make([]uint64, baseQSize-1)
		tool.invQLastModQMont = make([]uint64, baseQSize-1)
		for i := 0; i < baseQSize-1; i++ {
			qi := tool.baseQ.At(i)
			inv, ok := ring.TryInvMod(qLast, qi.Value)
			if !ok {
				return fmt.Errorf("invalid bases: %d has no inverse mod %d", qLast, qi.Value)
			}
			tool.invQLastModQ[i] = inv
			tool.invQLastModQMont[i] = ring.MForm(inv, qi.Value, qi.BRedConstant)
		}
	}

	return nil
}

// N returns the polynomial degree.
func (tool *Tool) N() int {
	return tool.n
}

// T returns the plaintext modulus, which is zero-valued if none was given.
func (tool *Tool) T() ring.Modulus {
	return tool.t
}

// BaseQ returns the base q.
func (tool *Tool) BaseQ() *Base {
	return tool.baseQ
}

// BaseB returns the auxiliary base B.
func (tool *Tool) BaseB() *Base {
	return tool.baseB
}

// BaseBsk returns the base Bsk = B U {m_sk}.
func (tool *Tool) BaseBsk() *Base {
	return tool.baseBsk
}

// BaseBskMTilde returns the base Bsk U {m_tilde}.
func (tool *Tool) BaseBskMTilde() *Base {
	return tool.baseBskMTilde
}

// BaseTGamma returns the base {t, gamma}, which is nil if the plaintext
// modulus is zero-valued.
func (tool *Tool) BaseTGamma() *Base {
	return tool.baseTGamma
}

// MTilde returns the Montgomery factor m_tilde = 2^32.
func (tool *Tool) MTilde() ring.Modulus {
	return tool.mTilde
}

// MSk returns the extension modulus m_sk.
func (tool *Tool) MSk() ring.Modulus {
	return tool.mSk
}

// Gamma returns the decryption modulus gamma.
func (tool *Tool) Gamma() ring.Modulus {
	return tool.gamma
}

// InvQLastModQ returns q_last^-1 mod q_i for i < len(q)-1.
func (tool *Tool) InvQLastModQ() []uint64 {
	inv := make([]uint64, len(tool.invQLastModQ))
	copy(inv, tool.invQLastModQ)
	return inv
}

// BskNTTTables returns the NTT tables over the base Bsk.
func (tool *Tool) BskNTTTables() []*ring.NTTTable {
	return tool.baseBskNTTTables
}

// FastBConvMTilde converts input, in base q, to the base Bsk U {m_tilde},
// first multiplying by m_tilde mod q so that the conversion overflows can
// later be removed by SMMRq.
func (tool *Tool) FastBConvMTilde(input, destination []uint64) {

	n := tool.n
	baseQSize := tool.baseQ.Size()
	baseBskSize := tool.baseBsk.Size()

	temp := tool.pool.Get()
	defer tool.pool.Put(temp)
	buff := (*temp)[:baseQSize*n]

	for i := 0; i < baseQSize; i++ {
		qi := tool.baseQ.At(i)
		ring.MulScalarMontgomeryVec(input[i*n:(i+1)*n], tool.mTildeModQ[i], buff[i*n:(i+1)*n], qi.Value, qi.MRedConstant)
	}

	tool.baseQToBskConv.FastConvertArray(buff, destination[:baseBskSize*n], n)
	tool.baseQToMTildeConv.FastConvertArray(buff, destination[baseBskSize*n:(baseBskSize+1)*n], n)
}

// SMMRq removes the m_tilde factor introduced by FastBConvMTilde with a
// small Montgomery reduction, mapping input in base Bsk U {m_tilde} to
// destination in base Bsk. The result is the centered representative of
// the original value mod prod(q): values above prod(q)/2 come out as
// small negatives.
func (tool *Tool) SMMRq(input, destination []uint64) {

	n := tool.n
	baseBskSize := tool.baseBsk.Size()
	mTilde := tool.mTilde
	mTildeDiv2 := mTilde.Value >> 1

	inputMTilde := input[baseBskSize*n : (baseBskSize+1)*n]

	temp := tool.pool.Get()
	defer tool.pool.Put(temp)
	rMTilde := (*temp)[:n]

	// r_m_tilde = -input * prod(q)^-1 mod m_tilde
	for i := 0; i < n; i++ {
		rMTilde[i] = negateUintMod(mTilde.MulMod(inputMTilde[i], tool.invProdQModMTilde), mTilde)
	}

	for k := 0; k < baseBskSize; k++ {

		m := tool.baseBsk.At(k)
		invMTilde := tool.invMTildeModBsk[k]
		prodQ := tool.prodQModBsk[k]

		in := input[k*n : (k+1)*n]
		out := destination[k*n : (k+1)*n]

		for i := 0; i < n; i++ {

			// Centered reduction of r_m_tilde mod Bsk_k; m_tilde is a
			// power of two, hence the >=.
			r := rMTilde[i]
			if r >= mTildeDiv2 {
				r += m.Value - mTilde.Value
			}

			// (input + q * r_m_tilde) * m_tilde^-1 mod Bsk_k
			out[i] = ring.MRed(mulAddUintMod(prodQ, r, in[i], m), invMTilde, m.Value, m.MRedConstant)
		}
	}
}

// FastFloor converts input, in base q U Bsk, to an approximation of
// floor(input/q) in base Bsk, with an error of at most base q size.
func (tool *Tool) FastFloor(input, destination []uint64) {

	n := tool.n
	baseQSize := tool.baseQ.Size()
	baseBskSize := tool.baseBsk.Size()

	tool.baseQToBskConv.FastConvertArray(input[:baseQSize*n], destination, n)

	inputBsk := input[baseQSize*n:]

	for i := 0; i < baseBskSize; i++ {

		m := tool.baseBsk.At(i)
		invProdQ := tool.invProdQModBsk[i]

		in := inputBsk[i*n : (i+1)*n]
		out := destination[i*n : (i+1)*n]

		for k := 0; k < n; k++ {
			// The negation does not need to be reduced mod Bsk_i.
			out[k] = ring.MRed(in[k]+m.Value-out[k], invProdQ, m.Value, m.MRedConstant)
		}
	}
}

// FastBConvSK converts input, in base Bsk, exactly to the base q using
// the Shenoy-Kumaresan method.
func (tool *Tool) FastBConvSK(input, destination []uint64) {

	n := tool.n
	baseQSize := tool.baseQ.Size()
	baseBSize := tool.baseB.Size()
	mSk := tool.mSk

	// Fast convert B -> q; input is in Bsk but only the B part is used.
	tool.baseBToQConv.FastConvertArray(input[:baseBSize*n], destination, n)

	temp := tool.pool.Get()
	defer tool.pool.Put(temp)
	buff := (*temp)[:2*n]
	tmp, alphaSk := buff[:n], buff[n:]

	// Fast convert B -> {m_sk}; input is in Bsk but only the B part is used.
	tool.baseBToMSkConv.FastConvertArray(input[:baseBSize*n], tmp, n)

	// alpha_sk = (tmp - input_sk) * prod(B)^-1 mod m_sk
	inputSk := input[baseBSize*n : (baseBSize+1)*n]
	for i := 0; i < n; i++ {
		alphaSk[i] = ring.MRed(tmp[i]+mSk.Value-inputSk[i], tool.invProdBModMSk, mSk.Value, mSk.MRedConstant)
	}

	// alpha_sk is a non-centered reduction of a value in
	// (-m_sk/2, m_sk/2), hence the correction below.
	mSkDiv2 := mSk.Value >> 1

	for i := 0; i < baseQSize; i++ {

		qi := tool.baseQ.At(i)
		prodB := tool.prodBModQ[i]

		out := destination[i*n : (i+1)*n]

		for k := 0; k < n; k++ {
			if alphaSk[k] > mSkDiv2 {
				// alpha_sk represents a negative value.
				out[k] = mulAddUintMod(prodB, mSk.Value-alphaSk[k], out[k], qi)
			} else {
				out[k] = mulAddUintMod(qi.Value-prodB, alphaSk[k], out[k], qi)
			}
		}
	}
}

// DivRoundQLastInplace overwrites the first len(q)-1 components of
// input, in base q, with the value divided by q_last and rounded, and
// leaves the last component unspecified. The result differs from the
// exact rounding by at most one.
func (tool *Tool) DivRoundQLastInplace(input []uint64) {

	n := tool.n
	baseQSize := tool.baseQ.Size()
	qLast := tool.baseQ.At(baseQSize - 1)
	last := input[(baseQSize-1)*n : baseQSize*n]

	// Adds (q_last-1)/2 to change from flooring to rounding.
	half := qLast.Value >> 1
	for j := 0; j < n; j++ {
		last[j] = qLast.Reduce(last[j] + half)
	}

	temp := tool.pool.Get()
	defer tool.pool.Put(temp)
	buff := (*temp)[:n]

	for i := 0; i < baseQSize-1; i++ {

		qi := tool.baseQ.At(i)
		in := input[i*n : (i+1)*n]

		// (x mod q_last) mod q_i, with the rounding correction removed.
		ring.ReduceVec(last, buff, qi.Value, qi.BRedConstant)
		halfMod := qi.Reduce(half)
		for j := 0; j < n; j++ {
			buff[j] = ring.CRed(buff[j]+qi.Value-halfMod, qi.Value)
		}

		ring.SubVec(in, buff, in, qi.Value)

		// q_last^-1 * (x - (x mod q_last)) mod q_i
		ring.MulScalarMontgomeryVec(in, tool.invQLastModQMont[i], in, qi.Value, qi.MRedConstant)
	}
}

// DivRoundQLastNTTInplace is DivRoundQLastInplace for an input in the
// NTT domain: each component of input is the NTT of the corresponding
// residue polynomial under tables, and the output components remain in
// the NTT domain.
func (tool *Tool) DivRoundQLastNTTInplace(input []uint64, tables []*ring.NTTTable) {

	n := tool.n
	baseQSize := tool.baseQ.Size()
	qLast := tool.baseQ.At(baseQSize - 1)
	last := input[(baseQSize-1)*n : baseQSize*n]

	tables[baseQSize-1].Backward(last, last)

	// Adds (q_last-1)/2 to change from flooring to rounding.
	half := qLast.Value >> 1
	for j := 0; j < n; j++ {
		last[j] = qLast.Reduce(last[j] + half)
	}

	temp := tool.pool.Get()
	defer tool.pool.Put(temp)
	buff := (*temp)[:n]

	for i := 0; i < baseQSize-1; i++ {

		qi := tool.baseQ.At(i)
		in := input[i*n : (i+1)*n]

		// (x mod q_last) mod q_i
		if qi.Value < qLast.Value {
			ring.ReduceVec(last, buff, qi.Value, qi.BRedConstant)
		} else {
			copy(buff, last)
		}

		// Lazy subtraction of the rounding correction; the lazy NTT
		// accepts inputs up to 2*q_i.
		negHalfMod := qi.Value - qi.Reduce(half)
		for j := 0; j < n; j++ {
			buff[j] += negHalfMod
		}

		tables[i].ForwardLazy(buff, buff)

		twoQi := qi.Value << 1
		for j := 0; j < n; j++ {
			// The reduction to [0, q_i) happens in the final scalar product.
			in[j] = in[j] + twoQi - ring.BRedAddLazy(buff[j], qi.Value, qi.BRedConstant)
		}

		// q_last^-1 * (x - (x mod q_last)) mod q_i
		ring.MulScalarMontgomeryVec(in, tool.invQLastModQMont[i], in, qi.Value, qi.MRedConstant)
	}
}

// DecryptScaleAndRound computes round(t * input / q) mod t for input in
// base q, using the {t, gamma} technique of [BEHZ16]: the result is
// exact as long as the rounding error of the approximate conversion,
// bounded by len(q)/2 * q/gamma, does not move the value across a
// rounding boundary.
func (tool *Tool) DecryptScaleAndRound(input, destination []uint64) {

	n := tool.n
	baseQSize := tool.baseQ.Size()
	t := tool.t
	gamma := tool.gamma

	temp := tool.pool.Get()
	defer tool.pool.Put(temp)
	buff := (*temp)[:(baseQSize+2)*n]
	buffQ, buffTGamma := buff[:baseQSize*n], buff[baseQSize*n:(baseQSize+2)*n]

	// |gamma * t|_q * input mod q
	for i := 0; i < baseQSize; i++ {
		qi := tool.baseQ.At(i)
		ring.MulScalarMontgomeryVec(input[i*n:(i+1)*n], tool.prodTGammaModQ[i], buffQ[i*n:(i+1)*n], qi.Value, qi.MRedConstant)
	}

	// Converts from q to {t, gamma}.
	tool.baseQToTGammaConv.FastConvertArray(buffQ, buffTGamma, n)

	// Multiplies by -prod(q)^-1 mod {t, gamma}; Barrett multiplication,
	// as t may be even.
	for i := 0; i < 2; i++ {
		m := tool.baseTGamma.At(i)
		scalar := tool.negInvQModTGamma[i]
		for j := i * n; j < (i+1)*n; j++ {
			buffTGamma[j] = ring.BRed(buffTGamma[j], scalar, m.Value, m.BRedConstant)
		}
	}

	// Removes the centered gamma correction and multiplies by
	// gamma^-1 mod t.
	gammaDiv2 := gamma.Value >> 1
	buffT, buffGamma := buffTGamma[:n], buffTGamma[n:]

	for i := 0; i < n; i++ {

		var v uint64
		if buffGamma[i] > gammaDiv2 {
			// Computes -(gamma - x) instead of (x - gamma).
			v = ring.CRed(buffT[i]+t.Reduce(gamma.Value-buffGamma[i]), t.Value)
		} else {
			v = ring.CRed(buffT[i]+t.Value-t.Reduce(buffGamma[i]), t.Value)
		}

		if v != 0 {
			v = t.MulMod(v, tool.invGammaModT)
		}

		destination[i] = v
	}
}
