package ring

import (
	"fmt"
	"math/bits"

	"github.com/microsoft/SEAL-sub001/utils"
	"github.com/microsoft/SEAL-sub001/utils/sampling"
)

// NTTTable stores the constants required to evaluate the negacyclic
// number-theoretic transform of degree N over Z_q[X]/(X^N+1), for a
// prime q = 1 mod 2N.
type NTTTable struct {
	// N is the transform degree, a power of two.
	N int
	// LogN is log2(N).
	LogN int
	// Modulus is the prime defining the coefficient field.
	Modulus Modulus
	// NthRoot is the order 2N of the root of unity.
	NthRoot uint64
	// PrimitiveRoot is the smallest primitive 2N-th root of unity mod q.
	PrimitiveRoot uint64
	// RootsForward stores PrimitiveRoot^j in Montgomery form, in
	// bit-reversed order: RootsForward[bitrev(j)] = psi^j * 2^64 mod q.
	RootsForward []uint64
	// RootsBackward stores the inverse powers psi^-j in Montgomery
	// form, in the same bit-reversed layout.
	RootsBackward []uint64
	// NInv is N^-1 mod q in Montgomery form.
	NInv uint64
}

// NewNTTTable generates the negacyclic NTT constants of degree n for
// the given modulus. The modulus must be prime and congruent to 1
// modulo 2n, and n must be a power of two.
func NewNTTTable(n int, q Modulus) (*NTTTable, error) {

	if n < 2 || !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("invalid transform degree: %d is not a power of two larger than one", n)
	}

	if !q.IsPrime {
		return nil, fmt.Errorf("invalid modulus: %d is not prime", q.Value)
	}

	nthRoot := uint64(2 * n)

	if q.Value&(nthRoot-1) != 1 {
		return nil, fmt.Errorf("invalid modulus: %d != 1 mod %d", q.Value, nthRoot)
	}

	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, err
	}

	psi, ok := TryMinimalPrimitiveRoot(nthRoot, q, prng)
	if !ok {
		return nil, fmt.Errorf("invalid modulus: failed to find a primitive %d-th root of unity mod %d", nthRoot, q.Value)
	}

	tbl := &NTTTable{
		N:             n,
		LogN:          bits.Len64(uint64(n)) - 1,
		Modulus:       q,
		NthRoot:       nthRoot,
		PrimitiveRoot: psi,
	}

	Q := q.Value

	tbl.NInv = MForm(ModExp(uint64(n), Q-2, Q), Q, q.BRedConstant)

	psiInv, ok := TryInvMod(psi, Q)
	if !ok {
		return nil, fmt.Errorf("invalid modulus: root %d has no inverse mod %d", psi, Q)
	}

	psiMont := MForm(psi, Q, q.BRedConstant)
	psiInvMont := MForm(psiInv, Q, q.BRedConstant)

	tbl.RootsForward = make([]uint64, n)
	tbl.RootsBackward = make([]uint64, n)

	tbl.RootsForward[0] = MForm(1, Q, q.BRedConstant)
	tbl.RootsBackward[0] = tbl.RootsForward[0]

	// RootsForward[bitrev(j)] = RootsForward[bitrev(j-1)] * psi
	for j := uint64(1); j < uint64(n); j++ {
		prev := utils.BitReverse64(j-1, uint64(tbl.LogN))
		next := utils.BitReverse64(j, uint64(tbl.LogN))
		tbl.RootsForward[next] = MRed(tbl.RootsForward[prev], psiMont, Q, q.MRedConstant)
		tbl.RootsBackward[next] = MRed(tbl.RootsBackward[prev], psiInvMont, Q, q.MRedConstant)
	}

	return tbl, nil
}

// NewNTTTables generates the NTT constants of degree n for each modulus.
func NewNTTTables(n int, moduli []Modulus) ([]*NTTTable, error) {
	tables := make([]*NTTTable, len(moduli))
	for i, q := range moduli {
		var err error
		if tables[i], err = NewNTTTable(n, q); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// Forward evaluates p2 = NTT(p1). The result is in [0, q).
func (tbl *NTTTable) Forward(p1, p2 []uint64) {
	tbl.ForwardLazy(p1, p2)
	ReduceVec(p2, p2, tbl.Modulus.Value, tbl.Modulus.BRedConstant)
}

// ForwardLazy evaluates p2 = NTT(p1) without the final reduction;
// the result is only guaranteed to be in [0, 8q).
func (tbl *NTTTable) ForwardLazy(p1, p2 []uint64) {
	nttCoreLazy(p1, p2, tbl.N, tbl.Modulus.Value, tbl.Modulus.MRedConstant, tbl.RootsForward)
}

// Backward evaluates p2 = INTT(p1). The input coefficients must be
// in [0, 2q); the result is in [0, q).
func (tbl *NTTTable) Backward(p1, p2 []uint64) {
	inttCore(p1, p2, tbl.N, tbl.Modulus.Value, tbl.Modulus.MRedConstant, tbl.RootsBackward)
	MulScalarMontgomeryVec(p2, tbl.NInv, p2, tbl.Modulus.Value, tbl.Modulus.MRedConstant)
}

// BackwardLazy evaluates p2 = INTT(p1) without the final reduction.
// The input coefficients must be in [0, 2q); the result is in [0, 2q).
func (tbl *NTTTable) BackwardLazy(p1, p2 []uint64) {
	inttCore(p1, p2, tbl.N, tbl.Modulus.Value, tbl.Modulus.MRedConstant, tbl.RootsBackward)
	MulScalarMontgomeryLazyVec(p2, tbl.NInv, p2, tbl.Modulus.Value, tbl.Modulus.MRedConstant)
}

// butterfly computes X, Y = U + V*Psi, U - V*Psi mod Q.
func butterfly(U, V, Psi, twoQ, fourQ, Q, QInv uint64) (uint64, uint64) {
	if U >= fourQ {
		U -= fourQ
	}
	V = MRedLazy(V, Psi, Q, QInv)
	return U + V, U + twoQ - V
}

// invbutterfly computes X, Y = U + V, (U - V) * Psi mod Q.
func invbutterfly(U, V, Psi, twoQ, fourQ, Q, QInv uint64) (X, Y uint64) {
	X = U + V
	if X >= twoQ {
		X -= twoQ
	}
	Y = MRedLazy(U+fourQ-V, Psi, Q, QInv)
	return
}

// nttCoreLazy computes the Cooley-Tukey negacyclic NTT of p1 on p2 with
// lazy reduction, interleaving a reducing stage every other level to keep
// the coefficients below 8q.
func nttCoreLazy(p1, p2 []uint64, N int, Q, QInv uint64, nttPsi []uint64) {

	twoQ := Q << 1
	fourQ := Q << 2

	// First level, p1 -> p2.
	t := N >> 1
	F := nttPsi[1]
	for jx, jy := 0, t; jx < t; jx, jy = jx+1, jy+1 {
		V := MRedLazy(p1[jy], F, Q, QInv)
		p2[jx], p2[jy] = p1[jx]+V, p1[jx]+twoQ-V
	}

	for m := 2; m < N; m <<= 1 {

		reduce := bits.Len64(uint64(m))&1 == 1

		t >>= 1

		for i := 0; i < m; i++ {

			j1 := 2 * i * t
			j2 := j1 + t
			F = nttPsi[m+i]

			if reduce {
				for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
					p2[jx], p2[jy] = butterfly(p2[jx], p2[jy], F, twoQ, fourQ, Q, QInv)
				}
			} else {
				for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
					V := MRedLazy(p2[jy], F, Q, QInv)
					p2[jx], p2[jy] = p2[jx]+V, p2[jx]+twoQ-V
				}
			}
		}
	}
}

// inttCore computes the Gentleman-Sande negacyclic INTT of p1 on p2,
// without the final scaling by N^-1. Coefficients stay below 2q.
func inttCore(p1, p2 []uint64, N int, Q, QInv uint64, nttPsiInv []uint64) {

	twoQ := Q << 1
	fourQ := Q << 2

	// First level, p1 -> p2.
	h := N >> 1
	for i, j := h, 0; i < N; i, j = i+1, j+2 {
		p2[j], p2[j+1] = invbutterfly(p1[j], p1[j+1], nttPsiInv[i], twoQ, fourQ, Q, QInv)
	}

	t := 2
	for m := N >> 1; m > 1; m >>= 1 {

		h = m >> 1

		for i, j1 := 0, 0; i < h; i, j1 = i+1, j1+2*t {

			j2 := j1 + t
			F := nttPsiInv[h+i]

			for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
				p2[jx], p2[jy] = invbutterfly(p2[jx], p2[jy], F, twoQ, fourQ, Q, QInv)
			}
		}

		t <<= 1
	}
}
