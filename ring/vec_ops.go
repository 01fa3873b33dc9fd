package ring

// ReduceVec evaluates p2 = p1 mod q.
func ReduceVec(p1, p2 []uint64, q uint64, bredconstant [2]uint64) {
	for i := range p1 {
		p2[i] = BRedAdd(p1[i], q, bredconstant)
	}
}

// AddVec evaluates p3 = p1 + p2 mod q.
// The inputs must be in [0, q).
func AddVec(p1, p2, p3 []uint64, q uint64) {
	for i := range p1 {
		p3[i] = CRed(p1[i]+p2[i], q)
	}
}

// SubVec evaluates p3 = p1 - p2 mod q.
// The inputs must be in [0, q).
func SubVec(p1, p2, p3 []uint64, q uint64) {
	for i := range p1 {
		p3[i] = CRed(p1[i]+q-p2[i], q)
	}
}

// AddScalarVec evaluates p2 = p1 + scalar mod q.
// The input and the scalar must be in [0, q).
func AddScalarVec(p1 []uint64, scalar uint64, p2 []uint64, q uint64) {
	for i := range p1 {
		p2[i] = CRed(p1[i]+scalar, q)
	}
}

// MulScalarMontgomeryVec evaluates p2 = p1 * scalarMont mod q,
// with scalarMont in the Montgomery domain.
func MulScalarMontgomeryVec(p1 []uint64, scalarMont uint64, p2 []uint64, q, mredconstant uint64) {
	for i := range p1 {
		p2[i] = MRed(p1[i], scalarMont, q, mredconstant)
	}
}

// MulScalarMontgomeryLazyVec evaluates p2 = p1 * scalarMont mod q with
// a result in [0, 2q), with scalarMont in the Montgomery domain.
func MulScalarMontgomeryLazyVec(p1 []uint64, scalarMont uint64, p2 []uint64, q, mredconstant uint64) {
	for i := range p1 {
		p2[i] = MRedLazy(p1[i], scalarMont, q, mredconstant)
	}
}

// MulCoeffsMontgomeryVec evaluates p3 = p1 * p2 mod q, with p2 in the
// Montgomery domain.
func MulCoeffsMontgomeryVec(p1, p2, p3 []uint64, q, mredconstant uint64) {
	for i := range p1 {
		p3[i] = MRed(p1[i], p2[i], q, mredconstant)
	}
}
