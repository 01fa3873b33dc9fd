package rns

import (
	"fmt"

	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/microsoft/SEAL-sub001/utils/structs"
)

// Base represents an RNS base: an ordered set of pairwise coprime moduli
// together with the precomputed CRT constants (the base product, the
// punctured products and their inverses) required to decompose and
// compose multi-precision integers.
type Base struct {
	moduli []ring.Modulus

	// baseProd is prod(moduli), on Size() limbs.
	baseProd []uint64
	// puncturedProd[i] is prod(moduli)/moduli[i], on Size() limbs.
	puncturedProd [][]uint64
	// invPuncturedProdModBase[i] is puncturedProd[i]^-1 mod moduli[i].
	invPuncturedProdModBase []uint64

	pool structs.BufferPool[*[]uint64]
}

// NewBase instantiates an RNS base from an ordered, non-empty set of
// pairwise coprime moduli and precomputes its CRT constants.
func NewBase(moduli []ring.Modulus) (b *Base, err error) {

	if len(moduli) == 0 {
		return nil, fmt.Errorf("base cannot be empty")
	}

	for i := range moduli {
		if moduli[i].Value == 0 {
			return nil, fmt.Errorf("invalid base: modulus cannot be zero")
		}
		for j := 0; j < i; j++ {
			if !ring.AreCoprime(moduli[i].Value, moduli[j].Value) {
				return nil, fmt.Errorf("invalid base: moduli %d and %d are not coprime", moduli[j].Value, moduli[i].Value)
			}
		}
	}

	b = &Base{moduli: make([]ring.Modulus, len(moduli))}
	copy(b.moduli, moduli)

	if err = b.initialize(); err != nil {
		return nil, err
	}

	return b, nil
}

// NewBaseFromValues instantiates an RNS base from the values of its moduli.
func NewBaseFromValues(values []uint64) (*Base, error) {
	moduli, err := ring.NewModuli(values)
	if err != nil {
		return nil, err
	}
	return NewBase(moduli)
}

func (b *Base) initialize() error {

	size := b.Size()

	b.pool = structs.NewSyncPool(func() *[]uint64 { buff := []uint64{}; return &buff })
	b.baseProd = make([]uint64, size)
	b.puncturedProd = make([][]uint64, size)
	b.invPuncturedProdModBase = make([]uint64, size)

	if size == 1 {
		b.baseProd[0] = b.moduli[0].Value
		b.puncturedProd[0] = []uint64{1}
		b.invPuncturedProdModBase[0] = 1
		return nil
	}

	values := make([]uint64, size)
	for i := range b.moduli {
		values[i] = b.moduli[i].Value
	}

	for i := range b.moduli {
		b.puncturedProd[i] = make([]uint64, size)
		mulManyUintExcept(values, i, b.puncturedProd[i])
	}

	mulUintWord(b.puncturedProd[0], values[0], b.baseProd)

	for i, m := range b.moduli {
		inv, ok := ring.TryInvMod(modUint(b.puncturedProd[i], m), m.Value)
		if !ok {
			return fmt.Errorf("invalid base: punctured product has no inverse mod %d", m.Value)
		}
		b.invPuncturedProdModBase[i] = inv
	}

	return nil
}

// Size returns the number of moduli in the base.
func (b *Base) Size() int {
	return len(b.moduli)
}

// At returns the i-th modulus of the base.
func (b *Base) At(i int) ring.Modulus {
	return b.moduli[i]
}

// Moduli returns a copy of the moduli of the base.
func (b *Base) Moduli() []ring.Modulus {
	moduli := make([]ring.Modulus, len(b.moduli))
	copy(moduli, b.moduli)
	return moduli
}

// Prod returns a copy of the product of the moduli, on Size() limbs.
func (b *Base) Prod() []uint64 {
	prod := make([]uint64, len(b.baseProd))
	copy(prod, b.baseProd)
	return prod
}

// ProdBitCount returns the bit-length of the product of the moduli.
func (b *Base) ProdBitCount() int {
	return significantBitCount(b.baseProd)
}

// Contains returns true if value is one of the moduli of the base.
func (b *Base) Contains(value uint64) bool {
	for _, m := range b.moduli {
		if m.Value == value {
			return true
		}
	}
	return false
}

// IsSubbaseOf returns true if every modulus of b is contained in superbase.
func (b *Base) IsSubbaseOf(superbase *Base) bool {
	for _, m := range b.moduli {
		if !superbase.Contains(m.Value) {
			return false
		}
	}
	return true
}

// IsSuperbaseOf returns true if every modulus of subbase is contained in b.
func (b *Base) IsSuperbaseOf(subbase *Base) bool {
	return subbase.IsSubbaseOf(b)
}

// Extend returns a new base extending b with the given modulus, which
// must be coprime to every modulus of b.
func (b *Base) Extend(m ring.Modulus) (*Base, error) {
	return NewBase(append(b.Moduli(), m))
}

// ExtendBase returns a new base formed by the moduli of b followed by
// the moduli of other.
func (b *Base) ExtendBase(other *Base) (*Base, error) {
	return NewBase(append(b.Moduli(), other.moduli...))
}

// Drop returns a new base with the last modulus removed.
func (b *Base) Drop() (*Base, error) {
	if b.Size() == 1 {
		return nil, fmt.Errorf("cannot drop from a base of size 1")
	}
	return NewBase(b.moduli[:b.Size()-1])
}

// DropValue returns a new base with the modulus of the given value removed.
func (b *Base) DropValue(value uint64) (*Base, error) {
	if b.Size() == 1 {
		return nil, fmt.Errorf("cannot drop from a base of size 1")
	}
	if !b.Contains(value) {
		return nil, fmt.Errorf("base does not contain %d", value)
	}
	moduli := make([]ring.Modulus, 0, b.Size()-1)
	for _, m := range b.moduli {
		if m.Value != value {
			moduli = append(moduli, m)
		}
	}
	return NewBase(moduli)
}

// getBuff returns a scratch buffer of the given size from the pool,
// growing the pooled backing array if necessary.
func (b *Base) getBuff(size int) *[]uint64 {
	buff := b.pool.Get()
	if cap(*buff) < size {
		*buff = make([]uint64, size)
	}
	*buff = (*buff)[:size]
	return buff
}

// Decompose overwrites the multi-precision integer value (on Size()
// limbs, smaller than the base product) with its residues modulo each
// modulus of the base.
func (b *Base) Decompose(value []uint64) {

	if len(value) != b.Size() {
		panic(fmt.Errorf("invalid value: len(value)=%d != base size=%d", len(value), b.Size()))
	}

	if b.Size() == 1 {
		return
	}

	temp := b.getBuff(len(value))
	defer b.pool.Put(temp)
	copyValue := *temp
	copy(copyValue, value)

	for i, m := range b.moduli {
		value[i] = modUint(copyValue, m)
	}
}

// DecomposeArray overwrites count multi-precision integers, laid out
// consecutively on Size() limbs each, with their residues in
// modulus-major order: on return value[i*count+k] is the residue of the
// k-th integer modulo the i-th modulus of the base.
func (b *Base) DecomposeArray(value []uint64, count int) {

	size := b.Size()

	if len(value) != size*count {
		panic(fmt.Errorf("invalid value: len(value)=%d != base size * count =%d", len(value), size*count))
	}

	if size == 1 {
		return
	}

	temp := b.getBuff(len(value))
	defer b.pool.Put(temp)
	copyValue := *temp
	copy(copyValue, value)

	for i, m := range b.moduli {
		for k := 0; k < count; k++ {
			value[i*count+k] = modUint(copyValue[k*size:(k+1)*size], m)
		}
	}
}

// Compose overwrites the residues value (one per modulus of the base)
// with the unique multi-precision integer in [0, prod) congruent to
// them, on Size() limbs.
func (b *Base) Compose(value []uint64) {

	size := b.Size()

	if len(value) != size {
		panic(fmt.Errorf("invalid value: len(value)=%d != base size=%d", len(value), size))
	}

	if size == 1 {
		return
	}

	temp := b.getBuff(2 * size)
	defer b.pool.Put(temp)
	residues, tmp := (*temp)[:size], (*temp)[size:]
	copy(residues, value)

	for i := range value {
		value[i] = 0
	}

	for i, m := range b.moduli {
		scalar := ring.BRed(residues[i], b.invPuncturedProdModBase[i], m.Value, m.BRedConstant)
		mulUintWord(b.puncturedProd[i], scalar, tmp)
		addUintUintMod(tmp, value, b.baseProd, value)
	}
}

// ComposeArray is the inverse of DecomposeArray: it overwrites the
// modulus-major residues of count integers with the integers themselves,
// laid out consecutively on Size() limbs each.
func (b *Base) ComposeArray(value []uint64, count int) {

	size := b.Size()

	if len(value) != size*count {
		panic(fmt.Errorf("invalid value: len(value)=%d != base size * count =%d", len(value), size*count))
	}

	if size == 1 {
		return
	}

	temp := b.getBuff(len(value) + size)
	defer b.pool.Put(temp)
	residues, tmp := (*temp)[:len(value)], (*temp)[len(value):]

	// Gather the residues of each integer.
	for k := 0; k < count; k++ {
		for i := 0; i < size; i++ {
			residues[k*size+i] = value[i*count+k]
		}
	}

	for i := range value {
		value[i] = 0
	}

	for k := 0; k < count; k++ {
		out := value[k*size : (k+1)*size]
		for i, m := range b.moduli {
			scalar := ring.BRed(residues[k*size+i], b.invPuncturedProdModBase[i], m.Value, m.BRedConstant)
			mulUintWord(b.puncturedProd[i], scalar, tmp)
			addUintUintMod(tmp, out, b.baseProd, out)
		}
	}
}
