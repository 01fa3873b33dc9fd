package rns

import (
	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/microsoft/SEAL-sub001/utils/structs"
)

// Converter performs the fast approximate base conversion of [BEHZ16]
// from an input base to an output base: the converted value is congruent
// to the input modulo every output modulus, up to a multiple a*prod(ibase)
// with 0 <= a < ibase.Size().
type Converter struct {
	ibase, obase *Base

	// matrix[j][i] is puncturedProd(ibase)[i] mod obase[j].
	matrix [][]uint64

	pool structs.BufferPool[*[]uint64]
}

// NewConverter instantiates a converter from ibase to obase.
func NewConverter(ibase, obase *Base) *Converter {

	matrix := make([][]uint64, obase.Size())
	for j := range matrix {
		matrix[j] = make([]uint64, ibase.Size())
		for i := range matrix[j] {
			matrix[j][i] = modUint(ibase.puncturedProd[i], obase.At(j))
		}
	}

	return &Converter{
		ibase:  ibase,
		obase:  obase,
		matrix: matrix,
		pool:   structs.NewSyncPool(func() *[]uint64 { buff := []uint64{}; return &buff }),
	}
}

// InputBase returns the input base of the converter.
func (c *Converter) InputBase() *Base {
	return c.ibase
}

// OutputBase returns the output base of the converter.
func (c *Converter) OutputBase() *Base {
	return c.obase
}

// FastConvert converts the residues in (one per input modulus) to the
// output base, writing one residue per output modulus on out.
func (c *Converter) FastConvert(in, out []uint64) {

	temp := c.getBuff(c.ibase.Size())
	defer c.pool.Put(temp)

	for i, m := range c.ibase.moduli {
		(*temp)[i] = ring.BRed(in[i], c.ibase.invPuncturedProdModBase[i], m.Value, m.BRedConstant)
	}

	for j, m := range c.obase.moduli {
		out[j] = dotProductMod(*temp, c.matrix[j], m)
	}
}

// FastConvertArray converts count residue vectors laid out in
// modulus-major order (in[i*count+k] is the k-th coefficient modulo the
// i-th input modulus) to the output base, with the same layout on out.
func (c *Converter) FastConvertArray(in, out []uint64, count int) {

	ibaseSize := c.ibase.Size()

	temp := c.getBuff(count * ibaseSize)
	defer c.pool.Put(temp)

	// Coefficient-major scratch: (*temp)[k*ibaseSize+i].
	for i, m := range c.ibase.moduli {
		inv := c.ibase.invPuncturedProdModBase[i]
		for k := 0; k < count; k++ {
			(*temp)[k*ibaseSize+i] = ring.BRed(in[i*count+k], inv, m.Value, m.BRedConstant)
		}
	}

	for j, m := range c.obase.moduli {
		row := c.matrix[j]
		for k := 0; k < count; k++ {
			out[j*count+k] = dotProductMod((*temp)[k*ibaseSize:(k+1)*ibaseSize], row, m)
		}
	}
}

// getBuff returns a scratch buffer of the given size from the pool,
// growing the pooled backing array if necessary.
func (c *Converter) getBuff(size int) *[]uint64 {
	buff := c.pool.Get()
	if cap(*buff) < size {
		*buff = make([]uint64, size)
	}
	*buff = (*buff)[:size]
	return buff
}
