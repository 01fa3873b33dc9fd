// Package rlwe implements the parameter layer of RNS-based RLWE schemes:
// encryption parameters, their validation against scheme and security
// constraints, and the modulus-switching chain of contexts.
package rlwe

import (
	"encoding/binary"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/microsoft/SEAL-sub001/ring"
	"github.com/zeebo/blake3"
)

// SchemeType identifies the encryption scheme the parameters target.
type SchemeType uint8

const (
	// SchemeNone is a placeholder; parameters with no scheme never validate.
	SchemeNone SchemeType = iota
	// SchemeBFV is the Brakerski/Fan-Vercauteren scheme.
	SchemeBFV
	// SchemeCKKS is the Cheon-Kim-Kim-Song scheme.
	SchemeCKKS
)

// String returns the name of the scheme.
func (s SchemeType) String() string {
	switch s {
	case SchemeNone:
		return "none"
	case SchemeBFV:
		return "bfv"
	case SchemeCKKS:
		return "ckks"
	}
	return "invalid scheme"
}

const (
	// UserModBitCountMin is the smallest bit count of a user coefficient
	// modulus prime.
	UserModBitCountMin = 2
	// UserModBitCountMax is the largest bit count of a user coefficient
	// modulus prime.
	UserModBitCountMax = 60
	// PlainModBitCountMin is the smallest bit count of the plaintext modulus.
	PlainModBitCountMin = 2
	// PlainModBitCountMax is the largest bit count of the plaintext modulus.
	PlainModBitCountMax = 60
)

// ParmsID is a 256-bit hash of the content of a set of encryption
// parameters. Two parameter sets compare equal if and only if their
// ParmsID are equal.
type ParmsID [4]uint64

// ParmsIDZero is the all-zero ParmsID, never produced by hashing.
var ParmsIDZero ParmsID

// String returns the hexadecimal representation of the ParmsID.
func (id ParmsID) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", id[0], id[1], id[2], id[3])
}

// EncryptionParameters holds the degree of the polynomial modulus, the
// coefficient modulus and the plaintext modulus of an RLWE scheme. The
// parameters carry a content hash (ParmsID) that is recomputed on every
// mutation.
type EncryptionParameters struct {
	scheme       SchemeType
	polyDegree   int
	coeffModulus []ring.Modulus
	plainModulus ring.Modulus
	parmsID      ParmsID
}

// NewEncryptionParameters instantiates empty encryption parameters for
// the given scheme.
func NewEncryptionParameters(scheme SchemeType) EncryptionParameters {
	p := EncryptionParameters{scheme: scheme}
	p.computeParmsID()
	return p
}

// Scheme returns the scheme type.
func (p EncryptionParameters) Scheme() SchemeType {
	return p.scheme
}

// PolyModulusDegree returns the degree of the polynomial modulus.
func (p EncryptionParameters) PolyModulusDegree() int {
	return p.polyDegree
}

// CoeffModulus returns a copy of the coefficient modulus primes.
func (p EncryptionParameters) CoeffModulus() []ring.Modulus {
	moduli := make([]ring.Modulus, len(p.coeffModulus))
	copy(moduli, p.coeffModulus)
	return moduli
}

// PlainModulus returns the plaintext modulus, zero-valued if none is set.
func (p EncryptionParameters) PlainModulus() ring.Modulus {
	return p.plainModulus
}

// ParmsID returns the content hash of the parameters.
func (p EncryptionParameters) ParmsID() ParmsID {
	return p.parmsID
}

// SetPolyModulusDegree sets the degree of the polynomial modulus. The
// degree is validated during context creation, not here.
func (p *EncryptionParameters) SetPolyModulusDegree(degree int) {
	p.polyDegree = degree
	p.computeParmsID()
}

// SetCoeffModulus sets the coefficient modulus from the values of its
// primes. The primes are validated during context creation, but each
// value must be expressible as a ring modulus.
func (p *EncryptionParameters) SetCoeffModulus(values []uint64) error {
	moduli, err := ring.NewModuli(values)
	if err != nil {
		return err
	}
	p.coeffModulus = moduli
	p.computeParmsID()
	return nil
}

// SetPlainModulus sets the plaintext modulus. Only the BFV scheme
// supports a plaintext modulus.
func (p *EncryptionParameters) SetPlainModulus(value uint64) error {
	if p.scheme != SchemeBFV {
		return fmt.Errorf("scheme %s does not support a plaintext modulus", p.scheme)
	}
	m, err := ring.NewModulus(value)
	if err != nil {
		return err
	}
	p.plainModulus = m
	p.computeParmsID()
	return nil
}

// Equal returns true if the two parameter sets have the same content.
func (p EncryptionParameters) Equal(other *EncryptionParameters) bool {
	return p.parmsID == other.parmsID &&
		p.scheme == other.scheme &&
		p.polyDegree == other.polyDegree &&
		cmp.Equal(p.coeffModulus, other.coeffModulus) &&
		cmp.Equal(p.plainModulus, other.plainModulus)
}

// computeParmsID rehashes the content of the parameters.
func (p *EncryptionParameters) computeParmsID() {

	h := blake3.New()

	buff := make([]byte, 8)
	writeUint64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buff, v)
		h.Write(buff)
	}

	writeUint64(uint64(p.scheme))
	writeUint64(uint64(p.polyDegree))
	writeUint64(uint64(len(p.coeffModulus)))
	for _, m := range p.coeffModulus {
		writeUint64(m.Value)
	}
	writeUint64(p.plainModulus.Value)

	digest := h.Sum(nil)
	for i := range p.parmsID {
		p.parmsID[i] = binary.LittleEndian.Uint64(digest[8*i:])
	}
}
