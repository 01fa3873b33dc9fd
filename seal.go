/*
Package seal provides the residue number system (RNS) arithmetic core of a
lattice-based homomorphic encryption library: machine-word modular arithmetic
and negacyclic NTTs over word-sized primes (ring), RNS bases with fast base
conversion and the [BEHZ16] extended-base toolkit (rns), and encryption
parameter validation with modulus-switching chains (rlwe).
*/
package seal
