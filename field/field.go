// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package field implements arithmetic modulo the BN254 scalar field, the
// ≈254-bit prime the sharing layer splits master keys over.
package field

import (
	"crypto/rand"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

// Element is a field element modulo the BN254 scalar field order.
type Element struct {
	v fr.Element
}

// Modulus returns the field's prime modulus.
func Modulus() *big.Int {
	m := fr.Modulus()
	return new(big.Int).Set(m)
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// FromBigInt reduces a big.Int into the field.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.v.SetBigInt(v)
	return e
}

// FromBytes interprets b as a big-endian integer and reduces it into the
// field.
func FromBytes(b []byte) Element {
	return FromBigInt(new(big.Int).SetBytes(b))
}

// Random draws a uniformly distributed field element. It samples 64 bytes
// from a cryptographic source and reduces modulo the field's prime via
// big.Int arithmetic, rather than relying on fr.Element.SetBytes's
// undocumented reduction behavior, to keep the bias bound at or below 2⁻²⁵⁴.
func Random() (Element, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return Element{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to sample randomness", err)
	}
	n := new(big.Int).SetBytes(buf)
	n.Mod(n, Modulus())
	return FromBigInt(n), nil
}

// Add returns a+b mod p.
func Add(a, b Element) Element {
	var r Element
	r.v.Add(&a.v, &b.v)
	return r
}

// Neg returns -a mod p.
func Neg(a Element) Element {
	var r Element
	r.v.Neg(&a.v)
	return r
}

// Sub returns a-b mod p.
func Sub(a, b Element) Element {
	return Add(a, Neg(b))
}

// Mul returns a*b mod p.
func Mul(a, b Element) Element {
	var r Element
	r.v.Mul(&a.v, &b.v)
	return r
}

// Inverse returns a⁻¹ mod p. Fails with InvalidInput when a is zero, since
// fr.Element.Inverse silently returns zero for a zero operand instead of
// signaling the absence of an inverse.
func Inverse(a Element) (Element, error) {
	if a.v.IsZero() {
		return Element{}, zkautherrors.New(zkautherrors.InvalidInput, "cannot invert the zero field element")
	}
	var r Element
	r.v.Inverse(&a.v)
	return r, nil
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool {
	return a.v.IsZero()
}

// Equal reports whether a and b represent the same field element.
func (a Element) Equal(b Element) bool {
	return a.v.Equal(&b.v)
}

// BigInt returns the element as a non-negative big.Int in [0, p).
func (a Element) BigInt() *big.Int {
	var out big.Int
	a.v.BigInt(&out)
	return &out
}

// Bytes returns the element's big-endian, fixed-width 32-byte encoding.
func (a Element) Bytes() []byte {
	b := a.v.Bytes()
	return b[:]
}
