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

// Package sharing implements threshold (T-of-N) secret sharing of a master
// key over the BN254 scalar field, plus the per-share encryption envelope
// that lets an untrusted storage backend hold a share without learning it.
package sharing

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/zkauth/zkauth-core/aead"
	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/field"
	"github.com/zkauth/zkauth-core/masterkey"
)

// MaxShares is the largest share index a single byte can represent.
const MaxShares = 255

// ShareData is a single point (x, f(x)) of the secret polynomial, encoded
// as decimal strings for transport.
type ShareData struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// SplitResult is the ordered output of Split.
type SplitResult struct {
	Shares      []ShareData
	Threshold   int
	TotalShares int
}

// EncryptedShare is a share after it has been sealed under the per-share
// AEAD key and labeled with its owning backend tag.
type EncryptedShare struct {
	ShareIndex    int    `json:"shareIndex"`
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	Tag           string `json:"tag"`
	Chain         string `json:"chain"`
	Receipt       string `json:"receipt,omitempty"`
}

// xInt returns the share's x coordinate as an int.
func (s ShareData) xInt() (int, error) {
	n, err := strconv.Atoi(s.X)
	if err != nil {
		return 0, zkautherrors.Wrap(zkautherrors.InvalidInput, "share x coordinate is not an integer", err)
	}
	return n, nil
}

// yElement returns the share's y coordinate as a field element.
func (s ShareData) yElement() (field.Element, error) {
	y, ok := new(big.Int).SetString(s.Y, 10)
	if !ok {
		return field.Element{}, zkautherrors.New(zkautherrors.InvalidInput, "share y coordinate is not a decimal integer")
	}
	return field.FromBigInt(y), nil
}

// Split generates N shares of mk such that any T of them reconstruct it.
// mk is read as a field element, so a key whose value is at or above
// field.Modulus() is reduced and does not round-trip; masterkey.Generate
// only produces keys below it.
func Split(mk masterkey.MasterKey, threshold, totalShares int) (SplitResult, error) {
	if threshold < 2 || threshold > totalShares || totalShares > MaxShares {
		return SplitResult{}, zkautherrors.New(zkautherrors.InvalidInput,
			fmt.Sprintf("invalid threshold/totalShares: require 2<=T<=N<=%d, got T=%d N=%d", MaxShares, threshold, totalShares))
	}

	secret := field.FromBytes(mk.Raw)

	coeffs := make([]field.Element, threshold-1)
	for i := range coeffs {
		c, err := field.Random()
		if err != nil {
			return SplitResult{}, err
		}
		coeffs[i] = c
	}

	shares := make([]ShareData, 0, totalShares)
	for i := 1; i <= totalShares; i++ {
		y := evaluate(secret, coeffs, i)
		shares = append(shares, ShareData{
			X: strconv.Itoa(i),
			Y: y.BigInt().String(),
		})
	}

	return SplitResult{Shares: shares, Threshold: threshold, TotalShares: totalShares}, nil
}

// evaluate computes f(x) = secret + sum(coeffs[i] * x^(i+1)).
func evaluate(secret field.Element, coeffs []field.Element, x int) field.Element {
	xElem := field.FromBigInt(big.NewInt(int64(x)))
	result := secret
	power := field.FromBigInt(big.NewInt(1))
	for _, c := range coeffs {
		power = field.Mul(power, xElem)
		result = field.Add(result, field.Mul(c, power))
	}
	return result
}

// Combine reconstructs the master key hex from a set of distinct shares via
// Lagrange interpolation at x=0. The caller is responsible for ensuring at
// least the configured threshold of shares is supplied; Combine itself only
// rejects duplicate x coordinates.
func Combine(shares []ShareData) (string, error) {
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if seen[s.X] {
			return "", zkautherrors.New(zkautherrors.InvalidInput, "duplicate share x coordinate")
		}
		seen[s.X] = true
	}

	type point struct {
		x field.Element
		y field.Element
	}
	points := make([]point, 0, len(shares))
	for _, s := range shares {
		xi, err := s.xInt()
		if err != nil {
			return "", err
		}
		yi, err := s.yElement()
		if err != nil {
			return "", err
		}
		points = append(points, point{x: field.FromBigInt(big.NewInt(int64(xi))), y: yi})
	}

	secret := field.Zero()
	for j, pj := range points {
		num := field.FromBigInt(big.NewInt(1))
		den := field.FromBigInt(big.NewInt(1))
		for k, pk := range points {
			if k == j {
				continue
			}
			num = field.Mul(num, field.Neg(pk.x))
			diff := field.Sub(pj.x, pk.x)
			den = field.Mul(den, diff)
		}
		denInv, err := field.Inverse(den)
		if err != nil {
			return "", zkautherrors.Wrap(zkautherrors.InvalidInput, "degenerate Lagrange basis (duplicate x?)", err)
		}
		term := field.Mul(pj.y, field.Mul(num, denInv))
		secret = field.Add(secret, term)
	}

	return fmt.Sprintf("%064x", secret.BigInt()), nil
}

// EncryptShare seals a share under the AEAD key derived from pkHex, tagging
// it with the owning backend's chain tag.
func EncryptShare(share ShareData, idx int, chain, pkHex string) (EncryptedShare, error) {
	payload, err := json.Marshal(share)
	if err != nil {
		return EncryptedShare{}, zkautherrors.Wrap(zkautherrors.InvalidInput, "failed to encode share", err)
	}

	result, err := masterkey.EncryptWithPK(pkHex, payload)
	if err != nil {
		return EncryptedShare{}, err
	}

	return EncryptedShare{
		ShareIndex:    idx,
		EncryptedData: result.Ciphertext,
		IV:            result.IV,
		Tag:           result.Tag,
		Chain:         chain,
	}, nil
}

// DecryptShare inverts EncryptShare and verifies the embedded share index
// matches the envelope's declared ShareIndex.
func DecryptShare(es EncryptedShare, pkHex string) (ShareData, error) {
	envelope := aead.Result{Ciphertext: es.EncryptedData, IV: es.IV, Tag: es.Tag}
	plaintext, err := masterkey.DecryptWithPK(pkHex, envelope)
	if err != nil {
		return ShareData{}, err
	}

	var share ShareData
	if err := json.Unmarshal(plaintext, &share); err != nil {
		return ShareData{}, zkautherrors.Wrap(zkautherrors.AuthenticationFailure, "decrypted share is not valid JSON", err)
	}

	xi, err := share.xInt()
	if err != nil {
		return ShareData{}, err
	}
	if xi != es.ShareIndex {
		return ShareData{}, zkautherrors.New(zkautherrors.AuthenticationFailure, "decrypted share index does not match envelope")
	}

	return share, nil
}

// ChainForIndex maps a 1-based share index to a backend tag, cycling
// through backendTags when there are more shares than backends.
func ChainForIndex(i int, backendTags []string) string {
	if len(backendTags) == 0 {
		return ""
	}
	return backendTags[(i-1)%len(backendTags)]
}
