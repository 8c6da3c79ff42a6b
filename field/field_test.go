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

package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

func TestArithmetic(t *testing.T) {
	t.Run("AddSubNegRoundTrip", func(t *testing.T) {
		a, err := Random()
		require.NoError(t, err)
		b, err := Random()
		require.NoError(t, err)

		sum := Add(a, b)
		back := Sub(sum, b)
		assert.True(t, back.Equal(a))

		negA := Neg(a)
		zero := Add(a, negA)
		assert.True(t, zero.Equal(Zero()))
	})

	t.Run("MulByOneIsIdentity", func(t *testing.T) {
		one := FromBigInt(big.NewInt(1))
		a, err := Random()
		require.NoError(t, err)
		assert.True(t, Mul(a, one).Equal(a))
	})

	t.Run("InverseRoundTrip", func(t *testing.T) {
		a := FromBigInt(big.NewInt(12345))
		inv, err := Inverse(a)
		require.NoError(t, err)
		assert.True(t, Mul(a, inv).Equal(FromBigInt(big.NewInt(1))))
	})

	t.Run("InverseOfZeroFails", func(t *testing.T) {
		_, err := Inverse(Zero())
		require.Error(t, err)
		assert.True(t, zkautherrors.Is(err, zkautherrors.InvalidInput))
	})
}

func TestFromBytes(t *testing.T) {
	raw := make([]byte, 32)
	raw[31] = 7

	el := FromBytes(raw)
	assert.Equal(t, big.NewInt(7), el.BigInt())
}

func TestRandomIsBelowModulus(t *testing.T) {
	for i := 0; i < 50; i++ {
		el, err := Random()
		require.NoError(t, err)
		assert.Equal(t, -1, el.BigInt().Cmp(Modulus()))
	}
}
