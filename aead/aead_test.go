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

package aead

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

func testKey() []byte {
	return make([]byte, KeySize)
}

func TestRoundTrip(t *testing.T) {
	key := testKey()
	plaintext := []byte("Hello")

	result, err := Encrypt(key, plaintext)
	require.NoError(t, err)

	decrypted, err := Decrypt(key, result)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestTamperDetection(t *testing.T) {
	key := testKey()
	result, err := Encrypt(key, []byte("Hello"))
	require.NoError(t, err)

	t.Run("TamperedCiphertext", func(t *testing.T) {
		raw, err := hex.DecodeString(result.Ciphertext)
		require.NoError(t, err)
		raw[0] ^= 0xFF
		tampered := result
		tampered.Ciphertext = hex.EncodeToString(raw)

		_, err = Decrypt(key, tampered)
		require.Error(t, err)
		assert.True(t, zkautherrors.Is(err, zkautherrors.AuthenticationFailure))
	})

	t.Run("TamperedTag", func(t *testing.T) {
		raw, err := hex.DecodeString(result.Tag)
		require.NoError(t, err)
		raw[0] ^= 0xFF
		tampered := result
		tampered.Tag = hex.EncodeToString(raw)

		_, err = Decrypt(key, tampered)
		require.Error(t, err)
		assert.True(t, zkautherrors.Is(err, zkautherrors.AuthenticationFailure))
	})

	t.Run("TamperedIV", func(t *testing.T) {
		raw, err := hex.DecodeString(result.IV)
		require.NoError(t, err)
		raw[0] ^= 0xFF
		tampered := result
		tampered.IV = hex.EncodeToString(raw)

		_, err = Decrypt(key, tampered)
		require.Error(t, err)
		assert.True(t, zkautherrors.Is(err, zkautherrors.AuthenticationFailure))
	})
}

func TestInvalidKeySize(t *testing.T) {
	_, err := Encrypt(make([]byte, 16), []byte("Hello"))
	require.Error(t, err)
}

func TestRandomIVPerMessage(t *testing.T) {
	key := testKey()
	a, err := Encrypt(key, []byte("Hello"))
	require.NoError(t, err)
	b, err := Encrypt(key, []byte("Hello"))
	require.NoError(t, err)
	assert.NotEqual(t, a.IV, b.IV)
}
