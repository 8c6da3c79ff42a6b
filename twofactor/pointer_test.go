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

package twofactor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMissingPointerIsNotFoundNotError(t *testing.T) {
	_, _, found, err := Fetch(nil, "lookup-1", strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFetchPrefersYoungestMatchingRecord(t *testing.T) {
	older := TwoFAState{TOTPEnabled: false}
	newer := TwoFAState{TOTPEnabled: true, SecurityEmail: "a@example.com"}

	olderJSON, err := json.Marshal(older)
	require.NoError(t, err)
	newerJSON, err := json.Marshal(newer)
	require.NoError(t, err)

	records := []TwoFAPointer{
		{LookupKey: "lookup-1", EncryptedData: string(olderJSON), Timestamp: 100},
		{LookupKey: "lookup-1", EncryptedData: string(newerJSON), Timestamp: 200},
		{LookupKey: "other", EncryptedData: string(newerJSON), Timestamp: 300},
	}

	state, pointer, found, err := Fetch(records, "lookup-1", strings.Repeat("ab", 32))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, newer, state)
	assert.Equal(t, int64(200), pointer.Timestamp)
}

func TestFetchDecryptsEncryptedEnvelope(t *testing.T) {
	masterKeyHex := strings.Repeat("ab", 32)
	state := TwoFAState{TOTPEnabled: true, TOTPSecret: "JBSWY3DPEHPK3PXP"}

	r, err := EncryptWithMasterKey(state, masterKeyHex)
	require.NoError(t, err)

	envelope := struct {
		Ciphertext string `json:"ciphertext"`
		IV         string `json:"iv"`
		Tag        string `json:"tag"`
	}{Ciphertext: r.Ciphertext, IV: r.IV, Tag: r.Tag}
	envelopeJSON, err := json.Marshal(envelope)
	require.NoError(t, err)

	records := []TwoFAPointer{
		{LookupKey: "lookup-1", EncryptedData: string(envelopeJSON), Timestamp: 100},
	}

	got, _, found, err := Fetch(records, "lookup-1", masterKeyHex)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, state, got)
}
