// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"
)

func TestBytes32JSON(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var v Bytes32
	assert.NoError(t, json.Unmarshal([]byte(originalHex), &v))

	data, err := json.Marshal(&v)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(data))

	assert.Error(t, v.UnmarshalJSON([]byte(`"0x1234"`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`"1x00000000000000000000000000000000000000000000000000006d6173746572"`)))
}

func TestBytesToBytes32(t *testing.T) {
	assert.Equal(t, Bytes32{31: 1}, BytesToBytes32([]byte{1}))

	long := make([]byte, 40)
	long[39] = 2
	long[0] = 0xff
	assert.Equal(t, Bytes32{31: 2}, BytesToBytes32(long))
	assert.True(t, Bytes32{}.IsZero())
}

func TestParseHexBytes(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want []byte
	}{
		{"0x0102", []byte{1, 2}},
		{"0102", []byte{1, 2}},
		{"0x102", []byte{1, 2}},
		{"", []byte{}},
	} {
		got, err := ParseHexBytes(tt.in)
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseHexBytes("0xzz")
	assert.Error(t, err)
}

func TestKeccak256(t *testing.T) {
	data := [][]byte{[]byte("foo"), []byte("bar")}

	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	var want Bytes32
	h.Sum(want[:0])

	assert.Equal(t, want, Keccak256(data...))
	assert.Equal(t, EmptyCodeHash, Keccak256())
	assert.Equal(t, EmptyRoot, Keccak256([]byte{0x80}))
}
