// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package workload

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/backend"
)

const (
	addrA = "0x00000000000000000000000000000000000000aa"
	addrB = "0x00000000000000000000000000000000000000bb"
	slot1 = "0x0000000000000000000000000000000000000000000000000000000000000001"
	slot2 = "0x0000000000000000000000000000000000000000000000000000000000000002"
)

func lines(ops ...string) string {
	return strings.Join(ops, "\n") + "\n"
}

func createAccount(addr, balance string) string {
	return fmt.Sprintf(`{"op":"create_account","address":%q,"balance":%q}`, addr, balance)
}

func setStorage(addr, slot, value string) string {
	return fmt.Sprintf(`{"op":"set_storage","address":%q,"slot":%q,"value":%q}`, addr, slot, value)
}

func withAddress(op, addr string) string {
	return fmt.Sprintf(`{"op":%q,"address":%q}`, op, addr)
}

func readStorage(addr, slot string) string {
	return fmt.Sprintf(`{"op":"read_storage","address":%q,"slot":%q}`, addr, slot)
}

const computeRoot = `{"op":"compute_root"}`

func TestLoad(t *testing.T) {
	input := lines(
		`{"op":"create_account","address":"`+addrA+`","balance":"0x64","nonce":3}`,
		`{"op":"set_code","address":"`+addrA+`","code":"0x6000"}`,
		setStorage(addrA, slot1, "0x01"),
		computeRoot,
		"",
		withAddress(OpRead, addrA),
		readStorage(addrA, slot1),
	)
	rp, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Operations: 6,
		Steps:      2,
		Accounts:   1,
		Slots:      1,
		Reads:      2,
		Skipped:    1,
	}, rp.Summary())
	assert.Equal(t, 2, rp.Steps())
	assert.False(t, rp.Done())
}

func TestLoadLimit(t *testing.T) {
	input := lines(
		createAccount(addrA, "0x64"),
		createAccount(addrB, "0x01"),
		computeRoot,
		setStorage(addrA, slot1, "0x07"),
		setStorage(addrA, slot2, "0x08"),
		computeRoot,
	)

	tests := []struct {
		limit      int
		operations int
		steps      int
	}{
		{0, 6, 2},
		{2, 2, 1},
		{3, 3, 1},
		{4, 4, 2},
		{100, 6, 2},
	}
	for _, tt := range tests {
		rp, err := LoadLimit(strings.NewReader(input), tt.limit)
		require.NoError(t, err)
		assert.Equal(t, tt.operations, rp.Summary().Operations, "limit %d", tt.limit)
		assert.Equal(t, tt.steps, rp.Steps(), "limit %d", tt.limit)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad json", "{", "line 1"},
		{"unknown op", `{"op":"transfer"}`, "unknown operation"},
		{"bad address", withAddress(OpRead, "aa"), "address"},
		{"missing slot", withAddress(OpSetStorage, addrA), "slot"},
		{"oversized value", setStorage(addrA, slot1, "0x"+strings.Repeat("11", 33)), "exceeds 32 bytes"},
		{"second line", lines(computeRoot, `{"op":"nope"}`), "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReplay(t *testing.T) {
	input := lines(
		createAccount(addrA, "0x64"),
		createAccount(addrB, "0x01"),
		setStorage(addrA, slot1, "0x07"),
		setStorage(addrA, slot2, "0x08"),
		computeRoot,
		withAddress(OpDeleteAccount, addrB),
		withAddress(OpWipeStorage, addrA),
		withAddress(OpRead, addrA),
		withAddress(OpRead, addrB),
		readStorage(addrA, slot1),
		computeRoot,
	)
	rp, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	db := backend.NewMem()
	defer db.Close()

	first, err := db.Execute(nil, rp)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Writes)

	second, err := db.Execute(nil, rp)
	require.NoError(t, err)
	assert.True(t, rp.Done())
	assert.NotEqual(t, first.Root, second.Root)
	assert.Equal(t, 3, second.Reads)

	// B is gone and A's storage is wiped
	var (
		a, b  bool
		slot  bool
		value []byte
	)
	_, err = db.Execute(nil, backend.WorkloadFunc(func(tx backend.Transaction) {
		value, a = tx.Read(mustDecode(addrA))
		_, b = tx.Read(mustDecode(addrB))
		_, slot = tx.(backend.StorageTransaction).ReadStorage(mustDecode(addrA), mustDecode(slot1))
	}))
	require.NoError(t, err)
	assert.True(t, a)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0x64}, value)
	assert.False(t, b)
	assert.False(t, slot)

	// further steps are no-ops
	third, err := db.Execute(nil, rp)
	require.NoError(t, err)
	assert.Equal(t, second.Root, third.Root)
}

func mustDecode(s string) []byte {
	b, err := decodeValue(s)
	if err != nil {
		panic(err)
	}
	return b
}
