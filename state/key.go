// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/vechain/benchtop/common"

// HashKey maps an application key to its trie key.
func HashKey(key []byte) common.Bytes32 {
	return common.Keccak256(key)
}

// HashSlot maps a storage slot key to its trie key.
func HashSlot(slot []byte) common.Bytes32 {
	return common.Keccak256(slot)
}
