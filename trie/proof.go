// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package trie

import (
	"bytes"
	"fmt"

	"github.com/vechain/benchtop/common"
)

// Prove constructs a merkle proof for key. The result contains all encoded nodes
// on the path to the value at key. The value itself is also included in the last
// node and can be retrieved by verifying the proof.
//
// If the trie does not contain a value for key, the returned proof contains all
// nodes of the longest existing prefix of the key (at least the root node), ending
// with the node that proves the absence of the key.
//
// Each node is passed to fn together with its path. Nodes embedded in their parent
// are not emitted. The trie must not hold unhashed changes.
func (t *Trie) Prove(key []byte, fn func(path, blob []byte)) error {
	var (
		prefix []byte
		nodes  []node
		paths  [][]byte
		tn     = t.root
	)
	key = keybytesToHex(key)
	for len(key) > 0 && tn != nil {
		switch n := tn.(type) {
		case *shortNode:
			nodes, paths = append(nodes, n), append(paths, bytes.Clone(prefix))
			if len(key) < len(n.Key) || !bytes.Equal(n.Key, key[:len(n.Key)]) {
				// The trie doesn't contain the key.
				tn = nil
			} else {
				tn = n.Val
				prefix = append(prefix, n.Key...)
				key = key[len(n.Key):]
			}
		case *fullNode:
			nodes, paths = append(nodes, n), append(paths, bytes.Clone(prefix))
			tn = n.Children[key[0]]
			prefix = append(prefix, key[0])
			key = key[1:]
		case hashNode:
			// Retrieve the specified node from the underlying node reader.
			// Proving doesn't change the trie, so the node isn't tracked.
			resolved, _, err := t.resolveHash(n, prefix)
			if err != nil {
				return err
			}
			tn = resolved
		case valueNode:
			tn = nil
		default:
			panic(fmt.Sprintf("%T: invalid node: %v", tn, tn))
		}
	}
	h := newHasher()
	defer returnHasherToPool(h)

	for i, n := range nodes {
		var hn node
		n, hn = h.proofHash(n)
		if _, ok := hn.(hashNode); ok || i == 0 {
			// If the node's database encoding is a hash (or is the
			// root node), it becomes a proof element.
			fn(paths[i], nodeToBytes(n))
		}
	}
	return nil
}

// VerifyProof checks merkle proofs. The given proof must contain the value for
// key in a trie with the given root hash, keyed by node path. VerifyProof returns
// an error if the proof contains invalid trie nodes or the wrong value. A nil value
// with nil error proves the absence of key.
func VerifyProof(root common.Bytes32, proof map[string][]byte, key []byte) ([]byte, error) {
	if root == common.EmptyRoot {
		return nil, nil
	}
	var (
		path     []byte
		wantHash = root
	)
	key = keybytesToHex(key)
	for i := 0; ; i++ {
		buf, ok := proof[string(path)]
		if !ok {
			return nil, fmt.Errorf("proof node %d (path %x) missing", i, path)
		}
		if got := common.Keccak256(buf); got != wantHash {
			return nil, fmt.Errorf("proof node %d (path %x) hash mismatch: want %v, got %v", i, path, wantHash, got)
		}
		n, err := decodeNode(wantHash[:], buf)
		if err != nil {
			return nil, fmt.Errorf("bad proof node %d: %v", i, err)
		}
		keyrest, cld := get(n, key)
		switch cld := cld.(type) {
		case nil:
			// The trie doesn't contain the key.
			return nil, nil
		case hashNode:
			path = append(path, key[:len(key)-len(keyrest)]...)
			key = keyrest
			copy(wantHash[:], cld)
		case valueNode:
			return cld, nil
		}
	}
}

// get returns the child of the given node. Return nil if the
// node with specified key doesn't exist at all. Embedded nodes
// are walked through.
func get(tn node, key []byte) ([]byte, node) {
	for {
		switch n := tn.(type) {
		case *shortNode:
			if len(key) < len(n.Key) || !bytes.Equal(n.Key, key[:len(n.Key)]) {
				return nil, nil
			}
			tn = n.Val
			key = key[len(n.Key):]
		case *fullNode:
			tn = n.Children[key[0]]
			key = key[1:]
		case hashNode:
			return key, n
		case nil:
			return key, nil
		case valueNode:
			return nil, n
		default:
			panic(fmt.Sprintf("%T: invalid node: %v", tn, tn))
		}
	}
}
