// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commitment

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/muxdb"
	"github.com/vechain/benchtop/state"
	"github.com/vechain/benchtop/trie"
)

// Targets maps hashed accounts to the hashed slots to prove. An empty slot set
// proves the account only.
type Targets map[common.Bytes32]mapset.Set[common.Bytes32]

// StorageMultiProof holds the storage trie nodes proving slots of one account.
type StorageMultiProof struct {
	Root  common.Bytes32
	Nodes map[string][]byte // keyed by node path
}

// MultiProof is a path-keyed node set proving inclusion or exclusion of many
// accounts and slots against one state root.
type MultiProof struct {
	StateRoot    common.Bytes32
	AccountNodes map[string][]byte // keyed by node path
	Storages     map[common.Bytes32]*StorageMultiProof
}

func compareKeys(a, b common.Bytes32) int {
	return bytes.Compare(a[:], b[:])
}

func sortedKeys[V any](m map[common.Bytes32]V) []common.Bytes32 {
	return slices.SortedFunc(maps.Keys(m), compareKeys)
}

// Multiproof builds the multiproof of targets against the tries persisted in tx.
// It is read-only.
func Multiproof(tx *muxdb.Tx, targets Targets) (*MultiProof, error) {
	var zero common.Bytes32
	root, err := TrieRoot(tx, zero)
	if err != nil {
		return nil, errors.Wrap(err, "load state root")
	}
	accountTrie, err := trie.New(root, &nodeReader{tx, zero})
	if err != nil {
		return nil, errors.Wrap(err, "open account trie")
	}

	mp := &MultiProof{
		StateRoot:    root,
		AccountNodes: make(map[string][]byte),
		Storages:     make(map[common.Bytes32]*StorageMultiProof),
	}
	for _, key := range sortedKeys(targets) {
		if err := accountTrie.Prove(key[:], func(path, blob []byte) {
			mp.AccountNodes[string(path)] = blob
		}); err != nil {
			return nil, errors.Wrapf(err, "prove account %v", key)
		}

		slots := targets[key]
		if slots == nil || slots.Cardinality() == 0 {
			continue
		}
		// storage is proved under the root carried by the account leaf
		sroot := common.EmptyRoot
		leaf, err := accountTrie.Get(key[:])
		if err != nil {
			return nil, errors.Wrapf(err, "get account %v", key)
		}
		if leaf != nil {
			if _, sroot, err = state.DecodeTrieAccount(leaf); err != nil {
				return nil, errors.Wrapf(err, "decode account %v", key)
			}
		}
		storageTrie, err := trie.New(sroot, &nodeReader{tx, key})
		if err != nil {
			return nil, errors.Wrapf(err, "open storage trie %v", key)
		}
		sp := &StorageMultiProof{Root: sroot, Nodes: make(map[string][]byte)}
		for _, slot := range slices.SortedFunc(slices.Values(slots.ToSlice()), compareKeys) {
			if err := storageTrie.Prove(slot[:], func(path, blob []byte) {
				sp.Nodes[string(path)] = blob
			}); err != nil {
				return nil, errors.Wrapf(err, "prove slot %v/%v", key, slot)
			}
		}
		mp.Storages[key] = sp
	}
	metricProofNodes().Observe(int64(mp.NodeCount()))
	return mp, nil
}

// NodeCount returns the total count of nodes in the proof.
func (mp *MultiProof) NodeCount() int {
	n := len(mp.AccountNodes)
	for _, sp := range mp.Storages {
		n += len(sp.Nodes)
	}
	return n
}

// VerifyAccount verifies the proof of the account at key, and returns the proved
// account, or nil if the proof shows its absence.
func (mp *MultiProof) VerifyAccount(key common.Bytes32) (*state.Account, error) {
	acc, _, err := mp.verifyAccount(key)
	return acc, err
}

func (mp *MultiProof) verifyAccount(key common.Bytes32) (*state.Account, common.Bytes32, error) {
	leaf, err := trie.VerifyProof(mp.StateRoot, mp.AccountNodes, key[:])
	if err != nil {
		return nil, common.Bytes32{}, errors.Wrapf(err, "verify account %v", key)
	}
	if leaf == nil {
		return nil, common.EmptyRoot, nil
	}
	return state.DecodeTrieAccount(leaf)
}

// VerifyStorage verifies the proof of a slot, and returns the proved value.
// Zero is returned for an absent slot.
func (mp *MultiProof) VerifyStorage(account, slot common.Bytes32) (*uint256.Int, error) {
	_, sroot, err := mp.verifyAccount(account)
	if err != nil {
		return nil, err
	}
	sp := mp.Storages[account]
	if sp == nil {
		return nil, errors.Errorf("no storage proof of account %v", account)
	}
	if sp.Root != sroot {
		return nil, errors.Errorf("storage root mismatch of account %v: proof %v, account %v", account, sp.Root, sroot)
	}
	val, err := trie.VerifyProof(sp.Root, sp.Nodes, slot[:])
	if err != nil {
		return nil, errors.Wrapf(err, "verify slot %v/%v", account, slot)
	}
	if val == nil {
		return new(uint256.Int), nil
	}
	return state.DecodeTrieStorage(val)
}

type proofNode struct {
	Path []byte
	Blob []byte
}

type storageProof struct {
	Account common.Bytes32
	Root    common.Bytes32
	Nodes   []proofNode
}

type encodedProof struct {
	StateRoot common.Bytes32
	Nodes     []proofNode
	Storages  []storageProof
}

func toProofNodes(m map[string][]byte) []proofNode {
	paths := slices.Sorted(maps.Keys(m))
	nodes := make([]proofNode, 0, len(paths))
	for _, path := range paths {
		nodes = append(nodes, proofNode{[]byte(path), m[path]})
	}
	return nodes
}

func fromProofNodes(nodes []proofNode) map[string][]byte {
	m := make(map[string][]byte, len(nodes))
	for _, n := range nodes {
		m[string(n.Path)] = n.Blob
	}
	return m
}

// Encode encodes the proof in canonical order, compressed with snappy.
func (mp *MultiProof) Encode() []byte {
	ep := encodedProof{
		StateRoot: mp.StateRoot,
		Nodes:     toProofNodes(mp.AccountNodes),
	}
	for _, key := range sortedKeys(mp.Storages) {
		sp := mp.Storages[key]
		ep.Storages = append(ep.Storages, storageProof{key, sp.Root, toProofNodes(sp.Nodes)})
	}
	data, err := rlp.EncodeToBytes(&ep)
	if err != nil {
		panic(err)
	}
	enc := snappy.Encode(nil, data)
	metricProofSize().Observe(int64(len(enc)))
	return enc
}

// DecodeMultiProof decodes a proof encoded by Encode.
func DecodeMultiProof(data []byte) (*MultiProof, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "decompress proof")
	}
	var ep encodedProof
	if err := rlp.DecodeBytes(raw, &ep); err != nil {
		return nil, errors.Wrap(err, "decode proof")
	}
	mp := &MultiProof{
		StateRoot:    ep.StateRoot,
		AccountNodes: fromProofNodes(ep.Nodes),
		Storages:     make(map[common.Bytes32]*StorageMultiProof, len(ep.Storages)),
	}
	for _, sp := range ep.Storages {
		mp.Storages[sp.Account] = &StorageMultiProof{sp.Root, fromProofNodes(sp.Nodes)}
	}
	return mp, nil
}

// String summarizes the proof.
func (mp *MultiProof) String() string {
	return fmt.Sprintf("MultiProof(root %v, %d account nodes, %d storages)",
		mp.StateRoot.AbbrevString(), len(mp.AccountNodes), len(mp.Storages))
}
