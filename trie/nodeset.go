// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import (
	"maps"
	"slices"
)

// NodeSet is the set of trie nodes changed by one commit, keyed by node path.
// The root node is keyed by the empty path.
type NodeSet struct {
	Updated map[string][]byte
	Removed map[string]struct{}
}

// NewNodeSet creates an empty node set.
func NewNodeSet() *NodeSet {
	return &NodeSet{
		Updated: make(map[string][]byte),
		Removed: make(map[string]struct{}),
	}
}

func (set *NodeSet) update(path []byte, blob []byte) {
	delete(set.Removed, string(path))
	set.Updated[string(path)] = blob
}

func (set *NodeSet) remove(path []byte) {
	if _, ok := set.Updated[string(path)]; ok {
		return
	}
	set.Removed[string(path)] = struct{}{}
}

// Size returns the count of updated and removed nodes.
func (set *NodeSet) Size() (updated, removed int) {
	if set == nil {
		return 0, 0
	}
	return len(set.Updated), len(set.Removed)
}

// Paths returns all paths in the set in ascending order.
func (set *NodeSet) Paths() []string {
	if set == nil {
		return nil
	}
	paths := slices.Collect(maps.Keys(set.Updated))
	for path := range set.Removed {
		if _, ok := set.Updated[path]; !ok {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths
}
