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
	"errors"
	"maps"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/benchtop/common"
)

// memNodes is a path-keyed node store for tests.
type memNodes map[string][]byte

func (m memNodes) Node(path []byte, hash common.Bytes32) ([]byte, error) {
	blob, ok := m[string(path)]
	if !ok {
		return nil, errors.New("not found")
	}
	if common.Keccak256(blob) != hash {
		return nil, errors.New("hash mismatch")
	}
	return blob, nil
}

func (m memNodes) apply(set *NodeSet) {
	for path := range set.Removed {
		delete(m, path)
	}
	for path, blob := range set.Updated {
		m[path] = blob
	}
}

func TestEmptyTrie(t *testing.T) {
	tr := NewEmpty()
	assert.Equal(t, common.EmptyRoot, tr.Hash())

	root, set := tr.Commit()
	assert.Equal(t, common.EmptyRoot, root)
	updated, removed := set.Size()
	assert.Zero(t, updated)
	assert.Zero(t, removed)
}

func TestNewMissingRoot(t *testing.T) {
	root := common.Keccak256([]byte("missing"))
	_, err := New(root, memNodes{})

	var missing *MissingNodeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, root, missing.Hash)
	assert.Empty(t, missing.Path)
}

func TestInsert(t *testing.T) {
	tr := NewEmpty()
	require.NoError(t, tr.Update([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Update([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Update([]byte("dogglesworth"), []byte("cat")))

	exp := common.MustParseBytes32("0x8aad789dff2f538bca5d8ea56e8abe10f4c7ba3a5dea95fea4cd6e7c3a1168d3")
	assert.Equal(t, exp, tr.Hash())

	tr = NewEmpty()
	require.NoError(t, tr.Update([]byte("A"), []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")))

	exp = common.MustParseBytes32("0x9456e06a9a34698e8e7bde759670868c155157e0941e06f64cda61ffee8ed281")
	root, _ := tr.Commit()
	assert.Equal(t, exp, root)
}

func TestGet(t *testing.T) {
	db := memNodes{}
	tr := NewEmpty()
	require.NoError(t, tr.Update([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Update([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Update([]byte("dogglesworth"), []byte("cat")))

	for range 2 {
		res, err := tr.Get([]byte("dog"))
		require.NoError(t, err)
		assert.Equal(t, []byte("puppy"), res)

		unknown, err := tr.Get([]byte("unknown"))
		require.NoError(t, err)
		assert.Nil(t, unknown)

		root, set := tr.Commit()
		db.apply(set)

		var err2 error
		tr, err2 = New(root, db)
		require.NoError(t, err2)
	}
}

func TestDelete(t *testing.T) {
	tr := NewEmpty()
	vals := []struct{ k, v string }{
		{"do", "verb"},
		{"ether", "wookiedoo"},
		{"horse", "stallion"},
		{"shaman", "horse"},
		{"doge", "coin"},
		{"ether", ""},
		{"dog", "puppy"},
		{"shaman", ""},
	}
	for _, val := range vals {
		if val.v != "" {
			require.NoError(t, tr.Update([]byte(val.k), []byte(val.v)))
		} else {
			require.NoError(t, tr.Delete([]byte(val.k)))
		}
	}

	exp := common.MustParseBytes32("0x5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84")
	assert.Equal(t, exp, tr.Hash())
}

func TestCommitUntouched(t *testing.T) {
	db := memNodes{}
	tr := NewEmpty()
	require.NoError(t, tr.Update([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Update([]byte("dog"), []byte("puppy")))
	root, set := tr.Commit()
	db.apply(set)

	tr, err := New(root, db)
	require.NoError(t, err)
	_, err = tr.Get([]byte("dog"))
	require.NoError(t, err)
	// rewriting the same value changes nothing
	require.NoError(t, tr.Update([]byte("doe"), []byte("reindeer")))

	root2, set := tr.Commit()
	assert.Equal(t, root, root2)
	updated, removed := set.Size()
	assert.Zero(t, updated)
	assert.Zero(t, removed)
}

func TestDeleteAll(t *testing.T) {
	db := memNodes{}
	tr := NewEmpty()
	keys := [][]byte{[]byte("doe"), []byte("dog"), []byte("dogglesworth")}
	for _, k := range keys {
		require.NoError(t, tr.Update(k, bytes.Repeat(k, 10)))
	}
	root, set := tr.Commit()
	db.apply(set)
	require.NotEmpty(t, db)

	tr, err := New(root, db)
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, tr.Delete(k))
	}
	root, set = tr.Commit()
	assert.Equal(t, common.EmptyRoot, root)
	db.apply(set)
	assert.Empty(t, db, spew.Sdump(db))
}

type entry struct {
	Key   [32]byte
	Value []byte
}

func randomEntries(seed int64, n int) []entry {
	f := fuzz.NewWithSeed(seed).NilChance(0).NumElements(1, 40)
	entries := make([]entry, n)
	for i := range entries {
		f.Fuzz(&entries[i])
		// empty values mean deletion
		entries[i].Value = append(entries[i].Value, byte(i))
	}
	return entries
}

// build commits entries into a fresh trie and returns the persisted nodes.
func build(t *testing.T, entries map[[32]byte][]byte) (common.Bytes32, memNodes) {
	db := memNodes{}
	tr := NewEmpty()
	for k, v := range entries {
		require.NoError(t, tr.Update(k[:], v))
	}
	root, set := tr.Commit()
	db.apply(set)
	return root, db
}

func TestIncrementalCommit(t *testing.T) {
	entries := randomEntries(1, 300)
	want := make(map[[32]byte][]byte)

	db := memNodes{}
	root := common.EmptyRoot
	for round := range 6 {
		tr, err := New(root, db)
		require.NoError(t, err)

		for i, e := range entries {
			switch {
			case i%6 == round:
				// delete a previously inserted key, if any
				require.NoError(t, tr.Delete(e.Key[:]))
				delete(want, e.Key)
			case i%3 == round%3:
				require.NoError(t, tr.Update(e.Key[:], e.Value))
				want[e.Key] = e.Value
			}
		}

		var set *NodeSet
		root, set = tr.Commit()
		db.apply(set)

		expRoot, expDB := build(t, want)
		require.Equal(t, expRoot, root, "round %d", round)
		require.True(t, maps.EqualFunc(expDB, db, bytes.Equal), "round %d: persisted nodes differ from a fresh build", round)
	}

	tr, err := New(root, db)
	require.NoError(t, err)
	for k, v := range want {
		got, err := tr.Get(k[:])
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestCopyOnWrite(t *testing.T) {
	entries := randomEntries(2, 50)
	m := make(map[[32]byte][]byte)
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	root, db := build(t, m)
	snapshot := maps.Clone(db)

	tr, err := New(root, db)
	require.NoError(t, err)
	for _, e := range entries[:10] {
		require.NoError(t, tr.Delete(e.Key[:]))
	}
	require.NotEqual(t, root, tr.Hash())

	// the persisted nodes are untouched until the node set is applied
	assert.True(t, maps.EqualFunc(snapshot, db, bytes.Equal))

	again, err := New(root, db)
	require.NoError(t, err)
	got, err := again.Get(entries[0].Key[:])
	require.NoError(t, err)
	assert.Equal(t, entries[0].Value, got)
}

func TestNodeSetPaths(t *testing.T) {
	set := NewNodeSet()
	set.update([]byte{1, 2}, []byte{0xc0})
	set.remove([]byte{1})
	set.remove([]byte{1, 2}) // updated wins
	set.update(nil, []byte{0xc0})

	assert.Equal(t, []string{"", "\x01", "\x01\x02"}, set.Paths())
	_, removed := set.Size()
	assert.Equal(t, 1, removed)
}
