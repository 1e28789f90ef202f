// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var errNotFound = errors.New("not found")

type mem struct {
	db *memdb.DB
}

func newMem(kvs ...string) *mem {
	m := &mem{memdb.New(comparer.DefaultComparer, 0)}
	for i := 0; i+1 < len(kvs); i += 2 {
		_ = m.Put([]byte(kvs[i]), []byte(kvs[i+1]))
	}
	return m
}

func (m *mem) Get(k []byte) ([]byte, error) {
	v, err := m.db.Get(k)
	if err != nil {
		return nil, errNotFound
	}
	return v, nil
}

func (m *mem) Has(k []byte) (bool, error) { return m.db.Contains(k), nil }
func (m *mem) Put(k, v []byte) error      { return m.db.Put(k, v) }
func (m *mem) Delete(k []byte) error {
	if err := m.db.Delete(k); err != nil && m.db.Contains(k) {
		return err
	}
	return nil
}
func (m *mem) IsNotFound(err error) bool { return err == errNotFound }
func (m *mem) Iterate(r Range) Iterator {
	return m.db.NewIterator((*util.Range)(&r))
}

func TestBucket_GetterGet(t *testing.T) {
	m := newMem("k1", "v1", "k2", "v2")

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		got, _ := tt.b.NewGetter(m).Get([]byte(tt.key))
		assert.Equal(t, tt.want, string(got), "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := newMem("k1", "v1", "k2", "v2")

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k1"), "", true},
		{Bucket("x"), "1", false},
	}
	for _, tt := range tests {
		got, _ := tt.b.NewGetter(m).Has([]byte(tt.key))
		assert.Equal(t, tt.want, got, "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_Putter(t *testing.T) {
	m := newMem()
	p := Bucket("b").NewPutter(m)

	assert.NoError(t, p.Put([]byte("1"), []byte("v1")))
	v, err := m.Get([]byte("b1"))
	assert.NoError(t, err)
	assert.Equal(t, "v1", string(v))

	assert.NoError(t, p.Delete([]byte("1")))
	_, err = m.Get([]byte("b1"))
	assert.True(t, m.IsNotFound(err))
}

func TestBucket_Iterate(t *testing.T) {
	m := newMem("a1", "x", "b1", "v1", "b2", "v2", "b3", "v3", "c1", "y")
	bkt := Bucket("b")

	collect := func(it Iterator, first func() bool) (keys []string) {
		defer it.Release()
		for ok := first(); ok; ok = it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.NoError(t, it.Error())
		return
	}

	it := bkt.NewIterable(m).Iterate(Range{})
	assert.Equal(t, []string{"1", "2", "3"}, collect(it, it.First))

	it = bkt.NewIterable(m).Iterate(Range{Start: []byte("2")})
	assert.Equal(t, []string{"2", "3"}, collect(it, it.First))

	it = bkt.NewIterable(m).Iterate(Range{Limit: []byte("3")})
	assert.Equal(t, []string{"1", "2"}, collect(it, it.First))

	it = bkt.NewIterable(m).Iterate(Range{})
	assert.Equal(t, []string{"2", "3"}, collect(it, func() bool { return it.Seek([]byte("15")) }))

	it = bkt.NewIterable(m).Iterate(Range{})
	assert.Nil(t, collect(it, func() bool { return it.Seek([]byte("4")) }))
}
