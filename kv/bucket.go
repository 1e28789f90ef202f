// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"bytes"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

// Append returns a sub-bucket of b.
func (b Bucket) Append(sub []byte) Bucket {
	return b + Bucket(sub)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Get(buf.k)
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Has(buf.k)
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Put(buf.k, val)
		},
		func(key []byte) error {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Delete(buf.k)
		},
	}
}

// NewIterable creates a bucket iterable from the source.
// Keys yielded by iterators have the bucket prefix stripped.
func (b Bucket) NewIterable(src Iterable) Iterable {
	return IterateFunc(func(r Range) Iterator {
		// the range bytes may be retained by the underlying iterator, so no pooled buffers here.
		r.Start = append([]byte(b), r.Start...)
		if len(r.Limit) == 0 {
			r.Limit = util.BytesPrefix([]byte(b)).Limit
		} else {
			r.Limit = append([]byte(b), r.Limit...)
		}
		iter := src.Iterate(r)
		return &struct {
			FirstFunc
			SeekFunc
			NextFunc
			KeyFunc
			ValueFunc
			ReleaseFunc
			ErrorFunc
		}{
			iter.First,
			func(key []byte) bool {
				buf := bufPool.Get().(*buf)
				defer bufPool.Put(buf)
				buf.k = append(append(buf.k[:0], b...), key...)
				if bytes.Compare(buf.k, r.Start) < 0 {
					return iter.First()
				}
				return iter.Seek(buf.k)
			},
			iter.Next,
			// strip the bucket
			func() []byte { return iter.Key()[len(b):] },
			iter.Value,
			iter.Release,
			iter.Error,
		}
	})
}

// NewReader creates a bucket reader from the source reader.
func (b Bucket) NewReader(src Reader) Reader {
	return &struct {
		Getter
		Iterable
	}{
		b.NewGetter(src),
		b.NewIterable(src),
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Iterable
		Putter
		SnapshotFunc
		BulkFunc
	}{
		b.NewGetter(src),
		b.NewIterable(src),
		b.NewPutter(src),
		func() Snapshot {
			snapshot := src.Snapshot()
			return &struct {
				Reader
				ReleaseFunc
			}{
				b.NewReader(snapshot),
				snapshot.Release,
			}
		},
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				EnableAutoFlushFunc
				WriteFunc
			}{
				b.NewPutter(bulk),
				bulk.EnableAutoFlush,
				bulk.Write,
			}
		},
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
