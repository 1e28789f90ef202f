// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/qianbin/directcache"

	"github.com/vechain/benchtop/common"
)

// cache caches trie node blobs by node hash.
// Blobs are content addressed, so entries never go stale.
// A nil cache is valid and caches nothing.
type cache struct {
	nodes *directcache.Cache

	stats       cacheStats
	lastLogTime atomic.Int64
}

// newCache creates a cache object with the given cache size.
// It returns nil if sizeMB is not positive.
func newCache(sizeMB int) *cache {
	if sizeMB <= 0 {
		return nil
	}
	c := &cache{
		nodes: directcache.New(sizeMB * 1024 * 1024),
	}
	c.lastLogTime.Store(time.Now().UnixNano())
	return c
}

func (c *cache) log() {
	now := time.Now().UnixNano()
	last := c.lastLogTime.Swap(now)

	if now-last > int64(time.Second*20) {
		changed, hit, miss := c.stats.Stats()
		if changed {
			logStats("node cache stats", hit, miss)
		}
		metricCacheHitMiss().AddWithLabel(hit-c.stats.reportedHit.Swap(hit), map[string]string{"type": "node", "event": "hit"})
		metricCacheHitMiss().AddWithLabel(miss-c.stats.reportedMiss.Swap(miss), map[string]string{"type": "node", "event": "miss"})
	} else {
		c.lastLogTime.CompareAndSwap(now, last)
	}
}

// AddNodeBlob adds a verified node blob into the cache.
func (c *cache) AddNodeBlob(hash common.Bytes32, blob []byte) {
	if c == nil {
		return
	}
	_ = c.nodes.Set(hash[:], blob)
}

// GetNodeBlob returns the cached node blob, or nil if absent.
func (c *cache) GetNodeBlob(hash common.Bytes32) []byte {
	if c == nil {
		return nil
	}
	var blob []byte
	if c.nodes.AdvGet(hash[:], func(val []byte) {
		blob = slices.Clone(val)
	}, false) && len(blob) > 0 {
		if c.stats.Hit()%2000 == 0 {
			c.log()
		}
		return blob
	}
	c.stats.Miss()
	return nil
}

type cacheStats struct {
	hit, miss    atomic.Int64
	flag         atomic.Int32
	reportedHit  atomic.Int64
	reportedMiss atomic.Int64
}

func (cs *cacheStats) Hit() int64  { return cs.hit.Add(1) }
func (cs *cacheStats) Miss() int64 { return cs.miss.Add(1) }

func (cs *cacheStats) Stats() (bool, int64, int64) {
	hit := cs.hit.Load()
	miss := cs.miss.Load()
	lookups := hit + miss

	hitRate := float64(0)
	if lookups > 0 {
		hitRate = float64(hit) / float64(lookups)
	}
	flag := int32(hitRate * 1000)

	return cs.flag.Swap(flag) != flag, hit, miss
}

func logStats(msg string, hit, miss int64) {
	lookups := hit + miss
	var str string
	if lookups > 0 {
		str = fmt.Sprintf("%.3f", float64(hit)/float64(lookups))
	} else {
		str = "n/a"
	}

	logger.Info(msg,
		"lookups", lookups,
		"hitrate", str,
	)
}
