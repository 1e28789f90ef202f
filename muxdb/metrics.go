// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"context"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/vechain/benchtop/metrics"
)

var (
	metricCacheHitMiss = metrics.LazyLoadCounterVec("cache_hit_miss_count", []string{"type", "event"})
	metricTxCommitSize = metrics.LazyLoadHistogram("tx_commit_bytes", []int64{
		1 << 10, 16 << 10, 128 << 10, 1 << 20, 8 << 20, 64 << 20,
	})
	metricDBStats = metrics.LazyLoadGaugeVec("db_stats", []string{"type"})
)

// CollectMetrics periodically reports leveldb statistics until ctx is done.
func (db *MuxDB) CollectMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.reportStats()
		}
	}
}

// DiskSize returns the total size of all leveldb tables.
func (db *MuxDB) DiskSize() (int64, error) {
	var stats leveldb.DBStats
	if err := db.ldb.Stats(&stats); err != nil {
		return 0, err
	}
	return sumSizes(stats.LevelSizes), nil
}

func sumSizes(sizes leveldb.Sizes) (n int64) {
	for _, s := range sizes {
		n += s
	}
	return
}

func (db *MuxDB) reportStats() {
	var stats leveldb.DBStats
	if err := db.ldb.Stats(&stats); err != nil {
		logger.Warn("failed to get db stats", "err", err)
		return
	}

	metricDBStats().SetWithLabel(sumSizes(stats.LevelSizes), map[string]string{"type": "size_bytes"})
	metricDBStats().SetWithLabel(int64(stats.IORead), map[string]string{"type": "io_read_bytes"})
	metricDBStats().SetWithLabel(int64(stats.IOWrite), map[string]string{"type": "io_write_bytes"})
	metricDBStats().SetWithLabel(int64(stats.AliveSnapshots), map[string]string{"type": "alive_snapshots"})
	metricDBStats().SetWithLabel(int64(stats.AliveIterators), map[string]string{"type": "alive_iterators"})
}
