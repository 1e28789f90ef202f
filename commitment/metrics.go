// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commitment

import "github.com/vechain/benchtop/metrics"

var (
	metricTrieEntries = metrics.LazyLoadCounter("trie_entries_written_count")
	metricProofSize   = metrics.LazyLoadHistogram("multiproof_bytes", metrics.BucketBytes)
	metricProofNodes  = metrics.LazyLoadHistogram("multiproof_nodes", []int64{1, 4, 16, 64, 256, 1024, 4096, 16384})
)
