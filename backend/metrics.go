// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package backend

import "github.com/vechain/benchtop/metrics"

var (
	metricAccountReads = metrics.LazyLoadCounterVec("backend_account_reads_count", []string{"source"})
	metricCommits      = metrics.LazyLoadCounterVec("backend_commits_count", []string{"status"})
)
