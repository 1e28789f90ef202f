// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/benchtop/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file, explicitly set flags take precedence",
	}
	dbFlag = cli.StringFlag{
		Name:  "db",
		Value: "benchtop.db",
		Usage: "directory of the state database",
	}
	workloadFlag = cli.StringFlag{
		Name:  "workload",
		Usage: "path to a JSONL workload file, - for stdin",
	}
	resetFlag = cli.BoolFlag{
		Name:  "reset",
		Usage: "remove the existing database before running",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 1024,
		Usage: "megabytes of ram allocated to trie nodes and database reads",
	}
	syncWriteFlag = cli.BoolFlag{
		Name:  "sync-write",
		Usage: "fsync every commit",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5), 3 for info",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log-format",
		Value: log.FormatTerminal,
		Usage: "log output format (terminal|json|logfmt)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	timeLimitFlag = cli.DurationFlag{
		Name:  "time-limit",
		Usage: "stop replaying after the given duration, 0 for no limit",
	}
	opsLimitFlag = cli.IntFlag{
		Name:  "ops-limit",
		Usage: "load at most the given number of operations, 0 for no limit",
	}
	warmUpFlag = cli.IntFlag{
		Name:  "warm-up",
		Usage: "number of steps to run before timings are recorded",
	}
	progressFlag = cli.BoolFlag{
		Name:  "progress",
		Usage: "show a progress bar while replaying",
	}
)
