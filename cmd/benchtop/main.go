// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// benchtop replays state workloads against the overlay/persistent state-commit pipeline,
// and reports the committed root and the timing of each pipeline span.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/benchtop/backend"
	"github.com/vechain/benchtop/co"
	"github.com/vechain/benchtop/commitment"
	"github.com/vechain/benchtop/common"
	"github.com/vechain/benchtop/log"
	"github.com/vechain/benchtop/metrics"
	"github.com/vechain/benchtop/timer"
	"github.com/vechain/benchtop/workload"
)

var (
	version   string
	gitCommit string
	gitTag    string

	dbFlags = []cli.Flag{
		configFlag,
		dbFlag,
		resetFlag,
		cacheFlag,
		syncWriteFlag,
		verbosityFlag,
		logFormatFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Benchtop",
		Usage:     "State commit pipeline benchmark",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "create the database, populate it with an optional workload and log its state root",
				Flags:  append(dbFlags, workloadFlag, opsLimitFlag),
				Action: initAction,
			},
			{
				Name:  "run",
				Usage: "replay a workload and report the result as JSON",
				Flags: append(dbFlags,
					workloadFlag,
					timeLimitFlag,
					opsLimitFlag,
					warmUpFlag,
					progressFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				),
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initAction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing database..."); db.Close() }()

	if cfg.Workload != "" {
		replay, err := openWorkload(cfg.Workload, cfg.OpsLimit)
		if err != nil {
			return err
		}
		if err := populate(handleExitSignal(), db, replay); err != nil {
			return err
		}
		log.Info("database populated", "steps", replay.Steps(), "operations", replay.Summary().Operations)
	}

	tx := db.MuxDB().NewTx()
	defer tx.Release()

	root, err := commitment.TrieRoot(tx, common.Bytes32{})
	if err != nil {
		return errors.Wrap(err, "load state root")
	}
	log.Info("database ready", "path", cfg.DB, "root", root)
	return nil
}

// populate executes all steps of replay without recording timings.
func populate(ctx context.Context, db *backend.DB, replay *workload.Replay) error {
	for step := 0; !replay.Done(); step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := db.Execute(nil, replay); err != nil {
			return errors.Wrapf(err, "step %d", step)
		}
	}
	return nil
}

// spanStat is the timing report of one span.
type spanStat struct {
	timer.Stat
	Mean time.Duration `json:"mean"`
}

// result is the report of a run. Warm-up steps are excluded from the counters and timings.
type result struct {
	RunID        string              `json:"runId"`
	StateRoot    string              `json:"stateRoot"`
	Steps        int                 `json:"steps"`
	WarmUpSteps  int                 `json:"warmUpSteps"`
	TimedOut     bool                `json:"timedOut"`
	Workload     workload.Summary    `json:"workload"`
	TrieEntries  int                 `json:"trieEntries"`
	ProofNodes   int                 `json:"proofNodes"`
	ProofBytes   int                 `json:"proofBytes"`
	Spans        map[string]spanStat `json:"spans"`
	ElapsedMs    int64               `json:"elapsedMs"`
	DiskBytes    int64               `json:"diskBytes"`
	ResidentSize uint64              `json:"residentBytes"`
}

func openWorkload(path string, maxOps int) (*workload.Replay, error) {
	var r io.Reader = os.Stdin
	if path == "" {
		return nil, errors.New("no workload given")
	}
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open workload")
		}
		defer f.Close()
		r = f
	}
	return workload.LoadLimit(r, maxOps)
}

func runAction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	exitSignal := handleExitSignal()

	replay, err := openWorkload(cfg.Workload, cfg.OpsLimit)
	if err != nil {
		return err
	}
	log.Info("workload loaded", "steps", replay.Steps(), "operations", replay.Summary().Operations)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing database..."); db.Close() }()

	if cfg.Metrics {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(cfg.MetricsAddr)
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()

		defer co.Background(exitSignal, func(ctx context.Context) {
			db.MuxDB().CollectMetrics(ctx, 10*time.Second)
		})()
	}

	runCtx := exitSignal
	if cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(exitSignal, cfg.TimeLimit)
		defer cancel()
	}
	res, err := run(runCtx, db, replay, cfg)
	if err != nil {
		return err
	}
	if res.DiskBytes, err = db.MuxDB().DiskSize(); err != nil {
		log.Warn("failed to get disk size", "err", err)
	}
	res.ResidentSize = residentMemory()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// run executes the steps of replay until all are done or ctx is done. Reaching the
// deadline of ctx ends the run normally. The first cfg.WarmUp steps are timed apart.
func run(ctx context.Context, db *backend.DB, replay *workload.Replay, cfg *config) (*result, error) {
	var (
		start = time.Now()
		t     = timer.New()
		warm  = timer.New()
		res   = &result{
			RunID:    uuid.New(),
			Workload: replay.Summary(),
		}
		bar *pb.ProgressBar
	)
	if cfg.Progress {
		bar = pb.New(replay.Steps()).SetMaxWidth(90).Start()
		defer func() { bar.NotPrint = true }()
	}

loop:
	for !replay.Done() {
		select {
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ctx.Err()
			}
			log.Info("time limit reached", "steps", res.Steps)
			res.TimedOut = true
			break loop
		default:
		}

		st := t
		if res.WarmUpSteps < cfg.WarmUp {
			st = warm
		}
		out, err := db.Execute(st, replay)
		if err != nil {
			step := res.WarmUpSteps + res.Steps
			log.Error("commit failed", "step", step, "err", err)
			return nil, errors.Wrapf(err, "step %d", step)
		}
		res.StateRoot = out.Root.String()
		if bar != nil {
			bar.Increment()
		}

		if st == warm {
			res.WarmUpSteps++
			if res.WarmUpSteps == cfg.WarmUp {
				log.Info("warm-up done", "steps", res.WarmUpSteps, "elapsed", time.Since(start))
				start = time.Now()
			}
			continue
		}
		res.Steps++
		res.TrieEntries += out.TrieEntries
		res.ProofNodes += out.Proof.NodeCount()
		res.ProofBytes += len(out.Proof.Encode())
	}
	if bar != nil {
		bar.Finish()
	}

	res.Spans = make(map[string]spanStat)
	for _, name := range t.Names() {
		st := t.Stat(name)
		res.Spans[name] = spanStat{st, st.Mean()}
		log.Debug("span", "name", name, "count", st.Count, "mean", st.Mean(), "max", st.Max)
	}
	res.ElapsedMs = time.Since(start).Milliseconds()
	log.Info("workload done", "steps", res.Steps, "root", res.StateRoot, "elapsed", time.Since(start))
	return res, nil
}
