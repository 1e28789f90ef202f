// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/benchtop/backend"
	"github.com/vechain/benchtop/co"
	"github.com/vechain/benchtop/log"
	"github.com/vechain/benchtop/metrics"
)

func initLogger(cfg *config) error {
	handler, err := log.NewHandler(os.Stderr, cfg.LogFormat, cfg.Verbosity)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	log.SetDefault(log.NewLogger(handler))
	return nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 5120)
}

func openDB(cfg *config) (*backend.DB, error) {
	cacheMB := normalizeCacheSize(cfg.CacheMB)
	log.Debug("cache size(MB)", "size", cacheMB)

	opts := cfg.Backend
	if opts.DB.TrieNodeCacheSizeMB == 0 {
		opts.DB.TrieNodeCacheSizeMB = cacheMB / 2
	}
	if opts.DB.ReadCacheMB == 0 {
		opts.DB.ReadCacheMB = cacheMB / 2
	}
	if opts.DB.WriteBufferMB == 0 {
		opts.DB.WriteBufferMB = 128
	}
	if opts.DB.OpenFilesCacheCapacity == 0 {
		opts.DB.OpenFilesCacheCapacity = suggestFDCache()
	}

	db, err := backend.Open(cfg.DB, &opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open database [%v]", cfg.DB)
	}
	return db, nil
}

// residentMemory returns the resident set size of the process, or 0 if unknown.
func residentMemory() uint64 {
	var mem gosigar.ProcMem
	if err := mem.Get(os.Getpid()); err != nil {
		return 0
	}
	return mem.Resident
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
