// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/benchtop/backend"
)

// config is the run configuration. It's loaded from the optional config file,
// then overridden by the flags set on the command line.
type config struct {
	DB          string          `yaml:"db"`
	Workload    string          `yaml:"workload"`
	CacheMB     int             `yaml:"cache-mb"`
	Verbosity   int             `yaml:"verbosity"`
	LogFormat   string          `yaml:"log-format"`
	Progress    bool            `yaml:"progress"`
	TimeLimit   time.Duration   `yaml:"time-limit"`
	OpsLimit    int             `yaml:"ops-limit"`
	WarmUp      int             `yaml:"warm-up"`
	Backend     backend.Options `yaml:"backend"`
	Metrics     bool            `yaml:"enable-metrics"`
	MetricsAddr string          `yaml:"metrics-addr"`
}

func defaultConfig() *config {
	return &config{
		DB:          dbFlag.Value,
		CacheMB:     cacheFlag.Value,
		Verbosity:   verbosityFlag.Value,
		LogFormat:   logFormatFlag.Value,
		MetricsAddr: metricsAddrFlag.Value,
	}
}

// loadConfig decodes the YAML config at path over the defaults.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config [%v]", path)
	}
	return cfg, nil
}

// makeConfig builds the config of the command.
func makeConfig(ctx *cli.Context) (*config, error) {
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(dbFlag.Name) {
		cfg.DB = ctx.String(dbFlag.Name)
	}
	if ctx.IsSet(workloadFlag.Name) {
		cfg.Workload = ctx.String(workloadFlag.Name)
	}
	if ctx.IsSet(cacheFlag.Name) {
		cfg.CacheMB = ctx.Int(cacheFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.LogFormat = ctx.String(logFormatFlag.Name)
	}
	if ctx.IsSet(progressFlag.Name) {
		cfg.Progress = ctx.Bool(progressFlag.Name)
	}
	if ctx.IsSet(timeLimitFlag.Name) {
		cfg.TimeLimit = ctx.Duration(timeLimitFlag.Name)
	}
	if ctx.IsSet(opsLimitFlag.Name) {
		cfg.OpsLimit = ctx.Int(opsLimitFlag.Name)
	}
	if ctx.IsSet(warmUpFlag.Name) {
		cfg.WarmUp = ctx.Int(warmUpFlag.Name)
	}
	if ctx.IsSet(resetFlag.Name) {
		cfg.Backend.Reset = ctx.Bool(resetFlag.Name)
	}
	if ctx.IsSet(syncWriteFlag.Name) {
		cfg.Backend.DB.SyncWrite = ctx.Bool(syncWriteFlag.Name)
	}
	if ctx.IsSet(enableMetricsFlag.Name) {
		cfg.Metrics = ctx.Bool(enableMetricsFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.MetricsAddr = ctx.String(metricsAddrFlag.Name)
	}
	return cfg, nil
}
