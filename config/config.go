// Package config loads an experiment definition from YAML into a
// factorize.NewConfig-shaped runner configuration, using the teacher
// lineage's double-pass viper-then-yaml pattern (reinforcement/
// learning.go: FromYaml): viper reads the file into an untyped envelope,
// then the envelope's inner section is re-marshaled and unmarshaled with
// yaml.v3 into the typed struct. This sidesteps viper's single global
// config instance, which does not fit a library that may load more than
// one experiment definition in a process's lifetime (a batch-of-batches
// tool, for instance).
package config

import (
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"cellsort/engine"
	"cellsort/factorize"
	"cellsort/runner"
)

// outerEnvelope mirrors the teacher's OuterConfig: a discriminator plus an
// untyped inner section, so a single file format can in principle carry
// more than one kind of definition.
type outerEnvelope struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Experiment is the typed inner section: everything runner.Config needs for
// the factorization use case, expressed as plain YAML-friendly fields
// (string target instead of *big.Int, string durations instead of
// time.Duration).
//
// The yaml tags are deliberately all-lowercase, not camelCase: envelope.Def
// is populated by vp.Unmarshal, and viper lowercases every key of its
// internal config tree (including nested maps) regardless of the source
// file's casing, so the bytes re-marshaled out of envelope.Def never carry
// camelCase keys for yaml.Unmarshal to match. The source YAML file may still
// use any casing viper accepts (camelCase, snake_case, ...); only these
// struct tags must stay lowercase.
type Experiment struct {
	Target          string `yaml:"target"`
	ArraySize       int    `yaml:"arraysize"`
	MaxSteps        int    `yaml:"maxsteps"`
	ConvergenceK    int    `yaml:"convergencek"`
	RecordSnapshots bool   `yaml:"recordsnapshots"`
	ExecutionMode   string `yaml:"executionmode"` // "SEQUENTIAL" or "PARALLEL"
	NumRepetitions  int    `yaml:"numrepetitions"`
	NumThreads      int    `yaml:"numthreads"`
	Seed            int64  `yaml:"seed"`

	GroupPhasePeriod  int    `yaml:"groupphaseperiod"`
	GroupTickInterval string `yaml:"grouptickinterval"` // e.g. "50ms"
	GroupNumWorkers   int    `yaml:"groupnumworkers"`
	ShutdownWindow    string `yaml:"shutdownwindow"`
}

// Load reads path via viper (expected kind: "factorization"), then
// re-marshals its "def" section into an Experiment and builds the matching
// runner.Config.
func Load(path string) (runner.Config[*big.Int], error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return runner.Config[*big.Int]{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var envelope outerEnvelope
	if err := vp.Unmarshal(&envelope); err != nil {
		return runner.Config[*big.Int]{}, fmt.Errorf("config: decoding envelope: %w", err)
	}

	spec, err := yaml.Marshal(envelope.Def)
	if err != nil {
		return runner.Config[*big.Int]{}, fmt.Errorf("config: re-marshaling def section: %w", err)
	}

	var experiment Experiment
	if err := yaml.Unmarshal(spec, &experiment); err != nil {
		return runner.Config[*big.Int]{}, fmt.Errorf("config: decoding experiment: %w", err)
	}

	return experiment.toRunnerConfig()
}

func (e Experiment) toRunnerConfig() (runner.Config[*big.Int], error) {
	target, ok := new(big.Int).SetString(e.Target, 10)
	if !ok {
		return runner.Config[*big.Int]{}, fmt.Errorf("config: invalid target %q", e.Target)
	}

	cfg := factorize.NewConfig(target, e.ArraySize, e.NumRepetitions, e.NumThreads)
	if e.MaxSteps > 0 {
		cfg.MaxSteps = e.MaxSteps
	}
	if e.ConvergenceK > 0 {
		cfg.ConvergenceK = e.ConvergenceK
	}
	cfg.RecordSnapshots = e.RecordSnapshots
	cfg.Seed = e.Seed
	cfg.GroupPhasePeriod = e.GroupPhasePeriod
	cfg.GroupNumWorkers = e.GroupNumWorkers

	switch e.ExecutionMode {
	case "PARALLEL":
		cfg.ExecutionMode = engine.Parallel
	case "", "SEQUENTIAL":
		cfg.ExecutionMode = engine.Sequential
	default:
		return runner.Config[*big.Int]{}, fmt.Errorf("config: unknown executionMode %q", e.ExecutionMode)
	}

	if e.GroupTickInterval != "" {
		d, err := time.ParseDuration(e.GroupTickInterval)
		if err != nil {
			return runner.Config[*big.Int]{}, fmt.Errorf("config: invalid groupTickInterval: %w", err)
		}
		cfg.GroupTickInterval = d
	}
	if e.ShutdownWindow != "" {
		d, err := time.ParseDuration(e.ShutdownWindow)
		if err != nil {
			return runner.Config[*big.Int]{}, fmt.Errorf("config: invalid shutdownWindow: %w", err)
		}
		cfg.ShutdownWindow = d
	}

	return cfg, nil
}
