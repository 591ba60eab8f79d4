// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"strings"

	"c19-miner/internal/config"
	"c19-miner/internal/metrics"
	"c19-miner/internal/miner"
	"c19-miner/internal/observability"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// EnvPrefix prefixes the environment variables that override flags
const EnvPrefix = "C19MINER"

var rootCmd = &cobra.Command{
	Use:   "c19-miner",
	Short: "Extract COVID-19 clinical mentions from Spanish admission notes",
	Long: `c19-miner finds disease, symptom, comorbidity, sampling and decease mentions
in free-text emergency notes, writes one JSON register per note and
aggregates the registers into a spreadsheet report.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// persistentFlags are bound to viper so C19MINER_<NAME> can set them
var persistentFlags = []string{
	"config", "profile", "window", "strategy", "verbose", "debug", "no-color", "metrics-out",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./c19-miner.yaml, then the user config dir)")
	pf.String("profile", "", "profile to apply on top of the config file")
	pf.Int("window", 0, "words of context kept on each side of a match")
	pf.String("strategy", "", "pattern strategy: alternation or per_entry")
	pf.BoolP("verbose", "v", false, "log failed operations and show metadata in output")
	pf.Bool("debug", false, "log every operation")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("metrics-out", "", "write Prometheus text metrics to this file")

	for _, name := range persistentFlags {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

func initConfig() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// session carries what every subcommand needs once flags are resolved
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	observer *observability.StandardObserver
	metrics  *metrics.Metrics
}

// newSession resolves configuration with precedence config file, then
// profile, then flags and environment.
func newSession() (*session, error) {
	path := viper.GetString("config")
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if name := viper.GetString("profile"); name != "" {
		if err := cfg.ApplyProfile(name); err != nil {
			return nil, err
		}
	}

	if viper.IsSet("window") {
		w := viper.GetInt("window")
		cfg.Matching.Window = &w
	}
	if viper.IsSet("strategy") {
		cfg.Matching.Strategy = viper.GetString("strategy")
	}
	if viper.IsSet("verbose") {
		cfg.Defaults.Verbose = viper.GetBool("verbose")
	}
	if viper.IsSet("debug") {
		cfg.Defaults.Debug = viper.GetBool("debug")
	}
	if viper.IsSet("no-color") {
		cfg.Defaults.NoColor = viper.GetBool("no-color")
	}
	if viper.IsSet("metrics-out") {
		cfg.Batch.MetricsOut = viper.GetString("metrics-out")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Defaults.Debug {
		cfg.Logging.Level = "debug"
	}
	logger := observability.NewLogger(cfg.Logging, os.Stderr)

	level := observability.ObservabilityOff
	switch {
	case cfg.Defaults.Debug:
		level = observability.ObservabilityDebug
	case cfg.Defaults.Verbose:
		level = observability.ObservabilityMetrics
	}
	observer := observability.NewStandardObserver(level, logger)
	if cfg.Defaults.Debug {
		observer.DebugObserver = observability.NewDebugObserver(logger)
	}

	logger.Debug("configuration resolved",
		zap.String("config", path),
		zap.String("strategy", cfg.Matching.Strategy),
	)

	return &session{cfg: cfg, logger: logger, observer: observer, metrics: metrics.New()}, nil
}

func (s *session) engine() (*miner.Engine, error) {
	return s.cfg.BuildEngine(s.metrics.Hooks())
}

// noColor reports whether output to w must stay uncolored
func (s *session) noColor(w *os.File) bool {
	return s.cfg.Defaults.NoColor || !isTerminal(w)
}

// flush writes metrics when --metrics-out is set and syncs the logger
func (s *session) flush() error {
	defer func() { _ = s.logger.Sync() }()
	if s.cfg.Batch.MetricsOut == "" {
		return nil
	}
	if err := s.metrics.WriteToTextfile(s.cfg.Batch.MetricsOut); err != nil {
		return err
	}
	s.logger.Debug("metrics written", zap.String("path", s.cfg.Batch.MetricsOut))
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func infof(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
