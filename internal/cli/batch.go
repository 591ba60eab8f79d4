// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"c19-miner/internal/cache"
	"c19-miner/internal/formatters"
	"c19-miner/internal/parallel"
	"c19-miner/internal/paths"
	"c19-miner/internal/preprocessors"
	"c19-miner/internal/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch <export.xml|dir>",
	Short: "Mine every record of an export or a directory of notes",
	Long: `batch mines every ROW of an XML export, or every note found under a
directory, and writes one JSON register per record to the output directory.
Export registers are named NHC_<record>_<ddmmyy>.JSON; note registers take
the note's base name. Records that cannot be read or time out are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringP("output-dir", "o", "", "directory for the JSON registers (default from config)")
	f.IntP("workers", "w", 0, "number of workers (default: CPUs, at most 8)")
	f.Duration("record-timeout", 0, "give up on a record after this long")
	f.Bool("no-cache", false, "mine duplicated notes again instead of reusing results")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		s.cfg.Batch.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("workers") {
		s.cfg.Batch.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("record-timeout") {
		s.cfg.Batch.RecordTimeout, _ = cmd.Flags().GetDuration("record-timeout")
	}

	engine, err := s.engine()
	if err != nil {
		return err
	}

	types := []string{"txt"}
	if s.cfg.Defaults.EnablePreprocessors && s.cfg.Preprocessors.TextExtraction.Enabled {
		types = s.cfg.Preprocessors.TextExtraction.Types
	}
	manager, err := preprocessors.NewDefaultManager(types, s.observer)
	if err != nil {
		return err
	}

	recs, err := batchRecords(args[0], manager, s)
	if err != nil {
		return err
	}

	deps := parallel.Dependencies{
		Engine:        engine,
		Preprocessors: manager,
		Metrics:       s.metrics,
		Observer:      s.observer,
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		deps.Cache = cache.NewMemoryCache(s.cfg.Batch.CacheTTL)
	}
	processor, err := parallel.NewBatchProcessor(parallel.BatchConfig{
		Workers:       s.cfg.Batch.Workers,
		RecordTimeout: s.cfg.Batch.RecordTimeout,
	}, deps)
	if err != nil {
		return err
	}

	if err := paths.EnsureDir(s.cfg.Batch.OutputDir); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	infof("Mining %d records with %d workers into %s", len(recs), processor.Workers(), s.cfg.Batch.OutputDir)

	var progress parallel.ProgressCallback
	if isTerminal(os.Stderr) && !s.cfg.Defaults.Verbose && !s.cfg.Defaults.Debug {
		progress = func(completed, total int, current string) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %-40.40s", completed, total, current)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, stats, procErr := processor.Process(ctx, recs, progress)

	written := 0
	for _, result := range results {
		if result == nil || result.Clues == nil {
			continue
		}
		rendered, err := formatters.Export("json", result.Clues, formatters.FormatterOptions{})
		if err != nil {
			return err
		}
		path := filepath.Join(s.cfg.Batch.OutputDir, result.Record.Output)
		if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written++
	}

	s.logger.Info("batch finished",
		zap.String("run_id", stats.RunID),
		zap.Int("records", stats.TotalRecords),
		zap.Int("written", written),
		zap.Int("skipped", stats.SkippedRecords),
		zap.Int("cached", stats.CachedRecords),
		zap.Int("mentions", stats.TotalMentions),
		zap.Duration("duration", stats.TotalDuration),
	)
	infof("%d registers written, %d skipped, %d mentions (run %s)",
		written, stats.SkippedRecords, stats.TotalMentions, stats.RunID)

	if err := s.flush(); err != nil {
		return err
	}
	return procErr
}

// batchRecords reads an XML export, or walks a directory or a single note
func batchRecords(input string, manager *preprocessors.PreprocessorManager, s *session) ([]records.Record, error) {
	if strings.EqualFold(filepath.Ext(input), ".xml") {
		onSkip := func(row int, err error) {
			s.metrics.RecordSkipped(err)
			s.observer.RecordSkipped("export", fmt.Sprintf("row %d", row), err)
		}
		recs, err := records.ReadExportFile(input, onSkip)
		if err != nil {
			if len(recs) == 0 {
				return nil, err
			}
			// Mine what was read before the document broke; the rest counts as skipped.
			s.logger.Warn("export truncated", zap.String("path", input), zap.Int("records", len(recs)), zap.Error(err))
			s.metrics.RecordSkipped(err)
			s.observer.RecordSkipped("export", "after "+recs[len(recs)-1].ID, err)
		}
		s.logger.Debug("export read", zap.String("path", input), zap.Int("records", len(recs)))
		return recs, nil
	}

	var exts []string
	for _, p := range manager.GetAvailablePreprocessors() {
		exts = append(exts, p.GetSupportedExtensions()...)
	}
	notes, err := records.Walk(input, exts...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("notes found", zap.String("root", input), zap.Int("notes", len(notes)))
	return records.NoteRecords(notes), nil
}
