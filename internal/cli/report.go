// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"c19-miner/internal/paths"
	"c19-miner/internal/records"
	"c19-miner/internal/report"
	"c19-miner/internal/vocabulary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report <registers-dir>",
	Short: "Aggregate JSON registers into a spreadsheet report",
	Long: `report reads every .JSON register under a directory, in natural order,
and writes informe_de_covid_<timestamp>.xlsx with the sheets Concentrado,
Evidencia, síntomas and Comorbilidad, plus the chart data files
am_symptoms.JSON and am_comorbs.JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringP("output-dir", "o", "", "directory for the workbook and chart data (default: registers dir)")
	f.Bool("only-covid", false, "keep only registers with a COVID-19 mention")
	f.Int("top-n", 0, "bars kept in each chart (default from config)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	dir := args[0]

	if cmd.Flags().Changed("only-covid") {
		s.cfg.Report.OnlyCovid, _ = cmd.Flags().GetBool("only-covid")
	}
	if cmd.Flags().Changed("top-n") {
		s.cfg.Report.TopN, _ = cmd.Flags().GetInt("top-n")
	}
	outDir := dir
	if cmd.Flags().Changed("output-dir") {
		outDir, _ = cmd.Flags().GetString("output-dir")
	}

	symptomCols, err := reportColumns("sintomas_columnas", s.cfg.Report.SymptomColumns)
	if err != nil {
		return err
	}
	comorbCols, err := reportColumns("comorbilidades_columnas", s.cfg.Report.ComorbidityColumns)
	if err != nil {
		return err
	}

	refs, err := records.ExtractionRefs(dir)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no %s registers found under %s", records.OutputExt, dir)
	}

	gen := report.NewGenerator(report.Options{
		OnlyCovid:          s.cfg.Report.OnlyCovid,
		SymptomColumns:     symptomCols,
		ComorbidityColumns: comorbCols,
		Observer:           s.observer,
	})
	rep := gen.Build(refs)

	if err := paths.EnsureDir(outDir); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	xlsx := filepath.Join(outDir, report.FileName(time.Now()))
	if err := rep.WriteXLSX(xlsx); err != nil {
		return err
	}
	if err := report.WriteChartData(filepath.Join(outDir, report.SymptomsChartFile), rep.SymptomChart(s.cfg.Report.TopN)); err != nil {
		return err
	}
	if err := report.WriteChartData(filepath.Join(outDir, report.ComorbiditiesChartFile), rep.ComorbidityChart(s.cfg.Report.TopN)); err != nil {
		return err
	}

	s.logger.Info("report written",
		zap.String("path", xlsx),
		zap.Int("registers", rep.Len()),
		zap.Int("skipped", rep.Skipped),
		zap.Int("filtered", rep.Filtered),
	)
	infof("%s: %d registers (%d unreadable, %d filtered)", xlsx, rep.Len(), rep.Skipped, rep.Filtered)
	return s.flush()
}

// reportColumns loads a column list. Keyed TSV sources give key and name;
// plain lists use each line as both.
func reportColumns(name, source string) ([]report.Column, error) {
	v, err := vocabulary.Load(name, source, strings.HasSuffix(strings.ToLower(source), ".tsv"))
	if err != nil {
		return nil, fmt.Errorf("report columns %s: %w", name, err)
	}
	return report.ColumnsFromVocabulary(v), nil
}
