// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"c19-miner/internal/formatters"
	_ "c19-miner/internal/formatters/csv"
	_ "c19-miner/internal/formatters/json"
	_ "c19-miner/internal/formatters/text"
	_ "c19-miner/internal/formatters/yaml"
	"c19-miner/internal/miner"
	"c19-miner/internal/preprocessors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mineCmd = &cobra.Command{
	Use:   "mine [file...]",
	Short: "Extract mentions from notes and print them",
	Long: `mine checks every category against each note and prints the result.
Notes come from files (.txt, .pdf), from --text, or from stdin when no
file is given or the file is "-".`,
	RunE: runMine,
}

func init() {
	f := mineCmd.Flags()
	f.String("text", "", "note text to mine instead of files")
	f.StringP("format", "f", "", "output format: "+joinFormats())
	f.StringP("output", "o", "", "write to this file instead of stdout")
	f.Bool("show-text", false, "include the note text in text output")
	f.Bool("compact", false, "single-line JSON")
	rootCmd.AddCommand(mineCmd)
}

// mineInput is one note to mine
type mineInput struct {
	label string
	text  string
}

func runMine(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	engine, err := s.engine()
	if err != nil {
		return err
	}

	format := s.cfg.Defaults.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	if _, ok := formatters.Get(format); !ok {
		return fmt.Errorf("unknown format %q. Available formats: %s", format, joinFormats())
	}

	inputs, err := mineInputs(cmd, args, s)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	outPath, _ := cmd.Flags().GetString("output")
	noColor := s.noColor(os.Stdout)
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer file.Close()
		out = file
		noColor = true
	}

	showText, _ := cmd.Flags().GetBool("show-text")
	compact, _ := cmd.Flags().GetBool("compact")
	opts := formatters.FormatterOptions{
		Verbose:  s.cfg.Defaults.Verbose,
		NoColor:  noColor,
		Compact:  compact,
		ShowText: showText,
	}

	for i, in := range inputs {
		finishTiming := s.observer.StartTiming("mine", "check_all", in.label)
		m := miner.New(in.text, engine)
		if err := m.CheckAll(); err != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("%s: %w", in.label, err)
		}
		s.metrics.RecordsProcessed.Inc()

		clues := m.Clues()
		finishTiming(true, map[string]interface{}{"categories": len(clues.Categories())})

		rendered, err := formatters.Export(format, clues, opts)
		if err != nil {
			return err
		}
		if len(inputs) > 1 && format == "text" {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s\n", in.label)
		}
		fmt.Fprintln(out, rendered)
	}

	return s.flush()
}

func mineInputs(cmd *cobra.Command, args []string, s *session) ([]mineInput, error) {
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--text cannot be combined with files")
		}
		return []mineInput{{label: "--text", text: text}}, nil
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	types := []string{"txt"}
	if s.cfg.Defaults.EnablePreprocessors && s.cfg.Preprocessors.TextExtraction.Enabled {
		types = s.cfg.Preprocessors.TextExtraction.Types
	}
	manager, err := preprocessors.NewDefaultManager(types, s.observer)
	if err != nil {
		return nil, err
	}

	inputs := make([]mineInput, 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			inputs = append(inputs, mineInput{label: "stdin", text: string(data)})
			continue
		}
		content, err := manager.ProcessFile(arg)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("note loaded",
			zap.String("path", arg),
			zap.String("processor", content.ProcessorType),
			zap.Int("words", content.WordCount),
		)
		inputs = append(inputs, mineInput{label: arg, text: content.Text})
	}
	return inputs, nil
}

func joinFormats() string {
	return strings.Join(formatters.List(), ", ")
}
