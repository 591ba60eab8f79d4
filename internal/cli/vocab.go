// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"c19-miner/internal/vocabulary"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Inspect vocabularies and the configured categories",
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in vocabularies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tKEYS\tFORMS")
		for _, name := range vocabulary.Builtins() {
			source := vocabulary.BuiltinPrefix + name
			v, err := loadVocabulary(source)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%d\n", source, len(v.Keys()), v.Len())
		}
		return w.Flush()
	},
}

var vocabShowCmd = &cobra.Command{
	Use:   "show <source>",
	Short: "Print the pairs of a vocabulary (a file or builtin:<name>)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		if !strings.Contains(source, "/") && !strings.HasPrefix(source, vocabulary.BuiltinPrefix) {
			f, err := vocabulary.Open(source)
			if err != nil {
				source = vocabulary.BuiltinPrefix + source
			} else {
				f.Close()
			}
		}
		v, err := loadVocabulary(source)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range v.Pairs() {
			form := p.Form
			if p.Pattern {
				form = vocabulary.PatternPrefix + form
			}
			fmt.Fprintf(out, "%s\t%s\n", p.Key, form)
		}
		return nil
	},
}

var vocabCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and compile the configured categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		engine, err := s.engine()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tKIND\tKEYS\tFORMS\tNEGATION")
		for _, name := range engine.Categories() {
			c, _ := engine.Category(name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\n", c.Name, c.Kind, len(c.Vocabulary.Keys()), c.Vocabulary.Len(), c.Negation != nil)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "window %d, strategy %s\n", *s.cfg.Matching.Window, s.cfg.Matching.Strategy)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(s.cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range s.cfg.ListProfiles() {
			fmt.Fprintf(w, "%s\t%s\n", name, s.cfg.GetProfile(name).Description)
		}
		return w.Flush()
	},
}

func init() {
	vocabCmd.AddCommand(vocabListCmd, vocabShowCmd, vocabCheckCmd)
	rootCmd.AddCommand(vocabCmd, configShowCmd, profilesCmd)
}

// loadVocabulary picks the table or cue list reader from the extension
func loadVocabulary(source string) (*vocabulary.Vocabulary, error) {
	keyed := strings.HasSuffix(strings.ToLower(source), ".tsv")
	return vocabulary.Load(source, source, keyed)
}
