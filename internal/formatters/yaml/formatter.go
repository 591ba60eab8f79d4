// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"bytes"
	"fmt"

	"c19-miner/internal/formatters"
	"c19-miner/internal/miner"

	"gopkg.in/yaml.v3"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML output with the same keys and order as the JSON clue set"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

func (f *Formatter) Format(clues *miner.ClueSet, options formatters.FormatterOptions) (string, error) {
	if clues == nil {
		return "", fmt.Errorf("no clue set to format")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(buildDocument(clues)); err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	return buf.String(), nil
}

// buildDocument mirrors the JSON wire format as a node tree so key order survives.
func buildDocument(clues *miner.ClueSet) *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(root, miner.FieldText, str(clues.Text()))
	for _, m := range clues.MetaFields() {
		appendPair(root, m.Key, str(m.Value))
	}

	for _, name := range clues.Categories() {
		result, _ := clues.Category(name)
		if result.Kind == miner.KindFlat {
			appendPair(root, name, mentionList(result.Mentions, false, ""))
			continue
		}
		keyed := &yaml.Node{Kind: yaml.MappingNode}
		for _, b := range result.Buckets {
			appendPair(keyed, b.Key, mentionList(b.Mentions, true, result.ReferenceField))
		}
		appendPair(root, name, keyed)
	}
	return root
}

func mentionList(mentions []miner.Mention, keyed bool, refField string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, m := range mentions {
		item := &yaml.Node{Kind: yaml.MappingNode}
		if keyed {
			appendPair(item, miner.FieldDescription, str(m.Description))
		}
		appendPair(item, miner.FieldMention, str(m.Context))
		if keyed && refField != "" {
			appendPair(item, refField, str(m.Reference))
		}
		seq.Content = append(seq.Content, item)
	}
	return seq
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, str(key), value)
}

// str tags every scalar as a string so record numbers stay quoted.
func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
