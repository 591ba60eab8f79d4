// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package records

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"c19-miner/internal/miner"
	"c19-miner/internal/resilience"
)

// NoteRecords turns note files into records loaded lazily by the batch worker.
// The output name keeps the note's base name with the .JSON extension.
func NoteRecords(paths []string) []Record {
	out := make([]Record, 0, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		out = append(out, Record{
			ID:     base,
			Path:   p,
			Output: strings.TrimSuffix(base, filepath.Ext(base)) + OutputExt,
		})
	}
	return out
}

// RegisterRef points at one extraction result: either a JSON file on disk or
// a ClueSet already in memory. Exactly one side is set.
type RegisterRef struct {
	Path   string
	Parsed *miner.ClueSet
}

// PathRef refers to an extraction file.
func PathRef(path string) RegisterRef { return RegisterRef{Path: path} }

// ParsedRef wraps an in-memory result.
func ParsedRef(clues *miner.ClueSet) RegisterRef { return RegisterRef{Parsed: clues} }

// Label names the register in logs.
func (r RegisterRef) Label() string {
	if r.Parsed != nil {
		if nhc, ok := r.Parsed.Meta(MetaNHC); ok {
			return MetaNHC + " " + nhc
		}
		return "in-memory register"
	}
	return r.Path
}

// Resolve returns the ClueSet, reading and decoding the file when needed.
func (r RegisterRef) Resolve() (*miner.ClueSet, error) {
	switch {
	case r.Parsed != nil && r.Path != "":
		return nil, resilience.NewInvalidInputError("register has both a path and a parsed value", nil)
	case r.Parsed != nil:
		return r.Parsed, nil
	case r.Path == "":
		return nil, resilience.NewInvalidInputError("empty register reference", nil)
	}

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, resilience.NewResourceMissingError(fmt.Sprintf("failed to read register %s", r.Path), err)
	}
	clues := &miner.ClueSet{}
	if err := clues.UnmarshalJSON(data); err != nil {
		return nil, resilience.NewInvalidInputError(fmt.Sprintf("failed to decode register %s", r.Path), err)
	}
	return clues, nil
}

// ExtractionRefs lists the *.JSON extraction files under dir in natural order.
func ExtractionRefs(dir string) ([]RegisterRef, error) {
	paths, err := Walk(dir, OutputExt)
	if err != nil {
		return nil, err
	}
	refs := make([]RegisterRef, len(paths))
	for i, p := range paths {
		refs[i] = PathRef(p)
	}
	return refs, nil
}
