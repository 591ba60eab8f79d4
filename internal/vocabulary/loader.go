// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package vocabulary

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"c19-miner/internal/resilience"
)

// Embedded default vocabularies
//
//go:embed data/*.tsv data/*.txt
var builtinData embed.FS

// BuiltinPrefix addresses a resource from the embedded default set, e.g. "builtin:sintomas.tsv".
const BuiltinPrefix = "builtin:"

// Open resolves a vocabulary source to a reader. A missing resource is a
// ResourceMissing error that still satisfies errors.Is(err, fs.ErrNotExist).
func Open(source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, resilience.NewResourceMissingError("vocabulary source is empty", fs.ErrNotExist)
	}

	var (
		f   io.ReadCloser
		err error
	)
	if name, ok := strings.CutPrefix(source, BuiltinPrefix); ok {
		f, err = builtinData.Open("data/" + name)
	} else {
		f, err = os.Open(filepath.Clean(source))
	}
	if err != nil {
		if resilience.TypeOf(err) == resilience.ErrorTypeResourceMissing {
			return nil, resilience.NewResourceMissingError(fmt.Sprintf("vocabulary %q", source), err)
		}
		return nil, fmt.Errorf("failed to open vocabulary %q: %w", source, err)
	}
	return f, nil
}

// Builtins lists the names of the embedded vocabularies.
func Builtins() []string {
	entries, _ := builtinData.ReadDir("data")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// LoadPairs reads a tab-separated id/name table from source.
func LoadPairs(source string) ([]Pair, error) {
	f, err := Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := ReadPairs(f)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", source, err)
	}
	return pairs, nil
}

// LoadLines reads a newline-separated cue word list from source.
func LoadLines(source string) ([]string, error) {
	f, err := Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", source, err)
	}
	return lines, nil
}

// Load opens source and builds a named vocabulary. Keyed sources are id/name
// tables, the rest are cue word lists.
func Load(name, source string, keyed bool) (*Vocabulary, error) {
	if keyed {
		pairs, err := LoadPairs(source)
		if err != nil {
			return nil, err
		}
		return New(name, pairs), nil
	}

	cues, err := LoadLines(source)
	if err != nil {
		return nil, err
	}
	return NewCues(name, cues), nil
}

// ReadPairs parses a table whose header names an "id" and a "name" column.
// Extra columns are ignored and blank lines skipped.
func ReadPairs(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	idCol, nameCol := -1, -1
	lineNo := 0
	var pairs []Pair

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")

		if idCol < 0 {
			for i, c := range cols {
				switch strings.TrimSpace(c) {
				case "id":
					idCol = i
				case "name":
					nameCol = i
				}
			}
			if idCol < 0 || nameCol < 0 {
				return nil, resilience.NewInvalidInputError(
					fmt.Sprintf("line %d: header must name id and name columns, got %q", lineNo, line), nil)
			}
			continue
		}

		if len(cols) <= idCol || len(cols) <= nameCol {
			return nil, resilience.NewInvalidInputError(
				fmt.Sprintf("line %d: malformed row %q", lineNo, line), nil)
		}
		pairs = append(pairs, Pair{
			Key:  strings.TrimSpace(cols[idCol]),
			Form: strings.TrimSpace(cols[nameCol]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading vocabulary: %w", err)
	}
	if idCol < 0 {
		return nil, resilience.NewInvalidInputError("missing header row", nil)
	}
	return pairs, nil
}

// ReadLines returns the non-blank lines of r with line endings removed.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading vocabulary: %w", err)
	}
	return lines, nil
}
