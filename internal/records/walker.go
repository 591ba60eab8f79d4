// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package records

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"c19-miner/internal/resilience"
)

// Walk lists the files under root whose extension is one of exts (case
// insensitive, with or without the dot). Each directory yields its files in
// natural order before descending into its subdirectories, also in natural
// order. A root that is itself a file is returned as is when it matches.
func Walk(root string, exts ...string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, resilience.NewResourceMissingError(fmt.Sprintf("cannot access %s", root), err)
	}
	want := normalizeExts(exts)
	if !info.IsDir() {
		if matchExt(root, want) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var out []string
	if err := walkDir(root, want, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkDir(dir string, exts map[string]bool, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return resilience.NewResourceMissingError(fmt.Sprintf("cannot read directory %s", dir), err)
	}

	var files, dirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else if matchExt(e.Name(), exts) {
			files = append(files, e.Name())
		}
	}
	sort.SliceStable(files, func(i, j int) bool { return NaturalLess(files[i], files[j]) })
	sort.SliceStable(dirs, func(i, j int) bool { return NaturalLess(dirs[i], dirs[j]) })

	for _, f := range files {
		*out = append(*out, filepath.Join(dir, f))
	}
	for _, d := range dirs {
		if err := walkDir(filepath.Join(dir, d), exts, out); err != nil {
			return err
		}
	}
	return nil
}

func normalizeExts(exts []string) map[string]bool {
	if len(exts) == 0 {
		return nil
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			m["."+e] = true
		}
	}
	return m
}

// matchExt accepts everything when exts is nil.
func matchExt(name string, exts map[string]bool) bool {
	if exts == nil {
		return true
	}
	return exts[strings.ToLower(filepath.Ext(name))]
}

// NaturalLess orders strings the way people read numbered files:
// "nota2" < "nota10". Digit runs compare by value, other runs by text.
func NaturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, ra := nextChunk(a)
		cb, rb := nextChunk(b)
		if ca != cb {
			if isDigits(ca) && isDigits(cb) {
				if c := compareNumeric(ca, cb); c != 0 {
					return c < 0
				}
			} else {
				return ca < cb
			}
		}
		a, b = ra, rb
	}
	return len(a) < len(b)
}

func nextChunk(s string) (chunk, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares two digit runs without overflowing; ties on value
// are broken by the shorter run so "01" sorts after "1".
func compareNumeric(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	switch {
	case len(ta) != len(tb):
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	case ta != tb:
		if ta < tb {
			return -1
		}
		return 1
	case len(a) != len(b):
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigits(s string) bool {
	return s != "" && isDigit(s[0])
}
