// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences puts every sentence on its own line. A sentence ends at '.', '!' or '?'
// followed by whitespace and an uppercase letter, a digit or an opening mark.
// Existing line breaks, blank lines included, are kept. Run it before lowercasing.
func SplitSentences(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = splitLine(line)
	}
	return strings.Join(lines, "\n")
}

func splitLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		b.WriteRune(r)
		i += size

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i
		for j < len(line) {
			sr, ssize := utf8.DecodeRuneInString(line[j:])
			if !unicode.IsSpace(sr) {
				break
			}
			j += ssize
		}
		if j == i || j == len(line) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(line[j:])
		if unicode.IsUpper(next) || unicode.IsDigit(next) || strings.ContainsRune("¿¡(\"'«", next) {
			b.WriteByte('\n')
			i = j
		}
	}
	return b.String()
}
