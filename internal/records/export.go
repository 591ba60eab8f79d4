// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package records

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"c19-miner/internal/miner"
	"c19-miner/internal/resilience"

	"golang.org/x/text/encoding/ianaindex"
)

// Column names of the hospital XML export
const (
	ColumnCHN       = "CHN"
	ColumnName      = "NAME"
	ColumnSurname1  = "SURNAME1"
	ColumnSurname2  = "SURNAME2"
	ColumnInsertAt  = "INSERT_DATE"
	ColumnEmergency = "NOTA_INICIAL_URGENCIAS"
)

// Metadata keys written into each ClueSet produced from an export row
const (
	MetaNHC       = "NHC"
	MetaName      = "Nombre"
	MetaSurname1  = "Apellido Paterno"
	MetaSurname2  = "Apellido Materno"
	MetaAdmission = "Fecha de Ingreso"
)

// OutputExt is the extension of per-record extraction files.
const OutputExt = ".JSON"

var tagPattern = regexp.MustCompile(`<.*?>`)

// Record is one note to mine. Either Text is set, or Path names a file the
// batch worker loads through the preprocessors.
type Record struct {
	ID     string
	Path   string
	Text   string
	Meta   []miner.MetaField
	Output string
}

// Loaded reports whether the note text is already in memory.
func (r Record) Loaded() bool {
	return r.Path == "" || r.Text != ""
}

type exportRow struct {
	Columns []exportColumn `xml:"COLUMN"`
}

type exportColumn struct {
	Name  string
	Value string
}

// UnmarshalXML keeps all text inside the column, CDATA included. Text of
// nested elements is separated by a space.
func (c *exportColumn) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "NAME" {
			c.Name = attr.Value
		}
	}

	var b strings.Builder
	separate := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
	}
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
			separate()
		case xml.EndElement:
			if depth == 0 {
				c.Value = b.String()
				return nil
			}
			depth--
			separate()
		}
	}
}

// StripMarkup replaces every inline tag of a note with a single space.
func StripMarkup(note string) string {
	return tagPattern.ReplaceAllString(note, " ")
}

// ReadExportFile opens path and reads it with ReadExport.
func ReadExportFile(path string, onSkip func(row int, err error)) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, resilience.NewResourceMissingError(fmt.Sprintf("failed to open export %s", path), err)
	}
	defer f.Close()
	return ReadExport(f, onSkip)
}

// ReadExport streams <ROW> elements out of a <RESULTS> export. Rows missing a
// column are handed to onSkip and left out. A broken document stops the read:
// the rows decoded so far are returned along with the error.
func ReadExport(r io.Reader, onSkip func(row int, err error)) ([]Record, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.CharsetReader = charsetReader

	var out []Record
	row := 0
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, resilience.NewInvalidInputError("malformed XML export", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "ROW" {
			continue
		}
		row++

		var raw exportRow
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			return out, resilience.NewInvalidInputError(fmt.Sprintf("malformed XML export at row %d", row), err)
		}
		rec, err := raw.record()
		if err != nil {
			if onSkip != nil {
				onSkip(row, resilience.NewRecordSkippedError(fmt.Sprintf("row %d", row), err))
			}
			continue
		}
		out = append(out, rec)
	}
}

func (r exportRow) record() (Record, error) {
	cols := make(map[string]string, len(r.Columns))
	for _, c := range r.Columns {
		cols[strings.ToUpper(strings.TrimSpace(c.Name))] = c.Value
	}
	for _, name := range []string{ColumnCHN, ColumnName, ColumnSurname1, ColumnSurname2, ColumnInsertAt, ColumnEmergency} {
		if _, ok := cols[name]; !ok {
			return Record{}, fmt.Errorf("missing column %s", name)
		}
	}

	chn := strings.TrimSpace(cols[ColumnCHN])
	if chn == "" {
		return Record{}, fmt.Errorf("empty %s", ColumnCHN)
	}
	insertAt := cols[ColumnInsertAt]

	return Record{
		ID:   chn,
		Text: StripMarkup(cols[ColumnEmergency]),
		Meta: []miner.MetaField{
			{Key: MetaNHC, Value: chn},
			{Key: MetaName, Value: cols[ColumnName]},
			{Key: MetaSurname1, Value: cols[ColumnSurname1]},
			{Key: MetaSurname2, Value: cols[ColumnSurname2]},
			{Key: MetaAdmission, Value: insertAt},
		},
		Output: OutputName(chn, insertAt),
	}, nil
}

// OutputName builds NHC_<chn>_<ddmmyy>.JSON from the record number and the
// export's "dd/mm/yy hh:mm:ss" insert date.
func OutputName(chn, insertDate string) string {
	day := strings.TrimSpace(insertDate)
	if i := strings.IndexByte(day, ' '); i >= 0 {
		day = day[:i]
	}
	day = strings.ReplaceAll(day, "/", "")
	return fmt.Sprintf("NHC_%s_%s%s", safeName(chn), safeName(day), OutputExt)
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, s)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
