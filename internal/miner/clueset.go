// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package miner

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire field names. Report generation reads these back, so they must not change.
const (
	FieldText        = "texto"
	FieldDescription = "descripción"
	FieldMention     = "mención"
)

// Mention is one finding with its window.
type Mention struct {
	Description string
	Context     string
	Reference   string
}

// Bucket holds the mentions of one concept in text order.
type Bucket struct {
	Key      string
	Mentions []Mention
}

// CategoryResult is what one check produced.
type CategoryResult struct {
	Name           string
	Kind           Kind
	ReferenceField string

	// Keyed categories fill Buckets, flat ones fill Mentions.
	Buckets  []Bucket
	Mentions []Mention
}

// Keys returns concept keys in first-seen order.
func (r *CategoryResult) Keys() []string {
	keys := make([]string, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		keys = append(keys, b.Key)
	}
	return keys
}

// Bucket returns the mentions of key. A concept without mentions has no bucket.
func (r *CategoryResult) Bucket(key string) ([]Mention, bool) {
	for _, b := range r.Buckets {
		if b.Key == key {
			return b.Mentions, true
		}
	}
	return nil, false
}

// Count returns the number of mentions.
func (r *CategoryResult) Count() int {
	if r.Kind == KindFlat {
		return len(r.Mentions)
	}
	n := 0
	for _, b := range r.Buckets {
		n += len(b.Mentions)
	}
	return n
}

// MetaField is a record attribute stored next to the text.
type MetaField struct {
	Key   string
	Value string
}

// ClueSet is the result for one document. Categories keep the order they were
// first set in; setting a category again replaces it in place.
type ClueSet struct {
	text       string
	meta       []MetaField
	categories []*CategoryResult
}

// NewClueSet seeds a clue set with the verbatim input text.
func NewClueSet(text string) *ClueSet {
	return &ClueSet{text: text}
}

// Text returns the verbatim input.
func (c *ClueSet) Text() string { return c.text }

// SetMeta sets a record attribute, replacing an existing one with the same key.
func (c *ClueSet) SetMeta(key, value string) {
	for i := range c.meta {
		if c.meta[i].Key == key {
			c.meta[i].Value = value
			return
		}
	}
	c.meta = append(c.meta, MetaField{Key: key, Value: value})
}

// Meta returns a record attribute.
func (c *ClueSet) Meta(key string) (string, bool) {
	for _, m := range c.meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// MetaFields returns record attributes in insertion order.
func (c *ClueSet) MetaFields() []MetaField {
	return append([]MetaField(nil), c.meta...)
}

// Set stores a category result, keeping the position of a previous result with the same name.
func (c *ClueSet) Set(result *CategoryResult) {
	for i, existing := range c.categories {
		if existing.Name == result.Name {
			c.categories[i] = result
			return
		}
	}
	c.categories = append(c.categories, result)
}

// Category returns a result by name. Categories never checked are absent.
func (c *ClueSet) Category(name string) (*CategoryResult, bool) {
	for _, r := range c.categories {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Categories returns the names of the checked categories in order.
func (c *ClueSet) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for _, r := range c.categories {
		names = append(names, r.Name)
	}
	return names
}

// MarshalJSON writes the wire format with keys in insertion order.
func (c *ClueSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeKey(&buf, FieldText)
	writeString(&buf, c.text)

	for _, m := range c.meta {
		buf.WriteByte(',')
		writeKey(&buf, m.Key)
		writeString(&buf, m.Value)
	}

	for _, r := range c.categories {
		buf.WriteByte(',')
		writeKey(&buf, r.Name)
		if r.Kind == KindFlat {
			writeMentions(&buf, r.Mentions, false, "")
			continue
		}
		buf.WriteByte('{')
		for i, b := range r.Buckets {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, b.Key)
			writeMentions(&buf, b.Mentions, true, r.ReferenceField)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMentions(buf *bytes.Buffer, mentions []Mention, keyed bool, refField string) {
	buf.WriteByte('[')
	for i, m := range mentions {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if keyed {
			writeKey(buf, FieldDescription)
			writeString(buf, m.Description)
			buf.WriteByte(',')
		}
		writeKey(buf, FieldMention)
		writeString(buf, m.Context)
		if keyed && refField != "" {
			buf.WriteByte(',')
			writeKey(buf, refField)
			writeString(buf, m.Reference)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
}

func writeKey(buf *bytes.Buffer, key string) {
	writeString(buf, key)
	buf.WriteByte(':')
}

// writeString encodes s without HTML escaping so clinical text like "<38°" stays readable.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}

// UnmarshalJSON reads the wire format back, keeping key order. Objects become
// keyed categories, arrays flat categories and other strings record attributes.
func (c *ClueSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	*c = ClueSet{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("clue set field %q: %w", key, err)
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}

		switch trimmed[0] {
		case '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return fmt.Errorf("clue set field %q: %w", key, err)
			}
			if key == FieldText {
				c.text = s
			} else {
				c.SetMeta(key, s)
			}
		case '[':
			mentions, _, err := decodeMentions(trimmed)
			if err != nil {
				return fmt.Errorf("category %q: %w", key, err)
			}
			c.Set(&CategoryResult{Name: key, Kind: KindFlat, Mentions: mentions})
		case '{':
			result, err := decodeKeyed(key, trimmed)
			if err != nil {
				return fmt.Errorf("category %q: %w", key, err)
			}
			c.Set(result)
		default:
			// null and numbers carry nothing the report needs.
		}
	}
	return expectDelim(dec, '}')
}

func decodeKeyed(name string, data []byte) (*CategoryResult, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	result := &CategoryResult{Name: name, Kind: KindKeyed}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		mentions, refField, err := decodeMentions(raw)
		if err != nil {
			return nil, fmt.Errorf("concept %q: %w", key, err)
		}
		if refField != "" {
			result.ReferenceField = refField
		}
		result.Buckets = append(result.Buckets, Bucket{Key: key, Mentions: mentions})
	}
	return result, expectDelim(dec, '}')
}

func decodeMentions(data []byte) ([]Mention, string, error) {
	var rows []map[string]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, "", err
	}

	refField := ""
	mentions := make([]Mention, 0, len(rows))
	for _, row := range rows {
		m := Mention{Description: row[FieldDescription], Context: row[FieldMention]}
		for k, v := range row {
			if k != FieldDescription && k != FieldMention {
				refField = k
				m.Reference = v
			}
		}
		mentions = append(mentions, m)
	}
	return mentions, refField, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
