// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package graphdoc reads behaviour graph documents before upload.
//
// Graph files are JSON extended with // line comments, /* block
// comments */ and trailing commas. Parse strips those, checks the
// result is a JSON object, and returns compact JSON ready for the room
// API. The graph's own semantics are the room's business; this package
// only guarantees the upload is well-formed JSON.
package graphdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"
)

// ParseError is a graph document that is not a well-formed JSON object.
// Line and Column are 1-based positions in the original source, or 0
// when unknown.
type ParseError struct {
	Source string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Source, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err's chain contains a *ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// Parse converts data from source (a name used in errors) into compact
// JSON.
func Parse(source string, data []byte) (json.RawMessage, error) {
	// ToJSON blanks comments in place, so offsets still index data.
	stripped := jsonc.ToJSON(data)

	var decoded any
	if err := json.Unmarshal(stripped, &decoded); err != nil {
		parseErr := &ParseError{Source: source, Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			parseErr.Line, parseErr.Column = position(data, syntaxErr.Offset)
		}
		return nil, parseErr
	}
	if _, ok := decoded.(map[string]any); !ok {
		return nil, &ParseError{Source: source, Err: errors.New("graph document must be a JSON object")}
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, stripped); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return compacted.Bytes(), nil
}

// Load reads and parses the file at path. A path of "-" reads stdin.
func Load(path string, stdin io.Reader) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	source := path
	if path == "-" {
		source = "<stdin>"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading graph document: %w", err)
	}
	return Parse(source, data)
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, column := 1, 1
	for _, character := range data[:offset] {
		if character == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

// Template returns the starter graph for roomID: schema v8, a single
// NOOP node named boot, which is also the start node.
func Template(roomID string) json.RawMessage {
	template := map[string]any{
		"schema":  "v8",
		"room_id": roomID,
		"start":   "boot",
		"nodes": map[string]any{
			"boot": map[string]any{"kind": "NOOP"},
		},
	}
	encoded, _ := json.MarshalIndent(template, "", "  ")
	return encoded
}
