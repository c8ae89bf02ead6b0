// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"
)

// highlightStyle is the chroma style for JSON on a dark terminal.
const highlightStyle = "monokai"

// WriteJSONDocument writes an already-indented JSON document to w,
// syntax-highlighted when w is a colour terminal and plain otherwise.
// NO_COLOR and CLICOLOR_FORCE are honoured.
func WriteJSONDocument(w io.Writer, document []byte) error {
	formatter := terminalFormatter(termenv.NewOutput(w).EnvColorProfile())
	if formatter == "" {
		_, err := fmt.Fprintf(w, "%s\n", document)
		return err
	}
	if err := quick.Highlight(w, string(document), "json", formatter, highlightStyle); err != nil {
		return fmt.Errorf("highlighting output: %w", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// terminalFormatter maps a colour profile to a chroma formatter name,
// or "" for no colour.
func terminalFormatter(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return ""
	}
}
