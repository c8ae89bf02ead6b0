// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// LogLevelVariable names the environment variable that selects the log
// level: debug, info, warn, or error.
const LogLevelVariable = "SENTIENT_LOG_LEVEL"

// NewCommandLogger creates the logger for a console invocation. It
// writes text when stderr is a terminal and JSON otherwise (pipes, CI,
// log collectors). Commands receive it already scoped with "command".
func NewCommandLogger() *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLogLevel(os.Getenv(LogLevelVariable))}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// ParseLogLevel maps a level name to a slog level. Unknown or empty
// names select warn, so routine runs print only results.
func ParseLogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
