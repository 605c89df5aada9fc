// SPDX-License-Identifier: MPL-2.0

// Package logging configures the shared structured logger.
//
// All long-running operations (profile scans, apply runs, watch mode) log
// through a charmbracelet/log logger writing to stderr, so stdout stays
// reserved for command output that users may pipe or redirect.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	root    *log.Logger
	verbose bool
)

// Logger returns the shared root logger, creating it on first use.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if root == nil {
		root = newLogger(os.Stderr)
	}
	return root
}

// SetVerbose switches the shared logger between Info and Debug level.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()

	verbose = v
	if root != nil {
		root.SetLevel(level())
	}
}

// WithPrefix returns a child logger with the given subsystem prefix
// (e.g. "reconcile", "watch").
func WithPrefix(prefix string) *log.Logger {
	return Logger().WithPrefix(prefix)
}

// SetOutput redirects the shared logger, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	root = newLogger(w)
}

func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "canonctl",
		ReportTimestamp: false,
	})
	logger.SetLevel(level())
	return logger
}

func level() log.Level {
	if verbose {
		return log.DebugLevel
	}
	return log.InfoLevel
}
