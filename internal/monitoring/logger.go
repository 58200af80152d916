// Package monitoring holds the diagnostic logger shared by the heatmap
// packages.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger used by the computation and
// rendering packages. It defaults to log.Printf; SetLogger swaps it out so
// tests and batch runs can redirect or silence it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// WithPrefix returns a logger that prepends prefix to every message before
// handing it to the current Logf.
func WithPrefix(prefix string) func(format string, v ...interface{}) {
	next := Logf
	return func(format string, v ...interface{}) {
		next(prefix+format, v...)
	}
}

// Stage logs the start of a named stage and returns a func that logs its
// elapsed time. Typical use is `defer monitoring.Stage("render svg")()`.
func Stage(name string) func() {
	start := time.Now()
	Logf("%s: started", name)
	return func() {
		Logf("%s: done in %v", name, time.Since(start))
	}
}
