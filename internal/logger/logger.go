// Package logger provides leveled logging for the IV pipeline on top of
// the standard log package.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// The per-iteration solver trace lives at Trace, so a normal run stays
// quiet while a misbehaving contract can be diagnosed by raising the
// verbosity (e.g. -v 3 on the CLI):
//
//	logger.SetVerbosity(3)
//	logger.Tracef("newton iter=%d sigma=%.6f", i, sigma)
package logger

import (
	"log"
	"os"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level pipeline progress.
	Debug              // Debug logs per-request/per-expiry diagnostics.
	Trace              // Trace logs per-iteration solver details.
)

// current holds the active verbosity level.
// Only messages with level <= current are logged.
var current Level = Info

func init() {
	// Logs go to stderr so they stay out of CSV/JSON written to stdout
	// or piped downstream.
	log.SetOutput(os.Stderr)

	// Date/time plus file:line, e.g.
	//   2026/08/23 15:42:10 iv.go:87 [TRACE] newton iter=0 ...
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// SetVerbosity sets the global logging verbosity. Typically called once
// during startup after parsing flags or config.
func SetVerbosity(v int) {
	current = Level(v)
}

// logf checks verbosity and delegates formatting/output to the standard
// library logger.
func logf(l Level, prefix, format string, args ...any) {
	if current >= l {
		log.Printf(prefix+format, args...)
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces, mainly the root-finder's
// iteration log. High volume; gate behind verbosity 3.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
