// Package logger is the levelled logging facility shared by the pricer,
// the simulator and the CLI.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// The simulation core only logs at Debug and Trace; per-step path statistics
// are emitted at Trace and are costly on large batches.
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("run %s seed=%d", runID, seed)
//	logger.Debugf("dt=%g npaths=%d", dt, npaths)
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs failures that abort a run.
	Info               // Info logs run lifecycle events.
	Debug              // Debug logs pricing and simulation parameters.
	Trace              // Trace logs per-step simulation state.
)

// current holds the active verbosity level. Simulation blocks may log from
// several goroutines, so it is read atomically.
var current atomic.Int32

func init() {
	current.Store(int32(Info))

	// Logs go to stderr so that stdout only carries prices.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// SetVerbosity sets the global logging verbosity. Out-of-range values are
// clamped to [Error, Trace].
func SetVerbosity(v int) {
	switch {
	case v < int(Error):
		v = int(Error)
	case v > int(Trace):
		v = int(Trace)
	}
	current.Store(int32(v))
}

// Verbosity returns the active level.
func Verbosity() Level {
	return Level(current.Load())
}

// Enabled reports whether messages at l are written. Use it to skip
// expensive argument computation.
func Enabled(l Level) bool {
	return Verbosity() >= l
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func logf(l Level, prefix, format string, args ...any) {
	if Enabled(l) {
		// calldepth 3 reports the caller of Errorf/Infof/...
		_ = log.Output(3, prefix+fmt.Sprintf(format, args...))
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

// Tracef logs very detailed execution traces.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
