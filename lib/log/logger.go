package log

import (
	"fmt"
	"io"
	"os"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var (
	verbose = false

	prefixes = map[level]string{
		levelDebug: "\033[37m[DBG]\033[0m", // White
		levelInfo:  "\033[36m[INF]\033[0m", // Cyan
		levelWarn:  "\033[33m[WRN]\033[0m", // Yellow
		levelError: "\033[31m[ERR]\033[0m", // Red
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetVerbose sets the logging verbosity. If true, debug messages are displayed too.
func SetVerbose(v bool) {
	verbose = v
}

// Debugf logs a debug message if verbose is enabled.
func Debugf(format string, args ...interface{}) {
	if verbose {
		write(levelDebug, format, args...)
	}
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	write(levelInfo, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	write(levelWarn, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	write(levelError, format, args...)
}

// Fatalf logs an error message and exits with code 1.
func Fatalf(format string, args ...interface{}) {
	write(levelError, format, args...)
	os.Exit(1)
}

func write(lvl level, format string, args ...interface{}) {
	out := stdout
	if lvl >= levelWarn {
		out = stderr
	}

	fmt.Fprintf(out, "%s %s\n", prefixes[lvl], fmt.Sprintf(format, args...))
}
