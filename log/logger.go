// Package log provides the minimal line-oriented logger cmd/apimgr wraps
// around a Ctx's io.Writer output streams when it prints its summary
// lines.
package log

import (
	"fmt"
	"io"
)

// Logger is a minimal wrapper around an io.Writer.
type Logger struct {
	io.Writer
}

// New returns a new logger which writes to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Logln logs a line.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted string.
func (l *Logger) Logf(f string, args ...interface{}) {
	fmt.Fprintf(l, f, args...)
}

// LogApimgrfln logs a formatted line, prefixed with `apimgr: `.
func (l *Logger) LogApimgrfln(format string, args ...interface{}) {
	fmt.Fprintf(l, "apimgr: "+format+"\n", args...)
}
