// Copyright 2026 Oxide Computer Company

// Package apimgrctx carries the cross-cutting state reconciliation needs:
// where things are on disk, where to write diagnostic output, and the
// accumulated errors/warnings from a loading or reconciliation pass.
// Grounded on the teacher's context.go (dep.Ctx{Out, Err, Verbose} plus
// path-resolution methods) and on spec_files_generic.rs's
// error_accumulator.error()/warning() calls, which is the accumulate-
// then-report pattern ErrorAccumulator formalizes here.
package apimgrctx

import "fmt"

// ErrorAccumulator collects errors and warnings encountered while loading
// or reconciling API documents. Errors mean the caller can't trust the
// result is complete or correct; warnings are informational (e.g., an
// unexpected extra file) and don't by themselves indicate a problem.
type ErrorAccumulator struct {
	errors   []error
	warnings []error
}

// Error records an error.
func (e *ErrorAccumulator) Error(err error) {
	if err != nil {
		e.errors = append(e.errors, err)
	}
}

// Warning records a warning.
func (e *ErrorAccumulator) Warning(err error) {
	if err != nil {
		e.warnings = append(e.warnings, err)
	}
}

// Errorf records a formatted error, for callers that don't already have
// an error value in hand.
func (e *ErrorAccumulator) Errorf(format string, args ...interface{}) {
	e.Error(fmt.Errorf(format, args...))
}

// Warningf records a formatted warning.
func (e *ErrorAccumulator) Warningf(format string, args ...interface{}) {
	e.Warning(fmt.Errorf(format, args...))
}

// Errors returns the recorded errors, in the order they were recorded.
func (e *ErrorAccumulator) Errors() []error { return append([]error(nil), e.errors...) }

// Warnings returns the recorded warnings, in the order they were
// recorded.
func (e *ErrorAccumulator) Warnings() []error { return append([]error(nil), e.warnings...) }

// HasErrors reports whether any errors (as opposed to only warnings)
// were recorded.
func (e *ErrorAccumulator) HasErrors() bool { return len(e.errors) > 0 }
