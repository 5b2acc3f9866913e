// Copyright 2026 Oxide Computer Company

package registry

import (
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// ValidationBackend is implemented by the reconciliation engine; it is
// the narrow surface ValidationContext delegates to, kept as an
// interface (rather than exposing the engine's internals directly) so
// API authors' validation functions can't reach past the documented
// effects. Mirrors validation.rs's ValidationBackend trait.
type ValidationBackend interface {
	Ident() specname.ApiIdent
	FileName() specname.FileName
	Versions() apiver.Versions
	IsLatest() bool
	// IsBlessed reports whether the version under validation is blessed.
	// ok is false for lockstep APIs, which have no blessed/unblessed
	// distinction.
	IsBlessed() (blessed bool, ok bool)
	Title() string
	Metadata() Metadata
	ReportError(err error)
	RecordFileContents(path string, contents []byte)
}

// ValidationContext is passed to an API's extra validation function
// (registry.ValidationFunc) and to the registry-wide validation hook. It
// lets the hook introspect which document is being validated and report
// errors or declare extra generated-file contents without reaching into
// the reconciliation engine's internals.
type ValidationContext struct {
	backend ValidationBackend
}

// NewValidationContext wraps backend for use by validation hooks. Only
// called by internal/reconcile.
func NewValidationContext(backend ValidationBackend) *ValidationContext {
	return &ValidationContext{backend: backend}
}

// Ident returns the identifier of the API being validated.
func (c *ValidationContext) Ident() specname.ApiIdent { return c.backend.Ident() }

// FileName returns a descriptor for the document's file name, which can
// be used to identify the version being validated.
func (c *ValidationContext) FileName() specname.FileName { return c.backend.FileName() }

// IsLatest reports whether this is the latest version of a versioned
// API, or true unconditionally for a lockstep API.
func (c *ValidationContext) IsLatest() bool { return c.backend.IsLatest() }

// IsBlessed reports whether this version is blessed; ok is false if the
// API is lockstep, which has no blessed/unblessed distinction.
func (c *ValidationContext) IsBlessed() (blessed bool, ok bool) { return c.backend.IsBlessed() }

// Versions returns the versioning strategy for this API.
func (c *ValidationContext) Versions() apiver.Versions { return c.backend.Versions() }

// Title returns the title of the API being validated.
func (c *ValidationContext) Title() string { return c.backend.Title() }

// Metadata returns the descriptive metadata of the API being validated.
func (c *ValidationContext) Metadata() Metadata { return c.backend.Metadata() }

// ReportError reports a validation error against the document under
// validation.
func (c *ValidationContext) ReportError(err error) { c.backend.ReportError(err) }

// RecordFileContents declares that an extra file (relative to the
// repository root) should have the given contents. In check mode, a
// mismatch between this and what's on disk is reported as a problem; in
// generate mode, the file is written to match.
func (c *ValidationContext) RecordFileContents(path string, contents []byte) {
	c.backend.RecordFileContents(path, contents)
}
