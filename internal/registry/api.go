// Copyright 2026 Oxide Computer Company

// Package registry describes the set of APIs this tool manages: each
// API's identifier, versioning discipline, title, and the generator
// function that produces its current OpenAPI document. Grounded on
// original_source/.../apis.rs in full (ManagedApiConfig/ManagedApi/
// ManagedApis).
package registry

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// Metadata carries the descriptive fields that flow into the generated
// OpenAPI document's info object, beyond the title.
type Metadata struct {
	Description string
	ContactURL  string
	ContactEmail string
}

// Generator produces the canonical-order JSON bytes of the OpenAPI
// document for one version of an API. Implementations typically wrap a
// Dropshot-style "build the description, then render" call; apimgr treats
// the result as an opaque byte slice to be parsed by internal/specfiles,
// matching the teacher's own "round-trip through bytes" comment in
// generate_openapi_doc.
type Generator func(version apiver.Version) ([]byte, error)

// ValidationFunc performs extra, API-specific validation of an OpenAPI
// document. It receives the document's raw JSON bytes, not a parsed
// model; see internal/registry/validation.go for the context type it
// receives.
type ValidationFunc func(doc []byte, vctx *ValidationContext)

// Config is the static description of one managed API, the input to
// NewAPI. It mirrors ManagedApiConfig: plain data, no builder methods.
type Config struct {
	Ident    specname.ApiIdent
	Versions apiver.Versions
	Title    string
	Metadata Metadata
	Generate Generator
}

// API describes one API managed by this tool. Construct via NewAPI, then
// chain AllowTrivialChangesForLatest/WithExtraValidation as needed before
// passing a slice of these to NewRegistry.
type API struct {
	ident    specname.ApiIdent
	versions apiver.Versions
	title    string
	metadata Metadata
	generate Generator

	extraValidation              ValidationFunc
	allowTrivialChangesForLatest bool
}

// NewAPI constructs an API from a Config, with no extra validation and
// trivial-change allowance both left at their zero (off) defaults.
func NewAPI(cfg Config) *API {
	return &API{
		ident:    cfg.Ident,
		versions: cfg.Versions,
		title:    cfg.Title,
		metadata: cfg.Metadata,
		generate: cfg.Generate,
	}
}

// Ident returns the API's identifier.
func (a *API) Ident() specname.ApiIdent { return a.ident }

// Versions returns the API's versioning discipline.
func (a *API) Versions() apiver.Versions { return a.versions }

// Title returns the API's OpenAPI title.
func (a *API) Title() string { return a.title }

// Metadata returns the API's descriptive metadata.
func (a *API) Metadata() Metadata { return a.metadata }

// IsLockstep reports whether this API uses the lockstep discipline.
func (a *API) IsLockstep() bool { return a.versions.IsLockstep() }

// IsVersioned reports whether this API uses the versioned discipline.
func (a *API) IsVersioned() bool { return a.versions.IsVersioned() }

// AllowTrivialChangesForLatest disables the bytewise-equality check
// between the blessed and generated documents for the latest version,
// permitting semantic-only comparison there too. By default the latest
// blessed version must match the generated document byte for byte, so
// that doc-only or cosmetic changes don't silently accumulate unblessed.
func (a *API) AllowTrivialChangesForLatest() *API {
	a.allowTrivialChangesForLatest = true
	return a
}

// AllowsTrivialChangesForLatest reports whether the latest version may
// differ from the generated document as long as the change is
// semantically trivial.
func (a *API) AllowsTrivialChangesForLatest() bool {
	return a.allowTrivialChangesForLatest
}

// WithExtraValidation attaches extra, API-specific validation performed
// on every version's document, including blessed ones. Use
// ValidationContext.IsBlessed within f to skip validating immutable
// blessed versions if that's not wanted.
func (a *API) WithExtraValidation(f ValidationFunc) *API {
	a.extraValidation = f
	return a
}

// GenerateSpecBytes renders the current OpenAPI document for version as
// canonical JSON bytes.
func (a *API) GenerateSpecBytes(version apiver.Version) ([]byte, error) {
	if a.generate == nil {
		return nil, errors.Errorf("API %q has no generator configured", a.ident)
	}
	contents, err := a.generate(version)
	if err != nil {
		return nil, errors.Wrapf(err, "generating OpenAPI document for %q version %s", a.ident, version)
	}
	return contents, nil
}

// RunExtraValidation invokes the API-specific validation function, if
// any was configured.
func (a *API) RunExtraValidation(doc []byte, vctx *ValidationContext) {
	if a.extraValidation != nil {
		a.extraValidation(doc, vctx)
	}
}

// String renders a short human-readable description, used in error
// messages and logs.
func (a *API) String() string {
	return fmt.Sprintf("%s (%s)", a.ident, a.title)
}
