// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// CheckStale describes how an extra generated file (one an API's
// validation hook recorded via ValidationContext.RecordFileContents)
// differs from what's expected.
//
// CheckStale, CheckStatus, and validate below reconstruct
// dropshot-api-manager/src/validation.rs, which defines these types (as
// opposed to the similarly-named dropshot-api-manager-types/src/
// validation.rs, which only defines ValidationContext and is what
// internal/registry/validation.go already ports). The former file was
// not included in the filtered original_source pack; this
// reconstruction is built from resolved.rs's call sites
// (validate_generated, the CheckStale::Modified/New match in Fix::fmt
// and Fix::execute) rather than from a direct reading of its source,
// and is flagged here rather than presented as a verified port.
type CheckStale struct {
	// Modified is true when the file exists on disk with different
	// content than expected; false when the file is missing entirely.
	Modified bool
	Expected []byte
	// Found holds the on-disk content when Modified is true.
	Found []byte
}

// Label returns "rewrite" or "write new", matching Fix::fmt's match on
// CheckStale.
func (c CheckStale) Label() string {
	if c.Modified {
		return "rewrite"
	}
	return "write new"
}

// CheckStatus is the result of checking one extra file against its
// recorded expected contents.
type CheckStatus struct {
	IsStale bool
	Stale   CheckStale
}

func freshStatus() CheckStatus { return CheckStatus{} }

func staleStatus(c CheckStale) CheckStatus { return CheckStatus{IsStale: true, Stale: c} }

// validationBackend implements registry.ValidationBackend against one
// generated document, accumulating reported errors and recorded extra
// file contents for validate to act on afterward.
type validationBackend struct {
	ident     specname.ApiIdent
	fileName  specname.FileName
	versions  apiver.Versions
	isLatest  bool
	blessed   bool
	hasBlessed bool
	title     string
	metadata  registry.Metadata

	errs  []error
	files map[string][]byte
	order []string
}

func (b *validationBackend) Ident() specname.ApiIdent      { return b.ident }
func (b *validationBackend) FileName() specname.FileName   { return b.fileName }
func (b *validationBackend) Versions() apiver.Versions     { return b.versions }
func (b *validationBackend) IsLatest() bool                { return b.isLatest }
func (b *validationBackend) IsBlessed() (bool, bool)       { return b.blessed, b.hasBlessed }
func (b *validationBackend) Title() string                 { return b.title }
func (b *validationBackend) Metadata() registry.Metadata    { return b.metadata }

func (b *validationBackend) ReportError(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *validationBackend) RecordFileContents(path string, contents []byte) {
	if b.files == nil {
		b.files = make(map[string][]byte)
	}
	if _, exists := b.files[path]; !exists {
		b.order = append(b.order, path)
	}
	b.files[path] = contents
}

var _ registry.ValidationBackend = (*validationBackend)(nil)

// validate runs the registry-wide and per-API validation hooks against
// generated, then checks every extra file the hooks recorded against
// what's on disk under repoRoot. Mirrors validate()'s call sites in
// resolved.rs's validate_generated.
func validate(
	reg *registry.Registry, api *registry.API, repoRoot string,
	isLatest bool, isBlessed bool, hasBlessed bool,
	generated *specfiles.GeneratedApiSpecFile,
) (map[string]CheckStatus, error) {
	backend := &validationBackend{
		ident:      api.Ident(),
		fileName:   generated.SpecFileName(),
		versions:   api.Versions(),
		isLatest:   isLatest,
		blessed:    isBlessed,
		hasBlessed: hasBlessed,
		title:      api.Title(),
		metadata:   api.Metadata(),
	}
	vctx := registry.NewValidationContext(backend)

	contents := generated.File().Contents()
	if f := reg.Validation(); f != nil {
		f(contents, vctx)
	}
	api.RunExtraValidation(contents, vctx)

	if len(backend.errs) > 0 {
		msg := fmt.Sprintf("generated OpenAPI document for API %q version %s is not valid:",
			api.Ident(), generated.File().Version())
		for _, e := range backend.errs {
			msg += "\n  - " + e.Error()
		}
		return nil, errors.New(msg)
	}

	out := make(map[string]CheckStatus, len(backend.order))
	for _, path := range backend.order {
		expected := backend.files[path]
		full := filepath.Join(repoRoot, path)
		found, err := os.ReadFile(full)
		switch {
		case os.IsNotExist(err):
			out[path] = staleStatus(CheckStale{Modified: false, Expected: expected})
		case err != nil:
			return nil, errors.Wrapf(err, "reading extra file %s", path)
		case !bytes.Equal(found, expected):
			out[path] = staleStatus(CheckStale{Modified: true, Expected: expected, Found: found})
		default:
			out[path] = freshStatus()
		}
	}
	return out, nil
}
