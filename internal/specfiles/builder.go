// Copyright 2026 Oxide Computer Company

package specfiles

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// UnparseableFile records a file that exists on disk but couldn't be
// parsed, so that a later "generate" pass can delete and recreate it.
type UnparseableFile struct {
	// Path is relative to the documents root.
	Path string
}

// RawFilesProvider is implemented by every concrete T an
// ApiSpecFilesBuilder[T] can hold: it lets callers iterate a loaded
// API's files without caring which concrete loader produced them.
// Mirrors the Rust AsRawFiles trait.
type RawFilesProvider interface {
	AsRawFiles() []SpecFileInfo
}

// Loader supplies the behavior that varies across the three concrete
// loaders (generated, blessed, local) that an ApiSpecFilesBuilder[T]
// can be parameterized over. Rust expresses this as the ApiLoad trait
// with associated consts and an associated type; Go generics have no
// associated consts, so instead callers supply one Loader[T] value (a
// strategy object) alongside the type parameter itself.
type Loader[T RawFilesProvider] struct {
	// MisconfigurationsAllowed permits finding a document of the wrong
	// kind for an API (a lockstep file for a versioned API or vice
	// versa) as a warning instead of an error. Only the blessed loader
	// sets this, because that's exactly what happens mid-migration
	// between lockstep and versioned.
	MisconfigurationsAllowed bool
	// UnparseableFilesAllowed permits recording a file that failed to
	// parse instead of treating that as a hard load error. Only the
	// local loader sets this, so "generate" has something to clean up.
	UnparseableFilesAllowed bool

	// MakeItem records the first OpenAPI document found for a version.
	MakeItem func(raw *ApiSpecFile) T
	// TryExtend is called when a second document turns up for a version
	// already recorded by MakeItem. Most loaders reject this outright;
	// only the local loader (via a slice-valued T) accepts it.
	TryExtend func(existing *T, raw *ApiSpecFile) error
	// MakeUnparseable constructs the unparseable-file representation for
	// T, or reports ok=false if T has no way to represent one.
	MakeUnparseable func(name specname.FileName, contents []byte) (value T, ok bool)
	// ExtendUnparseable records an additional unparseable file against an
	// existing entry.
	ExtendUnparseable func(existing *T, name specname.FileName, contents []byte)
}

// ApiFiles describes the set of documents and "latest" symlink found for
// one API, keyed by version. Mirrors the Rust ApiFiles<T>.
type ApiFiles[T RawFilesProvider] struct {
	versions         map[string]T
	versionOrder     []apiver.Version
	latestLink       *specname.FileName
	unparseableFiles []UnparseableFile
}

func newApiFiles[T RawFilesProvider]() *ApiFiles[T] {
	return &ApiFiles[T]{versions: make(map[string]T)}
}

// SortedVersions returns the versions for which something was loaded, in
// ascending order (matching the Rust BTreeMap<Version, T> iteration
// order many call sites depend on).
func (f *ApiFiles[T]) SortedVersions() []apiver.Version {
	out := make([]apiver.Version, len(f.versionOrder))
	copy(out, f.versionOrder)
	return out
}

// Get returns the entry loaded for version v, if any.
func (f *ApiFiles[T]) Get(v apiver.Version) (T, bool) {
	t, ok := f.versions[v.String()]
	return t, ok
}

// LatestLink returns the target of the "latest" symlink, if one was
// found.
func (f *ApiFiles[T]) LatestLink() (specname.FileName, bool) {
	if f.latestLink == nil {
		return specname.FileName{}, false
	}
	return *f.latestLink, true
}

// UnparseableFiles returns the files that exist but couldn't be parsed.
func (f *ApiFiles[T]) UnparseableFiles() []UnparseableFile {
	return append([]UnparseableFile(nil), f.unparseableFiles...)
}

func (f *ApiFiles[T]) insert(v apiver.Version, t T) {
	key := v.String()
	if _, exists := f.versions[key]; !exists {
		f.versionOrder = append(f.versionOrder, v)
		sortVersions(f.versionOrder)
	}
	f.versions[key] = t
}

func sortVersions(vs []apiver.Version) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j].LessThan(vs[j-1]); j-- {
			vs[j], vs[j-1] = vs[j-1], vs[j]
		}
	}
}

// ApiSpecFilesBuilder accumulates the documents found for every managed
// API from one source (generated, blessed, or local), recording errors
// and warnings along the way rather than failing at the first problem.
// Mirrors the Rust ApiSpecFilesBuilder<'a, T>.
type ApiSpecFilesBuilder[T RawFilesProvider] struct {
	reg       *registry.Registry
	loader    Loader[T]
	files     map[specname.ApiIdent]*ApiFiles[T]
	errAcc    *apimgrctx.ErrorAccumulator
}

// NewBuilder constructs an empty builder against reg, recording problems
// into errAcc as they're discovered.
func NewBuilder[T RawFilesProvider](reg *registry.Registry, loader Loader[T], errAcc *apimgrctx.ErrorAccumulator) *ApiSpecFilesBuilder[T] {
	return &ApiSpecFilesBuilder[T]{
		reg:    reg,
		loader: loader,
		files:  make(map[specname.ApiIdent]*ApiFiles[T]),
		errAcc: errAcc,
	}
}

func (b *ApiSpecFilesBuilder[T]) apiFilesFor(ident specname.ApiIdent) *ApiFiles[T] {
	af, ok := b.files[ident]
	if !ok {
		af = newApiFiles[T]()
		b.files[ident] = af
	}
	return af
}

// LoadError reports an error loading OpenAPI documents: the caller can't
// assume the returned documents are complete or correct.
func (b *ApiSpecFilesBuilder[T]) LoadError(err error) { b.errAcc.Error(err) }

// LoadWarning reports a warning, generally not affecting correctness.
func (b *ApiSpecFilesBuilder[T]) LoadWarning(err error) { b.errAcc.Warning(err) }

// LockstepFileName attempts to parse basename as a lockstep API's
// filename, recording a warning or error (depending on
// Loader.MisconfigurationsAllowed and the registry's unknown-API
// allowlist) and returning ok=false on failure.
func (b *ApiSpecFilesBuilder[T]) LockstepFileName(basename string) (specname.FileName, bool) {
	name, err := specname.ParseLockstepFileName(b.reg, basename)
	if err == nil {
		return name, true
	}

	ident := specname.ApiIdent(strings.TrimSuffix(basename, ".json"))
	_, known := b.reg.API(ident)
	notLockstep := known && !isMissingSuffix(err)

	switch {
	case !strings.HasSuffix(basename, ".json"):
		// Even without MisconfigurationsAllowed, an extra file with no
		// ".json" suffix isn't a big deal -- it could be an editor swap
		// file or similar.
		b.LoadWarning(errors.Wrapf(err, "skipping file %q", basename))
		return specname.FileName{}, false

	case !known && b.reg.UnknownAPIs()[ident]:
		b.LoadWarning(errors.Wrapf(err, "skipping file %q", basename))
		return specname.FileName{}, false

	case !known && b.loader.MisconfigurationsAllowed:
		b.LoadWarning(errors.Wrapf(err,
			"skipping file %q (this is expected if you are deleting an API)", basename))
		return specname.FileName{}, false

	case notLockstep && b.loader.MisconfigurationsAllowed:
		b.LoadWarning(errors.Wrapf(err,
			"skipping file %q (this is expected if you are converting a lockstep API to a versioned one)",
			basename))
		return specname.FileName{}, false

	default:
		b.LoadError(errors.Wrapf(err, "file %q", basename))
		return specname.FileName{}, false
	}
}

func isMissingSuffix(err error) bool {
	return strings.Contains(err.Error(), `end in ".json"`)
}

// VersionedDirectory reports whether basename names a versioned API's
// document directory, recording a warning or error otherwise.
func (b *ApiSpecFilesBuilder[T]) VersionedDirectory(basename string) (specname.ApiIdent, bool) {
	ident, ok := specname.ParseVersionedDirectory(b.reg, basename)
	if ok {
		return ident, true
	}

	candidate := specname.ApiIdent(basename)
	var err error
	if _, known := b.reg.API(candidate); known {
		err = errors.Errorf("skipping directory for lockstep API: %q", basename)
	} else {
		err = errors.Errorf("skipping directory for unknown API: %q", basename)
	}
	if b.loader.MisconfigurationsAllowed {
		b.LoadWarning(err)
	} else {
		b.LoadError(err)
	}
	return "", false
}

// VersionedFileName attempts to parse basename as ident's versioned
// filename.
func (b *ApiSpecFilesBuilder[T]) VersionedFileName(ident specname.ApiIdent, basename string) (specname.FileName, bool) {
	return b.classifyVersioned(ident, basename, "file", func() (specname.FileName, error) {
		return specname.ParseVersionedFileName(b.reg, ident, basename)
	})
}

// VersionedGitRefFileName attempts to parse basename as ident's
// versioned git-ref filename.
func (b *ApiSpecFilesBuilder[T]) VersionedGitRefFileName(ident specname.ApiIdent, basename string) (specname.FileName, bool) {
	return b.classifyVersioned(ident, basename, "git ref file", func() (specname.FileName, error) {
		return specname.ParseVersionedGitRefFileName(b.reg, ident, basename)
	})
}

// SymlinkContents is like VersionedFileName, but the error communicates
// that the problem is with a "latest" symlink's target rather than a
// file itself.
func (b *ApiSpecFilesBuilder[T]) SymlinkContents(symlinkPath string, ident specname.ApiIdent, basename string) (specname.FileName, bool) {
	name, err := specname.ParseVersionedFileName(b.reg, ident, basename)
	if err == nil {
		return name, true
	}
	if b.loader.MisconfigurationsAllowed {
		b.LoadWarning(errors.Wrapf(err, "ignoring symlink %s pointing to %s", symlinkPath, basename))
	} else {
		b.LoadError(errors.Wrapf(err, "bad symlink %s pointing to %s", symlinkPath, basename))
	}
	return specname.FileName{}, false
}

func (b *ApiSpecFilesBuilder[T]) classifyVersioned(
	ident specname.ApiIdent, basename, noun string, parse func() (specname.FileName, error),
) (specname.FileName, bool) {
	name, err := parse()
	if err == nil {
		return name, true
	}
	if b.loader.MisconfigurationsAllowed || isUnexpectedName(err) {
		b.LoadWarning(errors.Wrapf(err, "skipping %s %s", noun, basename))
		return specname.FileName{}, false
	}
	b.LoadError(errors.Wrapf(err, "%s %s", noun, basename))
	return specname.FileName{}, false
}

func isUnexpectedName(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unexpected prefix") ||
		strings.Contains(msg, "bad suffix") ||
		strings.Contains(msg, "cannot extract version and hash") ||
		strings.Contains(msg, "not a semver") ||
		strings.Contains(msg, "prerelease field") ||
		strings.Contains(msg, "build field") ||
		strings.Contains(msg, ".json.gitref suffix")
}

// LoadContents parses contents under name and records the result,
// including cross-version conflicts (another document already loaded
// for the same version) and unparseable files.
func (b *ApiSpecFilesBuilder[T]) LoadContents(name specname.FileName, contents []byte) {
	parsed, rawContents, err := ForContents(name, contents)
	if err != nil {
		if value, ok := b.loader.MakeUnparseable(name, rawContents); ok {
			b.LoadWarning(errors.Wrap(err, "skipping unparseable file"))
			af := b.apiFilesFor(name.Ident)
			if existing, ok := af.Get(name.Version); ok {
				b.loader.ExtendUnparseable(&existing, name, rawContents)
				af.insert(name.Version, existing)
				return
			}
			af.insert(name.Version, value)
			return
		}
		b.LoadError(err)
		return
	}

	af := b.apiFilesFor(name.Ident)
	if existing, ok := af.Get(parsed.Version()); ok {
		if err := b.loader.TryExtend(&existing, parsed); err != nil {
			b.LoadError(err)
			return
		}
		af.insert(parsed.Version(), existing)
		return
	}
	af.insert(parsed.Version(), b.loader.MakeItem(parsed))
}

// LoadLatestLink records that ident's "latest" symlink points at
// linksTo.
func (b *ApiSpecFilesBuilder[T]) LoadLatestLink(ident specname.ApiIdent, linksTo specname.FileName) {
	api, known := b.reg.API(ident)
	if !known {
		err := errors.Errorf("link for unknown API %q (%s)", ident, linksTo.Path())
		if b.loader.MisconfigurationsAllowed {
			b.LoadWarning(err)
		} else {
			b.LoadError(err)
		}
		return
	}
	if !api.IsVersioned() {
		err := errors.Errorf("link for non-versioned API %q (%s)", ident, linksTo.Path())
		if b.loader.MisconfigurationsAllowed {
			b.LoadWarning(err)
		} else {
			b.LoadError(err)
		}
		return
	}

	af := b.apiFilesFor(ident)
	if af.latestLink != nil {
		previous := *af.latestLink
		b.LoadError(errors.Errorf(
			"API %q: multiple \"latest\" links (at least %s, %s)", ident, previous.Path(), linksTo.Path()))
		return
	}
	af.latestLink = &linksTo
}

// RecordUnparseableFile records a file that exists but couldn't be
// associated with any version, for later cleanup.
func (b *ApiSpecFilesBuilder[T]) RecordUnparseableFile(ident specname.ApiIdent, u UnparseableFile) {
	af := b.apiFilesFor(ident)
	af.unparseableFiles = append(af.unparseableFiles, u)
}

// IntoMap returns the accumulated per-API file sets.
func (b *ApiSpecFilesBuilder[T]) IntoMap() map[specname.ApiIdent]*ApiFiles[T] {
	return b.files
}
