// Copyright 2026 Oxide Computer Company

package specfiles

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

// LocalApiSpecFile represents an OpenAPI document found in the local
// working tree: either a successfully parsed document, or one that
// exists but couldn't be parsed (e.g., merge conflict markers), which
// "generate" needs to know about so it can overwrite it rather than
// leave it orphaned.
type LocalApiSpecFile struct {
	valid       *ApiSpecFile
	unparseable bool
	name        specname.FileName
	contents    []byte
}

// ValidLocalFile wraps a successfully parsed document.
func ValidLocalFile(f *ApiSpecFile) LocalApiSpecFile {
	return LocalApiSpecFile{valid: f}
}

// UnparseableLocalFile records a file whose name is known (so its
// version and hash can be read back out of it) but whose contents
// didn't parse.
func UnparseableLocalFile(name specname.FileName, contents []byte) LocalApiSpecFile {
	return LocalApiSpecFile{unparseable: true, name: name, contents: contents}
}

// SpecFileName returns the spec file name.
func (l LocalApiSpecFile) SpecFileName() specname.FileName {
	if l.valid != nil {
		return l.valid.SpecFileName()
	}
	return l.name
}

// Contents returns the raw file contents, valid or not.
func (l LocalApiSpecFile) Contents() []byte {
	if l.valid != nil {
		return l.valid.Contents()
	}
	return l.contents
}

// IsUnparseable reports whether this file failed to parse.
func (l LocalApiSpecFile) IsUnparseable() bool { return l.unparseable }

// ParsedVersion implements SpecFileInfo.
func (l LocalApiSpecFile) ParsedVersion() (apiver.Version, bool) {
	if l.valid == nil {
		return apiver.Version{}, false
	}
	return l.valid.ParsedVersion()
}

// LocalApiSpecFiles is the RawFilesProvider-satisfying collection type
// used as T for the local loader: unlike the blessed and generated
// loaders, more than one document is allowed per version (that's
// exactly the add/add conflict generate needs to detect and resolve).
type LocalApiSpecFiles []LocalApiSpecFile

// AsRawFiles implements RawFilesProvider.
func (fs LocalApiSpecFiles) AsRawFiles() []SpecFileInfo {
	out := make([]SpecFileInfo, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

var _ RawFilesProvider = LocalApiSpecFiles(nil)

var localLoader = Loader[LocalApiSpecFiles]{
	MisconfigurationsAllowed: false,
	UnparseableFilesAllowed:  true,
	MakeItem: func(raw *ApiSpecFile) LocalApiSpecFiles {
		return LocalApiSpecFiles{ValidLocalFile(raw)}
	},
	TryExtend: func(existing *LocalApiSpecFiles, raw *ApiSpecFile) error {
		*existing = append(*existing, ValidLocalFile(raw))
		return nil
	},
	MakeUnparseable: func(name specname.FileName, contents []byte) (LocalApiSpecFiles, bool) {
		return LocalApiSpecFiles{UnparseableLocalFile(name, contents)}, true
	},
	ExtendUnparseable: func(existing *LocalApiSpecFiles, name specname.FileName, contents []byte) {
		*existing = append(*existing, UnparseableLocalFile(name, contents))
	},
}

// LocalFiles is the full set of documents found under the local
// documents directory, one ApiFiles[LocalApiSpecFiles] per known API.
type LocalFiles struct {
	files map[specname.ApiIdent]*ApiFiles[LocalApiSpecFiles]
}

// Files returns the documents found locally for ident, if any.
func (lf *LocalFiles) Files(ident specname.ApiIdent) (*ApiFiles[LocalApiSpecFiles], bool) {
	af, ok := lf.files[ident]
	return af, ok
}

// All returns every API's local documents, keyed by ident. Used by the
// reconciliation engine to find orphaned local specs and unparseable
// files across the whole tree, rather than one API at a time.
func (lf *LocalFiles) All() map[specname.ApiIdent]*ApiFiles[LocalApiSpecFiles] {
	return lf.files
}

// LoadFromDirectory loads OpenAPI documents from dir. repoRoot resolves
// ".gitref" files, which store a reference to a document elsewhere in
// version control rather than the document itself.
//
// Under dir, we expect to find either:
//
//   - for each lockstep API, a file called "api-ident.json"
//   - for each versioned API, a directory called "api-ident" containing
//     any number of "api-ident-SEMVER-HASH.json" files, any number of
//     "api-ident-SEMVER-HASH.json.gitref" git ref files, and one symlink
//     called "api-ident-latest.json" pointing at a file in the same
//     directory.
//
// This always returns a (possibly incomplete) LocalFiles if it's at all
// possible to read dir; callers must still check errAcc before trusting
// the result, exactly as the blessed and generated loaders require.
func LoadFromDirectory(
	dir string, reg *registry.Registry, errAcc *apimgrctx.ErrorAccumulator, repoRoot string,
) (*LocalFiles, error) {
	builder, err := walkLocalDirectory(dir, reg, errAcc, repoRoot)
	if err != nil {
		return nil, err
	}
	return &LocalFiles{files: builder.IntoMap()}, nil
}

func walkLocalDirectory(
	dir string, reg *registry.Registry, errAcc *apimgrctx.ErrorAccumulator, repoRoot string,
) (*ApiSpecFilesBuilder[LocalApiSpecFiles], error) {
	builder := NewBuilder(reg, localLoader, errAcc)

	entries, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "readdir %s", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsRegular():
			contents, err := os.ReadFile(path)
			if err != nil {
				builder.LoadError(err)
				continue
			}
			if name, ok := builder.LockstepFileName(entry.Name()); ok {
				builder.LoadContents(name, contents)
			}

		case entry.IsDir():
			loadVersionedDirectory(builder, path, entry.Name(), repoRoot)

		default:
			builder.LoadWarning(errors.Errorf("ignored (not a file or directory): %q", path))
		}
	}

	return builder, nil
}

// loadVersionedDirectory loads the contents of a directory corresponding
// to a versioned API. See LoadFromDirectory for what's expected there.
func loadVersionedDirectory(builder *ApiSpecFilesBuilder[LocalApiSpecFiles], path, basename, repoRoot string) {
	ident, ok := builder.VersionedDirectory(basename)
	if !ok {
		return
	}

	entries, err := godirwalk.ReadDirents(path, nil)
	if err != nil {
		builder.LoadError(errors.Wrapf(err, "readdir %s", path))
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())

		if specname.IsLatestSymlinkBasename(ident, entry.Name()) {
			loadLatestSymlink(builder, entryPath, ident, entry)
			continue
		}

		if strings.HasSuffix(entry.Name(), ".json.gitref") {
			loadGitRefFile(builder, entryPath, ident, entry.Name(), repoRoot)
			continue
		}

		name, ok := builder.VersionedFileName(ident, entry.Name())
		if !ok {
			continue
		}
		contents, err := os.ReadFile(entryPath)
		if err != nil {
			builder.LoadError(err)
			continue
		}
		builder.LoadContents(name, contents)
	}
}

func loadLatestSymlink(builder *ApiSpecFilesBuilder[LocalApiSpecFiles], entryPath string, ident specname.ApiIdent, entry *godirwalk.Dirent) {
	// VCS tools can turn a symlink into a regular file with conflict
	// markers when there's a symlink conflict. Treat anything that
	// isn't actually a symlink as missing/corrupted and let generate
	// recreate it, rather than failing the whole load.
	if !entry.IsSymlink() {
		builder.LoadWarning(errors.Errorf(
			"expected symlink but found regular file %q; will regenerate", entryPath))
		return
	}

	target, err := os.Readlink(entryPath)
	if err != nil {
		builder.LoadError(errors.Wrapf(err, "read what should be a symlink %q", entryPath))
		return
	}

	// A target that isn't a bare basename in this directory is treated
	// like a missing link, so generate rewrites it.
	if filepath.Base(target) != target {
		builder.LoadWarning(errors.Errorf(
			"symlink %q points outside its directory (%q); will regenerate", entryPath, target))
		return
	}

	if name, ok := builder.SymlinkContents(entryPath, ident, target); ok {
		builder.LoadLatestLink(ident, name)
	}
}

func loadGitRefFile(builder *ApiSpecFilesBuilder[LocalApiSpecFiles], entryPath string, ident specname.ApiIdent, basename, repoRoot string) {
	name, ok := builder.VersionedGitRefFileName(ident, basename)
	if !ok {
		return
	}

	raw, err := os.ReadFile(entryPath)
	if err != nil {
		builder.LoadError(errors.Wrapf(err, "failed to read git ref file %q", entryPath))
		return
	}

	ref, err := vcs.ParseRef(string(raw))
	if err != nil {
		builder.LoadError(errors.Wrapf(err, "failed to parse git ref file %q", entryPath))
		return
	}

	repo := vcs.New(repoRoot)
	contents, err := repo.ReadRefContents(ref)
	if err != nil {
		builder.LoadError(errors.Wrapf(err, "failed to read content for git ref %q", entryPath))
		return
	}

	builder.LoadContents(name, contents)
}
