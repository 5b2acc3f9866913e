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

// BlessedApiSpecFile wraps a single ApiSpecFile loaded from version
// control. At most one is ever recorded per version: TryExtend always
// fails, since two commits can't both bless the same (ident, version).
type BlessedApiSpecFile struct {
	file *ApiSpecFile
}

// SpecFileName returns the structured name of the blessed document.
func (b BlessedApiSpecFile) SpecFileName() specname.FileName { return b.file.SpecFileName() }

// ParsedVersion implements SpecFileInfo.
func (b BlessedApiSpecFile) ParsedVersion() (apiver.Version, bool) { return b.file.ParsedVersion() }

// File returns the underlying parsed document.
func (b BlessedApiSpecFile) File() *ApiSpecFile { return b.file }

// AsRawFiles implements RawFilesProvider.
func (b BlessedApiSpecFile) AsRawFiles() []SpecFileInfo { return []SpecFileInfo{b} }

var _ RawFilesProvider = BlessedApiSpecFile{}

// blessedLoader is the Loader[BlessedApiSpecFile] strategy: it allows
// misconfigured (wrong-discipline) files as warnings, since that's how a
// lockstep-to-versioned migration looks from a blessed revision's point
// of view, but never allows a second document for the same version nor
// any representation of an unparseable one -- blessed history is
// supposed to already be clean.
var blessedLoader = Loader[BlessedApiSpecFile]{
	MisconfigurationsAllowed: true,
	UnparseableFilesAllowed:  false,
	MakeItem: func(raw *ApiSpecFile) BlessedApiSpecFile {
		return BlessedApiSpecFile{file: raw}
	},
	TryExtend: func(existing *BlessedApiSpecFile, raw *ApiSpecFile) error {
		return errors.Errorf(
			"found more than one blessed document for version %s of API %s (%s and %s)",
			raw.Version(), raw.SpecFileName().Ident,
			existing.file.SpecFileName().Path(), raw.SpecFileName().Path())
	},
	MakeUnparseable: func(specname.FileName, []byte) (BlessedApiSpecFile, bool) {
		return BlessedApiSpecFile{}, false
	},
	ExtendUnparseable: func(*BlessedApiSpecFile, specname.FileName, []byte) {},
}

// BlessedGitRef identifies, for one blessed version, which commit its
// content should be attributed to for "first blessed at" purposes. Known
// comes from a ".gitref" file that already names the commit explicitly;
// Lazy comes from a plain ".json" file, where the introducing commit has
// to be looked up on demand (it's only needed when the engine decides to
// convert a plain JSON blessed file into a ".gitref", so there's no
// reason to pay for `git log` on every load).
type BlessedGitRef struct {
	known bool

	knownCommit vcs.CommitHash
	knownPath   string

	lazyRevision vcs.Revision
	lazyPath     string
}

// KnownGitRef constructs a BlessedGitRef already pinned to a specific
// commit and path, as read from a ".gitref" file.
func KnownGitRef(commit vcs.CommitHash, path string) BlessedGitRef {
	return BlessedGitRef{known: true, knownCommit: commit, knownPath: path}
}

// LazyGitRef constructs a BlessedGitRef that will look up its
// introducing commit on demand, starting the search at revision.
func LazyGitRef(revision vcs.Revision, path string) BlessedGitRef {
	return BlessedGitRef{known: false, lazyRevision: revision, lazyPath: path}
}

// ToGitRef resolves this BlessedGitRef to a concrete vcs.Ref, performing
// the (possibly expensive) "first commit that added this file" search
// for a Lazy reference.
func (g BlessedGitRef) ToGitRef(repo *vcs.Repo) (vcs.Ref, error) {
	if g.known {
		return vcs.Ref{Commit: g.knownCommit, Path: g.knownPath}, nil
	}
	commit, err := repo.FirstCommitForFile(g.lazyRevision, g.lazyPath)
	if err != nil {
		return vcs.Ref{}, err
	}
	return vcs.Ref{Commit: commit, Path: g.lazyPath}, nil
}

// GitRefKey identifies one (API, version) pair within BlessedFiles.gitRefs.
type GitRefKey struct {
	Ident   specname.ApiIdent
	Version apiver.Version
}

// BlessedFiles is the full set of documents blessed in version control:
// one ApiFiles[BlessedApiSpecFile] per known API, plus a BlessedGitRef
// for every loaded version so that the reconciliation engine can later
// learn (or recompute) which commit each blessed version traces to.
// Mirrors the Rust BlessedFiles.
type BlessedFiles struct {
	files   map[specname.ApiIdent]*ApiFiles[BlessedApiSpecFile]
	gitRefs map[GitRefKey]BlessedGitRef
}

// Files returns the documents blessed for ident, if any were found.
func (bf *BlessedFiles) Files(ident specname.ApiIdent) (*ApiFiles[BlessedApiSpecFile], bool) {
	af, ok := bf.files[ident]
	return af, ok
}

// All returns every API's blessed documents, keyed by ident. Used by the
// reconciliation engine to find blessed versions that are no longer
// supported, which requires scanning every API rather than looking one
// up by ident.
func (bf *BlessedFiles) All() map[specname.ApiIdent]*ApiFiles[BlessedApiSpecFile] {
	return bf.files
}

// GitRef returns the recorded git reference for one blessed version.
func (bf *BlessedFiles) GitRef(ident specname.ApiIdent, version apiver.Version) (BlessedGitRef, bool) {
	g, ok := bf.gitRefs[GitRefKey{Ident: ident, Version: version}]
	return g, ok
}

// LoadFromGitParentBranch loads the blessed files as of the merge base
// between HEAD (and MERGE_HEAD, if a merge is in progress) and
// parentRevision, so that a change under review is compared against
// where its branch actually forked, not against parentRevision's tip
// (which may have moved on since).
func LoadFromGitParentBranch(
	repo *vcs.Repo, parentRevision vcs.Revision, documentsDir string,
	reg *registry.Registry, errAcc *apimgrctx.ErrorAccumulator,
) (*BlessedFiles, error) {
	mergeBase, err := repo.MergeBaseHead(parentRevision)
	if err != nil {
		return nil, err
	}
	return LoadFromGitRevision(repo, mergeBase, documentsDir, reg, errAcc)
}

// LoadFromGitRevision loads the blessed files found under documentsDir
// at revision. It lists the tree with a single `git ls-tree`, then
// classifies each path exactly as walk_local_directory does for the
// working tree, except that file contents come from `git cat-file`
// instead of the filesystem and symlinks don't exist in a tree listing
// (a "latest" link is just another blob whose content is its target
// basename).
func LoadFromGitRevision(
	repo *vcs.Repo, revision vcs.Revision, documentsDir string,
	reg *registry.Registry, errAcc *apimgrctx.ErrorAccumulator,
) (*BlessedFiles, error) {
	paths, err := repo.LsTree(revision, documentsDir)
	if err != nil {
		return nil, err
	}

	builder := NewBuilder(reg, blessedLoader, errAcc)
	gitRefs := make(map[GitRefKey]BlessedGitRef)

	for _, path := range paths {
		parts := strings.SplitN(path, "/", 2)
		switch len(parts) {
		case 1:
			loadBlessedLockstepFile(builder, repo, revision, parts[0])
		case 2:
			loadBlessedVersionedFile(builder, repo, revision, parts[0], parts[1], gitRefs)
		default:
			builder.LoadWarning(errors.Errorf("ignored (unexpected path depth): %q", path))
		}
	}

	return &BlessedFiles{files: builder.IntoMap(), gitRefs: gitRefs}, nil
}

// LoadBlessedFromDirectory loads blessed documents from a plain directory
// rather than a git revision: the "baseline from directory" override the
// driver exposes so tests can fix a baseline without standing up a git
// history. Unlike LoadFromGitRevision, there's no commit to attribute
// content to, so ".gitref" files aren't supported here; any that turn up
// are reported as warnings and skipped.
func LoadBlessedFromDirectory(
	dir string, reg *registry.Registry, errAcc *apimgrctx.ErrorAccumulator,
) (*BlessedFiles, error) {
	builder := NewBuilder(reg, blessedLoader, errAcc)

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
			loadBlessedVersionedDirectory(builder, path, entry.Name())

		default:
			builder.LoadWarning(errors.Errorf("ignored (not a file or directory): %q", path))
		}
	}

	return &BlessedFiles{files: builder.IntoMap(), gitRefs: make(map[GitRefKey]BlessedGitRef)}, nil
}

func loadBlessedVersionedDirectory(builder *ApiSpecFilesBuilder[BlessedApiSpecFile], path, basename string) {
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
			if !entry.IsSymlink() {
				builder.LoadWarning(errors.Errorf("expected symlink but found regular file %q", entryPath))
				continue
			}
			target, err := os.Readlink(entryPath)
			if err != nil {
				builder.LoadError(errors.Wrapf(err, "read what should be a symlink %q", entryPath))
				continue
			}
			if name, ok := builder.SymlinkContents(entryPath, ident, target); ok {
				builder.LoadLatestLink(ident, name)
			}
			continue
		}

		if strings.HasSuffix(entry.Name(), ".json.gitref") {
			builder.LoadWarning(errors.Errorf(
				"skipping git ref file %q: git ref resolution is not supported for a directory baseline", entryPath))
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

func loadBlessedLockstepFile(builder *ApiSpecFilesBuilder[BlessedApiSpecFile], repo *vcs.Repo, revision vcs.Revision, basename string) {
	name, ok := builder.LockstepFileName(basename)
	if !ok {
		return
	}
	contents, err := repo.ShowFile(revision, basename)
	if err != nil {
		builder.LoadError(err)
		return
	}
	builder.LoadContents(name, contents)
}

func loadBlessedVersionedFile(
	builder *ApiSpecFilesBuilder[BlessedApiSpecFile], repo *vcs.Repo, revision vcs.Revision,
	dirBasename, fileBasename string, gitRefs map[GitRefKey]BlessedGitRef,
) {
	ident, ok := builder.VersionedDirectory(dirBasename)
	if !ok {
		return
	}
	treePath := dirBasename + "/" + fileBasename

	if specname.IsLatestSymlinkBasename(ident, fileBasename) {
		// A tree listing never dereferences what would be a symlink in
		// the working tree; the "latest" entry's content is its target
		// basename, exactly as if we'd called readlink.
		target, err := repo.ShowFile(revision, treePath)
		if err != nil {
			builder.LoadError(err)
			return
		}
		if name, ok := builder.SymlinkContents(treePath, ident, strings.TrimSpace(string(target))); ok {
			builder.LoadLatestLink(ident, name)
		}
		return
	}

	if strings.HasSuffix(fileBasename, ".json.gitref") {
		name, ok := builder.VersionedGitRefFileName(ident, fileBasename)
		if !ok {
			return
		}
		raw, err := repo.ShowFile(revision, treePath)
		if err != nil {
			builder.LoadError(errors.Wrapf(err, "failed to read git ref file %q", treePath))
			return
		}
		ref, err := vcs.ParseRef(string(raw))
		if err != nil {
			builder.LoadError(errors.Wrapf(err, "failed to parse git ref file %q", treePath))
			return
		}
		contents, err := repo.ReadRefContents(ref)
		if err != nil {
			builder.LoadError(errors.Wrapf(err, "failed to read content for git ref %q", treePath))
			return
		}
		builder.LoadContents(name, contents)
		gitRefs[GitRefKey{Ident: ident, Version: name.Version}] = KnownGitRef(ref.Commit, ref.Path)
		return
	}

	name, ok := builder.VersionedFileName(ident, fileBasename)
	if !ok {
		return
	}
	contents, err := repo.ShowFile(revision, treePath)
	if err != nil {
		builder.LoadError(err)
		return
	}
	builder.LoadContents(name, contents)
	gitRefs[GitRefKey{Ident: ident, Version: name.Version}] = LazyGitRef(revision, treePath)
}
