// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/fs"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

// Fix is an automated remedy for a Problem. Grounded on resolved.rs's
// Fix<'a> enum; see the Problem doc comment for why this is an
// interface with one concrete type per variant rather than the smaller
// discriminated structs used elsewhere in this module.
type Fix interface {
	// String renders a human-readable description of what executing
	// this fix will do.
	String() string
	// AddPathsWritten records, into paths (keyed by path relative to the
	// documents root), every path this fix will write. Used to tell
	// apart an unparseable file that's about to be overwritten by some
	// other fix from one that genuinely needs its own delete.
	AddPathsWritten(paths map[string]bool)
	// Execute performs the fix against env, returning a line of output
	// per filesystem change made.
	Execute(env *Env) ([]string, error)
}

type FixDeleteFiles struct{ Files []specname.FileName }

func (f FixDeleteFiles) String() string {
	return fmt.Sprintf("delete %s: %s", pluralFiles(len(f.Files)), joinPaths(f.Files))
}

func (f FixDeleteFiles) AddPathsWritten(paths map[string]bool) {}

func (f FixDeleteFiles) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	var out []string
	for _, name := range f.Files {
		path := filepath.Join(root, name.Path())
		if err := removeFile(path, root); err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("removed %s", path))
	}
	return out, nil
}

type FixUpdateLockstepFile struct{ Generated *specfiles.GeneratedApiSpecFile }

func (f FixUpdateLockstepFile) String() string {
	return fmt.Sprintf("rewrite lockstep file %s from generated", f.Generated.SpecFileName().Path())
}

func (f FixUpdateLockstepFile) AddPathsWritten(paths map[string]bool) {
	paths[f.Generated.SpecFileName().Path()] = true
}

func (f FixUpdateLockstepFile) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	path := filepath.Join(root, f.Generated.SpecFileName().Path())
	status, err := overwriteFile(path, root, f.Generated.File().Contents())
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("updated %s: %s", path, status)}, nil
}

type FixUpdateVersionedFiles struct {
	Old       []specname.FileName
	Generated *specfiles.GeneratedApiSpecFile
}

func (f FixUpdateVersionedFiles) String() string {
	var b strings.Builder
	if len(f.Old) > 0 {
		fmt.Fprintf(&b, "remove old %s: %s\n", pluralFiles(len(f.Old)), joinPaths(f.Old))
	}
	fmt.Fprintf(&b, "write new file %s from generated", f.Generated.SpecFileName().Path())
	return b.String()
}

func (f FixUpdateVersionedFiles) AddPathsWritten(paths map[string]bool) {
	paths[f.Generated.SpecFileName().Path()] = true
}

func (f FixUpdateVersionedFiles) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	var out []string
	for _, name := range f.Old {
		path := filepath.Join(root, name.Path())
		if err := removeFile(path, root); err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("removed %s", path))
	}
	path := filepath.Join(root, f.Generated.SpecFileName().Path())
	status, err := overwriteFile(path, root, f.Generated.File().Contents())
	if err != nil {
		return nil, err
	}
	out = append(out, fmt.Sprintf("created %s: %s", path, status))
	return out, nil
}

type FixUpdateExtraFile struct {
	Path       string
	CheckStale CheckStale
}

func (f FixUpdateExtraFile) String() string {
	return fmt.Sprintf("%s file %s from generated", f.CheckStale.Label(), f.Path)
}

func (f FixUpdateExtraFile) AddPathsWritten(paths map[string]bool) {
	paths[f.Path] = true
}

func (f FixUpdateExtraFile) Execute(env *Env) ([]string, error) {
	// Extra file paths are relative to the repo root, not the documents
	// directory.
	full := filepath.Join(env.RepoRoot, f.Path)
	status, err := overwriteFile(full, env.RepoRoot, f.CheckStale.Expected)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("wrote %s: %s", f.Path, status)}, nil
}

type FixUpdateSymlink struct {
	Ident specname.ApiIdent
	Link  specname.FileName
}

func (f FixUpdateSymlink) String() string {
	return fmt.Sprintf("update symlink to point to %s", f.Link.ToJSONFilename())
}

func (f FixUpdateSymlink) AddPathsWritten(paths map[string]bool) {}

func (f FixUpdateSymlink) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	path := filepath.Join(root, string(f.Ident), specname.LatestSymlinkBasename(f.Ident))
	// The link should contain a relative path to a file in the same
	// directory so that it resolves correctly regardless of where it's
	// read from. If the link target is a git ref, convert it to the
	// JSON filename; the symlink should always point to JSON.
	target := f.Link.ToJSONFilename()
	if !fs.HasFilepathPrefix(path, root) {
		return nil, errors.Errorf("refusing to write symlink %s: outside documents root %s", path, root)
	}
	if err := fs.ReplaceSymlink(path, target); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("wrote link %s -> %s", path, target)}, nil
}

type FixConvertToGitRef struct {
	LocalFile *specfiles.LocalApiSpecFile
	GitRef    vcs.Ref
}

func (f FixConvertToGitRef) String() string {
	return fmt.Sprintf("convert %s to git ref", f.LocalFile.SpecFileName().Path())
}

func (f FixConvertToGitRef) AddPathsWritten(paths map[string]bool) {
	paths[f.LocalFile.SpecFileName().Path()+".gitref"] = true
}

func (f FixConvertToGitRef) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	jsonPath := filepath.Join(root, f.LocalFile.SpecFileName().Path())
	gitRefBasename := f.LocalFile.SpecFileName().Basename() + ".gitref"
	gitRefPath := filepath.Join(filepath.Dir(jsonPath), gitRefBasename)

	// Add a trailing newline so diffs don't show the "no newline at end
	// of file" marker; otherwise the extra newline has no effect.
	status, err := overwriteFile(gitRefPath, root, []byte(f.GitRef.String()+"\n"))
	if err != nil {
		return nil, err
	}
	if err := removeFile(jsonPath, root); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("converted %s to git ref", jsonPath),
		fmt.Sprintf("created %s: %s", gitRefPath, status),
	}, nil
}

type FixConvertToJson struct {
	LocalFile *specfiles.LocalApiSpecFile
	Blessed   *specfiles.BlessedApiSpecFile
}

func (f FixConvertToJson) String() string {
	return fmt.Sprintf("convert %s from git ref to JSON", f.LocalFile.SpecFileName().Path())
}

func (f FixConvertToJson) AddPathsWritten(paths map[string]bool) {
	if jsonPath, ok := strings.CutSuffix(f.LocalFile.SpecFileName().Path(), ".gitref"); ok {
		paths[jsonPath] = true
	}
}

func (f FixConvertToJson) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	gitRefPath := filepath.Join(root, f.LocalFile.SpecFileName().Path())

	// Use the blessed file's contents, since they're guaranteed valid.
	contents := f.Blessed.File().Contents()

	gitRefBasename := f.LocalFile.SpecFileName().Basename()
	jsonBasename, ok := strings.CutSuffix(gitRefBasename, ".gitref")
	if !ok {
		return nil, errors.Errorf("expected git ref file to end with .gitref: %s", gitRefBasename)
	}
	jsonPath := filepath.Join(filepath.Dir(gitRefPath), jsonBasename)

	status, err := overwriteFile(jsonPath, root, contents)
	if err != nil {
		return nil, err
	}
	if err := removeFile(gitRefPath, root); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("converted %s from git ref to JSON", gitRefPath),
		fmt.Sprintf("created %s: %s", jsonPath, status),
	}, nil
}

type FixRegenerateFromBlessed struct {
	LocalFile *specfiles.LocalApiSpecFile
	Blessed   *specfiles.BlessedApiSpecFile
	// GitRef, if non-nil, means regenerate as a git ref instead of JSON.
	GitRef *vcs.Ref
}

func (f FixRegenerateFromBlessed) String() string {
	if f.GitRef != nil {
		return fmt.Sprintf("regenerate %s from blessed content as git ref", f.LocalFile.SpecFileName().Path())
	}
	return fmt.Sprintf("regenerate %s from blessed content", f.LocalFile.SpecFileName().Path())
}

func (f FixRegenerateFromBlessed) AddPathsWritten(paths map[string]bool) {
	if f.GitRef != nil {
		paths[f.LocalFile.SpecFileName().Path()+".gitref"] = true
	} else {
		paths[f.LocalFile.SpecFileName().Path()] = true
	}
}

func (f FixRegenerateFromBlessed) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	localPath := filepath.Join(root, f.LocalFile.SpecFileName().Path())

	if !fs.HasFilepathPrefix(localPath, root) {
		return nil, errors.Errorf("refusing to remove %s: outside documents root %s", localPath, root)
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "removing corrupted file %s", localPath)
	}

	if f.GitRef != nil {
		gitRefBasename := f.LocalFile.SpecFileName().Basename() + ".gitref"
		gitRefPath := filepath.Join(filepath.Dir(localPath), gitRefBasename)
		status, err := overwriteFile(gitRefPath, root, []byte(f.GitRef.String()+"\n"))
		if err != nil {
			return nil, err
		}
		return []string{
			fmt.Sprintf("removed corrupted file %s", localPath),
			fmt.Sprintf("created git ref %s: %s", gitRefPath, status),
		}, nil
	}

	status, err := overwriteFile(localPath, root, f.Blessed.File().Contents())
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("regenerated %s from blessed content: %s", localPath, status)}, nil
}

type FixDeleteUnparseableFile struct{ Path string }

func (f FixDeleteUnparseableFile) String() string {
	return fmt.Sprintf("delete unparseable file %s", f.Path)
}

func (f FixDeleteUnparseableFile) AddPathsWritten(paths map[string]bool) {}

func (f FixDeleteUnparseableFile) Execute(env *Env) ([]string, error) {
	root := env.OpenAPIAbsDir()
	full := filepath.Join(root, f.Path)
	if err := removeFile(full, root); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("removed unparseable file %s", full)}, nil
}

// overwriteStatus describes what writing a file actually did, mirroring
// the Rust overwrite_file's return value (referenced but not defined in
// the filtered original_source pack; reconstructed the same way
// CheckStale/CheckStatus are -- see validate.go's doc comment).
type overwriteStatus int

const (
	overwriteCreated overwriteStatus = iota
	overwriteUnchanged
	overwriteUpdated
)

func (s overwriteStatus) String() string {
	switch s {
	case overwriteCreated:
		return "created"
	case overwriteUnchanged:
		return "unchanged"
	case overwriteUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// overwriteFile writes contents to path atomically, reporting whether
// the path was newly created, already matched (no write needed beyond
// confirming that), or updated from different prior content. root is
// the documents or repository root path is supposed to resolve under;
// overwriteFile refuses to write anywhere outside it, judged lexically
// (".." components are cleaned, symlinks are not followed).
func overwriteFile(path, root string, contents []byte) (overwriteStatus, error) {
	if !fs.HasFilepathPrefix(path, root) {
		return 0, errors.Errorf("refusing to write %s: outside root %s", path, root)
	}

	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := fs.WriteFileAtomic(path, contents, 0o644); err != nil {
			return 0, err
		}
		return overwriteCreated, nil
	case err != nil:
		return 0, errors.Wrapf(err, "reading %s", path)
	case bytesEqual(existing, contents):
		return overwriteUnchanged, nil
	default:
		if err := fs.WriteFileAtomic(path, contents, 0o644); err != nil {
			return 0, err
		}
		return overwriteUpdated, nil
	}
}

// removeFile removes path after checking it resolves inside root, the
// same containment guard overwriteFile applies to writes.
func removeFile(path, root string) error {
	if !fs.HasFilepathPrefix(path, root) {
		return errors.Errorf("refusing to remove %s: outside root %s", path, root)
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrapf(err, "removing %s", path)
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
