// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fs provides the low-level filesystem primitives the fix executor
// builds on: atomic replace-by-rename, symlink replacement, and the
// path-containment check guarding every write and delete.
package fs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// HasFilepathPrefix reports whether path is contained within prefix, from
// the point of view of a filesystem (so "/foobar" is not considered to
// have prefix "/foo").
//
// The fix executor uses this to refuse to write or delete anything
// outside the configured documents root. The check is lexical: ".."
// components are cleaned away before comparing, but symlinks are not
// followed.
func HasFilepathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)
	if prefix == "." {
		return true
	}
	rel, err := filepath.Rel(prefix, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// RenameWithFallback attempts to rename a file, falling back to a copy and
// delete in the event of a cross-device link error. If the fallback copy
// succeeds, src is still removed, emulating normal rename behavior.
//
// Every content write the fix executor performs writes to a sibling
// temporary path first, then calls RenameWithFallback to publish it, so a
// process killed mid-write never leaves a half-written OpenAPI document
// where a reader expects one.
func RenameWithFallback(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		return errors.Wrapf(err, "cannot stat %s", src)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	linkErr, ok := err.(*os.LinkError)
	if !ok || linkErr.Err != syscall.EXDEV {
		return errors.Wrapf(err, "cannot rename %s to %s", src, dst)
	}

	if cerr := copyFile(src, dst); cerr != nil {
		return errors.Wrapf(cerr, "rename fallback: cannot copy %s to %s", src, dst)
	}
	return errors.Wrapf(os.Remove(src), "cannot remove %s after copy fallback", src)
}

// copyFile copies the contents of src to dst, creating or truncating dst,
// and syncs the result to stable storage before returning.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}

	si, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, si.Mode())
}

// ReplaceSymlink removes whatever exists at path (tolerating "not found")
// and creates a new symlink there pointing at target. target is expected
// to be a bare basename so the link resolves correctly regardless of the
// working directory used to reach path, matching the spec's requirement
// that "latest" links are valid from any cwd.
func ReplaceSymlink(path, target string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove existing entry at %s", path)
	}
	return errors.Wrapf(os.Symlink(target, path), "cannot create symlink %s -> %s", path, target)
}

// WriteFileAtomic writes contents to path by first writing to a sibling
// temporary file in the same directory (so the rename below is same-device)
// and then renaming it into place.
func WriteFileAtomic(path string, contents []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return errors.Wrapf(err, "cannot create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(contents)
	cerr := tmp.Close()
	if werr != nil {
		os.Remove(tmpName)
		return errors.Wrapf(werr, "cannot write temp file %s", tmpName)
	}
	if cerr != nil {
		os.Remove(tmpName)
		return errors.Wrapf(cerr, "cannot close temp file %s", tmpName)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "cannot chmod temp file %s", tmpName)
	}

	if err := RenameWithFallback(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
