// Copyright 2026 Oxide Computer Company

package vcs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Repo is a handle to a git repository's working tree, scoped to a root
// directory. All plumbing commands run with that directory as cwd, as
// git_start does in the original.
type Repo struct {
	Root string
}

// New returns a Repo rooted at root. It performs no validation; a root
// that isn't inside a git repository simply causes every method to
// return an error from the underlying git invocation.
func New(root string) *Repo {
	return &Repo{Root: root}
}

// gitBinary returns the git executable to invoke, honoring the GIT
// environment variable the way the original's git_start does (useful for
// tests that want to point at a specific git binary).
func gitBinary() string {
	if g := os.Getenv("GIT"); g != "" {
		return g
	}
	return "git"
}

func (r *Repo) command(args ...string) *exec.Cmd {
	cmd := exec.Command(gitBinary(), args...)
	cmd.Dir = r.Root
	return cmd
}

// run executes cmd, returning stdout on success and an error carrying the
// command line, exit status, and stderr on failure.
func run(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	return "", errors.Errorf(
		"command failed: %s: %v\nstderr:\n-----\n%s\n-----\n",
		cmdLabel(cmd), err, stderr.String())
}

func cmdLabel(cmd *exec.Cmd) string {
	return fmt.Sprintf("%q %s", cmd.Path, strings.Join(cmd.Args[1:], " "))
}

// MergeHeadExists reports whether MERGE_HEAD exists, indicating the
// working tree is in the middle of a merge.
func (r *Repo) MergeHeadExists() bool {
	cmd := r.command("rev-parse", "--verify", "--quiet", "MERGE_HEAD")
	var discard bytes.Buffer
	cmd.Stdout = &discard
	cmd.Stderr = &discard
	return cmd.Run() == nil
}

// mergeBase computes the merge base between baseRef and revision. It
// fails if git reports more than one merge base (an ambiguous octopus
// case the original also refuses to guess through).
func (r *Repo) mergeBase(baseRef string, revision Revision) (Revision, error) {
	cmd := r.command("merge-base", "--all", baseRef, string(revision))
	label := cmdLabel(cmd)
	out, err := run(cmd)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if strings.ContainsAny(out, " \n") {
		return "", errors.Errorf(
			"unexpected output from %s (contains whitespace -- multiple merge bases?)", label)
	}
	return Revision(out), nil
}

// isAncestor reports whether potentialAncestor is an ancestor of commit.
func (r *Repo) isAncestor(potentialAncestor, commit Revision) (bool, error) {
	cmd := r.command("merge-base", "--is-ancestor", string(potentialAncestor), string(commit))
	// --is-ancestor communicates its answer via exit status, not stdout;
	// a non-zero, non-error exit (1) just means "false".
	var discard bytes.Buffer
	cmd.Stdout = &discard
	cmd.Stderr = &discard
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, errors.Wrap(err, "running git merge-base --is-ancestor")
}

// MergeBaseHead returns the merge base of revision with the current
// working state. If a merge is in progress (MERGE_HEAD exists), it
// computes merge bases against both HEAD and MERGE_HEAD and picks
// whichever is the more recent of the two, so that reconciliation sees
// "main's" blessed files regardless of which side of the merge they
// started on.
func (r *Repo) MergeBaseHead(revision Revision) (Revision, error) {
	if !r.MergeHeadExists() {
		return r.mergeBase("HEAD", revision)
	}

	mbHead, err := r.mergeBase("HEAD", revision)
	if err != nil {
		return "", err
	}
	mbMergeHead, err := r.mergeBase("MERGE_HEAD", revision)
	if err != nil {
		return "", err
	}

	headIsAncestor, err := r.isAncestor(mbHead, mbMergeHead)
	if err != nil {
		return "", err
	}
	if headIsAncestor {
		return mbMergeHead, nil
	}
	return mbHead, nil
}

// LsTree lists files recursively under directory at revision, returning
// paths relative to directory.
func (r *Repo) LsTree(revision Revision, directory string) ([]string, error) {
	cmd := r.command("ls-tree", "-r", "-z", "--name-only", "--full-tree", string(revision), directory)
	label := cmdLabel(cmd)
	out, err := run(cmd)
	if err != nil {
		return nil, err
	}
	out = strings.Trim(out, "\x00")
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}

	prefix := strings.TrimSuffix(directory, "/") + "/"
	var results []string
	for _, entry := range strings.Split(out, "\x00") {
		if entry == "" {
			continue
		}
		rel := strings.TrimPrefix(entry, prefix)
		if rel == entry {
			return nil, errors.Errorf(
				"git ls-tree unexpectedly returned a path that did not start with %q: %q (cmd: %s)",
				directory, entry, label)
		}
		results = append(results, rel)
	}
	return results, nil
}

// ShowFile returns the contents of path at revision.
func (r *Repo) ShowFile(revision Revision, path string) ([]byte, error) {
	cmd := r.command("cat-file", "blob", fmt.Sprintf("%s:%s", revision, path))
	out, err := run(cmd)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// ReadRefContents reads the contents of the file a Ref points to.
func (r *Repo) ReadRefContents(ref Ref) ([]byte, error) {
	return r.ShowFile(FromCommitHash(ref.Commit), ref.Path)
}

// FirstCommitForFile returns the commit that introduced filePath,
// searching backwards from revision. It uses "-m --diff-filter=A" (split
// merge commits, find adds) and deliberately skips "--follow": git's
// rename detection can match unrelated files with similar content,
// returning the wrong commit. If a file was removed and re-added, this
// returns the most recent of the candidate commits, matching the first
// line of `git log`'s output order.
func (r *Repo) FirstCommitForFile(revision Revision, filePath string) (CommitHash, error) {
	cmd := r.command("log", "-m", "--diff-filter=A", "--format=%H", string(revision), "--", filePath)
	out, err := run(cmd)
	if err != nil {
		return CommitHash{}, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return CommitHash{}, errors.Errorf(
			"no commit found that added file %q (searched backwards from %s)", filePath, revision)
	}
	lines := strings.SplitN(out, "\n", 2)
	first := strings.TrimSpace(lines[0])

	commit, err := ParseCommitHash(first)
	if err != nil {
		return CommitHash{}, errors.Wrapf(err, "git returned invalid commit hash %q for %q", first, filePath)
	}
	return commit, nil
}

// IsShallow reports whether the repository is a shallow clone. Shallow
// clones truncate history, which can make FirstCommitForFile report the
// shallow boundary commit as the introducing commit even when the file
// is actually older; callers are expected to surface this as a warning
// rather than fail outright, matching the original's tolerant behavior.
func (r *Repo) IsShallow() bool {
	cmd := r.command("rev-parse", "--is-shallow-repository")
	out, err := run(cmd)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "true"
}
