// Copyright 2026 Oxide Computer Company

package reconcile

import "github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"

// LatestFirstCommit describes what's known about the commit that first
// introduced the latest blessed version of an API, used as the baseline
// storageFormatForBlessed compares every other blessed version against.
type LatestFirstCommit struct {
	// Blessed is true if the latest version is blessed at all; if false,
	// Commit and Err are both zero.
	Blessed bool
	// Commit is the first commit for the latest version, if it's
	// blessed and that commit could be determined.
	Commit vcs.CommitHash
	// Err is true if the latest version is blessed but its first commit
	// could not be determined.
	Err bool
}

// NotBlessedFirstCommit is the LatestFirstCommit value for an API whose
// latest version is not (yet) blessed.
func NotBlessedFirstCommit() LatestFirstCommit {
	return LatestFirstCommit{}
}

// BlessedFirstCommit is the LatestFirstCommit value for an API whose
// latest version is blessed with a known first commit.
func BlessedFirstCommit(commit vcs.CommitHash) LatestFirstCommit {
	return LatestFirstCommit{Blessed: true, Commit: commit}
}

// BlessedErrorFirstCommit is the LatestFirstCommit value for an API
// whose latest version is blessed, but whose first commit could not be
// determined.
func BlessedErrorFirstCommit() LatestFirstCommit {
	return LatestFirstCommit{Blessed: true, Err: true}
}

// VersionStorageFormat describes what storage format a blessed version
// should use.
type VersionStorageFormat struct {
	// Kind is one of "gitref", "json", or "error".
	Kind string
	// GitRef holds the ref to store, when Kind is "gitref".
	GitRef vcs.Ref
}

const (
	storageFormatGitRef = "gitref"
	storageFormatJSON   = "json"
	storageFormatError  = "error"
)

func gitRefFormat(ref vcs.Ref) VersionStorageFormat {
	return VersionStorageFormat{Kind: storageFormatGitRef, GitRef: ref}
}

func jsonFormat() VersionStorageFormat { return VersionStorageFormat{Kind: storageFormatJSON} }

func errorFormat() VersionStorageFormat { return VersionStorageFormat{Kind: storageFormatError} }

// storageFormatForBlessed returns the storage format for a blessed
// version, assuming git ref storage is enabled and the current
// version's potential git ref is known. Mirrors resolved.rs's
// storage_format_for_blessed and its decision table:
//
//	status              storage format
//	NotBlessed          GitRef (always)
//	Blessed(same)       Json
//	Blessed(different)  GitRef
//	BlessedError        Error
func storageFormatForBlessed(latest LatestFirstCommit, current vcs.Ref) VersionStorageFormat {
	switch {
	case !latest.Blessed:
		// The latest version is not blessed. This means that a new
		// version is being added, so always convert blessed versions to
		// git refs.
		return gitRefFormat(current)
	case latest.Err:
		// The latest version is blessed, but an error occurred while
		// determining its first commit. Don't suggest any changes.
		return errorFormat()
	case !current.Commit.Equal(latest.Commit):
		// The latest version is blessed. Only suggest conversion if this
		// version's first commit differs from the latest version's.
		return gitRefFormat(current)
	default:
		return jsonFormat()
	}
}
