// Copyright 2026 Oxide Computer Company

package driver

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// DiffKind classifies why a (ident, version) pair showed up in a Diff
// result.
type DiffKind int

const (
	// Modified means both a blessed and a local document exist, and
	// their bytes differ.
	Modified DiffKind = iota
	// NewLocally means a local document exists with no blessed
	// counterpart: the diff is against the nearest older blessed
	// version, if there is one, or against nothing at all.
	NewLocally
	// RemovedLocally means a blessed document exists with no local
	// counterpart: the document was checked in but has since vanished
	// from the working tree.
	RemovedLocally
)

func (k DiffKind) String() string {
	switch k {
	case Modified:
		return "modified"
	case NewLocally:
		return "new locally"
	case RemovedLocally:
		return "removed locally"
	default:
		return "unknown"
	}
}

// DocDiff is one API version's difference between the blessed baseline
// and the local working tree, rendered as a unified diff.
type DocDiff struct {
	Ident   specname.ApiIdent
	Version apiver.Version
	Kind    DiffKind
	Diff    string
}

// diffOneVersion compares one API version's blessed and local documents
// and reports ok=false when there's nothing to show (no document on
// either side, or identical bytes on both).
func diffOneVersion(
	ident specname.ApiIdent,
	version apiver.Version,
	apiBlessed *specfiles.ApiFiles[specfiles.BlessedApiSpecFile],
	apiLocal *specfiles.ApiFiles[specfiles.LocalApiSpecFiles],
) (DocDiff, bool) {
	blessedContent, hasBlessed := blessedContentAt(apiBlessed, version)
	localContent, hasLocal := localContentAt(apiLocal, version)

	switch {
	case hasBlessed && hasLocal:
		if string(blessedContent) == string(localContent) {
			return DocDiff{}, false
		}
		return DocDiff{
			Ident: ident, Version: version, Kind: Modified,
			Diff: unifiedDiff(ident, version, blessedContent, localContent),
		}, true

	case hasLocal:
		base, _ := previousBlessedContent(apiBlessed, version)
		return DocDiff{
			Ident: ident, Version: version, Kind: NewLocally,
			Diff: unifiedDiff(ident, version, base, localContent),
		}, true

	case hasBlessed:
		return DocDiff{
			Ident: ident, Version: version, Kind: RemovedLocally,
			Diff: unifiedDiff(ident, version, blessedContent, nil),
		}, true

	default:
		return DocDiff{}, false
	}
}

func blessedContentAt(apiBlessed *specfiles.ApiFiles[specfiles.BlessedApiSpecFile], version apiver.Version) ([]byte, bool) {
	if apiBlessed == nil {
		return nil, false
	}
	file, ok := apiBlessed.Get(version)
	if !ok {
		return nil, false
	}
	return file.File().Contents(), true
}

// localContentAt returns the first local document recorded for version,
// if any. A version with more than one local document (an add/add
// conflict) is itself a reconciliation problem reported elsewhere; Diff
// just shows the first one found.
func localContentAt(apiLocal *specfiles.ApiFiles[specfiles.LocalApiSpecFiles], version apiver.Version) ([]byte, bool) {
	if apiLocal == nil {
		return nil, false
	}
	files, ok := apiLocal.Get(version)
	if !ok || len(files) == 0 {
		return nil, false
	}
	return files[0].Contents(), true
}

// previousBlessedContent finds the content of the nearest blessed
// version strictly older than version, for diffing a newly-introduced
// local version against the API's prior shape rather than against
// nothing.
func previousBlessedContent(apiBlessed *specfiles.ApiFiles[specfiles.BlessedApiSpecFile], version apiver.Version) ([]byte, bool) {
	if apiBlessed == nil {
		return nil, false
	}

	var best apiver.Version
	var bestContent []byte
	found := false
	for _, v := range apiBlessed.SortedVersions() {
		if !v.LessThan(version) {
			continue
		}
		if found && !best.LessThan(v) {
			continue
		}
		file, ok := apiBlessed.Get(v)
		if !ok {
			continue
		}
		best = v
		bestContent = file.File().Contents()
		found = true
	}
	return bestContent, found
}

func unifiedDiff(ident specname.ApiIdent, version apiver.Version, before, after []byte) string {
	label := fmt.Sprintf("%s@%s", ident, version)
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: label + " (blessed)",
		ToFile:   label + " (local)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("<failed to render diff for %s: %v>", label, err)
	}
	return text
}
