// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/compat"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

// Problem describes one way an API's blessed, generated, and local
// documents disagree. Grounded on resolved.rs's Problem<'a> enum.
//
// Rust expresses Problem as a single enum with 21 variants with largely
// disjoint field sets; the rest of this module otherwise follows the
// discriminated-struct idiom established by specname.FileName and
// compat.ApiCompatPointer, but at this scale (21 variants, few shared
// fields) that would produce one struct with dozens of mostly-unused
// fields. An interface with one concrete type per variant is the more
// idiomatic Go translation here, the same way the standard library
// models a sum type with many disjoint shapes (e.g. go/ast.Node).
type Problem interface {
	// Message renders the user-facing description of the problem.
	Message() string
	// Fix returns the automated remedy for this problem, if one exists.
	Fix() (Fix, bool)
}

type ProblemLocalSpecFileOrphaned struct{ SpecFileName specname.FileName }

func (p ProblemLocalSpecFileOrphaned) Message() string {
	return fmt.Sprintf(
		"A local OpenAPI document was found that does not correspond to a "+
			"supported version of this API: %s.  This is unusual, but it could "+
			"happen if you're either retiring an older version of this API or if "+
			"you created this version in this branch and later merged with "+
			"upstream and had to change your local version number.  In either "+
			"case, this tool can remove the unused file for you.", p.SpecFileName.Path())
}

func (p ProblemLocalSpecFileOrphaned) Fix() (Fix, bool) {
	return FixDeleteFiles{Files: []specname.FileName{p.SpecFileName}}, true
}

type ProblemUnparseableLocalFile struct{ UnparseableFile specfiles.UnparseableFile }

func (p ProblemUnparseableLocalFile) Message() string {
	return fmt.Sprintf(
		"A local OpenAPI document could not be parsed: %s. This may happen if "+
			"the file has merge conflict markers or is otherwise corrupted. This "+
			"tool can delete this file and regenerate the correct one for you.",
		p.UnparseableFile.Path)
}

func (p ProblemUnparseableLocalFile) Fix() (Fix, bool) {
	return FixDeleteUnparseableFile{Path: p.UnparseableFile.Path}, true
}

type ProblemBlessedVersionMissingLocal struct{ SpecFileName specname.FileName }

func (p ProblemBlessedVersionMissingLocal) Message() string {
	return fmt.Sprintf(
		"This version is blessed, and it's a supported version, but it's "+
			"missing a local OpenAPI document.  This is unusual.  If you intended "+
			"to remove this version, you must also update the list of supported "+
			"versions in Go.  If you didn't, restore the file from git: %s",
		p.SpecFileName.Path())
}

func (p ProblemBlessedVersionMissingLocal) Fix() (Fix, bool) { return nil, false }

type ProblemBlessedVersionExtraLocalSpec struct{ SpecFileName specname.FileName }

func (p ProblemBlessedVersionExtraLocalSpec) Message() string {
	return fmt.Sprintf(
		"For this blessed version, found an extra OpenAPI document that does "+
			"not match the blessed (upstream) OpenAPI document: %s.  This can "+
			"happen if you created this version of the API in this branch, then "+
			"merged with an upstream commit that also added the same version "+
			"number.  In that case, you likely already bumped your local version "+
			"number (when you merged the list of supported versions in Go) and "+
			"this file is vestigial. This tool can remove the unused file for you.",
		p.SpecFileName.Path())
}

func (p ProblemBlessedVersionExtraLocalSpec) Fix() (Fix, bool) {
	return FixDeleteFiles{Files: []specname.FileName{p.SpecFileName}}, true
}

type ProblemBlessedVersionCompareError struct{ Err error }

func (p ProblemBlessedVersionCompareError) Message() string {
	return fmt.Sprintf(
		"error comparing OpenAPI document generated from current code with "+
			"blessed document (from upstream): %s", p.Err)
}

func (p ProblemBlessedVersionCompareError) Fix() (Fix, bool) { return nil, false }

type ProblemBlessedVersionBroken struct {
	CompatibilityIssues []*compat.ApiCompatIssue
}

func (p ProblemBlessedVersionBroken) Message() string {
	return "OpenAPI document generated from the current code is not compatible with the blessed document (from upstream)"
}

func (p ProblemBlessedVersionBroken) Fix() (Fix, bool) { return nil, false }

type ProblemBlessedLatestVersionBytewiseMismatch struct {
	Blessed   *specfiles.BlessedApiSpecFile
	Generated *specfiles.GeneratedApiSpecFile
}

func (p ProblemBlessedLatestVersionBytewiseMismatch) Message() string {
	return "For the latest blessed version, the OpenAPI document generated from " +
		"the current code is wire-compatible but not bytewise identical to the " +
		"blessed document. This implies one or more trivial changes such as type " +
		"renames or documentation updates. To proceed, bump the API version in " +
		"the supported-versions list; unless you're introducing other changes, " +
		"there's no need to make changes to any endpoints."
}

func (p ProblemBlessedLatestVersionBytewiseMismatch) Fix() (Fix, bool) { return nil, false }

type ProblemLockstepMissingLocal struct{ Generated *specfiles.GeneratedApiSpecFile }

func (p ProblemLockstepMissingLocal) Message() string {
	return "No local OpenAPI document was found for this lockstep API.  This is " +
		"only expected if you're adding a new lockstep API.  This tool can " +
		"generate the file for you."
}

func (p ProblemLockstepMissingLocal) Fix() (Fix, bool) {
	return FixUpdateLockstepFile{Generated: p.Generated}, true
}

type ProblemLockstepStale struct {
	Found     *specfiles.LocalApiSpecFile
	Generated *specfiles.GeneratedApiSpecFile
}

func (p ProblemLockstepStale) Message() string {
	return fmt.Sprintf(
		"For this lockstep API, OpenAPI document generated from the current "+
			"code does not match the local file: %s.  This tool can update the "+
			"local file for you.", p.Generated.SpecFileName().Path())
}

func (p ProblemLockstepStale) Fix() (Fix, bool) {
	return FixUpdateLockstepFile{Generated: p.Generated}, true
}

type ProblemLocalVersionMissingLocal struct{ Generated *specfiles.GeneratedApiSpecFile }

func (p ProblemLocalVersionMissingLocal) Message() string {
	return "No OpenAPI document was found for this locally-added API version.  " +
		"This is normal if you have added or changed this API version.  " +
		"This tool can generate the file for you."
}

func (p ProblemLocalVersionMissingLocal) Fix() (Fix, bool) {
	return FixUpdateVersionedFiles{Generated: p.Generated}, true
}

type ProblemLocalVersionExtra struct{ SpecFileNames []specname.FileName }

func (p ProblemLocalVersionExtra) Message() string {
	return fmt.Sprintf(
		"Extra (incorrect) OpenAPI documents were found for locally-added "+
			"version: %s.  This tool can remove the files for you.", joinPaths(p.SpecFileNames))
}

func (p ProblemLocalVersionExtra) Fix() (Fix, bool) {
	return FixDeleteFiles{Files: p.SpecFileNames}, true
}

type ProblemLocalVersionStale struct {
	SpecFiles []*specfiles.LocalApiSpecFile
	Generated *specfiles.GeneratedApiSpecFile
}

func (p ProblemLocalVersionStale) Message() string {
	names := make([]string, len(p.SpecFiles))
	for i, s := range p.SpecFiles {
		names[i] = s.SpecFileName().Path()
	}
	return fmt.Sprintf(
		"For this locally-added version, the OpenAPI document generated from "+
			"the current code does not match the local file: %s. This tool can "+
			"update the local file(s) for you.", joinStrings(names))
}

func (p ProblemLocalVersionStale) Fix() (Fix, bool) {
	old := make([]specname.FileName, len(p.SpecFiles))
	for i, s := range p.SpecFiles {
		old[i] = s.SpecFileName()
	}
	return FixUpdateVersionedFiles{Old: old, Generated: p.Generated}, true
}

type ProblemGeneratedValidationError struct {
	Ident   specname.ApiIdent
	Version apiver.Version
	Source  error
}

func (p ProblemGeneratedValidationError) Message() string {
	return fmt.Sprintf("Generated OpenAPI document for API %q version %s is not valid", p.Ident, p.Version)
}

func (p ProblemGeneratedValidationError) Fix() (Fix, bool) { return nil, false }

type ProblemExtraFileStale struct {
	Ident      specname.ApiIdent
	Path       string
	CheckStale CheckStale
}

func (p ProblemExtraFileStale) Message() string {
	return fmt.Sprintf("Additional validated file associated with API %q is stale: %s", p.Ident, p.Path)
}

func (p ProblemExtraFileStale) Fix() (Fix, bool) {
	return FixUpdateExtraFile{Path: p.Path, CheckStale: p.CheckStale}, true
}

type ProblemLatestLinkMissing struct {
	Ident specname.ApiIdent
	Link  specname.FileName
}

func (p ProblemLatestLinkMissing) Message() string {
	return fmt.Sprintf(`"Latest" symlink for versioned API %q is missing`, p.Ident)
}

func (p ProblemLatestLinkMissing) Fix() (Fix, bool) {
	return FixUpdateSymlink{Ident: p.Ident, Link: p.Link}, true
}

type ProblemLatestLinkStale struct {
	Ident specname.ApiIdent
	Found specname.FileName
	Link  specname.FileName
}

func (p ProblemLatestLinkStale) Message() string {
	return fmt.Sprintf(
		`"Latest" symlink for versioned API %q is stale: points to %s, but should be %s`,
		p.Ident, p.Found.Basename(), p.Link.Basename())
}

func (p ProblemLatestLinkStale) Fix() (Fix, bool) {
	return FixUpdateSymlink{Ident: p.Ident, Link: p.Link}, true
}

type ProblemBlessedVersionShouldBeGitRef struct {
	LocalFile *specfiles.LocalApiSpecFile
	GitRef    vcs.Ref
}

func (p ProblemBlessedVersionShouldBeGitRef) Message() string {
	return "Blessed non-latest version is stored as a full JSON file. This can " +
		"be converted to a git ref. This tool can perform the conversion for you."
}

func (p ProblemBlessedVersionShouldBeGitRef) Fix() (Fix, bool) {
	return FixConvertToGitRef{LocalFile: p.LocalFile, GitRef: p.GitRef}, true
}

type ProblemGitRefShouldBeJson struct {
	LocalFile *specfiles.LocalApiSpecFile
	Blessed   *specfiles.BlessedApiSpecFile
}

func (p ProblemGitRefShouldBeJson) Message() string {
	return "Blessed version is stored as a git ref file, but should be stored " +
		"as JSON. This tool can perform the conversion for you."
}

func (p ProblemGitRefShouldBeJson) Fix() (Fix, bool) {
	return FixConvertToJson{LocalFile: p.LocalFile, Blessed: p.Blessed}, true
}

type ProblemBlessedVersionCorruptedLocal struct {
	LocalFile *specfiles.LocalApiSpecFile
	Blessed   *specfiles.BlessedApiSpecFile
	// GitRef, if non-nil, means the regenerated file should be written as
	// a git ref rather than plain JSON.
	GitRef *vcs.Ref
}

func (p ProblemBlessedVersionCorruptedLocal) Message() string {
	return "Local file for this blessed version is corrupted (possibly due to " +
		"merge conflict markers). This tool can regenerate the file from the " +
		"blessed version for you."
}

func (p ProblemBlessedVersionCorruptedLocal) Fix() (Fix, bool) {
	return FixRegenerateFromBlessed{LocalFile: p.LocalFile, Blessed: p.Blessed, GitRef: p.GitRef}, true
}

type ProblemDuplicateLocalFile struct{ LocalFile *specfiles.LocalApiSpecFile }

func (p ProblemDuplicateLocalFile) Message() string {
	return "Duplicate local file found: both JSON and git ref versions exist " +
		"for this API version. This tool can remove the redundant file for you."
}

func (p ProblemDuplicateLocalFile) Fix() (Fix, bool) {
	return FixDeleteFiles{Files: []specname.FileName{p.LocalFile.SpecFileName()}}, true
}

type ProblemGitRefFirstCommitUnknown struct {
	SpecFileName specname.FileName
	Source       error
}

func (p ProblemGitRefFirstCommitUnknown) Message() string {
	return fmt.Sprintf(
		"The first commit for this blessed version could not be determined. This "+
			"may indicate a corrupted git repository or other git-related issue. Git "+
			"ref storage requires complete git history access: %s", p.Source)
}

func (p ProblemGitRefFirstCommitUnknown) Fix() (Fix, bool) { return nil, false }

func joinPaths(names []specname.FileName) string {
	strs := make([]string, len(names))
	for i, n := range names {
		strs[i] = n.Path()
	}
	return joinStrings(strs)
}

func joinStrings(strs []string) string {
	out := ""
	for i, s := range strs {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
