// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"sort"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/compat"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/vcs"
)

// ResolutionKind distinguishes the three reasons a version of an API
// gets resolved: it's the sole version of a lockstep API, it's a
// versioned API's version blessed upstream, or it's a versioned API's
// version that only exists locally so far.
type ResolutionKind int

const (
	ResolutionLockstep ResolutionKind = iota
	ResolutionBlessed
	ResolutionNewLocally
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionLockstep:
		return "lockstep"
	case ResolutionBlessed:
		return "blessed"
	case ResolutionNewLocally:
		return "added locally"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving the blessed, generated, and
// local documents for one version of one API.
type Resolution struct {
	kind     ResolutionKind
	problems []Problem
}

func NewLockstepResolution(problems []Problem) Resolution {
	return Resolution{kind: ResolutionLockstep, problems: problems}
}

func NewBlessedResolution(problems []Problem) Resolution {
	return Resolution{kind: ResolutionBlessed, problems: problems}
}

func NewLocallyAddedResolution(problems []Problem) Resolution {
	return Resolution{kind: ResolutionNewLocally, problems: problems}
}

func (r Resolution) Kind() ResolutionKind { return r.kind }

func (r Resolution) HasProblems() bool { return len(r.problems) > 0 }

// AddProblem appends a problem to this resolution.
func (r *Resolution) AddProblem(p Problem) { r.problems = append(r.problems, p) }

func (r Resolution) Problems() []Problem { return r.problems }

// HasErrors reports whether any of this resolution's problems has no
// automated fix.
func (r Resolution) HasErrors() bool {
	for _, p := range r.problems {
		if _, fixable := p.Fix(); !fixable {
			return true
		}
	}
	return false
}

// apiResolved is the resolution of every supported version of one API,
// plus the state of its "latest" symlink (only meaningful for versioned
// APIs).
type apiResolved struct {
	byVersion  map[string]Resolution
	versions   []apiver.Version
	symlink    Problem
	hasSymlink bool
}

func newAPIResolved() *apiResolved {
	return &apiResolved{byVersion: make(map[string]Resolution)}
}

func (a *apiResolved) set(v apiver.Version, r Resolution) {
	key := v.String()
	if _, exists := a.byVersion[key]; !exists {
		a.versions = append(a.versions, v)
	}
	a.byVersion[key] = r
}

func (a *apiResolved) get(v apiver.Version) (Resolution, bool) {
	r, ok := a.byVersion[v.String()]
	return r, ok
}

func (a *apiResolved) hasUnfixableProblems() bool {
	if a.hasSymlink {
		if _, fixable := a.symlink.Fix(); !fixable {
			return true
		}
	}
	for _, r := range a.byVersion {
		if r.HasErrors() {
			return true
		}
	}
	return false
}

// Resolved is the complete result of reconciling every managed API's
// blessed, generated, and local documents. Grounded on resolved.rs's
// Resolved<'a> and its constructor.
type Resolved struct {
	notes              []Note
	generalProblems    []Problem
	apiResults         map[specname.ApiIdent]*apiResolved
	nExpectedDocuments int
}

// NExpectedDocuments returns the total number of (API, version) pairs
// the registry currently supports.
func (r *Resolved) NExpectedDocuments() int { return r.nExpectedDocuments }

// Notes returns the non-error observations collected while resolving.
func (r *Resolved) Notes() []Note { return r.notes }

// GeneralProblems returns problems that aren't tied to any one API
// version, e.g. an orphaned local file or an unparseable one.
func (r *Resolved) GeneralProblems() []Problem { return r.generalProblems }

// ResolutionForAPIVersion returns the resolution computed for one
// (ident, version) pair, if that pair is currently supported.
func (r *Resolved) ResolutionForAPIVersion(ident specname.ApiIdent, version apiver.Version) (Resolution, bool) {
	api, ok := r.apiResults[ident]
	if !ok {
		return Resolution{}, false
	}
	return api.get(version)
}

// SymlinkProblem returns the problem found with ident's "latest"
// symlink, if any.
func (r *Resolved) SymlinkProblem(ident specname.ApiIdent) (Problem, bool) {
	api, ok := r.apiResults[ident]
	if !ok || !api.hasSymlink {
		return nil, false
	}
	return api.symlink, true
}

// HasUnfixableProblems reports whether any problem found anywhere has
// no automated fix.
func (r *Resolved) HasUnfixableProblems() bool {
	for _, p := range r.generalProblems {
		if _, fixable := p.Fix(); !fixable {
			return true
		}
	}
	for _, api := range r.apiResults {
		if api.hasUnfixableProblems() {
			return true
		}
	}
	return false
}

// Resolve compares reg's generated documents against what's blessed in
// version control (blessed) and what's on disk locally (local),
// producing the full Resolved report. Mirrors Resolved::new.
func Resolve(
	env *Env, reg *registry.Registry,
	blessed *specfiles.BlessedFiles, generated *specfiles.GeneratedFiles, local *specfiles.LocalFiles,
) *Resolved {
	repo := vcs.New(env.RepoRoot)

	supported := buildSupportedVersionSets(reg)

	nExpected := 0
	for _, set := range supported {
		nExpected += len(set)
	}

	notes := resolveRemovedBlessedVersions(supported, blessed)

	generalProblems := make([]Problem, 0)
	for _, name := range resolveOrphanedLocalSpecs(supported, local) {
		generalProblems = append(generalProblems, ProblemLocalSpecFileOrphaned{SpecFileName: name})
	}

	apiResults := make(map[specname.ApiIdent]*apiResolved, reg.Len())
	for _, api := range reg.Apis() {
		ident := api.Ident()
		apiBlessed, _ := blessed.Files(ident)
		apiGenerated, ok := generated.Files(ident)
		if !ok {
			panic("generated document set should exist for every managed API: " + string(ident))
		}
		apiLocal, _ := local.Files(ident)

		apiResults[ident] = resolveAPI(env, repo, reg, api, blessed, apiBlessed, apiGenerated, apiLocal)
	}

	// Collect every path some fix will write, so that an unparseable
	// file about to be overwritten isn't also reported as a standalone
	// problem.
	pathsWritten := make(map[string]bool)
	for _, api := range apiResults {
		for _, resolution := range api.byVersion {
			for _, problem := range resolution.problems {
				if fix, ok := problem.Fix(); ok {
					fix.AddPathsWritten(pathsWritten)
				}
			}
		}
	}

	for _, apiFiles := range local.All() {
		for _, unparseable := range apiFiles.UnparseableFiles() {
			if !pathsWritten[unparseable.Path] {
				generalProblems = append(generalProblems, ProblemUnparseableLocalFile{UnparseableFile: unparseable})
			}
		}
	}

	return &Resolved{
		notes:              notes,
		generalProblems:    generalProblems,
		apiResults:         apiResults,
		nExpectedDocuments: nExpected,
	}
}

func buildSupportedVersionSets(reg *registry.Registry) map[specname.ApiIdent]map[string]bool {
	out := make(map[specname.ApiIdent]map[string]bool, reg.Len())
	for _, api := range reg.Apis() {
		set := make(map[string]bool)
		for _, v := range api.Versions().AllSemvers() {
			set[v.String()] = true
		}
		out[api.Ident()] = set
	}
	return out
}

func resolveRemovedBlessedVersions(supported map[specname.ApiIdent]map[string]bool, blessed *specfiles.BlessedFiles) []Note {
	var notes []Note
	for ident, apiFiles := range blessed.All() {
		set := supported[ident]
		for _, v := range apiFiles.SortedVersions() {
			if set != nil && set[v.String()] {
				continue
			}
			notes = append(notes, Note{Ident: ident, Version: v})
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Ident != notes[j].Ident {
			return notes[i].Ident < notes[j].Ident
		}
		return notes[i].Version.LessThan(notes[j].Version)
	})
	return notes
}

func resolveOrphanedLocalSpecs(supported map[specname.ApiIdent]map[string]bool, local *specfiles.LocalFiles) []specname.FileName {
	var names []specname.FileName
	for ident, apiFiles := range local.All() {
		set := supported[ident]
		for _, v := range apiFiles.SortedVersions() {
			if set != nil && set[v.String()] {
				continue
			}
			files, _ := apiFiles.Get(v)
			for _, f := range files {
				names = append(names, f.SpecFileName())
			}
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Path() < names[j].Path() })
	return names
}

// sameFileName reports whether a and b name the same file. specname
// .FileName isn't comparable with == because apiver.Version wraps a
// pointer, so two parses of the same version string compare unequal.
func sameFileName(a, b specname.FileName) bool {
	return a.Ident == b.Ident && a.Kind == b.Kind && a.Hash == b.Hash && a.Version.Equal(b.Version)
}

// resolveAPI resolves every supported version of api, plus its "latest"
// symlink if api is versioned. Mirrors resolve_api.
func resolveAPI(
	env *Env, repo *vcs.Repo, reg *registry.Registry, api *registry.API,
	allBlessed *specfiles.BlessedFiles,
	apiBlessed *specfiles.ApiFiles[specfiles.BlessedApiSpecFile],
	apiGenerated *specfiles.ApiFiles[specfiles.GeneratedApiSpecFile],
	apiLocal *specfiles.ApiFiles[specfiles.LocalApiSpecFiles],
) *apiResolved {
	if api.IsLockstep() {
		return resolveAPILockstep(env, reg, api, apiGenerated, apiLocal)
	}

	useGitRefStorage := reg.UsesGitRefStorage(api)
	descending := api.Versions().SupportedVersions().Descending()
	latestVersion := descending[0].Semver

	// The first-commit lookup can run `git log`; only the git ref storage
	// decision uses its result.
	latestFirstCommit := NotBlessedFirstCommit()
	var errSpecName *specname.FileName
	var firstCommitErr error
	if useGitRefStorage {
		latestFirstCommit, errSpecName, firstCommitErr = computeLatestFirstCommit(
			repo, api, allBlessed, apiBlessed, latestVersion)
	}

	result := newAPIResolved()
	for index, sv := range descending {
		version := sv.Semver
		isLatest := index == 0

		var blessedFile *specfiles.BlessedApiSpecFile
		if apiBlessed != nil {
			if b, ok := apiBlessed.Get(version); ok {
				blessedFile = &b
			}
		}

		var gitRef *specfiles.BlessedGitRef
		if gr, ok := allBlessed.GitRef(api.Ident(), version); ok {
			gitRef = &gr
		}

		generatedFile, ok := apiGenerated.Get(version)
		if !ok {
			panic("generated document should exist for every supported version")
		}

		var localFiles specfiles.LocalApiSpecFiles
		if apiLocal != nil {
			if l, ok := apiLocal.Get(version); ok {
				localFiles = l
			}
		}

		resolution := resolveAPIVersion(
			env, reg, repo, api, useGitRefStorage,
			apiVersion{version: version, isLatest: isLatest, isBlessed: blessedFile != nil},
			blessedFile, gitRef, &generatedFile, localFiles, latestFirstCommit)
		result.set(version, resolution)
	}

	if firstCommitErr != nil && errSpecName != nil {
		if resolution, ok := result.get(latestVersion); ok {
			resolution.AddProblem(ProblemGitRefFirstCommitUnknown{
				SpecFileName: *errSpecName,
				Source:       firstCommitErr,
			})
			result.set(latestVersion, resolution)
		}
	}

	symlink, hasSymlink := resolveSymlink(api, apiBlessed, apiGenerated, apiLocal, result, latestVersion)
	result.symlink = symlink
	result.hasSymlink = hasSymlink
	return result
}

func computeLatestFirstCommit(
	repo *vcs.Repo, api *registry.API, allBlessed *specfiles.BlessedFiles,
	apiBlessed *specfiles.ApiFiles[specfiles.BlessedApiSpecFile], latestVersion apiver.Version,
) (LatestFirstCommit, *specname.FileName, error) {
	latestIsBlessed := false
	if apiBlessed != nil {
		if _, ok := apiBlessed.Get(latestVersion); ok {
			latestIsBlessed = true
		}
	}
	if !latestIsBlessed {
		return NotBlessedFirstCommit(), nil, nil
	}

	gr, ok := allBlessed.GitRef(api.Ident(), latestVersion)
	if !ok {
		return BlessedErrorFirstCommit(), nil, nil
	}
	ref, err := gr.ToGitRef(repo)
	if err != nil {
		var name *specname.FileName
		if bf, ok := apiBlessed.Get(latestVersion); ok {
			n := bf.SpecFileName()
			name = &n
		}
		return BlessedErrorFirstCommit(), name, err
	}
	return BlessedFirstCommit(ref.Commit), nil, nil
}

// resolveSymlink decides whether api's "latest" symlink is missing,
// stale, or correct. Mirrors the symlink-handling portion of
// resolve_api (lines following the by_version computation).
func resolveSymlink(
	api *registry.API,
	apiBlessed *specfiles.ApiFiles[specfiles.BlessedApiSpecFile],
	apiGenerated *specfiles.ApiFiles[specfiles.GeneratedApiSpecFile],
	apiLocal *specfiles.ApiFiles[specfiles.LocalApiSpecFiles],
	byVersion *apiResolved, latestVersion apiver.Version,
) (Problem, bool) {
	latestGenerated, ok := apiGenerated.LatestLink()
	if !ok {
		panic(`"generated" source should always have a "latest" link`)
	}
	generatedVersion := latestGenerated.Version
	resolution, ok := byVersion.get(generatedVersion)
	if !ok {
		panic("by_version map should have a version corresponding to latest_generated")
	}

	var latestLocal specname.FileName
	hasLatestLocal := false
	if apiLocal != nil {
		latestLocal, hasLatestLocal = apiLocal.LatestLink()
	}

	blessedLinkFor := func(version apiver.Version) specname.FileName {
		if apiBlessed == nil {
			panic("Blessed resolution kind implies apiBlessed exists")
		}
		b, ok := apiBlessed.Get(version)
		if !ok {
			panic("Blessed resolution kind implies this version is blessed")
		}
		return b.SpecFileName()
	}

	if !hasLatestLocal {
		switch resolution.Kind() {
		case ResolutionLockstep:
			panic("this is a versioned API")
		case ResolutionBlessed:
			return ProblemLatestLinkMissing{Ident: api.Ident(), Link: blessedLinkFor(generatedVersion)}, true
		default:
			return ProblemLatestLinkMissing{Ident: api.Ident(), Link: latestGenerated}, true
		}
	}

	if sameFileName(latestLocal, latestGenerated) {
		return nil, false
	}

	localVersion := latestLocal.Version

	switch resolution.Kind() {
	case ResolutionLockstep:
		panic("this is a versioned API")
	case ResolutionBlessed:
		if generatedVersion.Equal(localVersion) {
			// Same blessed version, generated differs only trivially:
			// don't touch the symlink.
			return nil, false
		}
		return ProblemLatestLinkStale{
			Ident: api.Ident(), Found: latestLocal, Link: blessedLinkFor(generatedVersion),
		}, true
	default:
		return ProblemLatestLinkStale{Ident: api.Ident(), Found: latestLocal, Link: latestGenerated}, true
	}
}

func resolveAPILockstep(
	env *Env, reg *registry.Registry, api *registry.API,
	apiGenerated *specfiles.ApiFiles[specfiles.GeneratedApiSpecFile],
	apiLocal *specfiles.ApiFiles[specfiles.LocalApiSpecFiles],
) *apiResolved {
	version := api.Versions().LockstepVersion()

	generated, ok := apiGenerated.Get(version)
	if !ok {
		panic("generated OpenAPI document for lockstep API")
	}

	var local *specfiles.LocalApiSpecFile
	if apiLocal != nil {
		if files, ok := apiLocal.Get(version); ok {
			switch len(files) {
			case 0:
			case 1:
				local = &files[0]
			default:
				panic("unexpectedly found more than one local OpenAPI document for lockstep API " + string(api.Ident()))
			}
		}
	}

	var problems []Problem
	problems = validateGenerated(env, reg, api, apiVersion{version: version, isLatest: true, isBlessed: false}, &generated, problems, false)

	switch {
	case local != nil && bytesEqual(local.Contents(), generated.File().Contents()):
	case local != nil:
		problems = append(problems, ProblemLockstepStale{Found: local, Generated: &generated})
	default:
		problems = append(problems, ProblemLockstepMissingLocal{Generated: &generated})
	}

	result := newAPIResolved()
	result.set(version, NewLockstepResolution(problems))
	return result
}

// apiVersion bundles the per-version context resolveAPIVersion and its
// helpers need. Mirrors the Rust ApiVersion<'_>.
type apiVersion struct {
	version   apiver.Version
	isLatest  bool
	isBlessed bool
}

func resolveAPIVersion(
	env *Env, reg *registry.Registry, repo *vcs.Repo, api *registry.API, useGitRefStorage bool, version apiVersion,
	blessed *specfiles.BlessedApiSpecFile, gitRef *specfiles.BlessedGitRef,
	generated *specfiles.GeneratedApiSpecFile, local specfiles.LocalApiSpecFiles,
	latestFirstCommit LatestFirstCommit,
) Resolution {
	if blessed != nil {
		return resolveAPIVersionBlessed(
			env, reg, repo, api, useGitRefStorage, version, blessed, gitRef, generated, local, latestFirstCommit)
	}
	return resolveAPIVersionLocal(env, reg, api, version, generated, local)
}

func resolveAPIVersionBlessed(
	env *Env, reg *registry.Registry, repo *vcs.Repo, api *registry.API, useGitRefStorage bool, version apiVersion,
	blessed *specfiles.BlessedApiSpecFile, gitRef *specfiles.BlessedGitRef,
	generated *specfiles.GeneratedApiSpecFile, local specfiles.LocalApiSpecFiles,
	latestFirstCommit LatestFirstCommit,
) Resolution {
	var problems []Problem
	isLatest := version.isLatest

	problems = validateGenerated(env, reg, api, version, generated, problems, true)

	issues, err := compat.ApiCompatible(blessed.File(), generated.File())
	if err != nil {
		problems = append(problems, ProblemBlessedVersionCompareError{Err: err})
	} else if len(issues) > 0 {
		problems = append(problems, ProblemBlessedVersionBroken{CompatibilityIssues: issues})
	}

	if isLatest && !api.AllowsTrivialChangesForLatest() && len(problems) == 0 &&
		!bytesEqual(generated.File().Contents(), blessed.File().Contents()) {
		problems = append(problems, ProblemBlessedLatestVersionBytewiseMismatch{Blessed: blessed, Generated: generated})
	}

	blessedHash := blessed.SpecFileName().Hash

	var matching, corrupted, nonMatching []*specfiles.LocalApiSpecFile
	for i := range local {
		localFile := &local[i]
		hashesMatch := localFile.SpecFileName().Hash == blessedHash
		if localFile.IsUnparseable() {
			if hashesMatch {
				corrupted = append(corrupted, localFile)
			} else {
				nonMatching = append(nonMatching, localFile)
			}
		} else if hashesMatch {
			matching = append(matching, localFile)
		} else {
			nonMatching = append(nonMatching, localFile)
		}
	}

	computeStorageFormat := func() VersionStorageFormat {
		if gitRef == nil {
			return jsonFormat()
		}
		current, err := gitRef.ToGitRef(repo)
		if err != nil {
			problems = append(problems, ProblemGitRefFirstCommitUnknown{
				SpecFileName: blessed.SpecFileName(), Source: err,
			})
			return errorFormat()
		}
		return storageFormatForBlessed(latestFirstCommit, current)
	}

	switch {
	case len(matching) == 0 && len(corrupted) == 0:
		problems = append(problems, ProblemBlessedVersionMissingLocal{SpecFileName: blessed.SpecFileName()})

	case !useGitRefStorage || isLatest:
		for _, localFile := range corrupted {
			problems = append(problems, ProblemBlessedVersionCorruptedLocal{LocalFile: localFile, Blessed: blessed, GitRef: nil})
		}
		switch {
		case len(matching) == 0:
		case len(matching) > 1:
			for _, localFile := range matching {
				if localFile.SpecFileName().Kind == specname.VersionedGitRef {
					problems = append(problems, ProblemDuplicateLocalFile{LocalFile: localFile})
				}
			}
		default:
			localFile := matching[0]
			if localFile.SpecFileName().Kind == specname.VersionedGitRef {
				problems = append(problems, ProblemGitRefShouldBeJson{LocalFile: localFile, Blessed: blessed})
			}
		}
		for _, s := range nonMatching {
			problems = append(problems, ProblemBlessedVersionExtraLocalSpec{SpecFileName: s.SpecFileName()})
		}

	default:
		storageFormat := computeStorageFormat()
		for _, localFile := range corrupted {
			var ref *vcs.Ref
			if storageFormat.Kind == storageFormatGitRef {
				r := storageFormat.GitRef
				ref = &r
			}
			problems = append(problems, ProblemBlessedVersionCorruptedLocal{LocalFile: localFile, Blessed: blessed, GitRef: ref})
		}
		switch {
		case len(matching) == 0:
		case len(matching) > 1:
			for _, localFile := range matching {
				isGitRef := localFile.SpecFileName().Kind == specname.VersionedGitRef
				redundant := (storageFormat.Kind == storageFormatGitRef && !isGitRef) ||
					(storageFormat.Kind == storageFormatJSON && isGitRef)
				if redundant {
					problems = append(problems, ProblemDuplicateLocalFile{LocalFile: localFile})
				}
			}
		default:
			localFile := matching[0]
			isGitRef := localFile.SpecFileName().Kind == specname.VersionedGitRef
			switch {
			case storageFormat.Kind == storageFormatGitRef && !isGitRef:
				problems = append(problems, ProblemBlessedVersionShouldBeGitRef{LocalFile: localFile, GitRef: storageFormat.GitRef})
			case storageFormat.Kind == storageFormatJSON && isGitRef:
				problems = append(problems, ProblemGitRefShouldBeJson{LocalFile: localFile, Blessed: blessed})
			}
		}
		for _, s := range nonMatching {
			problems = append(problems, ProblemBlessedVersionExtraLocalSpec{SpecFileName: s.SpecFileName()})
		}
	}

	return NewBlessedResolution(problems)
}

func resolveAPIVersionLocal(
	env *Env, reg *registry.Registry, api *registry.API, version apiVersion,
	generated *specfiles.GeneratedApiSpecFile, local specfiles.LocalApiSpecFiles,
) Resolution {
	var problems []Problem
	problems = validateGenerated(env, reg, api, version, generated, problems, true)

	var matching, nonMatching []*specfiles.LocalApiSpecFile
	for i := range local {
		localFile := &local[i]
		if bytesEqual(localFile.Contents(), generated.File().Contents()) {
			matching = append(matching, localFile)
		} else {
			nonMatching = append(nonMatching, localFile)
		}
	}

	switch {
	case len(matching) == 0 && len(nonMatching) == 0:
		problems = append(problems, ProblemLocalVersionMissingLocal{Generated: generated})
	case len(matching) == 0:
		problems = append(problems, ProblemLocalVersionStale{SpecFiles: nonMatching, Generated: generated})
	case len(nonMatching) > 0:
		names := make([]specname.FileName, len(nonMatching))
		for i, s := range nonMatching {
			names[i] = s.SpecFileName()
		}
		problems = append(problems, ProblemLocalVersionExtra{SpecFileNames: names})
	}

	return NewLocallyAddedResolution(problems)
}

// validateGenerated runs validate() and folds its outcome into problems,
// either as a single GeneratedValidationError or as one ExtraFileStale
// per stale extra file. hasBlessed matches the Rust Option<bool> that's
// always Some for a versioned API's version and always None (mapped
// here to false/false) for a lockstep one. Mirrors validate_generated.
func validateGenerated(
	env *Env, reg *registry.Registry, api *registry.API, version apiVersion,
	generated *specfiles.GeneratedApiSpecFile, problems []Problem, hasBlessed bool,
) []Problem {
	statuses, err := validate(reg, api, env.RepoRoot, version.isLatest, version.isBlessed, hasBlessed, generated)
	if err != nil {
		return append(problems, ProblemGeneratedValidationError{
			Ident: api.Ident(), Version: version.version, Source: err,
		})
	}
	// Sort paths for deterministic problem ordering.
	paths := make([]string, 0, len(statuses))
	for p := range statuses {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, path := range paths {
		status := statuses[path]
		if status.IsStale {
			problems = append(problems, ProblemExtraFileStale{Ident: api.Ident(), Path: path, CheckStale: status.Stale})
		}
	}
	return problems
}
