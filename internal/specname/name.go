// Copyright 2026 Oxide Computer Company

package specname

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
)

// Kind distinguishes the three ways an OpenAPI document can be named on
// disk (spec.md §3).
type Kind int

const (
	// Lockstep documents live at "<ident>.json" and are always
	// regenerated to match the current code.
	Lockstep Kind = iota
	// Versioned documents live at "<ident>/<ident>-<version>-<hash>.json"
	// and are frozen once blessed.
	Versioned
	// VersionedGitRef documents live at the Versioned path plus a
	// ".gitref" suffix and contain a reference into version control
	// rather than the document itself.
	VersionedGitRef
)

// FileName is the parsed, structured form of an on-disk OpenAPI document
// name: an ApiIdent plus a Kind, with Version/Hash populated for the two
// versioned kinds.
type FileName struct {
	Ident   ApiIdent
	Kind    Kind
	Version apiver.Version
	Hash    string // as in the file name (HashContents gives 6 lowercase hex digits); empty for Lockstep
}

// NewLockstep constructs the FileName for a lockstep API.
func NewLockstep(ident ApiIdent) FileName {
	return FileName{Ident: ident, Kind: Lockstep}
}

// NewVersioned constructs the FileName for a versioned API's full-JSON
// storage form.
func NewVersioned(ident ApiIdent, version apiver.Version, hash string) FileName {
	return FileName{Ident: ident, Kind: Versioned, Version: version, Hash: hash}
}

// NewVersionedGitRef constructs the FileName for a versioned API's
// reference-storage form.
func NewVersionedGitRef(ident ApiIdent, version apiver.Version, hash string) FileName {
	return FileName{Ident: ident, Kind: VersionedGitRef, Version: version, Hash: hash}
}

// Basename renders the file's name within its containing directory (for
// Lockstep, that's also the path relative to the documents root; for the
// two versioned kinds, the path additionally needs the ident directory
// prepended — see Path).
func (n FileName) Basename() string {
	switch n.Kind {
	case Lockstep:
		return string(n.Ident) + ".json"
	case Versioned:
		return fmt.Sprintf("%s-%s-%s.json", n.Ident, n.Version, n.Hash)
	case VersionedGitRef:
		return fmt.Sprintf("%s-%s-%s.json.gitref", n.Ident, n.Version, n.Hash)
	default:
		panic("unknown Kind")
	}
}

// Path renders the path relative to the documents root (spec.md §6).
func (n FileName) Path() string {
	if n.Kind == Lockstep {
		return n.Basename()
	}
	return string(n.Ident) + "/" + n.Basename()
}

// ToJSONFilename returns the plain-JSON basename for this file, converting
// a VersionedGitRef basename to its Versioned equivalent. Used to compute
// the "latest" symlink's target, which must always be the JSON form
// (spec.md §4.5 "Latest symlink", §8 "Symlink target legality").
func (n FileName) ToJSONFilename() string {
	switch n.Kind {
	case VersionedGitRef:
		return NewVersioned(n.Ident, n.Version, n.Hash).Basename()
	default:
		return n.Basename()
	}
}

// LatestSymlinkBasename returns the basename of the "latest" symlink for
// a versioned API's directory, e.g. "dns-server-latest.json".
func LatestSymlinkBasename(ident ApiIdent) string {
	return string(ident) + "-latest.json"
}

// IsLatestSymlinkBasename reports whether basename is the "latest" symlink
// name for ident's directory.
func IsLatestSymlinkBasename(ident ApiIdent, basename string) bool {
	return basename == LatestSymlinkBasename(ident)
}

// HashContents computes spec.md §3's content hash: the first 3 bytes of
// SHA-256 of the file bytes, rendered as 6 lowercase hex digits. This is a
// collision-tolerant disambiguator, not a cryptographic integrity check:
// its job is to force two developers who write different content for the
// same (ident, version) onto different filenames, turning a content-level
// merge conflict into a tree-level add/add that generate can clean up.
func HashContents(contents []byte) string {
	sum := sha256.Sum256(contents)
	return fmt.Sprintf("%02x%02x%02x", sum[0], sum[1], sum[2])
}

// APILookup is the narrow view of the API registry the codec needs:
// whether ident names a known API, and whether that API is lockstep or
// versioned. internal/registry.Registry satisfies this; it is expressed
// here as an interface (rather than importing internal/registry) so the
// codec has no dependency on the registry's construction machinery.
type APILookup interface {
	// IsKnownAPI reports whether ident names an API in the registry, and
	// if so whether that API's discipline is versioned (as opposed to
	// lockstep).
	IsKnownAPI(ident ApiIdent) (versioned bool, ok bool)
}

// ParseLockstepFileName attempts to parse basename as the FileName of a
// lockstep API. Mirrors parse_lockstep_file_name in spec_files_generic.rs.
func ParseLockstepFileName(apis APILookup, basename string) (FileName, error) {
	ident := ApiIdent(strings.TrimSuffix(basename, ".json"))
	if !strings.HasSuffix(basename, ".json") {
		return FileName{}, errors.New(`expected lockstep API file name to end in ".json"`)
	}
	versioned, ok := apis.IsKnownAPI(ident)
	if !ok {
		return FileName{}, errors.Errorf("does not match a known API: %q", ident)
	}
	if versioned {
		return FileName{}, errors.New("this API is not a lockstep API")
	}
	return NewLockstep(ident), nil
}

// ParseVersionedFileName attempts to parse basename (the portion of a
// path after the ident directory) as the FileName of kind Versioned for
// the named ident. Mirrors parse_versioned_file_name.
func ParseVersionedFileName(apis APILookup, ident ApiIdent, basename string) (FileName, error) {
	versioned, ok := apis.IsKnownAPI(ident)
	if !ok {
		return FileName{}, errors.Errorf("does not match a known API: %q", ident)
	}
	if !versioned {
		return FileName{}, errors.New("this API is not a versioned API")
	}

	expectedPrefix := string(ident) + "-"
	suffix := strings.TrimPrefix(basename, expectedPrefix)
	if suffix == basename {
		return FileName{}, errors.Errorf(
			`expected a versioned API document filename for API %q to look like "%s-SEMVER-HASH.json": unexpected prefix`, ident, ident)
	}

	middle := strings.TrimSuffix(suffix, ".json")
	if middle == suffix {
		return FileName{}, errors.Errorf(
			`expected a versioned API document filename for API %q to look like "%s-SEMVER-HASH.json": bad suffix`, ident, ident)
	}

	idx := strings.LastIndex(middle, "-")
	if idx < 0 {
		return FileName{}, errors.Errorf(
			`expected a versioned API document filename for API %q to look like "%s-SEMVER-HASH.json": cannot extract version and hash`, ident, ident)
	}
	versionStr, hash := middle[:idx], middle[idx+1:]

	version, err := apiver.ParseVersion(versionStr)
	if err != nil {
		return FileName{}, errors.Wrapf(err, "API %q: version string is not a semver: %q", ident, versionStr)
	}

	return NewVersioned(ident, version, hash), nil
}

// ParseVersionedGitRefFileName attempts to parse basename as the FileName
// of kind VersionedGitRef. Mirrors parse_versioned_git_ref_file_name: it
// strips the ".gitref" suffix and reuses the versioned hypothesis.
func ParseVersionedGitRefFileName(apis APILookup, ident ApiIdent, basename string) (FileName, error) {
	jsonBasename := strings.TrimSuffix(basename, ".gitref")
	if jsonBasename == basename {
		return FileName{}, errors.New("expected .json.gitref suffix")
	}
	versioned, err := ParseVersionedFileName(apis, ident, jsonBasename)
	if err != nil {
		return FileName{}, err
	}
	return NewVersionedGitRef(versioned.Ident, versioned.Version, versioned.Hash), nil
}

// ParseVersionedDirectory reports whether basename names a versioned
// API's document directory, returning its ApiIdent if so.
func ParseVersionedDirectory(apis APILookup, basename string) (ApiIdent, bool) {
	ident := ApiIdent(basename)
	versioned, ok := apis.IsKnownAPI(ident)
	if !ok || !versioned {
		return "", false
	}
	return ident, true
}
