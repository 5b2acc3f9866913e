// Copyright 2026 Oxide Computer Company

// Package apiver describes the versioning discipline of a managed API:
// either lockstep (exactly one supported version, always regenerated to
// match code) or versioned (a sorted, deduplicated list of supported
// versions, frozen once blessed). Construction-time assertions here stand
// in for what the teacher's registry.go validates about project names at
// Gopkg.toml load time: fail loudly and early, not deep inside
// reconciliation.
package apiver

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Version is a parsed semantic version with no pre-release or build
// metadata, matching the filename grammar in spec.md §3: `<ident>-<v>-<h>.json`
// only ever embeds MAJOR.MINOR.PATCH.
type Version struct {
	v *semver.Version
}

// ParseVersion parses s as a semver with no pre-release or build
// metadata component. Dropshot does not support pre-release strings and
// neither do we; this keeps the constraint explicit rather than relying on
// callers to notice after the fact.
func ParseVersion(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, errors.Wrapf(err, "version string is not a semver: %q", s)
	}
	if v.Prerelease() != "" {
		return Version{}, errors.Errorf("version string has a prerelease field (not supported): %q", s)
	}
	if v.Metadata() != "" {
		return Version{}, errors.Errorf("version string has a build field (not supported): %q", s)
	}
	return Version{v: v}, nil
}

// MustVersion parses s and panics on error. Intended for registry
// construction code where the version string is a compile-time constant.
func MustVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders MAJOR.MINOR.PATCH, with no "v" prefix and no pre-release
// or build metadata (there never is any, per ParseVersion).
func (v Version) String() string {
	if v.v == nil {
		return "0.0.0"
	}
	return fmt.Sprintf("%d.%d.%d", v.v.Major(), v.v.Minor(), v.v.Patch())
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than o, ordering purely on the three numeric components.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

// Equal reports whether v and o are the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// LessThan reports whether v orders before o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// SupportedVersion pairs a semver with a human-readable label used only
// for diagnostics (e.g., a changelog entry name); the label has no effect
// on reconciliation and need not be unique across the whole registry, only
// within one API's SupportedVersions.
type SupportedVersion struct {
	Semver Version
	Label  string
}

// SupportedVersions is a non-empty, ascending, duplicate-free list of
// SupportedVersion. The ordering requirement exists so that two branches
// adding a version in the same list position produce a textual merge
// conflict instead of a silent, order-dependent mismerge.
type SupportedVersions struct {
	versions []SupportedVersion
}

// NewSupportedVersions validates and constructs a SupportedVersions. It
// returns an error (rather than panicking, unlike the Rust original) so
// that callers building a registry from configuration can report a clean
// message instead of a panic with a stack trace; callers building a
// registry from compile-time constants are expected to wrap this in a
// package-level must-helper if they want panic semantics.
func NewSupportedVersions(versions []SupportedVersion) (SupportedVersions, error) {
	if len(versions) == 0 {
		return SupportedVersions{}, errors.New("at least one version of an API must be supported")
	}

	for i := 1; i < len(versions); i++ {
		if versions[i-1].Semver.Compare(versions[i].Semver) >= 0 {
			return SupportedVersions{}, errors.Errorf(
				"list of supported versions for an API must be sorted ascending with no duplicates: %s then %s",
				versions[i-1].Semver, versions[i].Semver)
		}
	}

	seenLabels := make(map[string]Version, len(versions))
	for _, v := range versions {
		if prev, ok := seenLabels[v.Label]; ok {
			return SupportedVersions{}, errors.Errorf(
				"label %q appears multiple times (versions: %s, %s)", v.Label, prev, v.Semver)
		}
		seenLabels[v.Label] = v.Semver
	}

	out := make([]SupportedVersion, len(versions))
	copy(out, versions)
	return SupportedVersions{versions: out}, nil
}

// MustNewSupportedVersions is NewSupportedVersions but panics on error;
// intended for registry construction code where the version list is a
// compile-time constant and a malformed list is a programmer error, not a
// runtime condition (spec.md §9: "treat programmer invariants ... as
// assertions at registry-construction time, not as runtime errors").
func MustNewSupportedVersions(versions []SupportedVersion) SupportedVersions {
	sv, err := NewSupportedVersions(versions)
	if err != nil {
		panic(err)
	}
	return sv
}

// All returns the supported versions in ascending order.
func (s SupportedVersions) All() []SupportedVersion {
	out := make([]SupportedVersion, len(s.versions))
	copy(out, s.versions)
	return out
}

// Latest returns the numerically greatest supported version.
func (s SupportedVersions) Latest() SupportedVersion {
	return s.versions[len(s.versions)-1]
}

// Contains reports whether v is among the supported versions.
func (s SupportedVersions) Contains(v Version) bool {
	for _, sv := range s.versions {
		if sv.Semver.Equal(v) {
			return true
		}
	}
	return false
}

// Descending returns the supported versions from newest to oldest,
// matching the order the reconciliation engine walks them in (spec.md
// §4.5: "Versions are walked from newest to oldest").
func (s SupportedVersions) Descending() []SupportedVersion {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Semver.LessThan(out[i].Semver)
	})
	return out
}

// Discipline distinguishes a lockstep API (exactly one supported version)
// from a versioned API (a SupportedVersions list).
type Discipline int

const (
	// Lockstep APIs have exactly one supported version; the on-disk
	// document is always regenerated to match the running code.
	Lockstep Discipline = iota
	// Versioned APIs may have many supported versions; each is frozen
	// once blessed in version control.
	Versioned
)

// Versions describes how one API is versioned: either Lockstep with a
// single Version, or Versioned with a SupportedVersions list.
type Versions struct {
	discipline Discipline
	lockstep   Version
	versioned  SupportedVersions
}

// NewLockstep constructs a lockstep Versions value.
func NewLockstep(v Version) Versions {
	return Versions{discipline: Lockstep, lockstep: v}
}

// NewVersioned constructs a versioned Versions value.
func NewVersioned(sv SupportedVersions) Versions {
	return Versions{discipline: Versioned, versioned: sv}
}

// IsVersioned reports whether this API uses the Versioned discipline.
func (v Versions) IsVersioned() bool { return v.discipline == Versioned }

// IsLockstep reports whether this API uses the Lockstep discipline.
func (v Versions) IsLockstep() bool { return v.discipline == Lockstep }

// LockstepVersion returns the single supported version of a lockstep API.
// It panics if called on a versioned API; callers are expected to check
// IsLockstep first, matching the Rust original's unchecked accessor.
func (v Versions) LockstepVersion() Version {
	if v.discipline != Lockstep {
		panic("LockstepVersion called on a versioned API")
	}
	return v.lockstep
}

// SupportedVersions returns the version list of a versioned API. It
// panics if called on a lockstep API.
func (v Versions) SupportedVersions() SupportedVersions {
	if v.discipline != Versioned {
		panic("SupportedVersions called on a lockstep API")
	}
	return v.versioned
}

// AllSemvers returns every semver this API supports, in ascending order.
func (v Versions) AllSemvers() []Version {
	if v.discipline == Lockstep {
		return []Version{v.lockstep}
	}
	out := make([]Version, 0, len(v.versioned.versions))
	for _, sv := range v.versioned.versions {
		out = append(out, sv.Semver)
	}
	return out
}
