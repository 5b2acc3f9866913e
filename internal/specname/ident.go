// Copyright 2026 Oxide Computer Company

// Package specname implements the bidirectional mapping between on-disk
// file names and the structured identifiers spec.md §3/§4.2 describes:
// (ApiIdent, Kind) where Kind is one of Lockstep, Versioned{version, hash},
// or VersionedGitRef{version, hash}.
package specname

// ApiIdent is an opaque string identifying an API within the registry. It
// doubles as a directory name (for versioned APIs) and a filename prefix.
type ApiIdent string

func (i ApiIdent) String() string { return string(i) }
