// Copyright 2026 Oxide Computer Company

package reconcile

import (
	"fmt"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// Note records something worth telling the user about that isn't a
// problem in its own right. Mirrors the Rust Note enum, which today has
// exactly one variant (BlessedVersionRemoved); unlike Problem and Fix,
// which have enough variants and enough field divergence to warrant an
// interface-based sum type, one variant is better expressed as a single
// concrete struct than as an interface with one implementation.
type Note struct {
	Ident   specname.ApiIdent
	Version apiver.Version
}

// String renders the note as the user-facing message.
func (n Note) String() string {
	return fmt.Sprintf(
		"API %s version %s: formerly blessed version has been removed.  "+
			"This version will no longer be supported!  This will break upgrade "+
			"from software that still uses this version.  If this is unexpected, "+
			"check the list of supported versions in Go for a possible mismerge.",
		n.Ident, n.Version)
}
