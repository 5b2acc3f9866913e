// Copyright 2026 Oxide Computer Company

package specfiles

import (
	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apimgrctx"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specname"
)

// GeneratedApiSpecFile wraps a single ApiSpecFile produced by an API's
// registry.Generator. This is the simplest of the three loaders: there's
// no filesystem or git interaction, no possibility of an unparseable
// file (a generator either succeeds or the load fails outright), and
// exactly one document per supported version.
type GeneratedApiSpecFile struct {
	file *ApiSpecFile
}

// SpecFileName returns the structured name of the generated document.
func (g GeneratedApiSpecFile) SpecFileName() specname.FileName { return g.file.SpecFileName() }

// ParsedVersion implements SpecFileInfo.
func (g GeneratedApiSpecFile) ParsedVersion() (apiver.Version, bool) { return g.file.ParsedVersion() }

// File returns the underlying parsed document.
func (g GeneratedApiSpecFile) File() *ApiSpecFile { return g.file }

// AsRawFiles implements RawFilesProvider.
func (g GeneratedApiSpecFile) AsRawFiles() []SpecFileInfo { return []SpecFileInfo{g} }

var _ RawFilesProvider = GeneratedApiSpecFile{}

var generatedLoader = Loader[GeneratedApiSpecFile]{
	MisconfigurationsAllowed: false,
	UnparseableFilesAllowed:  false,
	MakeItem: func(raw *ApiSpecFile) GeneratedApiSpecFile {
		return GeneratedApiSpecFile{file: raw}
	},
	TryExtend: func(existing *GeneratedApiSpecFile, raw *ApiSpecFile) error {
		return errors.Errorf(
			"generated more than one document for version %s of API %s",
			raw.Version(), raw.SpecFileName().Ident)
	},
	MakeUnparseable: func(specname.FileName, []byte) (GeneratedApiSpecFile, bool) {
		return GeneratedApiSpecFile{}, false
	},
	ExtendUnparseable: func(*GeneratedApiSpecFile, specname.FileName, []byte) {},
}

// GeneratedFiles is the current, freshly rendered document for every
// supported version of every managed API.
type GeneratedFiles struct {
	files map[specname.ApiIdent]*ApiFiles[GeneratedApiSpecFile]
}

// Files returns the generated documents for ident, if the registry
// knows about it.
func (gf *GeneratedFiles) Files(ident specname.ApiIdent) (*ApiFiles[GeneratedApiSpecFile], bool) {
	af, ok := gf.files[ident]
	return af, ok
}

// Generate renders the current OpenAPI document for every supported
// version of every API in reg, cross-checking each one exactly as a
// file loaded from disk would be (embedded version must match, and for
// a versioned API, name and hash are derived from the freshly computed
// content rather than read from a filename).
func Generate(reg *registry.Registry, errAcc *apimgrctx.ErrorAccumulator) *GeneratedFiles {
	builder := NewBuilder(reg, generatedLoader, errAcc)

	for _, api := range reg.Apis() {
		for _, version := range api.Versions().AllSemvers() {
			contents, err := api.GenerateSpecBytes(version)
			if err != nil {
				builder.LoadError(err)
				continue
			}

			var name specname.FileName
			if api.IsLockstep() {
				name = specname.NewLockstep(api.Ident())
			} else {
				hash := specname.HashContents(contents)
				name = specname.NewVersioned(api.Ident(), version, hash)
			}

			builder.LoadContents(name, contents)
		}

		if api.IsVersioned() {
			latest := api.Versions().SupportedVersions().Latest()
			if af, ok := builder.IntoMap()[api.Ident()]; ok {
				if generated, ok := af.Get(latest.Semver); ok {
					builder.LoadLatestLink(api.Ident(), generated.SpecFileName())
				}
			}
		}
	}

	return &GeneratedFiles{files: builder.IntoMap()}
}
