// Copyright 2026 Oxide Computer Company

package main

import (
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/apiver"
	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/registry"
)

// managedRegistry builds the registry of APIs this binary reconciles.
//
// apimgr has no Dropshot ApiDescription builder of its own to call: a
// real adopter replaces this function with one that calls into their
// server binary's route-registration code and serializes the resulting
// document, exactly as the library crate this tool generalizes expects
// its caller to do. What ships here is a single lockstep example API so
// that "apimgr check"/"generate"/"diff" have something to operate on out
// of the box; swap it out, or add more registry.NewAPI calls alongside
// it, to manage real services.
func managedRegistry() (*registry.Registry, error) {
	example := registry.NewAPI(registry.Config{
		Ident:    "example",
		Versions: apiver.NewLockstep(apiver.MustVersion("1.0.0")),
		Title:    "Example API",
		Generate: func(apiver.Version) ([]byte, error) {
			return []byte(`{
  "openapi": "3.0.3",
  "info": {"title": "Example API", "version": "1.0.0"},
  "paths": {}
}
`), nil
		},
	})

	return registry.NewRegistry([]*registry.API{example})
}
