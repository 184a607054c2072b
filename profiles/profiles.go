// Package profiles bundles the schema profiles shipped with this module.
// Most programs call Init once at startup and then construct entities
// through the per-profile packages.
package profiles

import (
	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/profiles/amed"
	"github.com/ivis-tsukioka/niidg/profiles/base"
	"github.com/ivis-tsukioka/niidg/profiles/cao"
	"github.com/ivis-tsukioka/niidg/profiles/ginfork"
	"github.com/ivis-tsukioka/niidg/profiles/myschema"
)

// All returns the definitions of every bundled profile.
func All() []*niidg.Definition {
	return []*niidg.Definition{
		base.Definition(),
		cao.Definition(),
		amed.Definition(),
		ginfork.Definition(),
		myschema.Definition(),
	}
}

// Init installs every bundled profile as the process-wide registry.
func Init() error {
	return niidg.Init(All()...)
}
