// Package amed provides the DMP profile for research projects funded by the
// Japan Agency for Medical Research and Development (AMED), including
// clinical research registration records.
package amed

import (
	_ "embed"
	"strconv"
	"sync"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/profiles/base"
	"github.com/ivis-tsukioka/niidg/profiles/internal/dmp"
	"github.com/ivis-tsukioka/niidg/rules"
	"github.com/ivis-tsukioka/niidg/schema"
)

// Profile is the name this vocabulary registers under.
const Profile = "amed"

// MetadataID is the fixed id of the DMPMetadata entity.
const MetadataID = "#AMED-DMP"

//go:embed amed.yml
var definitionYAML []byte

var (
	once sync.Once
	def  *niidg.Definition
)

// Definition returns the amed profile definition with its rules attached.
func Definition() *niidg.Definition {
	once.Do(func() {
		def = schema.MustParseDefinition(definitionYAML)
		attachRules(def)
	})
	return def
}

func attachRules(d *niidg.Definition) {
	d.Entity("DMPMetadata").Rules = []niidg.Rule{
		rules.Custom(dmp.CheckFunderListed),
		rules.Custom(func(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
			return dmp.RequireAllListed(e, c, Profile)
		}),
		rules.When(hasDMPs).Require("creator", "hostingInstitution", "dataManager"),
	}
	d.Entity("DMP").Rules = []niidg.Rule{
		rules.If("accessRights", rules.In, []any{"Unshared", "Restricted Closed Sharing"}).
			RequireAny("availabilityStarts", "accessRightsInfo"),
		rules.If("gotInformedConsent", rules.Eq, "yes").Require("informedConsentFormat"),
		rules.Custom(func(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
			return dmp.RequireNumberedID(e)
		}),
		rules.Custom(checkMetadataFallback),
		rules.Custom(func(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
			return dmp.RequireSizeWithinCap(e, c, Profile, nil)
		}),
	}
	d.Entity("File").Rules = []niidg.Rule{base.PublishedDateRule()}
}

func hasDMPs(e *niidg.Entity) bool {
	v, ok := e.Get("hasPart")
	if !ok {
		return false
	}
	parts, ok := v.([]any)
	return ok && len(parts) > 0
}

// checkMetadataFallback requires a DMPMetadata entity and resolves the
// repository and distribution requirements against it: each must be on the
// DMP or on the metadata entity, distribution only for openly shared data.
func checkMetadataFallback(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
	meta, vs := dmp.RequireMetadata(e, c, Profile)
	if meta == nil {
		return vs
	}
	if dmp.MissingOnBoth(e, meta, "repository") {
		vs = append(vs, dmp.FallbackViolation(e, "repository"))
	}
	if access, _ := e.Get("accessRights"); access == "Unrestricted Open Sharing" && dmp.MissingOnBoth(e, meta, "distribution") {
		vs = append(vs, dmp.FallbackViolation(e, "distribution"))
	}
	return vs
}

// NewDMPMetadata declares the project-level DMP metadata entity with its
// fixed id and name.
func NewDMPMetadata(props map[string]any) (*niidg.Entity, error) {
	e, err := niidg.NewEntity(Profile, "DMPMetadata", MetadataID, niidg.WithProps(props))
	if err != nil {
		return nil, err
	}
	if err := e.Set("name", "AMED-DMP"); err != nil {
		return nil, err
	}
	return e, nil
}

// NewDMP declares DMP item n; the id and dataNumber are derived from n.
func NewDMP(n int, props map[string]any) (*niidg.Entity, error) {
	e, err := niidg.NewEntity(Profile, "DMP", dmp.IDPrefix+strconv.Itoa(n), niidg.WithProps(props))
	if err != nil {
		return nil, err
	}
	if err := e.Set("dataNumber", n); err != nil {
		return nil, err
	}
	return e, nil
}

// NewFile declares a file belonging to a DMP item.
func NewFile(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "File", id, niidg.WithProps(props))
}

// NewClinicalResearchRegistration declares a clinical registry record.
func NewClinicalResearchRegistration(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "ClinicalResearchRegistration", id, niidg.WithProps(props))
}
