// Package base provides the RO-Crate common vocabulary: generic files,
// directories, people and organizations that the governance profiles build
// on. Register it (together with any other profiles) via niidg.Init before
// constructing entities.
package base

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/checks"
	"github.com/ivis-tsukioka/niidg/rules"
	"github.com/ivis-tsukioka/niidg/schema"
)

// Profile is the name this vocabulary registers under.
const Profile = niidg.ProfileBase

//go:embed base.yml
var definitionYAML []byte

var (
	once sync.Once
	def  *niidg.Definition
)

// Definition returns the base profile definition with its rules attached.
// The embedded YAML is parsed once.
func Definition() *niidg.Definition {
	once.Do(func() {
		def = schema.MustParseDefinition(definitionYAML)
		attachRules(def)
	})
	return def
}

func attachRules(d *niidg.Definition) {
	d.Entity("File").Rules = []niidg.Rule{PublishedDateRule()}
	d.Entity("Person").Rules = []niidg.Rule{CheckORCID}
	d.Entity("ContactPoint").Rules = []niidg.Rule{
		rules.Always().RequireAny("email", "telephone"),
	}
}

// HasURLID reports whether the entity id is a URL rather than a crate-local
// path. Profiles that narrow File reuse it.
func HasURLID(e *niidg.Entity) bool {
	c, err := checks.ClassifyURI(e.ID())
	return err == nil && c == checks.URIURL
}

// PublishedDateRule requires sdDatePublished on files fetched from the
// Internet, identified by a URL id.
func PublishedDateRule() niidg.Rule {
	return rules.When(HasURLID).Require("sdDatePublished")
}

const orcidPrefix = "https://orcid.org/"

// CheckORCID verifies the checksum of ids that claim to be ORCID iDs.
// Ids outside orcid.org pass untouched.
func CheckORCID(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
	id := e.ID()
	if !strings.HasPrefix(id, orcidPrefix) {
		return nil
	}
	if checks.IsORCID(strings.TrimPrefix(id, orcidPrefix)) {
		return nil
	}
	v := niidg.NewViolation(id, "@id", niidg.CodeConstraintFailed, map[string]any{
		"note": "Must be an ORCID iD.",
	})
	return niidg.Violations{v}
}

// NewFile declares a file at the given crate-relative path or URL.
func NewFile(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "File", id, niidg.WithProps(props))
}

// NewDataset declares a directory at the given crate-relative path.
func NewDataset(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "Dataset", id, niidg.WithProps(props))
}

// NewOrganization declares an organization identified by URL.
func NewOrganization(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "Organization", id, niidg.WithProps(props))
}

// NewHostingInstitution declares an organization hosting research data.
func NewHostingInstitution(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "HostingInstitution", id, niidg.WithProps(props))
}

// NewPerson declares a person identified by URL, preferably an ORCID iD.
func NewPerson(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "Person", id, niidg.WithProps(props))
}

// NewLicense declares a license identified by URL.
func NewLicense(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "License", id, niidg.WithProps(props))
}

// NewRepositoryObject declares a research data repository.
func NewRepositoryObject(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "RepositoryObject", id, niidg.WithProps(props))
}

// NewDataDownload declares a downloadable distribution.
func NewDataDownload(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "DataDownload", id, niidg.WithProps(props))
}

// NewContactPoint declares a contact point with a fragment id.
func NewContactPoint(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "ContactPoint", id, niidg.WithProps(props))
}
