// Package ginfork provides the schema profile for crates monitored on a
// GIN-fork instance. Its GinMonitoring entity declares how the experiment
// packages in the repository are laid out and how large they may grow,
// and the profile's File entities carry a flag marking which files belong
// to an experiment package.
package ginfork

import (
	_ "embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/profiles/base"
	"github.com/ivis-tsukioka/niidg/profiles/internal/dmp"
	"github.com/ivis-tsukioka/niidg/rules"
	"github.com/ivis-tsukioka/niidg/schema"
)

// Profile is the name this package registers its entities under.
const Profile = "ginfork"

// MonitoringID is the fixed identifier of the GinMonitoring entity.
const MonitoringID = "#ginmonitoring"

//go:embed ginfork.yml
var definitionYAML []byte

var (
	defOnce sync.Once
	def     *niidg.Definition
)

// Definition returns the ginfork profile definition.
func Definition() *niidg.Definition {
	defOnce.Do(func() {
		def = schema.MustParseDefinition(definitionYAML)
		attachRules(def)
	})
	return def
}

// requiredDirectories maps a datasetStructure value to the directory
// names every experiment package must contain.
var requiredDirectories = map[string][]string{
	"with_code":     {"source", "input_data", "output_data"},
	"for_parameter": {"source", "input_data"},
}

func attachRules(d *niidg.Definition) {
	d.Entity("GinMonitoring").Rules = []niidg.Rule{
		rules.Custom(checkAboutIsRoot),
		rules.Custom(checkDirectoryLayout),
		rules.Custom(func(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
			return dmp.RequireSizeWithinCap(e, c, Profile, isExperimentPackage)
		}),
	}
	d.Entity("File").Rules = []niidg.Rule{
		base.PublishedDateRule(),
	}
}

// checkAboutIsRoot requires the about property to reference the root
// data entity of the crate.
func checkAboutIsRoot(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
	v, ok := e.Get("about")
	if !ok {
		return nil
	}
	if ref, ok := v.(niidg.Ref); ok && ref.ID == c.Root().ID() {
		return nil
	}
	out := niidg.NewViolation(e.ID(), "about", niidg.CodeConstraintFailed, map[string]any{
		"note": "must reference the root data entity of this crate",
	})
	return niidg.Violations{out}
}

// checkDirectoryLayout verifies that the Dataset entities of the crate
// include the directories the declared datasetStructure calls for, and
// that those directories sit under one common parent.
func checkDirectoryLayout(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
	structure, _ := dmp.StringProp(e, "datasetStructure")
	required := requiredDirectories[structure]
	if required == nil {
		return nil
	}

	// Index directory basenames to the set of parents they appear under.
	parents := make(map[string]map[string]bool)
	for _, d := range c.GetByType(niidg.ProfileBase, "Dataset") {
		p := strings.TrimSuffix(d.ID(), "/")
		name := path.Base(p)
		if parents[name] == nil {
			parents[name] = make(map[string]bool)
		}
		parents[name][path.Dir(p)] = true
	}

	var missing []string
	for _, name := range required {
		if len(parents[name]) == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		v := niidg.NewViolation(e.ID(), "datasetStructure", niidg.CodeConstraintFailed, map[string]any{
			"note": fmt.Sprintf("required directories not found: %s", strings.Join(missing, ", ")),
		})
		return niidg.Violations{v}
	}

	common := parents[required[0]]
	for _, name := range required[1:] {
		next := make(map[string]bool)
		for p := range parents[name] {
			if common[p] {
				next[p] = true
			}
		}
		common = next
	}
	if len(common) == 0 {
		v := niidg.NewViolation(e.ID(), "datasetStructure", niidg.CodeConstraintFailed, map[string]any{
			"note": fmt.Sprintf("directories %s must share one parent directory", strings.Join(required, ", ")),
		})
		return niidg.Violations{v}
	}
	return nil
}

func isExperimentPackage(f *niidg.Entity) bool {
	v, ok := f.Get("experimentPackageFlag")
	return ok && v == true
}

// NewGinMonitoring creates the GinMonitoring entity. Its identifier is
// fixed, so only the remaining properties are taken.
func NewGinMonitoring(props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "GinMonitoring", MonitoringID, niidg.WithProps(props))
}

// NewFile creates a ginfork File entity.
func NewFile(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "File", id, niidg.WithProps(props))
}
