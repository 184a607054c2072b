// Package schema loads profile definitions from YAML, compiles constraint
// notes into predicates, and builds definitions programmatically.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ivis-tsukioka/niidg"
)

type yamlDoc struct {
	Profile  string    `yaml:"profile"`
	Entities yaml.Node `yaml:"entities"`
}

type yamlEntity struct {
	Description string    `yaml:"description"`
	Kind        string    `yaml:"kind"`
	Props       yaml.Node `yaml:"props"`
}

type yamlProp struct {
	ExpectedType string    `yaml:"expected_type"`
	Example      string    `yaml:"example"`
	Required     string    `yaml:"required"`
	Description  string    `yaml:"description"`
	Constraint   yaml.Node `yaml:"constraint"`
}

// ParseDefinition reads a profile definition from YAML. Entity types and
// properties keep their declaration order. Loading is strict about shape
// (unknown kinds, malformed type expressions and duplicate names are errors)
// but lenient about content it can skip: unknown mapping keys and
// unrecognized constraint notes only produce warnings on the returned Diag.
func ParseDefinition(data []byte) (*niidg.Definition, Diag, error) {
	diag := &simpleDiag{}

	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, diag, fmt.Errorf("parse definition: %w", err)
	}
	if doc.Profile == "" {
		return nil, diag, fmt.Errorf("definition has no profile")
	}
	if doc.Entities.Kind == 0 {
		return nil, diag, fmt.Errorf("definition %s has no entities", doc.Profile)
	}
	if doc.Entities.Kind != yaml.MappingNode {
		return nil, diag, fmt.Errorf("definition %s: entities must be a mapping", doc.Profile)
	}

	var entities []*niidg.EntitySchema
	seen := map[string]bool{}
	for i := 0; i+1 < len(doc.Entities.Content); i += 2 {
		name := doc.Entities.Content[i].Value
		if seen[name] {
			return nil, diag, fmt.Errorf("definition %s: duplicate entity type %s", doc.Profile, name)
		}
		seen[name] = true

		es, err := parseEntity(doc.Profile, name, doc.Entities.Content[i+1], diag)
		if err != nil {
			return nil, diag, err
		}
		entities = append(entities, es)
	}

	def := &niidg.Definition{Profile: doc.Profile, Entities: entities}
	def.ResolveRefTypes()
	return def, diag, nil
}

// MustParseDefinition is ParseDefinition for embedded definitions that are
// known to be well formed. It panics on error.
func MustParseDefinition(data []byte) *niidg.Definition {
	def, _, err := ParseDefinition(data)
	if err != nil {
		panic(err)
	}
	return def
}

func parseEntity(profile, name string, node *yaml.Node, diag *simpleDiag) (*niidg.EntitySchema, error) {
	var ye yamlEntity
	if err := node.Decode(&ye); err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}
	warnUnknownKeys(diag, node, "entity "+name, "description", "kind", "props")

	kind, err := parseKind(ye.Kind)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}

	var props []niidg.PropertySchema
	if ye.Props.Kind != 0 {
		if ye.Props.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("entity %s: props must be a mapping", name)
		}
		seen := map[string]bool{}
		for i := 0; i+1 < len(ye.Props.Content); i += 2 {
			pname := ye.Props.Content[i].Value
			if seen[pname] {
				return nil, fmt.Errorf("entity %s: duplicate property %s", name, pname)
			}
			seen[pname] = true

			ps, err := parseProp(profile, name, pname, ye.Props.Content[i+1], diag)
			if err != nil {
				return nil, err
			}
			props = append(props, ps)
		}
	}

	return &niidg.EntitySchema{
		Profile:     profile,
		Name:        name,
		Kind:        kind,
		Props:       props,
		Description: ye.Description,
	}, nil
}

func parseProp(profile, entity, name string, node *yaml.Node, diag *simpleDiag) (niidg.PropertySchema, error) {
	var yp yamlProp
	if err := node.Decode(&yp); err != nil {
		return niidg.PropertySchema{}, fmt.Errorf("entity %s: property %s: %w", entity, name, err)
	}
	warnUnknownKeys(diag, node, fmt.Sprintf("entity %s: property %s", entity, name),
		"expected_type", "example", "required", "description", "constraint")

	typ, err := niidg.ParseType(yp.ExpectedType, profile)
	if err != nil {
		return niidg.PropertySchema{}, fmt.Errorf("entity %s: property %s: %w", entity, name, err)
	}

	var required bool
	switch yp.Required {
	case "Required.":
		required = true
	case "Optional.", "":
	default:
		diag.warnf("entity %s: property %s: unrecognized required marker %q", entity, name, yp.Required)
	}

	notes, err := constraintNotes(yp.Constraint)
	if err != nil {
		return niidg.PropertySchema{}, fmt.Errorf("entity %s: property %s: %w", entity, name, err)
	}
	var constraints []niidg.Predicate
	for _, note := range notes {
		p, ok := CompileConstraint(note)
		if !ok {
			diag.warnf("entity %s: property %s: unrecognized constraint %q", entity, name, note)
		}
		constraints = append(constraints, p)
	}

	return niidg.PropertySchema{
		Name:        name,
		Type:        typ,
		Required:    required,
		Constraints: constraints,
		Description: yp.Description,
		Example:     yp.Example,
	}, nil
}

func parseKind(s string) (niidg.Kind, error) {
	switch s {
	case "", "contextual":
		return niidg.KindContextual, nil
	case "data":
		return niidg.KindData, nil
	case "default":
		return niidg.KindDefault, nil
	default:
		return niidg.KindContextual, fmt.Errorf("unknown kind %q", s)
	}
}

func constraintNotes(node yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var notes []string
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("constraint entries must be strings")
			}
			notes = append(notes, item.Value)
		}
		return notes, nil
	default:
		return nil, fmt.Errorf("constraint must be a string or a list of strings")
	}
}

func warnUnknownKeys(diag *simpleDiag, node *yaml.Node, where string, known ...string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		found := false
		for _, k := range known {
			if key == k {
				found = true
				break
			}
		}
		if !found {
			diag.warnf("%s: unknown key %q", where, key)
		}
	}
}
