package schema

import (
	"fmt"

	"github.com/ivis-tsukioka/niidg"
)

// Kind aliases so builder call sites read schema.Data instead of the longer
// niidg constant names.
const (
	Contextual = niidg.KindContextual
	Data       = niidg.KindData
	Default    = niidg.KindDefault
)

// DefinitionBuilder assembles a profile definition in code. It is the
// programmatic twin of ParseDefinition, used by profiles that attach Go
// rules to their entity types and by tests.
type DefinitionBuilder struct {
	profile  string
	entities []*niidg.EntitySchema
	diag     *simpleDiag
	err      error
}

// NewDefinition starts a definition for the named profile.
func NewDefinition(profile string) *DefinitionBuilder {
	return &DefinitionBuilder{profile: profile, diag: &simpleDiag{}}
}

// Entity declares an entity type. Modifiers on the returned builder apply
// to the entity until the first Prop call, then to the most recent property.
func (b *DefinitionBuilder) Entity(name string, kind niidg.Kind) *EntityBuilder {
	for _, es := range b.entities {
		if es.Name == name {
			b.fail(fmt.Errorf("duplicate entity type %s", name))
		}
	}
	es := &niidg.EntitySchema{Profile: b.profile, Name: name, Kind: kind}
	b.entities = append(b.entities, es)
	return &EntityBuilder{parent: b, es: es, last: -1}
}

// Build finalizes the definition. The first error raised while chaining is
// returned; warnings about unrecognized constraint notes land on the Diag.
func (b *DefinitionBuilder) Build() (*niidg.Definition, Diag, error) {
	if b.err != nil {
		return nil, b.diag, b.err
	}
	if b.profile == "" {
		return nil, b.diag, fmt.Errorf("definition has no profile")
	}
	def := &niidg.Definition{Profile: b.profile, Entities: b.entities}
	def.ResolveRefTypes()
	return def, b.diag, nil
}

// MustBuild is Build for definitions assembled from literals that are known
// to be well formed. It panics on error.
func (b *DefinitionBuilder) MustBuild() *niidg.Definition {
	def, _, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

func (b *DefinitionBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// EntityBuilder declares the properties and rules of one entity type.
type EntityBuilder struct {
	parent *DefinitionBuilder
	es     *niidg.EntitySchema
	last   int
}

// Prop declares a property with a type expression such as "str",
// "List[Person]" or "Optional[int]".
func (eb *EntityBuilder) Prop(name, typeExpr string) *EntityBuilder {
	for _, p := range eb.es.Props {
		if p.Name == name {
			eb.parent.fail(fmt.Errorf("entity %s: duplicate property %s", eb.es.Name, name))
			return eb
		}
	}
	typ, err := niidg.ParseType(typeExpr, eb.parent.profile)
	if err != nil {
		eb.parent.fail(fmt.Errorf("entity %s: property %s: %w", eb.es.Name, name, err))
		return eb
	}
	eb.es.Props = append(eb.es.Props, niidg.PropertySchema{Name: name, Type: typ})
	eb.last = len(eb.es.Props) - 1
	return eb
}

// Required marks the most recent property as required.
func (eb *EntityBuilder) Required() *EntityBuilder {
	if p := eb.prop("Required"); p != nil {
		p.Required = true
	}
	return eb
}

// Example records an example value for the most recent property.
func (eb *EntityBuilder) Example(s string) *EntityBuilder {
	if p := eb.prop("Example"); p != nil {
		p.Example = s
	}
	return eb
}

// Constraint compiles constraint notes onto the most recent property.
// Unrecognized notes are kept verbatim as no-op predicates and reported on
// the definition's Diag.
func (eb *EntityBuilder) Constraint(notes ...string) *EntityBuilder {
	p := eb.prop("Constraint")
	if p == nil {
		return eb
	}
	for _, note := range notes {
		pred, ok := CompileConstraint(note)
		if !ok {
			eb.parent.diag.warnf("entity %s: property %s: unrecognized constraint %q", eb.es.Name, p.Name, note)
		}
		p.Constraints = append(p.Constraints, pred)
	}
	return eb
}

// Description documents the entity when called before the first Prop, and
// the most recent property afterwards.
func (eb *EntityBuilder) Description(s string) *EntityBuilder {
	if eb.last < 0 {
		eb.es.Description = s
		return eb
	}
	eb.es.Props[eb.last].Description = s
	return eb
}

// Rule attaches validation rules to the entity type.
func (eb *EntityBuilder) Rule(rules ...niidg.Rule) *EntityBuilder {
	eb.es.Rules = append(eb.es.Rules, rules...)
	return eb
}

// Done returns to the definition builder.
func (eb *EntityBuilder) Done() *DefinitionBuilder {
	return eb.parent
}

func (eb *EntityBuilder) prop(op string) *niidg.PropertySchema {
	if eb.last < 0 {
		eb.parent.fail(fmt.Errorf("entity %s: %s called before any property", eb.es.Name, op))
		return nil
	}
	return &eb.es.Props[eb.last]
}
