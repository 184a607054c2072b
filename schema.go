package niidg

import "sort"

// ProfileBase names the common vocabulary profile. Reference expectations
// that a profile does not declare itself resolve against it.
const ProfileBase = "base"

// Kind classifies entity types the way RO-Crate does: data entities are
// files and directories that belong to the root's hasPart, contextual
// entities are metadata nodes, and default entities are the fixed crate
// scaffolding (root, metadata descriptor).
type Kind int

const (
	KindContextual Kind = iota
	KindData
	KindDefault
)

// String returns the YAML token for the kind.
func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindDefault:
		return "default"
	default:
		return "contextual"
	}
}

// Predicate is a compiled constraint note. Fn reports whether a property
// value satisfies the note; Note keeps the source text so failures can cite
// it. A nil Fn is a no-op predicate (unrecognized note, flagged at load).
type Predicate struct {
	Note string
	Fn   func(v any) bool
}

// Holds reports whether the value satisfies the predicate. No-op predicates
// always hold.
func (p Predicate) Holds(v any) bool {
	if p.Fn == nil {
		return true
	}
	return p.Fn(v)
}

// Rule is a cross-property or cross-entity check evaluated by the validator
// after property-level checks. Rules never mutate the entity or the crate.
type Rule func(e *Entity, c *Crate) Violations

// PropertySchema declares one property of an entity type.
type PropertySchema struct {
	Name        string
	Type        Type
	Required    bool
	Constraints []Predicate
	Description string
	Example     string
}

// CheckConstraints evaluates the compiled predicates against a value and
// returns the notes that failed, in declaration order.
func (p PropertySchema) CheckConstraints(v any) []string {
	var failed []string
	for _, c := range p.Constraints {
		if !c.Holds(v) {
			failed = append(failed, c.Note)
		}
	}
	return failed
}

// EntitySchema declares one entity type of a profile: its properties in
// declaration order plus the profile rules that run during validation.
type EntitySchema struct {
	Profile string
	Name    string
	Kind    Kind
	Props   []PropertySchema
	Rules   []Rule
	// Description carries the schema author's prose for tooling.
	Description string
}

// Prop looks up a property schema by name.
func (es *EntitySchema) Prop(name string) (PropertySchema, bool) {
	for _, p := range es.Props {
		if p.Name == name {
			return p, true
		}
	}
	return PropertySchema{}, false
}

// PropNames returns the declared property names in declaration order.
func (es *EntitySchema) PropNames() []string {
	names := make([]string, len(es.Props))
	for i, p := range es.Props {
		names[i] = p.Name
	}
	return names
}

// RequiredProps returns the required property names in declaration order.
func (es *EntitySchema) RequiredProps() []string {
	var names []string
	for _, p := range es.Props {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Context returns the per-type context URI for the entity type, built from
// the configured context source.
func (es *EntitySchema) Context() string {
	return ContextURL(es.Profile, es.Name)
}

// Definition groups the entity schemas of one profile.
type Definition struct {
	Profile  string
	Entities []*EntitySchema
}

// Entity looks up an entity schema by type name.
func (d *Definition) Entity(name string) *EntitySchema {
	for _, es := range d.Entities {
		if es.Name == name {
			return es
		}
	}
	return nil
}

// EntityNames returns the declared entity type names, sorted.
func (d *Definition) EntityNames() []string {
	names := make([]string, len(d.Entities))
	for i, es := range d.Entities {
		names[i] = es.Name
	}
	sort.Strings(names)
	return names
}

// ResolveRefTypes rewrites reference expectations whose entity name is not
// declared in this profile to resolve against base instead, mirroring how
// schema modules fall back to the base vocabulary. Loaders call it once the
// whole definition is parsed.
func (d *Definition) ResolveRefTypes() {
	for _, es := range d.Entities {
		for i := range es.Props {
			resolveRefs(&es.Props[i].Type, d)
		}
	}
}

func resolveRefs(t *Type, d *Definition) {
	switch t.Kind {
	case TypeRef:
		if t.Profile == d.Profile && d.Entity(t.Name) == nil {
			t.Profile = ProfileBase
		}
	case TypeList, TypeOptional:
		resolveRefs(t.Elem, d)
	case TypeUnion:
		for i := range t.Alts {
			resolveRefs(&t.Alts[i], d)
		}
	}
}
