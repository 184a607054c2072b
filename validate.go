package niidg

import (
	"sort"
	"strings"
)

// Validate walks the crate root and every added entity and aggregates all
// violations it can find. It never stops at the first failure and never
// mutates the crate. A nil result means the crate is valid.
//
// Reports are ordered deterministically: document-level duplicate ids
// first, then the root, then entities in insertion order; within one
// entity, undeclared names (sorted), then the schema's properties in
// declaration order, then rule violations.
func Validate(c *Crate) Violations {
	var vs Violations
	vs = append(vs, duplicateIDs(c)...)
	vs = append(vs, validateEntity(c.root, c)...)
	for _, e := range c.entities {
		vs = append(vs, validateEntity(e, c)...)
	}
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// duplicateIDs reports ids that occur more than once. Add refuses
// duplicates, but ids can be rewritten through Set("@id", ...) afterwards.
func duplicateIDs(c *Crate) Violations {
	seen := map[string]bool{RootID: true, MetadataID: true}
	var vs Violations
	for _, e := range c.entities {
		if seen[e.id] {
			vs = append(vs, NewViolation(e.id, "", CodeDuplicateID, map[string]any{"id": e.id}))
			continue
		}
		seen[e.id] = true
	}
	return vs
}

func validateEntity(e *Entity, c *Crate) Violations {
	if e.schema == nil {
		return Violations{NewViolation(e.id, "", CodeUnknownEntityType, map[string]any{
			"profile": e.profile,
			"type":    e.typ,
		})}
	}
	var vs Violations
	vs = append(vs, unexpectedProps(e)...)
	vs = append(vs, requiredProps(e)...)
	vs = append(vs, propValues(e, c)...)
	for _, r := range e.schema.Rules {
		vs = append(vs, r(e, c)...)
	}
	return vs
}

// unexpectedProps reports assigned names the schema does not declare.
// Structural "@" keys are not subject to declaration.
func unexpectedProps(e *Entity) Violations {
	var names []string
	for k := range e.props {
		if strings.HasPrefix(k, "@") {
			continue
		}
		if _, ok := e.schema.Prop(k); !ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	var vs Violations
	for _, k := range names {
		vs = append(vs, NewViolation(e.id, k, CodeSchemaViolation, map[string]any{"type": e.typ}))
	}
	return vs
}

func requiredProps(e *Entity) Violations {
	var vs Violations
	for _, p := range e.schema.Props {
		if !p.Required {
			continue
		}
		if v, ok := e.propValue(p.Name); !ok || v == nil {
			vs = append(vs, NewViolation(e.id, p.Name, CodeMissingRequired, map[string]any{"type": e.typ}))
		}
	}
	return vs
}

// propValues checks present values against their declared types, then
// constraint notes, then reference resolution. Constraints and references
// are only examined once the value has the declared shape.
func propValues(e *Entity, c *Crate) Violations {
	var vs Violations
	for _, p := range e.schema.Props {
		v, ok := e.propValue(p.Name)
		if !ok || v == nil {
			continue
		}
		if !p.Type.Check(v) {
			vs = append(vs, NewViolation(e.id, p.Name, CodeTypeMismatch, map[string]any{
				"expected": p.Type.String(),
				"actual":   valueTypeName(v),
			}))
			continue
		}
		for _, note := range p.CheckConstraints(v) {
			f := NewViolation(e.id, p.Name, CodeConstraintFailed, map[string]any{"note": note})
			f.Hint = note
			vs = append(vs, f)
		}
		vs = append(vs, refViolations(e, p, v, c)...)
	}
	return vs
}

// propValue resolves a declared property name to its current value. The
// "@id" property is backed by the entity identifier.
func (e *Entity) propValue(name string) (any, bool) {
	if name == "@id" {
		return e.id, true
	}
	v, ok := e.props[name]
	return v, ok
}

// refViolations resolves every reference in a value. Unresolved targets are
// dangling; resolved targets must satisfy one of the property's reference
// expectations when it has any.
func refViolations(e *Entity, p PropertySchema, v any, c *Crate) Violations {
	expects := p.Type.RefTypes()
	var vs Violations
	walkRefs(v, func(r Ref) {
		target, ok := c.Get(r.ID)
		if !ok {
			vs = append(vs, NewViolation(e.id, p.Name, CodeDanglingReference, map[string]any{"target": r.ID}))
			return
		}
		if len(expects) == 0 {
			return
		}
		for _, t := range expects {
			if t.MatchesEntity(target) {
				return
			}
		}
		f := NewViolation(e.id, p.Name, CodeTypeMismatch, map[string]any{
			"expected": p.Type.String(),
			"actual":   target.TypeName(),
		})
		f.Hint = "referenced entity has an unexpected type"
		vs = append(vs, f)
	})
	return vs
}

func walkRefs(v any, fn func(Ref)) {
	switch t := v.(type) {
	case Ref:
		fn(t)
	case []any:
		for _, el := range t {
			walkRefs(el, fn)
		}
	}
}
