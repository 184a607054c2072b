package niidg

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Entity is one node of a crate: an identifier, a schema binding resolved
// against the registry, and a property map.
type Entity struct {
	id      string
	profile string
	typ     string
	schema  *EntitySchema // nil when the registry has no schema for (profile, typ)
	props   map[string]any
}

// EntityOpt configures an entity at construction time.
type EntityOpt func(*Entity) error

// WithProps assigns initial properties, as if by SetProps.
func WithProps(props map[string]any) EntityOpt {
	return func(e *Entity) error { return e.SetProps(props) }
}

// NewEntity builds an entity of a registered type. An empty id is replaced
// with a blank node id.
func NewEntity(profile, typ, id string, opts ...EntityOpt) (*Entity, error) {
	schema, err := Global().Lookup(profile, typ)
	if err != nil {
		return nil, err
	}
	e := newEntity(profile, typ, id, schema)
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func newEntity(profile, typ, id string, schema *EntitySchema) *Entity {
	if id == "" {
		id = BlankID()
	}
	return &Entity{
		id:      id,
		profile: profile,
		typ:     typ,
		schema:  schema,
		props:   map[string]any{},
	}
}

// ID returns the entity identifier ("@id" in serialized form).
func (e *Entity) ID() string { return e.id }

// Profile returns the name of the profile the entity's type belongs to.
func (e *Entity) Profile() string { return e.profile }

// TypeName returns the entity type name within its profile.
func (e *Entity) TypeName() string { return e.typ }

// Schema returns the bound entity schema, or nil when the registry had no
// schema for the entity's profile and type.
func (e *Entity) Schema() *EntitySchema { return e.schema }

// Context returns the per-type context URI for the entity.
func (e *Entity) Context() string { return ContextURL(e.profile, e.typ) }

// Set assigns a property value. The name must be declared in the entity's
// schema. "@id" rewrites the identifier; other names beginning with "@"
// are structural and cannot be assigned. Entity values are stored as weak
// references. Type and constraint conformance is not checked here; it
// surfaces at validation, so entities can be built up incrementally.
func (e *Entity) Set(name string, value any) error {
	if name == "@id" {
		s, ok := value.(string)
		if !ok || s == "" {
			v := NewViolation(e.id, name, CodeTypeMismatch, map[string]any{
				"expected": "str",
				"actual":   valueTypeName(value),
			})
			v.Hint = "@id must be a non-empty string"
			return v
		}
		e.id = s
		return nil
	}
	if strings.HasPrefix(name, "@") {
		v := NewViolation(e.id, name, CodeSchemaViolation, map[string]any{"type": e.typ})
		v.Hint = "structural keys other than @id cannot be assigned"
		return v
	}
	if e.schema != nil {
		if _, ok := e.schema.Prop(name); !ok {
			return NewViolation(e.id, name, CodeSchemaViolation, map[string]any{"type": e.typ})
		}
	}
	e.props[name] = normalizeValue(value)
	return nil
}

// SetProps assigns every property in the map, in sorted name order, and
// aggregates all failures into Violations.
func (e *Entity) SetProps(props map[string]any) error {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	var vs Violations
	for _, k := range names {
		if err := e.Set(k, props[k]); err != nil {
			got, ok := AsViolations(err)
			if !ok {
				return err
			}
			vs = AppendViolations(vs, got...)
		}
	}
	return vs.AsError()
}

// RestoreProps installs properties without declaration checks. The JSON-LD
// decoder uses it so that undeclared names in a document surface at
// validation instead of at load time.
func (e *Entity) RestoreProps(props map[string]any) {
	for k, v := range props {
		e.props[k] = normalizeValue(v)
	}
}

// Get returns a property value.
func (e *Entity) Get(name string) (any, bool) {
	v, ok := e.props[name]
	return v, ok
}

// Delete removes a property. Deleting an unassigned name is a no-op.
func (e *Entity) Delete(name string) { delete(e.props, name) }

// Keys returns the assigned property names in sorted order.
func (e *Entity) Keys() []string {
	names := make([]string, 0, len(e.props))
	for k := range e.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Props returns a copy of the property map.
func (e *Entity) Props() map[string]any {
	out := make(map[string]any, len(e.props))
	for k, v := range e.props {
		out[k] = v
	}
	return out
}

// String renders the entity as "<TypeName id>" for debug output.
func (e *Entity) String() string {
	return fmt.Sprintf("<%s %s>", e.typ, e.id)
}

// normalizeValue rewrites entities into weak references and arbitrary
// slices into []any so that stored values match the JSON-decoded shape.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case *Entity:
		return Ref{ID: t.id}
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalizeValue(el)
		}
		return out
	case map[string]any:
		if id, ok := refID(t); ok {
			return Ref{ID: id}
		}
		return t
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// refID recognizes the serialized form of a reference, a map holding
// exactly one "@id" key.
func refID(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	id, ok := m["@id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
