package niidg

import (
	"fmt"
	"strings"

	"github.com/ivis-tsukioka/niidg/checks"
)

// TypeKind enumerates the forms a declared property type can take.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeURL
	TypeDate
	TypeAny
	TypeList
	TypeOptional
	TypeUnion
	TypeLiteral
	TypeRef
)

// Type is a parsed type expression from a schema definition, e.g.
// "str", "List[Person]", "Literal[\"open access\", \"embargoed access\"]".
type Type struct {
	Kind TypeKind
	Elem *Type    // element type for List/Optional
	Alts []Type   // alternatives for Union
	Enum []string // allowed values for Literal
	// Reference expectations carry the profile the expression was declared
	// in; Definition.ResolveRefTypes rewrites it to "base" when the
	// declaring profile does not define the named entity.
	Profile string
	Name    string // referenced entity type name
}

// ParseType parses a type expression. Bare names that are not primitive
// tokens are treated as entity references declared in profile.
func ParseType(expr, profile string) (Type, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "":
		return Type{}, fmt.Errorf("empty type expression")
	case "str":
		return Type{Kind: TypeString}, nil
	case "int":
		return Type{Kind: TypeInt}, nil
	case "float":
		return Type{Kind: TypeFloat}, nil
	case "bool":
		return Type{Kind: TypeBool}, nil
	case "url":
		return Type{Kind: TypeURL}, nil
	case "date":
		return Type{Kind: TypeDate}, nil
	case "Any":
		return Type{Kind: TypeAny}, nil
	}
	switch {
	case strings.HasPrefix(expr, "List[") && strings.HasSuffix(expr, "]"):
		elem, err := ParseType(expr[len("List["):len(expr)-1], profile)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: TypeList, Elem: &elem}, nil
	case strings.HasPrefix(expr, "Optional[") && strings.HasSuffix(expr, "]"):
		elem, err := ParseType(expr[len("Optional["):len(expr)-1], profile)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: TypeOptional, Elem: &elem}, nil
	case strings.HasPrefix(expr, "Union[") && strings.HasSuffix(expr, "]"):
		parts := splitTopLevel(expr[len("Union[") : len(expr)-1])
		if len(parts) < 2 {
			return Type{}, fmt.Errorf("union needs at least two alternatives: %s", expr)
		}
		alts := make([]Type, 0, len(parts))
		for _, p := range parts {
			alt, err := ParseType(p, profile)
			if err != nil {
				return Type{}, err
			}
			alts = append(alts, alt)
		}
		return Type{Kind: TypeUnion, Alts: alts}, nil
	case strings.HasPrefix(expr, "Literal[") && strings.HasSuffix(expr, "]"):
		parts := splitTopLevel(expr[len("Literal[") : len(expr)-1])
		if len(parts) == 0 {
			return Type{}, fmt.Errorf("literal needs at least one value: %s", expr)
		}
		enum := make([]string, 0, len(parts))
		for _, p := range parts {
			enum = append(enum, strings.Trim(p, `"'`))
		}
		return Type{Kind: TypeLiteral, Enum: enum}, nil
	}
	if strings.ContainsAny(expr, "[]") {
		return Type{}, fmt.Errorf("unexpected type expression: %s", expr)
	}
	if profile == "" {
		profile = ProfileBase
	}
	return Type{Kind: TypeRef, Profile: profile, Name: expr}, nil
}

// MustParseType is ParseType that panics on error; intended for
// package-level schema declarations.
func MustParseType(expr, profile string) Type {
	t, err := ParseType(expr, profile)
	if err != nil {
		panic(err)
	}
	return t
}

// splitTopLevel splits a comma-separated list while respecting brackets,
// so "List[Union[a, b]], c" yields two parts.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

// Check reports whether the value conforms to the type. Reference
// expectations only check the value is a Ref; whether the target exists and
// has the expected type is the validator's concern.
func (t Type) Check(v any) bool {
	switch t.Kind {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeInt:
		return isIntValue(v)
	case TypeFloat:
		switch v.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeURL:
		s, ok := v.(string)
		return ok && checks.IsURL(s)
	case TypeDate:
		s, ok := v.(string)
		return ok && checks.IsISODate(s)
	case TypeAny:
		return true
	case TypeList:
		items, ok := v.([]any)
		if !ok {
			return false
		}
		for _, it := range items {
			if !t.Elem.Check(it) {
				return false
			}
		}
		return true
	case TypeOptional:
		return v == nil || t.Elem.Check(v)
	case TypeUnion:
		for _, alt := range t.Alts {
			if alt.Check(v) {
				return true
			}
		}
		return false
	case TypeLiteral:
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, e := range t.Enum {
			if s == e {
				return true
			}
		}
		return false
	case TypeRef:
		_, ok := v.(Ref)
		return ok
	}
	return false
}

func isIntValue(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == float64(int64(n))
	}
	return false
}

// MatchesEntity reports whether a resolved reference target satisfies a
// TypeRef expectation. Expectations resolved against base accept the type
// name from any profile; profile-specific expectations require the profile
// to match as well.
func (t Type) MatchesEntity(e *Entity) bool {
	if t.Kind != TypeRef || e == nil {
		return false
	}
	if e.TypeName() != t.Name {
		return false
	}
	return t.Profile == ProfileBase || e.Profile() == t.Profile
}

// RefTypes returns the reference expectations reachable from the type, in
// declaration order.
func (t Type) RefTypes() []Type {
	var out []Type
	switch t.Kind {
	case TypeRef:
		out = append(out, t)
	case TypeList, TypeOptional:
		out = append(out, t.Elem.RefTypes()...)
	case TypeUnion:
		for _, alt := range t.Alts {
			out = append(out, alt.RefTypes()...)
		}
	}
	return out
}

// String renders the canonical type expression.
func (t Type) String() string {
	switch t.Kind {
	case TypeString:
		return "str"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeURL:
		return "url"
	case TypeDate:
		return "date"
	case TypeAny:
		return "Any"
	case TypeList:
		return "List[" + t.Elem.String() + "]"
	case TypeOptional:
		return "Optional[" + t.Elem.String() + "]"
	case TypeUnion:
		parts := make([]string, len(t.Alts))
		for i, alt := range t.Alts {
			parts[i] = alt.String()
		}
		return "Union[" + strings.Join(parts, ", ") + "]"
	case TypeLiteral:
		parts := make([]string, len(t.Enum))
		for i, e := range t.Enum {
			parts[i] = `"` + e + `"`
		}
		return "Literal[" + strings.Join(parts, ", ") + "]"
	case TypeRef:
		return t.Name
	}
	return "invalid"
}

// valueTypeName describes a property value's dynamic type for violation
// params.
func valueTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "float"
	case Ref:
		return "ref"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
