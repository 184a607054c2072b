package jsonld

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ivis-tsukioka/niidg"
)

// Unmarshal parses an RO-Crate metadata document into a crate, resolving
// each graph node against the registered profile definitions. Problems with
// individual nodes (unknown types, malformed ids, duplicate ids) are
// collected and returned together as violations; a document that is not an
// RO-Crate at all is a plain error.
func Unmarshal(data []byte) (*niidg.Crate, error) {
	var doc struct {
		Context any              `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsonld: %w", err)
	}
	if ctx, ok := doc.Context.(string); !ok || ctx != ContextURI {
		return nil, fmt.Errorf("jsonld: unexpected @context %v", doc.Context)
	}
	if len(doc.Graph) == 0 {
		return nil, fmt.Errorf("jsonld: empty @graph")
	}

	c := niidg.New()
	var (
		vs            niidg.Violations
		sawDescriptor bool
		sawRoot       bool
	)
	for _, node := range doc.Graph {
		id, ok := node["@id"].(string)
		if !ok || id == "" {
			v := niidg.NewViolation("", "@id", niidg.CodeTypeMismatch, map[string]any{
				"expected": "str",
				"actual":   jsonTypeName(node["@id"]),
			})
			v.Hint = "every graph node needs a string @id"
			vs = append(vs, v)
			continue
		}
		switch id {
		case niidg.MetadataID:
			// The descriptor carries no crate data and is regenerated on
			// output.
			sawDescriptor = true
		case niidg.RootID:
			sawRoot = true
			vs = append(vs, restoreRoot(c, node)...)
		default:
			e, evs := decodeEntity(id, node)
			vs = append(vs, evs...)
			if e != nil {
				if err := c.Add(e); err != nil {
					if got, ok := niidg.AsViolations(err); ok {
						vs = append(vs, got...)
					}
				}
			}
		}
	}
	if !sawDescriptor {
		return nil, fmt.Errorf("jsonld: no %s descriptor in @graph", niidg.MetadataID)
	}
	if !sawRoot {
		return nil, fmt.Errorf("jsonld: no root data entity %q in @graph", niidg.RootID)
	}
	if len(vs) > 0 {
		return nil, vs.AsError()
	}
	return c, nil
}

// restoreRoot installs the document's root properties on the crate root.
// hasPart is dropped because it is computed from the crate's data entities
// on output.
func restoreRoot(c *niidg.Crate, node map[string]any) niidg.Violations {
	var vs niidg.Violations
	if typ, ok := node["@type"].(string); !ok || typ != rootType {
		v := niidg.NewViolation(niidg.RootID, "@type", niidg.CodeTypeMismatch, map[string]any{
			"expected": rootType,
			"actual":   stringOrTypeName(node["@type"]),
		})
		v.Hint = "the root data entity serializes as Dataset"
		vs = append(vs, v)
	}

	root := c.Root()
	props := make(map[string]any)
	for k, v := range node {
		switch k {
		case "@id", "@type", "@context", "hasPart":
			continue
		}
		props[k] = v
	}
	root.RestoreProps(narrowProps(root.Schema(), props))
	return vs
}

func decodeEntity(id string, node map[string]any) (*niidg.Entity, niidg.Violations) {
	typ, ok := node["@type"].(string)
	if !ok || typ == "" {
		v := niidg.NewViolation(id, "@type", niidg.CodeTypeMismatch, map[string]any{
			"expected": "str",
			"actual":   jsonTypeName(node["@type"]),
		})
		v.Hint = "every graph node needs a string @type"
		return nil, niidg.Violations{v}
	}

	profile := niidg.ProfileBase
	if ctx, ok := node["@context"].(string); ok {
		if p, _, parsed := ParseContextURL(ctx); parsed {
			profile = p
		}
	}

	e, err := niidg.NewEntity(profile, typ, id)
	if err != nil {
		got, _ := niidg.AsViolations(err)
		return nil, got
	}

	props := make(map[string]any)
	for k, v := range node {
		switch k {
		case "@id", "@type", "@context":
			continue
		}
		props[k] = v
	}
	e.RestoreProps(narrowProps(e.Schema(), props))
	return e, nil
}

// ParseContextURL extracts the profile and entity type name from a per-type
// context URI of the form .../schema/context/<profile>/<TypeName>.json.
func ParseContextURL(u string) (profile, entity string, ok bool) {
	parts := strings.Split(u, "/")
	for i := len(parts) - 4; i >= 0; i-- {
		if parts[i] != "schema" || parts[i+1] != "context" || i+3 != len(parts)-1 {
			continue
		}
		profile = parts[i+2]
		name := parts[i+3]
		if profile == "" || !strings.HasSuffix(name, ".json") || name == ".json" {
			return "", "", false
		}
		return profile, strings.TrimSuffix(name, ".json"), true
	}
	return "", "", false
}

// narrowProps converts integral JSON numbers to ints for properties the
// schema declares as integers, so decoded values compare equal to values
// assigned through the API.
func narrowProps(es *niidg.EntitySchema, props map[string]any) map[string]any {
	if es == nil {
		return props
	}
	for k, v := range props {
		if p, ok := es.Prop(k); ok {
			props[k] = narrow(v, p.Type)
		}
	}
	return props
}

func narrow(v any, t niidg.Type) any {
	switch t.Kind {
	case niidg.TypeInt:
		if f, ok := v.(float64); ok && !math.IsInf(f, 0) && f == math.Trunc(f) {
			return int(f)
		}
	case niidg.TypeList:
		if xs, ok := v.([]any); ok {
			for i, item := range xs {
				xs[i] = narrow(item, *t.Elem)
			}
		}
	case niidg.TypeOptional:
		return narrow(v, *t.Elem)
	case niidg.TypeUnion:
		for _, alt := range t.Alts {
			if alt.Kind == niidg.TypeInt {
				return narrow(v, alt)
			}
		}
	}
	return v
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "str"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func stringOrTypeName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return jsonTypeName(v)
}
