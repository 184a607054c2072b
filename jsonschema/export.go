package jsonschema

import (
	"fmt"
	"strings"

	"github.com/ivis-tsukioka/niidg"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// Export renders the schema document for one entity type. The document is
// identified by the type's context URI and mirrors the declared properties:
// required markers become the required array, literal types become enums,
// and constraint notes that have no JSON Schema equivalent are preserved in
// $comment.
func Export(es *niidg.EntitySchema) *Schema {
	out := &Schema{
		SchemaURI:   draft,
		ID:          es.Context(),
		Title:       es.Name,
		Description: es.Description,
		Type:        "object",
		Properties:  make(map[string]*Schema, len(es.Props)),
	}
	for _, p := range es.Props {
		ps := typeSchema(p.Type)
		ps.Description = p.Description
		if p.Example != "" {
			ps.Examples = []string{p.Example}
		}
		if notes := noteTexts(p.Constraints); len(notes) > 0 {
			ps.Comment = strings.Join(notes, " ")
		}
		out.Properties[p.Name] = ps
		if p.Required {
			out.Required = append(out.Required, p.Name)
		}
	}
	return out
}

// ExportDefinition renders the schema documents for every entity type of a
// profile, keyed by type name.
func ExportDefinition(d *niidg.Definition) map[string]*Schema {
	out := make(map[string]*Schema, len(d.Entities))
	for _, es := range d.Entities {
		out[es.Name] = Export(es)
	}
	return out
}

func typeSchema(t niidg.Type) *Schema {
	switch t.Kind {
	case niidg.TypeString:
		return &Schema{Type: "string"}
	case niidg.TypeInt:
		return &Schema{Type: "integer"}
	case niidg.TypeFloat:
		return &Schema{Type: "number"}
	case niidg.TypeBool:
		return &Schema{Type: "boolean"}
	case niidg.TypeURL:
		return &Schema{Type: "string", Format: "uri"}
	case niidg.TypeDate:
		return &Schema{Type: "string", Format: "date"}
	case niidg.TypeLiteral:
		return &Schema{Type: "string", Enum: append([]string(nil), t.Enum...)}
	case niidg.TypeList:
		return &Schema{Type: "array", Items: typeSchema(*t.Elem)}
	case niidg.TypeOptional:
		return &Schema{AnyOf: []*Schema{typeSchema(*t.Elem), {Type: "null"}}}
	case niidg.TypeUnion:
		alts := make([]*Schema, len(t.Alts))
		for i, alt := range t.Alts {
			alts[i] = typeSchema(alt)
		}
		return &Schema{AnyOf: alts}
	case niidg.TypeRef:
		return refSchema(t)
	default:
		return &Schema{}
	}
}

// refSchema describes the JSON-LD reference object form, {"@id": "..."}.
func refSchema(t niidg.Type) *Schema {
	return &Schema{
		Type:    "object",
		Comment: fmt.Sprintf("Reference to a %s entity.", t.Name),
		Properties: map[string]*Schema{
			"@id": {Type: "string"},
		},
		Required: []string{"@id"},
	}
}

func noteTexts(preds []niidg.Predicate) []string {
	var notes []string
	for _, p := range preds {
		if p.Note != "" {
			notes = append(notes, p.Note)
		}
	}
	return notes
}
