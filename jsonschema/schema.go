// Package jsonschema renders entity schemas as JSON Schema documents so
// profile definitions can be consumed by editors and generic validators.
package jsonschema

// Schema is the slice of JSON Schema (draft 2020-12) the export needs.
// Fields marshal in declaration order, which keeps output stable.
type Schema struct {
	SchemaURI   string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// Comment carries constraint notes that have no structural JSON Schema
	// equivalent, such as "Must be an ORCID iD.".
	Comment string `json:"$comment,omitempty"`

	Type   string   `json:"type,omitempty"`
	Format string   `json:"format,omitempty"`
	Enum   []string `json:"enum,omitempty"`

	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	Items *Schema `json:"items,omitempty"`

	AnyOf []*Schema `json:"anyOf,omitempty"`

	Examples []string `json:"examples,omitempty"`
}
