// Package jsonld reads and writes crates as RO-Crate JSON-LD documents.
// Output is deterministic so that serializing the same crate twice yields
// identical bytes.
package jsonld

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/ivis-tsukioka/niidg"
)

const (
	// ContextURI is the document-level RO-Crate JSON-LD context.
	ContextURI = "https://w3id.org/ro/crate/1.1/context"
	// ConformsToURI names the RO-Crate version the descriptor points at.
	ConformsToURI = "https://w3id.org/ro/crate/1.1"

	// The root serializes with the RO-Crate Dataset type regardless of its
	// schema type name.
	rootType       = "Dataset"
	descriptorType = "CreativeWork"
)

// Marshal renders the crate as an RO-Crate metadata document. The @graph
// lists the metadata descriptor, then the root, then the remaining entities
// in insertion order; entity properties are sorted by name.
func Marshal(c *niidg.Crate) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders the crate to w, ending with a newline.
func Write(w io.Writer, c *niidg.Crate) error {
	if c == nil {
		return fmt.Errorf("jsonld: nil crate")
	}

	graph := make([]any, 0, c.Len()+2)
	graph = append(graph, descriptor())
	graph = append(graph, encodeRoot(c))
	for _, e := range c.Entities() {
		graph = append(graph, encodeEntity(e))
	}

	doc := &omap{}
	doc.set("@context", ContextURI)
	doc.set("@graph", graph)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func descriptor() *omap {
	m := &omap{}
	m.set("@id", niidg.MetadataID)
	m.set("@type", descriptorType)
	m.set("about", map[string]any{"@id": niidg.RootID})
	m.set("conformsTo", map[string]any{"@id": ConformsToURI})
	return m
}

// encodeRoot writes the root with its computed hasPart: references to every
// data entity in the crate, present even when empty.
func encodeRoot(c *niidg.Crate) *omap {
	root := c.Root()

	props := root.Props()
	parts := make([]any, 0, c.Len())
	for _, e := range c.DataEntities() {
		parts = append(parts, niidg.NewRef(e.ID()))
	}
	props["hasPart"] = parts

	m := &omap{}
	m.set("@id", niidg.RootID)
	m.set("@type", rootType)
	setProps(m, props)
	m.set("@context", root.Context())
	return m
}

func encodeEntity(e *niidg.Entity) *omap {
	m := &omap{}
	m.set("@id", e.ID())
	m.set("@type", e.TypeName())
	setProps(m, e.Props())
	m.set("@context", e.Context())
	return m
}

func setProps(m *omap, props map[string]any) {
	for _, k := range sortedKeys(props) {
		m.set(k, toJSONValue(props[k]))
	}
}

// toJSONValue rewrites references into their JSON-LD object form.
func toJSONValue(v any) any {
	switch x := v.(type) {
	case niidg.Ref:
		return map[string]any{"@id": x.ID}
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = toJSONValue(item)
		}
		return out
	default:
		return v
	}
}
