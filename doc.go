// Package niidg models research data crates (RO-Crate) as graphs of typed,
// schema-checked entities. It provides:
//
//   - A declarative schema model (profiles of entity types with typed,
//     constrained properties) loaded from YAML or built programmatically
//   - Entity/Crate construction with schema-checked property assignment
//   - A validator that aggregates every violation (required/type/constraint/
//     reference checks plus profile rules) instead of stopping at the first
//   - Deterministic JSON-LD serialization and registry-driven
//     deserialization via the jsonld subpackage
//
// The core data model lives in this package; the schema loader is under
// schema/, format predicates under checks/, rule combinators under rules/,
// the wire layer under jsonld/ and the CLI under cmd/niidg. Built-in
// profiles live under profiles/ and register through Init.
//
// Typical usage:
//
//	_ = niidg.Init(profiles.All()...)
//	crate := niidg.New()
//	file, _ := base.NewFile("data/file_1.txt", map[string]any{"name": "raw data"})
//	_ = crate.Add(file)
//	if vs := niidg.Validate(crate); vs != nil { ... }
//	doc, _ := jsonld.Marshal(crate)
package niidg
