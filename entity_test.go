package niidg_test

import (
	"strings"
	"testing"

	niidg "github.com/ivis-tsukioka/niidg"
)

// testDefs builds a minimal base vocabulary plus a lab profile used across
// the package tests.
func testDefs() []*niidg.Definition {
	baseDef := &niidg.Definition{Profile: niidg.ProfileBase, Entities: []*niidg.EntitySchema{
		{
			Profile: niidg.ProfileBase, Name: "RootDataEntity", Kind: niidg.KindDefault,
			Props: []niidg.PropertySchema{
				{Name: "@id", Type: niidg.MustParseType("str", "base"), Required: true},
				{Name: "name", Type: niidg.MustParseType("str", "base"), Required: true},
				{Name: "dateCreated", Type: niidg.MustParseType("str", "base"), Required: true},
			},
		},
		{
			Profile: niidg.ProfileBase, Name: "Organization",
			Props: []niidg.PropertySchema{
				{Name: "@id", Type: niidg.MustParseType("url", "base"), Required: true},
				{Name: "name", Type: niidg.MustParseType("str", "base"), Required: true},
			},
		},
	}}
	labDef := &niidg.Definition{Profile: "lab", Entities: []*niidg.EntitySchema{
		{
			Profile: "lab", Name: "Experiment", Kind: niidg.KindData,
			Props: []niidg.PropertySchema{
				{Name: "@id", Type: niidg.MustParseType("str", "lab"), Required: true},
				{Name: "name", Type: niidg.MustParseType("str", "lab"), Required: true},
				{Name: "count", Type: niidg.MustParseType("int", "lab")},
				{Name: "operator", Type: niidg.MustParseType("Organization", "lab")},
				{Name: "tags", Type: niidg.MustParseType("List[str]", "lab")},
				{
					Name: "outDir", Type: niidg.MustParseType("str", "lab"),
					Constraints: []niidg.Predicate{{
						Note: "Must end with `/`.",
						Fn: func(v any) bool {
							s, ok := v.(string)
							return ok && len(s) > 0 && s[len(s)-1] == '/'
						},
					}},
				},
			},
		},
	}}
	labDef.ResolveRefTypes()
	return []*niidg.Definition{baseDef, labDef}
}

func setupLab(t *testing.T) {
	t.Helper()
	niidg.ResetGlobal()
	t.Cleanup(niidg.ResetGlobal)
	if err := niidg.Init(testDefs()...); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func newExperiment(t *testing.T, id string, props map[string]any) *niidg.Entity {
	t.Helper()
	e, err := niidg.NewEntity("lab", "Experiment", id, niidg.WithProps(props))
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	return e
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	vs, ok := niidg.AsViolations(err)
	if !ok || len(vs) == 0 {
		t.Fatalf("expected violations, got %v", err)
	}
	return vs[0].Code
}

func TestNewEntityBindsSchema(t *testing.T) {
	setupLab(t)
	e := newExperiment(t, "#e1", map[string]any{"name": "run 1"})
	if e.Profile() != "lab" || e.TypeName() != "Experiment" || e.ID() != "#e1" {
		t.Fatalf("unexpected identity: %s %s %s", e.Profile(), e.TypeName(), e.ID())
	}
	if e.Schema() == nil || e.Schema().Name != "Experiment" {
		t.Fatal("schema not bound")
	}
	if v, ok := e.Get("name"); !ok || v != "run 1" {
		t.Fatalf("name = %v, %v", v, ok)
	}
}

func TestNewEntityBlankID(t *testing.T) {
	setupLab(t)
	a := newExperiment(t, "", map[string]any{"name": "run 1"})
	b := newExperiment(t, "", map[string]any{"name": "run 2"})
	if !strings.HasPrefix(a.ID(), "#") {
		t.Fatalf("blank id = %s", a.ID())
	}
	if a.ID() == b.ID() {
		t.Fatalf("blank ids collide: %s", a.ID())
	}
}

func TestNewEntityUnknownType(t *testing.T) {
	setupLab(t)
	_, err := niidg.NewEntity("lab", "Wormhole", "#w")
	if err == nil {
		t.Fatal("unknown type should fail")
	}
	if got := codeOf(t, err); got != niidg.CodeUnknownEntityType {
		t.Fatalf("code = %s", got)
	}
}

func TestNewEntityRejectsUndeclaredProps(t *testing.T) {
	setupLab(t)
	_, err := niidg.NewEntity("lab", "Experiment", "#e1", niidg.WithProps(map[string]any{
		"name":   "run 1",
		"colour": "red",
	}))
	if err == nil {
		t.Fatal("undeclared property should fail")
	}
	if got := codeOf(t, err); got != niidg.CodeSchemaViolation {
		t.Fatalf("code = %s", got)
	}
}

func TestSetRewritesID(t *testing.T) {
	setupLab(t)
	e := newExperiment(t, "#e1", nil)
	if err := e.Set("@id", "#e2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if e.ID() != "#e2" {
		t.Fatalf("ID = %s", e.ID())
	}
	if err := e.Set("@id", ""); err == nil {
		t.Fatal("empty id should fail")
	}
	if err := e.Set("@id", 7); err == nil {
		t.Fatal("non-string id should fail")
	}
}

func TestSetStructuralKeys(t *testing.T) {
	setupLab(t)
	e := newExperiment(t, "#e1", nil)
	if err := e.Set("@type", "Other"); err == nil {
		t.Fatal("@type cannot be assigned")
	}
	if err := e.Set("@context", "x"); err == nil {
		t.Fatal("@context cannot be assigned")
	}
}

func TestSetNormalizesValues(t *testing.T) {
	setupLab(t)
	org, err := niidg.NewEntity("base", "Organization", "https://ror.org/04ksd4g47", niidg.WithProps(map[string]any{"name": "NII"}))
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}
	e := newExperiment(t, "#e1", nil)

	if err := e.Set("operator", org); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := e.Get("operator"); v != niidg.NewRef("https://ror.org/04ksd4g47") {
		t.Fatalf("entity value should become a reference, got %#v", v)
	}

	if err := e.Set("operator", map[string]any{"@id": "https://ror.org/04ksd4g47"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := e.Get("operator"); v != niidg.NewRef("https://ror.org/04ksd4g47") {
		t.Fatalf("@id map should become a reference, got %#v", v)
	}

	if err := e.Set("tags", []string{"a", "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _ := e.Get("tags")
	tags, ok := v.([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" {
		t.Fatalf("slices should normalize to []any, got %#v", v)
	}
}

func TestKeysAndProps(t *testing.T) {
	setupLab(t)
	e := newExperiment(t, "#e1", map[string]any{"name": "run 1", "count": 3})
	keys := e.Keys()
	if len(keys) != 2 || keys[0] != "count" || keys[1] != "name" {
		t.Fatalf("Keys = %v", keys)
	}

	props := e.Props()
	props["name"] = "mutated"
	if v, _ := e.Get("name"); v != "run 1" {
		t.Fatal("Props must return a copy")
	}
}

func TestRestorePropsSkipsDeclarationChecks(t *testing.T) {
	setupLab(t)
	e := newExperiment(t, "#e1", nil)
	e.RestoreProps(map[string]any{"colour": "red", "name": "run 1"})
	if v, ok := e.Get("colour"); !ok || v != "red" {
		t.Fatalf("colour = %v, %v", v, ok)
	}
}

func TestEntityString(t *testing.T) {
	setupLab(t)
	e := newExperiment(t, "#e1", nil)
	if got := e.String(); got != "<Experiment #e1>" {
		t.Fatalf("String = %q", got)
	}
}
