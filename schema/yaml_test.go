package schema_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/schema"
)

const sampleYAML = `
profile: lab
entities:
  Experiment:
    description: A run of the lab pipeline.
    kind: data
    props:
      "@id":
        expected_type: str
        required: Required.
        description: Path to the experiment directory.
        constraint: Must be a relative path.
      name:
        expected_type: str
        required: Required.
        example: exp-001
      date:
        expected_type: date
        required: Optional.
      operator:
        expected_type: Person
        required: Required.
      tags:
        expected_type: List[str]
        required: Optional.
`

func TestParseDefinition(t *testing.T) {
	def, diag, err := schema.ParseDefinition([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if diag.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", diag.Warnings())
	}
	if def.Profile != "lab" {
		t.Fatalf("profile = %q", def.Profile)
	}

	es := def.Entity("Experiment")
	if es == nil {
		t.Fatalf("Experiment not declared")
	}
	if es.Kind != niidg.KindData {
		t.Errorf("kind = %v, want data", es.Kind)
	}
	if es.Description != "A run of the lab pipeline." {
		t.Errorf("description = %q", es.Description)
	}

	wantOrder := []string{"@id", "name", "date", "operator", "tags"}
	if got := es.PropNames(); !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("prop order = %v, want %v", got, wantOrder)
	}
	if got := es.RequiredProps(); !reflect.DeepEqual(got, []string{"@id", "name", "operator"}) {
		t.Errorf("required = %v", got)
	}

	op, ok := es.Prop("operator")
	if !ok {
		t.Fatalf("operator not declared")
	}
	if op.Type.Kind != niidg.TypeRef || op.Type.Profile != niidg.ProfileBase {
		t.Errorf("operator should fall back to the base vocabulary, got %+v", op.Type)
	}

	id, _ := es.Prop("@id")
	if len(id.Constraints) != 1 {
		t.Fatalf("@id constraints = %d, want 1", len(id.Constraints))
	}
	if id.Constraints[0].Holds("/abs/path") {
		t.Errorf("relative path constraint accepted an absolute path")
	}
	if name, _ := es.Prop("name"); name.Example != "exp-001" {
		t.Errorf("example = %q", name.Example)
	}
}

func TestParseDefinition_Warnings(t *testing.T) {
	src := `
profile: lab
entities:
  Sample:
    colour: blue
    props:
      "@id":
        expected_type: str
        required: Sometimes.
        constraint: Must be wonderful.
`
	def, diag, err := schema.ParseDefinition([]byte(src))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	ws := diag.Warnings()
	if len(ws) != 3 {
		t.Fatalf("warnings = %v, want 3", ws)
	}
	for _, want := range []string{"unknown key", "required marker", "unrecognized constraint"} {
		found := false
		for _, w := range ws {
			if strings.Contains(w, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no warning mentioning %q in %v", want, ws)
		}
	}

	// The unrecognized note is kept as a no-op predicate.
	id, _ := def.Entity("Sample").Prop("@id")
	if len(id.Constraints) != 1 || !id.Constraints[0].Holds("anything") {
		t.Errorf("unrecognized constraint should be kept as a no-op, got %+v", id.Constraints)
	}
	if id.Required {
		t.Errorf("unrecognized required marker must not mark the property required")
	}
}

func TestParseDefinition_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no profile",
			src:  "entities:\n  A:\n    props:\n",
			want: "no profile",
		},
		{
			name: "no entities",
			src:  "profile: lab\n",
			want: "no entities",
		},
		{
			name: "entities not a mapping",
			src:  "profile: lab\nentities: []\n",
			want: "must be a mapping",
		},
		{
			name: "duplicate entity",
			src:  "profile: lab\nentities:\n  A:\n    props:\n  A:\n    props:\n",
			want: "duplicate entity",
		},
		{
			name: "duplicate property",
			src:  "profile: lab\nentities:\n  A:\n    props:\n      x:\n        expected_type: str\n      x:\n        expected_type: int\n",
			want: "duplicate property",
		},
		{
			name: "unknown kind",
			src:  "profile: lab\nentities:\n  A:\n    kind: wild\n    props:\n",
			want: "unknown kind",
		},
		{
			name: "bad type expression",
			src:  "profile: lab\nentities:\n  A:\n    props:\n      x:\n        expected_type: List[\n",
			want: "type expression",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := schema.ParseDefinition([]byte(tc.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
