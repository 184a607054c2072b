package ginfork_test

import (
	"path"
	"strings"
	"testing"

	niidg "github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/profiles/base"
	"github.com/ivis-tsukioka/niidg/profiles/ginfork"
)

func setup(t *testing.T) {
	t.Helper()
	niidg.ResetGlobal()
	t.Cleanup(niidg.ResetGlobal)
	if err := niidg.Init(base.Definition(), ginfork.Definition()); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func must(t *testing.T) func(*niidg.Entity, error) *niidg.Entity {
	t.Helper()
	return func(e *niidg.Entity, err error) *niidg.Entity {
		t.Helper()
		if err != nil {
			t.Fatalf("new entity: %v", err)
		}
		return e
	}
}

func hasViolation(vs niidg.Violations, id, prop, code string) bool {
	for _, v := range vs {
		if v.EntityID == id && v.Property == prop && v.Code == code {
			return true
		}
	}
	return false
}

func violationNote(vs niidg.Violations, id, prop string) string {
	for _, v := range vs {
		if v.EntityID == id && v.Property == prop {
			if note, ok := v.Params["note"].(string); ok {
				return note
			}
		}
	}
	return ""
}

// buildCrate assembles a monitored crate with the given dataset structure
// and directory entities.
func buildCrate(t *testing.T, structure string, dirs ...string) (*niidg.Crate, *niidg.Entity) {
	t.Helper()
	c := niidg.New()
	if err := c.Root().Set("name", "Example GIN-fork Project"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	gm := must(t)(ginfork.NewGinMonitoring(map[string]any{
		"about":            c.Root(),
		"contentSize":      "100GB",
		"datasetStructure": structure,
	}))
	if err := c.Add(gm); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, d := range dirs {
		ds := must(t)(base.NewDataset(d, map[string]any{
			"name": path.Base(strings.TrimSuffix(d, "/")),
		}))
		if err := c.Add(ds); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return c, gm
}

func TestValidMonitoring(t *testing.T) {
	setup(t)
	c, _ := buildCrate(t, "with_code",
		"experiments/exp1/",
		"experiments/exp1/source/",
		"experiments/exp1/input_data/",
		"experiments/exp1/output_data/",
	)
	file := must(t)(ginfork.NewFile("experiments/exp1/source/run.sh", map[string]any{
		"name":                  "run.sh",
		"contentSize":           "8MB",
		"experimentPackageFlag": true,
	}))
	if err := c.Add(file); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if vs := niidg.Validate(c); vs != nil {
		t.Fatalf("expected a valid crate, got %v", vs.AsError())
	}
}

func TestForParameterStructure(t *testing.T) {
	setup(t)
	c, _ := buildCrate(t, "for_parameter",
		"experiments/exp1/source/",
		"experiments/exp1/input_data/",
	)
	if vs := niidg.Validate(c); vs != nil {
		t.Fatalf("expected a valid crate, got %v", vs.AsError())
	}
}

func TestAboutMustBeRoot(t *testing.T) {
	setup(t)
	c, gm := buildCrate(t, "for_parameter",
		"experiments/exp1/source/",
		"experiments/exp1/input_data/",
	)
	other := must(t)(base.NewDataset("experiments/", map[string]any{"name": "experiments"}))
	if err := c.Add(other); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := gm.Set("about", other); err != nil {
		t.Fatalf("Set: %v", err)
	}
	vs := niidg.Validate(c)
	if !hasViolation(vs, gm.ID(), "about", niidg.CodeConstraintFailed) {
		t.Fatalf("about must reference the crate root, got %v", vs)
	}
}

func TestRequiredDirectories(t *testing.T) {
	setup(t)
	c, gm := buildCrate(t, "with_code",
		"experiments/exp1/source/",
		"experiments/exp1/input_data/",
	)
	vs := niidg.Validate(c)
	if !hasViolation(vs, gm.ID(), "datasetStructure", niidg.CodeConstraintFailed) {
		t.Fatalf("missing directories should fail, got %v", vs)
	}
	if note := violationNote(vs, gm.ID(), "datasetStructure"); !strings.Contains(note, "output_data") {
		t.Errorf("note should name the missing directory, got %q", note)
	}
}

func TestDirectoriesShareParent(t *testing.T) {
	setup(t)
	c, gm := buildCrate(t, "for_parameter",
		"experiments/exp1/source/",
		"experiments/exp2/input_data/",
	)
	vs := niidg.Validate(c)
	if !hasViolation(vs, gm.ID(), "datasetStructure", niidg.CodeConstraintFailed) {
		t.Fatalf("directories under different parents should fail, got %v", vs)
	}
	if note := violationNote(vs, gm.ID(), "datasetStructure"); !strings.Contains(note, "parent") {
		t.Errorf("note should mention the shared parent, got %q", note)
	}
}

func TestSizeCapCountsFlaggedFilesOnly(t *testing.T) {
	setup(t)
	c, gm := buildCrate(t, "for_parameter",
		"experiments/exp1/source/",
		"experiments/exp1/input_data/",
	)
	flagged := must(t)(ginfork.NewFile("experiments/exp1/source/big.dat", map[string]any{
		"name":                  "big.dat",
		"contentSize":           "2GB",
		"experimentPackageFlag": true,
	}))
	unflagged := must(t)(ginfork.NewFile("archive/huge.dat", map[string]any{
		"name":                  "huge.dat",
		"contentSize":           "500GB",
		"experimentPackageFlag": false,
	}))
	if err := c.Add(flagged, unflagged); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// The unflagged 500GB file is outside the experiment packages.
	if err := gm.Set("contentSize", "10GB"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if vs := niidg.Validate(c); vs != nil {
		t.Fatalf("expected a valid crate, got %v", vs.AsError())
	}

	if err := gm.Set("contentSize", "1GB"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	vs := niidg.Validate(c)
	if !hasViolation(vs, gm.ID(), "contentSize", niidg.CodeConstraintFailed) {
		t.Fatalf("flagged files above the cap should fail, got %v", vs)
	}
}
