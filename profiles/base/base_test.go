package base_test

import (
	"testing"
	"time"

	niidg "github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/profiles/base"
)

func setup(t *testing.T) {
	t.Helper()
	niidg.ResetGlobal()
	t.Cleanup(niidg.ResetGlobal)
	if err := niidg.Init(base.Definition()); err != nil {
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

func TestValidCrate(t *testing.T) {
	setup(t)
	c := niidg.New(niidg.WithCreated(time.Date(2023, 1, 11, 14, 35, 40, 0, time.UTC)))
	if err := c.Root().Set("name", "Example Research Project"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	org := must(t)(base.NewOrganization("https://ror.org/04ksd4g47", map[string]any{
		"name": "National Institute of Informatics",
	}))
	person := must(t)(base.NewPerson("https://orcid.org/0000-0002-3843-3472", map[string]any{
		"name":        "Ichiro Suzuki",
		"affiliation": org,
		"email":       "ichiro@example.com",
	}))
	file := must(t)(base.NewFile("config/setting.txt", map[string]any{
		"name":        "setting.txt",
		"contentSize": "1560B",
	}))
	dir := must(t)(base.NewDataset("config/", map[string]any{"name": "config"}))
	if err := c.Add(org, person, file, dir); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if vs := niidg.Validate(c); vs != nil {
		t.Fatalf("expected a valid crate, got %v", vs.AsError())
	}
}

func TestPersonORCIDChecksum(t *testing.T) {
	setup(t)
	c := niidg.New()
	if err := c.Root().Set("name", "p"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	org := must(t)(base.NewOrganization("https://ror.org/04ksd4g47", map[string]any{"name": "NII"}))
	person := must(t)(base.NewPerson("https://orcid.org/0000-0002-3843-3471", map[string]any{
		"name":        "Ichiro Suzuki",
		"affiliation": org,
		"email":       "ichiro@example.com",
	}))
	if err := c.Add(org, person); err != nil {
		t.Fatalf("Add: %v", err)
	}

	vs := niidg.Validate(c)
	if !hasViolation(vs, person.ID(), "@id", niidg.CodeConstraintFailed) {
		t.Fatalf("expected an ORCID checksum violation, got %v", vs)
	}

	// A non-ORCID URL is not checked.
	other := must(t)(base.NewPerson("https://example.com/people/suzuki", map[string]any{
		"name":        "Ichiro Suzuki",
		"affiliation": org,
		"email":       "ichiro@example.com",
	}))
	if err := c.Add(other); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if vs := niidg.Validate(c); hasViolation(vs, other.ID(), "@id", niidg.CodeConstraintFailed) {
		t.Fatalf("non-ORCID id should pass, got %v", vs)
	}
}

func TestFileFetchedFromInternet(t *testing.T) {
	setup(t)
	c := niidg.New()
	if err := c.Root().Set("name", "p"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	file := must(t)(base.NewFile("https://example.com/data/setting.txt", map[string]any{
		"name":        "setting.txt",
		"contentSize": "1560B",
	}))
	if err := c.Add(file); err != nil {
		t.Fatalf("Add: %v", err)
	}

	vs := niidg.Validate(c)
	if !hasViolation(vs, file.ID(), "sdDatePublished", niidg.CodeMissingRequired) {
		t.Fatalf("a fetched file needs sdDatePublished, got %v", vs)
	}

	if err := file.Set("sdDatePublished", "2022-12-01"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if vs := niidg.Validate(c); vs != nil {
		t.Fatalf("expected a valid crate, got %v", vs.AsError())
	}
}

func TestContactPointNeedsEmailOrPhone(t *testing.T) {
	setup(t)
	c := niidg.New()
	if err := c.Root().Set("name", "p"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cp := must(t)(base.NewContactPoint("#mailto:contact@example.com", nil))
	if err := c.Add(cp); err != nil {
		t.Fatalf("Add: %v", err)
	}

	vs := niidg.Validate(c)
	if !hasViolation(vs, cp.ID(), "email or telephone", niidg.CodeMissingRequired) {
		t.Fatalf("expected the email-or-telephone requirement, got %v", vs)
	}

	if err := cp.Set("telephone", "03-0000-0000"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if vs := niidg.Validate(c); vs != nil {
		t.Fatalf("expected a valid crate, got %v", vs.AsError())
	}
}

func TestDatasetPathConstraints(t *testing.T) {
	setup(t)
	c := niidg.New()
	if err := c.Root().Set("name", "p"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	noSlash := must(t)(base.NewDataset("config", map[string]any{"name": "config"}))
	abs := must(t)(base.NewDataset("/etc/config/", map[string]any{"name": "config"}))
	if err := c.Add(noSlash, abs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	vs := niidg.Validate(c)
	if !hasViolation(vs, "config", "@id", niidg.CodeConstraintFailed) {
		t.Fatalf("directory id without trailing slash should fail, got %v", vs)
	}
	if !hasViolation(vs, "/etc/config/", "@id", niidg.CodeConstraintFailed) {
		t.Fatalf("absolute directory id should fail, got %v", vs)
	}
}
