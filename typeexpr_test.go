package niidg_test

import (
	"testing"

	niidg "github.com/ivis-tsukioka/niidg"
)

func TestParseTypeRoundTrip(t *testing.T) {
	cases := []string{
		"str",
		"int",
		"float",
		"bool",
		"url",
		"date",
		"Any",
		"List[str]",
		"Optional[date]",
		"Union[int, str]",
		`Literal["open access", "embargoed access"]`,
		"List[Union[str, int]]",
		"Optional[List[Person]]",
		"Organization",
	}
	for _, expr := range cases {
		ty, err := niidg.ParseType(expr, "lab")
		if err != nil {
			t.Fatalf("ParseType(%q): %v", expr, err)
		}
		if got := ty.String(); got != expr {
			t.Errorf("ParseType(%q).String() = %q", expr, got)
		}
	}
}

func TestParseTypeLiteralQuotes(t *testing.T) {
	ty, err := niidg.ParseType(`Literal['a', "b"]`, "lab")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if len(ty.Enum) != 2 || ty.Enum[0] != "a" || ty.Enum[1] != "b" {
		t.Fatalf("Enum = %v", ty.Enum)
	}
}

func TestParseTypeRefProfile(t *testing.T) {
	ty, err := niidg.ParseType("Person", "lab")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if ty.Kind != niidg.TypeRef || ty.Profile != "lab" || ty.Name != "Person" {
		t.Fatalf("unexpected type: %+v", ty)
	}

	ty, err = niidg.ParseType("Person", "")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	if ty.Profile != niidg.ProfileBase {
		t.Fatalf("empty profile should fall back to base, got %q", ty.Profile)
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"List[",
		"List[]",
		"Union[int]",
		"Literal[]",
		"Map[str]",
		"weird[",
	} {
		if _, err := niidg.ParseType(expr, "lab"); err == nil {
			t.Errorf("ParseType(%q) should fail", expr)
		}
	}
}

func TestTypeCheck(t *testing.T) {
	cases := []struct {
		expr string
		v    any
		want bool
	}{
		{"str", "x", true},
		{"str", 1, false},
		{"int", 3, true},
		{"int", int64(3), true},
		{"int", 3.0, true}, // JSON numbers decode as float64
		{"int", 3.5, false},
		{"int", "3", false},
		{"float", 3.5, true},
		{"float", 3, true},
		{"float", "3.5", false},
		{"bool", true, true},
		{"bool", "true", false},
		{"url", "https://example.com/x", true},
		{"url", "example.com", false},
		{"date", "2022-12-01", true},
		{"date", "yesterday", false},
		{"Any", struct{}{}, true},
		{"List[str]", []any{"a", "b"}, true},
		{"List[str]", []any{"a", 1}, false},
		{"List[str]", "a", false},
		{"Optional[int]", nil, true},
		{"Optional[int]", 2, true},
		{"Optional[int]", "x", false},
		{"Union[int, str]", "x", true},
		{"Union[int, str]", 2, true},
		{"Union[int, str]", true, false},
		{`Literal["a", "b"]`, "a", true},
		{`Literal["a", "b"]`, "c", false},
		{`Literal["a"]`, 1, false},
		{"Person", niidg.NewRef("#p"), true},
		{"Person", "#p", false},
	}
	for _, c := range cases {
		ty, err := niidg.ParseType(c.expr, "lab")
		if err != nil {
			t.Fatalf("ParseType(%q): %v", c.expr, err)
		}
		if got := ty.Check(c.v); got != c.want {
			t.Errorf("%s.Check(%#v) = %v, want %v", c.expr, c.v, got, c.want)
		}
	}
}

func TestTypeRefTypes(t *testing.T) {
	ty := niidg.MustParseType("Union[Person, List[Organization]]", "lab")
	refs := ty.RefTypes()
	if len(refs) != 2 || refs[0].Name != "Person" || refs[1].Name != "Organization" {
		t.Fatalf("RefTypes = %+v", refs)
	}
	if refs := niidg.MustParseType("str", "lab").RefTypes(); len(refs) != 0 {
		t.Fatalf("str should have no reference expectations, got %+v", refs)
	}
}
