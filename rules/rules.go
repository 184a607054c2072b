// Package rules provides combinators for building entity validation rules:
// conditional requirements keyed on property values, arbitrary predicates,
// and an escape hatch for profile-specific logic.
package rules

import (
	"reflect"
	"strings"

	niidg "github.com/ivis-tsukioka/niidg"
)

// Op defines the comparison operators for If(...).
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
	In // membership in a slice of values
)

// Condition gates a rule. It either compares a property against a value or
// evaluates an arbitrary predicate. A condition on a missing property never
// holds, so rules built from it do not fire.
type Condition struct {
	prop string
	op   Op
	want any
	pred func(*niidg.Entity) bool
}

// If builds a condition comparing a property value with an operator.
func If(prop string, op Op, want any) Condition {
	return Condition{prop: prop, op: op, want: want}
}

// Always is a condition that holds for every entity, so unconditional
// requirements can use the same combinators.
func Always() Condition {
	return When(func(*niidg.Entity) bool { return true })
}

// When builds a condition from an arbitrary entity predicate.
func When(pred func(*niidg.Entity) bool) Condition {
	return Condition{pred: pred}
}

func (c Condition) holds(e *niidg.Entity) bool {
	if c.pred != nil {
		return c.pred(e)
	}
	v, ok := e.Get(c.prop)
	if !ok || v == nil {
		return false
	}
	return compare(v, c.op, c.want)
}

// Require returns a rule demanding the given properties whenever the
// condition holds.
func (c Condition) Require(props ...string) niidg.Rule {
	return func(e *niidg.Entity, _ *niidg.Crate) niidg.Violations {
		if !c.holds(e) {
			return nil
		}
		var vs niidg.Violations
		for _, p := range props {
			if v, ok := e.Get(p); !ok || v == nil {
				vs = append(vs, niidg.NewViolation(e.ID(), p, niidg.CodeMissingRequired, map[string]any{"type": e.TypeName()}))
			}
		}
		return vs
	}
}

// RequireAny returns a rule demanding at least one of the given properties
// whenever the condition holds.
func (c Condition) RequireAny(props ...string) niidg.Rule {
	return func(e *niidg.Entity, _ *niidg.Crate) niidg.Violations {
		if len(props) == 0 || !c.holds(e) {
			return nil
		}
		for _, p := range props {
			if v, ok := e.Get(p); ok && v != nil {
				return nil
			}
		}
		return niidg.Violations{niidg.NewViolation(e.ID(), strings.Join(props, " or "), niidg.CodeMissingRequired, map[string]any{"type": e.TypeName()})}
	}
}

// Then gates other rules on the condition.
func (c Condition) Then(rules ...niidg.Rule) niidg.Rule {
	return func(e *niidg.Entity, cr *niidg.Crate) niidg.Violations {
		if !c.holds(e) {
			return nil
		}
		var vs niidg.Violations
		for _, r := range rules {
			if r == nil {
				continue
			}
			vs = append(vs, r(e, cr)...)
		}
		return vs
	}
}

// Custom wraps an arbitrary check as a rule.
func Custom(fn func(*niidg.Entity, *niidg.Crate) niidg.Violations) niidg.Rule {
	return niidg.Rule(fn)
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	case In:
		rv := reflect.ValueOf(want)
		if !rv.IsValid() || rv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if equal(cur, rv.Index(i).Interface()) {
				return true
			}
		}
		return false
	case Lt, Le, Gt, Ge:
		return ordered(cur, op, want)
	}
	return false
}

// equal widens numeric values before comparing so JSON-decoded numbers and
// Go ints compare as expected.
func equal(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func ordered(a any, op Op, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case Lt:
		return af < bf
	case Le:
		return af <= bf
	case Gt:
		return af > bf
	case Ge:
		return af >= bf
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
