// Package dmp holds checks shared by the DMP-style profiles: numbered DMP
// ids, funder consistency, metadata fallbacks and content-size caps.
package dmp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/checks"
)

// IDPrefix starts every DMP entity id; the dataNumber follows it.
const IDPrefix = "#dmp:"

// CheckFunderListed requires the entity's funder to appear in the root's
// funder list when the root declares one.
func CheckFunderListed(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
	funder, ok := e.Get("funder")
	if !ok {
		return nil
	}
	ref, ok := funder.(niidg.Ref)
	if !ok {
		return nil
	}
	rootFunders, ok := c.Root().Get("funder")
	if !ok {
		return nil
	}
	list, ok := rootFunders.([]any)
	if !ok {
		return nil
	}
	for _, item := range list {
		if r, ok := item.(niidg.Ref); ok && r.ID == ref.ID {
			return nil
		}
	}
	v := niidg.NewViolation(e.ID(), "funder", niidg.CodeConstraintFailed, map[string]any{
		"note": fmt.Sprintf("funder %s is not listed in the funder of the root data entity", ref.ID),
	})
	return niidg.Violations{v}
}

// RequireAllListed requires hasPart to list every DMP entity of the profile
// present in the crate.
func RequireAllListed(e *niidg.Entity, c *niidg.Crate, profile string) niidg.Violations {
	listed := map[string]bool{}
	if v, ok := e.Get("hasPart"); ok {
		if parts, ok := v.([]any); ok {
			for _, item := range parts {
				if r, ok := item.(niidg.Ref); ok {
					listed[r.ID] = true
				}
			}
		}
	}
	var missing []string
	for _, d := range c.GetByType(profile, "DMP") {
		if !listed[d.ID()] {
			missing = append(missing, d.ID())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	v := niidg.NewViolation(e.ID(), "hasPart", niidg.CodeConstraintFailed, map[string]any{
		"note": fmt.Sprintf("hasPart must list every DMP entity in the crate; missing %s", strings.Join(missing, ", ")),
	})
	return niidg.Violations{v}
}

// RequireNumberedID ties the entity id to its dataNumber.
func RequireNumberedID(e *niidg.Entity) niidg.Violations {
	n, ok := IntProp(e, "dataNumber")
	if !ok {
		return nil
	}
	if e.ID() == IDPrefix+strconv.Itoa(n) {
		return nil
	}
	v := niidg.NewViolation(e.ID(), "@id", niidg.CodeConstraintFailed, map[string]any{
		"note": fmt.Sprintf("id must be `%s` followed by the value of dataNumber", IDPrefix),
	})
	return niidg.Violations{v}
}

// RequireMetadata reports a violation unless the crate holds a DMPMetadata
// entity of the profile, and returns it for the fallback checks.
func RequireMetadata(e *niidg.Entity, c *niidg.Crate, profile string) (*niidg.Entity, niidg.Violations) {
	metas := c.GetByType(profile, "DMPMetadata")
	if len(metas) == 0 {
		v := niidg.NewViolation(e.ID(), "", niidg.CodeConstraintFailed, map[string]any{
			"note": "a DMPMetadata entity is required in the crate",
		})
		return nil, niidg.Violations{v}
	}
	return metas[0], nil
}

// MissingOnBoth reports whether neither the entity nor the metadata entity
// carries the property.
func MissingOnBoth(e, meta *niidg.Entity, prop string) bool {
	if v, ok := e.Get(prop); ok && v != nil {
		return false
	}
	if v, ok := meta.Get(prop); ok && v != nil {
		return false
	}
	return true
}

// FallbackViolation reports a property that must be set either on the
// entity or on the DMPMetadata entity.
func FallbackViolation(e *niidg.Entity, prop string) niidg.Violation {
	v := niidg.NewViolation(e.ID(), prop, niidg.CodeMissingRequired, map[string]any{
		"type": e.TypeName(),
	})
	v.Hint = "set it on this entity or on the DMPMetadata entity"
	return v
}

// RequireSizeWithinCap sums the contentSize of the profile's File entities
// (optionally filtered) in the unit of the declared cap and reports when
// the cap is exceeded. A cap of over100GB instead requires at least 100GB.
func RequireSizeWithinCap(e *niidg.Entity, c *niidg.Crate, profile string, filter func(*niidg.Entity) bool) niidg.Violations {
	declared, ok := StringProp(e, "contentSize")
	if !ok || len(declared) < 2 {
		return nil
	}
	unit := declared[len(declared)-2:]

	var sizes []string
	for _, f := range c.GetByType(profile, "File") {
		if filter != nil && !filter(f) {
			continue
		}
		if s, ok := StringProp(f, "contentSize"); ok {
			sizes = append(sizes, s)
		}
	}
	sum, err := checks.TotalContentSize(sizes, unit)
	if err != nil {
		v := niidg.NewViolation(e.ID(), "contentSize", niidg.CodeConstraintFailed, map[string]any{
			"note": fmt.Sprintf("file sizes could not be totalled: %v", err),
		})
		return niidg.Violations{v}
	}

	if declared == "over100GB" {
		if sum >= 100 {
			return nil
		}
		v := niidg.NewViolation(e.ID(), "contentSize", niidg.CodeConstraintFailed, map[string]any{
			"note": "total file size is smaller than 100GB",
		})
		return niidg.Violations{v}
	}

	limit, err := strconv.Atoi(strings.TrimSuffix(declared, unit))
	if err != nil || sum <= float64(limit) {
		return nil
	}
	v := niidg.NewViolation(e.ID(), "contentSize", niidg.CodeConstraintFailed, map[string]any{
		"note": fmt.Sprintf("total file size exceeds the declared %s", declared),
	})
	return niidg.Violations{v}
}

// StringProp returns a property as a string when present and of that kind.
func StringProp(e *niidg.Entity, name string) (string, bool) {
	v, ok := e.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntProp returns a property as an int, accepting the numeric kinds a
// JSON round trip can produce.
func IntProp(e *niidg.Entity, name string) (int, bool) {
	v, ok := e.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
