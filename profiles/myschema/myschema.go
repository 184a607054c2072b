// Package myschema is a worked example of adding a schema profile. It
// declares a single MySchema entity whose property checks come from the
// YAML definition and whose crate-level rule rejects prohibited words in
// the message property.
package myschema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/rules"
	"github.com/ivis-tsukioka/niidg/schema"
)

// Profile is the name this package registers its entities under.
const Profile = "myschema"

//go:embed myschema.yml
var definitionYAML []byte

var (
	defOnce sync.Once
	def     *niidg.Definition
)

// Definition returns the myschema profile definition.
func Definition() *niidg.Definition {
	defOnce.Do(func() {
		def = schema.MustParseDefinition(definitionYAML)
		def.Entity("MySchema").Rules = []niidg.Rule{
			rules.Custom(checkProhibitedWords),
		}
	})
	return def
}

var prohibitedWords = []string{"danger", "ban", "foo", "bar"}

func checkProhibitedWords(e *niidg.Entity, c *niidg.Crate) niidg.Violations {
	raw, ok := e.Get("message")
	if !ok {
		return nil
	}
	message, ok := raw.(string)
	if !ok {
		return nil
	}
	var vs niidg.Violations
	for _, word := range prohibitedWords {
		if strings.Contains(message, word) {
			vs = append(vs, niidg.NewViolation(e.ID(), "message", niidg.CodeConstraintFailed, map[string]any{
				"note": fmt.Sprintf("prohibited word %q is included", word),
			}))
		}
	}
	return vs
}

// NewMySchema creates a MySchema entity.
func NewMySchema(id string, props map[string]any) (*niidg.Entity, error) {
	return niidg.NewEntity(Profile, "MySchema", id, niidg.WithProps(props))
}
