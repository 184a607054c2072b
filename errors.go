package niidg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivis-tsukioka/niidg/i18n"
)

// Violation codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownEntityType = "unknown_entity_type"
	CodeSchemaViolation   = "schema_violation"
	CodeMissingRequired   = "missing_required_property"
	CodeTypeMismatch      = "type_mismatch"
	CodeConstraintFailed  = "constraint_failed"
	CodeDanglingReference = "dangling_reference"
	CodeDuplicateID       = "duplicate_id"
)

// Violation represents a single validation failure.
type Violation struct {
	EntityID string // id of the offending entity; empty for document-level failures.
	Property string // offending property name; empty for entity-level failures.
	Code     string // One of the codes listed above.
	Message  string
	Hint     string // Optional: constraint notes, expected document shape, etc.
	Cause    error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"int", "got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Error renders the violation as "code at entity/prop: message".
func (v Violation) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s at %s", v.Code, v.EntityID)
	if v.Property != "" {
		fmt.Fprintf(b, "/%s", v.Property)
	}
	if v.Message != "" {
		fmt.Fprintf(b, ": %s", v.Message)
	}
	return b.String()
}

func (v Violation) Unwrap() error { return v.Cause }

// NewViolation builds a Violation whose message is localized from the code
// via the i18n dictionaries, interpolating params.
func NewViolation(entityID, property, code string, params map[string]any) Violation {
	return Violation{
		EntityID: entityID,
		Property: property,
		Code:     code,
		Message:  i18n.T(code, stringifyParams(params)),
		Params:   params,
	}
}

func stringifyParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	return data
}

// Violations is a collection of validation failures that implements error.
// A nil or empty Violations means the subject is valid.
type Violations []Violation

// Error summarizes the first few violations.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(vs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(vs[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsError returns the collection as an error, or nil when it is empty.
func (vs Violations) AsError() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// AppendViolations appends violations to the destination, initializing the
// slice when needed.
func AppendViolations(dst Violations, more ...Violation) Violations {
	if dst == nil {
		dst = Violations{}
	}
	dst = append(dst, more...)
	return dst
}

// AsViolations extracts Violations from an error using errors.As internally.
// A single Violation error is promoted to a one-element collection.
func AsViolations(err error) (Violations, bool) {
	if err == nil {
		return nil, false
	}
	var vs Violations
	if errors.As(err, &vs) {
		return vs, true
	}
	var v Violation
	if errors.As(err, &v) {
		return Violations{v}, true
	}
	return nil, false
}
