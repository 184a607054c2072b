package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/checks"
)

var (
	endsWithRe   = regexp.MustCompile("(?i)^must end with `([^`]+)`\\.?$")
	startsWithRe = regexp.MustCompile("(?i)^must start with `([^`]+)`\\.?$")
	equalsRe     = regexp.MustCompile("(?i)^must be `([^`]+)`\\.?$")
	moreThanRe   = regexp.MustCompile(`(?i)^must be more than (\d+(?:\.\d+)?)\.?$`)
	lessThanRe   = regexp.MustCompile(`(?i)^must be less than (\d+(?:\.\d+)?)\.?$`)
	matchRe      = regexp.MustCompile("(?i)^must match `(.+)`\\.?$")
)

// phrases maps normalized constraint notes to value predicates.
var phrases = map[string]func(any) bool{
	"must be a relative path":            onString(checks.IsRelativePath),
	"must be a url":                      onString(checks.IsURL),
	"must not be an absolute path":       onString(notAbsolutePath),
	"must have a file size suffix":       onString(checks.IsContentSize),
	"must be a sha-256 digest":           onString(checks.IsSHA256),
	"must be a mime type":                onString(checks.IsMIMEType),
	"must be an email address":           onString(checks.IsEmail),
	"must be a phone number":             onString(checks.IsPhoneNumber),
	"must be an orcid id":                onString(checks.IsORCID),
	"must be an e-rad researcher number": onString(checks.IsERadResearcherNumber),
	"must be a date in the past":         onString(checks.IsPastDate),
	"must be a date in the future":       onString(checks.IsFutureDate),
}

// CompileConstraint turns a human-readable constraint note into a predicate.
// The note is kept verbatim so violation messages can cite it. Notes the
// compiler does not recognize yield a predicate that always holds, and the
// second return value reports false so loaders can warn about them.
func CompileConstraint(note string) (niidg.Predicate, bool) {
	trimmed := strings.TrimSpace(note)

	if m := endsWithRe.FindStringSubmatch(trimmed); m != nil {
		suffix := m[1]
		return predicate(note, onString(func(s string) bool { return strings.HasSuffix(s, suffix) })), true
	}
	if m := startsWithRe.FindStringSubmatch(trimmed); m != nil {
		prefix := m[1]
		return predicate(note, onString(func(s string) bool { return strings.HasPrefix(s, prefix) })), true
	}
	if m := equalsRe.FindStringSubmatch(trimmed); m != nil {
		want := m[1]
		return predicate(note, onString(func(s string) bool { return s == want })), true
	}
	if m := moreThanRe.FindStringSubmatch(trimmed); m != nil {
		bound, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return predicate(note, onNumber(func(f float64) bool { return f > bound })), true
		}
	}
	if m := lessThanRe.FindStringSubmatch(trimmed); m != nil {
		bound, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return predicate(note, onNumber(func(f float64) bool { return f < bound })), true
		}
	}
	if m := matchRe.FindStringSubmatch(trimmed); m != nil {
		re, err := regexp.Compile(m[1])
		if err == nil {
			return predicate(note, onString(re.MatchString)), true
		}
	}
	if fn, ok := phrases[normalize(trimmed)]; ok {
		return predicate(note, fn), true
	}
	return niidg.Predicate{Note: note}, false
}

func predicate(note string, fn func(any) bool) niidg.Predicate {
	return niidg.Predicate{Note: note, Fn: fn}
}

func normalize(note string) string {
	return strings.ToLower(strings.TrimSuffix(note, "."))
}

// onString applies fn to string values, descending into lists. Values of
// other kinds pass because the type check reports them on its own.
func onString(fn func(string) bool) func(any) bool {
	var apply func(any) bool
	apply = func(v any) bool {
		switch x := v.(type) {
		case string:
			return fn(x)
		case []any:
			for _, item := range x {
				if !apply(item) {
					return false
				}
			}
			return true
		default:
			return true
		}
	}
	return apply
}

func onNumber(fn func(float64) bool) func(any) bool {
	var apply func(any) bool
	apply = func(v any) bool {
		switch x := v.(type) {
		case int:
			return fn(float64(x))
		case int64:
			return fn(float64(x))
		case float64:
			return fn(x)
		case []any:
			for _, item := range x {
				if !apply(item) {
					return false
				}
			}
			return true
		default:
			return true
		}
	}
	return apply
}

func notAbsolutePath(s string) bool {
	c, err := checks.ClassifyURI(s)
	return err == nil && c != checks.URIAbsPath
}
