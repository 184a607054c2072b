// Package checks provides the format predicates used by schema constraint
// notes and profile rules: URI classification, content sizes, dates,
// checksums, and Japanese research-infrastructure identifiers. Predicates
// are pure; they never touch the network or the filesystem.
package checks

import (
	"fmt"
	"math"
	"mime"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	contentSizeRe = regexp.MustCompile(`^\d+[KMGTP]?B$`)
	sha256Re      = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	emailRe       = regexp.MustCompile(`^[\w\-]+(\.[\w\-]+)*@([\w][\w\-]*[\w]\.)+[A-Za-z]{2,}$`)
	phoneRe       = regexp.MustCompile(`^0(\d-?\d{4}|\d{2}-?\d{3}|\d{3}-?\d{2}|\d{4}-?\d)-?\d{4}$|^0[5789]0-?\d{4}-?\d{4}$`)
	orcidRe       = regexp.MustCompile(`^(\d{4}-){3}\d{3}[\dX]$`)
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	driveAbsRe    = regexp.MustCompile(`^[a-zA-Z]:[/\\]`)
)

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// URIClass is the coarse classification of an identifier value.
type URIClass int

const (
	URIRelPath URIClass = iota
	URIAbsPath
	URIURL
)

func (c URIClass) String() string {
	switch c {
	case URIURL:
		return "URL"
	case URIAbsPath:
		return "abs_path"
	default:
		return "rel_path"
	}
}

// ClassifyURI sorts an identifier into URL, absolute path or relative
// path. File URIs, rooted POSIX paths, UNC paths and Windows drive paths
// count as absolute.
func ClassifyURI(s string) (URIClass, error) {
	u, err := url.Parse(s)
	if err != nil {
		return URIRelPath, err
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return URIURL, nil
	}
	if u.Scheme == "file" || strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\\`) || driveAbsRe.MatchString(s) {
		return URIAbsPath, nil
	}
	return URIRelPath, nil
}

// IsRelativePath reports whether s is neither a URL nor an absolute path.
func IsRelativePath(s string) bool {
	c, err := ClassifyURI(s)
	return err == nil && c == URIRelPath
}

// IsContentSize reports whether s is a file size literal such as "1560B"
// or "12GB": an integer followed by B, KB, MB, GB, TB or PB.
func IsContentSize(s string) bool {
	return contentSizeRe.MatchString(s)
}

// IsSHA256 reports whether s is a SHA-256 digest in hex form.
func IsSHA256(s string) bool {
	return sha256Re.MatchString(s)
}

// IsMIMEType reports whether s parses as a media type with a registered
// top-level type, e.g. "text/plain".
func IsMIMEType(s string) bool {
	mt, _, err := mime.ParseMediaType(s)
	if err != nil {
		return false
	}
	top, sub, ok := strings.Cut(mt, "/")
	if !ok || sub == "" {
		return false
	}
	switch top {
	case "application", "audio", "font", "image", "message", "model", "multipart", "text", "video":
		return true
	}
	return false
}

// IsISODate reports whether s is a calendar date in ISO 8601 "YYYY-MM-DD"
// form.
func IsISODate(s string) bool {
	_, ok := parseDate(s)
	return ok
}

// IsPastDate reports whether s is a valid date no later than today.
func IsPastDate(s string) bool {
	d, ok := parseDate(s)
	return ok && !d.After(today())
}

// IsFutureDate reports whether s is a valid date strictly after today.
func IsFutureDate(s string) bool {
	d, ok := parseDate(s)
	return ok && d.After(today())
}

func parseDate(s string) (time.Time, bool) {
	if !isoDateRe.MatchString(s) {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", s)
	return d, err == nil
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsPhoneNumber reports whether s is a phone number under the Japanese
// numbering plan, with or without separating hyphens.
func IsPhoneNumber(s string) bool {
	return phoneRe.MatchString(s)
}

// IsORCID reports whether s is an ORCID iD such as "0000-0002-3843-3472"
// with a valid ISO 7064 mod 11-2 check digit ("X" stands for 10).
func IsORCID(s string) bool {
	if !orcidRe.MatchString(s) {
		return false
	}
	digits := strings.ReplaceAll(s, "-", "")
	check := 10
	if last := digits[len(digits)-1]; last != 'X' {
		check = int(last - '0')
	}
	sum := 0
	for _, r := range digits[:len(digits)-1] {
		sum = (sum + int(r-'0')) * 2
	}
	return (12-(sum%11))%11 == check
}

// IsERadResearcherNumber reports whether s is an 8 digit e-Rad researcher
// number whose leading check digit matches the weighted digit sum of the
// remaining seven.
func IsERadResearcherNumber(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	sum := 0
	for i := 1; i < len(s); i++ {
		n := int(s[i] - '0')
		if i%2 == 0 {
			n *= 2
		}
		sum += n
	}
	return sum%10 == int(s[0]-'0')
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

func unitIndex(unit string) int {
	for i, u := range sizeUnits {
		if u == unit {
			return i
		}
	}
	return -1
}

// SplitContentSize splits a content-size literal into its numeric value
// and unit suffix.
func SplitContentSize(s string) (int64, string, error) {
	if !contentSizeRe.MatchString(s) {
		return 0, "", fmt.Errorf("malformed content size: %q", s)
	}
	unit := "B"
	if c := s[len(s)-2]; c < '0' || c > '9' {
		unit = s[len(s)-2:]
	}
	n, err := strconv.ParseInt(s[:len(s)-len(unit)], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed content size: %q", s)
	}
	return n, unit, nil
}

// TotalContentSize sums content-size literals converted into the given
// unit, so {"2GB", "500MB"} totals 2.5 in "GB". Units step by powers of
// 1000. Malformed literals and unknown units are errors.
func TotalContentSize(sizes []string, unit string) (float64, error) {
	target := unitIndex(unit)
	if target < 0 {
		return 0, fmt.Errorf("unknown content size unit: %q", unit)
	}
	var total float64
	for _, s := range sizes {
		n, u, err := SplitContentSize(s)
		if err != nil {
			return 0, err
		}
		total += float64(n) * math.Pow(1000, float64(unitIndex(u)-target))
	}
	return total, nil
}
