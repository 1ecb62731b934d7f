package query

import (
	"regexp"
	"strings"
)

// Characters allowed in a query that gets passed to the browser binary.
// Everything else is stripped, including non-ASCII letters. An allow-list
// is used instead of a blacklist of shell metacharacters because the safe
// set is finite and checkable, the dangerous set is not.
var disallowed = regexp.MustCompile(`[^a-zA-Z0-9 .,?!\-'"]+`)

// Sanitize removes every character outside the allow-list, preserving the
// order of the surviving characters. It never fails; the worst case is an
// empty string.
func Sanitize(s string) string {
	return disallowed.ReplaceAllString(s, "")
}

// IsDegenerate reports whether a query would be empty or all-whitespace
// after sanitization. Callers must not invoke the browser binary for a
// degenerate query.
func IsDegenerate(s string) bool {
	return strings.TrimSpace(Sanitize(s)) == ""
}
