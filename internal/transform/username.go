package transform

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeUsername trims surrounding whitespace and lower-cases the login.
// Applying it twice yields the same value.
func NormalizeUsername(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}
