package lead

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/leadbothq/leadbot/internal/tenant"
)

const maxNameLength = 40

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether the trimmed input is a well-formed email address.
func IsEmail(text string) bool {
	return emailPattern.MatchString(strings.TrimSpace(text))
}

// ValidInput applies the per-field acceptance rule to one turn of input.
func ValidInput(field tenant.Field, text string) bool {
	switch field {
	case tenant.FieldName:
		return utf8.RuneCountInString(text) <= maxNameLength && !IsEmail(text)
	case tenant.FieldEmail:
		return IsEmail(text)
	case tenant.FieldNeed:
		return !IsEmail(text) && utf8.RuneCountInString(text) > 1
	}
	return false
}
