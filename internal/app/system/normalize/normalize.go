// internal/app/system/normalize/normalize.go

// Package normalize holds the canonicalization rules for user-supplied
// identity fields. Every write path goes through these before hitting the
// database so uniqueness checks and lookups agree on one representation.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Phone strips spaces, dashes, and parentheses from a phone number,
// preserving a leading "+".
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Category lowercases and trims a category value and maps display-label
// forms to the stored snake_case value, so "Material Supplier" and
// "material_supplier" both resolve to the same category.
func Category(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// Status lowercases and trims a moderation status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Action lowercases and trims a moderation action name.
func Action(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// COANumber trims a Council of Architecture number. Case is preserved:
// the format check requires the uppercase "CA/" prefix as issued.
func COANumber(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a free-text query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
