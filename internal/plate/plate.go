// Package plate holds the canonical license-plate representation: every
// character that is not an ASCII letter or digit is stripped, and letters
// are uppercased. The canonical form is the unique lookup key everywhere
// a plate is stored or compared.
package plate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPlateFormat is returned when a plate is too short to render
// in display form.
var ErrInvalidPlateFormat = errors.New("license plate must have at least 4 characters")

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Normalize strips special characters and uppercases the plate. It is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(raw, ""))
}

// FormatDisplay renders a canonical plate for display, e.g. "29A12345"
// becomes "29-A1 2345".
func FormatDisplay(canonical string) (string, error) {
	if len(canonical) < 4 {
		return "", ErrInvalidPlateFormat
	}
	code := canonical[:4]
	number := canonical[4:]
	display := code[:2] + "-" + code[2:]
	if number != "" {
		display += " " + number
	}
	return display, nil
}
