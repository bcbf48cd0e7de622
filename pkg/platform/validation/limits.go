package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "miniminds/pkg/domain-errors"
)

// String length limits, in characters.
const (
	// MaxReasonLength bounds the free-text reason of an escalation.
	MaxReasonLength = 1000

	// MaxUserIDLength bounds user ids accepted in audit filters.
	MaxUserIDLength = 128
)

// Paging limits
const (
	// MaxPageSize is the largest audit log page an administrator may request.
	MaxPageSize = 200
)

// CheckStringLength validates that value has at most max characters. Length
// is counted in runes so French and Arabic text get the same budget as
// English.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckRange validates that n lies within [min, max].
func CheckRange(fieldName string, n, min, max int) error {
	if n < min || n > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be between %d and %d", fieldName, min, max))
	}
	return nil
}
