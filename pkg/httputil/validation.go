package httputil

import (
	"regexp"
	"strings"
)

// Field element validation: 0x-prefixed hex (up to 64 digits) or a decimal
// string. Leading zeros are tolerated; the parser normalizes them away.
var feltRegex = regexp.MustCompile(`^(0x[0-9a-fA-F]{1,64}|[0-9]{1,78})$`)

// ValidateFieldElement checks whether a string is a well-formed felt.
func ValidateFieldElement(s string) bool {
	return feltRegex.MatchString(strings.TrimSpace(s))
}

// ValidateTransactionHash checks whether a string is a plausible
// transaction hash: same shape as a felt, but must be non-zero.
func ValidateTransactionHash(s string) bool {
	s = strings.TrimSpace(s)
	if !feltRegex.MatchString(s) {
		return false
	}
	trimmed := strings.TrimLeft(strings.TrimPrefix(s, "0x"), "0")
	return trimmed != ""
}
