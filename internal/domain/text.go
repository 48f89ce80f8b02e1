package domain

import (
	"strings"
	"unicode"
)

// IsLettersOnly reports whether s starts with a letter and contains only
// letters and spaces after it. Accented letters count.
func IsLettersOnly(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) {
			continue
		}
		if i > 0 && r == ' ' {
			continue
		}
		return false
	}
	return true
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
