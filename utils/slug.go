package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases the parts, keeps letters and digits, and joins words
// with single dashes. Empty parts are skipped.
func Slugify(parts ...string) string {
	var sb strings.Builder
	dash := false
	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				if dash && sb.Len() > 0 {
					sb.WriteByte('-')
				}
				sb.WriteRune(r)
				dash = false
				continue
			}
			dash = true
		}
		dash = true
	}
	return sb.String()
}
