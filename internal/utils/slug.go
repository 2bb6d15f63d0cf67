package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a course title into a filesystem and URL safe name for export
// downloads. Diacritics are folded to their base letters, anything else
// outside [a-z0-9] becomes a single hyphen.
func Slugify(title string) string {
	s := norm.NFD.String(strings.ToLower(strings.TrimSpace(title)))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "course"
	}
	return slug
}
