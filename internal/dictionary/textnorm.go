package dictionary

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a raw exam name for lookup and comparison:
// uppercase, accents stripped, punctuation outside "-/()" dropped, whitespace
// collapsed. All stores key by this form, so two spellings of the same name
// share one record.
func NormalizeName(rawName string) string {
	upper := strings.ToUpper(strings.TrimSpace(rawName))
	stripped, _, err := transform.String(stripAccents, upper)
	if err != nil {
		stripped = upper
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '/', r == '(', r == ')':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
