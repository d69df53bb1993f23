package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes diacritic marks: decompose, drop combining marks,
// recompose.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// canonicalize reduces a surface form to its canonical key: lowercase,
// diacritics stripped, punctuation removed, whitespace collapsed to single
// underscores. The result is stable across runs, which keeps concept IDs
// content-derived and re-ingestion idempotent.
//
// Returns the empty string when nothing survives (e.g. pure punctuation).
func canonicalize(surface string) string {
	lowered := strings.ToLower(strings.TrimSpace(surface))

	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		// NFD/NFC transforms only fail on short destination buffers,
		// which transform.String sizes away. Keep the lowered form.
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSep := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingSep = true
		default:
			// Punctuation contributes nothing, not even a separator:
			// "it's" and "its" collide on purpose.
		}
	}
	return b.String()
}
