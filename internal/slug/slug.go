// internal/slug/slug.go
//
// Slug generation, validation, and collision resolution.
//
// Context
// -------
// Every prompt is addressed by a URL slug derived from its title.  Titles mix
// Latin text with Japanese script, so the slug alphabet keeps hiragana,
// katakana, and the CJK unified ideographs in addition to ASCII.  A short
// suffix taken from the prompt's own identifier makes the slug unique without
// a live database check, and keeps regeneration deterministic.
//
// Rules (Make)
// ------------
//  1. Lower-case the title (Latin only; kana and kanji have no case).
//  2. Trim surrounding whitespace.
//  3. Collapse each whitespace run, including the full-width space U+3000,
//     into one “-”.
//  4. Drop every rune that is not an ASCII word character, “-”, hiragana,
//     katakana, or a CJK ideograph.
//  5. Collapse consecutive “-” and trim leading/trailing “-”.
//  6. Truncate the base to maxLen runes, preferring a “-” boundary past the
//     halfway point so words survive the cut.
//  7. Append “-” plus a six-character suffix: the tail of the disambiguator
//     when one is supplied, otherwise six random [a-z0-9] characters.
//
// A title that normalizes to nothing (pure punctuation or emoji) falls back
// to the literal base “prompt” so the result never starts with “-”.
//
// Notes
// -----
// • All functions are pure; none returns an error for any input string.
// • Oxford commas, two spaces after periods.
package slug

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxBaseLen bounds the normalized title portion, before the suffix.
	MaxBaseLen = 50

	suffixLen = 6
	fallback  = "prompt"
)

// legacyIDPattern matches the CUID-shaped identifiers that predate slugs:
// a literal “c” followed by exactly 24 lowercase alphanumerics.
var legacyIDPattern = regexp.MustCompile(`^c[a-z0-9]{24}$`)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Make builds a slug from title using the default MaxBaseLen.  When
// disambiguator is non-empty its last six characters become the suffix, so
// the same (title, disambiguator) pair always yields the same slug.
func Make(title, disambiguator string) string {
	return MakeMax(title, disambiguator, MaxBaseLen)
}

// MakeMax is Make with an explicit base-length bound.  A non-positive bound
// falls back to MaxBaseLen.
func MakeMax(title, disambiguator string, maxLen int) string {
	if maxLen < 1 {
		maxLen = MaxBaseLen
	}
	base := truncate(normalize(title), maxLen)
	if base == "" {
		base = fallback
	}
	return base + "-" + suffix(disambiguator)
}

// Base returns the normalized, truncated slug base without any suffix.
// Category slugs use this directly; prompt slugs always get a suffix via
// Make so title collisions stay unambiguous.
func Base(title string) string {
	base := truncate(normalize(title), MaxBaseLen)
	if base == "" {
		base = fallback
	}
	return base
}

// ResolveUnique returns a slug for (title, disambiguator) that is absent from
// existing, appending “-1”, “-2”, … until a free value is found.  The winner
// is reserved in existing before returning, so a batch run never hands out
// the same slug twice even before any row is written.
func ResolveUnique(title, disambiguator string, existing map[string]struct{}) string {
	return ResolveUniqueMax(title, disambiguator, MaxBaseLen, existing)
}

// ResolveUniqueMax is ResolveUnique with an explicit base-length bound, for
// callers that take the bound from configuration.
func ResolveUniqueMax(title, disambiguator string, maxLen int, existing map[string]struct{}) string {
	cand := MakeMax(title, disambiguator, maxLen)
	for n := 1; ; n++ {
		if _, taken := existing[cand]; !taken {
			existing[cand] = struct{}{}
			return cand
		}
		cand = fmt.Sprintf("%s-%d", MakeMax(title, disambiguator, maxLen), n)
	}
}

// IsLegacyID reports whether s looks like an old-style raw identifier, used
// by the gallery router to 301 legacy URLs to their canonical slug.
func IsLegacyID(s string) bool { return legacyIDPattern.MatchString(s) }

// IsValid reports whether s is a well-formed slug: at least three runes, no
// leading or trailing separator, and only lowercase ASCII alphanumerics,
// “-”, or Japanese script.
func IsValid(s string) bool {
	runes := []rune(s)
	if len(runes) < 3 {
		return false
	}
	if runes[0] == '-' || runes[len(runes)-1] == '-' {
		return false
	}
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		case japanese(r):
		default:
			return false
		}
	}
	return true
}

//
// internal helpers
//

// normalize applies steps 1-5 of the pipeline in a single pass.
func normalize(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(lowered))
	lastDash := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r), r == '-', r == '_':
			// Whitespace runs, including U+3000 and underscores, fold into
			// one separator.  IsValid accepts dashes only, so underscores
			// must never survive into the output.
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		case wordRune(r), japanese(r):
			b.WriteRune(r)
			lastDash = false
		default:
			// Outside the retained alphabet; dropped without a separator.
		}
	}
	return strings.Trim(b.String(), "-")
}

// truncate cuts base to maxLen runes.  If a separator sits past the halfway
// point of the cut, the cut moves back to it so no token is split mid-way.
func truncate(base string, maxLen int) string {
	runes := []rune(base)
	if maxLen <= 0 || len(runes) <= maxLen {
		return base
	}
	cut := runes[:maxLen]
	for i := maxLen - 1; i > maxLen/2; i-- {
		if cut[i] == '-' {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRight(string(cut), "-")
}

// suffix derives the six-character uniqueness suffix.
func suffix(disambiguator string) string {
	if disambiguator != "" {
		if len(disambiguator) <= suffixLen {
			return disambiguator
		}
		return disambiguator[len(disambiguator)-suffixLen:]
	}
	b := make([]byte, suffixLen)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

func wordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}

// japanese reports whether r falls in the hiragana, katakana, or CJK unified
// ideograph blocks.
func japanese(r rune) bool {
	return r >= 0x3040 && r <= 0x309F || // hiragana
		r >= 0x30A0 && r <= 0x30FF || // katakana
		r >= 0x4E00 && r <= 0x9FFF // CJK unified ideographs
}
