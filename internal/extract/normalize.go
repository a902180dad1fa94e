package extract

import (
	"strings"
	"unicode"
)

// NormalizeText prepares raw OCR output for pattern matching: directional and
// other invisible control marks are removed, Arabic-Indic digits are mapped to
// their ASCII equivalents, and whitespace runs are collapsed to single spaces.
// The function is pure and idempotent.
func NormalizeText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	space := false
	wrote := false
	for _, r := range raw {
		switch {
		case isInvisibleMark(r):
			continue
		case unicode.IsSpace(r):
			space = true
			continue
		}
		if space && wrote {
			b.WriteByte(' ')
		}
		space = false
		wrote = true
		b.WriteRune(normalizeDigit(r))
	}
	return b.String()
}

// NormalizePlate canonicalizes a plate rendering so that visually different
// forms of the same plate compare equal: every non-digit is dropped and
// leading zeros are stripped. Lossy by design. Total: an input with no digits
// normalizes to "0".
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range plate {
		r = normalizeDigit(r)
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return "0"
	}
	return digits
}

// normalizeDigit maps Arabic-Indic (U+0660..U+0669) and Extended Arabic-Indic
// (U+06F0..U+06F9) digits to ASCII. OCR of bilingual registration documents
// mixes both encodings freely.
func normalizeDigit(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
}

// isInvisibleMark reports whether r is a directional or zero-width control
// mark that OCR providers emit around right-to-left text.
func isInvisibleMark(r rune) bool {
	switch r {
	case '​', '‌', '‍', // zero-width space/non-joiner/joiner
		'‎', '‏', // LRM, RLM
		'؜',                                        // arabic letter mark
		'‪', '‫', '‬', '‭', '‮', // embedding/override
		'⁦', '⁧', '⁨', '⁩', // isolates
		'\uFEFF': // BOM / zero-width no-break space
		return true
	}
	return false
}
