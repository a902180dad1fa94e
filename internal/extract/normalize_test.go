package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "Vehicle  No.\t008205\n\nChassis", "Vehicle No. 008205 Chassis"},
		{"trims edges", "  plate 1234  ", "plate 1234"},
		{"strips directional marks", "‏رقم اللوحة‎: 1234", "رقم اللوحة: 1234"},
		{"strips zero-width chars", "12​34\uFEFF56", "123456"},
		{"maps arabic-indic digits", "رقم اللوحة ٠٠٨٢٠٥", "رقم اللوحة 008205"},
		{"maps extended arabic-indic digits", "۱۲۳۴", "1234"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"Vehicle  No.\t008205",
		"‫النص العربي‬ مع  فراغات",
		"  mixed ٠١٢ and 345  ",
		"",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "normalize(normalize(x)) must equal normalize(x) for %q", in)
	}
}

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"008205", "8205"},
		{"08205", "8205"},
		{"8205", "8205"},
		{"00-82 05", "8205"},
		{"٠٠٨٢٠٥", "8205"},
		{"ABC", "0"},
		{"", "0"},
		{"000", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePlate(tt.in), "NormalizePlate(%q)", tt.in)
	}
}

func TestNormalizePlateIdempotent(t *testing.T) {
	for _, in := range []string{"008205", "no digits", "", "٠٥٥", "12-34"} {
		once := NormalizePlate(in)
		assert.Equal(t, once, NormalizePlate(once))
	}
}

func TestNormalizePlateTotality(t *testing.T) {
	// Every input, including empty and digit-free strings, yields a
	// non-empty digit string.
	for _, in := range []string{"", "plate", "----", "أبيض", "0000"} {
		out := NormalizePlate(in)
		assert.NotEmpty(t, out)
		for _, r := range out {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
