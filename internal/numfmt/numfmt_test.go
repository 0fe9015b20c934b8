package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumericCell(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1234.50", "1234.5"},
		{"0.100", "0.1"},
		{"42", "42"},
		{"-3.14", "-3.14"},
		{"1e3", "1000"},
		{"not a number", "not a number"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatNumericCell(tc.raw), "raw=%q", tc.raw)
	}
}

func TestFormatDatetimeCellDateOnly(t *testing.T) {
	// Serial 45292 is 2024-01-01 in the 1900 date system.
	assert.Equal(t, "2024-01-01", FormatDatetimeCell(45292, "2006-01-02"))
}

func TestFormatDatetimeCellWithTimeFraction(t *testing.T) {
	// 0.5 of a day is noon.
	assert.Equal(t, "2024-01-01T12:00:00", FormatDatetimeCell(45292.5, "2006-01-02T15:04:05"))
}

func TestEscapeMarkdownCell(t *testing.T) {
	assert.Equal(t, "a\\|b", EscapeMarkdownCell("a|b"))
	assert.Equal(t, "line1<br>line2", EscapeMarkdownCell("line1\nline2"))
	assert.Equal(t, "plain", EscapeMarkdownCell("plain"))
}
