// Package numfmt canonicalizes spreadsheet cell values into their
// Markdown-table textual form: numeric and datetime cells formatted
// canonically, pipe characters escaped. shopspring/decimal carries the
// numeric canonicalization so a value like "1234.50" round-trips without
// float-formatting artifacts
// (trailing ".0", scientific notation, etc).
package numfmt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatNumericCell canonicalizes a numeric cell's raw string (as
// excelize reports it) to a plain decimal string with no trailing zeros
// beyond what the source precision implies, and no scientific notation.
// Falls back to the raw string if it isn't parseable as a decimal (the
// caller already knows the cell type; this is the "couldn't happen, don't
// panic" guard).
func FormatNumericCell(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.String()
}

// excelEpoch is the 1900-based date system's day zero, offset one day to
// account for Excel's (deliberate, Lotus-1-2-3-compatible) treatment of
// 1900 as a leap year.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FormatDatetimeCell renders an Excel date/time serial number as a string
// under layout; pass "2006-01-02" for date-only cells or
// "2006-01-02T15:04:05" for datetime cells.
func FormatDatetimeCell(serial float64, layout string) string {
	days := int(serial)
	fraction := serial - float64(days)

	t := excelEpoch.AddDate(0, 0, days)
	t = t.Add(time.Duration(fraction * float64(24*time.Hour)))

	return t.Format(layout)
}

// EscapeMarkdownCell escapes the characters that would otherwise break a
// Markdown table row: pipes are escaped, and embedded newlines become
// "<br>" so a multi-line cell still renders on one row.
func EscapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", "<br>")
	return value
}
