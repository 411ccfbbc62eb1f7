package extraction

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in priority order: ISO first, then day-first
// with dots (the common Czech convention), day-first with slashes, and
// finally month-first with slashes. The non-padded layouts accept both
// padded ("05.03.2024") and unpadded ("5.3.2024") components.
var dateLayouts = []string{
	"2006-01-02",
	"2.1.2006",
	"2/1/2006",
	"1/2/2006",
}

// NormalizeDate parses a loosely formatted date string into a calendar
// date. The first layout that parses the whole string wins. Empty or
// unparsable input yields nil; the function never fails.
func NormalizeDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizeAmount parses a monetary amount out of a string that may
// carry currency symbols, spaces, and either comma or dot as the
// decimal separator. Every rune that is not a digit, comma, or dot is
// stripped, commas become dots, and the remainder is parsed as a float.
// Unparsable input yields nil.
//
// Inputs mixing a thousands dot with a decimal comma ("1.234,56") end
// up with two dots and degrade to nil. Comma-only inputs always treat
// the comma as the decimal point.
func NormalizeAmount(value string) *float64 {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		case r == '.':
			b.WriteByte('.')
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// NormalizeDateField applies NormalizeDate to a raw field, treating
// null as nil.
func NormalizeDateField(f Field) *time.Time {
	if f.IsNull() {
		return nil
	}
	return NormalizeDate(f.Value())
}

// NormalizeAmountField applies NormalizeAmount to a raw field, treating
// null as nil.
func NormalizeAmountField(f Field) *float64 {
	if f.IsNull() {
		return nil
	}
	return NormalizeAmount(f.Value())
}
