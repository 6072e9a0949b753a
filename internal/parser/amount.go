package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var amountCleanRe = regexp.MustCompile(`[^\d,.\-+]`)

// ParseLocalizedAmount parses a monetary value resolving Brazilian-locale
// decimal ambiguity: with both '.' and ',' present the comma is the decimal
// separator; with only a comma it is decimal when the fractional part has at
// most two digits, otherwise a thousands separator.
func ParseLocalizedAmount(s string) (decimal.Decimal, error) {
	cleaned := amountCleanRe.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("no numeric content in %q", s)
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return amount, nil
}

var dateCleanRe = regexp.MustCompile(`[^\d/\-.]`)

var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/06",
	"02-01-06",
}

// ParseFlexibleDate parses statement dates in the common Brazilian and ISO
// layouts, day-first where ambiguous
func ParseFlexibleDate(s string) (time.Time, error) {
	cleaned := dateCleanRe.ReplaceAllString(strings.TrimSpace(s), "")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
